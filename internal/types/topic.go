package types

import (
	"time"

	"github.com/google/uuid"
)

// Topic is the structured taxonomy for courses (e.g. "Databases", "Go").
type Topic struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name     string    `gorm:"column:name;not null" json:"name"`
	Slug     string    `gorm:"column:slug;uniqueIndex;not null" json:"slug"`
	Position int       `gorm:"column:position;not null;default:0" json:"order"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Topic) TableName() string { return "topic" }
