package types

import (
	"time"

	"github.com/google/uuid"
)

// Tag is a free-form label for courses.
type Tag struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name     string    `gorm:"column:name;not null" json:"name"`
	Slug     string    `gorm:"column:slug;uniqueIndex;not null" json:"slug"`
	Position int       `gorm:"column:position;not null;default:0" json:"order"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Tag) TableName() string { return "tag" }
