package types

import (
	"time"

	"github.com/google/uuid"
)

// Module slug uniqueness is scoped to the owning course, not the table.
type Module struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID    uuid.UUID `gorm:"type:uuid;not null;index:idx_module_course_slug,unique,priority:1" json:"course_id"`
	Course      *Course   `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	Slug        string    `gorm:"column:slug;not null;index:idx_module_course_slug,unique,priority:2" json:"slug"`
	Description string    `gorm:"column:description" json:"description"`
	Position    int       `gorm:"column:position;not null;default:0" json:"order"`

	Lessons []*Lesson `gorm:"constraint:OnDelete:CASCADE;foreignKey:ModuleID;references:ID" json:"lessons,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Module) TableName() string { return "course_module" }
