package types

import (
	"time"

	"github.com/google/uuid"
)

// MaxLessonDurationSeconds caps a lesson at four hours.
const MaxLessonDurationSeconds = 4 * 3600

// Lesson slug uniqueness is scoped to the owning module.
type Lesson struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ModuleID        uuid.UUID `gorm:"type:uuid;not null;index:idx_lesson_module_slug,unique,priority:1" json:"module_id"`
	Module          *Module   `gorm:"constraint:OnDelete:CASCADE;foreignKey:ModuleID;references:ID" json:"module,omitempty"`
	Name            string    `gorm:"column:name;not null" json:"name"`
	Slug            string    `gorm:"column:slug;not null;index:idx_lesson_module_slug,unique,priority:2" json:"slug"`
	Content         string    `gorm:"column:content" json:"content"`
	DurationSeconds int       `gorm:"column:duration_seconds;not null;default:0" json:"duration_seconds"`
	Position        int       `gorm:"column:position;not null;default:0" json:"order"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Lesson) TableName() string { return "lesson" }
