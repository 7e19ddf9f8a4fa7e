package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Course struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string         `gorm:"column:name;not null" json:"name"`
	Slug        string         `gorm:"column:slug;uniqueIndex;not null" json:"slug"`
	Description string         `gorm:"column:description" json:"description"`
	Published   bool           `gorm:"column:published;not null;default:false" json:"published"`
	Position    int            `gorm:"column:position;not null;default:0" json:"order"`
	Metadata    datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`

	Modules     []*Module `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"modules,omitempty"`
	Tags        []*Tag    `gorm:"many2many:course_tags;constraint:OnDelete:CASCADE" json:"tags,omitempty"`
	Topics      []*Topic  `gorm:"many2many:course_topics;constraint:OnDelete:CASCADE" json:"topics,omitempty"`
	Instructors []*User   `gorm:"many2many:course_instructors;constraint:OnDelete:CASCADE" json:"instructors,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Course) TableName() string { return "course" }
