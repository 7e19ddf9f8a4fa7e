package types

import (
	"time"

	"github.com/google/uuid"
)

// Enrollment joins a user to a course, once. Rows are immutable after create.
type Enrollment struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID   uuid.UUID `gorm:"type:uuid;not null;index:idx_enrollment_course_user,unique,priority:1" json:"course_id"`
	Course     *Course   `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index:idx_enrollment_course_user,unique,priority:2" json:"user_id"`
	User       *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	EnrolledAt time.Time `gorm:"column:enrolled_at;not null" json:"enrolled_at"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Enrollment) TableName() string { return "enrollment" }
