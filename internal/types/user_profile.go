package types

import (
	"time"

	"github.com/google/uuid"
)

// UserProfile is owned 1:1 by a user and created in the same transaction as
// the user itself (see AuthService.RegisterUser).
type UserProfile struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	DisplayName string    `gorm:"column:display_name" json:"display_name"`
	Bio         string    `gorm:"column:bio" json:"bio"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (UserProfile) TableName() string { return "user_profile" }
