package model

import (
	"gorm.io/gorm"
)

// User is the basic entity of the system
type User struct {
	gorm.Model
	Name      string  `gorm:"uniqueIndex;type:varchar(32);not null"`
	Email     string  `gorm:"uniqueIndex;type:varchar(128);not null"`
	Password  *string `gorm:"type:varchar(128)"` // bcrypt hash
	FullName  *string `gorm:"type:varchar(64)"`
	AvatarURL *string `gorm:"type:varchar(256)"`
	Role      Role    `gorm:"type:varchar(32);not null;default:researcher"`
	Status    string  `gorm:"type:varchar(32);not null;default:active"`
}

// UserInfo is the public projection embedded in list responses.
type UserInfo struct {
	ID       uint    `json:"id"`
	Username string  `json:"username"`
	FullName *string `json:"fullName,omitempty"`
	Email    string  `json:"email,omitempty"`
}

func (u *User) Info() UserInfo {
	return UserInfo{
		ID:       u.ID,
		Username: u.Name,
		FullName: u.FullName,
		Email:    u.Email,
	}
}
