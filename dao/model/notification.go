package model

import "time"

// Notification is mutated only through read-state transitions.
type Notification struct {
	ID               uint        `gorm:"primaryKey"`
	UserID           uint        `gorm:"index;not null"`
	Title            string      `gorm:"type:varchar(128);not null"`
	Message          *string     `gorm:"type:text"`
	NotificationType *string     `gorm:"type:varchar(32)"`
	EntityType       *EntityType `gorm:"type:varchar(32)"`
	EntityID         *uint
	IsRead           bool      `gorm:"not null;default:false;index"`
	CreatedAt        time.Time `gorm:"index"`
}
