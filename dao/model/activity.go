package model

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLogEntry is append-only; no updates or deletes ever touch it.
// It intentionally does not embed gorm.Model: UpdatedAt/DeletedAt have no
// meaning for an immutable audit row.
type ActivityLogEntry struct {
	ID         uint           `gorm:"primaryKey"`
	UserID     *uint          `gorm:"index"`
	Action     ActivityAction `gorm:"type:varchar(32);not null"`
	EntityType EntityType     `gorm:"type:varchar(32);index:idx_activity_entity;not null"`
	EntityID   *uint          `gorm:"index:idx_activity_entity"`
	Changes    datatypes.JSON `gorm:"type:jsonb"`
	IPAddress  *string        `gorm:"type:varchar(64)"`
	UserAgent  *string        `gorm:"type:varchar(256)"`
	CreatedAt  time.Time      `gorm:"index"`

	User *User `gorm:"foreignKey:UserID"`
}

func (ActivityLogEntry) TableName() string { return "activity_log" }
