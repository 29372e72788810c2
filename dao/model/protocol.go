package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Protocol struct {
	gorm.Model
	Name                     string         `gorm:"index;type:varchar(128);not null"`
	Description              *string        `gorm:"type:text"`
	Content                  datatypes.JSON `gorm:"type:jsonb"`
	Category                 *string        `gorm:"type:varchar(64);index"`
	Visibility               Visibility     `gorm:"type:varchar(32);not null;default:personal"`
	Difficulty               *Difficulty    `gorm:"type:varchar(32)"`
	EstimatedDurationMinutes *int
	Tags                     []string `gorm:"serializer:json;type:jsonb"`
	Version                  int      `gorm:"not null;default:1"`
	IsActive                 bool     `gorm:"not null;default:true"`
	CreatedBy                *uint    `gorm:"index"`
}
