package model

import (
	"time"

	"gorm.io/gorm"
)

type Project struct {
	gorm.Model
	Name        string        `gorm:"index;type:varchar(128);not null"`
	Description *string       `gorm:"type:text"`
	Status      ProjectStatus `gorm:"type:varchar(32);not null;default:active"`
	StartDate   *time.Time
	EndDate     *time.Time
	CreatedBy   *uint `gorm:"index"`

	// Deleting a project cascades to its studies (and their experiments).
	Studies []Study `gorm:"constraint:OnDelete:CASCADE"`
}

type Study struct {
	gorm.Model
	Name        string  `gorm:"index;type:varchar(128);not null"`
	Description *string `gorm:"type:text"`
	ProjectID   uint    `gorm:"index;not null"`
	CreatedBy   *uint   `gorm:"index"`

	Project     Project      `gorm:"foreignKey:ProjectID"`
	Experiments []Experiment `gorm:"constraint:OnDelete:CASCADE"`
}
