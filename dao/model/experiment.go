package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Experiment cannot exist without a study. ProtocolID and TemplateID are
// non-owning references: deactivating a protocol never touches experiments.
type Experiment struct {
	gorm.Model
	Name        string           `gorm:"index;type:varchar(128);not null"`
	Description *string          `gorm:"type:text"`
	StudyID     uint             `gorm:"index;not null"`
	ProtocolID  *uint            `gorm:"index"`
	TemplateID  *uint            `gorm:"index"`
	Status      ExperimentStatus `gorm:"type:varchar(32);not null;default:configuring"`
	Content     datatypes.JSON   `gorm:"type:jsonb"`
	Metadata    datatypes.JSON   `gorm:"type:jsonb"`
	// Set exactly once when the experiment is signed, never cleared.
	SignedAt  *time.Time
	SignedBy  *uint
	CreatedBy *uint `gorm:"index"`

	Study    Study     `gorm:"foreignKey:StudyID"`
	Protocol *Protocol `gorm:"foreignKey:ProtocolID"`
}

// ExperimentTemplate seeds the initial content of new experiments. The
// relation to Experiment is "instantiated from", not ownership.
type ExperimentTemplate struct {
	gorm.Model
	Name        string         `gorm:"index;type:varchar(128);not null"`
	Description *string        `gorm:"type:text"`
	Content     datatypes.JSON `gorm:"type:jsonb"`
	Category    *string        `gorm:"type:varchar(64)"`
	IsActive    bool           `gorm:"not null;default:true"`
	CreatedBy   *uint          `gorm:"index"`
}
