package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Sample location is a weak reference: a storage unit can be deactivated
// without touching the samples that pointed at it.
type Sample struct {
	gorm.Model
	Name              string       `gorm:"index;type:varchar(128);not null"`
	SampleType        string       `gorm:"type:varchar(64);index;not null"`
	Description       *string      `gorm:"type:text"`
	Status            SampleStatus `gorm:"type:varchar(32);not null;default:available"`
	Quantity          *float64
	Unit              *string `gorm:"type:varchar(32)"`
	Concentration     *float64
	ConcentrationUnit *string `gorm:"type:varchar(32)"`
	StorageUnitID     *uint   `gorm:"index"`
	Position          *string `gorm:"type:varchar(32)"`
	ReceivedDate      *time.Time
	ExpirationDate    *time.Time `gorm:"index"`
	Supplier          *string    `gorm:"type:varchar(128)"`
	CatalogNumber     *string    `gorm:"type:varchar(64)"`
	LotNumber         *string    `gorm:"type:varchar(64)"`
	Barcode           *string    `gorm:"type:varchar(64)"`
	CustomFields      datatypes.JSON `gorm:"type:jsonb"`
	IsActive          bool           `gorm:"not null;default:true"`
	CreatedBy         *uint          `gorm:"index"`

	StorageUnit *StorageUnit `gorm:"foreignKey:StorageUnitID"`
}

// StorageUnit nests through ParentUnitID (freezer -> rack -> box).
type StorageUnit struct {
	gorm.Model
	Name         string  `gorm:"index;type:varchar(128);not null"`
	UnitType     *string `gorm:"type:varchar(64)"`
	Description  *string `gorm:"type:text"`
	Building     *string `gorm:"type:varchar(64)"`
	Room         *string `gorm:"type:varchar(64)"`
	Temperature  *float64
	Capacity     *int
	ParentUnitID *uint `gorm:"index"`
	IsActive     bool  `gorm:"not null;default:true"`
	CreatedBy    *uint `gorm:"index"`
}

type Equipment struct {
	gorm.Model
	Name                    string          `gorm:"index;type:varchar(128);not null"`
	EquipmentType           *string         `gorm:"type:varchar(64)"`
	Manufacturer            *string         `gorm:"type:varchar(128)"`
	EquipModel              *string         `gorm:"column:equip_model;type:varchar(128)"`
	SerialNumber            *string         `gorm:"type:varchar(64)"`
	Building                *string         `gorm:"type:varchar(64)"`
	Room                    *string         `gorm:"type:varchar(64)"`
	Status                  EquipmentStatus `gorm:"type:varchar(32);not null;default:operational"`
	LastMaintenanceDate     *time.Time
	NextMaintenanceDate     *time.Time `gorm:"index"`
	MaintenanceIntervalDays *int
	MaintenanceNotes        *string `gorm:"type:text"`
	IsBookable              bool    `gorm:"not null;default:false"`
	BookingURL              *string `gorm:"type:varchar(256)"`
	IsActive                bool    `gorm:"not null;default:true"`
	CreatedBy               *uint   `gorm:"index"`
}
