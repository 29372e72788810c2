package model

import "gorm.io/gorm"

// File rows describe blobs living in the object store; FilePath is the
// blob key, not a local path.
type File struct {
	gorm.Model
	Name       string      `gorm:"index;type:varchar(256);not null"`
	FilePath   string      `gorm:"type:varchar(512);not null"`
	FileSize   *int64
	MimeType   *string     `gorm:"type:varchar(128)"`
	FolderPath string      `gorm:"type:varchar(256);not null;default:/"`
	EntityType *EntityType `gorm:"type:varchar(32);index:idx_file_entity"`
	EntityID   *uint       `gorm:"index:idx_file_entity"`
	Description *string    `gorm:"type:text"`
	Tags       []string    `gorm:"serializer:json;type:jsonb"`
	UploadedBy *uint       `gorm:"index"`
	IsActive   bool        `gorm:"not null;default:true"`
}
