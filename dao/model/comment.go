package model

import "gorm.io/gorm"

// Comment attaches to any commentable entity through a polymorphic
// {EntityType, EntityID} reference. Edits happen in place, deletes are hard.
type Comment struct {
	gorm.Model
	EntityType EntityType `gorm:"type:varchar(32);index:idx_comment_entity;not null"`
	EntityID   uint       `gorm:"index:idx_comment_entity;not null"`
	Content    string     `gorm:"type:text;not null"`
	UserID     uint       `gorm:"index;not null"`

	User User `gorm:"foreignKey:UserID"`
}
