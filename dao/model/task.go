package model

import (
	"time"

	"gorm.io/gorm"
)

// Task references to project and assignee are weak: either can go away
// without deleting the task.
type Task struct {
	gorm.Model
	Title       string       `gorm:"index;type:varchar(128);not null"`
	Description *string      `gorm:"type:text"`
	Status      TaskStatus   `gorm:"type:varchar(32);not null;default:todo"`
	Priority    TaskPriority `gorm:"type:varchar(32);not null;default:medium"`
	ProjectID   *uint        `gorm:"index"`
	AssigneeID  *uint        `gorm:"index"`
	DueDate     *time.Time
	UserID      uint `gorm:"index;not null"` // creator

	Project  *Project `gorm:"foreignKey:ProjectID"`
	Assignee *User    `gorm:"foreignKey:AssigneeID"`
}
