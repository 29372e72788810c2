package handler

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dsnakex/Dashboard-ELN/pkg/activity"
	"github.com/dsnakex/Dashboard-ELN/pkg/blob"
)

type Manager interface {
	GetName() string
	RegisterPublic(group *gin.RouterGroup)
	RegisterProtected(group *gin.RouterGroup)
	RegisterAdmin(group *gin.RouterGroup)
}

// RegisterConfig carries the shared dependencies injected into every
// manager at registration time.
type RegisterConfig struct {
	DB       *gorm.DB
	Recorder *activity.Recorder
	Blob     blob.Store
}

type RegisterFunc func(*RegisterConfig) Manager

// Registers collects the manager constructors; each handler file appends
// its own in init().
var Registers []RegisterFunc
