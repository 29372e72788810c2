package helper

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/dsnakex/Dashboard-ELN/dao/query"
	"github.com/dsnakex/Dashboard-ELN/internal/handler"
	"github.com/dsnakex/Dashboard-ELN/pkg/activity"
	"github.com/dsnakex/Dashboard-ELN/pkg/blob"
	"github.com/dsnakex/Dashboard-ELN/pkg/config"
	"github.com/dsnakex/Dashboard-ELN/pkg/cronjob"
	mysmtp "github.com/dsnakex/Dashboard-ELN/pkg/smtp"
)

// ConfigInitializer wires the process-wide dependencies from configuration.
type ConfigInitializer struct {
	backendConfig *config.Config
}

func NewConfigInitializer() *ConfigInitializer {
	return &ConfigInitializer{
		backendConfig: config.GetConfig(),
	}
}

func (ci *ConfigInitializer) GetBackendConfig() *config.Config {
	return ci.backendConfig
}

// LoadDebugEnvironment overrides the listen addresses from .debug.env when
// running in debug mode.
func (ci *ConfigInitializer) LoadDebugEnvironment() error {
	if gin.Mode() != gin.DebugMode {
		return nil
	}

	err := godotenv.Load(".debug.env")
	if err != nil {
		return err
	}

	be := os.Getenv("ELN_BE_PORT")
	if be == "" {
		panic("ELN_BE_PORT is not set")
	}
	ms := os.Getenv("ELN_MS_PORT")
	if ms == "" {
		panic("ELN_MS_PORT is not set")
	}

	ci.backendConfig.ServerAddr = ":" + be
	ci.backendConfig.MetricsAddr = ":" + ms

	return nil
}

// InitializeRegisterConfig opens the database, runs migrations and connects
// the object store.
func (ci *ConfigInitializer) InitializeRegisterConfig(ctx context.Context) (*handler.RegisterConfig, error) {
	db := query.GetDB()
	if err := query.Migrate(db); err != nil {
		return nil, err
	}

	store, err := blob.OpenFromConfig(ctx)
	if err != nil {
		return nil, err
	}

	return &handler.RegisterConfig{
		DB:       db,
		Recorder: activity.NewRecorder(db),
		Blob:     store,
	}, nil
}

// NewScanManager builds the periodic inventory scanner with the configured
// mail digest.
func (ci *ConfigInitializer) NewScanManager(registerConfig *handler.RegisterConfig) *cronjob.ScanManager {
	scans := cronjob.NewScanManager(registerConfig.DB)
	scans.Mailer = mysmtp.GetSender()
	return scans
}
