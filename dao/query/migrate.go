package query

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/dsnakex/Dashboard-ELN/dao/model"
)

// AllModels lists every persisted entity, leaves first so that foreign
// keys resolve during auto-migration.
func AllModels() []any {
	return []any{
		&model.User{},
		&model.Project{},
		&model.Study{},
		&model.Protocol{},
		&model.ExperimentTemplate{},
		&model.Experiment{},
		&model.StorageUnit{},
		&model.Sample{},
		&model.Equipment{},
		&model.Task{},
		&model.Comment{},
		&model.ActivityLogEntry{},
		&model.Notification{},
		&model.File{},
	}
}

// Migrate brings the schema up to date. The initial migration is a plain
// AutoMigrate of the full model set; later structural changes get their own
// migration entries.
func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{})
	m.InitSchema(func(tx *gorm.DB) error {
		return tx.AutoMigrate(AllModels()...)
	})
	return m.Migrate()
}
