package activity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dsnakex/Dashboard-ELN/dao/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&model.ActivityLogEntry{}))
	return db
}

func TestRecordWritesEntry(t *testing.T) {
	db := newTestDB(t)
	r := NewRecorder(db)
	r.Sync = true

	userID := uint(7)
	entityID := uint(42)
	r.Record(Event{
		UserID:     &userID,
		Action:     model.ActionSigned,
		EntityType: model.EntityExperiment,
		EntityID:   &entityID,
		Changes:    map[string]any{"status": FieldChange{From: "completed", To: "signed"}},
		IPAddress:  "10.0.0.1",
	})

	var entries []model.ActivityLogEntry
	require.NoError(t, db.Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, model.ActionSigned, entries[0].Action)
	assert.Equal(t, model.EntityExperiment, entries[0].EntityType)
	assert.Equal(t, entityID, *entries[0].EntityID)
	assert.Equal(t, userID, *entries[0].UserID)
	assert.Contains(t, string(entries[0].Changes), "signed")
	assert.Equal(t, "10.0.0.1", *entries[0].IPAddress)
}

func TestDiffKeepsOnlyChangedFields(t *testing.T) {
	before := map[string]any{"name": "E1", "status": "pending"}
	after := map[string]any{"name": "E1", "status": "in_progress", "protocol_id": uint(3)}

	changes := Diff(before, after)
	require.Len(t, changes, 2)
	assert.Equal(t, FieldChange{From: "pending", To: "in_progress"}, changes["status"])
	assert.Equal(t, FieldChange{From: nil, To: uint(3)}, changes["protocol_id"])
	assert.NotContains(t, changes, "name")
}
