package cronjob

import (
	"testing"
	"time"

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
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Sample{}, &model.Equipment{}, &model.Notification{}))
	return db
}

func datePtr(t time.Time) *time.Time { return &t }

func TestScanExpiringSamples(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	owner := uint(1)

	samples := []model.Sample{
		{Name: "expiring", SampleType: "reagent", Status: model.SampleAvailable, IsActive: true,
			ExpirationDate: datePtr(now.AddDate(0, 0, 10)), CreatedBy: &owner},
		{Name: "far future", SampleType: "reagent", Status: model.SampleAvailable, IsActive: true,
			ExpirationDate: datePtr(now.AddDate(0, 0, 60)), CreatedBy: &owner},
		{Name: "already expired", SampleType: "reagent", Status: model.SampleAvailable, IsActive: true,
			ExpirationDate: datePtr(now.AddDate(0, 0, -1)), CreatedBy: &owner},
		{Name: "depleted", SampleType: "reagent", Status: model.SampleDepleted, IsActive: true,
			ExpirationDate: datePtr(now.AddDate(0, 0, 10)), CreatedBy: &owner},
		{Name: "deactivated", SampleType: "reagent", Status: model.SampleAvailable, IsActive: false,
			ExpirationDate: datePtr(now.AddDate(0, 0, 10)), CreatedBy: &owner},
	}
	require.NoError(t, db.Create(&samples).Error)

	m := NewScanManager(db)
	require.NoError(t, m.ScanExpiringSamples(now))

	var notifications []model.Notification
	require.NoError(t, db.Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Equal(t, owner, notifications[0].UserID)
	assert.Equal(t, model.EntitySample, *notifications[0].EntityType)
	assert.Equal(t, samples[0].ID, *notifications[0].EntityID)
	assert.False(t, notifications[0].IsRead)
}

func TestScanExpiringSamplesNoDuplicates(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	owner := uint(1)

	sample := model.Sample{Name: "expiring", SampleType: "reagent", Status: model.SampleAvailable,
		IsActive: true, ExpirationDate: datePtr(now.AddDate(0, 0, 5)), CreatedBy: &owner}
	require.NoError(t, db.Create(&sample).Error)

	m := NewScanManager(db)
	require.NoError(t, m.ScanExpiringSamples(now))
	require.NoError(t, m.ScanExpiringSamples(now.AddDate(0, 0, 1)))

	var count int64
	require.NoError(t, db.Model(&model.Notification{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	// once read, the next scan may notify again
	require.NoError(t, db.Model(&model.Notification{}).Where("1 = 1").Update("is_read", true).Error)
	require.NoError(t, m.ScanExpiringSamples(now.AddDate(0, 0, 2)))
	require.NoError(t, db.Model(&model.Notification{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestScanMaintenanceDue(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	owner := uint(2)

	items := []model.Equipment{
		{Name: "centrifuge", Status: model.EquipmentOperational, IsActive: true,
			NextMaintenanceDate: datePtr(now.AddDate(0, 0, 3)), CreatedBy: &owner},
		{Name: "freezer", Status: model.EquipmentOperational, IsActive: true,
			NextMaintenanceDate: datePtr(now.AddDate(0, 0, 30)), CreatedBy: &owner},
		{Name: "broken scope", Status: model.EquipmentOutOfService, IsActive: true,
			NextMaintenanceDate: datePtr(now.AddDate(0, 0, 3)), CreatedBy: &owner},
	}
	require.NoError(t, db.Create(&items).Error)

	m := NewScanManager(db)
	require.NoError(t, m.ScanMaintenanceDue(now))

	var notifications []model.Notification
	require.NoError(t, db.Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Equal(t, model.EntityEquipment, *notifications[0].EntityType)
	assert.Equal(t, items[0].ID, *notifications[0].EntityID)
}
