// Package cronjob runs the scheduled inventory scans: samples nearing
// their expiration date and equipment with maintenance coming due. The
// scans create notifications using exactly the same predicates as the
// dashboard KPIs, so the bell count and the KPI tiles always agree.
package cronjob

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/dsnakex/Dashboard-ELN/dao/model"
	"github.com/dsnakex/Dashboard-ELN/pkg/config"
	"github.com/dsnakex/Dashboard-ELN/pkg/logutils"
	mysmtp "github.com/dsnakex/Dashboard-ELN/pkg/smtp"
)

const (
	sampleExpiryWindowDays         = 30
	equipmentMaintenanceWindowDays = 7
)

type ScanManager struct {
	db   *gorm.DB
	cron *cron.Cron
	// Mailer is optional; nil disables the admin digest mails.
	Mailer *mysmtp.Sender
}

func NewScanManager(db *gorm.DB) *ScanManager {
	return &ScanManager{
		db:   db,
		cron: cron.New(cron.WithLocation(time.Local)),
	}
}

// Start registers the configured scans and launches the scheduler.
func (m *ScanManager) Start() error {
	c := config.GetConfig()
	if spec := c.Cron.SampleExpiryScan; spec != "" {
		if _, err := m.cron.AddFunc(spec, func() {
			if err := m.ScanExpiringSamples(time.Now()); err != nil {
				logutils.Log.Warnf("cron: sample expiry scan: %v", err)
			}
		}); err != nil {
			return err
		}
	}
	if spec := c.Cron.EquipmentMaintenanceScan; spec != "" {
		if _, err := m.cron.AddFunc(spec, func() {
			if err := m.ScanMaintenanceDue(time.Now()); err != nil {
				logutils.Log.Warnf("cron: equipment maintenance scan: %v", err)
			}
		}); err != nil {
			return err
		}
	}
	m.cron.Start()
	return nil
}

func (m *ScanManager) Stop() {
	m.cron.Stop()
}

// ScanExpiringSamples notifies the owner of every available sample whose
// expiration date falls within the next 30 days.
func (m *ScanManager) ScanExpiringSamples(now time.Time) error {
	cutoff := now.AddDate(0, 0, sampleExpiryWindowDays)
	var samples []model.Sample
	err := m.db.
		Where("is_active = ?", true).
		Where("status = ?", model.SampleAvailable).
		Where("expiration_date >= ? AND expiration_date <= ?", now, cutoff).
		Find(&samples).Error
	if err != nil {
		return err
	}

	notified := 0
	for i := range samples {
		s := &samples[i]
		if s.CreatedBy == nil {
			continue
		}
		message := fmt.Sprintf("Sample %q expires on %s", s.Name, s.ExpirationDate.Format("2006-01-02"))
		created, err := m.notifyOnce(*s.CreatedBy, "sample_expiring", model.EntitySample, s.ID,
			"Sample expiring soon", message)
		if err != nil {
			return err
		}
		if created {
			notified++
		}
	}
	logutils.Log.Infof("cron: sample expiry scan found %d samples, %d new notifications", len(samples), notified)
	m.sendDigest("Samples expiring soon", len(samples))
	return nil
}

// ScanMaintenanceDue notifies the owner of every operational equipment item
// whose next maintenance date falls within the next 7 days.
func (m *ScanManager) ScanMaintenanceDue(now time.Time) error {
	cutoff := now.AddDate(0, 0, equipmentMaintenanceWindowDays)
	var items []model.Equipment
	err := m.db.
		Where("is_active = ?", true).
		Where("status = ?", model.EquipmentOperational).
		Where("next_maintenance_date <= ?", cutoff).
		Find(&items).Error
	if err != nil {
		return err
	}

	notified := 0
	for i := range items {
		e := &items[i]
		if e.CreatedBy == nil || e.NextMaintenanceDate == nil {
			continue
		}
		message := fmt.Sprintf("Equipment %q is due for maintenance on %s",
			e.Name, e.NextMaintenanceDate.Format("2006-01-02"))
		created, err := m.notifyOnce(*e.CreatedBy, "maintenance_due", model.EntityEquipment, e.ID,
			"Equipment maintenance due", message)
		if err != nil {
			return err
		}
		if created {
			notified++
		}
	}
	logutils.Log.Infof("cron: maintenance scan found %d items, %d new notifications", len(items), notified)
	m.sendDigest("Equipment maintenance due", len(items))
	return nil
}

// notifyOnce creates the notification unless an unread one of the same
// type already points at the same entity, so daily scans do not pile up
// duplicates.
func (m *ScanManager) notifyOnce(userID uint, notificationType string,
	entityType model.EntityType, entityID uint, title, message string) (bool, error) {
	var count int64
	err := m.db.Model(&model.Notification{}).
		Where("user_id = ? AND notification_type = ? AND entity_type = ? AND entity_id = ? AND is_read = ?",
			userID, notificationType, entityType, entityID, false).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	n := model.Notification{
		UserID:           userID,
		Title:            title,
		Message:          &message,
		NotificationType: &notificationType,
		EntityType:       &entityType,
		EntityID:         &entityID,
	}
	if err := m.db.Create(&n).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (m *ScanManager) sendDigest(subject string, count int) {
	if count == 0 || m.Mailer == nil {
		return
	}
	var admins []model.User
	if err := m.db.Where("role = ?", model.RoleAdmin).Find(&admins).Error; err != nil {
		logutils.Log.Warnf("cron: load admins for digest: %v", err)
		return
	}
	body := fmt.Sprintf("%s: %d items need attention. See the inventory dashboard.", subject, count)
	for i := range admins {
		//nolint:errcheck // best effort, Send already logs
		m.Mailer.Send(admins[i].Email, subject, body)
	}
}
