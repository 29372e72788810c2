// Package activity writes the append-only audit trail. Recording is
// fire-and-forget relative to the primary mutation: a failed log write is
// counted and logged but never rolls back the status change that caused it.
package activity

import (
	"encoding/json"

	"gorm.io/gorm"

	"github.com/dsnakex/Dashboard-ELN/dao/model"
	"github.com/dsnakex/Dashboard-ELN/pkg/logutils"
	"github.com/dsnakex/Dashboard-ELN/pkg/monitor"
)

type Recorder struct {
	db *gorm.DB
	// Sync makes Record block until the row is written. Tests use it to
	// assert on the trail without sleeping.
	Sync bool
}

func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

// Event describes one audit entry.
type Event struct {
	UserID     *uint
	Action     model.ActivityAction
	EntityType model.EntityType
	EntityID   *uint
	Changes    map[string]any
	IPAddress  string
	UserAgent  string
}

// Record appends one entry. Asynchronous unless Sync is set.
func (r *Recorder) Record(ev Event) {
	if r.Sync {
		r.write(ev)
		return
	}
	go r.write(ev)
}

func (r *Recorder) write(ev Event) {
	entry := model.ActivityLogEntry{
		UserID:     ev.UserID,
		Action:     ev.Action,
		EntityType: ev.EntityType,
		EntityID:   ev.EntityID,
	}
	if ev.IPAddress != "" {
		entry.IPAddress = &ev.IPAddress
	}
	if ev.UserAgent != "" {
		entry.UserAgent = &ev.UserAgent
	}
	if len(ev.Changes) > 0 {
		raw, err := json.Marshal(ev.Changes)
		if err != nil {
			logutils.Log.Warnf("activity: marshal changes: %v", err)
		} else {
			entry.Changes = raw
		}
	}
	if err := r.db.Create(&entry).Error; err != nil {
		monitor.CountActivityLogFailure()
		logutils.Log.Warnf("activity: record %s %s: %v", ev.Action, ev.EntityType, err)
	}
}

// FieldChange is one entry of a structured diff.
type FieldChange struct {
	From any `json:"from"`
	To   any `json:"to"`
}

// Diff builds the changes payload from before/after field maps, keeping
// only the fields that actually changed.
func Diff(before, after map[string]any) map[string]any {
	changes := make(map[string]any)
	for field, to := range after {
		from, ok := before[field]
		if !ok || from != to {
			changes[field] = FieldChange{From: from, To: to}
		}
	}
	return changes
}
