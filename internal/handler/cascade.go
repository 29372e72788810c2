package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dsnakex/Dashboard-ELN/dao/model"
	"github.com/dsnakex/Dashboard-ELN/internal/util"
	"github.com/dsnakex/Dashboard-ELN/pkg/activity"
)

// recordEntity appends an audit row for a mutation on an entity.
func recordEntity(c *gin.Context, rec *activity.Recorder, action model.ActivityAction,
	entityType model.EntityType, entityID uint, changes map[string]any) {
	if rec == nil {
		return
	}
	actor := util.GetToken(c).UserID
	ev := activity.Event{
		Action:     action,
		EntityType: entityType,
		EntityID:   &entityID,
		Changes:    changes,
		IPAddress:  c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	}
	if actor != 0 {
		ev.UserID = &actor
	}
	rec.Record(ev)
}

// deleteCascade removes a hierarchy entity and its dependents in one
// transaction. Comments attach by (entity_type, entity_id) rather than a
// foreign key, so the tree is walked explicitly instead of relying on
// ON DELETE CASCADE alone. The deletion policy table is the authority on
// which entities may take this path.
func deleteCascade(db *gorm.DB, entityType model.EntityType, id uint) error {
	if model.DeletionPolicyFor(entityType) != model.DeleteHard {
		return fmt.Errorf("%s rows are deactivated, not hard deleted", entityType)
	}
	return db.Transaction(func(tx *gorm.DB) error {
		switch entityType {
		case model.EntityProject:
			return deleteProjectTree(tx, id)
		case model.EntityStudy:
			return deleteStudyTree(tx, id)
		case model.EntityExperiment:
			return deleteExperimentTree(tx, id)
		default:
			return gorm.ErrInvalidData
		}
	})
}

// deactivate is the soft-delete path shared by the inventory, protocol,
// template and file handlers. It reports the affected row count so callers
// can distinguish not-found.
func deactivate(db *gorm.DB, entityType model.EntityType, m any, id uint) (int64, error) {
	if model.DeletionPolicyFor(entityType) != model.DeleteSoft {
		return 0, fmt.Errorf("%s rows are hard deleted, not deactivated", entityType)
	}
	result := db.Model(m).Where("id = ?", id).Update("is_active", false)
	return result.RowsAffected, result.Error
}

func deleteProjectTree(tx *gorm.DB, id uint) error {
	var project model.Project
	if err := tx.First(&project, id).Error; err != nil {
		return err
	}
	var studyIDs []uint
	if err := tx.Model(&model.Study{}).Where("project_id = ?", id).
		Pluck("id", &studyIDs).Error; err != nil {
		return err
	}
	for _, studyID := range studyIDs {
		if err := deleteStudyTree(tx, studyID); err != nil {
			return err
		}
	}
	if err := tx.Where("project_id = ?", id).
		Unscoped().Delete(&model.Task{}).Error; err != nil {
		return err
	}
	if err := deleteComments(tx, model.EntityProject, id); err != nil {
		return err
	}
	return tx.Unscoped().Delete(&model.Project{}, id).Error
}

func deleteStudyTree(tx *gorm.DB, id uint) error {
	var study model.Study
	if err := tx.First(&study, id).Error; err != nil {
		return err
	}
	var experimentIDs []uint
	if err := tx.Model(&model.Experiment{}).Where("study_id = ?", id).
		Pluck("id", &experimentIDs).Error; err != nil {
		return err
	}
	for _, expID := range experimentIDs {
		if err := deleteExperimentTree(tx, expID); err != nil {
			return err
		}
	}
	if err := deleteComments(tx, model.EntityStudy, id); err != nil {
		return err
	}
	return tx.Unscoped().Delete(&model.Study{}, id).Error
}

func deleteExperimentTree(tx *gorm.DB, id uint) error {
	var experiment model.Experiment
	if err := tx.First(&experiment, id).Error; err != nil {
		return err
	}
	if err := deleteComments(tx, model.EntityExperiment, id); err != nil {
		return err
	}
	return tx.Unscoped().Delete(&model.Experiment{}, id).Error
}

func deleteComments(tx *gorm.DB, entityType model.EntityType, id uint) error {
	return tx.Where("entity_type = ? AND entity_id = ?", entityType, id).
		Unscoped().Delete(&model.Comment{}).Error
}
