package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/dsnakex/Dashboard-ELN/dao/model"
	"github.com/dsnakex/Dashboard-ELN/internal/resputil"
	"github.com/dsnakex/Dashboard-ELN/internal/util"
	"github.com/dsnakex/Dashboard-ELN/pkg/activity"
	"github.com/dsnakex/Dashboard-ELN/pkg/lifecycle"
	"github.com/dsnakex/Dashboard-ELN/pkg/monitor"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewExperimentMgr)
}

type ExperimentMgr struct {
	name     string
	db       *gorm.DB
	recorder *activity.Recorder
}

func NewExperimentMgr(conf *RegisterConfig) Manager {
	return &ExperimentMgr{name: "experiments", db: conf.DB, recorder: conf.Recorder}
}

func (mgr *ExperimentMgr) GetName() string { return mgr.name }

func (mgr *ExperimentMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *ExperimentMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/list", mgr.List)
	g.GET("/:id", mgr.Get)
	g.POST("/create", mgr.Create)
	g.PUT("/update/:id", mgr.Update)
	g.DELETE("/delete/:id", mgr.Delete)
	g.POST("/:id/sign", mgr.Sign)
}

func (mgr *ExperimentMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type ListExperimentReq struct {
	PageReq
	DateRangeReq
	StudyID   *uint                   `form:"studyId"`
	ProjectID *uint                   `form:"projectId"`
	Status    *model.ExperimentStatus `form:"status" binding:"omitempty,oneof=configuring pending in_progress completed signed"`
	CreatedBy *uint                   `form:"createdBy"`
	Search    string                  `form:"search"`
}

// List godoc
// @Summary List experiments with filters and pagination
// @Tags experiment
// @Produce json
// @Security Bearer
// @Param studyId query int false "parent study"
// @Param projectId query int false "grandparent project"
// @Param status query string false "lifecycle state"
// @Param search query string false "match name or description"
// @Success 200 {object} resputil.Response[ListResp[model.Experiment]] "experiments"
// @Failure 400 {object} resputil.Response[any] "Request parameter error"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/experiments/list [get]
func (mgr *ExperimentMgr) List(c *gin.Context) {
	var req ListExperimentReq
	if err := c.ShouldBindQuery(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	q := mgr.db.WithContext(c).Model(&model.Experiment{})
	if req.StudyID != nil {
		q = q.Where("study_id = ?", *req.StudyID)
	}
	if req.ProjectID != nil {
		q = q.Where("study_id IN (?)",
			mgr.db.Model(&model.Study{}).Select("id").Where("project_id = ?", *req.ProjectID))
	}
	if req.Status != nil {
		q = q.Where("status = ?", *req.Status)
	}
	if req.CreatedBy != nil {
		q = q.Where("created_by = ?", *req.CreatedBy)
	}
	q = applySearch(q, req.Search, "name", "description")
	q = applyDateRange(q, req.DateRangeReq)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	var experiments []model.Experiment
	err := q.Preload("Study").Preload("Study.Project").
		Order("created_at DESC").
		Offset(req.Offset()).Limit(req.PageSize).
		Find(&experiments).Error
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	resputil.Success(c, ListResp[model.Experiment]{Rows: experiments, Total: total})
}

// Get godoc
// @Summary Fetch one experiment with its study, project and protocol
// @Tags experiment
// @Produce json
// @Security Bearer
// @Param id path int true "experiment id"
// @Success 200 {object} resputil.Response[model.Experiment] "experiment"
// @Failure 404 {object} resputil.Response[any] "Not found"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/experiments/{id} [get]
func (mgr *ExperimentMgr) Get(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	var experiment model.Experiment
	err := mgr.db.WithContext(c).
		Preload("Study").Preload("Study.Project").Preload("Protocol").
		First(&experiment, uri.ID).Error
	if err != nil {
		if isNotFound(err) {
			resputil.NotFoundError(c, "experiment", uri.ID)
			return
		}
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	resputil.Success(c, experiment)
}

type CreateExperimentReq struct {
	Name        string                  `json:"name" binding:"required"`
	Description *string                 `json:"description"`
	StudyID     uint                    `json:"studyId" binding:"required"`
	ProtocolID  *uint                   `json:"protocolId"`
	TemplateID  *uint                   `json:"templateId"`
	Status      *model.ExperimentStatus `json:"status"`
	Content     datatypes.JSON          `json:"content"`
	Metadata    datatypes.JSON          `json:"metadata"`
}

// Create godoc
// @Summary Create an experiment under an existing study
// @Description New experiments start in configuring or in_progress. When a
// @Description template is given and no content is, the template content
// @Description seeds the experiment.
// @Tags experiment
// @Accept json
// @Produce json
// @Security Bearer
// @Param req body CreateExperimentReq true "experiment"
// @Success 200 {object} resputil.Response[model.Experiment] "created experiment"
// @Failure 400 {object} resputil.Response[any] "Request parameter error"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/experiments/create [post]
func (mgr *ExperimentMgr) Create(c *gin.Context) {
	var req CreateExperimentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	status := model.ExperimentConfiguring
	if req.Status != nil {
		status = *req.Status
	}
	if !lifecycle.ValidInitial(status) {
		resputil.BadRequestError(c,
			fmt.Sprintf("an experiment cannot start in status %q", status))
		return
	}

	var study model.Study
	if err := mgr.db.WithContext(c).First(&study, req.StudyID).Error; err != nil {
		if isNotFound(err) {
			resputil.NotFoundError(c, "study", req.StudyID)
			return
		}
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	content := req.Content
	if len(content) == 0 && req.TemplateID != nil {
		var tpl model.ExperimentTemplate
		if err := mgr.db.WithContext(c).First(&tpl, *req.TemplateID).Error; err != nil {
			if isNotFound(err) {
				resputil.NotFoundError(c, "template", *req.TemplateID)
				return
			}
			resputil.Error(c, err.Error(), resputil.NotSpecified)
			return
		}
		content = tpl.Content
	}

	token := util.GetToken(c)
	experiment := model.Experiment{
		Name:        req.Name,
		Description: req.Description,
		StudyID:     req.StudyID,
		ProtocolID:  req.ProtocolID,
		TemplateID:  req.TemplateID,
		Status:      status,
		Content:     content,
		Metadata:    req.Metadata,
		CreatedBy:   &token.UserID,
	}
	if err := mgr.db.WithContext(c).Create(&experiment).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	recordEntity(c, mgr.recorder, model.ActionCreated, model.EntityExperiment, experiment.ID, nil)
	resputil.Success(c, experiment)
}

type UpdateExperimentReq struct {
	Name        *string                 `json:"name"`
	Description *string                 `json:"description"`
	ProtocolID  *uint                   `json:"protocolId"`
	Status      *model.ExperimentStatus `json:"status"`
	Content     datatypes.JSON          `json:"content"`
	Metadata    datatypes.JSON          `json:"metadata"`
}

// Update godoc
// @Summary Update experiment fields and advance its lifecycle
// @Description Status may only move forward along
// @Description configuring, pending, in_progress, completed. Signed
// @Description experiments reject every edit. Signing happens through the
// @Description sign action, not here.
// @Tags experiment
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "experiment id"
// @Param req body UpdateExperimentReq true "fields to change"
// @Success 200 {object} resputil.Response[model.Experiment] "updated experiment"
// @Failure 400 {object} resputil.Response[any] "Request parameter error"
// @Failure 404 {object} resputil.Response[any] "Not found"
// @Failure 409 {object} resputil.Response[any] "Transition rejected"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/experiments/update/{id} [put]
func (mgr *ExperimentMgr) Update(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	var req UpdateExperimentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	var experiment model.Experiment
	if err := mgr.db.WithContext(c).First(&experiment, uri.ID).Error; err != nil {
		if isNotFound(err) {
			resputil.NotFoundError(c, "experiment", uri.ID)
			return
		}
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	if experiment.Status == model.ExperimentSigned {
		resputil.HTTPError(c, http.StatusConflict,
			"experiment is signed and immutable", resputil.InvalidTransition)
		return
	}

	// before/after feed the audit diff; values are plain comparables so
	// only genuinely changed fields end up in the changes payload.
	before := map[string]any{}
	after := map[string]any{}
	updates := map[string]any{}
	if req.Status != nil && *req.Status != experiment.Status {
		if err := lifecycle.CanTransition(experiment.Status, *req.Status); err != nil {
			resputil.HTTPError(c, http.StatusConflict, err.Error(), resputil.InvalidTransition)
			return
		}
		before["status"] = experiment.Status
		after["status"] = *req.Status
		updates["status"] = *req.Status
		experiment.Status = *req.Status
	}
	if req.Name != nil {
		before["name"] = experiment.Name
		after["name"] = *req.Name
		updates["name"] = *req.Name
		experiment.Name = *req.Name
	}
	if req.Description != nil {
		var prev string
		if experiment.Description != nil {
			prev = *experiment.Description
		}
		before["description"] = prev
		after["description"] = *req.Description
		updates["description"] = *req.Description
		experiment.Description = req.Description
	}
	if req.ProtocolID != nil {
		var prev uint
		if experiment.ProtocolID != nil {
			prev = *experiment.ProtocolID
		}
		before["protocol_id"] = prev
		after["protocol_id"] = *req.ProtocolID
		updates["protocol_id"] = *req.ProtocolID
		experiment.ProtocolID = req.ProtocolID
	}
	if len(req.Content) > 0 {
		before["content"] = string(experiment.Content)
		after["content"] = string(req.Content)
		updates["content"] = req.Content
		experiment.Content = req.Content
	}
	if len(req.Metadata) > 0 {
		before["metadata"] = string(experiment.Metadata)
		after["metadata"] = string(req.Metadata)
		updates["metadata"] = req.Metadata
		experiment.Metadata = req.Metadata
	}

	if len(updates) > 0 {
		// The status guard re-runs inside the UPDATE so a concurrent sign
		// cannot slip an edit onto a signed experiment.
		result := mgr.db.WithContext(c).Model(&model.Experiment{}).
			Where("id = ? AND status <> ?", uri.ID, model.ExperimentSigned).
			Updates(updates)
		if result.Error != nil {
			resputil.Error(c, result.Error.Error(), resputil.NotSpecified)
			return
		}
		if result.RowsAffected == 0 {
			resputil.HTTPError(c, http.StatusConflict,
				"experiment is signed and immutable", resputil.InvalidTransition)
			return
		}
		recordEntity(c, mgr.recorder, model.ActionUpdated, model.EntityExperiment,
			experiment.ID, activity.Diff(before, after))
	}
	resputil.Success(c, experiment)
}

// Sign godoc
// @Summary Sign a completed experiment
// @Description Signing stamps signed_at and signed_by and freezes the
// @Description experiment. Only the completed state can be signed, and a
// @Description conditional update makes concurrent signs race safe.
// @Tags experiment
// @Produce json
// @Security Bearer
// @Param id path int true "experiment id"
// @Success 200 {object} resputil.Response[model.Experiment] "signed experiment"
// @Failure 404 {object} resputil.Response[any] "Not found"
// @Failure 409 {object} resputil.Response[any] "Not in a signable state"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/experiments/{id}/sign [post]
func (mgr *ExperimentMgr) Sign(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	var experiment model.Experiment
	if err := mgr.db.WithContext(c).First(&experiment, uri.ID).Error; err != nil {
		if isNotFound(err) {
			resputil.NotFoundError(c, "experiment", uri.ID)
			return
		}
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	if err := lifecycle.CanSign(experiment.Status); err != nil {
		resputil.HTTPError(c, http.StatusConflict, err.Error(), resputil.InvalidTransition)
		return
	}

	token := util.GetToken(c)
	now := time.Now()
	// Conditional update: of two racing signs only one sees completed.
	result := mgr.db.WithContext(c).Model(&model.Experiment{}).
		Where("id = ? AND status = ?", uri.ID, model.ExperimentCompleted).
		Updates(map[string]any{
			"status":    model.ExperimentSigned,
			"signed_at": now,
			"signed_by": token.UserID,
		})
	if result.Error != nil {
		resputil.Error(c, result.Error.Error(), resputil.NotSpecified)
		return
	}
	if result.RowsAffected == 0 {
		resputil.HTTPError(c, http.StatusConflict,
			"experiment is no longer in a signable state", resputil.InvalidTransition)
		return
	}

	experiment.Status = model.ExperimentSigned
	experiment.SignedAt = &now
	experiment.SignedBy = &token.UserID

	monitor.CountExperimentSigned()
	recordEntity(c, mgr.recorder, model.ActionSigned, model.EntityExperiment, experiment.ID,
		map[string]any{"status": activity.FieldChange{From: model.ExperimentCompleted, To: model.ExperimentSigned}})
	resputil.Success(c, experiment)
}

// Delete godoc
// @Summary Delete an experiment and its comments
// @Tags experiment
// @Produce json
// @Security Bearer
// @Param id path int true "experiment id"
// @Success 200 {object} resputil.Response[string] "ok"
// @Failure 404 {object} resputil.Response[any] "Not found"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/experiments/delete/{id} [delete]
func (mgr *ExperimentMgr) Delete(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	if err := deleteCascade(mgr.db.WithContext(c), model.EntityExperiment, uri.ID); err != nil {
		if isNotFound(err) {
			resputil.NotFoundError(c, "experiment", uri.ID)
			return
		}
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	recordEntity(c, mgr.recorder, model.ActionDeleted, model.EntityExperiment, uri.ID, nil)
	resputil.Success(c, "Experiment deleted")
}
