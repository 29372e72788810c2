package handler

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dsnakex/Dashboard-ELN/dao/model"
	"github.com/dsnakex/Dashboard-ELN/internal/resputil"
	"github.com/dsnakex/Dashboard-ELN/internal/util"
	"github.com/dsnakex/Dashboard-ELN/pkg/activity"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewStudyMgr)
}

type StudyMgr struct {
	name     string
	db       *gorm.DB
	recorder *activity.Recorder
}

func NewStudyMgr(conf *RegisterConfig) Manager {
	return &StudyMgr{name: "studies", db: conf.DB, recorder: conf.Recorder}
}

func (mgr *StudyMgr) GetName() string { return mgr.name }

func (mgr *StudyMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *StudyMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/list", mgr.List)
	g.GET("/:id", mgr.Get)
	g.POST("/create", mgr.Create)
	g.PUT("/update/:id", mgr.Update)
	g.DELETE("/delete/:id", mgr.Delete)
}

func (mgr *StudyMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type ListStudyReq struct {
	PageReq
	DateRangeReq
	ProjectID *uint  `form:"projectId"`
	Search    string `form:"search"`
}

// List godoc
// @Summary List studies, optionally scoped to one project
// @Tags study
// @Produce json
// @Security Bearer
// @Param projectId query int false "parent project"
// @Param search query string false "match name or description"
// @Success 200 {object} resputil.Response[ListResp[model.Study]] "studies"
// @Failure 400 {object} resputil.Response[any] "Request parameter error"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/studies/list [get]
func (mgr *StudyMgr) List(c *gin.Context) {
	var req ListStudyReq
	if err := c.ShouldBindQuery(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	q := mgr.db.WithContext(c).Model(&model.Study{})
	if req.ProjectID != nil {
		q = q.Where("project_id = ?", *req.ProjectID)
	}
	q = applySearch(q, req.Search, "name", "description")
	q = applyDateRange(q, req.DateRangeReq)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	var studies []model.Study
	err := q.Preload("Project").Order("created_at DESC").
		Offset(req.Offset()).Limit(req.PageSize).
		Find(&studies).Error
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	resputil.Success(c, ListResp[model.Study]{Rows: studies, Total: total})
}

// Get godoc
// @Summary Fetch one study with its experiments
// @Tags study
// @Produce json
// @Security Bearer
// @Param id path int true "study id"
// @Success 200 {object} resputil.Response[model.Study] "study"
// @Failure 404 {object} resputil.Response[any] "Not found"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/studies/{id} [get]
func (mgr *StudyMgr) Get(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	var study model.Study
	err := mgr.db.WithContext(c).
		Preload("Project").Preload("Experiments").
		First(&study, uri.ID).Error
	if err != nil {
		if isNotFound(err) {
			resputil.NotFoundError(c, "study", uri.ID)
			return
		}
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	resputil.Success(c, study)
}

type CreateStudyReq struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	ProjectID   uint    `json:"projectId" binding:"required"`
}

// Create godoc
// @Summary Create a study under an existing project
// @Tags study
// @Accept json
// @Produce json
// @Security Bearer
// @Param req body CreateStudyReq true "study"
// @Success 200 {object} resputil.Response[model.Study] "created study"
// @Failure 400 {object} resputil.Response[any] "Request parameter error"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/studies/create [post]
func (mgr *StudyMgr) Create(c *gin.Context) {
	var req CreateStudyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	var project model.Project
	if err := mgr.db.WithContext(c).First(&project, req.ProjectID).Error; err != nil {
		if isNotFound(err) {
			resputil.NotFoundError(c, "project", req.ProjectID)
			return
		}
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	token := util.GetToken(c)
	study := model.Study{
		Name:        req.Name,
		Description: req.Description,
		ProjectID:   req.ProjectID,
		CreatedBy:   &token.UserID,
	}
	if err := mgr.db.WithContext(c).Create(&study).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	recordEntity(c, mgr.recorder, model.ActionCreated, model.EntityStudy, study.ID, nil)
	resputil.Success(c, study)
}

type UpdateStudyReq struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// Update godoc
// @Summary Update study fields
// @Tags study
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "study id"
// @Param req body UpdateStudyReq true "fields to change"
// @Success 200 {object} resputil.Response[model.Study] "updated study"
// @Failure 400 {object} resputil.Response[any] "Request parameter error"
// @Failure 404 {object} resputil.Response[any] "Not found"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/studies/update/{id} [put]
func (mgr *StudyMgr) Update(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	var req UpdateStudyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	var study model.Study
	if err := mgr.db.WithContext(c).First(&study, uri.ID).Error; err != nil {
		if isNotFound(err) {
			resputil.NotFoundError(c, "study", uri.ID)
			return
		}
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	before := study.Name
	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
		study.Name = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
		study.Description = req.Description
	}
	if len(updates) > 0 {
		if err := mgr.db.WithContext(c).Model(&study).Updates(updates).Error; err != nil {
			resputil.Error(c, err.Error(), resputil.NotSpecified)
			return
		}
		changes := activity.Diff(
			map[string]any{"name": before},
			map[string]any{"name": study.Name},
		)
		recordEntity(c, mgr.recorder, model.ActionUpdated, model.EntityStudy, study.ID, changes)
	}
	resputil.Success(c, study)
}

// Delete godoc
// @Summary Delete a study and its experiments
// @Tags study
// @Produce json
// @Security Bearer
// @Param id path int true "study id"
// @Success 200 {object} resputil.Response[string] "ok"
// @Failure 404 {object} resputil.Response[any] "Not found"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/studies/delete/{id} [delete]
func (mgr *StudyMgr) Delete(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	if err := deleteCascade(mgr.db.WithContext(c), model.EntityStudy, uri.ID); err != nil {
		if isNotFound(err) {
			resputil.NotFoundError(c, "study", uri.ID)
			return
		}
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	recordEntity(c, mgr.recorder, model.ActionDeleted, model.EntityStudy, uri.ID, nil)
	resputil.Success(c, "Study deleted")
}
