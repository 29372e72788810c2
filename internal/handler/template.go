package handler

import (
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/dsnakex/Dashboard-ELN/dao/model"
	"github.com/dsnakex/Dashboard-ELN/internal/resputil"
	"github.com/dsnakex/Dashboard-ELN/internal/util"
	"github.com/dsnakex/Dashboard-ELN/pkg/activity"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewTemplateMgr)
}

type TemplateMgr struct {
	name     string
	db       *gorm.DB
	recorder *activity.Recorder
}

func NewTemplateMgr(conf *RegisterConfig) Manager {
	return &TemplateMgr{name: "templates", db: conf.DB, recorder: conf.Recorder}
}

func (mgr *TemplateMgr) GetName() string { return mgr.name }

func (mgr *TemplateMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *TemplateMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/list", mgr.List)
	g.GET("/:id", mgr.Get)
	g.POST("/create", mgr.Create)
	g.PUT("/update/:id", mgr.Update)
	g.DELETE("/delete/:id", mgr.Delete)
}

func (mgr *TemplateMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type ListTemplateReq struct {
	PageReq
	Category *string `form:"category"`
	Search   string  `form:"search"`
}

// List godoc
// @Summary List active experiment templates
// @Tags template
// @Produce json
// @Security Bearer
// @Param category query string false "template category"
// @Param search query string false "match name or description"
// @Success 200 {object} resputil.Response[ListResp[model.ExperimentTemplate]] "templates"
// @Failure 400 {object} resputil.Response[any] "Request parameter error"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/templates/list [get]
func (mgr *TemplateMgr) List(c *gin.Context) {
	var req ListTemplateReq
	if err := c.ShouldBindQuery(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	q := mgr.db.WithContext(c).Model(&model.ExperimentTemplate{}).Where("is_active = ?", true)
	if req.Category != nil {
		q = q.Where("category = ?", *req.Category)
	}
	q = applySearch(q, req.Search, "name", "description")

	var total int64
	if err := q.Count(&total).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	var templates []model.ExperimentTemplate
	err := q.Order("created_at DESC").
		Offset(req.Offset()).Limit(req.PageSize).
		Find(&templates).Error
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	resputil.Success(c, ListResp[model.ExperimentTemplate]{Rows: templates, Total: total})
}

// Get godoc
// @Summary Fetch one template
// @Tags template
// @Produce json
// @Security Bearer
// @Param id path int true "template id"
// @Success 200 {object} resputil.Response[model.ExperimentTemplate] "template"
// @Failure 404 {object} resputil.Response[any] "Not found"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/templates/{id} [get]
func (mgr *TemplateMgr) Get(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	var tpl model.ExperimentTemplate
	if err := mgr.db.WithContext(c).First(&tpl, uri.ID).Error; err != nil {
		if isNotFound(err) {
			resputil.NotFoundError(c, "template", uri.ID)
			return
		}
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	resputil.Success(c, tpl)
}

type CreateTemplateReq struct {
	Name        string         `json:"name" binding:"required"`
	Description *string        `json:"description"`
	Content     datatypes.JSON `json:"content"`
	Category    *string        `json:"category"`
}

// Create godoc
// @Summary Create an experiment template
// @Tags template
// @Accept json
// @Produce json
// @Security Bearer
// @Param req body CreateTemplateReq true "template"
// @Success 200 {object} resputil.Response[model.ExperimentTemplate] "created template"
// @Failure 400 {object} resputil.Response[any] "Request parameter error"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/templates/create [post]
func (mgr *TemplateMgr) Create(c *gin.Context) {
	var req CreateTemplateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	token := util.GetToken(c)
	tpl := model.ExperimentTemplate{
		Name:        req.Name,
		Description: req.Description,
		Content:     req.Content,
		IsActive:    true,
		CreatedBy:   &token.UserID,
	}
	if req.Category != nil {
		tpl.Category = req.Category
	}
	if err := mgr.db.WithContext(c).Create(&tpl).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	recordEntity(c, mgr.recorder, model.ActionCreated, model.EntityTemplate, tpl.ID, nil)
	resputil.Success(c, tpl)
}

type UpdateTemplateReq struct {
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	Content     datatypes.JSON `json:"content"`
	Category    *string        `json:"category"`
}

// Update godoc
// @Summary Update template fields
// @Tags template
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "template id"
// @Param req body UpdateTemplateReq true "fields to change"
// @Success 200 {object} resputil.Response[model.ExperimentTemplate] "updated template"
// @Failure 400 {object} resputil.Response[any] "Request parameter error"
// @Failure 404 {object} resputil.Response[any] "Not found"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/templates/update/{id} [put]
func (mgr *TemplateMgr) Update(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	var req UpdateTemplateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	var tpl model.ExperimentTemplate
	if err := mgr.db.WithContext(c).First(&tpl, uri.ID).Error; err != nil {
		if isNotFound(err) {
			resputil.NotFoundError(c, "template", uri.ID)
			return
		}
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
		tpl.Name = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
		tpl.Description = req.Description
	}
	if len(req.Content) > 0 {
		updates["content"] = req.Content
		tpl.Content = req.Content
	}
	if req.Category != nil {
		updates["category"] = *req.Category
		tpl.Category = req.Category
	}
	if len(updates) > 0 {
		if err := mgr.db.WithContext(c).Model(&tpl).Updates(updates).Error; err != nil {
			resputil.Error(c, err.Error(), resputil.NotSpecified)
			return
		}
		recordEntity(c, mgr.recorder, model.ActionUpdated, model.EntityTemplate, tpl.ID, nil)
	}
	resputil.Success(c, tpl)
}

// Delete godoc
// @Summary Deactivate a template
// @Tags template
// @Produce json
// @Security Bearer
// @Param id path int true "template id"
// @Success 200 {object} resputil.Response[string] "ok"
// @Failure 404 {object} resputil.Response[any] "Not found"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/templates/delete/{id} [delete]
func (mgr *TemplateMgr) Delete(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	rows, err := deactivate(mgr.db.WithContext(c), model.EntityTemplate, &model.ExperimentTemplate{}, uri.ID)
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	if rows == 0 {
		resputil.NotFoundError(c, "template", uri.ID)
		return
	}
	recordEntity(c, mgr.recorder, model.ActionDeleted, model.EntityTemplate, uri.ID, nil)
	resputil.Success(c, "Template deactivated")
}
