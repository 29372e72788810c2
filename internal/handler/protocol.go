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
	Registers = append(Registers, NewProtocolMgr)
}

type ProtocolMgr struct {
	name     string
	db       *gorm.DB
	recorder *activity.Recorder
}

func NewProtocolMgr(conf *RegisterConfig) Manager {
	return &ProtocolMgr{name: "protocols", db: conf.DB, recorder: conf.Recorder}
}

func (mgr *ProtocolMgr) GetName() string { return mgr.name }

func (mgr *ProtocolMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *ProtocolMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/list", mgr.List)
	g.GET("/:id", mgr.Get)
	g.POST("/create", mgr.Create)
	g.PUT("/update/:id", mgr.Update)
	g.DELETE("/delete/:id", mgr.Delete)
}

func (mgr *ProtocolMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type ListProtocolReq struct {
	PageReq
	DateRangeReq
	Category   *string           `form:"category"`
	Visibility *model.Visibility `form:"visibility" binding:"omitempty,oneof=personal group public"`
	Search     string            `form:"search"`
}

// List godoc
// @Summary List active protocols with filters and pagination
// @Tags protocol
// @Produce json
// @Security Bearer
// @Param category query string false "protocol category"
// @Param visibility query string false "personal, group or public"
// @Param search query string false "match name or description"
// @Success 200 {object} resputil.Response[ListResp[model.Protocol]] "protocols"
// @Failure 400 {object} resputil.Response[any] "Request parameter error"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/protocols/list [get]
func (mgr *ProtocolMgr) List(c *gin.Context) {
	var req ListProtocolReq
	if err := c.ShouldBindQuery(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	q := mgr.db.WithContext(c).Model(&model.Protocol{}).Where("is_active = ?", true)
	if req.Category != nil {
		q = q.Where("category = ?", *req.Category)
	}
	if req.Visibility != nil {
		q = q.Where("visibility = ?", *req.Visibility)
	}
	q = applySearch(q, req.Search, "name", "description")
	q = applyDateRange(q, req.DateRangeReq)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	var protocols []model.Protocol
	err := q.Order("created_at DESC").
		Offset(req.Offset()).Limit(req.PageSize).
		Find(&protocols).Error
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	resputil.Success(c, ListResp[model.Protocol]{Rows: protocols, Total: total})
}

// Get godoc
// @Summary Fetch one protocol
// @Tags protocol
// @Produce json
// @Security Bearer
// @Param id path int true "protocol id"
// @Success 200 {object} resputil.Response[model.Protocol] "protocol"
// @Failure 404 {object} resputil.Response[any] "Not found"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/protocols/{id} [get]
func (mgr *ProtocolMgr) Get(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	var protocol model.Protocol
	if err := mgr.db.WithContext(c).First(&protocol, uri.ID).Error; err != nil {
		if isNotFound(err) {
			resputil.NotFoundError(c, "protocol", uri.ID)
			return
		}
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	resputil.Success(c, protocol)
}

type ProtocolFieldsReq struct {
	Name                     *string           `json:"name"`
	Description              *string           `json:"description"`
	Content                  datatypes.JSON    `json:"content"`
	Category                 *string           `json:"category"`
	Visibility               *model.Visibility `json:"visibility" binding:"omitempty,oneof=personal group public"`
	Difficulty               *model.Difficulty `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	EstimatedDurationMinutes *int              `json:"estimatedDurationMinutes"`
	Tags                     []string          `json:"tags"`
}

type CreateProtocolReq struct {
	Name                     string            `json:"name" binding:"required"`
	Description              *string           `json:"description"`
	Content                  datatypes.JSON    `json:"content"`
	Category                 *string           `json:"category"`
	Visibility               *model.Visibility `json:"visibility" binding:"omitempty,oneof=personal group public"`
	Difficulty               *model.Difficulty `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	EstimatedDurationMinutes *int              `json:"estimatedDurationMinutes"`
	Tags                     []string          `json:"tags"`
}

// Create godoc
// @Summary Create a protocol at version 1
// @Tags protocol
// @Accept json
// @Produce json
// @Security Bearer
// @Param req body CreateProtocolReq true "protocol"
// @Success 200 {object} resputil.Response[model.Protocol] "created protocol"
// @Failure 400 {object} resputil.Response[any] "Request parameter error"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/protocols/create [post]
func (mgr *ProtocolMgr) Create(c *gin.Context) {
	var req CreateProtocolReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	token := util.GetToken(c)
	protocol := model.Protocol{
		Name:                     req.Name,
		Description:              req.Description,
		Content:                  req.Content,
		Visibility:               model.VisibilityPersonal,
		Difficulty:               req.Difficulty,
		EstimatedDurationMinutes: req.EstimatedDurationMinutes,
		Tags:                     req.Tags,
		Version:                  1,
		IsActive:                 true,
		CreatedBy:                &token.UserID,
	}
	if req.Category != nil {
		protocol.Category = req.Category
	}
	if req.Visibility != nil {
		protocol.Visibility = *req.Visibility
	}
	if err := mgr.db.WithContext(c).Create(&protocol).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	recordEntity(c, mgr.recorder, model.ActionCreated, model.EntityProtocol, protocol.ID, nil)
	resputil.Success(c, protocol)
}

// Update godoc
// @Summary Update protocol fields and bump its version
// @Description Any content change increments the version counter.
// @Tags protocol
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "protocol id"
// @Param req body ProtocolFieldsReq true "fields to change"
// @Success 200 {object} resputil.Response[model.Protocol] "updated protocol"
// @Failure 400 {object} resputil.Response[any] "Request parameter error"
// @Failure 404 {object} resputil.Response[any] "Not found"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/protocols/update/{id} [put]
func (mgr *ProtocolMgr) Update(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	var req ProtocolFieldsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	var protocol model.Protocol
	if err := mgr.db.WithContext(c).First(&protocol, uri.ID).Error; err != nil {
		if isNotFound(err) {
			resputil.NotFoundError(c, "protocol", uri.ID)
			return
		}
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
		protocol.Name = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
		protocol.Description = req.Description
	}
	if len(req.Content) > 0 {
		updates["content"] = req.Content
		updates["version"] = protocol.Version + 1
		protocol.Content = req.Content
		protocol.Version++
	}
	if req.Category != nil {
		updates["category"] = *req.Category
		protocol.Category = req.Category
	}
	if req.Visibility != nil {
		updates["visibility"] = *req.Visibility
		protocol.Visibility = *req.Visibility
	}
	if req.Difficulty != nil {
		updates["difficulty"] = *req.Difficulty
		protocol.Difficulty = req.Difficulty
	}
	if req.EstimatedDurationMinutes != nil {
		updates["estimated_duration_minutes"] = *req.EstimatedDurationMinutes
		protocol.EstimatedDurationMinutes = req.EstimatedDurationMinutes
	}
	if req.Tags != nil {
		protocol.Tags = req.Tags
		// serializer fields go through Save rather than the update map
		if err := mgr.db.WithContext(c).Model(&protocol).Update("tags", protocol.Tags).Error; err != nil {
			resputil.Error(c, err.Error(), resputil.NotSpecified)
			return
		}
	}
	if len(updates) > 0 {
		if err := mgr.db.WithContext(c).Model(&protocol).Updates(updates).Error; err != nil {
			resputil.Error(c, err.Error(), resputil.NotSpecified)
			return
		}
	}
	if len(updates) > 0 || req.Tags != nil {
		recordEntity(c, mgr.recorder, model.ActionUpdated, model.EntityProtocol, protocol.ID, nil)
	}
	resputil.Success(c, protocol)
}

// Delete godoc
// @Summary Deactivate a protocol
// @Description Experiments keep their reference; the protocol disappears
// @Description from listings only.
// @Tags protocol
// @Produce json
// @Security Bearer
// @Param id path int true "protocol id"
// @Success 200 {object} resputil.Response[string] "ok"
// @Failure 404 {object} resputil.Response[any] "Not found"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/protocols/delete/{id} [delete]
func (mgr *ProtocolMgr) Delete(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	rows, err := deactivate(mgr.db.WithContext(c), model.EntityProtocol, &model.Protocol{}, uri.ID)
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	if rows == 0 {
		resputil.NotFoundError(c, "protocol", uri.ID)
		return
	}
	recordEntity(c, mgr.recorder, model.ActionDeleted, model.EntityProtocol, uri.ID, nil)
	resputil.Success(c, "Protocol deactivated")
}
