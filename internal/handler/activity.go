package handler

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dsnakex/Dashboard-ELN/dao/model"
	"github.com/dsnakex/Dashboard-ELN/internal/resputil"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewActivityMgr)
}

// ActivityMgr exposes the audit trail read-only; rows are written by the
// recorder as a side effect of mutations, never through this API.
type ActivityMgr struct {
	name string
	db   *gorm.DB
}

func NewActivityMgr(conf *RegisterConfig) Manager {
	return &ActivityMgr{name: "activity", db: conf.DB}
}

func (mgr *ActivityMgr) GetName() string { return mgr.name }

func (mgr *ActivityMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *ActivityMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/list", mgr.List)
}

func (mgr *ActivityMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type ListActivityReq struct {
	PageReq
	DateRangeReq
	EntityType *model.EntityType     `form:"entityType"`
	EntityID   *uint                 `form:"entityId"`
	UserID     *uint                 `form:"userId"`
	Action     *model.ActivityAction `form:"action" binding:"omitempty,oneof=created updated deleted signed"`
}

// List godoc
// @Summary Query the activity log, newest first
// @Tags activity
// @Produce json
// @Security Bearer
// @Param entityType query string false "entity type"
// @Param entityId query int false "entity id"
// @Param userId query int false "acting user"
// @Param action query string false "action kind"
// @Success 200 {object} resputil.Response[ListResp[model.ActivityLogEntry]] "activity rows"
// @Failure 400 {object} resputil.Response[any] "Request parameter error"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/activity/list [get]
func (mgr *ActivityMgr) List(c *gin.Context) {
	var req ListActivityReq
	if err := c.ShouldBindQuery(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	if req.EntityType != nil && !req.EntityType.Valid() {
		resputil.BadRequestError(c, "unknown entity type")
		return
	}

	q := mgr.db.WithContext(c).Model(&model.ActivityLogEntry{})
	if req.EntityType != nil {
		q = q.Where("entity_type = ?", *req.EntityType)
	}
	if req.EntityID != nil {
		q = q.Where("entity_id = ?", *req.EntityID)
	}
	if req.UserID != nil {
		q = q.Where("user_id = ?", *req.UserID)
	}
	if req.Action != nil {
		q = q.Where("action = ?", *req.Action)
	}
	q = applyDateRange(q, req.DateRangeReq)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	var entries []model.ActivityLogEntry
	err := q.Preload("User").Order("created_at DESC").
		Offset(req.Offset()).Limit(req.PageSize).
		Find(&entries).Error
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	resputil.Success(c, ListResp[model.ActivityLogEntry]{Rows: entries, Total: total})
}
