package handler

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dsnakex/Dashboard-ELN/dao/model"
	"github.com/dsnakex/Dashboard-ELN/internal/resputil"
	"github.com/dsnakex/Dashboard-ELN/internal/util"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewNotificationMgr)
}

type NotificationMgr struct {
	name string
	db   *gorm.DB
}

func NewNotificationMgr(conf *RegisterConfig) Manager {
	return &NotificationMgr{name: "notifications", db: conf.DB}
}

func (mgr *NotificationMgr) GetName() string { return mgr.name }

func (mgr *NotificationMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *NotificationMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/list", mgr.List)
	g.GET("/unread-count", mgr.UnreadCount)
	g.PUT("/:id/read", mgr.MarkRead)
	g.PUT("/read-all", mgr.MarkAllRead)
	g.DELETE("/delete/:id", mgr.Delete)
}

func (mgr *NotificationMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type ListNotificationReq struct {
	PageReq
	UnreadOnly bool `form:"unreadOnly"`
}

// List godoc
// @Summary List the current user's notifications, newest first
// @Tags notification
// @Produce json
// @Security Bearer
// @Param unreadOnly query bool false "only unread"
// @Success 200 {object} resputil.Response[ListResp[model.Notification]] "notifications"
// @Failure 400 {object} resputil.Response[any] "Request parameter error"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/notifications/list [get]
func (mgr *NotificationMgr) List(c *gin.Context) {
	var req ListNotificationReq
	if err := c.ShouldBindQuery(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	token := util.GetToken(c)
	q := mgr.db.WithContext(c).Model(&model.Notification{}).
		Where("user_id = ?", token.UserID)
	if req.UnreadOnly {
		q = q.Where("is_read = ?", false)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	var notifications []model.Notification
	err := q.Order("created_at DESC").
		Offset(req.Offset()).Limit(req.PageSize).
		Find(&notifications).Error
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	resputil.Success(c, ListResp[model.Notification]{Rows: notifications, Total: total})
}

// UnreadCount godoc
// @Summary Number of unread notifications for the current user
// @Tags notification
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[any] "count"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/notifications/unread-count [get]
func (mgr *NotificationMgr) UnreadCount(c *gin.Context) {
	token := util.GetToken(c)
	var count int64
	err := mgr.db.WithContext(c).Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", token.UserID, false).
		Count(&count).Error
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	resputil.Success(c, gin.H{"count": count})
}

// MarkRead godoc
// @Summary Mark one notification read
// @Tags notification
// @Produce json
// @Security Bearer
// @Param id path int true "notification id"
// @Success 200 {object} resputil.Response[string] "ok"
// @Failure 404 {object} resputil.Response[any] "Not found"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/notifications/{id}/read [put]
func (mgr *NotificationMgr) MarkRead(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	token := util.GetToken(c)
	result := mgr.db.WithContext(c).Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", uri.ID, token.UserID).
		Update("is_read", true)
	if result.Error != nil {
		resputil.Error(c, result.Error.Error(), resputil.NotSpecified)
		return
	}
	if result.RowsAffected == 0 {
		resputil.NotFoundError(c, "notification", uri.ID)
		return
	}
	resputil.Success(c, "Notification read")
}

// MarkAllRead godoc
// @Summary Mark every notification of the current user read
// @Tags notification
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[any] "number marked"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/notifications/read-all [put]
func (mgr *NotificationMgr) MarkAllRead(c *gin.Context) {
	token := util.GetToken(c)
	result := mgr.db.WithContext(c).Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", token.UserID, false).
		Update("is_read", true)
	if result.Error != nil {
		resputil.Error(c, result.Error.Error(), resputil.NotSpecified)
		return
	}
	resputil.Success(c, gin.H{"marked": result.RowsAffected})
}

// Delete godoc
// @Summary Delete one of the current user's notifications
// @Tags notification
// @Produce json
// @Security Bearer
// @Param id path int true "notification id"
// @Success 200 {object} resputil.Response[string] "ok"
// @Failure 404 {object} resputil.Response[any] "Not found"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/notifications/delete/{id} [delete]
func (mgr *NotificationMgr) Delete(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	token := util.GetToken(c)
	result := mgr.db.WithContext(c).
		Where("user_id = ?", token.UserID).
		Delete(&model.Notification{}, uri.ID)
	if result.Error != nil {
		resputil.Error(c, result.Error.Error(), resputil.NotSpecified)
		return
	}
	if result.RowsAffected == 0 {
		resputil.NotFoundError(c, "notification", uri.ID)
		return
	}
	resputil.Success(c, "Notification deleted")
}
