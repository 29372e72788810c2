package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dsnakex/Dashboard-ELN/dao/model"
	"github.com/dsnakex/Dashboard-ELN/internal/resputil"
	"github.com/dsnakex/Dashboard-ELN/internal/util"
	"github.com/dsnakex/Dashboard-ELN/pkg/activity"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewCommentMgr)
}

type CommentMgr struct {
	name     string
	db       *gorm.DB
	recorder *activity.Recorder
}

func NewCommentMgr(conf *RegisterConfig) Manager {
	return &CommentMgr{name: "comments", db: conf.DB, recorder: conf.Recorder}
}

func (mgr *CommentMgr) GetName() string { return mgr.name }

func (mgr *CommentMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *CommentMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/list", mgr.List)
	g.POST("/create", mgr.Create)
	g.PUT("/update/:id", mgr.Update)
	g.DELETE("/delete/:id", mgr.Delete)
}

func (mgr *CommentMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type ListCommentReq struct {
	PageReq
	EntityType model.EntityType `form:"entityType" binding:"required"`
	EntityID   uint             `form:"entityId" binding:"required"`
}

// List godoc
// @Summary List comments on one entity, oldest first
// @Tags comment
// @Produce json
// @Security Bearer
// @Param entityType query string true "entity type"
// @Param entityId query int true "entity id"
// @Success 200 {object} resputil.Response[ListResp[model.Comment]] "comments"
// @Failure 400 {object} resputil.Response[any] "Request parameter error"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/comments/list [get]
func (mgr *CommentMgr) List(c *gin.Context) {
	var req ListCommentReq
	if err := c.ShouldBindQuery(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	if !req.EntityType.Valid() {
		resputil.BadRequestError(c, "unknown entity type")
		return
	}

	q := mgr.db.WithContext(c).Model(&model.Comment{}).
		Where("entity_type = ? AND entity_id = ?", req.EntityType, req.EntityID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	var comments []model.Comment
	err := q.Preload("User").Order("created_at").
		Offset(req.Offset()).Limit(req.PageSize).
		Find(&comments).Error
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	resputil.Success(c, ListResp[model.Comment]{Rows: comments, Total: total})
}

type CreateCommentReq struct {
	EntityType model.EntityType `json:"entityType" binding:"required"`
	EntityID   uint             `json:"entityId" binding:"required"`
	Content    string           `json:"content" binding:"required"`
}

// Create godoc
// @Summary Comment on an entity
// @Tags comment
// @Accept json
// @Produce json
// @Security Bearer
// @Param req body CreateCommentReq true "comment"
// @Success 200 {object} resputil.Response[model.Comment] "created comment"
// @Failure 400 {object} resputil.Response[any] "Request parameter error"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/comments/create [post]
func (mgr *CommentMgr) Create(c *gin.Context) {
	var req CreateCommentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	if !req.EntityType.Valid() {
		resputil.BadRequestError(c, "unknown entity type")
		return
	}

	token := util.GetToken(c)
	comment := model.Comment{
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		Content:    req.Content,
		UserID:     token.UserID,
	}
	if err := mgr.db.WithContext(c).Create(&comment).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	recordEntity(c, mgr.recorder, model.ActionCreated, model.EntityComment, comment.ID, nil)
	resputil.Success(c, comment)
}

type UpdateCommentReq struct {
	Content string `json:"content" binding:"required"`
}

// Update godoc
// @Summary Edit a comment
// @Description Only the author can edit their comment.
// @Tags comment
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "comment id"
// @Param req body UpdateCommentReq true "new content"
// @Success 200 {object} resputil.Response[model.Comment] "updated comment"
// @Failure 400 {object} resputil.Response[any] "Request parameter error"
// @Failure 403 {object} resputil.Response[any] "Not the author"
// @Failure 404 {object} resputil.Response[any] "Not found"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/comments/update/{id} [put]
func (mgr *CommentMgr) Update(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	var req UpdateCommentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	var comment model.Comment
	if err := mgr.db.WithContext(c).First(&comment, uri.ID).Error; err != nil {
		if isNotFound(err) {
			resputil.NotFoundError(c, "comment", uri.ID)
			return
		}
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	token := util.GetToken(c)
	if comment.UserID != token.UserID && token.Role != model.RoleAdmin {
		resputil.HTTPError(c, http.StatusForbidden,
			"only the author can edit this comment", resputil.UserNotAllowed)
		return
	}

	comment.Content = req.Content
	if err := mgr.db.WithContext(c).Model(&comment).Update("content", req.Content).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	recordEntity(c, mgr.recorder, model.ActionUpdated, model.EntityComment, comment.ID, nil)
	resputil.Success(c, comment)
}

// Delete godoc
// @Summary Delete a comment
// @Description Only the author or an admin can delete a comment.
// @Tags comment
// @Produce json
// @Security Bearer
// @Param id path int true "comment id"
// @Success 200 {object} resputil.Response[string] "ok"
// @Failure 403 {object} resputil.Response[any] "Not the author"
// @Failure 404 {object} resputil.Response[any] "Not found"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/comments/delete/{id} [delete]
func (mgr *CommentMgr) Delete(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	var comment model.Comment
	if err := mgr.db.WithContext(c).First(&comment, uri.ID).Error; err != nil {
		if isNotFound(err) {
			resputil.NotFoundError(c, "comment", uri.ID)
			return
		}
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	token := util.GetToken(c)
	if comment.UserID != token.UserID && token.Role != model.RoleAdmin {
		resputil.HTTPError(c, http.StatusForbidden,
			"only the author can delete this comment", resputil.UserNotAllowed)
		return
	}

	if err := mgr.db.WithContext(c).Unscoped().Delete(&comment).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	recordEntity(c, mgr.recorder, model.ActionDeleted, model.EntityComment, uri.ID, nil)
	resputil.Success(c, "Comment deleted")
}
