package handler

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dsnakex/Dashboard-ELN/dao/model"
	"github.com/dsnakex/Dashboard-ELN/internal/resputil"
	"github.com/dsnakex/Dashboard-ELN/internal/util"
	"github.com/dsnakex/Dashboard-ELN/pkg/activity"
	"github.com/dsnakex/Dashboard-ELN/pkg/blob"
	"github.com/dsnakex/Dashboard-ELN/pkg/logutils"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewFileMgr)
}

type FileMgr struct {
	name     string
	db       *gorm.DB
	blob     blob.Store
	recorder *activity.Recorder
}

func NewFileMgr(conf *RegisterConfig) Manager {
	return &FileMgr{name: "files", db: conf.DB, blob: conf.Blob, recorder: conf.Recorder}
}

func (mgr *FileMgr) GetName() string { return mgr.name }

func (mgr *FileMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *FileMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/list", mgr.List)
	g.GET("/:id", mgr.Get)
	g.GET("/:id/download", mgr.Download)
	g.POST("/upload", mgr.Upload)
	g.PUT("/update/:id", mgr.Update)
	g.DELETE("/delete/:id", mgr.Delete)
}

func (mgr *FileMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type ListFileReq struct {
	PageReq
	EntityType *model.EntityType `form:"entityType"`
	EntityID   *uint             `form:"entityId"`
	FolderPath *string           `form:"folderPath"`
	Search     string            `form:"search"`
}

// List godoc
// @Summary List active files, optionally filtered by entity or folder
// @Tags file
// @Produce json
// @Security Bearer
// @Param entityType query string false "attached entity type"
// @Param entityId query int false "attached entity id"
// @Param folderPath query string false "virtual folder"
// @Param search query string false "match file name"
// @Success 200 {object} resputil.Response[ListResp[model.File]] "files"
// @Failure 400 {object} resputil.Response[any] "Request parameter error"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/files/list [get]
func (mgr *FileMgr) List(c *gin.Context) {
	var req ListFileReq
	if err := c.ShouldBindQuery(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	if req.EntityType != nil && !req.EntityType.Valid() {
		resputil.BadRequestError(c, "unknown entity type")
		return
	}

	q := mgr.db.WithContext(c).Model(&model.File{}).Where("is_active = ?", true)
	if req.EntityType != nil {
		q = q.Where("entity_type = ?", *req.EntityType)
	}
	if req.EntityID != nil {
		q = q.Where("entity_id = ?", *req.EntityID)
	}
	if req.FolderPath != nil {
		q = q.Where("folder_path = ?", *req.FolderPath)
	}
	q = applySearch(q, req.Search, "name")

	var total int64
	if err := q.Count(&total).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	var files []model.File
	err := q.Order("created_at DESC").
		Offset(req.Offset()).Limit(req.PageSize).
		Find(&files).Error
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	resputil.Success(c, ListResp[model.File]{Rows: files, Total: total})
}

// Get godoc
// @Summary Fetch one file record
// @Tags file
// @Produce json
// @Security Bearer
// @Param id path int true "file id"
// @Success 200 {object} resputil.Response[model.File] "file"
// @Failure 404 {object} resputil.Response[any] "Not found"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/files/{id} [get]
func (mgr *FileMgr) Get(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	var file model.File
	if err := mgr.db.WithContext(c).First(&file, uri.ID).Error; err != nil {
		if isNotFound(err) {
			resputil.NotFoundError(c, "file", uri.ID)
			return
		}
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	resputil.Success(c, file)
}

// Upload godoc
// @Summary Upload a file and attach it to an entity
// @Description The blob goes to the object store first, then the record is
// @Description inserted. If the insert fails the blob is deleted so the
// @Description store holds no orphans.
// @Tags file
// @Accept mpfd
// @Produce json
// @Security Bearer
// @Param file formData file true "content"
// @Param entityType formData string false "attached entity type"
// @Param entityId formData int false "attached entity id"
// @Param folderPath formData string false "virtual folder, defaults to /"
// @Param description formData string false "description"
// @Success 200 {object} resputil.Response[model.File] "created file record"
// @Failure 400 {object} resputil.Response[any] "Request parameter error"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/files/upload [post]
func (mgr *FileMgr) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	var entityType *model.EntityType
	if v := c.PostForm("entityType"); v != "" {
		et := model.EntityType(v)
		if !et.Valid() {
			resputil.BadRequestError(c, "unknown entity type")
			return
		}
		entityType = &et
	}
	var entityID *uint
	if v := c.PostForm("entityId"); v != "" {
		var id uint
		if _, err := fmt.Sscanf(v, "%d", &id); err != nil {
			resputil.BadRequestError(c, "entityId must be an integer")
			return
		}
		entityID = &id
	}
	folderPath := c.PostForm("folderPath")
	if folderPath == "" {
		folderPath = "/"
	}
	if !strings.HasPrefix(folderPath, "/") {
		resputil.BadRequestError(c, "folderPath must start with /")
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	defer src.Close()

	token := util.GetToken(c)
	key := fmt.Sprintf("files/%s%s", uuid.NewString(), filepath.Ext(fileHeader.Filename))
	contentType := fileHeader.Header.Get("Content-Type")
	if _, err := mgr.blob.Put(c, key, src, contentType); err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	size := fileHeader.Size
	file := model.File{
		Name:       fileHeader.Filename,
		FilePath:   key,
		FileSize:   &size,
		FolderPath: folderPath,
		EntityType: entityType,
		EntityID:   entityID,
		UploadedBy: &token.UserID,
		IsActive:   true,
	}
	if contentType != "" {
		file.MimeType = &contentType
	}
	if desc := c.PostForm("description"); desc != "" {
		file.Description = &desc
	}
	if err := mgr.db.WithContext(c).Create(&file).Error; err != nil {
		// compensate so the store holds no orphaned blob
		if delErr := mgr.blob.Delete(c, key); delErr != nil {
			logutils.Log.Warnf("upload: compensating delete of %s: %v", key, delErr)
		}
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	recordEntity(c, mgr.recorder, model.ActionCreated, model.EntityFile, file.ID, nil)
	resputil.Success(c, file)
}

// Download godoc
// @Summary Stream a file's content
// @Tags file
// @Produce octet-stream
// @Security Bearer
// @Param id path int true "file id"
// @Success 200 {file} binary "content"
// @Failure 404 {object} resputil.Response[any] "Not found"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/files/{id}/download [get]
func (mgr *FileMgr) Download(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	var file model.File
	if err := mgr.db.WithContext(c).First(&file, uri.ID).Error; err != nil {
		if isNotFound(err) {
			resputil.NotFoundError(c, "file", uri.ID)
			return
		}
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	info, rc, err := mgr.blob.Get(c, file.FilePath)
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	defer rc.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	c.Header("Content-Type", contentType)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		logutils.Log.Warnf("download: streaming %s: %v", file.FilePath, err)
	}
}

type UpdateFileReq struct {
	Name        *string  `json:"name"`
	FolderPath  *string  `json:"folderPath"`
	Description *string  `json:"description"`
	Tags        []string `json:"tags"`
}

// Update godoc
// @Summary Update file metadata
// @Tags file
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "file id"
// @Param req body UpdateFileReq true "fields to change"
// @Success 200 {object} resputil.Response[model.File] "updated file"
// @Failure 400 {object} resputil.Response[any] "Request parameter error"
// @Failure 404 {object} resputil.Response[any] "Not found"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/files/update/{id} [put]
func (mgr *FileMgr) Update(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	var req UpdateFileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	var file model.File
	if err := mgr.db.WithContext(c).First(&file, uri.ID).Error; err != nil {
		if isNotFound(err) {
			resputil.NotFoundError(c, "file", uri.ID)
			return
		}
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	changed := false
	if req.Name != nil {
		file.Name = *req.Name
		changed = true
	}
	if req.FolderPath != nil {
		if !strings.HasPrefix(*req.FolderPath, "/") {
			resputil.BadRequestError(c, "folderPath must start with /")
			return
		}
		file.FolderPath = *req.FolderPath
		changed = true
	}
	if req.Description != nil {
		file.Description = req.Description
		changed = true
	}
	if req.Tags != nil {
		file.Tags = req.Tags
		changed = true
	}
	if changed {
		if err := mgr.db.WithContext(c).Save(&file).Error; err != nil {
			resputil.Error(c, err.Error(), resputil.NotSpecified)
			return
		}
		recordEntity(c, mgr.recorder, model.ActionUpdated, model.EntityFile, file.ID, nil)
	}
	resputil.Success(c, file)
}

// Delete godoc
// @Summary Deactivate a file and drop its blob
// @Description The record survives deactivated for the audit trail; the
// @Description stored content is removed.
// @Tags file
// @Produce json
// @Security Bearer
// @Param id path int true "file id"
// @Success 200 {object} resputil.Response[string] "ok"
// @Failure 404 {object} resputil.Response[any] "Not found"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/files/delete/{id} [delete]
func (mgr *FileMgr) Delete(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	var file model.File
	if err := mgr.db.WithContext(c).First(&file, uri.ID).Error; err != nil {
		if isNotFound(err) {
			resputil.NotFoundError(c, "file", uri.ID)
			return
		}
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	if _, err := deactivate(mgr.db.WithContext(c), model.EntityFile, &model.File{}, file.ID); err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	if err := mgr.blob.Delete(c, file.FilePath); err != nil {
		logutils.Log.Warnf("delete: removing blob %s: %v", file.FilePath, err)
	}
	recordEntity(c, mgr.recorder, model.ActionDeleted, model.EntityFile, uri.ID, nil)
	resputil.Success(c, "File deleted")
}
