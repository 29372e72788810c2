package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dsnakex/Dashboard-ELN/dao/model"
	"github.com/dsnakex/Dashboard-ELN/internal/resputil"
	"github.com/dsnakex/Dashboard-ELN/internal/util"
	"github.com/dsnakex/Dashboard-ELN/pkg/activity"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewProjectMgr)
}

type ProjectMgr struct {
	name     string
	db       *gorm.DB
	recorder *activity.Recorder
}

func NewProjectMgr(conf *RegisterConfig) Manager {
	return &ProjectMgr{name: "projects", db: conf.DB, recorder: conf.Recorder}
}

func (mgr *ProjectMgr) GetName() string { return mgr.name }

func (mgr *ProjectMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *ProjectMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/list", mgr.List)
	g.GET("/:id", mgr.Get)
	g.POST("/create", mgr.Create)
	g.PUT("/update/:id", mgr.Update)
	g.DELETE("/delete/:id", mgr.Delete)
}

func (mgr *ProjectMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type ListProjectReq struct {
	PageReq
	DateRangeReq
	Status *model.ProjectStatus `form:"status" binding:"omitempty,oneof=active completed archived"`
	Search string               `form:"search"`
}

type ProjectResp struct {
	model.Project
	StudyCount int64 `json:"studyCount"`
}

// List godoc
// @Summary List projects with filters and pagination
// @Tags project
// @Produce json
// @Security Bearer
// @Param status query string false "project status"
// @Param search query string false "match name or description"
// @Success 200 {object} resputil.Response[ListResp[ProjectResp]] "projects"
// @Failure 400 {object} resputil.Response[any] "Request parameter error"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/projects/list [get]
func (mgr *ProjectMgr) List(c *gin.Context) {
	var req ListProjectReq
	if err := c.ShouldBindQuery(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	q := mgr.db.WithContext(c).Model(&model.Project{})
	if req.Status != nil {
		q = q.Where("status = ?", *req.Status)
	}
	q = applySearch(q, req.Search, "name", "description")
	q = applyDateRange(q, req.DateRangeReq)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	var projects []model.Project
	err := q.Order("created_at DESC").
		Offset(req.Offset()).Limit(req.PageSize).
		Find(&projects).Error
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	rows := make([]ProjectResp, 0, len(projects))
	for i := range projects {
		var studyCount int64
		err := mgr.db.WithContext(c).Model(&model.Study{}).
			Where("project_id = ?", projects[i].ID).Count(&studyCount).Error
		if err != nil {
			resputil.Error(c, err.Error(), resputil.NotSpecified)
			return
		}
		rows = append(rows, ProjectResp{Project: projects[i], StudyCount: studyCount})
	}
	resputil.Success(c, ListResp[ProjectResp]{Rows: rows, Total: total})
}

// Get godoc
// @Summary Fetch one project with its studies
// @Tags project
// @Produce json
// @Security Bearer
// @Param id path int true "project id"
// @Success 200 {object} resputil.Response[model.Project] "project"
// @Failure 404 {object} resputil.Response[any] "Not found"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/projects/{id} [get]
func (mgr *ProjectMgr) Get(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	var project model.Project
	err := mgr.db.WithContext(c).Preload("Studies").First(&project, uri.ID).Error
	if err != nil {
		if isNotFound(err) {
			resputil.NotFoundError(c, "project", uri.ID)
			return
		}
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	resputil.Success(c, project)
}

type CreateProjectReq struct {
	Name        string               `json:"name" binding:"required"`
	Description *string              `json:"description"`
	Status      *model.ProjectStatus `json:"status" binding:"omitempty,oneof=active completed archived"`
	StartDate   *time.Time           `json:"startDate"`
	EndDate     *time.Time           `json:"endDate"`
}

// Create godoc
// @Summary Create a project
// @Tags project
// @Accept json
// @Produce json
// @Security Bearer
// @Param req body CreateProjectReq true "project"
// @Success 200 {object} resputil.Response[model.Project] "created project"
// @Failure 400 {object} resputil.Response[any] "Request parameter error"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/projects/create [post]
func (mgr *ProjectMgr) Create(c *gin.Context) {
	var req CreateProjectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	token := util.GetToken(c)
	project := model.Project{
		Name:        req.Name,
		Description: req.Description,
		Status:      model.ProjectActive,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		CreatedBy:   &token.UserID,
	}
	if req.Status != nil {
		project.Status = *req.Status
	}
	if err := mgr.db.WithContext(c).Create(&project).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	recordEntity(c, mgr.recorder, model.ActionCreated, model.EntityProject, project.ID, nil)
	resputil.Success(c, project)
}

type UpdateProjectReq struct {
	Name        *string              `json:"name"`
	Description *string              `json:"description"`
	Status      *model.ProjectStatus `json:"status" binding:"omitempty,oneof=active completed archived"`
	StartDate   *time.Time           `json:"startDate"`
	EndDate     *time.Time           `json:"endDate"`
}

// Update godoc
// @Summary Update project fields
// @Tags project
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "project id"
// @Param req body UpdateProjectReq true "fields to change"
// @Success 200 {object} resputil.Response[model.Project] "updated project"
// @Failure 400 {object} resputil.Response[any] "Request parameter error"
// @Failure 404 {object} resputil.Response[any] "Not found"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/projects/update/{id} [put]
func (mgr *ProjectMgr) Update(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	var req UpdateProjectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	var project model.Project
	if err := mgr.db.WithContext(c).First(&project, uri.ID).Error; err != nil {
		if isNotFound(err) {
			resputil.NotFoundError(c, "project", uri.ID)
			return
		}
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	before := project
	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
		project.Name = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
		project.Description = req.Description
	}
	if req.Status != nil {
		updates["status"] = *req.Status
		project.Status = *req.Status
	}
	if req.StartDate != nil {
		updates["start_date"] = *req.StartDate
		project.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		updates["end_date"] = *req.EndDate
		project.EndDate = req.EndDate
	}
	if len(updates) > 0 {
		if err := mgr.db.WithContext(c).Model(&project).Updates(updates).Error; err != nil {
			resputil.Error(c, err.Error(), resputil.NotSpecified)
			return
		}
		changes := activity.Diff(
			map[string]any{"name": before.Name, "status": before.Status},
			map[string]any{"name": project.Name, "status": project.Status},
		)
		recordEntity(c, mgr.recorder, model.ActionUpdated, model.EntityProject, project.ID, changes)
	}
	resputil.Success(c, project)
}

// Delete godoc
// @Summary Delete a project and everything under it
// @Description Removal is permanent. Studies, experiments, tasks and
// @Description comments that hang off the project go with it.
// @Tags project
// @Produce json
// @Security Bearer
// @Param id path int true "project id"
// @Success 200 {object} resputil.Response[string] "ok"
// @Failure 404 {object} resputil.Response[any] "Not found"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/projects/delete/{id} [delete]
func (mgr *ProjectMgr) Delete(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	err := deleteCascade(mgr.db.WithContext(c), model.EntityProject, uri.ID)
	if err != nil {
		if isNotFound(err) {
			resputil.NotFoundError(c, "project", uri.ID)
			return
		}
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	recordEntity(c, mgr.recorder, model.ActionDeleted, model.EntityProject, uri.ID, nil)
	resputil.Success(c, "Project deleted")
}
