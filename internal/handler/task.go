package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/dsnakex/Dashboard-ELN/dao/model"
	"github.com/dsnakex/Dashboard-ELN/internal/resputil"
	"github.com/dsnakex/Dashboard-ELN/internal/util"
	"github.com/dsnakex/Dashboard-ELN/pkg/activity"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewTaskMgr)
}

type TaskMgr struct {
	name     string
	db       *gorm.DB
	recorder *activity.Recorder
}

func NewTaskMgr(conf *RegisterConfig) Manager {
	return &TaskMgr{name: "tasks", db: conf.DB, recorder: conf.Recorder}
}

func (mgr *TaskMgr) GetName() string { return mgr.name }

func (mgr *TaskMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *TaskMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/list", mgr.List)
	g.GET("/board", mgr.Board)
	g.GET("/:id", mgr.Get)
	g.POST("/create", mgr.Create)
	g.PUT("/update/:id", mgr.Update)
	g.PATCH("/:id/status", mgr.MoveStatus)
	g.DELETE("/delete/:id", mgr.Delete)
}

func (mgr *TaskMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type ListTaskReq struct {
	PageReq
	DateRangeReq
	Status     *model.TaskStatus   `form:"status" binding:"omitempty,oneof=todo in_progress review done"`
	Priority   *model.TaskPriority `form:"priority" binding:"omitempty,oneof=low medium high"`
	ProjectID  *uint               `form:"projectId"`
	AssigneeID *uint               `form:"assigneeId"`
	DueBefore  *time.Time          `form:"dueBefore" time_format:"2006-01-02T15:04:05Z07:00"`
	Search     string              `form:"search"`
}

// List godoc
// @Summary List tasks with filters and pagination
// @Tags task
// @Produce json
// @Security Bearer
// @Param status query string false "board column"
// @Param priority query string false "task priority"
// @Param projectId query int false "related project"
// @Param assigneeId query int false "assigned user"
// @Param dueBefore query string false "RFC 3339 due date upper bound"
// @Param search query string false "match title or description"
// @Success 200 {object} resputil.Response[ListResp[model.Task]] "tasks"
// @Failure 400 {object} resputil.Response[any] "Request parameter error"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/tasks/list [get]
func (mgr *TaskMgr) List(c *gin.Context) {
	var req ListTaskReq
	if err := c.ShouldBindQuery(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	q := mgr.db.WithContext(c).Model(&model.Task{})
	if req.Status != nil {
		q = q.Where("status = ?", *req.Status)
	}
	if req.Priority != nil {
		q = q.Where("priority = ?", *req.Priority)
	}
	if req.ProjectID != nil {
		q = q.Where("project_id = ?", *req.ProjectID)
	}
	if req.AssigneeID != nil {
		q = q.Where("assignee_id = ?", *req.AssigneeID)
	}
	if req.DueBefore != nil {
		q = q.Where("due_date IS NOT NULL AND due_date <= ?", *req.DueBefore)
	}
	q = applySearch(q, req.Search, "title", "description")
	q = applyDateRange(q, req.DateRangeReq)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	var tasks []model.Task
	err := q.Preload("Project").Preload("Assignee").
		Order("created_at DESC").
		Offset(req.Offset()).Limit(req.PageSize).
		Find(&tasks).Error
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	resputil.Success(c, ListResp[model.Task]{Rows: tasks, Total: total})
}

// Board godoc
// @Summary Tasks grouped by board column
// @Tags task
// @Produce json
// @Security Bearer
// @Param projectId query int false "related project"
// @Success 200 {object} resputil.Response[map[string][]model.Task] "tasks keyed by status"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/tasks/board [get]
func (mgr *TaskMgr) Board(c *gin.Context) {
	type boardReq struct {
		ProjectID *uint `form:"projectId"`
	}
	var req boardReq
	if err := c.ShouldBindQuery(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	q := mgr.db.WithContext(c).Model(&model.Task{})
	if req.ProjectID != nil {
		q = q.Where("project_id = ?", *req.ProjectID)
	}
	var tasks []model.Task
	err := q.Preload("Assignee").Order("created_at").Find(&tasks).Error
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	// every column is present even when empty
	board := map[model.TaskStatus][]model.Task{
		model.TaskTodo:       {},
		model.TaskInProgress: {},
		model.TaskReview:     {},
		model.TaskDone:       {},
	}
	for status, group := range lo.GroupBy(tasks, func(t model.Task) model.TaskStatus {
		return t.Status
	}) {
		board[status] = group
	}
	resputil.Success(c, board)
}

// Get godoc
// @Summary Fetch one task
// @Tags task
// @Produce json
// @Security Bearer
// @Param id path int true "task id"
// @Success 200 {object} resputil.Response[model.Task] "task"
// @Failure 404 {object} resputil.Response[any] "Not found"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/tasks/{id} [get]
func (mgr *TaskMgr) Get(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	var task model.Task
	err := mgr.db.WithContext(c).
		Preload("Project").Preload("Assignee").
		First(&task, uri.ID).Error
	if err != nil {
		if isNotFound(err) {
			resputil.NotFoundError(c, "task", uri.ID)
			return
		}
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	resputil.Success(c, task)
}

type CreateTaskReq struct {
	Title       string              `json:"title" binding:"required"`
	Description *string             `json:"description"`
	Status      *model.TaskStatus   `json:"status" binding:"omitempty,oneof=todo in_progress review done"`
	Priority    *model.TaskPriority `json:"priority" binding:"omitempty,oneof=low medium high"`
	ProjectID   *uint               `json:"projectId"`
	AssigneeID  *uint               `json:"assigneeId"`
	DueDate     *time.Time          `json:"dueDate"`
}

// Create godoc
// @Summary Create a task
// @Tags task
// @Accept json
// @Produce json
// @Security Bearer
// @Param req body CreateTaskReq true "task"
// @Success 200 {object} resputil.Response[model.Task] "created task"
// @Failure 400 {object} resputil.Response[any] "Request parameter error"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/tasks/create [post]
func (mgr *TaskMgr) Create(c *gin.Context) {
	var req CreateTaskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	token := util.GetToken(c)
	task := model.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      model.TaskTodo,
		Priority:    model.PriorityMedium,
		ProjectID:   req.ProjectID,
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
		UserID:      token.UserID,
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if err := mgr.db.WithContext(c).Create(&task).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	recordEntity(c, mgr.recorder, model.ActionCreated, model.EntityTask, task.ID, nil)
	resputil.Success(c, task)
}

type UpdateTaskReq struct {
	Title       *string             `json:"title"`
	Description *string             `json:"description"`
	Status      *model.TaskStatus   `json:"status" binding:"omitempty,oneof=todo in_progress review done"`
	Priority    *model.TaskPriority `json:"priority" binding:"omitempty,oneof=low medium high"`
	ProjectID   *uint               `json:"projectId"`
	AssigneeID  *uint               `json:"assigneeId"`
	DueDate     *time.Time          `json:"dueDate"`
}

// Update godoc
// @Summary Update task fields
// @Tags task
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "task id"
// @Param req body UpdateTaskReq true "fields to change"
// @Success 200 {object} resputil.Response[model.Task] "updated task"
// @Failure 400 {object} resputil.Response[any] "Request parameter error"
// @Failure 404 {object} resputil.Response[any] "Not found"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/tasks/update/{id} [put]
func (mgr *TaskMgr) Update(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	var req UpdateTaskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	var task model.Task
	if err := mgr.db.WithContext(c).First(&task, uri.ID).Error; err != nil {
		if isNotFound(err) {
			resputil.NotFoundError(c, "task", uri.ID)
			return
		}
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	before := task.Status
	updates := map[string]any{}
	if req.Title != nil {
		updates["title"] = *req.Title
		task.Title = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
		task.Description = req.Description
	}
	if req.Status != nil {
		updates["status"] = *req.Status
		task.Status = *req.Status
	}
	if req.Priority != nil {
		updates["priority"] = *req.Priority
		task.Priority = *req.Priority
	}
	if req.ProjectID != nil {
		updates["project_id"] = *req.ProjectID
		task.ProjectID = req.ProjectID
	}
	if req.AssigneeID != nil {
		updates["assignee_id"] = *req.AssigneeID
		task.AssigneeID = req.AssigneeID
	}
	if req.DueDate != nil {
		updates["due_date"] = *req.DueDate
		task.DueDate = req.DueDate
	}
	if len(updates) > 0 {
		if err := mgr.db.WithContext(c).Model(&task).Updates(updates).Error; err != nil {
			resputil.Error(c, err.Error(), resputil.NotSpecified)
			return
		}
		changes := activity.Diff(
			map[string]any{"status": before},
			map[string]any{"status": task.Status},
		)
		recordEntity(c, mgr.recorder, model.ActionUpdated, model.EntityTask, task.ID, changes)
	}
	resputil.Success(c, task)
}

type MoveTaskReq struct {
	Status model.TaskStatus `json:"status" binding:"required,oneof=todo in_progress review done"`
}

// MoveStatus godoc
// @Summary Move a task to another board column
// @Tags task
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "task id"
// @Param req body MoveTaskReq true "target column"
// @Success 200 {object} resputil.Response[string] "ok"
// @Failure 400 {object} resputil.Response[any] "Request parameter error"
// @Failure 404 {object} resputil.Response[any] "Not found"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/tasks/{id}/status [patch]
func (mgr *TaskMgr) MoveStatus(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	var req MoveTaskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	result := mgr.db.WithContext(c).Model(&model.Task{}).
		Where("id = ?", uri.ID).
		Update("status", req.Status)
	if result.Error != nil {
		resputil.Error(c, result.Error.Error(), resputil.NotSpecified)
		return
	}
	if result.RowsAffected == 0 {
		resputil.NotFoundError(c, "task", uri.ID)
		return
	}
	recordEntity(c, mgr.recorder, model.ActionUpdated, model.EntityTask, uri.ID,
		map[string]any{"status": activity.FieldChange{To: req.Status}})
	resputil.Success(c, "Task moved")
}

// Delete godoc
// @Summary Delete a task permanently
// @Tags task
// @Produce json
// @Security Bearer
// @Param id path int true "task id"
// @Success 200 {object} resputil.Response[string] "ok"
// @Failure 404 {object} resputil.Response[any] "Not found"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/tasks/delete/{id} [delete]
func (mgr *TaskMgr) Delete(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	result := mgr.db.WithContext(c).Unscoped().Delete(&model.Task{}, uri.ID)
	if result.Error != nil {
		resputil.Error(c, result.Error.Error(), resputil.NotSpecified)
		return
	}
	if result.RowsAffected == 0 {
		resputil.NotFoundError(c, "task", uri.ID)
		return
	}
	recordEntity(c, mgr.recorder, model.ActionDeleted, model.EntityTask, uri.ID, nil)
	resputil.Success(c, "Task deleted")
}
