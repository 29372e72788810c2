package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dsnakex/Dashboard-ELN/dao/model"
	"github.com/dsnakex/Dashboard-ELN/internal/resputil"
	"github.com/dsnakex/Dashboard-ELN/pkg/analytics"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewDashboardMgr)
}

type DashboardMgr struct {
	name string
	db   *gorm.DB
}

func NewDashboardMgr(conf *RegisterConfig) Manager {
	return &DashboardMgr{name: "dashboard", db: conf.DB}
}

func (mgr *DashboardMgr) GetName() string { return mgr.name }

func (mgr *DashboardMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *DashboardMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/kpis", mgr.KPIs)
	g.GET("/recent-experiments", mgr.RecentExperiments)
	g.GET("/recent-activity", mgr.RecentActivity)
	g.GET("/projects-overview", mgr.ProjectsOverview)
	g.GET("/weekly-activity", mgr.WeeklyActivity)
}

func (mgr *DashboardMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type KPIResp struct {
	TotalExperiments            int64 `json:"totalExperiments"`
	ExperimentsInProgress       int64 `json:"experimentsInProgress"`
	ExperimentsSignedLast30Days int64 `json:"experimentsSignedLast30Days"`
	ActiveProtocols             int64 `json:"activeProtocols"`
	SamplesAvailable            int64 `json:"samplesAvailable"`
	SamplesExpiringSoon         int64 `json:"samplesExpiringSoon"`
	EquipmentOperational        int64 `json:"equipmentOperational"`
	EquipmentMaintenanceDue     int64 `json:"equipmentMaintenanceDue"`
	OpenTasks                   int64 `json:"openTasks"`
	ActiveProjects              int64 `json:"activeProjects"`
}

// KPIs godoc
// @Summary Headline indicator counts for the dashboard
// @Description Expiring soon means within 30 days; maintenance due means
// @Description within 7 days.
// @Tags dashboard
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[KPIResp] "indicators"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/dashboard/kpis [get]
func (mgr *DashboardMgr) KPIs(c *gin.Context) {
	now := time.Now()
	var resp KPIResp

	counts := []struct {
		dst   *int64
		query *gorm.DB
	}{
		{&resp.TotalExperiments, mgr.db.WithContext(c).Model(&model.Experiment{})},
		{&resp.ExperimentsInProgress, mgr.db.WithContext(c).Model(&model.Experiment{}).
			Where("status = ?", model.ExperimentInProgress)},
		{&resp.ExperimentsSignedLast30Days, mgr.db.WithContext(c).Model(&model.Experiment{}).
			Where("status = ? AND signed_at >= ?", model.ExperimentSigned, now.AddDate(0, 0, -30))},
		{&resp.ActiveProtocols, mgr.db.WithContext(c).Model(&model.Protocol{}).
			Where("is_active = ?", true)},
		{&resp.SamplesAvailable, mgr.db.WithContext(c).Model(&model.Sample{}).
			Where("is_active = ? AND status = ?", true, model.SampleAvailable)},
		{&resp.SamplesExpiringSoon, mgr.db.WithContext(c).Model(&model.Sample{}).
			Where("is_active = ? AND status = ? AND expiration_date BETWEEN ? AND ?",
				true, model.SampleAvailable, now, now.AddDate(0, 0, 30))},
		{&resp.EquipmentOperational, mgr.db.WithContext(c).Model(&model.Equipment{}).
			Where("is_active = ? AND status = ?", true, model.EquipmentOperational)},
		{&resp.EquipmentMaintenanceDue, mgr.db.WithContext(c).Model(&model.Equipment{}).
			Where("is_active = ? AND status = ? AND next_maintenance_date <= ?",
				true, model.EquipmentOperational, now.AddDate(0, 0, 7))},
		{&resp.OpenTasks, mgr.db.WithContext(c).Model(&model.Task{}).
			Where("status <> ?", model.TaskDone)},
		{&resp.ActiveProjects, mgr.db.WithContext(c).Model(&model.Project{}).
			Where("status = ?", model.ProjectActive)},
	}
	for _, cnt := range counts {
		if err := cnt.query.Count(cnt.dst).Error; err != nil {
			resputil.Error(c, err.Error(), resputil.NotSpecified)
			return
		}
	}
	resputil.Success(c, resp)
}

// RecentExperiments godoc
// @Summary The ten most recently updated experiments
// @Tags dashboard
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[[]model.Experiment] "experiments"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/dashboard/recent-experiments [get]
func (mgr *DashboardMgr) RecentExperiments(c *gin.Context) {
	var experiments []model.Experiment
	err := mgr.db.WithContext(c).
		Preload("Study").Preload("Study.Project").
		Order("updated_at DESC").Limit(10).
		Find(&experiments).Error
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	resputil.Success(c, experiments)
}

// RecentActivity godoc
// @Summary The twenty most recent audit rows
// @Tags dashboard
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[[]model.ActivityLogEntry] "activity"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/dashboard/recent-activity [get]
func (mgr *DashboardMgr) RecentActivity(c *gin.Context) {
	var entries []model.ActivityLogEntry
	err := mgr.db.WithContext(c).
		Preload("User").Order("created_at DESC").Limit(20).
		Find(&entries).Error
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	resputil.Success(c, entries)
}

type ProjectOverview struct {
	model.Project
	StudyCount      int64 `json:"studyCount"`
	ExperimentCount int64 `json:"experimentCount"`
	SignedCount     int64 `json:"signedCount"`
}

// ProjectsOverview godoc
// @Summary Active projects with their experiment progress
// @Tags dashboard
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[[]ProjectOverview] "projects"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/dashboard/projects-overview [get]
func (mgr *DashboardMgr) ProjectsOverview(c *gin.Context) {
	var projects []model.Project
	err := mgr.db.WithContext(c).
		Where("status = ?", model.ProjectActive).
		Order("updated_at DESC").Limit(10).
		Find(&projects).Error
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	out := make([]ProjectOverview, 0, len(projects))
	for i := range projects {
		row := ProjectOverview{Project: projects[i]}
		studyIDs := mgr.db.Model(&model.Study{}).Select("id").
			Where("project_id = ?", projects[i].ID)

		err := mgr.db.WithContext(c).Model(&model.Study{}).
			Where("project_id = ?", projects[i].ID).Count(&row.StudyCount).Error
		if err != nil {
			resputil.Error(c, err.Error(), resputil.NotSpecified)
			return
		}
		err = mgr.db.WithContext(c).Model(&model.Experiment{}).
			Where("study_id IN (?)", studyIDs).Count(&row.ExperimentCount).Error
		if err != nil {
			resputil.Error(c, err.Error(), resputil.NotSpecified)
			return
		}
		err = mgr.db.WithContext(c).Model(&model.Experiment{}).
			Where("study_id IN (?) AND status = ?", studyIDs, model.ExperimentSigned).
			Count(&row.SignedCount).Error
		if err != nil {
			resputil.Error(c, err.Error(), resputil.NotSpecified)
			return
		}
		out = append(out, row)
	}
	resputil.Success(c, out)
}

// WeeklyActivity godoc
// @Summary Audit row counts per day over the trailing week
// @Tags dashboard
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[[]analytics.DayActivity] "seven day buckets"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/dashboard/weekly-activity [get]
func (mgr *DashboardMgr) WeeklyActivity(c *gin.Context) {
	now := time.Now()
	weekStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, -6)

	var timestamps []time.Time
	err := mgr.db.WithContext(c).Model(&model.ActivityLogEntry{}).
		Where("created_at >= ?", weekStart).
		Pluck("created_at", &timestamps).Error
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	resputil.Success(c, analytics.WeeklyActivity(now, timestamps))
}
