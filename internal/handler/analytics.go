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
	Registers = append(Registers, NewAnalyticsMgr)
}

// AnalyticsMgr fetches row projections and hands them to the stateless
// reducers; no aggregation happens in SQL so the formulas live in one place.
type AnalyticsMgr struct {
	name string
	db   *gorm.DB
}

func NewAnalyticsMgr(conf *RegisterConfig) Manager {
	return &AnalyticsMgr{name: "analytics", db: conf.DB}
}

func (mgr *AnalyticsMgr) GetName() string { return mgr.name }

func (mgr *AnalyticsMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *AnalyticsMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("", mgr.Overview)
}

func (mgr *AnalyticsMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type AnalyticsResp struct {
	Summary            analytics.Summary           `json:"summary"`
	StatusDistribution []analytics.StatusCount     `json:"statusDistribution"`
	MonthlyTrends      []analytics.MonthlyTrend    `json:"monthlyTrends"`
	SampleTypes        []analytics.TypeCount       `json:"sampleTypes"`
	ProtocolVisibility []analytics.VisibilityCount `json:"protocolVisibility"`
}

// Overview godoc
// @Summary Lab-wide analytics: summary numbers, distributions and trends
// @Tags analytics
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[AnalyticsResp] "analytics"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/analytics [get]
func (mgr *AnalyticsMgr) Overview(c *gin.Context) {
	var experiments []analytics.ExperimentRow
	err := mgr.db.WithContext(c).Model(&model.Experiment{}).
		Select("status", "created_at", "signed_at").
		Find(&experiments).Error
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	var projects []analytics.ProjectRow
	err = mgr.db.WithContext(c).Model(&model.Project{}).
		Select("status").Find(&projects).Error
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	var protocols []analytics.ProtocolRow
	err = mgr.db.WithContext(c).Model(&model.Protocol{}).
		Select("visibility").Where("is_active = ?", true).
		Find(&protocols).Error
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	var samples []analytics.SampleRow
	err = mgr.db.WithContext(c).Model(&model.Sample{}).
		Select("sample_type").Where("is_active = ?", true).
		Find(&samples).Error
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	now := time.Now()
	resputil.Success(c, AnalyticsResp{
		Summary:            analytics.Summarize(now, experiments, projects, protocols, samples),
		StatusDistribution: analytics.StatusDistribution(experiments),
		MonthlyTrends:      analytics.MonthlyTrends(now, experiments),
		SampleTypes:        analytics.SampleTypeCounts(samples),
		ProtocolVisibility: analytics.VisibilityCounts(protocols),
	})
}
