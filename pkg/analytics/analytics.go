// Package analytics contains the stateless reducers behind the dashboard
// and analytics endpoints. Everything operates on already-fetched row
// projections; nothing here talks to the store. All rate and average
// computations guard the zero-denominator case and return 0.
package analytics

import (
	"math"
	"time"

	"github.com/dsnakex/Dashboard-ELN/dao/model"
)

// ExperimentRow is the projection the reducers need from an experiment.
type ExperimentRow struct {
	Status    model.ExperimentStatus
	CreatedAt time.Time
	SignedAt  *time.Time
}

// ProjectRow is the projection of a project.
type ProjectRow struct {
	Status model.ProjectStatus
}

// ProtocolRow is the projection of a protocol.
type ProtocolRow struct {
	Visibility model.Visibility
}

// SampleRow is the projection of a sample.
type SampleRow struct {
	SampleType string
}

type Summary struct {
	TotalExperiments     int `json:"totalExperiments"`
	ExperimentsThisMonth int `json:"experimentsThisMonth"`
	ExperimentsThisWeek  int `json:"experimentsThisWeek"`
	TotalProjects        int `json:"totalProjects"`
	ActiveProjects       int `json:"activeProjects"`
	TotalProtocols       int `json:"totalProtocols"`
	TotalSamples         int `json:"totalSamples"`
	CompletionRate       int `json:"completionRate"`
	AvgTimeToSign        int `json:"avgTimeToSign"`
}

type StatusCount struct {
	Status model.ExperimentStatus `json:"status"`
	Count  int                    `json:"count"`
}

type MonthlyTrend struct {
	Month   string `json:"month"`
	Created int    `json:"created"`
	Signed  int    `json:"signed"`
}

type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

type VisibilityCount struct {
	Visibility model.Visibility `json:"visibility"`
	Count      int              `json:"count"`
}

type DayActivity struct {
	Day        string `json:"day"`
	Activities int    `json:"activities"`
}

// Summarize computes the headline numbers relative to now.
func Summarize(now time.Time, experiments []ExperimentRow, projects []ProjectRow,
	protocols []ProtocolRow, samples []SampleRow) Summary {
	monthAgo := now.AddDate(0, 0, -30)
	weekAgo := now.AddDate(0, 0, -7)

	s := Summary{
		TotalExperiments: len(experiments),
		TotalProjects:    len(projects),
		TotalProtocols:   len(protocols),
		TotalSamples:     len(samples),
		CompletionRate:   CompletionRate(experiments),
		AvgTimeToSign:    AvgTimeToSignDays(experiments),
	}
	for _, e := range experiments {
		if !e.CreatedAt.Before(monthAgo) {
			s.ExperimentsThisMonth++
		}
		if !e.CreatedAt.Before(weekAgo) {
			s.ExperimentsThisWeek++
		}
	}
	for _, p := range projects {
		if p.Status == model.ProjectActive {
			s.ActiveProjects++
		}
	}
	return s
}

// CompletionRate is signed/total as a rounded percentage, 0 on empty input.
func CompletionRate(experiments []ExperimentRow) int {
	if len(experiments) == 0 {
		return 0
	}
	signed := 0
	for _, e := range experiments {
		if e.Status == model.ExperimentSigned {
			signed++
		}
	}
	return int(math.Round(float64(signed) / float64(len(experiments)) * 100))
}

// AvgTimeToSignDays is the mean of signed_at-created_at across signed
// experiments, in days rounded to the nearest integer, 0 when none are signed.
func AvgTimeToSignDays(experiments []ExperimentRow) int {
	var sum float64
	n := 0
	for _, e := range experiments {
		if e.SignedAt == nil {
			continue
		}
		sum += e.SignedAt.Sub(e.CreatedAt).Hours() / 24
		n++
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(sum / float64(n)))
}

// StatusDistribution returns the histogram over the five lifecycle states,
// in progression order, including zero buckets.
func StatusDistribution(experiments []ExperimentRow) []StatusCount {
	counts := make(map[model.ExperimentStatus]int)
	for _, e := range experiments {
		counts[e.Status]++
	}
	order := []model.ExperimentStatus{
		model.ExperimentConfiguring,
		model.ExperimentPending,
		model.ExperimentInProgress,
		model.ExperimentCompleted,
		model.ExperimentSigned,
	}
	out := make([]StatusCount, 0, len(order))
	for _, s := range order {
		out = append(out, StatusCount{Status: s, Count: counts[s]})
	}
	return out
}

// MonthlyTrends returns create and sign counts per calendar month for the
// trailing six months ending with the month of now. Always six entries.
func MonthlyTrends(now time.Time, experiments []ExperimentRow) []MonthlyTrend {
	out := make([]MonthlyTrend, 0, 6)
	for i := 5; i >= 0; i-- {
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -i, 0)
		monthEnd := monthStart.AddDate(0, 1, 0)

		trend := MonthlyTrend{Month: monthStart.Format("Jan 06")}
		for _, e := range experiments {
			if !e.CreatedAt.Before(monthStart) && e.CreatedAt.Before(monthEnd) {
				trend.Created++
			}
			if e.SignedAt != nil && !e.SignedAt.Before(monthStart) && e.SignedAt.Before(monthEnd) {
				trend.Signed++
			}
		}
		out = append(out, trend)
	}
	return out
}

// SampleTypeCounts is the histogram over sample types; an empty type is
// bucketed as Unknown.
func SampleTypeCounts(samples []SampleRow) []TypeCount {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, s := range samples {
		typ := s.SampleType
		if typ == "" {
			typ = "Unknown"
		}
		if _, seen := counts[typ]; !seen {
			order = append(order, typ)
		}
		counts[typ]++
	}
	out := make([]TypeCount, 0, len(order))
	for _, typ := range order {
		out = append(out, TypeCount{Type: typ, Count: counts[typ]})
	}
	return out
}

// VisibilityCounts is the histogram over protocol visibility.
func VisibilityCounts(protocols []ProtocolRow) []VisibilityCount {
	counts := make(map[model.Visibility]int)
	for _, p := range protocols {
		counts[p.Visibility]++
	}
	order := []model.Visibility{model.VisibilityPersonal, model.VisibilityGroup, model.VisibilityPublic}
	out := make([]VisibilityCount, 0, len(order))
	for _, v := range order {
		out = append(out, VisibilityCount{Visibility: v, Count: counts[v]})
	}
	return out
}

// WeeklyActivity buckets activity timestamps into the trailing seven days
// ending today. Always seven entries, labeled with the short weekday name.
func WeeklyActivity(now time.Time, timestamps []time.Time) []DayActivity {
	out := make([]DayActivity, 0, 7)
	for i := 6; i >= 0; i-- {
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -i)
		dayEnd := dayStart.AddDate(0, 0, 1)

		day := DayActivity{Day: dayStart.Format("Mon")}
		for _, ts := range timestamps {
			if !ts.Before(dayStart) && ts.Before(dayEnd) {
				day.Activities++
			}
		}
		out = append(out, day)
	}
	return out
}
