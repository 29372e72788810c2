package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsnakex/Dashboard-ELN/dao/model"
)

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func tsp(s string) *time.Time {
	t := ts(s)
	return &t
}

func TestCompletionRateEmpty(t *testing.T) {
	// must be exactly 0, never NaN
	assert.Equal(t, 0, CompletionRate(nil))
	assert.Equal(t, 0, CompletionRate([]ExperimentRow{}))
}

func TestCompletionRateRounds(t *testing.T) {
	rows := []ExperimentRow{
		{Status: model.ExperimentSigned},
		{Status: model.ExperimentSigned},
		{Status: model.ExperimentInProgress},
	}
	// 2/3 = 66.67 -> 67
	assert.Equal(t, 67, CompletionRate(rows))
}

func TestAvgTimeToSignDays(t *testing.T) {
	assert.Equal(t, 0, AvgTimeToSignDays(nil))

	rows := []ExperimentRow{
		{Status: model.ExperimentSigned, CreatedAt: ts("2026-01-01T00:00:00Z"), SignedAt: tsp("2026-01-05T00:00:00Z")},
		{Status: model.ExperimentSigned, CreatedAt: ts("2026-01-01T00:00:00Z"), SignedAt: tsp("2026-01-03T00:00:00Z")},
		{Status: model.ExperimentInProgress, CreatedAt: ts("2026-01-01T00:00:00Z")},
	}
	// (4 + 2) / 2 = 3 days; the unsigned row is ignored
	assert.Equal(t, 3, AvgTimeToSignDays(rows))
}

func TestStatusDistributionIncludesZeroBuckets(t *testing.T) {
	dist := StatusDistribution([]ExperimentRow{
		{Status: model.ExperimentSigned},
		{Status: model.ExperimentSigned},
		{Status: model.ExperimentConfiguring},
	})
	require.Len(t, dist, 5)
	assert.Equal(t, model.ExperimentConfiguring, dist[0].Status)
	assert.Equal(t, 1, dist[0].Count)
	assert.Equal(t, 0, dist[1].Count) // pending
	assert.Equal(t, 2, dist[4].Count) // signed
}

func TestMonthlyTrendsAlwaysSixEntries(t *testing.T) {
	now := ts("2026-09-01T12:00:00Z")

	// sparse data: only one experiment three months back
	trends := MonthlyTrends(now, []ExperimentRow{
		{CreatedAt: ts("2026-06-10T00:00:00Z"), SignedAt: tsp("2026-07-02T00:00:00Z")},
	})
	require.Len(t, trends, 6)
	assert.Equal(t, "Apr 26", trends[0].Month)
	assert.Equal(t, "Sep 26", trends[5].Month)
	assert.Equal(t, 1, trends[2].Created) // June
	assert.Equal(t, 1, trends[3].Signed)  // July

	// no data at all still yields six zeroed entries
	empty := MonthlyTrends(now, nil)
	require.Len(t, empty, 6)
	for _, tr := range empty {
		assert.Equal(t, 0, tr.Created)
		assert.Equal(t, 0, tr.Signed)
	}
}

func TestMonthlyTrendsWindowBounds(t *testing.T) {
	now := ts("2026-09-15T00:00:00Z")
	trends := MonthlyTrends(now, []ExperimentRow{
		{CreatedAt: ts("2026-03-31T23:59:59Z")}, // before the window
		{CreatedAt: ts("2026-04-01T00:00:00Z")}, // first instant of the window
		{CreatedAt: ts("2026-09-30T23:00:00Z")}, // current month counts in full
	})
	require.Len(t, trends, 6)
	total := 0
	for _, tr := range trends {
		total += tr.Created
	}
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, trends[0].Created)
	assert.Equal(t, 1, trends[5].Created)
}

func TestSummarize(t *testing.T) {
	now := ts("2026-09-01T00:00:00Z")
	experiments := []ExperimentRow{
		{Status: model.ExperimentSigned, CreatedAt: now.AddDate(0, 0, -2), SignedAt: tsp("2026-08-31T00:00:00Z")},
		{Status: model.ExperimentInProgress, CreatedAt: now.AddDate(0, 0, -20)},
		{Status: model.ExperimentConfiguring, CreatedAt: now.AddDate(0, 0, -60)},
	}
	projects := []ProjectRow{{Status: model.ProjectActive}, {Status: model.ProjectArchived}}

	s := Summarize(now, experiments, projects, []ProtocolRow{{Visibility: model.VisibilityPublic}}, nil)
	assert.Equal(t, 3, s.TotalExperiments)
	assert.Equal(t, 2, s.ExperimentsThisMonth)
	assert.Equal(t, 1, s.ExperimentsThisWeek)
	assert.Equal(t, 1, s.ActiveProjects)
	assert.Equal(t, 2, s.TotalProjects)
	assert.Equal(t, 1, s.TotalProtocols)
	assert.Equal(t, 0, s.TotalSamples)
	assert.Equal(t, 33, s.CompletionRate)
}

func TestSampleTypeCounts(t *testing.T) {
	counts := SampleTypeCounts([]SampleRow{
		{SampleType: "dna"},
		{SampleType: "dna"},
		{SampleType: ""},
		{SampleType: "protein"},
	})
	require.Len(t, counts, 3)
	assert.Equal(t, TypeCount{Type: "dna", Count: 2}, counts[0])
	assert.Equal(t, TypeCount{Type: "Unknown", Count: 1}, counts[1])
	assert.Equal(t, TypeCount{Type: "protein", Count: 1}, counts[2])
}

func TestVisibilityCounts(t *testing.T) {
	counts := VisibilityCounts([]ProtocolRow{
		{Visibility: model.VisibilityPublic},
		{Visibility: model.VisibilityPersonal},
		{Visibility: model.VisibilityPublic},
	})
	require.Len(t, counts, 3)
	assert.Equal(t, 1, counts[0].Count) // personal
	assert.Equal(t, 0, counts[1].Count) // group
	assert.Equal(t, 2, counts[2].Count) // public
}

func TestWeeklyActivityAlwaysSevenDays(t *testing.T) {
	now := ts("2026-09-01T10:00:00Z")
	days := WeeklyActivity(now, []time.Time{
		ts("2026-09-01T09:00:00Z"),
		ts("2026-08-30T23:59:00Z"),
		ts("2026-08-20T00:00:00Z"), // outside the window
	})
	require.Len(t, days, 7)
	assert.Equal(t, 1, days[6].Activities)
	assert.Equal(t, 1, days[4].Activities)
	total := 0
	for _, d := range days {
		total += d.Activities
	}
	assert.Equal(t, 2, total)
}
