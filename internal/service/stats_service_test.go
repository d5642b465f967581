package service

import (
	"context"
	"fmt"
	"testing"

	storemodel "aipulse/pkg/store/mysql/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedDaily writes consecutive daily rows starting at 2024-06-01, one per
// claude percentage given, with a fixed 1000-commit denominator
func seedDaily(t *testing.T, repo interface {
	Upsert(ctx context.Context, stat *storemodel.DailyStat) error
}, percentages []float64) {
	t.Helper()
	for i, pct := range percentages {
		stat := &storemodel.DailyStat{Date: fmt.Sprintf("2024-06-%02d", i+1)}
		stat.TotalCommits = 1000
		stat.ClaudeCommits = int(pct * 10)
		stat.ClaudePercentage = pct
		stat.AllAiCommits = stat.ClaudeCommits * 2
		stat.AllAiPercentage = pct * 2
		stat.AllAiReviews = 3
		stat.AllAiPRs = 2
		require.NoError(t, repo.Upsert(context.Background(), stat))
	}
}

func TestGetStatsSummary(t *testing.T) {
	repo := newTestRepository(t)
	svc := NewStatsService(repo)
	ctx := context.Background()

	// 14 days: first week at 2%, second at 4%
	percentages := make([]float64, 14)
	for i := range percentages {
		percentages[i] = 2
		if i >= 7 {
			percentages[i] = 4
		}
	}
	seedDaily(t, repo.DailyStats, percentages)

	resp, err := svc.GetStats(ctx, "")
	require.NoError(t, err)
	require.Len(t, resp.Daily, 14)
	require.NotNil(t, resp.Summary)

	summary := resp.Summary
	assert.Equal(t, 14*1000, summary.TotalAllCommits)
	assert.Equal(t, 7*20+7*40, summary.TotalClaudeCommits)
	assert.InDelta(t, 3.0, summary.OverallPercentage, 0.001)
	assert.InDelta(t, 4.0, summary.LatestPercentage, 0.001)
	assert.Equal(t, "2024-06-14", summary.LatestDate)

	// last 7 days average 4%, previous 7 average 2%: +100% relative growth
	assert.InDelta(t, 100.0, summary.Growth7d, 0.001)
	// fewer than 60 days of history, 30-day growth stays zero
	assert.Zero(t, summary.Growth30d)

	assert.Equal(t, 14*3, summary.TotalAllAiReviews)
	assert.Equal(t, 14*2, summary.TotalAllAiPRs)
	assert.InDelta(t, 6.0, summary.AllAiPercentage, 0.001)
}

func TestGetStatsEmptyTable(t *testing.T) {
	repo := newTestRepository(t)
	svc := NewStatsService(repo)

	resp, err := svc.GetStats(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, resp.Daily)
	assert.Empty(t, resp.Weekly)
	assert.Zero(t, resp.Summary.TotalAllCommits)
	assert.Empty(t, resp.Summary.LatestDate)
}

func TestGetStatsFromFilter(t *testing.T) {
	repo := newTestRepository(t)
	svc := NewStatsService(repo)
	ctx := context.Background()

	seedDaily(t, repo.DailyStats, []float64{1, 2, 3, 4, 5})

	resp, err := svc.GetStats(ctx, "2024-06-03")
	require.NoError(t, err)
	require.Len(t, resp.Daily, 3)
	assert.Equal(t, "2024-06-03", resp.Daily[0].Date)

	// summary covers only the filtered window
	assert.Equal(t, 3000, resp.Summary.TotalAllCommits)

	_, err = svc.GetStats(ctx, "yesterday")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetStatsGrowthZeroWhenPriorWindowIsZero(t *testing.T) {
	repo := newTestRepository(t)
	svc := NewStatsService(repo)

	// prior week all zero, last week positive
	percentages := []float64{0, 0, 0, 0, 0, 0, 0, 5, 5, 5, 5, 5, 5, 5}
	seedDaily(t, repo.DailyStats, percentages)

	resp, err := svc.GetStats(context.Background(), "")
	require.NoError(t, err)
	assert.Zero(t, resp.Summary.Growth7d)
}

func TestGetPackageStatsGroupsSeries(t *testing.T) {
	repo := newTestRepository(t)
	svc := NewStatsService(repo)
	ctx := context.Background()

	require.NoError(t, repo.PackageDownloads.Upsert(ctx, "2024-06-01", "npm", "openai", 100))
	require.NoError(t, repo.PackageDownloads.Upsert(ctx, "2024-06-02", "npm", "openai", 120))
	require.NoError(t, repo.PackageDownloads.Upsert(ctx, "2024-06-01", "pypi", "anthropic", 80))

	resp, err := svc.GetPackageStats(ctx, "")
	require.NoError(t, err)
	require.Len(t, resp.Series, 2)

	byKey := make(map[string]*PackageSeries)
	for _, series := range resp.Series {
		byKey[series.Registry+"/"+series.PackageName] = series
	}

	npm := byKey["npm/openai"]
	require.NotNil(t, npm)
	require.Len(t, npm.Points, 2)
	assert.Equal(t, "2024-06-01", npm.Points[0].Date)
	assert.Equal(t, 100, npm.Points[0].Downloads)
	assert.Equal(t, 120, npm.Points[1].Downloads)

	pypi := byKey["pypi/anthropic"]
	require.NotNil(t, pypi)
	require.Len(t, pypi.Points, 1)
}

func TestHealthReportsLatestDate(t *testing.T) {
	repo := newTestRepository(t)
	svc := NewStatsService(repo)
	ctx := context.Background()

	health, err := svc.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)
	assert.Empty(t, health.LatestDate)

	seedDaily(t, repo.DailyStats, []float64{1, 2})

	health, err = svc.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-02", health.LatestDate)
}
