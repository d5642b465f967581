package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"aipulse/pkg/archive"
	storemodel "aipulse/pkg/store/mysql/model"
	"aipulse/pkg/timeutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeArchiveSource struct {
	queryFunc func(from, to time.Time) ([]*archive.DayStats, error)
	calls     int
}

func (f *fakeArchiveSource) QueryDayStats(ctx context.Context, from, to time.Time) ([]*archive.DayStats, error) {
	f.calls++
	return f.queryFunc(from, to)
}

func TestArchiveBackfillUpsertsReturnedDays(t *testing.T) {
	repo := newTestRepository(t)
	source := &fakeArchiveSource{queryFunc: func(from, to time.Time) ([]*archive.DayStats, error) {
		return []*archive.DayStats{
			{Date: "2024-06-03", TotalCommits: 1000, ClaudeCommits: 100, CopilotCommits: 50},
			{Date: "2024-06-05", TotalCommits: 2000, ClaudeCommits: 300, OpusCommits: 120},
		}, nil
	}}
	svc := NewArchiveService(source, repo, nil)
	ctx := context.Background()

	outcome, err := svc.BackfillRange(ctx, "2024-06-03", "2024-06-05")
	require.NoError(t, err)
	assert.Equal(t, 1, source.calls)
	assert.Equal(t, 2, outcome.DaysIngested)
	assert.Equal(t, []string{"2024-06-04"}, outcome.DaysMissing)
	assert.Equal(t, 1, outcome.WeeksTouched)

	stat, err := repo.DailyStats.GetByDate(ctx, "2024-06-05")
	require.NoError(t, err)
	assert.Equal(t, 2000, stat.TotalCommits)
	assert.Equal(t, 300, stat.ClaudeCommits)
	assert.Equal(t, 120, stat.OpusCommits)
	assert.Equal(t, 180, stat.OtherModelCommits)
	assert.InDelta(t, 15.0, stat.ClaudePercentage, 0.001)
	// review and PR columns are not measurable from push events
	assert.Zero(t, stat.CopilotReviews)
	assert.Zero(t, stat.ClaudeCodePRs)

	// the missing day stays absent rather than zeroed
	_, err = repo.DailyStats.GetByDate(ctx, "2024-06-04")
	assert.Error(t, err)

	day, _ := timeutil.ParseDay("2024-06-03")
	week, err := repo.WeeklyStats.GetByWeekStart(ctx, timeutil.FormatDay(timeutil.WeekStart(day)))
	require.NoError(t, err)
	assert.Equal(t, 3000, week.TotalCommits)

	entries, err := repo.IngestionLog.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, storemodel.IngestionSourceArchive, entries[0].Source)
	assert.Equal(t, storemodel.IngestionStatusSuccess, entries[0].Status)
	require.NotNil(t, entries[0].TotalCommits)
	assert.Equal(t, 3000, *entries[0].TotalCommits)
	require.NotNil(t, entries[0].ClaudeCommits)
	assert.Equal(t, 400, *entries[0].ClaudeCommits)
}

func TestArchiveBackfillQueryErrorIsLogged(t *testing.T) {
	repo := newTestRepository(t)
	source := &fakeArchiveSource{queryFunc: func(from, to time.Time) ([]*archive.DayStats, error) {
		return nil, errors.New("quota exceeded")
	}}
	svc := NewArchiveService(source, repo, nil)
	ctx := context.Background()

	_, err := svc.BackfillRange(ctx, "2024-06-01", "2024-06-02")
	require.Error(t, err)

	entries, err := repo.IngestionLog.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, storemodel.IngestionStatusError, entries[0].Status)
	assert.Contains(t, entries[0].Error, "quota exceeded")
}

func TestArchiveBackfillRefreshesWeeksOnAbort(t *testing.T) {
	repo := newTestRepository(t)
	source := &fakeArchiveSource{queryFunc: func(from, to time.Time) ([]*archive.DayStats, error) {
		return []*archive.DayStats{
			{Date: "2024-06-03", TotalCommits: 1000, ClaudeCommits: 100},
			{Date: "garbage", TotalCommits: 500},
		}, nil
	}}
	svc := NewArchiveService(source, repo, nil)
	ctx := context.Background()

	_, err := svc.BackfillRange(ctx, "2024-06-03", "2024-06-05")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "garbage")

	// the day upserted before the abort still gets its weekly rollup
	stat, err := repo.DailyStats.GetByDate(ctx, "2024-06-03")
	require.NoError(t, err)
	assert.Equal(t, 1000, stat.TotalCommits)

	day, _ := timeutil.ParseDay("2024-06-03")
	week, err := repo.WeeklyStats.GetByWeekStart(ctx, timeutil.FormatDay(timeutil.WeekStart(day)))
	require.NoError(t, err)
	assert.Equal(t, 1000, week.TotalCommits)
	assert.Equal(t, 100, week.ClaudeCommits)
}

func TestArchiveBackfillValidation(t *testing.T) {
	repo := newTestRepository(t)
	source := &fakeArchiveSource{queryFunc: func(from, to time.Time) ([]*archive.DayStats, error) {
		return nil, nil
	}}
	svc := NewArchiveService(source, repo, nil)
	ctx := context.Background()

	_, err := svc.BackfillRange(ctx, "not-a-date", "2024-06-02")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.BackfillRange(ctx, "2024-06-02", "2024-06-01")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.BackfillRange(ctx, "2020-01-01", "2024-01-01")
	assert.ErrorIs(t, err, ErrValidation)

	assert.Zero(t, source.calls)
}

func TestArchiveBackfillUnconfigured(t *testing.T) {
	repo := newTestRepository(t)
	svc := NewArchiveService(nil, repo, nil)

	_, err := svc.BackfillRange(context.Background(), "2024-06-01", "2024-06-02")
	assert.ErrorIs(t, err, ErrValidation)
}
