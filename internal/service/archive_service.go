package service

import (
	"context"
	"fmt"
	"time"

	"aipulse/internal/model"
	"aipulse/pkg/archive"
	"aipulse/pkg/logger"
	"aipulse/pkg/runlock"
	"aipulse/pkg/store/mysql"
	storemodel "aipulse/pkg/store/mysql/model"
	"aipulse/pkg/timeutil"

	"github.com/google/uuid"
)

// maxArchiveDays caps one archive backfill at roughly a year of month tables
const maxArchiveDays = 366

// ArchiveSource returns per-day commit counts for a date range
type ArchiveSource interface {
	QueryDayStats(ctx context.Context, from, to time.Time) ([]*archive.DayStats, error)
}

// ArchiveService backfills daily rows from GH Archive in one batch query
// instead of day-by-day search calls. Review and PR columns come out zero;
// the search path owns those.
type ArchiveService struct {
	source ArchiveSource
	repo   *mysql.Repository
	lock   *runlock.RunLock
}

// NewArchiveService creates the archive backfill service
func NewArchiveService(source ArchiveSource, repo *mysql.Repository, lock *runlock.RunLock) *ArchiveService {
	return &ArchiveService{
		source: source,
		repo:   repo,
		lock:   lock,
	}
}

// BackfillRange queries the archive once for [from, to], upserts a daily row
// per returned day and refreshes every touched week. Days the archive has no
// rows for are reported, not zeroed.
func (s *ArchiveService) BackfillRange(ctx context.Context, fromStr, toStr string) (*model.ArchiveOutcome, error) {
	if s.source == nil {
		return nil, fmt.Errorf("%w: archive backfill is not configured", ErrValidation)
	}

	from, err := timeutil.ParseDay(fromStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	to, err := timeutil.ParseDay(toStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("%w: from %s is after to %s", ErrValidation, fromStr, toStr)
	}
	if days := timeutil.DaysBetween(from, to); days > maxArchiveDays {
		return nil, fmt.Errorf("%w: range spans %d days, limit is %d", ErrValidation, days, maxArchiveDays)
	}

	if err := s.acquireLock(ctx); err != nil {
		return nil, err
	}
	defer s.releaseLock(ctx)

	runID := uuid.NewString()
	started := time.Now()

	days, err := s.source.QueryDayStats(ctx, from, to)
	if err != nil {
		s.logEntry(ctx, runID, rangeLabel(from, to), storemodel.IngestionStatusError, nil, err, started)
		return nil, err
	}

	outcome := &model.ArchiveOutcome{
		RunID: runID,
		From:  timeutil.FormatDay(from),
		To:    timeutil.FormatDay(to),
	}

	seen := make(map[string]bool, len(days))
	weeks := make(map[string]time.Time)

	for _, day := range days {
		parsed, err := timeutil.ParseDay(day.Date)
		if err != nil {
			s.refreshWeeksBestEffort(ctx, weeks)
			return nil, fmt.Errorf("archive returned unparseable date %q: %w", day.Date, err)
		}

		stat := model.NewDailyStat(day.Date, day.Counts())
		if err := s.repo.DailyStats.Upsert(ctx, stat); err != nil {
			// Days already upserted in this run must not leave their
			// weekly rows stale
			s.refreshWeeksBestEffort(ctx, weeks)
			s.logEntry(ctx, runID, rangeLabel(from, to), storemodel.IngestionStatusError, nil, err, started)
			return nil, err
		}

		seen[day.Date] = true
		outcome.DaysIngested++
		weeks[timeutil.FormatDay(timeutil.WeekStart(parsed))] = parsed
	}

	for _, date := range timeutil.EachDay(from, to) {
		if !seen[date] {
			outcome.DaysMissing = append(outcome.DaysMissing, date)
		}
	}

	for weekStart, day := range weeks {
		if err := s.repo.WeeklyStats.RefreshWeek(ctx, day); err != nil {
			return nil, fmt.Errorf("failed to refresh week %s: %w", weekStart, err)
		}
	}
	outcome.WeeksTouched = len(weeks)
	outcome.DurationMs = int(time.Since(started).Milliseconds())

	s.logEntry(ctx, runID, rangeLabel(from, to), storemodel.IngestionStatusSuccess, days, nil, started)
	logger.InfoCtx(ctx, "archive backfill %s: %d days ingested, %d missing, %d weeks refreshed",
		rangeLabel(from, to), outcome.DaysIngested, len(outcome.DaysMissing), outcome.WeeksTouched)

	return outcome, nil
}

// refreshWeeksBestEffort re-aggregates the weeks touched so far when a run
// aborts mid-loop, so the rows already upserted stay consistent
func (s *ArchiveService) refreshWeeksBestEffort(ctx context.Context, weeks map[string]time.Time) {
	for weekStart, day := range weeks {
		if err := s.repo.WeeklyStats.RefreshWeek(ctx, day); err != nil {
			logger.WarnCtx(ctx, "failed to refresh week %s after aborted backfill: %v", weekStart, err)
		}
	}
}

func (s *ArchiveService) logEntry(ctx context.Context, runID, label, status string, days []*archive.DayStats, cause error, started time.Time) {
	entry := &storemodel.IngestionLogEntry{
		RunID:      runID,
		Date:       label,
		Source:     storemodel.IngestionSourceArchive,
		Status:     status,
		DurationMs: int(time.Since(started).Milliseconds()),
	}
	if cause != nil {
		entry.Error = cause.Error()
	}
	if status == storemodel.IngestionStatusSuccess {
		var total, claude int
		for _, day := range days {
			total += int(day.TotalCommits)
			claude += int(day.ClaudeCommits)
		}
		entry.TotalCommits = &total
		entry.ClaudeCommits = &claude
	}
	if err := s.repo.IngestionLog.Append(ctx, entry); err != nil {
		logger.WarnCtx(ctx, "failed to append ingestion log for %s: %v", label, err)
	}
}

func (s *ArchiveService) acquireLock(ctx context.Context) error {
	if s.lock == nil {
		return nil
	}
	acquired, err := s.lock.TryLock(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !acquired {
		return ErrRunInProgress
	}
	return nil
}

func (s *ArchiveService) releaseLock(ctx context.Context) {
	if s.lock == nil {
		return
	}
	if err := s.lock.Unlock(ctx); err != nil {
		logger.WarnCtx(ctx, "failed to release run lock: %v", err)
	}
}
