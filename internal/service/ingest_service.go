package service

import (
	"context"
	"fmt"
	"time"

	"aipulse/internal/model"
	"aipulse/pkg/config"
	"aipulse/pkg/github"
	"aipulse/pkg/logger"
	"aipulse/pkg/runlock"
	"aipulse/pkg/store/mysql"
	storemodel "aipulse/pkg/store/mysql/model"
	"aipulse/pkg/timeutil"

	"github.com/google/uuid"
)

// IngestService drives GitHub search ingestion: one paced query per signal
// per day, derived fields recomputed, daily row upserted, weekly rollup
// refreshed, audit entry appended. Runs are serialized by the run lock.
type IngestService struct {
	searcher github.CountFetcher
	sampler  *github.Sampler
	repo     *mysql.Repository
	lock     *runlock.RunLock

	delay time.Duration
	sleep func(time.Duration)

	maxBackfillDays     int
	maxFastBackfillDays int
	maxDaysPerCollect   int
}

// NewIngestService creates the ingestion service
func NewIngestService(searcher github.CountFetcher, repo *mysql.Repository, lock *runlock.RunLock, cfg *config.Config) *IngestService {
	delay := time.Duration(cfg.GitHub.RequestDelayMs) * time.Millisecond

	return &IngestService{
		searcher:            searcher,
		sampler:             github.NewSampler(searcher, delay),
		repo:                repo,
		lock:                lock,
		delay:               delay,
		sleep:               time.Sleep,
		maxBackfillDays:     cfg.Ingest.MaxBackfillDays,
		maxFastBackfillDays: cfg.Ingest.MaxFastBackfillDays,
		maxDaysPerCollect:   cfg.Ingest.MaxDaysPerCollect,
	}
}

// IngestDay ingests one date exhaustively (every signal queried)
func (s *IngestService) IngestDay(ctx context.Context, date string) (*model.IngestOutcome, error) {
	if _, err := timeutil.ParseDay(date); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if err := s.acquireLock(ctx); err != nil {
		return nil, err
	}
	defer s.releaseLock(ctx)

	return s.ingestDay(ctx, uuid.NewString(), date, nil)
}

// IngestDaySparse ingests one date querying only the signals in the active
// set; everything else is stored as zero. totalCommits is always queried.
func (s *IngestService) IngestDaySparse(ctx context.Context, date string, active map[string]bool) (*model.IngestOutcome, error) {
	if _, err := timeutil.ParseDay(date); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := s.acquireLock(ctx); err != nil {
		return nil, err
	}
	defer s.releaseLock(ctx)

	set := map[string]bool{github.KeyTotalCommits: true}
	for key, on := range active {
		if on {
			set[key] = true
		}
	}
	return s.ingestDay(ctx, uuid.NewString(), date, set)
}

// IngestRange ingests every date in [from, to] exhaustively. Per-date
// failures are recorded and the loop continues.
func (s *IngestService) IngestRange(ctx context.Context, fromStr, toStr string) (*model.RangeOutcome, error) {
	from, to, err := s.parseRange(fromStr, toStr, s.maxBackfillDays)
	if err != nil {
		return nil, err
	}

	if err := s.acquireLock(ctx); err != nil {
		return nil, err
	}
	defer s.releaseLock(ctx)

	return s.ingestDays(ctx, uuid.NewString(), from, to, nil), nil
}

// IngestRangeSparse screens the enclosing months once, then ingests every
// date in [from, to] querying only the signals the screen found active.
func (s *IngestService) IngestRangeSparse(ctx context.Context, fromStr, toStr string) (*model.RangeOutcome, error) {
	from, to, err := s.parseRange(fromStr, toStr, s.maxFastBackfillDays)
	if err != nil {
		return nil, err
	}

	if err := s.acquireLock(ctx); err != nil {
		return nil, err
	}
	defer s.releaseLock(ctx)

	runID := uuid.NewString()

	// Screen whole months so one screen covers every day of the range
	screenFrom := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
	screenTo := time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1)

	started := time.Now()
	active, err := s.sampler.ScreenRange(ctx, screenFrom, screenTo)
	if err != nil {
		ferr := fmt.Errorf("failed to screen signals: %w", err)
		s.logError(ctx, runID, rangeLabel(from, to), ferr, started)
		return nil, ferr
	}
	logger.InfoCtx(ctx, "sparse backfill %s: %d of %d signals active",
		rangeLabel(from, to), len(active), len(github.Signals))

	return s.ingestDays(ctx, runID, from, to, active), nil
}

// CollectLatest catches up from the day after the latest stored date (or a
// few days back when the table is empty) through yesterday, capped per run.
func (s *IngestService) CollectLatest(ctx context.Context) (*model.RangeOutcome, error) {
	if err := s.acquireLock(ctx); err != nil {
		return nil, err
	}
	defer s.releaseLock(ctx)

	latest, err := s.repo.DailyStats.LatestDate(ctx)
	if err != nil {
		return nil, err
	}

	yesterday := timeutil.Truncate(time.Now()).AddDate(0, 0, -1)

	var from time.Time
	if latest == "" {
		from = yesterday.AddDate(0, 0, -(s.maxDaysPerCollect - 1))
	} else {
		latestDay, err := timeutil.ParseDay(latest)
		if err != nil {
			return nil, fmt.Errorf("corrupt latest date %q: %w", latest, err)
		}
		from = latestDay.AddDate(0, 0, 1)
	}

	runID := uuid.NewString()
	if from.After(yesterday) {
		logger.InfoCtx(ctx, "collect: nothing to do, latest date is %s", latest)
		return &model.RangeOutcome{RunID: runID}, nil
	}

	to := yesterday
	if timeutil.DaysBetween(from, to) > s.maxDaysPerCollect {
		to = from.AddDate(0, 0, s.maxDaysPerCollect-1)
	}

	logger.InfoCtx(ctx, "collect: ingesting %s", rangeLabel(from, to))
	return s.ingestDays(ctx, runID, from, to, nil), nil
}

// OverrideTotals rewrites total_commits (and the two percentages derived
// from it) for existing rows only, then refreshes the touched weeks.
// No external calls are made.
func (s *IngestService) OverrideTotals(ctx context.Context, overrides map[string]int) (*model.TotalsOutcome, error) {
	if len(overrides) == 0 {
		return nil, fmt.Errorf("%w: no overrides given", ErrValidation)
	}
	for date, total := range overrides {
		if _, err := timeutil.ParseDay(date); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		if total < 0 {
			return nil, fmt.Errorf("%w: negative total for %s", ErrValidation, date)
		}
	}

	outcome := &model.TotalsOutcome{RunID: uuid.NewString()}
	weeks := make(map[string]time.Time)

	for date, total := range overrides {
		updated, err := s.applyTotal(ctx, date, total)
		if err != nil {
			return nil, err
		}
		if !updated {
			outcome.Skipped = append(outcome.Skipped, date)
			continue
		}
		outcome.Updated = append(outcome.Updated, date)
		day, _ := timeutil.ParseDay(date)
		weeks[timeutil.FormatDay(timeutil.WeekStart(day))] = day
	}

	if err := s.refreshWeeks(ctx, weeks); err != nil {
		return nil, err
	}
	return outcome, nil
}

// RefreshTotals re-queries the commit denominator for every date in the
// range and rewrites it on existing rows, skipping dates never ingested.
func (s *IngestService) RefreshTotals(ctx context.Context, fromStr, toStr string) (*model.TotalsOutcome, error) {
	from, to, err := s.parseRange(fromStr, toStr, s.maxBackfillDays)
	if err != nil {
		return nil, err
	}

	if err := s.acquireLock(ctx); err != nil {
		return nil, err
	}
	defer s.releaseLock(ctx)

	outcome := &model.TotalsOutcome{RunID: uuid.NewString()}
	weeks := make(map[string]time.Time)
	totalSignal := github.Signals[0]

	for _, date := range timeutil.EachDay(from, to) {
		if _, err := s.repo.DailyStats.GetByDate(ctx, date); err != nil {
			outcome.Skipped = append(outcome.Skipped, date)
			continue
		}

		total, err := s.searcher.SearchCount(ctx, totalSignal.Kind, totalSignal.Query(date))
		if err != nil {
			return nil, fmt.Errorf("failed to refresh total for %s: %w", date, err)
		}
		s.sleep(s.delay)

		if _, err := s.applyTotal(ctx, date, total); err != nil {
			return nil, err
		}
		outcome.Updated = append(outcome.Updated, date)
		day, _ := timeutil.ParseDay(date)
		weeks[timeutil.FormatDay(timeutil.WeekStart(day))] = day
	}

	if err := s.refreshWeeks(ctx, weeks); err != nil {
		return nil, err
	}
	return outcome, nil
}

// applyTotal recomputes the two percentages against an existing row's
// numerators and writes the new denominator.
func (s *IngestService) applyTotal(ctx context.Context, date string, total int) (bool, error) {
	stat, err := s.repo.DailyStats.GetByDate(ctx, date)
	if err != nil {
		return false, nil
	}

	claudePct := model.Percentage(stat.ClaudeCommits, total)
	allAiPct := model.Percentage(stat.AllAiCommits, total)
	return s.repo.DailyStats.UpdateTotals(ctx, date, total, claudePct, allAiPct)
}

// ingestDays runs the per-day loop. active == nil means exhaustive.
func (s *IngestService) ingestDays(ctx context.Context, runID string, from, to time.Time, active map[string]bool) *model.RangeOutcome {
	outcome := &model.RangeOutcome{
		RunID: runID,
		From:  timeutil.FormatDay(from),
		To:    timeutil.FormatDay(to),
	}

	for _, date := range timeutil.EachDay(from, to) {
		result, err := s.ingestDay(ctx, runID, date, active)
		if err != nil {
			outcome.Failed++
			outcome.Results = append(outcome.Results, &model.IngestOutcome{
				Date:   date,
				Status: storemodel.IngestionStatusError,
				Error:  err.Error(),
			})
			continue
		}
		outcome.Succeeded++
		outcome.Results = append(outcome.Results, result)

		if s.lock != nil {
			if err := s.lock.Extend(ctx); err != nil {
				logger.WarnCtx(ctx, "failed to extend run lock: %v", err)
			}
		}
	}

	return outcome
}

// ingestDay queries one date, writes the daily row, refreshes its week and
// appends the audit entry. A fetch error aborts the date before any write.
func (s *IngestService) ingestDay(ctx context.Context, runID, date string, active map[string]bool) (*model.IngestOutcome, error) {
	started := time.Now()

	counts := make(map[string]int, len(github.Signals))
	for _, sig := range github.Signals {
		if active != nil && !active[sig.Key] {
			counts[sig.Key] = 0
			continue
		}

		count, err := s.searcher.SearchCount(ctx, sig.Kind, sig.Query(date))
		if err != nil {
			ferr := fmt.Errorf("failed to query %s for %s: %w", sig.Key, date, err)
			s.logError(ctx, runID, date, ferr, started)
			return nil, ferr
		}
		counts[sig.Key] = count
		s.sleep(s.delay)
	}

	stat := model.NewDailyStat(date, counts)
	if err := s.repo.DailyStats.Upsert(ctx, stat); err != nil {
		s.logError(ctx, runID, date, err, started)
		return nil, err
	}

	day, _ := timeutil.ParseDay(date)
	if err := s.repo.WeeklyStats.RefreshWeek(ctx, day); err != nil {
		s.logError(ctx, runID, date, err, started)
		return nil, err
	}

	durationMs := int(time.Since(started).Milliseconds())
	entry := &storemodel.IngestionLogEntry{
		RunID:         runID,
		Date:          date,
		Source:        storemodel.IngestionSourceSearch,
		Status:        storemodel.IngestionStatusSuccess,
		TotalCommits:  &stat.TotalCommits,
		ClaudeCommits: &stat.ClaudeCommits,
		DurationMs:    durationMs,
	}
	if err := s.repo.IngestionLog.Append(ctx, entry); err != nil {
		logger.WarnCtx(ctx, "failed to append ingestion log for %s: %v", date, err)
	}

	logger.InfoCtx(ctx, "ingested %s: %d commits, %d claude (%.2f%%)",
		date, stat.TotalCommits, stat.ClaudeCommits, stat.ClaudePercentage)

	return &model.IngestOutcome{
		Date:          date,
		Status:        storemodel.IngestionStatusSuccess,
		TotalCommits:  stat.TotalCommits,
		ClaudeCommits: stat.ClaudeCommits,
		AllAiCommits:  stat.AllAiCommits,
		DurationMs:    durationMs,
	}, nil
}

func (s *IngestService) logError(ctx context.Context, runID, dateLabel string, cause error, started time.Time) {
	entry := &storemodel.IngestionLogEntry{
		RunID:      runID,
		Date:       dateLabel,
		Source:     storemodel.IngestionSourceSearch,
		Status:     storemodel.IngestionStatusError,
		Error:      cause.Error(),
		DurationMs: int(time.Since(started).Milliseconds()),
	}
	if err := s.repo.IngestionLog.Append(ctx, entry); err != nil {
		logger.WarnCtx(ctx, "failed to append ingestion log for %s: %v", dateLabel, err)
	}
}

func (s *IngestService) refreshWeeks(ctx context.Context, weeks map[string]time.Time) error {
	for weekStart, day := range weeks {
		if err := s.repo.WeeklyStats.RefreshWeek(ctx, day); err != nil {
			return fmt.Errorf("failed to refresh week %s: %w", weekStart, err)
		}
	}
	return nil
}

// parseRange validates bounds before any external call
func (s *IngestService) parseRange(fromStr, toStr string, maxDays int) (time.Time, time.Time, error) {
	from, err := timeutil.ParseDay(fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	to, err := timeutil.ParseDay(toStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: from %s is after to %s", ErrValidation, fromStr, toStr)
	}
	if days := timeutil.DaysBetween(from, to); days > maxDays {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: range spans %d days, limit is %d", ErrValidation, days, maxDays)
	}
	return from, to, nil
}

func (s *IngestService) acquireLock(ctx context.Context) error {
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

func (s *IngestService) releaseLock(ctx context.Context) {
	if s.lock == nil {
		return
	}
	if err := s.lock.Unlock(ctx); err != nil {
		logger.WarnCtx(ctx, "failed to release run lock: %v", err)
	}
}

func rangeLabel(from, to time.Time) string {
	return fmt.Sprintf("%s_to_%s", timeutil.FormatDay(from), timeutil.FormatDay(to))
}
