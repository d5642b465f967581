package service

import (
	"context"
	"fmt"
	"time"

	"aipulse/internal/model"
	"aipulse/pkg/config"
	"aipulse/pkg/logger"
	"aipulse/pkg/registry"
	"aipulse/pkg/store/mysql"
	storemodel "aipulse/pkg/store/mysql/model"
	"aipulse/pkg/timeutil"

	"github.com/google/uuid"
)

// maxPackageRangeDays caps one registry download backfill
const maxPackageRangeDays = 90

// PackageService ingests daily download counts for the tracked npm and PyPI
// packages. A failed package fetch stores zero and flags the result; the
// rest of the batch keeps going.
type PackageService struct {
	npm  registry.DownloadsFetcher
	pypi registry.DownloadsFetcher
	repo *mysql.Repository

	delay time.Duration
	sleep func(time.Duration)
}

// NewPackageService creates the registry downloads service
func NewPackageService(npm, pypi registry.DownloadsFetcher, repo *mysql.Repository, cfg *config.Config) *PackageService {
	return &PackageService{
		npm:   npm,
		pypi:  pypi,
		repo:  repo,
		delay: time.Duration(cfg.Registry.RequestDelayMs) * time.Millisecond,
		sleep: time.Sleep,
	}
}

// IngestDay fetches every tracked package's downloads for one date
func (s *PackageService) IngestDay(ctx context.Context, date string) (*model.PackageDayOutcome, error) {
	if _, err := timeutil.ParseDay(date); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return s.ingestDay(ctx, uuid.NewString(), date)
}

// IngestRange fetches downloads for every date in [from, to]
func (s *PackageService) IngestRange(ctx context.Context, fromStr, toStr string) (*model.PackageRangeOutcome, error) {
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
	if days := timeutil.DaysBetween(from, to); days > maxPackageRangeDays {
		return nil, fmt.Errorf("%w: range spans %d days, limit is %d", ErrValidation, days, maxPackageRangeDays)
	}

	outcome := &model.PackageRangeOutcome{
		RunID: uuid.NewString(),
		From:  timeutil.FormatDay(from),
		To:    timeutil.FormatDay(to),
	}

	for _, date := range timeutil.EachDay(from, to) {
		day, err := s.ingestDay(ctx, outcome.RunID, date)
		if err != nil {
			return nil, err
		}
		outcome.Days = append(outcome.Days, day)
	}
	return outcome, nil
}

// CollectYesterday ingests yesterday's downloads; both registries publish
// complete counts with a one-day lag.
func (s *PackageService) CollectYesterday(ctx context.Context) (*model.PackageDayOutcome, error) {
	yesterday := timeutil.FormatDay(timeutil.Truncate(time.Now()).AddDate(0, 0, -1))
	return s.ingestDay(ctx, uuid.NewString(), yesterday)
}

func (s *PackageService) ingestDay(ctx context.Context, runID, date string) (*model.PackageDayOutcome, error) {
	started := time.Now()
	outcome := &model.PackageDayOutcome{Date: date}

	batches := []struct {
		registryName string
		fetcher      registry.DownloadsFetcher
		packages     []string
	}{
		{registry.RegistryNpm, s.npm, registry.NpmPackages},
		{registry.RegistryPyPI, s.pypi, registry.PyPIPackages},
	}

	for _, batch := range batches {
		for _, pkg := range batch.packages {
			result := &model.PackageResult{
				Registry:    batch.registryName,
				PackageName: pkg,
			}

			downloads, err := batch.fetcher.Downloads(ctx, pkg, date)
			if err != nil {
				logger.WarnCtx(ctx, "failed to fetch %s downloads for %s on %s: %v",
					batch.registryName, pkg, date, err)
				result.Failed = true
				outcome.Failed++
			} else {
				result.Downloads = downloads
			}

			if err := s.repo.PackageDownloads.Upsert(ctx, date, batch.registryName, pkg, result.Downloads); err != nil {
				return nil, err
			}
			outcome.Packages = append(outcome.Packages, result)
			s.sleep(s.delay)
		}
	}

	status := storemodel.IngestionStatusSuccess
	var cause string
	if outcome.Failed > 0 {
		status = storemodel.IngestionStatusError
		cause = fmt.Sprintf("%d of %d packages failed", outcome.Failed, len(outcome.Packages))
	}
	entry := &storemodel.IngestionLogEntry{
		RunID:      runID,
		Date:       date,
		Source:     storemodel.IngestionSourcePackages,
		Status:     status,
		Error:      cause,
		DurationMs: int(time.Since(started).Milliseconds()),
	}
	if err := s.repo.IngestionLog.Append(ctx, entry); err != nil {
		logger.WarnCtx(ctx, "failed to append ingestion log for %s: %v", date, err)
	}

	logger.InfoCtx(ctx, "package downloads %s: %d packages, %d failed",
		date, len(outcome.Packages), outcome.Failed)
	return outcome, nil
}
