package main

import (
	"context"
	"fmt"
	"time"

	"aipulse/internal/jobs"
	"aipulse/internal/service"
	"aipulse/pkg/logger"
)

func (app *Application) initJobs() error {
	if app.ingestService == nil || app.packageService == nil {
		logger.WarnCtx(app.ctx, "Service layer not fully initialized yet, skipping background task registration")
		return nil
	}

	manager := jobs.NewManager(app.ctx)

	// Both jobs align to the day boundary. Search counts and registry
	// downloads for a date are only complete once the date is over, so the
	// midnight run picks up the freshly closed day. The run lock inside the
	// services keeps replicas from double-ingesting.
	manager.Register(newCollectJob(24*time.Hour, app.ingestService))
	manager.Register(newPackageCollectJob(24*time.Hour, app.packageService))

	app.jobsManager = manager
	return nil
}

// collectJob catches the daily table up through yesterday
type collectJob struct {
	interval      time.Duration
	ingestService *service.IngestService
}

func newCollectJob(interval time.Duration, svc *service.IngestService) jobs.Job {
	return &collectJob{
		interval:      interval,
		ingestService: svc,
	}
}

func (j *collectJob) Name() string {
	return "daily-collect"
}

func (j *collectJob) Interval() time.Duration {
	return j.interval
}

func (j *collectJob) AlignToInterval() bool { return true }

func (j *collectJob) Run(ctx context.Context) error {
	if j.ingestService == nil {
		return fmt.Errorf("ingest service not configured")
	}

	logger.InfoCtx(ctx, "running daily collect job")
	outcome, err := j.ingestService.CollectLatest(ctx)
	if err != nil {
		return err
	}

	logger.InfoCtx(ctx, "daily collect finished: %d succeeded, %d failed", outcome.Succeeded, outcome.Failed)
	return nil
}

// packageCollectJob ingests yesterday's registry downloads
type packageCollectJob struct {
	interval       time.Duration
	packageService *service.PackageService
}

func newPackageCollectJob(interval time.Duration, svc *service.PackageService) jobs.Job {
	return &packageCollectJob{
		interval:       interval,
		packageService: svc,
	}
}

func (j *packageCollectJob) Name() string {
	return "daily-package-collect"
}

func (j *packageCollectJob) Interval() time.Duration {
	return j.interval
}

func (j *packageCollectJob) AlignToInterval() bool { return true }

func (j *packageCollectJob) Run(ctx context.Context) error {
	if j.packageService == nil {
		return fmt.Errorf("package service not configured")
	}

	logger.InfoCtx(ctx, "running daily package collect job")
	outcome, err := j.packageService.CollectYesterday(ctx)
	if err != nil {
		return err
	}

	logger.InfoCtx(ctx, "daily package collect finished: %d packages, %d failed", len(outcome.Packages), outcome.Failed)
	return nil
}
