package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"aipulse/pkg/registry"
	"aipulse/pkg/store/mysql"
	storemodel "aipulse/pkg/store/mysql/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDownloads struct {
	downloadsFunc func(pkg, date string) (int, error)
	calls         int
}

func (f *fakeDownloads) Downloads(ctx context.Context, pkg, date string) (int, error) {
	f.calls++
	return f.downloadsFunc(pkg, date)
}

func newTestPackageService(npm, pypi registry.DownloadsFetcher, repo *mysql.Repository) *PackageService {
	return &PackageService{
		npm:   npm,
		pypi:  pypi,
		repo:  repo,
		sleep: func(time.Duration) {},
	}
}

func TestPackageIngestDayStoresAllPackages(t *testing.T) {
	repo := newTestRepository(t)
	npm := &fakeDownloads{downloadsFunc: func(pkg, date string) (int, error) { return 100, nil }}
	pypi := &fakeDownloads{downloadsFunc: func(pkg, date string) (int, error) { return 200, nil }}
	svc := newTestPackageService(npm, pypi, repo)
	ctx := context.Background()

	outcome, err := svc.IngestDay(ctx, "2024-06-05")
	require.NoError(t, err)
	assert.Zero(t, outcome.Failed)
	assert.Len(t, outcome.Packages, len(registry.NpmPackages)+len(registry.PyPIPackages))
	assert.Equal(t, len(registry.NpmPackages), npm.calls)
	assert.Equal(t, len(registry.PyPIPackages), pypi.calls)

	records, err := repo.PackageDownloads.ListFrom(ctx, "")
	require.NoError(t, err)
	assert.Len(t, records, len(registry.NpmPackages)+len(registry.PyPIPackages))

	entries, err := repo.IngestionLog.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, storemodel.IngestionSourcePackages, entries[0].Source)
	assert.Equal(t, storemodel.IngestionStatusSuccess, entries[0].Status)
}

func TestPackageIngestDayFailedPackageStoresZeroAndContinues(t *testing.T) {
	repo := newTestRepository(t)
	npm := &fakeDownloads{downloadsFunc: func(pkg, date string) (int, error) {
		if pkg == "openai" {
			return 0, errors.New("registry down")
		}
		return 50, nil
	}}
	pypi := &fakeDownloads{downloadsFunc: func(pkg, date string) (int, error) { return 75, nil }}
	svc := newTestPackageService(npm, pypi, repo)
	ctx := context.Background()

	outcome, err := svc.IngestDay(ctx, "2024-06-05")
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Failed)
	assert.Len(t, outcome.Packages, len(registry.NpmPackages)+len(registry.PyPIPackages))

	for _, result := range outcome.Packages {
		if result.PackageName == "openai" && result.Registry == registry.RegistryNpm {
			assert.True(t, result.Failed)
			assert.Zero(t, result.Downloads)
		}
	}

	// the failed package still gets a zero row
	records, err := repo.PackageDownloads.ListFrom(ctx, "")
	require.NoError(t, err)
	assert.Len(t, records, len(registry.NpmPackages)+len(registry.PyPIPackages))

	entries, err := repo.IngestionLog.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, storemodel.IngestionStatusError, entries[0].Status)
	assert.Contains(t, entries[0].Error, "1 of")
}

func TestPackageIngestRange(t *testing.T) {
	repo := newTestRepository(t)
	npm := &fakeDownloads{downloadsFunc: func(pkg, date string) (int, error) { return 10, nil }}
	pypi := &fakeDownloads{downloadsFunc: func(pkg, date string) (int, error) { return 20, nil }}
	svc := newTestPackageService(npm, pypi, repo)
	ctx := context.Background()

	outcome, err := svc.IngestRange(ctx, "2024-06-01", "2024-06-03")
	require.NoError(t, err)
	assert.Len(t, outcome.Days, 3)
	assert.Equal(t, 3*len(registry.NpmPackages), npm.calls)

	records, err := repo.PackageDownloads.ListFrom(ctx, "2024-06-03")
	require.NoError(t, err)
	assert.Len(t, records, len(registry.NpmPackages)+len(registry.PyPIPackages))
}

func TestPackageIngestRangeValidation(t *testing.T) {
	repo := newTestRepository(t)
	npm := &fakeDownloads{downloadsFunc: func(pkg, date string) (int, error) { return 0, nil }}
	svc := newTestPackageService(npm, npm, repo)
	ctx := context.Background()

	_, err := svc.IngestRange(ctx, "2024-06-03", "2024-06-01")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.IngestRange(ctx, "2023-01-01", "2024-01-01")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.IngestDay(ctx, "June 5th")
	assert.ErrorIs(t, err, ErrValidation)

	assert.Zero(t, npm.calls)
}

func TestPackageIngestDayReingestReplacesCounts(t *testing.T) {
	repo := newTestRepository(t)
	count := 100
	npm := &fakeDownloads{downloadsFunc: func(pkg, date string) (int, error) { return count, nil }}
	pypi := &fakeDownloads{downloadsFunc: func(pkg, date string) (int, error) { return count, nil }}
	svc := newTestPackageService(npm, pypi, repo)
	ctx := context.Background()

	_, err := svc.IngestDay(ctx, "2024-06-05")
	require.NoError(t, err)

	count = 250
	_, err = svc.IngestDay(ctx, "2024-06-05")
	require.NoError(t, err)

	records, err := repo.PackageDownloads.ListFrom(ctx, "")
	require.NoError(t, err)
	require.Len(t, records, len(registry.NpmPackages)+len(registry.PyPIPackages))
	for _, record := range records {
		assert.Equal(t, 250, record.Downloads)
	}
}
