package mysql

import (
	"fmt"

	"aipulse/pkg/store/mysql/model"

	"gorm.io/gorm"
)

// Repository aggregates all MySQL repositories
type Repository struct {
	ds *Datastore

	DailyStats       *DailyStatsRepository
	WeeklyStats      *WeeklyStatsRepository
	PackageDownloads *PackageDownloadsRepository
	IngestionLog     *IngestionLogRepository
}

// NewRepository creates a new MySQL repository with all sub-repositories
func NewRepository(dsn string) (*Repository, error) {
	ds, err := NewDatastore(dsn)
	if err != nil {
		return nil, err
	}
	return newRepository(ds), nil
}

// NewRepositoryWithDialector builds the repository on an arbitrary dialector.
// Tests use this with in-memory sqlite.
func NewRepositoryWithDialector(dialector gorm.Dialector) (*Repository, error) {
	ds, err := NewDatastoreWithDialector(dialector)
	if err != nil {
		return nil, err
	}
	return newRepository(ds), nil
}

func newRepository(ds *Datastore) *Repository {
	return &Repository{
		ds:               ds,
		DailyStats:       NewDailyStatsRepository(ds),
		WeeklyStats:      NewWeeklyStatsRepository(ds),
		PackageDownloads: NewPackageDownloadsRepository(ds),
		IngestionLog:     NewIngestionLogRepository(ds),
	}
}

// Migrate creates or updates the table schemas
func (r *Repository) Migrate() error {
	err := r.ds.GetDB().AutoMigrate(
		&model.DailyStat{},
		&model.WeeklyStat{},
		&model.PackageDownload{},
		&model.IngestionLogEntry{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// GetDatastore returns the underlying datastore for transaction support
func (r *Repository) GetDatastore() *Datastore {
	return r.ds
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.ds.Close()
}
