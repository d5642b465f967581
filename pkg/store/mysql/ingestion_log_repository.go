package mysql

import (
	"context"
	"fmt"
	"time"

	"aipulse/pkg/store/mysql/model"
)

// IngestionLogRepository appends audit records for ingestion runs
type IngestionLogRepository struct {
	ds *Datastore
}

// NewIngestionLogRepository creates a new ingestion log repository
func NewIngestionLogRepository(ds *Datastore) *IngestionLogRepository {
	return &IngestionLogRepository{ds: ds}
}

// Append writes one audit entry. The log is append-only.
func (r *IngestionLogRepository) Append(ctx context.Context, entry *model.IngestionLogEntry) error {
	entry.CreatedAt = time.Now().UTC()
	if err := r.ds.DB(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append ingestion log for %s: %w", entry.Date, err)
	}
	return nil
}

// ListRecent returns the newest entries first
func (r *IngestionLogRepository) ListRecent(ctx context.Context, limit int) ([]*model.IngestionLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	var entries []*model.IngestionLogEntry
	err := r.ds.DB(ctx).Order("id DESC").Limit(limit).Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list ingestion log: %w", err)
	}
	return entries, nil
}
