package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"aipulse/pkg/store/mysql/model"

	"gorm.io/gorm"
)

// PackageDownloadsRepository handles registry download counts in MySQL
type PackageDownloadsRepository struct {
	ds *Datastore
}

// NewPackageDownloadsRepository creates a new package downloads repository
func NewPackageDownloadsRepository(ds *Datastore) *PackageDownloadsRepository {
	return &PackageDownloadsRepository{ds: ds}
}

// Upsert writes one (date, registry, package) download count. Existing rows
// get the new count and a refreshed created_at.
func (r *PackageDownloadsRepository) Upsert(ctx context.Context, date, registry, packageName string, downloads int) error {
	now := time.Now().UTC()

	var existing model.PackageDownload
	err := r.ds.DB(ctx).
		Where("date = ? AND registry = ? AND package_name = ?", date, registry, packageName).
		First(&existing).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		record := &model.PackageDownload{
			Date:        date,
			Registry:    registry,
			PackageName: packageName,
			Downloads:   downloads,
			CreatedAt:   now,
		}
		if err := r.ds.DB(ctx).Create(record).Error; err != nil {
			return fmt.Errorf("failed to create package downloads for %s/%s on %s: %w", registry, packageName, date, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load package downloads for %s/%s on %s: %w", registry, packageName, date, err)
	}

	err = r.ds.DB(ctx).Model(&existing).Updates(map[string]interface{}{
		"downloads":  downloads,
		"created_at": now,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to update package downloads for %s/%s on %s: %w", registry, packageName, date, err)
	}
	return nil
}

// ListFrom lists download rows ascending by date, optionally starting at a date
func (r *PackageDownloadsRepository) ListFrom(ctx context.Context, from string) ([]*model.PackageDownload, error) {
	var records []*model.PackageDownload

	query := r.ds.DB(ctx).Model(&model.PackageDownload{})
	if from != "" {
		query = query.Where("date >= ?", from)
	}

	err := query.Order("date ASC, registry ASC, package_name ASC").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list package downloads: %w", err)
	}
	return records, nil
}
