package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"aipulse/pkg/store/mysql/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DailyStatsRepository handles daily activity rows in MySQL
type DailyStatsRepository struct {
	ds *Datastore
}

// NewDailyStatsRepository creates a new daily stats repository
func NewDailyStatsRepository(ds *Datastore) *DailyStatsRepository {
	return &DailyStatsRepository{ds: ds}
}

// Upsert writes a full daily row, replacing every column when the date
// already exists. created_at is refreshed so it records the last ingestion
// time, not the first.
func (r *DailyStatsRepository) Upsert(ctx context.Context, stat *model.DailyStat) error {
	stat.CreatedAt = time.Now().UTC()

	err := r.ds.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		UpdateAll: true,
	}).Create(stat).Error
	if err != nil {
		return fmt.Errorf("failed to upsert daily stats for %s: %w", stat.Date, err)
	}
	return nil
}

// GetByDate retrieves one daily row
func (r *DailyStatsRepository) GetByDate(ctx context.Context, date string) (*model.DailyStat, error) {
	var stat model.DailyStat
	err := r.ds.DB(ctx).Where("date = ?", date).First(&stat).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get daily stats for %s: %w", date, err)
	}
	return &stat, nil
}

// ListFrom lists daily rows ascending, optionally starting at a date
func (r *DailyStatsRepository) ListFrom(ctx context.Context, from string) ([]*model.DailyStat, error) {
	var stats []*model.DailyStat

	query := r.ds.DB(ctx).Model(&model.DailyStat{})
	if from != "" {
		query = query.Where("date >= ?", from)
	}

	if err := query.Order("date ASC").Find(&stats).Error; err != nil {
		return nil, fmt.Errorf("failed to list daily stats: %w", err)
	}
	return stats, nil
}

// LatestDate returns the most recent ingested date, empty when the table is empty
func (r *DailyStatsRepository) LatestDate(ctx context.Context) (string, error) {
	var stat model.DailyStat
	err := r.ds.DB(ctx).Order("date DESC").First(&stat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get latest daily stats date: %w", err)
	}
	return stat.Date, nil
}

// UpdateTotals rewrites only the denominator columns of an existing row.
// Returns false without error when the row does not exist.
func (r *DailyStatsRepository) UpdateTotals(ctx context.Context, date string, totalCommits int, claudePct, allAiPct float64) (bool, error) {
	var stat model.DailyStat
	err := r.ds.DB(ctx).Where("date = ?", date).First(&stat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load daily stats for %s: %w", date, err)
	}

	err = r.ds.DB(ctx).Model(&model.DailyStat{}).Where("date = ?", date).Updates(map[string]interface{}{
		"total_commits":     totalCommits,
		"claude_percentage": claudePct,
		"all_ai_percentage": allAiPct,
	}).Error
	if err != nil {
		return false, fmt.Errorf("failed to update totals for %s: %w", date, err)
	}
	return true, nil
}
