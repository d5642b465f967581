package mysql

import (
	"context"
	"fmt"
	"time"

	"aipulse/pkg/store/mysql/model"
	"aipulse/pkg/timeutil"

	"gorm.io/gorm/clause"
)

// WeeklyStatsRepository maintains the weekly rollup of daily rows
type WeeklyStatsRepository struct {
	ds *Datastore
}

// NewWeeklyStatsRepository creates a new weekly stats repository
func NewWeeklyStatsRepository(ds *Datastore) *WeeklyStatsRepository {
	return &WeeklyStatsRepository{ds: ds}
}

// weeklySumSelect sums every numeric column of the daily table. Aliases match
// the column names so the result scans straight into StatColumns.
const weeklySumSelect = `
	COALESCE(SUM(total_commits), 0) AS total_commits,
	COALESCE(SUM(claude_commits), 0) AS claude_commits,
	COALESCE(SUM(opus_commits), 0) AS opus_commits,
	COALESCE(SUM(sonnet_commits), 0) AS sonnet_commits,
	COALESCE(SUM(haiku_commits), 0) AS haiku_commits,
	COALESCE(SUM(other_model_commits), 0) AS other_model_commits,
	COALESCE(SUM(copilot_commits), 0) AS copilot_commits,
	COALESCE(SUM(cursor_commits), 0) AS cursor_commits,
	COALESCE(SUM(gemini_commits), 0) AS gemini_commits,
	COALESCE(SUM(devin_commits), 0) AS devin_commits,
	COALESCE(SUM(claude_code_generated), 0) AS claude_code_generated,
	COALESCE(SUM(devin_bot_commits), 0) AS devin_bot_commits,
	COALESCE(SUM(dependabot_commits), 0) AS dependabot_commits,
	COALESCE(SUM(renovate_commits), 0) AS renovate_commits,
	COALESCE(SUM(copilot_reviews), 0) AS copilot_reviews,
	COALESCE(SUM(coderabbit_reviews), 0) AS coderabbit_reviews,
	COALESCE(SUM(sourcery_reviews), 0) AS sourcery_reviews,
	COALESCE(SUM(claude_code_prs), 0) AS claude_code_prs,
	COALESCE(SUM(copilot_prs), 0) AS copilot_prs,
	COALESCE(SUM(cursor_prs), 0) AS cursor_prs,
	COALESCE(SUM(devin_prs), 0) AS devin_prs,
	COALESCE(SUM(all_ai_commits), 0) AS all_ai_commits,
	COALESCE(SUM(all_ai_reviews), 0) AS all_ai_reviews,
	COALESCE(SUM(all_ai_prs), 0) AS all_ai_prs`

// RefreshWeek recomputes the rollup of the ISO week containing the given day
// from the daily rows and upserts it keyed by the week's Monday. Percentages
// are recomputed from the summed numerator and denominator, never averaged.
func (r *WeeklyStatsRepository) RefreshWeek(ctx context.Context, dayInWeek time.Time) error {
	weekStart := timeutil.FormatDay(timeutil.WeekStart(dayInWeek))
	weekEnd := timeutil.FormatDay(timeutil.WeekEnd(dayInWeek))

	var sums model.StatColumns
	err := r.ds.DB(ctx).
		Table("daily_stats").
		Select(weeklySumSelect).
		Where("date >= ? AND date <= ?", weekStart, weekEnd).
		Scan(&sums).Error
	if err != nil {
		return fmt.Errorf("failed to sum daily stats for week %s: %w", weekStart, err)
	}

	if sums.TotalCommits > 0 {
		sums.ClaudePercentage = 100 * float64(sums.ClaudeCommits) / float64(sums.TotalCommits)
		sums.AllAiPercentage = 100 * float64(sums.AllAiCommits) / float64(sums.TotalCommits)
	}

	week := &model.WeeklyStat{
		WeekStart:   weekStart,
		StatColumns: sums,
		CreatedAt:   time.Now().UTC(),
	}

	err = r.ds.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "week_start"}},
		UpdateAll: true,
	}).Create(week).Error
	if err != nil {
		return fmt.Errorf("failed to upsert weekly stats for %s: %w", weekStart, err)
	}
	return nil
}

// GetByWeekStart retrieves one weekly row
func (r *WeeklyStatsRepository) GetByWeekStart(ctx context.Context, weekStart string) (*model.WeeklyStat, error) {
	var stat model.WeeklyStat
	err := r.ds.DB(ctx).Where("week_start = ?", weekStart).First(&stat).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get weekly stats for %s: %w", weekStart, err)
	}
	return &stat, nil
}

// ListFrom lists weekly rows ascending, optionally starting at a week
func (r *WeeklyStatsRepository) ListFrom(ctx context.Context, from string) ([]*model.WeeklyStat, error) {
	var stats []*model.WeeklyStat

	query := r.ds.DB(ctx).Model(&model.WeeklyStat{})
	if from != "" {
		query = query.Where("week_start >= ?", from)
	}

	if err := query.Order("week_start ASC").Find(&stats).Error; err != nil {
		return nil, fmt.Errorf("failed to list weekly stats: %w", err)
	}
	return stats, nil
}
