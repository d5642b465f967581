package service

import (
	"context"
	"fmt"
	"math"

	"aipulse/internal/model"
	"aipulse/pkg/store/mysql"
	storemodel "aipulse/pkg/store/mysql/model"
	"aipulse/pkg/timeutil"
)

// StatsService serves read queries over the ingested tables
type StatsService struct {
	repo *mysql.Repository
}

// NewStatsService creates the read-side stats service
func NewStatsService(repo *mysql.Repository) *StatsService {
	return &StatsService{repo: repo}
}

// StatsResponse is the full stats payload: daily series, weekly rollup and
// the derived summary.
type StatsResponse struct {
	Daily   []*storemodel.DailyStat  `json:"daily"`
	Weekly  []*storemodel.WeeklyStat `json:"weekly"`
	Summary *StatsSummary            `json:"summary"`
}

// StatsSummary aggregates the daily series into headline numbers. Growth
// figures compare the average claude share of the last N days against the
// N days before them, as a relative change.
type StatsSummary struct {
	TotalClaudeCommits int     `json:"totalClaudeCommits"`
	TotalAllCommits    int     `json:"totalAllCommits"`
	OverallPercentage  float64 `json:"overallPercentage"`
	LatestPercentage   float64 `json:"latestPercentage"`
	LatestDate         string  `json:"latestDate"`
	Growth7d           float64 `json:"growth7d"`
	Growth30d          float64 `json:"growth30d"`
	TotalAllAiCommits  int     `json:"totalAllAiCommits"`
	AllAiPercentage    float64 `json:"allAiPercentage"`
	TotalAllAiReviews  int     `json:"totalAllAiReviews"`
	TotalAllAiPRs      int     `json:"totalAllAiPRs"`
}

// PackageSeries is one package's download time series
type PackageSeries struct {
	Registry    string          `json:"registry"`
	PackageName string          `json:"packageName"`
	Points      []*PackagePoint `json:"points"`
}

// PackagePoint is one day of downloads
type PackagePoint struct {
	Date      string `json:"date"`
	Downloads int    `json:"downloads"`
}

// PackageStatsResponse groups download series by registry and package
type PackageStatsResponse struct {
	Series []*PackageSeries `json:"series"`
}

// HealthStatus reports liveness plus data freshness
type HealthStatus struct {
	Status     string `json:"status"`
	LatestDate string `json:"latestDate,omitempty"`
}

// GetStats returns the daily series, the weekly rollup and the summary,
// optionally starting at a date.
func (s *StatsService) GetStats(ctx context.Context, from string) (*StatsResponse, error) {
	if from != "" {
		if _, err := timeutil.ParseDay(from); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}

	daily, err := s.repo.DailyStats.ListFrom(ctx, from)
	if err != nil {
		return nil, err
	}

	weeklyFrom := ""
	if from != "" {
		day, _ := timeutil.ParseDay(from)
		weeklyFrom = timeutil.FormatDay(timeutil.WeekStart(day))
	}
	weekly, err := s.repo.WeeklyStats.ListFrom(ctx, weeklyFrom)
	if err != nil {
		return nil, err
	}

	return &StatsResponse{
		Daily:   daily,
		Weekly:  weekly,
		Summary: buildSummary(daily),
	}, nil
}

// GetPackageStats returns download series per tracked package
func (s *StatsService) GetPackageStats(ctx context.Context, from string) (*PackageStatsResponse, error) {
	if from != "" {
		if _, err := timeutil.ParseDay(from); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}

	records, err := s.repo.PackageDownloads.ListFrom(ctx, from)
	if err != nil {
		return nil, err
	}

	index := make(map[string]*PackageSeries)
	var series []*PackageSeries
	for _, record := range records {
		key := record.Registry + "/" + record.PackageName
		entry, ok := index[key]
		if !ok {
			entry = &PackageSeries{
				Registry:    record.Registry,
				PackageName: record.PackageName,
			}
			index[key] = entry
			series = append(series, entry)
		}
		entry.Points = append(entry.Points, &PackagePoint{
			Date:      record.Date,
			Downloads: record.Downloads,
		})
	}

	return &PackageStatsResponse{Series: series}, nil
}

// RecentRuns returns the newest ingestion log entries
func (s *StatsService) RecentRuns(ctx context.Context, limit int) ([]*storemodel.IngestionLogEntry, error) {
	return s.repo.IngestionLog.ListRecent(ctx, limit)
}

// Health returns liveness and the latest ingested date
func (s *StatsService) Health(ctx context.Context) (*HealthStatus, error) {
	latest, err := s.repo.DailyStats.LatestDate(ctx)
	if err != nil {
		return nil, err
	}
	return &HealthStatus{Status: "ok", LatestDate: latest}, nil
}

func buildSummary(daily []*storemodel.DailyStat) *StatsSummary {
	summary := &StatsSummary{}
	if len(daily) == 0 {
		return summary
	}

	for _, day := range daily {
		summary.TotalClaudeCommits += day.ClaudeCommits
		summary.TotalAllCommits += day.TotalCommits
		summary.TotalAllAiCommits += day.AllAiCommits
		summary.TotalAllAiReviews += day.AllAiReviews
		summary.TotalAllAiPRs += day.AllAiPRs
	}

	latest := daily[len(daily)-1]
	summary.LatestDate = latest.Date
	summary.LatestPercentage = round2(latest.ClaudePercentage)
	summary.OverallPercentage = round2(model.Percentage(summary.TotalClaudeCommits, summary.TotalAllCommits))
	summary.AllAiPercentage = round2(model.Percentage(summary.TotalAllAiCommits, summary.TotalAllCommits))
	summary.Growth7d = round2(growth(daily, 7))
	summary.Growth30d = round2(growth(daily, 30))
	return summary
}

// growth compares the mean claude share of the last window days against the
// window before it. Zero when either window is empty or the earlier mean is
// zero.
func growth(daily []*storemodel.DailyStat, window int) float64 {
	if len(daily) <= window {
		return 0
	}

	last := daily[len(daily)-window:]
	prevStart := len(daily) - 2*window
	if prevStart < 0 {
		prevStart = 0
	}
	prev := daily[prevStart : len(daily)-window]

	avgLast := meanClaudePercentage(last)
	avgPrev := meanClaudePercentage(prev)
	if avgPrev == 0 {
		return 0
	}
	return (avgLast - avgPrev) / avgPrev * 100
}

func meanClaudePercentage(days []*storemodel.DailyStat) float64 {
	if len(days) == 0 {
		return 0
	}
	var sum float64
	for _, day := range days {
		sum += day.ClaudePercentage
	}
	return sum / float64(len(days))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
