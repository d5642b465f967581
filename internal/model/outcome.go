package model

// IngestOutcome reports what one ingested date produced
type IngestOutcome struct {
	Date          string `json:"date"`
	Status        string `json:"status"`
	TotalCommits  int    `json:"totalCommits"`
	ClaudeCommits int    `json:"claudeCommits"`
	AllAiCommits  int    `json:"allAiCommits"`
	Error         string `json:"error,omitempty"`
	DurationMs    int    `json:"durationMs"`
}

// RangeOutcome reports a multi-day run
type RangeOutcome struct {
	RunID     string           `json:"runId"`
	From      string           `json:"from"`
	To        string           `json:"to"`
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	Results   []*IngestOutcome `json:"results"`
}

// ArchiveOutcome reports an archive batch backfill. DaysMissing lists dates
// inside the requested range the archive had no rows for; those days are
// left untouched rather than zeroed.
type ArchiveOutcome struct {
	RunID        string   `json:"runId"`
	From         string   `json:"from"`
	To           string   `json:"to"`
	DaysIngested int      `json:"daysIngested"`
	DaysMissing  []string `json:"daysMissing,omitempty"`
	WeeksTouched int      `json:"weeksTouched"`
	DurationMs   int      `json:"durationMs"`
}

// PackageResult is one package's downloads for one day
type PackageResult struct {
	Registry    string `json:"registry"`
	PackageName string `json:"packageName"`
	Downloads   int    `json:"downloads"`
	Failed      bool   `json:"failed,omitempty"`
}

// PackageDayOutcome reports one day of registry download ingestion
type PackageDayOutcome struct {
	Date     string           `json:"date"`
	Packages []*PackageResult `json:"packages"`
	Failed   int              `json:"failed"`
}

// PackageRangeOutcome reports a multi-day registry download run
type PackageRangeOutcome struct {
	RunID string               `json:"runId"`
	From  string               `json:"from"`
	To    string               `json:"to"`
	Days  []*PackageDayOutcome `json:"days"`
}

// TotalsOutcome reports a totals-only maintenance pass
type TotalsOutcome struct {
	RunID   string   `json:"runId"`
	Updated []string `json:"updated"`
	Skipped []string `json:"skipped"`
}
