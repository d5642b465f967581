package model

import "time"

// Ingestion run outcomes
const (
	IngestionStatusSuccess = "success"
	IngestionStatusError   = "error"
	IngestionStatusSkipped = "skipped"
)

// Ingestion sources (which upstream produced the data)
const (
	IngestionSourceSearch   = "search"
	IngestionSourceArchive  = "archive"
	IngestionSourcePackages = "packages"
)

// IngestionLogEntry is one append-only audit record per ingested date or range
type IngestionLogEntry struct {
	ID            uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	RunID         string    `gorm:"column:run_id;size:36;index" json:"runId"`
	Date          string    `gorm:"column:date;size:32;not null;index" json:"date"`
	Source        string    `gorm:"column:source;size:16;not null;default:search" json:"source"`
	Status        string    `gorm:"column:status;size:16;not null" json:"status"`
	TotalCommits  *int      `gorm:"column:total_commits" json:"totalCommits,omitempty"`
	ClaudeCommits *int      `gorm:"column:claude_commits" json:"claudeCommits,omitempty"`
	Error         string    `gorm:"column:error;type:text" json:"error,omitempty"`
	DurationMs    int       `gorm:"column:duration_ms;not null;default:0" json:"durationMs"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"createdAt"`
}

// TableName overrides the table name
func (IngestionLogEntry) TableName() string {
	return "ingestion_log"
}
