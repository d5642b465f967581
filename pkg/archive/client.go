package archive

import (
	"context"
	"fmt"
	"time"

	"aipulse/pkg/config"
	"aipulse/pkg/github"
	"aipulse/pkg/logger"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// DayStats is one day of commit counts from the archive. Review and PR
// signals do not exist in push events, so the vector stops at commits.
type DayStats struct {
	Date                string `bigquery:"date"`
	TotalCommits        int64  `bigquery:"total_commits"`
	ClaudeCommits       int64  `bigquery:"claude_commits"`
	OpusCommits         int64  `bigquery:"opus_commits"`
	SonnetCommits       int64  `bigquery:"sonnet_commits"`
	HaikuCommits        int64  `bigquery:"haiku_commits"`
	CopilotCommits      int64  `bigquery:"copilot_commits"`
	CursorCommits       int64  `bigquery:"cursor_commits"`
	GeminiCommits       int64  `bigquery:"gemini_commits"`
	DevinCommits        int64  `bigquery:"devin_commits"`
	ClaudeCodeGenerated int64  `bigquery:"claude_code_generated"`
	DevinBotCommits     int64  `bigquery:"devin_bot_commits"`
	DependabotCommits   int64  `bigquery:"dependabot_commits"`
	RenovateCommits     int64  `bigquery:"renovate_commits"`
}

// Counts converts the row into the signal-count map the stats builder eats.
// Keys the archive cannot measure are simply absent.
func (d *DayStats) Counts() map[string]int {
	return map[string]int{
		github.KeyTotalCommits:        int(d.TotalCommits),
		github.KeyClaudeCommits:       int(d.ClaudeCommits),
		github.KeyOpusCommits:         int(d.OpusCommits),
		github.KeySonnetCommits:       int(d.SonnetCommits),
		github.KeyHaikuCommits:        int(d.HaikuCommits),
		github.KeyCopilotCommits:      int(d.CopilotCommits),
		github.KeyCursorCommits:       int(d.CursorCommits),
		github.KeyGeminiCommits:       int(d.GeminiCommits),
		github.KeyDevinCommits:        int(d.DevinCommits),
		github.KeyClaudeCodeGenerated: int(d.ClaudeCodeGenerated),
		github.KeyDevinBotCommits:     int(d.DevinBotCommits),
		github.KeyDependabotCommits:   int(d.DependabotCommits),
		github.KeyRenovateCommits:     int(d.RenovateCommits),
	}
}

// Client queries GH Archive through BigQuery
type Client struct {
	bq      *bigquery.Client
	dataset string
}

// NewClient creates a BigQuery-backed archive client
func NewClient(ctx context.Context, cfg *config.BigQueryConfig) (*Client, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	bq, err := bigquery.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bigquery client: %w", err)
	}

	dataset := cfg.Dataset
	if dataset == "" {
		dataset = "githubarchive"
	}

	return &Client{bq: bq, dataset: dataset}, nil
}

// QueryDayStats runs one range query and returns a row per day with commits
func (c *Client) QueryDayStats(ctx context.Context, from, to time.Time) ([]*DayStats, error) {
	query := c.bq.Query(BuildQuery(c.dataset, from, to))

	started := time.Now()
	it, err := query.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run archive query: %w", err)
	}

	var days []*DayStats
	for {
		var row DayStats
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read archive row: %w", err)
		}
		days = append(days, &row)
	}

	logger.InfoCtx(ctx, "archive query %s..%s returned %d days in %s",
		from.UTC().Format("2006-01-02"), to.UTC().Format("2006-01-02"),
		len(days), time.Since(started).Round(time.Millisecond))
	return days, nil
}

// Close releases the underlying client
func (c *Client) Close() error {
	return c.bq.Close()
}
