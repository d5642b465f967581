package model

import "time"

// StatColumns is the shared numeric column set of the daily and weekly tables
type StatColumns struct {
	TotalCommits      int     `gorm:"column:total_commits;not null;default:0" json:"totalCommits"`
	ClaudeCommits     int     `gorm:"column:claude_commits;not null;default:0" json:"claudeCommits"`
	OpusCommits       int     `gorm:"column:opus_commits;not null;default:0" json:"opusCommits"`
	SonnetCommits     int     `gorm:"column:sonnet_commits;not null;default:0" json:"sonnetCommits"`
	HaikuCommits      int     `gorm:"column:haiku_commits;not null;default:0" json:"haikuCommits"`
	OtherModelCommits int     `gorm:"column:other_model_commits;not null;default:0" json:"otherModelCommits"`
	ClaudePercentage  float64 `gorm:"column:claude_percentage;not null;default:0" json:"claudePercentage"`

	CopilotCommits int `gorm:"column:copilot_commits;not null;default:0" json:"copilotCommits"`
	CursorCommits  int `gorm:"column:cursor_commits;not null;default:0" json:"cursorCommits"`
	GeminiCommits  int `gorm:"column:gemini_commits;not null;default:0" json:"geminiCommits"`
	DevinCommits   int `gorm:"column:devin_commits;not null;default:0" json:"devinCommits"`

	ClaudeCodeGenerated int `gorm:"column:claude_code_generated;not null;default:0" json:"claudeCodeGenerated"`
	DevinBotCommits     int `gorm:"column:devin_bot_commits;not null;default:0" json:"devinBotCommits"`
	DependabotCommits   int `gorm:"column:dependabot_commits;not null;default:0" json:"dependabotCommits"`
	RenovateCommits     int `gorm:"column:renovate_commits;not null;default:0" json:"renovateCommits"`

	CopilotReviews   int `gorm:"column:copilot_reviews;not null;default:0" json:"copilotReviews"`
	CoderabbitReviews int `gorm:"column:coderabbit_reviews;not null;default:0" json:"coderabbitReviews"`
	SourceryReviews  int `gorm:"column:sourcery_reviews;not null;default:0" json:"sourceryReviews"`

	ClaudeCodePRs int `gorm:"column:claude_code_prs;not null;default:0" json:"claudeCodePrs"`
	CopilotPRs    int `gorm:"column:copilot_prs;not null;default:0" json:"copilotPrs"`
	CursorPRs     int `gorm:"column:cursor_prs;not null;default:0" json:"cursorPrs"`
	DevinPRs      int `gorm:"column:devin_prs;not null;default:0" json:"devinPrs"`

	AllAiCommits    int     `gorm:"column:all_ai_commits;not null;default:0" json:"allAiCommits"`
	AllAiPercentage float64 `gorm:"column:all_ai_percentage;not null;default:0" json:"allAiPercentage"`
	AllAiReviews    int     `gorm:"column:all_ai_reviews;not null;default:0" json:"allAiReviews"`
	AllAiPRs        int     `gorm:"column:all_ai_prs;not null;default:0" json:"allAiPrs"`
}

// DailyStat is one day of activity counts, keyed by the UTC day
type DailyStat struct {
	Date string `gorm:"column:date;primaryKey;size:10" json:"date"`
	StatColumns
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
}

// TableName overrides the table name
func (DailyStat) TableName() string {
	return "daily_stats"
}

// WeeklyStat is the rollup of one ISO week of daily rows, keyed by its Monday
type WeeklyStat struct {
	WeekStart string `gorm:"column:week_start;primaryKey;size:10" json:"weekStart"`
	StatColumns
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
}

// TableName overrides the table name
func (WeeklyStat) TableName() string {
	return "weekly_stats"
}
