package model

import (
	"aipulse/pkg/github"
	storemodel "aipulse/pkg/store/mysql/model"
)

// Percentage returns 100*numerator/denominator, 0 when the denominator is 0
func Percentage(numerator, denominator int) float64 {
	if denominator == 0 {
		return 0
	}
	return 100 * float64(numerator) / float64(denominator)
}

// NewDailyStat builds a full daily row from raw signal counts. Derived
// columns are always recomputed here, never read from the input map, so a
// re-ingested day can only carry internally consistent values.
func NewDailyStat(date string, counts map[string]int) *storemodel.DailyStat {
	stat := &storemodel.DailyStat{Date: date}

	stat.TotalCommits = counts[github.KeyTotalCommits]
	stat.ClaudeCommits = counts[github.KeyClaudeCommits]
	stat.OpusCommits = counts[github.KeyOpusCommits]
	stat.SonnetCommits = counts[github.KeySonnetCommits]
	stat.HaikuCommits = counts[github.KeyHaikuCommits]
	stat.CopilotCommits = counts[github.KeyCopilotCommits]
	stat.CursorCommits = counts[github.KeyCursorCommits]
	stat.GeminiCommits = counts[github.KeyGeminiCommits]
	stat.DevinCommits = counts[github.KeyDevinCommits]
	stat.ClaudeCodeGenerated = counts[github.KeyClaudeCodeGenerated]
	stat.DevinBotCommits = counts[github.KeyDevinBotCommits]
	stat.DependabotCommits = counts[github.KeyDependabotCommits]
	stat.RenovateCommits = counts[github.KeyRenovateCommits]
	stat.CopilotReviews = counts[github.KeyCopilotReviews]
	stat.CoderabbitReviews = counts[github.KeyCoderabbitReviews]
	stat.SourceryReviews = counts[github.KeySourceryReviews]
	stat.ClaudeCodePRs = counts[github.KeyClaudeCodePRs]
	stat.CopilotPRs = counts[github.KeyCopilotPRs]
	stat.CursorPRs = counts[github.KeyCursorPRs]
	stat.DevinPRs = counts[github.KeyDevinPRs]

	// The model-specific markers overlap the generic Claude marker, so the
	// remainder is what did not name a model. Marker drift upstream can make
	// the model counts exceed the generic one; clamp instead of going negative.
	other := stat.ClaudeCommits - stat.OpusCommits - stat.SonnetCommits - stat.HaikuCommits
	if other < 0 {
		other = 0
	}
	stat.OtherModelCommits = other

	stat.AllAiCommits = stat.ClaudeCommits + stat.CopilotCommits + stat.CursorCommits +
		stat.GeminiCommits + stat.DevinCommits
	stat.AllAiReviews = stat.CopilotReviews + stat.CoderabbitReviews + stat.SourceryReviews
	stat.AllAiPRs = stat.ClaudeCodePRs + stat.CopilotPRs + stat.CursorPRs + stat.DevinPRs

	stat.ClaudePercentage = Percentage(stat.ClaudeCommits, stat.TotalCommits)
	stat.AllAiPercentage = Percentage(stat.AllAiCommits, stat.TotalCommits)

	return stat
}
