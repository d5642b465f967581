package github

import "fmt"

// Signal keys, also the result-map keys consumed by the stats builder
const (
	KeyTotalCommits        = "totalCommits"
	KeyClaudeCommits       = "claudeCommits"
	KeyOpusCommits         = "opusCommits"
	KeySonnetCommits       = "sonnetCommits"
	KeyHaikuCommits        = "haikuCommits"
	KeyCopilotCommits      = "copilotCommits"
	KeyCursorCommits       = "cursorCommits"
	KeyGeminiCommits       = "geminiCommits"
	KeyDevinCommits        = "devinCommits"
	KeyClaudeCodeGenerated = "claudeCodeGenerated"
	KeyDevinBotCommits     = "devinBotCommits"
	KeyDependabotCommits   = "dependabotCommits"
	KeyRenovateCommits     = "renovateCommits"
	KeyCopilotReviews      = "copilotReviews"
	KeyCoderabbitReviews   = "coderabbitReviews"
	KeySourceryReviews     = "sourceryReviews"
	KeyClaudeCodePRs       = "claudeCodePRs"
	KeyCopilotPRs          = "copilotPRs"
	KeyCursorPRs           = "cursorPRs"
	KeyDevinPRs            = "devinPRs"
)

// Signal is one countable activity marker. Query takes a day (2024-06-05) or
// a range (2024-06-01..2024-06-30); the search syntax accepts both.
type Signal struct {
	Key   string
	Kind  SearchKind
	Query func(dateOrRange string) string
}

// Signals is the fixed, ordered catalog of tracked markers. totalCommits is
// the denominator and is exempt from sparsity screening.
var Signals = []Signal{
	{Key: KeyTotalCommits, Kind: SearchCommits, Query: func(d string) string {
		return fmt.Sprintf("committer-date:%s", d)
	}},
	{Key: KeyClaudeCommits, Kind: SearchCommits, Query: func(d string) string {
		return fmt.Sprintf(`"Co-Authored-By: Claude" noreply@anthropic.com committer-date:%s`, d)
	}},
	{Key: KeyOpusCommits, Kind: SearchCommits, Query: func(d string) string {
		return fmt.Sprintf(`"Co-Authored-By: Claude Opus" noreply@anthropic.com committer-date:%s`, d)
	}},
	{Key: KeySonnetCommits, Kind: SearchCommits, Query: func(d string) string {
		return fmt.Sprintf(`"Co-Authored-By: Claude Sonnet" noreply@anthropic.com committer-date:%s`, d)
	}},
	{Key: KeyHaikuCommits, Kind: SearchCommits, Query: func(d string) string {
		return fmt.Sprintf(`"Co-Authored-By: Claude Haiku" noreply@anthropic.com committer-date:%s`, d)
	}},
	{Key: KeyCopilotCommits, Kind: SearchCommits, Query: func(d string) string {
		return fmt.Sprintf(`"Co-authored-by: Copilot" users.noreply.github.com committer-date:%s`, d)
	}},
	{Key: KeyCursorCommits, Kind: SearchCommits, Query: func(d string) string {
		return fmt.Sprintf(`"Co-authored-by: Cursor" cursoragent@cursor.com committer-date:%s`, d)
	}},
	{Key: KeyGeminiCommits, Kind: SearchCommits, Query: func(d string) string {
		return fmt.Sprintf(`"Co-authored-by: gemini-code-assist" users.noreply.github.com committer-date:%s`, d)
	}},
	{Key: KeyDevinCommits, Kind: SearchCommits, Query: func(d string) string {
		return fmt.Sprintf(`"Co-authored-by: Devin AI" devin-ai-integration committer-date:%s`, d)
	}},
	{Key: KeyClaudeCodeGenerated, Kind: SearchCommits, Query: func(d string) string {
		return fmt.Sprintf(`"Generated with Claude Code" committer-date:%s`, d)
	}},
	{Key: KeyDevinBotCommits, Kind: SearchCommits, Query: func(d string) string {
		return fmt.Sprintf("author:devin-ai-integration[bot] committer-date:%s", d)
	}},
	{Key: KeyDependabotCommits, Kind: SearchCommits, Query: func(d string) string {
		return fmt.Sprintf("author:dependabot[bot] committer-date:%s", d)
	}},
	{Key: KeyRenovateCommits, Kind: SearchCommits, Query: func(d string) string {
		return fmt.Sprintf("author:renovate[bot] committer-date:%s", d)
	}},
	{Key: KeyCopilotReviews, Kind: SearchIssues, Query: func(d string) string {
		return fmt.Sprintf("is:pr created:%s commenter:copilot-pull-request-reviewer[bot]", d)
	}},
	{Key: KeyCoderabbitReviews, Kind: SearchIssues, Query: func(d string) string {
		return fmt.Sprintf("is:pr created:%s commenter:coderabbitai[bot]", d)
	}},
	{Key: KeySourceryReviews, Kind: SearchIssues, Query: func(d string) string {
		return fmt.Sprintf("is:pr created:%s commenter:sourcery-ai[bot]", d)
	}},
	{Key: KeyClaudeCodePRs, Kind: SearchIssues, Query: func(d string) string {
		return fmt.Sprintf(`is:pr created:%s "Claude Code" in:body`, d)
	}},
	{Key: KeyCopilotPRs, Kind: SearchIssues, Query: func(d string) string {
		return fmt.Sprintf(`is:pr created:%s "GitHub Copilot" in:body`, d)
	}},
	{Key: KeyCursorPRs, Kind: SearchIssues, Query: func(d string) string {
		return fmt.Sprintf(`is:pr created:%s "Cursor" "AI" in:body`, d)
	}},
	{Key: KeyDevinPRs, Kind: SearchIssues, Query: func(d string) string {
		return fmt.Sprintf("is:pr created:%s author:devin-ai-integration[bot]", d)
	}},
}
