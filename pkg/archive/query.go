package archive

import (
	"fmt"
	"strings"
	"time"
)

// Commit-message signatures, RE2 syntax. These are looser than the search
// queries on purpose: archive messages are matched directly instead of going
// through the search index.
const (
	reClaude              = `(?i)co-authored-by:\s*claude.*<.*@anthropic\.com>`
	reOpus                = `(?i)co-authored-by:\s*claude\s+(opus|code.*opus).*<.*@anthropic\.com>`
	reSonnet              = `(?i)co-authored-by:\s*claude\s+(sonnet|code.*sonnet).*<.*@anthropic\.com>`
	reHaiku               = `(?i)co-authored-by:\s*claude\s+(haiku|code.*haiku).*<.*@anthropic\.com>`
	reCopilot             = `(?i)co-authored-by:\s*copilot.*users\.noreply\.github\.com`
	reCursor              = `(?i)co-authored-by:\s*cursor.*cursoragent@cursor\.com`
	reGemini              = `(?i)co-authored-by:\s*gemini-code-assist.*users\.noreply\.github\.com`
	reDevin               = `(?i)co-authored-by:\s*devin\s+ai.*devin-ai-integration`
	reClaudeCodeGenerated = `Generated with Claude Code`
)

// MonthTables lists the monthly archive tables covering [from, to]
func MonthTables(dataset string, from, to time.Time) []string {
	var tables []string

	y, m := from.UTC().Year(), int(from.UTC().Month())
	ey, em := to.UTC().Year(), int(to.UTC().Month())
	for y < ey || (y == ey && m <= em) {
		tables = append(tables, fmt.Sprintf("%s.month.%d%02d", dataset, y, m))
		m++
		if m > 12 {
			m = 1
			y++
		}
	}
	return tables
}

// BuildQuery assembles the one-shot range query: UNION ALL over the touched
// month tables, push events only, commits unnested from the payload and
// counted per day against each signature.
func BuildQuery(dataset string, from, to time.Time) string {
	fromDate := from.UTC().Format("2006-01-02")
	toDate := to.UTC().Format("2006-01-02")

	var unionParts []string
	for _, table := range MonthTables(dataset, from, to) {
		unionParts = append(unionParts,
			fmt.Sprintf("SELECT created_at, type, payload FROM `%s` WHERE type = 'PushEvent'", table))
	}

	return fmt.Sprintf(`
WITH events AS (
  %s
),
commits AS (
  SELECT
    SUBSTR(CAST(created_at AS STRING), 1, 10) AS day_str,
    JSON_EXTRACT_SCALAR(commit_json, '$.message') AS message,
    JSON_EXTRACT_SCALAR(commit_json, '$.author.name') AS author_name
  FROM
    events,
    UNNEST(JSON_EXTRACT_ARRAY(payload, '$.commits')) AS commit_json
  WHERE
    SUBSTR(CAST(created_at AS STRING), 1, 10) BETWEEN '%s' AND '%s'
)
SELECT
  day_str AS date,
  COUNT(*) AS total_commits,
  COUNTIF(REGEXP_CONTAINS(message, r'%s')) AS claude_commits,
  COUNTIF(REGEXP_CONTAINS(message, r'%s')) AS opus_commits,
  COUNTIF(REGEXP_CONTAINS(message, r'%s')) AS sonnet_commits,
  COUNTIF(REGEXP_CONTAINS(message, r'%s')) AS haiku_commits,
  COUNTIF(REGEXP_CONTAINS(message, r'%s')) AS copilot_commits,
  COUNTIF(REGEXP_CONTAINS(message, r'%s')) AS cursor_commits,
  COUNTIF(REGEXP_CONTAINS(message, r'%s')) AS gemini_commits,
  COUNTIF(REGEXP_CONTAINS(message, r'%s')) AS devin_commits,
  COUNTIF(REGEXP_CONTAINS(message, r'%s')) AS claude_code_generated,
  COUNTIF(LOWER(author_name) = 'devin-ai-integration[bot]') AS devin_bot_commits,
  COUNTIF(LOWER(author_name) = 'dependabot[bot]') AS dependabot_commits,
  COUNTIF(LOWER(author_name) = 'renovate[bot]') AS renovate_commits
FROM commits
GROUP BY day_str
ORDER BY day_str`,
		strings.Join(unionParts, "\n  UNION ALL\n  "),
		fromDate, toDate,
		reClaude, reOpus, reSonnet, reHaiku,
		reCopilot, reCursor, reGemini, reDevin,
		reClaudeCodeGenerated,
	)
}
