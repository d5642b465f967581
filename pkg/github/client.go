package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"aipulse/pkg/config"
	"aipulse/pkg/logger"
)

// SearchKind selects the search endpoint and its accept header
type SearchKind string

const (
	SearchCommits SearchKind = "commit"
	SearchIssues  SearchKind = "issue"
)

const (
	// Commit search is still behind the cloak preview media type
	acceptCommits = "application/vnd.github.cloak-preview+json"
	acceptIssues  = "application/vnd.github+json"

	userAgent = "aipulse"

	upstreamBodyLimit = 200
)

// CountFetcher is the read surface of the search client, satisfied by fakes
// in tests.
type CountFetcher interface {
	SearchCount(ctx context.Context, kind SearchKind, query string) (int, error)
}

// Client is the GitHub Search API client. It retries rate-limit responses
// with the wait the API asks for; pacing between distinct calls is the
// caller's job.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	maxRetries int
	sleep      func(time.Duration)
}

// NewClient creates a new GitHub search client
func NewClient(cfg *config.GitHubConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.github.com"
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	return &Client{
		token:   cfg.Token,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxRetries: maxRetries,
		sleep:      time.Sleep,
	}
}

// SearchCount returns the total_count of a search query
func (c *Client) SearchCount(ctx context.Context, kind SearchKind, query string) (int, error) {
	endpoint := c.baseURL + "/search/commits"
	accept := acceptCommits
	if kind == SearchIssues {
		endpoint = c.baseURL + "/search/issues"
		accept = acceptIssues
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("per_page", "1")
	requestURL := endpoint + "?" + params.Encode()

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		count, wait, retryable, err := c.doSearch(ctx, requestURL, accept, attempt)
		if err == nil {
			return count, nil
		}
		if !retryable {
			return 0, err
		}
		if attempt == c.maxRetries {
			return 0, ErrRateLimitExhausted
		}
		logger.WarnCtx(ctx, "github search rate limited (attempt %d/%d), waiting %.0fs",
			attempt+1, c.maxRetries+1, wait.Seconds())
		c.sleep(wait)
	}

	return 0, ErrRateLimitExhausted
}

// doSearch performs one attempt. retryable is true only for rate-limit
// responses; wait is how long the API asks us to back off.
func (c *Client) doSearch(ctx context.Context, requestURL, accept string, attempt int) (count int, wait time.Duration, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return 0, 0, false, fmt.Errorf("failed to create search request: %w", err)
	}

	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, 0, false, fmt.Errorf("failed to execute search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
		return 0, rateLimitWait(resp.Header, attempt), true, ErrRateLimitExhausted
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, upstreamBodyLimit))
		return 0, 0, false, &UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}

	var result struct {
		TotalCount int `json:"total_count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, 0, false, fmt.Errorf("failed to parse search response: %w", err)
	}
	if result.TotalCount < 0 {
		result.TotalCount = 0
	}
	return result.TotalCount, 0, false, nil
}

// rateLimitWait picks the wait the API asks for: Retry-After seconds first,
// then the reset timestamp plus a second of slack, then a growing fallback.
func rateLimitWait(header http.Header, attempt int) time.Duration {
	if retryAfter := header.Get("Retry-After"); retryAfter != "" {
		if secs, err := strconv.Atoi(retryAfter); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	if reset := header.Get("X-RateLimit-Reset"); reset != "" {
		if epoch, err := strconv.ParseInt(reset, 10, 64); err == nil {
			wait := time.Until(time.Unix(epoch, 0))
			if wait < 0 {
				wait = 0
			}
			return wait + time.Second
		}
	}
	return time.Duration(attempt+1) * 15 * time.Second
}
