package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"aipulse/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) (*Client, *[]time.Duration) {
	client := NewClient(&config.GitHubConfig{
		Token:      "test-token",
		BaseURL:    baseURL,
		MaxRetries: 3,
	})

	sleeps := &[]time.Duration{}
	client.sleep = func(d time.Duration) {
		*sleeps = append(*sleeps, d)
	}
	return client, sleeps
}

func TestSearchCountCommits(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/commits", r.URL.Path)
		assert.Equal(t, "committer-date:2024-06-05", r.URL.Query().Get("q"))
		assert.Equal(t, "1", r.URL.Query().Get("per_page"))
		assert.Equal(t, acceptCommits, r.Header.Get("Accept"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		fmt.Fprint(w, `{"total_count": 42, "incomplete_results": false}`)
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL)
	count, err := client.SearchCount(context.Background(), SearchCommits, "committer-date:2024-06-05")
	require.NoError(t, err)
	assert.Equal(t, 42, count)
}

func TestSearchCountIssuesUsesIssueEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/issues", r.URL.Path)
		assert.Equal(t, acceptIssues, r.Header.Get("Accept"))

		fmt.Fprint(w, `{"total_count": 7}`)
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL)
	count, err := client.SearchCount(context.Background(), SearchIssues, "is:pr created:2024-06-05")
	require.NoError(t, err)
	assert.Equal(t, 7, count)
}

func TestSearchCountMissingTotalCountIsZero(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"incomplete_results": false}`)
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL)
	count, err := client.SearchCount(context.Background(), SearchCommits, "committer-date:2024-06-05")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestSearchCountHonorsRetryAfter(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls <= 2 {
			w.Header().Set("Retry-After", "5")
			w.WriteHeader(http.StatusForbidden)
			return
		}
		fmt.Fprint(w, `{"total_count": 3}`)
	}))
	defer server.Close()

	client, sleeps := newTestClient(server.URL)
	count, err := client.SearchCount(context.Background(), SearchCommits, "q")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second}, *sleeps)
}

func TestSearchCountUsesRateLimitResetWhenNoRetryAfter(t *testing.T) {
	var calls int
	reset := time.Now().Add(3 * time.Second).Unix()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", reset))
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"total_count": 1}`)
	}))
	defer server.Close()

	client, sleeps := newTestClient(server.URL)
	count, err := client.SearchCount(context.Background(), SearchCommits, "q")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.Len(t, *sleeps, 1)
	// reset delta plus one second of slack
	assert.InDelta(t, 4, (*sleeps)[0].Seconds(), 1.5)
}

func TestSearchCountFallbackBackoffGrowsPerAttempt(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client, sleeps := newTestClient(server.URL)
	_, err := client.SearchCount(context.Background(), SearchCommits, "q")

	assert.ErrorIs(t, err, ErrRateLimitExhausted)
	// 1 initial attempt + 3 retries, no sleep after the last failure
	assert.Equal(t, 4, calls)
	assert.Equal(t, []time.Duration{
		15 * time.Second,
		30 * time.Second,
		45 * time.Second,
	}, *sleeps)
}

func TestSearchCountUpstreamErrorFailsFast(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, strings.Repeat("x", 500))
	}))
	defer server.Close()

	client, sleeps := newTestClient(server.URL)
	_, err := client.SearchCount(context.Background(), SearchCommits, "q")

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusUnprocessableEntity, upstream.Status)
	assert.Len(t, upstream.Body, upstreamBodyLimit)

	// no retry on non-rate-limit failures
	assert.Equal(t, 1, calls)
	assert.Empty(t, *sleeps)
}

func TestRateLimitWaitPrefersRetryAfterOverReset(t *testing.T) {
	header := http.Header{}
	header.Set("Retry-After", "7")
	header.Set("X-RateLimit-Reset", fmt.Sprintf("%d", time.Now().Add(time.Hour).Unix()))

	assert.Equal(t, 7*time.Second, rateLimitWait(header, 0))
}

func TestRateLimitWaitPastResetIsOneSecond(t *testing.T) {
	header := http.Header{}
	header.Set("X-RateLimit-Reset", fmt.Sprintf("%d", time.Now().Add(-time.Minute).Unix()))

	assert.Equal(t, time.Second, rateLimitWait(header, 0))
}
