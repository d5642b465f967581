package github

import (
	"context"
	"strings"
	"testing"
	"time"

	"aipulse/pkg/timeutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher answers search calls from a func field
type fakeFetcher struct {
	searchCountFunc func(ctx context.Context, kind SearchKind, query string) (int, error)
	calls           int
}

func (f *fakeFetcher) SearchCount(ctx context.Context, kind SearchKind, query string) (int, error) {
	f.calls++
	return f.searchCountFunc(ctx, kind, query)
}

func newSilentSampler(fetcher CountFetcher) *Sampler {
	s := NewSampler(fetcher, 0)
	s.sleep = func(time.Duration) {}
	return s
}

func TestScreenRangeMarksOnlySignalsWithHits(t *testing.T) {
	fetcher := &fakeFetcher{
		searchCountFunc: func(_ context.Context, _ SearchKind, query string) (int, error) {
			if strings.Contains(query, "coderabbitai") {
				return 12, nil
			}
			if strings.Contains(query, "dependabot") {
				return 900, nil
			}
			return 0, nil
		},
	}

	from, _ := timeutil.ParseDay("2024-06-01")
	to, _ := timeutil.ParseDay("2024-06-30")

	active, err := newSilentSampler(fetcher).ScreenRange(context.Background(), from, to)
	require.NoError(t, err)

	assert.Equal(t, map[string]bool{
		KeyTotalCommits:      true,
		KeyCoderabbitReviews: true,
		KeyDependabotCommits: true,
	}, active)

	// one range query per signal, totalCommits exempt
	assert.Equal(t, len(Signals)-1, fetcher.calls)
}

func TestScreenRangeQueriesUseTheRange(t *testing.T) {
	fetcher := &fakeFetcher{
		searchCountFunc: func(_ context.Context, _ SearchKind, query string) (int, error) {
			assert.Contains(t, query, "2024-06-01..2024-06-30")
			return 0, nil
		},
	}

	from, _ := timeutil.ParseDay("2024-06-01")
	to, _ := timeutil.ParseDay("2024-06-30")

	_, err := newSilentSampler(fetcher).ScreenRange(context.Background(), from, to)
	require.NoError(t, err)
}

func TestScreenRangeStopsOnFetchError(t *testing.T) {
	fetcher := &fakeFetcher{
		searchCountFunc: func(_ context.Context, _ SearchKind, _ string) (int, error) {
			return 0, ErrRateLimitExhausted
		},
	}

	from, _ := timeutil.ParseDay("2024-06-01")
	to, _ := timeutil.ParseDay("2024-06-30")

	_, err := newSilentSampler(fetcher).ScreenRange(context.Background(), from, to)
	assert.ErrorIs(t, err, ErrRateLimitExhausted)
	assert.Equal(t, 1, fetcher.calls)
}

// A signal that is zero over a whole range is zero on every day inside it,
// so skipping screened-out signals per day cannot lose counts as long as the
// upstream range counts are consistent with the day counts.
func TestScreenRangeConsistentWithDailyCounts(t *testing.T) {
	dailyCounts := map[string]map[string]int{
		KeyClaudeCommits: {"2024-06-03": 5, "2024-06-17": 2},
		KeyCursorPRs:     {"2024-06-09": 1},
	}

	fetcher := &fakeFetcher{
		searchCountFunc: func(_ context.Context, _ SearchKind, query string) (int, error) {
			for _, sig := range Signals {
				if query == sig.Query("2024-06-01..2024-06-30") {
					sum := 0
					for _, n := range dailyCounts[sig.Key] {
						sum += n
					}
					return sum, nil
				}
			}
			return 0, nil
		},
	}

	from, _ := timeutil.ParseDay("2024-06-01")
	to, _ := timeutil.ParseDay("2024-06-30")

	active, err := newSilentSampler(fetcher).ScreenRange(context.Background(), from, to)
	require.NoError(t, err)

	for _, sig := range Signals {
		if sig.Key == KeyTotalCommits {
			continue
		}
		hasDailyHits := len(dailyCounts[sig.Key]) > 0
		assert.Equal(t, hasDailyHits, active[sig.Key], "signal %s", sig.Key)
	}
}
