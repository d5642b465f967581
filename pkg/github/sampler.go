package github

import (
	"context"
	"fmt"
	"time"

	"aipulse/pkg/logger"
	"aipulse/pkg/timeutil"
)

// Sampler screens a date range for signals worth querying per day. A signal
// with zero hits across the whole range cannot have hits on any day inside
// it, so the per-day loop can skip it. This cuts a quiet month from 20
// calls per day to one or two.
type Sampler struct {
	fetcher CountFetcher
	delay   time.Duration
	sleep   func(time.Duration)
}

// NewSampler creates a sampler that paces its calls with the given delay
func NewSampler(fetcher CountFetcher, delay time.Duration) *Sampler {
	return &Sampler{
		fetcher: fetcher,
		delay:   delay,
		sleep:   time.Sleep,
	}
}

// ScreenRange issues one range query per signal and returns the set of keys
// with at least one hit. totalCommits is always in the set: it is needed per
// day as the denominator.
func (s *Sampler) ScreenRange(ctx context.Context, from, to time.Time) (map[string]bool, error) {
	rangeQuery := fmt.Sprintf("%s..%s", timeutil.FormatDay(from), timeutil.FormatDay(to))

	active := map[string]bool{KeyTotalCommits: true}
	for _, sig := range Signals {
		if sig.Key == KeyTotalCommits {
			continue
		}

		count, err := s.fetcher.SearchCount(ctx, sig.Kind, sig.Query(rangeQuery))
		if err != nil {
			return nil, fmt.Errorf("failed to screen signal %s over %s: %w", sig.Key, rangeQuery, err)
		}
		s.sleep(s.delay)

		if count > 0 {
			active[sig.Key] = true
			logger.InfoCtx(ctx, "range check %s: %s has %d hits, will query daily", rangeQuery, sig.Key, count)
		}
	}

	return active, nil
}
