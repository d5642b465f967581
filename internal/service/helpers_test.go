package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"aipulse/pkg/github"
	"aipulse/pkg/store/mysql"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

// newTestRepository opens an in-memory sqlite database unique to the test, so
// the connection pool shares one database and tests stay isolated.
func newTestRepository(t *testing.T) *mysql.Repository {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name)

	repo, err := mysql.NewRepositoryWithDialector(sqlite.Open(dsn))
	require.NoError(t, err)
	require.NoError(t, repo.Migrate())

	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

type fakeSearcher struct {
	searchCountFunc func(kind github.SearchKind, query string) (int, error)
	queries         []string
}

func (f *fakeSearcher) SearchCount(ctx context.Context, kind github.SearchKind, query string) (int, error) {
	f.queries = append(f.queries, query)
	return f.searchCountFunc(kind, query)
}

// newTestIngestService wires a service with no pacing and no lock
func newTestIngestService(searcher *fakeSearcher, repo *mysql.Repository) *IngestService {
	return &IngestService{
		searcher:            searcher,
		sampler:             github.NewSampler(searcher, 0),
		repo:                repo,
		sleep:               func(time.Duration) {},
		maxBackfillDays:     30,
		maxFastBackfillDays: 60,
		maxDaysPerCollect:   3,
	}
}
