package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) (*Gateway, *atomic.Int64) {
	t.Helper()
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	g := NewGateway(Config{
		ServiceURL:       srv.URL,
		MaxResults:       5,
		CacheTTL:         900 * time.Second,
		MinInterval:      2500 * time.Millisecond,
		Cooldown:         120 * time.Second,
		Timeout:          5 * time.Second,
		FailureThreshold: 3,
	})
	g.sleep = func(time.Duration) {} // no real throttling in tests
	return g, &calls
}

func resultsHandler(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]any{
		"results": []map[string]string{
			{"title": "Old Age Pension", "url": "https://example.org/pension", "snippet": "eligibility details"},
		},
	})
}

func TestSearchReturnsFormattedResults(t *testing.T) {
	g, _ := newTestGateway(t, resultsHandler)

	out := g.Search(context.Background(), "pension scheme")
	assert.Contains(t, out, "Old Age Pension - https://example.org/pension")
	assert.Contains(t, out, "eligibility details")
}

func TestSearchIdenticalQueryWithinTTLHitsCache(t *testing.T) {
	g, calls := newTestGateway(t, resultsHandler)

	first := g.Search(context.Background(), "Pension Scheme")
	second := g.Search(context.Background(), "  pension scheme ") // same key after trim+lower
	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, calls.Load())
}

func TestSearchExpiredCacheEntryRefetches(t *testing.T) {
	g, calls := newTestGateway(t, resultsHandler)

	base := time.Now()
	g.now = func() time.Time { return base }
	g.Search(context.Background(), "pension")

	g.now = func() time.Time { return base.Add(901 * time.Second) }
	g.Search(context.Background(), "pension")
	assert.EqualValues(t, 2, calls.Load())
}

func TestSearchCooldownShortCircuits(t *testing.T) {
	g, calls := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	out := g.Search(context.Background(), "first")
	assert.Contains(t, out, "rate limiting")

	// cooldown is open now: no upstream call, remaining wait surfaced
	out = g.Search(context.Background(), "second")
	assert.Contains(t, out, "Try again in ~")
	assert.EqualValues(t, 1, calls.Load())
}

func TestSearchFailureStreakOpensCooldown(t *testing.T) {
	g, _ := newTestGateway(t, nil)
	g.cfg.ServiceURL = "http://127.0.0.1:1/search" // nothing listens here

	for i := 0; i < 3; i++ {
		out := g.Search(context.Background(), "q"+string(rune('a'+i)))
		assert.Equal(t, msgUnreachable, out)
	}

	out := g.Search(context.Background(), "another")
	assert.Contains(t, out, "Try again in ~")
}

func TestSearchSuccessResetsFailureStreak(t *testing.T) {
	g, _ := newTestGateway(t, resultsHandler)

	g.failures = 2
	g.Search(context.Background(), "works")

	g.mu.Lock()
	defer g.mu.Unlock()
	assert.Zero(t, g.failures)
}

func TestSearchEmptyQuery(t *testing.T) {
	g, calls := newTestGateway(t, resultsHandler)

	assert.Equal(t, msgNoResults, g.Search(context.Background(), "   "))
	assert.Zero(t, calls.Load())
}

func TestSearchEmptyResults(t *testing.T) {
	g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"results": []any{}})
	})

	assert.Equal(t, msgNoResults, g.Search(context.Background(), "nothing"))
}

func TestSearchIntervalReservation(t *testing.T) {
	g, _ := newTestGateway(t, resultsHandler)

	var slept time.Duration
	g.sleep = func(d time.Duration) { slept += d }

	base := time.Now()
	g.now = func() time.Time { return base }

	g.Search(context.Background(), "one")
	require.Zero(t, slept)

	// second distinct query at the same instant must wait out the interval
	g.Search(context.Background(), "two")
	assert.Equal(t, g.cfg.MinInterval, slept)
}
