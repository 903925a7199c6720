package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder_CountsAndServes(t *testing.T) {
	t.Parallel()

	r := NewRecorder("league")
	r.MatchFinalized("FINISHED", "APPLIED")
	r.MatchFinalized("FINISHED", "APPLIED")
	r.SuspensionCreated("RED_CARD")
	r.SuspensionsServed(2)
	r.FixturesGenerated(6, 0)

	if got := testutil.ToFloat64(r.matchesFinalized.WithLabelValues("FINISHED", "APPLIED")); got != 2 {
		t.Fatalf("matches finalized = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.suspensionsServed); got != 2 {
		t.Fatalf("suspensions served = %v, want 2", got)
	}

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `league_suspensions_created_total{reason="RED_CARD"} 1`) {
		t.Fatalf("metrics output missing suspension counter:\n%s", body)
	}
}

func TestRecorder_NilIsNoop(t *testing.T) {
	t.Parallel()

	var r *Recorder
	r.MatchFinalized("FINISHED", "APPLIED")
	r.DispatchDropped()
	if r.Registry() != nil {
		t.Fatalf("nil recorder has no registry")
	}
}

func TestRecorder_ObserveCacheSamplesOnScrape(t *testing.T) {
	t.Parallel()

	r := NewRecorder("league")
	var hits uint64
	r.ObserveCache(func() (uint64, uint64, int) { return hits, 3, 7 })
	hits = 11

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		"league_read_cache_hits_total 11",
		"league_read_cache_misses_total 3",
		"league_read_cache_entries 7",
	} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("metrics output missing %q:\n%s", want, body)
		}
	}
}
