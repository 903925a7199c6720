package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder holds the engine counters. A nil *Recorder records nothing.
type Recorder struct {
	namespace          string
	registry           *prometheus.Registry
	fixturesGenerated  *prometheus.CounterVec
	matchesFinalized   *prometheus.CounterVec
	eventsIngested     *prometheus.CounterVec
	suspensionsCreated *prometheus.CounterVec
	suspensionsServed  prometheus.Counter
	knockoutGenerated  *prometheus.CounterVec
	dispatchDropped    prometheus.Counter
}

func NewRecorder(namespace string) *Recorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Recorder{
		namespace: namespace,
		registry:  registry,
		fixturesGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fixtures_generated_total",
			Help:      "Matches created by round-robin generation, by kind (match or bye).",
		}, []string{"kind"}),
		matchesFinalized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_finalized_total",
			Help:      "Terminal match transitions, by status and outcome.",
		}, []string{"status", "outcome"}),
		eventsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "match_events_ingested_total",
			Help:      "Match events accepted or rejected, by type and result.",
		}, []string{"type", "result"}),
		suspensionsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suspensions_created_total",
			Help:      "Suspensions created, by reason.",
		}, []string{"reason"}),
		suspensionsServed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suspensions_served_total",
			Help:      "Suspensions cleared by the resolution sweep.",
		}),
		knockoutGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "knockout_matches_generated_total",
			Help:      "Knockout matches drawn, by phase.",
		}, []string{"phase"}),
		dispatchDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_dropped_total",
			Help:      "Outbound notifications dropped because the worker pool was saturated.",
		}),
	}
	registry.MustRegister(
		r.fixturesGenerated,
		r.matchesFinalized,
		r.eventsIngested,
		r.suspensionsCreated,
		r.suspensionsServed,
		r.knockoutGenerated,
		r.dispatchDropped,
	)
	return r
}

func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) FixturesGenerated(matches, byes int) {
	if r == nil {
		return
	}
	r.fixturesGenerated.WithLabelValues("match").Add(float64(matches))
	r.fixturesGenerated.WithLabelValues("bye").Add(float64(byes))
}

func (r *Recorder) MatchFinalized(status, outcome string) {
	if r == nil {
		return
	}
	r.matchesFinalized.WithLabelValues(status, outcome).Inc()
}

func (r *Recorder) EventIngested(eventType, result string) {
	if r == nil {
		return
	}
	r.eventsIngested.WithLabelValues(eventType, result).Inc()
}

func (r *Recorder) SuspensionCreated(reason string) {
	if r == nil {
		return
	}
	r.suspensionsCreated.WithLabelValues(reason).Inc()
}

func (r *Recorder) SuspensionsServed(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.suspensionsServed.Add(float64(n))
}

func (r *Recorder) KnockoutGenerated(phase string, matches int) {
	if r == nil {
		return
	}
	r.knockoutGenerated.WithLabelValues(phase).Add(float64(matches))
}

func (r *Recorder) DispatchDropped() {
	if r == nil {
		return
	}
	r.dispatchDropped.Inc()
}

// ObserveCache exports read-cache counters. counters is sampled on every
// scrape.
func (r *Recorder) ObserveCache(counters func() (hits, misses uint64, entries int)) {
	if r == nil || counters == nil {
		return
	}
	sample := func(pick func(hits, misses uint64, entries int) float64) func() float64 {
		return func() float64 { return pick(counters()) }
	}
	r.registry.MustRegister(
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: r.namespace,
			Name:      "read_cache_hits_total",
			Help:      "Repository reads served from the in-process cache.",
		}, sample(func(h, _ uint64, _ int) float64 { return float64(h) })),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: r.namespace,
			Name:      "read_cache_misses_total",
			Help:      "Repository reads that fell through to storage.",
		}, sample(func(_, m uint64, _ int) float64 { return float64(m) })),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: r.namespace,
			Name:      "read_cache_entries",
			Help:      "Entries currently held by the read cache.",
		}, sample(func(_, _ uint64, n int) float64 { return float64(n) })),
	)
}
