// Package metrics exposes Prometheus counters and histograms for pipeline
// runs. ObserveStage is a no-op on a nil *Registry; the counter fields are
// not, so call sites check for nil before touching them.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds the pipeline's Prometheus collectors.
type Registry struct {
	reg *prometheus.Registry

	RowsParsed   prometheus.Counter
	RowsDropped  prometheus.Counter
	Tier1Flagged prometheus.Counter
	Tier2Flagged prometheus.Counter
	Tier3Flagged prometheus.Counter
	StageSeconds *prometheus.HistogramVec
}

// New builds a Registry with its own prometheus.Registry, so multiple
// pipelines in one process don't collide on the default registerer.
func New() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		reg: reg,
		RowsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "beaconwatch_rows_parsed_total",
			Help: "Log rows successfully parsed.",
		}),
		RowsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "beaconwatch_rows_dropped_total",
			Help: "Log rows dropped due to unparseable fields.",
		}),
		Tier1Flagged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "beaconwatch_tier1_findings_total",
			Help: "Tier 1 findings produced.",
		}),
		Tier2Flagged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "beaconwatch_tier2_findings_total",
			Help: "Tier 2 findings produced.",
		}),
		Tier3Flagged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "beaconwatch_tier3_findings_total",
			Help: "Tier 3 findings produced.",
		}),
		StageSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "beaconwatch_stage_duration_seconds",
			Help:    "Per-stage pipeline duration.",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
	}

	reg.MustRegister(r.RowsParsed, r.RowsDropped, r.Tier1Flagged, r.Tier2Flagged, r.Tier3Flagged, r.StageSeconds)
	return r
}

// Gatherer exposes the underlying prometheus.Gatherer for an HTTP handler.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// ObserveStage records one stage's duration. Safe to call on a nil Registry.
func (r *Registry) ObserveStage(stage string, d time.Duration) {
	if r == nil {
		return
	}
	r.StageSeconds.WithLabelValues(stage).Observe(d.Seconds())
}
