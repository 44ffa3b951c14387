// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

// Package metrics wraps the prometheus client, grounded on the teacher's
// metrics/global.go registry-of-named-metrics pattern. A Recorder is created
// by the CLI's process command, which sets it on the pipeline driver it runs
// for a single file; the bundlers hold none. It is safe to share across a
// single bundling run; it is not a process-wide global.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder collects the handful of counters and histograms darklua-core
// exposes for a bundling run.
type Recorder struct {
	registry *prometheus.Registry

	ruleDuration  *prometheus.HistogramVec
	bundledFiles  prometheus.Counter
	suspendCount  *prometheus.CounterVec
	cacheHitTotal *prometheus.CounterVec
}

// New returns a Recorder registered against a fresh, private registry (never
// the global default registry, so multiple concurrent runs in one process
// don't collide on metric names).
func New() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		ruleDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "darklua",
			Name:      "rule_duration_seconds",
			Help:      "Time spent applying a single rule to a single work item.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"rule"}),
		bundledFiles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "darklua",
			Name:      "bundled_files_total",
			Help:      "Number of source files folded into a bundle output.",
		}),
		suspendCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "darklua",
			Name:      "work_item_suspensions_total",
			Help:      "Number of times a work item suspended waiting on a dependency.",
		}, []string{"rule"}),
		cacheHitTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "darklua",
			Name:      "work_cache_hits_total",
			Help:      "Work cache lookups, partitioned by hit/miss.",
		}, []string{"result"}),
	}
	reg.MustRegister(r.ruleDuration, r.bundledFiles, r.suspendCount, r.cacheHitTotal)
	return r
}

// Registry exposes the private registry for an HTTP /metrics handler, if the
// embedding application wants one; cmd/darklua does not serve one itself.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// ObserveRule records how long applying rule took.
func (r *Recorder) ObserveRule(rule string, d time.Duration) {
	r.ruleDuration.WithLabelValues(rule).Observe(d.Seconds())
}

// IncBundledFiles increments the bundled-file counter by n.
func (r *Recorder) IncBundledFiles(n int) {
	r.bundledFiles.Add(float64(n))
}

// IncSuspend records a work item suspension caused by rule.
func (r *Recorder) IncSuspend(rule string) {
	r.suspendCount.WithLabelValues(rule).Inc()
}

// IncCacheHit records a work-cache lookup, hit or miss.
func (r *Recorder) IncCacheHit(hit bool) {
	label := "miss"
	if hit {
		label = "hit"
	}
	r.cacheHitTotal.WithLabelValues(label).Inc()
}
