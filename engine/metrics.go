/*
 * metrics.go, part of spindock.
 *
 * Copyright 2024 Raul Mera <rmera{at}usachDOTcl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

//Phase names, used as the "phase" label of the metrics and in the logs.
const (
	PhaseDescriptors = "descriptors"
	PhasePairs       = "pairs"
	PhaseGraph       = "graph"
	PhaseCliques     = "cliques"
	PhaseGrid        = "grid"
	PhaseScoring     = "scoring"
)

//DurationBuckets are the buckets, in seconds, of the phase duration histogram.
var DurationBuckets = []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60, 300, 1800}

//Metrics holds the prometheus collectors updated by an Engine.
type Metrics struct {
	PhaseDuration *prometheus.HistogramVec
	Items         *prometheus.GaugeVec
	Runs          *prometheus.CounterVec
	CacheHits     prometheus.Counter
	CacheMisses   prometheus.Counter
}

//NewMetrics creates the collectors and registers them in reg, if reg is not nil.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		PhaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "spindock",
			Name:      "phase_duration_seconds",
			Help:      "Duration of each phase of a docking run.",
			Buckets:   DurationBuckets,
		}, []string{"phase"}),
		Items: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "spindock",
			Name:      "items",
			Help:      "Number of items produced by the last run, per kind.",
		}, []string{"kind"}),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spindock",
			Name:      "runs_total",
			Help:      "Docking runs, per variant and status.",
		}, []string{"variant", "status"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "spindock",
			Name:      "descriptor_cache_hits_total",
			Help:      "Spin image stacks served from the cache.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "spindock",
			Name:      "descriptor_cache_misses_total",
			Help:      "Spin image stacks computed.",
		}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.PhaseDuration, m.Items, m.Runs, m.CacheHits, m.CacheMisses} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

//The methods below do nothing on a nil *Metrics.

func (m *Metrics) observe(phase string, since time.Time) {
	if m == nil {
		return
	}
	m.PhaseDuration.WithLabelValues(phase).Observe(time.Since(since).Seconds())
}

func (m *Metrics) set(kind string, n int) {
	if m == nil {
		return
	}
	m.Items.WithLabelValues(kind).Set(float64(n))
}

func (m *Metrics) run(variant Variant, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.Runs.WithLabelValues(variant.String(), status).Inc()
}

func (m *Metrics) cached(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHits.Inc()
		return
	}
	m.CacheMisses.Inc()
}
