// Package metrics exposes formula map activity as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vk/formulamap/internal/formula"
)

// Collector implements formula.Observer using Prometheus
type Collector struct {
	mutations       *prometheus.CounterVec
	recomputed      prometheus.Counter
	collected       prometheus.Counter
	cycleVariables  prometheus.Counter
	variables       prometheus.Gauge
	recomputeSize   prometheus.Histogram
	mutationLatency *prometheus.HistogramVec
}

var _ formula.Observer = (*Collector)(nil)

// NewCollector creates a collector whose metrics are registered with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		mutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "formulamap_mutations_total",
				Help: "Total number of put and remove operations",
			},
			[]string{"op"},
		),
		recomputed: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "formulamap_recomputed_variables_total",
				Help: "Total number of variable recomputations",
			},
		),
		collected: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "formulamap_collected_variables_total",
				Help: "Total number of referenced-only variables deleted after losing their last dependent",
			},
		),
		cycleVariables: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "formulamap_cycle_variables_total",
				Help: "Total number of recomputations that ended in the CYCLE state",
			},
		),
		variables: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "formulamap_variables",
				Help: "Number of registered variables",
			},
		),
		recomputeSize: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "formulamap_recompute_size",
				Help:    "Number of variables recomputed per mutation",
				Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100, 250, 1000},
			},
		),
		mutationLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "formulamap_mutation_duration_seconds",
				Help:    "Mutation duration in seconds, including recomputation and collection",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"op"},
		),
	}
}

// Observe records one mutation.
func (c *Collector) Observe(e formula.MutationEvent) {
	op := string(e.Op)
	c.mutations.WithLabelValues(op).Inc()
	c.recomputed.Add(float64(e.Recomputed))
	c.collected.Add(float64(len(e.Collected)))
	c.cycleVariables.Add(float64(e.Cycles))
	c.variables.Set(float64(e.Size))
	c.recomputeSize.Observe(float64(e.Recomputed))
	c.mutationLatency.WithLabelValues(op).Observe(e.Duration.Seconds())
}
