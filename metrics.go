package gosage

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/phil-mansfield/gosage/model"
)

const metricsNamespace = "gosage"

// Metrics counts the work done over a run. It is safe to use from several
// files at once.
type Metrics struct {
	Registry *prometheus.Registry

	Trees, Halos, Galaxies prometheus.Counter
	Mergers                *prometheus.CounterVec
	Grows                  prometheus.Counter
	TreeSeconds            prometheus.Histogram
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Trees: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "trees_total",
			Help:      "Number of merger trees built.",
		}),
		Halos: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "halos_total",
			Help:      "Number of halos in the built trees.",
		}),
		Galaxies: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "galaxies_total",
			Help:      "Number of galaxy records in the built trees.",
		}),
		Mergers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "mergers_total",
			Help:      "Number of galaxies which stopped existing, by kind.",
		}, []string{"kind"}),
		Grows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "working_set_grows_total",
			Help:      "Number of working set reallocations.",
		}),
		TreeSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "tree_seconds",
			Help:      "Time spent building a single tree.",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 10, 8),
		}),
	}

	m.Registry.MustRegister(
		m.Trees, m.Halos, m.Galaxies, m.Mergers, m.Grows, m.TreeSeconds,
	)
	return m
}

// Observe adds a finished tree to the counts.
func (m *Metrics) Observe(t *model.Tree, dt time.Duration) {
	m.Trees.Inc()
	m.Halos.Add(float64(len(t.Halos)))
	m.Galaxies.Add(float64(len(t.Gals)))
	for kind, n := range t.Stats.Mergers {
		if model.MergeStatus(kind) == model.Active {
			continue
		}
		m.Mergers.WithLabelValues(model.MergeStatus(kind).String()).Add(float64(n))
	}
	m.Grows.Add(float64(t.Stats.Grows))
	m.TreeSeconds.Observe(dt.Seconds())
}

// WriteFile writes the current values in the Prometheus text format.
func (m *Metrics) WriteFile(fname string) error {
	return prometheus.WriteToTextfile(fname, m.Registry)
}
