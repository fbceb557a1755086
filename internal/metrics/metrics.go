package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
)

type Metrics struct {
	Registry        *prometheus.Registry
	Refreshes       *prometheus.CounterVec
	RefreshDuration prometheus.Histogram
	Players         prometheus.Gauge
	Batches         prometheus.Gauge
	Matches         prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "elo",
			Name:      "refreshes_total",
			Help:      "Rating recomputes by result.",
		}, []string{"result"}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "elo",
			Name:      "refresh_duration_seconds",
			Help:      "Time to load match files and replay every batch.",
			Buckets:   prometheus.DefBuckets,
		}),
		Players: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "elo",
			Name:      "players",
			Help:      "Players in the current rating universe.",
		}),
		Batches: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "elo",
			Name:      "batches",
			Help:      "Tournaments processed in the current snapshot.",
		}),
		Matches: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "elo",
			Name:      "matches",
			Help:      "Rows in the current match log.",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Refreshes,
		m.RefreshDuration,
		m.Players,
		m.Batches,
		m.Matches,
	)
	return m
}

var Module = fx.Provide(New)
