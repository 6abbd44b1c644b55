package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/skury/pkg/router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "skury"

// Metrics holds the coordinator's collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	dispatched   *prometheus.CounterVec
	dispatchTime *prometheus.HistogramVec
	remoteTime   *prometheus.HistogramVec
	remediations *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		dispatched: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_dispatched_total",
				Help:      "Requests answered by the coordinator, by kind and outcome code.",
			},
			[]string{"kind", "code"},
		),
		dispatchTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "dispatch_duration_seconds",
				Help:      "Time from receiving a request to answering it.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		remoteTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "remote_call_duration_seconds",
				Help:      "Latency of model calls.",
				Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"kind", "outcome"},
		),
		remediations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "remediations_total",
				Help:      "Content script injections attempted after a missing receiver.",
			},
			[]string{"outcome"},
		),
	}
	m.registry.MustRegister(m.dispatched, m.dispatchTime, m.remoteTime, m.remediations)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks returns router hooks recording into m.
func (m *Metrics) Hooks() router.Hooks {
	return router.Hooks{
		OnDispatch: func(_ context.Context, e router.DispatchEvent) {
			code := e.Code
			if code == "" {
				code = "ok"
			}
			m.dispatched.WithLabelValues(string(e.Kind), code).Inc()
			m.dispatchTime.WithLabelValues(string(e.Kind)).Observe(e.Duration.Seconds())
		},
		OnRemoteCall: func(_ context.Context, e router.RemoteEvent) {
			m.remoteTime.WithLabelValues(string(e.Kind), outcome(e.Err)).Observe(e.Duration.Seconds())
		},
		OnRemediation: func(_ context.Context, e router.RemediationEvent) {
			m.remediations.WithLabelValues(outcome(e.Err)).Inc()
		},
	}
}

// WatchPorts exports the liveness side: open keepalive ports and UI reconnects.
func (m *Metrics) WatchPorts(open func() int, reconnects func() int64) {
	m.registry.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "keepalive_ports_open",
			Help:      "Keepalive ports currently connected to the coordinator.",
		}, func() float64 { return float64(open()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keepalive_reconnects_total",
			Help:      "Reconnects made by UI keepers after an unexpected disconnect.",
		}, func() float64 { return float64(reconnects()) }),
	)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
