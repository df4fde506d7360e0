package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "linkmond"

// Metrics holds the daemon's collectors on a private registry. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	linkEvents *prometheus.CounterVec
	malformed  *prometheus.CounterVec
	linkUp     *prometheus.GaugeVec
	batches    prometheus.Counter
	resyncs    prometheus.Counter
}

func New() (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		linkEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "link_events_total",
				Help:      "Link state notifications decoded, by reported state.",
			},
			[]string{"state"},
		),
		malformed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "malformed_total",
				Help:      "Netlink data dropped while decoding, by kind.",
			},
			[]string{"kind"},
		),
		linkUp: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "link_up",
				Help:      "Last reported carrier state per interface (1 up, 0 down).",
			},
			[]string{"interface"},
		),
		batches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Netlink datagrams received.",
		}),
		resyncs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resyncs_total",
			Help:      "Times the link snapshot was reloaded after the kernel dropped notifications.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.linkEvents,
		m.malformed,
		m.linkUp,
		m.batches,
		m.resyncs,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := m.registry.Register(c); err != nil {
			return nil, fmt.Errorf("error registering metrics: %w", err)
		}
	}

	// Pre-create both label values so they export as zero.
	m.linkEvents.WithLabelValues("up")
	m.linkEvents.WithLabelValues("down")

	return m, nil
}

// LinkEvent records a decoded link state notification.
func (m *Metrics) LinkEvent(name string, up bool) {
	if m == nil {
		return
	}
	state, value := "down", 0.0
	if up {
		state, value = "up", 1.0
	}
	m.linkEvents.WithLabelValues(state).Inc()
	m.linkUp.WithLabelValues(name).Set(value)
}

// LinkState sets the gauge without counting an event, for snapshots.
func (m *Metrics) LinkState(name string, up bool) {
	if m == nil {
		return
	}
	value := 0.0
	if up {
		value = 1.0
	}
	m.linkUp.WithLabelValues(name).Set(value)
}

func (m *Metrics) Malformed(kind string) {
	if m == nil {
		return
	}
	m.malformed.WithLabelValues(kind).Inc()
}

func (m *Metrics) Batch() {
	if m == nil {
		return
	}
	m.batches.Inc()
}

func (m *Metrics) Resync() {
	if m == nil {
		return
	}
	m.resyncs.Inc()
}

// Registry exposes the private registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
