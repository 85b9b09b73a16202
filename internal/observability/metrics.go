// Package observability exposes dashboard Prometheus metrics.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"
)

// Collector holds dashboard metrics. A nil *Collector is valid and records nothing.
type Collector struct {
	gatherer prometheus.Gatherer

	Selections     *prometheus.CounterVec
	CameraCommands *prometheus.CounterVec
	StreamClients  prometheus.Gauge
}

// NewCollector registers dashboard metrics against the provided registerer.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	selections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hospitel_selections_total",
		Help: "Facility selection attempts by result.",
	}, []string{"result"})
	selections, err := registerCounterVec(reg, selections, "hospitel_selections_total")
	if err != nil {
		return nil, err
	}

	camera := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hospitel_camera_commands_total",
		Help: "Camera commands issued to the map surface by kind.",
	}, []string{"kind"})
	camera, err = registerCounterVec(reg, camera, "hospitel_camera_commands_total")
	if err != nil {
		return nil, err
	}

	clients := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "hospitel_stream_clients",
		Help: "Dashboard SSE streams currently open.",
	})
	clients, err = registerGauge(reg, clients, "hospitel_stream_clients")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:       gatherer,
		Selections:     selections,
		CameraCommands: camera,
		StreamClients:  clients,
	}, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *Collector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.Gatherer()
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// ObserveSelection counts one selection attempt.
func (c *Collector) ObserveSelection(result string) {
	if c == nil || c.Selections == nil {
		return
	}
	c.Selections.WithLabelValues(result).Inc()
}

// ObserveCamera counts one camera command.
func (c *Collector) ObserveCamera(kind string) {
	if c == nil || c.CameraCommands == nil {
		return
	}
	c.CameraCommands.WithLabelValues(kind).Inc()
}

// StreamOpened increments the open stream gauge.
func (c *Collector) StreamOpened() {
	if c == nil || c.StreamClients == nil {
		return
	}
	c.StreamClients.Inc()
}

// StreamClosed decrements the open stream gauge.
func (c *Collector) StreamClosed() {
	if c == nil || c.StreamClients == nil {
		return
	}
	c.StreamClients.Dec()
}

func registerCounterVec(reg prometheus.Registerer, cv *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(cv); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, eris.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, eris.Wrapf(err, "register %s", name)
	}
	return cv, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, eris.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, eris.Wrapf(err, "register %s", name)
	}
	return gauge, nil
}
