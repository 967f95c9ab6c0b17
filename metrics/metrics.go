// Package metrics exposes account lifecycle activity as Prometheus
// counters.
package metrics

import (
	"context"
	"net/http"

	account "github.com/goliatone/go-account"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "account"

// Collector is an account.ActivitySink that counts events
type Collector struct {
	events      *prometheus.CounterVec
	transitions *prometheus.CounterVec
	gate        *prometheus.CounterVec
}

var _ account.ActivitySink = (*Collector)(nil)

// NewCollector creates the counters and registers them with reg
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "activity_events_total",
				Help:      "Account lifecycle events by type.",
			},
			[]string{"event"},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "status_transitions_total",
				Help:      "Account status transitions.",
			},
			[]string{"from", "to"},
		),
		gate: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "gate_rejections_total",
				Help:      "Authentication gate rejections by reason code.",
			},
			[]string{"code"},
		),
	}

	if reg != nil {
		for _, col := range []prometheus.Collector{c.events, c.transitions, c.gate} {
			if err := reg.Register(col); err != nil {
				return nil, err
			}
		}
	}

	return c, nil
}

// Record implements account.ActivitySink
func (c *Collector) Record(_ context.Context, event account.ActivityEvent) error {
	c.events.WithLabelValues(string(event.EventType)).Inc()

	switch event.EventType {
	case account.ActivityEventAccountStatusChanged, account.ActivityEventAccountVerified:
		c.transitions.WithLabelValues(string(event.FromStatus), string(event.ToStatus)).Inc()
	case account.ActivityEventGateRejected:
		code, _ := event.Metadata["code"].(string)
		if code == "" {
			code = "unknown"
		}
		c.gate.WithLabelValues(code).Inc()
	}

	return nil
}

// Events exposes the per event counter
func (c *Collector) Events() *prometheus.CounterVec {
	return c.events
}

// Transitions exposes the status transition counter
func (c *Collector) Transitions() *prometheus.CounterVec {
	return c.transitions
}

// GateRejections exposes the gate rejection counter
func (c *Collector) GateRejections() *prometheus.CounterVec {
	return c.gate
}

// Handler serves the metrics gathered by g
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
