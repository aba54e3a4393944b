package observability

import (
	"context"
	"errors"
	"net/http"

	"github.com/aretw0/designbridge/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for the commands counter.
const (
	OutcomeSuccess      = "success"
	OutcomePlaceholder  = "placeholder"
	OutcomeRejected     = "rejected"
	OutcomeDisconnected = "disconnected"
	OutcomeTimeout      = "timeout"
	OutcomeError        = "error"
)

var allStates = []domain.State{
	domain.StateUninitialized,
	domain.StateSimulated,
	domain.StateHostConnecting,
	domain.StateHostConnected,
	domain.StateHostUnavailable,
	domain.StateHostDisconnected,
}

// Metrics records command counts, latency, in-flight commands and executor state.
type Metrics struct {
	registry *prometheus.Registry
	commands *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
	state    *prometheus.GaugeVec
}

// NewMetrics creates the collectors on a fresh registry, along with the Go runtime collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "designbridge_commands_total",
				Help: "Commands settled, by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "designbridge_command_duration_seconds",
				Help:    "Time from dispatch to response",
				Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"kind"},
		),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "designbridge_commands_in_flight",
			Help: "Commands dispatched and not yet settled",
		}),
		state: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "designbridge_executor_state",
				Help: "1 for the executor's current lifecycle state, 0 otherwise",
			},
			[]string{"state"},
		),
	}
	m.registry.MustRegister(
		m.commands,
		m.duration,
		m.inFlight,
		m.state,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.ObserveState(domain.StateUninitialized)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveState marks s as the current executor state.
func (m *Metrics) ObserveState(s domain.State) {
	for _, candidate := range allStates {
		v := 0.0
		if candidate == s {
			v = 1
		}
		m.state.WithLabelValues(string(candidate)).Set(v)
	}
}

// Hooks returns lifecycle hooks feeding these metrics. Chain them with next, which may be zero.
func (m *Metrics) Hooks(next domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDispatch: func(ctx context.Context, e *domain.CommandEvent) {
			m.inFlight.Inc()
			m.ObserveState(e.State)
			if next.OnDispatch != nil {
				next.OnDispatch(ctx, e)
			}
		},
		OnSettle: func(ctx context.Context, e *domain.CommandEvent) {
			m.inFlight.Dec()
			m.commands.WithLabelValues(string(e.Kind), Outcome(e)).Inc()
			m.duration.WithLabelValues(string(e.Kind)).Observe(e.Duration.Seconds())
			if next.OnSettle != nil {
				next.OnSettle(ctx, e)
			}
		},
	}
}

// Outcome classifies a settled command.
func Outcome(e *domain.CommandEvent) string {
	var merr *domain.MutationError
	switch {
	case e.Err == nil && e.State == domain.StateHostUnavailable:
		return OutcomePlaceholder
	case e.Err == nil:
		return OutcomeSuccess
	case errors.As(e.Err, &merr):
		return OutcomeRejected
	case errors.Is(e.Err, domain.ErrHostDisconnected):
		return OutcomeDisconnected
	case errors.Is(e.Err, context.DeadlineExceeded):
		return OutcomeTimeout
	default:
		return OutcomeError
	}
}
