// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_events_processed_total",
			Help: "Total number of inbound chat events by result",
		},
		[]string{"result"},
	)

	EventDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "bot_event_duration_seconds",
			Help: "Duration of inbound event processing in seconds",
		},
		[]string{"result"},
	)

	EventsQueued = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_events_queued",
			Help: "Number of events waiting for the event loop",
		},
	)

	StepOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scenario_step_outcomes_total",
			Help: "Step handler outcomes by scenario, step and verdict",
		},
		[]string{"scenario", "step", "verdict"},
	)

	ScenariosCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scenario_completed_total",
			Help: "Total number of scenarios that reached their terminal step",
		},
		[]string{"scenario"},
	)

	CatalogQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "catalog_query_duration_seconds",
			Help: "Duration of flight catalog queries in seconds",
		},
		[]string{"query"},
	)

	OrderSinkFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_sink_failures_total",
			Help: "Total number of failed order sink writes",
		},
		[]string{"sink"},
	)
)
