package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ticket-bot/internal/common/logger"
	"ticket-bot/internal/common/metrics"
	"ticket-bot/internal/models"
	"ticket-bot/internal/scenario"
)

// ErrSinkFailed wraps the error of the first sink that failed.
var ErrSinkFailed = errors.New("ORDER_SINK_FAILED")

// Sink stores a completed order. A failing sink fails the completion.
type Sink interface {
	Name() string
	Record(ctx context.Context, order models.Order) error
}

// Notifier tells the customer about an order. Failures are only logged.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, order models.Order) error
}

// Recorder turns completed scenarios into orders and fans them out.
type Recorder struct {
	sinks     []Sink
	notifiers []Notifier
	now       func() time.Time
	logger    logger.Logger
}

// NewRecorder fans orders out to sinks in the given order.
func NewRecorder(log logger.Logger, sinks ...Sink) *Recorder {
	return &Recorder{
		sinks:  sinks,
		now:    time.Now,
		logger: log.WithFields(map[string]interface{}{"component": "orders"}),
	}
}

// AddNotifier registers a best-effort notifier run after all sinks succeed.
func (r *Recorder) AddNotifier(n Notifier) {
	r.notifiers = append(r.notifiers, n)
}

// NewOrder builds the order for a completed booking. The booking's order id is
// reused so repeated attempts describe the same order.
func NewOrder(c scenario.Completion, now time.Time) models.Order {
	bc := c.Context
	id := bc.OrderID
	if id == "" {
		id = uuid.NewString()
	}
	order := models.Order{
		ID:          id,
		UserID:      c.UserID,
		ScenarioID:  c.ScenarioID,
		FlightID:    bc.SelectedFlightID,
		Origin:      bc.Origin,
		Destination: bc.Destination,
		TicketQty:   bc.TicketQty,
		Total:       bc.Total(),
		Comment:     bc.Comment,
		Phone:       bc.Phone,
		Summary:     bc.Summary,
		CreatedAt:   now.UTC(),
	}
	if bc.SelectedFlight != nil {
		order.DepartureAt = bc.SelectedFlight.Departure
		order.Price = bc.SelectedFlight.Price
	}
	return order
}

// Complete implements scenario.CompletionSink. Sinks run in order and the
// first failure stops the fan-out. A retried completion reaches the sinks
// that already succeeded again with the same order id, so sinks must store
// idempotently by id.
func (r *Recorder) Complete(ctx context.Context, c scenario.Completion) error {
	order := NewOrder(c, r.now())

	for _, s := range r.sinks {
		if err := s.Record(ctx, order); err != nil {
			metrics.OrderSinkFailures.WithLabelValues(s.Name()).Inc()
			return fmt.Errorf("%w: %s: %v", ErrSinkFailed, s.Name(), err)
		}
	}

	for _, n := range r.notifiers {
		if err := n.Notify(ctx, order); err != nil {
			metrics.OrderSinkFailures.WithLabelValues(n.Name()).Inc()
			r.logger.Warn("order notification failed", map[string]interface{}{
				"orderId":  order.ID,
				"notifier": n.Name(),
				"error":    err,
			})
		}
	}
	return nil
}

// LogSink writes the order summary to the process log.
type LogSink struct {
	logger logger.Logger
}

// NewLogSink logs every order at info level.
func NewLogSink(log logger.Logger) *LogSink {
	return &LogSink{logger: log}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Record(_ context.Context, order models.Order) error {
	s.logger.Info("new order placed", map[string]interface{}{
		"orderId": order.ID,
		"userId":  order.UserID,
		"summary": order.Summary,
	})
	return nil
}
