package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	apperrors "ticket-bot/internal/common/errors"
	"ticket-bot/internal/common/logger"
	"ticket-bot/internal/common/metrics"
	"ticket-bot/internal/common/observability"
)

var errEventTimeout = errors.New("EVENT_TIMEOUT")

// Result is the outcome of one event: a reply, or the reason there is none.
type Result struct {
	UserID string
	Text   string
	Err    *apperrors.StandardError
}

// OK reports whether the event produced a reply.
func (r Result) OK() bool { return r.Err == nil }

// Processor handles a single event.
type Processor interface {
	Handle(ctx context.Context, ev Event) (string, error)
}

type submission struct {
	ev    Event
	reply chan Result
}

// Loop runs every event through the processor one at a time, so session
// state and handlers never see concurrent events.
type Loop struct {
	proc     Processor
	events   chan submission
	timeout  time.Duration
	done     chan struct{}
	stopOnce sync.Once
	failures *apperrors.ErrorHandler
	obs      *observability.Observability
	logger   logger.Logger

	// mu guards closed. Submit enqueues under the read lock, so once Run has
	// set closed no submission can reach events any more.
	mu     sync.RWMutex
	closed bool
}

// NewLoop builds a loop with room for queueSize waiting events. A zero
// timeout lets events run for as long as the Run context lives.
func NewLoop(proc Processor, queueSize int, timeout time.Duration, obs *observability.Observability, log logger.Logger) *Loop {
	if queueSize < 0 {
		queueSize = 0
	}
	log = log.WithFields(map[string]interface{}{"component": "loop"})
	return &Loop{
		proc:     proc,
		events:   make(chan submission, queueSize),
		timeout:  timeout,
		done:     make(chan struct{}),
		failures: apperrors.NewErrorHandler(log),
		obs:      obs,
		logger:   log,
	}
}

// Run processes events until ctx is cancelled. Events still queued at that
// point, and submitters arriving later, get a LOOP_CLOSED result.
func (l *Loop) Run(ctx context.Context) {
	defer l.stop()

	l.logger.Info("event loop started", nil)
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("event loop stopped", nil)
			return
		case sub := <-l.events:
			metrics.EventsQueued.Dec()
			sub.reply <- l.process(ctx, sub.ev)
		}
	}
}

func (l *Loop) stop() {
	l.stopOnce.Do(func() { close(l.done) })

	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()

	for {
		select {
		case sub := <-l.events:
			metrics.EventsQueued.Dec()
			sub.reply <- failed(sub.ev.UserID, apperrors.ErrCodeLoopClosed, "loop stopped before the event was processed")
		default:
			return
		}
	}
}

// Submit queues ev and waits for its result.
func (l *Loop) Submit(ctx context.Context, ev Event) Result {
	sub := submission{ev: ev, reply: make(chan Result, 1)}
	if res, queued := l.enqueue(ctx, sub); !queued {
		return res
	}

	select {
	case res := <-sub.reply:
		return res
	case <-l.done:
		return failed(ev.UserID, apperrors.ErrCodeLoopClosed, "loop stopped before the event was processed")
	case <-ctx.Done():
		return failed(ev.UserID, apperrors.ErrCodeEventTimeout, ctx.Err().Error())
	}
}

func (l *Loop) process(ctx context.Context, ev Event) (res Result) {
	start := time.Now()
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	defer func() {
		if rec := recover(); rec != nil {
			res = Result{UserID: ev.UserID, Err: l.failures.HandleEventError(ev.UserID,
				apperrors.New(apperrors.ErrCodeEventPanic, fmt.Sprint(rec)))}
		}

		status := "ok"
		if !res.OK() {
			status = "failed"
		}
		elapsed := time.Since(start)
		metrics.EventsProcessed.WithLabelValues(status).Inc()
		metrics.EventDuration.WithLabelValues(status).Observe(elapsed.Seconds())
		l.obs.RecordEvent(ctx, status, elapsed)
	}()

	text, err := l.proc.Handle(ctx, ev)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %v", errEventTimeout, err)
		}
		return Result{UserID: ev.UserID, Err: l.failures.HandleEventError(ev.UserID, err)}
	}
	return Result{UserID: ev.UserID, Text: text}
}

func (l *Loop) enqueue(ctx context.Context, sub submission) (Result, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return failed(sub.ev.UserID, apperrors.ErrCodeLoopClosed, "loop is not running"), false
	}
	select {
	case l.events <- sub:
		metrics.EventsQueued.Inc()
		return Result{}, true
	case <-l.done:
		return failed(sub.ev.UserID, apperrors.ErrCodeLoopClosed, "loop is not running"), false
	case <-ctx.Done():
		return failed(sub.ev.UserID, apperrors.ErrCodeEventTimeout, ctx.Err().Error()), false
	}
}

func failed(userID string, code apperrors.ErrorCode, details string) Result {
	return Result{UserID: userID, Err: apperrors.New(code, details)}
}
