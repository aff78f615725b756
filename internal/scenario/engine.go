package scenario

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"ticket-bot/internal/common/logger"
	"ticket-bot/internal/common/metrics"
	"ticket-bot/internal/models"
)

var (
	ErrNoActiveScenario = errors.New("NO_ACTIVE_SCENARIO")
	ErrUnknownScenario  = errors.New("UNKNOWN_SCENARIO")
	ErrStaleState       = errors.New("stale user state")
)

// Completion is a finished scenario handed to the CompletionSink.
type Completion struct {
	UserID     string
	ScenarioID string
	Context    models.BookingContext
}

// CompletionSink receives every completed scenario before its state is dropped.
type CompletionSink interface {
	Complete(ctx context.Context, c Completion) error
}

type nopSink struct{}

func (nopSink) Complete(context.Context, Completion) error { return nil }

// Engine advances users through scenario steps. It holds no per-user state
// itself; everything lives in the SessionStore.
type Engine struct {
	scenarios map[string]*Definition
	handlers  Registry
	store     SessionStore
	sink      CompletionSink
	now       func() time.Time
	logger    logger.Logger
}

// NewEngine validates every definition against handlers. A nil sink drops completions.
func NewEngine(defs []*Definition, handlers Registry, store SessionStore, sink CompletionSink, log logger.Logger) (*Engine, error) {
	scenarios := make(map[string]*Definition, len(defs))
	for _, d := range defs {
		if err := d.Validate(handlers); err != nil {
			return nil, err
		}
		if _, dup := scenarios[d.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate scenario %q", ErrInvalidDefinition, d.ID)
		}
		scenarios[d.ID] = d
	}
	if sink == nil {
		sink = nopSink{}
	}

	return &Engine{
		scenarios: scenarios,
		handlers:  handlers,
		store:     store,
		sink:      sink,
		now:       time.Now,
		logger:    log.WithFields(map[string]interface{}{"component": "scenario"}),
	}, nil
}

// Has reports whether scenarioID is defined.
func (e *Engine) Has(scenarioID string) bool {
	_, ok := e.scenarios[scenarioID]
	return ok
}

// Start puts the user on step 1, replacing any previous state, and returns
// step 1's prompt as is.
func (e *Engine) Start(ctx context.Context, scenarioID, userID string) (string, error) {
	def, ok := e.scenarios[scenarioID]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownScenario, scenarioID)
	}

	now := e.now().UTC()
	state := &models.UserState{
		ScenarioID: def.ID,
		Step:       1,
		StartedAt:  now,
		UpdatedAt:  now,
	}
	if err := e.store.Set(ctx, userID, state); err != nil {
		return "", err
	}

	e.logger.Debug("scenario started", map[string]interface{}{
		"userId":   userID,
		"scenario": def.ID,
	})
	return def.Steps[0].Prompt, nil
}

// Continue feeds text to the handler of the user's current step.
func (e *Engine) Continue(ctx context.Context, userID, text string) (string, error) {
	state, ok, err := e.store.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: user %s", ErrNoActiveScenario, userID)
	}

	def, ok := e.scenarios[state.ScenarioID]
	if !ok {
		return "", e.dropStale(ctx, userID, state, fmt.Errorf("%w: %s", ErrUnknownScenario, state.ScenarioID))
	}
	step, ok := def.Step(state.Step)
	if !ok || step.Terminal() {
		return "", e.dropStale(ctx, userID, state,
			fmt.Errorf("%w: scenario %s has no step %d", ErrStaleState, def.ID, state.Step))
	}

	verdict, err := e.handlers[step.Handler].Handle(ctx, &state.Context, text)
	if err != nil {
		return "", fmt.Errorf("scenario %s step %d (%s): %w", def.ID, step.Number, step.Handler, err)
	}
	metrics.StepOutcomes.WithLabelValues(def.ID, strconv.Itoa(step.Number), verdict.Outcome.String()).Inc()

	switch verdict.Outcome {
	case OutcomeAdvance:
		return e.advance(ctx, userID, def, state)
	case OutcomeQuit:
		return e.quit(ctx, userID, def, verdict)
	default:
		return e.retry(ctx, userID, step, state)
	}
}

func (e *Engine) advance(ctx context.Context, userID string, def *Definition, state *models.UserState) (string, error) {
	next, _ := def.Step(state.Step + 1)

	text, err := Render(next.Prompt, state.Context.Placeholders())
	if err != nil {
		return "", fmt.Errorf("scenario %s step %d: %w", def.ID, next.Number, err)
	}

	if next.Terminal() {
		completion := Completion{UserID: userID, ScenarioID: def.ID, Context: state.Context}
		if err := e.sink.Complete(ctx, completion); err != nil {
			return "", fmt.Errorf("scenario %s: complete for user %s: %w", def.ID, userID, err)
		}
		metrics.ScenariosCompleted.WithLabelValues(def.ID).Inc()

		if err := e.store.Delete(ctx, userID); err != nil {
			return "", err
		}
		e.logger.Info("scenario completed", map[string]interface{}{
			"userId":   userID,
			"scenario": def.ID,
		})
		return text, nil
	}

	state.Step = next.Number
	state.UpdatedAt = e.now().UTC()
	if err := e.store.Set(ctx, userID, state); err != nil {
		return "", err
	}
	return text, nil
}

func (e *Engine) quit(ctx context.Context, userID string, def *Definition, v Verdict) (string, error) {
	if err := e.store.Delete(ctx, userID); err != nil {
		return "", err
	}
	e.logger.Info("scenario quit by handler", map[string]interface{}{
		"userId":    userID,
		"scenario":  def.ID,
		"startOver": v.StartOver,
	})
	if !v.StartOver {
		return v.Message, nil
	}

	prompt, err := e.Start(ctx, def.ID, userID)
	if err != nil {
		return "", err
	}
	return v.Message + "\n\n" + prompt, nil
}

// retry keeps the step and stores whatever the handler wrote. A step without
// a failure text repeats its prompt.
func (e *Engine) retry(ctx context.Context, userID string, step Step, state *models.UserState) (string, error) {
	state.UpdatedAt = e.now().UTC()
	if err := e.store.Set(ctx, userID, state); err != nil {
		return "", err
	}

	tmpl := step.FailureText
	if tmpl == "" {
		tmpl = step.Prompt
	}
	text, err := Render(tmpl, state.Context.Placeholders())
	if err != nil {
		return "", fmt.Errorf("scenario %s step %d: %w", state.ScenarioID, step.Number, err)
	}
	return text, nil
}

// dropStale deletes a stored state that no longer matches any loaded
// scenario, so the user's next message starts fresh, and returns cause.
func (e *Engine) dropStale(ctx context.Context, userID string, state *models.UserState, cause error) error {
	e.logger.Warn("dropping stale user state", map[string]interface{}{
		"userId":   userID,
		"scenario": state.ScenarioID,
		"step":     state.Step,
	})
	if err := e.store.Delete(ctx, userID); err != nil {
		return fmt.Errorf("%v: %w", cause, err)
	}
	return cause
}

// Quit drops the user's state. It is a no-op for users without one.
func (e *Engine) Quit(ctx context.Context, userID string) error {
	return e.store.Delete(ctx, userID)
}

// Active reports whether the user is inside a scenario.
func (e *Engine) Active(ctx context.Context, userID string) (bool, error) {
	_, ok, err := e.store.Get(ctx, userID)
	return ok, err
}
