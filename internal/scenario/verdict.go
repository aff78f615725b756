package scenario

import (
	"context"

	"ticket-bot/internal/models"
)

// Outcome is the kind of decision a step handler made.
type Outcome int

const (
	OutcomeAdvance Outcome = iota
	OutcomeRetry
	OutcomeQuit
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAdvance:
		return "advance"
	case OutcomeRetry:
		return "retry"
	case OutcomeQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Verdict is what a step handler decided about one answer.
type Verdict struct {
	Outcome   Outcome
	Message   string
	StartOver bool
}

// Advance moves the user to the next step.
func Advance() Verdict { return Verdict{Outcome: OutcomeAdvance} }

// Retry keeps the user on the current step and sends its failure text.
func Retry() Verdict { return Verdict{Outcome: OutcomeRetry} }

// Quit ends the scenario with message. With startOver the same scenario is
// started again right away.
func Quit(message string, startOver bool) Verdict {
	return Verdict{Outcome: OutcomeQuit, Message: message, StartOver: startOver}
}

// StepHandler validates one answer and writes what it extracted into bc.
// Invalid input is a Retry or Quit verdict; err is reserved for failures of
// the handler's collaborators.
type StepHandler interface {
	Handle(ctx context.Context, bc *models.BookingContext, text string) (Verdict, error)
}

// HandlerFunc adapts a plain function to StepHandler.
type HandlerFunc func(ctx context.Context, bc *models.BookingContext, text string) (Verdict, error)

func (f HandlerFunc) Handle(ctx context.Context, bc *models.BookingContext, text string) (Verdict, error) {
	return f(ctx, bc, text)
}

// Registry is the static dispatch table from handler id to implementation.
type Registry map[HandlerID]StepHandler
