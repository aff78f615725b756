package scenario

import (
	"errors"
	"fmt"
)

// HandlerID names a registered step handler.
type HandlerID string

// Step is one turn of a scenario. A step without a handler is terminal: it
// closes the scenario and may only appear last.
type Step struct {
	Number      int       `yaml:"number" json:"number"`
	Prompt      string    `yaml:"prompt" json:"prompt"`
	FailureText string    `yaml:"failure_text,omitempty" json:"failureText,omitempty"`
	Handler     HandlerID `yaml:"handler,omitempty" json:"handler,omitempty"`
}

// Terminal reports whether the step has no handler and only says goodbye.
func (s Step) Terminal() bool {
	return s.Handler == ""
}

// Definition is a named, ordered sequence of steps numbered from 1.
type Definition struct {
	ID    string `yaml:"id" json:"id"`
	Steps []Step `yaml:"steps" json:"steps"`
}

var ErrInvalidDefinition = errors.New("invalid scenario definition")

// Step returns the step with the given number.
func (d *Definition) Step(number int) (Step, bool) {
	if number < 1 || number > len(d.Steps) {
		return Step{}, false
	}
	return d.Steps[number-1], true
}

// Validate checks numbering, the terminal step and that every handler is registered.
func (d *Definition) Validate(handlers Registry) error {
	if d.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidDefinition)
	}
	if len(d.Steps) < 2 {
		return fmt.Errorf("%w: scenario %q needs at least one handled step and a terminal step", ErrInvalidDefinition, d.ID)
	}

	last := len(d.Steps)
	for i, s := range d.Steps {
		if s.Number != i+1 {
			return fmt.Errorf("%w: scenario %q step %d is numbered %d", ErrInvalidDefinition, d.ID, i+1, s.Number)
		}
		if s.Prompt == "" {
			return fmt.Errorf("%w: scenario %q step %d has no prompt", ErrInvalidDefinition, d.ID, s.Number)
		}
		if s.Terminal() != (s.Number == last) {
			return fmt.Errorf("%w: scenario %q must end with exactly one terminal step (step %d)", ErrInvalidDefinition, d.ID, s.Number)
		}
		if s.Terminal() {
			continue
		}
		if _, ok := handlers[s.Handler]; !ok {
			return fmt.Errorf("%w: scenario %q step %d uses unknown handler %q", ErrInvalidDefinition, d.ID, s.Number, s.Handler)
		}
	}
	return nil
}
