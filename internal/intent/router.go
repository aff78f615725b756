package intent

import (
	"strings"

	"ticket-bot/internal/models"
)

// Action tells the bot what to do with a routed message.
type Action int

const (
	// ActionAnswer replies with Decision.Answer.
	ActionAnswer Action = iota
	// ActionStart starts Decision.Scenario.
	ActionStart
)

// Decision is what to do with text from a user who is not in a scenario.
type Decision struct {
	Action   Action
	Intent   string
	Scenario string
	Answer   string
}

// Router picks the first intent, in declaration order, with a token
// contained in the text.
type Router struct {
	intents       []models.Intent
	defaultAnswer string
}

// NewRouter matches intents in the given order.
func NewRouter(intents []models.Intent, defaultAnswer string) *Router {
	normalized := make([]models.Intent, len(intents))
	for i, in := range intents {
		tokens := make([]string, len(in.Tokens))
		for j, tok := range in.Tokens {
			tokens[j] = strings.ToLower(tok)
		}
		in.Tokens = tokens
		normalized[i] = in
	}
	return &Router{intents: normalized, defaultAnswer: defaultAnswer}
}

// Route returns the first intent with a token contained in text, or the
// default answer.
func (r *Router) Route(text string) Decision {
	lowered := strings.ToLower(text)
	for _, in := range r.intents {
		if !containsAny(lowered, in.Tokens) {
			continue
		}
		if in.Answer != "" {
			return Decision{Action: ActionAnswer, Intent: in.Name, Answer: in.Answer}
		}
		return Decision{Action: ActionStart, Intent: in.Name, Scenario: in.Scenario}
	}
	return Decision{Action: ActionAnswer, Answer: r.defaultAnswer}
}

func containsAny(text string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(text, tok) {
			return true
		}
	}
	return false
}
