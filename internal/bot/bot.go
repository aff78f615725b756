package bot

import (
	"context"
	"strings"

	"ticket-bot/internal/common/logger"
	"ticket-bot/internal/intent"
	"ticket-bot/internal/scenario"
)

// Event is one inbound chat message.
type Event struct {
	UserID string `json:"userId"`
	Text   string `json:"text"`
}

// Conversation is the part of the scenario engine the bot drives.
type Conversation interface {
	Start(ctx context.Context, scenarioID, userID string) (string, error)
	Continue(ctx context.Context, userID, text string) (string, error)
	Quit(ctx context.Context, userID string) error
	Active(ctx context.Context, userID string) (bool, error)
}

// Bot turns one inbound message into one reply.
type Bot struct {
	conversation Conversation
	router       *intent.Router
	controls     scenario.Controls
	logger       logger.Logger
}

// New builds a bot. Control tokens are matched case-insensitively.
func New(conversation Conversation, router *intent.Router, controls scenario.Controls, log logger.Logger) *Bot {
	controls.StartToken = strings.ToLower(controls.StartToken)
	controls.HelpToken = strings.ToLower(controls.HelpToken)
	controls.QuitToken = strings.ToLower(controls.QuitToken)

	return &Bot{
		conversation: conversation,
		router:       router,
		controls:     controls,
		logger:       log.WithFields(map[string]interface{}{"component": "bot"}),
	}
}

// Handle normalizes the text, applies the control tokens for users inside a
// scenario and otherwise routes the text to the scenario or to the intents.
func (b *Bot) Handle(ctx context.Context, ev Event) (string, error) {
	text := strings.ToLower(strings.TrimSpace(ev.Text))

	active, err := b.conversation.Active(ctx, ev.UserID)
	if err != nil {
		return "", err
	}
	if active {
		return b.handleActive(ctx, ev.UserID, text)
	}

	decision := b.router.Route(text)
	b.logger.Debug("intent routed", map[string]interface{}{
		"userId": ev.UserID,
		"intent": decision.Intent,
	})
	if decision.Action == intent.ActionStart {
		return b.conversation.Start(ctx, decision.Scenario, ev.UserID)
	}
	return decision.Answer, nil
}

func (b *Bot) handleActive(ctx context.Context, userID, text string) (string, error) {
	switch text {
	case b.controls.StartToken:
		return b.conversation.Start(ctx, b.controls.Scenario, userID)
	case b.controls.HelpToken:
		if err := b.conversation.Quit(ctx, userID); err != nil {
			return "", err
		}
		return b.controls.HelpAnswer, nil
	case b.controls.QuitToken:
		if err := b.conversation.Quit(ctx, userID); err != nil {
			return "", err
		}
		return b.controls.QuitAnswer, nil
	default:
		return b.conversation.Continue(ctx, userID, text)
	}
}
