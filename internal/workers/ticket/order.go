package ticket

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"ticket-bot/internal/models"
	"ticket-bot/internal/scenario"
)

var (
	yesNoPattern = regexp.MustCompile(`да|нет`)
	phonePattern = regexp.MustCompile(`\+7\d{10}$`)
)

func handleFlight(_ context.Context, bc *models.BookingContext, text string) (scenario.Verdict, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return scenario.Retry(), nil
	}
	flight, ok := bc.CandidateFlights[id]
	if !ok {
		return scenario.Retry(), nil
	}

	bc.SelectedFlightID = id
	bc.SelectedFlight = &flight
	return scenario.Advance(), nil
}

// QuantityHandler accepts a ticket count within the configured bounds.
type QuantityHandler struct {
	config *Config
}

// NewQuantityHandler builds the ticket quantity step handler.
func NewQuantityHandler(config *Config) *QuantityHandler {
	return &QuantityHandler{config: config}
}

func (h *QuantityHandler) Handle(_ context.Context, bc *models.BookingContext, text string) (scenario.Verdict, error) {
	qty, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || qty < h.config.MinTickets || qty > h.config.MaxTickets {
		return scenario.Retry(), nil
	}
	bc.TicketQty = qty
	return scenario.Advance(), nil
}

// handleComment accepts anything, freezes the order summary and assigns the
// order id.
func handleComment(_ context.Context, bc *models.BookingContext, text string) (scenario.Verdict, error) {
	bc.Comment = text
	bc.Summary = bc.RenderSummary()
	bc.OrderID = uuid.NewString()
	return scenario.Advance(), nil
}

// ConfirmationHandler reads a yes or no to the order summary. No starts the
// scenario over.
type ConfirmationHandler struct {
	config *Config
}

// NewConfirmationHandler builds the summary confirmation step handler.
func NewConfirmationHandler(config *Config) *ConfirmationHandler {
	return &ConfirmationHandler{config: config}
}

func (h *ConfirmationHandler) Handle(_ context.Context, _ *models.BookingContext, text string) (scenario.Verdict, error) {
	switch yesNoPattern.FindString(strings.ToLower(text)) {
	case "да":
		return scenario.Advance(), nil
	case "нет":
		return scenario.Quit(h.config.RestartMessage, true), nil
	default:
		return scenario.Retry(), nil
	}
}

// PhoneHandler accepts a +7 mobile number and appends it to the summary.
type PhoneHandler struct {
	config *Config
}

// NewPhoneHandler builds the phone step handler.
func NewPhoneHandler(config *Config) *PhoneHandler {
	return &PhoneHandler{config: config}
}

func (h *PhoneHandler) Handle(_ context.Context, bc *models.BookingContext, text string) (scenario.Verdict, error) {
	phone := phonePattern.FindString(text)
	if phone == "" {
		return scenario.Retry(), nil
	}
	bc.Phone = phone
	bc.Summary += fmt.Sprintf(h.config.PhoneLine, phone)
	return scenario.Advance(), nil
}
