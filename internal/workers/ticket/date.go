package ticket

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ticket-bot/internal/catalog"
	"ticket-bot/internal/common/logger"
	"ticket-bot/internal/models"
	"ticket-bot/internal/scenario"
)

// DateHandler reads the travel date and offers the first flights from it.
type DateHandler struct {
	config  *Config
	catalog catalog.Catalog
	now     catalog.Clock
	logger  logger.Logger
}

// NewDateHandler builds the date step handler. A nil clock uses time.Now.
func NewDateHandler(config *Config, cat catalog.Catalog, clock catalog.Clock, log logger.Logger) *DateHandler {
	if clock == nil {
		clock = time.Now
	}
	return &DateHandler{config: config, catalog: cat, now: clock, logger: log}
}

// Handle retries on a malformed or past date and quits when the route has no
// flight on or after it.
func (h *DateHandler) Handle(ctx context.Context, bc *models.BookingContext, text string) (scenario.Verdict, error) {
	loc := h.config.Location
	date, err := time.ParseInLocation(models.DateInputLayout, strings.TrimSpace(text), loc)
	if err != nil {
		return scenario.Retry(), nil
	}

	now := h.now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	if date.Before(today) {
		return scenario.Retry(), nil
	}
	bc.RequestedDate = date

	flights, err := h.catalog.GetTickets(ctx, catalog.Query{
		Origin:      bc.Origin,
		Destination: bc.Destination,
		When:        date,
		Limit:       h.config.MaxFlights,
	})
	if err != nil {
		return scenario.Verdict{}, fmt.Errorf("find flights: %w", err)
	}
	if len(flights) == 0 {
		msg := fmt.Sprintf(h.config.NoFlightsMessage, date.Format(models.DateEchoLayout), bc.Origin, bc.Destination)
		return scenario.Quit(msg, false), nil
	}

	bc.CandidateFlights = make(map[int64]models.Flight, len(flights))
	for _, f := range flights {
		bc.CandidateFlights[f.ID] = f
	}
	bc.FlightList = models.RenderFlightList(flights)

	h.logger.Debug("flights offered", map[string]interface{}{
		"origin":      bc.Origin,
		"destination": bc.Destination,
		"date":        date.Format(models.DateLayout),
		"count":       len(flights),
	})
	return scenario.Advance(), nil
}
