package ticket

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"ticket-bot/internal/catalog"
	"ticket-bot/internal/common/logger"
	"ticket-bot/internal/models"
	"ticket-bot/internal/scenario"
)

const minLocationLetters = 3

var cyrillicWord = regexp.MustCompile(`[а-яё]+(?:-[а-яё]+)*`)

// MatchLocation finds the known location the user most likely meant. It tries
// the whole Cyrillic phrase, then each word from the last one, each both as
// typed and without its final letter so inflected forms ("москву") still match.
// known is expected in ascending order; the first prefix match wins.
func MatchLocation(text string, known []string) (string, bool) {
	words := cyrillicWord.FindAllString(strings.ToLower(text), -1)
	if len(words) == 0 {
		return "", false
	}

	candidates := make([]string, 0, len(words)+1)
	if len(words) > 1 {
		candidates = append(candidates, strings.Join(words, " "))
	}
	for i := len(words) - 1; i >= 0; i-- {
		candidates = append(candidates, words[i])
	}

	lowered := make([]string, len(known))
	for i, k := range known {
		lowered[i] = strings.ToLower(k)
	}

	for _, c := range candidates {
		for _, stem := range stems(c) {
			for i, k := range lowered {
				if strings.HasPrefix(k, stem) {
					return known[i], true
				}
			}
		}
	}
	return "", false
}

func stems(word string) []string {
	n := utf8.RuneCountInString(word)
	if n < minLocationLetters {
		return nil
	}
	if n == minLocationLetters {
		return []string{word}
	}
	_, size := utf8.DecodeLastRuneInString(word)
	return []string{word, word[:len(word)-size]}
}

// listLocations renders known one per line, or the configured stand-in when
// the catalog has nothing to offer, so the failure text always renders.
func listLocations(known []string, config *Config) string {
	if len(known) == 0 {
		return config.NoLocationsText
	}
	return strings.Join(known, "\n")
}

// OriginHandler matches the departure city against the catalog.
type OriginHandler struct {
	config  *Config
	catalog catalog.Catalog
	logger  logger.Logger
}

// NewOriginHandler builds the origin step handler.
func NewOriginHandler(config *Config, cat catalog.Catalog, log logger.Logger) *OriginHandler {
	return &OriginHandler{config: config, catalog: cat, logger: log}
}

// Handle advances on a known departure city. Otherwise it writes the list of
// departures for the failure text and retries.
func (h *OriginHandler) Handle(ctx context.Context, bc *models.BookingContext, text string) (scenario.Verdict, error) {
	known, err := h.catalog.GetDepartureLocations(ctx, catalog.LocationQuery{})
	if err != nil {
		return scenario.Verdict{}, fmt.Errorf("load departures: %w", err)
	}

	origin, ok := MatchLocation(text, known)
	if !ok {
		bc.DeparturesList = listLocations(known, h.config)
		return scenario.Retry(), nil
	}

	bc.Origin = origin
	h.logger.Debug("origin matched", map[string]interface{}{"input": text, "origin": origin})
	return scenario.Advance(), nil
}

// DestinationHandler matches the arrival city and ends the scenario when no
// flight connects it to the origin.
type DestinationHandler struct {
	config  *Config
	catalog catalog.Catalog
	logger  logger.Logger
}

// NewDestinationHandler builds the destination step handler.
func NewDestinationHandler(config *Config, cat catalog.Catalog, log logger.Logger) *DestinationHandler {
	return &DestinationHandler{config: config, catalog: cat, logger: log}
}

func (h *DestinationHandler) Handle(ctx context.Context, bc *models.BookingContext, text string) (scenario.Verdict, error) {
	known, err := h.catalog.GetArrivalLocations(ctx, catalog.LocationQuery{})
	if err != nil {
		return scenario.Verdict{}, fmt.Errorf("load arrivals: %w", err)
	}

	destination, ok := MatchLocation(text, known)
	if !ok {
		bc.ArrivalsList = listLocations(known, h.config)
		return scenario.Retry(), nil
	}
	bc.Destination = destination

	available, err := h.catalog.IsRouteAvailable(ctx, bc.Origin, destination, time.Time{})
	if err != nil {
		return scenario.Verdict{}, fmt.Errorf("check route %s-%s: %w", bc.Origin, destination, err)
	}
	if !available {
		h.logger.Info("route not available", map[string]interface{}{
			"origin":      bc.Origin,
			"destination": destination,
		})
		return scenario.Quit(fmt.Sprintf(h.config.NoRouteMessage, bc.Origin, destination), false), nil
	}
	return scenario.Advance(), nil
}
