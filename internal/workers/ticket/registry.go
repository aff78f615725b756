package ticket

import (
	"ticket-bot/internal/catalog"
	"ticket-bot/internal/common/logger"
	"ticket-bot/internal/scenario"
)

const (
	HandlerOrigin       scenario.HandlerID = "origin-location"
	HandlerDestination  scenario.HandlerID = "destination-location"
	HandlerDate         scenario.HandlerID = "date"
	HandlerFlight       scenario.HandlerID = "flight-selection"
	HandlerQuantity     scenario.HandlerID = "ticket-quantity"
	HandlerComment      scenario.HandlerID = "comment"
	HandlerConfirmation scenario.HandlerID = "summary-confirmation"
	HandlerPhone        scenario.HandlerID = "phone"
)

// NewRegistry wires every ticket ordering step handler.
func NewRegistry(config *Config, cat catalog.Catalog, clock catalog.Clock, log logger.Logger) scenario.Registry {
	if config == nil {
		config = LoadConfig()
	}
	scoped := func(id scenario.HandlerID) logger.Logger {
		return log.WithFields(map[string]interface{}{"handler": string(id)})
	}

	return scenario.Registry{
		HandlerOrigin:       NewOriginHandler(config, cat, scoped(HandlerOrigin)),
		HandlerDestination:  NewDestinationHandler(config, cat, scoped(HandlerDestination)),
		HandlerDate:         NewDateHandler(config, cat, clock, scoped(HandlerDate)),
		HandlerFlight:       scenario.HandlerFunc(handleFlight),
		HandlerQuantity:     NewQuantityHandler(config),
		HandlerComment:      scenario.HandlerFunc(handleComment),
		HandlerConfirmation: NewConfirmationHandler(config),
		HandlerPhone:        NewPhoneHandler(config),
	}
}
