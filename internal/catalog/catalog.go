package catalog

import (
	"context"
	"errors"
	"time"

	"ticket-bot/internal/models"
)

var (
	ErrQueryFailed = errors.New("CATALOG_QUERY_FAILED")
	ErrSeedFailed  = errors.New("CATALOG_SEED_FAILED")
)

// Query filters flights. Empty strings and a zero When mean "any"; Limit <= 0 means no limit.
type Query struct {
	Origin      string
	Destination string
	When        time.Time
	Limit       int
}

// LocationQuery filters the distinct origin or destination names.
type LocationQuery struct {
	When  time.Time
	Limit int
}

// Catalog answers flight inventory questions. Every query only considers
// flights departing strictly after the effective as-of time.
type Catalog interface {
	// GetTickets returns flights ordered by origin, then price.
	GetTickets(ctx context.Context, q Query) ([]models.Flight, error)
	GetDepartureLocations(ctx context.Context, q LocationQuery) ([]string, error)
	GetArrivalLocations(ctx context.Context, q LocationQuery) ([]string, error)
	IsRouteAvailable(ctx context.Context, origin, destination string, when time.Time) (bool, error)
}

// Seeder stores generated flights.
type Seeder interface {
	Migrate(ctx context.Context) error
	Seed(ctx context.Context, flights []models.Flight) (int, error)
}

// Clock returns the current time.
type Clock func() time.Time

// EffectiveAsOf is the later of now and when; a zero when yields now.
func EffectiveAsOf(now, when time.Time) time.Time {
	if when.IsZero() || now.After(when) {
		return now
	}
	return when
}
