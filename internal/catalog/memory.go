package catalog

import (
	"context"
	"sort"
	"sync"
	"time"

	"ticket-bot/internal/models"
)

// MemoryCatalog keeps the inventory in process. It is used by the console
// mode and by tests; ordering and filtering match PostgresCatalog.
type MemoryCatalog struct {
	mu      sync.RWMutex
	flights []models.Flight
	nextID  int64
	now     Clock
}

// NewMemoryCatalog returns an empty catalog. A nil clock uses time.Now.
func NewMemoryCatalog(now Clock) *MemoryCatalog {
	if now == nil {
		now = time.Now
	}
	return &MemoryCatalog{now: now, nextID: 1}
}

func (c *MemoryCatalog) Migrate(context.Context) error { return nil }

// Seed assigns ids in order, continuing after the last stored flight.
func (c *MemoryCatalog) Seed(_ context.Context, flights []models.Flight) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, f := range flights {
		f.ID = c.nextID
		c.nextID++
		c.flights = append(c.flights, f)
	}
	return len(flights), nil
}

func (c *MemoryCatalog) GetTickets(_ context.Context, q Query) ([]models.Flight, error) {
	asOf := EffectiveAsOf(c.now(), q.When)

	c.mu.RLock()
	var out []models.Flight
	for _, f := range c.flights {
		if !f.Departure.After(asOf) {
			continue
		}
		if q.Origin != "" && f.Origin != q.Origin {
			continue
		}
		if q.Destination != "" && f.Destination != q.Destination {
			continue
		}
		out = append(out, f)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Origin != b.Origin {
			return a.Origin < b.Origin
		}
		if a.Price != b.Price {
			return a.Price < b.Price
		}
		if !a.Departure.Equal(b.Departure) {
			return a.Departure.Before(b.Departure)
		}
		return a.ID < b.ID
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (c *MemoryCatalog) GetDepartureLocations(_ context.Context, q LocationQuery) ([]string, error) {
	return c.locations(q, func(f models.Flight) string { return f.Origin }), nil
}

func (c *MemoryCatalog) GetArrivalLocations(_ context.Context, q LocationQuery) ([]string, error) {
	return c.locations(q, func(f models.Flight) string { return f.Destination }), nil
}

func (c *MemoryCatalog) locations(q LocationQuery, pick func(models.Flight) string) []string {
	asOf := EffectiveAsOf(c.now(), q.When)

	c.mu.RLock()
	seen := make(map[string]struct{})
	var out []string
	for _, f := range c.flights {
		if !f.Departure.After(asOf) {
			continue
		}
		name := pick(f)
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	c.mu.RUnlock()

	sort.Strings(out)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

func (c *MemoryCatalog) IsRouteAvailable(ctx context.Context, origin, destination string, when time.Time) (bool, error) {
	flights, err := c.GetTickets(ctx, Query{Origin: origin, Destination: destination, When: when, Limit: 1})
	if err != nil {
		return false, err
	}
	return len(flights) > 0, nil
}
