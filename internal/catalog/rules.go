package catalog

import (
	"fmt"
	"time"

	"ticket-bot/internal/models"
)

// TimeOfDay is a departure time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Route is the part every recurrence rule shares.
type Route struct {
	Origin      string
	Destination string
	At          TimeOfDay
	Price       float64
}

// Rule is a declarative schedule entry expanded into concrete flights.
// The set of rules is closed: Daily, Weekly and Monthly.
type Rule interface {
	route() Route
	// flies reports whether the rule produces a flight on the given date.
	flies(date time.Time) bool
}

// Daily flies every day.
type Daily struct {
	Route
}

// Weekly flies on the listed weekdays, Monday = 0 ... Sunday = 6.
type Weekly struct {
	Route
	Weekdays []int
}

// Monthly flies on the listed days of month, 1..31.
type Monthly struct {
	Route
	Monthdays []int
}

func (r Daily) route() Route   { return r.Route }
func (r Weekly) route() Route  { return r.Route }
func (r Monthly) route() Route { return r.Route }

func (r Daily) flies(time.Time) bool { return true }

func (r Weekly) flies(date time.Time) bool {
	return contains(r.Weekdays, mondayFirst(date.Weekday()))
}

func (r Monthly) flies(date time.Time) bool {
	return contains(r.Monthdays, date.Day())
}

func mondayFirst(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

func contains(set []int, v int) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// Generate expands rules into flights for every day in [0, horizonDays] counted
// from the calendar date of start in loc. Returned flights carry no ids.
func Generate(rules []Rule, start time.Time, horizonDays int, loc *time.Location) []models.Flight {
	if loc == nil {
		loc = time.Local
	}
	start = start.In(loc)
	first := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)

	var flights []models.Flight
	for _, rule := range rules {
		rt := rule.route()
		for day := 0; day <= horizonDays; day++ {
			date := first.AddDate(0, 0, day)
			if !rule.flies(date) {
				continue
			}
			flights = append(flights, models.Flight{
				Origin:      rt.Origin,
				Destination: rt.Destination,
				Departure:   time.Date(date.Year(), date.Month(), date.Day(), rt.At.Hour, rt.At.Minute, 0, 0, loc),
				Price:       rt.Price,
			})
		}
	}
	return flights
}
