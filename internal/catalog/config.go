package catalog

import (
	"fmt"
	"strings"

	"ticket-bot/internal/common/config"
)

// RulesFromConfig converts configured schedule rules. An empty list yields DefaultSchedule.
func RulesFromConfig(specs []config.ScheduleRule) ([]Rule, error) {
	if len(specs) == 0 {
		return DefaultSchedule(), nil
	}

	rules := make([]Rule, 0, len(specs))
	for i, s := range specs {
		if s.Origin == "" || s.Destination == "" {
			return nil, fmt.Errorf("catalog.rules[%d]: origin and destination are required", i)
		}
		if s.Price <= 0 {
			return nil, fmt.Errorf("catalog.rules[%d]: price must be positive", i)
		}
		at, err := ParseTimeOfDay(s.Time)
		if err != nil {
			return nil, fmt.Errorf("catalog.rules[%d]: %w", i, err)
		}
		route := Route{Origin: s.Origin, Destination: s.Destination, At: at, Price: s.Price}

		switch strings.ToLower(s.Kind) {
		case "daily":
			rules = append(rules, Daily{Route: route})
		case "weekly":
			if err := checkRange(s.Weekdays, 0, 6); err != nil {
				return nil, fmt.Errorf("catalog.rules[%d].weekdays: %w", i, err)
			}
			rules = append(rules, Weekly{Route: route, Weekdays: s.Weekdays})
		case "monthly":
			if err := checkRange(s.Monthdays, 1, 31); err != nil {
				return nil, fmt.Errorf("catalog.rules[%d].monthdays: %w", i, err)
			}
			rules = append(rules, Monthly{Route: route, Monthdays: s.Monthdays})
		default:
			return nil, fmt.Errorf("catalog.rules[%d]: unknown kind %q", i, s.Kind)
		}
	}
	return rules, nil
}

func checkRange(values []int, lo, hi int) error {
	if len(values) == 0 {
		return fmt.Errorf("at least one value is required")
	}
	for _, v := range values {
		if v < lo || v > hi {
			return fmt.Errorf("%d is outside %d..%d", v, lo, hi)
		}
	}
	return nil
}
