package models

import "time"

// UserState is the progress of one user through a scenario.
type UserState struct {
	ScenarioID string         `json:"scenarioId"`
	Step       int            `json:"step"`
	Context    BookingContext `json:"context"`
	StartedAt  time.Time      `json:"startedAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}
