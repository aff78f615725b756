package models

import "time"

// Order is a completed ticket order handed to the order sinks.
type Order struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"userId" db:"user_id"`
	ScenarioID  string    `json:"scenarioId" db:"scenario_id"`
	FlightID    int64     `json:"flightId" db:"flight_id"`
	Origin      string    `json:"origin" db:"origin"`
	Destination string    `json:"destination" db:"destination"`
	DepartureAt time.Time `json:"departureAt" db:"departure_at"`
	Price       float64   `json:"price" db:"price"`
	TicketQty   int       `json:"ticketQty" db:"ticket_qty"`
	Total       float64   `json:"total" db:"total"`
	Comment     string    `json:"comment" db:"comment"`
	Phone       string    `json:"phone" db:"phone"`
	Summary     string    `json:"summary" db:"summary"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}
