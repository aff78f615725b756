package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Date layouts. Users may type the day and month with or without a leading
// zero (DateInputLayout); dates are logged in DateLayout and echoed back in
// DateEchoLayout.
const (
	DateInputLayout = "2-1-2006"
	DateLayout      = "02-01-2006"
	DateEchoLayout  = "02.01.2006"
)

// Template placeholder names. Each one is backed by a BookingContext field and
// only becomes available once a step handler has written that field.
const (
	FieldOrigin        = "origin"
	FieldDestination   = "destination"
	FieldDepartures    = "departures"
	FieldArrivals      = "arrivals"
	FieldRequestedDate = "requested_date"
	FieldFlights       = "flights"
	FieldFlightID      = "flight_id"
	FieldFlightDeparts = "flight_departure"
	FieldTicketQty     = "ticket_qty"
	FieldComment       = "comment"
	FieldSummary       = "summary"
	FieldPhone         = "phone"
)

// BookingContext accumulates the answers of one ticket ordering conversation.
// Fields are filled progressively, so zero values mean "not collected yet".
type BookingContext struct {
	Origin           string           `json:"origin,omitempty"`
	Destination      string           `json:"destination,omitempty"`
	DeparturesList   string           `json:"departuresList,omitempty"`
	ArrivalsList     string           `json:"arrivalsList,omitempty"`
	RequestedDate    time.Time        `json:"requestedDate,omitempty"`
	CandidateFlights map[int64]Flight `json:"candidateFlights,omitempty"`
	FlightList       string           `json:"flightList,omitempty"`
	SelectedFlightID int64            `json:"selectedFlightId,omitempty"`
	SelectedFlight   *Flight          `json:"selectedFlight,omitempty"`
	TicketQty        int              `json:"ticketQty,omitempty"`
	Comment          string           `json:"comment,omitempty"`
	Summary          string           `json:"summary,omitempty"`
	Phone            string           `json:"phone,omitempty"`

	// OrderID is assigned once the summary is frozen and stays the same
	// across repeated completion attempts.
	OrderID string `json:"orderId,omitempty"`
}

// Placeholders returns the template values for every field that has been set.
func (c *BookingContext) Placeholders() map[string]string {
	out := make(map[string]string)
	if c.Origin != "" {
		out[FieldOrigin] = c.Origin
	}
	if c.Destination != "" {
		out[FieldDestination] = c.Destination
	}
	if c.DeparturesList != "" {
		out[FieldDepartures] = c.DeparturesList
	}
	if c.ArrivalsList != "" {
		out[FieldArrivals] = c.ArrivalsList
	}
	if !c.RequestedDate.IsZero() {
		out[FieldRequestedDate] = c.RequestedDate.Format(DateEchoLayout)
	}
	if c.FlightList != "" {
		out[FieldFlights] = c.FlightList
	}
	if c.SelectedFlight != nil {
		out[FieldFlightID] = strconv.FormatInt(c.SelectedFlightID, 10)
		out[FieldFlightDeparts] = c.SelectedFlight.Departure.Format(DepartureLayout)
	}
	if c.TicketQty > 0 {
		out[FieldTicketQty] = strconv.Itoa(c.TicketQty)
	}
	if c.Comment != "" {
		out[FieldComment] = c.Comment
	}
	if c.Summary != "" {
		out[FieldSummary] = c.Summary
	}
	if c.Phone != "" {
		out[FieldPhone] = c.Phone
	}
	return out
}

// Total is the order amount for the selected flight and quantity.
func (c *BookingContext) Total() float64 {
	if c.SelectedFlight == nil {
		return 0
	}
	return c.SelectedFlight.Price * float64(c.TicketQty)
}

// RenderSummary builds the order summary shown for confirmation.
func (c *BookingContext) RenderSummary() string {
	var departure string
	var price float64
	if c.SelectedFlight != nil {
		departure = c.SelectedFlight.Departure.Format(DepartureLayout)
		price = c.SelectedFlight.Price
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Город вылета: %s\n", c.Origin)
	fmt.Fprintf(&b, "Город прибытия: %s\n", c.Destination)
	fmt.Fprintf(&b, "Дата и время вылета: %s\n", departure)
	fmt.Fprintf(&b, "Цена, руб.: %s\n", FormatPrice(price))
	fmt.Fprintf(&b, "Кол-во билетов: %d\n", c.TicketQty)
	fmt.Fprintf(&b, "Итого сумма, руб.: %s\n", FormatPrice(c.Total()))
	fmt.Fprintf(&b, "Комментарий к заказу: %s\n", c.Comment)
	return b.String()
}

// RenderFlightList joins flights in the given order, separated by a blank line.
func RenderFlightList(flights []Flight) string {
	lines := make([]string, 0, len(flights))
	for _, f := range flights {
		lines = append(lines, f.String())
	}
	return strings.Join(lines, "\n\n")
}
