package models

import (
	"fmt"
	"strconv"
	"time"
)

// DepartureLayout is how departure times are shown to users.
const DepartureLayout = "02.01.2006 15:04"

// Flight is one scheduled, priced departure. Flights are produced by catalog
// generation and never change afterwards.
type Flight struct {
	ID          int64     `json:"id" db:"id"`
	Origin      string    `json:"origin" db:"origin"`
	Destination string    `json:"destination" db:"destination"`
	Departure   time.Time `json:"departure" db:"departure_at"`
	Price       float64   `json:"price" db:"price"`
}

func (f Flight) String() string {
	return fmt.Sprintf("ID: <%d>, вылет %s %s --> %s, цена: %s руб.",
		f.ID, f.Departure.Format(DepartureLayout), f.Origin, f.Destination, FormatPrice(f.Price))
}

// FormatPrice renders a price without trailing zeros.
func FormatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
