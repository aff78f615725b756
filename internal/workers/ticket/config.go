package ticket

import "time"

// Config holds the limits and fixed texts of the ticket ordering handlers.
type Config struct {
	MaxFlights int
	MinTickets int
	MaxTickets int

	// Location is the zone dates are typed in.
	Location *time.Location

	NoRouteMessage   string // origin, destination
	NoFlightsMessage string // date, origin, destination
	RestartMessage   string
	PhoneLine        string // phone

	// NoLocationsText stands in for an empty departure or arrival list.
	NoLocationsText string
}

// LoadConfig returns the default handler settings.
func LoadConfig() *Config {
	return &Config{
		MaxFlights:       5,
		MinTickets:       1,
		MaxTickets:       5,
		Location:         time.Local,
		NoRouteMessage:   "Вы ввели %[2]s. Маршрут \"%[1]s - %[2]s\" не доступен. Всего Вам хорошего!",
		NoFlightsMessage: "Вы ввели дату вылета %s. Маршрут \"%s - %s\" не доступен на указанную дату. Всего Вам хорошего!",
		NoLocationsText:  "Сейчас нет доступных рейсов.",
		RestartMessage:   "Вы выбрали завершить оформление билета. Новое оформление начнется автоматически.",
		PhoneLine:        "Телефон: %s\n",
	}
}
