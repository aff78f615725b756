package catalog

// DefaultHorizonDays is how far ahead the catalog is seeded.
const DefaultHorizonDays = 60

// DefaultSchedule is the stock timetable the bot ships with.
func DefaultSchedule() []Rule {
	return []Rule{
		Daily{Route{Origin: "Москва", Destination: "Екатеринбург", At: TimeOfDay{9, 0}, Price: 4000}},
		Daily{Route{Origin: "Москва", Destination: "Владивосток", At: TimeOfDay{6, 40}, Price: 24000}},
		Daily{Route{Origin: "Санкт-Петербург", Destination: "Казань", At: TimeOfDay{8, 35}, Price: 5200}},
		Daily{Route{Origin: "Санкт-Петербург", Destination: "Краснодар", At: TimeOfDay{7, 15}, Price: 4900}},
		Weekly{
			Route:    Route{Origin: "Москва", Destination: "Бангкок", At: TimeOfDay{8, 40}, Price: 35000},
			Weekdays: []int{0, 2, 4},
		},
		Weekly{
			Route:    Route{Origin: "Санкт-Петербург", Destination: "Токио", At: TimeOfDay{6, 5}, Price: 29000},
			Weekdays: []int{0, 2, 3, 6},
		},
		Monthly{
			Route:     Route{Origin: "Бангкок", Destination: "Краби", At: TimeOfDay{11, 20}, Price: 6000},
			Monthdays: stepRange(1, 31, 3),
		},
		Monthly{
			Route:     Route{Origin: "Казань", Destination: "Анталья", At: TimeOfDay{21, 12}, Price: 12800},
			Monthdays: stepRange(1, 31, 4),
		},
	}
}

// stepRange returns from, from+step, ... below to.
func stepRange(from, to, step int) []int {
	var out []int
	for v := from; v < to; v += step {
		out = append(out, v)
	}
	return out
}
