package availability

import "time"

// holidays is the fixed month-day list. Not year-aware: "12-25" matches
// December 25 of every year.
var holidays = map[string]struct{}{
	"01-01": {}, // New Year's Day
	"04-09": {}, // Day of Valor
	"05-01": {}, // Labor Day
	"06-12": {}, // Independence Day
	"08-21": {}, // Ninoy Aquino Day
	"11-01": {}, // All Saints' Day
	"11-30": {}, // Bonifacio Day
	"12-25": {}, // Christmas Day
	"12-30": {}, // Rizal Day
	"12-31": {},
}

func IsHoliday(t time.Time) bool {
	_, ok := holidays[t.Format("01-02")]
	return ok
}
