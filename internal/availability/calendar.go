package availability

import "time"

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// TruncateToDay returns the date with zero time in the given location.
func TruncateToDay(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsPastDate reports whether d falls strictly before now's local midnight.
// Today is never past.
func IsPastDate(d, now time.Time) bool {
	return TruncateToDay(d, now.Location()).Before(TruncateToDay(now, now.Location()))
}

// WeekDates returns the next 5 weekdays starting at ref, scanning forward
// day by day and skipping Saturday and Sunday.
func WeekDates(ref time.Time) []time.Time {
	dates := make([]time.Time, 0, 5)

	d := TruncateToDay(ref, ref.Location())
	for len(dates) < 5 {
		if !IsWeekend(d) {
			dates = append(dates, d)
		}
		d = d.AddDate(0, 0, 1)
	}

	return dates
}

// MonthGrid returns all calendar days of the month containing cursor in
// ascending order, plus the number of leading placeholder slots needed to
// align day 1 under its weekday header (0 = Sunday).
func MonthGrid(cursor time.Time) (placeholders int, days []time.Time) {
	loc := cursor.Location()
	first := time.Date(cursor.Year(), cursor.Month(), 1, 0, 0, 0, 0, loc)

	placeholders = int(first.Weekday())

	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}

	return placeholders, days
}

// AddMonths shifts a month cursor by n months in either direction. The
// result is anchored to the first of the month so day-of-month overflow
// cannot skip a month. Navigation is unbounded.
func AddMonths(cursor time.Time, n int) time.Time {
	return time.Date(cursor.Year(), cursor.Month()+time.Month(n), 1, 0, 0, 0, 0, cursor.Location())
}
