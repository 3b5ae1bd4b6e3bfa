package availability

import (
	"time"

	"civic-service/internal/models"
)

// Display labels for unavailable days.
const (
	LabelPast    = "Past"
	LabelUnavail = "Unavail"
	LabelHoliday = "Holiday"
	LabelBlocked = "Blocked"
	LabelBooked  = "Booked"
)

// Options carries the override flags individual call sites used to hardcode.
type Options struct {
	AllowPastDates bool
	AllowWeekends  bool
}

// DayClass is the availability classification of a single calendar day.
// Label reflects the first matching rule; the booleans report every rule
// that independently holds.
type DayClass struct {
	Selectable    bool
	Label         string
	Past          bool
	Weekend       bool
	Holiday       bool
	Blocked       bool
	BlockedReason string
	Booked        bool
}

// IsDateBlocked reports whether some blocked-date entry falls on the same
// calendar day as d, independent of time-of-day, and returns its reason.
func IsDateBlocked(d time.Time, blocked []models.BlockedDate) (bool, string) {
	for _, b := range blocked {
		if SameDay(d, b.Date) {
			reason := b.Reason
			if reason == "" {
				reason = models.DefaultBlockReason
			}
			return true, reason
		}
	}
	return false, ""
}

// IsDateSelectable is the minimal predicate used by the validator: a date
// is selectable unless it is past or blocked.
func IsDateSelectable(d, now time.Time, blocked []models.BlockedDate) bool {
	if IsPastDate(d, now) {
		return false
	}
	if blockedDay, _ := IsDateBlocked(d, blocked); blockedDay {
		return false
	}
	return true
}

// Classify evaluates the availability rules for a single day. Precedence
// for the display label: past, weekend, holiday, blocked, booked-by-user.
// appointments should already be filtered to the ones that still occupy
// their date; entries with a nil date never match (fail open).
func Classify(d, now time.Time, blocked []models.BlockedDate, appointments []models.Appointment, currentUserID string, opts Options) DayClass {
	var c DayClass

	c.Past = IsPastDate(d, now)
	c.Weekend = IsWeekend(d)
	c.Holiday = IsHoliday(d)
	c.Blocked, c.BlockedReason = IsDateBlocked(d, blocked)

	for _, a := range appointments {
		if a.Date == nil || a.UserID != currentUserID {
			continue
		}
		if SameDay(d, *a.Date) {
			c.Booked = true
			break
		}
	}

	switch {
	case c.Past && !opts.AllowPastDates:
		c.Label = LabelPast
	case c.Weekend && !opts.AllowWeekends:
		c.Label = LabelUnavail
	case c.Holiday:
		c.Label = LabelHoliday
	case c.Blocked:
		c.Label = LabelBlocked
	case c.Booked:
		c.Label = LabelBooked
	}

	c.Selectable = !((c.Past && !opts.AllowPastDates) ||
		(c.Weekend && !opts.AllowWeekends) ||
		c.Holiday || c.Blocked || c.Booked)

	return c
}
