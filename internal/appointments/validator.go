package appointments

import (
	"strings"
	"time"

	"civic-service/internal/availability"
	"civic-service/internal/models"
)

// TimeLayout parses the "H:MM AM/PM" time-of-day strings carried on
// appointments.
const TimeLayout = "3:04 PM"

// Draft is a candidate appointment submission before any id or status has
// been assigned. Date is the raw "2006-01-02" string from the form; empty
// means not yet scheduled.
type Draft struct {
	Type           string
	Purpose        string
	Date           string
	Time           string
	PatientName    string
	ProcessorName  string
	MedicalDetails string
	ImageRef       string
}

func (d Draft) IsCourtesy() bool {
	return models.AppointmentType(d.Type) == models.TypeCourtesy
}

// ValidateDraft runs every applicable rule and accumulates the failures;
// an empty result means the draft is submittable. No rule short-circuits
// the rest, so the caller gets all problems in one pass.
func ValidateDraft(d Draft, blocked []models.BlockedDate, now time.Time) []string {
	var errs []string

	if !models.ValidAppointmentType(models.AppointmentType(d.Type)) {
		errs = append(errs, "Please select an appointment type.")
	}

	if strings.TrimSpace(d.Purpose) == "" {
		errs = append(errs, "Purpose is required.")
	}

	// Courtesy requests may be scheduled later by an admin, so they skip
	// the date and time rules entirely.
	if !d.IsCourtesy() {
		if d.Date == "" {
			errs = append(errs, "Date is required.")
		} else if date, err := time.ParseInLocation(availability.DateLayout, d.Date, now.Location()); err != nil {
			errs = append(errs, "Date is not a valid calendar date.")
		} else {
			if availability.IsPastDate(date, now) {
				errs = append(errs, "Date cannot be in the past.")
			}
			if blockedDay, reason := availability.IsDateBlocked(date, blocked); blockedDay {
				errs = append(errs, "Selected date is not available: "+reason+".")
			}
		}

		if d.Time == "" {
			errs = append(errs, "Time is required.")
		} else if _, err := time.Parse(TimeLayout, d.Time); err != nil {
			errs = append(errs, "Time must be in H:MM AM/PM format.")
		}
	}

	if models.AppointmentType(d.Type) == models.TypeFinance {
		if strings.TrimSpace(d.PatientName) == "" {
			errs = append(errs, "Patient name is required.")
		}
		if strings.TrimSpace(d.ProcessorName) == "" {
			errs = append(errs, "Processor name is required.")
		}
		if d.ImageRef == "" {
			errs = append(errs, "A captured photo is required.")
		}
	}

	return errs
}

// DueForRevert reports whether a confirmed courtesy appointment has slipped
// past its date and must go back to Pending for rescheduling. Detected at
// read time; there is no background job.
func DueForRevert(a *models.Appointment, now time.Time) bool {
	if !a.IsCourtesy || a.Status != models.AppointmentConfirmed || a.Date == nil {
		return false
	}
	return availability.IsPastDate(*a.Date, now)
}
