package models

import "time"

type AppointmentType string

const (
	TypeCourtesy AppointmentType = "Courtesy (VIP)"
	TypeFinance  AppointmentType = "Finance (Medical)"
)

func ValidAppointmentType(t AppointmentType) bool {
	return t == TypeCourtesy || t == TypeFinance
}

type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "Pending"
	AppointmentConfirmed AppointmentStatus = "Confirmed"
	AppointmentCancelled AppointmentStatus = "Cancelled"
	AppointmentRejected  AppointmentStatus = "Rejected"
	AppointmentCompleted AppointmentStatus = "Completed"
)

// statusTransitions is the closed transition table for admin status updates.
// Rejected, Cancelled and Completed are terminal; the courtesy past-due
// auto-revert (Confirmed -> Pending at read time) bypasses this table.
var statusTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentPending:   {AppointmentConfirmed, AppointmentRejected, AppointmentCancelled},
	AppointmentConfirmed: {AppointmentCancelled, AppointmentCompleted},
}

func CanTransition(from, to AppointmentStatus) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func ValidAppointmentStatus(s AppointmentStatus) bool {
	switch s {
	case AppointmentPending, AppointmentConfirmed, AppointmentCancelled,
		AppointmentRejected, AppointmentCompleted:
		return true
	}
	return false
}

type Appointment struct {
	ID             string            `db:"id"`
	UserID         string            `db:"user_id"`
	Type           AppointmentType   `db:"type"`
	Purpose        string            `db:"purpose"`
	Date           *time.Time        `db:"date"` // nil only for unscheduled courtesy requests
	TimeLabel      string            `db:"time_label"` // "H:MM AM/PM"
	Status         AppointmentStatus `db:"status"`
	IsCourtesy     bool              `db:"is_courtesy"`
	PatientName    string            `db:"patient_name"`
	ProcessorName  string            `db:"processor_name"`
	MedicalDetails string            `db:"medical_details"`
	ImageRef       string            `db:"image_ref"`
	CreatedAt      time.Time         `db:"created_at"`
	UpdatedAt      time.Time         `db:"updated_at"`
}

// Active reports whether the appointment still occupies its date for
// double-booking purposes.
func (a *Appointment) Active() bool {
	return a.Status != AppointmentCancelled && a.Status != AppointmentRejected
}

type BlockedDate struct {
	ID        string    `db:"id"`
	Date      time.Time `db:"date"` // calendar day, no time component
	Reason    string    `db:"reason"`
	CreatedAt time.Time `db:"created_at"`
}

const DefaultBlockReason = "Admin blocked"

type ConcernCategory string

const (
	ConcernGeneral    ConcernCategory = "General"
	ConcernIssue      ConcernCategory = "Issue"
	ConcernComplaint  ConcernCategory = "Complaint"
	ConcernSuggestion ConcernCategory = "Suggestion"
)

func ValidConcernCategory(c ConcernCategory) bool {
	switch c {
	case ConcernGeneral, ConcernIssue, ConcernComplaint, ConcernSuggestion:
		return true
	}
	return false
}

// RequiresLocation reports whether the category needs a location on file.
func (c ConcernCategory) RequiresLocation() bool {
	return c == ConcernIssue || c == ConcernComplaint
}

type ConcernStatus string

const (
	ConcernPending    ConcernStatus = "Pending"
	ConcernInProgress ConcernStatus = "In Progress"
	ConcernResolved   ConcernStatus = "Resolved"
)

func ValidConcernStatus(s ConcernStatus) bool {
	switch s {
	case ConcernPending, ConcernInProgress, ConcernResolved:
		return true
	}
	return false
}

type Concern struct {
	ID          string          `db:"id"`
	UserID      string          `db:"user_id"`
	Title       string          `db:"title"`
	Description string          `db:"description"`
	Location    string          `db:"location"`
	Category    ConcernCategory `db:"category"`
	Status      ConcernStatus   `db:"status"`
	ImageRef    string          `db:"image_ref"`
	CreatedAt   time.Time       `db:"created_at"`
}

type PostPriority string

const (
	PostHigh   PostPriority = "High"
	PostMedium PostPriority = "Medium"
	PostLow    PostPriority = "Low"
)

func ValidPostPriority(p PostPriority) bool {
	return p == PostHigh || p == PostMedium || p == PostLow
}

type Post struct {
	ID        string       `db:"id"`
	Title     string       `db:"title"`
	Content   string       `db:"content"`
	Category  string       `db:"category"`
	Priority  PostPriority `db:"priority"`
	CreatedAt time.Time    `db:"created_at"`
}

type UpdatePriority string

const (
	UpdateNormal UpdatePriority = "normal"
	UpdateHigh   UpdatePriority = "high"
)

func ValidUpdatePriority(p UpdatePriority) bool {
	return p == UpdateNormal || p == UpdateHigh
}

// Update is an admin-authored announcement. Read state lives in per-user
// read rows, not on the document itself.
type Update struct {
	ID          string         `db:"id"`
	Title       string         `db:"title"`
	Description string         `db:"description"`
	Category    string         `db:"category"`
	Priority    UpdatePriority `db:"priority"`
	CreatedAt   time.Time      `db:"created_at"`
}
