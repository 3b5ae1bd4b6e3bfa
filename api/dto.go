package api

import "time"

type AppointmentRequest struct {
	Type           string `json:"type"`
	Purpose        string `json:"purpose"`
	Date           string `json:"date,omitempty"` // "2006-01-02"
	Time           string `json:"time,omitempty"` // "H:MM AM/PM"
	PatientName    string `json:"patient_name,omitempty"`
	ProcessorName  string `json:"processor_name,omitempty"`
	MedicalDetails string `json:"medical_details,omitempty"`
	ImageRef       string `json:"image_ref,omitempty"`
}

type AppointmentResponse struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Type           string    `json:"type"`
	Purpose        string    `json:"purpose"`
	Date           string    `json:"date,omitempty"`
	Time           string    `json:"time,omitempty"`
	Status         string    `json:"status"`
	IsCourtesy     bool      `json:"is_courtesy"`
	PatientName    string    `json:"patient_name,omitempty"`
	ProcessorName  string    `json:"processor_name,omitempty"`
	MedicalDetails string    `json:"medical_details,omitempty"`
	ImageRef       string    `json:"image_ref,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type AppointmentStatusRequest struct {
	Status string `json:"status"`
}

type AppointmentScheduleRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type BlockedDateRequest struct {
	Date   string `json:"date"` // "2006-01-02"
	Reason string `json:"reason,omitempty"`
}

type BlockedDateResponse struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

type ConcernRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location,omitempty"`
	Category    string `json:"category"`
	ImageRef    string `json:"image_ref,omitempty"`
}

type ConcernResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location,omitempty"`
	Category    string    `json:"category"`
	Status      string    `json:"status"`
	ImageRef    string    `json:"image_ref,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type ConcernStatusRequest struct {
	Status string `json:"status"`
}

type PostRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
	Priority string `json:"priority"`
}

type PostResponse struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Category   string    `json:"category"`
	Priority   string    `json:"priority"`
	Bookmarked bool      `json:"bookmarked"`
	CreatedAt  time.Time `json:"created_at"`
}

type UpdateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
}

type UpdateResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Priority    string    `json:"priority"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}

// CalendarDay is one annotated cell of the booking grid. Placeholder cells
// carry no date and exist only to align day 1 under its weekday header.
type CalendarDay struct {
	Date          string `json:"date,omitempty"`
	Placeholder   bool   `json:"placeholder,omitempty"`
	Selectable    bool   `json:"selectable"`
	Label         string `json:"label,omitempty"`
	BlockedReason string `json:"blocked_reason,omitempty"`
}

// WorkingHours is display guidance only; the validator does not enforce it.
type WorkingHours struct {
	Start      string `json:"start"`
	End        string `json:"end"`
	BreakStart string `json:"break_start"`
	BreakEnd   string `json:"break_end"`
}

type CalendarResponse struct {
	Mode         string        `json:"mode"`
	Cursor       string        `json:"cursor"` // "2006-01"
	Days         []CalendarDay `json:"days"`
	WorkingHours WorkingHours  `json:"working_hours"`
}
