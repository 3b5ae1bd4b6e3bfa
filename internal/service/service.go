package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"civic-service/api"
	"civic-service/internal/appointments"
	"civic-service/internal/availability"
	"civic-service/internal/events"
	"civic-service/internal/kvcache"
	"civic-service/internal/lock"
	"civic-service/internal/models"
	"civic-service/pkg/response"
)

type Service struct {
	store  Store
	locker lock.Locker
	pub    events.Publisher
	kv     KV

	// now is the single clock source; every pure check receives it
	// explicitly so tests can pin the reference instant.
	now func() time.Time
}

func NewService(store Store, locker lock.Locker, pub events.Publisher, kv KV) *Service {
	return &Service{
		store:  store,
		locker: locker,
		pub:    pub,
		kv:     kv,
		now:    time.Now,
	}
}

type Store interface {
	BeginTx(ctx context.Context) (*sql.Tx, error)

	// Appointments
	CreateAppointment(ctx context.Context, tx *sql.Tx, a *models.Appointment) (string, error)
	GetAppointment(ctx context.Context, id string) (*models.Appointment, error)
	ListAppointments(ctx context.Context, userID, status *string, from, to *time.Time) ([]*models.Appointment, error)
	ListActiveAppointmentsOn(ctx context.Context, day time.Time) ([]*models.Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, id string, status models.AppointmentStatus) error
	ScheduleAppointment(ctx context.Context, id string, date time.Time, timeLabel string) error
	DeleteAppointment(ctx context.Context, id string) error

	// Blocked dates
	CreateBlockedDate(ctx context.Context, b *models.BlockedDate) (string, error)
	ListBlockedDates(ctx context.Context) ([]*models.BlockedDate, error)
	DeleteBlockedDate(ctx context.Context, id string) error

	// Concerns
	CreateConcern(ctx context.Context, c *models.Concern) (string, error)
	GetConcern(ctx context.Context, id string) (*models.Concern, error)
	ListConcerns(ctx context.Context, userID, status, category *string) ([]*models.Concern, error)
	UpdateConcernStatus(ctx context.Context, id string, status models.ConcernStatus) error

	// Posts
	CreatePost(ctx context.Context, p *models.Post) (string, error)
	GetPost(ctx context.Context, id string) (*models.Post, error)
	ListPosts(ctx context.Context, category, priority *string) ([]*models.Post, error)

	// Updates
	CreateUpdate(ctx context.Context, u *models.Update) (string, error)
	GetUpdate(ctx context.Context, id string) (*models.Update, error)
	ListUpdates(ctx context.Context) ([]*models.Update, error)
	MarkUpdateRead(ctx context.Context, updateID, userID string) error
	ListReadUpdateIDs(ctx context.Context, userID string) ([]string, error)
}

// KV is the flat key-value mirror (offline display state, bookmarks,
// notification bookkeeping).
type KV interface {
	SetJSON(ctx context.Context, key string, v any) error
	SetString(ctx context.Context, key, value string) error
	GetString(ctx context.Context, key string) (string, bool, error)
	AddToSet(ctx context.Context, key, member string) error
	RemoveFromSet(ctx context.Context, key, member string) error
	InSet(ctx context.Context, key, member string) (bool, error)
	SetMembers(ctx context.Context, key string) ([]string, error)
}

// Display guidance for the booking form; not enforced by the validator.
var workingHours = api.WorkingHours{
	Start:      "8:00 AM",
	End:        "5:00 PM",
	BreakStart: "11:30 AM",
	BreakEnd:   "12:30 PM",
}

// Appointments

// CreateAppointment validates the draft and books it. Dated bookings run
// under a per-date lock with the blocked-date and double-booking checks
// re-done inside, so two concurrent submissions cannot both pass a stale
// availability read.
func (s *Service) CreateAppointment(ctx context.Context, userID string, req *api.AppointmentRequest) (*api.AppointmentResponse, error) {
	const op = "service.CreateAppointment"

	blocked, err := s.listBlocked(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()

	draft := appointments.Draft{
		Type:           req.Type,
		Purpose:        req.Purpose,
		Date:           req.Date,
		Time:           req.Time,
		PatientName:    req.PatientName,
		ProcessorName:  req.ProcessorName,
		MedicalDetails: req.MedicalDetails,
		ImageRef:       req.ImageRef,
	}

	if msgs := appointments.ValidateDraft(draft, blocked, now); len(msgs) > 0 {
		return nil, &response.ValidationError{Messages: msgs}
	}

	a := &models.Appointment{
		UserID:         userID,
		Type:           models.AppointmentType(req.Type),
		Purpose:        req.Purpose,
		TimeLabel:      req.Time,
		Status:         models.AppointmentPending,
		IsCourtesy:     draft.IsCourtesy(),
		PatientName:    req.PatientName,
		ProcessorName:  req.ProcessorName,
		MedicalDetails: req.MedicalDetails,
		ImageRef:       req.ImageRef,
	}

	if req.Date == "" {
		// Unscheduled courtesy request: no date to contend for.
		id, err := s.insertAppointment(ctx, a)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return s.GetAppointment(ctx, id)
	}

	date, err := time.ParseInLocation(availability.DateLayout, req.Date, now.Location())
	if err != nil {
		// Validator already vetted the format; treat a parse failure here
		// as a bad request rather than a crash.
		return nil, fmt.Errorf("%s: %w", op, response.ErrBadRequest)
	}
	date = availability.TruncateToDay(date, now.Location())
	a.Date = &date

	lockKey := date.Format(availability.DateLayout)

	locked, err := s.locker.LockDate(ctx, lockKey, 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("%s: lock error: %w", op, err)
	}
	if !locked {
		return nil, fmt.Errorf("%s: %w", op, response.ErrLocked)
	}
	defer func() {
		_ = s.locker.UnlockDate(ctx, lockKey)
	}()

	// Re-check under the lock: an admin block or another booking may have
	// landed since the validation read.
	blocked, err = s.listBlocked(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if blockedDay, _ := availability.IsDateBlocked(date, blocked); blockedDay {
		return nil, fmt.Errorf("%s: %w", op, response.ErrDateNotBookable)
	}

	existing, err := s.store.ListActiveAppointmentsOn(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for _, e := range existing {
		if e.UserID == userID {
			return nil, fmt.Errorf("%s: %w", op, response.ErrConflict)
		}
	}

	id, err := s.insertAppointment(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetAppointment(ctx, id)
}

func (s *Service) insertAppointment(ctx context.Context, a *models.Appointment) (string, error) {
	const op = "service.insertAppointment"

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return "", fmt.Errorf("%s: begin tx: %w", op, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	id, err := s.store.CreateAppointment(ctx, tx, a)
	if err != nil {
		_ = tx.Rollback()
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("%s: commit: %w", op, err)
	}

	return id, nil
}

func (s *Service) GetAppointment(ctx context.Context, id string) (*api.AppointmentResponse, error) {
	const op = "service.GetAppointment"

	a, err := s.store.GetAppointment(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.revertIfDue(ctx, a)

	return toAppointmentResponse(a), nil
}

func (s *Service) ListAppointments(ctx context.Context, userID, status *string, from, to *time.Time) ([]*api.AppointmentResponse, error) {
	const op = "service.ListAppointments"

	list, err := s.store.ListAppointments(ctx, userID, status, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]*api.AppointmentResponse, 0, len(list))
	for _, a := range list {
		s.revertIfDue(ctx, a)
		result = append(result, toAppointmentResponse(a))
	}

	return result, nil
}

// revertIfDue applies the courtesy past-due rule at read time: a confirmed
// courtesy appointment whose date has passed goes back to Pending so it can
// be rescheduled. Failures leave the stored status alone; the caller still
// sees the reverted one.
func (s *Service) revertIfDue(ctx context.Context, a *models.Appointment) {
	if !appointments.DueForRevert(a, s.now()) {
		return
	}

	a.Status = models.AppointmentPending
	_ = s.store.UpdateAppointmentStatus(ctx, a.ID, models.AppointmentPending)
}

func (s *Service) UpdateAppointmentStatus(ctx context.Context, id string, status string) (*api.AppointmentResponse, error) {
	const op = "service.UpdateAppointmentStatus"

	next := models.AppointmentStatus(status)
	if !models.ValidAppointmentStatus(next) {
		return nil, fmt.Errorf("%s: %w", op, response.ErrBadRequest)
	}

	a, err := s.store.GetAppointment(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !models.CanTransition(a.Status, next) {
		return nil, fmt.Errorf("%s: %w", op, response.ErrConflict)
	}

	if err := s.store.UpdateAppointmentStatus(ctx, id, next); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ev := events.AppointmentStatusChanged{
		AppointmentID: id,
		UserID:        a.UserID,
		Status:        string(next),
		Time:          a.TimeLabel,
	}
	if a.Date != nil {
		ev.Date = a.Date.Format(availability.DateLayout)
	}
	_ = s.pub.PublishJSON(ctx, events.KeyAppointmentStatusChanged, ev)

	return s.GetAppointment(ctx, id)
}

// ScheduleAppointment assigns a date and time to a courtesy request.
func (s *Service) ScheduleAppointment(ctx context.Context, id string, req *api.AppointmentScheduleRequest) (*api.AppointmentResponse, error) {
	const op = "service.ScheduleAppointment"

	a, err := s.store.GetAppointment(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !a.IsCourtesy {
		return nil, fmt.Errorf("%s: %w", op, response.ErrConflict)
	}

	now := s.now()

	var msgs []string
	date, err := time.ParseInLocation(availability.DateLayout, req.Date, now.Location())
	if err != nil {
		msgs = append(msgs, "Date is not a valid calendar date.")
	}
	if req.Time == "" {
		msgs = append(msgs, "Time is required.")
	} else if _, err := time.Parse(appointments.TimeLayout, req.Time); err != nil {
		msgs = append(msgs, "Time must be in H:MM AM/PM format.")
	}
	if len(msgs) > 0 {
		return nil, &response.ValidationError{Messages: msgs}
	}

	date = availability.TruncateToDay(date, now.Location())

	blocked, err := s.listBlocked(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !availability.IsDateSelectable(date, now, blocked) {
		return nil, fmt.Errorf("%s: %w", op, response.ErrDateNotBookable)
	}

	if err := s.store.ScheduleAppointment(ctx, id, date, req.Time); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetAppointment(ctx, id)
}

func (s *Service) DeleteAppointment(ctx context.Context, id string) error {
	const op = "service.DeleteAppointment"

	err := s.store.DeleteAppointment(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Calendar

// Calendar builds the annotated booking grid for the given user. Week mode
// anchors at today; month mode follows the cursor ("2006-01").
func (s *Service) Calendar(ctx context.Context, userID, mode, cursor string) (*api.CalendarResponse, error) {
	const op = "service.Calendar"

	now := s.now()

	blocked, err := s.listBlocked(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	mine, err := s.store.ListAppointments(ctx, &userID, nil, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var active []models.Appointment
	for _, a := range mine {
		if a.Active() && a.Date != nil {
			active = append(active, *a)
		}
	}

	resp := &api.CalendarResponse{
		Mode:         mode,
		WorkingHours: workingHours,
	}

	annotate := func(d time.Time) api.CalendarDay {
		c := availability.Classify(d, now, blocked, active, userID, availability.Options{})
		return api.CalendarDay{
			Date:          d.Format(availability.DateLayout),
			Selectable:    c.Selectable,
			Label:         c.Label,
			BlockedReason: c.BlockedReason,
		}
	}

	switch mode {
	case "week":
		resp.Cursor = now.Format("2006-01")
		for _, d := range availability.WeekDates(now) {
			resp.Days = append(resp.Days, annotate(d))
		}
	case "month":
		anchor := now
		if cursor != "" {
			if parsed, err := time.ParseInLocation("2006-01", cursor, now.Location()); err == nil {
				anchor = parsed
			}
		}
		resp.Cursor = anchor.Format("2006-01")

		placeholders, days := availability.MonthGrid(anchor)
		for i := 0; i < placeholders; i++ {
			resp.Days = append(resp.Days, api.CalendarDay{Placeholder: true})
		}
		for _, d := range days {
			resp.Days = append(resp.Days, annotate(d))
		}
	default:
		return nil, fmt.Errorf("%s: %w", op, response.ErrBadRequest)
	}

	return resp, nil
}

// Blocked dates

func (s *Service) CreateBlockedDate(ctx context.Context, req *api.BlockedDateRequest) (*api.BlockedDateResponse, error) {
	const op = "service.CreateBlockedDate"

	date, err := time.Parse(availability.DateLayout, req.Date)
	if err != nil {
		return nil, &response.ValidationError{Messages: []string{"Date is not a valid calendar date."}}
	}

	reason := req.Reason
	if reason == "" {
		reason = models.DefaultBlockReason
	}

	b := &models.BlockedDate{
		Date:   availability.TruncateToDay(date, time.UTC),
		Reason: reason,
	}

	id, err := s.store.CreateBlockedDate(ctx, b)
	if err != nil {
		if errors.Is(err, response.ErrConflict) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrConflict)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	b.ID = id
	return toBlockedDateResponse(b), nil
}

func (s *Service) ListBlockedDates(ctx context.Context) ([]*api.BlockedDateResponse, error) {
	const op = "service.ListBlockedDates"

	list, err := s.store.ListBlockedDates(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]*api.BlockedDateResponse, 0, len(list))
	for _, b := range list {
		result = append(result, toBlockedDateResponse(b))
	}

	return result, nil
}

func (s *Service) DeleteBlockedDate(ctx context.Context, id string) error {
	const op = "service.DeleteBlockedDate"

	err := s.store.DeleteBlockedDate(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Service) listBlocked(ctx context.Context) ([]models.BlockedDate, error) {
	list, err := s.store.ListBlockedDates(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]models.BlockedDate, 0, len(list))
	for _, b := range list {
		result = append(result, *b)
	}

	return result, nil
}

// Concerns

func (s *Service) CreateConcern(ctx context.Context, userID string, req *api.ConcernRequest) (*api.ConcernResponse, error) {
	const op = "service.CreateConcern"

	if msgs := validateConcern(req); len(msgs) > 0 {
		return nil, &response.ValidationError{Messages: msgs}
	}

	c := &models.Concern{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Category:    models.ConcernCategory(req.Category),
		Status:      models.ConcernPending,
		ImageRef:    req.ImageRef,
	}

	id, err := s.store.CreateConcern(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetConcern(ctx, id)
}

func validateConcern(req *api.ConcernRequest) []string {
	var msgs []string

	category := models.ConcernCategory(req.Category)
	if !models.ValidConcernCategory(category) {
		msgs = append(msgs, "Please select a concern category.")
	}
	if trimmed(req.Title) == "" {
		msgs = append(msgs, "Title is required.")
	}
	if trimmed(req.Description) == "" {
		msgs = append(msgs, "Description is required.")
	}
	if category.RequiresLocation() && trimmed(req.Location) == "" {
		msgs = append(msgs, "Location is required.")
	}

	return msgs
}

func (s *Service) GetConcern(ctx context.Context, id string) (*api.ConcernResponse, error) {
	const op = "service.GetConcern"

	c, err := s.store.GetConcern(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return toConcernResponse(c), nil
}

func (s *Service) ListConcerns(ctx context.Context, userID, status, category *string) ([]*api.ConcernResponse, error) {
	const op = "service.ListConcerns"

	list, err := s.store.ListConcerns(ctx, userID, status, category)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]*api.ConcernResponse, 0, len(list))
	for _, c := range list {
		result = append(result, toConcernResponse(c))
	}

	return result, nil
}

func (s *Service) UpdateConcernStatus(ctx context.Context, id, status string) (*api.ConcernResponse, error) {
	const op = "service.UpdateConcernStatus"

	next := models.ConcernStatus(status)
	if !models.ValidConcernStatus(next) {
		return nil, fmt.Errorf("%s: %w", op, response.ErrBadRequest)
	}

	if err := s.store.UpdateConcernStatus(ctx, id, next); err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetConcern(ctx, id)
}

// Posts

func (s *Service) CreatePost(ctx context.Context, req *api.PostRequest) (*api.PostResponse, error) {
	const op = "service.CreatePost"

	var msgs []string
	if trimmed(req.Title) == "" {
		msgs = append(msgs, "Title is required.")
	}
	if trimmed(req.Content) == "" {
		msgs = append(msgs, "Content is required.")
	}
	if !models.ValidPostPriority(models.PostPriority(req.Priority)) {
		msgs = append(msgs, "Priority must be High, Medium or Low.")
	}
	if len(msgs) > 0 {
		return nil, &response.ValidationError{Messages: msgs}
	}

	p := &models.Post{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		Priority: models.PostPriority(req.Priority),
	}

	id, err := s.store.CreatePost(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_ = s.pub.PublishJSON(ctx, events.KeyPostCreated, events.PostCreated{
		PostID:   id,
		Title:    p.Title,
		Category: p.Category,
		Priority: string(p.Priority),
	})

	stored, err := s.store.GetPost(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return toPostResponse(stored, false), nil
}

// ListPosts returns posts annotated with the caller's bookmark flags and
// refreshes the offline snapshot plus the caller's last-seen marker.
func (s *Service) ListPosts(ctx context.Context, userID string, category, priority *string) ([]*api.PostResponse, error) {
	const op = "service.ListPosts"

	list, err := s.store.ListPosts(ctx, category, priority)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	bookmarks := map[string]bool{}
	if members, err := s.kv.SetMembers(ctx, kvcache.KeyBookmarks(userID)); err == nil {
		for _, m := range members {
			bookmarks[m] = true
		}
	}

	result := make([]*api.PostResponse, 0, len(list))
	for _, p := range list {
		result = append(result, toPostResponse(p, bookmarks[p.ID]))
	}

	// Cache misses are display-only state; never fail the read for them.
	_ = s.kv.SetJSON(ctx, kvcache.KeyPostsSnapshot, result)
	if len(result) > 0 {
		_ = s.kv.SetString(ctx, kvcache.KeyLastSeenPost(userID), result[0].ID)
	}

	return result, nil
}

func (s *Service) SetBookmark(ctx context.Context, userID, postID string, bookmarked bool) error {
	const op = "service.SetBookmark"

	if _, err := s.store.GetPost(ctx, postID); err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	key := kvcache.KeyBookmarks(userID)
	if bookmarked {
		if err := s.kv.AddToSet(ctx, key, postID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	}

	if err := s.kv.RemoveFromSet(ctx, key, postID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Updates

func (s *Service) CreateUpdate(ctx context.Context, req *api.UpdateRequest) (*api.UpdateResponse, error) {
	const op = "service.CreateUpdate"

	var msgs []string
	if trimmed(req.Title) == "" {
		msgs = append(msgs, "Title is required.")
	}
	if trimmed(req.Description) == "" {
		msgs = append(msgs, "Description is required.")
	}
	priority := models.UpdatePriority(req.Priority)
	if priority == "" {
		priority = models.UpdateNormal
	} else if !models.ValidUpdatePriority(priority) {
		msgs = append(msgs, "Priority must be normal or high.")
	}
	if len(msgs) > 0 {
		return nil, &response.ValidationError{Messages: msgs}
	}

	u := &models.Update{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    priority,
	}

	id, err := s.store.CreateUpdate(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_ = s.pub.PublishJSON(ctx, events.KeyUpdateCreated, events.UpdateCreated{
		UpdateID: id,
		Title:    u.Title,
		Priority: string(priority),
	})

	stored, err := s.store.GetUpdate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return toUpdateResponse(stored, false), nil
}

// ListUpdates returns every update with the caller's per-user read flag.
func (s *Service) ListUpdates(ctx context.Context, userID string) ([]*api.UpdateResponse, error) {
	const op = "service.ListUpdates"

	list, err := s.store.ListUpdates(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	readIDs, err := s.store.ListReadUpdateIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	read := map[string]bool{}
	for _, id := range readIDs {
		read[id] = true
	}

	result := make([]*api.UpdateResponse, 0, len(list))
	for _, u := range list {
		result = append(result, toUpdateResponse(u, read[u.ID]))
	}

	return result, nil
}

func (s *Service) MarkUpdateRead(ctx context.Context, updateID, userID string) error {
	const op = "service.MarkUpdateRead"

	if _, err := s.store.GetUpdate(ctx, updateID); err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.store.MarkUpdateRead(ctx, updateID, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// DTO mapping

func toAppointmentResponse(a *models.Appointment) *api.AppointmentResponse {
	resp := &api.AppointmentResponse{
		ID:             a.ID,
		UserID:         a.UserID,
		Type:           string(a.Type),
		Purpose:        a.Purpose,
		Time:           a.TimeLabel,
		Status:         string(a.Status),
		IsCourtesy:     a.IsCourtesy,
		PatientName:    a.PatientName,
		ProcessorName:  a.ProcessorName,
		MedicalDetails: a.MedicalDetails,
		ImageRef:       a.ImageRef,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}

	if a.Date != nil {
		resp.Date = a.Date.Format(availability.DateLayout)
	}

	return resp
}

func toBlockedDateResponse(b *models.BlockedDate) *api.BlockedDateResponse {
	return &api.BlockedDateResponse{
		ID:        b.ID,
		Date:      b.Date.Format(availability.DateLayout),
		Reason:    b.Reason,
		CreatedAt: b.CreatedAt,
	}
}

func toConcernResponse(c *models.Concern) *api.ConcernResponse {
	return &api.ConcernResponse{
		ID:          c.ID,
		UserID:      c.UserID,
		Title:       c.Title,
		Description: c.Description,
		Location:    c.Location,
		Category:    string(c.Category),
		Status:      string(c.Status),
		ImageRef:    c.ImageRef,
		CreatedAt:   c.CreatedAt,
	}
}

func toPostResponse(p *models.Post, bookmarked bool) *api.PostResponse {
	return &api.PostResponse{
		ID:         p.ID,
		Title:      p.Title,
		Content:    p.Content,
		Category:   p.Category,
		Priority:   string(p.Priority),
		Bookmarked: bookmarked,
		CreatedAt:  p.CreatedAt,
	}
}

func toUpdateResponse(u *models.Update, read bool) *api.UpdateResponse {
	return &api.UpdateResponse{
		ID:          u.ID,
		Title:       u.Title,
		Description: u.Description,
		Category:    u.Category,
		Priority:    string(u.Priority),
		Read:        read,
		CreatedAt:   u.CreatedAt,
	}
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
