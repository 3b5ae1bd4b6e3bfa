package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"civic-service/api"
	"civic-service/internal/events"
	"civic-service/internal/models"
	"civic-service/pkg/response"
)

var testNow = time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC) // Monday

// fakeStore keeps everything in maps. BeginTx is unsupported, so tests
// exercise the paths that fail or return before the insert transaction.
type fakeStore struct {
	appointments map[string]*models.Appointment
	blocked      map[string]*models.BlockedDate
	concerns     map[string]*models.Concern
	posts        map[string]*models.Post
	updates      map[string]*models.Update
	reads        map[string]map[string]bool // userID -> updateID

	nextID int

	statusUpdates []string // appointment ids whose status was written

	listBlockedCalls int
	afterFirstList   func() // runs once, after the first ListBlockedDates
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		appointments: map[string]*models.Appointment{},
		blocked:      map[string]*models.BlockedDate{},
		concerns:     map[string]*models.Concern{},
		posts:        map[string]*models.Post{},
		updates:      map[string]*models.Update{},
		reads:        map[string]map[string]bool{},
	}
}

func (f *fakeStore) id() string {
	f.nextID++
	return fmt.Sprintf("id-%d", f.nextID)
}

func (f *fakeStore) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return nil, errors.New("transactions not supported in fake store")
}

func (f *fakeStore) CreateAppointment(ctx context.Context, tx *sql.Tx, a *models.Appointment) (string, error) {
	id := f.id()
	a.ID = id
	f.appointments[id] = a
	return id, nil
}

func (f *fakeStore) GetAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	a, ok := f.appointments[id]
	if !ok {
		return nil, response.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeStore) ListAppointments(ctx context.Context, userID, status *string, from, to *time.Time) ([]*models.Appointment, error) {
	var out []*models.Appointment
	for _, a := range f.appointments {
		if userID != nil && a.UserID != *userID {
			continue
		}
		if status != nil && string(a.Status) != *status {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeStore) ListActiveAppointmentsOn(ctx context.Context, day time.Time) ([]*models.Appointment, error) {
	var out []*models.Appointment
	for _, a := range f.appointments {
		if a.Date == nil || !a.Active() {
			continue
		}
		y1, m1, d1 := a.Date.Date()
		y2, m2, d2 := day.Date()
		if y1 == y2 && m1 == m2 && d1 == d2 {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateAppointmentStatus(ctx context.Context, id string, status models.AppointmentStatus) error {
	a, ok := f.appointments[id]
	if !ok {
		return response.ErrNotFound
	}
	a.Status = status
	f.statusUpdates = append(f.statusUpdates, id)
	return nil
}

func (f *fakeStore) ScheduleAppointment(ctx context.Context, id string, date time.Time, timeLabel string) error {
	a, ok := f.appointments[id]
	if !ok {
		return response.ErrNotFound
	}
	a.Date = &date
	a.TimeLabel = timeLabel
	return nil
}

func (f *fakeStore) DeleteAppointment(ctx context.Context, id string) error {
	if _, ok := f.appointments[id]; !ok {
		return response.ErrNotFound
	}
	delete(f.appointments, id)
	return nil
}

func (f *fakeStore) CreateBlockedDate(ctx context.Context, b *models.BlockedDate) (string, error) {
	for _, existing := range f.blocked {
		if existing.Date.Equal(b.Date) {
			return "", response.ErrConflict
		}
	}
	id := f.id()
	b.ID = id
	f.blocked[id] = b
	return id, nil
}

func (f *fakeStore) ListBlockedDates(ctx context.Context) ([]*models.BlockedDate, error) {
	var out []*models.BlockedDate
	for _, b := range f.blocked {
		cp := *b
		out = append(out, &cp)
	}
	f.listBlockedCalls++
	if f.listBlockedCalls == 1 && f.afterFirstList != nil {
		f.afterFirstList()
	}
	return out, nil
}

func (f *fakeStore) DeleteBlockedDate(ctx context.Context, id string) error {
	if _, ok := f.blocked[id]; !ok {
		return response.ErrNotFound
	}
	delete(f.blocked, id)
	return nil
}

func (f *fakeStore) CreateConcern(ctx context.Context, c *models.Concern) (string, error) {
	id := f.id()
	c.ID = id
	f.concerns[id] = c
	return id, nil
}

func (f *fakeStore) GetConcern(ctx context.Context, id string) (*models.Concern, error) {
	c, ok := f.concerns[id]
	if !ok {
		return nil, response.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeStore) ListConcerns(ctx context.Context, userID, status, category *string) ([]*models.Concern, error) {
	var out []*models.Concern
	for _, c := range f.concerns {
		if userID != nil && c.UserID != *userID {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeStore) UpdateConcernStatus(ctx context.Context, id string, status models.ConcernStatus) error {
	c, ok := f.concerns[id]
	if !ok {
		return response.ErrNotFound
	}
	c.Status = status
	return nil
}

func (f *fakeStore) CreatePost(ctx context.Context, p *models.Post) (string, error) {
	id := f.id()
	p.ID = id
	f.posts[id] = p
	return id, nil
}

func (f *fakeStore) GetPost(ctx context.Context, id string) (*models.Post, error) {
	p, ok := f.posts[id]
	if !ok {
		return nil, response.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) ListPosts(ctx context.Context, category, priority *string) ([]*models.Post, error) {
	var out []*models.Post
	for _, p := range f.posts {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeStore) CreateUpdate(ctx context.Context, u *models.Update) (string, error) {
	id := f.id()
	u.ID = id
	f.updates[id] = u
	return id, nil
}

func (f *fakeStore) GetUpdate(ctx context.Context, id string) (*models.Update, error) {
	u, ok := f.updates[id]
	if !ok {
		return nil, response.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) ListUpdates(ctx context.Context) ([]*models.Update, error) {
	var out []*models.Update
	for _, u := range f.updates {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeStore) MarkUpdateRead(ctx context.Context, updateID, userID string) error {
	if f.reads[userID] == nil {
		f.reads[userID] = map[string]bool{}
	}
	f.reads[userID][updateID] = true
	return nil
}

func (f *fakeStore) ListReadUpdateIDs(ctx context.Context, userID string) ([]string, error) {
	var out []string
	for id := range f.reads[userID] {
		out = append(out, id)
	}
	return out, nil
}

type fakeLocker struct {
	allow    bool
	locked   []string
	unlocked []string
}

func (f *fakeLocker) LockDate(ctx context.Context, date string, ttl time.Duration) (bool, error) {
	f.locked = append(f.locked, date)
	return f.allow, nil
}

func (f *fakeLocker) UnlockDate(ctx context.Context, date string) error {
	f.unlocked = append(f.unlocked, date)
	return nil
}

type fakeKV struct {
	strings map[string]string
	sets    map[string]map[string]bool
	json    map[string]any
}

func newFakeKV() *fakeKV {
	return &fakeKV{
		strings: map[string]string{},
		sets:    map[string]map[string]bool{},
		json:    map[string]any{},
	}
}

func (f *fakeKV) SetJSON(ctx context.Context, key string, v any) error {
	f.json[key] = v
	return nil
}

func (f *fakeKV) SetString(ctx context.Context, key, value string) error {
	f.strings[key] = value
	return nil
}

func (f *fakeKV) GetString(ctx context.Context, key string) (string, bool, error) {
	v, ok := f.strings[key]
	return v, ok, nil
}

func (f *fakeKV) AddToSet(ctx context.Context, key, member string) error {
	if f.sets[key] == nil {
		f.sets[key] = map[string]bool{}
	}
	f.sets[key][member] = true
	return nil
}

func (f *fakeKV) RemoveFromSet(ctx context.Context, key, member string) error {
	delete(f.sets[key], member)
	return nil
}

func (f *fakeKV) InSet(ctx context.Context, key, member string) (bool, error) {
	return f.sets[key][member], nil
}

func (f *fakeKV) SetMembers(ctx context.Context, key string) ([]string, error) {
	var out []string
	for m := range f.sets[key] {
		out = append(out, m)
	}
	return out, nil
}

func newTestService(store *fakeStore, locker *fakeLocker) *Service {
	s := NewService(store, locker, events.NopPublisher{}, newFakeKV())
	s.now = func() time.Time { return testNow }
	return s
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestCreateAppointmentValidation(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeLocker{allow: true})

	_, err := svc.CreateAppointment(context.Background(), "u1", &api.AppointmentRequest{})

	var ve *response.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(ve.Messages) == 0 {
		t.Error("expected accumulated messages")
	}
}

func TestCreateAppointmentLockDenied(t *testing.T) {
	locker := &fakeLocker{allow: false}
	svc := newTestService(newFakeStore(), locker)

	_, err := svc.CreateAppointment(context.Background(), "u1", &api.AppointmentRequest{
		Type:    string(models.TypeCourtesy),
		Purpose: "Courtesy call",
		Date:    "2024-06-13",
		Time:    "9:00 AM",
	})
	if !errors.Is(err, response.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if len(locker.locked) != 1 || locker.locked[0] != "2024-06-13" {
		t.Errorf("expected one lock attempt on the date, got %v", locker.locked)
	}
}

func TestCreateAppointmentBlockedUnderLock(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeLocker{allow: true})

	// an admin block lands after validation read the empty list but before
	// the re-check inside the lock
	store.afterFirstList = func() {
		store.blocked["b1"] = &models.BlockedDate{ID: "b1", Date: *datePtr(2024, 6, 13), Reason: "Maintenance"}
	}

	_, err := svc.CreateAppointment(context.Background(), "u1", &api.AppointmentRequest{
		Type:    string(models.TypeCourtesy),
		Purpose: "Courtesy call",
		Date:    "2024-06-13",
		Time:    "9:00 AM",
	})
	if !errors.Is(err, response.ErrDateNotBookable) {
		t.Fatalf("expected ErrDateNotBookable from the re-check, got %v", err)
	}
}

func TestCreateAppointmentDoubleBooking(t *testing.T) {
	store := newFakeStore()
	locker := &fakeLocker{allow: true}
	svc := newTestService(store, locker)

	store.appointments["a1"] = &models.Appointment{
		ID:     "a1",
		UserID: "u1",
		Date:   datePtr(2024, 6, 13),
		Status: models.AppointmentPending,
	}

	_, err := svc.CreateAppointment(context.Background(), "u1", &api.AppointmentRequest{
		Type:    string(models.TypeCourtesy),
		Purpose: "Courtesy call",
		Date:    "2024-06-13",
		Time:    "9:00 AM",
	})
	if !errors.Is(err, response.ErrConflict) {
		t.Fatalf("expected ErrConflict for a second booking on the same date, got %v", err)
	}
	if len(locker.unlocked) != 1 {
		t.Error("lock should be released on the conflict path")
	}
}

func TestCreateAppointmentCancelledDoesNotBlock(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeLocker{allow: true})

	store.appointments["a1"] = &models.Appointment{
		ID:     "a1",
		UserID: "u1",
		Date:   datePtr(2024, 6, 13),
		Status: models.AppointmentCancelled,
	}

	_, err := svc.CreateAppointment(context.Background(), "u1", &api.AppointmentRequest{
		Type:    string(models.TypeCourtesy),
		Purpose: "Courtesy call",
		Date:    "2024-06-13",
		Time:    "9:00 AM",
	})

	// a cancelled booking frees the date; the request proceeds to the
	// insert, which the fake store cannot transact
	if errors.Is(err, response.ErrConflict) {
		t.Fatal("cancelled appointment must not count for double booking")
	}
	if err == nil {
		t.Fatal("expected the fake store's transaction error")
	}
}

func TestUpdateAppointmentStatusTransitions(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeLocker{allow: true})

	store.appointments["a1"] = &models.Appointment{
		ID:     "a1",
		UserID: "u1",
		Status: models.AppointmentPending,
	}

	resp, err := svc.UpdateAppointmentStatus(context.Background(), "a1", "Confirmed")
	if err != nil {
		t.Fatalf("Pending -> Confirmed should succeed: %v", err)
	}
	if resp.Status != "Confirmed" {
		t.Errorf("status = %q, want Confirmed", resp.Status)
	}

	// Confirmed -> Rejected is not in the transition table
	if _, err := svc.UpdateAppointmentStatus(context.Background(), "a1", "Rejected"); !errors.Is(err, response.ErrConflict) {
		t.Errorf("expected ErrConflict for invalid transition, got %v", err)
	}

	// unknown status string
	if _, err := svc.UpdateAppointmentStatus(context.Background(), "a1", "Archived"); !errors.Is(err, response.ErrBadRequest) {
		t.Errorf("expected ErrBadRequest for unknown status, got %v", err)
	}

	// missing appointment
	if _, err := svc.UpdateAppointmentStatus(context.Background(), "nope", "Confirmed"); !errors.Is(err, response.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListAppointmentsAutoRevert(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeLocker{allow: true})

	store.appointments["a1"] = &models.Appointment{
		ID:         "a1",
		UserID:     "u1",
		IsCourtesy: true,
		Status:     models.AppointmentConfirmed,
		Date:       datePtr(2024, 6, 5), // before testNow
	}
	store.appointments["a2"] = &models.Appointment{
		ID:         "a2",
		UserID:     "u1",
		IsCourtesy: true,
		Status:     models.AppointmentConfirmed,
		Date:       datePtr(2024, 6, 20),
	}

	userID := "u1"
	list, err := svc.ListAppointments(context.Background(), &userID, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	byID := map[string]string{}
	for _, a := range list {
		byID[a.ID] = a.Status
	}
	if byID["a1"] != "Pending" {
		t.Errorf("past-due courtesy should revert to Pending, got %q", byID["a1"])
	}
	if byID["a2"] != "Confirmed" {
		t.Errorf("future courtesy should stay Confirmed, got %q", byID["a2"])
	}
	if store.appointments["a1"].Status != models.AppointmentPending {
		t.Error("revert should be written back to the store")
	}
}

func TestScheduleAppointment(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeLocker{allow: true})

	store.appointments["a1"] = &models.Appointment{
		ID:         "a1",
		UserID:     "u1",
		IsCourtesy: true,
		Status:     models.AppointmentPending,
	}
	store.appointments["a2"] = &models.Appointment{
		ID:     "a2",
		UserID: "u1",
		Type:   models.TypeFinance,
		Status: models.AppointmentPending,
	}

	resp, err := svc.ScheduleAppointment(context.Background(), "a1", &api.AppointmentScheduleRequest{
		Date: "2024-06-13",
		Time: "2:00 PM",
	})
	if err != nil {
		t.Fatalf("scheduling a courtesy request should succeed: %v", err)
	}
	if resp.Date != "2024-06-13" || resp.Time != "2:00 PM" {
		t.Errorf("got date=%q time=%q", resp.Date, resp.Time)
	}

	// only courtesy requests can be scheduled this way
	if _, err := svc.ScheduleAppointment(context.Background(), "a2", &api.AppointmentScheduleRequest{Date: "2024-06-13", Time: "2:00 PM"}); !errors.Is(err, response.ErrConflict) {
		t.Errorf("expected ErrConflict for non-courtesy, got %v", err)
	}

	// past dates are not selectable
	if _, err := svc.ScheduleAppointment(context.Background(), "a1", &api.AppointmentScheduleRequest{Date: "2024-06-03", Time: "2:00 PM"}); !errors.Is(err, response.ErrDateNotBookable) {
		t.Errorf("expected ErrDateNotBookable for past date, got %v", err)
	}
}

func TestCalendarWeek(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeLocker{allow: true})

	store.blocked["b1"] = &models.BlockedDate{ID: "b1", Date: *datePtr(2024, 6, 12), Reason: "Town fiesta"}
	store.appointments["a1"] = &models.Appointment{
		ID:     "a1",
		UserID: "u1",
		Date:   datePtr(2024, 6, 13),
		Status: models.AppointmentPending,
	}

	resp, err := svc.Calendar(context.Background(), "u1", "week", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Days) != 5 {
		t.Fatalf("week view should have 5 days, got %d", len(resp.Days))
	}

	byDate := map[string]api.CalendarDay{}
	for _, d := range resp.Days {
		byDate[d.Date] = d
	}

	if d := byDate["2024-06-12"]; d.Selectable || d.BlockedReason != "Town fiesta" {
		t.Errorf("blocked day wrong: %+v", d)
	}
	if d := byDate["2024-06-13"]; d.Selectable || d.Label != "Booked" {
		t.Errorf("booked day wrong: %+v", d)
	}
	if d := byDate["2024-06-14"]; !d.Selectable {
		t.Errorf("free day should be selectable: %+v", d)
	}
}

func TestCalendarMonth(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeLocker{allow: true})

	resp, err := svc.Calendar(context.Background(), "u1", "month", "2024-09")
	if err != nil {
		t.Fatal(err)
	}
	if resp.Cursor != "2024-09" {
		t.Errorf("cursor = %q, want 2024-09", resp.Cursor)
	}
	// September 2024 starts on a Sunday: no placeholders, 30 days
	if len(resp.Days) != 30 {
		t.Fatalf("expected 30 cells, got %d", len(resp.Days))
	}
	if resp.Days[0].Placeholder {
		t.Error("September 2024 needs no leading placeholders")
	}

	// June 2024 starts on a Saturday: 6 placeholders + 30 days
	resp, err = svc.Calendar(context.Background(), "u1", "month", "2024-06")
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Days) != 36 {
		t.Fatalf("expected 36 cells, got %d", len(resp.Days))
	}
	for i := 0; i < 6; i++ {
		if !resp.Days[i].Placeholder {
			t.Errorf("cell %d should be a placeholder", i)
		}
	}

	if _, err := svc.Calendar(context.Background(), "u1", "agenda", ""); !errors.Is(err, response.ErrBadRequest) {
		t.Errorf("expected ErrBadRequest for unknown mode, got %v", err)
	}
}

func TestBlockedDateConflict(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeLocker{allow: true})

	first, err := svc.CreateBlockedDate(context.Background(), &api.BlockedDateRequest{Date: "2024-07-01", Reason: "Inventory"})
	if err != nil {
		t.Fatal(err)
	}
	if first.Reason != "Inventory" {
		t.Errorf("reason = %q", first.Reason)
	}

	if _, err := svc.CreateBlockedDate(context.Background(), &api.BlockedDateRequest{Date: "2024-07-01"}); !errors.Is(err, response.ErrConflict) {
		t.Errorf("expected ErrConflict on duplicate date, got %v", err)
	}

	// empty reason gets the default
	second, err := svc.CreateBlockedDate(context.Background(), &api.BlockedDateRequest{Date: "2024-07-02"})
	if err != nil {
		t.Fatal(err)
	}
	if second.Reason != models.DefaultBlockReason {
		t.Errorf("reason = %q, want %q", second.Reason, models.DefaultBlockReason)
	}
}

func TestCreateConcernValidation(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeLocker{allow: true})

	// Issue without a location
	_, err := svc.CreateConcern(context.Background(), "u1", &api.ConcernRequest{
		Title:       "Broken streetlight",
		Description: "Corner of Mabini and Rizal",
		Category:    "Issue",
	})
	var ve *response.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(ve.Messages) != 1 || ve.Messages[0] != "Location is required." {
		t.Errorf("got %v", ve.Messages)
	}

	// Suggestion does not need one
	resp, err := svc.CreateConcern(context.Background(), "u1", &api.ConcernRequest{
		Title:       "More benches",
		Description: "The plaza could use shade and seating",
		Category:    "Suggestion",
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Status != "Pending" {
		t.Errorf("new concern status = %q, want Pending", resp.Status)
	}
}

func TestListPostsBookmarks(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeLocker{allow: true})

	store.posts["p1"] = &models.Post{ID: "p1", Title: "Road closure", Priority: models.PostHigh}
	store.posts["p2"] = &models.Post{ID: "p2", Title: "Vaccination drive", Priority: models.PostMedium}

	if err := svc.SetBookmark(context.Background(), "u1", "p1", true); err != nil {
		t.Fatal(err)
	}

	list, err := svc.ListPosts(context.Background(), "u1", nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	flags := map[string]bool{}
	for _, p := range list {
		flags[p.ID] = p.Bookmarked
	}
	if !flags["p1"] || flags["p2"] {
		t.Errorf("bookmark flags wrong: %v", flags)
	}

	// unbookmark
	if err := svc.SetBookmark(context.Background(), "u1", "p1", false); err != nil {
		t.Fatal(err)
	}
	list, _ = svc.ListPosts(context.Background(), "u1", nil, nil)
	for _, p := range list {
		if p.Bookmarked {
			t.Errorf("post %s should no longer be bookmarked", p.ID)
		}
	}

	// bookmarking an unknown post fails
	if err := svc.SetBookmark(context.Background(), "u1", "nope", true); !errors.Is(err, response.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdatesReadFlags(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeLocker{allow: true})

	store.updates["n1"] = &models.Update{ID: "n1", Title: "Water interruption", Priority: models.UpdateHigh}
	store.updates["n2"] = &models.Update{ID: "n2", Title: "New office hours", Priority: models.UpdateNormal}

	if err := svc.MarkUpdateRead(context.Background(), "n1", "u1"); err != nil {
		t.Fatal(err)
	}

	list, err := svc.ListUpdates(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}

	read := map[string]bool{}
	for _, u := range list {
		read[u.ID] = u.Read
	}
	if !read["n1"] || read["n2"] {
		t.Errorf("read flags wrong for u1: %v", read)
	}

	// a different user has their own read state
	list, _ = svc.ListUpdates(context.Background(), "u2")
	for _, u := range list {
		if u.Read {
			t.Errorf("u2 should not have read %s", u.ID)
		}
	}

	if err := svc.MarkUpdateRead(context.Background(), "nope", "u1"); !errors.Is(err, response.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
