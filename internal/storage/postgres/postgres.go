package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"civic-service/internal/models"
	"civic-service/pkg/response"
)

type Storage struct {
	db *sql.DB
}

func New(storagePath string) (*Storage, error) {
	const op = "storage.postgres.New"

	db, err := sql.Open("postgres", storagePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

func (s *Storage) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return s.db.BeginTx(ctx, nil)
}

// #### appointments ####

func (s *Storage) CreateAppointment(ctx context.Context, tx *sql.Tx, a *models.Appointment) (string, error) {
	const op = "storage.postgres.CreateAppointment"

	id := uuid.NewString()

	var date sql.NullTime
	if a.Date != nil {
		date = sql.NullTime{Time: *a.Date, Valid: true}
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO appointments
			(id, user_id, type, purpose, date, time_label, status, is_courtesy,
			 patient_name, processor_name, medical_details, image_ref, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,now(),now())`,
		id, a.UserID, string(a.Type), a.Purpose, date, a.TimeLabel, string(a.Status),
		a.IsCourtesy, a.PatientName, a.ProcessorName, a.MedicalDetails, a.ImageRef,
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

const appointmentCols = `id, user_id, type, purpose, date, time_label, status, is_courtesy,
	patient_name, processor_name, medical_details, image_ref, created_at, updated_at`

func scanAppointment(row interface{ Scan(...any) error }) (*models.Appointment, error) {
	var a models.Appointment
	var date sql.NullTime

	err := row.Scan(
		&a.ID, &a.UserID, &a.Type, &a.Purpose, &date, &a.TimeLabel, &a.Status,
		&a.IsCourtesy, &a.PatientName, &a.ProcessorName, &a.MedicalDetails,
		&a.ImageRef, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if date.Valid {
		d := date.Time
		a.Date = &d
	}

	return &a, nil
}

func (s *Storage) GetAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	const op = "storage.postgres.GetAppointment"

	row := s.db.QueryRowContext(ctx,
		`SELECT `+appointmentCols+` FROM appointments WHERE id=$1`, id)

	a, err := scanAppointment(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return a, nil
}

func (s *Storage) ListAppointments(ctx context.Context, userID, status *string, from, to *time.Time) ([]*models.Appointment, error) {
	const op = "storage.postgres.ListAppointments"

	query := `SELECT ` + appointmentCols + ` FROM appointments WHERE 1=1`
	args := []any{}
	i := 1

	if userID != nil {
		query += fmt.Sprintf(" AND user_id=$%d", i)
		args = append(args, *userID)
		i++
	}
	if status != nil {
		query += fmt.Sprintf(" AND status=$%d", i)
		args = append(args, *status)
		i++
	}
	if from != nil {
		query += fmt.Sprintf(" AND date >= $%d", i)
		args = append(args, *from)
		i++
	}
	if to != nil {
		query += fmt.Sprintf(" AND date <= $%d", i)
		args = append(args, *to)
		i++
	}

	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, a)
	}

	return result, rows.Err()
}

// ListActiveAppointmentsOn returns non-cancelled, non-rejected appointments
// falling on the given calendar day.
func (s *Storage) ListActiveAppointmentsOn(ctx context.Context, day time.Time) ([]*models.Appointment, error) {
	const op = "storage.postgres.ListActiveAppointmentsOn"

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+appointmentCols+` FROM appointments
		 WHERE date = $1 AND status NOT IN ($2, $3)`,
		day, string(models.AppointmentCancelled), string(models.AppointmentRejected),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, a)
	}

	return result, rows.Err()
}

func (s *Storage) UpdateAppointmentStatus(ctx context.Context, id string, status models.AppointmentStatus) error {
	const op = "storage.postgres.UpdateAppointmentStatus"

	res, err := s.db.ExecContext(ctx,
		`UPDATE appointments SET status=$1, updated_at=now() WHERE id=$2`,
		string(status), id,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

func (s *Storage) ScheduleAppointment(ctx context.Context, id string, date time.Time, timeLabel string) error {
	const op = "storage.postgres.ScheduleAppointment"

	res, err := s.db.ExecContext(ctx,
		`UPDATE appointments SET date=$1, time_label=$2, updated_at=now() WHERE id=$3`,
		date, timeLabel, id,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

func (s *Storage) DeleteAppointment(ctx context.Context, id string) error {
	const op = "storage.postgres.DeleteAppointment"

	res, err := s.db.ExecContext(ctx, `DELETE FROM appointments WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

// #### blocked_dates ####

func (s *Storage) CreateBlockedDate(ctx context.Context, b *models.BlockedDate) (string, error) {
	const op = "storage.postgres.CreateBlockedDate"

	id := uuid.NewString()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO blocked_dates (id, date, reason, created_at) VALUES ($1,$2,$3,now())`,
		id, b.Date, b.Reason,
	)
	if err != nil {
		// unique index on date: duplicate day is a conflict
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return "", fmt.Errorf("%s: %w", op, response.ErrConflict)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) ListBlockedDates(ctx context.Context) ([]*models.BlockedDate, error) {
	const op = "storage.postgres.ListBlockedDates"

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date, reason, created_at FROM blocked_dates ORDER BY date ASC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.BlockedDate
	for rows.Next() {
		var b models.BlockedDate
		if err := rows.Scan(&b.ID, &b.Date, &b.Reason, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &b)
	}

	return result, rows.Err()
}

func (s *Storage) DeleteBlockedDate(ctx context.Context, id string) error {
	const op = "storage.postgres.DeleteBlockedDate"

	res, err := s.db.ExecContext(ctx, `DELETE FROM blocked_dates WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

// #### concerns ####

func (s *Storage) CreateConcern(ctx context.Context, c *models.Concern) (string, error) {
	const op = "storage.postgres.CreateConcern"

	id := uuid.NewString()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO concerns (id, user_id, title, description, location, category, status, image_ref, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,now())`,
		id, c.UserID, c.Title, c.Description, c.Location, string(c.Category), string(c.Status), c.ImageRef,
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) GetConcern(ctx context.Context, id string) (*models.Concern, error) {
	const op = "storage.postgres.GetConcern"

	var c models.Concern
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, description, location, category, status, image_ref, created_at
		FROM concerns WHERE id=$1`, id).
		Scan(&c.ID, &c.UserID, &c.Title, &c.Description, &c.Location, &c.Category, &c.Status, &c.ImageRef, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &c, nil
}

func (s *Storage) ListConcerns(ctx context.Context, userID, status, category *string) ([]*models.Concern, error) {
	const op = "storage.postgres.ListConcerns"

	query := `SELECT id, user_id, title, description, location, category, status, image_ref, created_at
		FROM concerns WHERE 1=1`
	args := []any{}
	i := 1

	if userID != nil {
		query += fmt.Sprintf(" AND user_id=$%d", i)
		args = append(args, *userID)
		i++
	}
	if status != nil {
		query += fmt.Sprintf(" AND status=$%d", i)
		args = append(args, *status)
		i++
	}
	if category != nil {
		query += fmt.Sprintf(" AND category=$%d", i)
		args = append(args, *category)
		i++
	}

	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Concern
	for rows.Next() {
		var c models.Concern
		if err := rows.Scan(&c.ID, &c.UserID, &c.Title, &c.Description, &c.Location,
			&c.Category, &c.Status, &c.ImageRef, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &c)
	}

	return result, rows.Err()
}

func (s *Storage) UpdateConcernStatus(ctx context.Context, id string, status models.ConcernStatus) error {
	const op = "storage.postgres.UpdateConcernStatus"

	res, err := s.db.ExecContext(ctx,
		`UPDATE concerns SET status=$1 WHERE id=$2`, string(status), id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

// #### posts ####

func (s *Storage) CreatePost(ctx context.Context, p *models.Post) (string, error) {
	const op = "storage.postgres.CreatePost"

	id := uuid.NewString()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO posts (id, title, content, category, priority, created_at)
		VALUES ($1,$2,$3,$4,$5,now())`,
		id, p.Title, p.Content, p.Category, string(p.Priority),
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) GetPost(ctx context.Context, id string) (*models.Post, error) {
	const op = "storage.postgres.GetPost"

	var p models.Post
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, content, category, priority, created_at FROM posts WHERE id=$1`, id).
		Scan(&p.ID, &p.Title, &p.Content, &p.Category, &p.Priority, &p.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &p, nil
}

func (s *Storage) ListPosts(ctx context.Context, category, priority *string) ([]*models.Post, error) {
	const op = "storage.postgres.ListPosts"

	query := `SELECT id, title, content, category, priority, created_at FROM posts WHERE 1=1`
	args := []any{}
	i := 1

	if category != nil {
		query += fmt.Sprintf(" AND category=$%d", i)
		args = append(args, *category)
		i++
	}
	if priority != nil {
		query += fmt.Sprintf(" AND priority=$%d", i)
		args = append(args, *priority)
		i++
	}

	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Post
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.Category, &p.Priority, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &p)
	}

	return result, rows.Err()
}

// #### updates ####

func (s *Storage) CreateUpdate(ctx context.Context, u *models.Update) (string, error) {
	const op = "storage.postgres.CreateUpdate"

	id := uuid.NewString()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO updates (id, title, description, category, priority, created_at)
		VALUES ($1,$2,$3,$4,$5,now())`,
		id, u.Title, u.Description, u.Category, string(u.Priority),
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) GetUpdate(ctx context.Context, id string) (*models.Update, error) {
	const op = "storage.postgres.GetUpdate"

	var u models.Update
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, description, category, priority, created_at FROM updates WHERE id=$1`, id).
		Scan(&u.ID, &u.Title, &u.Description, &u.Category, &u.Priority, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &u, nil
}

func (s *Storage) ListUpdates(ctx context.Context) ([]*models.Update, error) {
	const op = "storage.postgres.ListUpdates"

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, description, category, priority, created_at FROM updates ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Update
	for rows.Next() {
		var u models.Update
		if err := rows.Scan(&u.ID, &u.Title, &u.Description, &u.Category, &u.Priority, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &u)
	}

	return result, rows.Err()
}

// MarkUpdateRead records a per-user read row. Re-reading is a no-op.
func (s *Storage) MarkUpdateRead(ctx context.Context, updateID, userID string) error {
	const op = "storage.postgres.MarkUpdateRead"

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO update_reads (update_id, user_id, read_at)
		VALUES ($1,$2,now())
		ON CONFLICT (update_id, user_id) DO NOTHING`,
		updateID, userID,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) ListReadUpdateIDs(ctx context.Context, userID string) ([]string, error) {
	const op = "storage.postgres.ListReadUpdateIDs"

	rows, err := s.db.QueryContext(ctx,
		`SELECT update_id FROM update_reads WHERE user_id=$1`, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
