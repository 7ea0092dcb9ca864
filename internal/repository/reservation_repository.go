package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/clubsuite/club-api/internal/models"
)

const reservationColumns = "id, classroom_id, teacher_id, activity_id, starts_at, ends_at, notes, created_at, updated_at"

// ReservationRepository provides persistence for classroom reservations.
type ReservationRepository struct {
	db *sqlx.DB
}

// NewReservationRepository creates a new reservation repository.
func NewReservationRepository(db *sqlx.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) q(ctx context.Context) sqlx.ExtContext {
	return executor(ctx, r.db)
}

// FindByID loads a reservation by id.
func (r *ReservationRepository) FindByID(ctx context.Context, id string) (*models.Reservation, error) {
	query := fmt.Sprintf("SELECT %s FROM reservations WHERE id = $1", reservationColumns)
	var reservation models.Reservation
	if err := sqlx.GetContext(ctx, r.q(ctx), &reservation, query, id); err != nil {
		return nil, err
	}
	return &reservation, nil
}

// ListByClassroom returns every reservation of one classroom ordered by start.
func (r *ReservationRepository) ListByClassroom(ctx context.Context, classroomID string) ([]models.Reservation, error) {
	query := fmt.Sprintf("SELECT %s FROM reservations WHERE classroom_id = $1 ORDER BY starts_at ASC", reservationColumns)
	var reservations []models.Reservation
	if err := sqlx.SelectContext(ctx, r.q(ctx), &reservations, query, classroomID); err != nil {
		return nil, fmt.Errorf("list reservations by classroom: %w", err)
	}
	return reservations, nil
}

// ListByTeacherFrom returns a teacher's reservations ending at or after the
// given instant, across every classroom.
func (r *ReservationRepository) ListByTeacherFrom(ctx context.Context, teacherID string, from time.Time) ([]models.Reservation, error) {
	query := fmt.Sprintf("SELECT %s FROM reservations WHERE teacher_id = $1 AND ends_at >= $2 ORDER BY starts_at ASC", reservationColumns)
	var reservations []models.Reservation
	if err := sqlx.SelectContext(ctx, r.q(ctx), &reservations, query, teacherID, from); err != nil {
		return nil, fmt.Errorf("list reservations by teacher: %w", err)
	}
	return reservations, nil
}

// List returns reservations matching the filter with pagination.
func (r *ReservationRepository) List(ctx context.Context, filter models.ReservationFilter) ([]models.Reservation, int, error) {
	base := "FROM reservations WHERE 1=1"
	var args []interface{}

	if filter.ClassroomID != "" {
		args = append(args, filter.ClassroomID)
		base += fmt.Sprintf(" AND classroom_id = $%d", len(args))
	}
	if filter.TeacherID != "" {
		args = append(args, filter.TeacherID)
		base += fmt.Sprintf(" AND teacher_id = $%d", len(args))
	}
	if filter.ActivityID != "" {
		args = append(args, filter.ActivityID)
		base += fmt.Sprintf(" AND activity_id = $%d", len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		base += fmt.Sprintf(" AND ends_at >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		base += fmt.Sprintf(" AND starts_at <= $%d", len(args))
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY starts_at ASC LIMIT %d OFFSET %d", reservationColumns, base, size, offset)
	var reservations []models.Reservation
	if err := sqlx.SelectContext(ctx, r.q(ctx), &reservations, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list reservations: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := sqlx.GetContext(ctx, r.q(ctx), &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count reservations: %w", err)
	}
	return reservations, total, nil
}

// Create stores a new reservation. The exclusion constraint on
// (classroom_id, tstzrange(starts_at, ends_at)) rejects a racing overlapping
// insert even when the in-transaction check passed.
func (r *ReservationRepository) Create(ctx context.Context, reservation *models.Reservation) error {
	if reservation.ID == "" {
		reservation.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if reservation.CreatedAt.IsZero() {
		reservation.CreatedAt = now
	}
	reservation.UpdatedAt = now

	const query = `INSERT INTO reservations (id, classroom_id, teacher_id, activity_id, starts_at, ends_at, notes, created_at, updated_at) VALUES (:id, :classroom_id, :teacher_id, :activity_id, :starts_at, :ends_at, :notes, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.q(ctx), query, reservation); err != nil {
		return fmt.Errorf("create reservation: %w", err)
	}
	return nil
}

// Update modifies a reservation.
func (r *ReservationRepository) Update(ctx context.Context, reservation *models.Reservation) error {
	reservation.UpdatedAt = time.Now().UTC()
	const query = `UPDATE reservations SET classroom_id = :classroom_id, teacher_id = :teacher_id, activity_id = :activity_id, starts_at = :starts_at, ends_at = :ends_at, notes = :notes, updated_at = :updated_at WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, r.q(ctx), query, reservation); err != nil {
		return fmt.Errorf("update reservation: %w", err)
	}
	return nil
}

// Delete removes a reservation. Recurrence-generated rows are independent,
// so deleting one occurrence never touches its siblings.
func (r *ReservationRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.q(ctx).ExecContext(ctx, `DELETE FROM reservations WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}
	return nil
}

// CountByClassroom returns total and upcoming reservation counts for a classroom.
func (r *ReservationRepository) CountByClassroom(ctx context.Context, classroomID string, now time.Time) (total int, upcoming int, err error) {
	const query = `SELECT COUNT(*), COUNT(*) FILTER (WHERE ends_at >= $2) FROM reservations WHERE classroom_id = $1`
	row := r.q(ctx).QueryRowxContext(ctx, query, classroomID, now)
	if err := row.Scan(&total, &upcoming); err != nil {
		return 0, 0, fmt.Errorf("count reservations by classroom: %w", err)
	}
	return total, upcoming, nil
}
