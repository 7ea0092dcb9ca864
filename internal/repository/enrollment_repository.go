package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/clubsuite/club-api/internal/models"
)

const enrollmentColumns = "id, member_id, activity_id, status, joined_at, left_at"

// EnrollmentRepository provides persistence for activity enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository creates a new enrollment repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

func (r *EnrollmentRepository) q(ctx context.Context) sqlx.ExtContext {
	return executor(ctx, r.db)
}

// CountActiveByActivity returns the number of active enrollments of an
// activity. This figure is compared against classroom capacity.
func (r *EnrollmentRepository) CountActiveByActivity(ctx context.Context, activityID string) (int, error) {
	const query = `SELECT COUNT(*) FROM enrollments WHERE activity_id = $1 AND status = $2`
	var count int
	if err := sqlx.GetContext(ctx, r.q(ctx), &count, query, activityID, models.EnrollmentStatusActive); err != nil {
		return 0, fmt.Errorf("count active enrollments: %w", err)
	}
	return count, nil
}

// ListByActivity returns the enrollments of one activity.
func (r *EnrollmentRepository) ListByActivity(ctx context.Context, activityID string) ([]models.Enrollment, error) {
	query := fmt.Sprintf("SELECT %s FROM enrollments WHERE activity_id = $1 ORDER BY joined_at ASC", enrollmentColumns)
	var enrollments []models.Enrollment
	if err := sqlx.SelectContext(ctx, r.q(ctx), &enrollments, query, activityID); err != nil {
		return nil, fmt.Errorf("list enrollments by activity: %w", err)
	}
	return enrollments, nil
}

// Create registers a member into an activity.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.JoinedAt.IsZero() {
		enrollment.JoinedAt = time.Now().UTC()
	}
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentStatusActive
	}

	const query = `INSERT INTO enrollments (id, member_id, activity_id, status, joined_at, left_at) VALUES (:id, :member_id, :activity_id, :status, :joined_at, :left_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.q(ctx), query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// MarkLeft closes an enrollment.
func (r *EnrollmentRepository) MarkLeft(ctx context.Context, id string) error {
	now := time.Now().UTC()
	if _, err := r.q(ctx).ExecContext(ctx, `UPDATE enrollments SET status = $2, left_at = $3 WHERE id = $1`, id, models.EnrollmentStatusLeft, now); err != nil {
		return fmt.Errorf("mark enrollment left: %w", err)
	}
	return nil
}
