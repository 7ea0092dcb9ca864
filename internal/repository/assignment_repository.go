package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/clubsuite/club-api/internal/models"
)

const assignmentColumns = "id, activity_id, classroom_id, assigned_at, deactivated_at, active, priority, notes, created_at, updated_at"

// AssignmentRepository provides persistence for classroom assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository creates a new assignment repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

func (r *AssignmentRepository) q(ctx context.Context) sqlx.ExtContext {
	return executor(ctx, r.db)
}

// FindByID loads an assignment by id.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	query := fmt.Sprintf("SELECT %s FROM classroom_assignments WHERE id = $1", assignmentColumns)
	var assignment models.Assignment
	if err := sqlx.GetContext(ctx, r.q(ctx), &assignment, query, id); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// ListActiveByClassroom returns the active assignments of one classroom,
// optionally excluding one activity (used when re-validating it).
func (r *AssignmentRepository) ListActiveByClassroom(ctx context.Context, classroomID, excludeActivityID string) ([]models.Assignment, error) {
	query := fmt.Sprintf("SELECT %s FROM classroom_assignments WHERE classroom_id = $1 AND active = TRUE", assignmentColumns)
	args := []interface{}{classroomID}
	if excludeActivityID != "" {
		args = append(args, excludeActivityID)
		query += fmt.Sprintf(" AND activity_id <> $%d", len(args))
	}
	query += " ORDER BY priority ASC, assigned_at ASC"

	var assignments []models.Assignment
	if err := sqlx.SelectContext(ctx, r.q(ctx), &assignments, query, args...); err != nil {
		return nil, fmt.Errorf("list active assignments by classroom: %w", err)
	}
	return assignments, nil
}

// ListByActivity returns all assignments of one activity.
func (r *AssignmentRepository) ListByActivity(ctx context.Context, activityID string) ([]models.Assignment, error) {
	query := fmt.Sprintf("SELECT %s FROM classroom_assignments WHERE activity_id = $1 ORDER BY assigned_at DESC", assignmentColumns)
	var assignments []models.Assignment
	if err := sqlx.SelectContext(ctx, r.q(ctx), &assignments, query, activityID); err != nil {
		return nil, fmt.Errorf("list assignments by activity: %w", err)
	}
	return assignments, nil
}

// ExistsActive reports whether an active assignment already links the
// activity to the classroom.
func (r *AssignmentRepository) ExistsActive(ctx context.Context, activityID, classroomID string) (bool, error) {
	const query = `SELECT 1 FROM classroom_assignments WHERE activity_id = $1 AND classroom_id = $2 AND active = TRUE LIMIT 1`
	var one int
	err := sqlx.GetContext(ctx, r.q(ctx), &one, query, activityID, classroomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check active assignment: %w", err)
	}
	return true, nil
}

// Create stores a new assignment. The partial unique index on
// (activity_id, classroom_id) WHERE active rejects a racing duplicate even
// when the in-transaction check passed.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if assignment.AssignedAt.IsZero() {
		assignment.AssignedAt = now
	}
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = now
	}
	assignment.UpdatedAt = now

	const query = `INSERT INTO classroom_assignments (id, activity_id, classroom_id, assigned_at, deactivated_at, active, priority, notes, created_at, updated_at) VALUES (:id, :activity_id, :classroom_id, :assigned_at, :deactivated_at, :active, :priority, :notes, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.q(ctx), query, assignment); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// Deactivate soft-deactivates an assignment.
func (r *AssignmentRepository) Deactivate(ctx context.Context, id string) error {
	now := time.Now().UTC()
	if _, err := r.q(ctx).ExecContext(ctx, `UPDATE classroom_assignments SET active = FALSE, deactivated_at = $2, updated_at = $2 WHERE id = $1`, id, now); err != nil {
		return fmt.Errorf("deactivate assignment: %w", err)
	}
	return nil
}

// Reactivate flips a previously deactivated assignment back to active.
func (r *AssignmentRepository) Reactivate(ctx context.Context, id string) error {
	now := time.Now().UTC()
	if _, err := r.q(ctx).ExecContext(ctx, `UPDATE classroom_assignments SET active = TRUE, deactivated_at = NULL, updated_at = $2 WHERE id = $1`, id, now); err != nil {
		return fmt.Errorf("reactivate assignment: %w", err)
	}
	return nil
}

// Delete removes an assignment permanently.
func (r *AssignmentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.q(ctx).ExecContext(ctx, `DELETE FROM classroom_assignments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	return nil
}

// CountByClassroom returns total and active assignment counts for a classroom.
func (r *AssignmentRepository) CountByClassroom(ctx context.Context, classroomID string) (total int, active int, err error) {
	const query = `SELECT COUNT(*), COUNT(*) FILTER (WHERE active) FROM classroom_assignments WHERE classroom_id = $1`
	row := r.q(ctx).QueryRowxContext(ctx, query, classroomID)
	if err := row.Scan(&total, &active); err != nil {
		return 0, 0, fmt.Errorf("count assignments by classroom: %w", err)
	}
	return total, active, nil
}
