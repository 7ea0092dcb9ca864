package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/clubsuite/club-api/internal/models"
)

const weeklySlotColumns = "id, activity_id, weekday, start_time, end_time, active, created_at, updated_at"

// WeeklySlotRepository provides persistence for activity weekly slots.
type WeeklySlotRepository struct {
	db *sqlx.DB
}

// NewWeeklySlotRepository creates a new weekly slot repository.
func NewWeeklySlotRepository(db *sqlx.DB) *WeeklySlotRepository {
	return &WeeklySlotRepository{db: db}
}

func (r *WeeklySlotRepository) q(ctx context.Context) sqlx.ExtContext {
	return executor(ctx, r.db)
}

// ListActiveByActivity returns the active weekly slots of one activity
// ordered by weekday then start time.
func (r *WeeklySlotRepository) ListActiveByActivity(ctx context.Context, activityID string) ([]models.WeeklySlot, error) {
	query := fmt.Sprintf("SELECT %s FROM weekly_slots WHERE activity_id = $1 AND active = TRUE ORDER BY weekday ASC, start_time ASC", weeklySlotColumns)
	var slots []models.WeeklySlot
	if err := sqlx.SelectContext(ctx, r.q(ctx), &slots, query, activityID); err != nil {
		return nil, fmt.Errorf("list active slots by activity: %w", err)
	}
	return slots, nil
}

// ListByActivity returns all weekly slots of one activity.
func (r *WeeklySlotRepository) ListByActivity(ctx context.Context, activityID string) ([]models.WeeklySlot, error) {
	query := fmt.Sprintf("SELECT %s FROM weekly_slots WHERE activity_id = $1 ORDER BY weekday ASC, start_time ASC", weeklySlotColumns)
	var slots []models.WeeklySlot
	if err := sqlx.SelectContext(ctx, r.q(ctx), &slots, query, activityID); err != nil {
		return nil, fmt.Errorf("list slots by activity: %w", err)
	}
	return slots, nil
}

// FindByID loads a weekly slot by id.
func (r *WeeklySlotRepository) FindByID(ctx context.Context, id string) (*models.WeeklySlot, error) {
	query := fmt.Sprintf("SELECT %s FROM weekly_slots WHERE id = $1", weeklySlotColumns)
	var slot models.WeeklySlot
	if err := sqlx.GetContext(ctx, r.q(ctx), &slot, query, id); err != nil {
		return nil, err
	}
	return &slot, nil
}

// Create stores a new weekly slot.
func (r *WeeklySlotRepository) Create(ctx context.Context, slot *models.WeeklySlot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = now
	}
	slot.UpdatedAt = now

	const query = `INSERT INTO weekly_slots (id, activity_id, weekday, start_time, end_time, active, created_at, updated_at) VALUES (:id, :activity_id, :weekday, :start_time, :end_time, :active, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.q(ctx), query, slot); err != nil {
		return fmt.Errorf("create weekly slot: %w", err)
	}
	return nil
}

// Deactivate flips a weekly slot inactive.
func (r *WeeklySlotRepository) Deactivate(ctx context.Context, id string) error {
	if _, err := r.q(ctx).ExecContext(ctx, `UPDATE weekly_slots SET active = FALSE, updated_at = $2 WHERE id = $1`, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate weekly slot: %w", err)
	}
	return nil
}
