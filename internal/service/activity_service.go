package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/clubsuite/club-api/internal/models"
	"github.com/clubsuite/club-api/internal/schedule"
	appErrors "github.com/clubsuite/club-api/pkg/errors"
)

type activityRepository interface {
	List(ctx context.Context, filter models.ActivityFilter) ([]models.Activity, int, error)
	FindByID(ctx context.Context, id string) (*models.Activity, error)
	Create(ctx context.Context, activity *models.Activity) error
	Update(ctx context.Context, activity *models.Activity) error
	Deactivate(ctx context.Context, id string) error
}

type activitySlotRepository interface {
	ListByActivity(ctx context.Context, activityID string) ([]models.WeeklySlot, error)
	ListActiveByActivity(ctx context.Context, activityID string) ([]models.WeeklySlot, error)
	FindByID(ctx context.Context, id string) (*models.WeeklySlot, error)
	Create(ctx context.Context, slot *models.WeeklySlot) error
	Deactivate(ctx context.Context, id string) error
}

type activityAssignmentLister interface {
	ListByActivity(ctx context.Context, activityID string) ([]models.Assignment, error)
}

// CreateActivityRequest describes payload for registering an activity.
type CreateActivityRequest struct {
	Name          string `json:"name" validate:"required"`
	MaxEnrollment int    `json:"max_enrollment" validate:"required,min=1"`
}

// UpdateActivityRequest updates an activity's descriptive fields.
type UpdateActivityRequest struct {
	Name          string `json:"name" validate:"required"`
	MaxEnrollment int    `json:"max_enrollment" validate:"required,min=1"`
}

// AddSlotRequest adds a weekly slot to an activity's schedule.
type AddSlotRequest struct {
	Weekday   int    `json:"weekday" validate:"min=0,max=6"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

// ActivityService manages activities and their weekly schedules.
type ActivityService struct {
	repo        activityRepository
	slots       activitySlotRepository
	assignments activityAssignmentLister
	conflicts   weeklyConflictDetector
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewActivityService instantiates ActivityService.
func NewActivityService(
	repo activityRepository,
	slots activitySlotRepository,
	assignments activityAssignmentLister,
	conflicts weeklyConflictDetector,
	validate *validator.Validate,
	logger *zap.Logger,
) *ActivityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{
		repo:        repo,
		slots:       slots,
		assignments: assignments,
		conflicts:   conflicts,
		validator:   validate,
		logger:      logger,
	}
}

// List returns activities with pagination metadata.
func (s *ActivityService) List(ctx context.Context, filter models.ActivityFilter) ([]models.Activity, *models.Pagination, error) {
	activities, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list activities")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return activities, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get loads one activity together with its weekly slots.
func (s *ActivityService) Get(ctx context.Context, id string) (*models.Activity, []models.WeeklySlot, error) {
	activity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "activity not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity")
	}
	slots, err := s.slots.ListByActivity(ctx, id)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity slots")
	}
	return activity, slots, nil
}

// Create registers a new activity.
func (s *ActivityService) Create(ctx context.Context, req CreateActivityRequest) (*models.Activity, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid activity payload")
	}
	activity := &models.Activity{
		Name:          req.Name,
		MaxEnrollment: req.MaxEnrollment,
		Active:        true,
	}
	if err := s.repo.Create(ctx, activity); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create activity")
	}
	return activity, nil
}

// Update modifies an activity's descriptive fields.
func (s *ActivityService) Update(ctx context.Context, id string, req UpdateActivityRequest) (*models.Activity, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid activity payload")
	}
	activity, _, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	activity.Name = req.Name
	activity.MaxEnrollment = req.MaxEnrollment
	if err := s.repo.Update(ctx, activity); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update activity")
	}
	return activity, nil
}

// Deactivate retires an activity.
func (s *ActivityService) Deactivate(ctx context.Context, id string) error {
	activity, _, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !activity.Active {
		return appErrors.Clone(appErrors.ErrInvalidState, "activity is already deactivated")
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate activity")
	}
	return nil
}

// AddSlot appends a weekly slot to the activity's schedule. The new slot is
// checked against every classroom currently assigned to the activity so an
// edit cannot silently introduce a double booking.
func (s *ActivityService) AddSlot(ctx context.Context, activityID string, req AddSlotRequest) (*models.WeeklySlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot payload")
	}
	if _, err := schedule.SlotInterval(req.StartTime, req.EndTime); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot time range")
	}
	activity, _, err := s.Get(ctx, activityID)
	if err != nil {
		return nil, err
	}
	if !activity.Active {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "activity is deactivated")
	}

	slot := &models.WeeklySlot{
		ActivityID: activityID,
		Weekday:    req.Weekday,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Active:     true,
	}

	if s.assignments != nil && s.conflicts != nil {
		assignments, err := s.assignments.ListByActivity(ctx, activityID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity assignments")
		}
		for _, a := range assignments {
			if !a.Active {
				continue
			}
			conflicts, err := s.conflicts.DetectWeeklyConflicts(ctx, a.ClassroomID, []models.WeeklySlot{*slot}, activityID)
			if err != nil {
				return nil, err
			}
			if len(conflicts) > 0 {
				return nil, appErrors.Wrap(
					&models.WeeklyConflictError{Message: "slot overlaps existing schedule", Conflicts: conflicts},
					appErrors.ErrConflict.Code, appErrors.ErrConflict.Status,
					"slot overlaps existing schedule in an assigned classroom",
				)
			}
		}
	}

	if err := s.slots.Create(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create slot")
	}
	return slot, nil
}

// RemoveSlot deactivates a weekly slot.
func (s *ActivityService) RemoveSlot(ctx context.Context, activityID, slotID string) error {
	slot, err := s.slots.FindByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "slot not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slot")
	}
	if slot.ActivityID != activityID {
		return appErrors.Clone(appErrors.ErrNotFound, "slot does not belong to this activity")
	}
	if !slot.Active {
		return appErrors.Clone(appErrors.ErrInvalidState, "slot is already deactivated")
	}
	if err := s.slots.Deactivate(ctx, slotID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate slot")
	}
	return nil
}
