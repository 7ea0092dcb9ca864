package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/clubsuite/club-api/internal/models"
	appErrors "github.com/clubsuite/club-api/pkg/errors"
)

type enrollmentRepository interface {
	CountActiveByActivity(ctx context.Context, activityID string) (int, error)
	ListByActivity(ctx context.Context, activityID string) ([]models.Enrollment, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	MarkLeft(ctx context.Context, id string) error
}

type enrollmentActivityRepository interface {
	FindByID(ctx context.Context, id string) (*models.Activity, error)
}

// EnrollRequest registers a member into an activity.
type EnrollRequest struct {
	MemberID   string `json:"member_id" validate:"required"`
	ActivityID string `json:"activity_id" validate:"required"`
}

// EnrollmentService manages activity memberships. The active head count it
// maintains feeds the classroom capacity check during assignment validation.
type EnrollmentService struct {
	repo       enrollmentRepository
	activities enrollmentActivityRepository
	uow        unitOfWork
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewEnrollmentService instantiates EnrollmentService.
func NewEnrollmentService(
	repo enrollmentRepository,
	activities enrollmentActivityRepository,
	uow unitOfWork,
	validate *validator.Validate,
	logger *zap.Logger,
) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		repo:       repo,
		activities: activities,
		uow:        uow,
		validator:  validate,
		logger:     logger,
	}
}

// ListByActivity returns every enrollment of an activity, active or not.
func (s *EnrollmentService) ListByActivity(ctx context.Context, activityID string) ([]models.Enrollment, error) {
	enrollments, err := s.repo.ListByActivity(ctx, activityID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return enrollments, nil
}

// Enroll adds a member to an activity. The head count check and the insert
// run in one serializable transaction so two racing enrollments cannot both
// squeeze past max_enrollment.
func (s *EnrollmentService) Enroll(ctx context.Context, req EnrollRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}

	var enrollment *models.Enrollment
	err := s.uow.Serializable(ctx, func(txCtx context.Context) error {
		activity, err := s.activities.FindByID(txCtx, req.ActivityID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "activity not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity")
		}
		if !activity.Active {
			return appErrors.Clone(appErrors.ErrInvalidState, "activity is deactivated")
		}

		count, err := s.repo.CountActiveByActivity(txCtx, req.ActivityID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrollments")
		}
		if count >= activity.MaxEnrollment {
			return appErrors.Clone(appErrors.ErrCapacity,
				fmt.Sprintf("activity is full (%d of %d places taken)", count, activity.MaxEnrollment))
		}

		enrollment = &models.Enrollment{
			MemberID:   req.MemberID,
			ActivityID: req.ActivityID,
			Status:     models.EnrollmentStatusActive,
		}
		if err := s.repo.Create(txCtx, enrollment); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return enrollment, nil
}

// Leave marks an enrollment as left. The member keeps their history row.
func (s *EnrollmentService) Leave(ctx context.Context, activityID, enrollmentID string) error {
	enrollments, err := s.repo.ListByActivity(ctx, activityID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	for _, e := range enrollments {
		if e.ID != enrollmentID {
			continue
		}
		if e.Status != models.EnrollmentStatusActive {
			return appErrors.Clone(appErrors.ErrInvalidState, "enrollment is not active")
		}
		if err := s.repo.MarkLeft(ctx, enrollmentID); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark enrollment as left")
		}
		return nil
	}
	return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
}
