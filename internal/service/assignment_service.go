package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/clubsuite/club-api/internal/models"
	"github.com/clubsuite/club-api/internal/repository"
	appErrors "github.com/clubsuite/club-api/pkg/errors"
)

type assignmentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
	ListByActivity(ctx context.Context, activityID string) ([]models.Assignment, error)
	ExistsActive(ctx context.Context, activityID, classroomID string) (bool, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	Deactivate(ctx context.Context, id string) error
	Reactivate(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type assignmentActivityRepository interface {
	FindByID(ctx context.Context, id string) (*models.Activity, error)
}

type assignmentClassroomRepository interface {
	FindByID(ctx context.Context, id string) (*models.Classroom, error)
}

type assignmentSlotRepository interface {
	ListActiveByActivity(ctx context.Context, activityID string) ([]models.WeeklySlot, error)
}

type assignmentEnrollmentRepository interface {
	CountActiveByActivity(ctx context.Context, activityID string) (int, error)
}

type weeklyConflictDetector interface {
	DetectWeeklyConflicts(ctx context.Context, classroomID string, candidates []models.WeeklySlot, excludeActivityID string) ([]models.WeeklyConflict, error)
}

type unitOfWork interface {
	Serializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// CreateAssignmentRequest describes payload for assigning a classroom.
type CreateAssignmentRequest struct {
	ActivityID  string `json:"activity_id" validate:"required"`
	ClassroomID string `json:"classroom_id" validate:"required"`
	Priority    int    `json:"priority" validate:"min=0"`
	Notes       string `json:"notes"`
}

// BatchAssignmentRequest assigns one activity to several classrooms at once.
type BatchAssignmentRequest struct {
	ActivityID   string   `json:"activity_id" validate:"required"`
	ClassroomIDs []string `json:"classroom_ids" validate:"required,min=1"`
	Priority     int      `json:"priority" validate:"min=0"`
	Notes        string   `json:"notes"`
}

// AssignmentService validates and manages classroom-activity assignments.
type AssignmentService struct {
	assignments assignmentRepository
	activities  assignmentActivityRepository
	classrooms  assignmentClassroomRepository
	slots       assignmentSlotRepository
	enrollments assignmentEnrollmentRepository
	conflicts   weeklyConflictDetector
	uow         unitOfWork
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAssignmentService instantiates AssignmentService.
func NewAssignmentService(
	assignments assignmentRepository,
	activities assignmentActivityRepository,
	classrooms assignmentClassroomRepository,
	slots assignmentSlotRepository,
	enrollments assignmentEnrollmentRepository,
	conflicts weeklyConflictDetector,
	uow unitOfWork,
	validate *validator.Validate,
	logger *zap.Logger,
) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		assignments: assignments,
		activities:  activities,
		classrooms:  classrooms,
		slots:       slots,
		enrollments: enrollments,
		conflicts:   conflicts,
		uow:         uow,
		validator:   validate,
		logger:      logger,
	}
}

// Validate runs the assignment checks without writing anything and returns
// an accept/reject decision with reasons.
func (s *AssignmentService) Validate(ctx context.Context, activityID, classroomID string) (*models.Decision, error) {
	if err := s.runChecks(ctx, activityID, classroomID, ""); err != nil {
		appErr := appErrors.FromError(err)
		if appErr.Code == appErrors.ErrInternal.Code {
			return nil, err
		}
		reason := models.DecisionReason{Code: appErr.Code, Message: appErr.Message}
		var conflictErr *models.WeeklyConflictError
		if errors.As(err, &conflictErr) {
			reason.Conflicts = conflictErr.Conflicts
		}
		return &models.Decision{Accepted: false, Reasons: []models.DecisionReason{reason}}, nil
	}
	return &models.Decision{Accepted: true}, nil
}

// Create assigns a classroom to an activity. The checks and the insert share
// one serializable transaction; a constraint rejection racing past them is
// surfaced as the same conflict error.
func (s *AssignmentService) Create(ctx context.Context, req CreateAssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	assignment := &models.Assignment{
		ActivityID:  req.ActivityID,
		ClassroomID: req.ClassroomID,
		Active:      true,
		Priority:    req.Priority,
		Notes:       req.Notes,
	}

	err := s.uow.Serializable(ctx, func(ctx context.Context) error {
		if err := s.runChecks(ctx, req.ActivityID, req.ClassroomID, ""); err != nil {
			return err
		}
		return s.assignments.Create(ctx, assignment)
	})
	if err != nil {
		return nil, s.mapWriteError(err, "failed to create assignment")
	}

	s.logger.Info("assignment created",
		zap.String("assignment_id", assignment.ID),
		zap.String("activity_id", assignment.ActivityID),
		zap.String("classroom_id", assignment.ClassroomID),
	)
	return assignment, nil
}

// CreateBatch assigns several classrooms to one activity, best effort. Each
// classroom is validated and committed in its own transaction; one failure
// does not roll back the siblings, it is reported in the summary instead.
func (s *AssignmentService) CreateBatch(ctx context.Context, req BatchAssignmentRequest) (*models.BatchAssignmentResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch assignment payload")
	}

	result := &models.BatchAssignmentResult{Created: []models.Assignment{}}
	for _, classroomID := range req.ClassroomIDs {
		assignment, err := s.Create(ctx, CreateAssignmentRequest{
			ActivityID:  req.ActivityID,
			ClassroomID: classroomID,
			Priority:    req.Priority,
			Notes:       req.Notes,
		})
		if err != nil {
			appErr := appErrors.FromError(err)
			result.Errors = append(result.Errors, models.BatchAssignmentItemError{
				ClassroomID: classroomID,
				Code:        appErr.Code,
				Message:     appErr.Message,
			})
			continue
		}
		result.Created = append(result.Created, *assignment)
	}

	s.logger.Info("assignment batch finished",
		zap.String("activity_id", req.ActivityID),
		zap.Int("created", len(result.Created)),
		zap.Int("failed", len(result.Errors)),
	)
	return result, nil
}

// Deactivate soft-deactivates an assignment, freeing the classroom's slots.
// It returns the deactivated assignment so callers can invalidate anything
// keyed by its classroom.
func (s *AssignmentService) Deactivate(ctx context.Context, id string) (*models.Assignment, error) {
	assignment, err := s.findAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !assignment.Active {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "assignment is already deactivated")
	}
	if err := s.assignments.Deactivate(ctx, id); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate assignment")
	}
	assignment.Active = false
	return assignment, nil
}

// Reactivate re-enters the validation chain for a deactivated assignment:
// capacity and conflicts are re-checked against the current state before the
// assignment becomes active again.
func (s *AssignmentService) Reactivate(ctx context.Context, id string) (*models.Assignment, error) {
	var assignment *models.Assignment
	err := s.uow.Serializable(ctx, func(ctx context.Context) error {
		var err error
		assignment, err = s.findAssignment(ctx, id)
		if err != nil {
			return err
		}
		if assignment.Active {
			return appErrors.Clone(appErrors.ErrInvalidState, "assignment is already active")
		}
		if err := s.runChecks(ctx, assignment.ActivityID, assignment.ClassroomID, assignment.ActivityID); err != nil {
			return err
		}
		return s.assignments.Reactivate(ctx, id)
	})
	if err != nil {
		return nil, s.mapWriteError(err, "failed to reactivate assignment")
	}

	assignment.Active = true
	assignment.DeactivatedAt = nil
	return assignment, nil
}

// Delete permanently removes an assignment. Deactivation is the default way
// to release a classroom; this is the explicit destructive variant. The
// removed assignment is returned for cache invalidation.
func (s *AssignmentService) Delete(ctx context.Context, id string) (*models.Assignment, error) {
	assignment, err := s.findAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.assignments.Delete(ctx, id); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assignment")
	}
	return assignment, nil
}

// ListByActivity returns every assignment of one activity.
func (s *AssignmentService) ListByActivity(ctx context.Context, activityID string) ([]models.Assignment, error) {
	assignments, err := s.assignments.ListByActivity(ctx, activityID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return assignments, nil
}

// runChecks is the ordered validation chain; the first failure wins.
// excludeActivityID is set when re-validating an existing assignment so its
// own slots are not reported as conflicts.
func (s *AssignmentService) runChecks(ctx context.Context, activityID, classroomID, excludeActivityID string) error {
	activity, err := s.activities.FindByID(ctx, activityID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "activity not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity")
	}
	if !activity.Active {
		return appErrors.Clone(appErrors.ErrInvalidState, "activity is not active")
	}

	slots, err := s.slots.ListActiveByActivity(ctx, activityID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity slots")
	}
	if len(slots) == 0 {
		return appErrors.Clone(appErrors.ErrInvalidState, "cannot assign a classroom to an activity with no schedule")
	}

	classroom, err := s.classrooms.FindByID(ctx, classroomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "classroom not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classroom")
	}
	if !classroom.Active {
		return appErrors.Clone(appErrors.ErrInvalidState, "classroom is not active")
	}

	if excludeActivityID == "" {
		exists, err := s.assignments.ExistsActive(ctx, activityID, classroomID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing assignment")
		}
		if exists {
			return appErrors.Clone(appErrors.ErrConflict, "activity is already assigned to this classroom")
		}
	}

	enrolled, err := s.enrollments.CountActiveByActivity(ctx, activityID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrollments")
	}
	if enrolled > classroom.Capacity {
		return appErrors.Clone(appErrors.ErrCapacity,
			fmt.Sprintf("activity has %d active enrollments but classroom capacity is %d (%d over)", enrolled, classroom.Capacity, enrolled-classroom.Capacity))
	}

	conflicts, err := s.conflicts.DetectWeeklyConflicts(ctx, classroomID, slots, excludeActivityID)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		domainErr := &models.WeeklyConflictError{
			Message:   fmt.Sprintf("%d weekly slot conflict(s) in classroom", len(conflicts)),
			Conflicts: conflicts,
		}
		return appErrors.Wrap(domainErr, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, domainErr.Message)
	}

	return nil
}

func (s *AssignmentService) findAssignment(ctx context.Context, id string) (*models.Assignment, error) {
	assignment, err := s.assignments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	return assignment, nil
}

// mapWriteError folds a database constraint rejection into the same conflict
// shape as a pre-detected one; callers cannot tell the two paths apart.
func (s *AssignmentService) mapWriteError(err error, internalMsg string) error {
	if repository.IsConstraintConflict(err) {
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "activity is already assigned to this classroom")
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, internalMsg)
}
