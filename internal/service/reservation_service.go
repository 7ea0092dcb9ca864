package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/clubsuite/club-api/internal/models"
	"github.com/clubsuite/club-api/internal/repository"
	"github.com/clubsuite/club-api/internal/schedule"
	appErrors "github.com/clubsuite/club-api/pkg/errors"
)

type reservationRepository interface {
	FindByID(ctx context.Context, id string) (*models.Reservation, error)
	List(ctx context.Context, filter models.ReservationFilter) ([]models.Reservation, int, error)
	Create(ctx context.Context, reservation *models.Reservation) error
	Update(ctx context.Context, reservation *models.Reservation) error
	Delete(ctx context.Context, id string) error
}

type reservationTeacherRepository interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

type bookingConflictDetector interface {
	DetectBookingConflicts(ctx context.Context, classroomID string, start, end time.Time, excludeReservationID string) ([]models.BookingConflict, error)
	DetectTeacherConflicts(ctx context.Context, teacherID string, start, end time.Time, excludeReservationID string) ([]models.BookingConflict, error)
}

// CreateReservationRequest describes payload for booking a classroom.
type CreateReservationRequest struct {
	ClassroomID string    `json:"classroom_id" validate:"required"`
	TeacherID   string    `json:"teacher_id" validate:"required"`
	ActivityID  *string   `json:"activity_id,omitempty"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	EndsAt      time.Time `json:"ends_at" validate:"required"`
	Notes       string    `json:"notes"`
}

// RecurringReservationRequest books a repeating series. Every generated
// occurrence becomes an independent reservation row.
type RecurringReservationRequest struct {
	CreateReservationRequest
	Rule schedule.Rule `json:"rule" validate:"required"`
}

// ReservationService manages absolute-time classroom bookings.
type ReservationService struct {
	reservations   reservationRepository
	classrooms     assignmentClassroomRepository
	teachers       reservationTeacherRepository
	activities     assignmentActivityRepository
	conflicts      bookingConflictDetector
	uow            unitOfWork
	validator      *validator.Validate
	logger         *zap.Logger
	maxOccurrences int
}

// NewReservationService instantiates ReservationService.
func NewReservationService(
	reservations reservationRepository,
	classrooms assignmentClassroomRepository,
	teachers reservationTeacherRepository,
	activities assignmentActivityRepository,
	conflicts bookingConflictDetector,
	uow unitOfWork,
	validate *validator.Validate,
	logger *zap.Logger,
	maxOccurrences int,
) *ReservationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxOccurrences <= 0 {
		maxOccurrences = schedule.DefaultMaxOccurrences
	}
	return &ReservationService{
		reservations:   reservations,
		classrooms:     classrooms,
		teachers:       teachers,
		activities:     activities,
		conflicts:      conflicts,
		uow:            uow,
		validator:      validate,
		logger:         logger,
		maxOccurrences: maxOccurrences,
	}
}

// List returns reservations matching the filter with pagination metadata.
func (s *ReservationService) List(ctx context.Context, filter models.ReservationFilter) ([]models.Reservation, *models.Pagination, error) {
	reservations, total, err := s.reservations.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reservations")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return reservations, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Create books a classroom for a teacher. Conflict checks and the insert
// share a serializable transaction; the reservations exclusion constraint
// backstops races across instances.
func (s *ReservationService) Create(ctx context.Context, req CreateReservationRequest) (*models.Reservation, error) {
	if err := s.validateRequest(ctx, req); err != nil {
		return nil, err
	}

	reservation := &models.Reservation{
		ClassroomID: req.ClassroomID,
		TeacherID:   req.TeacherID,
		ActivityID:  req.ActivityID,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Notes:       req.Notes,
	}

	err := s.uow.Serializable(ctx, func(ctx context.Context) error {
		if err := s.ensureNoBookingConflict(ctx, req, ""); err != nil {
			return err
		}
		return s.reservations.Create(ctx, reservation)
	})
	if err != nil {
		return nil, s.mapWriteError(err, "failed to create reservation")
	}

	return reservation, nil
}

// Update reschedules an existing reservation, excluding itself from the
// overlap checks.
func (s *ReservationService) Update(ctx context.Context, id string, req CreateReservationRequest) (*models.Reservation, error) {
	existing, err := s.findReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validateRequest(ctx, req); err != nil {
		return nil, err
	}

	updated := &models.Reservation{
		ID:          existing.ID,
		ClassroomID: req.ClassroomID,
		TeacherID:   req.TeacherID,
		ActivityID:  req.ActivityID,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Notes:       req.Notes,
		CreatedAt:   existing.CreatedAt,
	}

	err = s.uow.Serializable(ctx, func(ctx context.Context) error {
		if err := s.ensureNoBookingConflict(ctx, req, id); err != nil {
			return err
		}
		return s.reservations.Update(ctx, updated)
	})
	if err != nil {
		return nil, s.mapWriteError(err, "failed to update reservation")
	}
	return updated, nil
}

// Cancel removes one reservation. Occurrences generated from the same
// recurrence rule are untouched.
func (s *ReservationService) Cancel(ctx context.Context, id string) error {
	if _, err := s.findReservation(ctx, id); err != nil {
		return err
	}
	if err := s.reservations.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel reservation")
	}
	return nil
}

// CreateRecurring expands the rule and books each occurrence independently.
// The batch is best-effort: one occurrence failing never rolls back the
// others, and the summary reports both sides.
func (s *ReservationService) CreateRecurring(ctx context.Context, req RecurringReservationRequest) (*models.RecurringResult, error) {
	if err := s.validateRequest(ctx, req.CreateReservationRequest); err != nil {
		return nil, err
	}

	base := schedule.Occurrence{Start: req.StartsAt, End: req.EndsAt}
	occurrences, err := schedule.Expand(base, req.Rule, s.maxOccurrences)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid recurrence rule")
	}

	result := &models.RecurringResult{}
	for _, occurrence := range occurrences {
		itemReq := req.CreateReservationRequest
		itemReq.StartsAt = occurrence.Start
		itemReq.EndsAt = occurrence.End

		reservation := &models.Reservation{
			ClassroomID: itemReq.ClassroomID,
			TeacherID:   itemReq.TeacherID,
			ActivityID:  itemReq.ActivityID,
			StartsAt:    itemReq.StartsAt,
			EndsAt:      itemReq.EndsAt,
			Notes:       itemReq.Notes,
		}

		err := s.uow.Serializable(ctx, func(ctx context.Context) error {
			if err := s.ensureNoBookingConflict(ctx, itemReq, ""); err != nil {
				return err
			}
			return s.reservations.Create(ctx, reservation)
		})
		if err != nil {
			appErr := appErrors.FromError(s.mapWriteError(err, "failed to create occurrence"))
			result.Errors = append(result.Errors, models.RecurringItemError{
				StartsAt: occurrence.Start,
				EndsAt:   occurrence.End,
				Code:     appErr.Code,
				Message:  appErr.Message,
			})
			continue
		}
		result.Created = append(result.Created, *reservation)
	}

	s.logger.Info("recurring reservations created",
		zap.String("classroom_id", req.ClassroomID),
		zap.Int("created", len(result.Created)),
		zap.Int("failed", len(result.Errors)),
	)
	return result, nil
}

// validateRequest checks payload shape and referenced entities.
func (s *ReservationService) validateRequest(ctx context.Context, req CreateReservationRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reservation payload")
	}
	if !req.StartsAt.Before(req.EndsAt) {
		return appErrors.Clone(appErrors.ErrValidation, "reservation must start before it ends")
	}

	classroom, err := s.classrooms.FindByID(ctx, req.ClassroomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "classroom not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classroom")
	}
	if !classroom.Active {
		return appErrors.Clone(appErrors.ErrInvalidState, "classroom is not active")
	}

	teacher, err := s.teachers.FindByID(ctx, req.TeacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if !teacher.Available() {
		return appErrors.Clone(appErrors.ErrInvalidState, "teacher cannot take bookings")
	}

	if req.ActivityID != nil && *req.ActivityID != "" {
		if _, err := s.activities.FindByID(ctx, *req.ActivityID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "activity not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity")
		}
	}
	return nil
}

// ensureNoBookingConflict checks the classroom and the teacher inside the
// caller's transaction.
func (s *ReservationService) ensureNoBookingConflict(ctx context.Context, req CreateReservationRequest, excludeID string) error {
	roomConflicts, err := s.conflicts.DetectBookingConflicts(ctx, req.ClassroomID, req.StartsAt, req.EndsAt, excludeID)
	if err != nil {
		return err
	}
	if len(roomConflicts) > 0 {
		return s.conflictError("classroom is already booked for this range", roomConflicts)
	}

	teacherConflicts, err := s.conflicts.DetectTeacherConflicts(ctx, req.TeacherID, req.StartsAt, req.EndsAt, excludeID)
	if err != nil {
		return err
	}
	if len(teacherConflicts) > 0 {
		return s.conflictError("teacher is already booked for this range", teacherConflicts)
	}
	return nil
}

func (s *ReservationService) conflictError(message string, conflicts []models.BookingConflict) error {
	domainErr := &models.BookingConflictError{
		Message:   fmt.Sprintf("%s (%d conflict(s))", message, len(conflicts)),
		Conflicts: conflicts,
	}
	return appErrors.Wrap(domainErr, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, domainErr.Message)
}

func (s *ReservationService) findReservation(ctx context.Context, id string) (*models.Reservation, error) {
	reservation, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "reservation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reservation")
	}
	return reservation, nil
}

func (s *ReservationService) mapWriteError(err error, internalMsg string) error {
	if repository.IsConstraintConflict(err) {
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "classroom is already booked for this range")
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, internalMsg)
}
