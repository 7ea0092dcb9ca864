package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/clubsuite/club-api/internal/models"
	"github.com/clubsuite/club-api/internal/schedule"
	appErrors "github.com/clubsuite/club-api/pkg/errors"
)

type conflictAssignmentRepository interface {
	ListActiveByClassroom(ctx context.Context, classroomID, excludeActivityID string) ([]models.Assignment, error)
}

type conflictSlotRepository interface {
	ListActiveByActivity(ctx context.Context, activityID string) ([]models.WeeklySlot, error)
}

type conflictActivityRepository interface {
	FindByID(ctx context.Context, id string) (*models.Activity, error)
}

type conflictReservationRepository interface {
	ListByClassroom(ctx context.Context, classroomID string) ([]models.Reservation, error)
	ListByTeacherFrom(ctx context.Context, teacherID string, from time.Time) ([]models.Reservation, error)
}

// ConflictService detects occupation overlaps for both scheduling models:
// recurring weekly slots and absolute-time bookings. It is a pure read; the
// write paths re-run it inside their transaction.
type ConflictService struct {
	assignments  conflictAssignmentRepository
	slots        conflictSlotRepository
	activities   conflictActivityRepository
	reservations conflictReservationRepository
	metrics      *MetricsService
	logger       *zap.Logger
}

// NewConflictService constructs a ConflictService.
func NewConflictService(
	assignments conflictAssignmentRepository,
	slots conflictSlotRepository,
	activities conflictActivityRepository,
	reservations conflictReservationRepository,
	metrics *MetricsService,
	logger *zap.Logger,
) *ConflictService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConflictService{
		assignments:  assignments,
		slots:        slots,
		activities:   activities,
		reservations: reservations,
		metrics:      metrics,
		logger:       logger,
	}
}

// DetectWeeklyConflicts returns every active weekly slot in the classroom
// that overlaps one of the candidate slots. Slots only collide on the same
// weekday; touching boundaries do not overlap. excludeActivityID skips the
// activity being re-validated.
func (s *ConflictService) DetectWeeklyConflicts(ctx context.Context, classroomID string, candidates []models.WeeklySlot, excludeActivityID string) ([]models.WeeklyConflict, error) {
	candidateIntervals := make(map[int][]schedule.Interval)
	for _, slot := range candidates {
		iv, err := schedule.SlotInterval(slot.StartTime, slot.EndTime)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid weekly slot")
		}
		candidateIntervals[slot.Weekday] = append(candidateIntervals[slot.Weekday], iv)
	}

	assignments, err := s.assignments.ListActiveByClassroom(ctx, classroomID, excludeActivityID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classroom assignments")
	}

	var conflicts []models.WeeklyConflict
	for _, assignment := range assignments {
		existing, err := s.slots.ListActiveByActivity(ctx, assignment.ActivityID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity slots")
		}
		var activityName string
		if activity, err := s.activities.FindByID(ctx, assignment.ActivityID); err == nil {
			activityName = activity.Name
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity")
		}

		for _, occupied := range existing {
			sameDay := candidateIntervals[occupied.Weekday]
			if len(sameDay) == 0 {
				continue
			}
			occupiedIv, err := schedule.SlotInterval(occupied.StartTime, occupied.EndTime)
			if err != nil {
				s.logger.Warn("skipping malformed stored slot",
					zap.String("slot_id", occupied.ID),
					zap.Error(err),
				)
				continue
			}
			for _, candidate := range sameDay {
				if candidate.Overlaps(occupiedIv) {
					conflicts = append(conflicts, models.WeeklyConflict{
						ActivityID:   assignment.ActivityID,
						ActivityName: activityName,
						ClassroomID:  classroomID,
						Weekday:      occupied.Weekday,
						StartTime:    occupied.StartTime,
						EndTime:      occupied.EndTime,
					})
					break
				}
			}
		}
	}

	if len(conflicts) > 0 && s.metrics != nil {
		s.metrics.RecordConflict("weekly")
	}
	return conflicts, nil
}

// DetectBookingConflicts returns every reservation of the classroom whose
// range overlaps [start, end). excludeReservationID skips the reservation
// being updated.
func (s *ConflictService) DetectBookingConflicts(ctx context.Context, classroomID string, start, end time.Time, excludeReservationID string) ([]models.BookingConflict, error) {
	proposed := schedule.FromTimes(start, end)
	if !proposed.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "reservation range must have positive duration")
	}

	existing, err := s.reservations.ListByClassroom(ctx, classroomID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classroom reservations")
	}

	conflicts := s.overlapping(existing, proposed, excludeReservationID)
	if len(conflicts) > 0 && s.metrics != nil {
		s.metrics.RecordConflict("booking")
	}
	return conflicts, nil
}

// DetectTeacherConflicts returns the teacher's reservations, in any
// classroom, that overlap [start, end). A teacher cannot be in two rooms at
// once, so any hit blocks the proposed booking.
func (s *ConflictService) DetectTeacherConflicts(ctx context.Context, teacherID string, start, end time.Time, excludeReservationID string) ([]models.BookingConflict, error) {
	proposed := schedule.FromTimes(start, end)
	if !proposed.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "reservation range must have positive duration")
	}

	// Anything ending before the proposed start can never overlap it.
	existing, err := s.reservations.ListByTeacherFrom(ctx, teacherID, start)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher reservations")
	}

	conflicts := s.overlapping(existing, proposed, excludeReservationID)
	if len(conflicts) > 0 && s.metrics != nil {
		s.metrics.RecordConflict("teacher")
	}
	return conflicts, nil
}

func (s *ConflictService) overlapping(existing []models.Reservation, proposed schedule.Interval, excludeID string) []models.BookingConflict {
	var conflicts []models.BookingConflict
	for _, reservation := range existing {
		if reservation.ID == excludeID {
			continue
		}
		if proposed.Overlaps(schedule.FromTimes(reservation.StartsAt, reservation.EndsAt)) {
			conflicts = append(conflicts, models.BookingConflict{
				ReservationID: reservation.ID,
				ClassroomID:   reservation.ClassroomID,
				TeacherID:     reservation.TeacherID,
				ActivityID:    reservation.ActivityID,
				StartsAt:      reservation.StartsAt,
				EndsAt:        reservation.EndsAt,
			})
		}
	}
	return conflicts
}
