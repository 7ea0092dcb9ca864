package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"go.uber.org/zap"

	"github.com/clubsuite/club-api/internal/models"
	appErrors "github.com/clubsuite/club-api/pkg/errors"
)

type availabilityClassroomRepository interface {
	FindByID(ctx context.Context, id string) (*models.Classroom, error)
	ListActive(ctx context.Context, category string, minCapacity int) ([]models.Classroom, error)
}

// SuggestionFilters narrows the candidate classrooms for an activity.
type SuggestionFilters struct {
	MinCapacity int    `json:"min_capacity"`
	Category    string `json:"category"`
}

// AvailabilityService answers "where could this activity go" questions: it
// checks a single classroom or ranks every candidate with zero conflicts.
type AvailabilityService struct {
	activities  assignmentActivityRepository
	slots       assignmentSlotRepository
	classrooms  availabilityClassroomRepository
	enrollments assignmentEnrollmentRepository
	conflicts   weeklyConflictDetector
	logger      *zap.Logger
	limit       int
}

// NewAvailabilityService instantiates AvailabilityService.
func NewAvailabilityService(
	activities assignmentActivityRepository,
	slots assignmentSlotRepository,
	classrooms availabilityClassroomRepository,
	enrollments assignmentEnrollmentRepository,
	conflicts weeklyConflictDetector,
	logger *zap.Logger,
	limit int,
) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if limit <= 0 {
		limit = 10
	}
	return &AvailabilityService{
		activities:  activities,
		slots:       slots,
		classrooms:  classrooms,
		enrollments: enrollments,
		conflicts:   conflicts,
		logger:      logger,
		limit:       limit,
	}
}

// Check reports whether one classroom can host the activity's weekly slots.
func (s *AvailabilityService) Check(ctx context.Context, activityID, classroomID string) (*models.AvailabilityReport, error) {
	activitySlots, enrolled, err := s.loadActivity(ctx, activityID)
	if err != nil {
		return nil, err
	}

	classroom, err := s.classrooms.FindByID(ctx, classroomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "classroom not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classroom")
	}

	conflicts, err := s.conflicts.DetectWeeklyConflicts(ctx, classroomID, activitySlots, activityID)
	if err != nil {
		return nil, err
	}

	report := &models.AvailabilityReport{
		ActivityID:  activityID,
		ClassroomID: classroomID,
		Enrolled:    enrolled,
		Capacity:    classroom.Capacity,
		Conflicts:   conflicts,
	}
	report.Available = classroom.Active && len(conflicts) == 0 && enrolled <= classroom.Capacity
	return report, nil
}

// Suggest ranks active classrooms that can host the activity: zero weekly
// conflicts and capacity covering the current enrollment, tightest fit
// first. An empty list is a valid answer.
func (s *AvailabilityService) Suggest(ctx context.Context, activityID string, filters SuggestionFilters) ([]models.ClassroomSuggestion, error) {
	activitySlots, enrolled, err := s.loadActivity(ctx, activityID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.classrooms.ListActive(ctx, filters.Category, filters.MinCapacity)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list candidate classrooms")
	}

	suggestions := make([]models.ClassroomSuggestion, 0, len(candidates))
	for _, classroom := range candidates {
		if classroom.Capacity < enrolled {
			continue
		}
		conflicts, err := s.conflicts.DetectWeeklyConflicts(ctx, classroom.ID, activitySlots, activityID)
		if err != nil {
			return nil, err
		}
		if len(conflicts) > 0 {
			continue
		}
		suggestions = append(suggestions, models.ClassroomSuggestion{
			Classroom:  classroom,
			Enrolled:   enrolled,
			SpareSeats: classroom.Capacity - enrolled,
		})
		if len(suggestions) >= s.limit {
			break
		}
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Classroom.Capacity < suggestions[j].Classroom.Capacity
	})
	return suggestions, nil
}

func (s *AvailabilityService) loadActivity(ctx context.Context, activityID string) ([]models.WeeklySlot, int, error) {
	activity, err := s.activities.FindByID(ctx, activityID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, appErrors.Clone(appErrors.ErrNotFound, "activity not found")
		}
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity")
	}
	if !activity.Active {
		return nil, 0, appErrors.Clone(appErrors.ErrInvalidState, "activity is not active")
	}

	slots, err := s.slots.ListActiveByActivity(ctx, activityID)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity slots")
	}
	if len(slots) == 0 {
		return nil, 0, appErrors.Clone(appErrors.ErrInvalidState, "activity has no weekly schedule")
	}

	enrolled, err := s.enrollments.CountActiveByActivity(ctx, activityID)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrollments")
	}
	return slots, enrolled, nil
}
