package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/clubsuite/club-api/internal/models"
	appErrors "github.com/clubsuite/club-api/pkg/errors"
	"github.com/clubsuite/club-api/pkg/export"
)

type occupancyAssignmentRepository interface {
	ListActiveByClassroom(ctx context.Context, classroomID, excludeActivityID string) ([]models.Assignment, error)
	CountByClassroom(ctx context.Context, classroomID string) (total int, active int, err error)
}

type occupancyReservationRepository interface {
	CountByClassroom(ctx context.Context, classroomID string, now time.Time) (total int, upcoming int, err error)
}

// OccupancyService aggregates how occupied a classroom is, with a Redis
// read-through cache in front of the counting queries.
type OccupancyService struct {
	classrooms   assignmentClassroomRepository
	assignments  occupancyAssignmentRepository
	slots        assignmentSlotRepository
	activities   assignmentActivityRepository
	reservations occupancyReservationRepository
	cache        *CacheService
	csv          *export.CSVExporter
	pdf          *export.PDFExporter
	logger       *zap.Logger
	now          func() time.Time
}

// NewOccupancyService instantiates OccupancyService.
func NewOccupancyService(
	classrooms assignmentClassroomRepository,
	assignments occupancyAssignmentRepository,
	slots assignmentSlotRepository,
	activities assignmentActivityRepository,
	reservations occupancyReservationRepository,
	cache *CacheService,
	logger *zap.Logger,
) *OccupancyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OccupancyService{
		classrooms:   classrooms,
		assignments:  assignments,
		slots:        slots,
		activities:   activities,
		reservations: reservations,
		cache:        cache,
		csv:          export.NewCSVExporter(),
		pdf:          export.NewPDFExporter(),
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Summary computes the occupancy report for a classroom. includeBreakdown
// adds the per-weekday listing of active slots.
func (s *OccupancyService) Summary(ctx context.Context, classroomID string, includeBreakdown bool) (*models.OccupancyReport, error) {
	cacheKey := "occupancy:" + classroomID + ":" + strconv.FormatBool(includeBreakdown)
	var cached models.OccupancyReport
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	classroom, err := s.classrooms.FindByID(ctx, classroomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "classroom not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classroom")
	}

	totalAssignments, activeAssignments, err := s.assignments.CountByClassroom(ctx, classroomID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count assignments")
	}
	totalReservations, upcoming, err := s.reservations.CountByClassroom(ctx, classroomID, s.now())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count reservations")
	}

	report := &models.OccupancyReport{
		ClassroomID:          classroomID,
		ClassroomName:        classroom.Name,
		TotalAssignments:     totalAssignments,
		ActiveAssignments:    activeAssignments,
		InactiveAssignments:  totalAssignments - activeAssignments,
		TotalReservations:    totalReservations,
		UpcomingReservations: upcoming,
	}

	if includeBreakdown {
		breakdown, err := s.weekdayBreakdown(ctx, classroomID)
		if err != nil {
			return nil, err
		}
		report.WeekdayBreakdown = breakdown
	}

	_ = s.cache.Set(ctx, cacheKey, report, 0)
	return report, nil
}

// Export renders the occupancy report as CSV or PDF.
func (s *OccupancyService) Export(ctx context.Context, classroomID, format string) ([]byte, string, error) {
	report, err := s.Summary(ctx, classroomID, true)
	if err != nil {
		return nil, "", err
	}

	dataset := export.Dataset{
		Headers: []string{"metric", "value"},
		Rows: []map[string]string{
			{"metric": "classroom", "value": report.ClassroomName},
			{"metric": "total_assignments", "value": strconv.Itoa(report.TotalAssignments)},
			{"metric": "active_assignments", "value": strconv.Itoa(report.ActiveAssignments)},
			{"metric": "inactive_assignments", "value": strconv.Itoa(report.InactiveAssignments)},
			{"metric": "total_reservations", "value": strconv.Itoa(report.TotalReservations)},
			{"metric": "upcoming_reservations", "value": strconv.Itoa(report.UpcomingReservations)},
		},
	}
	for _, day := range report.WeekdayBreakdown {
		for _, slot := range day.Slots {
			dataset.Rows = append(dataset.Rows, map[string]string{
				"metric": fmt.Sprintf("weekday_%d_slot", day.Weekday),
				"value":  fmt.Sprintf("%s %s-%s", slot.ActivityName, slot.StartTime, slot.EndTime),
			})
		}
	}

	switch format {
	case "csv", "":
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return payload, "text/csv", nil
	case "pdf":
		payload, err := s.pdf.Render(dataset, fmt.Sprintf("Occupancy: %s", report.ClassroomName))
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format: "+format)
	}
}

// InvalidateClassroom drops cached occupancy for one classroom. Write paths
// call this after mutating its assignments or reservations.
func (s *OccupancyService) InvalidateClassroom(ctx context.Context, classroomID string) {
	if err := s.cache.Invalidate(ctx, "occupancy:"+classroomID+":*"); err != nil {
		s.logger.Warn("occupancy cache invalidation failed", zap.String("classroom_id", classroomID), zap.Error(err))
	}
}

func (s *OccupancyService) weekdayBreakdown(ctx context.Context, classroomID string) ([]models.WeekdaySlotLoad, error) {
	assignments, err := s.assignments.ListActiveByClassroom(ctx, classroomID, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}

	byDay := make(map[int][]models.OccupiedSlot)
	for _, assignment := range assignments {
		var activityName string
		if activity, err := s.activities.FindByID(ctx, assignment.ActivityID); err == nil {
			activityName = activity.Name
		}
		slots, err := s.slots.ListActiveByActivity(ctx, assignment.ActivityID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list activity slots")
		}
		for _, slot := range slots {
			byDay[slot.Weekday] = append(byDay[slot.Weekday], models.OccupiedSlot{
				ActivityID:   assignment.ActivityID,
				ActivityName: activityName,
				StartTime:    slot.StartTime,
				EndTime:      slot.EndTime,
			})
		}
	}

	days := make([]int, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Ints(days)

	breakdown := make([]models.WeekdaySlotLoad, 0, len(days))
	for _, day := range days {
		slots := byDay[day]
		sort.Slice(slots, func(i, j int) bool { return slots[i].StartTime < slots[j].StartTime })
		breakdown = append(breakdown, models.WeekdaySlotLoad{Weekday: day, Slots: slots})
	}
	return breakdown, nil
}
