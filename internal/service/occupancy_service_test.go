package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubsuite/club-api/internal/models"
	appErrors "github.com/clubsuite/club-api/pkg/errors"
)

type mockOccupancyAssignments struct {
	assignments []models.Assignment
	total       int
	active      int
}

func (m *mockOccupancyAssignments) ListActiveByClassroom(ctx context.Context, classroomID, excludeActivityID string) ([]models.Assignment, error) {
	var result []models.Assignment
	for _, a := range m.assignments {
		if a.ClassroomID == classroomID && a.Active {
			result = append(result, a)
		}
	}
	return result, nil
}

func (m *mockOccupancyAssignments) CountByClassroom(ctx context.Context, classroomID string) (int, int, error) {
	return m.total, m.active, nil
}

type mockOccupancyReservations struct {
	total    int
	upcoming int
}

func (m *mockOccupancyReservations) CountByClassroom(ctx context.Context, classroomID string, now time.Time) (int, int, error) {
	return m.total, m.upcoming, nil
}

func newOccupancyFixture() *OccupancyService {
	classrooms := &mockClassroomFinder{classrooms: map[string]models.Classroom{
		"room-1": {ID: "room-1", Name: "Main Hall", Capacity: 30, Active: true},
	}}
	assignments := &mockOccupancyAssignments{
		assignments: []models.Assignment{
			{ID: "as-1", ActivityID: "chess", ClassroomID: "room-1", Active: true},
			{ID: "as-2", ActivityID: "robotics", ClassroomID: "room-1", Active: true},
		},
		total:  3,
		active: 2,
	}
	slots := &mockSlotLister{slots: map[string][]models.WeeklySlot{
		"chess": {
			{ID: "sl-1", ActivityID: "chess", Weekday: 2, StartTime: "10:00", EndTime: "12:00", Active: true},
			{ID: "sl-2", ActivityID: "chess", Weekday: 4, StartTime: "15:00", EndTime: "16:00", Active: true},
		},
		"robotics": {
			{ID: "sl-3", ActivityID: "robotics", Weekday: 2, StartTime: "13:00", EndTime: "14:00", Active: true},
		},
	}}
	activities := &mockActivityFinder{activities: map[string]models.Activity{
		"chess":    {ID: "chess", Name: "Chess Club", Active: true},
		"robotics": {ID: "robotics", Name: "Robotics", Active: true},
	}}
	reservations := &mockOccupancyReservations{total: 5, upcoming: 2}
	return NewOccupancyService(classrooms, assignments, slots, activities, reservations, nil, nil)
}

func TestOccupancySummaryCounts(t *testing.T) {
	svc := newOccupancyFixture()
	report, err := svc.Summary(context.Background(), "room-1", false)
	require.NoError(t, err)
	assert.Equal(t, "Main Hall", report.ClassroomName)
	assert.Equal(t, 3, report.TotalAssignments)
	assert.Equal(t, 2, report.ActiveAssignments)
	assert.Equal(t, 1, report.InactiveAssignments)
	assert.Equal(t, 5, report.TotalReservations)
	assert.Equal(t, 2, report.UpcomingReservations)
	assert.Nil(t, report.WeekdayBreakdown)
}

func TestOccupancySummaryBreakdown(t *testing.T) {
	svc := newOccupancyFixture()
	report, err := svc.Summary(context.Background(), "room-1", true)
	require.NoError(t, err)
	// Tuesday carries two slots, Thursday one; days come out sorted.
	require.Len(t, report.WeekdayBreakdown, 2)
	tuesday := report.WeekdayBreakdown[0]
	assert.Equal(t, 2, tuesday.Weekday)
	require.Len(t, tuesday.Slots, 2)
	assert.Equal(t, "Chess Club", tuesday.Slots[0].ActivityName)
	assert.Equal(t, "10:00", tuesday.Slots[0].StartTime)
	assert.Equal(t, "Robotics", tuesday.Slots[1].ActivityName)
	assert.Equal(t, 4, report.WeekdayBreakdown[1].Weekday)
}

func TestOccupancySummaryUnknownClassroom(t *testing.T) {
	svc := newOccupancyFixture()
	_, err := svc.Summary(context.Background(), "missing", false)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestOccupancyExportCSV(t *testing.T) {
	svc := newOccupancyFixture()
	payload, contentType, err := svc.Export(context.Background(), "room-1", "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)
	assert.True(t, bytes.Contains(payload, []byte("total_assignments")))
	assert.True(t, bytes.Contains(payload, []byte("Chess Club 10:00-12:00")))
}

func TestOccupancyExportPDF(t *testing.T) {
	svc := newOccupancyFixture()
	payload, contentType, err := svc.Export(context.Background(), "room-1", "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
	assert.NotEmpty(t, payload)
}

func TestOccupancyExportUnknownFormat(t *testing.T) {
	svc := newOccupancyFixture()
	_, _, err := svc.Export(context.Background(), "room-1", "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
