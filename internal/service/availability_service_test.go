package service

import (
	"context"
	"database/sql"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubsuite/club-api/internal/models"
	appErrors "github.com/clubsuite/club-api/pkg/errors"
)

type mockClassroomDirectory struct {
	classrooms map[string]models.Classroom
}

func (m *mockClassroomDirectory) FindByID(ctx context.Context, id string) (*models.Classroom, error) {
	if c, ok := m.classrooms[id]; ok {
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockClassroomDirectory) ListActive(ctx context.Context, category string, minCapacity int) ([]models.Classroom, error) {
	var result []models.Classroom
	for _, c := range m.classrooms {
		if !c.Active {
			continue
		}
		if category != "" && c.Category != category {
			continue
		}
		if minCapacity > 0 && c.Capacity < minCapacity {
			continue
		}
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Capacity < result[j].Capacity })
	return result, nil
}

// mockRoomConflicts reports conflicts only for the listed classrooms.
type mockRoomConflicts struct {
	busyRooms map[string][]models.WeeklyConflict
}

func (m *mockRoomConflicts) DetectWeeklyConflicts(ctx context.Context, classroomID string, candidates []models.WeeklySlot, excludeActivityID string) ([]models.WeeklyConflict, error) {
	return m.busyRooms[classroomID], nil
}

type availabilityFixture struct {
	classrooms  *mockClassroomDirectory
	enrollments *mockEnrollmentCounter
	conflicts   *mockRoomConflicts
	svc         *AvailabilityService
}

func newAvailabilityFixture() *availabilityFixture {
	f := &availabilityFixture{
		classrooms: &mockClassroomDirectory{classrooms: map[string]models.Classroom{
			"small":  {ID: "small", Name: "Studio", Capacity: 12, Active: true},
			"medium": {ID: "medium", Name: "Lab", Capacity: 20, Category: "lab", Active: true},
			"large":  {ID: "large", Name: "Main Hall", Capacity: 60, Active: true},
			"closed": {ID: "closed", Name: "Annex", Capacity: 100, Active: false},
		}},
		enrollments: &mockEnrollmentCounter{counts: map[string]int{"chess": 15}},
		conflicts:   &mockRoomConflicts{busyRooms: map[string][]models.WeeklyConflict{}},
	}
	activities := &mockActivityFinder{activities: map[string]models.Activity{
		"chess": {ID: "chess", Name: "Chess Club", MaxEnrollment: 40, Active: true},
	}}
	slots := &mockSlotLister{slots: map[string][]models.WeeklySlot{
		"chess": {{ID: "sl-1", ActivityID: "chess", Weekday: 2, StartTime: "10:00", EndTime: "12:00", Active: true}},
	}}
	f.svc = NewAvailabilityService(activities, slots, f.classrooms, f.enrollments, f.conflicts, nil, 0)
	return f
}

func TestAvailabilityCheckAvailable(t *testing.T) {
	f := newAvailabilityFixture()
	report, err := f.svc.Check(context.Background(), "chess", "large")
	require.NoError(t, err)
	assert.True(t, report.Available)
	assert.Equal(t, 15, report.Enrolled)
	assert.Equal(t, 60, report.Capacity)
	assert.Empty(t, report.Conflicts)
}

func TestAvailabilityCheckConflicted(t *testing.T) {
	f := newAvailabilityFixture()
	f.conflicts.busyRooms["large"] = []models.WeeklyConflict{
		{ActivityID: "robotics", ClassroomID: "large", Weekday: 2, StartTime: "11:00", EndTime: "13:00"},
	}

	report, err := f.svc.Check(context.Background(), "chess", "large")
	require.NoError(t, err)
	assert.False(t, report.Available)
	assert.Len(t, report.Conflicts, 1)
}

func TestAvailabilityCheckUndersizedRoom(t *testing.T) {
	f := newAvailabilityFixture()
	report, err := f.svc.Check(context.Background(), "chess", "small")
	require.NoError(t, err)
	assert.False(t, report.Available)
	assert.Empty(t, report.Conflicts)
}

func TestAvailabilityCheckInactiveClassroom(t *testing.T) {
	f := newAvailabilityFixture()
	report, err := f.svc.Check(context.Background(), "chess", "closed")
	require.NoError(t, err)
	assert.False(t, report.Available)
}

func TestSuggestRanksTightestFitFirst(t *testing.T) {
	f := newAvailabilityFixture()
	suggestions, err := f.svc.Suggest(context.Background(), "chess", SuggestionFilters{})
	require.NoError(t, err)
	// small (12 seats) cannot hold 15 members; closed is inactive.
	require.Len(t, suggestions, 2)
	assert.Equal(t, "medium", suggestions[0].Classroom.ID)
	assert.Equal(t, 5, suggestions[0].SpareSeats)
	assert.Equal(t, "large", suggestions[1].Classroom.ID)
}

func TestSuggestSkipsConflictedRooms(t *testing.T) {
	f := newAvailabilityFixture()
	f.conflicts.busyRooms["medium"] = []models.WeeklyConflict{
		{ActivityID: "robotics", ClassroomID: "medium", Weekday: 2, StartTime: "10:00", EndTime: "11:00"},
	}

	suggestions, err := f.svc.Suggest(context.Background(), "chess", SuggestionFilters{})
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "large", suggestions[0].Classroom.ID)
}

func TestSuggestHonorsFilters(t *testing.T) {
	f := newAvailabilityFixture()
	suggestions, err := f.svc.Suggest(context.Background(), "chess", SuggestionFilters{Category: "lab"})
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "medium", suggestions[0].Classroom.ID)
}

func TestSuggestEmptyIsValid(t *testing.T) {
	f := newAvailabilityFixture()
	f.enrollments.counts["chess"] = 500
	suggestions, err := f.svc.Suggest(context.Background(), "chess", SuggestionFilters{})
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}

func TestSuggestActivityWithoutScheduleRejected(t *testing.T) {
	f := newAvailabilityFixture()
	activities := &mockActivityFinder{activities: map[string]models.Activity{
		"idle": {ID: "idle", Name: "Idle", Active: true},
	}}
	slots := &mockSlotLister{slots: map[string][]models.WeeklySlot{}}
	f.svc = NewAvailabilityService(activities, slots, f.classrooms, f.enrollments, f.conflicts, nil, 0)

	_, err := f.svc.Suggest(context.Background(), "idle", SuggestionFilters{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)
}
