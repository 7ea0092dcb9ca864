package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubsuite/club-api/internal/models"
	"github.com/clubsuite/club-api/internal/schedule"
	appErrors "github.com/clubsuite/club-api/pkg/errors"
)

type mockReservationRepo struct {
	byID    map[string]models.Reservation
	nextID  int
	created []models.Reservation
	deleted []string
}

func (m *mockReservationRepo) FindByID(ctx context.Context, id string) (*models.Reservation, error) {
	if r, ok := m.byID[id]; ok {
		return &r, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockReservationRepo) List(ctx context.Context, filter models.ReservationFilter) ([]models.Reservation, int, error) {
	var result []models.Reservation
	for _, r := range m.byID {
		result = append(result, r)
	}
	return result, len(result), nil
}

func (m *mockReservationRepo) Create(ctx context.Context, reservation *models.Reservation) error {
	if m.byID == nil {
		m.byID = make(map[string]models.Reservation)
	}
	m.nextID++
	reservation.ID = fmt.Sprintf("res-%d", m.nextID)
	m.byID[reservation.ID] = *reservation
	m.created = append(m.created, *reservation)
	return nil
}

func (m *mockReservationRepo) Update(ctx context.Context, reservation *models.Reservation) error {
	m.byID[reservation.ID] = *reservation
	return nil
}

func (m *mockReservationRepo) Delete(ctx context.Context, id string) error {
	delete(m.byID, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockTeacherFinder struct {
	teachers map[string]models.Teacher
}

func (m *mockTeacherFinder) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	if t, ok := m.teachers[id]; ok {
		return &t, nil
	}
	return nil, sql.ErrNoRows
}

// mockBookingDetector rejects any range overlapping one configured busy window.
type mockBookingDetector struct {
	busyFrom time.Time
	busyTo   time.Time
}

func (m *mockBookingDetector) DetectBookingConflicts(ctx context.Context, classroomID string, start, end time.Time, excludeReservationID string) ([]models.BookingConflict, error) {
	if m.busyFrom.IsZero() {
		return nil, nil
	}
	if start.Before(m.busyTo) && end.After(m.busyFrom) {
		return []models.BookingConflict{{ReservationID: "busy", ClassroomID: classroomID, StartsAt: m.busyFrom, EndsAt: m.busyTo}}, nil
	}
	return nil, nil
}

func (m *mockBookingDetector) DetectTeacherConflicts(ctx context.Context, teacherID string, start, end time.Time, excludeReservationID string) ([]models.BookingConflict, error) {
	return nil, nil
}

type reservationFixture struct {
	repo     *mockReservationRepo
	detector *mockBookingDetector
	svc      *ReservationService
}

func newReservationFixture() *reservationFixture {
	f := &reservationFixture{
		repo:     &mockReservationRepo{byID: map[string]models.Reservation{}},
		detector: &mockBookingDetector{},
	}
	classrooms := &mockClassroomFinder{classrooms: map[string]models.Classroom{
		"room-1": {ID: "room-1", Name: "Main Hall", Capacity: 30, Active: true},
	}}
	teachers := &mockTeacherFinder{teachers: map[string]models.Teacher{
		"t-1": {ID: "t-1", FullName: "A. Instructor", CanTeach: true},
	}}
	activities := &mockActivityFinder{activities: map[string]models.Activity{
		"chess": {ID: "chess", Name: "Chess Club", Active: true},
	}}
	f.svc = NewReservationService(f.repo, classrooms, teachers, activities, f.detector, passthroughUOW{}, nil, nil, 0)
	return f
}

func validBooking() CreateReservationRequest {
	return CreateReservationRequest{
		ClassroomID: "room-1",
		TeacherID:   "t-1",
		StartsAt:    time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC),
		EndsAt:      time.Date(2024, time.March, 4, 11, 0, 0, 0, time.UTC),
	}
}

func TestReservationCreateSucceeds(t *testing.T) {
	f := newReservationFixture()
	reservation, err := f.svc.Create(context.Background(), validBooking())
	require.NoError(t, err)
	assert.NotEmpty(t, reservation.ID)
	require.Len(t, f.repo.created, 1)
}

func TestReservationCreateRejectsOverlap(t *testing.T) {
	f := newReservationFixture()
	f.detector.busyFrom = time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)
	f.detector.busyTo = time.Date(2024, time.March, 4, 11, 0, 0, 0, time.UTC)

	req := validBooking()
	req.StartsAt = time.Date(2024, time.March, 4, 10, 30, 0, 0, time.UTC)
	req.EndsAt = time.Date(2024, time.March, 4, 11, 30, 0, 0, time.UTC)

	_, err := f.svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	var conflictErr *models.BookingConflictError
	require.True(t, errors.As(err, &conflictErr))
	assert.Len(t, conflictErr.Conflicts, 1)
}

func TestReservationCreateAllowsTouchingRange(t *testing.T) {
	f := newReservationFixture()
	f.detector.busyFrom = time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)
	f.detector.busyTo = time.Date(2024, time.March, 4, 11, 0, 0, 0, time.UTC)

	req := validBooking()
	req.StartsAt = time.Date(2024, time.March, 4, 11, 0, 0, 0, time.UTC)
	req.EndsAt = time.Date(2024, time.March, 4, 12, 0, 0, 0, time.UTC)

	_, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)
}

func TestReservationCreateRejectsInvertedRange(t *testing.T) {
	f := newReservationFixture()
	req := validBooking()
	req.StartsAt, req.EndsAt = req.EndsAt, req.StartsAt

	_, err := f.svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestReservationCreateRejectsUnavailableTeacher(t *testing.T) {
	f := newReservationFixture()
	classrooms := &mockClassroomFinder{classrooms: map[string]models.Classroom{
		"room-1": {ID: "room-1", Capacity: 30, Active: true},
	}}
	when := time.Now()
	teachers := &mockTeacherFinder{teachers: map[string]models.Teacher{
		"t-1": {ID: "t-1", CanTeach: true, DeactivatedAt: &when},
	}}
	f.svc = NewReservationService(f.repo, classrooms, teachers, &mockActivityFinder{}, f.detector, passthroughUOW{}, nil, nil, 0)

	_, err := f.svc.Create(context.Background(), validBooking())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)
}

func TestReservationUpdateExcludesSelf(t *testing.T) {
	f := newReservationFixture()
	original, err := f.svc.Create(context.Background(), validBooking())
	require.NoError(t, err)

	req := validBooking()
	req.StartsAt = time.Date(2024, time.March, 4, 10, 15, 0, 0, time.UTC)
	req.EndsAt = time.Date(2024, time.March, 4, 11, 15, 0, 0, time.UTC)

	updated, err := f.svc.Update(context.Background(), original.ID, req)
	require.NoError(t, err)
	assert.Equal(t, original.ID, updated.ID)
	assert.Equal(t, req.StartsAt, f.repo.byID[original.ID].StartsAt)
}

func TestReservationCancelLeavesSiblings(t *testing.T) {
	f := newReservationFixture()
	first, err := f.svc.Create(context.Background(), validBooking())
	require.NoError(t, err)

	second := validBooking()
	second.StartsAt = second.StartsAt.AddDate(0, 0, 7)
	second.EndsAt = second.EndsAt.AddDate(0, 0, 7)
	_, err = f.svc.Create(context.Background(), second)
	require.NoError(t, err)

	require.NoError(t, f.svc.Cancel(context.Background(), first.ID))
	assert.Len(t, f.repo.byID, 1)

	err = f.svc.Cancel(context.Background(), first.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCreateRecurringWeeklySeries(t *testing.T) {
	f := newReservationFixture()
	until := time.Date(2024, time.March, 25, 0, 0, 0, 0, time.UTC)
	req := RecurringReservationRequest{
		CreateReservationRequest: validBooking(),
		Rule: schedule.Rule{
			Frequency: schedule.FrequencyWeekly,
			Interval:  1,
			Until:     &until,
		},
	}

	result, err := f.svc.CreateRecurring(context.Background(), req)
	require.NoError(t, err)
	// Mondays March 4, 11, 18, 25 of 2024.
	require.Len(t, result.Created, 4)
	assert.Empty(t, result.Errors)
	assert.Equal(t, time.Date(2024, time.March, 25, 10, 0, 0, 0, time.UTC), result.Created[3].StartsAt)
}

func TestCreateRecurringPartialFailure(t *testing.T) {
	f := newReservationFixture()
	// The second occurrence (March 11) lands on a busy window.
	f.detector.busyFrom = time.Date(2024, time.March, 11, 10, 30, 0, 0, time.UTC)
	f.detector.busyTo = time.Date(2024, time.March, 11, 11, 30, 0, 0, time.UTC)

	until := time.Date(2024, time.March, 18, 0, 0, 0, 0, time.UTC)
	req := RecurringReservationRequest{
		CreateReservationRequest: validBooking(),
		Rule: schedule.Rule{
			Frequency: schedule.FrequencyWeekly,
			Interval:  1,
			Until:     &until,
		},
	}

	result, err := f.svc.CreateRecurring(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, result.Created, 2)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, appErrors.ErrConflict.Code, result.Errors[0].Code)
	assert.Equal(t, time.Date(2024, time.March, 11, 10, 0, 0, 0, time.UTC), result.Errors[0].StartsAt)
}

func TestCreateRecurringInvalidRule(t *testing.T) {
	f := newReservationFixture()
	req := RecurringReservationRequest{
		CreateReservationRequest: validBooking(),
		Rule:                     schedule.Rule{Frequency: "YEARLY", Interval: 1, Count: 3},
	}
	_, err := f.svc.CreateRecurring(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, f.repo.created)
}
