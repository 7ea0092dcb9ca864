package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubsuite/club-api/internal/models"
)

func reservationRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "classroom_id", "teacher_id", "activity_id", "starts_at", "ends_at", "notes", "created_at", "updated_at"}).
		AddRow("res-1", "room-1", "teach-1", nil, now, now.Add(time.Hour), "", now, now)
}

func TestReservationRepositoryListByClassroom(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewReservationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, classroom_id, teacher_id, activity_id, starts_at, ends_at, notes, created_at, updated_at FROM reservations WHERE classroom_id = $1 ORDER BY starts_at ASC")).
		WithArgs("room-1").
		WillReturnRows(reservationRows())

	reservations, err := repo.ListByClassroom(context.Background(), "room-1")
	require.NoError(t, err)
	assert.Len(t, reservations, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepositoryListByTeacherFrom(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewReservationRepository(db)

	from := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM reservations WHERE teacher_id = $1 AND ends_at >= $2")).
		WithArgs("teach-1", from).
		WillReturnRows(reservationRows())

	reservations, err := repo.ListByTeacherFrom(context.Background(), "teach-1", from)
	require.NoError(t, err)
	assert.Len(t, reservations, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepositoryCreateAndDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewReservationRepository(db)

	mock.ExpectExec("INSERT INTO reservations").
		WillReturnResult(sqlmock.NewResult(1, 1))

	reservation := &models.Reservation{
		ClassroomID: "room-1",
		TeacherID:   "teach-1",
		StartsAt:    time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC),
		EndsAt:      time.Date(2024, 3, 4, 11, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Create(context.Background(), reservation))
	assert.NotEmpty(t, reservation.ID)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM reservations WHERE id = $1")).
		WithArgs("res-1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Delete(context.Background(), "res-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepositoryCountByClassroom(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewReservationRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*), COUNT(*) FILTER (WHERE ends_at >= $2) FROM reservations WHERE classroom_id = $1")).
		WithArgs("room-1", now).
		WillReturnRows(sqlmock.NewRows([]string{"count", "count"}).AddRow(7, 2))

	total, upcoming, err := repo.CountByClassroom(context.Background(), "room-1", now)
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	assert.Equal(t, 2, upcoming)
	assert.NoError(t, mock.ExpectationsWereMet())
}
