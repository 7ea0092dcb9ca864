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

func classroomRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "name", "capacity", "location", "category", "active", "deactivated_at", "created_at", "updated_at"}).
		AddRow("room-1", "Sala 1", 20, "Planta baja", "standard", true, nil, now, now)
}

func TestClassroomRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassroomRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, capacity, location, category, active, deactivated_at, created_at, updated_at FROM classrooms WHERE 1=1 ORDER BY name ASC LIMIT 20 OFFSET 0")).
		WillReturnRows(classroomRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM classrooms WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.ClassroomFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassroomRepositoryListActiveFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassroomRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM classrooms WHERE active = TRUE AND category = $1 AND capacity >= $2 ORDER BY capacity ASC, name ASC")).
		WithArgs("standard", 15).
		WillReturnRows(classroomRows())

	list, err := repo.ListActive(context.Background(), "standard", 15)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassroomRepositoryCreateAndDeactivate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassroomRepository(db)

	mock.ExpectExec("INSERT INTO classrooms").
		WillReturnResult(sqlmock.NewResult(1, 1))

	classroom := &models.Classroom{Name: "Sala 2", Capacity: 30, Active: true}
	require.NoError(t, repo.Create(context.Background(), classroom))
	assert.NotEmpty(t, classroom.ID)

	mock.ExpectExec("UPDATE classrooms SET active = FALSE").
		WithArgs("room-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Deactivate(context.Background(), "room-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
