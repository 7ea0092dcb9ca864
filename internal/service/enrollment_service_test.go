package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubsuite/club-api/internal/models"
	appErrors "github.com/clubsuite/club-api/pkg/errors"
)

type mockEnrollmentRepo struct {
	byActivity map[string][]models.Enrollment
	nextID     int
}

func (m *mockEnrollmentRepo) CountActiveByActivity(ctx context.Context, activityID string) (int, error) {
	count := 0
	for _, e := range m.byActivity[activityID] {
		if e.Status == models.EnrollmentStatusActive {
			count++
		}
	}
	return count, nil
}

func (m *mockEnrollmentRepo) ListByActivity(ctx context.Context, activityID string) ([]models.Enrollment, error) {
	return m.byActivity[activityID], nil
}

func (m *mockEnrollmentRepo) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if m.byActivity == nil {
		m.byActivity = make(map[string][]models.Enrollment)
	}
	m.nextID++
	enrollment.ID = fmt.Sprintf("en-%d", m.nextID)
	m.byActivity[enrollment.ActivityID] = append(m.byActivity[enrollment.ActivityID], *enrollment)
	return nil
}

func (m *mockEnrollmentRepo) MarkLeft(ctx context.Context, id string) error {
	for activityID, enrollments := range m.byActivity {
		for i, e := range enrollments {
			if e.ID == id {
				m.byActivity[activityID][i].Status = models.EnrollmentStatusLeft
				return nil
			}
		}
	}
	return nil
}

func newEnrollmentFixture(maxEnrollment int) (*EnrollmentService, *mockEnrollmentRepo) {
	repo := &mockEnrollmentRepo{byActivity: map[string][]models.Enrollment{}}
	activities := &mockActivityFinder{activities: map[string]models.Activity{
		"chess": {ID: "chess", Name: "Chess Club", MaxEnrollment: maxEnrollment, Active: true},
	}}
	return NewEnrollmentService(repo, activities, passthroughUOW{}, nil, nil), repo
}

func TestEnrollSucceeds(t *testing.T) {
	svc, repo := newEnrollmentFixture(2)
	enrollment, err := svc.Enroll(context.Background(), EnrollRequest{MemberID: "m-1", ActivityID: "chess"})
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusActive, enrollment.Status)
	assert.Len(t, repo.byActivity["chess"], 1)
}

func TestEnrollFullActivity(t *testing.T) {
	svc, repo := newEnrollmentFixture(1)
	repo.byActivity["chess"] = []models.Enrollment{
		{ID: "en-0", MemberID: "m-0", ActivityID: "chess", Status: models.EnrollmentStatusActive},
	}

	_, err := svc.Enroll(context.Background(), EnrollRequest{MemberID: "m-1", ActivityID: "chess"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrCapacity.Code, appErrors.FromError(err).Code)
	assert.Len(t, repo.byActivity["chess"], 1)
}

func TestEnrollInactiveActivity(t *testing.T) {
	repo := &mockEnrollmentRepo{byActivity: map[string][]models.Enrollment{}}
	activities := &mockActivityFinder{activities: map[string]models.Activity{
		"chess": {ID: "chess", Name: "Chess Club", MaxEnrollment: 10, Active: false},
	}}
	svc := NewEnrollmentService(repo, activities, passthroughUOW{}, nil, nil)

	_, err := svc.Enroll(context.Background(), EnrollRequest{MemberID: "m-1", ActivityID: "chess"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)
}

func TestLeaveMarksEnrollment(t *testing.T) {
	svc, repo := newEnrollmentFixture(5)
	repo.byActivity["chess"] = []models.Enrollment{
		{ID: "en-1", MemberID: "m-1", ActivityID: "chess", Status: models.EnrollmentStatusActive},
	}

	require.NoError(t, svc.Leave(context.Background(), "chess", "en-1"))
	assert.Equal(t, models.EnrollmentStatusLeft, repo.byActivity["chess"][0].Status)

	err := svc.Leave(context.Background(), "chess", "en-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)
}

func TestLeaveUnknownEnrollment(t *testing.T) {
	svc, _ := newEnrollmentFixture(5)
	err := svc.Leave(context.Background(), "chess", "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
