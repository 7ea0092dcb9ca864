package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clubsuite/club-api/internal/service"
	appErrors "github.com/clubsuite/club-api/pkg/errors"
	"github.com/clubsuite/club-api/pkg/response"
)

// AssignmentHandler wires classroom-activity assignments to HTTP routes.
type AssignmentHandler struct {
	assignments *service.AssignmentService
	occupancy   *service.OccupancyService
}

// NewAssignmentHandler constructs a new AssignmentHandler.
func NewAssignmentHandler(assignments *service.AssignmentService, occupancy *service.OccupancyService) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments, occupancy: occupancy}
}

// Validate godoc
// @Summary Dry-run the assignment checks for an activity and classroom
// @Tags Assignments
// @Produce json
// @Param activity_id query string true "Activity ID"
// @Param classroom_id query string true "Classroom ID"
// @Success 200 {object} response.Envelope
// @Router /assignments/validate [get]
func (h *AssignmentHandler) Validate(c *gin.Context) {
	activityID := c.Query("activity_id")
	classroomID := c.Query("classroom_id")
	if activityID == "" || classroomID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "activity_id and classroom_id are required"))
		return
	}

	decision, err := h.assignments.Validate(c.Request.Context(), activityID, classroomID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, decision, nil)
}

// Create godoc
// @Summary Assign a classroom to an activity
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateAssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Router /assignments [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	var req service.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload"))
		return
	}

	assignment, err := h.assignments.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.occupancy.InvalidateClassroom(c.Request.Context(), assignment.ClassroomID)
	response.Created(c, assignment)
}

// CreateBatch godoc
// @Summary Assign several classrooms to an activity, best effort
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.BatchAssignmentRequest true "Batch payload"
// @Success 201 {object} response.Envelope
// @Success 207 {object} response.Envelope
// @Router /assignments/batch [post]
func (h *AssignmentHandler) CreateBatch(c *gin.Context) {
	var req service.BatchAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch assignment payload"))
		return
	}

	result, err := h.assignments.CreateBatch(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	for _, created := range result.Created {
		h.occupancy.InvalidateClassroom(c.Request.Context(), created.ClassroomID)
	}
	status := http.StatusCreated
	if len(result.Errors) > 0 {
		status = http.StatusMultiStatus
	}
	response.JSON(c, status, result, nil)
}

// ListByActivity godoc
// @Summary List assignments of an activity
// @Tags Assignments
// @Produce json
// @Param activity_id query string true "Activity ID"
// @Success 200 {object} response.Envelope
// @Router /assignments [get]
func (h *AssignmentHandler) ListByActivity(c *gin.Context) {
	activityID := c.Query("activity_id")
	if activityID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "activity_id is required"))
		return
	}

	assignments, err := h.assignments.ListByActivity(c.Request.Context(), activityID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// Deactivate godoc
// @Summary Deactivate an assignment
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assignment ID"
// @Success 204 {object} nil
// @Router /assignments/{id} [delete]
func (h *AssignmentHandler) Deactivate(c *gin.Context) {
	assignment, err := h.assignments.Deactivate(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.occupancy.InvalidateClassroom(c.Request.Context(), assignment.ClassroomID)
	response.NoContent(c)
}

// Reactivate godoc
// @Summary Reactivate a deactivated assignment
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id}/reactivate [post]
func (h *AssignmentHandler) Reactivate(c *gin.Context) {
	assignment, err := h.assignments.Reactivate(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.occupancy.InvalidateClassroom(c.Request.Context(), assignment.ClassroomID)
	response.JSON(c, http.StatusOK, assignment, nil)
}

// Delete godoc
// @Summary Permanently remove an assignment
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assignment ID"
// @Success 204 {object} nil
// @Router /assignments/{id}/purge [delete]
func (h *AssignmentHandler) Delete(c *gin.Context) {
	assignment, err := h.assignments.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.occupancy.InvalidateClassroom(c.Request.Context(), assignment.ClassroomID)
	response.NoContent(c)
}
