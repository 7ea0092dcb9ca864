package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/clubsuite/club-api/internal/service"
	appErrors "github.com/clubsuite/club-api/pkg/errors"
	"github.com/clubsuite/club-api/pkg/response"
)

// AvailabilityHandler wires availability queries to HTTP routes.
type AvailabilityHandler struct {
	availability *service.AvailabilityService
}

// NewAvailabilityHandler constructs a new AvailabilityHandler.
func NewAvailabilityHandler(availability *service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availability: availability}
}

// Check godoc
// @Summary Check whether a classroom can host an activity
// @Tags Availability
// @Produce json
// @Param activity_id query string true "Activity ID"
// @Param classroom_id query string true "Classroom ID"
// @Success 200 {object} response.Envelope
// @Router /availability/check [get]
func (h *AvailabilityHandler) Check(c *gin.Context) {
	activityID := c.Query("activity_id")
	classroomID := c.Query("classroom_id")
	if activityID == "" || classroomID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "activity_id and classroom_id are required"))
		return
	}

	report, err := h.availability.Check(c.Request.Context(), activityID, classroomID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Suggest godoc
// @Summary Suggest classrooms able to host an activity
// @Tags Availability
// @Produce json
// @Param activity_id query string true "Activity ID"
// @Param min_capacity query int false "Minimum capacity"
// @Param category query string false "Classroom category"
// @Success 200 {object} response.Envelope
// @Router /availability/suggestions [get]
func (h *AvailabilityHandler) Suggest(c *gin.Context) {
	activityID := c.Query("activity_id")
	if activityID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "activity_id is required"))
		return
	}

	filters := service.SuggestionFilters{Category: c.Query("category")}
	if min, err := strconv.Atoi(c.Query("min_capacity")); err == nil {
		filters.MinCapacity = min
	}

	suggestions, err := h.availability.Suggest(c.Request.Context(), activityID, filters)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, suggestions, nil)
}
