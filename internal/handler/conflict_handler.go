package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clubsuite/club-api/internal/models"
	"github.com/clubsuite/club-api/internal/service"
	appErrors "github.com/clubsuite/club-api/pkg/errors"
	"github.com/clubsuite/club-api/pkg/response"
)

// ConflictHandler exposes the conflict detectors as read-only probe
// endpoints, so clients can test a slot or a booking window before
// committing to it.
type ConflictHandler struct {
	conflicts *service.ConflictService
}

// NewConflictHandler constructs a new ConflictHandler.
func NewConflictHandler(conflicts *service.ConflictService) *ConflictHandler {
	return &ConflictHandler{conflicts: conflicts}
}

// Weekly godoc
// @Summary Probe a weekly slot against a classroom's recurring schedule
// @Tags Conflicts
// @Produce json
// @Param id path string true "Classroom ID"
// @Param weekday query int true "Weekday (0 = Sunday)"
// @Param start_time query string true "Start time (HH:MM)"
// @Param end_time query string true "End time (HH:MM)"
// @Param exclude_activity_id query string false "Activity to exclude"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /classrooms/{id}/conflicts/weekly [get]
func (h *ConflictHandler) Weekly(c *gin.Context) {
	weekday, err := strconv.Atoi(c.Query("weekday"))
	if err != nil || weekday < 0 || weekday > 6 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "weekday must be an integer between 0 and 6"))
		return
	}
	start := c.Query("start_time")
	end := c.Query("end_time")
	if start == "" || end == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "start_time and end_time are required"))
		return
	}

	candidate := models.WeeklySlot{Weekday: weekday, StartTime: start, EndTime: end}
	conflicts, err := h.conflicts.DetectWeeklyConflicts(
		c.Request.Context(), c.Param("id"), []models.WeeklySlot{candidate}, c.Query("exclude_activity_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"conflicts": conflicts, "available": len(conflicts) == 0}, nil)
}

// Bookings godoc
// @Summary Probe a time range against a classroom's reservations
// @Tags Conflicts
// @Produce json
// @Param id path string true "Classroom ID"
// @Param starts_at query string true "RFC3339 range start"
// @Param ends_at query string true "RFC3339 range end"
// @Param exclude_reservation_id query string false "Reservation to exclude"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /classrooms/{id}/conflicts/bookings [get]
func (h *ConflictHandler) Bookings(c *gin.Context) {
	start, err := time.Parse(time.RFC3339, c.Query("starts_at"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "starts_at must be RFC3339"))
		return
	}
	end, err := time.Parse(time.RFC3339, c.Query("ends_at"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "ends_at must be RFC3339"))
		return
	}

	conflicts, err := h.conflicts.DetectBookingConflicts(
		c.Request.Context(), c.Param("id"), start, end, c.Query("exclude_reservation_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"conflicts": conflicts, "available": len(conflicts) == 0}, nil)
}
