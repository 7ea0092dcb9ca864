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

// ReservationHandler wires classroom bookings to HTTP routes.
type ReservationHandler struct {
	reservations *service.ReservationService
	occupancy    *service.OccupancyService
}

// NewReservationHandler constructs a new ReservationHandler.
func NewReservationHandler(reservations *service.ReservationService, occupancy *service.OccupancyService) *ReservationHandler {
	return &ReservationHandler{reservations: reservations, occupancy: occupancy}
}

// List godoc
// @Summary List reservations
// @Tags Reservations
// @Produce json
// @Param classroom_id query string false "Filter by classroom"
// @Param teacher_id query string false "Filter by teacher"
// @Param activity_id query string false "Filter by activity"
// @Param from query string false "RFC3339 lower bound"
// @Param to query string false "RFC3339 upper bound"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /reservations [get]
func (h *ReservationHandler) List(c *gin.Context) {
	filter := models.ReservationFilter{
		ClassroomID: c.Query("classroom_id"),
		TeacherID:   c.Query("teacher_id"),
		ActivityID:  c.Query("activity_id"),
	}
	if from := c.Query("from"); from != "" {
		if ts, err := time.Parse(time.RFC3339, from); err == nil {
			filter.From = &ts
		}
	}
	if to := c.Query("to"); to != "" {
		if ts, err := time.Parse(time.RFC3339, to); err == nil {
			filter.To = &ts
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	reservations, pagination, err := h.reservations.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reservations, pagination)
}

// Create godoc
// @Summary Book a classroom
// @Tags Reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateReservationRequest true "Reservation payload"
// @Success 201 {object} response.Envelope
// @Router /reservations [post]
func (h *ReservationHandler) Create(c *gin.Context) {
	var req service.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reservation payload"))
		return
	}

	reservation, err := h.reservations.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.occupancy.InvalidateClassroom(c.Request.Context(), reservation.ClassroomID)
	response.Created(c, reservation)
}

// CreateRecurring godoc
// @Summary Book a repeating series of reservations
// @Tags Reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.RecurringReservationRequest true "Recurring payload"
// @Success 207 {object} response.Envelope
// @Router /reservations/recurring [post]
func (h *ReservationHandler) CreateRecurring(c *gin.Context) {
	var req service.RecurringReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid recurring payload"))
		return
	}

	result, err := h.reservations.CreateRecurring(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.occupancy.InvalidateClassroom(c.Request.Context(), req.ClassroomID)

	status := http.StatusCreated
	if len(result.Errors) > 0 {
		status = http.StatusMultiStatus
	}
	response.JSON(c, status, result, nil)
}

// Update godoc
// @Summary Reschedule a reservation
// @Tags Reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Param payload body service.CreateReservationRequest true "Reservation payload"
// @Success 200 {object} response.Envelope
// @Router /reservations/{id} [put]
func (h *ReservationHandler) Update(c *gin.Context) {
	var req service.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reservation payload"))
		return
	}

	reservation, err := h.reservations.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.occupancy.InvalidateClassroom(c.Request.Context(), reservation.ClassroomID)
	response.JSON(c, http.StatusOK, reservation, nil)
}

// Cancel godoc
// @Summary Cancel a reservation
// @Tags Reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 204 {object} nil
// @Router /reservations/{id} [delete]
func (h *ReservationHandler) Cancel(c *gin.Context) {
	if err := h.reservations.Cancel(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
