package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/clubsuite/club-api/internal/models"
	"github.com/clubsuite/club-api/internal/service"
	appErrors "github.com/clubsuite/club-api/pkg/errors"
	"github.com/clubsuite/club-api/pkg/response"
)

// ClassroomHandler wires classroom management to HTTP routes.
type ClassroomHandler struct {
	classrooms *service.ClassroomService
	occupancy  *service.OccupancyService
}

// NewClassroomHandler constructs a new ClassroomHandler.
func NewClassroomHandler(classrooms *service.ClassroomService, occupancy *service.OccupancyService) *ClassroomHandler {
	return &ClassroomHandler{classrooms: classrooms, occupancy: occupancy}
}

// List godoc
// @Summary List classrooms
// @Tags Classrooms
// @Produce json
// @Param category query string false "Filter by category"
// @Param min_capacity query int false "Minimum capacity"
// @Param active query bool false "Only active classrooms"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param sort query string false "Sort field (name,capacity,category,created_at)"
// @Param order query string false "Sort order (asc/desc)"
// @Success 200 {object} response.Envelope
// @Router /classrooms [get]
func (h *ClassroomHandler) List(c *gin.Context) {
	filter := models.ClassroomFilter{
		Category:   strings.TrimSpace(c.Query("category")),
		ActiveOnly: c.Query("active") == "true",
		SortBy:     c.Query("sort"),
		SortOrder:  c.Query("order"),
	}
	if min, err := strconv.Atoi(c.Query("min_capacity")); err == nil {
		filter.MinCapacity = min
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	classrooms, pagination, err := h.classrooms.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classrooms, pagination)
}

// Get godoc
// @Summary Get classroom detail
// @Tags Classrooms
// @Produce json
// @Param id path string true "Classroom ID"
// @Success 200 {object} response.Envelope
// @Router /classrooms/{id} [get]
func (h *ClassroomHandler) Get(c *gin.Context) {
	classroom, err := h.classrooms.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classroom, nil)
}

// Create godoc
// @Summary Register a classroom
// @Tags Classrooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateClassroomRequest true "Classroom payload"
// @Success 201 {object} response.Envelope
// @Router /classrooms [post]
func (h *ClassroomHandler) Create(c *gin.Context) {
	var req service.CreateClassroomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid classroom payload"))
		return
	}

	classroom, err := h.classrooms.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, classroom)
}

// Update godoc
// @Summary Update a classroom
// @Tags Classrooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Classroom ID"
// @Param payload body service.UpdateClassroomRequest true "Classroom payload"
// @Success 200 {object} response.Envelope
// @Router /classrooms/{id} [put]
func (h *ClassroomHandler) Update(c *gin.Context) {
	var req service.UpdateClassroomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid classroom payload"))
		return
	}

	classroom, err := h.classrooms.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.occupancy.InvalidateClassroom(c.Request.Context(), classroom.ID)
	response.JSON(c, http.StatusOK, classroom, nil)
}

// Deactivate godoc
// @Summary Deactivate a classroom
// @Tags Classrooms
// @Produce json
// @Security BearerAuth
// @Param id path string true "Classroom ID"
// @Success 204 {object} nil
// @Router /classrooms/{id} [delete]
func (h *ClassroomHandler) Deactivate(c *gin.Context) {
	id := c.Param("id")
	if err := h.classrooms.Deactivate(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	h.occupancy.InvalidateClassroom(c.Request.Context(), id)
	response.NoContent(c)
}
