package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clubsuite/club-api/internal/service"
	"github.com/clubsuite/club-api/pkg/response"
)

// OccupancyHandler wires occupancy reporting to HTTP routes.
type OccupancyHandler struct {
	occupancy *service.OccupancyService
}

// NewOccupancyHandler constructs a new OccupancyHandler.
func NewOccupancyHandler(occupancy *service.OccupancyService) *OccupancyHandler {
	return &OccupancyHandler{occupancy: occupancy}
}

// Summary godoc
// @Summary Occupancy report for a classroom
// @Tags Occupancy
// @Produce json
// @Param id path string true "Classroom ID"
// @Param breakdown query bool false "Include per-weekday slot listing"
// @Success 200 {object} response.Envelope
// @Router /classrooms/{id}/occupancy [get]
func (h *OccupancyHandler) Summary(c *gin.Context) {
	includeBreakdown := c.Query("breakdown") == "true"
	report, err := h.occupancy.Summary(c.Request.Context(), c.Param("id"), includeBreakdown)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Export godoc
// @Summary Export the occupancy report as CSV or PDF
// @Tags Occupancy
// @Produce octet-stream
// @Param id path string true "Classroom ID"
// @Param format query string false "csv or pdf (default csv)"
// @Success 200 {file} byte
// @Router /classrooms/{id}/occupancy/export [get]
func (h *OccupancyHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	payload, contentType, err := h.occupancy.Export(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("occupancy-%s.%s", c.Param("id"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}
