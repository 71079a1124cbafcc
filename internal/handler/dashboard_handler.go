package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/library-portal-api/internal/dto"
	"github.com/noah-isme/library-portal-api/internal/models"
	"github.com/noah-isme/library-portal-api/pkg/response"
)

type statsProvider interface {
	Stats(ctx context.Context) (*models.DashboardStats, error)
}

// DashboardHandler exposes the console statistics endpoint.
type DashboardHandler struct {
	dashboard statsProvider
}

// NewDashboardHandler creates a new handler.
func NewDashboardHandler(dashboard statsProvider) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Stats godoc
// @Summary Console dashboard statistics
// @Description Totals, the 30-day registration count and the per-course split
// @Tags Console
// @Produce json
// @Security ServiceKey
// @Success 200 {object} dto.StatsResponse
// @Failure 403 {object} response.ErrorEnvelope
// @Router /dashboard-stats [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.dashboard.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.StatsResponse{Success: true, Stats: stats})
}
