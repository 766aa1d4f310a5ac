package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/smartdebt-api/internal/services"
)

type DashboardHandler struct {
	dashboard *services.DashboardService
}

func NewDashboardHandler(dashboard *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// @Summary Dashboard
// @Description Receivable, payable and net totals, seven-day activity, the five latest entries and the debt structure
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} services.DashboardSummary
// @Router /dashboard [get]
func (h *DashboardHandler) Show(c *gin.Context) {
	c.JSON(http.StatusOK, h.dashboard.Dashboard())
}
