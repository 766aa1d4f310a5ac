package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/smartdebt-api/internal/services"
)

type InsightHandler struct {
	insight *services.InsightService
}

func NewInsightHandler(insight *services.InsightService) *InsightHandler {
	return &InsightHandler{insight: insight}
}

// @Summary AI analysis
// @Description Asks the language model for a short analysis of the current debts. Always 200; fallback is true when the model was unavailable.
// @Tags Insights
// @Produce json
// @Security BearerAuth
// @Success 200 {object} services.Insight
// @Router /insights [post]
func (h *InsightHandler) Create(c *gin.Context) {
	c.JSON(http.StatusOK, h.insight.Analyze(c.Request.Context()))
}
