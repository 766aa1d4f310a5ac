package handlers

import (
	"errors"
	"net/http"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/sjperalta/smartdebt-api/internal/ledger"
	"github.com/sjperalta/smartdebt-api/internal/services"
	"github.com/sjperalta/smartdebt-api/pkg/logger"
)

// Handlers holds all handler instances
type Handlers struct {
	Health      *HealthHandler
	Auth        *AuthHandler
	Debtor      *DebtorHandler
	Transaction *TransactionHandler
	Dashboard   *DashboardHandler
	Settings    *SettingsHandler
	Insight     *InsightHandler
	Job         *JobHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services) *Handlers {
	return &Handlers{
		Health:      NewHealthHandler(),
		Auth:        NewAuthHandler(svcs.Auth),
		Debtor:      NewDebtorHandler(svcs.Ledger, svcs.Dashboard, svcs.Statement),
		Transaction: NewTransactionHandler(svcs.Ledger, svcs.Dashboard),
		Dashboard:   NewDashboardHandler(svcs.Dashboard),
		Settings:    NewSettingsHandler(svcs.Export, svcs.Import, svcs.Sheets, svcs.Email, svcs.Job),
		Insight:     NewInsightHandler(svcs.Insight),
		Job:         NewJobHandler(svcs.Job),
	}
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// respondError maps domain and service errors onto HTTP statuses
func respondError(c *gin.Context, err error) {
	var verr *ledger.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: verr.Message, Field: verr.Field})
	case errors.Is(err, ledger.ErrReference), errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, ledger.ErrSchema), errors.Is(err, errBodyTooLarge):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, services.ErrInvalidState):
		c.JSON(http.StatusConflict, ErrorResponse{Error: services.ErrInvalidState.Error()})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: services.ErrUnauthorized.Error()})
	case errors.Is(err, services.ErrForbiddenMode):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: services.ErrForbiddenMode.Error()})
	case errors.Is(err, services.ErrNotConfigured):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: services.ErrNotConfigured.Error()})
	default:
		_ = c.Error(err)
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
		logger.Error("Request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Đã có lỗi xảy ra, vui lòng thử lại"})
	}
}

// badRequest answers malformed JSON
func badRequest(c *gin.Context, err error) {
	if errors.Is(err, errBodyTooLarge) {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Dữ liệu gửi lên không hợp lệ"})
}
