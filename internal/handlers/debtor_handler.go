package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/smartdebt-api/internal/ledger"
	"github.com/sjperalta/smartdebt-api/internal/models"
	"github.com/sjperalta/smartdebt-api/internal/services"
)

// DebtorHandler serves the debtor list, detail and statement endpoints
type DebtorHandler struct {
	ledger    *services.LedgerService
	dashboard *services.DashboardService
	statement *services.StatementService
}

// NewDebtorHandler creates a new debtor handler
func NewDebtorHandler(ledgerSvc *services.LedgerService, dashboard *services.DashboardService, statement *services.StatementService) *DebtorHandler {
	return &DebtorHandler{ledger: ledgerSvc, dashboard: dashboard, statement: statement}
}

type CreateDebtorRequest struct {
	Name  string            `json:"name"`
	Phone string            `json:"phone"`
	Email string            `json:"email"`
	Type  models.DebtorType `json:"type"`
}

func (r CreateDebtorRequest) toInput() ledger.NewDebtor {
	return ledger.NewDebtor{Name: r.Name, Phone: r.Phone, Email: r.Email, Type: r.Type}
}

// @Summary List debtors
// @Description Lists counterparties in insertion order. search ignores Vietnamese tone marks on the name and matches phone substrings.
// @Tags Debtors
// @Produce json
// @Security BearerAuth
// @Param search query string false "Name or phone"
// @Param type query string false "CUSTOMER or SUPPLIER"
// @Success 200 {array} models.Debtor
// @Router /debtors [get]
func (h *DebtorHandler) Index(c *gin.Context) {
	typ := models.DebtorType(c.Query("type"))
	if typ != "" && !typ.Valid() {
		respondError(c, &ledger.ValidationError{Field: "type", Message: "Loại đối tác không hợp lệ"})
		return
	}
	c.JSON(http.StatusOK, h.dashboard.ListDebtors(c.Query("search"), typ))
}

// @Summary Create debtor
// @Description Adds a counterparty with a zero balance. The body may be flat or nested under "debtor".
// @Tags Debtors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateDebtorRequest true "Debtor"
// @Success 201 {object} models.Debtor
// @Failure 422 {object} ErrorResponse
// @Router /debtors [post]
func (h *DebtorHandler) Create(c *gin.Context) {
	var req CreateDebtorRequest
	if err := BindNestedOrFlat(c, "debtor", &req); err != nil {
		badRequest(c, err)
		return
	}

	debtor, err := h.ledger.CreateDebtor(c.Request.Context(), req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, debtor)
}

// @Summary Show debtor
// @Description Returns a debtor with its transactions, newest first
// @Tags Debtors
// @Produce json
// @Security BearerAuth
// @Param id path string true "Debtor ID"
// @Success 200 {object} services.DebtorDetail
// @Failure 404 {object} ErrorResponse
// @Router /debtors/{id} [get]
func (h *DebtorHandler) Show(c *gin.Context) {
	detail, err := h.dashboard.DebtorDetail(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// @Summary Delete debtor
// @Description Removes a debtor and its whole history. Unknown ids succeed.
// @Tags Debtors
// @Security BearerAuth
// @Param id path string true "Debtor ID"
// @Success 204
// @Router /debtors/{id} [delete]
func (h *DebtorHandler) Delete(c *gin.Context) {
	if err := h.ledger.DeleteDebtor(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Debtor statement
// @Description Renders the debtor's statement with running balance as PDF
// @Tags Debtors
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "Debtor ID"
// @Success 200 {file} binary
// @Failure 404 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /debtors/{id}/statement.pdf [get]
func (h *DebtorHandler) Statement(c *gin.Context) {
	data, name, err := h.statement.StatementPDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	sendFile(c, name, "application/pdf", data)
}
