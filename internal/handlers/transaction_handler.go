package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/smartdebt-api/internal/ledger"
	"github.com/sjperalta/smartdebt-api/internal/models"
	"github.com/sjperalta/smartdebt-api/internal/services"
)

// TransactionHandler records ledger entries and lists the transaction history
type TransactionHandler struct {
	ledger    *services.LedgerService
	dashboard *services.DashboardService
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(ledgerSvc *services.LedgerService, dashboard *services.DashboardService) *TransactionHandler {
	return &TransactionHandler{ledger: ledgerSvc, dashboard: dashboard}
}

// RecordTransactionRequest records an entry against debtor_id, or against a debtor created
// in the same step when new_debtor is set
type RecordTransactionRequest struct {
	DebtorID  string                 `json:"debtor_id"`
	Amount    int64                  `json:"amount"`
	Type      models.TransactionType `json:"type"`
	Date      string                 `json:"date"`
	Note      string                 `json:"note"`
	NewDebtor *CreateDebtorRequest   `json:"new_debtor,omitempty"`
}

// RecordTransactionResponse carries the entry and the debtor's new balance
type RecordTransactionResponse struct {
	Transaction models.Transaction `json:"transaction"`
	Debtor      models.Debtor      `json:"debtor"`
}

// @Summary List transactions
// @Description Transaction history, newest first, optionally for one debtor
// @Tags Transactions
// @Produce json
// @Security BearerAuth
// @Param debtor_id query string false "Debtor ID"
// @Param limit query int false "Maximum entries (0 = all)"
// @Success 200 {array} services.TransactionView
// @Router /transactions [get]
func (h *TransactionHandler) Index(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(c, &ledger.ValidationError{Field: "limit", Message: "limit không hợp lệ"})
			return
		}
		limit = n
	}
	c.JSON(http.StatusOK, h.dashboard.History(c.Query("debtor_id"), limit))
}

// @Summary Record transaction
// @Description Appends a ledger entry and updates the debtor's balance. With new_debtor the debtor is created in the same step.
// @Tags Transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body RecordTransactionRequest true "Transaction"
// @Success 201 {object} RecordTransactionResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	var req RecordTransactionRequest
	if err := BindNestedOrFlat(c, "transaction", &req); err != nil {
		badRequest(c, err)
		return
	}

	in := ledger.NewTransaction{
		DebtorID: req.DebtorID,
		Amount:   req.Amount,
		Type:     req.Type,
		Note:     req.Note,
	}
	if req.Date != "" {
		date, err := models.ParseLedgerDate(req.Date)
		if err != nil {
			respondError(c, &ledger.ValidationError{Field: "date", Message: "Ngày giao dịch không hợp lệ"})
			return
		}
		in.Date = date
	}

	var (
		tx     models.Transaction
		debtor models.Debtor
		err    error
	)
	if req.NewDebtor != nil {
		tx, debtor, err = h.ledger.RecordWithNewDebtor(c.Request.Context(), req.NewDebtor.toInput(), in)
	} else {
		tx, debtor, err = h.ledger.RecordTransaction(c.Request.Context(), in)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, RecordTransactionResponse{Transaction: tx, Debtor: debtor})
}
