package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/smartdebt-api/internal/services"
)

// SettingsHandler serves backup, export and import
type SettingsHandler struct {
	export  *services.ExportService
	imports *services.ImportService
	sheets  *services.SheetsService
	email   *services.EmailService
	jobs    *services.JobService
}

func NewSettingsHandler(export *services.ExportService, imports *services.ImportService, sheets *services.SheetsService, email *services.EmailService, jobs *services.JobService) *SettingsHandler {
	return &SettingsHandler{export: export, imports: imports, sheets: sheets, email: email, jobs: jobs}
}

type BackupEmailRequest struct {
	To []string `json:"to"`
}

func (h *SettingsHandler) download(c *gin.Context, contentType string, render func(context.Context) ([]byte, string, error)) {
	data, name, err := render(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	sendFile(c, name, contentType, data)
}

// @Summary JSON backup
// @Description Downloads the whole ledger as smartdebt-backup-YYYY-MM-DD.json
// @Tags Settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.AppState
// @Router /settings/export.json [get]
func (h *SettingsHandler) ExportJSON(c *gin.Context) {
	h.download(c, "application/json", h.export.BackupJSON)
}

// @Summary CSV export
// @Description Debtor list as UTF-8 CSV with BOM
// @Tags Settings
// @Produce text/csv
// @Security BearerAuth
// @Success 200 {file} binary
// @Router /settings/export.csv [get]
func (h *SettingsHandler) ExportCSV(c *gin.Context) {
	h.download(c, "text/csv; charset=utf-8", h.export.ExportCSV)
}

// @Summary Excel export
// @Description Debtor list as an XLSX workbook
// @Tags Settings
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} binary
// @Router /settings/export.xlsx [get]
func (h *SettingsHandler) ExportXLSX(c *gin.Context) {
	h.download(c, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", h.export.ExportXLSX)
}

// @Summary Summary report
// @Description One-page PDF with totals and the debtor table
// @Tags Settings
// @Produce application/pdf
// @Security BearerAuth
// @Success 200 {file} binary
// @Router /settings/report.pdf [get]
func (h *SettingsHandler) ReportPDF(c *gin.Context) {
	h.download(c, "application/pdf", h.export.ExportPDF)
}

// @Summary Push to Google Sheets
// @Description Replaces the configured sheet with the debtor table
// @Tags Settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} services.SheetsExportResult
// @Failure 503 {object} ErrorResponse
// @Router /settings/export/sheets [post]
func (h *SettingsHandler) ExportSheets(c *gin.Context) {
	res, err := h.sheets.Push(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Email backup
// @Description Queues a mail with the JSON backup to the configured or given recipients
// @Tags Settings
// @Accept json
// @Security BearerAuth
// @Param request body BackupEmailRequest false "Recipients"
// @Success 202
// @Failure 503 {object} ErrorResponse
// @Router /settings/backup/email [post]
func (h *SettingsHandler) EmailBackup(c *gin.Context) {
	var req BackupEmailRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	if err := h.jobs.QueueBackupEmail(h.email, req.To); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

// @Summary Stage import
// @Description Uploads a backup (multipart "file" or raw JSON body). Nothing changes until the import is confirmed.
// @Tags Settings
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Success 201 {object} services.StagedImport
// @Failure 400 {object} ErrorResponse
// @Router /settings/import [post]
func (h *SettingsHandler) StageImport(c *gin.Context) {
	name, data, err := readUpload(c)
	if err != nil {
		respondError(c, err)
		return
	}
	staged, err := h.imports.Stage(c.Request.Context(), name, data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, staged)
}

// @Summary Confirm import
// @Description Replaces the whole ledger with the staged backup
// @Tags Settings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Import ID"
// @Success 200 {object} models.ImportSession
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /settings/import/{id}/confirm [post]
func (h *SettingsHandler) ConfirmImport(c *gin.Context) {
	session, err := h.imports.Confirm(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// @Summary Cancel import
// @Description Discards a staged backup
// @Tags Settings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Import ID"
// @Success 200 {object} models.ImportSession
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /settings/import/{id}/cancel [post]
func (h *SettingsHandler) CancelImport(c *gin.Context) {
	session, err := h.imports.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// @Summary Show import
// @Description Returns a staged import's status
// @Tags Settings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Import ID"
// @Success 200 {object} models.ImportSession
// @Failure 404 {object} ErrorResponse
// @Router /settings/import/{id} [get]
func (h *SettingsHandler) ShowImport(c *gin.Context) {
	session, err := h.imports.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}
