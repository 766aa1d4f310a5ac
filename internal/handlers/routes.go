package handlers

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts every /api/v1 endpoint; auth guards all but health and login
func RegisterRoutes(api *gin.RouterGroup, h *Handlers, auth gin.HandlerFunc) {
	// Public routes
	api.GET("/health", h.Health.Index)
	api.POST("/auth/login", h.Auth.Login)

	// Protected routes
	protected := api.Group("")
	protected.Use(auth)
	{
		protected.POST("/auth/logout", h.Auth.Logout)
		protected.GET("/auth/session", h.Auth.Session)

		protected.GET("/dashboard", h.Dashboard.Show)

		debtors := protected.Group("/debtors")
		{
			debtors.GET("", h.Debtor.Index)
			debtors.POST("", h.Debtor.Create)
			debtors.GET("/:id", h.Debtor.Show)
			debtors.DELETE("/:id", h.Debtor.Delete)
			debtors.GET("/:id/statement.pdf", h.Debtor.Statement)
		}

		transactions := protected.Group("/transactions")
		{
			transactions.GET("", h.Transaction.Index)
			transactions.POST("", h.Transaction.Create)
		}

		settings := protected.Group("/settings")
		{
			settings.GET("/export.json", h.Settings.ExportJSON)
			settings.GET("/export.csv", h.Settings.ExportCSV)
			settings.GET("/export.xlsx", h.Settings.ExportXLSX)
			settings.GET("/report.pdf", h.Settings.ReportPDF)
			settings.POST("/export/sheets", h.Settings.ExportSheets)
			settings.POST("/backup/email", h.Settings.EmailBackup)
			settings.POST("/import", h.Settings.StageImport)
			settings.GET("/import/:id", h.Settings.ShowImport)
			settings.POST("/import/:id/confirm", h.Settings.ConfirmImport)
			settings.POST("/import/:id/cancel", h.Settings.CancelImport)
		}

		protected.POST("/insights", h.Insight.Create)
		protected.GET("/jobs/status", h.Job.Status)
	}
}
