package services

import (
	"github.com/sjperalta/smartdebt-api/internal/ai"
	"github.com/sjperalta/smartdebt-api/internal/config"
	"github.com/sjperalta/smartdebt-api/internal/jobs"
	"github.com/sjperalta/smartdebt-api/internal/ledger"
	"github.com/sjperalta/smartdebt-api/internal/repository"
	"github.com/sjperalta/smartdebt-api/internal/sheets"
)

// Services holds all service instances
type Services struct {
	Ledger    *LedgerService
	Dashboard *DashboardService
	Import    *ImportService
	Export    *ExportService
	Statement *StatementService
	Insight   *InsightService
	Auth      *AuthService
	Email     *EmailService
	Sheets    *SheetsService
	Format    *Formatter
	Job       *JobService
}

// Adapters are the optional outbound integrations; nil fields disable the feature
type Adapters struct {
	Generator ai.TextGenerator
	Sheets    sheets.RowWriter
}

// NewServices creates all service instances
func NewServices(cfg *config.Config, repo repository.StateRepository, worker *jobs.Worker, adapters Adapters) (*Services, error) {
	provider, err := NewAuthProvider(cfg)
	if err != nil {
		return nil, err
	}

	format := NewFormatter(cfg.Location())
	ledgerSvc := NewLedgerService(repo, worker, ledger.New())
	exportSvc := NewExportService(ledgerSvc, format)

	return &Services{
		Ledger:    ledgerSvc,
		Dashboard: NewDashboardService(ledgerSvc, format),
		Import:    NewImportService(ledgerSvc, cfg.ImportSessionTTL),
		Export:    exportSvc,
		Statement: NewStatementService(ledgerSvc, format),
		Insight:   NewInsightService(ledgerSvc, adapters.Generator),
		Auth:      NewAuthService(provider, repo, cfg),
		Email:     NewEmailService(cfg, ledgerSvc, format),
		Sheets:    NewSheetsService(exportSvc, adapters.Sheets),
		Format:    format,
		Job:       NewJobService(worker),
	}, nil
}
