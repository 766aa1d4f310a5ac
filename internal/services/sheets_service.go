package services

import (
	"context"
	"fmt"

	"github.com/sjperalta/smartdebt-api/internal/sheets"
	"github.com/sjperalta/smartdebt-api/pkg/logger"
)

// SheetsExportResult describes a completed push
type SheetsExportResult struct {
	UpdatedRange string `json:"updated_range"`
	Rows         int    `json:"rows"`
}

// SheetsService pushes the debtor table to a spreadsheet
type SheetsService struct {
	export *ExportService
	writer sheets.RowWriter
}

// NewSheetsService creates the service; a nil writer means the feature is off
func NewSheetsService(export *ExportService, writer sheets.RowWriter) *SheetsService {
	return &SheetsService{export: export, writer: writer}
}

func (s *SheetsService) Enabled() bool {
	return s.writer != nil
}

// Push replaces the sheet contents with header plus one row per debtor
func (s *SheetsService) Push(ctx context.Context) (*SheetsExportResult, error) {
	if s.writer == nil {
		return nil, fmt.Errorf("%w: google sheets", ErrNotConfigured)
	}
	rows := s.export.Rows()
	rng, err := s.writer.ReplaceRows(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("push to sheets: %w", err)
	}
	logger.Info("Debtors pushed to Google Sheets", "range", rng, "rows", len(rows)-1)
	return &SheetsExportResult{UpdatedRange: rng, Rows: len(rows) - 1}, nil
}
