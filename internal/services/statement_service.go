package services

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/sjperalta/smartdebt-api/internal/models"
)

//go:embed templates/reports/*.html
var reportTemplates embed.FS

var statementTemplate = template.Must(template.ParseFS(reportTemplates, "templates/reports/debtor_statement.html"))

// StatementLine is one row of a debtor statement, oldest first
type StatementLine struct {
	Date           string
	TypeLabel      string
	Note           string
	Amount         string
	RunningBalance string
	Increase       bool
}

// StatementData feeds the statement template
type StatementData struct {
	Debtor         models.Debtor
	TypeLabel      string
	Balance        string
	BalanceInWords string
	GeneratedAt    string
	Lines          []StatementLine
}

// StatementService renders per-debtor account statements as PDF through wkhtmltopdf,
// which keeps full Vietnamese text unlike the core PDF fonts
type StatementService struct {
	ledger *LedgerService
	format *Formatter
	now    func() time.Time
}

func NewStatementService(ledgerSvc *LedgerService, format *Formatter) *StatementService {
	return &StatementService{ledger: ledgerSvc, format: format, now: time.Now}
}

// StatementPDF renders the statement of one debtor
func (s *StatementService) StatementPDF(ctx context.Context, debtorID string) ([]byte, string, error) {
	state := s.ledger.Snapshot()
	d, ok := state.FindDebtor(debtorID)
	if !ok {
		return nil, "", ErrNotFound
	}

	html, err := RenderStatementHTML(BuildStatement(state, d, s.now(), s.format))
	if err != nil {
		return nil, "", err
	}
	pdf, err := htmlToPDF(html)
	if err != nil {
		return nil, "", err
	}
	name := fmt.Sprintf("sao-ke-%s-%s.pdf", debtorID, s.now().UTC().Format("2006-01-02"))
	return pdf, name, nil
}

// BuildStatement lists the debtor's transactions in ledger order with the balance after each
func BuildStatement(state models.AppState, d models.Debtor, now time.Time, f *Formatter) StatementData {
	data := StatementData{
		Debtor:         d,
		TypeLabel:      d.Type.LongLabel(),
		Balance:        f.Currency(d.TotalBalance),
		BalanceInWords: AmountToWords(d.TotalBalance),
		GeneratedAt:    f.DateTime(now),
	}

	var running int64
	for _, t := range state.TransactionsFor(d.ID) {
		running += t.Effect()
		data.Lines = append(data.Lines, StatementLine{
			Date:           f.LedgerDate(t.Date),
			TypeLabel:      t.Type.Label(),
			Note:           t.Note,
			Amount:         f.Currency(t.Amount),
			RunningBalance: f.Currency(running),
			Increase:       t.Type == models.TransactionTypeIncrease,
		})
	}
	return data
}

// RenderStatementHTML executes the embedded statement template
func RenderStatementHTML(data StatementData) ([]byte, error) {
	var buf bytes.Buffer
	if err := statementTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

func htmlToPDF(html []byte) ([]byte, error) {
	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("%w: wkhtmltopdf: %v", ErrNotConfigured, err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(html))
	page.Encoding.Set("utf-8")
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create pdf: %w", err)
	}
	return pdfg.Bytes(), nil
}
