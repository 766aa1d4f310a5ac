package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/sjperalta/smartdebt-api/internal/models"
	"github.com/xuri/excelize/v2"
)

// SheetTitle is the worksheet name used by the spreadsheet exports
const SheetTitle = "Công nợ"

// ExportHeader is the column header of the debtor list exports
var ExportHeader = []string{"Tên đối tác", "Số điện thoại", "Loại", "Số dư nợ", "Cập nhật cuối"}

const utf8BOM = "\uFEFF"

// ExportService renders the current snapshot into downloadable files
type ExportService struct {
	ledger *LedgerService
	format *Formatter
	now    func() time.Time
}

func NewExportService(ledgerSvc *LedgerService, format *Formatter) *ExportService {
	return &ExportService{ledger: ledgerSvc, format: format, now: time.Now}
}

// BackupJSON returns the full snapshot in the backup file format
func (s *ExportService) BackupJSON(ctx context.Context) ([]byte, string, error) {
	return BackupJSON(s.ledger.Snapshot(), s.now())
}

// ExportCSV returns the debtor list as CSV for spreadsheet tools
func (s *ExportService) ExportCSV(ctx context.Context) ([]byte, string, error) {
	return DebtorsCSV(s.ledger.Snapshot().Debtors, s.format), exportFileName("danh-sach-cong-no", s.now(), "csv"), nil
}

// ExportXLSX returns the debtor list as an Excel workbook
func (s *ExportService) ExportXLSX(ctx context.Context) ([]byte, string, error) {
	data, err := DebtorsXLSX(s.ledger.Snapshot().Debtors, s.format)
	if err != nil {
		return nil, "", err
	}
	return data, exportFileName("danh-sach-cong-no", s.now(), "xlsx"), nil
}

// ExportPDF returns a one-page summary report
func (s *ExportService) ExportPDF(ctx context.Context) ([]byte, string, error) {
	now := s.now()
	data, err := SummaryPDF(s.ledger.Snapshot(), now, s.format)
	if err != nil {
		return nil, "", err
	}
	return data, exportFileName("bao-cao-cong-no", now, "pdf"), nil
}

// Rows returns header plus one row per debtor, the shape shared by CSV, XLSX and Sheets
func (s *ExportService) Rows() [][]string {
	return DebtorRows(s.ledger.Snapshot().Debtors, s.format)
}

// BackupJSON encodes a snapshot as indented JSON with its dated file name
func BackupJSON(state models.AppState, now time.Time) ([]byte, string, error) {
	if state.Debtors == nil {
		state.Debtors = []models.Debtor{}
	}
	if state.Transactions == nil {
		state.Transactions = []models.Transaction{}
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("encode backup: %w", err)
	}
	return data, exportFileName("smartdebt-backup", now, "json"), nil
}

// DebtorRows builds the tabular export; the balance column is a plain integer
func DebtorRows(debtors []models.Debtor, f *Formatter) [][]string {
	rows := make([][]string, 0, len(debtors)+1)
	rows = append(rows, ExportHeader)
	for _, d := range debtors {
		rows = append(rows, []string{
			d.Name,
			d.Phone,
			d.Type.Label(),
			strconv.FormatInt(d.TotalBalance, 10),
			f.ShortDate(d.LastUpdated),
		})
	}
	return rows
}

// DebtorsCSV writes a BOM, the header and one line per debtor. Text fields are always
// quoted and the balance never is, which encoding/csv cannot express.
func DebtorsCSV(debtors []models.Debtor, f *Formatter) []byte {
	var b strings.Builder
	b.WriteString(utf8BOM)
	b.WriteString(strings.Join(ExportHeader, ","))
	b.WriteByte('\n')
	for _, row := range DebtorRows(debtors, f)[1:] {
		b.WriteString(quoteCSV(row[0]))
		b.WriteByte(',')
		b.WriteString(quoteCSV(row[1]))
		b.WriteByte(',')
		b.WriteString(quoteCSV(row[2]))
		b.WriteByte(',')
		b.WriteString(row[3])
		b.WriteByte(',')
		b.WriteString(quoteCSV(row[4]))
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

func quoteCSV(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// DebtorsXLSX renders the same rows into a workbook with a numeric balance column
func DebtorsXLSX(debtors []models.Debtor, f *Formatter) ([]byte, error) {
	x := excelize.NewFile()
	defer x.Close()

	if err := x.SetSheetName("Sheet1", SheetTitle); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, _ := x.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	moneyStyle, _ := x.NewStyle(&excelize.Style{NumFmt: 3}) // #,##0

	for col, title := range ExportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = x.SetCellValue(SheetTitle, cell, title)
	}
	_ = x.SetCellStyle(SheetTitle, "A1", "E1", headerStyle)

	for i, d := range debtors {
		row := i + 2
		_ = x.SetCellValue(SheetTitle, fmt.Sprintf("A%d", row), d.Name)
		_ = x.SetCellValue(SheetTitle, fmt.Sprintf("B%d", row), d.Phone)
		_ = x.SetCellValue(SheetTitle, fmt.Sprintf("C%d", row), d.Type.Label())
		_ = x.SetCellValue(SheetTitle, fmt.Sprintf("D%d", row), d.TotalBalance)
		_ = x.SetCellValue(SheetTitle, fmt.Sprintf("E%d", row), f.ShortDate(d.LastUpdated))
	}
	if len(debtors) > 0 {
		_ = x.SetCellStyle(SheetTitle, "D2", fmt.Sprintf("D%d", len(debtors)+1), moneyStyle)
	}
	_ = x.SetColWidth(SheetTitle, "A", "A", 32)
	_ = x.SetColWidth(SheetTitle, "B", "E", 18)

	buf, err := x.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// SummaryPDF renders totals and the debtor table with the built-in PDF fonts.
// Those fonts have no Vietnamese glyphs, so text is folded to ASCII.
func SummaryPDF(state models.AppState, now time.Time, f *Formatter) ([]byte, error) {
	sum := BuildDashboard(state, now, f)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("SmartDebt", false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, ASCIIFold("Báo cáo công nợ"))
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(0, 6, ASCIIFold("Ngày lập: "+f.DateTime(now)))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, ASCIIFold("Tổng quan"))
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	for _, line := range [][2]string{
		{"Phải thu:", f.Currency(sum.TotalReceivable)},
		{"Phải trả:", f.Currency(sum.TotalPayable)},
		{"Số dư ròng:", f.Currency(sum.NetBalance)},
		{"Số khách hàng:", strconv.Itoa(sum.CustomerCount)},
		{"Số nhà cung cấp:", strconv.Itoa(sum.SupplierCount)},
	} {
		pdf.Cell(50, 7, ASCIIFold(line[0]))
		pdf.Cell(60, 7, ASCIIFold(line[1]))
		pdf.Ln(6)
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, ASCIIFold("Danh sách đối tác"))
	pdf.Ln(9)

	widths := []float64{62, 30, 30, 38, 28}
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(224, 224, 224)
	for i, title := range ExportHeader {
		pdf.CellFormat(widths[i], 7, ASCIIFold(title), "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, d := range state.Debtors {
		cells := []string{d.Name, d.Phone, d.Type.Label(), f.Number(d.TotalBalance), f.ShortDate(d.LastUpdated)}
		for i, c := range cells {
			align := "L"
			if i == 3 {
				align = "R"
			}
			pdf.CellFormat(widths[i], 6, ASCIIFold(c), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// exportFileName builds "<prefix>-YYYY-MM-DD.<ext>" from the UTC date
func exportFileName(prefix string, now time.Time, ext string) string {
	return fmt.Sprintf("%s-%s.%s", prefix, now.UTC().Format("2006-01-02"), ext)
}
