package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sjperalta/smartdebt-api/pkg/logger"
	"google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// GoogleWriter writes the debtor table to one sheet of a spreadsheet using a service account
type GoogleWriter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ RowWriter = (*GoogleWriter)(nil)

// Credentials selects the service account key: inline JSON wins over a file path
type Credentials struct {
	JSON string
	File string
}

// NewGoogleWriter builds a Sheets client for spreadsheetID/sheetName
func NewGoogleWriter(ctx context.Context, spreadsheetID, sheetName string, creds Credentials) (*GoogleWriter, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}

	credentialsJSON, err := creds.load()
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	logger.Info("Google Sheets export enabled", "spreadsheet_id", spreadsheetID, "sheet", sheetName)
	return &GoogleWriter{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}, nil
}

func (c Credentials) load() ([]byte, error) {
	switch {
	case strings.TrimSpace(c.JSON) != "":
		return []byte(c.JSON), nil
	case strings.TrimSpace(c.File) != "":
		data, err := os.ReadFile(c.File)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

// ReplaceRows clears columns A:E and writes rows starting at A1
func (g *GoogleWriter) ReplaceRows(ctx context.Context, rows [][]string) (string, error) {
	clearRange := fmt.Sprintf("%s!A:E", quoteSheet(g.sheetName))
	if _, err := g.svc.Spreadsheets.Values.Clear(g.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("clear %s: %w", clearRange, err)
	}

	values := make([][]any, len(rows))
	for i, r := range rows {
		row := make([]any, len(r))
		for j, v := range r {
			row[j] = v
		}
		values[i] = row
	}

	rng := fmt.Sprintf("%s!A1", quoteSheet(g.sheetName))
	resp, err := g.svc.Spreadsheets.Values.Update(g.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update %s: %w", rng, err)
	}
	return resp.UpdatedRange, nil
}

// quoteSheet wraps sheet names containing spaces or non-ASCII letters in single quotes for A1 notation
func quoteSheet(name string) string {
	for _, r := range name {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_') {
			return "'" + strings.ReplaceAll(name, "'", "''") + "'"
		}
	}
	return name
}
