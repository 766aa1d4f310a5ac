package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/smartdebt-api/internal/ai"
	"github.com/sjperalta/smartdebt-api/internal/config"
	"github.com/sjperalta/smartdebt-api/internal/jobs"
	"github.com/sjperalta/smartdebt-api/internal/middleware"
	"github.com/sjperalta/smartdebt-api/internal/models"
	"github.com/sjperalta/smartdebt-api/internal/repository"
	"github.com/sjperalta/smartdebt-api/internal/services"
	"github.com/sjperalta/smartdebt-api/internal/sheets"
	"github.com/sjperalta/smartdebt-api/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router *gin.Engine
	svcs   *services.Services
	sheet  *sheets.MemoryWriter
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	worker := jobs.NewWorker(1)
	t.Cleanup(worker.Shutdown)

	cfg := &config.Config{
		Environment:        "test",
		Timezone:           "UTC",
		AuthMode:           config.AuthModeOpen,
		JWTSecret:          "handler-test-secret",
		JWTExpirationHours: 1,
		ImportSessionTTL:   15 * time.Minute,
	}
	sheet := sheets.NewMemoryWriter()
	gen := ai.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		return "# Tổng quan\nDòng tiền ổn định", nil
	})

	svcs, err := services.NewServices(cfg, repository.NewFileStateRepository(store), worker, services.Adapters{Generator: gen, Sheets: sheet})
	require.NoError(t, err)
	require.NoError(t, svcs.Ledger.Init(context.Background(), true))

	login, err := svcs.Auth.Login(context.Background(), "owner", "")
	require.NoError(t, err)

	r := gin.New()
	RegisterRoutes(r.Group("/api/v1"), NewHandlers(svcs), middleware.Auth(svcs.Auth))

	return &testServer{router: r, svcs: svcs, sheet: sheet, token: login.Token}
}

func (s *testServer) do(method, path string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/v1"+path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func multipartBackup(t *testing.T, name, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginAndSession(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"username":"chu-quan"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var login services.LoginResult
	decode(t, w, &login)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, "chu-quan", login.User.Username)

	srv.token = login.Token
	w = srv.do(http.MethodGet, "/auth/session", "")
	require.Equal(t, http.StatusOK, w.Code)
	var info services.SessionInfo
	decode(t, w, &info)
	assert.True(t, info.LoggedIn)

	w = srv.do(http.MethodPost, "/auth/logout", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = srv.do(http.MethodGet, "/auth/session", "")
	decode(t, w, &info)
	assert.False(t, info.LoggedIn)
}

func TestDebtorEndpoints(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(http.MethodPost, "/debtors", `{"debtor":{"name":"  Chị Lan ","phone":"0912000111","type":"CUSTOMER"}}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Debtor
	decode(t, w, &created)
	assert.Equal(t, "Chị Lan", created.Name)
	assert.Equal(t, int64(0), created.TotalBalance)

	w = srv.do(http.MethodGet, "/debtors?search=chi%20lan", "")
	require.Equal(t, http.StatusOK, w.Code)
	var found []models.Debtor
	decode(t, w, &found)
	require.Len(t, found, 1)
	assert.Equal(t, created.ID, found[0].ID)

	w = srv.do(http.MethodGet, "/debtors?type=SUPPLIER", "")
	decode(t, w, &found)
	require.Len(t, found, 1)
	assert.Equal(t, "2", found[0].ID)

	w = srv.do(http.MethodGet, "/debtors/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Bán hàng đợt 1")

	w = srv.do(http.MethodDelete, "/debtors/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = srv.do(http.MethodDelete, "/debtors/khong-ton-tai", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = srv.do(http.MethodGet, "/debtors/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestErrorStatusMapping(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		field  string
	}{
		{"empty name", http.MethodPost, "/debtors", `{"name":"   ","type":"CUSTOMER"}`, http.StatusUnprocessableEntity, "name"},
		{"bad debtor type", http.MethodPost, "/debtors", `{"name":"An","type":"PARTNER"}`, http.StatusUnprocessableEntity, "type"},
		{"bad filter type", http.MethodGet, "/debtors?type=x", "", http.StatusUnprocessableEntity, "type"},
		{"malformed json", http.MethodPost, "/debtors", `{"name":`, http.StatusBadRequest, ""},
		{"zero amount", http.MethodPost, "/transactions", `{"debtor_id":"1","amount":0,"type":"INCREASE"}`, http.StatusUnprocessableEntity, "amount"},
		{"unknown debtor", http.MethodPost, "/transactions", `{"debtor_id":"99","amount":1000,"type":"INCREASE"}`, http.StatusNotFound, ""},
		{"bad date", http.MethodPost, "/transactions", `{"debtor_id":"1","amount":1000,"type":"INCREASE","date":"hôm qua"}`, http.StatusUnprocessableEntity, "date"},
		{"bad limit", http.MethodGet, "/transactions?limit=-1", "", http.StatusUnprocessableEntity, "limit"},
		{"unknown import", http.MethodPost, "/settings/import/nope/confirm", "", http.StatusNotFound, ""},
		{"bad backup", http.MethodPost, "/settings/import", `{"debtors":"x"}`, http.StatusBadRequest, ""},
		{"email not configured", http.MethodPost, "/settings/backup/email", "", http.StatusServiceUnavailable, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := srv.do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())

			var resp ErrorResponse
			decode(t, w, &resp)
			assert.NotEmpty(t, resp.Error)
			assert.Equal(t, tt.field, resp.Field)
		})
	}
}

func TestRecordTransaction(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(http.MethodPost, "/transactions", `{"transaction":{"debtor_id":"1","amount":2000000,"type":"DECREASE","note":"Thu tiền mặt"}}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var resp RecordTransactionResponse
	decode(t, w, &resp)
	assert.Equal(t, int64(3000000), resp.Debtor.TotalBalance)
	assert.Equal(t, "Thu tiền mặt", resp.Transaction.Note)

	w = srv.do(http.MethodGet, "/transactions?debtor_id=1&limit=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var history []services.TransactionView
	decode(t, w, &history)
	require.Len(t, history, 1)
	assert.Equal(t, resp.Transaction.ID, history[0].ID)
}

func TestRecordTransactionWithNewDebtor(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(http.MethodPost, "/transactions", `{"amount":750000,"type":"INCREASE","date":"2024-05-01","new_debtor":{"name":"Anh Minh","type":"SUPPLIER"}}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var resp RecordTransactionResponse
	decode(t, w, &resp)
	assert.Equal(t, "Anh Minh", resp.Debtor.Name)
	assert.Equal(t, int64(750000), resp.Debtor.TotalBalance)
	assert.Equal(t, resp.Debtor.ID, resp.Transaction.DebtorID)
	assert.Len(t, srv.svcs.Ledger.Snapshot().Debtors, 3)

	// A rejected entry must not leave the new debtor behind
	w = srv.do(http.MethodPost, "/transactions", `{"amount":0,"type":"INCREASE","new_debtor":{"name":"Chị Hoa","type":"CUSTOMER"}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Len(t, srv.svcs.Ledger.Snapshot().Debtors, 3)
}

func TestDashboardEndpoint(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(http.MethodGet, "/dashboard", "")
	require.Equal(t, http.StatusOK, w.Code)
	var sum services.DashboardSummary
	decode(t, w, &sum)
	assert.Equal(t, int64(5000000), sum.TotalReceivable)
	assert.Equal(t, int64(12000000), sum.TotalPayable)
}

func TestExportDownloads(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		path        string
		contentType string
		prefix      string
	}{
		{"/settings/export.json", "application/json", `attachment; filename="smartdebt-backup-`},
		{"/settings/export.csv", "text/csv; charset=utf-8", `attachment; filename="danh-sach-cong-no-`},
		{"/settings/export.xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", `attachment; filename="danh-sach-cong-no-`},
		{"/settings/report.pdf", "application/pdf", `attachment; filename="`},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := srv.do(http.MethodGet, tt.path, "")
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.contentType, w.Header().Get("Content-Type"))
			assert.True(t, strings.HasPrefix(w.Header().Get("Content-Disposition"), tt.prefix))
			assert.NotZero(t, w.Body.Len())
		})
	}
}

func TestExportDownloadWithQueryToken(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/settings/export.csv?token="+srv.token, nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestExportSheets(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(http.MethodPost, "/settings/export/sheets", "")
	require.Equal(t, http.StatusOK, w.Code)
	var res services.SheetsExportResult
	decode(t, w, &res)
	assert.Equal(t, 2, res.Rows)
	assert.Equal(t, 1, srv.sheet.Writes())
	assert.Len(t, srv.sheet.Rows(), 3)
}

func TestImportFlow(t *testing.T) {
	srv := newTestServer(t)

	backup := `{"debtors":[{"id":"a","name":"Bà Tư","phone":"","type":"CUSTOMER","totalBalance":100000,"lastUpdated":"2024-05-01T00:00:00Z"}],` +
		`"transactions":[{"id":"x","debtorId":"a","amount":100000,"date":"2024-05-01T00:00:00Z","type":"INCREASE","note":""}]}`

	w := srv.do(http.MethodPost, "/settings/import?filename=backup.json", backup)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var staged services.StagedImport
	decode(t, w, &staged)
	assert.Equal(t, models.ImportStatusStaged, staged.Session.Status)
	assert.Equal(t, "backup.json", staged.Session.FileName)
	assert.Len(t, srv.svcs.Ledger.Snapshot().Debtors, 2, "staging must not touch the ledger")

	w = srv.do(http.MethodGet, "/settings/import/"+staged.Session.ID, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = srv.do(http.MethodPost, "/settings/import/"+staged.Session.ID+"/confirm", "")
	require.Equal(t, http.StatusOK, w.Code)
	state := srv.svcs.Ledger.Snapshot()
	require.Len(t, state.Debtors, 1)
	assert.Equal(t, "Bà Tư", state.Debtors[0].Name)

	w = srv.do(http.MethodPost, "/settings/import/"+staged.Session.ID+"/cancel", "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestImportRejectsDuplicateIDs(t *testing.T) {
	srv := newTestServer(t)
	before := srv.svcs.Ledger.Snapshot()

	backup := `{"debtors":[` +
		`{"id":"a","name":"Bà Tư","phone":"","type":"CUSTOMER","totalBalance":0,"lastUpdated":"2024-05-01T00:00:00Z"},` +
		`{"id":"a","name":"Chú Năm","phone":"","type":"SUPPLIER","totalBalance":0,"lastUpdated":"2024-05-01T00:00:00Z"}],` +
		`"transactions":[]}`

	w := srv.do(http.MethodPost, "/settings/import", backup)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	var resp ErrorResponse
	decode(t, w, &resp)
	assert.Contains(t, resp.Error, "trùng mã đối tác a")
	assert.Equal(t, before, srv.svcs.Ledger.Snapshot())
}

func TestImportMultipartCancel(t *testing.T) {
	srv := newTestServer(t)

	body, contentType := multipartBackup(t, "backup.json", `{"debtors":[],"transactions":[]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/settings/import", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+srv.token)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var staged services.StagedImport
	decode(t, w, &staged)

	w = srv.do(http.MethodPost, "/settings/import/"+staged.Session.ID+"/cancel", "")
	require.Equal(t, http.StatusOK, w.Code)
	var session models.ImportSession
	decode(t, w, &session)
	assert.Equal(t, models.ImportStatusDiscarded, session.Status)
	assert.Len(t, srv.svcs.Ledger.Snapshot().Debtors, 2)
}

func TestInsightEndpoint(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(http.MethodPost, "/insights", "")
	require.Equal(t, http.StatusOK, w.Code)
	var insight services.Insight
	decode(t, w, &insight)
	assert.False(t, insight.Fallback)
	require.Len(t, insight.Paragraphs, 2)
	assert.True(t, insight.Paragraphs[0].Heading)
}

func TestJobStatusEndpoint(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(http.MethodGet, "/jobs/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	var stats jobs.WorkerStats
	decode(t, w, &stats)
	assert.Equal(t, 4, stats.MaxConcurrent)
}
