package web

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

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/insightboard/internal/analysis"
	"github.com/JonMunkholm/insightboard/internal/chart"
	"github.com/JonMunkholm/insightboard/internal/config"
	"github.com/JonMunkholm/insightboard/internal/core"
	"github.com/JonMunkholm/insightboard/internal/dataset"
	"github.com/JonMunkholm/insightboard/internal/web/middleware"
)

const salesCSV = "month,sales,expenses\nJan,100,75\nFeb,150,100\nMar,200,125\nApr,175,150\nMay,225,175\nJun,250,200\n"

type testClient struct {
	t       *testing.T
	handler http.Handler
	session string
}

func newTestServer(t *testing.T, mutate func(*config.Config)) *testClient {
	t.Helper()

	cfg, err := config.LoadFrom(func(string) (string, bool) { return "", false })
	require.NoError(t, err)
	cfg.Chart = config.ChartConfig{Width: 320, Height: 240}
	if mutate != nil {
		mutate(cfg)
	}

	svc := core.NewService(core.Options{
		MaxFileSize: cfg.Upload.MaxFileSize,
		Chart:       chart.Options{Width: cfg.Chart.Width, Height: cfg.Chart.Height},
	})
	srv := NewServer(svc, cfg)
	t.Cleanup(func() { srv.Shutdown(context.Background()) })

	return &testClient{t: t, handler: srv.Router(), session: uuid.NewString()}
}

func (c *testClient) do(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()
	req.Header.Set(middleware.SessionHeader, c.session)
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	return rec
}

func (c *testClient) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *testClient) postJSON(path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	b, err := json.Marshal(body)
	require.NoError(c.t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *testClient) upload(name, content string) *httptest.ResponseRecorder {
	c.t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if name != "" {
		fw, err := mw.CreateFormFile("file", name)
		require.NoError(c.t, err)
		fw.Write([]byte(content))
	}
	require.NoError(c.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func assertErrorCode(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	assert.Equal(t, status, rec.Code, rec.Body.String())
	assert.Equal(t, code, decode[ErrorResponse](t, rec).Code)
}

// ---- Page Tests ----

func TestDashboard(t *testing.T) {
	t.Parallel()
	c := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
	assert.Contains(t, rec.Body.String(), "InsightBoard")
	assert.Contains(t, rec.Body.String(), "AI data analysis assistant")
	assert.NotEmpty(t, rec.Result().Cookies(), "first visit should set a session cookie")
}

func TestDashboard_AfterUpload(t *testing.T) {
	t.Parallel()
	c := newTestServer(t, nil)
	require.Equal(t, http.StatusCreated, c.upload("sales.csv", salesCSV).Code)

	rec := c.get("/?type=line&primary=expenses")
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "sales.csv: 6 rows, 3 columns")
	assert.Contains(t, body, "expenses by month")
	assert.Contains(t, body, "type=line")
}

func TestHealth(t *testing.T) {
	t.Parallel()
	c := newTestServer(t, nil)

	rec := c.get("/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body, "ingests")
}

// ---- Upload Tests ----

func TestUpload(t *testing.T) {
	t.Parallel()
	c := newTestServer(t, nil)

	rec := c.upload("sales.csv", salesCSV)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	res := decode[core.IngestResult](t, rec)
	assert.Equal(t, 6, res.Rows)
	assert.Equal(t, []string{"month", "sales", "expenses"}, res.Header)
	assert.Equal(t, "sales", res.Selection.Primary)
	assert.Equal(t, "month", res.Selection.Category)
}

func TestUpload_HTMXRefreshes(t *testing.T) {
	t.Parallel()
	c := newTestServer(t, nil)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, _ := mw.CreateFormFile("file", "sales.csv")
	fw.Write([]byte(salesCSV))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("HX-Request", "true")
	rec := c.do(req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "true", rec.Header().Get("HX-Refresh"))
}

func TestUpload_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		content string
		status  int
		code    string
	}{
		{"no file", "", "", http.StatusBadRequest, "FILE006"},
		{"header only", "empty.csv", "month,sales\n", http.StatusUnprocessableEntity, "DATA001"},
		{"zero bytes", "zero.csv", "", http.StatusUnprocessableEntity, "DATA001"},
		{"unsupported type", "sales.xlsx", salesCSV, http.StatusUnsupportedMediaType, "FILE002"},
		{"corrupt gzip", "sales.csv.gz", salesCSV, http.StatusBadRequest, "FILE004"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := newTestServer(t, nil)
			assertErrorCode(t, c.upload(tt.file, tt.content), tt.status, tt.code)
		})
	}
}

func TestUpload_TooLarge(t *testing.T) {
	t.Parallel()
	c := newTestServer(t, func(cfg *config.Config) { cfg.Upload.MaxFileSize = 32 })

	assertErrorCode(t, c.upload("sales.csv", salesCSV), http.StatusRequestEntityTooLarge, "FILE001")
}

func TestUpload_FailedKeepsPrevious(t *testing.T) {
	t.Parallel()
	c := newTestServer(t, nil)

	require.Equal(t, http.StatusCreated, c.upload("sales.csv", salesCSV).Code)
	require.Equal(t, http.StatusUnprocessableEntity, c.upload("empty.csv", "a,b\n").Code)

	rec := c.get("/api/dataset")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sales.csv", decode[map[string]any](t, rec)["source"])
}

// ---- Read API Tests ----

func TestAPI_WithoutDataset(t *testing.T) {
	t.Parallel()
	c := newTestServer(t, nil)

	for _, path := range []string{"/api/dataset", "/api/fields", "/api/stats", "/api/chart.png", "/api/export/csv"} {
		assertErrorCode(t, c.get(path), http.StatusNotFound, "SES001")
	}
	assertErrorCode(t, c.postJSON("/api/analyze", map[string]string{"prompt": "hi"}), http.StatusNotFound, "SES001")
}

func TestAPI_DatasetAndFields(t *testing.T) {
	t.Parallel()
	c := newTestServer(t, nil)
	require.Equal(t, http.StatusCreated, c.upload("sales.csv", salesCSV).Code)

	rec := c.get("/api/dataset?limit=2")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.EqualValues(t, 6, body["totalRows"])
	assert.Equal(t, true, body["truncated"])
	assert.Len(t, body["rows"], 2)

	sel := decode[dataset.Selection](t, c.get("/api/fields"))
	assert.Equal(t, []string{"sales", "expenses"}, sel.Numeric)
	assert.Equal(t, "expenses", sel.Secondary)

	stats := decode[[]map[string]any](t, c.get("/api/stats"))
	require.Len(t, stats, 3)
	assert.Equal(t, "sales", stats[1]["name"])
	assert.Equal(t, "number", stats[1]["kind"])
	assert.Equal(t, 250.0, stats[1]["max"])
}

func TestAPI_Chart(t *testing.T) {
	t.Parallel()
	c := newTestServer(t, nil)
	require.Equal(t, http.StatusCreated, c.upload("sales.csv", salesCSV).Code)

	for _, typ := range []string{"", "bar", "line", "area", "pie", "scatter", "radar", "composed", "treemap"} {
		rec := c.get("/api/chart.png?type=" + typ)
		require.Equal(t, http.StatusOK, rec.Code, "type %q: %s", typ, rec.Body.String())
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")), "type %q", typ)
	}

	assertErrorCode(t, c.get("/api/chart.png?type=donut"), http.StatusBadRequest, "CHART001")
	assertErrorCode(t, c.get("/api/chart.png?primary=profit"), http.StatusBadRequest, "CHART002")
}

func TestAPI_ChartTypesAndTemplates(t *testing.T) {
	t.Parallel()
	c := newTestServer(t, nil)

	types := decode[[]chartTypeResponse](t, c.get("/api/chart-types"))
	assert.Len(t, types, 8)

	tpls := decode[[]analysis.Template](t, c.get("/api/templates"))
	assert.Len(t, tpls, 8)
}

// ---- Analysis & Chat Tests ----

func TestAPI_Analyze(t *testing.T) {
	t.Parallel()
	c := newTestServer(t, nil)
	require.Equal(t, http.StatusCreated, c.upload("sales.csv", salesCSV).Code)

	rec := c.postJSON("/api/analyze", map[string]string{"template_id": "3"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[analyzeResponse](t, rec)
	assert.Equal(t, "Detect and explain any trends visible in this dataset.", res.Prompt)
	assert.Contains(t, res.Analysis, "The sales values range from 100 to 250")

	assertErrorCode(t, c.postJSON("/api/analyze", map[string]string{"template_id": "99"}), http.StatusBadRequest, "REQ001")

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader("prompt=compare+months"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	rec = c.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), `<pre class="analysis">`))
	assert.Contains(t, rec.Body.String(), "&#34;compare months&#34;")
}

func TestAPI_Chat(t *testing.T) {
	t.Parallel()
	c := newTestServer(t, nil)

	rec := c.postJSON("/api/chat", map[string]string{"prompt": "Can you forecast next quarter?"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	reply := decode[analysis.Message](t, rec)
	assert.Equal(t, analysis.RoleAssistant, reply.Role)
	assert.Equal(t, analysis.Respond("forecast"), reply.Content)

	msgs := decode[[]analysis.Message](t, c.get("/api/chat"))
	assert.Len(t, msgs, 3)

	assertErrorCode(t, c.postJSON("/api/chat", map[string]string{"prompt": "  "}), http.StatusBadRequest, "REQ001")

	rec = c.do(httptest.NewRequest(http.MethodDelete, "/api/chat", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]analysis.Message](t, rec), 1)
}

// ---- Export Tests ----

func TestAPI_Export(t *testing.T) {
	t.Parallel()
	c := newTestServer(t, nil)
	require.Equal(t, http.StatusCreated, c.upload("q1.csv", salesCSV).Code)

	tests := []struct {
		format      string
		contentType string
		fileName    string
	}{
		{"csv", "text/csv; charset=utf-8", "q1.csv"},
		{"summary.csv", "text/csv; charset=utf-8", "q1_summary.csv"},
		{"analysis.txt", "text/plain; charset=utf-8", "q1_analysis.txt"},
		{"xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "q1.xlsx"},
	}

	for _, tt := range tests {
		rec := c.get("/api/export/" + tt.format)
		require.Equal(t, http.StatusOK, rec.Code, "%s: %s", tt.format, rec.Body.String())
		assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"), tt.format)
		assert.Equal(t, `attachment; filename="`+tt.fileName+`"`, rec.Header().Get("Content-Disposition"))
		assert.NotZero(t, rec.Body.Len(), tt.format)
	}

	assert.Equal(t, salesCSV, c.get("/api/export/csv").Body.String())
	assertErrorCode(t, c.get("/api/export/pdf"), http.StatusBadRequest, "REQ001")
}

func TestAPI_DropSession(t *testing.T) {
	t.Parallel()
	c := newTestServer(t, nil)
	require.Equal(t, http.StatusCreated, c.upload("sales.csv", salesCSV).Code)

	rec := c.do(httptest.NewRequest(http.MethodDelete, "/api/session", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]bool{"dropped": true}, decode[map[string]bool](t, rec))

	assertErrorCode(t, c.get("/api/dataset"), http.StatusNotFound, "SES001")
}

func TestAPI_SessionsAreIsolated(t *testing.T) {
	t.Parallel()
	c := newTestServer(t, nil)
	require.Equal(t, http.StatusCreated, c.upload("sales.csv", salesCSV).Code)

	other := &testClient{t: t, handler: c.handler, session: uuid.NewString()}
	assertErrorCode(t, other.get("/api/dataset"), http.StatusNotFound, "SES001")
}

// ---- Middleware Wiring Tests ----

func TestAPI_RequiresKeyWhenConfigured(t *testing.T) {
	t.Parallel()
	c := newTestServer(t, func(cfg *config.Config) {
		cfg.Security.RequireAPIKey = true
		cfg.Security.APIKeys = []string{"secret"}
	})

	assert.Equal(t, http.StatusUnauthorized, c.get("/api/templates").Code)
	assert.Equal(t, http.StatusOK, c.get("/healthz").Code)

	req := httptest.NewRequest(http.MethodGet, "/api/templates", nil)
	req.Header.Set(middleware.APIKeyHeader, "secret")
	assert.Equal(t, http.StatusOK, c.do(req).Code)
}

func TestRateLimit(t *testing.T) {
	t.Parallel()
	c := newTestServer(t, func(cfg *config.Config) { cfg.Rate.RequestsPerMinute = 2 })

	assert.Equal(t, http.StatusOK, c.get("/healthz").Code)
	assert.Equal(t, http.StatusOK, c.get("/healthz").Code)

	rec := c.get("/api/templates")
	assertErrorCode(t, rec, http.StatusTooManyRequests, "RATE001")
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}

func TestRateLimiter_Window(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := newRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.allow("1.1.1.1"))
	assert.True(t, rl.allow("1.1.1.1"))
	assert.False(t, rl.allow("1.1.1.1"))
	assert.True(t, rl.allow("2.2.2.2"), "limits are per IP")

	now = now.Add(61 * time.Second)
	assert.True(t, rl.allow("1.1.1.1"), "window reset")

	now = now.Add(3 * time.Minute)
	rl.prune()
	assert.Empty(t, rl.visitors)
}
