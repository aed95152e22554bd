package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/csvpreview/internal/config"
	"github.com/JonMunkholm/csvpreview/internal/core"
)

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Port: 8080, RequestTimeout: 10 * time.Second},
		Upload:   config.UploadConfig{MaxFileSize: 1 << 16, MaxConcurrent: 2, MaxWaitTime: time.Second, Timeout: 10 * time.Second},
		Security: config.SecurityConfig{EnableCSP: true},
		Session:  config.SessionConfig{Secret: strings.Repeat("s", 32), CookieName: "csvpreview", IdleTTL: time.Minute},
		Preview:  config.PreviewConfig{SampleSize: 3, HistoryLimit: 10},
	}
}

func newTestServer(t *testing.T, mutate ...func(*config.Config)) *Server {
	t.Helper()
	cfg := testConfig()
	for _, m := range mutate {
		m(cfg)
	}
	svc := core.NewService(core.NewMemoryHistory(10), core.Options{
		MaxFileSize:   cfg.Upload.MaxFileSize,
		MaxConcurrent: cfg.Upload.MaxConcurrent,
		MaxWaitTime:   cfg.Upload.MaxWaitTime,
		Timeout:       cfg.Upload.Timeout,
		SampleSize:    cfg.Preview.SampleSize,
	})
	return NewServer(svc, cfg)
}

func recipientsCSV(n int) string {
	var b strings.Builder
	b.WriteString("name,email\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "user%d,user%d@example.com\n", i, i)
	}
	return b.String()
}

// multipartBody builds a form with an optional "csv" file part.
func multipartBody(t *testing.T, name, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	if name != "" {
		part, err := mw.CreateFormFile("csv", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.WriteField("note", "x"))
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

// client replays the session cookie between requests.
type client struct {
	t       *testing.T
	srv     *Server
	cookies []*http.Cookie
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c.srv.Router().ServeHTTP(rec, req)
	if got := rec.Result().Cookies(); len(got) > 0 {
		c.cookies = got
	}
	return rec
}

func (c *client) upload(name, content string) *httptest.ResponseRecorder {
	body, contentType := multipartBody(c.t, name, content)
	req := httptest.NewRequest(http.MethodPost, "/preview/file", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Datastar-Request", "true")
	return c.do(req)
}

func (c *client) signals(path string, v any) *httptest.ResponseRecorder {
	b, err := json.Marshal(v)
	require.NoError(c.t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Datastar-Request", "true")
	return c.do(req)
}

func (c *client) state() core.Snapshot {
	rec := c.do(httptest.NewRequest(http.MethodGet, "/preview/state", nil))
	require.Equal(c.t, http.StatusOK, rec.Code)
	var snap core.Snapshot
	require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &snap))
	return snap
}

func TestIndex_SetsSessionAndRendersWidgets(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t)}

	rec := c.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `id="email-key"`)
	assert.Contains(t, body, `id="range-slider"`)
	assert.Contains(t, body, `name="start"`)
	assert.Contains(t, body, "datastar.js")
	assert.NotEmpty(t, c.cookies, "session cookie")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestPreviewFile_PatchesWidgets(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t)}

	rec := c.upload("list.csv", recipientsCSV(10))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/event-stream")

	body := rec.Body.String()
	assert.Contains(t, body, "datastar-patch-elements")
	assert.Contains(t, body, `<option value="name" selected>name</option><option value="email">email</option>`)
	assert.Contains(t, body, `name="stop" value="10"`)
	assert.Contains(t, body, "datastar-patch-signals")

	snap := c.state()
	assert.Equal(t, []string{"name", "email"}, snap.Columns)
	assert.Equal(t, "0", snap.Start)
	assert.Equal(t, "10", snap.Stop)
	assert.Equal(t, 10, snap.Max)
	assert.Equal(t, "list.csv", snap.File)
}

func TestPreviewFile_EmptySelectionIsNoop(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t)}
	c.upload("list.csv", recipientsCSV(4))

	rec := c.upload("", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "datastar-patch-elements")
	assert.Equal(t, "4", c.state().Stop)
}

func TestPreviewFile_FailureKeepsWidgets(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t)}
	c.upload("list.csv", recipientsCSV(4))

	rec := c.upload("broken.csv", "a,b\n\"unterminated\n")
	assert.Contains(t, rec.Body.String(), "PARSE001")

	snap := c.state()
	assert.Equal(t, []string{"name", "email"}, snap.Columns)
	assert.Equal(t, "4", snap.Stop)
	require.NotNil(t, snap.Error)
	assert.Equal(t, "PARSE001", snap.Error.Code)

	c.upload("other.csv", "x,y\n1,2\n")
	assert.Nil(t, c.state().Error, "success clears the banner")
}

func TestPreviewFile_TooLarge(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t, func(cfg *config.Config) { cfg.Upload.MaxFileSize = 16 })}

	rec := c.upload("big.csv", recipientsCSV(50))
	assert.Contains(t, rec.Body.String(), "READ002")
}

func TestPreviewSlide_MirrorsFields(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t)}
	c.upload("list.csv", recipientsCSV(10))
	c.signals("/preview/key", map[string]any{"emailKey": "email"})

	rec := c.signals("/preview/slide", map[string]any{"lo": 2, "hi": 5})
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `name="start" value="2"`)
	assert.Contains(t, body, `name="stop" value="5"`)
	assert.Contains(t, body, "user2@example.com")

	// Past the end and crossed handles are clamped by the slider.
	c.signals("/preview/slide", map[string]any{"lo": 7, "hi": 99})
	snap := c.state()
	assert.Equal(t, "7", snap.Start)
	assert.Equal(t, "10", snap.Stop)
	assert.Equal(t, 3, snap.Selected)
}

func TestPreviewSlide_BeforeLoad(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t)}

	rec := c.signals("/preview/slide", map[string]any{"lo": 0, "hi": 1})
	assert.Contains(t, rec.Body.String(), "SEL003")
}

func TestPreviewKey_UnknownColumn(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t)}
	c.upload("list.csv", recipientsCSV(2))

	rec := c.signals("/preview/key", map[string]any{"emailKey": "phone"})
	assert.Contains(t, rec.Body.String(), "SEL001")
	assert.Equal(t, "name", c.state().EmailKey)
}

func TestAPIPreview(t *testing.T) {
	srv := newTestServer(t)

	body, contentType := multipartBody(t, "list.csv", recipientsCSV(5))
	req := httptest.NewRequest(http.MethodPost, "/api/preview", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp PreviewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"name", "email"}, resp.Columns)
	assert.Equal(t, 5, resp.Rows)
	assert.Len(t, resp.Sample, 3)

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var runs []core.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, core.OutcomeApplied, runs[0].Outcome)
}

func TestAPIPreview_Errors(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		status   int
		wantCode string
	}{
		{"no file", "", "", http.StatusBadRequest, "FILE004"},
		{"unsupported type", "list.xlsx", "a,b", http.StatusUnsupportedMediaType, "READ003"},
		{"malformed csv", "bad.csv", "a\n\"x", http.StatusUnprocessableEntity, "PARSE001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t)
			body, contentType := multipartBody(t, tt.file, tt.content)
			req := httptest.NewRequest(http.MethodPost, "/api/preview", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			srv.Router().ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Code)
		})
	}
}

func TestAPI_RequiresKey(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) {
		cfg.Security.RequireAPIKey = true
		cfg.Security.APIKeys = []string{"secret"}
	})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	req.Header.Set("X-API-Key", "secret")
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2, resp.Core.Limiter.MaxConcurrent)
}
