package server

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-hospitel/internal/config"
	"github.com/joeblew999/plat-hospitel/internal/service"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	t.Chdir(t.TempDir())
	settings, err := config.Load("")
	require.NoError(t, err)

	s, err := New(Config{Host: "localhost", Port: "0", Settings: settings})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func do(s *Server, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestDashboardPage(t *testing.T) {
	s := newTestServer(t)

	rec := do(s, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<title>Hospitel</title>")
	assert.Contains(t, body, "maplibregl.Map")
	assert.Contains(t, body, "/api/v1/dashboard/events")
	assert.Contains(t, body, "demotiles.maplibre.org")
	assert.Contains(t, body, "12.5")
	assert.NotEmpty(t, rec.Header().Values("Link"))

	rec = do(s, http.MethodGet, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSelectEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := do(s, http.MethodPost, "/api/v1/dashboard/select/h3")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "datastar-patch-signals")
	assert.Contains(t, rec.Body.String(), `"selected":"h3"`)
	assert.Equal(t, "h3", s.Dashboard().Current().ID)
	assert.Equal(t, service.CameraFitBounds, s.Dashboard().Camera().Kind)

	rec = do(s, http.MethodPost, "/api/v1/dashboard/select/h9")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unknown facility: h9")
	assert.Equal(t, "h3", s.Dashboard().Current().ID)

	metrics := do(s, http.MethodGet, "/metrics").Body.String()
	assert.Contains(t, metrics, `hospitel_selections_total{result="ok"} 1`)
	assert.Contains(t, metrics, `hospitel_selections_total{result="unknown"} 1`)
	assert.Contains(t, metrics, `hospitel_camera_commands_total{kind="fit_bounds"} 2`)
}

func TestStyleEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := do(s, http.MethodPost, "/api/v1/dashboard/style/satellite")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"style":"satellite"`)
	assert.Equal(t, service.StyleSatellite, s.Dashboard().Style())

	rec = do(s, http.MethodPost, "/api/v1/dashboard/style/terrain")
	assert.Contains(t, rec.Body.String(), "Unknown map style: terrain")
	assert.Equal(t, service.StyleSatellite, s.Dashboard().Style())
}

func TestRESTRoutesMounted(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/health", "/api/v1/info", "/api/v1/facilities", "/api/v1/markers", "/api/v1/tables", "/openapi.json"} {
		rec := do(s, http.MethodGet, path)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/selection", nil)
	req.Header.Set("Origin", "https://ops.example.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

// readUntil scans SSE lines until every want string has been seen.
func readUntil(t *testing.T, r *bufio.Reader, want ...string) {
	t.Helper()
	pending := map[string]bool{}
	for _, w := range want {
		pending[w] = true
	}
	for len(pending) > 0 {
		line, err := r.ReadString('\n')
		if err != nil {
			require.NoError(t, err, "stream ended, still waiting for %v", pending)
		}
		for w := range pending {
			if strings.Contains(line, w) {
				delete(pending, w)
			}
		}
	}
}

func TestEventsStream(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/v1/dashboard/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	r := bufio.NewReader(resp.Body)
	// Initial panels for the default selection plus the retained map state.
	readUntil(t, r, "#detail", "#facility-list", "Korle-Bu Teaching Hospital", "map-command", "fit_bounds")

	post, err := http.Post(ts.URL+"/api/v1/dashboard/select/h2", "application/json", nil)
	require.NoError(t, err)
	io.Copy(io.Discard, post.Body)
	post.Body.Close()

	readUntil(t, r, `"selected":"h2"`, "map-command")
}
