package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/joeblew999/plat-hospitel/internal/service"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 60, cfg.Camera.PaddingPx)
	assert.Equal(t, 600, cfg.Camera.DurationMs)
	assert.InDelta(t, 14.0, cfg.Camera.DefaultZoom, 0.001)
	assert.InDelta(t, 12.5, cfg.Map.InitialZoom, 0.001)
	assert.Equal(t, "street", cfg.Styles.Default)
	assert.Equal(t, "https://demotiles.maplibre.org/style.json", cfg.Styles.StreetURL)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)

	assert.Equal(t, service.DefaultCameraSettings(), cfg.CameraSettings())
	assert.Equal(t, service.StyleStreet, cfg.DefaultStyle())
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
log:
  level: debug
  format: console
camera:
  padding_px: 80
  duration_ms: 900
styles:
  default: satellite
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hospitel.yaml"), []byte(yaml), 0644))

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 80, cfg.CameraSettings().PaddingPx)
	assert.Equal(t, 900*time.Millisecond, cfg.CameraSettings().Duration)
	assert.Equal(t, service.StyleSatellite, cfg.DefaultStyle())
	// Defaults still apply for unset values
	assert.InDelta(t, 14.0, cfg.Camera.DefaultZoom, 0.001)
}

func TestLoadExplicitPath(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "dash.yaml")
	require.NoError(t, os.WriteFile(path, []byte("map:\n  initial_zoom: 11\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.InDelta(t, 11.0, cfg.Map.InitialZoom, 0.001)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hospitel.yaml"), []byte("log:\n  level: debug\n"), 0644))

	t.Setenv("HOSPITEL_LOG_LEVEL", "warn")
	t.Setenv("HOSPITEL_CAMERA_PADDING_PX", "24")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 24, cfg.Camera.PaddingPx)
}

func TestStyleSetFromConfig(t *testing.T) {
	chdirTemp(t)
	t.Setenv("HOSPITEL_STYLES_STREET_URL", "https://tiles.example.test/style.json")

	cfg, err := Load("")
	require.NoError(t, err)

	street, err := cfg.StyleSet().Get(service.StyleStreet)
	require.NoError(t, err)
	assert.Equal(t, "https://tiles.example.test/style.json", street.URL)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
