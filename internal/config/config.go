// Package config loads dashboard settings with viper and sets up the zap logger.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/joeblew999/plat-hospitel/internal/service"
)

// Config is the root configuration.
type Config struct {
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
	Camera CameraConfig `yaml:"camera" mapstructure:"camera"`
	Map    MapConfig    `yaml:"map" mapstructure:"map"`
	Styles StylesConfig `yaml:"styles" mapstructure:"styles"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// CameraConfig configures viewport moves.
type CameraConfig struct {
	PaddingPx   int     `yaml:"padding_px" mapstructure:"padding_px"`
	DurationMs  int     `yaml:"duration_ms" mapstructure:"duration_ms"`
	DefaultZoom float64 `yaml:"default_zoom" mapstructure:"default_zoom"`
}

// MapConfig configures the page's initial map view.
type MapConfig struct {
	InitialZoom float64 `yaml:"initial_zoom" mapstructure:"initial_zoom"`
}

// StylesConfig configures the base map styles.
type StylesConfig struct {
	Default              string `yaml:"default" mapstructure:"default"`
	StreetURL            string `yaml:"street_url" mapstructure:"street_url"`
	SatelliteTiles       string `yaml:"satellite_tiles" mapstructure:"satellite_tiles"`
	SatelliteAttribution string `yaml:"satellite_attribution" mapstructure:"satellite_attribution"`
}

// ServerConfig configures the HTTP edge.
type ServerConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// Load reads configuration from the file at path and the environment.
// With an empty path a hospitel.yaml in the working directory is used when present.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Config file
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("hospitel")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Environment
	v.SetEnvPrefix("HOSPITEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	styles := service.DefaultStyleConfig()
	camera := service.DefaultCameraSettings()
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("camera.padding_px", camera.PaddingPx)
	v.SetDefault("camera.duration_ms", int(camera.Duration.Milliseconds()))
	v.SetDefault("camera.default_zoom", camera.DefaultZoom)
	v.SetDefault("map.initial_zoom", 12.5)
	v.SetDefault("styles.default", string(service.StyleStreet))
	v.SetDefault("styles.street_url", styles.StreetURL)
	v.SetDefault("styles.satellite_tiles", styles.SatelliteTiles)
	v.SetDefault("styles.satellite_attribution", styles.SatelliteAttribution)
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Read config file (optional unless a path was given)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// CameraSettings converts the camera section for the viewport controller.
func (c *Config) CameraSettings() service.CameraSettings {
	return service.CameraSettings{
		PaddingPx:   c.Camera.PaddingPx,
		Duration:    time.Duration(c.Camera.DurationMs) * time.Millisecond,
		DefaultZoom: c.Camera.DefaultZoom,
	}
}

// StyleSet builds the base style descriptors.
func (c *Config) StyleSet() *service.StyleSet {
	return service.NewStyleSet(service.StyleConfig{
		StreetURL:            c.Styles.StreetURL,
		SatelliteTiles:       c.Styles.SatelliteTiles,
		SatelliteAttribution: c.Styles.SatelliteAttribution,
	})
}

// DefaultStyle returns the configured initial base style mode.
func (c *Config) DefaultStyle() service.StyleMode {
	return service.StyleMode(c.Styles.Default)
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
