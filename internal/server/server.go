// Package server wires the dashboard session, REST API, SSE handlers and
// metrics into one http.Handler.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/joeblew999/plat-hospitel/data"
	"github.com/joeblew999/plat-hospitel/internal/api"
	"github.com/joeblew999/plat-hospitel/internal/api/dashboard"
	"github.com/joeblew999/plat-hospitel/internal/config"
	"github.com/joeblew999/plat-hospitel/internal/db"
	"github.com/joeblew999/plat-hospitel/internal/humastar"
	"github.com/joeblew999/plat-hospitel/internal/observability"
	"github.com/joeblew999/plat-hospitel/internal/service"
	"github.com/joeblew999/plat-hospitel/internal/templates"
)

// Config holds the server configuration.
type Config struct {
	Host        string
	Port        string
	CatalogPath string // empty uses the embedded catalog
	Settings    *config.Config
	Registerer  prometheus.Registerer // nil uses a fresh registry
}

// Server is the hospitel HTTP server.
type Server struct {
	config   Config
	mux      *http.ServeMux
	handler  http.Handler
	humaAPI  huma.API
	links    *humastar.Links
	db       *db.Snapshot
	dash     *service.Dashboard
	bus      *service.EventBus
	surface  *service.BusSurface
	renderer *templates.Renderer
	metrics  *observability.Collector
}

// New loads the catalog and builds the server. The catalog is validated here,
// before anything becomes interactive.
func New(cfg Config) (*Server, error) {
	if cfg.Settings == nil {
		settings, err := config.Load("")
		if err != nil {
			return nil, err
		}
		cfg.Settings = settings
	}

	catalog, err := LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}

	reg := cfg.Registerer
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	metrics, err := observability.NewCollector(reg)
	if err != nil {
		return nil, eris.Wrap(err, "server: metrics")
	}

	renderer, err := templates.New()
	if err != nil {
		return nil, eris.Wrap(err, "server: templates")
	}

	bus := service.NewEventBus()
	surface := service.NewBusSurface(bus)
	dash, err := service.NewDashboard(catalog, surface, service.DashboardOptions{
		Camera:       cfg.Settings.CameraSettings(),
		Styles:       cfg.Settings.StyleSet(),
		DefaultStyle: cfg.Settings.DefaultStyle(),
		Bus:          bus,
		Metrics:      metrics,
	})
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()

	// Create Huma API with humago (pure stdlib) adapter
	links := humastar.NewLinks("/health")
	humaConfig := huma.DefaultConfig("plat-hospitel API", api.Version)
	humaConfig.Info.Description = "Facility locator dashboard: availability, routes and selection-driven map sync."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}
	// Disable $schema property in responses (cleaner JSON)
	humaConfig.CreateHooks = []func(huma.Config) huma.Config{}
	humaConfig.Transformers = append(humaConfig.Transformers, links.Transformer())

	s := &Server{
		config:   cfg,
		mux:      mux,
		humaAPI:  humago.New(mux, humaConfig),
		links:    links,
		dash:     dash,
		bus:      bus,
		surface:  surface,
		renderer: renderer,
		metrics:  metrics,
	}

	// The analytic snapshot is optional; the dashboard works without it.
	snap, err := db.Open(context.Background(), catalog)
	if err != nil {
		zap.L().Warn("duckdb snapshot unavailable", zap.Error(err))
	} else {
		s.db = snap
	}

	s.routes()
	s.handler = cors.Handler(cors.Options{
		AllowedOrigins: cfg.Settings.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Datastar-Request"},
		ExposedHeaders: []string{"Link"},
		MaxAge:         300,
	})(mux)

	zap.L().Info("server ready",
		zap.Int("facilities", catalog.Len()),
		zap.String("selected", dash.Current().ID),
		zap.Bool("db", s.db != nil),
	)
	return s, nil
}

// LoadCatalog reads the catalog at path, or the embedded one when path is empty.
func LoadCatalog(path string) (*service.Catalog, error) {
	if path == "" {
		return service.ParseCatalog(data.Catalog)
	}
	return service.LoadCatalog(path)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// API returns the Huma API, for OpenAPI export.
func (s *Server) API() huma.API {
	return s.humaAPI
}

// Dashboard returns the server's view session.
func (s *Server) Dashboard() *service.Dashboard {
	return s.dash
}

// Close closes server resources.
func (s *Server) Close() error {
	return s.db.Close()
}

func (s *Server) routes() {
	// Register Huma REST API routes (OpenAPI-documented JSON endpoints)
	huma.AutoRegister(s.humaAPI, api.NewAPIHandler(&api.Services{Dashboard: s.dash}))
	api.NewInfoHandler(s.config.CatalogPath, s.db != nil).RegisterRoutes(s.humaAPI)
	api.NewDBHandler(s.db).RegisterRoutes(s.humaAPI)

	// Register dashboard SSE routes using Huma + Datastar SDK
	dashboard.NewHandler(s.dash, s.bus, s.surface, s.renderer, s.metrics).RegisterRoutes(s.humaAPI)

	s.links.Build(s.humaAPI)

	s.mux.Handle("/metrics", s.metrics.Handler())
	s.mux.HandleFunc("/", s.handleRoot)
}

// PageData feeds the dashboard page template.
type PageData struct {
	Title        string
	SelectedID   string
	Style        service.StyleMode
	Styles       []service.StyleMode
	InitialStyle any
	Origin       service.Origin
	InitialZoom  float64
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	styles := s.dash.Styles()
	mode := s.dash.Style()
	base, err := styles.Get(mode)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	var initial any = base.URL
	if base.URL == "" {
		initial = base.Spec
	}

	for _, link := range s.links.For("/health") {
		w.Header().Add("Link", link)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = s.renderer.RenderToWriter(w, "dashboard", PageData{
		Title:        "Hospitel",
		SelectedID:   s.dash.Current().ID,
		Style:        mode,
		Styles:       styles.Modes(),
		InitialStyle: initial,
		Origin:       s.dash.Catalog().Origin(),
		InitialZoom:  s.config.Settings.Map.InitialZoom,
	})
	if err != nil {
		zap.L().Error("render dashboard page", zap.Error(err))
	}
}
