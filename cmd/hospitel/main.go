package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/joeblew999/plat-hospitel/internal/config"
	"github.com/joeblew999/plat-hospitel/internal/server"
	"github.com/joeblew999/plat-hospitel/internal/service"
)

// Options defines all CLI flags and env vars for the dashboard server.
// Flags: --host, --port, --catalog, --config
// Env vars: SERVICE_HOST, SERVICE_PORT, SERVICE_CATALOG, SERVICE_CONFIG
type Options struct {
	Host    string `doc:"Host to bind to" default:"0.0.0.0"`
	Port    int    `doc:"Port to listen on" short:"p" default:"8087"`
	Catalog string `doc:"Facility catalog YAML file (embedded Accra catalog when empty)" default:""`
	Config  string `doc:"Dashboard config file (hospitel.yaml in the working directory when empty)" default:""`
}

func newServer(opts *Options) (*server.Server, error) {
	settings, err := config.Load(opts.Config)
	if err != nil {
		return nil, err
	}
	if err := config.InitLogger(settings.Log); err != nil {
		return nil, err
	}
	return server.New(server.Config{
		Host:        opts.Host,
		Port:        fmt.Sprintf("%d", opts.Port),
		CatalogPath: opts.Catalog,
		Settings:    settings,
	})
}

func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		var httpServer *http.Server

		hooks.OnStart(func() {
			srv, err := newServer(opts)
			if err != nil {
				fatal("Startup failed", err)
			}
			defer srv.Close()
			defer zap.L().Sync()

			addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
			displayHost := opts.Host
			if displayHost == "0.0.0.0" {
				displayHost = "localhost"
			}
			baseURL := fmt.Sprintf("http://%s:%d", displayHost, opts.Port)

			fmt.Println()
			fmt.Printf("plat-hospitel dashboard starting...\n")
			fmt.Printf("  Server:  %s\n", baseURL)
			fmt.Printf("  Catalog: %s\n", catalogName(opts.Catalog))
			fmt.Println()
			fmt.Printf("  Page:    %s/\n", baseURL)
			fmt.Printf("  Docs:    %s/docs\n", baseURL)
			fmt.Printf("  OpenAPI: %s/openapi.json\n", baseURL)
			fmt.Printf("  Metrics: %s/metrics\n", baseURL)
			fmt.Println()

			httpServer = &http.Server{Addr: addr, Handler: srv, ReadHeaderTimeout: 10 * time.Second}
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				zap.L().Error("server error", zap.Error(err))
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			if httpServer == nil {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			httpServer.Shutdown(ctx)
		})
	})

	cli.Root().Use = "hospitel"
	cli.Root().Short = "Facility locator dashboard with selection-driven map sync"
	cli.Root().Version = "0.1.0"

	// spec subcommand: export OpenAPI spec
	specCmd := &cobra.Command{
		Use:   "spec",
		Short: "Export OpenAPI spec (JSON by default, --yaml for YAML)",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			srv, err := newServer(opts)
			if err != nil {
				fatal("Startup failed", err)
			}
			defer srv.Close()

			useYAML, _ := cmd.Flags().GetBool("yaml")
			output, err := json.MarshalIndent(srv.API().OpenAPI(), "", "  ")
			if err == nil && useYAML {
				output, err = jsonToYAML(output)
			}
			if err != nil {
				fatal("Error marshaling OpenAPI", err)
			}
			fmt.Println(string(output))
		}),
	}
	specCmd.Flags().BoolP("yaml", "y", false, "Output as YAML instead of JSON")
	cli.Root().AddCommand(specCmd)

	// validate subcommand: load a catalog and report what the dashboard would draw
	validateCmd := &cobra.Command{
		Use:   "validate [catalog.yaml]",
		Short: "Validate a facility catalog (embedded catalog when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			catalog, err := server.LoadCatalog(path)
			if err != nil {
				fatal("Invalid catalog", err)
			}
			printSummary(cmd, catalog)
		},
	}
	cli.Root().AddCommand(validateCmd)

	cli.Run()
}

func catalogName(path string) string {
	if path == "" {
		return "embedded"
	}
	return path
}

// jsonToYAML re-encodes a JSON document as YAML.
func jsonToYAML(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return yaml.Marshal(doc)
}

func printSummary(cmd *cobra.Command, catalog *service.Catalog) {
	out := cmd.OutOrStdout()
	origin := catalog.Origin()
	fmt.Fprintf(out, "Origin: %s (%.4f, %.4f)\n", origin.Label, origin.Position.Lat, origin.Position.Lng)
	fmt.Fprintf(out, "Facilities: %d\n\n", catalog.Len())
	for _, f := range catalog.List() {
		geom, err := service.BuildGeometry(f.Route.Waypoints)
		if err != nil {
			fatal("Invalid route", err)
		}
		camera := service.CameraFitBounds
		if geom.Bounds.IsDegenerate() {
			camera = service.CameraCenterOn
		}
		fmt.Fprintf(out, "  %-4s %-42s %-9s %2d/%-3d beds  %d waypoints  %.2f km  camera=%s\n",
			f.ID, f.Name, service.Classify(f.Capacity.Available),
			f.Capacity.Available, f.Capacity.Total,
			len(f.Route.Waypoints), geom.LengthKm, camera)
	}
}
