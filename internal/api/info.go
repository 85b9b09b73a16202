package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
)

type InfoHandler struct {
	catalogPath string
	dbOK        bool
}

func NewInfoHandler(catalogPath string, dbOK bool) *InfoHandler {
	if catalogPath == "" {
		catalogPath = "embedded"
	}
	return &InfoHandler{catalogPath: catalogPath, dbOK: dbOK}
}

func (h *InfoHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/info", h.GetInfo, huma.OperationTags("health"))
}

type InfoBody struct {
	Name     string   `json:"name" doc:"Service name"`
	Version  string   `json:"version" doc:"Service version"`
	Catalog  string   `json:"catalog" doc:"Catalog file, or embedded"`
	DB       bool     `json:"db" doc:"Whether the analytic snapshot is available"`
	Features []string `json:"features" doc:"Available features"`
}

func (h *InfoHandler) GetInfo(ctx context.Context, input *struct{}) (*struct{ Body InfoBody }, error) {
	return &struct{ Body InfoBody }{Body: InfoBody{
		Name:     "plat-hospitel",
		Version:  Version,
		Catalog:  h.catalogPath,
		DB:       h.dbOK,
		Features: []string{"selection", "routes", "geojson", "datastar", "duckdb"},
	}}, nil
}
