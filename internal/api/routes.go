// Package api defines the Huma API routes and handlers.
package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/joeblew999/plat-hospitel/internal/humastar"
	"github.com/joeblew999/plat-hospitel/internal/service"
)

// Version is reported by /health and /api/v1/info.
const Version = "1.0.0"

// Services holds the service dependencies for API handlers.
type Services struct {
	Dashboard *service.Dashboard
}

// Types

type IDInput struct {
	ID string `path:"id" doc:"Facility ID" example:"h1"`
}

type PageInput struct {
	Offset int `query:"offset" minimum:"0" doc:"Rows to skip"`
	Limit  int `query:"limit" minimum:"0" maximum:"100" doc:"Page size, 0 for all"`
}

type HealthBody struct {
	Status     string `json:"status" doc:"Health status" example:"ok"`
	Version    string `json:"version" doc:"API version" example:"1.0.0"`
	Facilities int    `json:"facilities" doc:"Facilities in the catalog"`
}

// FacilityBody is a catalog record with its availability tier.
type FacilityBody struct {
	service.Facility
	Tier     service.Tier `json:"tier" enum:"high,moderate,limited" doc:"Availability tier"`
	Selected bool         `json:"selected" doc:"Whether this is the active selection"`
}

var facilityActions = []humastar.ActionDef{
	{Rel: "route", Pattern: "/api/v1/facilities/%s/route", Title: "Route geometry"},
	{Rel: "metrics", Pattern: "/api/v1/facilities/%s/metrics", Title: "Resource counters"},
	{Rel: "select", Pattern: "/api/v1/selection", Method: "PUT", Title: "Select facility"},
}

// Actions implements humastar.Actor. The select action is offered only
// when the facility is not already selected.
func (b FacilityBody) Actions() []humastar.Action {
	actions := humastar.ActionsFor(b.ID, facilityActions)
	if b.Selected {
		actions = actions[:2]
	}
	return actions
}

type RouteBody struct {
	ID       string                `json:"id" doc:"Facility ID"`
	Geometry service.RouteGeometry `json:"geometry"`
	Steps    []service.RouteStep   `json:"steps" doc:"Step annotations, not aligned with waypoints"`
}

type GeoJSONOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

type SelectionBody struct {
	ID     string                `json:"id" doc:"Selected facility ID" example:"h3"`
	Name   string                `json:"name" doc:"Selected facility name"`
	Style  service.StyleMode     `json:"style" doc:"Active base style"`
	Camera service.CameraCommand `json:"camera" doc:"Last camera command issued"`
}

type SelectInput struct {
	Body struct {
		ID string `json:"id" minLength:"1" doc:"Facility ID to select" example:"h3"`
	}
}

type StyleBody struct {
	Mode  service.StyleMode   `json:"mode" doc:"Active base style"`
	Modes []service.StyleMode `json:"modes" doc:"Available base styles"`
	Style service.BaseStyle   `json:"style" doc:"Style descriptor handed to the map"`
}

type StyleInput struct {
	Body struct {
		Mode string `json:"mode" minLength:"1" doc:"Base style mode" example:"satellite"`
	}
}

// APIHandler holds all REST API handlers. Methods named Register* are
// auto-discovered by huma.AutoRegister.
type APIHandler struct {
	svc *Services
}

func NewAPIHandler(svc *Services) *APIHandler {
	return &APIHandler{svc: svc}
}

// RegisterHealth registers health check routes.
func (h *APIHandler) RegisterHealth(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
}

// RegisterFacilities registers read-only catalog routes.
func (h *APIHandler) RegisterFacilities(api huma.API) {
	huma.Get(api, "/api/v1/facilities", h.ListFacilities, huma.OperationTags("facilities"))
	huma.Get(api, "/api/v1/facilities/{id}", h.GetFacility, huma.OperationTags("facilities"))
	huma.Get(api, "/api/v1/facilities/{id}/metrics", h.GetMetrics, huma.OperationTags("facilities"))
	huma.Get(api, "/api/v1/facilities/{id}/route", h.GetRoute, huma.OperationTags("facilities"))
	huma.Register(api, huma.Operation{
		OperationID: "get-route-geojson",
		Method:      "GET",
		Path:        "/api/v1/facilities/{id}/route.geojson",
		Summary:     "Get route as GeoJSON",
		Tags:        []string{"facilities"},
	}, h.GetRouteGeoJSON)
	huma.Get(api, "/api/v1/markers", h.GetMarkers, huma.OperationTags("facilities"))
}

// RegisterSelection registers selection and style routes.
func (h *APIHandler) RegisterSelection(api huma.API) {
	huma.Get(api, "/api/v1/selection", h.GetSelection, huma.OperationTags("selection"))
	huma.Put(api, "/api/v1/selection", h.PutSelection, huma.OperationTags("selection"))
	huma.Get(api, "/api/v1/snapshot", h.GetSnapshot, huma.OperationTags("selection"))
	huma.Get(api, "/api/v1/style", h.GetStyle, huma.OperationTags("style"))
	huma.Put(api, "/api/v1/style", h.PutStyle, huma.OperationTags("style"))
}

// Handlers

func (h *APIHandler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	return &struct{ Body HealthBody }{Body: HealthBody{
		Status:     "ok",
		Version:    Version,
		Facilities: h.svc.Dashboard.Catalog().Len(),
	}}, nil
}

func (h *APIHandler) ListFacilities(ctx context.Context, input *PageInput) (*struct {
	Body humastar.PageBody[service.ListRow]
}, error) {
	d := h.svc.Dashboard
	rows := service.ProjectList(d.Catalog(), d.Current().ID)
	return &struct {
		Body humastar.PageBody[service.ListRow]
	}{Body: humastar.Paginate(rows, input.Offset, input.Limit)}, nil
}

func (h *APIHandler) facility(id string) (service.Facility, error) {
	rec, ok := h.svc.Dashboard.Catalog().Get(id)
	if !ok {
		return service.Facility{}, huma.Error404NotFound("facility not found: " + id)
	}
	return rec, nil
}

func (h *APIHandler) GetFacility(ctx context.Context, input *IDInput) (*struct{ Body FacilityBody }, error) {
	rec, err := h.facility(input.ID)
	if err != nil {
		return nil, err
	}
	return &struct{ Body FacilityBody }{Body: FacilityBody{
		Facility: rec,
		Tier:     service.Classify(rec.Capacity.Available),
		Selected: h.svc.Dashboard.Current().ID == rec.ID,
	}}, nil
}

func (h *APIHandler) GetMetrics(ctx context.Context, input *IDInput) (*struct{ Body []service.MetricView }, error) {
	rec, err := h.facility(input.ID)
	if err != nil {
		return nil, err
	}
	return &struct{ Body []service.MetricView }{Body: service.ProjectMetrics(rec.Resources)}, nil
}

func (h *APIHandler) GetRoute(ctx context.Context, input *IDInput) (*struct{ Body RouteBody }, error) {
	rec, err := h.facility(input.ID)
	if err != nil {
		return nil, err
	}
	geom, err := service.BuildGeometry(rec.Route.Waypoints)
	if err != nil {
		return nil, huma.Error500InternalServerError("route geometry", err)
	}
	return &struct{ Body RouteBody }{Body: RouteBody{ID: rec.ID, Geometry: geom, Steps: rec.Route.Steps}}, nil
}

func (h *APIHandler) GetRouteGeoJSON(ctx context.Context, input *IDInput) (*GeoJSONOutput, error) {
	rec, err := h.facility(input.ID)
	if err != nil {
		return nil, err
	}
	geom, err := service.BuildGeometry(rec.Route.Waypoints)
	if err != nil {
		return nil, huma.Error500InternalServerError("route geometry", err)
	}
	fc := geom.FeatureCollection()
	fc.Features[0].Properties["id"] = rec.ID
	fc.Features[0].Properties["lengthKm"] = geom.LengthKm
	body, err := fc.MarshalJSON()
	if err != nil {
		return nil, huma.Error500InternalServerError("encode geojson", err)
	}
	return &GeoJSONOutput{ContentType: "application/geo+json", Body: body}, nil
}

func (h *APIHandler) GetMarkers(ctx context.Context, input *struct{}) (*struct{ Body []service.MarkerView }, error) {
	return &struct{ Body []service.MarkerView }{Body: service.ProjectMarkers(h.svc.Dashboard.Catalog())}, nil
}

func (h *APIHandler) selection() SelectionBody {
	d := h.svc.Dashboard
	sel := d.Selection()
	return SelectionBody{ID: sel.Facility.ID, Name: sel.Facility.Name, Style: d.Style(), Camera: sel.Camera}
}

func (h *APIHandler) GetSelection(ctx context.Context, input *struct{}) (*struct{ Body SelectionBody }, error) {
	return &struct{ Body SelectionBody }{Body: h.selection()}, nil
}

func (h *APIHandler) PutSelection(ctx context.Context, input *SelectInput) (*struct{ Body SelectionBody }, error) {
	if err := h.svc.Dashboard.Select(input.Body.ID); err != nil {
		return nil, toHTTPError(err)
	}
	return &struct{ Body SelectionBody }{Body: h.selection()}, nil
}

func (h *APIHandler) GetSnapshot(ctx context.Context, input *struct{}) (*struct{ Body service.Snapshot }, error) {
	return &struct{ Body service.Snapshot }{Body: h.svc.Dashboard.Snapshot()}, nil
}

func (h *APIHandler) style() (StyleBody, error) {
	d := h.svc.Dashboard
	mode := d.Style()
	st, err := d.Styles().Get(mode)
	if err != nil {
		return StyleBody{}, toHTTPError(err)
	}
	return StyleBody{Mode: mode, Modes: d.Styles().Modes(), Style: st}, nil
}

func (h *APIHandler) GetStyle(ctx context.Context, input *struct{}) (*struct{ Body StyleBody }, error) {
	body, err := h.style()
	if err != nil {
		return nil, err
	}
	return &struct{ Body StyleBody }{Body: body}, nil
}

func (h *APIHandler) PutStyle(ctx context.Context, input *StyleInput) (*struct{ Body StyleBody }, error) {
	if _, err := h.svc.Dashboard.SetStyle(service.StyleMode(input.Body.Mode)); err != nil {
		return nil, toHTTPError(err)
	}
	body, err := h.style()
	if err != nil {
		return nil, err
	}
	return &struct{ Body StyleBody }{Body: body}, nil
}

// toHTTPError maps domain errors to Huma status errors.
func toHTTPError(err error) error {
	switch {
	case eris.Is(err, service.ErrUnknownFacility):
		return huma.Error404NotFound(err.Error())
	case eris.Is(err, service.ErrUnknownStyle):
		return huma.Error422UnprocessableEntity(err.Error())
	default:
		zap.L().Error("api: unexpected error", zap.Error(err))
		return huma.Error500InternalServerError("internal error")
	}
}
