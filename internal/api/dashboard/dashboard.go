// Package dashboard contains the Datastar SSE handlers for the dashboard UI.
package dashboard

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joeblew999/plat-hospitel/internal/humastar"
	"github.com/joeblew999/plat-hospitel/internal/observability"
	"github.com/joeblew999/plat-hospitel/internal/service"
	"github.com/joeblew999/plat-hospitel/internal/templates"
)

// MapCommandEvent is the DOM event the page's map script listens for.
const MapCommandEvent = "map-command"

// Handler streams panel patches and map commands to the dashboard page.
type Handler struct {
	humastar.Handler
	dash    *service.Dashboard
	bus     *service.EventBus
	surface *service.BusSurface
	metrics *observability.Collector
}

// NewHandler creates a dashboard handler. metrics may be nil.
func NewHandler(dash *service.Dashboard, bus *service.EventBus, surface *service.BusSurface, renderer *templates.Renderer, metrics *observability.Collector) *Handler {
	return &Handler{
		Handler: humastar.Handler{Renderer: renderer},
		dash:    dash,
		bus:     bus,
		surface: surface,
		metrics: metrics,
	}
}

type IDInput struct {
	ID string `path:"id" doc:"Facility ID" example:"h3"`
}

type ModeInput struct {
	Mode string `path:"mode" doc:"Base style mode" example:"satellite"`
}

func (h *Handler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/dashboard/events", h.Events,
		huma.OperationTags("dashboard"),
	)
	huma.Post(api, "/api/v1/dashboard/select/{id}", h.Select,
		huma.OperationTags("dashboard"),
	)
	huma.Post(api, "/api/v1/dashboard/style/{mode}", h.Style,
		huma.OperationTags("dashboard"),
	)
}

// Events streams the current panels and retained map state, then forwards
// every dashboard change until the client goes away.
func (h *Handler) Events(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		conn := uuid.NewString()
		log := zap.L().With(zap.String("conn", conn))

		// Subscribe before the initial render so nothing is missed in between.
		ch, retained := h.surface.Subscribe()
		defer h.bus.Unsubscribe(ch)

		h.metrics.StreamOpened()
		defer h.metrics.StreamClosed()
		log.Info("dashboard stream opened")
		defer log.Info("dashboard stream closed")

		h.patchPanels(sse, h.dash.Snapshot())
		for _, ev := range retained {
			h.mapCommand(sse, ev)
		}

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				switch ev.Resource {
				case service.ResourceSelection:
					// The event carries the new record; the dashboard
					// commits it only after the camera has moved.
					if rec, ok := ev.Payload.(service.Facility); ok {
						h.patchPanels(sse, h.dash.SnapshotOf(rec))
					}
				case service.ResourceMap:
					h.mapCommand(sse, ev)
				}
			}
		}
	}), nil
}

// Select makes a facility active. Panels and the map update over the
// events stream.
func (h *Handler) Select(ctx context.Context, input *IDInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		if err := h.dash.Select(input.ID); err != nil {
			sse.Error("Unknown facility: " + input.ID)
			return
		}
		sse.Signals(map[string]any{"selected": input.ID, "error": ""})
	}), nil
}

// Style toggles the base map style.
func (h *Handler) Style(ctx context.Context, input *ModeInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		if _, err := h.dash.SetStyle(service.StyleMode(input.Mode)); err != nil {
			sse.Error("Unknown map style: " + input.Mode)
			return
		}
		sse.Signals(map[string]any{"style": input.Mode, "error": ""})
	}), nil
}

func (h *Handler) patchPanels(sse humastar.SSE, snap service.Snapshot) {
	rows := make([]any, len(snap.List))
	for i, r := range snap.List {
		rows[i] = r
	}

	sse.Patch(h.Renderer.MustRender("detail", snap.Detail), "#detail")
	sse.Patch(h.Renderer.MustRender("metrics", snap.Metrics), "#metrics")
	sse.Patch(h.Renderer.MustRender("route-steps", snap.Detail), "#route-steps")
	sse.Patch(h.RenderList("facility-row", rows, "No facilities", "The catalog is empty."), "#facility-list")
	sse.Patch(h.Renderer.MustRender("legend", snap.Legend), "#legend")
	sse.Signals(map[string]any{"selected": snap.SelectedID, "style": string(snap.Style)})
}

func (h *Handler) mapCommand(sse humastar.SSE, ev service.Event) {
	sse.Event(MapCommandEvent, map[string]any{
		"action":  ev.Action,
		"id":      ev.ID,
		"payload": ev.Payload,
	})
}
