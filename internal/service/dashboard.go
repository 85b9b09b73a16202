package service

import (
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Selection results reported to the Observer.
const (
	SelectionOK      = "ok"
	SelectionUnknown = "unknown"
)

// Observer receives dashboard counters. *observability.Collector satisfies it.
type Observer interface {
	CameraObserver
	ObserveSelection(result string)
}

// DashboardOptions configures a session.
type DashboardOptions struct {
	Camera       CameraSettings
	Styles       *StyleSet
	DefaultStyle StyleMode
	Bus          *EventBus
	Metrics      Observer
}

// Dashboard is one view session: the catalog, its selection store and the
// viewport controller wired to a rendering surface.
type Dashboard struct {
	catalog  *Catalog
	store    *SelectionStore
	surface  Surface
	viewport *ViewportController
	styles   *StyleSet
	bus      *EventBus
	metrics  Observer

	mu       sync.RWMutex
	style    StyleMode
	selected Selection
}

// Selection pairs the active facility with the camera command issued for it.
// Both change together, so a reader never sees one facility's id with
// another's framing.
type Selection struct {
	Facility Facility
	Camera   CameraCommand
}

// NewDashboard sets the base style, places the origin and facility markers
// and frames the default selection.
func NewDashboard(catalog *Catalog, surface Surface, opts DashboardOptions) (*Dashboard, error) {
	if catalog == nil {
		return nil, eris.New("dashboard: nil catalog")
	}
	if opts.Styles == nil {
		opts.Styles = NewStyleSet(DefaultStyleConfig())
	}
	if opts.DefaultStyle == "" {
		opts.DefaultStyle = StyleStreet
	}
	base, err := opts.Styles.Get(opts.DefaultStyle)
	if err != nil {
		return nil, eris.Wrap(err, "dashboard: default style")
	}

	d := &Dashboard{
		catalog:  catalog,
		store:    NewSelectionStore(catalog),
		surface:  surface,
		viewport: NewViewportController(surface, opts.Camera, opts.Metrics),
		styles:   opts.Styles,
		bus:      opts.Bus,
		metrics:  opts.Metrics,
		style:    base.Mode,
	}

	surface.SetBaseStyle(base)

	origin := catalog.Origin()
	surface.PlaceMarker(origin.Position, MarkerContent{
		Kind:  MarkerOrigin,
		Label: origin.Label,
		Color: "#2563eb",
	})
	for _, m := range ProjectMarkers(catalog) {
		surface.PlaceMarker(m.Position, MarkerContent{
			Kind:  MarkerFacility,
			ID:    m.ID,
			Label: m.Name,
			Tier:  m.Tier,
			Color: m.Color,
		})
	}

	d.store.Subscribe(d.onSelectionChanged)
	d.onSelectionChanged(d.store.Current())
	return d, nil
}

// onSelectionChanged runs synchronously inside Select: views are told
// first, then the route line is drawn and the camera moved. The selection
// readers see is replaced only once the camera command exists.
func (d *Dashboard) onSelectionChanged(rec Facility) {
	d.bus.Publish(Event{
		Resource: ResourceSelection,
		Action:   ActionSelected,
		ID:       rec.ID,
		Payload:  rec,
	})

	var cmd CameraCommand
	geom, err := BuildGeometry(rec.Route.Waypoints)
	if err == nil {
		d.surface.DrawLine(geom.Line, DefaultRouteStyle())
		cmd, err = d.viewport.OnSelectionChanged(rec)
	}
	if err != nil {
		// Catalog validation rejects routes without waypoints.
		zap.L().Error("dashboard: route", zap.String("facility", rec.ID), zap.Error(err))
	}

	d.mu.Lock()
	d.selected = Selection{Facility: rec, Camera: cmd}
	d.mu.Unlock()
}

// Select makes id the active facility. Unknown ids are rejected with
// ErrUnknownFacility and change nothing.
func (d *Dashboard) Select(id string) error {
	if err := d.store.Select(id); err != nil {
		d.observeSelection(SelectionUnknown)
		zap.L().Warn("selection rejected", zap.String("facility", id))
		return err
	}
	d.observeSelection(SelectionOK)
	zap.L().Info("facility selected", zap.String("facility", id))
	return nil
}

func (d *Dashboard) observeSelection(result string) {
	if d.metrics != nil {
		d.metrics.ObserveSelection(result)
	}
}

// SetStyle switches the base map style. It does not touch the selection.
func (d *Dashboard) SetStyle(mode StyleMode) (BaseStyle, error) {
	base, err := d.styles.Get(mode)
	if err != nil {
		return BaseStyle{}, err
	}
	d.mu.Lock()
	d.style = mode
	d.mu.Unlock()

	d.surface.SetBaseStyle(base)
	zap.L().Info("base style changed", zap.String("style", string(mode)))
	return base, nil
}

// Style returns the active base style mode.
func (d *Dashboard) Style() StyleMode {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.style
}

// Styles returns the configured style set.
func (d *Dashboard) Styles() *StyleSet {
	return d.styles
}

// Selection returns the active facility and its camera command from one read.
func (d *Dashboard) Selection() Selection {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.selected
}

// Camera returns the camera command issued for the active facility.
func (d *Dashboard) Camera() CameraCommand {
	return d.Selection().Camera
}

// Catalog returns the facility catalog.
func (d *Dashboard) Catalog() *Catalog {
	return d.catalog
}

// Current returns the selected facility. During a Select it is the previous
// facility until the new camera command has been issued.
func (d *Dashboard) Current() Facility {
	return d.Selection().Facility
}

// Subscribe registers fn for selection changes. Callbacks run after the
// dashboard has committed the new selection and must not call Select.
func (d *Dashboard) Subscribe(fn func(Facility)) (unsubscribe func()) {
	return d.store.Subscribe(fn)
}

// Snapshot is every read-side view derived from one selection read.
type Snapshot struct {
	SelectedID string        `json:"selectedId"`
	Style      StyleMode     `json:"style"`
	Origin     Origin        `json:"origin"`
	Detail     DetailView    `json:"detail"`
	Metrics    []MetricView  `json:"metrics"`
	List       []ListRow     `json:"list"`
	Markers    []MarkerView  `json:"markers"`
	Legend     []LegendEntry `json:"legend"`
	Route      RouteGeometry `json:"route"`
}

// Snapshot projects all views from a single read of the selection, so the
// panels never disagree about which facility is active.
func (d *Dashboard) Snapshot() Snapshot {
	return d.SnapshotOf(d.Current())
}

// SnapshotOf projects all views with rec as the active facility. Streams use
// it with the record carried by a selection event.
func (d *Dashboard) SnapshotOf(rec Facility) Snapshot {
	geom, _ := BuildGeometry(rec.Route.Waypoints)
	return Snapshot{
		SelectedID: rec.ID,
		Style:      d.Style(),
		Origin:     d.catalog.Origin(),
		Detail:     ProjectDetail(rec),
		Metrics:    ProjectMetrics(rec.Resources),
		List:       ProjectList(d.catalog, rec.ID),
		Markers:    ProjectMarkers(d.catalog),
		Legend:     Legend(),
		Route:      geom,
	}
}
