package service

import (
	"sync"
	"time"

	"github.com/paulmach/orb"
)

// Surface is the map rendering surface the dashboard drives. Tiles, marker
// drawing and styling happen on the other side of this interface.
type Surface interface {
	SetBaseStyle(style BaseStyle)
	DrawLine(line orb.LineString, style LineStyle)
	PlaceMarker(pos Coordinate, content MarkerContent)
	FitBounds(b Bounds, paddingPx int, duration time.Duration)
	CenterOn(pos Coordinate, zoom float64)
}

// LinePaint is one stacked line layer.
type LinePaint struct {
	ID      string  `json:"id"`
	Color   string  `json:"color"`
	Width   float64 `json:"width"`
	Opacity float64 `json:"opacity"`
}

// LineStyle styles the active route polyline.
type LineStyle struct {
	Layers []LinePaint `json:"layers"`
}

// DefaultRouteStyle is a soft glow under a solid blue line.
func DefaultRouteStyle() LineStyle {
	return LineStyle{Layers: []LinePaint{
		{ID: "route-glow", Color: "#93c5fd", Width: 6, Opacity: 0.6},
		{ID: "route-main", Color: "#2563eb", Width: 3, Opacity: 0.95},
	}}
}

// Marker kinds.
const (
	MarkerOrigin   = "origin"
	MarkerFacility = "facility"
)

// MarkerContent is what a marker shows.
type MarkerContent struct {
	Kind  string `json:"kind"`
	ID    string `json:"id,omitempty"`
	Label string `json:"label"`
	Tier  Tier   `json:"tier,omitempty"`
	Color string `json:"color"`
}

// Camera command kinds.
const (
	CameraFitBounds = "fit_bounds"
	CameraCenterOn  = "center_on"
)

// CameraCommand is a viewport move issued to the surface.
type CameraCommand struct {
	Kind       string      `json:"kind" enum:"fit_bounds,center_on"`
	Bounds     *Bounds     `json:"bounds,omitempty"`
	Center     *Coordinate `json:"center,omitempty"`
	PaddingPx  int         `json:"paddingPx,omitempty"`
	DurationMs int64       `json:"durationMs,omitempty"`
	Zoom       float64     `json:"zoom,omitempty"`
}

// LineCommand carries a route polyline to draw.
type LineCommand struct {
	Line  orb.LineString `json:"line"`
	Style LineStyle      `json:"style"`
}

// MarkerCommand places one marker.
type MarkerCommand struct {
	Position Coordinate    `json:"position"`
	Content  MarkerContent `json:"content"`
}

// SurfaceCall is one recorded surface invocation.
type SurfaceCall struct {
	Method  string
	Payload any
}

// RecordingSurface records every call. It backs headless sessions and tests.
type RecordingSurface struct {
	mu    sync.Mutex
	calls []SurfaceCall
}

func (s *RecordingSurface) record(method string, payload any) {
	s.mu.Lock()
	s.calls = append(s.calls, SurfaceCall{Method: method, Payload: payload})
	s.mu.Unlock()
}

func (s *RecordingSurface) SetBaseStyle(style BaseStyle) { s.record("SetBaseStyle", style) }

func (s *RecordingSurface) DrawLine(line orb.LineString, style LineStyle) {
	s.record("DrawLine", LineCommand{Line: line, Style: style})
}

func (s *RecordingSurface) PlaceMarker(pos Coordinate, content MarkerContent) {
	s.record("PlaceMarker", MarkerCommand{Position: pos, Content: content})
}

func (s *RecordingSurface) FitBounds(b Bounds, paddingPx int, duration time.Duration) {
	s.record("FitBounds", fitCommand(b, paddingPx, duration))
}

func (s *RecordingSurface) CenterOn(pos Coordinate, zoom float64) {
	s.record("CenterOn", centerCommand(pos, zoom))
}

// Calls returns a copy of the recorded calls.
func (s *RecordingSurface) Calls() []SurfaceCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SurfaceCall(nil), s.calls...)
}

// Cameras returns the camera commands in issue order.
func (s *RecordingSurface) Cameras() []CameraCommand {
	var out []CameraCommand
	for _, c := range s.Calls() {
		if cmd, ok := c.Payload.(CameraCommand); ok {
			out = append(out, cmd)
		}
	}
	return out
}

// Reset drops recorded calls.
func (s *RecordingSurface) Reset() {
	s.mu.Lock()
	s.calls = nil
	s.mu.Unlock()
}

// BusSurface forwards surface calls as map events to stream subscribers and
// retains the latest state so a new stream can catch up.
type BusSurface struct {
	bus *EventBus

	mu      sync.Mutex
	style   *Event
	line    *Event
	camera  *Event
	markers []Event
}

// NewBusSurface creates a surface publishing on bus.
func NewBusSurface(bus *EventBus) *BusSurface {
	return &BusSurface{bus: bus}
}

// publish retains and sends under one lock; Publish never blocks.
func (s *BusSurface) publish(action, id string, payload any, keep func(Event)) {
	ev := Event{Resource: ResourceMap, Action: action, ID: id, Payload: payload}
	s.mu.Lock()
	defer s.mu.Unlock()
	keep(ev)
	s.bus.Publish(ev)
}

func (s *BusSurface) SetBaseStyle(style BaseStyle) {
	s.publish(ActionStyle, "", style, func(ev Event) { s.style = &ev })
}

func (s *BusSurface) DrawLine(line orb.LineString, style LineStyle) {
	s.publish(ActionLine, "", LineCommand{Line: line, Style: style}, func(ev Event) { s.line = &ev })
}

func (s *BusSurface) PlaceMarker(pos Coordinate, content MarkerContent) {
	s.publish(ActionMarker, content.ID, MarkerCommand{Position: pos, Content: content}, func(ev Event) {
		s.markers = append(s.markers, ev)
	})
}

func (s *BusSurface) FitBounds(b Bounds, paddingPx int, duration time.Duration) {
	s.publish(ActionCamera, "", fitCommand(b, paddingPx, duration), func(ev Event) { s.camera = &ev })
}

func (s *BusSurface) CenterOn(pos Coordinate, zoom float64) {
	s.publish(ActionCamera, "", centerCommand(pos, zoom), func(ev Event) { s.camera = &ev })
}

// Subscribe registers a bus subscriber together with the retained state at
// that instant. Each map command reaches the caller exactly once: in the
// replay if it came before, on the channel if it came after.
func (s *BusSurface) Subscribe() (ch chan Event, retained []Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bus.Subscribe(), s.retained()
}

// Retained returns style, markers, line and camera in replay order.
// Replaying does not issue new commands; it shows a late subscriber the
// last ones.
func (s *BusSurface) Retained() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.retained()
}

func (s *BusSurface) retained() []Event {
	var out []Event
	if s.style != nil {
		out = append(out, *s.style)
	}
	out = append(out, s.markers...)
	if s.line != nil {
		out = append(out, *s.line)
	}
	if s.camera != nil {
		out = append(out, *s.camera)
	}
	return out
}

func fitCommand(b Bounds, paddingPx int, duration time.Duration) CameraCommand {
	return CameraCommand{
		Kind:       CameraFitBounds,
		Bounds:     &b,
		PaddingPx:  paddingPx,
		DurationMs: duration.Milliseconds(),
	}
}

func centerCommand(pos Coordinate, zoom float64) CameraCommand {
	return CameraCommand{Kind: CameraCenterOn, Center: &pos, Zoom: zoom}
}
