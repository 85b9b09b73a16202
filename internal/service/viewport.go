package service

import (
	"time"

	"go.uber.org/zap"
)

// MaxCameraTransition bounds the fit animation.
const MaxCameraTransition = 2 * time.Second

// CameraSettings configures viewport moves.
type CameraSettings struct {
	PaddingPx   int
	Duration    time.Duration
	DefaultZoom float64
}

// DefaultCameraSettings returns a 60px padding, 600ms fit and zoom 14 for
// single point routes.
func DefaultCameraSettings() CameraSettings {
	return CameraSettings{PaddingPx: 60, Duration: 600 * time.Millisecond, DefaultZoom: 14}
}

func (c CameraSettings) normalized() CameraSettings {
	def := DefaultCameraSettings()
	if c.PaddingPx < 0 {
		c.PaddingPx = 0
	}
	if c.Duration <= 0 {
		c.Duration = def.Duration
	}
	if c.Duration > MaxCameraTransition {
		c.Duration = MaxCameraTransition
	}
	if c.DefaultZoom <= 0 {
		c.DefaultZoom = def.DefaultZoom
	}
	return c
}

// CameraObserver counts camera commands by kind.
type CameraObserver interface {
	ObserveCamera(kind string)
}

// ViewportController is the only component that moves the camera.
type ViewportController struct {
	surface  Surface
	settings CameraSettings
	observer CameraObserver
}

// NewViewportController creates a controller driving surface. observer may be nil.
func NewViewportController(surface Surface, settings CameraSettings, observer CameraObserver) *ViewportController {
	return &ViewportController{
		surface:  surface,
		settings: settings.normalized(),
		observer: observer,
	}
}

// Settings returns the effective camera settings.
func (v *ViewportController) Settings() CameraSettings {
	return v.settings
}

// OnSelectionChanged issues one camera command framing rec's route. A route
// with zero-area bounds is centered at the default zoom instead of fitted.
func (v *ViewportController) OnSelectionChanged(rec Facility) (CameraCommand, error) {
	geom, err := BuildGeometry(rec.Route.Waypoints)
	if err != nil {
		return CameraCommand{}, err
	}

	var cmd CameraCommand
	if geom.Bounds.IsDegenerate() {
		center := geom.Bounds.Center()
		v.surface.CenterOn(center, v.settings.DefaultZoom)
		cmd = centerCommand(center, v.settings.DefaultZoom)
	} else {
		v.surface.FitBounds(geom.Bounds, v.settings.PaddingPx, v.settings.Duration)
		cmd = fitCommand(geom.Bounds, v.settings.PaddingPx, v.settings.Duration)
	}

	if v.observer != nil {
		v.observer.ObserveCamera(cmd.Kind)
	}
	zap.L().Debug("camera command",
		zap.String("facility", rec.ID),
		zap.String("kind", cmd.Kind),
		zap.Int("waypoints", len(rec.Route.Waypoints)),
	)
	return cmd, nil
}
