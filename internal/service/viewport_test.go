package service

import (
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingObserver struct {
	cameras    map[string]int
	selections map[string]int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{cameras: map[string]int{}, selections: map[string]int{}}
}

func (o *countingObserver) ObserveCamera(kind string)      { o.cameras[kind]++ }
func (o *countingObserver) ObserveSelection(result string) { o.selections[result]++ }

func TestViewportFitsRoute(t *testing.T) {
	surface := &RecordingSurface{}
	obs := newCountingObserver()
	v := NewViewportController(surface, DefaultCameraSettings(), obs)

	rec := validFacility("a")
	cmd, err := v.OnSelectionChanged(rec)
	require.NoError(t, err)

	assert.Equal(t, CameraFitBounds, cmd.Kind)
	require.NotNil(t, cmd.Bounds)
	assert.Equal(t, Bounds{MinLat: 5.55, MaxLat: 5.56, MinLng: -0.19, MaxLng: -0.17}, *cmd.Bounds)
	assert.Equal(t, 60, cmd.PaddingPx)
	assert.Equal(t, int64(600), cmd.DurationMs)

	cams := surface.Cameras()
	require.Len(t, cams, 1)
	assert.Equal(t, cmd, cams[0])
	assert.Equal(t, 1, obs.cameras[CameraFitBounds])
}

func TestViewportCentersDegenerateRoute(t *testing.T) {
	surface := &RecordingSurface{}
	v := NewViewportController(surface, DefaultCameraSettings(), nil)

	rec := validFacility("a")
	rec.Route.Waypoints = []Coordinate{rec.Position}

	cmd, err := v.OnSelectionChanged(rec)
	require.NoError(t, err)
	assert.Equal(t, CameraCenterOn, cmd.Kind)
	require.NotNil(t, cmd.Center)
	assert.Equal(t, rec.Position, *cmd.Center)
	assert.Equal(t, 14.0, cmd.Zoom)
	assert.Nil(t, cmd.Bounds)

	calls := surface.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "CenterOn", calls[0].Method)
}

func TestViewportFitsLineAlongMeridian(t *testing.T) {
	surface := &RecordingSurface{}
	v := NewViewportController(surface, DefaultCameraSettings(), nil)

	rec := validFacility("a")
	rec.Route.Waypoints = []Coordinate{{Lat: 5.50, Lng: -0.18}, {Lat: 5.60, Lng: -0.18}}

	cmd, err := v.OnSelectionChanged(rec)
	require.NoError(t, err)
	assert.Equal(t, CameraFitBounds, cmd.Kind)
	require.NotNil(t, cmd.Bounds)
	assert.Equal(t, Bounds{MinLat: 5.50, MaxLat: 5.60, MinLng: -0.18, MaxLng: -0.18}, *cmd.Bounds)
	assert.Nil(t, cmd.Center)
}

func TestViewportCentersRepeatedPoint(t *testing.T) {
	surface := &RecordingSurface{}
	v := NewViewportController(surface, DefaultCameraSettings(), nil)

	rec := validFacility("a")
	rec.Route.Waypoints = []Coordinate{{Lat: 5.55, Lng: -0.18}, {Lat: 5.55, Lng: -0.18}}

	cmd, err := v.OnSelectionChanged(rec)
	require.NoError(t, err)
	assert.Equal(t, CameraCenterOn, cmd.Kind)
	assert.InDelta(t, 5.55, cmd.Center.Lat, 1e-9)
	assert.InDelta(t, -0.18, cmd.Center.Lng, 1e-9)
}

func TestViewportRejectsEmptyRoute(t *testing.T) {
	surface := &RecordingSurface{}
	v := NewViewportController(surface, DefaultCameraSettings(), nil)

	rec := validFacility("a")
	rec.Route.Waypoints = nil

	_, err := v.OnSelectionChanged(rec)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrInvalidGeometry))
	assert.Empty(t, surface.Calls())
}

func TestCameraSettingsNormalized(t *testing.T) {
	tests := []struct {
		name string
		in   CameraSettings
		want CameraSettings
	}{
		{
			name: "defaults kept",
			in:   DefaultCameraSettings(),
			want: DefaultCameraSettings(),
		},
		{
			name: "zero values fall back",
			in:   CameraSettings{},
			want: CameraSettings{PaddingPx: 0, Duration: 600 * time.Millisecond, DefaultZoom: 14},
		},
		{
			name: "long transition capped",
			in:   CameraSettings{PaddingPx: 40, Duration: 10 * time.Second, DefaultZoom: 12},
			want: CameraSettings{PaddingPx: 40, Duration: MaxCameraTransition, DefaultZoom: 12},
		},
		{
			name: "negative padding",
			in:   CameraSettings{PaddingPx: -5, Duration: time.Second, DefaultZoom: 10},
			want: CameraSettings{PaddingPx: 0, Duration: time.Second, DefaultZoom: 10},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewViewportController(&RecordingSurface{}, tt.in, nil)
			assert.Equal(t, tt.want, v.Settings())
		})
	}
}
