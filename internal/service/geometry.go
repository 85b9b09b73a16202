package service

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"
	"github.com/rotisserie/eris"
)

// Bounds is the axis-aligned rectangle minimally containing a route.
type Bounds struct {
	MinLat float64 `json:"minLat" doc:"Southern edge"`
	MaxLat float64 `json:"maxLat" doc:"Northern edge"`
	MinLng float64 `json:"minLng" doc:"Western edge"`
	MaxLng float64 `json:"maxLng" doc:"Eastern edge"`
}

func boundsFromOrb(b orb.Bound) Bounds {
	return Bounds{
		MinLat: b.Min.Lat(),
		MaxLat: b.Max.Lat(),
		MinLng: b.Min.Lon(),
		MaxLng: b.Max.Lon(),
	}
}

// Bound converts to an orb.Bound (x=lng, y=lat).
func (b Bounds) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.MinLng, b.MinLat},
		Max: orb.Point{b.MaxLng, b.MaxLat},
	}
}

// IsDegenerate reports a rectangle collapsed to a point. A camera cannot fit
// one, so the viewport centers on it instead. A box with one non-zero span
// still fits.
func (b Bounds) IsDegenerate() bool {
	return b.MinLat == b.MaxLat && b.MinLng == b.MaxLng
}

// Center returns the midpoint of the rectangle.
func (b Bounds) Center() Coordinate {
	c := b.Bound().Center()
	return Coordinate{Lat: c.Lat(), Lng: c.Lon()}
}

// RouteGeometry is the renderable form of a route.
type RouteGeometry struct {
	Line     orb.LineString `json:"line" doc:"Route coordinates in [lng, lat] order"`
	Bounds   Bounds         `json:"bounds" doc:"Bounding rectangle of the route"`
	LengthKm float64        `json:"lengthKm" doc:"Great-circle length of the polyline"`
}

// BuildGeometry turns ordered waypoints into a line in rendering order and
// its bounding rectangle. A single waypoint yields point bounds.
func BuildGeometry(waypoints []Coordinate) (RouteGeometry, error) {
	if len(waypoints) == 0 {
		return RouteGeometry{}, eris.Wrap(ErrInvalidGeometry, "build geometry")
	}

	line := make(orb.LineString, len(waypoints))
	for i, wp := range waypoints {
		line[i] = wp.Point()
	}

	return RouteGeometry{
		Line:     line,
		Bounds:   boundsFromOrb(line.Bound()),
		LengthKm: geo.Length(line) / 1000,
	}, nil
}

// FeatureCollection wraps the line as GeoJSON for a map line source.
func (g RouteGeometry) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(g.Line))
	return fc
}
