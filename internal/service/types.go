// Package service contains the facility dashboard core: catalog, availability
// tiers, route geometry, selection and viewport synchronization.
package service

import (
	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
)

var (
	// ErrUnknownFacility is returned when an id is not present in the catalog.
	ErrUnknownFacility = eris.New("unknown facility")
	// ErrInvalidGeometry is returned when a route has no waypoints.
	ErrInvalidGeometry = eris.New("invalid geometry: route has no waypoints")
	// ErrInvalidCatalog wraps every validation problem found while loading a catalog.
	ErrInvalidCatalog = eris.New("invalid catalog")
	// ErrUnknownStyle is returned when a base style mode is not configured.
	ErrUnknownStyle = eris.New("unknown base style")
)

// Coordinate is a geographic position in (lat, lng) order.
type Coordinate struct {
	Lat float64 `json:"lat" yaml:"lat" minimum:"-90" maximum:"90" doc:"Latitude" example:"5.5585"`
	Lng float64 `json:"lng" yaml:"lng" minimum:"-180" maximum:"180" doc:"Longitude" example:"-0.1765"`
}

// Point converts to the rendering order (x=lng, y=lat).
func (c Coordinate) Point() orb.Point {
	return orb.Point{c.Lng, c.Lat}
}

// Valid reports whether the coordinate is inside the WGS84 range.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// Capacity is the bed count of a facility.
type Capacity struct {
	Available int `json:"available" yaml:"available" minimum:"0" doc:"Free beds" example:"12"`
	Total     int `json:"total" yaml:"total" minimum:"1" doc:"Total beds" example:"40"`
}

// RouteStep is one textual annotation of a route. Steps are narration and
// do not correspond 1:1 with waypoints.
type RouteStep struct {
	Label   string `json:"label" yaml:"label" doc:"Step description" example:"Independence Ave"`
	Elapsed string `json:"elapsed" yaml:"elapsed" doc:"Elapsed time at this step" example:"3 min"`
}

// Route is the precomputed path from the origin to a facility.
type Route struct {
	Waypoints []Coordinate `json:"waypoints" yaml:"waypoints" doc:"Ordered path coordinates"`
	Steps     []RouteStep  `json:"steps" yaml:"steps" doc:"Ordered step annotations"`
}

// Facility is one immutable catalog record.
type Facility struct {
	ID           string         `json:"id" yaml:"id" doc:"Unique facility identifier" example:"h1"`
	Name         string         `json:"name" yaml:"name" doc:"Display name" example:"Korle-Bu Teaching Hospital"`
	Address      string         `json:"address,omitempty" yaml:"address" doc:"Street address"`
	Contact      string         `json:"contact,omitempty" yaml:"contact" doc:"Phone contact"`
	Position     Coordinate     `json:"position" yaml:"position" doc:"Facility location"`
	Capacity     Capacity       `json:"capacity" yaml:"capacity" doc:"Bed capacity"`
	WaitHours    float64        `json:"waitHours" yaml:"wait_hours" minimum:"0" doc:"Estimated hours until a bed frees up"`
	DistanceKm   float64        `json:"distanceKm" yaml:"distance_km" minimum:"0" doc:"Distance from the origin"`
	EtaMinutes   float64        `json:"etaMinutes" yaml:"eta_minutes" minimum:"0" doc:"Travel time from the origin"`
	CategoryTags []string       `json:"categoryTags" yaml:"category_tags" doc:"Specialties, in display order"`
	FacilityTags []string       `json:"facilityTags" yaml:"facility_tags" doc:"On-site facilities, in display order"`
	Route        Route          `json:"route" yaml:"route" doc:"Precomputed route from the origin"`
	Resources    map[string]int `json:"resources" yaml:"resources" doc:"Named resource counters"`
}

// Origin is the fixed reference location all routes start from.
type Origin struct {
	Label    string     `json:"label" yaml:"label" doc:"Marker label" example:"You are here (Osu)"`
	Position Coordinate `json:"position" yaml:"position" doc:"Origin location"`
}
