package service

import (
	"slices"

	"github.com/rotisserie/eris"
)

// StyleMode names a base map style.
type StyleMode string

const (
	StyleStreet    StyleMode = "street"
	StyleSatellite StyleMode = "satellite"
)

// BaseStyle is an opaque style descriptor handed to the surface. Either URL
// points at a style document or Spec is an inline style.
type BaseStyle struct {
	Mode StyleMode      `json:"mode" doc:"Style mode" example:"street"`
	URL  string         `json:"url,omitempty" doc:"Style document URL"`
	Spec map[string]any `json:"spec,omitempty" doc:"Inline style document"`
}

// StyleConfig holds the style sources.
type StyleConfig struct {
	StreetURL            string
	SatelliteTiles       string
	SatelliteAttribution string
}

// DefaultStyleConfig points at the public MapLibre demo style and Esri imagery.
func DefaultStyleConfig() StyleConfig {
	return StyleConfig{
		StreetURL:            "https://demotiles.maplibre.org/style.json",
		SatelliteTiles:       "https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}",
		SatelliteAttribution: "Tiles © Esri",
	}
}

// StyleSet is the fixed set of base styles a dashboard can toggle between.
type StyleSet struct {
	styles map[StyleMode]BaseStyle
}

// NewStyleSet builds the street and satellite descriptors.
func NewStyleSet(cfg StyleConfig) *StyleSet {
	return &StyleSet{styles: map[StyleMode]BaseStyle{
		StyleStreet: {Mode: StyleStreet, URL: cfg.StreetURL},
		StyleSatellite: {Mode: StyleSatellite, Spec: map[string]any{
			"version": 8,
			"sources": map[string]any{
				"satellite": map[string]any{
					"type":        "raster",
					"tiles":       []string{cfg.SatelliteTiles},
					"tileSize":    256,
					"attribution": cfg.SatelliteAttribution,
				},
			},
			"layers": []any{
				map[string]any{"id": "satellite", "type": "raster", "source": "satellite"},
			},
		}},
	}}
}

// Get returns the descriptor for mode.
func (s *StyleSet) Get(mode StyleMode) (BaseStyle, error) {
	st, ok := s.styles[mode]
	if !ok {
		return BaseStyle{}, eris.Wrapf(ErrUnknownStyle, "style %q", mode)
	}
	return st, nil
}

// Modes lists the configured modes, sorted.
func (s *StyleSet) Modes() []StyleMode {
	out := make([]StyleMode, 0, len(s.styles))
	for m := range s.styles {
		out = append(out, m)
	}
	slices.Sort(out)
	return out
}
