package service

import (
	"fmt"
	"slices"
	"strings"
)

// MarkerView is the map marker projection of a facility.
type MarkerView struct {
	ID        string     `json:"id" doc:"Facility id"`
	Name      string     `json:"name" doc:"Facility name"`
	Position  Coordinate `json:"position" doc:"Marker location"`
	Tier      Tier       `json:"tier" enum:"high,moderate,limited" doc:"Availability tier"`
	TierLabel string     `json:"tierLabel" doc:"Legend label of the tier"`
	Color     string     `json:"color" doc:"Marker color"`
	Available int        `json:"available" doc:"Free beds"`
}

// ProjectMarker classifies rec for the map.
func ProjectMarker(rec Facility) MarkerView {
	tier := Classify(rec.Capacity.Available)
	return MarkerView{
		ID:        rec.ID,
		Name:      rec.Name,
		Position:  rec.Position,
		Tier:      tier,
		TierLabel: tier.Label(),
		Color:     tier.Color(),
		Available: rec.Capacity.Available,
	}
}

// ProjectMarkers projects every catalog record in catalog order.
func ProjectMarkers(c *Catalog) []MarkerView {
	records := c.List()
	out := make([]MarkerView, len(records))
	for i, r := range records {
		out[i] = ProjectMarker(r)
	}
	return out
}

// DetailView is the detail panel of the selected facility.
type DetailView struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Address      string      `json:"address,omitempty"`
	Contact      string      `json:"contact,omitempty"`
	Tier         Tier        `json:"tier" enum:"high,moderate,limited"`
	TierLabel    string      `json:"tierLabel"`
	Color        string      `json:"color"`
	Available    int         `json:"available"`
	Total        int         `json:"total"`
	Occupancy    int         `json:"occupancy" doc:"Occupied share of beds, percent"`
	WaitHours    float64     `json:"waitHours"`
	DistanceKm   float64     `json:"distanceKm"`
	EtaMinutes   float64     `json:"etaMinutes"`
	RouteKm      float64     `json:"routeKm" doc:"Length of the route polyline"`
	CategoryTags []string    `json:"categoryTags"`
	FacilityTags []string    `json:"facilityTags"`
	Steps        []RouteStep `json:"steps"`
}

// ProjectDetail builds the detail panel for rec.
func ProjectDetail(rec Facility) DetailView {
	tier := Classify(rec.Capacity.Available)
	d := DetailView{
		ID:           rec.ID,
		Name:         rec.Name,
		Address:      rec.Address,
		Contact:      rec.Contact,
		Tier:         tier,
		TierLabel:    tier.Label(),
		Color:        tier.Color(),
		Available:    rec.Capacity.Available,
		Total:        rec.Capacity.Total,
		WaitHours:    rec.WaitHours,
		DistanceKm:   rec.DistanceKm,
		EtaMinutes:   rec.EtaMinutes,
		CategoryTags: rec.CategoryTags,
		FacilityTags: rec.FacilityTags,
		Steps:        rec.Route.Steps,
	}
	if rec.Capacity.Total > 0 {
		d.Occupancy = (rec.Capacity.Total - rec.Capacity.Available) * 100 / rec.Capacity.Total
	}
	if geom, err := BuildGeometry(rec.Route.Waypoints); err == nil {
		d.RouteKm = geom.LengthKm
	}
	return d
}

// MetricView is one resource counter row.
type MetricView struct {
	Key   string `json:"key" doc:"Resource key" example:"icu"`
	Label string `json:"label" doc:"Display label" example:"ICU beds open"`
	Value int    `json:"value" doc:"Counter value"`
}

// resourceLabels lists the known counters in display order.
var resourceLabels = []struct{ key, label string }{
	{"icu", "ICU beds open"},
	{"oxygen", "Oxygen units"},
	{"isolation", "Isolation rooms"},
	{"ambulances", "Ambulances ready"},
	{"staff_on_duty", "Staff on duty"},
}

// ProjectMetrics lists known counters first in their fixed order, then any
// others alphabetically with a label derived from the key.
func ProjectMetrics(resources map[string]int) []MetricView {
	out := make([]MetricView, 0, len(resources))
	known := make(map[string]bool, len(resourceLabels))
	for _, rl := range resourceLabels {
		known[rl.key] = true
		if v, ok := resources[rl.key]; ok {
			out = append(out, MetricView{Key: rl.key, Label: rl.label, Value: v})
		}
	}

	var rest []string
	for k := range resources {
		if !known[k] {
			rest = append(rest, k)
		}
	}
	slices.Sort(rest)
	for _, k := range rest {
		out = append(out, MetricView{Key: k, Label: humanize(k), Value: resources[k]})
	}
	return out
}

func humanize(key string) string {
	s := strings.ReplaceAll(key, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ListRow is one row of the facility list.
type ListRow struct {
	MarkerView
	DistanceKm float64 `json:"distanceKm"`
	EtaMinutes float64 `json:"etaMinutes"`
	Summary    string  `json:"summary" doc:"Beds summary" example:"12 / 40 beds"`
	Selected   bool    `json:"selected" doc:"Whether this row is the active selection"`
}

// ProjectList renders the catalog with the selected row flagged.
func ProjectList(c *Catalog, selectedID string) []ListRow {
	records := c.List()
	out := make([]ListRow, len(records))
	for i, r := range records {
		out[i] = ListRow{
			MarkerView: ProjectMarker(r),
			DistanceKm: r.DistanceKm,
			EtaMinutes: r.EtaMinutes,
			Summary:    fmt.Sprintf("%d / %d beds", r.Capacity.Available, r.Capacity.Total),
			Selected:   r.ID == selectedID,
		}
	}
	return out
}

// LegendEntry is one tier legend row.
type LegendEntry struct {
	Tier  Tier   `json:"tier"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// Legend lists the tiers in display order.
func Legend() []LegendEntry {
	tiers := Tiers()
	out := make([]LegendEntry, len(tiers))
	for i, t := range tiers {
		out[i] = LegendEntry{Tier: t, Label: t.Label(), Color: t.Color()}
	}
	return out
}
