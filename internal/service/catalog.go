package service

import (
	"bytes"
	"fmt"
	"maps"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Catalog is the immutable set of facilities plus the reference origin.
// It is safe for concurrent readers; nothing mutates it after construction.
type Catalog struct {
	origin  Origin
	records []Facility
	index   map[string]int
}

// catalogFile is the on-disk YAML layout.
type catalogFile struct {
	Origin     Origin     `yaml:"origin"`
	Facilities []Facility `yaml:"facilities"`
}

// LoadCatalog reads and validates a catalog YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: read %s", path)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates catalog YAML. Unknown keys are rejected.
func ParseCatalog(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var file catalogFile
	if err := dec.Decode(&file); err != nil {
		return nil, eris.Wrap(err, "catalog: decode yaml")
	}
	return NewCatalog(file.Origin, file.Facilities)
}

// NewCatalog validates records and builds the catalog. Every problem found is
// reported in a single ErrInvalidCatalog error.
func NewCatalog(origin Origin, records []Facility) (*Catalog, error) {
	problems := validateCatalog(origin, records)
	if len(problems) > 0 {
		return nil, eris.Wrapf(ErrInvalidCatalog, "%s", strings.Join(problems, "; "))
	}

	c := &Catalog{
		origin:  origin,
		records: make([]Facility, len(records)),
		index:   make(map[string]int, len(records)),
	}
	for i, r := range records {
		c.records[i] = r.clone()
		c.index[r.ID] = i

		last := r.Route.Waypoints[len(r.Route.Waypoints)-1]
		if last != r.Position {
			zap.L().Warn("catalog: route does not end at facility position",
				zap.String("facility", r.ID),
				zap.Float64("end_lat", last.Lat),
				zap.Float64("end_lng", last.Lng),
			)
		}
	}
	return c, nil
}

func validateCatalog(origin Origin, records []Facility) []string {
	var problems []string
	addf := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if !origin.Position.Valid() {
		addf("origin position %v out of range", origin.Position)
	}
	if len(records) == 0 {
		addf("no facilities")
	}

	seen := make(map[string]bool, len(records))
	for i, r := range records {
		name := r.ID
		if name == "" {
			name = fmt.Sprintf("#%d", i)
			addf("facility %s: empty id", name)
		} else if seen[r.ID] {
			addf("facility %s: duplicate id", name)
		}
		seen[r.ID] = true

		if !r.Position.Valid() {
			addf("facility %s: position %v out of range", name, r.Position)
		}
		if r.Capacity.Available < 0 {
			addf("facility %s: negative available beds", name)
		}
		if r.Capacity.Total <= 0 {
			addf("facility %s: total beds must be positive", name)
		}
		if r.Capacity.Available > r.Capacity.Total {
			addf("facility %s: available beds %d exceed total %d", name, r.Capacity.Available, r.Capacity.Total)
		}
		if r.WaitHours < 0 || r.DistanceKm < 0 || r.EtaMinutes < 0 {
			addf("facility %s: negative wait, distance or eta", name)
		}
		if len(r.Route.Waypoints) == 0 {
			addf("facility %s: %s", name, ErrInvalidGeometry.Error())
		}
		for j, wp := range r.Route.Waypoints {
			if !wp.Valid() {
				addf("facility %s: waypoint %d %v out of range", name, j, wp)
			}
		}
		for k, v := range r.Resources {
			if v < 0 {
				addf("facility %s: negative resource %q", name, k)
			}
		}
	}
	return problems
}

// Origin returns the reference location.
func (c *Catalog) Origin() Origin {
	return c.origin
}

// Len returns the number of facilities.
func (c *Catalog) Len() int {
	return len(c.records)
}

// Get returns a facility by id.
func (c *Catalog) Get(id string) (Facility, bool) {
	i, ok := c.index[id]
	if !ok {
		return Facility{}, false
	}
	return c.records[i].clone(), true
}

// Has reports whether id is in the catalog.
func (c *Catalog) Has(id string) bool {
	_, ok := c.index[id]
	return ok
}

// First returns the default selection.
func (c *Catalog) First() Facility {
	return c.records[0].clone()
}

// List returns all facilities in catalog order.
func (c *Catalog) List() []Facility {
	out := make([]Facility, len(c.records))
	for i, r := range c.records {
		out[i] = r.clone()
	}
	return out
}

// clone copies the slices and map so callers cannot reach catalog storage.
func (f Facility) clone() Facility {
	out := f
	out.CategoryTags = append([]string(nil), f.CategoryTags...)
	out.FacilityTags = append([]string(nil), f.FacilityTags...)
	out.Route.Waypoints = append([]Coordinate(nil), f.Route.Waypoints...)
	out.Route.Steps = append([]RouteStep(nil), f.Route.Steps...)
	out.Resources = maps.Clone(f.Resources)
	return out
}
