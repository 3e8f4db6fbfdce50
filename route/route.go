package route

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"nowtrain/livemap/geometry"
)

// Station is one stop on a route, with raw degree coordinates.
type Station struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// Route is the static description of one monitorable line. Line is the raw
// polyline as shipped in the routes file; it may contain data gaps that the
// segmenter splits before rendering. TripSuffix selects this route's trips
// in the realtime feed.
type Route struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	TripSuffix string      `json:"tripSuffix"`
	Line       [][]float64 `json:"line"`
	Stations   []Station   `json:"stations"`
}

// LineString converts the raw coordinate pairs to an orb polyline, dropping
// malformed entries.
func (r Route) LineString() orb.LineString {
	line := make(orb.LineString, 0, len(r.Line))
	for _, pair := range r.Line {
		if len(pair) < 2 {
			continue
		}
		line = append(line, orb.Point{pair[0], pair[1]})
	}
	return line
}

// GeoJSON builds the render payload for one route: the gap-split line as a
// MultiLineString feature plus one Point feature per station.
func (r Route) GeoJSON(gapThreshold float64) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	line := geojson.NewFeature(geometry.SplitAtGaps(r.LineString(), gapThreshold))
	line.Properties["kind"] = "line"
	line.Properties["routeID"] = r.ID
	line.Properties["name"] = r.Name
	fc.Append(line)

	for _, st := range r.Stations {
		f := geojson.NewFeature(orb.Point{st.Longitude, st.Latitude})
		f.Properties["kind"] = "station"
		f.Properties["stationID"] = st.ID
		f.Properties["name"] = st.Name
		fc.Append(f)
	}
	return fc
}

type routesFile struct {
	Routes []Route `json:"routes"`
}

// Registry holds every route the map can monitor, keyed by id.
type Registry struct {
	byID map[string]Route
}

// Load reads a routes JSON file. Routes without an id are rejected.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rf routesFile
	if err := json.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("failed to parse routes file %s: %w", path, err)
	}
	reg := &Registry{byID: map[string]Route{}}
	for _, r := range rf.Routes {
		if r.ID == "" {
			return nil, fmt.Errorf("route without id in %s", path)
		}
		reg.byID[r.ID] = r
	}
	return reg, nil
}

func (reg *Registry) Get(id string) (Route, bool) {
	r, ok := reg.byID[id]
	return r, ok
}

// IDs returns the known route ids in sorted order.
func (reg *Registry) IDs() []string {
	ids := make([]string, 0, len(reg.byID))
	for id := range reg.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
