package tracking

import (
	"sort"
	"time"

	"github.com/paulmach/orb"
)

// Data quality values carried on every tracked train. The feed layer
// currently only ever produces QualityGood; QualityRejected is part of the
// rendering contract for readings that fail future plausibility checks.
const (
	QualityGood     = "good"
	QualityRejected = "rejected"
)

// Meta is the per-train metadata replaced wholesale on every batch.
type Meta struct {
	DelaySeconds int
	Stopped      bool
	Direction    string
	DataQuality  string
}

// TrackedVehicle is one train's interpolation window. Current is where the
// animation started, Target where it is heading, WindowStart when the window
// opened. Both coordinates are always valid; WindowStart never decreases for
// a given train across updates.
type TrackedVehicle struct {
	Current     orb.Point
	Target      orb.Point
	WindowStart time.Time
	Meta        Meta
}

// Store maps train identifiers to interpolation state. Reconcile is its only
// writer; the sampler is a read-only consumer. The owning session guards it
// with a mutex so each batch lands atomically between frames.
type Store struct {
	vehicles map[string]TrackedVehicle
}

func NewStore() *Store {
	return &Store{vehicles: map[string]TrackedVehicle{}}
}

func (s *Store) Get(id string) (TrackedVehicle, bool) {
	v, ok := s.vehicles[id]
	return v, ok
}

func (s *Store) Set(id string, v TrackedVehicle) {
	s.vehicles[id] = v
}

func (s *Store) Remove(id string) {
	delete(s.vehicles, id)
}

// IDs returns the tracked identifiers in sorted order.
func (s *Store) IDs() []string {
	ids := make([]string, 0, len(s.vehicles))
	for id := range s.vehicles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Store) Len() int {
	return len(s.vehicles)
}

// Clear drops all tracked trains. Called on a route switch so no train
// animates from a coordinate that belongs to the previously selected route.
func (s *Store) Clear() {
	s.vehicles = map[string]TrackedVehicle{}
}
