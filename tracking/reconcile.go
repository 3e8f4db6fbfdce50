package tracking

import (
	"time"

	"github.com/paulmach/orb"
)

// Sample is one train's absolute position taken from a single feed batch.
// Coord is nil when the feed entity carried no position; such samples never
// reach the store.
type Sample struct {
	ID           string
	Coord        *orb.Point
	DelaySeconds int
	Stopped      bool
	Direction    string
}

// Reconcile merges a feed batch into the store in place.
//
// New identifiers start a zero-length window (Current == Target) so they
// appear immediately without sliding in from somewhere else. Known
// identifiers promote their previous Target to the new Current — never the
// mid-flight interpolated point — so a train that had not finished its
// animation still begins the next leg from the point it was heading toward.
// Identifiers absent from the batch are evicted immediately.
func Reconcile(store *Store, batch []Sample, now time.Time) {
	seen := make(map[string]struct{}, len(batch))
	for _, sample := range batch {
		if sample.ID == "" || sample.Coord == nil {
			continue
		}
		seen[sample.ID] = struct{}{}

		meta := Meta{
			DelaySeconds: sample.DelaySeconds,
			Stopped:      sample.Stopped,
			Direction:    sample.Direction,
			DataQuality:  QualityGood,
		}

		prev, ok := store.Get(sample.ID)
		if !ok {
			store.Set(sample.ID, TrackedVehicle{
				Current:     *sample.Coord,
				Target:      *sample.Coord,
				WindowStart: now,
				Meta:        meta,
			})
			continue
		}
		store.Set(sample.ID, TrackedVehicle{
			Current:     prev.Target,
			Target:      *sample.Coord,
			WindowStart: now,
			Meta:        meta,
		})
	}

	for _, id := range store.IDs() {
		if _, ok := seen[id]; !ok {
			store.Remove(id)
		}
	}
}

// EvictStale removes trains whose window opened more than maxAge ago and
// returns how many were dropped. The reference behavior never evicts on
// staleness — only on absence from a batch — so this runs only when a
// timeout is configured.
func EvictStale(store *Store, now time.Time, maxAge time.Duration) int {
	evicted := 0
	for _, id := range store.IDs() {
		v, ok := store.Get(id)
		if !ok {
			continue
		}
		if now.Sub(v.WindowStart) > maxAge {
			store.Remove(id)
			evicted++
		}
	}
	return evicted
}
