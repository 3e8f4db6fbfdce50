package tracking

import "time"

// RenderPosition is what the map client needs for one train on one frame.
// Field names match the positions API payload.
type RenderPosition struct {
	ID           string  `json:"trainNumber"`
	Longitude    float64 `json:"longitude"`
	Latitude     float64 `json:"latitude"`
	Direction    string  `json:"direction"`
	DelaySeconds int     `json:"delaySeconds"`
	Stopped      bool    `json:"isStopped"`
	DataQuality  string  `json:"dataQuality"`
	Highlighted  bool    `json:"highlighted,omitempty"`
}

// SampleAll computes the interpolated position of every tracked train at
// now, with window as the expected time between feed batches. It never
// mutates the store and is safe to call on an empty one; results come back
// in identifier order.
//
// The interpolation fraction is clamped to [0, 1]: at the window edges the
// exact Current or Target coordinate is returned, not a float approximation
// of it.
func SampleAll(store *Store, now time.Time, window time.Duration, highlightedID string) []RenderPosition {
	positions := make([]RenderPosition, 0, store.Len())
	for _, id := range store.IDs() {
		v, ok := store.Get(id)
		if !ok {
			continue
		}

		lon, lat := v.Current.Lon(), v.Current.Lat()
		elapsed := now.Sub(v.WindowStart)
		switch {
		case window <= 0 || elapsed >= window:
			lon, lat = v.Target.Lon(), v.Target.Lat()
		case elapsed > 0:
			t := float64(elapsed) / float64(window)
			lon += (v.Target.Lon() - v.Current.Lon()) * t
			lat += (v.Target.Lat() - v.Current.Lat()) * t
		}

		positions = append(positions, RenderPosition{
			ID:           id,
			Longitude:    lon,
			Latitude:     lat,
			Direction:    v.Meta.Direction,
			DelaySeconds: v.Meta.DelaySeconds,
			Stopped:      v.Meta.Stopped,
			DataQuality:  v.Meta.DataQuality,
			Highlighted:  highlightedID != "" && id == highlightedID,
		})
	}
	return positions
}
