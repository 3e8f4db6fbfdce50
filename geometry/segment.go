package geometry

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// SplitAtGaps partitions a polyline into sub-lines wherever two consecutive
// points are further apart than threshold (planar distance on raw degree
// coordinates; good enough at city scale, not geodesic). Runs that end up
// with fewer than two points carry no drawable edge and are dropped.
//
// A line with fewer than two points is passed through as a single segment.
func SplitAtGaps(line orb.LineString, threshold float64) orb.MultiLineString {
	if len(line) < 2 {
		return orb.MultiLineString{line}
	}

	limit := threshold * threshold

	var segments orb.MultiLineString
	run := orb.LineString{line[0]}
	for i := 1; i < len(line); i++ {
		if planar.DistanceSquared(line[i-1], line[i]) <= limit {
			run = append(run, line[i])
			continue
		}
		if len(run) >= 2 {
			segments = append(segments, run)
		}
		run = orb.LineString{line[i]}
	}
	if len(run) >= 2 {
		segments = append(segments, run)
	}
	return segments
}
