package feed

import (
	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/paulmach/orb"

	"nowtrain/livemap/tracking"
)

// Samples converts a VehiclePositions feed into a tracking batch for the
// route selected by tripSuffix. Entities without a trip id or without a
// position are skipped; a bad entity never aborts the batch. Delays, when a
// TripUpdates feed is available, are joined by trip id.
func Samples(vehicles, tripUpdates *gtfsrtpb.FeedMessage, tripSuffix string) []tracking.Sample {
	if vehicles == nil {
		return nil
	}
	delays := DelaysByTrip(tripUpdates)

	batch := make([]tracking.Sample, 0, len(vehicles.Entity))
	for _, e := range vehicles.Entity {
		vp := e.Vehicle
		if vp == nil || vp.Trip == nil || vp.Trip.TripId == nil {
			continue
		}
		tripID := *vp.Trip.TripId
		if !MatchesRoute(tripID, tripSuffix) {
			continue
		}

		var coord *orb.Point
		if vp.Position != nil && vp.Position.Latitude != nil && vp.Position.Longitude != nil {
			coord = &orb.Point{float64(*vp.Position.Longitude), float64(*vp.Position.Latitude)}
		}

		stopped := vp.CurrentStatus != nil && *vp.CurrentStatus == gtfsrtpb.VehiclePosition_STOPPED_AT

		batch = append(batch, tracking.Sample{
			ID:           TrainNumber(tripID),
			Coord:        coord,
			DelaySeconds: delays[tripID],
			Stopped:      stopped,
			Direction:    Direction(tripID),
		})
	}
	return batch
}

// DelaysByTrip extracts non-negative delay seconds per trip id from a
// TripUpdates feed. The trip-level delay wins; otherwise the first stop time
// update carrying an arrival delay is used.
func DelaysByTrip(tripUpdates *gtfsrtpb.FeedMessage) map[string]int {
	delays := map[string]int{}
	if tripUpdates == nil {
		return delays
	}
	for _, e := range tripUpdates.Entity {
		tu := e.TripUpdate
		if tu == nil || tu.Trip == nil || tu.Trip.TripId == nil {
			continue
		}
		tripID := *tu.Trip.TripId
		if tu.Delay != nil {
			if d := int(*tu.Delay); d > 0 {
				delays[tripID] = d
			}
			continue
		}
		for _, stu := range tu.StopTimeUpdate {
			if stu.Arrival != nil && stu.Arrival.Delay != nil {
				if d := int(*stu.Arrival.Delay); d > 0 {
					delays[tripID] = d
				}
				break
			}
		}
	}
	return delays
}
