package feed

import (
	"testing"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

func vehicleEntity(tripID string, lon, lat float32, stopped bool) *gtfsrtpb.FeedEntity {
	vp := &gtfsrtpb.VehiclePosition{
		Trip:     &gtfsrtpb.TripDescriptor{TripId: proto.String(tripID)},
		Position: &gtfsrtpb.Position{Latitude: proto.Float32(lat), Longitude: proto.Float32(lon)},
	}
	if stopped {
		vp.CurrentStatus = gtfsrtpb.VehiclePosition_STOPPED_AT.Enum()
	}
	return &gtfsrtpb.FeedEntity{Id: proto.String(tripID), Vehicle: vp}
}

func TestSamples(t *testing.T) {
	vehicles := &gtfsrtpb.FeedMessage{
		Entity: []*gtfsrtpb.FeedEntity{
			vehicleEntity("4201301G", 139.70, 35.60, true),
			vehicleEntity("4211502G", 139.75, 35.65, false),
			// different route, filtered out by suffix
			vehicleEntity("4001120H", 139.80, 35.70, false),
			// entity without a vehicle payload
			{Id: proto.String("alert-1")},
			// vehicle without a trip id
			{Id: proto.String("no-trip"), Vehicle: &gtfsrtpb.VehiclePosition{}},
		},
	}

	batch := Samples(vehicles, nil, "G")
	if len(batch) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(batch))
	}

	first := batch[0]
	if first.ID != "301G" {
		t.Errorf("expected id 301G, got %s", first.ID)
	}
	if first.Coord == nil {
		t.Fatal("expected coordinate")
	}
	if (*first.Coord)[0] != float64(float32(139.70)) || (*first.Coord)[1] != float64(float32(35.60)) {
		t.Errorf("unexpected coordinate %v", *first.Coord)
	}
	if !first.Stopped {
		t.Error("STOPPED_AT not mapped to Stopped")
	}
	if first.Direction != "OuterLoop" {
		t.Errorf("expected OuterLoop, got %s", first.Direction)
	}

	second := batch[1]
	if second.ID != "502G" || second.Stopped || second.Direction != "InnerLoop" {
		t.Errorf("unexpected second sample %+v", second)
	}
}

func TestSamplesMissingPositionYieldsNilCoord(t *testing.T) {
	vehicles := &gtfsrtpb.FeedMessage{
		Entity: []*gtfsrtpb.FeedEntity{
			{
				Id: proto.String("1"),
				Vehicle: &gtfsrtpb.VehiclePosition{
					Trip: &gtfsrtpb.TripDescriptor{TripId: proto.String("4201301G")},
				},
			},
		},
	}
	batch := Samples(vehicles, nil, "G")
	if len(batch) != 1 {
		t.Fatalf("expected 1 sample, got %d", len(batch))
	}
	if batch[0].Coord != nil {
		t.Errorf("expected nil coordinate, got %v", *batch[0].Coord)
	}
}

func TestSamplesNilFeed(t *testing.T) {
	if got := Samples(nil, nil, "G"); got != nil {
		t.Errorf("expected nil batch, got %v", got)
	}
}

func TestSamplesJoinsDelays(t *testing.T) {
	vehicles := &gtfsrtpb.FeedMessage{
		Entity: []*gtfsrtpb.FeedEntity{vehicleEntity("4201301G", 139.70, 35.60, false)},
	}
	tripUpdates := &gtfsrtpb.FeedMessage{
		Entity: []*gtfsrtpb.FeedEntity{
			{
				Id: proto.String("tu-1"),
				TripUpdate: &gtfsrtpb.TripUpdate{
					Trip:  &gtfsrtpb.TripDescriptor{TripId: proto.String("4201301G")},
					Delay: proto.Int32(90),
				},
			},
		},
	}

	batch := Samples(vehicles, tripUpdates, "G")
	if len(batch) != 1 {
		t.Fatalf("expected 1 sample, got %d", len(batch))
	}
	if batch[0].DelaySeconds != 90 {
		t.Errorf("expected delay 90, got %d", batch[0].DelaySeconds)
	}
}

func TestDelaysByTrip(t *testing.T) {
	tripUpdates := &gtfsrtpb.FeedMessage{
		Entity: []*gtfsrtpb.FeedEntity{
			{
				Id: proto.String("tu-1"),
				TripUpdate: &gtfsrtpb.TripUpdate{
					Trip:  &gtfsrtpb.TripDescriptor{TripId: proto.String("4201301G")},
					Delay: proto.Int32(120),
				},
			},
			{
				// no trip-level delay, falls back to first arrival delay
				Id: proto.String("tu-2"),
				TripUpdate: &gtfsrtpb.TripUpdate{
					Trip: &gtfsrtpb.TripDescriptor{TripId: proto.String("4211502G")},
					StopTimeUpdate: []*gtfsrtpb.TripUpdate_StopTimeUpdate{
						{Arrival: &gtfsrtpb.TripUpdate_StopTimeEvent{Delay: proto.Int32(45)}},
						{Arrival: &gtfsrtpb.TripUpdate_StopTimeEvent{Delay: proto.Int32(600)}},
					},
				},
			},
			{
				// early trains report no delay
				Id: proto.String("tu-3"),
				TripUpdate: &gtfsrtpb.TripUpdate{
					Trip:  &gtfsrtpb.TripDescriptor{TripId: proto.String("4201303G")},
					Delay: proto.Int32(-30),
				},
			},
		},
	}

	delays := DelaysByTrip(tripUpdates)
	if delays["4201301G"] != 120 {
		t.Errorf("expected trip-level delay 120, got %d", delays["4201301G"])
	}
	if delays["4211502G"] != 45 {
		t.Errorf("expected first arrival delay 45, got %d", delays["4211502G"])
	}
	if _, ok := delays["4201303G"]; ok {
		t.Error("negative delay should not be recorded")
	}
	if got := DelaysByTrip(nil); len(got) != 0 {
		t.Errorf("nil feed should yield empty map, got %v", got)
	}
}
