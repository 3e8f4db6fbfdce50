// Package feed fetches GTFS-RT VehiclePositions (and optionally TripUpdates
// for delay enrichment) and turns them into tracking samples keyed by train
// number. Trip id conventions follow the JR-East ODPT feed.
package feed
