package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"time"

	lib "nowtrain/livemap"
	"nowtrain/livemap/feed"
	"nowtrain/livemap/route"
	"nowtrain/livemap/tracking"
)

func main() {
	mode := flag.String("mode", "serve", "serve|oneshot")
	configPath := flag.String("config", "", "config file path (default: config.yml)")
	routeID := flag.String("route", "", "monitored route id (overrides config)")
	filter := flag.String("filter", "", "train number substring filter (overrides config)")
	highlight := flag.String("highlight", "", "highlighted train number (overrides config)")
	vehiclePositions := flag.String("vehiclePositions", "", "GTFS-RT VehiclePositions URL (overrides config)")
	flag.Parse()

	lib.InitLogging()

	var err error
	if *configPath != "" {
		err = lib.LoadAppConfigFrom(*configPath)
	} else {
		err = lib.LoadAppConfig()
	}
	if err != nil {
		panic(err)
	}
	if *routeID != "" {
		lib.Config.Tracking.RouteID = *routeID
	}
	if *filter != "" {
		lib.Config.Tracking.TrainFilter = *filter
	}
	if *highlight != "" {
		lib.Config.Tracking.HighlightedTrain = *highlight
	}
	if *vehiclePositions != "" {
		lib.Config.Feed.VehiclePositionsURL = *vehiclePositions
	}

	registry, err := route.Load(lib.Config.Routes.File)
	if err != nil {
		panic(err)
	}
	client := feed.NewClient(
		lib.Config.Feed.VehiclePositionsURL,
		lib.Config.Feed.TripUpdatesURL,
		lib.Config.Feed.APIKey,
		lib.Config.Feed.Timeout(),
	)
	sess, err := lib.NewSession(registry, client, lib.Config)
	if err != nil {
		panic(err)
	}

	switch *mode {
	case "serve":
		ctx, cancel := context.WithCancel(context.Background())
		sess.Start(ctx)
		lib.StartServer(sess)
		lib.HandleGracefulShutdown(cancel)
	case "oneshot":
		oneshot(sess, client)
	default:
		panic("unknown mode")
	}
}

// oneshot fetches a single batch, reconciles it and prints the sampled
// positions. Handy for checking feed credentials and route wiring.
func oneshot(sess *lib.Session, client *feed.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), lib.Config.Feed.Timeout())
	defer cancel()

	vehicles, tripUpdates, err := client.Fetch(ctx)
	if err != nil {
		panic(err)
	}
	r, _, err := sess.RouteGeoJSON()
	if err != nil {
		panic(err)
	}
	batch := feed.Samples(vehicles, tripUpdates, r.TripSuffix)
	batch = feed.Filter(batch, lib.Config.Tracking.TrainFilter)

	now := time.Now()
	applied := sess.ApplyBatch(sess.Epoch(), batch, now)
	if !applied {
		panic("batch discarded")
	}
	var out struct {
		RouteID string                    `json:"routeID"`
		Trains  []tracking.RenderPosition `json:"trains"`
	}
	out.RouteID = sess.RouteID()
	out.Trains = sess.Frame(now)
	buf, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		panic(err)
	}
	fmt.Println(string(buf))
}
