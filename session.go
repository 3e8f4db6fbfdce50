package livemap

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/r3labs/sse/v2"

	"nowtrain/livemap/feed"
	"nowtrain/livemap/route"
	"nowtrain/livemap/tracking"
)

// Session owns the tracked-train store for one running map. Two drivers
// touch it: a reconcile ticker that fetches a feed batch every update
// interval, and a frame ticker that samples interpolated positions for
// rendering. The mutex makes each batch land atomically between frames.
//
// Every fetch carries the epoch current when it started. A route switch
// bumps the epoch, cancels the in-flight fetch and clears the store, so a
// late batch from the old route can never repopulate it.
type Session struct {
	mu          sync.Mutex
	store       *tracking.Store
	epoch       uint64
	cancelFetch context.CancelFunc

	routeID     string
	filter      string
	highlighted string

	lastBatchUnix int64

	registry *route.Registry
	client   *feed.Client

	updateInterval time.Duration
	frameInterval  time.Duration
	fetchTimeout   time.Duration
	staleAfter     time.Duration
	gapThreshold   float64

	events *sse.Server
}

// Streams served over SSE: per-frame position arrays and per-switch route
// geometry.
const (
	StreamPositions = "positions"
	StreamRoute     = "route"
)

func NewSession(registry *route.Registry, client *feed.Client, cfg AppConfig) (*Session, error) {
	s := &Session{
		store:          tracking.NewStore(),
		registry:       registry,
		client:         client,
		filter:         cfg.Tracking.TrainFilter,
		highlighted:    cfg.Tracking.HighlightedTrain,
		updateInterval: cfg.Feed.UpdateInterval(),
		frameInterval:  cfg.Tracking.FrameInterval(),
		fetchTimeout:   cfg.Feed.Timeout(),
		staleAfter:     cfg.Tracking.StaleAfter(),
		gapThreshold:   cfg.Routes.GapThresholdDeg,
		events:         sse.New(),
	}
	s.events.AutoReplay = false
	s.events.CreateStream(StreamPositions)
	s.events.CreateStream(StreamRoute)

	routeID := cfg.Tracking.RouteID
	if routeID == "" {
		ids := registry.IDs()
		if len(ids) == 0 {
			return nil, fmt.Errorf("no routes configured")
		}
		routeID = ids[0]
	}
	if _, ok := registry.Get(routeID); !ok {
		return nil, fmt.Errorf("unknown route %q", routeID)
	}
	s.routeID = routeID
	return s, nil
}

// Start launches the reconcile and frame loops. Both stop when ctx is done.
func (s *Session) Start(ctx context.Context) {
	go s.runReconcile(ctx)
	go s.runFrames(ctx)
}

func (s *Session) runReconcile(ctx context.Context) {
	s.reconcileOnce(ctx)
	ticker := time.NewTicker(s.updateInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.reconcileOnce(ctx)
		}
	}
}

// reconcileOnce fetches one feed batch and applies it. A fetch or parse
// failure leaves the store untouched: trains freeze at their last known
// target instead of vanishing on a transient outage, unless a staleness
// timeout is configured.
func (s *Session) reconcileOnce(ctx context.Context) {
	s.mu.Lock()
	epoch := s.epoch
	suffix := s.tripSuffixLocked()
	filter := s.filter
	fctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	s.cancelFetch = cancel
	s.mu.Unlock()
	defer cancel()

	vehicles, tripUpdates, err := s.client.Fetch(fctx)
	if err != nil {
		log.Printf("feed fetch failed, keeping last known positions: %v", err)
		s.sweepStale(time.Now())
		return
	}

	batch := feed.Samples(vehicles, tripUpdates, suffix)
	batch = feed.Filter(batch, filter)
	s.ApplyBatch(epoch, batch, time.Now())
}

// ApplyBatch reconciles a batch fetched under the given epoch. Batches from
// a previous epoch are discarded: they belong to a route that is no longer
// monitored. Reports whether the batch was applied.
func (s *Session) ApplyBatch(epoch uint64, batch []tracking.Sample, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		log.Printf("discarding stale batch (epoch %d, current %d)", epoch, s.epoch)
		return false
	}
	tracking.Reconcile(s.store, batch, now)
	s.lastBatchUnix = now.Unix()
	return true
}

// sweepStale drops trains whose window opened more than staleAfter ago.
// Only runs when a batch could not be fetched: a successful batch already
// evicts absentees and restarts the window of every surviving train, so
// nothing is ever stale right after reconciliation.
func (s *Session) sweepStale(now time.Time) {
	if s.staleAfter <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := tracking.EvictStale(s.store, now, s.staleAfter); n > 0 {
		log.Printf("evicted %d trains not updated for over %v", n, s.staleAfter)
	}
}

func (s *Session) runFrames(ctx context.Context) {
	ticker := time.NewTicker(s.frameInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.publishFrame(now)
		}
	}
}

func (s *Session) publishFrame(now time.Time) {
	data, err := json.Marshal(s.Frame(now))
	if err != nil {
		log.Printf("frame marshal failed: %v", err)
		return
	}
	s.events.TryPublish(StreamPositions, &sse.Event{Data: data})
}

// Frame samples every tracked train at now. Called on every frame tick even
// when the store is empty, so rendering resumes instantly once trains
// reappear.
func (s *Session) Frame(now time.Time) []tracking.RenderPosition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return tracking.SampleAll(s.store, now, s.updateInterval, s.highlighted)
}

// SwitchRoute changes the monitored route. The epoch bump plus store clear
// guarantees no interpolation artifact crosses routes.
func (s *Session) SwitchRoute(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.registry.Get(id)
	if !ok {
		return fmt.Errorf("unknown route %q", id)
	}
	if id == s.routeID {
		return nil
	}
	s.routeID = id
	s.epoch++
	if s.cancelFetch != nil {
		s.cancelFetch()
	}
	s.store.Clear()
	log.Printf("switched to route %s (epoch %d)", id, s.epoch)

	if data, err := r.GeoJSON(s.gapThreshold).MarshalJSON(); err == nil {
		s.events.TryPublish(StreamRoute, &sse.Event{Data: data})
	}
	return nil
}

// SetFilter updates the identifier substring filter for subsequent batches.
func (s *Session) SetFilter(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = query
}

// SetHighlighted updates which train gets the highlighted metadata flag.
func (s *Session) SetHighlighted(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.highlighted = id
}

// RouteID returns the currently monitored route.
func (s *Session) RouteID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.routeID
}

// RouteGeoJSON builds the current route's render geometry.
func (s *Session) RouteGeoJSON() (*route.Route, []byte, error) {
	s.mu.Lock()
	r, _ := s.registry.Get(s.routeID)
	threshold := s.gapThreshold
	s.mu.Unlock()

	data, err := r.GeoJSON(threshold).MarshalJSON()
	if err != nil {
		return nil, nil, err
	}
	return &r, data, nil
}

// RouteIDs lists every route the registry knows.
func (s *Session) RouteIDs() []string {
	return s.registry.IDs()
}

// Epoch returns the current domain epoch (a fetch started now must apply
// its batch under this value).
func (s *Session) Epoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// Health reports the unix time of the last applied batch and how many
// trains are tracked.
func (s *Session) Health() (lastBatchUnix int64, tracked int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastBatchUnix, s.store.Len()
}

func (s *Session) tripSuffixLocked() string {
	if r, ok := s.registry.Get(s.routeID); ok {
		return r.TripSuffix
	}
	return ""
}

// ServeEvents exposes the SSE endpoint handler.
func (s *Session) ServeEvents() *sse.Server {
	return s.events
}
