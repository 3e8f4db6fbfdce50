package feed

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

// Client fetches GTFS-RT protobuf feeds. The vehicle positions feed is
// required; the trip updates feed is optional and only enriches samples with
// delay data.
type Client struct {
	httpClient *http.Client

	vehiclePositionsURL string
	tripUpdatesURL      string
	apiKey              string
}

func NewClient(vehiclePositionsURL, tripUpdatesURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		httpClient:          &http.Client{Timeout: timeout},
		vehiclePositionsURL: vehiclePositionsURL,
		tripUpdatesURL:      tripUpdatesURL,
		apiKey:              apiKey,
	}
}

// Fetch retrieves the vehicle positions feed and, when configured, the trip
// updates feed. A trip updates failure is not fatal: delays are an
// enrichment, positions are the batch.
func (c *Client) Fetch(ctx context.Context) (vehicles, tripUpdates *gtfsrtpb.FeedMessage, err error) {
	vehicles, err = c.fetchFeed(ctx, c.vehiclePositionsURL)
	if err != nil {
		return nil, nil, fmt.Errorf("vehicle positions: %w", err)
	}
	if c.tripUpdatesURL != "" {
		tu, tuErr := c.fetchFeed(ctx, c.tripUpdatesURL)
		if tuErr != nil {
			log.Printf("trip updates fetch failed, continuing without delays: %v", tuErr)
		}
		tripUpdates = tu
	}
	return vehicles, tripUpdates, nil
}

func (c *Client) fetchFeed(ctx context.Context, feedURL string) (*gtfsrtpb.FeedMessage, error) {
	if feedURL == "" {
		return nil, fmt.Errorf("no feed URL configured")
	}
	u, err := url.Parse(feedURL)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		q := u.Query()
		q.Set("acl:consumerKey", c.apiKey)
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", feedURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, feedURL)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var fm gtfsrtpb.FeedMessage
	if err := proto.Unmarshal(b, &fm); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", feedURL, err)
	}
	return &fm, nil
}
