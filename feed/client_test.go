package feed

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

func feedServer(t *testing.T, apiKey string) *httptest.Server {
	t.Helper()
	body, err := proto.Marshal(&gtfsrtpb.FeedMessage{
		Header: &gtfsrtpb.FeedHeader{GtfsRealtimeVersion: proto.String("2.0")},
	})
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if apiKey != "" && r.URL.Query().Get("acl:consumerKey") != apiKey {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func brokenServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchSendsAPIKey(t *testing.T) {
	vp := feedServer(t, "test-key")
	c := NewClient(vp.URL, "", "test-key", time.Second)

	vehicles, tripUpdates, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if vehicles == nil {
		t.Fatal("expected a decoded vehicle positions feed")
	}
	if tripUpdates != nil {
		t.Error("no trip updates URL configured, expected nil feed")
	}
}

func TestFetchVehiclePositionsFailureIsFatal(t *testing.T) {
	c := NewClient(brokenServer(t).URL, "", "", time.Second)
	if _, _, err := c.Fetch(context.Background()); err == nil {
		t.Error("expected error when the vehicle positions feed is down")
	}
}

func TestFetchTripUpdatesFailureIsLoggedNotFatal(t *testing.T) {
	vp := feedServer(t, "")
	broken := brokenServer(t)

	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	c := NewClient(vp.URL, broken.URL, "", time.Second)
	vehicles, tripUpdates, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if vehicles == nil {
		t.Fatal("positions feed must survive a trip updates outage")
	}
	if tripUpdates != nil {
		t.Error("expected nil trip updates after a failed fetch")
	}
	if !strings.Contains(buf.String(), "trip updates fetch failed") {
		t.Errorf("trip updates failure not logged, got %q", buf.String())
	}
}
