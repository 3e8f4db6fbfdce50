package livemap

import (
	"encoding/json"
	"net/http"
	"time"

	"nowtrain/livemap/tracking"
)

type positionsResponse struct {
	Timestamp  string                    `json:"timestamp"`
	RouteID    string                    `json:"routeID"`
	TrainCount int                       `json:"trainCount"`
	Trains     []tracking.RenderPosition `json:"trains"`
}

type routesResponse struct {
	Routes  []string `json:"routes"`
	Current string   `json:"current"`
}

func (s *Session) handlePositions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	now := time.Now()
	trains := s.Frame(now)
	resp := positionsResponse{
		Timestamp:  now.UTC().Format(time.RFC3339),
		RouteID:    s.RouteID(),
		TrainCount: len(trains),
		Trains:     trains,
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Session) handleRouteGeoJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/geo+json")
	_, data, err := s.RouteGeoJSON()
	if err != nil {
		w.WriteHeader(500)
		_, _ = w.Write(errorPayload("routeGeometry", err.Error()))
		return
	}
	_, _ = w.Write(data)
}

func (s *Session) handleRoutes(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(routesResponse{
		Routes:  s.RouteIDs(),
		Current: s.RouteID(),
	})
}

func (s *Session) handleSelectRoute(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id := r.URL.Query().Get("routeID")
	if id == "" {
		w.WriteHeader(400)
		_, _ = w.Write(errorPayload("selectRoute", "missing routeID parameter"))
		return
	}
	if err := s.SwitchRoute(id); err != nil {
		w.WriteHeader(400)
		_, _ = w.Write(errorPayload("selectRoute", err.Error()))
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok", "routeID": id})
}

func errorPayload(scope, msg string) []byte {
	b, _ := json.Marshal(map[string]string{"error": msg, "scope": scope})
	return b
}
