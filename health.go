package livemap

import (
	"encoding/json"
	"net/http"
)

type healthResponse struct {
	Status         string `json:"status"`
	LastBatchEpoch int64  `json:"last_batch_epoch"`
	TrackedTrains  int    `json:"tracked_trains"`
}

func (s *Session) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	last, tracked := s.Health()
	resp := healthResponse{
		Status:         "ok",
		LastBatchEpoch: last,
		TrackedTrains:  tracked,
	}
	_ = json.NewEncoder(w).Encode(resp)
}
