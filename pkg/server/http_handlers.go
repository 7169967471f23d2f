package server

import (
	"encoding/json"
	"net/http"
)

// HandleHealth is a basic liveness endpoint.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// HandleMetrics reports process-wide counters plus live room and connection
// gauges.
//
// GET /metrics
func (s *Server) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.serverLock.Lock()
	activeConnections := 0
	for _, conns := range s.connectionsByRoom {
		activeConnections += len(conns)
	}
	s.serverLock.Unlock()

	payload := map[string]any{
		"active_rooms":       s.roomManager.RoomCount(),
		"active_connections": activeConnections,
		"counters":           s.metrics.Snapshot(),
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
