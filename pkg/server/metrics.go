package server

import "sync/atomic"

// ServerMetrics tracks process-wide counters for the /metrics endpoint.
type ServerMetrics struct {
	RoomsCreated       int64
	MessagesDispatched int64
	BroadcastsSent     int64
	HitsApplied        int64
}

func (m *ServerMetrics) IncRoomsCreated() { atomic.AddInt64(&m.RoomsCreated, 1) }
func (m *ServerMetrics) IncMessages()     { atomic.AddInt64(&m.MessagesDispatched, 1) }
func (m *ServerMetrics) IncBroadcasts()   { atomic.AddInt64(&m.BroadcastsSent, 1) }
func (m *ServerMetrics) IncHitsApplied()  { atomic.AddInt64(&m.HitsApplied, 1) }

// Snapshot returns a read-only copy for HTTP output.
func (m *ServerMetrics) Snapshot() map[string]any {
	return map[string]any{
		"rooms_created":       atomic.LoadInt64(&m.RoomsCreated),
		"messages_dispatched": atomic.LoadInt64(&m.MessagesDispatched),
		"broadcasts_sent":     atomic.LoadInt64(&m.BroadcastsSent),
		"hits_applied":        atomic.LoadInt64(&m.HitsApplied),
	}
}
