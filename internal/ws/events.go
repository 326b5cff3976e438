package ws

import (
	"encoding/json"
	"sync/atomic"
	"time"
)

// Event is the structured message sent to WebSocket clients.
type Event struct {
	Type       string          `json:"type"`
	ID         uint64          `json:"id"`
	Collection string          `json:"collection,omitempty"`
	Data       json.RawMessage `json:"data"`
	Time       time.Time       `json:"time"`
}

// SubscribeMsg is sent by the client on connect to request event replay and
// optionally narrow the feed to some collections.
type SubscribeMsg struct {
	Type        string   `json:"type"`
	LastEventID uint64   `json:"last_event_id"`
	Collections []string `json:"collections,omitempty"`
}

// ResetMsg tells the client to do a full refresh (requested events too old).
type ResetMsg struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// EventSequence hands out monotonic event IDs.
type EventSequence struct {
	counter atomic.Uint64
}

// Next returns the next sequence number.
func (es *EventSequence) Next() uint64 {
	return es.counter.Add(1)
}
