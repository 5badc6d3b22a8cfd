package ws

import (
	"encoding/json"
	"sort"
	"sync"
	"time"
)

const (
	defaultBufferMaxLen = 500
	defaultBufferMaxAge = 1 * time.Hour
)

// Event is the structured message sent to WebSocket clients.
type Event struct {
	Type string          `json:"type"`
	ID   uint64          `json:"id"`
	Data json.RawMessage `json:"data"`
	Time time.Time       `json:"time"`
}

// SubscribeMsg is sent by the client on connect to request event replay.
type SubscribeMsg struct {
	Type        string `json:"type"`
	LastEventID uint64 `json:"last_event_id"`
}

// ResetMsg tells the client to do a full refresh (requested events too old).
type ResetMsg struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// EventBuffer keeps the most recent events, bounded by count and age, so a
// reconnecting dashboard can catch up on missed uploads.
type EventBuffer struct {
	mu     sync.RWMutex
	events []Event
	maxAge time.Duration
	maxLen int
	now    func() time.Time
}

// NewEventBuffer creates an EventBuffer with the given limits.
func NewEventBuffer(maxLen int, maxAge time.Duration) *EventBuffer {
	return &EventBuffer{maxAge: maxAge, maxLen: maxLen, now: time.Now}
}

// Append stores an event, dropping expired and excess entries. IDs must be
// appended in increasing order.
func (eb *EventBuffer) Append(event Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.events = append(eb.trimLocked(), event)
	if len(eb.events) > eb.maxLen {
		eb.events = eb.events[len(eb.events)-eb.maxLen:]
	}
}

func (eb *EventBuffer) trimLocked() []Event {
	cutoff := eb.now().Add(-eb.maxAge)
	start := sort.Search(len(eb.events), func(i int) bool {
		return !eb.events[i].Time.Before(cutoff)
	})

	return eb.events[start:]
}

// Since returns a copy of the live events with ID > lastEventID, and false
// when events after lastEventID have already been evicted.
func (eb *EventBuffer) Since(lastEventID uint64) ([]Event, bool) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.events = eb.trimLocked()
	if len(eb.events) == 0 {
		return nil, true
	}

	if lastEventID > 0 && lastEventID+1 < eb.events[0].ID {
		return nil, false
	}

	i := sort.Search(len(eb.events), func(i int) bool {
		return eb.events[i].ID > lastEventID
	})

	return append([]Event(nil), eb.events[i:]...), true
}
