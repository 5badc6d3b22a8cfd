// Package ws pushes directory change events to connected admin dashboards.
package ws

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/collegedir/collegedir/internal/metrics"
)

const (
	broadcastBuffer = 256
	registerBuffer  = 64

	// maxBroadcastPayload is the largest event the hub forwards.
	maxBroadcastPayload = 4096

	defaultDrainTimeout = 3 * time.Second
)

// Hub manages active WebSocket clients and broadcasts events to all of them.
// The client set is only touched by the Run goroutine.
type Hub struct {
	clients    map[*Client]struct{}
	maxClients int
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	shutdown   chan struct{}
	done       chan struct{}
	count      atomic.Int64
	seq        atomic.Uint64
	buffer     *EventBuffer
	drainWait  time.Duration
	log        *logrus.Logger
}

// NewHub creates a Hub admitting at most maxClients concurrent connections.
func NewHub(log *logrus.Logger, maxClients int) *Hub {
	if maxClients <= 0 {
		maxClients = 100
	}

	return &Hub{
		clients:    make(map[*Client]struct{}),
		maxClients: maxClients,
		register:   make(chan *Client, registerBuffer),
		unregister: make(chan *Client, registerBuffer),
		broadcast:  make(chan []byte, broadcastBuffer),
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
		buffer:     NewEventBuffer(defaultBufferMaxLen, defaultBufferMaxAge),
		drainWait:  defaultDrainTimeout,
		log:        log,
	}
}

// Run is the hub event loop. It returns after Shutdown is called or ctx is
// cancelled, once connected clients have been drained.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.drainClients()
			return
		case <-h.shutdown:
			h.drainClients()
			return

		case client := <-h.register:
			if len(h.clients) >= h.maxClients {
				h.log.WithField("max", h.maxClients).Warn("connection limit reached, dropping client")
				client.closeSend()

				continue
			}

			h.clients[client] = struct{}{}
			h.updateCount()
			h.log.WithFields(logrus.Fields{"admin": client.Admin, "total": len(h.clients)}).Info("client registered")

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.remove(client)
				h.log.WithField("total", len(h.clients)).Info("client unregistered")
			}

		case msg := <-h.broadcast:
			for client := range h.clients {
				if !client.trySend(msg) {
					// Slow consumer; it can reconnect and replay.
					h.remove(client)
				}
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	delete(h.clients, client)
	client.closeSend()
	h.updateCount()
}

func (h *Hub) updateCount() {
	h.count.Store(int64(len(h.clients)))
	metrics.WSConnections.Set(float64(len(h.clients)))
}

// BroadcastEvent assigns the next sequence ID to an event, buffers it for
// replay, and queues it for every connected client. Oversized events are dropped.
func (h *Hub) BroadcastEvent(eventType string, data json.RawMessage) {
	evt := Event{Type: eventType, ID: h.seq.Add(1), Data: data, Time: time.Now()}

	msg, err := json.Marshal(evt)
	if err != nil {
		h.log.WithError(err).Error("failed to marshal event")
		return
	}

	if len(msg) > maxBroadcastPayload {
		h.log.WithFields(logrus.Fields{
			"type":         eventType,
			"payload_size": len(msg),
		}).Warn("dropping oversized event")

		return
	}

	h.buffer.Append(evt)

	select {
	case h.broadcast <- msg:
	default:
		h.log.WithField("type", eventType).Warn("broadcast channel full, dropping event")
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	default:
		h.log.Warn("register channel full, dropping client")
		c.closeSend()
	}
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// Shutdown tells every client the server is going away, waits for their
// queues to flush (up to three seconds), and blocks until Run returns.
func (h *Hub) Shutdown() {
	close(h.shutdown)
	<-h.done
}

func (h *Hub) drainClients() {
	defer h.updateCount()

	if len(h.clients) == 0 {
		return
	}

	h.log.WithField("clients", len(h.clients)).Info("draining WebSocket clients")

	shutdownMsg := []byte(`{"type":"shutdown","message":"server shutting down"}`)
	for client := range h.clients {
		client.trySend(shutdownMsg)
	}

	deadline := time.NewTimer(h.drainWait)
	defer deadline.Stop()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for !h.flushed() {
		select {
		case <-deadline.C:
			h.log.Warn("WebSocket drain timeout, closing remaining clients")
			h.closeAll()

			return
		case <-ticker.C:
		}
	}

	h.closeAll()
}

func (h *Hub) flushed() bool {
	for client := range h.clients {
		if len(client.send) > 0 {
			return false
		}
	}

	return true
}

func (h *Hub) closeAll() {
	for client := range h.clients {
		client.closeSend()
		delete(h.clients, client)
	}
}

// replay queues buffered events after lastEventID on client. Returns false
// when the client has fallen too far behind to catch up.
func (h *Hub) replay(client *Client, lastEventID uint64) bool {
	events, ok := h.buffer.Since(lastEventID)
	if !ok {
		return false
	}

	for _, evt := range events {
		msg, err := json.Marshal(evt)
		if err != nil {
			continue
		}

		if !client.trySend(msg) {
			return true
		}
	}

	return true
}
