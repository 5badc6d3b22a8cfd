package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeTimeout       = 10 * time.Second
	wsReadLimit        = 4096
	clientSendBuffer   = 64
	maxConnLifetime    = 4 * time.Hour
	keyRecheckInterval = 15 * time.Minute
	keyRecheckTimeout  = 10 * time.Second
	pingInterval       = 30 * time.Second
	pingTimeout        = 10 * time.Second
	maxMissedPongs     = 2
)

// KeyValidator re-checks that an admin key is still active.
type KeyValidator interface {
	GetAdminByAPIKey(ctx context.Context, apiKey string) (string, error)
}

// Client wraps a single WebSocket connection managed by the Hub.
type Client struct {
	// Admin is the name of the admin key the connection authenticated with.
	Admin string

	hub         *Hub
	conn        *websocket.Conn
	log         *logrus.Logger
	apiKey      string
	validator   KeyValidator
	connectedAt time.Time

	mu     sync.Mutex
	closed bool
	send   chan []byte
}

// NewClient creates a Client for conn. validator may be nil to skip key re-checks.
func NewClient(hub *Hub, conn *websocket.Conn, admin, apiKey string, validator KeyValidator) *Client {
	return &Client{
		Admin:       admin,
		hub:         hub,
		conn:        conn,
		log:         hub.log,
		apiKey:      apiKey,
		validator:   validator,
		connectedAt: time.Now(),
		send:        make(chan []byte, clientSendBuffer),
	}
}

// trySend queues msg without blocking. Returns false if the queue is full or closed.
func (c *Client) trySend(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// closeSend closes the send queue exactly once, which ends WritePump.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// ReadPump reads client messages until the connection closes. Clients may
// send a subscribe message to replay events they missed.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.CloseNow() //nolint:errcheck // best-effort close on teardown
	}()

	c.conn.SetReadLimit(wsReadLimit)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if status := websocket.CloseStatus(err); status != -1 {
				c.log.WithField("status", status).Debug("client disconnected")
			}

			return
		}

		c.handleMessage(data)
	}
}

func (c *Client) handleMessage(data []byte) {
	var msg SubscribeMsg
	if err := json.Unmarshal(data, &msg); err != nil || msg.Type != "subscribe" {
		return
	}

	if c.hub.replay(c, msg.LastEventID) {
		return
	}

	reset, err := json.Marshal(ResetMsg{
		Type:   "reset",
		Reason: "requested events no longer available, perform full refresh",
	})
	if err == nil {
		c.trySend(reset)
	}
}

// WritePump writes queued messages to the connection. It also pings the peer,
// re-checks the admin key, and enforces a maximum connection lifetime.
func (c *Client) WritePump(ctx context.Context) {
	defer c.conn.CloseNow() //nolint:errcheck // best-effort close on teardown

	lifetime := time.NewTimer(time.Until(c.connectedAt.Add(maxConnLifetime)))
	defer lifetime.Stop()

	recheck := time.NewTicker(keyRecheckInterval)
	defer recheck.Stop()

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	missedPongs := 0

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.Close(websocket.StatusGoingAway, "") //nolint:errcheck // best-effort
				return
			}

			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Write(writeCtx, websocket.MessageText, msg)
			cancel()

			if err != nil {
				c.log.WithError(err).Debug("write failed")
				return
			}

		case <-ping.C:
			pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
			err := c.conn.Ping(pingCtx)
			cancel()

			if err == nil {
				missedPongs = 0
				continue
			}

			if missedPongs++; missedPongs >= maxMissedPongs {
				c.log.Debug("closing: consecutive missed pongs")
				return
			}

		case <-recheck.C:
			if !c.keyStillValid(ctx) {
				c.log.WithField("admin", c.Admin).Info("closing WebSocket: admin key no longer valid")
				c.conn.Close(websocket.StatusPolicyViolation, "authentication expired") //nolint:errcheck // best-effort

				return
			}

		case <-lifetime.C:
			c.log.Info("closing WebSocket: max connection lifetime exceeded")
			c.conn.Close(websocket.StatusNormalClosure, "max connection lifetime exceeded") //nolint:errcheck // best-effort

			return

		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) keyStillValid(ctx context.Context) bool {
	if c.validator == nil {
		return true
	}

	checkCtx, cancel := context.WithTimeout(ctx, keyRecheckTimeout)
	defer cancel()

	_, err := c.validator.GetAdminByAPIKey(checkCtx, c.apiKey)

	return err == nil
}
