package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"github.com/collegedir/collegedir/internal/dbpool"
)

// ChangesChannel is the NOTIFY channel written after each ingestion run.
const ChangesChannel = "college_changes"

const (
	initialBackoff    = 1 * time.Second
	maxBackoff        = 30 * time.Second
	backoffMultiplier = 2
	defaultEventType  = "colleges.changed"
)

// Broadcaster sends events to connected clients.
type Broadcaster interface {
	BroadcastEvent(eventType string, data json.RawMessage)
}

// NotifyBridge subscribes to PostgreSQL LISTEN/NOTIFY on ChangesChannel and
// forwards each payload to the WebSocket hub, so every server instance
// relays changes made by any other.
type NotifyBridge struct {
	log  *logrus.Logger
	pool *dbpool.Pool
	hub  Broadcaster
}

// NewNotifyBridge creates a NotifyBridge wired to the given pool and hub.
func NewNotifyBridge(log *logrus.Logger, pool *dbpool.Pool, hub Broadcaster) *NotifyBridge {
	return &NotifyBridge{
		log:  log,
		pool: pool,
		hub:  hub,
	}
}

// Run verifies the database is reachable, then listens until ctx is done,
// reconnecting with jittered backoff after connection failures.
func (b *NotifyBridge) Run(ctx context.Context) error {
	if err := b.pool.HealthCheck(ctx); err != nil {
		return fmt.Errorf("notify bridge: database not reachable: %w", err)
	}

	backoff := initialBackoff

	for {
		err := b.subscribeAndForward(ctx)
		if err == nil || ctx.Err() != nil {
			return nil
		}

		b.log.WithError(err).WithField("retry_in", backoff).
			Warn("notify bridge connection lost, reconnecting")

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}

		backoff = nextBackoff(backoff)
	}
}

// subscribeAndForward acquires a connection, issues LISTEN, and blocks on
// notifications until the connection fails or the context is cancelled.
func (b *NotifyBridge) subscribeAndForward(ctx context.Context) error {
	conn, err := b.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquiring connection: %w", err)
	}
	defer conn.Release()

	// LISTEN takes the channel inline, not as a parameter.
	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{ChangesChannel}.Sanitize()); err != nil {
		return fmt.Errorf("executing LISTEN: %w", err)
	}

	b.log.WithField("channel", ChangesChannel).Info("notify bridge listening")

	for {
		// Periodic deadline so ctx cancellation is noticed on an idle connection.
		if err := conn.Conn().PgConn().Conn().SetReadDeadline(time.Now().Add(2 * time.Minute)); err != nil {
			return fmt.Errorf("setting read deadline: %w", err)
		}

		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}

			return fmt.Errorf("waiting for notification: %w", err)
		}

		b.handleNotification(notification)
	}
}

// handleNotification forwards a single notification payload to the hub.
func (b *NotifyBridge) handleNotification(n *pgconn.Notification) {
	b.log.WithFields(logrus.Fields{
		"channel": n.Channel,
		"pid":     n.PID,
	}).Debug("notification received")

	data := json.RawMessage(n.Payload)
	if !json.Valid(data) {
		data, _ = json.Marshal(n.Payload) //nolint:errcheck // marshalling a string cannot fail.
	}

	b.hub.BroadcastEvent(eventType(n.Payload), data)
}

// eventType extracts the "type" field of a JSON payload, falling back to a
// generic change event for payloads without one.
func eventType(payload string) string {
	var p struct {
		Type string `json:"type"`
	}

	if err := json.Unmarshal([]byte(payload), &p); err != nil || p.Type == "" {
		return defaultEventType
	}

	return p.Type
}

// nextBackoff doubles the current backoff with ±25% jitter, capped at maxBackoff.
func nextBackoff(current time.Duration) time.Duration {
	next := current * backoffMultiplier
	if next > maxBackoff {
		next = maxBackoff
	}

	jitter := float64(next) * (0.75 + rand.Float64()*0.5) //nolint:gosec // jitter doesn't need crypto rand.

	return time.Duration(jitter)
}
