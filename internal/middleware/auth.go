package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// authTimingFloor is the minimum duration of a rejected auth attempt, so
// response timing does not reveal whether a key exists.
const authTimingFloor = 50 * time.Millisecond

// AdminKey is the gin context key holding the authenticated admin key name.
const AdminKey = "admin"

// AdminLookup resolves an admin API key to the key's name.
type AdminLookup interface {
	GetAdminByAPIKey(ctx context.Context, apiKey string) (string, error)
}

// KeyGuard tracks failed attempts per key. Implemented by security.BruteForceGuard.
type KeyGuard interface {
	RetryAfter(apiKey string) time.Duration
	RecordFailure(apiKey string)
	ResetKey(apiKey string)
}

// truncateKey returns at most the first 4 characters of key followed by "...".
func truncateKey(key string) string {
	if len(key) > 4 {
		return key[:4] + "..."
	}

	return key
}

func enforceTimingFloor(start time.Time) {
	if elapsed := time.Since(start); elapsed < authTimingFloor {
		time.Sleep(authTimingFloor - elapsed)
	}
}

// AdminAuth returns middleware that admits requests carrying a valid admin
// Bearer key. A nil guard disables lockout tracking.
func AdminAuth(lookup AdminLookup, log *logrus.Logger, guard KeyGuard) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if c.Writer.Status() == http.StatusUnauthorized {
				enforceTimingFloor(start)
			}
		}()

		apiKey := ExtractBearerToken(c)
		if apiKey == "" {
			respondError(c, http.StatusUnauthorized, "unauthorized", "missing or invalid authorization header")
			return
		}

		if guard != nil {
			if wait := guard.RetryAfter(apiKey); wait > 0 {
				c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				respondError(c, http.StatusTooManyRequests, "rate_limited", "too many failed authentication attempts")

				return
			}
		}

		name, err := lookup.GetAdminByAPIKey(c.Request.Context(), apiKey)
		if err != nil {
			logAuthFailure(log, c, apiKey)

			if guard != nil {
				guard.RecordFailure(apiKey)
			}

			respondError(c, http.StatusUnauthorized, "unauthorized", "invalid api key")

			return
		}

		if guard != nil {
			guard.ResetKey(apiKey)
		}

		c.Set(AdminKey, name)
		c.Next()
	}
}

// ExtractBearerToken extracts the API key from the Authorization header.
func ExtractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}

	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func logAuthFailure(log *logrus.Logger, c *gin.Context, apiKey string) {
	log.WithFields(logrus.Fields{
		"client_ip":  c.ClientIP(),
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"user_agent": c.Request.UserAgent(),
		"request_id": c.GetString(RequestIDKey),
		"key_prefix": truncateKey(apiKey),
	}).Warn("authentication failed: invalid admin key")
}
