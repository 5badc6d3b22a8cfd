package api

import (
	"github.com/gin-gonic/gin"

	"github.com/collegedir/collegedir/internal/httputil"
)

// Error code constants for standardized API responses.
const (
	ErrCodeInvalidRequest  = "invalid_request"
	ErrCodeNotFound        = "not_found"
	ErrCodeInternalError   = "internal_error"
	ErrCodeUnauthorized    = "unauthorized"
	ErrCodeRateLimited     = "rate_limited"
	ErrCodeValidationError = "validation_error"
	ErrCodeInvalidUpload   = "invalid_upload"
)

// respondError writes a standardized JSON error response. httputil counts the
// error code in metrics.
func respondError(c *gin.Context, status int, code, message string) {
	httputil.RespondError(c, status, code, message)
}
