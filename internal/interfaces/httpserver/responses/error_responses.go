package responses

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsachs1300/wayfinder-api/internal/domain/profile"
	"github.com/jsachs1300/wayfinder-api/internal/domain/token"
	"github.com/jsachs1300/wayfinder-api/internal/utils/platformerrors"
)

// ErrorResponse is the product's wire-level error shape. The admin console
// keys off the machine-readable kind in "error" and renders "message".
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// HandleError maps domain errors to their HTTP status and wire kind.
func HandleError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, profile.ErrVersionConflict):
		abort(c, http.StatusConflict, "ConflictError",
			"Default-token profile was modified concurrently. Reload the profile and retry.")
		return
	case errors.Is(err, token.ErrNotFound):
		abort(c, http.StatusNotFound, "NotFound", "Token not found.")
		return
	}

	var invalidIDs *profile.InvalidModelIDsError
	if errors.As(err, &invalidIDs) {
		abort(c, http.StatusBadRequest, "ValidationError", invalidIDs.Error()+". Use models from /admin/models.")
		return
	}

	var platformErr *platformerrors.PlatformError
	if errors.As(err, &platformErr) {
		message := platformErr.Message
		if message == "" {
			message = fallback
		}
		abort(c, platformerrors.ErrorTypeToHTTPStatus(platformErr.Type), platformerrors.ErrorTypeKind(platformErr.Type), message)
		return
	}

	abort(c, http.StatusInternalServerError, "InternalError", fallback)
}

// HandleValidationError writes a 400 with the given message.
func HandleValidationError(c *gin.Context, message string) {
	abort(c, http.StatusBadRequest, "ValidationError", message)
}

func abort(c *gin.Context, status int, kind, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     kind,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
