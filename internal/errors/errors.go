package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/gleamhq/estimator/internal/middleware"
)

// Error code constants for standardized error responses
const (
	ErrNotFound          = "NOT_FOUND"
	ErrBadRequest        = "BAD_REQUEST"
	ErrInternalServer    = "INTERNAL_SERVER_ERROR"
	ErrValidation        = "VALIDATION_ERROR"
	ErrUpstreamRejected  = "UPSTREAM_REJECTED"
	ErrSessionExpired    = "SESSION_EXPIRED"
)

// ErrorResponse is the top-level error response structure.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error information.
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// NotFound returns a 404 Not Found error response.
func NotFound(c *gin.Context, message string) {
	respond(c, http.StatusNotFound, ErrNotFound, message, nil)
}

// SessionExpired returns a 404 for a hand-off session that no longer exists.
func SessionExpired(c *gin.Context, message string) {
	respond(c, http.StatusNotFound, ErrSessionExpired, message, nil)
}

// BadRequest returns a 400 Bad Request error response with optional details.
func BadRequest(c *gin.Context, message string, details map[string]interface{}) {
	respond(c, http.StatusBadRequest, ErrBadRequest, message, details)
}

// UpstreamRejected returns a 502 when an external collaborator refused or
// failed the call; the caller may retry visibly.
func UpstreamRejected(c *gin.Context, message string, err error) {
	log := middleware.GetLogger(c)
	if log != nil {
		log.Error("Upstream collaborator failed", err, map[string]interface{}{
			"message": message,
			"path":    c.Request.URL.Path,
		})
	}
	respond(c, http.StatusBadGateway, ErrUpstreamRejected, message, nil)
}

// InternalServerError returns a 500 Internal Server Error response.
// The actual error details are logged but not exposed to the client.
func InternalServerError(c *gin.Context, message string, err error) {
	log := middleware.GetLogger(c)
	if log != nil {
		log.Error("Internal server error", err, map[string]interface{}{
			"message": message,
			"path":    c.Request.URL.Path,
			"method":  c.Request.Method,
		})
	}
	respond(c, http.StatusInternalServerError, ErrInternalServer, message, nil)
}

// ValidationError returns a 400 response with field-specific validation
// errors parsed from the validator library.
func ValidationError(c *gin.Context, validationErrors validator.ValidationErrors) {
	details := make(map[string]interface{})
	for _, err := range validationErrors {
		details[err.Field()] = formatValidationError(err)
	}

	log := middleware.GetLogger(c)
	if log != nil {
		log.Warn("Validation error", map[string]interface{}{
			"path":   c.Request.URL.Path,
			"fields": details,
		})
	}

	respond(c, http.StatusBadRequest, ErrValidation, "Validation failed for one or more fields", details)
}

func respond(c *gin.Context, status int, code, message string, details map[string]interface{}) {
	requestID := middleware.GetRequestID(c)

	if status < http.StatusInternalServerError {
		if log := middleware.GetLogger(c); log != nil {
			fields := map[string]interface{}{
				"message": message,
				"path":    c.Request.URL.Path,
			}
			if details != nil {
				fields["details"] = details
			}
			log.Warn("Request rejected", fields)
		}
	}

	c.JSON(status, ErrorResponse{
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: requestID,
		},
	})
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "min":
		return "Value is too short or small (minimum: " + err.Param() + ")"
	case "max":
		return "Value is too long or large (maximum: " + err.Param() + ")"
	case "len":
		return "Must have length of " + err.Param()
	case "gt":
		return "Must be greater than " + err.Param()
	case "gte":
		return "Must be greater than or equal to " + err.Param()
	case "lt":
		return "Must be less than " + err.Param()
	case "lte":
		return "Must be less than or equal to " + err.Param()
	case "oneof":
		return "Must be one of: " + err.Param()
	case "url":
		return "Must be a valid URL"
	case "uuid":
		return "Must be a valid UUID"
	default:
		return "Validation failed for tag: " + err.Tag()
	}
}
