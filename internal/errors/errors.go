package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stwalsh4118/taxroll/internal/middleware"
)

// Error code constants for standardized error responses
const (
	ErrNotFound           = "NOT_FOUND"
	ErrBadRequest         = "BAD_REQUEST"
	ErrInternalServer     = "INTERNAL_SERVER_ERROR"
	ErrValidation         = "VALIDATION_ERROR"
	ErrPayloadTooLarge    = "PAYLOAD_TOO_LARGE"
	ErrDatabaseConnection = "DATABASE_CONNECTION_ERROR"
)

// InvalidMunicipalityMessage is the body of a rejected municipal reassignment.
const InvalidMunicipalityMessage = "Invalid municipality ID"

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

func abort(c *gin.Context, status int, detail ErrorDetail) {
	detail.RequestID = middleware.GetRequestID(c)
	c.AbortWithStatusJSON(status, ErrorResponse{Error: detail})
}

func warn(c *gin.Context, msg string, fields map[string]interface{}) {
	log := middleware.GetLogger(c)
	if log == nil {
		return
	}
	fields["request_id"] = middleware.GetRequestID(c)
	fields["path"] = c.Request.URL.Path
	log.Warn(msg, fields)
}

// NotFound returns a 404 Not Found error response.
func NotFound(c *gin.Context, message string) {
	warn(c, "Resource not found", map[string]interface{}{"message": message})
	abort(c, http.StatusNotFound, ErrorDetail{Code: ErrNotFound, Message: message})
}

// BadRequest returns a 400 Bad Request error response with optional details.
func BadRequest(c *gin.Context, message string, details map[string]interface{}) {
	fields := map[string]interface{}{"message": message}
	if details != nil {
		fields["details"] = details
	}
	warn(c, "Bad request", fields)
	abort(c, http.StatusBadRequest, ErrorDetail{Code: ErrBadRequest, Message: message, Details: details})
}

// PayloadTooLarge returns a 413 response for uploads over the size limit.
func PayloadTooLarge(c *gin.Context, message string) {
	warn(c, "Payload too large", map[string]interface{}{"message": message})
	abort(c, http.StatusRequestEntityTooLarge, ErrorDetail{Code: ErrPayloadTooLarge, Message: message})
}

// InvalidMunicipality returns the flat 400 body clients of the property
// PATCH endpoint expect when the new municipal reference does not exist.
func InvalidMunicipality(c *gin.Context, municipalID int64) {
	warn(c, "Municipal reassignment rejected", map[string]interface{}{"municipal_id": municipalID})
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": InvalidMunicipalityMessage})
}

// InternalServerError returns a 500 Internal Server Error response.
// The cause is logged but never sent to the client.
func InternalServerError(c *gin.Context, message string, err error) {
	if log := middleware.GetLogger(c); log != nil {
		log.Error("Internal server error", err, map[string]interface{}{
			"message":    message,
			"request_id": middleware.GetRequestID(c),
			"path":       c.Request.URL.Path,
			"method":     c.Request.Method,
		})
	}
	if err != nil {
		_ = c.Error(err)
	}
	abort(c, http.StatusInternalServerError, ErrorDetail{Code: ErrInternalServer, Message: message})
}

// FieldErrors returns a 400 response listing every invalid field with its message.
func FieldErrors(c *gin.Context, fields map[string]string) {
	details := make(map[string]interface{}, len(fields))
	for field, msg := range fields {
		details[field] = msg
	}
	warn(c, "Validation error", map[string]interface{}{"fields": details})
	abort(c, http.StatusBadRequest, ErrorDetail{
		Code:    ErrValidation,
		Message: "Validation failed for one or more fields",
		Details: details,
	})
}

// ValidationError reports binding-tag failures from the validator library.
func ValidationError(c *gin.Context, validationErrors validator.ValidationErrors) {
	fields := make(map[string]string, len(validationErrors))
	for _, err := range validationErrors {
		fields[err.Field()] = formatValidationError(err)
	}
	FieldErrors(c, fields)
}

// InvalidBody reports a request body that failed to bind, distinguishing
// field validation failures from malformed payloads.
func InvalidBody(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if stderrors.As(err, &validationErrors) {
		ValidationError(c, validationErrors)
		return
	}
	BadRequest(c, "Invalid request body", map[string]interface{}{"error": err.Error()})
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return "Value is too short or small (minimum: " + err.Param() + ")"
	case "max":
		return "Value is too long or large (maximum: " + err.Param() + ")"
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
	case "numeric":
		return "Must be a number"
	default:
		return "Validation failed for tag: " + err.Tag()
	}
}
