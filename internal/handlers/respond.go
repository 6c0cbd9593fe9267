package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/stwalsh4118/taxroll/internal/errors"
	"github.com/stwalsh4118/taxroll/internal/services"
)

// pathID parses a positive integer path parameter, writing a 400 on failure.
func pathID(c *gin.Context, param, label string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id < 1 {
		apierrors.BadRequest(c, "Invalid "+label, map[string]interface{}{param: c.Param(param)})
		return 0, false
	}
	return id, true
}

// serviceError maps service errors onto responses. Unknown errors become
// a 500 with message as the client-facing text.
func serviceError(c *gin.Context, err error, message string) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		apierrors.FieldErrors(c, validationErr.Fields)
	case errors.Is(err, services.ErrPropertyNotFound):
		apierrors.NotFound(c, "Property not found")
	case errors.Is(err, services.ErrMunicipalityNotFound):
		apierrors.NotFound(c, "Municipality not found")
	default:
		apierrors.InternalServerError(c, message, err)
	}
}
