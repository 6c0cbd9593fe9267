package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	apierrors "github.com/stwalsh4118/taxroll/internal/errors"
	"github.com/stwalsh4118/taxroll/internal/middleware"
	"github.com/stwalsh4118/taxroll/internal/repository"
	"github.com/stwalsh4118/taxroll/internal/services"
)

// PropertyHandler handles property CRUD requests.
type PropertyHandler struct {
	service services.PropertyService
}

// NewPropertyHandler creates a new PropertyHandler instance.
func NewPropertyHandler(service services.PropertyService) *PropertyHandler {
	return &PropertyHandler{service: service}
}

// propertyFilter reads the municipal and search list filters.
func propertyFilter(c *gin.Context) (repository.PropertyFilter, bool) {
	filter := repository.PropertyFilter{Search: strings.TrimSpace(c.Query("search"))}

	if raw := c.Query("municipal"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 1 {
			apierrors.BadRequest(c, "Invalid municipal filter", map[string]interface{}{"municipal": raw})
			return filter, false
		}
		filter.MunicipalID = &id
	}
	return filter, true
}

// List handles GET /api/v1/properties?municipal=&search=.
func (h *PropertyHandler) List(c *gin.Context) {
	filter, ok := propertyFilter(c)
	if !ok {
		return
	}

	properties, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		serviceError(c, err, "Failed to list properties")
		return
	}

	out := make([]PropertyResponse, len(properties))
	for i := range properties {
		out[i] = newPropertyResponse(&properties[i])
	}
	c.JSON(http.StatusOK, out)
}

// Get handles GET /api/v1/properties/:id.
func (h *PropertyHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", "property ID")
	if !ok {
		return
	}

	p, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		serviceError(c, err, "Failed to load property")
		return
	}
	c.JSON(http.StatusOK, newPropertyResponse(p))
}

func (req PropertyWriteRequest) input() services.PropertyInput {
	return services.PropertyInput{
		AssessmentRollNumber: *req.AssessmentRollNumber,
		AssessmentValue:      *req.AssessmentValue,
		MunicipalID:          *municipalRef(req.MunicipalID, req.Municipal),
	}
}

// Create handles POST /api/v1/properties.
func (h *PropertyHandler) Create(c *gin.Context) {
	var req PropertyWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidBody(c, err)
		return
	}

	p, err := h.service.Create(c.Request.Context(), req.input())
	if err != nil {
		serviceError(c, err, "Failed to create property")
		return
	}
	c.JSON(http.StatusCreated, newPropertyResponse(p))
}

// Replace handles PUT /api/v1/properties/:id.
func (h *PropertyHandler) Replace(c *gin.Context) {
	id, ok := pathID(c, "id", "property ID")
	if !ok {
		return
	}

	var req PropertyWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidBody(c, err)
		return
	}

	p, err := h.service.Replace(c.Request.Context(), id, req.input())
	if err != nil {
		serviceError(c, err, "Failed to update property")
		return
	}
	c.JSON(http.StatusOK, newPropertyResponse(p))
}

// Patch handles PATCH /api/v1/properties/:id. An unknown municipality is
// answered with a flat 400 and the property is left untouched.
func (h *PropertyHandler) Patch(c *gin.Context) {
	id, ok := pathID(c, "id", "property ID")
	if !ok {
		return
	}

	var req PropertyPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidBody(c, err)
		return
	}

	patch := services.PropertyPatch{
		AssessmentRollNumber: req.AssessmentRollNumber,
		AssessmentValue:      req.AssessmentValue,
		MunicipalID:          municipalRef(req.MunicipalID, req.Municipal),
	}

	p, err := h.service.Patch(c.Request.Context(), id, patch)
	if errors.Is(err, services.ErrInvalidMunicipality) {
		var ref int64
		if patch.MunicipalID != nil {
			ref = *patch.MunicipalID
		}
		apierrors.InvalidMunicipality(c, ref)
		return
	}
	if err != nil {
		serviceError(c, err, "Failed to update property")
		return
	}

	if log := middleware.GetLogger(c); log != nil && patch.MunicipalID != nil {
		log.Info("Property municipality reassigned", map[string]interface{}{
			"property_id":  id,
			"municipal_id": *patch.MunicipalID,
		})
	}
	c.JSON(http.StatusOK, newPropertyResponse(p))
}

// Delete handles DELETE /api/v1/properties/:id.
func (h *PropertyHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id", "property ID")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		serviceError(c, err, "Failed to delete property")
		return
	}
	c.Status(http.StatusNoContent)
}
