package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/stwalsh4118/taxroll/internal/errors"
	"github.com/stwalsh4118/taxroll/internal/services"
)

// MunicipalityHandler handles municipality CRUD requests.
type MunicipalityHandler struct {
	service services.MunicipalityService
}

// NewMunicipalityHandler creates a new MunicipalityHandler instance.
func NewMunicipalityHandler(service services.MunicipalityService) *MunicipalityHandler {
	return &MunicipalityHandler{service: service}
}

// List handles GET /api/v1/municipalities.
func (h *MunicipalityHandler) List(c *gin.Context) {
	municipalities, err := h.service.List(c.Request.Context())
	if err != nil {
		serviceError(c, err, "Failed to list municipalities")
		return
	}

	out := make([]MunicipalityResponse, len(municipalities))
	for i := range municipalities {
		out[i] = newMunicipalityResponse(&municipalities[i])
	}
	c.JSON(http.StatusOK, out)
}

// Get handles GET /api/v1/municipalities/:municipal_id.
func (h *MunicipalityHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "municipal_id", "municipality ID")
	if !ok {
		return
	}

	m, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		serviceError(c, err, "Failed to load municipality")
		return
	}
	c.JSON(http.StatusOK, newMunicipalityResponse(m))
}

// Create handles POST /api/v1/municipalities.
func (h *MunicipalityHandler) Create(c *gin.Context) {
	var req CreateMunicipalityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidBody(c, err)
		return
	}

	m, err := h.service.Create(c.Request.Context(), req.model(*req.MunicipalID))
	if err != nil {
		serviceError(c, err, "Failed to create municipality")
		return
	}
	c.JSON(http.StatusCreated, newMunicipalityResponse(m))
}

// Replace handles PUT /api/v1/municipalities/:municipal_id. The id comes
// from the path; municipal ids are never renumbered.
func (h *MunicipalityHandler) Replace(c *gin.Context) {
	id, ok := pathID(c, "municipal_id", "municipality ID")
	if !ok {
		return
	}

	var req ReplaceMunicipalityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidBody(c, err)
		return
	}

	m, err := h.service.Replace(c.Request.Context(), id, req.model(id))
	if err != nil {
		serviceError(c, err, "Failed to update municipality")
		return
	}
	c.JSON(http.StatusOK, newMunicipalityResponse(m))
}

// Patch handles PATCH /api/v1/municipalities/:municipal_id.
func (h *MunicipalityHandler) Patch(c *gin.Context) {
	id, ok := pathID(c, "municipal_id", "municipality ID")
	if !ok {
		return
	}

	var req PatchMunicipalityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidBody(c, err)
		return
	}

	m, err := h.service.Patch(c.Request.Context(), id, services.MunicipalityPatch{
		MunicipalName: req.MunicipalName,
		MunicipalRate: req.MunicipalRate,
		EducationRate: req.EducationRate,
	})
	if err != nil {
		serviceError(c, err, "Failed to update municipality")
		return
	}
	c.JSON(http.StatusOK, newMunicipalityResponse(m))
}

// Delete handles DELETE /api/v1/municipalities/:municipal_id. Every property
// of the municipality is deleted with it.
func (h *MunicipalityHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "municipal_id", "municipality ID")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		serviceError(c, err, "Failed to delete municipality")
		return
	}
	c.Status(http.StatusNoContent)
}
