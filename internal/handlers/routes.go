package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/taxroll/internal/middleware"
)

// Handlers bundles every HTTP handler the API serves.
type Handlers struct {
	Health         *HealthHandler
	Municipalities *MunicipalityHandler
	Properties     *PropertyHandler
	Transfers      *TransferHandler
	// UploadLimit caps import request bodies in bytes.
	UploadLimit int64
}

// both registers a route with and without a trailing slash, since clients
// of the previous API always sent the slash.
func both(rg *gin.RouterGroup, method, path string, handlers ...gin.HandlerFunc) {
	path = strings.TrimSuffix(path, "/")
	rg.Handle(method, path, handlers...)
	rg.Handle(method, path+"/", handlers...)
}

// Register mounts the health probes and the /api/v1 routes on router.
func (h *Handlers) Register(router *gin.Engine) {
	router.RedirectTrailingSlash = false

	router.GET("/health", h.Health.Health)
	router.GET("/health/ready", h.Health.Ready)

	v1 := router.Group("/api/v1")
	v1.GET("/info", h.Health.Info)

	municipalities := v1.Group("/municipalities")
	both(municipalities, "GET", "", h.Municipalities.List)
	both(municipalities, "POST", "", h.Municipalities.Create)
	both(municipalities, "GET", "/:municipal_id", h.Municipalities.Get)
	both(municipalities, "PUT", "/:municipal_id", h.Municipalities.Replace)
	both(municipalities, "PATCH", "/:municipal_id", h.Municipalities.Patch)
	both(municipalities, "DELETE", "/:municipal_id", h.Municipalities.Delete)

	properties := v1.Group("/properties")
	both(properties, "GET", "", h.Properties.List)
	both(properties, "POST", "", h.Properties.Create)
	both(properties, "GET", "/:id", h.Properties.Get)
	both(properties, "PUT", "/:id", h.Properties.Replace)
	both(properties, "PATCH", "/:id", h.Properties.Patch)
	both(properties, "DELETE", "/:id", h.Properties.Delete)

	both(v1, "POST", "/import/:kind", middleware.BodyLimit(h.UploadLimit), h.Transfers.Import)
	both(v1, "GET", "/export/:kind", h.Transfers.Export)
}
