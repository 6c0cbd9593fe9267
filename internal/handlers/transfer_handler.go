package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/stwalsh4118/taxroll/internal/errors"
	"github.com/stwalsh4118/taxroll/internal/importer"
	"github.com/stwalsh4118/taxroll/internal/middleware"
	"github.com/stwalsh4118/taxroll/internal/services"
)

// FileImporter runs a bulk import from an uploaded file.
type FileImporter interface {
	Import(ctx context.Context, kind importer.Kind, r io.Reader, format importer.Format, opts importer.Options) (*importer.Result, error)
}

// TransferHandler handles bulk import uploads and export downloads.
type TransferHandler struct {
	importer       FileImporter
	municipalities services.MunicipalityService
	properties     services.PropertyService
	maxUpload      int64
}

// NewTransferHandler creates a new TransferHandler instance. Uploads larger
// than maxUpload bytes are rejected.
func NewTransferHandler(imp FileImporter, municipalities services.MunicipalityService, properties services.PropertyService, maxUpload int64) *TransferHandler {
	return &TransferHandler{
		importer:       imp,
		municipalities: municipalities,
		properties:     properties,
		maxUpload:      maxUpload,
	}
}

func kindParam(c *gin.Context) (importer.Kind, bool) {
	kind, err := importer.ParseKind(c.Param("kind"))
	if err != nil {
		apierrors.NotFound(c, fmt.Sprintf("Unknown entity type %q", c.Param("kind")))
		return "", false
	}
	return kind, true
}

// Import handles POST /api/v1/import/:kind with a multipart "file" field.
// The format comes from the "format" field or the file extension.
func (h *TransferHandler) Import(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			apierrors.PayloadTooLarge(c, fmt.Sprintf("Upload exceeds %d bytes", h.maxUpload))
			return
		}
		apierrors.BadRequest(c, "A file must be uploaded in the \"file\" field", nil)
		return
	}
	if header.Size > h.maxUpload {
		apierrors.PayloadTooLarge(c, fmt.Sprintf("Upload exceeds %d bytes", h.maxUpload))
		return
	}

	format, err := importer.FormatFromFilename(header.Filename)
	if name := c.PostForm("format"); name != "" {
		format, err = importer.ParseFormat(name)
	}
	if err != nil {
		apierrors.BadRequest(c, err.Error(), nil)
		return
	}

	var opts importer.Options
	if raw := c.DefaultPostForm("fail_fast", c.Query("fail_fast")); raw != "" {
		if opts.FailFast, err = strconv.ParseBool(raw); err != nil {
			apierrors.BadRequest(c, "Invalid fail_fast value", map[string]interface{}{"fail_fast": raw})
			return
		}
	}

	file, err := header.Open()
	if err != nil {
		apierrors.InternalServerError(c, "Failed to read upload", err)
		return
	}
	defer file.Close()

	result, err := h.importer.Import(c.Request.Context(), kind, file, format, opts)
	if err != nil {
		var missing *importer.MissingColumnsError
		switch {
		case errors.As(err, &missing):
			apierrors.BadRequest(c, missing.Error(), map[string]interface{}{"missing_columns": missing.Columns})
		case errors.Is(err, importer.ErrNoHeader), errors.Is(err, importer.ErrUnsupportedFormat):
			apierrors.BadRequest(c, err.Error(), nil)
		case errors.Is(err, context.Canceled):
			apierrors.InternalServerError(c, "Import cancelled", err)
		default:
			// Decoder failures are the client's file, not ours.
			apierrors.BadRequest(c, "Could not read file: "+err.Error(), nil)
		}
		return
	}

	if log := middleware.GetLogger(c); log != nil {
		log.Info("Import completed", map[string]interface{}{
			"kind":     kind,
			"filename": header.Filename,
			"created":  result.Created,
			"updated":  result.Updated,
			"failed":   result.Failed,
		})
	}
	c.JSON(http.StatusOK, result)
}

// Export handles GET /api/v1/export/:kind?format=csv|xlsx. Property exports
// accept the same municipal and search filters as the list endpoint.
func (h *TransferHandler) Export(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}

	format, err := importer.ParseFormat(c.DefaultQuery("format", string(importer.FormatCSV)))
	if err != nil {
		apierrors.BadRequest(c, err.Error(), nil)
		return
	}

	var buf bytes.Buffer
	switch kind {
	case importer.KindMunicipalities:
		list, listErr := h.municipalities.List(c.Request.Context())
		if listErr != nil {
			serviceError(c, listErr, "Failed to export municipalities")
			return
		}
		err = importer.ExportMunicipalities(&buf, list, format)
	case importer.KindProperties:
		filter, ok := propertyFilter(c)
		if !ok {
			return
		}
		list, listErr := h.properties.List(c.Request.Context(), filter)
		if listErr != nil {
			serviceError(c, listErr, "Failed to export properties")
			return
		}
		err = importer.ExportProperties(&buf, list, format)
	}
	if err != nil {
		apierrors.InternalServerError(c, "Failed to render export", err)
		return
	}

	filename := fmt.Sprintf("%s.%s", kind, format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
