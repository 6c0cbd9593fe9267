package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	apierrors "github.com/stwalsh4118/taxroll/internal/errors"
	"github.com/stwalsh4118/taxroll/internal/logger"
	"github.com/stwalsh4118/taxroll/internal/middleware"
	"github.com/stwalsh4118/taxroll/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testUploadLimit = 4096

type testAPI struct {
	router         *gin.Engine
	municipalities *MockMunicipalityService
	properties     *MockPropertyService
	importer       *MockImporter
}

// newTestAPI wires every handler to mocks behind the production route table.
func newTestAPI() *testAPI {
	api := &testAPI{
		municipalities: new(MockMunicipalityService),
		properties:     new(MockPropertyService),
		importer:       new(MockImporter),
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger.Nop()))

	h := &Handlers{
		Health:         NewHealthHandler(new(MockPinger), "test"),
		Municipalities: NewMunicipalityHandler(api.municipalities),
		Properties:     NewPropertyHandler(api.properties),
		Transfers:      NewTransferHandler(api.importer, api.municipalities, api.properties, testUploadLimit),
		UploadLimit:    testUploadLimit,
	}
	h.Register(router)
	api.router = router
	return api
}

func (api *testAPI) do(method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	return w
}

func (api *testAPI) doJSON(method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}
	return api.do(method, path, r, "application/json")
}

func (api *testAPI) assertExpectations(t *testing.T) {
	api.municipalities.AssertExpectations(t)
	api.properties.AssertExpectations(t)
	api.importer.AssertExpectations(t)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apierrors.ErrorDetail {
	t.Helper()
	var response apierrors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response.Error
}

func multipartBody(t *testing.T, filename, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = io.WriteString(part, content)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func springfield() *models.Municipality {
	return &models.Municipality{
		MunicipalID:   1,
		MunicipalName: "Springfield",
		MunicipalRate: decimal.RequireFromString("0.012"),
		EducationRate: decimal.RequireFromString("0.005"),
	}
}

func propertyA100() *models.Property {
	return &models.Property{
		ID:                   10,
		AssessmentRollNumber: "A100",
		AssessmentValue:      100000,
		Municipal:            *springfield(),
	}
}
