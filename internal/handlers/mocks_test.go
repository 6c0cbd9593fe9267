package handlers

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
	"github.com/stwalsh4118/taxroll/internal/importer"
	"github.com/stwalsh4118/taxroll/internal/models"
	"github.com/stwalsh4118/taxroll/internal/repository"
	"github.com/stwalsh4118/taxroll/internal/services"
)

type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockMunicipalityService struct {
	mock.Mock
}

func (m *MockMunicipalityService) municipality(args mock.Arguments) (*models.Municipality, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Municipality), args.Error(1)
}

func (m *MockMunicipalityService) List(ctx context.Context) ([]models.Municipality, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Municipality), args.Error(1)
}

func (m *MockMunicipalityService) Get(ctx context.Context, id int64) (*models.Municipality, error) {
	return m.municipality(m.Called(ctx, id))
}

func (m *MockMunicipalityService) Find(ctx context.Context, id int64) (*models.Municipality, error) {
	return m.municipality(m.Called(ctx, id))
}

func (m *MockMunicipalityService) Create(ctx context.Context, mun models.Municipality) (*models.Municipality, error) {
	return m.municipality(m.Called(ctx, mun))
}

func (m *MockMunicipalityService) Replace(ctx context.Context, id int64, mun models.Municipality) (*models.Municipality, error) {
	return m.municipality(m.Called(ctx, id, mun))
}

func (m *MockMunicipalityService) Patch(ctx context.Context, id int64, patch services.MunicipalityPatch) (*models.Municipality, error) {
	return m.municipality(m.Called(ctx, id, patch))
}

func (m *MockMunicipalityService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockMunicipalityService) Upsert(ctx context.Context, mun models.Municipality) (bool, error) {
	args := m.Called(ctx, mun)
	return args.Bool(0), args.Error(1)
}

func (m *MockMunicipalityService) EnsureExists(ctx context.Context, mun models.Municipality) (bool, error) {
	args := m.Called(ctx, mun)
	return args.Bool(0), args.Error(1)
}

type MockPropertyService struct {
	mock.Mock
}

func (m *MockPropertyService) property(args mock.Arguments) (*models.Property, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyService) List(ctx context.Context, filter repository.PropertyFilter) ([]models.Property, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Property), args.Error(1)
}

func (m *MockPropertyService) Get(ctx context.Context, id int64) (*models.Property, error) {
	return m.property(m.Called(ctx, id))
}

func (m *MockPropertyService) Create(ctx context.Context, in services.PropertyInput) (*models.Property, error) {
	return m.property(m.Called(ctx, in))
}

func (m *MockPropertyService) Replace(ctx context.Context, id int64, in services.PropertyInput) (*models.Property, error) {
	return m.property(m.Called(ctx, id, in))
}

func (m *MockPropertyService) Patch(ctx context.Context, id int64, patch services.PropertyPatch) (*models.Property, error) {
	return m.property(m.Called(ctx, id, patch))
}

func (m *MockPropertyService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPropertyService) UpsertByRollNumber(ctx context.Context, in services.PropertyInput) (bool, error) {
	args := m.Called(ctx, in)
	return args.Bool(0), args.Error(1)
}

type MockImporter struct {
	mock.Mock
}

func (m *MockImporter) Import(ctx context.Context, kind importer.Kind, r io.Reader, format importer.Format, opts importer.Options) (*importer.Result, error) {
	body, _ := io.ReadAll(r)
	args := m.Called(ctx, kind, string(body), format, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*importer.Result), args.Error(1)
}
