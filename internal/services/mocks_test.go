package services

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/stwalsh4118/taxroll/internal/models"
	"github.com/stwalsh4118/taxroll/internal/repository"
)

// MockMunicipalityRepository is a mock implementation of repository.MunicipalityRepository.
type MockMunicipalityRepository struct {
	mock.Mock
}

func (m *MockMunicipalityRepository) FindByID(ctx context.Context, id int64) (*models.Municipality, error) {
	args := m.Called(ctx, id)
	municipality, _ := args.Get(0).(*models.Municipality)
	return municipality, args.Error(1)
}

func (m *MockMunicipalityRepository) List(ctx context.Context) ([]models.Municipality, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]models.Municipality)
	return list, args.Error(1)
}

func (m *MockMunicipalityRepository) Create(ctx context.Context, municipality models.Municipality) (*models.Municipality, error) {
	args := m.Called(ctx, municipality)
	created, _ := args.Get(0).(*models.Municipality)
	return created, args.Error(1)
}

func (m *MockMunicipalityRepository) Update(ctx context.Context, municipality models.Municipality) (*models.Municipality, error) {
	args := m.Called(ctx, municipality)
	updated, _ := args.Get(0).(*models.Municipality)
	return updated, args.Error(1)
}

func (m *MockMunicipalityRepository) Upsert(ctx context.Context, municipality models.Municipality) (bool, error) {
	args := m.Called(ctx, municipality)
	return args.Bool(0), args.Error(1)
}

func (m *MockMunicipalityRepository) EnsureExists(ctx context.Context, municipality models.Municipality) (bool, error) {
	args := m.Called(ctx, municipality)
	return args.Bool(0), args.Error(1)
}

func (m *MockMunicipalityRepository) Delete(ctx context.Context, id int64) (int64, bool, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

// MockPropertyRepository is a mock implementation of repository.PropertyRepository.
type MockPropertyRepository struct {
	mock.Mock
}

func (m *MockPropertyRepository) FindByID(ctx context.Context, id int64) (*models.Property, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*models.Property)
	return p, args.Error(1)
}

func (m *MockPropertyRepository) List(ctx context.Context, filter repository.PropertyFilter) ([]models.Property, error) {
	args := m.Called(ctx, filter)
	list, _ := args.Get(0).([]models.Property)
	return list, args.Error(1)
}

func (m *MockPropertyRepository) Create(ctx context.Context, rec repository.PropertyRecord) (*models.Property, error) {
	args := m.Called(ctx, rec)
	p, _ := args.Get(0).(*models.Property)
	return p, args.Error(1)
}

func (m *MockPropertyRepository) Update(ctx context.Context, id int64, rec repository.PropertyRecord) (*models.Property, error) {
	args := m.Called(ctx, id, rec)
	p, _ := args.Get(0).(*models.Property)
	return p, args.Error(1)
}

func (m *MockPropertyRepository) Patch(ctx context.Context, id int64, changes repository.PropertyChanges) (*models.Property, error) {
	args := m.Called(ctx, id, changes)
	p, _ := args.Get(0).(*models.Property)
	return p, args.Error(1)
}

func (m *MockPropertyRepository) UpsertByRollNumber(ctx context.Context, rec repository.PropertyRecord) (bool, error) {
	args := m.Called(ctx, rec)
	return args.Bool(0), args.Error(1)
}

func (m *MockPropertyRepository) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
