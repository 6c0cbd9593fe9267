package importer

import (
	"context"
	"errors"
	"sync"

	"github.com/stwalsh4118/taxroll/internal/models"
	"github.com/stwalsh4118/taxroll/internal/services"
)

// memStore is an in-memory MunicipalityStore and PropertyStore with the
// same upsert semantics as the database.
type memStore struct {
	mu             sync.Mutex
	municipalities map[int64]models.Municipality
	properties     map[string]services.PropertyInput
	upserts        int
	failRoll       string
}

func newMemStore() *memStore {
	return &memStore{
		municipalities: make(map[int64]models.Municipality),
		properties:     make(map[string]services.PropertyInput),
	}
}

var errStoreUnavailable = errors.New("store unavailable")

func (s *memStore) Find(_ context.Context, id int64) (*models.Municipality, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.municipalities[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (s *memStore) Upsert(_ context.Context, m models.Municipality) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts++
	_, exists := s.municipalities[m.MunicipalID]
	s.municipalities[m.MunicipalID] = m
	return !exists, nil
}

func (s *memStore) EnsureExists(_ context.Context, m models.Municipality) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.municipalities[m.MunicipalID]; exists {
		return false, nil
	}
	s.municipalities[m.MunicipalID] = m
	return true, nil
}

func (s *memStore) UpsertByRollNumber(_ context.Context, in services.PropertyInput) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if in.AssessmentRollNumber == s.failRoll {
		return false, errStoreUnavailable
	}
	if _, ok := s.municipalities[in.MunicipalID]; !ok {
		return false, errors.New("municipality missing")
	}
	_, exists := s.properties[in.AssessmentRollNumber]
	s.properties[in.AssessmentRollNumber] = in
	return !exists, nil
}
