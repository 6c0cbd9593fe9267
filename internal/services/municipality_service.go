package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/stwalsh4118/taxroll/internal/logger"
	"github.com/stwalsh4118/taxroll/internal/models"
	"github.com/stwalsh4118/taxroll/internal/repository"
)

// MunicipalityPatch carries a partial municipality update; nil fields are left as-is.
type MunicipalityPatch struct {
	MunicipalName *string
	MunicipalRate *decimal.Decimal
	EducationRate *decimal.Decimal
}

// MunicipalityService defines municipality business operations.
type MunicipalityService interface {
	List(ctx context.Context) ([]models.Municipality, error)

	// Get returns ErrMunicipalityNotFound if id is unknown.
	Get(ctx context.Context, id int64) (*models.Municipality, error)

	// Create validates and inserts m. Returns *ValidationError for invalid
	// fields or a taken municipal_id.
	Create(ctx context.Context, m models.Municipality) (*models.Municipality, error)

	// Replace overwrites all fields of municipality id.
	Replace(ctx context.Context, id int64, m models.Municipality) (*models.Municipality, error)

	// Patch applies the non-nil fields of patch to municipality id.
	Patch(ctx context.Context, id int64, patch MunicipalityPatch) (*models.Municipality, error)

	// Delete removes the municipality and, by cascade, all of its properties.
	Delete(ctx context.Context, id int64) error

	// Upsert validates m and inserts or updates it by municipal_id.
	// Reports whether a new municipality was created.
	Upsert(ctx context.Context, m models.Municipality) (bool, error)

	// EnsureExists inserts m unless its id already exists. Reports whether it inserted.
	EnsureExists(ctx context.Context, m models.Municipality) (bool, error)

	// Find returns nil, nil if id is unknown.
	Find(ctx context.Context, id int64) (*models.Municipality, error)
}

type municipalityService struct {
	repo repository.MunicipalityRepository
	log  *logger.Logger
}

// NewMunicipalityService creates a MunicipalityService.
func NewMunicipalityService(repo repository.MunicipalityRepository, log *logger.Logger) MunicipalityService {
	return &municipalityService{
		repo: repo,
		log:  log.WithComponent("municipality_service"),
	}
}

func validateMunicipality(m models.Municipality) error {
	errs := fieldErrors{}
	validateMunicipalID(errs, "municipal_id", m.MunicipalID)
	validateMunicipalName(errs, m.MunicipalName)
	if err := ValidateRate(m.MunicipalRate); err != nil {
		errs.add("municipal_rate", err.Error())
	}
	if err := ValidateRate(m.EducationRate); err != nil {
		errs.add("education_rate", err.Error())
	}
	return errs.err()
}

func (s *municipalityService) List(ctx context.Context) ([]models.Municipality, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		s.log.Error("Failed to list municipalities", err, nil)
		return nil, fmt.Errorf("failed to list municipalities: %w", err)
	}
	return list, nil
}

func (s *municipalityService) Find(ctx context.Context, id int64) (*models.Municipality, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query municipality: %w", err)
	}
	return m, nil
}

func (s *municipalityService) Get(ctx context.Context, id int64) (*models.Municipality, error) {
	m, err := s.Find(ctx, id)
	if err != nil {
		s.log.Error("Failed to query municipality", err, logger.Fields{"municipal_id": id})
		return nil, err
	}
	if m == nil {
		return nil, ErrMunicipalityNotFound
	}
	return m, nil
}

func (s *municipalityService) Create(ctx context.Context, m models.Municipality) (*models.Municipality, error) {
	if err := validateMunicipality(m); err != nil {
		s.log.Warn("Rejected municipality create", logger.Fields{"municipal_id": m.MunicipalID, "error": err.Error()})
		return nil, err
	}

	created, err := s.repo.Create(ctx, m)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, fieldError("municipal_id", "municipality with this municipal id already exists")
		}
		s.log.Error("Failed to create municipality", err, logger.Fields{"municipal_id": m.MunicipalID})
		return nil, fmt.Errorf("failed to create municipality: %w", err)
	}

	s.log.Info("Municipality created", logger.Fields{"municipal_id": created.MunicipalID, "name": created.MunicipalName})
	return created, nil
}

func (s *municipalityService) Replace(ctx context.Context, id int64, m models.Municipality) (*models.Municipality, error) {
	m.MunicipalID = id
	if err := validateMunicipality(m); err != nil {
		return nil, err
	}
	return s.update(ctx, m)
}

func (s *municipalityService) Patch(ctx context.Context, id int64, patch MunicipalityPatch) (*models.Municipality, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := *current
	if patch.MunicipalName != nil {
		merged.MunicipalName = *patch.MunicipalName
	}
	if patch.MunicipalRate != nil {
		merged.MunicipalRate = *patch.MunicipalRate
	}
	if patch.EducationRate != nil {
		merged.EducationRate = *patch.EducationRate
	}

	if err := validateMunicipality(merged); err != nil {
		return nil, err
	}
	return s.update(ctx, merged)
}

func (s *municipalityService) update(ctx context.Context, m models.Municipality) (*models.Municipality, error) {
	updated, err := s.repo.Update(ctx, m)
	if err != nil {
		s.log.Error("Failed to update municipality", err, logger.Fields{"municipal_id": m.MunicipalID})
		return nil, fmt.Errorf("failed to update municipality: %w", err)
	}
	if updated == nil {
		return nil, ErrMunicipalityNotFound
	}

	s.log.Info("Municipality updated", logger.Fields{"municipal_id": updated.MunicipalID})
	return updated, nil
}

func (s *municipalityService) Delete(ctx context.Context, id int64) error {
	removed, found, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.log.Error("Failed to delete municipality", err, logger.Fields{"municipal_id": id})
		return fmt.Errorf("failed to delete municipality: %w", err)
	}
	if !found {
		return ErrMunicipalityNotFound
	}

	s.log.Info("Municipality deleted", logger.Fields{
		"municipal_id":       id,
		"properties_removed": removed,
	})
	return nil
}

func (s *municipalityService) Upsert(ctx context.Context, m models.Municipality) (bool, error) {
	if err := validateMunicipality(m); err != nil {
		return false, err
	}

	created, err := s.repo.Upsert(ctx, m)
	if err != nil {
		return false, fmt.Errorf("failed to upsert municipality: %w", err)
	}
	return created, nil
}

func (s *municipalityService) EnsureExists(ctx context.Context, m models.Municipality) (bool, error) {
	if err := validateMunicipality(m); err != nil {
		return false, err
	}

	created, err := s.repo.EnsureExists(ctx, m)
	if err != nil {
		return false, fmt.Errorf("failed to ensure municipality: %w", err)
	}
	if created {
		s.log.Info("Municipality auto-created", logger.Fields{"municipal_id": m.MunicipalID, "name": m.MunicipalName})
	}
	return created, nil
}
