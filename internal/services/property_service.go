package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stwalsh4118/taxroll/internal/logger"
	"github.com/stwalsh4118/taxroll/internal/models"
	"github.com/stwalsh4118/taxroll/internal/repository"
)

// PropertyInput is a full property write (create or replace).
type PropertyInput struct {
	AssessmentRollNumber string
	AssessmentValue      int64
	MunicipalID          int64
}

// PropertyPatch is a partial property write; nil fields are left as-is.
// MunicipalID is a municipality primary key, not a nested object.
type PropertyPatch struct {
	AssessmentRollNumber *string
	AssessmentValue      *int64
	MunicipalID          *int64
}

// PropertyService defines property business operations. Every returned
// property carries its municipality so callers can compute the tax.
type PropertyService interface {
	List(ctx context.Context, filter repository.PropertyFilter) ([]models.Property, error)

	// Get returns ErrPropertyNotFound if id is unknown.
	Get(ctx context.Context, id int64) (*models.Property, error)

	// Create validates and inserts a property. A missing municipality is
	// reported as a *ValidationError on the "municipal" field.
	Create(ctx context.Context, in PropertyInput) (*models.Property, error)

	// Replace overwrites every field of property id, with the same
	// validation as Create.
	Replace(ctx context.Context, id int64, in PropertyInput) (*models.Property, error)

	// Patch resolves patch.MunicipalID first and returns
	// ErrInvalidMunicipality without mutating anything if it is unknown.
	// The merged record is then validated and the patched fields are
	// persisted in one statement.
	Patch(ctx context.Context, id int64, patch PropertyPatch) (*models.Property, error)

	// Delete returns ErrPropertyNotFound if id is unknown.
	Delete(ctx context.Context, id int64) error

	// UpsertByRollNumber validates in and inserts or updates the property
	// with the same roll number. Reports whether a new property was created.
	UpsertByRollNumber(ctx context.Context, in PropertyInput) (bool, error)
}

type propertyService struct {
	properties     repository.PropertyRepository
	municipalities repository.MunicipalityRepository
	log            *logger.Logger
}

// NewPropertyService creates a PropertyService.
func NewPropertyService(properties repository.PropertyRepository, municipalities repository.MunicipalityRepository, log *logger.Logger) PropertyService {
	return &propertyService{
		properties:     properties,
		municipalities: municipalities,
		log:            log.WithComponent("property_service"),
	}
}

const (
	msgDuplicateRoll    = "property with this assessment roll number already exists"
	msgMissingMunicipal = "Invalid pk \"%d\" - object does not exist"
)

func (in PropertyInput) record() repository.PropertyRecord {
	return repository.PropertyRecord{
		AssessmentRollNumber: strings.TrimSpace(in.AssessmentRollNumber),
		AssessmentValue:      in.AssessmentValue,
		MunicipalID:          in.MunicipalID,
	}
}

func validateProperty(rec repository.PropertyRecord) fieldErrors {
	errs := fieldErrors{}
	validateRollNumber(errs, rec.AssessmentRollNumber)
	validateAssessmentValue(errs, rec.AssessmentValue)
	validateMunicipalID(errs, "municipal", rec.MunicipalID)
	return errs
}

func (s *propertyService) List(ctx context.Context, filter repository.PropertyFilter) ([]models.Property, error) {
	list, err := s.properties.List(ctx, filter)
	if err != nil {
		s.log.Error("Failed to list properties", err, nil)
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return list, nil
}

func (s *propertyService) Get(ctx context.Context, id int64) (*models.Property, error) {
	p, err := s.properties.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to query property", err, logger.Fields{"property_id": id})
		return nil, fmt.Errorf("failed to query property: %w", err)
	}
	if p == nil {
		return nil, ErrPropertyNotFound
	}
	return p, nil
}

// checkWrite validates rec including the existence of its municipality.
func (s *propertyService) checkWrite(ctx context.Context, rec repository.PropertyRecord) error {
	errs := validateProperty(rec)
	if _, bad := errs["municipal"]; !bad {
		m, err := s.municipalities.FindByID(ctx, rec.MunicipalID)
		if err != nil {
			return fmt.Errorf("failed to resolve municipality: %w", err)
		}
		if m == nil {
			errs.add("municipal", fmt.Sprintf(msgMissingMunicipal, rec.MunicipalID))
		}
	}
	return errs.err()
}

// writeError maps repository constraint errors onto field errors.
func writeError(err error, rec repository.PropertyRecord) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateKey):
		return fieldError("assessment_roll_number", msgDuplicateRoll)
	case errors.Is(err, repository.ErrMissingReference):
		return fieldError("municipal", fmt.Sprintf(msgMissingMunicipal, rec.MunicipalID))
	}
	return nil
}

func (s *propertyService) Create(ctx context.Context, in PropertyInput) (*models.Property, error) {
	rec := in.record()
	if err := s.checkWrite(ctx, rec); err != nil {
		s.log.Warn("Rejected property create", logger.Fields{"roll": rec.AssessmentRollNumber, "error": err.Error()})
		return nil, err
	}

	created, err := s.properties.Create(ctx, rec)
	if err != nil {
		if mapped := writeError(err, rec); mapped != nil {
			return nil, mapped
		}
		s.log.Error("Failed to create property", err, logger.Fields{"roll": rec.AssessmentRollNumber})
		return nil, fmt.Errorf("failed to create property: %w", err)
	}

	s.log.Info("Property created", logger.Fields{
		"property_id":  created.ID,
		"roll":         created.AssessmentRollNumber,
		"municipal_id": created.MunicipalID(),
	})
	return created, nil
}

func (s *propertyService) Replace(ctx context.Context, id int64, in PropertyInput) (*models.Property, error) {
	rec := in.record()
	if err := s.checkWrite(ctx, rec); err != nil {
		return nil, err
	}
	return s.persist(ctx, id, rec)
}

func (s *propertyService) Patch(ctx context.Context, id int64, patch PropertyPatch) (*models.Property, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// Resolve the new municipality before touching anything else.
	if patch.MunicipalID != nil {
		m, err := s.municipalities.FindByID(ctx, *patch.MunicipalID)
		if err != nil {
			s.log.Error("Failed to resolve municipality", err, logger.Fields{"municipal_id": *patch.MunicipalID})
			return nil, fmt.Errorf("failed to resolve municipality: %w", err)
		}
		if m == nil {
			s.log.Warn("Rejected property patch with unknown municipality", logger.Fields{
				"property_id":  id,
				"municipal_id": *patch.MunicipalID,
			})
			return nil, ErrInvalidMunicipality
		}
	}

	changes := repository.PropertyChanges{
		AssessmentValue: patch.AssessmentValue,
		MunicipalID:     patch.MunicipalID,
	}
	rec := repository.PropertyRecord{
		AssessmentRollNumber: current.AssessmentRollNumber,
		AssessmentValue:      current.AssessmentValue,
		MunicipalID:          current.MunicipalID(),
	}
	if patch.AssessmentRollNumber != nil {
		roll := strings.TrimSpace(*patch.AssessmentRollNumber)
		changes.AssessmentRollNumber = &roll
		rec.AssessmentRollNumber = roll
	}
	if patch.AssessmentValue != nil {
		rec.AssessmentValue = *patch.AssessmentValue
	}
	if patch.MunicipalID != nil {
		rec.MunicipalID = *patch.MunicipalID
	}

	if err := validateProperty(rec).err(); err != nil {
		return nil, err
	}

	// Only the patched columns are written so concurrent patches of
	// other fields are not overwritten.
	updated, err := s.properties.Patch(ctx, id, changes)
	if errors.Is(err, repository.ErrMissingReference) {
		// The municipality vanished between resolution and the write.
		return nil, ErrInvalidMunicipality
	}
	return s.updated(id, rec, updated, err)
}

// persist writes rec to property id in a single UPDATE.
func (s *propertyService) persist(ctx context.Context, id int64, rec repository.PropertyRecord) (*models.Property, error) {
	updated, err := s.properties.Update(ctx, id, rec)
	return s.updated(id, rec, updated, err)
}

// updated maps the outcome of an update statement onto service errors.
func (s *propertyService) updated(id int64, rec repository.PropertyRecord, updated *models.Property, err error) (*models.Property, error) {
	if err != nil {
		if mapped := writeError(err, rec); mapped != nil {
			return nil, mapped
		}
		s.log.Error("Failed to update property", err, logger.Fields{"property_id": id})
		return nil, fmt.Errorf("failed to update property: %w", err)
	}
	if updated == nil {
		return nil, ErrPropertyNotFound
	}

	s.log.Info("Property updated", logger.Fields{
		"property_id":  updated.ID,
		"municipal_id": updated.MunicipalID(),
	})
	return updated, nil
}

func (s *propertyService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.properties.Delete(ctx, id)
	if err != nil {
		s.log.Error("Failed to delete property", err, logger.Fields{"property_id": id})
		return fmt.Errorf("failed to delete property: %w", err)
	}
	if !deleted {
		return ErrPropertyNotFound
	}

	s.log.Info("Property deleted", logger.Fields{"property_id": id})
	return nil
}

func (s *propertyService) UpsertByRollNumber(ctx context.Context, in PropertyInput) (bool, error) {
	rec := in.record()
	if err := validateProperty(rec).err(); err != nil {
		return false, err
	}

	created, err := s.properties.UpsertByRollNumber(ctx, rec)
	if err != nil {
		if mapped := writeError(err, rec); mapped != nil {
			return false, mapped
		}
		return false, fmt.Errorf("failed to upsert property: %w", err)
	}
	return created, nil
}
