package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/stwalsh4118/taxroll/internal/models"
	"github.com/stwalsh4118/taxroll/internal/services"
)

// Action says what persisting a plan does with its municipality.
type Action int

const (
	// ActionReuse attaches the property to an existing municipality.
	ActionReuse Action = iota
	// ActionCreate auto-creates a placeholder municipality first.
	ActionCreate
)

func (a Action) String() string {
	if a == ActionCreate {
		return "create"
	}
	return "reuse"
}

// Resolution is the decision taken for a property row's municipality.
type Resolution struct {
	// Placeholder is set only for ActionCreate.
	Placeholder *models.Municipality
	MunicipalID int64
	Action      Action
}

// Decide picks reuse or creation for id given the current lookup result.
// It has no side effects.
func Decide(id int64, existing *models.Municipality) Resolution {
	if existing != nil {
		return Resolution{MunicipalID: existing.MunicipalID, Action: ActionReuse}
	}
	placeholder := models.NewPlaceholderMunicipality(id)
	return Resolution{MunicipalID: id, Action: ActionCreate, Placeholder: &placeholder}
}

// PropertyPlan is a fully parsed property row awaiting persistence.
type PropertyPlan struct {
	Input     services.PropertyInput
	Municipal Resolution
	Line      int
}

// MunicipalityLookup finds a municipality by id, returning nil, nil when absent.
type MunicipalityLookup interface {
	Find(ctx context.Context, id int64) (*models.Municipality, error)
}

// PlanProperty parses a canonicalized property row and resolves its
// municipality. Nothing is written; a parse failure yields an error and no plan.
func PlanProperty(ctx context.Context, lookup MunicipalityLookup, line int, values map[string]string) (*PropertyPlan, error) {
	roll := strings.TrimSpace(values[ColAssessmentRollNumber])
	if roll == "" {
		return nil, fmt.Errorf("assessment_roll_number is required")
	}

	value, err := parseAssessmentValue(values[ColAssessmentValue])
	if err != nil {
		return nil, err
	}

	id, err := ParseMunicipalID(values[ColMunicipalID])
	if err != nil {
		return nil, err
	}

	existing, err := lookup.Find(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("looking up municipality %d: %w", id, err)
	}

	return &PropertyPlan{
		Line: line,
		Input: services.PropertyInput{
			AssessmentRollNumber: roll,
			AssessmentValue:      value,
			MunicipalID:          id,
		},
		Municipal: Decide(id, existing),
	}, nil
}
