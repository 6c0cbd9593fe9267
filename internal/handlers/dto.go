package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stwalsh4118/taxroll/internal/models"
	"github.com/stwalsh4118/taxroll/internal/tax"
)

func init() {
	// Report binding failures under their JSON names.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return field.Name
			}
			return name
		})
	}
}

// MunicipalityResponse is the read representation of a municipality.
// Rates are strings with 8 fractional digits to avoid float rounding in clients.
type MunicipalityResponse struct {
	MunicipalName string `json:"municipal_name"`
	MunicipalRate string `json:"municipal_rate"`
	EducationRate string `json:"education_rate"`
	MunicipalID   int64  `json:"municipal_id"`
}

func newMunicipalityResponse(m *models.Municipality) MunicipalityResponse {
	return MunicipalityResponse{
		MunicipalID:   m.MunicipalID,
		MunicipalName: m.MunicipalName,
		MunicipalRate: m.MunicipalRate.StringFixed(tax.Scale),
		EducationRate: m.EducationRate.StringFixed(tax.Scale),
	}
}

// PropertyResponse is the read representation of a property, with the tax
// computed from the municipality's current rates.
type PropertyResponse struct {
	AssessmentRollNumber string               `json:"assessment_roll_number"`
	PropertyTax          string               `json:"property_tax"`
	Municipal            MunicipalityResponse `json:"municipal"`
	ID                   int64                `json:"id"`
	AssessmentValue      int64                `json:"assessment_value"`
}

func newPropertyResponse(p *models.Property) PropertyResponse {
	return PropertyResponse{
		ID:                   p.ID,
		AssessmentRollNumber: p.AssessmentRollNumber,
		AssessmentValue:      p.AssessmentValue,
		Municipal:            newMunicipalityResponse(&p.Municipal),
		PropertyTax:          tax.Format(p.PropertyTax()),
	}
}

// MunicipalRef is a property's municipality reference as written by clients:
// either a bare id (7 or "7") or an object ({"municipal_id": 7}).
type MunicipalRef struct {
	ID int64
}

// UnmarshalJSON accepts both the bare id and the object form.
func (r *MunicipalRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.HasPrefix(data, []byte("{")) {
		var obj struct {
			MunicipalID *json.Number `json:"municipal_id"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return fmt.Errorf("municipal: %w", err)
		}
		if obj.MunicipalID == nil {
			return fmt.Errorf("municipal: object must contain municipal_id")
		}
		return r.setNumber(*obj.MunicipalID)
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("municipal: expected an id or an object, got %s", data)
	}
	return r.setNumber(n)
}

func (r *MunicipalRef) setNumber(n json.Number) error {
	id, err := n.Int64()
	if err != nil {
		return fmt.Errorf("municipal: %q is not an integer id", n.String())
	}
	r.ID = id
	return nil
}

// MarshalJSON writes the bare id form.
func (r MunicipalRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ID)
}

// municipalityFields are the writable attributes shared by create and replace.
// Rates accept JSON strings or numbers.
type municipalityFields struct {
	MunicipalName *string          `json:"municipal_name" binding:"required"`
	MunicipalRate *decimal.Decimal `json:"municipal_rate" binding:"required"`
	EducationRate *decimal.Decimal `json:"education_rate" binding:"required"`
}

func (f municipalityFields) model(id int64) models.Municipality {
	return models.Municipality{
		MunicipalID:   id,
		MunicipalName: *f.MunicipalName,
		MunicipalRate: *f.MunicipalRate,
		EducationRate: *f.EducationRate,
	}
}

// CreateMunicipalityRequest is the body of POST /municipalities.
type CreateMunicipalityRequest struct {
	MunicipalID *int64 `json:"municipal_id" binding:"required"`
	municipalityFields
}

// ReplaceMunicipalityRequest is the body of PUT /municipalities/:municipal_id.
type ReplaceMunicipalityRequest struct {
	municipalityFields
}

// PatchMunicipalityRequest is the body of PATCH /municipalities/:municipal_id.
type PatchMunicipalityRequest struct {
	MunicipalName *string          `json:"municipal_name"`
	MunicipalRate *decimal.Decimal `json:"municipal_rate"`
	EducationRate *decimal.Decimal `json:"education_rate"`
}

// PropertyWriteRequest is the body of POST and PUT on properties. The
// municipality may be given as municipal_id or municipal.
type PropertyWriteRequest struct {
	AssessmentRollNumber *string       `json:"assessment_roll_number" binding:"required"`
	AssessmentValue      *int64        `json:"assessment_value" binding:"required"`
	MunicipalID          *MunicipalRef `json:"municipal_id" binding:"required_without=Municipal"`
	Municipal            *MunicipalRef `json:"municipal"`
}

// PropertyPatchRequest is the body of PATCH /properties/:id.
type PropertyPatchRequest struct {
	AssessmentRollNumber *string       `json:"assessment_roll_number"`
	AssessmentValue      *int64        `json:"assessment_value"`
	MunicipalID          *MunicipalRef `json:"municipal_id"`
	Municipal            *MunicipalRef `json:"municipal"`
}

// municipalRef returns the reference from whichever key was sent,
// preferring municipal_id.
func municipalRef(canonical, alias *MunicipalRef) *int64 {
	ref := canonical
	if ref == nil {
		ref = alias
	}
	if ref == nil {
		return nil
	}
	id := ref.ID
	return &id
}
