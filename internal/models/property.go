package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/stwalsh4118/taxroll/internal/tax"
)

// Property is a taxable asset tied to exactly one Municipality.
// Municipal is always loaded alongside the property by the repository.
type Property struct {
	CreatedAt            time.Time
	UpdatedAt            time.Time
	AssessmentRollNumber string
	Municipal            Municipality
	ID                   int64
	AssessmentValue      int64
}

// MunicipalID returns the id of the referenced municipality.
func (p *Property) MunicipalID() int64 {
	return p.Municipal.MunicipalID
}

// PropertyTax computes the tax owed from the current municipality rates.
// It is derived on every call and never stored.
func (p *Property) PropertyTax() decimal.Decimal {
	return tax.Compute(p.AssessmentValue, p.Municipal.MunicipalRate, p.Municipal.EducationRate)
}
