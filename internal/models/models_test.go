package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewPlaceholderMunicipality(t *testing.T) {
	m := NewPlaceholderMunicipality(7)

	assert.Equal(t, int64(7), m.MunicipalID)
	assert.Equal(t, "Unknown 7", m.MunicipalName)
	assert.True(t, m.MunicipalRate.IsZero())
	assert.True(t, m.EducationRate.IsZero())
}

func TestPropertyTax(t *testing.T) {
	p := Property{
		AssessmentRollNumber: "A100",
		AssessmentValue:      100000,
		Municipal: Municipality{
			MunicipalID:   1,
			MunicipalName: "Springfield",
			MunicipalRate: decimal.RequireFromString("0.01200000"),
			EducationRate: decimal.RequireFromString("0.00500000"),
		},
	}

	assert.Equal(t, int64(1), p.MunicipalID())
	assert.True(t, p.PropertyTax().Equal(decimal.RequireFromString("1700")))

	p.Municipal.MunicipalRate = decimal.RequireFromString("0.02")
	assert.True(t, p.PropertyTax().Equal(decimal.RequireFromString("2500")), "tax follows current rates")
}
