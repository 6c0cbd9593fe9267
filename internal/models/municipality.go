package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Municipality is a taxing jurisdiction with two additive rate components.
// MunicipalID is supplied externally and is stable across imports.
type Municipality struct {
	CreatedAt     time.Time       `json:"-"`
	UpdatedAt     time.Time       `json:"-"`
	MunicipalName string          `json:"municipal_name"`
	MunicipalRate decimal.Decimal `json:"municipal_rate"`
	EducationRate decimal.Decimal `json:"education_rate"`
	MunicipalID   int64           `json:"municipal_id"`
}

// PlaceholderName is the name given to municipalities created implicitly
// while importing properties that reference an unknown id.
func PlaceholderName(id int64) string {
	return fmt.Sprintf("Unknown %d", id)
}

// NewPlaceholderMunicipality returns the record auto-created for an unknown id:
// placeholder name and zero rates.
func NewPlaceholderMunicipality(id int64) Municipality {
	return Municipality{
		MunicipalID:   id,
		MunicipalName: PlaceholderName(id),
		MunicipalRate: decimal.Zero,
		EducationRate: decimal.Zero,
	}
}
