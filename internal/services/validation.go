package services

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stwalsh4118/taxroll/internal/tax"
)

// Column limits mirrored from the schema.
const (
	MaxMunicipalNameLength = 255
	MaxRollNumberLength    = 50
)

// maxRate is the exclusive upper bound of a NUMERIC(9,8) rate.
var maxRate = decimal.NewFromInt(10)

// ValidateRate checks that d fits NUMERIC(9,8): within [0, 10) with at most
// eight fractional digits.
func ValidateRate(d decimal.Decimal) error {
	if d.IsNegative() {
		return fmt.Errorf("must be greater than or equal to 0")
	}
	if d.GreaterThanOrEqual(maxRate) {
		return fmt.Errorf("must be less than 10")
	}
	if !d.Equal(d.Truncate(tax.Scale)) {
		return fmt.Errorf("must have no more than %d decimal places", tax.Scale)
	}
	return nil
}

func validateMunicipalID(errs fieldErrors, field string, id int64) {
	if id < 1 {
		errs.add(field, "must be a positive integer")
	}
}

func validateMunicipalName(errs fieldErrors, name string) {
	switch {
	case strings.TrimSpace(name) == "":
		errs.add("municipal_name", "This field is required")
	case len(name) > MaxMunicipalNameLength:
		errs.add("municipal_name", fmt.Sprintf("must be at most %d characters", MaxMunicipalNameLength))
	}
}

func validateRollNumber(errs fieldErrors, roll string) {
	switch {
	case strings.TrimSpace(roll) == "":
		errs.add("assessment_roll_number", "This field is required")
	case len(roll) > MaxRollNumberLength:
		errs.add("assessment_roll_number", fmt.Sprintf("must be at most %d characters", MaxRollNumberLength))
	}
}

func validateAssessmentValue(errs fieldErrors, value int64) {
	if value < 0 {
		errs.add("assessment_value", "must be greater than or equal to 0")
	}
}
