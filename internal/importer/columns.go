package importer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stwalsh4118/taxroll/internal/models"
	"github.com/stwalsh4118/taxroll/internal/services"
)

// Canonical column names.
const (
	ColMunicipalID          = "municipal_id"
	ColMunicipalName        = "municipal_name"
	ColMunicipalRate        = "municipal_rate"
	ColEducationRate        = "education_rate"
	ColAssessmentRollNumber = "assessment_roll_number"
	ColAssessmentValue      = "assessment_value"
)

// municipalityAliases maps normalized external headers to canonical columns.
// "munid" and "name_municipal_w_type" are the headers of the provincial
// assessment extract.
var municipalityAliases = map[string]string{
	"munid":                 ColMunicipalID,
	"municipal_id":          ColMunicipalID,
	"municipality_id":       ColMunicipalID,
	"name_municipal_w_type": ColMunicipalName,
	"municipal_name":        ColMunicipalName,
	"name":                  ColMunicipalName,
	"municipal_rate":        ColMunicipalRate,
	"education_rate":        ColEducationRate,
}

var propertyAliases = map[string]string{
	"assessment_roll_number": ColAssessmentRollNumber,
	"roll_number":            ColAssessmentRollNumber,
	"roll":                   ColAssessmentRollNumber,
	"assessment_value":       ColAssessmentValue,
	"value":                  ColAssessmentValue,
	"municipal_id":           ColMunicipalID,
	"munid":                  ColMunicipalID,
	"municipal":              ColMunicipalID,
}

// normalizeHeader lower-cases a header and folds spaces and dashes to
// underscores, dropping any UTF-8 byte order mark.
func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(h)
}

// columnSources picks, for each canonical column, the header that supplies
// it. A canonical header wins; otherwise the leftmost alias does.
func columnSources(headers []string, aliases map[string]string) map[string]string {
	sources := make(map[string]string, len(aliases))
	for _, header := range headers {
		normalized := normalizeHeader(header)
		column, ok := aliases[normalized]
		if !ok {
			continue
		}
		if prev, taken := sources[column]; taken {
			if normalized != column || normalizeHeader(prev) == column {
				continue
			}
		}
		sources[column] = header
	}
	return sources
}

// canonicalize rewrites a row's keys to canonical columns using sources
// from columnSources. Unknown columns are dropped.
func canonicalize(values map[string]string, sources map[string]string) map[string]string {
	out := make(map[string]string, len(sources))
	for column, header := range sources {
		out[column] = values[header]
	}
	return out
}

// ParseMunicipalID turns a raw cell into a municipality id. Surrounding
// whitespace is trimmed and anything from the first '.' on is discarded,
// since spreadsheets often render integer ids as "12.0".
func ParseMunicipalID(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("municipal_id is required")
	}
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}

	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid municipal_id %q: not an integer", raw)
	}
	if id < 1 {
		return 0, fmt.Errorf("invalid municipal_id %q: must be positive", raw)
	}
	return id, nil
}

// parseAssessmentValue accepts plain integers as well as "100,000" and
// "100000.0" renderings, rejecting fractional amounts.
func parseAssessmentValue(raw string) (int64, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if s == "" {
		return 0, fmt.Errorf("assessment_value is required")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid assessment_value %q: not a number", raw)
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("invalid assessment_value %q: must be a whole number", raw)
	}
	if !d.Equal(decimal.NewFromInt(d.IntPart())) {
		return 0, fmt.Errorf("invalid assessment_value %q: out of range", raw)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("invalid assessment_value %q: must not be negative", raw)
	}
	return d.IntPart(), nil
}

func parseRate(column, raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%s is required", column)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: not a decimal number", column, raw)
	}
	if err := services.ValidateRate(d); err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", column, raw, err)
	}
	return d, nil
}

// parseMunicipalityRow builds a municipality from a canonicalized row.
func parseMunicipalityRow(values map[string]string) (models.Municipality, error) {
	var m models.Municipality

	id, err := ParseMunicipalID(values[ColMunicipalID])
	if err != nil {
		return m, err
	}
	m.MunicipalID = id

	m.MunicipalName = strings.TrimSpace(values[ColMunicipalName])
	if m.MunicipalName == "" {
		return m, fmt.Errorf("municipal_name is required")
	}

	if m.MunicipalRate, err = parseRate(ColMunicipalRate, values[ColMunicipalRate]); err != nil {
		return m, err
	}
	if m.EducationRate, err = parseRate(ColEducationRate, values[ColEducationRate]); err != nil {
		return m, err
	}
	return m, nil
}
