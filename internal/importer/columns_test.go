package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMunicipalID(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr string
	}{
		{raw: "7", want: 7},
		{raw: " 12 ", want: 12},
		{raw: "7.0", want: 7},
		{raw: "12.99", want: 12},
		{raw: "1.2.3", want: 1},
		{raw: "abc", wantErr: `invalid municipal_id "abc"`},
		{raw: "7a.0", wantErr: "not an integer"},
		{raw: ".5", wantErr: "not an integer"},
		{raw: "", wantErr: "municipal_id is required"},
		{raw: "   ", wantErr: "municipal_id is required"},
		{raw: "0", wantErr: "must be positive"},
		{raw: "-3", wantErr: "must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseMunicipalID(tt.raw)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAssessmentValue(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr string
	}{
		{raw: "100000", want: 100000},
		{raw: "100,000", want: 100000},
		{raw: "100000.0", want: 100000},
		{raw: " 0 ", want: 0},
		{raw: "100.5", wantErr: "whole number"},
		{raw: "-1", wantErr: "must not be negative"},
		{raw: "lots", wantErr: "not a number"},
		{raw: "", wantErr: "required"},
		{raw: "99999999999999999999", wantErr: "out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseAssessmentValue(tt.raw)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "munid", normalizeHeader("\ufeffMUNID"))
	assert.Equal(t, "assessment_roll_number", normalizeHeader(" Assessment Roll-Number "))
	assert.Equal(t, "name_municipal_w_type", normalizeHeader("Name Municipal W Type"))
}

func TestCanonicalize(t *testing.T) {
	t.Run("external headers", func(t *testing.T) {
		headers := []string{"MUNID", "Name_Municipal_W_Type", "Municipal Rate", "education_rate", "notes"}
		got := canonicalize(map[string]string{
			"MUNID":                 "4",
			"Name_Municipal_W_Type": "Shelbyville Township",
			"Municipal Rate":        "0.01",
			"education_rate":        "0.002",
			"notes":                 "ignored",
		}, columnSources(headers, municipalityAliases))

		assert.Equal(t, map[string]string{
			ColMunicipalID:   "4",
			ColMunicipalName: "Shelbyville Township",
			ColMunicipalRate: "0.01",
			ColEducationRate: "0.002",
		}, got)
	})

	t.Run("canonical header wins over alias", func(t *testing.T) {
		sources := columnSources([]string{"munid", "municipal_id"}, propertyAliases)
		got := canonicalize(map[string]string{"municipal_id": "1", "munid": "2"}, sources)
		assert.Equal(t, "1", got[ColMunicipalID])
	})

	t.Run("leftmost alias wins", func(t *testing.T) {
		values := map[string]string{"munid": "2", "municipal": "3"}
		for i := 0; i < 20; i++ {
			got := canonicalize(values, columnSources([]string{"munid", "municipal"}, propertyAliases))
			assert.Equal(t, "2", got[ColMunicipalID])

			got = canonicalize(values, columnSources([]string{"municipal", "munid"}, propertyAliases))
			assert.Equal(t, "3", got[ColMunicipalID])
		}
	})

	t.Run("municipality file aliases", func(t *testing.T) {
		sources := columnSources([]string{"municipality_id", "munid"}, municipalityAliases)
		assert.Equal(t, "municipality_id", sources[ColMunicipalID])
	})
}

func TestParseMunicipalityRow(t *testing.T) {
	m, err := parseMunicipalityRow(map[string]string{
		ColMunicipalID:   "1.0",
		ColMunicipalName: " Springfield ",
		ColMunicipalRate: "0.012",
		ColEducationRate: "0.00500000",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), m.MunicipalID)
	assert.Equal(t, "Springfield", m.MunicipalName)
	assert.Equal(t, "0.01200000", m.MunicipalRate.StringFixed(8))
	assert.Equal(t, "0.00500000", m.EducationRate.StringFixed(8))

	_, err = parseMunicipalityRow(map[string]string{
		ColMunicipalID:   "1",
		ColMunicipalName: "Springfield",
		ColMunicipalRate: "0.123456789",
		ColEducationRate: "0",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), ColMunicipalRate)

	_, err = parseMunicipalityRow(map[string]string{
		ColMunicipalID:   "1",
		ColMunicipalName: "",
		ColMunicipalRate: "0",
		ColEducationRate: "0",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "municipal_name is required")
}
