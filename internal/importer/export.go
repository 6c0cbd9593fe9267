package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/stwalsh4118/taxroll/internal/models"
	"github.com/stwalsh4118/taxroll/internal/tax"
	"github.com/xuri/excelize/v2"
)

// Export headers match the provincial extract so exported files re-import as is.
var (
	MunicipalityExportHeaders = []string{"munid", "name_municipal_w_type", "municipal_rate", "education_rate"}
	PropertyExportHeaders     = []string{"assessment_roll_number", "assessment_value", "municipal_id", "property_tax"}
)

// ContentType returns the MIME type for files of format f.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// ExportMunicipalities writes municipalities to w.
func ExportMunicipalities(w io.Writer, municipalities []models.Municipality, format Format) error {
	records := make([][]string, 0, len(municipalities))
	for _, m := range municipalities {
		records = append(records, []string{
			strconv.FormatInt(m.MunicipalID, 10),
			m.MunicipalName,
			m.MunicipalRate.StringFixed(tax.Scale),
			m.EducationRate.StringFixed(tax.Scale),
		})
	}
	return writeTable(w, string(KindMunicipalities), MunicipalityExportHeaders, records, format)
}

// ExportProperties writes properties with their computed tax to w.
func ExportProperties(w io.Writer, properties []models.Property, format Format) error {
	records := make([][]string, 0, len(properties))
	for i := range properties {
		p := &properties[i]
		records = append(records, []string{
			p.AssessmentRollNumber,
			strconv.FormatInt(p.AssessmentValue, 10),
			strconv.FormatInt(p.MunicipalID(), 10),
			tax.Format(p.PropertyTax()),
		})
	}
	return writeTable(w, string(KindProperties), PropertyExportHeaders, records, format)
}

func writeTable(w io.Writer, sheet string, headers []string, records [][]string, format Format) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, headers, records)
	case FormatXLSX:
		return writeXLSX(w, sheet, headers, records)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

func writeCSV(w io.Writer, headers []string, records [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("writing csv rows: %w", err)
	}
	return nil
}

func writeXLSX(w io.Writer, sheet string, headers []string, records [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	write := func(line int, cells []string) error {
		cell, err := excelize.CoordinatesToCellName(1, line)
		if err != nil {
			return err
		}
		row := make([]interface{}, len(cells))
		for i, c := range cells {
			row[i] = c
		}
		return f.SetSheetRow(sheet, cell, &row)
	}

	if err := write(1, headers); err != nil {
		return fmt.Errorf("writing xlsx header: %w", err)
	}
	for i, record := range records {
		if err := write(i+2, record); err != nil {
			return fmt.Errorf("writing xlsx row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
