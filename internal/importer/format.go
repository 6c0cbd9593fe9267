package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Format identifies a tabular file encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

var (
	// ErrUnsupportedFormat is returned for formats other than csv and xlsx.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrNoHeader is returned when a file has no header row.
	ErrNoHeader = errors.New("file has no header row")
)

// ParseFormat validates a format name such as "CSV" or "xlsx".
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// FormatFromFilename picks the format from a file extension.
func FormatFromFilename(name string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: %q has no extension", ErrUnsupportedFormat, name)
	}
	return ParseFormat(ext)
}

// Row is one data row keyed by its original header. Line is the 1-based
// line in the source file.
type Row struct {
	Values map[string]string
	Line   int
}

// Table is a decoded file: its header and non-blank data rows.
type Table struct {
	Headers []string
	Rows    []Row
}

// record is a raw row with its 1-based line in the source file.
type record struct {
	cells []string
	line  int
}

// ReadTable decodes r in the given format.
func ReadTable(r io.Reader, format Format) (*Table, error) {
	var (
		records []record
		err     error
	)
	switch format {
	case FormatCSV:
		records, err = readCSV(r)
	case FormatXLSX:
		records, err = readXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	return buildTable(records)
}

func readCSV(r io.Reader) ([]record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var records []record
	for {
		cells, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv: %w", err)
		}
		line, _ := cr.FieldPos(0)
		records = append(records, record{cells: cells, line: line})
	}
}

func readXLSX(r io.Reader) ([]record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoHeader
	}

	// Raw values: display formats would round rates and group digits in ids.
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}

	records := make([]record, len(rows))
	for i, cells := range rows {
		records[i] = record{cells: cells, line: i + 1}
	}
	return records, nil
}

// buildTable takes the first non-blank record as the header and keys every
// later non-blank record by it.
func buildTable(records []record) (*Table, error) {
	for len(records) > 0 && isBlank(records[0].cells) {
		records = records[1:]
	}
	if len(records) == 0 {
		return nil, ErrNoHeader
	}

	t := &Table{Headers: records[0].cells}
	for _, rec := range records[1:] {
		if isBlank(rec.cells) {
			continue
		}
		values := make(map[string]string, len(t.Headers))
		for col, header := range t.Headers {
			if header == "" {
				continue
			}
			if col < len(rec.cells) {
				values[header] = rec.cells[col]
			} else {
				values[header] = ""
			}
		}
		t.Rows = append(t.Rows, Row{Line: rec.line, Values: values})
	}
	return t, nil
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
