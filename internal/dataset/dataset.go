package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// RawKind is the storage type of a column as it arrived from the file.
// CSV columns are always "string"; XLSX columns whose cells are mostly
// numeric are "number".
const (
	KindString = "string"
	KindNumber = "number"
)

// Table is an uploaded dataset in row-major form. All values are strings;
// type inference happens in the profile package.
type Table struct {
	SourceFile string
	Headers    []string
	Rows       [][]string
	RawKinds   []string // one per column, KindString or KindNumber
}

// missingStrings are cell values treated as nulls throughout the pipeline.
var missingStrings = map[string]bool{
	"": true, "na": true, "n/a": true, "none": true, "null": true,
	"nan": true, "nat": true, "#n/a": true, "n.a.": true,
}

// IsMissing reports whether a raw cell value represents a null.
func IsMissing(v string) bool {
	return missingStrings[strings.ToLower(strings.TrimSpace(v))]
}

// Load reads a CSV or XLSX file into a Table based on its extension.
func Load(path string) (*Table, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return LoadCSV(path)
	case ".xlsx":
		return LoadXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported file type %q: expected .csv or .xlsx", ext)
	}
}

// LoadCSV reads a CSV file. Input is decoded as UTF-8 when valid, otherwise
// re-decoded as Latin-1 so accented exports from older tools still load.
func LoadCSV(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}

	if !utf8.Valid(data) {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("decoding latin-1 csv: %w", err)
		}
		data = decoded
	}

	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading csv headers: %w", err)
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // skip malformed rows
		}
		rows = append(rows, padRow(row, len(headers)))
	}

	kinds := make([]string, len(headers))
	for i := range kinds {
		kinds[i] = KindString
	}

	return &Table{
		SourceFile: filepath.Base(path),
		Headers:    headers,
		Rows:       rows,
		RawKinds:   kinds,
	}, nil
}

// Column returns all values of column i, one per row.
func (t *Table) Column(i int) []string {
	values := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		if i < len(row) {
			values[r] = row[i]
		}
	}
	return values
}

// SampleRows returns up to n leading rows as header-keyed maps, for the
// suggester prompt.
func (t *Table) SampleRows(n int) []map[string]string {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	samples := make([]map[string]string, 0, n)
	for _, row := range t.Rows[:n] {
		m := make(map[string]string, len(t.Headers))
		for i, h := range t.Headers {
			if i < len(row) {
				m[h] = row[i]
			}
		}
		samples = append(samples, m)
	}
	return samples
}

func padRow(row []string, width int) []string {
	if len(row) >= width {
		return row[:width]
	}
	padded := make([]string, width)
	copy(padded, row)
	return padded
}
