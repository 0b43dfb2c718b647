package dataset

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tealeg/xlsx/v2"
)

// LoadXLSX reads the first sheet of an Excel workbook into a Table.
// Cell values are kept as their formatted strings; columns where most
// non-empty cells are numeric get RawKind "number".
func LoadXLSX(path string) (*Table, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening xlsx: %w", err)
	}
	if len(f.Sheets) == 0 {
		return nil, fmt.Errorf("xlsx has no sheets")
	}
	sheet := f.Sheets[0]

	var headers []string
	var rows [][]string
	numericCells := []int{}
	filledCells := []int{}

	for i, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = strings.TrimSpace(cell.String())
		}

		if i == 0 {
			headers = cells
			numericCells = make([]int, len(headers))
			filledCells = make([]int, len(headers))
			continue
		}

		for j, v := range cells {
			if j >= len(headers) || IsMissing(v) {
				continue
			}
			filledCells[j]++
			if _, err := strconv.ParseFloat(v, 64); err == nil {
				numericCells[j]++
			}
		}
		rows = append(rows, padRow(cells, len(headers)))
	}

	if len(headers) == 0 {
		return nil, fmt.Errorf("xlsx sheet %q has no header row", sheet.Name)
	}

	kinds := make([]string, len(headers))
	for j := range kinds {
		kinds[j] = KindString
		if filledCells[j] > 0 && numericCells[j]*2 > filledCells[j] {
			kinds[j] = KindNumber
		}
	}

	return &Table{
		SourceFile: filepath.Base(path),
		Headers:    headers,
		Rows:       rows,
		RawKinds:   kinds,
	}, nil
}
