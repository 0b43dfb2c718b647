package dataset

import (
	"path/filepath"
	"testing"

	"github.com/tealeg/xlsx/v2"
)

func writeXLSX(t *testing.T, rows [][]any) string {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("data")
	if err != nil {
		t.Fatalf("adding sheet: %v", err)
	}
	for _, row := range rows {
		r := sheet.AddRow()
		for _, v := range row {
			cell := r.AddCell()
			switch val := v.(type) {
			case float64:
				cell.SetFloat(val)
			default:
				cell.SetString(v.(string))
			}
		}
	}

	path := filepath.Join(t.TempDir(), "data.xlsx")
	if err := f.Save(path); err != nil {
		t.Fatalf("saving workbook: %v", err)
	}
	return path
}

func TestLoadXLSX(t *testing.T) {
	path := writeXLSX(t, [][]any{
		{"region", "sales"},
		{"north", 120.0},
		{"south", 80.0},
		{"east", 95.5},
	})

	table, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table.Headers) != 2 || table.Headers[1] != "sales" {
		t.Errorf("wrong headers: %v", table.Headers)
	}
	if len(table.Rows) != 3 {
		t.Errorf("expected 3 rows, got %d", len(table.Rows))
	}
	if table.RawKinds[0] != KindString || table.RawKinds[1] != KindNumber {
		t.Errorf("wrong raw kinds: %v", table.RawKinds)
	}
}

func TestLoadXLSXEmptySheet(t *testing.T) {
	path := writeXLSX(t, nil)
	if _, err := Load(path); err == nil {
		t.Error("expected error for workbook without a header row")
	}
}
