package excel

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows ...[]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cellRef, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf
}

func TestReadClients(t *testing.T) {
	buf := workbook(t,
		[]any{"ADDRESS", "name", "Notes"},
		[]any{"123 Palm Ave", "Smith Pool", "gate code"},
		[]any{"", "  Oak Villa  "},
		[]any{"9 Nowhere", ""},
	)
	got, err := ReadClients(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("rows = %+v", got)
	}
	if got[0] != (ClientRow{Name: "Smith Pool", Address: "123 Palm Ave"}) {
		t.Fatalf("row 0 = %+v", got[0])
	}
	if got[1] != (ClientRow{Name: "Oak Villa"}) {
		t.Fatalf("row 1 = %+v", got[1])
	}
}

func TestReadClientsMissingName(t *testing.T) {
	buf := workbook(t, []any{"Client", "Address"}, []any{"x", "y"})
	if _, err := ReadClients(buf); !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}

func TestReadClientsNotAWorkbook(t *testing.T) {
	if _, err := ReadClients(strings.NewReader("name,address\n")); err == nil {
		t.Fatalf("expected error for csv input")
	}
}
