// Package excel reads client lists from .xlsx workbooks.
package excel

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

var ErrMissingColumn = errors.New("missing column")

// ClientRow is one data row of an import sheet.
type ClientRow struct {
	Name    string
	Address string
}

// ReadClients reads the first sheet of an xlsx workbook. The header row must
// contain a Name column; Address is optional. Header matching ignores case.
// Rows with an empty name are skipped.
func ReadClients(r io.Reader) ([]ClientRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: Name", ErrMissingColumn)
	}

	nameCol, addrCol := -1, -1
	for i, h := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "name":
			nameCol = i
		case "address":
			addrCol = i
		}
	}
	if nameCol < 0 {
		return nil, fmt.Errorf("%w: Name", ErrMissingColumn)
	}

	out := make([]ClientRow, 0, len(rows)-1)
	for _, row := range rows[1:] {
		name := cell(row, nameCol)
		if name == "" {
			continue
		}
		out = append(out, ClientRow{Name: name, Address: cell(row, addrCol)})
	}
	return out, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
