package gridsource

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/sheetguard/internal/validation"
)

// decodeWorkbook reads one sheet of an OOXML workbook. Empty cells come back
// as empty strings and trailing empty cells are dropped, so rows are ragged.
func decodeWorkbook(r io.Reader, opts Options) (validation.Grid, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		if errors.Is(err, ErrFileTooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: read workbook: %v", ErrDecode, err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data), excelize.Options{RawCellValue: !opts.FormattedValues})
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %v", ErrDecode, err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return validation.Grid{}, nil
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: sheet %q: %v", ErrDecode, sheet, err)
	}

	grid := make(validation.Grid, len(rows))
	for i, record := range rows {
		row := make([]any, len(record))
		for j, v := range record {
			row[j] = v
		}
		grid[i] = row
	}

	return grid, nil
}

// SheetNames lists the sheets of the workbook in r.
func SheetNames(r io.Reader) ([]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %v", ErrDecode, err)
	}
	defer f.Close()
	return f.GetSheetList(), nil
}
