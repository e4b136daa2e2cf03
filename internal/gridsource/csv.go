package gridsource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/JonMunkholm/sheetguard/internal/validation"
)

// decodeCSV parses r as CSV. Rows may differ in length and stray quotes are
// tolerated, since exports from spreadsheet tools are rarely strict.
func decodeCSV(r io.Reader) (validation.Grid, error) {
	cr := csv.NewReader(newUTF8Sanitizer(skipBOM(r)))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	grid := validation.Grid{}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if errors.Is(err, ErrFileTooLarge) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: csv: %v", ErrDecode, err)
		}

		row := make([]any, len(record))
		for i, v := range record {
			row[i] = v
		}
		grid = append(grid, row)
	}

	return grid, nil
}
