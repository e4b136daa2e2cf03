package validation

// MaxHeaderSearchRows is the maximum number of rows to scan for the header.
var MaxHeaderSearchRows = 20

// LocateHeader finds the row most likely to hold column names.
//
// The row with the most filled cells in the first MaxHeaderSearchRows rows
// wins, but only when it has more than one filled cell, so a lone title row is
// never taken for a header. Ties keep the earliest row. When no row qualifies
// the header defaults to row 0.
func LocateHeader(grid Grid) HeaderSet {
	if len(grid) == 0 {
		return HeaderSet{Names: []string{}, RowIndex: 0}
	}

	maxRows := MaxHeaderSearchRows
	if len(grid) < maxRows {
		maxRows = len(grid)
	}

	best, bestFilled := 0, 0
	for i := 0; i < maxRows; i++ {
		filled := filledCells(grid[i])
		if filled > bestFilled && filled > 1 {
			best, bestFilled = i, filled
		}
	}

	row := grid[best]
	names := make([]string, len(row))
	for i, cell := range row {
		names[i] = CleanCell(cell)
	}

	return HeaderSet{Names: names, RowIndex: best}
}

func filledCells(row []any) int {
	n := 0
	for _, cell := range row {
		if cell != nil && CleanCell(cell) != "" {
			n++
		}
	}
	return n
}
