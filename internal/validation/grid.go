package validation

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Grid is the decoded content of a spreadsheet: ordered rows of cell values.
// Cells are nil, string, a Go number type, or bool. Rows may have different
// lengths. The engine never modifies a Grid.
type Grid [][]any

// Cell returns the value at row, col, or nil when the position is outside the grid.
func (g Grid) Cell(row, col int) any {
	if row < 0 || row >= len(g) {
		return nil
	}
	if col < 0 || col >= len(g[row]) {
		return nil
	}
	return g[row][col]
}

// HeaderSet holds the column names of the detected header row and the
// zero-based index of that row in the grid. Duplicate names are kept as-is.
type HeaderSet struct {
	Names    []string `json:"headers"`
	RowIndex int      `json:"headerRowIndex"`
}

// Index returns the position of the first column whose name equals name
// exactly, or -1 when there is none.
func (h HeaderSet) Index(name string) int {
	for i, n := range h.Names {
		if n == name {
			return i
		}
	}
	return -1
}

// DataRowCount returns how many rows of grid lie below the header.
// It is never negative.
func (h HeaderSet) DataRowCount(grid Grid) int {
	n := len(grid) - (h.RowIndex + 1)
	if n < 0 {
		return 0
	}
	return n
}

// CellString converts a cell value to its string form.
// nil becomes the empty string; floats use the shortest decimal
// representation that round-trips.
func CellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return formatFloat(val, 64)
	case float32:
		return formatFloat(float64(val), 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// formatFloat renders plain decimals for the magnitudes spreadsheets usually
// hold and falls back to exponent form outside [1e-6, 1e21).
func formatFloat(f float64, bitSize int) string {
	abs := math.Abs(f)
	if abs == 0 || (abs >= 1e-6 && abs < 1e21) {
		return strconv.FormatFloat(f, 'f', -1, bitSize)
	}
	return strconv.FormatFloat(f, 'g', -1, bitSize)
}

// CleanCell returns the trimmed string form of a cell value.
// Missing, nil and whitespace-only cells all become "".
func CleanCell(v any) string {
	return strings.TrimSpace(CellString(v))
}
