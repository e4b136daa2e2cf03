package validation

import (
	"reflect"
	"testing"
)

func TestLocateHeader(t *testing.T) {
	tests := []struct {
		name      string
		grid      Grid
		wantIndex int
		wantNames []string
	}{
		{
			name:      "empty grid",
			grid:      Grid{},
			wantIndex: 0,
			wantNames: []string{},
		},
		{
			name: "blank first row",
			grid: Grid{
				{"", "", ""},
				{"ID", "NAME", "QTY"},
				{"1", "a", "5"},
			},
			wantIndex: 1,
			wantNames: []string{"ID", "NAME", "QTY"},
		},
		{
			name: "title row is not a header",
			grid: Grid{
				{"Monthly report"},
				{nil},
				{"ID", "STATUS"},
				{"1", "ATIVO"},
			},
			wantIndex: 2,
			wantNames: []string{"ID", "STATUS"},
		},
		{
			name: "tie keeps earliest row",
			grid: Grid{
				{"A", "B"},
				{"1", "2"},
			},
			wantIndex: 0,
			wantNames: []string{"A", "B"},
		},
		{
			name: "no row qualifies defaults to first",
			grid: Grid{
				{"only"},
				{nil, "  "},
			},
			wantIndex: 0,
			wantNames: []string{"only"},
		},
		{
			name: "names are trimmed and nil becomes empty",
			grid: Grid{
				{"  ID ", nil, "QTY\t"},
			},
			wantIndex: 0,
			wantNames: []string{"ID", "", "QTY"},
		},
		{
			name: "numeric header cells are stringified",
			grid: Grid{
				{2024.0, 2025, "Total"},
			},
			wantIndex: 0,
			wantNames: []string{"2024", "2025", "Total"},
		},
		{
			name: "duplicate names are kept",
			grid: Grid{
				{"ID", "ID", "NAME"},
			},
			wantIndex: 0,
			wantNames: []string{"ID", "ID", "NAME"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LocateHeader(tt.grid)
			if got.RowIndex != tt.wantIndex {
				t.Errorf("RowIndex = %d, want %d", got.RowIndex, tt.wantIndex)
			}
			if !reflect.DeepEqual(got.Names, tt.wantNames) {
				t.Errorf("Names = %q, want %q", got.Names, tt.wantNames)
			}
		})
	}
}

func TestLocateHeader_SearchWindow(t *testing.T) {
	grid := make(Grid, 0, MaxHeaderSearchRows+2)
	for i := 0; i < MaxHeaderSearchRows; i++ {
		grid = append(grid, []any{"x"})
	}
	grid = append(grid, []any{"A", "B", "C"})

	got := LocateHeader(grid)
	if got.RowIndex != 0 {
		t.Errorf("RowIndex = %d, want 0 (row beyond search window must be ignored)", got.RowIndex)
	}
}

func TestHeaderSet_DataRowCount(t *testing.T) {
	tests := []struct {
		name    string
		gridLen int
		header  int
		want    int
	}{
		{"empty grid", 0, 0, 0},
		{"header only", 1, 0, 0},
		{"header and data", 5, 1, 3},
		{"header past end", 2, 4, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid := make(Grid, tt.gridLen)
			h := HeaderSet{RowIndex: tt.header}
			if got := h.DataRowCount(grid); got != tt.want {
				t.Errorf("DataRowCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestHeaderSet_Index(t *testing.T) {
	h := HeaderSet{Names: []string{"ID", "Name", "ID"}}

	if got := h.Index("ID"); got != 0 {
		t.Errorf("Index(ID) = %d, want 0", got)
	}
	if got := h.Index("name"); got != -1 {
		t.Errorf("Index(name) = %d, want -1 (match is case-sensitive)", got)
	}
	if got := h.Index(""); got != -1 {
		t.Errorf("Index(\"\") = %d, want -1", got)
	}
}

func TestCellString(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", " a ", " a "},
		{"integer float", 3.0, "3"},
		{"decimal", 12.5, "12.5"},
		{"large float", 1e6, "1000000"},
		{"tiny float", 1e-7, "1e-07"},
		{"huge float", 1e21, "1e+21"},
		{"zero", 0.0, "0"},
		{"int", 42, "42"},
		{"int64", int64(-7), "-7"},
		{"bool", true, "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CellString(tt.in); got != tt.want {
				t.Errorf("CellString(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
