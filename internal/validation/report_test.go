package validation

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestBuildResult(t *testing.T) {
	headers := HeaderSet{Names: []string{"ID", "NAME", "QTY"}, RowIndex: 1}
	eval := Evaluation{
		RowCount: 4,
		Errors: []ErrorRecord{
			{ID: "err-0-0", Row: 3, OriginalRowIndex: 2, Column: "ID"},
			{ID: "err-2-2", Row: 5, OriginalRowIndex: 4, Column: "QTY"},
		},
	}
	meta := Metadata{FileName: "data.csv", FileSize: 120, ProfileName: "Monthly", ProfileID: "p1"}

	got := BuildResult(headers, eval, meta)

	if !got.Success {
		t.Error("Success = false, want true")
	}
	if got.Summary.RowCount != 4 || got.Summary.ColumnCount != 3 || got.Summary.ErrorCount != 2 {
		t.Errorf("Summary = %+v, want {4 3 2}", *got.Summary)
	}
	if *got.Metadata != meta {
		t.Errorf("Metadata = %+v, want %+v", *got.Metadata, meta)
	}
	if got.HeaderRowIndex != 1 {
		t.Errorf("HeaderRowIndex = %d, want 1", got.HeaderRowIndex)
	}
	if !got.Recordable() {
		t.Error("Recordable() = false, want true")
	}
}

func TestBuildResult_EmptyGrid(t *testing.T) {
	got := BuildResult(LocateHeader(Grid{}), Evaluation{}, Metadata{FileName: "empty.csv"})

	if !got.Success {
		t.Error("Success = false, want true for an empty grid")
	}
	if got.Summary.RowCount != 0 || got.Summary.ErrorCount != 0 {
		t.Errorf("Summary = %+v, want zero counts", *got.Summary)
	}
	if got.Errors == nil {
		t.Error("Errors is nil, want empty slice")
	}
	if got.Recordable() {
		t.Error("Recordable() = true, want false for zero data rows")
	}
}

func TestFailure(t *testing.T) {
	got := Failure("could not read file")

	if got.Success {
		t.Error("Success = true, want false")
	}
	if got.Recordable() {
		t.Error("Recordable() = true, want false")
	}

	data, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"success":false,"error":"could not read file"}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}

func TestValidationResult_JSONShape(t *testing.T) {
	result := BuildResult(HeaderSet{Names: []string{"A", "B"}}, Evaluation{RowCount: 1}, Metadata{FileName: "f.csv"})

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	for _, key := range []string{`"success":true`, `"metadata":{`, `"summary":{`, `"errors":[]`, `"fileName":"f.csv"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("Marshal() = %s, missing %s", data, key)
		}
	}
}

func TestNewHistoryEntry(t *testing.T) {
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	result := BuildResult(
		HeaderSet{Names: []string{"A"}},
		Evaluation{RowCount: 10, Errors: []ErrorRecord{{}, {}}},
		Metadata{FileName: "f.xlsx", ProfileName: "P", ProfileID: "p1"},
	)

	got := NewHistoryEntry(result, "h1", ts)

	want := HistoryEntry{
		ID:          "h1",
		Timestamp:   ts,
		FileName:    "f.xlsx",
		ProfileName: "P",
		ProfileID:   "p1",
		Summary:     HistorySummary{RowCount: 10, ErrorCount: 2},
	}
	if got != want {
		t.Errorf("NewHistoryEntry() = %+v, want %+v", got, want)
	}
}
