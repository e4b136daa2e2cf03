package validation

import (
	"encoding/json"
	"time"
)

// Metadata describes the file and profile a result was produced from.
type Metadata struct {
	FileName    string `json:"fileName"`
	FileSize    int64  `json:"fileSize"`
	ProfileName string `json:"profileName"`
	ProfileID   string `json:"profileId"`
}

// Summary holds the counts of a validation run.
type Summary struct {
	RowCount    int `json:"rowCount"`
	ColumnCount int `json:"columnCount"`
	ErrorCount  int `json:"errorCount"`
}

// ValidationResult is the outcome of validating one file against one profile.
// A successful result carries metadata, summary and errors; a failed one
// carries only Error.
type ValidationResult struct {
	Success        bool          `json:"success"`
	Error          string        `json:"error,omitempty"`
	Metadata       *Metadata     `json:"metadata,omitempty"`
	Summary        *Summary      `json:"summary,omitempty"`
	Errors         []ErrorRecord `json:"errors"`
	Headers        []string      `json:"headers,omitempty"`
	HeaderRowIndex int           `json:"headerRowIndex"`
	Issues         []RuleIssue   `json:"ruleIssues,omitempty"`
}

// BuildResult wraps an evaluation into a successful result.
func BuildResult(headers HeaderSet, eval Evaluation, meta Metadata) ValidationResult {
	errs := eval.Errors
	if errs == nil {
		errs = []ErrorRecord{}
	}

	return ValidationResult{
		Success:  true,
		Metadata: &meta,
		Summary: &Summary{
			RowCount:    eval.RowCount,
			ColumnCount: len(headers.Names),
			ErrorCount:  len(errs),
		},
		Errors:         errs,
		Headers:        headers.Names,
		HeaderRowIndex: headers.RowIndex,
		Issues:         eval.Issues,
	}
}

// Failure builds the result of a run that could not start, such as one whose
// file failed to decode.
func Failure(msg string) ValidationResult {
	return ValidationResult{Success: false, Error: msg}
}

// MarshalJSON encodes a failed result as {success, error} only.
func (r ValidationResult) MarshalJSON() ([]byte, error) {
	if !r.Success {
		return json.Marshal(struct {
			Success bool   `json:"success"`
			Error   string `json:"error"`
		}{false, r.Error})
	}
	type plain ValidationResult
	return json.Marshal(plain(r))
}

// Recordable reports whether the result belongs in the run history.
// Failed runs and runs without data rows are not recorded.
func (r ValidationResult) Recordable() bool {
	return r.Success && r.Summary != nil && r.Summary.RowCount > 0
}

// HistorySummary is the reduced summary kept with a history entry.
type HistorySummary struct {
	RowCount   int `json:"rowCount"`
	ErrorCount int `json:"errorCount"`
}

// HistoryEntry is the record of a completed run handed to the history store.
type HistoryEntry struct {
	ID          string         `json:"id"`
	Timestamp   time.Time      `json:"timestamp"`
	FileName    string         `json:"fileName"`
	ProfileName string         `json:"profileName"`
	ProfileID   string         `json:"profileId"`
	Summary     HistorySummary `json:"summary"`
}

// NewHistoryEntry derives the history record for result.
func NewHistoryEntry(result ValidationResult, id string, ts time.Time) HistoryEntry {
	entry := HistoryEntry{ID: id, Timestamp: ts}
	if result.Metadata != nil {
		entry.FileName = result.Metadata.FileName
		entry.ProfileName = result.Metadata.ProfileName
		entry.ProfileID = result.Metadata.ProfileID
	}
	if result.Summary != nil {
		entry.Summary = HistorySummary{
			RowCount:   result.Summary.RowCount,
			ErrorCount: result.Summary.ErrorCount,
		}
	}
	return entry
}
