package views

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/sheetguard/internal/validation"
)

func result(errs ...validation.ErrorRecord) validation.ValidationResult {
	return validation.BuildResult(
		validation.HeaderSet{Names: []string{"ID"}},
		validation.Evaluation{RowCount: 3, Errors: errs},
		validation.Metadata{FileName: "<script>.csv", ProfileName: "Monthly"},
	)
}

func TestErrorAlert(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ErrorAlert("Bad <file>", "Try again", "FILE002").Render(context.Background(), &buf))

	out := buf.String()
	assert.Contains(t, out, "Bad &lt;file&gt;")
	assert.Contains(t, out, `<p class="alert-action">Try again</p>`)
	assert.Contains(t, out, "Code: FILE002")
}

func TestResultSummary_Escapes(t *testing.T) {
	var buf bytes.Buffer
	res := result(validation.ErrorRecord{ID: "err-0-0", Row: 2, Column: "ID", Value: `<b>`, Message: "m"})
	require.NoError(t, ResultSummary(res).Render(context.Background(), &buf))

	out := buf.String()
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;.csv")
	assert.Contains(t, out, "<td>&lt;b&gt;</td>")
	assert.Contains(t, out, `data-error-count="1"`)
}

func TestResultSummary_NoErrors(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ResultSummary(result()).Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), "No problems found.")
}

func TestResultSummary_Truncates(t *testing.T) {
	errs := make([]validation.ErrorRecord, maxRenderedErrors+5)
	var buf bytes.Buffer
	require.NoError(t, ResultSummary(result(errs...)).Render(context.Background(), &buf))

	out := buf.String()
	assert.Equal(t, maxRenderedErrors, strings.Count(out, "<tr id="))
	assert.Contains(t, out, "5 more errors")
}

func TestResultSummary_Failure(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ResultSummary(validation.Failure("could not read")).Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), "could not read")
}

func TestHistoryList(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, HistoryList(nil).Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), "No files analysed yet.")

	buf.Reset()
	entries := []validation.HistoryEntry{{
		Timestamp:   time.Date(2025, 9, 12, 10, 30, 0, 0, time.UTC),
		FileName:    "march.csv",
		ProfileName: "Monthly",
		Summary:     validation.HistorySummary{RowCount: 10, ErrorCount: 2},
	}}
	require.NoError(t, HistoryList(entries).Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), "march.csv (Monthly): 10 rows, 2 errors")
}
