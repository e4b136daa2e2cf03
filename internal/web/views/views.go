// Package views renders the HTML fragments swapped in by HTMX.
package views

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/sheetguard/internal/validation"
)

// maxRenderedErrors caps the error table; the CSV export carries the rest.
const maxRenderedErrors = 200

// ErrorAlert renders a user-facing error with its support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<div class="alert alert-error" role="alert"><p class="alert-message">%s</p>`,
			templ.EscapeString(message))
		if err != nil {
			return err
		}
		if action != "" {
			if _, err := fmt.Fprintf(w, `<p class="alert-action">%s</p>`, templ.EscapeString(action)); err != nil {
				return err
			}
		}
		_, err = fmt.Fprintf(w, `<p class="alert-code">Code: %s</p></div>`, templ.EscapeString(code))
		return err
	})
}

// ResultSummary renders a validation result: counts, disabled rules and
// the first errors.
func ResultSummary(result validation.ValidationResult) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if !result.Success {
			return ErrorAlert(result.Error, "", "").Render(ctx, w)
		}

		ew := &errWriter{w: w}
		ew.printf(`<section class="result" data-error-count="%d">`, result.Summary.ErrorCount)
		ew.printf(`<h2>%s</h2>`, templ.EscapeString(result.Metadata.FileName))
		ew.printf(`<p class="result-profile">%s</p>`, templ.EscapeString(result.Metadata.ProfileName))
		ew.printf(`<dl class="result-summary"><dt>Rows</dt><dd>%d</dd><dt>Columns</dt><dd>%d</dd><dt>Errors</dt><dd>%d</dd></dl>`,
			result.Summary.RowCount, result.Summary.ColumnCount, result.Summary.ErrorCount)

		if len(result.Issues) > 0 {
			ew.printf(`<ul class="rule-issues">`)
			for _, issue := range result.Issues {
				ew.printf(`<li>Rule on %s was skipped: %s</li>`,
					templ.EscapeString(issue.Column), templ.EscapeString(issue.Err))
			}
			ew.printf(`</ul>`)
		}

		if len(result.Errors) == 0 {
			ew.printf(`<p class="result-ok">No problems found.</p></section>`)
			return ew.err
		}

		ew.printf(`<table class="result-errors"><thead><tr><th>Row</th><th>Column</th><th>Value Found</th><th>Problem</th></tr></thead><tbody>`)
		for i, e := range result.Errors {
			if i == maxRenderedErrors {
				break
			}
			ew.printf(`<tr id="%s"><td>%d</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
				templ.EscapeString(e.ID), e.Row,
				templ.EscapeString(e.Column),
				templ.EscapeString(validation.CellString(e.Value)),
				templ.EscapeString(e.Message))
		}
		ew.printf(`</tbody></table>`)
		if n := len(result.Errors) - maxRenderedErrors; n > 0 {
			ew.printf(`<p class="result-more">%s more errors in the CSV export.</p>`, strconv.Itoa(n))
		}
		ew.printf(`</section>`)
		return ew.err
	})
}

// HistoryList renders recent runs, most recent first.
func HistoryList(entries []validation.HistoryEntry) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		ew := &errWriter{w: w}
		if len(entries) == 0 {
			ew.printf(`<p class="history-empty">No files analysed yet.</p>`)
			return ew.err
		}
		ew.printf(`<ul class="history">`)
		for _, e := range entries {
			ew.printf(`<li><time datetime="%s">%s</time> %s (%s): %d rows, %d errors</li>`,
				e.Timestamp.UTC().Format("2006-01-02T15:04:05Z"),
				e.Timestamp.Format("2006-01-02 15:04"),
				templ.EscapeString(e.FileName),
				templ.EscapeString(e.ProfileName),
				e.Summary.RowCount, e.Summary.ErrorCount)
		}
		ew.printf(`</ul>`)
		return ew.err
	})
}

// errWriter keeps the first write error and skips later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
