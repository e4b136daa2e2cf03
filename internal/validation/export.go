package validation

import (
	"io"
	"strconv"
	"strings"
)

// CSVHeaders names the four columns of an exported error report.
type CSVHeaders [4]string

var (
	// DefaultCSVHeaders is the header row used by ToCSV.
	DefaultCSVHeaders = CSVHeaders{"Row", "Column", "Value Found", "Problem"}

	// PortugueseCSVHeaders is the header row of reports exported for pt-BR users.
	PortugueseCSVHeaders = CSVHeaders{"Linha", "Coluna", "Valor Encontrado", "Problema"}
)

// ToCSV renders errs as CSV text with DefaultCSVHeaders.
// No errors produce an empty string, not a header-only document. Lines are
// separated by "\n" and the last line has no terminator.
func ToCSV(errs []ErrorRecord) string {
	if len(errs) == 0 {
		return ""
	}
	var sb strings.Builder
	writeCSV(&sb, errs, DefaultCSVHeaders)
	return sb.String()
}

// WriteCSV writes errs to w using the given header row, with the same
// layout as ToCSV.
func WriteCSV(w io.Writer, errs []ErrorRecord, headers CSVHeaders) error {
	if len(errs) == 0 {
		return nil
	}
	var sb strings.Builder
	writeCSV(&sb, errs, headers)
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeCSV(sb *strings.Builder, errs []ErrorRecord, headers CSVHeaders) {
	for i, h := range headers {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(csvEscapeField(h))
	}

	for _, e := range errs {
		sb.WriteByte('\n')
		sb.WriteString(strconv.Itoa(e.Row))
		sb.WriteByte(',')
		sb.WriteString(csvEscapeField(e.Column))
		sb.WriteByte(',')
		sb.WriteString(csvEscapeField(CellString(e.Value)))
		sb.WriteByte(',')
		sb.WriteString(csvEscapeField(e.Message))
	}
}

// csvEscapeField quotes s when it holds a comma, quote or line break.
func csvEscapeField(s string) string {
	if strings.ContainsAny(s, ",\"\n\r") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
