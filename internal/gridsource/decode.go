// Package gridsource decodes uploaded spreadsheet files into grids.
//
// Supported formats are CSV and the OOXML workbook formats (.xlsx, .xlsm).
// Legacy binary workbooks (.xls) are rejected with ErrUnsupportedFormat.
// Every decode failure wraps ErrDecode, ErrFileTooLarge or ErrUnsupportedFormat
// so callers can turn it into a user-facing message.
package gridsource

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/sheetguard/internal/validation"
)

// Format is a supported input file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

var (
	// ErrUnsupportedFormat is returned for file extensions that cannot be decoded.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrFileTooLarge is returned when the input exceeds Options.MaxBytes.
	ErrFileTooLarge = errors.New("file too large")

	// ErrDecode wraps any failure to parse file contents.
	ErrDecode = errors.New("could not decode file")
)

// DefaultMaxBytes is the size limit used when Options.MaxBytes is zero.
const DefaultMaxBytes int64 = 100 << 20

// Options controls decoding.
type Options struct {
	// MaxBytes caps the input size. Zero means DefaultMaxBytes.
	MaxBytes int64

	// Sheet selects the workbook sheet to read. Empty means the first sheet.
	Sheet string

	// FormattedValues reads workbook cells as displayed, with number formats
	// applied. By default cells hold their stored values.
	FormattedValues bool
}

func (o Options) maxBytes() int64 {
	if o.MaxBytes <= 0 {
		return DefaultMaxBytes
	}
	return o.MaxBytes
}

// FormatOf returns the format implied by a file name's extension.
func FormatOf(name string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case "":
		return "", fmt.Errorf("%q has no extension: %w", name, ErrUnsupportedFormat)
	default:
		return "", fmt.Errorf("%s files: %w", ext, ErrUnsupportedFormat)
	}
}

// Decode reads r as the format implied by name and returns its rows.
func Decode(name string, r io.Reader, opts Options) (validation.Grid, error) {
	format, err := FormatOf(name)
	if err != nil {
		return nil, err
	}

	limited := newLimitReader(r, opts.maxBytes())

	switch format {
	case FormatCSV:
		return decodeCSV(limited)
	default:
		return decodeWorkbook(limited, opts)
	}
}
