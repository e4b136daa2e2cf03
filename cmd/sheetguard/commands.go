package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/sheetguard/internal/core"
	"github.com/JonMunkholm/sheetguard/internal/gridsource"
	"github.com/JonMunkholm/sheetguard/internal/logging"
	"github.com/JonMunkholm/sheetguard/internal/store"
	"github.com/JonMunkholm/sheetguard/internal/validation"
)

// Exit statuses besides 0 and the generic 1.
const (
	exitUnreadable = 1 // the input file could not be decoded
	exitInvalid    = 2 // validation errors with --fail-on-errors
)

// printedErrors caps the error table of the text report.
const printedErrors = 50

type globalOptions struct {
	logLevel string
	maxBytes int64
}

// service builds a Service over throwaway in-memory stores.
func (g *globalOptions) service(stderr io.Writer) *core.Service {
	logger := logging.New(stderr, g.logLevel, "text")
	return core.NewService(
		store.NewMemoryProfiles(),
		store.NewMemoryHistory(store.DefaultHistoryLimit),
		core.Options{MaxFileSize: g.maxBytes, MaxConcurrent: 1},
		logger,
	)
}

type validateOptions struct {
	profilePath  string
	outPath      string
	asJSON       bool
	failOnErrors bool
	sheet        string
	lang         string
}

func newValidateCmd(g *globalOptions) *cobra.Command {
	var opts validateOptions

	cmd := &cobra.Command{
		Use:   "validate --profile <file> <grid-file>",
		Short: "Validate a CSV or Excel file against a profile file",
		Long: `Validate a .csv, .xlsx or .xlsm file against the rules of a YAML or JSON
profile file and print a report.

Exit status is 1 when the file cannot be read, and 2 when problems were
found and --fail-on-errors is set.

Example:
  sheetguard validate --profile monthly.yaml --out problems.csv --fail-on-errors march.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := g.service(cmd.ErrOrStderr())
			return runValidate(cmd.Context(), svc, cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.profilePath, "profile", "p", "", "Profile file (YAML or JSON)")
	cmd.Flags().StringVarP(&opts.outPath, "out", "o", "", "Write the problems as CSV to this file")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print the full result as JSON")
	cmd.Flags().BoolVar(&opts.failOnErrors, "fail-on-errors", false, "Exit with status 2 when problems are found")
	cmd.Flags().StringVar(&opts.sheet, "sheet", "", "Workbook sheet to read (default: first sheet)")
	cmd.Flags().StringVar(&opts.lang, "lang", "en", "CSV header language: en|pt")
	_ = cmd.MarkFlagRequired("profile")

	return cmd
}

func runValidate(ctx context.Context, svc *core.Service, out io.Writer, path string, opts validateOptions) error {
	profile, err := store.LoadProfileFile(opts.profilePath)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	var size int64
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}

	result, err := svc.AnalyzeProfile(ctx, profile, core.Upload{
		Name:  filepath.Base(path),
		Size:  size,
		Body:  f,
		Sheet: opts.sheet,
	})
	if err != nil {
		return err
	}

	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	}

	if !result.Success {
		return &exitError{code: exitUnreadable, msg: result.Error}
	}

	if opts.outPath != "" {
		if err := writeReport(opts.outPath, result.Errors, opts.lang); err != nil {
			return err
		}
	}

	if !opts.asJSON {
		if err := printResult(out, result); err != nil {
			return err
		}
	}

	if opts.failOnErrors && result.Summary.ErrorCount > 0 {
		return &exitError{code: exitInvalid, msg: fmt.Sprintf("%d problems found", result.Summary.ErrorCount)}
	}
	return nil
}

func writeReport(path string, errs []validation.ErrorRecord, lang string) error {
	headers := validation.DefaultCSVHeaders
	if strings.EqualFold(lang, "pt") {
		headers = validation.PortugueseCSVHeaders
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := validation.WriteCSV(f, errs, headers); err != nil {
		f.Close()
		return fmt.Errorf("write report: %w", err)
	}
	return f.Close()
}

func printResult(out io.Writer, result validation.ValidationResult) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "File:\t%s\n", result.Metadata.FileName)
	fmt.Fprintf(tw, "Profile:\t%s\n", result.Metadata.ProfileName)
	fmt.Fprintf(tw, "Rows:\t%d\n", result.Summary.RowCount)
	fmt.Fprintf(tw, "Columns:\t%d\n", result.Summary.ColumnCount)
	fmt.Fprintf(tw, "Problems:\t%d\n", result.Summary.ErrorCount)
	for _, issue := range result.Issues {
		fmt.Fprintf(tw, "Skipped rule:\t%s on %s: %s\n", issue.Kind, issue.Column, issue.Err)
	}

	if len(result.Errors) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "ROW\tCOLUMN\tVALUE\tPROBLEM")
		for i, e := range result.Errors {
			if i == printedErrors {
				fmt.Fprintf(tw, "...\t\t\t%d more\n", len(result.Errors)-printedErrors)
				break
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", e.Row, e.Column, validation.CellString(e.Value), e.Message)
		}
	}
	return tw.Flush()
}

func newHeadersCmd(g *globalOptions) *cobra.Command {
	var sheet string
	var listSheets bool

	cmd := &cobra.Command{
		Use:   "headers <grid-file>",
		Short: "Print the detected header row of a file",
		Long: `Print the header row SheetGuard detects in a file, as used to pick rule
columns. With --sheets, list the sheets of a workbook instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if listSheets {
				return runSheets(cmd.OutOrStdout(), args[0])
			}
			svc := g.service(cmd.ErrOrStderr())
			return runHeaders(cmd.Context(), svc, cmd.OutOrStdout(), args[0], sheet)
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Workbook sheet to read (default: first sheet)")
	cmd.Flags().BoolVar(&listSheets, "sheets", false, "List workbook sheets")
	return cmd
}

func runHeaders(ctx context.Context, svc *core.Service, out io.Writer, path, sheet string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	headers, err := svc.ExtractHeaders(ctx, core.Upload{Name: filepath.Base(path), Body: f, Sheet: sheet})
	if err != nil {
		return &exitError{code: exitUnreadable, msg: core.FormatUserError(err)}
	}

	fmt.Fprintf(out, "Header row: %d\n", headers.RowIndex+1)
	for i, name := range headers.Names {
		fmt.Fprintf(out, "%3d  %s\n", i+1, name)
	}
	return nil
}

func runSheets(out io.Writer, path string) error {
	if format, err := gridsource.FormatOf(path); err != nil || format != gridsource.FormatXLSX {
		return &exitError{code: exitUnreadable, msg: "--sheets needs an .xlsx or .xlsm file"}
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	names, err := gridsource.SheetNames(f)
	if err != nil {
		return &exitError{code: exitUnreadable, msg: core.FormatUserError(err)}
	}
	for _, n := range names {
		fmt.Fprintln(out, n)
	}
	return nil
}

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Work with profile files",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "example",
			Short: "Print an example profile as YAML",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				data, err := store.MarshalProfile(store.SeedProfiles()[0])
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			},
		},
		&cobra.Command{
			Use:   "check <profile-file>",
			Short: "Load a profile file and report rules that cannot run",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runProfileCheck(cmd.OutOrStdout(), args[0])
			},
		},
	)
	return cmd
}

// runProfileCheck lists the rules of a profile file. Rules of unknown kinds
// load but never fire, so they are reported and fail the check.
func runProfileCheck(out io.Writer, path string) error {
	p, err := store.LoadProfileFile(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s: %d rules\n", p.Name, len(p.Rules))
	var bad int
	for _, r := range p.Rules {
		status := "ok"
		if err := validation.ValidateDefinition(r); err != nil {
			status = err.Error()
			bad++
		}
		fmt.Fprintf(out, "  %-12s %-14s %-20s %s\n", r.ID, r.Type, r.Column, status)
	}
	if bad > 0 {
		return &exitError{code: exitInvalid, msg: fmt.Sprintf("%d rules cannot run", bad)}
	}
	return nil
}
