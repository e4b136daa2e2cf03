// Command sheetguard validates spreadsheet files against a profile from the
// command line.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// exitError carries a process exit status out of a command.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	if err == nil {
		return
	}

	var exit *exitError
	if errors.As(err, &exit) {
		if exit.msg != "" {
			fmt.Fprintln(os.Stderr, exit.msg)
		}
		os.Exit(exit.code)
	}
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

func newRootCmd() *cobra.Command {
	var opts globalOptions

	root := &cobra.Command{
		Use:   "sheetguard",
		Short: "Validate CSV and Excel files against rule profiles",
		Long: `SheetGuard checks spreadsheet files against a profile of column rules
(not-empty, is-unique, is-number, matches-regex, in-set) and reports every
offending cell.

Example:
  sheetguard validate --profile monthly.yaml --out problems.csv march.xlsx`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", envOr("LOG_LEVEL", "warn"), "Log level: debug|info|warn|error")
	root.PersistentFlags().Int64Var(&opts.maxBytes, "max-bytes", 0, "Maximum input size in bytes (0 for the default)")

	root.AddCommand(
		newValidateCmd(&opts),
		newHeadersCmd(&opts),
		newProfileCmd(),
	)
	return root
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
