// Package validation is the tabular validation engine.
//
// It takes an already-decoded grid (rows of cell values), finds the header row,
// evaluates a profile's rules against every data row and produces a report that
// can be serialized to CSV. The package performs no I/O and keeps no state
// between calls, so it can be used by the HTTP service, the CLI, or tests
// without modification.
//
// # Flow
//
//  1. [LocateHeader] picks the most likely header row in the first
//     [MaxHeaderSearchRows] rows.
//  2. [Evaluator.Evaluate] compiles the rule definitions once and checks every
//     data row below the header, in row order and then rule order.
//  3. [BuildResult] wraps the evaluation with summary counts and metadata.
//  4. [ToCSV] renders the error list as an exportable report.
//
// # Rule Kinds
//
//   - not-empty: the trimmed cell must not be empty
//   - is-unique: no earlier data row may hold the same trimmed value
//   - is-number: non-empty values must be numeric literals
//   - matches-regex: non-empty values must match the rule's pattern
//   - in-set: non-empty values must be in the rule's comma-separated allow-list
//
// # Permissive Policies
//
// Profiles are reused across files with different layouts, so a rule whose
// column is missing from the header is skipped silently. A rule of an unknown
// kind never reports a violation. A rule with a malformed pattern or a missing
// value is disabled for the run and reported in [Evaluation.Issues]; the rest
// of the run continues.
package validation
