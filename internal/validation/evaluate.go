package validation

// evaluate.go runs compiled rules over the data rows of a grid.
//
// Rows are visited in ascending order and, within a row, rules in the order
// the profile declares them. The output order follows the same traversal, so
// two runs over identical input produce identical error lists.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrorRecord is one rule violation tied to a cell.
type ErrorRecord struct {
	ID               string   `json:"id"`
	Row              int      `json:"row"`              // 1-based row number shown to users
	OriginalRowIndex int      `json:"originalRowIndex"` // 0-based index into the grid
	Column           string   `json:"column"`
	Value            any      `json:"value"` // raw cell value as found
	Message          string   `json:"message"`
	RuleType         RuleKind `json:"ruleType"`
}

// RuleIssue records a rule that could not be enforced during a run.
type RuleIssue struct {
	RuleID string   `json:"ruleId"`
	Column string   `json:"column"`
	Kind   RuleKind `json:"kind"`
	Err    string   `json:"error"`
}

// Evaluation is the output of one evaluator run.
type Evaluation struct {
	Errors   []ErrorRecord
	RowCount int         // data rows evaluated
	Issues   []RuleIssue // rules disabled for this run
}

// Evaluator checks grids against rule definitions.
// An Evaluator holds no per-run state and is safe for concurrent use.
type Evaluator struct {
	logger *slog.Logger
}

// NewEvaluator creates an evaluator that reports disabled rules to logger.
// A nil logger uses slog.Default().
func NewEvaluator(logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{logger: logger}
}

// boundRule is a compiled rule resolved against a header set.
type boundRule struct {
	Rule
	col  int
	seen map[string]int // is-unique: trimmed value -> first data-row index
}

// Evaluate checks every data row below headers.RowIndex against defs.
//
// Rules are compiled once per call. Rules whose column is absent from the
// header are skipped, unknown kinds run as no-ops, and rules that fail to
// compile are disabled and listed in Evaluation.Issues. The only error
// returned is the context's, checked once per row.
func (e *Evaluator) Evaluate(ctx context.Context, grid Grid, headers HeaderSet, defs []RuleDefinition) (Evaluation, error) {
	result := Evaluation{Errors: []ErrorRecord{}}

	rules := e.bind(headers, defs, &result)

	first := headers.RowIndex + 1
	result.RowCount = headers.DataRowCount(grid)
	if result.RowCount == 0 || len(rules) == 0 {
		return result, nil
	}

	for i := 0; i < result.RowCount; i++ {
		if err := ctx.Err(); err != nil {
			return Evaluation{}, err
		}

		rowIndex := first + i
		row := grid[rowIndex]

		for r := range rules {
			rule := &rules[r]

			var raw any
			if rule.col < len(row) {
				raw = row[rule.col]
			}
			value := CleanCell(raw)

			msg, bad := rule.violation(value, i, headers.RowIndex)
			if !bad {
				continue
			}

			result.Errors = append(result.Errors, ErrorRecord{
				ID:               fmt.Sprintf("err-%d-%d", i, rule.col),
				Row:              rowIndex + 1,
				OriginalRowIndex: rowIndex,
				Column:           rule.Def.Column,
				Value:            raw,
				Message:          msg,
				RuleType:         rule.Def.Type,
			})
		}
	}

	return result, nil
}

// bind compiles defs and resolves their columns. Rules that cannot run are
// dropped here: missing columns silently, compile failures with an issue.
func (e *Evaluator) bind(headers HeaderSet, defs []RuleDefinition, result *Evaluation) []boundRule {
	rules := make([]boundRule, 0, len(defs))

	for _, def := range defs {
		rule, err := CompileRule(def)
		if err != nil {
			if errors.Is(err, ErrUnknownKind) {
				e.logger.Debug("unknown rule kind, skipping",
					"rule_id", def.ID,
					"column", def.Column,
					"type", def.Type,
				)
				continue
			}
			e.logger.Warn("rule disabled for this run",
				"rule_id", def.ID,
				"column", def.Column,
				"type", def.Type,
				"error", err,
			)
			result.Issues = append(result.Issues, RuleIssue{
				RuleID: def.ID,
				Column: def.Column,
				Kind:   def.Type,
				Err:    err.Error(),
			})
			continue
		}

		col := headers.Index(def.Column)
		if col < 0 {
			continue
		}

		b := boundRule{Rule: rule, col: col}
		if _, ok := rule.Check.(IsUnique); ok {
			b.seen = make(map[string]int)
		}
		rules = append(rules, b)
	}

	return rules
}

// violation applies the rule to a trimmed value found on data row dataIdx.
// It returns the message and true when the value breaks the rule.
func (b *boundRule) violation(value string, dataIdx, headerRow int) (string, bool) {
	switch c := b.Check.(type) {
	case NotEmpty:
		if value == "" {
			return "Cell must not be empty.", true
		}

	case IsUnique:
		if value == "" {
			return "", false
		}
		firstIdx, dup := b.seen[value]
		if !dup {
			b.seen[value] = dataIdx
			return "", false
		}
		return fmt.Sprintf("Value \"%s\" is duplicated (first occurrence on row %d).", value, headerRow+2+firstIdx), true

	case IsNumber:
		if value != "" && !IsNumeric(value) {
			return fmt.Sprintf("Value \"%s\" is not a valid number.", value), true
		}

	case MatchesRegex:
		if value != "" && !c.Pattern.MatchString(value) {
			return fmt.Sprintf("\"%s\" does not match the expected format.", value), true
		}

	case InSet:
		if value == "" {
			return "", false
		}
		if _, ok := c.Allowed[value]; !ok {
			return fmt.Sprintf("\"%s\" is not an allowed value. Expected: %s", value, c.Raw), true
		}
	}

	return "", false
}

// Validate locates the header of grid and evaluates defs against it.
func (e *Evaluator) Validate(ctx context.Context, grid Grid, defs []RuleDefinition) (HeaderSet, Evaluation, error) {
	headers := LocateHeader(grid)
	eval, err := e.Evaluate(ctx, grid, headers, defs)
	return headers, eval, err
}
