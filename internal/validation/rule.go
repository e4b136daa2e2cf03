package validation

// rule.go defines rule definitions (the persisted form a profile carries) and
// their compiled form.
//
// A definition names a column, a kind and an optional value. Compiling it
// turns the value into the kind's typed parameter once, so evaluation never
// re-parses a pattern or an allow-list per cell:
//
//	not-empty, is-unique, is-number  -> no parameter
//	matches-regex                    -> *regexp.Regexp
//	in-set                           -> parsed allow-list

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// RuleKind identifies one of the fixed rule kinds.
type RuleKind string

const (
	KindNotEmpty     RuleKind = "not-empty"
	KindIsUnique     RuleKind = "is-unique"
	KindIsNumber     RuleKind = "is-number"
	KindMatchesRegex RuleKind = "matches-regex"
	KindInSet        RuleKind = "in-set"
)

// Kinds lists every supported rule kind in display order.
var Kinds = []RuleKind{KindNotEmpty, KindIsUnique, KindIsNumber, KindMatchesRegex, KindInSet}

// Known reports whether k is one of the supported kinds.
func (k RuleKind) Known() bool {
	switch k {
	case KindNotEmpty, KindIsUnique, KindIsNumber, KindMatchesRegex, KindInSet:
		return true
	}
	return false
}

// NeedsValue reports whether rules of this kind require a value.
func (k RuleKind) NeedsValue() bool {
	return k == KindMatchesRegex || k == KindInSet
}

var (
	// ErrUnknownKind is returned for a rule whose kind this version does not know.
	ErrUnknownKind = errors.New("unknown rule kind")

	// ErrMissingColumn is returned for a rule without a target column.
	ErrMissingColumn = errors.New("rule column is required")

	// ErrMissingValue is returned for a matches-regex or in-set rule without a value.
	ErrMissingValue = errors.New("rule value is required")

	// ErrInvalidPattern is returned for a matches-regex rule whose value does not compile.
	ErrInvalidPattern = errors.New("invalid regular expression")
)

// RuleDefinition is a rule as stored in a profile.
type RuleDefinition struct {
	ID     string   `json:"id" yaml:"id"`
	Column string   `json:"column" yaml:"column"`
	Type   RuleKind `json:"type" yaml:"type"`
	Value  string   `json:"value,omitempty" yaml:"value,omitempty"`
}

// Check is the compiled, kind-specific part of a rule. The set of
// implementations is closed: NotEmpty, IsUnique, IsNumber, MatchesRegex, InSet
// and Unknown.
type Check interface {
	Kind() RuleKind
	isCheck()
}

// NotEmpty flags empty cells.
type NotEmpty struct{}

// IsUnique flags values already seen in an earlier data row.
type IsUnique struct{}

// IsNumber flags values that are not numeric literals.
type IsNumber struct{}

// MatchesRegex flags values the pattern does not match.
type MatchesRegex struct {
	Pattern *regexp.Regexp
}

// InSet flags values outside the allow-list.
type InSet struct {
	Allowed map[string]struct{}
	Raw     string // original comma-separated list, quoted in messages
}

// Unknown is a rule of a kind this version does not understand. It never
// reports a violation so profiles written by newer versions still load.
type Unknown struct {
	Type RuleKind
}

func (NotEmpty) Kind() RuleKind     { return KindNotEmpty }
func (IsUnique) Kind() RuleKind     { return KindIsUnique }
func (IsNumber) Kind() RuleKind     { return KindIsNumber }
func (MatchesRegex) Kind() RuleKind { return KindMatchesRegex }
func (InSet) Kind() RuleKind        { return KindInSet }
func (u Unknown) Kind() RuleKind    { return u.Type }

func (NotEmpty) isCheck()     {}
func (IsUnique) isCheck()     {}
func (IsNumber) isCheck()     {}
func (MatchesRegex) isCheck() {}
func (InSet) isCheck()        {}
func (Unknown) isCheck()      {}

// Rule is a compiled rule definition.
type Rule struct {
	Def   RuleDefinition
	Check Check
}

// CompileRule validates def and builds its typed parameter.
//
// A definition of an unknown kind compiles to an Unknown check together with
// ErrUnknownKind, so callers can decide whether to reject it or run it as a
// no-op.
func CompileRule(def RuleDefinition) (Rule, error) {
	rule := Rule{Def: def}

	switch def.Type {
	case KindNotEmpty:
		rule.Check = NotEmpty{}
	case KindIsUnique:
		rule.Check = IsUnique{}
	case KindIsNumber:
		rule.Check = IsNumber{}
	case KindMatchesRegex:
		if def.Value == "" {
			return rule, fmt.Errorf("%s rule on %q: %w", def.Type, def.Column, ErrMissingValue)
		}
		re, err := regexp.Compile(def.Value)
		if err != nil {
			return rule, fmt.Errorf("%s rule on %q: %w: %v", def.Type, def.Column, ErrInvalidPattern, err)
		}
		rule.Check = MatchesRegex{Pattern: re}
	case KindInSet:
		if def.Value == "" {
			return rule, fmt.Errorf("%s rule on %q: %w", def.Type, def.Column, ErrMissingValue)
		}
		rule.Check = InSet{Allowed: parseAllowList(def.Value), Raw: def.Value}
	default:
		rule.Check = Unknown{Type: def.Type}
		return rule, fmt.Errorf("rule %q on %q: %w", def.Type, def.Column, ErrUnknownKind)
	}

	return rule, nil
}

// ValidateDefinition checks a definition before it is saved to a profile.
// It is stricter than evaluation: unknown kinds and blank columns are rejected.
func ValidateDefinition(def RuleDefinition) error {
	if strings.TrimSpace(def.Column) == "" {
		return ErrMissingColumn
	}
	_, err := CompileRule(def)
	return err
}

// parseAllowList splits a comma-separated list into a set of trimmed tokens.
func parseAllowList(raw string) map[string]struct{} {
	parts := strings.Split(raw, ",")
	allowed := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		allowed[strings.TrimSpace(p)] = struct{}{}
	}
	return allowed
}
