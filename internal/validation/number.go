package validation

import (
	"math/big"
	"regexp"
	"strings"
)

// numericRegex matches decimal literals: integers, decimals and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// IsNumeric reports whether s is a numeric literal under standard numeric
// coercion: signed decimals ("12.5", ".5", "5.", "1e3"), unsigned hex, octal
// and binary integers ("0x1F", "0o17", "0b101"), and Infinity with an optional
// sign. Surrounding whitespace is ignored. "NaN", thousands separators and
// currency symbols are not numbers.
func IsNumeric(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}

	if numericRegex.MatchString(s) {
		return true
	}

	switch s {
	case "Infinity", "+Infinity", "-Infinity":
		return true
	}

	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			digits := s[2:]
			if strings.ContainsAny(digits, "+-_") {
				return false
			}
			_, ok := new(big.Int).SetString(digits, base)
			return ok
		}
	}

	return false
}
