// Package value implements the tagged Value used throughout the PDV and
// interpreter: a number (possibly missing) or a string (spec.md §4.3).
package value

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Kind discriminates the two Value variants.
type Kind int

const (
	Number Kind = iota
	String
)

// Value is a tagged union of {number, string}. Numeric missing is a
// distinct value, not the arithmetic NaN: it is carried via Missing, never
// produced by an actual floating-point operation, so it can be compared
// and propagated without NaN's surprising comparison semantics.
type Value struct {
	Kind    Kind
	Num     float64
	Missing bool
	Str     string
}

// NumMissing is the typed-missing default for numeric PDV slots.
var NumMissing = Value{Kind: Number, Missing: true}

// StrMissing is the typed-missing default for character PDV slots: the
// empty string (spec.md §4.3).
var StrMissing = Value{Kind: String, Str: ""}

// NewNumber wraps a finite float64.
func NewNumber(n float64) Value { return Value{Kind: Number, Num: n} }

// NewString wraps a string.
func NewString(s string) Value { return Value{Kind: String, Str: s} }

// IsMissing reports whether v is the missing value for its kind.
func (v Value) IsMissing() bool {
	if v.Kind == Number {
		return v.Missing
	}
	return v.Str == ""
}

// ToNumber converts v to a number, following spec.md §4.3: a numeric Value
// passes through; a string Value is parsed as plain decimal text (the
// lexer's NUMBER grammar, plus an optional leading sign), yielding
// NumMissing on failure. Spellings such as "inf", "nan" or hex floats are
// rejected.
func ToNumber(v Value) Value {
	if v.Kind == Number {
		return v
	}
	s := strings.TrimSpace(v.Str)
	if s == "" {
		return NumMissing
	}
	for _, r := range s {
		if (r < '0' || r > '9') && !strings.ContainsRune(".eE+-", r) {
			return NumMissing
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return NumMissing
	}
	return NewNumber(f)
}

// ToString stringifies v per spec.md §4.3: numbers print with trailing
// zeros trimmed, missing prints as ".".
func ToString(v Value) string {
	if v.Kind == String {
		return v.Str
	}
	if v.Missing {
		return "."
	}
	return formatNumber(v.Num)
}

// formatNumber trims trailing zeros the way SAS's default numeric
// formatting does: 10.0 -> "10", 3.140 -> "3.14".
func formatNumber(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "."
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	return s
}

// Trim mirrors the SAS TRIM function, normalizing Unicode combining forms
// before trimming so multi-byte category values compare consistently
// (SPEC_FULL §2).
func Trim(s string) string {
	return strings.TrimRight(norm.NFC.String(s), " ")
}

// Left mirrors the SAS LEFT function: left-justifies by trimming leading
// spaces.
func Left(s string) string {
	return strings.TrimLeft(norm.NFC.String(s), " ")
}

// Upcase mirrors the SAS UPCASE function.
func Upcase(s string) string {
	return strings.ToUpper(norm.NFC.String(s))
}

// Lowcase mirrors the SAS LOWCASE function.
func Lowcase(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}

// Truthy implements the logical-operator truth rule of spec.md §4.3: 0 and
// missing are false, anything else numeric is true.
func Truthy(v Value) bool {
	n := ToNumber(v)
	if n.Missing {
		return false
	}
	return n.Num != 0
}
