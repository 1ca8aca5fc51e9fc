// Package errs formats interpreter diagnostics with source context, in the
// "ERROR:"/"WARNING:" shape spec.md §7 mandates, adapted from the teacher's
// CompilerError caret-pointer renderer.
package errs

import (
	"fmt"
	"strings"

	"github.com/cwbudde/gosas/internal/token"
)

// Kind enumerates the error taxonomy of spec.md §7's table.
type Kind int

const (
	LexError Kind = iota
	ParseError
	UndefinedName
	TypeError
	ArithError
	RangeError
	RuntimeFatal
)

func (k Kind) String() string {
	switch k {
	case LexError:
		return "LexError"
	case ParseError:
		return "ParseError"
	case UndefinedName:
		return "UndefinedName"
	case TypeError:
		return "TypeError"
	case ArithError:
		return "ArithError"
	case RangeError:
		return "RangeError"
	case RuntimeFatal:
		return "RuntimeFatal"
	default:
		return "Unknown"
	}
}

// Severity of a diagnostic, used to pick "ERROR:" vs "WARNING:" and to
// drive the ExitStatus computation of spec.md §6.
type Severity int

const (
	SevWarning Severity = iota
	SevError
)

// Diagnostic is one interpreter-level error or warning.
type Diagnostic struct {
	Kind     Kind
	Severity Severity
	Pos      token.Position // zero value when not tied to a source position
	Message  string
	Source   string // full source text, for caret rendering
}

// HasPos reports whether Pos carries a real location.
func (d Diagnostic) HasPos() bool { return d.Pos.Line > 0 }

// Format renders the diagnostic the way spec.md §7 describes: a leading
// "ERROR:"/"WARNING:" tag, the (line, col) when available, and — when the
// source text was supplied — the offending source line with a caret
// pointer, following the teacher's CompilerError.Format layout.
func (d Diagnostic) Format() string {
	tag := "WARNING"
	if d.Severity == SevError {
		tag = "ERROR"
	}

	var sb strings.Builder
	if d.HasPos() {
		sb.WriteString(fmt.Sprintf("%s: (line %d col %d) %s", tag, d.Pos.Line, d.Pos.Column, d.Message))
	} else {
		sb.WriteString(fmt.Sprintf("%s: %s", tag, d.Message))
	}

	if d.HasPos() && d.Source != "" {
		line := sourceLine(d.Source, d.Pos.Line)
		if line != "" {
			sb.WriteString("\n")
			lineNumStr := fmt.Sprintf("%4d | ", d.Pos.Line)
			sb.WriteString(lineNumStr)
			sb.WriteString(line)
			sb.WriteString("\n")
			sb.WriteString(strings.Repeat(" ", len(lineNumStr)+d.Pos.Column-1))
			sb.WriteString("^")
		}
	}
	return sb.String()
}

func sourceLine(source string, lineNum int) string {
	lines := strings.Split(source, "\n")
	if lineNum < 1 || lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}
