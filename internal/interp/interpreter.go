// Package interp walks the AST produced by internal/parser, driving the
// Program Data Vector through each DATA/PROC step the way the teacher's
// internal/interp package walks DWScript's AST against its execution
// context (DESIGN.md).
package interp

import (
	"fmt"

	"github.com/cwbudde/gosas/internal/catalog"
	"github.com/cwbudde/gosas/internal/errs"
	"github.com/cwbudde/gosas/internal/pdv"
	"github.com/cwbudde/gosas/internal/sink"
	"github.com/cwbudde/gosas/internal/timing"
	"github.com/cwbudde/gosas/internal/token"
)

// ExitStatus mirrors a SAS batch run's process exit code (spec.md §6).
type ExitStatus int

const (
	ExitClean        ExitStatus = 0
	ExitWarning      ExitStatus = 1
	ExitError        ExitStatus = 2
	ExitParseFailure ExitStatus = 3
)

// Interpreter executes a parsed Program against a Catalog, writing its log
// and listing output to injected Sinks rather than a global logger
// (spec.md §6, DESIGN.md).
type Interpreter struct {
	catalog *catalog.Catalog
	log     sink.Sink
	listing sink.Sink
	source  string
	title   string

	sawWarning bool
	sawError   bool

	maxIterations int
}

// New creates an Interpreter over an existing Catalog (a fresh one, or one
// carried over from an earlier Run call for REPL-style reuse).
func New(cat *catalog.Catalog, log, listing sink.Sink) *Interpreter {
	return &Interpreter{
		catalog:       cat,
		log:           log,
		listing:       listing,
		maxIterations: 1_000_000,
	}
}

// Catalog exposes the interpreter's catalog for read-only inspection
// (pkg/gosas's embedding API).
func (ip *Interpreter) Catalog() *catalog.Catalog { return ip.catalog }

// ExitStatus reports the worst severity seen across the whole run.
func (ip *Interpreter) ExitStatus() ExitStatus {
	if ip.sawError {
		return ExitError
	}
	if ip.sawWarning {
		return ExitWarning
	}
	return ExitClean
}

// stepAbort unwinds execution of a single DATA/PROC step back to its
// boundary (spec.md §7: "the interpreter catches at the step boundary
// only"). It is never allowed to escape Run.
type stepAbort struct {
	diag errs.Diagnostic
}

// abort records an ERROR diagnostic and unwinds to the current step's
// recover point.
func (ip *Interpreter) abort(kind errs.Kind, pos token.Position, format string, args ...any) {
	panic(stepAbort{errs.Diagnostic{
		Kind:     kind,
		Severity: errs.SevError,
		Pos:      pos,
		Message:  fmt.Sprintf(format, args...),
		Source:   ip.source,
	}})
}

// warn records a WARNING diagnostic without unwinding (spec.md §7:
// ArithError/TypeError/UndefinedName are recoverable, yielding a missing
// value and continuing the current statement).
func (ip *Interpreter) warn(kind errs.Kind, pos token.Position, format string, args ...any) {
	d := errs.Diagnostic{
		Kind:     kind,
		Severity: errs.SevWarning,
		Pos:      pos,
		Message:  fmt.Sprintf(format, args...),
		Source:   ip.source,
	}
	ip.log.Writeln(sink.LevelWarn, d.Format())
	ip.sawWarning = true
}

func (ip *Interpreter) logError(kind errs.Kind, pos token.Position, format string, args ...any) {
	d := errs.Diagnostic{
		Kind:     kind,
		Severity: errs.SevError,
		Pos:      pos,
		Message:  fmt.Sprintf(format, args...),
		Source:   ip.source,
	}
	ip.log.Writeln(sink.LevelError, d.Format())
	ip.sawError = true
}

// note writes a "NOTE:"-prefixed line to the log.
func (ip *Interpreter) note(format string, args ...any) {
	ip.log.Writeln(sink.LevelInfo, "NOTE: "+fmt.Sprintf(format, args...))
}

func (ip *Interpreter) noteDatasetCreated(ds *catalog.Dataset) {
	ip.note("The data set %s has %d observations and %d variables.", ds.Name, len(ds.Rows), len(ds.Columns))
}

// runStepSafely wraps one top-level step: it times the step, recovers from
// a stepAbort so one bad step never takes down the rest of the program, and
// emits the step's timer lines to the log (spec.md §4.9).
func (ip *Interpreter) runStepSafely(fn func()) {
	timer := &timing.Timer{}
	timer.Start()
	func() {
		defer func() {
			if r := recover(); r != nil {
				sa, ok := r.(stepAbort)
				if !ok {
					panic(r)
				}
				ip.logError(sa.diag.Kind, sa.diag.Pos, "%s", sa.diag.Message)
			}
		}()
		fn()
	}()
	timer.Stop()
	for _, line := range timer.Lines() {
		ip.log.Writeln(sink.LevelInfo, line)
	}
}

// stepCtx is per-DATA-step execution state: the PDV, declared arrays,
// KEEP/DROP lists, and the output dataset the step is building.
type stepCtx struct {
	pdv               *pdv.PDV
	arrays            map[string][]string // lower(array name) -> member var names, in declared order
	keep              []string
	drop              []string
	hasExplicitOutput bool
	outDS             *catalog.Dataset
}

func newStepCtx(outDS *catalog.Dataset) *stepCtx {
	return &stepCtx{pdv: pdv.New(), arrays: make(map[string][]string), outDS: outDS}
}
