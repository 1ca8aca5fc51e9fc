// Package gosas is the public embedding API: a thin facade over internal/
// that re-exports just enough to lex, parse, and run a program and inspect
// its resulting catalog, the way pkg/dwscript wraps the teacher's compiler
// pipeline for host programs (DESIGN.md).
package gosas

import (
	"fmt"
	"io"
	"strings"

	"github.com/cwbudde/gosas/internal/catalog"
	"github.com/cwbudde/gosas/internal/interp"
	"github.com/cwbudde/gosas/internal/lexer"
	"github.com/cwbudde/gosas/internal/parser"
	"github.com/cwbudde/gosas/internal/sink"
)

// Option configures an Engine at construction time, following the
// functional-options shape pkg/dwscript's New(options...) uses.
type Option func(*Engine)

// WithCatalog seeds the Engine with an existing Catalog, so a sequence of
// Eval calls behaves like a single interactive SAS session: libraries and
// datasets created by one call are visible to the next.
func WithCatalog(cat *catalog.Catalog) Option {
	return func(e *Engine) { e.catalog = cat }
}

// WithLogWriter directs the run log to w instead of the default MemorySink.
func WithLogWriter(w io.Writer) Option {
	return func(e *Engine) { e.log = sink.NewConsoleSink(w) }
}

// WithListingWriter directs PROC listing output to w instead of the default
// MemorySink.
func WithListingWriter(w io.Writer) Option {
	return func(e *Engine) { e.listing = sink.NewConsoleSink(w) }
}

// Engine holds a Catalog across one or more Eval calls.
type Engine struct {
	catalog *catalog.Catalog
	log     sink.Sink
	listing sink.Sink
}

// New creates an Engine. Without WithCatalog a fresh, empty Catalog is
// created; without WithLogWriter/WithListingWriter, log and listing output
// are captured in a MemorySink and surfaced on the returned Result.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.catalog == nil {
		e.catalog = catalog.New()
	}
	if e.log == nil {
		e.log = sink.NewMemorySink()
	}
	if e.listing == nil {
		e.listing = sink.NewMemorySink()
	}
	return e
}

// Catalog exposes the Engine's Catalog for read-only inspection between
// Eval calls (e.g. to list datasets a script created).
func (e *Engine) Catalog() *catalog.Catalog { return e.catalog }

// Result is one Eval call's outcome.
type Result struct {
	ExitStatus interp.ExitStatus
	Log        string
	Listing    string
}

// Success reports whether the run completed with no WARNING or ERROR
// diagnostics (spec.md §6's ExitClean).
func (r *Result) Success() bool { return r.ExitStatus == interp.ExitClean }

// Eval lexes, parses, and runs source against the Engine's Catalog. A
// non-nil error means the program never reached the interpreter at all
// (a lex/parse failure); diagnostics from a partially-failed run are
// instead reported through Result.ExitStatus and Result.Log, matching
// pkg/dwscript's Eval(source) (*Result, error) split between "couldn't
// even compile" and "ran, but reported errors".
func (e *Engine) Eval(source string) (*Result, error) {
	l := lexer.New(source)
	p := parser.New(l)
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, pe := range errs {
			msgs[i] = pe.String()
		}
		return &Result{ExitStatus: interp.ExitParseFailure}, fmt.Errorf("parse failed: %s", strings.Join(msgs, "; "))
	}

	logSink, listingSink := e.log, e.listing
	var memLog, memListing *sink.MemorySink
	if m, ok := logSink.(*sink.MemorySink); ok {
		m.Entries = nil // Result.Log covers this call only
		memLog = m
	}
	if m, ok := listingSink.(*sink.MemorySink); ok {
		m.Entries = nil // Result.Listing covers this call only
		memListing = m
	}

	ip := interp.New(e.catalog, logSink, listingSink)
	status := ip.Run(prog, source)

	result := &Result{ExitStatus: status}
	if memLog != nil {
		result.Log = memLog.Text()
	}
	if memListing != nil {
		result.Listing = memListing.Text()
	}
	return result, nil
}

// Execute is a one-shot convenience wrapper around New(opts...).Eval(source)
// for callers that don't need the Catalog to persist across calls.
func Execute(source string, opts ...Option) (*Result, error) {
	return New(opts...).Eval(source)
}
