// Package parser implements a one-token-lookahead recursive-descent parser
// that turns a token stream into the ast.Program tree (spec.md §4.2).
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cwbudde/gosas/internal/ast"
	"github.com/cwbudde/gosas/internal/lexer"
	"github.com/cwbudde/gosas/internal/token"
)

// ParseError carries a position and message, matching spec.md §7's
// requirement that parse errors carry source position.
type ParseError struct {
	Pos     token.Position
	Message string
}

func (e ParseError) String() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Parser is a recursive-descent parser over a lexer.Lexer's token stream.
type Parser struct {
	l    *lexer.Lexer
	cur  token.Token
	peek token.Token

	errors []ParseError
}

// New creates a Parser reading from l.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.next()
	p.next()
	return p
}

// Errors returns accumulated parse errors, each carrying position (spec.md §7).
func (p *Parser) Errors() []ParseError { return p.errors }

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) curIs(t token.Type) bool  { return p.cur.Type == t }
func (p *Parser) peekIs(t token.Type) bool { return p.peek.Type == t }

func (p *Parser) errorf(format string, args ...any) {
	p.errors = append(p.errors, ParseError{Pos: p.cur.Pos, Message: fmt.Sprintf(format, args...)})
}

// expect consumes cur if it has type t, else records an error and leaves
// cur in place (the caller's synchronize path will skip forward).
func (p *Parser) expect(t token.Type) bool {
	if p.curIs(t) {
		p.next()
		return true
	}
	p.errorf("expected %s, got %s (%q)", t, p.cur.Type, p.cur.Literal)
	return false
}

// synchronize implements spec.md §4.2's error-recovery rule: on a parse
// error inside a DATA/PROC step, consume tokens up to the next ';' then the
// next "run ;" and resume there.
func (p *Parser) synchronize() {
	for !p.curIs(token.SEMI) && !p.curIs(token.EOF) {
		p.next()
	}
	if p.curIs(token.SEMI) {
		p.next()
	}
	for {
		if p.curIs(token.EOF) {
			return
		}
		if p.curIs(token.RUN) {
			p.next()
			if p.curIs(token.SEMI) {
				p.next()
			}
			return
		}
		p.next()
	}
}

// ParseProgram parses the whole token stream into a Program. DATA and PROC
// steps resynchronize internally on error (spec.md §4.2); this loop's own
// guard only has to cover the remaining top-level forms (LIBNAME, OPTIONS,
// TITLE, and stray tokens), by forcing forward progress if a statement
// consumed no tokens at all.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}
	for !p.curIs(token.EOF) {
		startPos := p.cur.Pos
		stmt := p.parseTopLevelStatement()
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
		if p.cur.Pos == startPos && !p.curIs(token.EOF) {
			p.synchronize()
		}
	}
	return prog
}

func (p *Parser) parseTopLevelStatement() ast.Statement {
	switch p.cur.Type {
	case token.DATA:
		return p.parseDataStep()
	case token.PROC:
		return p.parseProc()
	case token.LIBNAME:
		return p.parseLibname()
	case token.OPTIONS:
		return p.parseOptions()
	case token.TITLE:
		return p.parseTitle()
	case token.SEMI:
		p.next() // stray semicolon
		return nil
	default:
		p.errorf("unexpected top-level token %s (%q)", p.cur.Type, p.cur.Literal)
		p.next()
		return nil
	}
}

func (p *Parser) parseLibname() ast.Statement {
	pos := p.cur.Pos
	p.next() // libname
	libref := p.cur.Literal
	p.expect(token.IDENT)
	path := p.cur.Literal
	if p.curIs(token.STRING) {
		p.next()
	} else {
		p.errorf("expected quoted path, got %s", p.cur.Type)
	}
	p.expect(token.SEMI)
	return &ast.LibnameStmt{TokPos: pos, Libref: libref, Path: path}
}

func (p *Parser) parseOptions() ast.Statement {
	pos := p.cur.Pos
	p.next() // options
	var pairs []ast.OptionPair
	for !p.curIs(token.SEMI) && !p.curIs(token.EOF) {
		key := p.cur.Literal
		p.next()
		val := ""
		if p.curIs(token.ASSIGN) {
			p.next()
			val = p.cur.Literal
			p.next()
		}
		pairs = append(pairs, ast.OptionPair{Key: key, Value: val})
	}
	p.expect(token.SEMI)
	return &ast.OptionsStmt{TokPos: pos, Pairs: pairs}
}

func (p *Parser) parseTitle() ast.Statement {
	pos := p.cur.Pos
	p.next() // title
	text := p.cur.Literal
	if p.curIs(token.STRING) {
		p.next()
	}
	p.expect(token.SEMI)
	return &ast.TitleStmt{TokPos: pos, Text: text}
}

// parseDatasetName parses "libref.name" or a bare "name".
func (p *Parser) parseDatasetName() string {
	name := p.cur.Literal
	p.next()
	if p.curIs(token.DOT) {
		p.next()
		name = name + "." + p.cur.Literal
		p.next()
	}
	return name
}

func (p *Parser) parseDataStep() *ast.DataStep {
	pos := p.cur.Pos
	p.next() // data
	output := p.parseDatasetName()
	p.expect(token.SEMI)

	step := &ast.DataStep{TokPos: pos, Output: output}
	for !p.curIs(token.RUN) && !p.curIs(token.EOF) {
		if p.curIs(token.SET) {
			p.next()
			step.Input = p.parseDatasetName()
			p.expect(token.SEMI)
			continue
		}
		before := len(p.errors)
		stmt := p.parseDataBodyStatement()
		if len(p.errors) > before {
			// spec.md §4.2: resynchronize to the next ';' then the next
			// "run ;", abandoning the remainder of this step's body.
			p.synchronize()
			return step
		}
		if stmt != nil {
			step.Body = append(step.Body, stmt)
		}
	}
	if p.curIs(token.RUN) {
		p.next()
		p.expect(token.SEMI)
	}
	return step
}

// parseDataBodyStatement parses one statement inside a DATA step body.
func (p *Parser) parseDataBodyStatement() ast.Statement {
	switch p.cur.Type {
	case token.IF:
		return p.parseIfThenElse()
	case token.DO:
		return p.parseDoLoop()
	case token.OUTPUT:
		pos := p.cur.Pos
		p.next()
		p.expect(token.SEMI)
		return &ast.OutputStmt{TokPos: pos}
	case token.DROP:
		return p.parseNameListStmt(func(pos token.Position, names []string) ast.Statement {
			return &ast.DropStmt{TokPos: pos, Names: names}
		})
	case token.KEEP:
		return p.parseNameListStmt(func(pos token.Position, names []string) ast.Statement {
			return &ast.KeepStmt{TokPos: pos, Names: names}
		})
	case token.VAR:
		// "var v1 v2;" inside PROC bodies reuses the same name-list shape;
		// inside a DATA step it is not a SAS statement, but it is accepted
		// and treated as a KEEP list rather than erroring the whole step.
		return p.parseNameListStmt(func(pos token.Position, names []string) ast.Statement {
			return &ast.KeepStmt{TokPos: pos, Names: names}
		})
	case token.RETAIN:
		return p.parseRetain()
	case token.LENGTH:
		return p.parseLength()
	case token.ARRAY:
		return p.parseArray()
	case token.MERGE:
		return p.parseMerge()
	case token.BY:
		return p.parseBy()
	case token.INPUT:
		return p.parseInput()
	case token.DATALINES:
		return p.parseDatalines()
	case token.IDENT:
		return p.parseAssignment()
	case token.SEMI:
		p.next()
		return nil
	default:
		p.errorf("unexpected statement token %s (%q) in data step", p.cur.Type, p.cur.Literal)
		return nil
	}
}

func (p *Parser) parseNameListStmt(build func(token.Position, []string) ast.Statement) ast.Statement {
	pos := p.cur.Pos
	p.next() // keyword
	var names []string
	for p.curIs(token.IDENT) {
		names = append(names, p.cur.Literal)
		p.next()
	}
	p.expect(token.SEMI)
	return build(pos, names)
}

func (p *Parser) parseRetain() ast.Statement {
	pos := p.cur.Pos
	p.next() // retain
	var names []string
	var inits []ast.Expression
	for p.curIs(token.IDENT) || p.isLiteralStart() {
		if p.curIs(token.IDENT) {
			names = append(names, p.cur.Literal)
			p.next()
			inits = append(inits, nil)
		} else {
			// an initial value immediately following the preceding name
			if len(inits) > 0 {
				inits[len(inits)-1] = p.parseExpression(lowest)
			} else {
				p.parseExpression(lowest)
			}
		}
	}
	p.expect(token.SEMI)
	return &ast.RetainStmt{TokPos: pos, Names: names, Inits: inits}
}

func (p *Parser) isLiteralStart() bool {
	return p.curIs(token.NUMBER) || p.curIs(token.STRING)
}

func (p *Parser) parseLength() ast.Statement {
	pos := p.cur.Pos
	p.next() // length
	var names []string
	isChar := false
	charLen := 0
	for p.curIs(token.IDENT) {
		names = append(names, p.cur.Literal)
		p.next()
	}
	if p.curIs(token.DOLLAR) {
		isChar = true
		p.next()
		if p.curIs(token.NUMBER) {
			n, _ := strconv.Atoi(p.cur.Literal)
			charLen = n
			p.next()
		}
	}
	p.expect(token.SEMI)
	return &ast.LengthStmt{TokPos: pos, Names: names, IsChar: isChar, CharLength: charLen}
}

func (p *Parser) parseArray() ast.Statement {
	pos := p.cur.Pos
	p.next() // array
	name := p.cur.Literal
	p.expect(token.IDENT)
	size := 0
	if p.curIs(token.LBRACK) {
		p.next()
		if p.curIs(token.NUMBER) {
			size, _ = strconv.Atoi(p.cur.Literal)
			p.next()
		} else if p.curIs(token.MUL) {
			p.next() // array[*] sized by var-list length; resolved below
		}
		p.expect(token.RBRACK)
	}
	var vars []string
	for p.curIs(token.IDENT) {
		vars = append(vars, p.cur.Literal)
		p.next()
	}
	p.expect(token.SEMI)
	if size == 0 {
		size = len(vars)
	}
	return &ast.ArrayStmt{TokPos: pos, Name: name, Size: size, Vars: vars}
}

func (p *Parser) parseMerge() ast.Statement {
	pos := p.cur.Pos
	p.next() // merge
	var sets []string
	for p.curIs(token.IDENT) {
		sets = append(sets, p.parseDatasetName())
	}
	p.expect(token.SEMI)
	return &ast.MergeStmt{TokPos: pos, Datasets: sets}
}

func (p *Parser) parseBy() ast.Statement {
	pos := p.cur.Pos
	p.next() // by
	var names []string
	for p.curIs(token.IDENT) {
		names = append(names, p.cur.Literal)
		p.next()
	}
	p.expect(token.SEMI)
	return &ast.ByStmt{TokPos: pos, Names: names}
}

func (p *Parser) parseInput() ast.Statement {
	pos := p.cur.Pos
	p.next() // input
	var vars []ast.InputVar
	for p.curIs(token.IDENT) {
		name := p.cur.Literal
		p.next()
		isChar := false
		if p.curIs(token.DOLLAR) {
			isChar = true
			p.next()
		}
		vars = append(vars, ast.InputVar{Name: name, IsChar: isChar})
	}
	p.expect(token.SEMI)
	return &ast.InputStmt{TokPos: pos, Vars: vars}
}

func (p *Parser) parseDatalines() ast.Statement {
	pos := p.cur.Pos
	if !p.peekIs(token.SEMI) {
		p.next() // datalines
		p.expect(token.SEMI)
		return &ast.DatalinesStmt{TokPos: pos}
	}
	// cur is DATALINES and peek is its ';', so the lexer sits just past that
	// ';': read the raw lines before pulling any further token.
	lines := p.l.ReadDatalinesBody()
	// The lexer's cooperative mode already consumed through the
	// terminating lone ';' line; resync the parser's lookahead buffer.
	p.cur = p.l.NextToken()
	p.peek = p.l.NextToken()
	return &ast.DatalinesStmt{TokPos: pos, Lines: lines}
}

func (p *Parser) parseAssignment() ast.Statement {
	pos := p.cur.Pos
	name := p.cur.Literal
	p.next()
	if !p.expect(token.ASSIGN) {
		// try to recover locally rather than dropping the whole statement
	}
	val := p.parseExpression(lowest)
	p.expect(token.SEMI)
	return &ast.Assignment{TokPos: pos, Name: name, Value: val}
}

// parseStatementOrBlock parses either a single statement, or, when cur is
// DO, a "do ; ... ; end ;" block, returning its statement list.
func (p *Parser) parseStatementOrBlock() []ast.Statement {
	if p.curIs(token.DO) {
		block := p.parseDoLoop()
		return block.Body
	}
	stmt := p.parseDataBodyStatement()
	if stmt == nil {
		return nil
	}
	return []ast.Statement{stmt}
}

func (p *Parser) parseIfThenElse() ast.Statement {
	pos := p.cur.Pos
	p.next() // if
	cond := p.parseExpression(lowest)
	p.expect(token.THEN)
	body := p.parseStatementOrBlock()

	node := &ast.IfThenElse{TokPos: pos, Cond: cond, Body: body}
	for p.curIs(token.ELSE) && p.peekIs(token.IF) {
		p.next() // else
		p.next() // if
		c := p.parseExpression(lowest)
		p.expect(token.THEN)
		b := p.parseStatementOrBlock()
		node.ElseIfs = append(node.ElseIfs, ast.ElseIf{Cond: c, Body: b})
	}
	if p.curIs(token.ELSE) {
		p.next()
		node.ElseBody = p.parseStatementOrBlock()
	}
	return node
}

func (p *Parser) parseDoLoop() *ast.DoLoop {
	pos := p.cur.Pos
	p.next() // do
	node := &ast.DoLoop{TokPos: pos}

	switch {
	case p.curIs(token.WHILE):
		p.next()
		p.expect(token.LPAREN)
		node.CondKind = "while"
		node.Cond = p.parseExpression(lowest)
		p.expect(token.RPAREN)
	case p.curIs(token.UNTIL):
		p.next()
		p.expect(token.LPAREN)
		node.CondKind = "until"
		node.Cond = p.parseExpression(lowest)
		p.expect(token.RPAREN)
	case p.curIs(token.IDENT) && p.peekIs(token.ASSIGN):
		node.LoopVar = p.cur.Literal
		p.next() // var
		p.next() // =
		node.Start = p.parseExpression(lowest)
		if p.curIs(token.DOWNTO) {
			node.Downto = true
			p.next()
		} else {
			p.expect(token.TO)
		}
		node.End = p.parseExpression(lowest)
		if p.curIs(token.BY) {
			p.next()
			node.Step = p.parseExpression(lowest)
		}
	}

	p.expect(token.SEMI)
	for !p.curIs(token.END) && !p.curIs(token.EOF) {
		stmt := p.parseDataBodyStatement()
		if stmt != nil {
			node.Body = append(node.Body, stmt)
		}
	}
	p.expect(token.END)
	p.expect(token.SEMI)
	return node
}

// --- PROC steps ---

func (p *Parser) parseProc() ast.Statement {
	p.next() // proc
	switch strings.ToLower(p.cur.Literal) {
	case "sort":
		return p.parseProcSort()
	case "print":
		return p.parseProcPrint()
	case "means", "summary":
		return p.parseProcMeans()
	case "freq":
		return p.parseProcFreq()
	default:
		p.errorf("unsupported PROC %q", p.cur.Literal)
		return nil
	}
}

// parseProcHeaderOptions parses "data=NAME" / "out=NAME" / "obs=N" style
// parenthesized-or-bare option tokens that follow a PROC keyword, up to ';'.
// A bare option word with no '=' (e.g. NODUPKEY) is recorded with an empty
// value.
func (p *Parser) parseProcHeaderOptions() map[string]string {
	opts := make(map[string]string)
	for !p.curIs(token.SEMI) && !p.curIs(token.EOF) && !p.curIs(token.RUN) {
		key := strings.ToLower(p.cur.Literal)
		p.next()
		if !p.curIs(token.ASSIGN) {
			opts[key] = ""
			continue
		}
		p.next()
		val := p.parseDatasetName()
		opts[key] = val
		if p.curIs(token.LPAREN) {
			p.next()
			for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
				k2 := strings.ToLower(p.cur.Literal)
				p.next()
				if p.curIs(token.ASSIGN) {
					p.next()
				}
				v2 := p.cur.Literal
				p.next()
				opts[k2] = v2
			}
			p.expect(token.RPAREN)
		}
	}
	return opts
}

func (p *Parser) parseProcSort() ast.Statement {
	pos := p.cur.Pos
	p.next() // sort
	opts := p.parseProcHeaderOptions()
	p.expect(token.SEMI)

	node := &ast.ProcSort{TokPos: pos, Input: opts["data"], Output: opts["out"]}
	if _, ok := opts["nodupkey"]; ok {
		node.NoDupKey = true
	}
	for !p.curIs(token.RUN) && !p.curIs(token.EOF) {
		switch p.cur.Type {
		case token.BY:
			p.next()
			for p.curIs(token.IDENT) {
				node.By = append(node.By, p.cur.Literal)
				p.next()
			}
			p.expect(token.SEMI)
		case token.WHERE:
			p.next()
			node.Where = p.parseExpression(lowest)
			p.expect(token.SEMI)
		case token.NODUPKEY, token.DUPLICATES:
			node.NoDupKey = true
			p.next()
			p.expect(token.SEMI)
		default:
			p.errorf("unexpected token %s in proc sort", p.cur.Type)
			p.next()
		}
	}
	if p.curIs(token.RUN) {
		p.next()
		p.expect(token.SEMI)
	}
	return node
}

func (p *Parser) parseProcPrint() ast.Statement {
	pos := p.cur.Pos
	p.next() // print
	opts := p.parseProcHeaderOptions()
	p.expect(token.SEMI)

	node := &ast.ProcPrint{TokPos: pos, Data: opts["data"]}
	if obs, ok := opts["obs"]; ok {
		n, _ := strconv.Atoi(obs)
		node.Obs = n
	}
	for !p.curIs(token.RUN) && !p.curIs(token.EOF) {
		switch p.cur.Type {
		case token.VAR:
			p.next()
			for p.curIs(token.IDENT) {
				node.Vars = append(node.Vars, p.cur.Literal)
				p.next()
			}
			p.expect(token.SEMI)
		case token.NOOBS:
			node.NoObs = true
			p.next()
			p.expect(token.SEMI)
		default:
			p.errorf("unexpected token %s in proc print", p.cur.Type)
			p.next()
		}
	}
	if p.curIs(token.RUN) {
		p.next()
		p.expect(token.SEMI)
	}
	return node
}

func (p *Parser) parseProcMeans() ast.Statement {
	pos := p.cur.Pos
	p.next() // means
	opts := p.parseProcHeaderOptions()
	p.expect(token.SEMI)

	node := &ast.ProcMeans{TokPos: pos, Data: opts["data"]}
	for !p.curIs(token.RUN) && !p.curIs(token.EOF) {
		if p.curIs(token.VAR) {
			p.next()
			for p.curIs(token.IDENT) {
				node.Vars = append(node.Vars, p.cur.Literal)
				p.next()
			}
			p.expect(token.SEMI)
		} else {
			p.errorf("unexpected token %s in proc means", p.cur.Type)
			p.next()
		}
	}
	if p.curIs(token.RUN) {
		p.next()
		p.expect(token.SEMI)
	}
	return node
}

func (p *Parser) parseProcFreq() ast.Statement {
	pos := p.cur.Pos
	p.next() // freq
	opts := p.parseProcHeaderOptions()
	p.expect(token.SEMI)

	node := &ast.ProcFreq{TokPos: pos, Data: opts["data"]}
	for !p.curIs(token.RUN) && !p.curIs(token.EOF) {
		if p.curIs(token.TABLES) {
			p.next()
			for p.curIs(token.IDENT) {
				node.Tables = append(node.Tables, p.cur.Literal)
				p.next()
			}
			p.expect(token.SEMI)
		} else {
			p.errorf("unexpected token %s in proc freq", p.cur.Type)
			p.next()
		}
	}
	if p.curIs(token.RUN) {
		p.next()
		p.expect(token.SEMI)
	}
	return node
}
