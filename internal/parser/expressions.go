package parser

import (
	"strconv"

	"github.com/cwbudde/gosas/internal/ast"
	"github.com/cwbudde/gosas/internal/token"
)

// Precedence levels, lowest first, matching spec.md §4.2's expression
// grammar (logical-or, logical-and, equality, relational, additive,
// multiplicative, unary, power, primary).
const (
	lowest int = iota
	precOr
	precAnd
	precEquality
	precRelational
	precAdditive
	precMultiplicative
	precUnary
	precPower
)

// binaryPrecedence covers every left-associative binary operator. "**" is
// handled separately by parsePower since it binds tighter than unary minus
// and is right-associative (spec.md §4.2).
var binaryPrecedence = map[token.Type]int{
	token.OR:    precOr,
	token.AND:   precAnd,
	token.EQ:    precEquality,
	token.NE:    precEquality,
	token.LT:    precRelational,
	token.LE:    precRelational,
	token.GT:    precRelational,
	token.GE:    precRelational,
	token.PLUS:  precAdditive,
	token.MINUS: precAdditive,
	token.MUL:   precMultiplicative,
	token.DIV:   precMultiplicative,
}

// parseExpression is standard left-associative precedence climbing: it
// keeps consuming operators whose precedence is strictly greater than the
// caller's floor, recursing at that operator's own precedence so that
// same-precedence operators are consumed iteratively (left-associative)
// rather than recursively (right-associative).
func (p *Parser) parseExpression(precedence int) ast.Expression {
	left := p.parseUnary()

	for {
		opPrec, ok := binaryPrecedence[p.cur.Type]
		if !ok || opPrec <= precedence {
			break
		}
		op := p.cur.Type
		pos := p.cur.Pos
		p.next()
		right := p.parseExpression(opPrec)
		left = &ast.BinaryOp{TokPos: pos, Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseUnary() ast.Expression {
	if p.curIs(token.MINUS) || p.curIs(token.NOT) {
		op := p.cur.Type
		pos := p.cur.Pos
		p.next()
		operand := p.parseUnary()
		return &ast.UnaryOp{TokPos: pos, Op: op, Operand: operand}
	}
	return p.parsePower()
}

// parsePower binds "**" tighter than unary so "-x ** 2" parses as
// "-(x ** 2)", matching spec.md §4.2's precedence ordering (unary below
// power).
func (p *Parser) parsePower() ast.Expression {
	left := p.parsePrimary()
	if p.curIs(token.POWER) {
		pos := p.cur.Pos
		p.next()
		right := p.parseUnary() // right-associative
		return &ast.BinaryOp{TokPos: pos, Op: token.POWER, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parsePrimary() ast.Expression {
	switch p.cur.Type {
	case token.NUMBER:
		pos := p.cur.Pos
		f, err := strconv.ParseFloat(p.cur.Literal, 64)
		if err != nil {
			p.errorf("invalid number literal %q", p.cur.Literal)
		}
		p.next()
		return &ast.NumberLiteral{TokPos: pos, Value: f}
	case token.STRING:
		pos := p.cur.Pos
		s := p.cur.Literal
		p.next()
		return &ast.StringLiteral{TokPos: pos, Value: s}
	case token.LPAREN:
		p.next()
		inner := p.parseExpression(lowest)
		p.expect(token.RPAREN)
		return inner
	case token.IDENT:
		pos := p.cur.Pos
		name := p.cur.Literal
		p.next()
		switch {
		case p.curIs(token.LPAREN):
			p.next()
			var args []ast.Expression
			for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
				args = append(args, p.parseExpression(lowest))
				if p.curIs(token.COMMA) {
					p.next()
				}
			}
			p.expect(token.RPAREN)
			return &ast.FunctionCall{TokPos: pos, Name: name, Args: args}
		case p.curIs(token.LBRACK):
			p.next()
			idx := p.parseExpression(lowest)
			p.expect(token.RBRACK)
			return &ast.ArrayElement{TokPos: pos, Name: name, Index: idx}
		default:
			return &ast.VariableRef{TokPos: pos, Name: name}
		}
	default:
		p.errorf("unexpected token %s (%q) in expression", p.cur.Type, p.cur.Literal)
		pos := p.cur.Pos
		p.next()
		return &ast.NumberLiteral{TokPos: pos, Value: 0}
	}
}
