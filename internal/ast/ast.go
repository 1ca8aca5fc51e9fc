// Package ast defines the tagged-variant statement and expression tree
// produced by the parser and walked by the interpreter.
package ast

import "github.com/cwbudde/gosas/internal/token"

// Node is implemented by every AST node so positions are always available
// for diagnostics.
type Node interface {
	Pos() token.Position
}

// Statement is implemented by every statement-level node.
type Statement interface {
	Node
	statementNode()
}

// Expression is implemented by every expression-level node.
type Expression interface {
	Node
	expressionNode()
}

// Program is the root node: an ordered sequence of top-level statements.
type Program struct {
	Statements []Statement
}

func (p *Program) Pos() token.Position {
	if len(p.Statements) == 0 {
		return token.Position{Line: 1, Column: 1}
	}
	return p.Statements[0].Pos()
}
