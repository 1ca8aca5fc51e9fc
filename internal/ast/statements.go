package ast

import "github.com/cwbudde/gosas/internal/token"

// DataStep is "data NAME ; <body> run ;". Input is the SET source dataset
// name, if any (mutually exclusive with a Merge statement inside Body).
type DataStep struct {
	TokPos    token.Position
	Output    string
	Input     string
	Body      []Statement
}

func (n *DataStep) Pos() token.Position { return n.TokPos }
func (*DataStep) statementNode()        {}

// OptionsStmt is "options k=v k2=v2 ;".
type OptionsStmt struct {
	TokPos token.Position
	Pairs  []OptionPair
}

type OptionPair struct {
	Key   string
	Value string
}

func (n *OptionsStmt) Pos() token.Position { return n.TokPos }
func (*OptionsStmt) statementNode()        {}

// LibnameStmt is "libname LIBREF 'path' ;".
type LibnameStmt struct {
	TokPos token.Position
	Libref string
	Path   string
}

func (n *LibnameStmt) Pos() token.Position { return n.TokPos }
func (*LibnameStmt) statementNode()        {}

// TitleStmt is "title 'text' ;".
type TitleStmt struct {
	TokPos token.Position
	Text   string
}

func (n *TitleStmt) Pos() token.Position { return n.TokPos }
func (*TitleStmt) statementNode()        {}

// Assignment is "name = expr ;".
type Assignment struct {
	TokPos token.Position
	Name   string
	Value  Expression
}

func (n *Assignment) Pos() token.Position { return n.TokPos }
func (*Assignment) statementNode()        {}

// ElseIf is one "else if cond then <body>" branch.
type ElseIf struct {
	Cond Expression
	Body []Statement
}

// IfThenElse is "if cond then <body> [else if ... ]* [else <body>]".
// A single-statement THEN/ELSE (no DO..END) is represented as a one-element
// Body slice.
type IfThenElse struct {
	TokPos   token.Position
	Cond     Expression
	Body     []Statement
	ElseIfs  []ElseIf
	ElseBody []Statement // nil when no ELSE branch is present
}

func (n *IfThenElse) Pos() token.Position { return n.TokPos }
func (*IfThenElse) statementNode()        {}

// DoLoop covers both the iterative "do var = start to/downto end by step"
// form and the conditional "do while(cond)"/"do until(cond)" form.
// LoopVar == "" and Cond == nil together mean a plain "do ; ... ; end ;"
// block with no looping at all.
type DoLoop struct {
	TokPos  token.Position
	LoopVar string
	Start   Expression
	End     Expression
	Step    Expression
	Downto  bool

	CondKind string // "", "while", or "until"
	Cond     Expression

	Body []Statement
}

func (n *DoLoop) Pos() token.Position { return n.TokPos }
func (*DoLoop) statementNode()        {}

// OutputStmt is a bare "output ;" statement.
type OutputStmt struct {
	TokPos token.Position
}

func (n *OutputStmt) Pos() token.Position { return n.TokPos }
func (*OutputStmt) statementNode()        {}

// DropStmt is "drop v1 v2 ... ;".
type DropStmt struct {
	TokPos token.Position
	Names  []string
}

func (n *DropStmt) Pos() token.Position { return n.TokPos }
func (*DropStmt) statementNode()        {}

// KeepStmt is "keep v1 v2 ... ;".
type KeepStmt struct {
	TokPos token.Position
	Names  []string
}

func (n *KeepStmt) Pos() token.Position { return n.TokPos }
func (*KeepStmt) statementNode()        {}

// RetainStmt is "retain v1 v2 ... [initial values] ;". Inits is parallel to
// Names; an entry is nil when no initial value was given for that name.
type RetainStmt struct {
	TokPos token.Position
	Names  []string
	Inits  []Expression
}

func (n *RetainStmt) Pos() token.Position { return n.TokPos }
func (*RetainStmt) statementNode()        {}

// LengthStmt is "length v1 v2 $8 ;" — predeclares a character length
// without assigning a value (SPEC_FULL §3 supplement).
type LengthStmt struct {
	TokPos     token.Position
	Names      []string
	IsChar     bool
	CharLength int
}

func (n *LengthStmt) Pos() token.Position { return n.TokPos }
func (*LengthStmt) statementNode()        {}

// ArrayStmt is "array NAME[size] v1 v2 ... ;".
type ArrayStmt struct {
	TokPos token.Position
	Name   string
	Size   int
	Vars   []string
}

func (n *ArrayStmt) Pos() token.Position { return n.TokPos }
func (*ArrayStmt) statementNode()        {}

// MergeStmt is "merge ds1 ds2 ... ;".
type MergeStmt struct {
	TokPos   token.Position
	Datasets []string
}

func (n *MergeStmt) Pos() token.Position { return n.TokPos }
func (*MergeStmt) statementNode()        {}

// ByStmt is "by v1 v2 ... ;".
type ByStmt struct {
	TokPos token.Position
	Names  []string
}

func (n *ByStmt) Pos() token.Position { return n.TokPos }
func (*ByStmt) statementNode()        {}

// InputVar is one (name, is-character) pair from an INPUT statement.
type InputVar struct {
	Name      string
	IsChar    bool
}

// InputStmt is "input name $ age ... ;".
type InputStmt struct {
	TokPos token.Position
	Vars   []InputVar
}

func (n *InputStmt) Pos() token.Position { return n.TokPos }
func (*InputStmt) statementNode()        {}

// DatalinesStmt carries the raw text lines collected by the lexer's
// cooperative datalines mode.
type DatalinesStmt struct {
	TokPos token.Position
	Lines  []string
}

func (n *DatalinesStmt) Pos() token.Position { return n.TokPos }
func (*DatalinesStmt) statementNode()        {}

// WhereStmt is "where cond ;" used inside a PROC SORT.
type WhereStmt struct {
	TokPos token.Position
	Cond   Expression
}

func (n *WhereStmt) Pos() token.Position { return n.TokPos }
func (*WhereStmt) statementNode()        {}

// ProcSort is "proc sort data=IN out=OUT; by v1 v2; [where ...] [nodupkey] run;".
type ProcSort struct {
	TokPos    token.Position
	Input     string
	Output    string // "" means overwrite Input
	By        []string
	NoDupKey  bool
	Where     Expression
}

func (n *ProcSort) Pos() token.Position { return n.TokPos }
func (*ProcSort) statementNode()        {}

// ProcPrint is "proc print data=DS (obs=N); var v1 v2; [noobs] run;".
type ProcPrint struct {
	TokPos token.Position
	Data   string
	Obs    int // 0 means unlimited
	Vars   []string
	NoObs  bool
}

func (n *ProcPrint) Pos() token.Position { return n.TokPos }
func (*ProcPrint) statementNode()        {}

// ProcMeans is "proc means data=DS; var v1 v2; run;".
type ProcMeans struct {
	TokPos token.Position
	Data   string
	Vars   []string
}

func (n *ProcMeans) Pos() token.Position { return n.TokPos }
func (*ProcMeans) statementNode()        {}

// ProcFreq is "proc freq data=DS; tables v1 v2; run;" — each named variable
// gets its own one-way frequency table (spec.md §4.8).
type ProcFreq struct {
	TokPos token.Position
	Data   string
	Tables []string
}

func (n *ProcFreq) Pos() token.Position { return n.TokPos }
func (*ProcFreq) statementNode()        {}
