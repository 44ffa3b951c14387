// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

// Package ast defines the tree-shaped node model used throughout the
// pipeline: Block, Statement, Expression and Prefix are closed tagged
// unions, every syntactically significant position carries a Token, and a
// SourceRegistry interns file paths into dense ids shared across a run.
//
// There is no cyclic ownership: every node owns its tokens and children, and
// traversals (Walk, ScopeWalk) borrow them. Parent links are never stored on
// a node; a visitor that needs them threads a stack itself.
package ast

// Block is the universal unit of traversal: an ordered sequence of
// statements optionally closed by a jump-like last statement.
type Block struct {
	Statements []Statement
	Last       LastStatement // nil if the block falls off the end
}

// Statement is the closed union of statement forms.
type Statement interface {
	isStatement()
}

// LastStatement is the closed union of block terminators.
type LastStatement interface {
	isLastStatement()
}

// Expression is the closed union of expression forms. Prefix is the
// grammatical subset that may be used as a statement target or receive
// `.field`, `[index]`, or call syntax.
type Expression interface {
	isExpression()
}

// Prefix is the subset of Expression that may precede `.field`, `[index]`,
// or call syntax: identifiers, field access, index, call, and parenthesized
// expressions.
type Prefix interface {
	Expression
	isPrefix()
}

// ---- statements ----

// LocalAssignStatement declares one or more locals, optionally initialized.
type LocalAssignStatement struct {
	LocalToken Token
	Names      []Token // identifier tokens
	EqualToken *Token  // nil if there are no values
	Values     []Expression
}

func (*LocalAssignStatement) isStatement() {}

// AssignStatement assigns to one or more existing variables/fields/indexes.
type AssignStatement struct {
	Variables  []Prefix
	EqualToken Token
	Values     []Expression
}

func (*AssignStatement) isStatement() {}

// CallStatement is a call used in statement position. When a require-like
// call is rewritten to something other than a call expression, the bundler
// wraps it in a DoStatement binding a throwaway local instead of using
// CallStatement (see bundle/moduledef).
type CallStatement struct {
	Call *CallExpression
}

func (*CallStatement) isStatement() {}

// DoStatement is an explicit `do ... end` block, used both literally and by
// the module-definition builder to wrap a statement-position expression that
// is no longer callable.
type DoStatement struct {
	DoToken  Token
	Body     Block
	EndToken Token
}

func (*DoStatement) isStatement() {}

// IfClause is one `if`/`elseif` arm of an IfStatement.
type IfClause struct {
	Condition Expression
	Body      Block
}

// IfStatement is a statement-level if/elseif/else chain.
type IfStatement struct {
	Clauses  []IfClause
	Else     *Block
	EndToken Token
}

func (*IfStatement) isStatement() {}

// RepeatStatement is `repeat ... until <cond>`.
type RepeatStatement struct {
	Body      Block
	Condition Expression
}

func (*RepeatStatement) isStatement() {}

// WhileStatement is `while <cond> do ... end`.
type WhileStatement struct {
	Condition Expression
	Body      Block
}

func (*WhileStatement) isStatement() {}

// NumericForStatement is `for i = start, stop[, step] do ... end`.
type NumericForStatement struct {
	Variable          Token
	Start, Stop, Step Expression
	Body              Block
}

func (*NumericForStatement) isStatement() {}

// GenericForStatement is `for k, v in <exprs> do ... end`.
type GenericForStatement struct {
	Variables []Token
	Values    []Expression
	Body      Block
}

func (*GenericForStatement) isStatement() {}

// FunctionStatement is sugar for `[local] function name(...) ... end`,
// including dotted/method names (`function a.b:c(...)`).
type FunctionStatement struct {
	IsLocal    bool
	NameChain  []Token // a, b in `a.b.c`
	MethodName *Token  // c in `a.b:c`, nil for plain function statements
	Function   *FunctionExpression
}

func (*FunctionStatement) isStatement() {}

// ---- last statements ----

// ReturnStatement is the optional trailing `return <exprs>`.
type ReturnStatement struct {
	Token  Token
	Values []Expression
}

func (*ReturnStatement) isLastStatement() {}

// BreakStatement is the optional trailing `break`.
type BreakStatement struct {
	Token Token
}

func (*BreakStatement) isLastStatement() {}

// ContinueStatement is the optional trailing `continue` (a target-language
// extension beyond standard Lua, carried because spec.md names it).
type ContinueStatement struct {
	Token Token
}

func (*ContinueStatement) isLastStatement() {}

// ---- literal / compound expressions ----

// NilExpression is the `nil` literal.
type NilExpression struct{ Token Token }

func (*NilExpression) isExpression() {}

// TrueExpression is the `true` literal.
type TrueExpression struct{ Token Token }

func (*TrueExpression) isExpression() {}

// FalseExpression is the `false` literal.
type FalseExpression struct{ Token Token }

func (*FalseExpression) isExpression() {}

// NumberExpression is a numeric literal; Value holds its parsed value.
type NumberExpression struct {
	Token Token
	Value float64
}

func (*NumberExpression) isExpression() {}

// StringExpression is a string literal; Value holds its decoded content.
type StringExpression struct {
	Token Token
	Value string
}

func (*StringExpression) isExpression() {}

// VariadicExpression is `...`.
type VariadicExpression struct{ Token Token }

func (*VariadicExpression) isExpression() {}

// UnaryOperator enumerates unary operators.
type UnaryOperator int

const (
	UnaryMinus UnaryOperator = iota
	UnaryNot
	UnaryLength
)

// UnaryExpression is a unary operator applied to an operand.
type UnaryExpression struct {
	Operator      UnaryOperator
	OperatorToken Token
	Operand       Expression
}

func (*UnaryExpression) isExpression() {}

// BinaryOperator enumerates binary operators.
type BinaryOperator int

const (
	BinaryPlus BinaryOperator = iota
	BinaryMinus
	BinaryAsterisk
	BinarySlash
	BinaryPercent
	BinaryCaret
	BinaryConcat
	BinaryEqual
	BinaryNotEqual
	BinaryLessThan
	BinaryLessOrEqual
	BinaryGreaterThan
	BinaryGreaterOrEqual
	BinaryAnd
	BinaryOr
)

// BinaryExpression is a binary operator applied to two operands.
type BinaryExpression struct {
	Operator      BinaryOperator
	OperatorToken Token
	Left, Right   Expression
}

func (*BinaryExpression) isExpression() {}

// ElseIfExpression is one `elseif <cond> then <expr>` arm of an IfExpression.
type ElseIfExpression struct {
	Condition Expression
	Result    Expression
}

// IfExpression is the value-producing `if <cond> then <expr> [elseif ...] else <expr>`.
type IfExpression struct {
	Condition Expression
	Then      Expression
	ElseIfs   []ElseIfExpression
	Else      Expression
}

func (*IfExpression) isExpression() {}

// FunctionExpression is an (optionally variadic) anonymous function literal.
type FunctionExpression struct {
	FunctionToken Token
	Parameters    []Token
	IsVariadic    bool
	Body          Block
	EndToken      Token
}

func (*FunctionExpression) isExpression() {}

// TableField is one entry of a TableExpression. Key is nil for array-style
// entries (`{1, 2, 3}`); otherwise it holds either a StringExpression (for
// `name = value`) or an arbitrary Expression (for `[expr] = value`).
type TableField struct {
	Key   Expression
	Value Expression
}

// TableExpression is a table constructor `{ ... }`.
type TableExpression struct {
	OpenToken  Token
	Fields     []TableField
	CloseToken Token
}

func (*TableExpression) isExpression() {}

// ---- prefixes ----

// IdentifierExpression is a bare name reference.
type IdentifierExpression struct {
	Token Token
	Name  string
}

func (*IdentifierExpression) isExpression() {}
func (*IdentifierExpression) isPrefix()     {}

// FieldExpression is `<prefix>.<name>`.
type FieldExpression struct {
	Prefix   Prefix
	DotToken Token
	Name     Token
}

func (*FieldExpression) isExpression() {}
func (*FieldExpression) isPrefix()     {}

// IndexExpression is `<prefix>[<index>]`.
type IndexExpression struct {
	Prefix     Prefix
	OpenToken  Token
	Index      Expression
	CloseToken Token
}

func (*IndexExpression) isExpression() {}
func (*IndexExpression) isPrefix()     {}

// Arguments is the closed union of call argument forms.
type Arguments interface {
	isArguments()
}

// TupleArguments is `(<exprs>)`.
type TupleArguments struct {
	OpenToken  Token
	Values     []Expression
	CloseToken Token
}

func (*TupleArguments) isArguments() {}

// StringArguments is a call with a single string-literal argument and no
// parentheses, e.g. `require "value"`.
type StringArguments struct {
	Value *StringExpression
}

func (*StringArguments) isArguments() {}

// TableArguments is a call with a single table-constructor argument and no
// parentheses, e.g. `f { ... }`.
type TableArguments struct {
	Value *TableExpression
}

func (*TableArguments) isArguments() {}

// CallExpression is `<prefix>(...)` or `<prefix>:<method>(...)`.
type CallExpression struct {
	Prefix      Prefix
	ColonToken  *Token
	MethodToken *Token // non-nil for method calls
	Arguments   Arguments
}

func (c *CallExpression) IsMethodCall() bool { return c.MethodToken != nil }

func (*CallExpression) isExpression() {}
func (*CallExpression) isPrefix()     {}

// ParentheseExpression is `(<expr>)`, transparent to instance-path parsing
// but significant for call-vs-no-call disambiguation (`(f())` truncates to
// one value).
type ParentheseExpression struct {
	OpenToken  Token
	Inner      Expression
	CloseToken Token
}

func (*ParentheseExpression) isExpression() {}
func (*ParentheseExpression) isPrefix()     {}
