// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package generate

import (
	"strconv"
	"strings"

	"github.com/dark-lua/darklua-core/ast"
	"github.com/dark-lua/darklua-core/sourcemap"
)

type printer struct {
	opts  Options
	buf   strings.Builder
	depth int

	retainLines bool
	compact     bool
	pretty      bool // Readable or either retain-lines mode: indent + spacing

	haveOrigin bool
	origSource ast.SourceID
	origLine   int

	// generated output position, tracked regardless of mode so a map, when
	// requested, can be built from any of the four generators.
	line, col int

	sourceMap *sourcemap.Builder
	sources   *ast.SourceRegistry
}

func newPrinter(opts Options) *printer {
	p := &printer{opts: opts, line: 1}
	switch opts.Mode {
	case Readable:
		p.pretty = true
	case RetainLines:
		p.pretty = true
		p.retainLines = true
	case RetainLinesCompact:
		p.pretty = true
		p.retainLines = true
		p.compact = true
	}
	return p
}

func (p *printer) write(s string) {
	p.buf.WriteString(s)
	for _, r := range s {
		if r == '\n' {
			p.line++
			p.col = 0
		} else {
			p.col++
		}
	}
}

func (p *printer) writeByte(c byte) {
	p.buf.WriteByte(c)
	if c == '\n' {
		p.line++
		p.col = 0
	} else {
		p.col++
	}
}

// mark records a source map mapping for the token about to be written, if a
// map is being built and the token carries a non-synthetic origin.
func (p *printer) mark(t ast.Token, name string) {
	if p.sourceMap == nil || t.Origin().IsSynthetic() {
		return
	}
	path, ok := p.sources.Path(t.Source)
	if !ok {
		return
	}
	p.sourceMap.Add(p.line, p.col, path, t.Line, 0, name)
}

func (p *printer) indent() {
	if !p.pretty {
		return
	}
	p.write(strings.Repeat(" ", p.depth*p.opts.IndentWidth))
}

func (p *printer) newline() {
	if p.pretty {
		p.writeByte('\n')
	} else {
		p.writeByte(' ')
	}
}

// pad emits blank lines so the upcoming token's own output line matches its
// source origin as closely as possible, when retain-lines tracking is on.
func (p *printer) pad(origin ast.Origin) {
	if !p.retainLines || origin.IsSynthetic() {
		return
	}
	if p.haveOrigin && origin.Source == p.origSource && origin.Line > p.origLine {
		gap := origin.Line - p.origLine - 1
		if p.compact && gap > 1 {
			gap = 1
		}
		for i := 0; i < gap; i++ {
			p.writeByte('\n')
		}
	}
	p.haveOrigin = true
	p.origSource = origin.Source
	p.origLine = origin.Line
}

func (p *printer) comments(t ast.Token) {
	if !p.pretty {
		return
	}
	for _, trivia := range t.Leading {
		if trivia.Kind != ast.Comment {
			continue
		}
		p.indent()
		p.write(strings.TrimRight(trivia.Content, " \t"))
		p.writeByte('\n')
	}
}

func (p *printer) writeBlock(b *ast.Block, topLevel bool) {
	if !topLevel {
		p.depth++
	}
	for _, stmt := range b.Statements {
		p.writeStatement(stmt)
	}
	if b.Last != nil {
		p.writeLastStatement(b.Last)
	}
	if !topLevel {
		p.depth--
	}
}

func (p *printer) statementOrigin(stmt interface{}) ast.Origin {
	if tok, ok := ast.FirstToken(stmt); ok {
		return tok.Origin()
	}
	return ast.Origin{}
}

func (p *printer) writeStatement(stmt ast.Statement) {
	origin := p.statementOrigin(stmt)
	p.pad(origin)
	firstTok, hasTok := ast.FirstToken(stmt)
	if hasTok {
		p.comments(firstTok)
	}
	p.indent()
	if hasTok {
		p.mark(firstTok, "")
	}
	switch n := stmt.(type) {
	case *ast.LocalAssignStatement:
		p.kw("local")
		p.nameList(n.Names)
		if len(n.Values) > 0 {
			p.opSpace("=")
			p.exprList(n.Values)
		}
	case *ast.AssignStatement:
		for i, v := range n.Variables {
			if i > 0 {
				p.write(", ")
			}
			p.writeExpression(v)
		}
		p.opSpace("=")
		p.exprList(n.Values)
	case *ast.CallStatement:
		p.writeExpression(n.Call)
	case *ast.DoStatement:
		p.kw("do")
		p.newline()
		p.writeBlock(&n.Body, false)
		p.indent()
		p.write("end")
	case *ast.IfStatement:
		p.writeIfStatement(n)
	case *ast.RepeatStatement:
		p.write("repeat")
		p.newline()
		p.writeBlock(&n.Body, false)
		p.indent()
		p.kw("until")
		p.writeExpression(n.Condition)
	case *ast.WhileStatement:
		p.kw("while")
		p.writeExpression(n.Condition)
		p.space()
		p.write("do")
		p.newline()
		p.writeBlock(&n.Body, false)
		p.indent()
		p.write("end")
	case *ast.NumericForStatement:
		p.kw("for")
		p.write(n.Variable.Content)
		p.write(" = ")
		p.writeExpression(n.Start)
		p.write(", ")
		p.writeExpression(n.Stop)
		if n.Step != nil {
			p.write(", ")
			p.writeExpression(n.Step)
		}
		p.space()
		p.write("do")
		p.newline()
		p.writeBlock(&n.Body, false)
		p.indent()
		p.write("end")
	case *ast.GenericForStatement:
		p.kw("for")
		for i, v := range n.Variables {
			if i > 0 {
				p.write(", ")
			}
			p.write(v.Content)
		}
		p.write(" in ")
		p.exprList(n.Values)
		p.space()
		p.write("do")
		p.newline()
		p.writeBlock(&n.Body, false)
		p.indent()
		p.write("end")
	case *ast.FunctionStatement:
		p.writeFunctionStatement(n)
	}
	p.newline()
}

func (p *printer) writeIfStatement(n *ast.IfStatement) {
	for i, clause := range n.Clauses {
		if i == 0 {
			p.write("if")
		} else {
			p.indent()
			p.write("elseif")
		}
		p.space()
		p.writeExpression(clause.Condition)
		p.space()
		p.write("then")
		p.newline()
		p.writeBlock(&clause.Body, false)
	}
	if n.Else != nil {
		p.indent()
		p.write("else")
		p.newline()
		p.writeBlock(n.Else, false)
	}
	p.indent()
	p.write("end")
}

func (p *printer) writeFunctionStatement(n *ast.FunctionStatement) {
	if n.IsLocal {
		p.kw("local")
	}
	p.kw("function")
	names := make([]string, len(n.NameChain))
	for i, tok := range n.NameChain {
		names[i] = tok.Content
	}
	p.write(strings.Join(names, "."))
	if n.MethodName != nil {
		p.writeByte(':')
		p.write(n.MethodName.Content)
	}
	p.writeFunctionTail(n.Function)
}

func (p *printer) writeFunctionTail(fn *ast.FunctionExpression) {
	p.writeByte('(')
	for i, param := range fn.Parameters {
		if i > 0 {
			p.write(", ")
		}
		p.write(param.Content)
	}
	if fn.IsVariadic {
		if len(fn.Parameters) > 0 {
			p.write(", ")
		}
		p.write("...")
	}
	p.writeByte(')')
	p.newline()
	p.writeBlock(&fn.Body, false)
	p.indent()
	p.write("end")
}

func (p *printer) writeLastStatement(stmt ast.LastStatement) {
	origin := p.statementOrigin(stmt)
	p.pad(origin)
	firstTok, hasTok := ast.FirstToken(stmt)
	if hasTok {
		p.comments(firstTok)
	}
	p.indent()
	if hasTok {
		p.mark(firstTok, "")
	}
	switch n := stmt.(type) {
	case *ast.ReturnStatement:
		p.write("return")
		if len(n.Values) > 0 {
			p.writeByte(' ')
			p.exprList(n.Values)
		}
	case *ast.BreakStatement:
		p.write("break")
	case *ast.ContinueStatement:
		p.write("continue")
	}
	p.newline()
}

func (p *printer) nameList(names []ast.Token) {
	for i, n := range names {
		if i > 0 {
			p.write(", ")
		}
		p.write(n.Content)
	}
}

func (p *printer) exprList(exprs []ast.Expression) {
	for i, e := range exprs {
		if i > 0 {
			p.write(", ")
		}
		p.writeExpression(e)
	}
}

func (p *printer) kw(word string) {
	p.write(word)
	p.writeByte(' ')
}

func (p *printer) space() {
	p.writeByte(' ')
}

func (p *printer) opSpace(op string) {
	if p.pretty {
		p.writeByte(' ')
		p.write(op)
		p.writeByte(' ')
	} else {
		p.write(op)
	}
}

func (p *printer) writeExpression(expr ast.Expression) {
	switch n := expr.(type) {
	case *ast.NilExpression:
		p.mark(n.Token, "")
		p.write("nil")
	case *ast.TrueExpression:
		p.mark(n.Token, "")
		p.write("true")
	case *ast.FalseExpression:
		p.mark(n.Token, "")
		p.write("false")
	case *ast.VariadicExpression:
		p.mark(n.Token, "")
		p.write("...")
	case *ast.NumberExpression:
		p.mark(n.Token, "")
		p.write(formatNumber(n))
	case *ast.StringExpression:
		p.mark(n.Token, "")
		p.write(quoteString(n.Value))
	case *ast.IdentifierExpression:
		p.mark(n.Token, n.Name)
		p.write(n.Name)
	case *ast.UnaryExpression:
		p.write(unarySymbol(n.Operator))
		if n.Operator == unaryKeywordNot {
			p.writeByte(' ')
		}
		p.writeExpression(n.Operand)
	case *ast.BinaryExpression:
		p.writeExpression(n.Left)
		p.opSpaceBinary(n.Operator)
		p.writeExpression(n.Right)
	case *ast.FunctionExpression:
		p.write("function")
		p.writeFunctionTail(n)
	case *ast.IfExpression:
		p.write("if ")
		p.writeExpression(n.Condition)
		p.write(" then ")
		p.writeExpression(n.Then)
		for _, ei := range n.ElseIfs {
			p.write(" elseif ")
			p.writeExpression(ei.Condition)
			p.write(" then ")
			p.writeExpression(ei.Result)
		}
		p.write(" else ")
		p.writeExpression(n.Else)
	case *ast.TableExpression:
		p.writeTable(n)
	case *ast.FieldExpression:
		p.writeExpression(n.Prefix)
		p.writeByte('.')
		p.write(n.Name.Content)
	case *ast.IndexExpression:
		p.writeExpression(n.Prefix)
		p.writeByte('[')
		p.writeExpression(n.Index)
		p.writeByte(']')
	case *ast.CallExpression:
		p.writeExpression(n.Prefix)
		if n.IsMethodCall() {
			p.writeByte(':')
			p.write(n.MethodToken.Content)
		}
		p.writeArguments(n.Arguments)
	case *ast.ParentheseExpression:
		p.writeByte('(')
		p.writeExpression(n.Inner)
		p.writeByte(')')
	}
}

func (p *printer) writeTable(n *ast.TableExpression) {
	p.writeByte('{')
	if len(n.Fields) > 0 {
		p.space()
	}
	for i, f := range n.Fields {
		if i > 0 {
			p.write(", ")
		}
		switch key := f.Key.(type) {
		case nil:
			p.writeExpression(f.Value)
		case *ast.StringExpression:
			p.write(key.Value)
			p.opSpace("=")
			p.writeExpression(f.Value)
		default:
			p.writeByte('[')
			p.writeExpression(key)
			p.write("] = ")
			p.writeExpression(f.Value)
		}
	}
	if len(n.Fields) > 0 {
		p.space()
	}
	p.writeByte('}')
}

func (p *printer) writeArguments(args ast.Arguments) {
	switch a := args.(type) {
	case *ast.TupleArguments:
		p.writeByte('(')
		p.exprList(a.Values)
		p.writeByte(')')
	case *ast.StringArguments:
		p.writeExpression(a.Value)
	case *ast.TableArguments:
		p.writeTable(a.Value)
	}
}

const unaryKeywordNot = ast.UnaryNot

func unarySymbol(op ast.UnaryOperator) string {
	switch op {
	case ast.UnaryMinus:
		return "-"
	case ast.UnaryNot:
		return "not"
	case ast.UnaryLength:
		return "#"
	default:
		return "?"
	}
}

var binarySymbols = map[ast.BinaryOperator]string{
	ast.BinaryPlus:           "+",
	ast.BinaryMinus:          "-",
	ast.BinaryAsterisk:       "*",
	ast.BinarySlash:          "/",
	ast.BinaryPercent:        "%",
	ast.BinaryCaret:          "^",
	ast.BinaryConcat:         "..",
	ast.BinaryEqual:          "==",
	ast.BinaryNotEqual:       "~=",
	ast.BinaryLessThan:       "<",
	ast.BinaryLessOrEqual:    "<=",
	ast.BinaryGreaterThan:    ">",
	ast.BinaryGreaterOrEqual: ">=",
	ast.BinaryAnd:            "and",
	ast.BinaryOr:             "or",
}

func (p *printer) opSpaceBinary(op ast.BinaryOperator) {
	sym := binarySymbols[op]
	switch op {
	case ast.BinaryAnd, ast.BinaryOr:
		p.writeByte(' ')
		p.write(sym)
		p.writeByte(' ')
	default:
		p.opSpace(sym)
	}
}

func formatNumber(n *ast.NumberExpression) string {
	if n.Value == float64(int64(n.Value)) {
		return strconv.FormatInt(int64(n.Value), 10)
	}
	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}

func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
