// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package parser

import (
	"fmt"
	"strconv"

	"github.com/dark-lua/darklua-core/ast"
)

// Parse turns content into a Block, tagging every token with sourceID so
// later origin comparisons (cache lookups, retain-lines generation) know
// which file it came from. path is used only for error messages.
func Parse(content []byte, path string, sourceID ast.SourceID) (block *ast.Block, err error) {
	toks, lexErr := lex(string(content))
	if lexErr != nil {
		return nil, fmt.Errorf("%s: %w", path, lexErr)
	}
	p := &parser{toks: toks, sourceID: sourceID, path: path}
	defer func() {
		if r := recover(); r != nil {
			pe, ok := r.(parseErr)
			if !ok {
				panic(r)
			}
			block, err = nil, pe.err
		}
	}()
	block = p.parseBlock()
	if p.cur().kind != tkEOF {
		return nil, fmt.Errorf("%s:%d: unexpected token %q", path, p.cur().line, p.cur().content)
	}
	return block, nil
}

type parser struct {
	toks     []rawToken
	pos      int
	sourceID ast.SourceID
	path     string
}

func (p *parser) cur() rawToken  { return p.toks[p.pos] }
func (p *parser) peekAt(o int) rawToken {
	if p.pos+o >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+o]
}

func (p *parser) token() ast.Token {
	t := p.cur()
	return ast.Token{Content: t.content, Line: t.line, Source: p.sourceID, Leading: t.leading}
}

func (p *parser) advance() ast.Token {
	t := p.token()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) isKeyword(word string) bool {
	t := p.cur()
	return t.kind == tkKeyword && t.content == word
}

func (p *parser) isSymbol(sym string) bool {
	t := p.cur()
	return t.kind == tkSymbol && t.content == sym
}

func (p *parser) expectKeyword(word string) (ast.Token, error) {
	if !p.isKeyword(word) {
		return ast.Token{}, p.errorf("expected %q", word)
	}
	return p.advance(), nil
}

func (p *parser) expectSymbol(sym string) (ast.Token, error) {
	if !p.isSymbol(sym) {
		return ast.Token{}, p.errorf("expected %q", sym)
	}
	return p.advance(), nil
}

func (p *parser) expectIdentifier() (ast.Token, error) {
	if p.cur().kind != tkIdentifier {
		return ast.Token{}, p.errorf("expected identifier")
	}
	return p.advance(), nil
}

func (p *parser) errorf(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s:%d: %s (found %q)", p.path, p.cur().line, msg, p.cur().content)
}

func blockEnd(t rawToken) bool {
	if t.kind == tkEOF {
		return true
	}
	if t.kind != tkKeyword {
		return false
	}
	switch t.content {
	case "end", "else", "elseif", "until":
		return true
	}
	return false
}

// parseBlock is infallible by signature: on the first statement error it
// panics with a parseErr, which Parse recovers and returns as an error.
func (p *parser) parseBlock() *ast.Block {
	block := &ast.Block{}
	for !blockEnd(p.cur()) {
		if p.isKeyword("return") {
			last, err := p.parseReturn()
			if err != nil {
				p.panicErr(err)
			}
			block.Last = last
			break
		}
		if p.isKeyword("break") {
			block.Last = &ast.BreakStatement{Token: p.advance()}
			break
		}
		if p.isKeyword("continue") {
			block.Last = &ast.ContinueStatement{Token: p.advance()}
			break
		}
		stmt, err := p.parseStatement()
		if err != nil {
			p.panicErr(err)
		}
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
	}
	return block
}

// parseErr is used to unwind parseBlock via panic/recover, since the
// original recursive-descent shape (one function per grammar production,
// each returning (node, error)) would otherwise require every caller in the
// block loop to propagate errors by hand through a function that the
// exported Parse signature expects to return a bare *Block.
type parseErr struct{ err error }

func (p *parser) panicErr(err error) { panic(parseErr{err}) }

func (p *parser) parseReturn() (ast.LastStatement, error) {
	tok := p.advance()
	ret := &ast.ReturnStatement{Token: tok}
	if blockEnd(p.cur()) || p.isSymbol(";") {
		if p.isSymbol(";") {
			p.advance()
		}
		return ret, nil
	}
	values, err := p.parseExpressionList()
	if err != nil {
		return nil, err
	}
	ret.Values = values
	if p.isSymbol(";") {
		p.advance()
	}
	return ret, nil
}

func (p *parser) parseStatement() (ast.Statement, error) {
	if p.isSymbol(";") {
		p.advance()
		return nil, nil
	}
	switch {
	case p.isKeyword("local"):
		return p.parseLocal()
	case p.isKeyword("do"):
		return p.parseDo()
	case p.isKeyword("if"):
		return p.parseIf()
	case p.isKeyword("while"):
		return p.parseWhile()
	case p.isKeyword("repeat"):
		return p.parseRepeat()
	case p.isKeyword("for"):
		return p.parseFor()
	case p.isKeyword("function"):
		return p.parseFunctionStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *parser) parseLocal() (ast.Statement, error) {
	localTok := p.advance()
	if p.isKeyword("function") {
		p.advance()
		name, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		fn, err := p.parseFunctionBody()
		if err != nil {
			return nil, err
		}
		return &ast.FunctionStatement{IsLocal: true, NameChain: []ast.Token{name}, Function: fn}, nil
	}
	names := []ast.Token{}
	for {
		name, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		names = append(names, name)
		if p.isSymbol(",") {
			p.advance()
			continue
		}
		break
	}
	stmt := &ast.LocalAssignStatement{LocalToken: localTok, Names: names}
	if p.isSymbol("=") {
		eq := p.advance()
		stmt.EqualToken = &eq
		values, err := p.parseExpressionList()
		if err != nil {
			return nil, err
		}
		stmt.Values = values
	}
	return stmt, nil
}

func (p *parser) parseDo() (ast.Statement, error) {
	doTok := p.advance()
	body := p.parseBlock()
	end, err := p.expectKeyword("end")
	if err != nil {
		return nil, err
	}
	return &ast.DoStatement{DoToken: doTok, Body: *body, EndToken: end}, nil
}

func (p *parser) parseIf() (ast.Statement, error) {
	p.advance()
	stmt := &ast.IfStatement{}
	for {
		cond, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectKeyword("then"); err != nil {
			return nil, err
		}
		body := p.parseBlock()
		stmt.Clauses = append(stmt.Clauses, ast.IfClause{Condition: cond, Body: *body})
		if p.isKeyword("elseif") {
			p.advance()
			continue
		}
		break
	}
	if p.isKeyword("else") {
		p.advance()
		body := p.parseBlock()
		stmt.Else = body
	}
	end, err := p.expectKeyword("end")
	if err != nil {
		return nil, err
	}
	stmt.EndToken = end
	return stmt, nil
}

func (p *parser) parseWhile() (ast.Statement, error) {
	p.advance()
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("do"); err != nil {
		return nil, err
	}
	body := p.parseBlock()
	if _, err := p.expectKeyword("end"); err != nil {
		return nil, err
	}
	return &ast.WhileStatement{Condition: cond, Body: *body}, nil
}

func (p *parser) parseRepeat() (ast.Statement, error) {
	p.advance()
	body := p.parseBlock()
	if _, err := p.expectKeyword("until"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.RepeatStatement{Body: *body, Condition: cond}, nil
}

func (p *parser) parseFor() (ast.Statement, error) {
	p.advance()
	first, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	if p.isSymbol("=") {
		p.advance()
		start, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectSymbol(","); err != nil {
			return nil, err
		}
		stop, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		var step ast.Expression
		if p.isSymbol(",") {
			p.advance()
			step, err = p.parseExpression()
			if err != nil {
				return nil, err
			}
		}
		if _, err := p.expectKeyword("do"); err != nil {
			return nil, err
		}
		body := p.parseBlock()
		if _, err := p.expectKeyword("end"); err != nil {
			return nil, err
		}
		return &ast.NumericForStatement{Variable: first, Start: start, Stop: stop, Step: step, Body: *body}, nil
	}

	names := []ast.Token{first}
	for p.isSymbol(",") {
		p.advance()
		n, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	if _, err := p.expectKeyword("in"); err != nil {
		return nil, err
	}
	values, err := p.parseExpressionList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("do"); err != nil {
		return nil, err
	}
	body := p.parseBlock()
	if _, err := p.expectKeyword("end"); err != nil {
		return nil, err
	}
	return &ast.GenericForStatement{Variables: names, Values: values, Body: *body}, nil
}

func (p *parser) parseFunctionStatement() (ast.Statement, error) {
	p.advance()
	first, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	chain := []ast.Token{first}
	var method *ast.Token
	for p.isSymbol(".") {
		p.advance()
		n, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		chain = append(chain, n)
	}
	if p.isSymbol(":") {
		p.advance()
		n, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		method = &n
	}
	fn, err := p.parseFunctionBody()
	if err != nil {
		return nil, err
	}
	if method != nil {
		fn.Parameters = append([]ast.Token{{Content: "self"}}, fn.Parameters...)
	}
	return &ast.FunctionStatement{NameChain: chain, MethodName: method, Function: fn}, nil
}

func (p *parser) parseFunctionBody() (*ast.FunctionExpression, error) {
	fnTok := p.toks[p.pos-1]
	fn := &ast.FunctionExpression{FunctionToken: ast.Token{Content: fnTok.content, Line: fnTok.line, Source: p.sourceID}}
	if _, err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	for !p.isSymbol(")") {
		if p.isSymbol("...") {
			p.advance()
			fn.IsVariadic = true
			break
		}
		name, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		fn.Parameters = append(fn.Parameters, name)
		if p.isSymbol(",") {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expectSymbol(")"); err != nil {
		return nil, err
	}
	fn.Body = *p.parseBlock()
	end, err := p.expectKeyword("end")
	if err != nil {
		return nil, err
	}
	fn.EndToken = end
	return fn, nil
}

func (p *parser) parseExpressionStatement() (ast.Statement, error) {
	prefix, err := p.parsePrefixExpression()
	if err != nil {
		return nil, err
	}
	if call, ok := prefix.(*ast.CallExpression); ok && !p.isSymbol("=") && !p.isSymbol(",") {
		return &ast.CallStatement{Call: call}, nil
	}
	targets := []ast.Prefix{prefix}
	for p.isSymbol(",") {
		p.advance()
		next, err := p.parsePrefixExpression()
		if err != nil {
			return nil, err
		}
		targets = append(targets, next)
	}
	eq, err := p.expectSymbol("=")
	if err != nil {
		return nil, err
	}
	values, err := p.parseExpressionList()
	if err != nil {
		return nil, err
	}
	return &ast.AssignStatement{Variables: targets, EqualToken: eq, Values: values}, nil
}

func (p *parser) parseExpressionList() ([]ast.Expression, error) {
	var out []ast.Expression
	for {
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
		if p.isSymbol(",") {
			p.advance()
			continue
		}
		break
	}
	return out, nil
}

// binaryPrecedence gives each operator's binding power; higher binds
// tighter. `..` and `^` are right-associative, handled in parseBinaryExpr.
var binaryPrecedence = map[string]int{
	"or": 1, "and": 2,
	"<": 3, ">": 3, "<=": 3, ">=": 3, "~=": 3, "==": 3,
	"..": 4,
	"+": 5, "-": 5,
	"*": 6, "/": 6, "%": 6,
	"^": 8,
}

var binaryOperators = map[string]ast.BinaryOperator{
	"+": ast.BinaryPlus, "-": ast.BinaryMinus, "*": ast.BinaryAsterisk,
	"/": ast.BinarySlash, "%": ast.BinaryPercent, "^": ast.BinaryCaret,
	"..": ast.BinaryConcat, "==": ast.BinaryEqual, "~=": ast.BinaryNotEqual,
	"<": ast.BinaryLessThan, "<=": ast.BinaryLessOrEqual,
	">": ast.BinaryGreaterThan, ">=": ast.BinaryGreaterOrEqual,
	"and": ast.BinaryAnd, "or": ast.BinaryOr,
}

const unaryPrecedence = 7

func (p *parser) parseExpression() (ast.Expression, error) {
	return p.parseBinaryExpr(0)
}

func (p *parser) curOperator() (string, bool) {
	t := p.cur()
	if t.kind == tkSymbol {
		if _, ok := binaryPrecedence[t.content]; ok {
			return t.content, true
		}
	}
	if t.kind == tkKeyword && (t.content == "and" || t.content == "or") {
		return t.content, true
	}
	return "", false
}

func (p *parser) parseBinaryExpr(minPrec int) (ast.Expression, error) {
	left, err := p.parseUnaryExpr()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.curOperator()
		if !ok {
			return left, nil
		}
		prec := binaryPrecedence[op]
		if prec < minPrec {
			return left, nil
		}
		opTok := p.advance()
		nextMin := prec + 1
		if op == ".." || op == "^" {
			nextMin = prec // right-associative
		}
		right, err := p.parseBinaryExpr(nextMin)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpression{
			Operator:      binaryOperators[op],
			OperatorToken: opTok,
			Left:          left,
			Right:         right,
		}
	}
}

func (p *parser) parseUnaryExpr() (ast.Expression, error) {
	if p.isKeyword("not") {
		tok := p.advance()
		operand, err := p.parseBinaryExpr(unaryPrecedence)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpression{Operator: ast.UnaryNot, OperatorToken: tok, Operand: operand}, nil
	}
	if p.isSymbol("-") {
		tok := p.advance()
		operand, err := p.parseBinaryExpr(unaryPrecedence)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpression{Operator: ast.UnaryMinus, OperatorToken: tok, Operand: operand}, nil
	}
	if p.isSymbol("#") {
		tok := p.advance()
		operand, err := p.parseBinaryExpr(unaryPrecedence)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpression{Operator: ast.UnaryLength, OperatorToken: tok, Operand: operand}, nil
	}
	return p.parseSimpleExpr()
}

func (p *parser) parseSimpleExpr() (ast.Expression, error) {
	t := p.cur()
	switch {
	case t.kind == tkKeyword && t.content == "nil":
		return &ast.NilExpression{Token: p.advance()}, nil
	case t.kind == tkKeyword && t.content == "true":
		return &ast.TrueExpression{Token: p.advance()}, nil
	case t.kind == tkKeyword && t.content == "false":
		return &ast.FalseExpression{Token: p.advance()}, nil
	case t.kind == tkNumber:
		tok := p.advance()
		val, err := parseNumber(tok.Content)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", p.path, tok.Line, err)
		}
		return &ast.NumberExpression{Token: tok, Value: val}, nil
	case t.kind == tkString:
		tok := p.advance()
		return &ast.StringExpression{Token: tok, Value: decodeString(tok.Content)}, nil
	case t.kind == tkSymbol && t.content == "...":
		return &ast.VariadicExpression{Token: p.advance()}, nil
	case t.kind == tkKeyword && t.content == "function":
		p.advance()
		return p.parseFunctionBody()
	case t.kind == tkSymbol && t.content == "{":
		return p.parseTableExpression()
	case t.kind == tkKeyword && t.content == "if":
		return p.parseIfExpression()
	default:
		return p.parsePrefixExpression()
	}
}

func parseNumber(content string) (float64, error) {
	return strconv.ParseFloat(content, 64)
}

func (p *parser) parseIfExpression() (ast.Expression, error) {
	p.advance()
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("then"); err != nil {
		return nil, err
	}
	then, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	expr := &ast.IfExpression{Condition: cond, Then: then}
	for p.isKeyword("elseif") {
		p.advance()
		c, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectKeyword("then"); err != nil {
			return nil, err
		}
		r, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		expr.ElseIfs = append(expr.ElseIfs, ast.ElseIfExpression{Condition: c, Result: r})
	}
	if _, err := p.expectKeyword("else"); err != nil {
		return nil, err
	}
	els, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	expr.Else = els
	return expr, nil
}

func (p *parser) parseTableExpression() (ast.Expression, error) {
	open, err := p.expectSymbol("{")
	if err != nil {
		return nil, err
	}
	table := &ast.TableExpression{OpenToken: open}
	for !p.isSymbol("}") {
		field, err := p.parseTableField()
		if err != nil {
			return nil, err
		}
		table.Fields = append(table.Fields, field)
		if p.isSymbol(",") || p.isSymbol(";") {
			p.advance()
			continue
		}
		break
	}
	close, err := p.expectSymbol("}")
	if err != nil {
		return nil, err
	}
	table.CloseToken = close
	return table, nil
}

func (p *parser) parseTableField() (ast.TableField, error) {
	if p.isSymbol("[") {
		p.advance()
		key, err := p.parseExpression()
		if err != nil {
			return ast.TableField{}, err
		}
		if _, err := p.expectSymbol("]"); err != nil {
			return ast.TableField{}, err
		}
		if _, err := p.expectSymbol("="); err != nil {
			return ast.TableField{}, err
		}
		value, err := p.parseExpression()
		if err != nil {
			return ast.TableField{}, err
		}
		return ast.TableField{Key: key, Value: value}, nil
	}
	if p.cur().kind == tkIdentifier && p.peekAt(1).kind == tkSymbol && p.peekAt(1).content == "=" {
		nameTok := p.advance()
		p.advance() // '='
		value, err := p.parseExpression()
		if err != nil {
			return ast.TableField{}, err
		}
		key := &ast.StringExpression{Token: nameTok, Value: nameTok.Content}
		return ast.TableField{Key: key, Value: value}, nil
	}
	value, err := p.parseExpression()
	if err != nil {
		return ast.TableField{}, err
	}
	return ast.TableField{Value: value}, nil
}

func (p *parser) parsePrefixExpression() (ast.Prefix, error) {
	var prefix ast.Prefix
	if p.isSymbol("(") {
		open := p.advance()
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		close, err := p.expectSymbol(")")
		if err != nil {
			return nil, err
		}
		prefix = &ast.ParentheseExpression{OpenToken: open, Inner: inner, CloseToken: close}
	} else {
		name, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		prefix = &ast.IdentifierExpression{Token: name, Name: name.Content}
	}

	for {
		switch {
		case p.isSymbol("."):
			dot := p.advance()
			name, err := p.expectIdentifier()
			if err != nil {
				return nil, err
			}
			prefix = &ast.FieldExpression{Prefix: prefix, DotToken: dot, Name: name}
		case p.isSymbol("["):
			open := p.advance()
			index, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			close, err := p.expectSymbol("]")
			if err != nil {
				return nil, err
			}
			prefix = &ast.IndexExpression{Prefix: prefix, OpenToken: open, Index: index, CloseToken: close}
		case p.isSymbol(":"):
			colon := p.advance()
			method, err := p.expectIdentifier()
			if err != nil {
				return nil, err
			}
			args, err := p.parseArguments()
			if err != nil {
				return nil, err
			}
			prefix = &ast.CallExpression{Prefix: prefix, ColonToken: &colon, MethodToken: &method, Arguments: args}
		case p.isSymbol("(") || p.isSymbol("{") || p.cur().kind == tkString:
			args, err := p.parseArguments()
			if err != nil {
				return nil, err
			}
			prefix = &ast.CallExpression{Prefix: prefix, Arguments: args}
		default:
			return prefix, nil
		}
	}
}

func (p *parser) parseArguments() (ast.Arguments, error) {
	switch {
	case p.isSymbol("("):
		open := p.advance()
		var values []ast.Expression
		if !p.isSymbol(")") {
			list, err := p.parseExpressionList()
			if err != nil {
				return nil, err
			}
			values = list
		}
		close, err := p.expectSymbol(")")
		if err != nil {
			return nil, err
		}
		return &ast.TupleArguments{OpenToken: open, Values: values, CloseToken: close}, nil
	case p.isSymbol("{"):
		table, err := p.parseTableExpression()
		if err != nil {
			return nil, err
		}
		return &ast.TableArguments{Value: table.(*ast.TableExpression)}, nil
	case p.cur().kind == tkString:
		tok := p.advance()
		return &ast.StringArguments{Value: &ast.StringExpression{Token: tok, Value: decodeString(tok.Content)}}, nil
	default:
		return nil, p.errorf("expected call arguments")
	}
}
