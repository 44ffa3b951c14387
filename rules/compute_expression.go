// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package rules

import (
	"github.com/dark-lua/darklua-core/ast"
	"github.com/dark-lua/darklua-core/eval"
)

// ComputeExpressionRuleName is the rule's configuration key.
const ComputeExpressionRuleName = "compute_expression"

// ComputeExpression folds any expression with no side effects down to its
// literal value wherever the evaluator can prove what that value is. It is
// the exemplar rule: it never needs another resource's content, so it never
// returns *RequiresContent.
type ComputeExpression struct{}

func (ComputeExpression) Name() string { return ComputeExpressionRuleName }

func (r ComputeExpression) Process(block *ast.Block, ctx *Context) error {
	c := computer{instancePure: ctx.InstanceIndexingIsPure}
	c.processBlock(block)
	return nil
}

// computer carries the purity setting through the recursive fold so the
// free-standing traversal functions don't need a Context parameter.
type computer struct {
	instancePure bool
}

func (c computer) processBlock(block *ast.Block) {
	for _, stmt := range block.Statements {
		c.processStatement(stmt)
	}
	if block.Last != nil {
		c.processLastStatement(block.Last)
	}
}

func (c computer) processStatement(stmt ast.Statement) {
	switch n := stmt.(type) {
	case *ast.LocalAssignStatement:
		for i := range n.Values {
			n.Values[i] = c.processExpression(n.Values[i])
		}
	case *ast.AssignStatement:
		for i := range n.Values {
			n.Values[i] = c.processExpression(n.Values[i])
		}
	case *ast.CallStatement:
		c.processCall(n.Call)
	case *ast.DoStatement:
		c.processBlock(&n.Body)
	case *ast.IfStatement:
		for i := range n.Clauses {
			n.Clauses[i].Condition = c.processExpression(n.Clauses[i].Condition)
			c.processBlock(&n.Clauses[i].Body)
		}
		if n.Else != nil {
			c.processBlock(n.Else)
		}
	case *ast.RepeatStatement:
		c.processBlock(&n.Body)
		n.Condition = c.processExpression(n.Condition)
	case *ast.WhileStatement:
		n.Condition = c.processExpression(n.Condition)
		c.processBlock(&n.Body)
	case *ast.NumericForStatement:
		n.Start = c.processExpression(n.Start)
		n.Stop = c.processExpression(n.Stop)
		if n.Step != nil {
			n.Step = c.processExpression(n.Step)
		}
		c.processBlock(&n.Body)
	case *ast.GenericForStatement:
		for i := range n.Values {
			n.Values[i] = c.processExpression(n.Values[i])
		}
		c.processBlock(&n.Body)
	case *ast.FunctionStatement:
		c.processFunction(n.Function)
	}
}

func (c computer) processLastStatement(last ast.LastStatement) {
	if ret, ok := last.(*ast.ReturnStatement); ok {
		for i := range ret.Values {
			ret.Values[i] = c.processExpression(ret.Values[i])
		}
	}
}

func (c computer) processFunction(fn *ast.FunctionExpression) {
	c.processBlock(&fn.Body)
}

func (c computer) processCall(call *ast.CallExpression) {
	switch args := call.Arguments.(type) {
	case *ast.TupleArguments:
		for i := range args.Values {
			args.Values[i] = c.processExpression(args.Values[i])
		}
	}
}

// processExpression recursively folds n's children first (post-order,
// matching the Rust Computer's traversal), then attempts to fold n itself.
// A node that cannot be reduced is returned unchanged, pointer-identical to
// the input, so a caller comparing before/after can detect "no change".
func (c computer) processExpression(n ast.Expression) ast.Expression {
	switch e := n.(type) {
	case *ast.UnaryExpression:
		e.Operand = c.processExpression(e.Operand)
	case *ast.BinaryExpression:
		e.Left = c.processExpression(e.Left)
		e.Right = c.processExpression(e.Right)
	case *ast.ParentheseExpression:
		e.Inner = c.processExpression(e.Inner)
	case *ast.IfExpression:
		e.Condition = c.processExpression(e.Condition)
		e.Then = c.processExpression(e.Then)
		for i := range e.ElseIfs {
			e.ElseIfs[i].Condition = c.processExpression(e.ElseIfs[i].Condition)
			e.ElseIfs[i].Result = c.processExpression(e.ElseIfs[i].Result)
		}
		e.Else = c.processExpression(e.Else)
	case *ast.TableExpression:
		for i := range e.Fields {
			if e.Fields[i].Key != nil {
				e.Fields[i].Key = c.processExpression(e.Fields[i].Key)
			}
			e.Fields[i].Value = c.processExpression(e.Fields[i].Value)
		}
		return e
	case *ast.FunctionExpression:
		c.processFunction(e)
		return e
	case *ast.CallExpression:
		c.processCall(e)
		return e
	case *ast.FieldExpression, *ast.IndexExpression, *ast.IdentifierExpression:
		return e
	default:
		return e
	}

	if eval.HasSideEffectsWithPurity(n, c.instancePure) {
		return n
	}
	value := eval.Evaluate(n)
	if !value.IsKnown() {
		return n
	}
	origin, _ := ast.FirstToken(n)
	return literalFromValue(value, origin.Origin())
}

func literalFromValue(v eval.Value, origin ast.Origin) ast.Expression {
	switch v.Kind {
	case eval.Nil:
		return &ast.NilExpression{Token: ast.TokenAt("nil", origin)}
	case eval.True:
		return &ast.TrueExpression{Token: ast.TokenAt("true", origin)}
	case eval.False:
		return &ast.FalseExpression{Token: ast.TokenAt("false", origin)}
	case eval.Number:
		return &ast.NumberExpression{Token: ast.TokenAt(v.String(), origin), Value: v.Number}
	case eval.String:
		return &ast.StringExpression{Token: ast.TokenAt(quoteString(v.String), origin), Value: v.String}
	default:
		panic("literalFromValue: unfoldable kind")
	}
}

func quoteString(s string) string {
	out := make([]byte, 0, len(s)+2)
	out = append(out, '"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\\':
			out = append(out, '\\', c)
		case '\n':
			out = append(out, '\\', 'n')
		default:
			out = append(out, c)
		}
	}
	out = append(out, '"')
	return string(out)
}
