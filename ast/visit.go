// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package ast

// Visitor's Visit method is invoked for every node Walk descends into. If
// the returned Visitor is non-nil, Walk visits each of node's children with
// that visitor, then calls Visit(nil) on the same Visitor once children are
// done (the post-order signal a mutating rule uses to fix up a node after
// its subtree has been transformed).
type Visitor interface {
	Visit(node interface{}) Visitor
}

// Walk traverses x in depth-first order, calling v.Visit for x and for each
// of its children, grandchildren, and so on. Walk is the untyped default
// traversal: it does not track scope. Rules that need binding information
// use ScopeWalk instead.
func Walk(v Visitor, x interface{}) {
	if x == nil {
		return
	}
	v = v.Visit(x)
	if v == nil {
		return
	}
	switch n := x.(type) {
	case *Block:
		for _, stmt := range n.Statements {
			Walk(v, stmt)
		}
		if n.Last != nil {
			Walk(v, n.Last)
		}

	case *LocalAssignStatement:
		for i := range n.Values {
			Walk(v, n.Values[i])
		}
	case *AssignStatement:
		for _, variable := range n.Variables {
			Walk(v, variable)
		}
		for i := range n.Values {
			Walk(v, n.Values[i])
		}
	case *CallStatement:
		Walk(v, n.Call)
	case *DoStatement:
		Walk(v, &n.Body)
	case *IfStatement:
		for i := range n.Clauses {
			Walk(v, n.Clauses[i].Condition)
			Walk(v, &n.Clauses[i].Body)
		}
		if n.Else != nil {
			Walk(v, n.Else)
		}
	case *RepeatStatement:
		Walk(v, &n.Body)
		Walk(v, n.Condition)
	case *WhileStatement:
		Walk(v, n.Condition)
		Walk(v, &n.Body)
	case *NumericForStatement:
		Walk(v, n.Start)
		Walk(v, n.Stop)
		if n.Step != nil {
			Walk(v, n.Step)
		}
		Walk(v, &n.Body)
	case *GenericForStatement:
		for i := range n.Values {
			Walk(v, n.Values[i])
		}
		Walk(v, &n.Body)
	case *FunctionStatement:
		Walk(v, n.Function)

	case *ReturnStatement:
		for i := range n.Values {
			Walk(v, n.Values[i])
		}
	case *BreakStatement, *ContinueStatement:
		// no children

	case *NilExpression, *TrueExpression, *FalseExpression,
		*NumberExpression, *StringExpression, *VariadicExpression,
		*IdentifierExpression:
		// leaves

	case *UnaryExpression:
		Walk(v, n.Operand)
	case *BinaryExpression:
		Walk(v, n.Left)
		Walk(v, n.Right)
	case *IfExpression:
		Walk(v, n.Condition)
		Walk(v, n.Then)
		for i := range n.ElseIfs {
			Walk(v, n.ElseIfs[i].Condition)
			Walk(v, n.ElseIfs[i].Result)
		}
		Walk(v, n.Else)
	case *FunctionExpression:
		Walk(v, &n.Body)
	case *TableExpression:
		for i := range n.Fields {
			if n.Fields[i].Key != nil {
				Walk(v, n.Fields[i].Key)
			}
			Walk(v, n.Fields[i].Value)
		}

	case *FieldExpression:
		Walk(v, n.Prefix)
	case *IndexExpression:
		Walk(v, n.Prefix)
		Walk(v, n.Index)
	case *CallExpression:
		Walk(v, n.Prefix)
		Walk(v, n.Arguments)
	case *ParentheseExpression:
		Walk(v, n.Inner)

	case *TupleArguments:
		for i := range n.Values {
			Walk(v, n.Values[i])
		}
	case *StringArguments:
		Walk(v, n.Value)
	case *TableArguments:
		Walk(v, n.Value)

	default:
		panic("ast.Walk: unexpected node type")
	}
	v.Visit(nil)
}

// inspector adapts a plain func(interface{}) bool into a Visitor, matching
// the teacher's ast.Walk/inspector split.
type inspector func(interface{}) bool

func (f inspector) Visit(node interface{}) Visitor {
	if node == nil {
		return nil
	}
	if f(node) {
		return f
	}
	return nil
}

// Inspect traverses x in depth-first order, calling f for each node. If f
// returns false, Inspect does not descend into that node's children. f is
// never called with a nil node (unlike raw Visitor.Visit, Inspect hides the
// post-order nil signal).
func Inspect(x interface{}, f func(interface{}) bool) {
	Walk(inspector(f), x)
}
