// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package ast

// Binding records one name introduced into a Scope, how many times it was
// read, and the most recent read.
type Binding struct {
	Name       string
	Declared   Token
	ReadCount  int
	Identifier *IdentifierExpression // most recent read; nil until the binding is read
}

// Scope is one lexical block's set of local bindings, chained to its
// enclosing scope. A Scope is created for a Block, a FunctionExpression's
// parameter list plus body, and a for-loop's control variables plus body.
type Scope struct {
	parent   *Scope
	bindings map[string]*Binding
}

func newScope(parent *Scope) *Scope {
	return &Scope{parent: parent, bindings: make(map[string]*Binding)}
}

// Declare introduces name into s, shadowing any outer binding of the same
// name. Redeclaring name within the same scope (two `local x` in one block)
// replaces the earlier binding, matching Lua's own shadowing rule.
func (s *Scope) Declare(name string, declared Token) *Binding {
	b := &Binding{Name: name, Declared: declared}
	s.bindings[name] = b
	return b
}

// Resolve looks up name in s or any enclosing scope, returning nil if name
// is never declared (a global reference).
func (s *Scope) Resolve(name string) *Binding {
	for cur := s; cur != nil; cur = cur.parent {
		if b, ok := cur.bindings[name]; ok {
			return b
		}
	}
	return nil
}

// Own returns the bindings introduced directly by s, not inherited from an
// enclosing scope.
func (s *Scope) Own() []*Binding {
	out := make([]*Binding, 0, len(s.bindings))
	for _, b := range s.bindings {
		out = append(out, b)
	}
	return out
}

// Parent returns the enclosing scope, or nil at the root.
func (s *Scope) Parent() *Scope { return s.parent }

// ScopeVisitor is called for every node encountered by ScopeWalk, along with
// the innermost Scope active at that point. Returning false skips descending
// into the node's children (and, for blocks, skips opening a child scope).
type ScopeVisitor interface {
	VisitNode(node interface{}, scope *Scope) bool
}

type scopeInspector func(interface{}, *Scope) bool

func (f scopeInspector) VisitNode(node interface{}, scope *Scope) bool {
	return f(node, scope)
}

// InspectScoped is the func-based convenience form of ScopeWalk.
func InspectScoped(block *Block, f func(interface{}, *Scope) bool) {
	ScopeWalk(scopeInspector(f), block, newScope(nil))
}

// ScopeWalk traverses block in depth-first order like Walk, but opens a new
// child Scope for every block, function body, and loop header, and resolves
// every IdentifierExpression against the scope active at its use site,
// incrementing the referenced Binding's ReadCount. Every binding, function
// and loop parameters included, is declared with no Identifier; each read
// then records itself there.
func ScopeWalk(v ScopeVisitor, block *Block, parent *Scope) *Scope {
	scope := newScope(parent)
	if !v.VisitNode(block, scope) {
		return scope
	}
	for _, stmt := range block.Statements {
		walkStatementScoped(v, stmt, scope)
	}
	if block.Last != nil {
		walkLastStatementScoped(v, block.Last, scope)
	}
	return scope
}

func walkStatementScoped(v ScopeVisitor, stmt Statement, scope *Scope) {
	if !v.VisitNode(stmt, scope) {
		return
	}
	switch n := stmt.(type) {
	case *LocalAssignStatement:
		for i := range n.Values {
			walkExpressionScoped(v, n.Values[i], scope)
		}
		for _, name := range n.Names {
			scope.Declare(name.Content, name)
		}
	case *AssignStatement:
		for _, target := range n.Variables {
			walkExpressionScoped(v, target, scope)
		}
		for i := range n.Values {
			walkExpressionScoped(v, n.Values[i], scope)
		}
	case *CallStatement:
		walkExpressionScoped(v, n.Call, scope)
	case *DoStatement:
		ScopeWalk(v, &n.Body, scope)
	case *IfStatement:
		for i := range n.Clauses {
			walkExpressionScoped(v, n.Clauses[i].Condition, scope)
			ScopeWalk(v, &n.Clauses[i].Body, scope)
		}
		if n.Else != nil {
			ScopeWalk(v, n.Else, scope)
		}
	case *RepeatStatement:
		inner := ScopeWalk(v, &n.Body, scope)
		walkExpressionScoped(v, n.Condition, inner)
	case *WhileStatement:
		walkExpressionScoped(v, n.Condition, scope)
		ScopeWalk(v, &n.Body, scope)
	case *NumericForStatement:
		walkExpressionScoped(v, n.Start, scope)
		walkExpressionScoped(v, n.Stop, scope)
		if n.Step != nil {
			walkExpressionScoped(v, n.Step, scope)
		}
		loop := newScope(scope)
		loop.Declare(n.Variable.Content, n.Variable)
		ScopeWalk(v, &n.Body, loop)
	case *GenericForStatement:
		for i := range n.Values {
			walkExpressionScoped(v, n.Values[i], scope)
		}
		loop := newScope(scope)
		for _, name := range n.Variables {
			loop.Declare(name.Content, name)
		}
		ScopeWalk(v, &n.Body, loop)
	case *FunctionStatement:
		if n.IsLocal && len(n.NameChain) == 1 && n.MethodName == nil {
			scope.Declare(n.NameChain[0].Content, n.NameChain[0])
		}
		walkFunctionScoped(v, n.Function, scope)
	}
}

func walkLastStatementScoped(v ScopeVisitor, last LastStatement, scope *Scope) {
	if !v.VisitNode(last, scope) {
		return
	}
	if ret, ok := last.(*ReturnStatement); ok {
		for i := range ret.Values {
			walkExpressionScoped(v, ret.Values[i], scope)
		}
	}
}

func walkFunctionScoped(v ScopeVisitor, fn *FunctionExpression, scope *Scope) {
	if !v.VisitNode(fn, scope) {
		return
	}
	inner := newScope(scope)
	for _, param := range fn.Parameters {
		inner.Declare(param.Content, param)
	}
	ScopeWalk(v, &fn.Body, inner)
}

func walkExpressionScoped(v ScopeVisitor, expr Expression, scope *Scope) {
	if expr == nil || !v.VisitNode(expr, scope) {
		return
	}
	switch n := expr.(type) {
	case *IdentifierExpression:
		if b := scope.Resolve(n.Name); b != nil {
			b.ReadCount++
			b.Identifier = n
		}
	case *UnaryExpression:
		walkExpressionScoped(v, n.Operand, scope)
	case *BinaryExpression:
		walkExpressionScoped(v, n.Left, scope)
		walkExpressionScoped(v, n.Right, scope)
	case *IfExpression:
		walkExpressionScoped(v, n.Condition, scope)
		walkExpressionScoped(v, n.Then, scope)
		for i := range n.ElseIfs {
			walkExpressionScoped(v, n.ElseIfs[i].Condition, scope)
			walkExpressionScoped(v, n.ElseIfs[i].Result, scope)
		}
		walkExpressionScoped(v, n.Else, scope)
	case *FunctionExpression:
		walkFunctionScoped(v, n, scope)
	case *TableExpression:
		for i := range n.Fields {
			if n.Fields[i].Key != nil {
				walkExpressionScoped(v, n.Fields[i].Key, scope)
			}
			walkExpressionScoped(v, n.Fields[i].Value, scope)
		}
	case *FieldExpression:
		walkExpressionScoped(v, n.Prefix, scope)
	case *IndexExpression:
		walkExpressionScoped(v, n.Prefix, scope)
		walkExpressionScoped(v, n.Index, scope)
	case *CallExpression:
		walkExpressionScoped(v, n.Prefix, scope)
		switch args := n.Arguments.(type) {
		case *TupleArguments:
			for i := range args.Values {
				walkExpressionScoped(v, args.Values[i], scope)
			}
		case *StringArguments:
			walkExpressionScoped(v, args.Value, scope)
		case *TableArguments:
			walkExpressionScoped(v, args.Value, scope)
		}
	case *ParentheseExpression:
		walkExpressionScoped(v, n.Inner, scope)
	}
}
