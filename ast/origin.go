// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package ast

// FirstToken returns a representative token for node: node's own anchor
// token if it carries one directly (e.g. a BinaryExpression's operator
// token), otherwise the first token found in a depth-first walk of its
// children. Rules that replace a subtree with a synthesized literal anchor
// the replacement's token at FirstToken(node).Origin() so that a folded
// expression still maps back to the source position of whatever it
// replaced, per the origin-preservation invariant.
func FirstToken(node interface{}) (Token, bool) {
	var found Token
	var ok bool
	Inspect(node, func(n interface{}) bool {
		if ok {
			return false
		}
		if t, has := tokenOf(n); has {
			found, ok = t, true
			return false
		}
		return true
	})
	return found, ok
}

func tokenOf(n interface{}) (Token, bool) {
	switch v := n.(type) {
	case *NilExpression:
		return v.Token, true
	case *TrueExpression:
		return v.Token, true
	case *FalseExpression:
		return v.Token, true
	case *NumberExpression:
		return v.Token, true
	case *StringExpression:
		return v.Token, true
	case *VariadicExpression:
		return v.Token, true
	case *IdentifierExpression:
		return v.Token, true
	case *UnaryExpression:
		return v.OperatorToken, true
	case *BinaryExpression:
		return v.OperatorToken, true
	case *FunctionExpression:
		return v.FunctionToken, true
	case *TableExpression:
		return v.OpenToken, true
	case *FieldExpression:
		return v.DotToken, true
	case *IndexExpression:
		return v.OpenToken, true
	case *ParentheseExpression:
		return v.OpenToken, true
	case *ReturnStatement:
		return v.Token, true
	case *BreakStatement:
		return v.Token, true
	case *ContinueStatement:
		return v.Token, true
	case *LocalAssignStatement:
		return v.LocalToken, true
	case *DoStatement:
		return v.DoToken, true
	default:
		return Token{}, false
	}
}
