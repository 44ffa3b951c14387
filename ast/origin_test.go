// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package ast

import "testing"

func TestFirstTokenOwnAnchor(t *testing.T) {
	bin := &BinaryExpression{
		Operator:      BinaryPlus,
		OperatorToken: TokenAt("+", Origin{Line: 7, Source: SourceID(2)}),
		Left:          numLit(1),
		Right:         numLit(2),
	}
	got, ok := FirstToken(bin)
	if !ok {
		t.Fatal("expected a token")
	}
	if got.Origin() != (Origin{Line: 7, Source: SourceID(2)}) {
		t.Errorf("got origin %+v, want line 7 source 2", got.Origin())
	}
}

func TestFirstTokenDescendsIntoChildren(t *testing.T) {
	call := &CallStatement{
		Call: &CallExpression{
			Prefix:    &IdentifierExpression{Token: TokenAt("f", Origin{Line: 3, Source: SourceID(1)}), Name: "f"},
			Arguments: &TupleArguments{},
		},
	}
	got, ok := FirstToken(call)
	if !ok {
		t.Fatal("expected a token found by descending into the call's prefix")
	}
	if got.Origin() != (Origin{Line: 3, Source: SourceID(1)}) {
		t.Errorf("got origin %+v, want line 3 source 1", got.Origin())
	}
}

func TestFirstTokenNoneFound(t *testing.T) {
	block := &Block{}
	if _, ok := FirstToken(block); ok {
		t.Error("an empty block carries no anchorable token")
	}
}

func TestOriginIsSynthetic(t *testing.T) {
	if !(Origin{}).IsSynthetic() {
		t.Error("the zero Origin must be synthetic")
	}
	if (Origin{Line: 1, Source: SyntheticSource}).IsSynthetic() {
		t.Error("a real line number is not synthetic even on the synthetic source id")
	}
}
