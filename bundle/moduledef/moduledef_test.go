// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package moduledef

import (
	"testing"

	"github.com/dark-lua/darklua-core/ast"
)

func TestNamePermutatorSkipsToDoubleLettersAndReservedNames(t *testing.T) {
	perm := NewNamePermutator()
	var names []string
	for i := 0; i < 30; i++ {
		names = append(names, perm.Next())
	}
	if names[0] != "a" || names[25] != "z" || names[26] != "aa" {
		t.Fatalf("got %v", names[:27])
	}
	for _, n := range names {
		if n == "cache" || n == "load" {
			t.Errorf("permutator handed out a reserved name %q", n)
		}
	}
}

func TestNamePermutatorNeverRepeats(t *testing.T) {
	perm := NewNamePermutator()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		name := perm.Next()
		if seen[name] {
			t.Fatalf("name %q handed out twice", name)
		}
		seen[name] = true
	}
}

func TestBuildTableAssignsNamesInOrderAndMarksEntry(t *testing.T) {
	order := []string{"a.lua", "b.lua", "c.lua"}
	bodies := map[string]*ast.Block{
		"a.lua": {},
		"b.lua": {},
		"c.lua": {},
	}
	table, err := BuildTable(order, bodies, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table.Modules) != 3 {
		t.Fatalf("got %d modules, want 3", len(table.Modules))
	}
	for i, path := range order {
		if table.Modules[i].Path != path {
			t.Errorf("Modules[%d].Path = %q, want %q", i, table.Modules[i].Path, path)
		}
	}
	if table.Entry != table.Modules[2].Name {
		t.Errorf("Entry = %q, want the last module's name %q", table.Entry, table.Modules[2].Name)
	}
	if table.Identifier != DefaultIdentifier {
		t.Errorf("Identifier = %q, want default %q", table.Identifier, DefaultIdentifier)
	}
}

func TestBuildTableHonorsCustomIdentifier(t *testing.T) {
	table, err := BuildTable([]string{"a.lua"}, map[string]*ast.Block{"a.lua": {}}, "__MOD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Identifier != "__MOD" {
		t.Errorf("Identifier = %q, want __MOD", table.Identifier)
	}
}

// countIdentifierRefs counts how many IdentifierExpression nodes in block
// have the given name.
func countIdentifierRefs(block *ast.Block, name string) int {
	count := 0
	ast.Inspect(block, func(n interface{}) bool {
		if id, ok := n.(*ast.IdentifierExpression); ok && id.Name == name {
			count++
		}
		return true
	})
	return count
}

func TestWrapUsesConfiguredIdentifier(t *testing.T) {
	table, err := BuildTable([]string{"a.lua"}, map[string]*ast.Block{"a.lua": {}}, "__MOD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wrapped := table.Wrap()

	if countIdentifierRefs(wrapped, "__MOD") == 0 {
		t.Error("expected the configured identifier to appear in the wrapped block")
	}
	if countIdentifierRefs(wrapped, DefaultIdentifier) != 0 {
		t.Error("the default identifier should not appear when a custom one is configured")
	}
}

func TestWrapDeclaresLocalThenAssignsCacheAndLoadTable(t *testing.T) {
	table, err := BuildTable([]string{"a.lua"}, map[string]*ast.Block{"a.lua": {}}, "__MOD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wrapped := table.Wrap()

	if len(wrapped.Statements) < 2 {
		t.Fatalf("got %d statements, want at least 2 (local decl + assign)", len(wrapped.Statements))
	}
	decl, ok := wrapped.Statements[0].(*ast.LocalAssignStatement)
	if !ok {
		t.Fatalf("Statements[0] = %T, want *ast.LocalAssignStatement", wrapped.Statements[0])
	}
	if len(decl.Names) != 1 || decl.Names[0].Content != "__MOD" {
		t.Errorf("got local decl names %v, want [__MOD]", decl.Names)
	}
	if decl.Values != nil {
		t.Error("expected the local declaration to be uninitialized")
	}

	assign, ok := wrapped.Statements[1].(*ast.AssignStatement)
	if !ok {
		t.Fatalf("Statements[1] = %T, want *ast.AssignStatement", wrapped.Statements[1])
	}
	ident, ok := assign.Variables[0].(*ast.IdentifierExpression)
	if !ok || ident.Name != "__MOD" {
		t.Fatalf("got assign target %#v, want __MOD", assign.Variables[0])
	}
	tbl, ok := assign.Values[0].(*ast.TableExpression)
	if !ok {
		t.Fatalf("got %T, want *ast.TableExpression", assign.Values[0])
	}
	if len(tbl.Fields) != 2 {
		t.Fatalf("got %d table fields, want 2 (cache, load)", len(tbl.Fields))
	}
	var sawCache, sawLoad bool
	for _, f := range tbl.Fields {
		key, ok := f.Key.(*ast.StringExpression)
		if !ok {
			continue
		}
		switch key.Value {
		case "cache":
			sawCache = true
			if _, ok := f.Value.(*ast.TableExpression); !ok {
				t.Errorf("cache field value = %T, want *ast.TableExpression", f.Value)
			}
		case "load":
			sawLoad = true
			if _, ok := f.Value.(*ast.FunctionExpression); !ok {
				t.Errorf("load field value = %T, want *ast.FunctionExpression", f.Value)
			}
		}
	}
	if !sawCache || !sawLoad {
		t.Errorf("got fields %#v, want cache and load", tbl.Fields)
	}
}

func TestWrapBindsEachModuleAsDottedFunctionInsideDoBlock(t *testing.T) {
	table, err := BuildTable([]string{"a.lua", "b.lua"}, map[string]*ast.Block{"a.lua": {}, "b.lua": {}}, "__MOD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wrapped := table.Wrap()

	var doBlocks int
	for _, stmt := range wrapped.Statements {
		do, ok := stmt.(*ast.DoStatement)
		if !ok {
			continue
		}
		doBlocks++
		if len(do.Body.Statements) != 1 {
			t.Fatalf("do block has %d statements, want 1", len(do.Body.Statements))
		}
		fn, ok := do.Body.Statements[0].(*ast.FunctionStatement)
		if !ok {
			t.Fatalf("got %T, want *ast.FunctionStatement", do.Body.Statements[0])
		}
		if fn.IsLocal {
			t.Error("module function should not be declared local; it is a field of __MOD")
		}
		if len(fn.NameChain) != 2 || fn.NameChain[0].Content != "__MOD" {
			t.Errorf("got NameChain %v, want [__MOD <name>]", fn.NameChain)
		}
	}
	if doBlocks != len(table.Modules) {
		t.Errorf("got %d do blocks, want %d (one per module)", doBlocks, len(table.Modules))
	}
}

func TestWrapReturnsLoadCallOfEntry(t *testing.T) {
	table, err := BuildTable([]string{"a.lua"}, map[string]*ast.Block{"a.lua": {}}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wrapped := table.Wrap()
	ret, ok := wrapped.Last.(*ast.ReturnStatement)
	if !ok {
		t.Fatalf("got %T, want *ast.ReturnStatement", wrapped.Last)
	}
	call, ok := ret.Values[0].(*ast.CallExpression)
	if !ok {
		t.Fatalf("got %T, want *ast.CallExpression", ret.Values[0])
	}
	field, ok := call.Prefix.(*ast.FieldExpression)
	if !ok || field.Name.Content != "load" {
		t.Fatalf("got call prefix %#v, want a field access to .load", call.Prefix)
	}
	ident, ok := field.Prefix.(*ast.IdentifierExpression)
	if !ok || ident.Name != table.Identifier {
		t.Fatalf("got load field prefix %#v, want identifier %q", field.Prefix, table.Identifier)
	}
	args, ok := call.Arguments.(*ast.StringArguments)
	if !ok || args.Value.Value != table.Entry {
		t.Errorf("got args %#v, want the entry module name %q", call.Arguments, table.Entry)
	}
}

func TestBuildTableEmptyOrderHasNoEntry(t *testing.T) {
	table, err := BuildTable(nil, nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Entry != "" {
		t.Errorf("Entry = %q, want empty for an empty order", table.Entry)
	}
	if table.Wrap().Last != nil {
		t.Error("Wrap() of an empty table should produce no trailing return")
	}
}
