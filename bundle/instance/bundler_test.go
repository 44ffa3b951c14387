// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package instance

import (
	"testing"

	"github.com/dark-lua/darklua-core/ast"
	"github.com/dark-lua/darklua-core/parser"
	"github.com/dark-lua/darklua-core/resources"
)

func TestBundleFoldsInstancePathRequireIntoOneTable(t *testing.T) {
	res := resources.NewMemory()
	res.Set("src/a.lua", []byte(`
local b = require(script.Parent.b)
return b
`))
	res.Set("src/b.lua", []byte(`return 42`))

	m, err := BuildFromDirectory(res, "src", "game", "init")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b := New(res, ast.NewSourceRegistry(), m, Options{})
	result, err := b.Bundle("src/a.lua")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(b.Warnings()) != 0 {
		t.Errorf("got %d warnings, want 0", len(b.Warnings()))
	}

	var loadCalls int
	ast.Inspect(result, func(n interface{}) bool {
		if call, ok := n.(*ast.CallExpression); ok {
			if field, ok := call.Prefix.(*ast.FieldExpression); ok && field.Name.Content == "load" {
				if ident, ok := field.Prefix.(*ast.IdentifierExpression); ok && ident.Name == b.Options.ModulesIdentifier {
					loadCalls++
				}
			}
		}
		return true
	})
	if loadCalls == 0 {
		t.Error("expected at least one call to the synthesized load function")
	}
}

func TestBundleLeavesUnresolvableInstancePathAsLiteralRequireAndWarns(t *testing.T) {
	res := resources.NewMemory()
	res.Set("src/a.lua", []byte(`
local missing = require(game:GetService("ReplicatedStorage").DoesNotExist)
return missing
`))

	m, err := BuildFromDirectory(res, "src", "game", "init")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Give the manifest a ReplicatedStorage child so resolution reaches the
	// missing-grandchild case instead of failing at the root lookup.
	game, err := m.Root("game")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m.AddChild(game, "ReplicatedStorage", "ReplicatedStorage", "")

	b := New(res, ast.NewSourceRegistry(), m, Options{})
	result, err := b.Bundle("src/a.lua")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(b.Warnings()) != 1 {
		t.Fatalf("got %d warnings, want 1", len(b.Warnings()))
	}

	var sawLiteralRequire bool
	ast.Inspect(result, func(n interface{}) bool {
		if call, ok := n.(*ast.CallExpression); ok {
			if ident, ok := call.Prefix.(*ast.IdentifierExpression); ok && ident.Name == "require" {
				sawLiteralRequire = true
			}
		}
		return true
	})
	if !sawLiteralRequire {
		t.Error("expected the unresolvable require call to be left in place")
	}
}

func TestBundleAliasBindingResolvesRequire(t *testing.T) {
	res := resources.NewMemory()
	res.Set("src/a.lua", []byte(`
local ReplicatedStorage = game:GetService("ReplicatedStorage")
local b = require(ReplicatedStorage.b)
return b
`))

	m, err := BuildFromDirectory(res, "src", "game", "init")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	game, err := m.Root("game")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m.AddChild(game, "ReplicatedStorage", "ReplicatedStorage", "")
	// An alias collapses to the root it ultimately resolves to
	// (resolveAliasRoots only records components[0].Name), so "b" must sit
	// directly under the root for RS.b to resolve through the alias.
	m.AddChild(game, "b", "ModuleScript", "lib/b.lua")
	res.Set("lib/b.lua", []byte(`return 1`))

	content, err := res.Get("src/a.lua")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	block, err := parser.Parse(content, "src/a.lua", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	aliases := CollectAliases(block)

	b := New(res, ast.NewSourceRegistry(), m, Options{Aliases: aliases})
	_, err = b.Bundle("src/a.lua")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(b.Warnings()) != 0 {
		t.Errorf("got %d warnings, want 0 (alias should resolve the require)", len(b.Warnings()))
	}
}
