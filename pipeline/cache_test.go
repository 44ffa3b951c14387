// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package pipeline

import (
	"reflect"
	"testing"

	"github.com/dark-lua/darklua-core/ast"
)

func TestWorkCacheInsertAndContains(t *testing.T) {
	cache := NewWorkCache()
	if cache.Contains("a.lua") {
		t.Fatal("an empty cache should contain nothing")
	}

	block := &ast.Block{}
	cache.Insert("a.lua", block)
	if !cache.Contains("a.lua") {
		t.Error("expected a.lua to be present after Insert")
	}
	got, ok := cache.GetBlock("a.lua")
	if !ok || got != block {
		t.Errorf("GetBlock = %v, %v, want %v, true", got, ok, block)
	}
}

func TestWorkCachePathsPreservesInsertionOrder(t *testing.T) {
	cache := NewWorkCache()
	cache.Insert("b.lua", &ast.Block{})
	cache.Insert("a.lua", &ast.Block{})
	cache.Insert("b.lua", &ast.Block{}) // re-insert must not duplicate or reorder

	if got := cache.Paths(); !reflect.DeepEqual(got, []string{"b.lua", "a.lua"}) {
		t.Errorf("Paths() = %v, want [b.lua a.lua]", got)
	}
}
