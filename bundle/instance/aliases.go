// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package instance

import "github.com/dark-lua/darklua-core/ast"

// CollectAliases scans block for local bindings of the shape
//
//	local ReplicatedStorage = game:GetService("ReplicatedStorage")
//	local Modules = script.Parent.Modules
//
// and returns a name -> root-name map usable as the Aliases option of a
// Bundler. The map records only the root (`game` or `script`) each alias
// bottoms out at; the path between that root and the alias's target is not
// kept, so a later `require(ReplicatedStorage.Foo)` resolves as
// `require(game.Foo)`. Only single-name locals assigned a recognizable
// instance path are collected; anything else is left alone.
func CollectAliases(block *ast.Block) map[string]string {
	aliases := make(map[string]string)
	ast.Inspect(block, func(n interface{}) bool {
		local, ok := n.(*ast.LocalAssignStatement)
		if !ok {
			return true
		}
		if len(local.Names) != 1 || len(local.Values) != 1 {
			return true
		}
		prefix, ok := local.Values[0].(ast.Prefix)
		if !ok {
			return true
		}
		if _, ok := ParseInstancePath(prefix, aliases); ok {
			aliases[local.Names[0].Content] = local.Names[0].Content
		}
		return true
	})
	return resolveAliasRoots(block, aliases)
}

// resolveAliasRoots re-walks block now that every alias name maps to
// itself, replacing each with the actual root name its bound expression
// resolves to, so transitive aliases-of-aliases (game -> RS -> Modules)
// still bottom out at a real root.
func resolveAliasRoots(block *ast.Block, names map[string]string) map[string]string {
	resolved := make(map[string]string, len(names))
	ast.Inspect(block, func(n interface{}) bool {
		local, ok := n.(*ast.LocalAssignStatement)
		if !ok {
			return true
		}
		if len(local.Names) != 1 || len(local.Values) != 1 {
			return true
		}
		name := local.Names[0].Content
		if _, tracked := names[name]; !tracked {
			return true
		}
		prefix, ok := local.Values[0].(ast.Prefix)
		if !ok {
			return true
		}
		components, ok := ParseInstancePath(prefix, resolved)
		if !ok || len(components) == 0 {
			return true
		}
		resolved[name] = components[0].Name
		return true
	})
	return resolved
}
