// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package rules

import "github.com/dark-lua/darklua-core/ast"

// ReplaceReferencedTokensRuleName is the rule's configuration key.
const ReplaceReferencedTokensRuleName = "replace_referenced_tokens"

// TokenRename is one substitution ReplaceReferencedTokens applies: every
// identifier token whose origin matches At has its content swapped for To,
// keeping every other property of the token - including its trivia -
// untouched.
type TokenRename struct {
	At ast.Origin
	To string
}

// ReplaceReferencedTokens rewrites identifier token content at specific
// source origins, without disturbing the token's line/source/trivia. It is
// not part of the driver's cleanup pass and no bundler builds Renames for
// it; it runs only as a configured rule, and with no Renames it changes
// nothing.
type ReplaceReferencedTokens struct {
	Renames []TokenRename
}

func (ReplaceReferencedTokens) Name() string { return ReplaceReferencedTokensRuleName }

func (r ReplaceReferencedTokens) Process(block *ast.Block, ctx *Context) error {
	if len(r.Renames) == 0 {
		return nil
	}
	byOrigin := make(map[ast.Origin]string, len(r.Renames))
	for _, rename := range r.Renames {
		byOrigin[rename.At] = rename.To
	}
	ast.Inspect(block, func(n interface{}) bool {
		switch id := n.(type) {
		case *ast.IdentifierExpression:
			if to, ok := byOrigin[id.Token.Origin()]; ok {
				id.Token.Content = to
				id.Name = to
			}
		case *ast.LocalAssignStatement:
			renameTokens(id.Names, byOrigin)
		case *ast.FunctionExpression:
			renameTokens(id.Parameters, byOrigin)
		case *ast.NumericForStatement:
			renameToken(&id.Variable, byOrigin)
		case *ast.GenericForStatement:
			renameTokens(id.Variables, byOrigin)
		case *ast.FunctionStatement:
			renameTokens(id.NameChain, byOrigin)
			if id.MethodName != nil {
				renameToken(id.MethodName, byOrigin)
			}
		case *ast.FieldExpression:
			renameToken(&id.Name, byOrigin)
		}
		return true
	})
	return nil
}

func renameToken(tok *ast.Token, byOrigin map[ast.Origin]string) {
	if to, ok := byOrigin[tok.Origin()]; ok {
		tok.Content = to
	}
}

func renameTokens(toks []ast.Token, byOrigin map[ast.Origin]string) {
	for i := range toks {
		renameToken(&toks[i], byOrigin)
	}
}
