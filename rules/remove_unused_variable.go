// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package rules

import (
	"github.com/dark-lua/darklua-core/ast"
	"github.com/dark-lua/darklua-core/eval"
)

// RemoveUnusedVariableRuleName is the rule's configuration key.
const RemoveUnusedVariableRuleName = "remove_unused_variable"

// RemoveUnusedVariable deletes `local` declarations that are never read, the
// cleanup step the driver runs after every configured rule (per the
// original worker's final pass): module-definition renaming and
// constant-folding both tend to leave locals with no remaining reference,
// and leaving them in place would make retain-lines output noisier than the
// input it's supposed to resemble.
//
// A declaration whose initializer has a side effect is never deleted
// outright: its side-effecting values survive as a bare CallStatement so
// the side effect still runs, only the unused binding disappears.
type RemoveUnusedVariable struct{}

func (RemoveUnusedVariable) Name() string { return RemoveUnusedVariableRuleName }

func (r RemoveUnusedVariable) Process(block *ast.Block, ctx *Context) error {
	p := pruner{instancePure: ctx.InstanceIndexingIsPure}
	p.removeUnusedInBlock(block)
	return nil
}

// pruner carries the purity setting through the recursive scan so the
// free-standing traversal functions don't need a Context parameter.
type pruner struct {
	instancePure bool
}

func (p pruner) removeUnusedInBlock(block *ast.Block) {
	for _, stmt := range block.Statements {
		p.recurseNested(stmt)
	}
	block.Statements = p.pruneUnusedLocals(block.Statements)
}

func (p pruner) recurseNested(stmt ast.Statement) {
	switch n := stmt.(type) {
	case *ast.DoStatement:
		p.removeUnusedInBlock(&n.Body)
	case *ast.IfStatement:
		for i := range n.Clauses {
			p.removeUnusedInBlock(&n.Clauses[i].Body)
		}
		if n.Else != nil {
			p.removeUnusedInBlock(n.Else)
		}
	case *ast.RepeatStatement:
		p.removeUnusedInBlock(&n.Body)
	case *ast.WhileStatement:
		p.removeUnusedInBlock(&n.Body)
	case *ast.NumericForStatement:
		p.removeUnusedInBlock(&n.Body)
	case *ast.GenericForStatement:
		p.removeUnusedInBlock(&n.Body)
	case *ast.FunctionStatement:
		p.removeUnusedInBlock(&n.Function.Body)
	}
}

// pruneUnusedLocals scans a block's direct statements for LocalAssignStatement
// nodes whose names are never read anywhere later in the same block (a
// conservative, block-local approximation: a closure that captures the
// variable still counts as a read, since countReadsAfter walks into nested
// blocks too, so it is never mistakenly pruned).
func (p pruner) pruneUnusedLocals(stmts []ast.Statement) []ast.Statement {
	out := make([]ast.Statement, 0, len(stmts))
	for i, stmt := range stmts {
		la, ok := stmt.(*ast.LocalAssignStatement)
		if !ok {
			out = append(out, stmt)
			continue
		}
		rest := stmts[i+1:]
		used := false
		for _, name := range la.Names {
			if name.Content == "_" || countReadsAfter(name.Content, rest) > 0 {
				used = true
			}
		}
		if used {
			out = append(out, stmt)
			continue
		}
		keep := false
		var calls []ast.Statement
		for _, v := range la.Values {
			if eval.HasSideEffectsWithPurity(v, p.instancePure) {
				if call, ok := v.(*ast.CallExpression); ok {
					calls = append(calls, &ast.CallStatement{Call: call})
				} else {
					keep = true
				}
			}
		}
		if keep {
			out = append(out, stmt)
			continue
		}
		out = append(out, calls...)
	}
	return out
}

// countReadsAfter counts identifier reads of name across the remaining
// statements of the block, including nested blocks (a closure capturing the
// variable counts as a read even though it may run later).
func countReadsAfter(name string, stmts []ast.Statement) int {
	count := 0
	for _, stmt := range stmts {
		ast.Inspect(stmt, func(n interface{}) bool {
			if id, ok := n.(*ast.IdentifierExpression); ok && id.Name == name {
				count++
			}
			return true
		})
	}
	return count
}
