// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package eval

import "github.com/dark-lua/darklua-core/ast"

// instanceRoots are the two global identifiers the instance-mode bundler
// treats as addressable roots; indexing through them is pure because it
// never executes arbitrary code, only a tree lookup.
var instanceRoots = map[string]bool{
	"game":   true,
	"script": true,
}

// pureInstanceMethods are the handful of Roblox instance methods considered
// side-effect-free for the purposes of constant folding and instance-path
// resolution: they only ever read the instance tree.
var pureInstanceMethods = map[string]bool{
	"WaitForChild":      true,
	"FindFirstChild":    true,
	"FindFirstAncestor": true,
	"GetService":        true,
}

// HasSideEffects reports whether evaluating expr could do anything other
// than compute a value: call an arbitrary function, index something other
// than a literal table or a pure instance-path chain rooted at game/script,
// or otherwise touch mutable external state. Rules that fold or eliminate
// expressions must never do so when HasSideEffects is true, since darklua
// (like its Rust ancestor) only ever removes code it can prove has no
// observable effect. Equivalent to HasSideEffectsWithPurity(expr, true).
func HasSideEffects(expr ast.Expression) bool {
	return HasSideEffectsWithPurity(expr, true)
}

// HasSideEffectsWithPurity is HasSideEffects parameterized by whether
// indexing through game/script is considered pure. A configuration that sets
// instance_indexing_is_pure to false passes instancePure=false here, which
// makes every FieldExpression/IndexExpression/instance method call opaque
// (assumed impure) rather than letting rules reason through it, matching the
// original tool's opt-out for Roblox APIs that aren't actually side-effect
// free in a given codebase (e.g. a mocked game global in tests).
func HasSideEffectsWithPurity(expr ast.Expression, instancePure bool) bool {
	switch n := expr.(type) {
	case *ast.NilExpression, *ast.TrueExpression, *ast.FalseExpression,
		*ast.NumberExpression, *ast.StringExpression, *ast.VariadicExpression,
		*ast.IdentifierExpression:
		return false

	case *ast.UnaryExpression:
		return HasSideEffectsWithPurity(n.Operand, instancePure)
	case *ast.BinaryExpression:
		return HasSideEffectsWithPurity(n.Left, instancePure) || HasSideEffectsWithPurity(n.Right, instancePure)
	case *ast.ParentheseExpression:
		return HasSideEffectsWithPurity(n.Inner, instancePure)
	case *ast.IfExpression:
		if HasSideEffectsWithPurity(n.Condition, instancePure) || HasSideEffectsWithPurity(n.Then, instancePure) || HasSideEffectsWithPurity(n.Else, instancePure) {
			return true
		}
		for _, clause := range n.ElseIfs {
			if HasSideEffectsWithPurity(clause.Condition, instancePure) || HasSideEffectsWithPurity(clause.Result, instancePure) {
				return true
			}
		}
		return false
	case *ast.FunctionExpression:
		// Defining a closure has no side effect; calling it would.
		return false
	case *ast.TableExpression:
		for _, field := range n.Fields {
			if field.Key != nil && HasSideEffectsWithPurity(field.Key, instancePure) {
				return true
			}
			if HasSideEffectsWithPurity(field.Value, instancePure) {
				return true
			}
		}
		return false

	case *ast.FieldExpression:
		return !instancePure || !isPureInstanceChain(n, instancePure)
	case *ast.IndexExpression:
		if HasSideEffectsWithPurity(n.Index, instancePure) {
			return true
		}
		return !instancePure || !isPureInstanceChain(n, instancePure)
	case *ast.CallExpression:
		return !instancePure || !isPureInstanceCall(n, instancePure)

	default:
		return true
	}
}

// isPureInstanceChain reports whether prefix is a FieldExpression/IndexExpression
// chain that bottoms out at game or script, with every intermediate step
// being itself a pure field/index/call per isPureInstanceChain/isPureInstanceCall.
func isPureInstanceChain(prefix ast.Prefix, instancePure bool) bool {
	switch n := prefix.(type) {
	case *ast.IdentifierExpression:
		return instanceRoots[n.Name]
	case *ast.FieldExpression:
		return isPureInstanceChain(n.Prefix, instancePure)
	case *ast.IndexExpression:
		if HasSideEffectsWithPurity(n.Index, instancePure) {
			return false
		}
		return isPureInstanceChain(n.Prefix, instancePure)
	case *ast.CallExpression:
		return isPureInstanceCall(n, instancePure)
	case *ast.ParentheseExpression:
		if inner, ok := n.Inner.(ast.Prefix); ok {
			return isPureInstanceChain(inner, instancePure)
		}
		return false
	default:
		return false
	}
}

func isPureInstanceCall(call *ast.CallExpression, instancePure bool) bool {
	if !call.IsMethodCall() {
		return false
	}
	if !pureInstanceMethods[call.MethodToken.Content] {
		return false
	}
	if !isPureInstanceChain(call.Prefix, instancePure) {
		return false
	}
	switch args := call.Arguments.(type) {
	case *ast.TupleArguments:
		for _, v := range args.Values {
			if HasSideEffectsWithPurity(v, instancePure) {
				return false
			}
		}
		return true
	case *ast.StringArguments:
		return true
	default:
		return false
	}
}
