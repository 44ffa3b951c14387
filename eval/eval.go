// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package eval

import (
	"math"

	"github.com/dark-lua/darklua-core/ast"
)

// Evaluate computes the Value of expr without any side effect: it never
// calls a function, indexes anything but a whitelisted pure instance chain
// (see HasSideEffects), and never mutates state. Anything it cannot reduce
// to a literal returns UnknownValue, mirroring the Rust Computer's fallback
// to "leave the expression untouched" when a sub-expression is impure or
// already unknown.
func Evaluate(expr ast.Expression) Value {
	switch n := expr.(type) {
	case *ast.NilExpression:
		return NilValue
	case *ast.TrueExpression:
		return TrueValue
	case *ast.FalseExpression:
		return FalseValue
	case *ast.NumberExpression:
		return NumberValue(n.Value)
	case *ast.StringExpression:
		return StringValue(n.Value)
	case *ast.TableExpression:
		return Value{Kind: Table}
	case *ast.ParentheseExpression:
		return Evaluate(n.Inner)
	case *ast.UnaryExpression:
		return evaluateUnary(n)
	case *ast.BinaryExpression:
		return evaluateBinary(n)
	case *ast.IfExpression:
		return evaluateIf(n)
	default:
		return UnknownValue
	}
}

func evaluateUnary(n *ast.UnaryExpression) Value {
	operand := Evaluate(n.Operand)
	switch n.Operator {
	case ast.UnaryNot:
		if !operand.IsKnown() {
			return UnknownValue
		}
		if operand.IsTruthy() {
			return FalseValue
		}
		return TrueValue
	case ast.UnaryMinus:
		if operand.Kind != Number {
			return UnknownValue
		}
		return NumberValue(-operand.Number)
	case ast.UnaryLength:
		if operand.Kind == String {
			return NumberValue(float64(len(operand.String)))
		}
		return UnknownValue
	default:
		return UnknownValue
	}
}

func evaluateBinary(n *ast.BinaryExpression) Value {
	// `and`/`or` short-circuit: when the left side alone decides the result
	// the right operand is never evaluated; otherwise the right operand must
	// be pure and statically known, matching the Rust Computer, which only
	// folds these when the left side decides or both sides are known.
	switch n.Operator {
	case ast.BinaryAnd:
		left := Evaluate(n.Left)
		if left.IsKnown() && !left.IsTruthy() {
			return left
		}
		if left.IsKnown() && !HasSideEffects(n.Right) {
			right := Evaluate(n.Right)
			if right.IsKnown() {
				return right
			}
		}
		return UnknownValue
	case ast.BinaryOr:
		left := Evaluate(n.Left)
		if left.IsKnown() && left.IsTruthy() {
			return left
		}
		if left.IsKnown() && !HasSideEffects(n.Right) {
			right := Evaluate(n.Right)
			if right.IsKnown() {
				return right
			}
		}
		return UnknownValue
	}

	left := Evaluate(n.Left)
	right := Evaluate(n.Right)
	if !left.IsKnown() || !right.IsKnown() {
		return UnknownValue
	}

	switch n.Operator {
	case ast.BinaryPlus:
		return arith(left, right, func(a, b float64) float64 { return a + b })
	case ast.BinaryMinus:
		return arith(left, right, func(a, b float64) float64 { return a - b })
	case ast.BinaryAsterisk:
		return arith(left, right, func(a, b float64) float64 { return a * b })
	case ast.BinarySlash:
		return arith(left, right, func(a, b float64) float64 { return a / b })
	case ast.BinaryPercent:
		return arith(left, right, math.Mod)
	case ast.BinaryCaret:
		return arith(left, right, math.Pow)
	case ast.BinaryConcat:
		if left.Kind != String && left.Kind != Number {
			return UnknownValue
		}
		if right.Kind != String && right.Kind != Number {
			return UnknownValue
		}
		return StringValue(left.String + right.String)
	case ast.BinaryEqual:
		return boolValue(valuesEqual(left, right))
	case ast.BinaryNotEqual:
		return boolValue(!valuesEqual(left, right))
	case ast.BinaryLessThan, ast.BinaryLessOrEqual, ast.BinaryGreaterThan, ast.BinaryGreaterOrEqual:
		return compare(n.Operator, left, right)
	default:
		return UnknownValue
	}
}

func arith(left, right Value, f func(a, b float64) float64) Value {
	if left.Kind != Number || right.Kind != Number {
		return UnknownValue
	}
	return NumberValue(f(left.Number, right.Number))
}

func compare(op ast.BinaryOperator, left, right Value) Value {
	if left.Kind == Number && right.Kind == Number {
		switch op {
		case ast.BinaryLessThan:
			return boolValue(left.Number < right.Number)
		case ast.BinaryLessOrEqual:
			return boolValue(left.Number <= right.Number)
		case ast.BinaryGreaterThan:
			return boolValue(left.Number > right.Number)
		case ast.BinaryGreaterOrEqual:
			return boolValue(left.Number >= right.Number)
		}
	}
	if left.Kind == String && right.Kind == String {
		switch op {
		case ast.BinaryLessThan:
			return boolValue(left.String < right.String)
		case ast.BinaryLessOrEqual:
			return boolValue(left.String <= right.String)
		case ast.BinaryGreaterThan:
			return boolValue(left.String > right.String)
		case ast.BinaryGreaterOrEqual:
			return boolValue(left.String >= right.String)
		}
	}
	return UnknownValue
}

func valuesEqual(a, b Value) bool {
	if a.Kind != b.Kind {
		// Nil/True/False never compare equal across kinds, and a Number
		// never equals a String in Lua, so a kind mismatch is just false.
		return false
	}
	switch a.Kind {
	case Number:
		return a.Number == b.Number
	case String:
		return a.String == b.String
	case Table:
		return false // opaque identity, never known to be equal
	default:
		return true // Nil == Nil, True == True, False == False
	}
}

func boolValue(b bool) Value {
	if b {
		return TrueValue
	}
	return FalseValue
}

func evaluateIf(n *ast.IfExpression) Value {
	cond := Evaluate(n.Condition)
	if cond.IsKnown() {
		if cond.IsTruthy() {
			return Evaluate(n.Then)
		}
		for _, clause := range n.ElseIfs {
			c := Evaluate(clause.Condition)
			if !c.IsKnown() {
				return UnknownValue
			}
			if c.IsTruthy() {
				return Evaluate(clause.Result)
			}
		}
		return Evaluate(n.Else)
	}
	return UnknownValue
}
