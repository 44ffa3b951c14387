// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

// Package eval implements the abstract evaluator used by constant-folding
// rules: a small value lattice (Kind) plus a side-effect predicate that
// decides whether an expression is safe to evaluate purely for its
// resulting Value, discarding the original expression.
package eval

import (
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Kind distinguishes the members of the value lattice.
type Kind int

const (
	// Unknown means the expression's runtime value cannot be determined
	// statically; any operation involving an Unknown value is itself Unknown.
	Unknown Kind = iota
	Nil
	True
	False
	Number
	String
	// Table marks that the expression is known to produce a table, but its
	// contents are opaque to the evaluator (it is never itself folded).
	Table
)

// Value is one element of the evaluator's lattice.
type Value struct {
	Kind   Kind
	Number float64
	String string
}

// UnknownValue is the lattice's top element.
var UnknownValue = Value{Kind: Unknown}

// NilValue, TrueValue, FalseValue are the lattice's literal singletons.
var (
	NilValue   = Value{Kind: Nil}
	TrueValue  = Value{Kind: True}
	FalseValue = Value{Kind: False}
)

// NumberValue wraps a numeric constant.
func NumberValue(n float64) Value { return Value{Kind: Number, Number: n} }

// StringValue wraps a string constant.
func StringValue(s string) Value { return Value{Kind: String, String: s} }

// IsKnown reports whether v is anything but Unknown.
func (v Value) IsKnown() bool { return v.Kind != Unknown }

// IsTruthy reports the Lua truthiness of v: everything except Nil and False
// is truthy. Only meaningful when v.IsKnown().
func (v Value) IsTruthy() bool {
	return v.Kind != Nil && v.Kind != False
}

// Hash returns a content hash of v, for comparing values without comparing
// full Value structs. Kind is mixed into the hash so Nil/True/False/Number(0)/String("") never
// collide with each other.
func (v Value) Hash() uint64 {
	var buf [9]byte
	buf[0] = byte(v.Kind)
	switch v.Kind {
	case Number:
		bits := strconv.FormatFloat(v.Number, 'b', -1, 64)
		return xxhash.Sum64String(string(buf[:1]) + bits)
	case String:
		return xxhash.Sum64String(string(buf[:1]) + v.String)
	default:
		return xxhash.Sum64(buf[:1])
	}
}

// String implements fmt.Stringer for diagnostics.
func (v Value) String() string {
	switch v.Kind {
	case Unknown:
		return "<unknown>"
	case Nil:
		return "nil"
	case True:
		return "true"
	case False:
		return "false"
	case Number:
		return fmt.Sprintf("%g", v.Number)
	case String:
		return fmt.Sprintf("%q", v.String)
	case Table:
		return "<table>"
	default:
		return "<invalid>"
	}
}
