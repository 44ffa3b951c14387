// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

// Package moduledef builds the synthesized module table shared by both the
// path-mode and instance-mode bundlers (C6/C7): given an ordered list of
// resolved modules, it assigns each one a short synthetic name, and folds
// every module's Block into a single table (configuration's
// bundle.modules_identifier) that also carries the table's own cache and
// load machinery, the same "maps of small synthesized functions" shape as
// the teacher's bundle.Manifest + bundle.insert tree assembly, generalized
// from a nested JSON object to a flat name -> function table.
package moduledef

import (
	"github.com/dark-lua/darklua-core/ast"
)

// DefaultIdentifier is the module table's name when configuration leaves
// bundle.modules_identifier unset.
const DefaultIdentifier = "__DARKLUA_BUNDLE_MODULES"

// reservedNames must never be handed out by the permutator because they
// collide with the fields the generated module table itself uses (the
// result cache and the loader function sit on the very same table every
// module's function is attached to).
var reservedNames = map[string]bool{
	"cache": true,
	"load":  true,
}

// NamePermutator hands out short, unique, base-26 lowercase identifiers
// ("a", "b", ..., "z", "aa", "ab", ...), skipping every name in
// reservedNames.
type NamePermutator struct {
	next int
}

// NewNamePermutator returns a permutator starting from the first name.
func NewNamePermutator() *NamePermutator {
	return &NamePermutator{}
}

// Next returns the next unused synthetic name.
func (p *NamePermutator) Next() string {
	for {
		name := base26(p.next)
		p.next++
		if !reservedNames[name] {
			return name
		}
	}
}

// base26 renders n (0-based) as a lowercase base-26 string using the
// bijective variant (no leading 'a' digit means zero, so the sequence is
// a, b, ..., z, aa, ab, ..., az, ba, ...).
func base26(n int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	if n < 26 {
		return string(letters[n])
	}
	var buf []byte
	n++ // shift into 1-based bijective base-26
	for n > 0 {
		n--
		buf = append([]byte{letters[n%26]}, buf...)
		n /= 26
	}
	return string(buf)
}

// Module is one resolved resource ready to be folded into the module table:
// its original path (for diagnostics and source-map relativization), its
// synthetic name, and its parsed, rule-processed Block.
type Module struct {
	Path string
	Name string
	Body *ast.Block
}

// Table is the module table assembled from a run's resolved modules, plus
// the entry module's own name (the one the generated output actually calls
// at the end, after executing the bootstrap).
type Table struct {
	Modules []Module
	Entry   string
	// Identifier names the single synthesized table every module function,
	// the result cache, and the load function hang off of (configuration's
	// bundle.modules_identifier), defaulting to DefaultIdentifier.
	Identifier string
}

// BuildTable assigns synthetic names (in resolution order, so the order is
// stable across runs given the same require graph) to every path in order,
// and marks the last path in order (the entry, which resolves last) as the
// run's Entry. identifier names the
// generated module table; an empty string defaults to DefaultIdentifier.
func BuildTable(order []string, bodies map[string]*ast.Block, identifier string) (*Table, error) {
	if identifier == "" {
		identifier = DefaultIdentifier
	}
	perm := NewNamePermutator()
	table := &Table{Identifier: identifier}
	names := make(map[string]string, len(order))
	for _, path := range order {
		name := perm.Next()
		names[path] = name
		table.Modules = append(table.Modules, Module{Path: path, Name: name, Body: bodies[path]})
	}
	if len(order) > 0 {
		table.Entry = names[order[len(order)-1]]
	}
	return table, nil
}

// Wrap synthesizes the scaffold block that declares the module table and
// binds every module's body under it:
//
//	local __MOD
//	__MOD = { cache = {}, load = function(m)
//	    if not __MOD.cache[m] then
//	        __MOD.cache[m] = { c = __MOD[m]() }
//	    end
//	    return __MOD.cache[m].c
//	end }
//	do
//	    function __MOD.a() <module a body> end
//	end
//	return __MOD.load("<entry>")
//
// Each module function is wrapped in its own do...end so the generated
// output reads as a sequence of independent declarations rather than one
// giant table constructor, matching the Rust bundler's own single-file
// closure-table strategy (S1/S2/S4 in the testable properties).
func (t *Table) Wrap() *ast.Block {
	id := t.Identifier
	if id == "" {
		id = DefaultIdentifier
	}
	block := &ast.Block{}

	block.Statements = append(block.Statements, &ast.LocalAssignStatement{
		Names: []ast.Token{ast.NewToken(id)},
	})

	block.Statements = append(block.Statements, &ast.AssignStatement{
		Variables: []ast.Prefix{identExpr(id)},
		Values:    []ast.Expression{buildModuleTable(id)},
	})

	for _, mod := range t.Modules {
		fn := &ast.FunctionStatement{
			NameChain: []ast.Token{ast.NewToken(id), ast.NewToken(mod.Name)},
			Function:  &ast.FunctionExpression{Body: *mod.Body},
		}
		block.Statements = append(block.Statements, &ast.DoStatement{
			Body: ast.Block{Statements: []ast.Statement{fn}},
		})
	}

	if t.Entry != "" {
		call := &ast.CallExpression{
			Prefix:    loadField(id),
			Arguments: &ast.StringArguments{Value: &ast.StringExpression{Token: ast.NewToken(quote(t.Entry)), Value: t.Entry}},
		}
		block.Last = &ast.ReturnStatement{Values: []ast.Expression{call}}
	}

	return block
}

func quote(s string) string { return `"` + s + `"` }

func identExpr(id string) *ast.IdentifierExpression {
	return &ast.IdentifierExpression{Token: ast.NewToken(id), Name: id}
}

func cacheField(id string) *ast.FieldExpression {
	return &ast.FieldExpression{Prefix: identExpr(id), Name: ast.NewToken("cache")}
}

func loadField(id string) *ast.FieldExpression {
	return &ast.FieldExpression{Prefix: identExpr(id), Name: ast.NewToken("load")}
}

func cacheAtM(id string) *ast.IndexExpression {
	return &ast.IndexExpression{
		Prefix: cacheField(id),
		Index:  &ast.IdentifierExpression{Token: ast.NewToken("m"), Name: "m"},
	}
}

func moduleAtM(id string) *ast.IndexExpression {
	return &ast.IndexExpression{
		Prefix: identExpr(id),
		Index:  &ast.IdentifierExpression{Token: ast.NewToken("m"), Name: "m"},
	}
}

// buildModuleTable synthesizes { cache = {}, load = function(m) ... end }.
func buildModuleTable(id string) ast.Expression {
	return &ast.TableExpression{
		Fields: []ast.TableField{
			{
				Key:   &ast.StringExpression{Token: ast.NewToken(`"cache"`), Value: "cache"},
				Value: &ast.TableExpression{},
			},
			{
				Key: &ast.StringExpression{Token: ast.NewToken(`"load"`), Value: "load"},
				Value: &ast.FunctionExpression{
					Parameters: []ast.Token{ast.NewToken("m")},
					Body:       buildLoadBody(id),
				},
			},
		},
	}
}

// buildLoadBody synthesizes the body of `load`:
//
//	if not __MOD.cache[m] then
//	    __MOD.cache[m] = { c = __MOD[m]() }
//	end
//	return __MOD.cache[m].c
//
// The cache entry itself (rather than a separate boolean flag) is the
// memoization sentinel, so a module returning nil is still only ever run
// once.
func buildLoadBody(id string) ast.Block {
	entry := &ast.TableExpression{
		Fields: []ast.TableField{
			{
				Key: &ast.StringExpression{Token: ast.NewToken(`"c"`), Value: "c"},
				Value: &ast.CallExpression{
					Prefix:    moduleAtM(id),
					Arguments: &ast.TupleArguments{},
				},
			},
		},
	}
	ifStmt := &ast.IfStatement{
		Clauses: []ast.IfClause{
			{
				Condition: &ast.UnaryExpression{Operator: ast.UnaryNot, Operand: cacheAtM(id)},
				Body: ast.Block{
					Statements: []ast.Statement{
						&ast.AssignStatement{
							Variables: []ast.Prefix{cacheAtM(id)},
							Values:    []ast.Expression{entry},
						},
					},
				},
			},
		},
	}
	result := &ast.FieldExpression{Prefix: cacheAtM(id), Name: ast.NewToken("c")}
	return ast.Block{
		Statements: []ast.Statement{ifStmt},
		Last:       &ast.ReturnStatement{Values: []ast.Expression{result}},
	}
}
