// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package path

import (
	"github.com/dark-lua/darklua-core/ast"
	"github.com/dark-lua/darklua-core/rules"
)

// RequireResolverRuleName is this rule's configuration key. It is not a
// user-configurable rule (it is always the first rule the path bundler
// runs) but it implements rules.Rule so it slots into the same pipeline
// driver and suspension machinery every other rule uses.
const RequireResolverRuleName = "resolve_require"

// requireResolver rewrites every resolvable `require(<string>)` call in a
// Block into a call to the bundle's synthesized `load` function, using the
// resolved resource path as a placeholder string argument (swapped for the
// module's real synthetic short name later, once moduledef.BuildTable has
// assigned one, by substituteLoadPaths, which matches the
// `<identifier>.load(...)` call and its path string). Requires whose resolved content isn't in the pipeline's work
// cache yet make the rule return *rules.RequiresContent so the driver can
// resolve that dependency first and resume the rule, matching the Rust
// frontend's Worker::apply_rules pause/resume loop exactly.
type requireResolver struct {
	resolve    func(from, target string) (resolved string, excluded bool, err error)
	available  func(path string) bool
	failed     func(path string) bool
	warn       func(path, format string, args ...interface{})
	identifier string
}

func (requireResolver) Name() string { return RequireResolverRuleName }

func (r requireResolver) Process(block *ast.Block, ctx *rules.Context) error {
	return r.walkBlock(block, ctx)
}

func (r requireResolver) walkBlock(block *ast.Block, ctx *rules.Context) error {
	for _, stmt := range block.Statements {
		if err := r.walkStatement(stmt, ctx); err != nil {
			return err
		}
	}
	if block.Last != nil {
		if ret, ok := block.Last.(*ast.ReturnStatement); ok {
			for i := range ret.Values {
				replaced, err := r.walkExpr(ret.Values[i], ctx)
				if err != nil {
					return err
				}
				ret.Values[i] = replaced
			}
		}
	}
	return nil
}

func (r requireResolver) walkStatement(stmt ast.Statement, ctx *rules.Context) error {
	switch n := stmt.(type) {
	case *ast.LocalAssignStatement:
		return r.walkExprs(n.Values, ctx)
	case *ast.AssignStatement:
		return r.walkExprs(n.Values, ctx)
	case *ast.CallStatement:
		replaced, err := r.walkExpr(n.Call, ctx)
		if err != nil {
			return err
		}
		if call, ok := replaced.(*ast.CallExpression); ok {
			n.Call = call
		}
		return nil
	case *ast.DoStatement:
		return r.walkBlock(&n.Body, ctx)
	case *ast.IfStatement:
		for i := range n.Clauses {
			if err := r.walkBlock(&n.Clauses[i].Body, ctx); err != nil {
				return err
			}
		}
		if n.Else != nil {
			return r.walkBlock(n.Else, ctx)
		}
		return nil
	case *ast.WhileStatement:
		return r.walkBlock(&n.Body, ctx)
	case *ast.RepeatStatement:
		return r.walkBlock(&n.Body, ctx)
	case *ast.NumericForStatement:
		return r.walkBlock(&n.Body, ctx)
	case *ast.GenericForStatement:
		return r.walkBlock(&n.Body, ctx)
	case *ast.FunctionStatement:
		return r.walkBlock(&n.Function.Body, ctx)
	}
	return nil
}

func (r requireResolver) walkExprs(exprs []ast.Expression, ctx *rules.Context) error {
	for i := range exprs {
		replaced, err := r.walkExpr(exprs[i], ctx)
		if err != nil {
			return err
		}
		exprs[i] = replaced
	}
	return nil
}

// walkExpr recurses into expr's children first, rewriting any require call
// found along the way, then returns expr itself (or its replacement, for a
// require call directly at this position).
func (r requireResolver) walkExpr(expr ast.Expression, ctx *rules.Context) (ast.Expression, error) {
	switch n := expr.(type) {
	case *ast.CallExpression:
		if target, ok := requireTarget(n); ok {
			resolved, excluded, err := r.resolve(ctx.Path, target)
			if err != nil {
				return nil, err
			}
			if excluded {
				return n, nil
			}
			if r.failed(resolved) {
				r.warn(resolved, "required module could not be bundled, left as a literal require call")
				return n, nil
			}
			if !r.available(resolved) {
				return nil, &rules.RequiresContent{Path: resolved}
			}
			return loadCall(r.identifier, resolved), nil
		}
		if err := r.walkExprs(callArgValues(n), ctx); err != nil {
			return nil, err
		}
		return n, nil
	case *ast.BinaryExpression:
		left, err := r.walkExpr(n.Left, ctx)
		if err != nil {
			return nil, err
		}
		right, err := r.walkExpr(n.Right, ctx)
		if err != nil {
			return nil, err
		}
		n.Left, n.Right = left, right
		return n, nil
	case *ast.UnaryExpression:
		operand, err := r.walkExpr(n.Operand, ctx)
		if err != nil {
			return nil, err
		}
		n.Operand = operand
		return n, nil
	case *ast.ParentheseExpression:
		inner, err := r.walkExpr(n.Inner, ctx)
		if err != nil {
			return nil, err
		}
		n.Inner = inner
		return n, nil
	case *ast.TableExpression:
		for i := range n.Fields {
			v, err := r.walkExpr(n.Fields[i].Value, ctx)
			if err != nil {
				return nil, err
			}
			n.Fields[i].Value = v
		}
		return n, nil
	default:
		return expr, nil
	}
}

func callArgValues(call *ast.CallExpression) []ast.Expression {
	if args, ok := call.Arguments.(*ast.TupleArguments); ok {
		return args.Values
	}
	return nil
}

func requireTarget(call *ast.CallExpression) (string, bool) {
	if call.IsMethodCall() {
		return "", false
	}
	ident, ok := call.Prefix.(*ast.IdentifierExpression)
	if !ok || ident.Name != "require" {
		return "", false
	}
	switch args := call.Arguments.(type) {
	case *ast.StringArguments:
		return args.Value.Value, true
	case *ast.TupleArguments:
		if len(args.Values) == 1 {
			if str, ok := args.Values[0].(*ast.StringExpression); ok {
				return str.Value, true
			}
		}
	}
	return "", false
}

// loadCall builds the `<identifier>.load("<resolvedPath>")` replacement for
// a resolved require call. resolvedPath is a placeholder here: it is the
// resource path the require targets, not yet the short synthetic name
// moduledef.BuildTable will later assign it, so bundler.substituteLoadPaths
// rewrites this string literal once that name is known.
func loadCall(identifier, resolvedPath string) ast.Expression {
	return &ast.CallExpression{
		Prefix: &ast.FieldExpression{
			Prefix: &ast.IdentifierExpression{Token: ast.NewToken(identifier), Name: identifier},
			Name:   ast.NewToken("load"),
		},
		Arguments: &ast.StringArguments{
			Value: &ast.StringExpression{Token: ast.NewToken(quoteGo(resolvedPath)), Value: resolvedPath},
		},
	}
}
