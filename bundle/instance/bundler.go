// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package instance

import (
	"fmt"

	"github.com/dark-lua/darklua-core/ast"
	"github.com/dark-lua/darklua-core/bundle/moduledef"
	"github.com/dark-lua/darklua-core/dlerror"
	"github.com/dark-lua/darklua-core/parser"
	"github.com/dark-lua/darklua-core/pipeline"
	"github.com/dark-lua/darklua-core/resources"
	"github.com/dark-lua/darklua-core/rules"
)

// Options configures one instance-mode bundle run.
type Options struct {
	// Aliases maps a local variable name to a root name ("game" or a
	// script root), as collected by CollectAliases for bindings like
	// `local ReplicatedStorage = game:GetService("ReplicatedStorage")`.
	Aliases map[string]string
	// ExcludeInstancePaths are absolute instance paths (e.g.
	// "game/ReplicatedStorage/Vendor") left as literal `require` calls
	// instead of being folded in.
	ExcludeInstancePaths map[string]bool
	Rules                []rules.Rule
	// ModulesIdentifier names the single synthesized table every inlined
	// module, its result cache, and its loader hang off of (configuration's
	// bundle.modules_identifier), defaulting to moduledef's own default.
	ModulesIdentifier string
	// DisableInstancePurity, when set, stops rules from assuming that
	// indexing through game/script is side-effect free (configuration's
	// instance_indexing_is_pure=false or treat_indexing_as_noopt=true).
	// The zero value keeps the default, game/script indexing assumed pure.
	DisableInstancePurity bool
}

// Bundler resolves and folds an entry script and its transitive instance-
// path requires into one synthesized Block.
type Bundler struct {
	Resources resources.Resources
	Sources   *ast.SourceRegistry
	Manifest  *Manifest
	Options   Options

	warnings []dlerror.Warning
}

// New returns a Bundler resolving instance paths against manifest.
func New(res resources.Resources, sources *ast.SourceRegistry, manifest *Manifest, opts Options) *Bundler {
	if opts.Aliases == nil {
		opts.Aliases = map[string]string{}
	}
	if opts.ExcludeInstancePaths == nil {
		opts.ExcludeInstancePaths = map[string]bool{}
	}
	if opts.ModulesIdentifier == "" {
		opts.ModulesIdentifier = moduledef.DefaultIdentifier
	}
	return &Bundler{Resources: res, Sources: sources, Manifest: manifest, Options: opts}
}

// Bundle resolves entryPath (a file path backing an instance node) and
// every instance-path require it transitively reaches, returning the
// synthesized module table block.
func (b *Bundler) Bundle(entryPath string) (*ast.Block, error) {
	driver := pipeline.NewDriver(nil, b.Sources, b.Resources, parser.Parse)
	driver.InstanceIndexingIsPure = !b.Options.DisableInstancePurity

	resolver := instanceResolver{
		bundler:    b,
		available:  driver.Cache.Contains,
		failed:     driver.IsFailed,
		warn:       driver.Warn,
		identifier: b.Options.ModulesIdentifier,
	}
	driver.Rules = append([]rules.Rule{resolver}, b.Options.Rules...)
	driver.Cleanup = []rules.Rule{rules.RemoveUnusedVariable{}}

	items := map[string]*pipeline.WorkItem{entryPath: pipeline.NewWorkItem(entryPath)}
	if err := driver.Drive(items[entryPath], items); err != nil {
		b.warnings = driver.Warnings
		return nil, err
	}
	b.warnings = driver.Warnings

	order := driver.Cache.Paths()
	bodies := make(map[string]*ast.Block, len(order))
	for _, p := range order {
		block, _ := driver.Cache.GetBlock(p)
		bodies[p] = block
	}
	table, err := moduledef.BuildTable(order, bodies, b.Options.ModulesIdentifier)
	if err != nil {
		return nil, err
	}
	wrapped := table.Wrap()
	names := make(map[string]string, len(table.Modules))
	for _, mod := range table.Modules {
		names[mod.Path] = mod.Name
	}
	ast.Inspect(wrapped, func(n interface{}) bool {
		call, ok := n.(*ast.CallExpression)
		if !ok {
			return true
		}
		field, ok := call.Prefix.(*ast.FieldExpression)
		if !ok || field.Name.Content != "load" {
			return true
		}
		ident, ok := field.Prefix.(*ast.IdentifierExpression)
		if !ok || ident.Name != table.Identifier {
			return true
		}
		args, ok := call.Arguments.(*ast.StringArguments)
		if !ok {
			return true
		}
		if name, ok := names[args.Value.Value]; ok {
			args.Value.Value = name
			args.Value.Token.Content = `"` + name + `"`
		}
		return true
	})
	return wrapped, nil
}

// Warnings returns the recoverable conditions accumulated by the most recent
// Bundle call (§7 a/b): an instance-path require that could not be resolved,
// or a module left unresolved after a dependency failed to bundle.
func (b *Bundler) Warnings() []dlerror.Warning {
	return b.warnings
}

// instanceResolver is the instance-mode analogue of the path bundler's
// requireResolver rule: it rewrites `require(<instance-path expression>)`
// into a call to the synthesized `load` function, using the resolved file
// path as a placeholder argument, and returns *rules.RequiresContent when
// the target hasn't been parsed yet.
type instanceResolver struct {
	bundler    *Bundler
	available  func(path string) bool
	failed     func(path string) bool
	warn       func(path, format string, args ...interface{})
	identifier string
}

func (instanceResolver) Name() string { return "resolve_instance_require" }

func (r instanceResolver) Process(block *ast.Block, ctx *rules.Context) error {
	fromNode, ok := r.bundler.Manifest.NodeFor(ctx.Path)
	if !ok {
		return fmt.Errorf("no instance node backs %s", ctx.Path)
	}
	return r.walkBlock(block, ctx, fromNode)
}

func (r instanceResolver) walkBlock(block *ast.Block, ctx *rules.Context, fromNode NodeID) error {
	for _, stmt := range block.Statements {
		if err := r.walkStatement(stmt, ctx, fromNode); err != nil {
			return err
		}
	}
	if ret, ok := block.Last.(*ast.ReturnStatement); ok {
		for i := range ret.Values {
			replaced, err := r.walkExpr(ret.Values[i], ctx, fromNode)
			if err != nil {
				return err
			}
			ret.Values[i] = replaced
		}
	}
	return nil
}

func (r instanceResolver) walkStatement(stmt ast.Statement, ctx *rules.Context, fromNode NodeID) error {
	switch n := stmt.(type) {
	case *ast.LocalAssignStatement:
		return r.walkExprs(n.Values, ctx, fromNode)
	case *ast.AssignStatement:
		return r.walkExprs(n.Values, ctx, fromNode)
	case *ast.CallStatement:
		replaced, err := r.walkExpr(n.Call, ctx, fromNode)
		if err != nil {
			return err
		}
		if call, ok := replaced.(*ast.CallExpression); ok {
			n.Call = call
		}
		return nil
	case *ast.DoStatement:
		return r.walkBlock(&n.Body, ctx, fromNode)
	case *ast.IfStatement:
		for i := range n.Clauses {
			if err := r.walkBlock(&n.Clauses[i].Body, ctx, fromNode); err != nil {
				return err
			}
		}
		if n.Else != nil {
			return r.walkBlock(n.Else, ctx, fromNode)
		}
	case *ast.WhileStatement:
		return r.walkBlock(&n.Body, ctx, fromNode)
	case *ast.RepeatStatement:
		return r.walkBlock(&n.Body, ctx, fromNode)
	case *ast.NumericForStatement:
		return r.walkBlock(&n.Body, ctx, fromNode)
	case *ast.GenericForStatement:
		return r.walkBlock(&n.Body, ctx, fromNode)
	case *ast.FunctionStatement:
		return r.walkBlock(&n.Function.Body, ctx, fromNode)
	}
	return nil
}

func (r instanceResolver) walkExprs(exprs []ast.Expression, ctx *rules.Context, fromNode NodeID) error {
	for i := range exprs {
		replaced, err := r.walkExpr(exprs[i], ctx, fromNode)
		if err != nil {
			return err
		}
		exprs[i] = replaced
	}
	return nil
}

func (r instanceResolver) walkExpr(expr ast.Expression, ctx *rules.Context, fromNode NodeID) (ast.Expression, error) {
	call, ok := expr.(*ast.CallExpression)
	if !ok {
		return expr, nil
	}
	if ident, ok := call.Prefix.(*ast.IdentifierExpression); ok && ident.Name == "require" && !call.IsMethodCall() {
		target, ok := requireInstanceTarget(call)
		if ok {
			components, ok := ParseInstancePath(target, r.bundler.Options.Aliases)
			if ok {
				nodeID, err := r.bundler.Manifest.Resolve(components, fromNode)
				if err != nil {
					r.warn("", "require could not be resolved to an instance path (%s), left as a literal require call", err)
					return call, nil
				}
				instancePath := r.bundler.Manifest.InstancePath(nodeID)
				if r.bundler.Options.ExcludeInstancePaths[instancePath] {
					return call, nil
				}
				node, _ := r.bundler.Manifest.Node(nodeID)
				if node.FilePath == "" {
					r.warn(instancePath, "instance path does not resolve to a script, left as a literal require call")
					return call, nil
				}
				if r.failed(node.FilePath) {
					r.warn(node.FilePath, "required module could not be bundled, left as a literal require call")
					return call, nil
				}
				if !r.available(node.FilePath) {
					return nil, &rules.RequiresContent{Path: node.FilePath}
				}
				return &ast.CallExpression{
					Prefix: &ast.FieldExpression{
						Prefix: &ast.IdentifierExpression{Token: ast.NewToken(r.identifier), Name: r.identifier},
						Name:   ast.NewToken("load"),
					},
					Arguments: &ast.StringArguments{
						Value: &ast.StringExpression{Token: ast.NewToken(`"` + node.FilePath + `"`), Value: node.FilePath},
					},
				}, nil
			}
		}
	}
	if args, ok := call.Arguments.(*ast.TupleArguments); ok {
		if err := r.walkExprs(args.Values, ctx, fromNode); err != nil {
			return nil, err
		}
	}
	return call, nil
}

func requireInstanceTarget(call *ast.CallExpression) (ast.Prefix, bool) {
	args, ok := call.Arguments.(*ast.TupleArguments)
	if !ok || len(args.Values) != 1 {
		return nil, false
	}
	prefix, ok := args.Values[0].(ast.Prefix)
	return prefix, ok
}
