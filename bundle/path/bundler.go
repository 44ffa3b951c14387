// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

// Package path implements the path-mode bundler (C6): require resolution
// against a configurable set of source roots and the module-folder
// convention, exclude-glob filtering, cycle detection (delegated to
// pipeline.Driver.Drive, which already refuses to re-enter a path on the
// current require stack), and folding every resolved module into the single
// synthesized table moduledef builds.
package path

import (
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dark-lua/darklua-core/ast"
	"github.com/dark-lua/darklua-core/bundle/moduledef"
	"github.com/dark-lua/darklua-core/dlerror"
	"github.com/dark-lua/darklua-core/parser"
	"github.com/dark-lua/darklua-core/pipeline"
	"github.com/dark-lua/darklua-core/resources"
	"github.com/dark-lua/darklua-core/rules"
)

// Options configures one path-mode bundle run.
type Options struct {
	// SourceRoots maps an alias (e.g. "Packages") to a directory prefix
	// (e.g. "./packages"), consulted before falling back to a require path
	// relative to the requiring file itself.
	SourceRoots map[string]string
	// ModuleFolderName is the file require resolves to when the target
	// names a directory, defaulting to "init" (so `require("a/b")` against
	// a directory `a/b/` resolves to `a/b/init.lua`).
	ModuleFolderName string
	// Excludes holds compiled glob matchers; any resolved path matching one
	// is left as a literal `require` call instead of being folded in.
	Excludes []Matcher
	// Rules are the user-configured rules, run after require resolution and
	// before the RemoveUnusedVariable cleanup pass.
	Rules []rules.Rule
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

// Matcher is the narrow surface Bundler needs from a compiled glob pattern.
type Matcher interface {
	Match(path string) bool
}

// Bundler resolves and folds an entry module and its transitive requires
// into one synthesized Block.
type Bundler struct {
	Resources resources.Resources
	Sources   *ast.SourceRegistry
	Options   Options

	resourceCache *lru.Cache[string, ast.Expression]
	warnings      []dlerror.Warning
}

// New returns a Bundler backed by res, with a bounded memoization cache for
// non-source resource transcoding (by contrast, the require stack used for
// cycle detection lives in pipeline.Driver and the module dedup table is
// pipeline.WorkCache's map; neither evicts).
func New(res resources.Resources, sources *ast.SourceRegistry, opts Options) *Bundler {
	if opts.ModuleFolderName == "" {
		opts.ModuleFolderName = "init"
	}
	if opts.ModulesIdentifier == "" {
		opts.ModulesIdentifier = moduledef.DefaultIdentifier
	}
	cache, _ := lru.New[string, ast.Expression](256)
	return &Bundler{Resources: res, Sources: sources, Options: opts, resourceCache: cache}
}

// Bundle resolves entryPath and every resource it transitively requires,
// applies Options.Rules to each one, and returns the synthesized module
// table block ready for code generation.
func (b *Bundler) Bundle(entryPath string) (*ast.Block, error) {
	driver := pipeline.NewDriver(nil, b.Sources, b.Resources, b.parse)
	driver.InstanceIndexingIsPure = !b.Options.DisableInstancePurity

	resolver := requireResolver{
		resolve:    b.resolveRequire,
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
	substituteLoadPaths(wrapped, table)
	return wrapped, nil
}

// Warnings returns the recoverable conditions accumulated by the most recent
// Bundle call (§7 a/b): a module left unresolved after a dependency failed to
// bundle, reported here instead of only through logging.
func (b *Bundler) Warnings() []dlerror.Warning {
	return b.warnings
}

// substituteLoadPaths rewrites every `<identifier>.load("<resolved path>")`
// string literal the require resolver left behind into
// `<identifier>.load("<synthetic name>")`, now that moduledef.BuildTable has
// assigned one name per path. It runs once, over the whole assembled table,
// rather than per-module, since a module can be required from many call
// sites scattered across every other module.
func substituteLoadPaths(block *ast.Block, table *moduledef.Table) {
	names := make(map[string]string, len(table.Modules))
	for _, m := range table.Modules {
		names[m.Path] = m.Name
	}
	ast.Inspect(block, func(n interface{}) bool {
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
			args.Value.Token.Content = quoteGo(name)
		}
		return true
	})
}

// parse is the pipeline.Parser this bundler drives the pipeline with: a
// `.lua` resource goes through the Lua-subset parser; anything else is
// transcoded (§4.3 step 5) into a Block that just returns the decoded
// value, memoized in resourceCache since the same data file can be
// required from several modules.
func (b *Bundler) parse(content []byte, resourcePath string, sourceID ast.SourceID) (*ast.Block, error) {
	if strings.HasSuffix(resourcePath, ".lua") {
		return parser.Parse(content, resourcePath, sourceID)
	}
	if cached, ok := b.resourceCache.Get(resourcePath); ok {
		return &ast.Block{Last: &ast.ReturnStatement{Values: []ast.Expression{cached}}}, nil
	}
	expr, err := TranscodeResource(resourcePath, content)
	if err != nil {
		return nil, err
	}
	b.resourceCache.Add(resourcePath, expr)
	return &ast.Block{Last: &ast.ReturnStatement{Values: []ast.Expression{expr}}}, nil
}

// resolveRequire turns a require target string (as written in source) into
// an absolute-ish resource path, consulting SourceRoots first and falling
// back to a path relative to the directory of from. excluded reports that
// the resolved path matches an exclude glob and should be left alone.
func (b *Bundler) resolveRequire(from, target string) (resolved string, excluded bool, err error) {
	resolved = target
	for alias, root := range b.Options.SourceRoots {
		prefix := alias + "/"
		if strings.HasPrefix(target, prefix) {
			resolved = filepath.ToSlash(filepath.Join(root, strings.TrimPrefix(target, prefix)))
			break
		}
	}
	if resolved == target && !strings.HasPrefix(target, "/") {
		resolved = filepath.ToSlash(filepath.Join(filepath.Dir(from), target))
	}

	for _, m := range b.Options.Excludes {
		if m.Match(resolved) {
			return resolved, true, nil
		}
	}

	if b.Resources.IsDirectory(resolved) {
		resolved = filepath.ToSlash(filepath.Join(resolved, b.Options.ModuleFolderName+".lua"))
	} else if !strings.HasSuffix(resolved, ".lua") && !b.Resources.Exists(resolved) {
		resolved += ".lua"
	}

	if !b.Resources.Exists(resolved) {
		return resolved, false, dlerror.NewResourceNotFound(resolved)
	}
	return resolved, false, nil
}
