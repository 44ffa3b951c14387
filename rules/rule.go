// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

// Package rules defines the Rule interface applied by the pipeline driver
// to each work item's parsed Block, and the three concrete rules the
// specification names: compute_expression (the constant-folding exemplar),
// remove_unused_variable (the cleanup rule the driver runs once per work
// item after every configured rule has run) and replace_referenced_tokens
// (run only when configured as a rule).
package rules

import (
	"github.com/dark-lua/darklua-core/ast"
)

// Context carries the information a Rule needs beyond the Block itself: the
// path being processed (for diagnostics) and the shared SourceRegistry (for
// resolving origins).
type Context struct {
	Path     string
	Sources  *ast.SourceRegistry
	Required []string // not filled by the driver; requests travel as *RequiresContent errors
	// InstanceIndexingIsPure mirrors the configuration flag of the same
	// name: whether indexing through game/script may be assumed free of
	// side effects for constant-folding and dead-code rules. Defaults to
	// true via NewContext.
	InstanceIndexingIsPure bool
}

// NewContext returns a Context for processing path against registry, with
// InstanceIndexingIsPure defaulted to true.
func NewContext(path string, registry *ast.SourceRegistry) *Context {
	return &Context{Path: path, Sources: registry, InstanceIndexingIsPure: true}
}

// Rule transforms a Block in place. A Rule that needs the parsed content of
// another resource before it can proceed returns a *RequiresContent from
// Process; the driver resolves the dependency, primes the work cache, and
// calls Process again.
type Rule interface {
	// Name returns the rule's configuration key, e.g. "compute_expression".
	Name() string
	// Process applies the rule to block, returning an error if it cannot
	// proceed (including the sentinel *RequiresContent).
	Process(block *ast.Block, ctx *Context) error
}

// RequiresContent is returned by Process when the rule needs the resolved
// content of another resource before it can finish. The driver's work item
// state machine (pipeline package) recognizes this sentinel type, resolves
// Path through the bundler's require resolution, and resumes the rule.
type RequiresContent struct {
	Path string
}

func (r *RequiresContent) Error() string {
	return "rule requires content of " + r.Path + " before it can proceed"
}

// Error reports that applying a named rule failed for a reason other than
// a content dependency.
type Error struct {
	Rule    string
	Message string
}

func (e *Error) Error() string {
	return "rule " + e.Rule + ": " + e.Message
}
