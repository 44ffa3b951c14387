// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package pipeline

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/dark-lua/darklua-core/ast"
	"github.com/dark-lua/darklua-core/dlerror"
	"github.com/dark-lua/darklua-core/logging"
	"github.com/dark-lua/darklua-core/metrics"
	"github.com/dark-lua/darklua-core/resources"
	"github.com/dark-lua/darklua-core/rules"
)

// Parser turns a resource's raw content into a Block. The concrete Lua-subset
// parser lives outside this package; the driver only depends on this
// function type so it never needs to import the parser directly.
type Parser func(content []byte, path string, sourceID ast.SourceID) (*ast.Block, error)

// Driver runs the configured Rule chain, plus the RemoveUnusedVariable
// cleanup pass, over a sequence of WorkItems, suspending and resuming a work
// item cooperatively whenever a rule needs another resource's content. This
// is a single-threaded, external suspension model: Advance never blocks
// waiting for a dependency itself, it returns and expects the caller (the
// bundler, which knows how to resolve a require path into a new WorkItem) to
// make progress on the dependency first.
type Driver struct {
	Rules     []rules.Rule
	Cache     *WorkCache
	Sources   *ast.SourceRegistry
	Resources resources.Resources
	Parse     Parser
	Logger    logging.Logger
	Metrics   *metrics.Recorder

	// Cleanup runs after every configured Rule for a work item, in order.
	// Defaults to just RemoveUnusedVariable, and both bundlers set it to that
	// same single rule: no ReplaceReferencedTokens pass runs as cleanup. The
	// path bundler renames its load calls afterwards, in substituteLoadPaths.
	Cleanup []rules.Rule

	// Failed marks paths whose own Drive failed with a recoverable (§7 b)
	// error: a second require reaching the same broken module skips
	// reprocessing it and is left to its resolver rule to leave unchanged.
	Failed map[string]bool
	// Warnings accumulates every recoverable condition encountered during
	// this driver's lifetime (§7 a/b/c), returned to the caller instead of
	// only being logged.
	Warnings []dlerror.Warning

	// InstanceIndexingIsPure mirrors the configuration flag of the same
	// name, passed through to every rule's Context. Defaults to true via
	// NewDriver.
	InstanceIndexingIsPure bool
}

// NewDriver returns a Driver ready to process work items, with the default
// RemoveUnusedVariable cleanup pass installed.
func NewDriver(configured []rules.Rule, sources *ast.SourceRegistry, res resources.Resources, parse Parser) *Driver {
	return &Driver{
		Rules:                  configured,
		Cache:                  NewWorkCache(),
		Sources:                sources,
		Resources:              res,
		Parse:                  parse,
		Logger:                 logging.Noop(),
		Cleanup:                []rules.Rule{rules.RemoveUnusedVariable{}},
		Failed:                 make(map[string]bool),
		InstanceIndexingIsPure: true,
	}
}

// IsFailed reports whether path was previously marked failed by Drive.
func (d *Driver) IsFailed(path string) bool { return d.Failed[path] }

// Warn records a recoverable condition against path.
func (d *Driver) Warn(path, format string, args ...interface{}) {
	d.Warnings = append(d.Warnings, dlerror.Warning{Path: path, Message: fmt.Sprintf(format, args...)})
}

// Advance runs item forward as far as it can go without resolving a
// dependency the driver doesn't already have cached. It returns suspended =
// true when item is InProgress and still waiting on RequiredContent(); the
// caller must then ensure that path reaches the cache (typically by
// creating a WorkItem for it and driving that to Done first) and call
// Advance again.
func (d *Driver) Advance(item *WorkItem) (suspended bool, err error) {
	if item.State == Done {
		return false, nil
	}

	start := time.Now()
	defer func() { item.Duration += time.Since(start) }()

	nextRule := 0
	if item.State == NotStarted {
		if err := d.load(item); err != nil {
			return false, err
		}
		item.State = InProgress
	} else {
		p := item.resume()
		if p.RequiredContent != "" {
			if !d.Cache.Contains(p.RequiredContent) && !d.Failed[p.RequiredContent] {
				item.suspend(p.NextRuleIndex, p.RequiredContent)
				return true, nil
			}
		}
		nextRule = p.NextRuleIndex
	}

	block, ok := d.Cache.GetBlock(item.Path)
	if !ok {
		return false, errors.Errorf("pipeline: work item %s has no cached block", item.Path)
	}

	ctx := rules.NewContext(item.Path, d.Sources)
	ctx.InstanceIndexingIsPure = d.InstanceIndexingIsPure
	for i := nextRule; i < len(d.Rules); i++ {
		rule := d.Rules[i]
		ruleStart := time.Now()
		err := rule.Process(block, ctx)
		if d.Metrics != nil {
			d.Metrics.ObserveRule(rule.Name(), time.Since(ruleStart))
		}
		if err != nil {
			var req *rules.RequiresContent
			if errors.As(err, &req) {
				if d.Metrics != nil {
					d.Metrics.IncSuspend(rule.Name())
				}
				d.Logger.Debugf("work item %s suspends on rule %s waiting for %s", item.Path, rule.Name(), req.Path)
				item.suspend(i, req.Path)
				return true, nil
			}
			return false, dlerror.NewRuleError(rule.Name(), item.Path, err)
		}
	}

	for _, cleanup := range d.Cleanup {
		if err := cleanup.Process(block, ctx); err != nil {
			return false, dlerror.NewRuleError(cleanup.Name(), item.Path, err)
		}
	}

	item.State = Done
	return false, nil
}

func (d *Driver) load(item *WorkItem) error {
	if d.Cache.Contains(item.Path) {
		return nil
	}
	content, err := d.Resources.Get(item.Path)
	if err != nil {
		return err
	}
	sourceID := d.Sources.Intern(item.Path)
	block, err := d.Parse(content, item.Path, sourceID)
	if err != nil {
		return dlerror.NewParserError(item.Path, err)
	}
	d.Cache.Insert(item.Path, block)
	return nil
}

// Drive runs item to completion, resolving any required dependency path by
// creating and driving a WorkItem for it first (recursively). items is the
// set of in-flight WorkItems keyed by path, shared across a whole bundling
// run so a resource required by two different modules is only ever parsed
// and rule-processed once.
func (d *Driver) Drive(item *WorkItem, items map[string]*WorkItem) error {
	return d.drive(item, items, []string{item.Path})
}

// drive advances item to completion, recursively driving any required
// dependency. stack is the ordered chain of paths currently being resolved,
// from the original entry down to item itself, so a re-entered path can be
// reported with the exact ordered cycle it closes rather than the full
// (possibly larger) in-flight set.
func (d *Driver) drive(item *WorkItem, items map[string]*WorkItem, stack []string) error {
	for {
		suspended, err := d.Advance(item)
		if err != nil {
			return err
		}
		if !suspended {
			return nil
		}
		dep := item.RequiredContent()
		if d.Failed[dep] {
			continue
		}
		if i := indexOf(stack, dep); i >= 0 {
			cycle := append(append([]string{}, stack[i:]...), dep)
			return dlerror.NewCyclicRequire(cycle)
		}
		depItem, ok := items[dep]
		if !ok {
			depItem = NewWorkItem(dep)
			items[dep] = depItem
		}
		nextStack := make([]string, len(stack)+1)
		copy(nextStack, stack)
		nextStack[len(stack)] = dep
		if err := d.drive(depItem, items, nextStack); err != nil {
			var de *dlerror.Error
			if errors.As(err, &de) && (de.Kind == dlerror.ParserError || de.Kind == dlerror.ResourceNotFound || de.Kind == dlerror.RuleError) {
				d.Failed[dep] = true
				d.Warn(dep, "module could not be bundled (%s), left unresolved", de.Error())
				continue
			}
			return err
		}
	}
}

func indexOf(stack []string, path string) int {
	for i, p := range stack {
		if p == path {
			return i
		}
	}
	return -1
}
