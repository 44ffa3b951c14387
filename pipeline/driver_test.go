// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package pipeline

import (
	"fmt"
	"testing"

	"github.com/dark-lua/darklua-core/ast"
	"github.com/dark-lua/darklua-core/dlerror"
	"github.com/dark-lua/darklua-core/resources"
	"github.com/dark-lua/darklua-core/rules"
)

// stubParse returns an empty Block for every resource, whatever its content;
// these tests express requirements through rules instead.
func stubParse(content []byte, path string, sourceID ast.SourceID) (*ast.Block, error) {
	if len(content) == 0 {
		return &ast.Block{}, nil
	}
	return &ast.Block{}, nil
}

// requireOnce is a test rule that demands the content of a fixed path
// exactly once per work item other than that path's own, then succeeds.
type requireOnce struct {
	path string
	seen map[string]bool
}

func (requireOnce) Name() string { return "require_once" }

func (r requireOnce) Process(block *ast.Block, ctx *rules.Context) error {
	if r.seen[ctx.Path] || ctx.Path == r.path {
		return nil
	}
	r.seen[ctx.Path] = true
	return &rules.RequiresContent{Path: r.path}
}

type alwaysFails struct{}

func (alwaysFails) Name() string { return "always_fails" }
func (alwaysFails) Process(block *ast.Block, ctx *rules.Context) error {
	return fmt.Errorf("boom")
}

func TestAdvanceCompletesRuleLessItemInOneCall(t *testing.T) {
	res := resources.NewMemory()
	res.Set("a.lua", []byte("return 1"))
	sources := ast.NewSourceRegistry()
	driver := NewDriver(nil, sources, res, stubParse)

	item := NewWorkItem("a.lua")
	suspended, err := driver.Advance(item)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if suspended {
		t.Fatal("an item with no rules should complete in one Advance")
	}
	if item.State != Done {
		t.Errorf("State = %v, want Done", item.State)
	}
}

func TestAdvanceSuspendsWhenRuleRequiresContent(t *testing.T) {
	res := resources.NewMemory()
	res.Set("a.lua", []byte("return 1"))
	res.Set("b.lua", []byte("return 2"))
	sources := ast.NewSourceRegistry()
	driver := NewDriver([]rules.Rule{requireOnce{path: "b.lua", seen: map[string]bool{}}}, sources, res, stubParse)

	item := NewWorkItem("a.lua")
	suspended, err := driver.Advance(item)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !suspended {
		t.Fatal("expected the item to suspend waiting for b.lua")
	}
	if item.RequiredContent() != "b.lua" {
		t.Errorf("RequiredContent() = %q, want b.lua", item.RequiredContent())
	}

	dep := NewWorkItem("b.lua")
	if _, err := driver.Advance(dep); err != nil {
		t.Fatalf("unexpected error resolving dependency: %v", err)
	}
	driver.Cache.Insert("b.lua", &ast.Block{})

	suspended, err = driver.Advance(item)
	if err != nil {
		t.Fatalf("unexpected error resuming: %v", err)
	}
	if suspended {
		t.Fatal("expected the item to complete once its dependency is cached")
	}
	if item.State != Done {
		t.Errorf("State = %v, want Done", item.State)
	}
}

func TestAdvanceWrapsRuleFailureAsRuleError(t *testing.T) {
	res := resources.NewMemory()
	res.Set("a.lua", []byte("return 1"))
	driver := NewDriver([]rules.Rule{alwaysFails{}}, ast.NewSourceRegistry(), res, stubParse)

	_, err := driver.Advance(NewWorkItem("a.lua"))
	if !dlerror.As(err, dlerror.RuleError) {
		t.Fatalf("got %v, want a dlerror.RuleError", err)
	}
}

func TestDriveResolvesDependencyThenCompletes(t *testing.T) {
	res := resources.NewMemory()
	res.Set("a.lua", []byte("return 1"))
	res.Set("b.lua", []byte("return 2"))
	driver := NewDriver([]rules.Rule{requireOnce{path: "b.lua", seen: map[string]bool{}}}, ast.NewSourceRegistry(), res, stubParse)

	entry := NewWorkItem("a.lua")
	items := map[string]*WorkItem{"a.lua": entry}
	if err := driver.Drive(entry, items); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.State != Done {
		t.Errorf("entry State = %v, want Done", entry.State)
	}
	if !driver.Cache.Contains("b.lua") {
		t.Error("expected b.lua to have been resolved into the cache")
	}
}

func TestDriveDetectsCyclicRequire(t *testing.T) {
	res := resources.NewMemory()
	res.Set("a.lua", []byte("return 1"))
	res.Set("b.lua", []byte("return 2"))

	seenA := map[string]bool{}
	seenB := map[string]bool{}
	cyclic := cyclicPairRule{aSeen: seenA, bSeen: seenB}
	driver := NewDriver([]rules.Rule{cyclic}, ast.NewSourceRegistry(), res, stubParse)

	entry := NewWorkItem("a.lua")
	items := map[string]*WorkItem{"a.lua": entry}
	err := driver.Drive(entry, items)
	if !dlerror.As(err, dlerror.CyclicRequire) {
		t.Fatalf("got %v, want a dlerror.CyclicRequire", err)
	}
}

// cyclicPairRule makes a.lua require b.lua and b.lua require a.lua right
// back, forcing Drive's stack-based cycle detection to trigger.
type cyclicPairRule struct {
	aSeen map[string]bool
	bSeen map[string]bool
}

func (cyclicPairRule) Name() string { return "cyclic_pair" }

func (r cyclicPairRule) Process(block *ast.Block, ctx *rules.Context) error {
	switch ctx.Path {
	case "a.lua":
		if r.aSeen[ctx.Path] {
			return nil
		}
		r.aSeen[ctx.Path] = true
		return &rules.RequiresContent{Path: "b.lua"}
	case "b.lua":
		if r.bSeen[ctx.Path] {
			return nil
		}
		r.bSeen[ctx.Path] = true
		return &rules.RequiresContent{Path: "a.lua"}
	}
	return nil
}

// chainCycleRule makes main require v1, v1 require v2, and v2 require back
// to v1 (not main), so the reported cycle must start at v1 rather than
// including the uninvolved entry file.
type chainCycleRule struct {
	seen map[string]bool
}

func (chainCycleRule) Name() string { return "chain_cycle" }

func (r chainCycleRule) Process(block *ast.Block, ctx *rules.Context) error {
	if r.seen[ctx.Path] {
		return nil
	}
	r.seen[ctx.Path] = true
	switch ctx.Path {
	case "main.lua":
		return &rules.RequiresContent{Path: "v1.lua"}
	case "v1.lua":
		return &rules.RequiresContent{Path: "v2.lua"}
	case "v2.lua":
		return &rules.RequiresContent{Path: "v1.lua"}
	}
	return nil
}

func TestDriveCyclicRequireMessageNamesOnlyTheCycleInOrder(t *testing.T) {
	res := resources.NewMemory()
	res.Set("main.lua", []byte("return 1"))
	res.Set("v1.lua", []byte("return 1"))
	res.Set("v2.lua", []byte("return 1"))

	driver := NewDriver([]rules.Rule{chainCycleRule{seen: map[string]bool{}}}, ast.NewSourceRegistry(), res, stubParse)

	entry := NewWorkItem("main.lua")
	items := map[string]*WorkItem{"main.lua": entry}
	err := driver.Drive(entry, items)
	want := "CyclicRequire: cyclic require detected with `v1.lua` > `v2.lua` > `v1.lua`"
	if err == nil || err.Error() != want {
		t.Fatalf("got %v, want %q", err, want)
	}
}

func TestDriveRecoversFromFailedDependencyAndWarns(t *testing.T) {
	res := resources.NewMemory()
	res.Set("a.lua", []byte("return 1"))
	// b.lua is intentionally missing, so resolving it fails with
	// ResourceNotFound, a recoverable kind per Drive's drive() loop.
	driver := NewDriver([]rules.Rule{requireOnce{path: "b.lua", seen: map[string]bool{}}}, ast.NewSourceRegistry(), res, stubParse)

	entry := NewWorkItem("a.lua")
	items := map[string]*WorkItem{"a.lua": entry}
	if err := driver.Drive(entry, items); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !driver.IsFailed("b.lua") {
		t.Error("expected b.lua to be marked Failed")
	}
	if len(driver.Warnings) != 1 {
		t.Fatalf("got %d warnings, want 1", len(driver.Warnings))
	}
	if driver.Warnings[0].Path != "b.lua" {
		t.Errorf("warning path = %q, want b.lua", driver.Warnings[0].Path)
	}
}
