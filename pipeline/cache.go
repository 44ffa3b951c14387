// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package pipeline

import "github.com/dark-lua/darklua-core/ast"

// WorkCache holds the parsed Block of every resource resolved so far during
// a bundling run, keyed by path. It never evicts: dependency resolution
// relies on every previously seen path staying
// resolvable for the lifetime of the run, unlike the bounded LRU used for
// non-source resource transcoding (bundle/path).
type WorkCache struct {
	blocks map[string]*ast.Block
	order  []string
}

// NewWorkCache returns an empty cache.
func NewWorkCache() *WorkCache {
	return &WorkCache{blocks: make(map[string]*ast.Block)}
}

// Contains reports whether path's Block has already been resolved.
func (c *WorkCache) Contains(path string) bool {
	_, ok := c.blocks[path]
	return ok
}

// GetBlock returns the cached Block for path, or nil and false.
func (c *WorkCache) GetBlock(path string) (*ast.Block, bool) {
	b, ok := c.blocks[path]
	return b, ok
}

// Insert records block under path, overwriting any earlier entry.
func (c *WorkCache) Insert(path string, block *ast.Block) {
	if _, exists := c.blocks[path]; !exists {
		c.order = append(c.order, path)
	}
	c.blocks[path] = block
}

// Paths returns every path inserted so far, in insertion order.
func (c *WorkCache) Paths() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}
