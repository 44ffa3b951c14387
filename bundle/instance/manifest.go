// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

// Package instance implements the instance-mode bundler (C7): Roblox-style
// instance tree addressing instead of filesystem paths. Every script is a
// node in an instance tree (an arena of Node plus a parent-pointer id tree),
// and a require resolves an instance-path expression (`script.Parent.Foo`,
// `game:GetService("X").Bar`) against that tree instead of against the
// filesystem.
package instance

import "github.com/dark-lua/darklua-core/dlerror"

// NodeID identifies one node in a Manifest's arena. The root of each tree
// satisfies is_root <=> id == parent_id, mirroring the round-trip invariant
// named by the testable properties: every node's parent id is itself for a
// root, and never itself for anything else.
type NodeID int

// Node is one entry of the instance tree: a name, a class (Script,
// ModuleScript, ...), the file path backing it (if any), and its parent.
type Node struct {
	ID       NodeID
	ParentID NodeID
	Name     string
	ClassName string
	FilePath string // "" for an instance with no backing source file
}

// Manifest is the instance tree for one bundling run: an arena of Node plus
// indexes by name-path and by file path, built either by scanning the
// resource tree directly (scripts mirror directories 1:1) or by loading an
// external Rojo sourcemap (LoadRojoSourcemap).
type Manifest struct {
	nodes     []Node
	byPath    map[string]NodeID // "/"-joined instance path -> node
	byFile    map[string]NodeID
	roots     map[string]NodeID // e.g. "game" -> root node, "script" resolved per work item
}

// NewManifest returns an empty manifest.
func NewManifest() *Manifest {
	return &Manifest{
		byPath: make(map[string]NodeID),
		byFile: make(map[string]NodeID),
		roots:  make(map[string]NodeID),
	}
}

// AddRoot inserts a root node (is_root: ParentID == ID) under name (e.g.
// "game" or a top-level service like "ReplicatedStorage").
func (m *Manifest) AddRoot(name, className string) NodeID {
	id := NodeID(len(m.nodes))
	m.nodes = append(m.nodes, Node{ID: id, ParentID: id, Name: name, ClassName: className})
	m.byPath[name] = id
	m.roots[name] = id
	return id
}

// AddChild inserts name as a child of parent, returning the new node's id.
func (m *Manifest) AddChild(parent NodeID, name, className, filePath string) NodeID {
	id := NodeID(len(m.nodes))
	m.nodes = append(m.nodes, Node{ID: id, ParentID: parent, Name: name, ClassName: className, FilePath: filePath})
	path := m.InstancePath(parent) + "/" + name
	m.byPath[path] = id
	if filePath != "" {
		m.byFile[filePath] = id
	}
	return id
}

// IsRoot reports whether id names a root node.
func (m *Manifest) IsRoot(id NodeID) bool {
	return int(id) < len(m.nodes) && m.nodes[id].ParentID == id
}

// Node returns the node at id.
func (m *Manifest) Node(id NodeID) (Node, bool) {
	if int(id) < 0 || int(id) >= len(m.nodes) {
		return Node{}, false
	}
	return m.nodes[id], true
}

// InstancePath renders id's full dotted-slash path from its root, e.g.
// "game/ReplicatedStorage/Modules/Foo".
func (m *Manifest) InstancePath(id NodeID) string {
	node, ok := m.Node(id)
	if !ok {
		return ""
	}
	if m.IsRoot(id) {
		return node.Name
	}
	return m.InstancePath(node.ParentID) + "/" + node.Name
}

// NodeFor returns the node backing filePath, if any.
func (m *Manifest) NodeFor(filePath string) (NodeID, bool) {
	id, ok := m.byFile[filePath]
	return id, ok
}

// NodeAtPath resolves a "/"-joined instance path to a node id.
func (m *Manifest) NodeAtPath(path string) (NodeID, bool) {
	id, ok := m.byPath[path]
	return id, ok
}

// Root returns the root node registered under name ("game" or a script
// root), or an error if name was never added.
func (m *Manifest) Root(name string) (NodeID, error) {
	id, ok := m.roots[name]
	if !ok {
		return 0, dlerror.NewResourceNotFound(name)
	}
	return id, nil
}
