// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package instance

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// rojoNode mirrors the shape of one entry in a Rojo-generated sourcemap.json
// tree: a name, class name, an optional list of backing file paths (the
// first .lua/.server.lua/.client.lua entry is treated as this node's
// script), and nested children.
type rojoNode struct {
	Name      string     `json:"name"`
	ClassName string     `json:"className"`
	FilePaths []string   `json:"filePaths"`
	Children  []rojoNode `json:"children"`
}

// LoadRojoSourcemap decodes a Rojo sourcemap.json document into a Manifest,
// the supplemented feature this spec's "roblox" require mode relies on
// instead of scanning the instance tree implicitly from directory
// structure. baseDir is joined with each entry's file paths, since Rojo
// sourcemaps record paths relative to the project file.
func LoadRojoSourcemap(content []byte, baseDir string) (*Manifest, error) {
	var root rojoNode
	if err := json.Unmarshal(content, &root); err != nil {
		return nil, errors.Wrap(err, "decoding rojo sourcemap")
	}
	m := NewManifest()
	rootID := m.AddRoot(root.Name, root.ClassName)
	if fp := scriptFilePath(root.FilePaths, baseDir); fp != "" {
		m.byFile[fp] = rootID
	}
	for _, child := range root.Children {
		insertRojoNode(m, rootID, child, baseDir)
	}
	return m, nil
}

func insertRojoNode(m *Manifest, parent NodeID, n rojoNode, baseDir string) {
	fp := scriptFilePath(n.FilePaths, baseDir)
	id := m.AddChild(parent, n.Name, n.ClassName, fp)
	for _, child := range n.Children {
		insertRojoNode(m, id, child, baseDir)
	}
}

func scriptFilePath(paths []string, baseDir string) string {
	for _, p := range paths {
		if strings.HasSuffix(p, ".lua") {
			return filepath.ToSlash(filepath.Join(baseDir, p))
		}
	}
	return ""
}
