// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package instance

import (
	"path/filepath"
	"strings"

	"github.com/dark-lua/darklua-core/resources"
)

// BuildFromDirectory builds a Manifest by mirroring a resource directory
// tree 1:1: every subdirectory becomes a ModuleScript instance, every `.lua` file
// becomes a ModuleScript instance named after the file (minus extension),
// and a directory's own `init.lua` (using the bundler's configured
// module-folder name) backs the directory's own node rather than a child.
// This is the fallback the instance bundler uses when no external Rojo
// sourcemap is supplied.
func BuildFromDirectory(res resources.Resources, rootDir, rootName, moduleFolderName string) (*Manifest, error) {
	m := NewManifest()
	root := m.AddRoot(rootName, "DataModel")
	if err := scanInto(res, m, root, rootDir, moduleFolderName); err != nil {
		return nil, err
	}
	return m, nil
}

func scanInto(res resources.Resources, m *Manifest, parent NodeID, dir, moduleFolderName string) error {
	entries, err := res.ListDirectory(dir)
	if err != nil {
		return err
	}
	initName := moduleFolderName + ".lua"
	for _, entry := range entries {
		full := filepath.ToSlash(filepath.Join(dir, entry))
		if res.IsDirectory(full) {
			name := entry
			folderFile := ""
			initPath := filepath.ToSlash(filepath.Join(full, initName))
			if res.Exists(initPath) {
				folderFile = initPath
			}
			child := m.AddChild(parent, name, "ModuleScript", folderFile)
			if err := scanInto(res, m, child, full, moduleFolderName); err != nil {
				return err
			}
			continue
		}
		if !strings.HasSuffix(entry, ".lua") || entry == initName {
			continue
		}
		name := strings.TrimSuffix(entry, ".lua")
		m.AddChild(parent, name, "ModuleScript", full)
	}
	return nil
}
