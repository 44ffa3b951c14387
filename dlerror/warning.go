// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package dlerror

import "fmt"

// Warning is a recoverable condition (§7 a/b: an unresolved instance-path
// require, a module skipped after a previous failure) recorded instead of
// aborting the run. Warnings accumulate on pipeline.Driver.Warnings and each
// bundler exposes them through its Warnings method, so callers can assert
// on them directly. A failed source-map write in the CLI is only logged,
// not recorded as a Warning.
type Warning struct {
	Path    string
	Message string
}

func (w Warning) String() string {
	if w.Path == "" {
		return w.Message
	}
	return fmt.Sprintf("%s: %s", w.Path, w.Message)
}
