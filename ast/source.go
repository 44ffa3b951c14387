// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package ast

// SourceID identifies an interned source path. The zero value, SyntheticSource,
// is reserved for tokens synthesized by a rule rather than read from a file.
type SourceID uint32

// SyntheticSource is the source id assigned to tokens that have no origin in
// any input file.
const SyntheticSource SourceID = 0

// SourceRegistry interns absolute source paths into dense ids. Ids are never
// reused: once assigned, a path keeps the same id for the lifetime of the
// registry. The registry is process-wide state for one bundling run and is
// shared by reference across the pipeline driver, both bundlers, and the
// source-map emitter so that origin ids stay stable across a bundle.
type SourceRegistry struct {
	byPath map[string]SourceID
	byID   []string
}

// NewSourceRegistry returns an empty registry. Id 0 is reserved for
// SyntheticSource and is never handed out by Intern.
func NewSourceRegistry() *SourceRegistry {
	return &SourceRegistry{
		byPath: make(map[string]SourceID),
		byID:   []string{""},
	}
}

// Intern returns the id for path, assigning a new one if path has not been
// seen before.
func (r *SourceRegistry) Intern(path string) SourceID {
	if id, ok := r.byPath[path]; ok {
		return id
	}
	id := SourceID(len(r.byID))
	r.byID = append(r.byID, path)
	r.byPath[path] = id
	return id
}

// Path returns the path registered under id, or "" and false if id is unknown
// or is SyntheticSource.
func (r *SourceRegistry) Path(id SourceID) (string, bool) {
	if id == SyntheticSource || int(id) >= len(r.byID) {
		return "", false
	}
	return r.byID[id], true
}

// Len returns the number of real (non-synthetic) interned sources.
func (r *SourceRegistry) Len() int {
	return len(r.byID) - 1
}

// Paths returns every interned path in id order (excluding the synthetic slot).
func (r *SourceRegistry) Paths() []string {
	out := make([]string, 0, r.Len())
	out = append(out, r.byID[1:]...)
	return out
}
