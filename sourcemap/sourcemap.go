// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

// Package sourcemap builds source map v3 documents mapping generated Lua
// positions back to the original source positions they were produced from,
// the complement to the generate package's RetainLines/RetainLinesCompact
// modes: a generator chooses to fold whitespace back to original line
// numbers, a source map records exact (line, column) correspondences
// regardless of what the generator's formatting choices were.
package sourcemap

import (
	"encoding/json"
	"sort"
	"strings"
)

// Mapping is one generated-to-original position correspondence. Column is
// 0-indexed, Line is 1-indexed, matching the source map v3 convention.
type Mapping struct {
	GeneratedLine   int
	GeneratedColumn int
	SourceIndex     int
	SourceLine      int
	SourceColumn    int
	Name            string // "" if this mapping carries no original symbol name
}

// Builder accumulates mappings for one generated file and renders them into
// a source map v3 document.
type Builder struct {
	File        string
	SourceRoot  string
	sources     []string
	sourceIndex map[string]int
	names       []string
	nameIndex   map[string]int
	mappings    []Mapping
}

// NewBuilder returns an empty Builder for a generated file named file.
func NewBuilder(file string) *Builder {
	return &Builder{
		File:        file,
		sourceIndex: make(map[string]int),
		nameIndex:   make(map[string]int),
	}
}

// AddSource interns a source file path, returning its index.
func (b *Builder) AddSource(path string) int {
	if idx, ok := b.sourceIndex[path]; ok {
		return idx
	}
	idx := len(b.sources)
	b.sources = append(b.sources, path)
	b.sourceIndex[path] = idx
	return idx
}

func (b *Builder) addName(name string) int {
	if name == "" {
		return -1
	}
	if idx, ok := b.nameIndex[name]; ok {
		return idx
	}
	idx := len(b.names)
	b.names = append(b.names, name)
	b.nameIndex[name] = idx
	return idx
}

// Add records one mapping. sourcePath is interned via AddSource automatically.
func (b *Builder) Add(generatedLine, generatedColumn int, sourcePath string, sourceLine, sourceColumn int, name string) {
	b.AddMapping(Mapping{
		GeneratedLine:   generatedLine,
		GeneratedColumn: generatedColumn,
		SourceIndex:     b.AddSource(sourcePath),
		SourceLine:      sourceLine,
		SourceColumn:    sourceColumn,
		Name:            name,
	})
}

// AddMapping records a Mapping built directly (SourceIndex must already be a
// valid index returned by AddSource).
func (b *Builder) AddMapping(m Mapping) {
	b.mappings = append(b.mappings, m)
}

// document is the JSON shape of a source map v3 file.
type document struct {
	Version    int      `json:"version"`
	File       string   `json:"file,omitempty"`
	SourceRoot string   `json:"sourceRoot,omitempty"`
	Sources    []string `json:"sources"`
	Names      []string `json:"names"`
	Mappings   string   `json:"mappings"`
}

// Build renders the accumulated mappings into a source map v3 JSON document.
func (b *Builder) Build() ([]byte, error) {
	sorted := make([]Mapping, len(b.mappings))
	copy(sorted, b.mappings)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].GeneratedLine != sorted[j].GeneratedLine {
			return sorted[i].GeneratedLine < sorted[j].GeneratedLine
		}
		return sorted[i].GeneratedColumn < sorted[j].GeneratedColumn
	})

	var out strings.Builder
	prevGenLine, prevGenCol, prevSrc, prevSrcLine, prevSrcCol, prevName := 1, 0, 0, 0, 0, 0
	first := true
	for _, m := range sorted {
		for prevGenLine < m.GeneratedLine {
			out.WriteByte(';')
			prevGenLine++
			prevGenCol = 0
		}
		if !first && prevGenLine == m.GeneratedLine {
			out.WriteByte(',')
		}
		first = false

		fields := []int{m.GeneratedColumn - prevGenCol, m.SourceIndex - prevSrc, m.SourceLine - 1 - prevSrcLine, m.SourceColumn - prevSrcCol}
		nameIdx := b.addName(m.Name)
		if nameIdx >= 0 {
			fields = append(fields, nameIdx-prevName)
			prevName = nameIdx
		}
		encodeVLQ(&out, fields...)

		prevGenCol = m.GeneratedColumn
		prevSrc = m.SourceIndex
		prevSrcLine = m.SourceLine - 1
		prevSrcCol = m.SourceColumn
	}

	doc := document{
		Version:    3,
		File:       b.File,
		SourceRoot: b.SourceRoot,
		Sources:    b.sources,
		Names:      b.names,
		Mappings:   out.String(),
	}
	if doc.Sources == nil {
		doc.Sources = []string{}
	}
	if doc.Names == nil {
		doc.Names = []string{}
	}
	return json.Marshal(doc)
}
