// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

// Package generate renders a Block back into Lua source text. Four
// generators are first-class: Dense (minimum bytes, no formatting),
// Readable (indented, spaced, for humans), RetainLines (Readable plus
// blank-line padding so a node's output line number matches its origin,
// the shape a source map needs to stay trivial), and RetainLinesCompact
// (RetainLines but collapsing runs of blank lines to at most one).
package generate

import (
	"github.com/dark-lua/darklua-core/ast"
	"github.com/dark-lua/darklua-core/sourcemap"
)

// Mode selects one of the four generator shapes.
type Mode int

const (
	Dense Mode = iota
	Readable
	RetainLines
	RetainLinesCompact
)

func (m Mode) String() string {
	switch m {
	case Dense:
		return "dense"
	case Readable:
		return "readable"
	case RetainLines:
		return "retain_lines"
	case RetainLinesCompact:
		return "retain_lines_compact"
	default:
		return "unknown"
	}
}

// ModeFromName maps a configuration-file generator name to a Mode.
func ModeFromName(name string) (Mode, bool) {
	switch name {
	case "dense":
		return Dense, true
	case "readable":
		return Readable, true
	case "retain_lines":
		return RetainLines, true
	case "retain_lines_compact":
		return RetainLinesCompact, true
	default:
		return 0, false
	}
}

// Options configures one Generate call.
type Options struct {
	Mode Mode
	// IndentWidth is the number of spaces per indent level for Readable and
	// the retain-lines modes. Ignored by Dense. Defaults to 4 when zero.
	IndentWidth int
	// Columns holds the configured column span. No generator consults it:
	// output lines are not wrapped at any width. Defaults to 80 when zero.
	Columns int
}

func (o Options) withDefaults() Options {
	if o.IndentWidth <= 0 {
		o.IndentWidth = 4
	}
	if o.Columns <= 0 {
		o.Columns = 80
	}
	return o
}

// Generate renders block under opts, returning the generated Lua source.
func Generate(block *ast.Block, opts Options) (string, error) {
	p := newPrinter(opts.withDefaults())
	p.writeBlock(block, true)
	return p.buf.String(), nil
}

// GenerateWithMap renders block under opts exactly like Generate, and also
// builds a source map v3 document naming outputFile, resolving each token's
// ast.SourceID to a path via sources. Works with any of the four modes: the
// map is built from tracked output positions regardless of how the
// generator chose to format the code. sourceRoot is copied onto the map's
// sourceRoot field verbatim, and may be left empty.
func GenerateWithMap(block *ast.Block, opts Options, sources *ast.SourceRegistry, outputFile, sourceRoot string) (code string, mapJSON []byte, err error) {
	p := newPrinter(opts.withDefaults())
	p.sourceMap = sourcemap.NewBuilder(outputFile)
	p.sourceMap.SourceRoot = sourceRoot
	p.sources = sources
	p.writeBlock(block, true)
	mapJSON, err = p.sourceMap.Build()
	if err != nil {
		return "", nil, err
	}
	return p.buf.String(), mapJSON, nil
}
