// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package sourcemap

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestEncodeVLQKnownValues(t *testing.T) {
	cases := []struct {
		value int
		want  string
	}{
		{0, "A"},
		{1, "C"},
		{-1, "D"},
		{16, "gB"},
	}
	for _, c := range cases {
		var b strings.Builder
		encodeVLQOne(&b, c.value)
		if got := b.String(); got != c.want {
			t.Errorf("encodeVLQOne(%d) = %q, want %q", c.value, got, c.want)
		}
	}
}

func TestBuilderAddSourceInternsAndDedups(t *testing.T) {
	b := NewBuilder("out.lua")
	i1 := b.AddSource("a.lua")
	i2 := b.AddSource("b.lua")
	i3 := b.AddSource("a.lua")
	if i1 != 0 || i2 != 1 {
		t.Fatalf("got %d, %d, want 0, 1", i1, i2)
	}
	if i3 != i1 {
		t.Errorf("re-adding a.lua got index %d, want %d (deduped)", i3, i1)
	}
}

func TestBuilderBuildProducesVersion3Document(t *testing.T) {
	b := NewBuilder("out.lua")
	b.Add(1, 0, "a.lua", 1, 0, "")
	b.Add(1, 5, "a.lua", 1, 5, "foo")
	b.Add(2, 0, "a.lua", 3, 0, "")

	raw, err := b.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var doc struct {
		Version  int      `json:"version"`
		File     string   `json:"file"`
		Sources  []string `json:"sources"`
		Names    []string `json:"names"`
		Mappings string   `json:"mappings"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if doc.Version != 3 {
		t.Errorf("got version %d, want 3", doc.Version)
	}
	if doc.File != "out.lua" {
		t.Errorf("got file %q, want out.lua", doc.File)
	}
	if len(doc.Sources) != 1 || doc.Sources[0] != "a.lua" {
		t.Errorf("got sources %v, want [a.lua]", doc.Sources)
	}
	if len(doc.Names) != 1 || doc.Names[0] != "foo" {
		t.Errorf("got names %v, want [foo]", doc.Names)
	}
	if doc.Mappings == "" {
		t.Error("expected a non-empty mappings string")
	}
	// Two generated lines of mappings means exactly one ';' segment separator.
	if strings.Count(doc.Mappings, ";") != 1 {
		t.Errorf("got mappings %q, want exactly one ';' between generated line 1 and 2", doc.Mappings)
	}
}

func TestBuilderBuildEmptyProducesEmptyArraysNotNull(t *testing.T) {
	b := NewBuilder("out.lua")
	raw, err := b.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(string(raw), "null") {
		t.Errorf("got %s, want no null fields (sources/names must be empty arrays)", raw)
	}
}
