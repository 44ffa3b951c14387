// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func resetProcessFlags(t *testing.T) {
	t.Helper()
	prevConfig, prevSourceMap, prevWatch := processConfigPath, processSourceMap, processWatch
	processConfigPath, processSourceMap, processWatch = "", false, false
	t.Cleanup(func() {
		processConfigPath, processSourceMap, processWatch = prevConfig, prevSourceMap, prevWatch
	})
}

func TestRunProcessSingleFileNoConfig(t *testing.T) {
	resetProcessFlags(t)
	dir := chdirTemp(t)

	input := filepath.Join(dir, "in.lua")
	output := filepath.Join(dir, "out.lua")
	if err := os.WriteFile(input, []byte("local x = 1\nreturn x\n"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := runProcess(input, output); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	content, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(content), "local x") {
		t.Errorf("got %q, want the processed source to still declare x", content)
	}
}

func TestRunProcessAppliesComputeExpressionRule(t *testing.T) {
	resetProcessFlags(t)
	dir := chdirTemp(t)

	if err := os.WriteFile(filepath.Join(dir, "darklua.json"), []byte(`{
		"rules": [{"name": "compute_expression"}],
		"generator": {"name": "dense"}
	}`), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	input := filepath.Join(dir, "in.lua")
	output := filepath.Join(dir, "out.lua")
	if err := os.WriteFile(input, []byte("return 1 + 2\n"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := runProcess(input, output); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	content, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(content), "3") {
		t.Errorf("got %q, want the folded constant 3", content)
	}
}

func TestRunProcessBundlesPathModeRequires(t *testing.T) {
	resetProcessFlags(t)
	dir := chdirTemp(t)

	if err := os.WriteFile(filepath.Join(dir, "darklua.json"), []byte(`{
		"rules": [],
		"generator": {"name": "dense"},
		"bundle": {"require_mode": {"name": "path"}}
	}`), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.lua"), []byte("return 42\n"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	input := filepath.Join(dir, "a.lua")
	if err := os.WriteFile(input, []byte("local b = require(\"b\")\nreturn b\n"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	output := filepath.Join(dir, "out.lua")

	if err := runProcess(input, output); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	content, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(content), "load") {
		t.Errorf("got %q, want a bundled output calling the synthesized load function", content)
	}
}

func TestRunProcessWritesSourceMapWhenRequested(t *testing.T) {
	resetProcessFlags(t)
	dir := chdirTemp(t)
	processSourceMap = true

	input := filepath.Join(dir, "in.lua")
	output := filepath.Join(dir, "out.lua")
	if err := os.WriteFile(input, []byte("local x = 1\n"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := runProcess(input, output); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(output + ".map"); err != nil {
		t.Errorf("expected a %s.map file to be written, got %v", output, err)
	}
}

func TestRunProcessInvalidInputReturnsError(t *testing.T) {
	resetProcessFlags(t)
	dir := chdirTemp(t)
	if err := runProcess(filepath.Join(dir, "missing.lua"), filepath.Join(dir, "out.lua")); err == nil {
		t.Error("expected an error for a missing input file")
	}
}

func TestRunProcessSourceMapHonorsOutputPathAndSourceRoot(t *testing.T) {
	resetProcessFlags(t)
	dir := chdirTemp(t)

	if err := os.WriteFile(filepath.Join(dir, "darklua.json"), []byte(`{
		"rules": [],
		"generator": {"name": "dense"},
		"bundle": {
			"require_mode": {"name": "path"},
			"sourcemap": {"enabled": true, "output_path": "custom.map", "source_root": "/src"}
		}
	}`), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	input := filepath.Join(dir, "in.lua")
	if err := os.WriteFile(input, []byte("local x = 1\n"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	output := filepath.Join(dir, "out.lua")

	if err := runProcess(input, output); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "custom.map")); err != nil {
		t.Errorf("expected custom.map to be written at the configured output_path, got %v", err)
	}
	if _, err := os.Stat(output + ".map"); err == nil {
		t.Error("did not expect a map at the default <output>.map path when output_path overrides it")
	}
	mapContent, err := os.ReadFile(filepath.Join(dir, "custom.map"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(mapContent), `"sourceRoot":"/src"`) {
		t.Errorf("got %q, want the configured source_root embedded in the map", mapContent)
	}
}

func TestRunProcessTreatIndexingAsNooptDisablesInstanceFolding(t *testing.T) {
	resetProcessFlags(t)
	dir := chdirTemp(t)

	if err := os.WriteFile(filepath.Join(dir, "darklua.json"), []byte(`{
		"rules": [{"name": "remove_unused_variable"}],
		"generator": {"name": "dense"},
		"treat_indexing_as_noopt": true
	}`), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	input := filepath.Join(dir, "in.lua")
	if err := os.WriteFile(input, []byte("local w = game:GetService(\"Workspace\")\nreturn 1\n"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	output := filepath.Join(dir, "out.lua")

	if err := runProcess(input, output); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	content, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Unused, but its initializer is a call: with instance indexing no
	// longer assumed pure, remove_unused_variable keeps the call itself
	// (dropping only the now-dead binding) rather than deleting it outright.
	if !strings.Contains(string(content), "GetService") {
		t.Errorf("got %q, want the GetService call preserved as a bare statement", content)
	}
	if strings.Contains(string(content), "local w") {
		t.Errorf("got %q, want the unused binding itself removed", content)
	}
}
