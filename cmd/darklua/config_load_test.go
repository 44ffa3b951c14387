// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dark-lua/darklua-core/config"
	"github.com/dark-lua/darklua-core/rules"
)

func configWithRules(names ...string) *config.Configuration {
	cfg := &config.Configuration{}
	for _, name := range names {
		cfg.Rules = append(cfg.Rules, config.RuleConfig{Name: name})
	}
	return cfg
}

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { os.Chdir(cwd) })
	return dir
}

func TestLoadConfigurationExplicitPath(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "custom.json")
	if err := os.WriteFile(path, []byte(`{"generator": {"name": "dense"}}`), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg, err := loadConfiguration(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Generator.Name != "dense" {
		t.Errorf("got %q, want dense", cfg.Generator.Name)
	}
}

func TestLoadConfigurationMissingExplicitPath(t *testing.T) {
	chdirTemp(t)
	_, err := loadConfiguration("nonexistent.json")
	if err == nil {
		t.Error("expected an error for a missing explicit path")
	}
}

func TestLoadConfigurationNoDefaultFileUsesBuiltinDefaults(t *testing.T) {
	chdirTemp(t)
	cfg, err := loadConfiguration("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Generator.Name != "retain_lines" {
		t.Errorf("got %q, want retain_lines", cfg.Generator.Name)
	}
	if len(cfg.Rules) != 0 {
		t.Errorf("got %v, want no rules", cfg.Rules)
	}
}

func TestLoadConfigurationFindsSingleDefaultFile(t *testing.T) {
	dir := chdirTemp(t)
	if err := os.WriteFile(filepath.Join(dir, "darklua.json"), []byte(`{"generator": {"name": "dense"}}`), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg, err := loadConfiguration("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Generator.Name != "dense" {
		t.Errorf("got %q, want dense", cfg.Generator.Name)
	}
}

func TestLoadConfigurationAmbiguousDefaultFiles(t *testing.T) {
	dir := chdirTemp(t)
	if err := os.WriteFile(filepath.Join(dir, ".darklua.json"), []byte(`{}`), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "darklua.json"), []byte(`{}`), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := loadConfiguration("")
	if err == nil {
		t.Fatal("expected an error when multiple default configuration files exist")
	}
}

func TestRulesFromConfigRejectsUnknownRule(t *testing.T) {
	cfg := configWithRules("nonexistent_rule")
	if _, err := rulesFromConfig(cfg); err == nil {
		t.Error("expected an error for an unrecognized rule name")
	}
}

func TestRulesFromConfigMapsEachKnownRule(t *testing.T) {
	cfg := configWithRules(
		rules.ComputeExpressionRuleName,
		rules.RemoveUnusedVariableRuleName,
		rules.ReplaceReferencedTokensRuleName,
	)
	out, err := rulesFromConfig(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("got %d rules, want 3", len(out))
	}
	if _, ok := out[0].(rules.ComputeExpression); !ok {
		t.Errorf("got %T, want rules.ComputeExpression", out[0])
	}
	if _, ok := out[1].(rules.RemoveUnusedVariable); !ok {
		t.Errorf("got %T, want rules.RemoveUnusedVariable", out[1])
	}
	if _, ok := out[2].(rules.ReplaceReferencedTokens); !ok {
		t.Errorf("got %T, want rules.ReplaceReferencedTokens", out[2])
	}
}
