// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

// Package config implements the external Configuration document: an ordered
// rule list, a generator selection, bundling options, and the two top-level
// indexing flags. Documents are accepted as JSON, JSON5 (comments, trailing
// commas, single-quoted strings), or YAML, decoded to the same generic tree before
// validation, matching the teacher's ParseConfig/defaulting pattern.
package config

import (
	"encoding/json"
	"fmt"

	"github.com/agnivade/levenshtein"
	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v3"

	"github.com/dark-lua/darklua-core/dlerror"
)

// RuleConfig is one entry of the ordered rule list.
type RuleConfig struct {
	Name       string                 `json:"name"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// GeneratorConfig selects and configures one of the four generators.
type GeneratorConfig struct {
	Name          string `json:"name"`
	ColumnSpan    int    `json:"column_span,omitempty"`
	MaxEmptyLines int    `json:"max_empty_lines,omitempty"`
}

// RequireMode selects how `require` calls are resolved while bundling.
type RequireMode struct {
	Name             string            `json:"name"` // "path" or "roblox"
	Sources          map[string]string `json:"sources,omitempty"`
	ModuleFolderName string            `json:"module_folder_name,omitempty"`
	RojoSourcemap    string            `json:"rojo_sourcemap,omitempty"`
}

// SourceMapConfig configures C10 source-map emission.
type SourceMapConfig struct {
	Enabled           bool   `json:"enabled"`
	OutputPath        string `json:"output_path,omitempty"`
	SourceRoot        string `json:"source_root,omitempty"`
	File              string `json:"file,omitempty"`
	SourcesRelativeTo string `json:"sources_relative_to,omitempty"`
}

// BundleConfig configures C6/C7 bundling.
type BundleConfig struct {
	RequireMode        RequireMode      `json:"require_mode"`
	Excludes           []string         `json:"excludes,omitempty"`
	ModulesIdentifier  string           `json:"modules_identifier,omitempty"`
	SourceMap          *SourceMapConfig `json:"sourcemap,omitempty"`
}

// Configuration is the decoded, defaulted, and validated external document.
type Configuration struct {
	Rules     []RuleConfig    `json:"rules"`
	Generator GeneratorConfig `json:"generator"`
	Bundle    *BundleConfig   `json:"bundle,omitempty"`
	// InstanceIndexingIsPure controls whether rules may assume indexing
	// through game/script never has a side effect, the assumption
	// compute_expression and remove_unused_variable rely on to fold or
	// eliminate code that reads the instance tree. A pointer so an absent
	// field defaults to true rather than JSON's zero-value false.
	InstanceIndexingIsPure *bool `json:"instance_indexing_is_pure,omitempty"`
	// TreatIndexingAsNoopt disables that same folding outright, regardless
	// of InstanceIndexingIsPure, for a codebase that mocks game/script in a
	// way the evaluator cannot see through.
	TreatIndexingAsNoopt bool `json:"treat_indexing_as_noopt,omitempty"`
}

// InstancePurityAssumed reports whether rules may fold or eliminate code
// that indexes through game/script, combining InstanceIndexingIsPure
// (defaulting to true) with the TreatIndexingAsNoopt override.
func (c *Configuration) InstancePurityAssumed() bool {
	if c.TreatIndexingAsNoopt {
		return false
	}
	if c.InstanceIndexingIsPure == nil {
		return true
	}
	return *c.InstanceIndexingIsPure
}

var knownRuleNames = []string{
	"compute_expression",
	"remove_unused_variable",
	"replace_referenced_tokens",
}

var knownGeneratorNames = []string{"dense", "readable", "retain_lines", "retain_lines_compact"}

// Parse decodes raw as JSON5 (falling back to strict JSON, then YAML) and
// validates the result, injecting defaults the way the teacher's
// ParseConfig does for a missing OPA config field.
func Parse(raw []byte) (*Configuration, error) {
	tree, err := decode(raw)
	if err != nil {
		return nil, err
	}
	var cfg Configuration
	if err := json.Unmarshal(tree, &cfg); err != nil {
		return nil, dlerror.NewInvalidConfigurationFile("", err)
	}
	if err := cfg.validateAndInjectDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decode(raw []byte) ([]byte, error) {
	stripped := stripJSON5(raw)
	if json.Valid(stripped) {
		return stripped, nil
	}
	var generic interface{}
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return nil, dlerror.NewInvalidConfigurationFile("", errors.Wrap(err, "not valid JSON5 or YAML"))
	}
	normalized, err := json.Marshal(normalizeYAML(generic))
	if err != nil {
		return nil, dlerror.NewInvalidConfigurationFile("", err)
	}
	return normalized, nil
}

// normalizeYAML recursively converts map[interface{}]interface{} (the shape
// gopkg.in/yaml.v3 produces for untyped maps under older decoding paths)
// into map[string]interface{} so json.Marshal can handle it.
func normalizeYAML(v interface{}) interface{} {
	switch n := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(n))
		for k, val := range n {
			out[k] = normalizeYAML(val)
		}
		return out
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(n))
		for k, val := range n {
			out[fmt.Sprint(k)] = normalizeYAML(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(n))
		for i, val := range n {
			out[i] = normalizeYAML(val)
		}
		return out
	default:
		return v
	}
}

func (c *Configuration) validateAndInjectDefaults() error {
	if c.Generator.Name == "" {
		c.Generator.Name = "retain_lines"
	}
	if !contains(knownGeneratorNames, c.Generator.Name) {
		return dlerror.NewInvalidConfigurationFile("", errors.New(suggest("generator", c.Generator.Name, knownGeneratorNames)))
	}
	for _, r := range c.Rules {
		if !contains(knownRuleNames, r.Name) {
			return dlerror.NewInvalidConfigurationFile("", errors.New(suggest("rule", r.Name, knownRuleNames)))
		}
	}
	if c.Bundle != nil {
		if c.Bundle.RequireMode.Name == "" {
			c.Bundle.RequireMode.Name = "path"
		}
		if c.Bundle.RequireMode.Name != "path" && c.Bundle.RequireMode.Name != "roblox" {
			return dlerror.NewInvalidConfigurationFile("", errors.New(suggest("require_mode", c.Bundle.RequireMode.Name, []string{"path", "roblox"})))
		}
		if c.Bundle.RequireMode.ModuleFolderName == "" {
			c.Bundle.RequireMode.ModuleFolderName = "init"
		}
		if c.Bundle.ModulesIdentifier == "" {
			c.Bundle.ModulesIdentifier = "__DARKLUA_BUNDLE_MODULES"
		}
	}
	return nil
}

func contains(list []string, name string) bool {
	for _, v := range list {
		if v == name {
			return true
		}
	}
	return false
}

// suggest builds an "unknown X %q, did you mean %q?" message using the
// closest Levenshtein match among candidates, matching the teacher's
// (levenshtein-based) typo-suggestion behavior for unknown config keys.
func suggest(kind, got string, candidates []string) string {
	if got == "" {
		return fmt.Sprintf("missing %s name", kind)
	}
	best := candidates[0]
	bestDist := levenshtein.ComputeDistance(got, best)
	for _, c := range candidates[1:] {
		if d := levenshtein.ComputeDistance(got, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	msg := fmt.Sprintf("unknown %s %q", kind, got)
	if bestDist <= 3 {
		msg += fmt.Sprintf(", did you mean %q?", best)
	}
	return msg
}

// stripJSON5 removes `//` and `/* */` comments and trailing commas before
// array/object closers, and rewrites single-quoted strings to double-quoted
// ones, the minimal transform needed to feed a JSON5 document through
// encoding/json. No ecosystem JSON5 library appears in the retrieval pack,
// so this one corner is hand-rolled as a single-pass byte scanner. JSON5's
// other extensions (unquoted keys, hex numbers) are not rewritten; such a
// document is accepted only when it also parses as YAML.
func stripJSON5(raw []byte) []byte {
	var out []byte
	inString := false
	var quote byte
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if inString {
			if c == '\\' && i+1 < len(raw) {
				out = append(out, c)
				i++
				out = append(out, raw[i])
				continue
			}
			if c == quote {
				inString = false
				out = append(out, '"')
				continue
			}
			out = append(out, c)
			continue
		}
		switch {
		case c == '"' || c == '\'':
			inString = true
			quote = c
			if c == '\'' {
				out = append(out, '"')
			} else {
				out = append(out, c)
			}
		case c == '/' && i+1 < len(raw) && raw[i+1] == '/':
			for i < len(raw) && raw[i] != '\n' {
				i++
			}
			i--
		case c == '/' && i+1 < len(raw) && raw[i+1] == '*':
			i += 2
			for i+1 < len(raw) && !(raw[i] == '*' && raw[i+1] == '/') {
				i++
			}
			i++
		case c == ',':
			j := i + 1
			for j < len(raw) && isJSONSpace(raw[j]) {
				j++
			}
			if j < len(raw) && (raw[j] == '}' || raw[j] == ']') {
				continue
			}
			out = append(out, c)
		default:
			out = append(out, c)
		}
	}
	return out
}

func isJSONSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
