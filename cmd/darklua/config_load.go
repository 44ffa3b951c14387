// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package main

import (
	"os"

	"github.com/dark-lua/darklua-core/config"
	"github.com/dark-lua/darklua-core/dlerror"
	"github.com/dark-lua/darklua-core/rules"
)

// defaultConfigNames are tried, in order, in the current directory when
// --config is not given. If more than one exists, that's ambiguous and is
// reported as dlerror.MultipleConfigurationFound rather than picking one
// silently.
var defaultConfigNames = []string{".darklua.json", "darklua.json", ".darklua.json5", "darklua.json5"}

// loadConfiguration reads and parses the configuration document at path, or
// (when path is empty) the first of defaultConfigNames found in the current
// directory. A missing configuration is not an error: the zero
// *config.Configuration is returned with everything defaulted.
func loadConfiguration(path string) (*config.Configuration, error) {
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, dlerror.NewInvalidConfigurationFile(path, err)
		}
		return config.Parse(raw)
	}

	var found []string
	for _, name := range defaultConfigNames {
		if _, err := os.Stat(name); err == nil {
			found = append(found, name)
		}
	}
	switch len(found) {
	case 0:
		empty := []byte(`{"rules":[],"generator":{"name":"retain_lines"}}`)
		return config.Parse(empty)
	case 1:
		raw, err := os.ReadFile(found[0])
		if err != nil {
			return nil, dlerror.NewInvalidConfigurationFile(found[0], err)
		}
		return config.Parse(raw)
	default:
		return nil, dlerror.NewMultipleConfigurationFound(found)
	}
}

// rulesFromConfig maps the configuration's ordered rule list to concrete
// rules.Rule values. config.Parse has already rejected unknown names, so
// the switch's default case is unreachable in practice; it is kept instead
// of a panic since a future rule name added to knownRuleNames without a
// matching case here should fail loudly rather than silently no-op.
func rulesFromConfig(cfg *config.Configuration) ([]rules.Rule, error) {
	out := make([]rules.Rule, 0, len(cfg.Rules))
	for _, r := range cfg.Rules {
		switch r.Name {
		case rules.ComputeExpressionRuleName:
			out = append(out, rules.ComputeExpression{})
		case rules.RemoveUnusedVariableRuleName:
			out = append(out, rules.RemoveUnusedVariable{})
		case rules.ReplaceReferencedTokensRuleName:
			out = append(out, rules.ReplaceReferencedTokens{})
		default:
			return nil, dlerror.NewInvalidConfigurationFile("", errUnknownRule(r.Name))
		}
	}
	return out, nil
}

type errUnknownRule string

func (e errUnknownRule) Error() string { return "unknown rule: " + string(e) }
