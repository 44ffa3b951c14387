// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package dlerror

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{ResourceNotFound, "ResourceNotFound"},
		{InvalidConfigurationFile, "InvalidConfigurationFile"},
		{MultipleConfigurationFound, "MultipleConfigurationFound"},
		{ParserError, "ParserError"},
		{RuleError, "RuleError"},
		{CyclicRequire, "CyclicRequire"},
		{InvalidResourceExtension, "InvalidResourceExtension"},
		{InvalidModule, "InvalidModule"},
		{Custom, "Custom"},
		{Kind(99), "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.want {
				t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
			}
		})
	}
}

func TestErrorMessageIncludesPathWhenSet(t *testing.T) {
	withPath := NewResourceNotFound("a/b.lua")
	if got := withPath.Error(); got != "ResourceNotFound: a/b.lua: resource not found" {
		t.Errorf("got %q", got)
	}

	withoutPath := NewMultipleConfigurationFound([]string{"a", "b"})
	if got := withoutPath.Error(); got != fmt.Sprintf("MultipleConfigurationFound: found 2 candidate configuration files: %v", []string{"a", "b"}) {
		t.Errorf("got %q", got)
	}
}

func TestErrorUnwrapsCause(t *testing.T) {
	cause := errors.New("boom")
	err := NewRuleError("remove_unused_variable", "a.lua", cause)
	if errors.Unwrap(err) != cause {
		t.Error("Unwrap should return the wrapped cause")
	}
}

func TestNewCyclicRequireFormatsBacktickedChain(t *testing.T) {
	err := NewCyclicRequire([]string{"v1", "v2", "v1"})
	want := "CyclicRequire: cyclic require detected with `v1` > `v2` > `v1`"
	if got := err.Error(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestAsMatchesKindThroughWrapping(t *testing.T) {
	err := fmt.Errorf("driving a.lua: %w", NewCyclicRequire([]string{"a.lua", "b.lua", "a.lua"}))
	if !As(err, CyclicRequire) {
		t.Error("As should find the wrapped *Error by kind through fmt.Errorf's %w")
	}
	if As(err, ParserError) {
		t.Error("As should not match a different kind")
	}
	if As(errors.New("plain"), ResourceNotFound) {
		t.Error("As should report false for an error that isn't a *Error at all")
	}
}

func TestWarningString(t *testing.T) {
	if got := (Warning{Message: "left as a literal require call"}).String(); got != "left as a literal require call" {
		t.Errorf("got %q", got)
	}
	if got := (Warning{Path: "a.lua", Message: "could not be bundled"}).String(); got != "a.lua: could not be bundled" {
		t.Errorf("got %q", got)
	}
}
