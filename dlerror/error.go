// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

// Package dlerror defines the closed set of error kinds the pipeline can
// produce. Unlike the teacher's ast.Error (an open int ErrCode), callers
// here need to type-switch on the concrete failure to decide whether it is
// recoverable (§7 a/b/c of the operation it came from), so the taxonomy is
// a closed set of constructor functions instead.
package dlerror

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Kind identifies one member of the closed error taxonomy.
type Kind int

const (
	ResourceNotFound Kind = iota
	InvalidConfigurationFile
	MultipleConfigurationFound
	ParserError
	RuleError
	CyclicRequire
	InvalidResourceExtension
	InvalidModule
	Custom
)

func (k Kind) String() string {
	switch k {
	case ResourceNotFound:
		return "ResourceNotFound"
	case InvalidConfigurationFile:
		return "InvalidConfigurationFile"
	case MultipleConfigurationFound:
		return "MultipleConfigurationFound"
	case ParserError:
		return "ParserError"
	case RuleError:
		return "RuleError"
	case CyclicRequire:
		return "CyclicRequire"
	case InvalidResourceExtension:
		return "InvalidResourceExtension"
	case InvalidModule:
		return "InvalidModule"
	case Custom:
		return "Custom"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type returned across package boundaries. Path
// is the resource the error concerns, when one applies; Cause is the
// wrapped underlying error, if any.
type Error struct {
	Kind    Kind
	Path    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Path, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// As reports whether err is (or wraps) a *Error of the given kind.
func As(err error, kind Kind) bool {
	var de *Error
	if !errors.As(err, &de) {
		return false
	}
	return de.Kind == kind
}

func newError(kind Kind, path, message string, cause error) *Error {
	return &Error{Kind: kind, Path: path, Message: message, Cause: cause}
}

// NewResourceNotFound reports that path does not exist among the configured
// Resources.
func NewResourceNotFound(path string) *Error {
	return newError(ResourceNotFound, path, "resource not found", nil)
}

// NewInvalidConfigurationFile reports that the configuration document at
// path failed to parse or validate.
func NewInvalidConfigurationFile(path string, cause error) *Error {
	return newError(InvalidConfigurationFile, path, "invalid configuration file", cause)
}

// NewMultipleConfigurationFound reports that more than one candidate
// configuration file was discovered in the same directory.
func NewMultipleConfigurationFound(paths []string) *Error {
	return newError(MultipleConfigurationFound, "", fmt.Sprintf("found %d candidate configuration files: %v", len(paths), paths), nil)
}

// NewParserError reports that path's content could not be parsed into a Block.
func NewParserError(path string, cause error) *Error {
	return newError(ParserError, path, "parse error", cause)
}

// NewRuleError reports that applying a named rule to path failed.
func NewRuleError(rule, path string, cause error) *Error {
	return newError(RuleError, path, fmt.Sprintf("rule %q failed", rule), cause)
}

// NewCyclicRequire reports that resolving path re-entered a resource already
// on the current require stack. cycle is the ordered chain of paths from the
// repeated entry back to itself, e.g. ["v1", "v2", "v1"].
func NewCyclicRequire(cycle []string) *Error {
	quoted := make([]string, len(cycle))
	for i, path := range cycle {
		quoted[i] = "`" + path + "`"
	}
	return newError(CyclicRequire, "", "cyclic require detected with "+strings.Join(quoted, " > "), nil)
}

// NewInvalidResourceExtension reports that path's extension has no known
// transcoder.
func NewInvalidResourceExtension(path string) *Error {
	return newError(InvalidResourceExtension, path, "unsupported resource extension", nil)
}

// NewInvalidModule reports that a module-definition's synthesized content
// could not be assembled (e.g. the module-name permutator was exhausted).
func NewInvalidModule(path, message string) *Error {
	return newError(InvalidModule, path, message, nil)
}

// NewCustom wraps an arbitrary caller-supplied error under the Custom kind,
// for rules and resource implementations outside the closed taxonomy.
func NewCustom(message string, cause error) *Error {
	return newError(Custom, "", message, cause)
}
