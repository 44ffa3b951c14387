// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package path

import (
	"testing"

	"github.com/dark-lua/darklua-core/ast"
	"github.com/dark-lua/darklua-core/dlerror"
)

func TestTranscodeResourceJSON(t *testing.T) {
	expr, err := TranscodeResource("data.json", []byte(`{"a": 1, "b": [true, null, "x"]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	table, ok := expr.(*ast.TableExpression)
	if !ok {
		t.Fatalf("got %T, want *ast.TableExpression", expr)
	}
	if len(table.Fields) != 2 {
		t.Fatalf("got %d fields, want 2", len(table.Fields))
	}
}

func TestTranscodeResourceYAML(t *testing.T) {
	expr, err := TranscodeResource("data.yaml", []byte("name: test\ncount: 3\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := expr.(*ast.TableExpression); !ok {
		t.Fatalf("got %T, want *ast.TableExpression", expr)
	}
}

func TestTranscodeResourceTOML(t *testing.T) {
	expr, err := TranscodeResource("data.toml", []byte("name = \"test\"\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := expr.(*ast.TableExpression); !ok {
		t.Fatalf("got %T, want *ast.TableExpression", expr)
	}
}

func TestTranscodeResourceText(t *testing.T) {
	expr, err := TranscodeResource("data.txt", []byte("hello"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	str, ok := expr.(*ast.StringExpression)
	if !ok || str.Value != "hello" {
		t.Errorf("got %#v, want StringExpression(hello)", expr)
	}
}

func TestTranscodeResourceUnknownExtension(t *testing.T) {
	_, err := TranscodeResource("data.bin", []byte{0x00})
	if !dlerror.As(err, dlerror.InvalidResourceExtension) {
		t.Fatalf("got %v, want a dlerror.InvalidResourceExtension", err)
	}
}

func TestValueToExpressionSortsMapKeys(t *testing.T) {
	expr, err := TranscodeResource("data.json", []byte(`{"z": 1, "a": 2}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	table := expr.(*ast.TableExpression)
	first := table.Fields[0].Key.(*ast.StringExpression)
	if first.Value != "a" {
		t.Errorf("got first key %q, want a (sorted)", first.Value)
	}
}
