// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package path

import (
	"encoding/json"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"

	"github.com/dark-lua/darklua-core/ast"
	"github.com/dark-lua/darklua-core/dlerror"
)

// TranscodeResource turns the raw content of a non-source resource (every
// extension except the Lua-subset source files the parser itself handles)
// into an Expression a `require` of that resource evaluates to: the
// teacher's loader.loadJSON/loadYAML pattern, generalized to every format
// §4.3 names plus TOML.
func TranscodeResource(resourcePath string, content []byte) (ast.Expression, error) {
	ext := strings.ToLower(filepath.Ext(resourcePath))
	switch ext {
	case ".json":
		var v interface{}
		if err := json.Unmarshal(content, &v); err != nil {
			return nil, errors.Wrapf(err, "decoding JSON resource %s", resourcePath)
		}
		return valueToExpression(v), nil
	case ".yaml", ".yml":
		jsonBytes, err := yaml.YAMLToJSON(content)
		if err != nil {
			return nil, errors.Wrapf(err, "decoding YAML resource %s", resourcePath)
		}
		var v interface{}
		if err := json.Unmarshal(jsonBytes, &v); err != nil {
			return nil, errors.Wrapf(err, "re-decoding YAML resource %s", resourcePath)
		}
		return valueToExpression(v), nil
	case ".toml":
		var v map[string]interface{}
		if err := toml.Unmarshal(content, &v); err != nil {
			return nil, errors.Wrapf(err, "decoding TOML resource %s", resourcePath)
		}
		return valueToExpression(v), nil
	case ".txt":
		return &ast.StringExpression{Token: ast.NewToken(quoteGo(string(content))), Value: string(content)}, nil
	default:
		return nil, dlerror.NewInvalidResourceExtension(resourcePath)
	}
}

// valueToExpression converts a generic JSON-ish tree (map[string]interface{},
// []interface{}, string, float64, bool, nil) into the equivalent table
// constructor / literal expression.
func valueToExpression(v interface{}) ast.Expression {
	switch val := v.(type) {
	case nil:
		return &ast.NilExpression{Token: ast.NewToken("nil")}
	case bool:
		if val {
			return &ast.TrueExpression{Token: ast.NewToken("true")}
		}
		return &ast.FalseExpression{Token: ast.NewToken("false")}
	case float64:
		return &ast.NumberExpression{Token: ast.NewToken(trimFloat(val)), Value: val}
	case int64:
		return &ast.NumberExpression{Token: ast.NewToken(trimFloat(float64(val))), Value: float64(val)}
	case string:
		return &ast.StringExpression{Token: ast.NewToken(quoteGo(val)), Value: val}
	case []interface{}:
		table := &ast.TableExpression{}
		for _, item := range val {
			table.Fields = append(table.Fields, ast.TableField{Value: valueToExpression(item)})
		}
		return table
	case map[string]interface{}:
		table := &ast.TableExpression{}
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			table.Fields = append(table.Fields, ast.TableField{
				Key:   &ast.StringExpression{Token: ast.NewToken(quoteGo(k)), Value: k},
				Value: valueToExpression(val[k]),
			})
		}
		return table
	default:
		return &ast.NilExpression{Token: ast.NewToken("nil")}
	}
}

func trimFloat(f float64) string {
	b, _ := json.Marshal(f)
	return string(b)
}

func quoteGo(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
