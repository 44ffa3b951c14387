// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dark-lua/darklua-core/ast"
	"github.com/dark-lua/darklua-core/dlerror"
	"github.com/dark-lua/darklua-core/generate"
	"github.com/dark-lua/darklua-core/parser"
)

var (
	formatGeneratorName string
	formatOverwrite     bool
)

var formatCommand = &cobra.Command{
	Use:   "format <files...>",
	Short: "Reformat Lua source files without applying any rules",
	Long: `Reformat Lua source files without applying any rules.

The 'format' command parses each file and prints it back out using the
selected generator. With -w, it overwrites the file in place instead of
printing to stdout.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFormat(args)
	},
}

func init() {
	formatCommand.Flags().StringVarP(&formatGeneratorName, "generator", "g", "readable", "generator to use: dense, readable, retain_lines, retain_lines_compact")
	formatCommand.Flags().BoolVarP(&formatOverwrite, "write", "w", false, "overwrite the input file instead of printing to stdout")
}

func runFormat(paths []string) error {
	mode, ok := generate.ModeFromName(formatGeneratorName)
	if !ok {
		return dlerror.NewInvalidConfigurationFile("", fmt.Errorf("unknown generator %q", formatGeneratorName))
	}
	for _, path := range paths {
		if err := formatFile(path, mode); err != nil {
			return err
		}
	}
	return nil
}

func formatFile(path string, mode generate.Mode) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return dlerror.NewResourceNotFound(path)
	}

	sources := ast.NewSourceRegistry()
	block, err := parser.Parse(content, path, sources.Intern(path))
	if err != nil {
		return dlerror.NewParserError(path, err)
	}

	formatted, err := generate.Generate(block, generate.Options{Mode: mode})
	if err != nil {
		return err
	}

	if bytes.Equal([]byte(formatted), content) {
		return nil
	}

	if !formatOverwrite {
		fmt.Println(formatted)
		return nil
	}
	return os.WriteFile(path, []byte(formatted), 0o644)
}
