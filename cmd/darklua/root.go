// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package main

import (
	"github.com/spf13/cobra"
)

// RootCommand is the base CLI command every subcommand attaches to,
// following the teacher's cmd.Command(rootCommand, brand) convention.
var RootCommand = &cobra.Command{
	Use:   "darklua",
	Short: "darklua transforms Lua source files",
	Long:  "darklua applies configurable rules to Lua source code, optionally bundling requires into a single file.",
}

func init() {
	RootCommand.AddCommand(processCommand)
	RootCommand.AddCommand(formatCommand)
}
