// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

// Command darklua is the CLI front end: it wires config, pipeline, the two
// bundlers, and generate/sourcemap together into a small set of
// subcommands. It intentionally carries very little logic of its own;
// everything it does is delegate into the library packages.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := RootCommand.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
