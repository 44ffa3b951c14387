// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/dark-lua/darklua-core/logging"
)

// watchAndProcess runs runProcess once immediately, then again every time
// the input file's directory changes, until interrupted. It watches the
// directory rather than the file itself since editors commonly replace a
// file (rename-over-write) rather than writing to it in place, which would
// otherwise drop the inotify watch.
func watchAndProcess(input, output string) error {
	log := logging.New()

	if err := runProcess(input, output); err != nil {
		log.Errorf("process failed: %v", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(input)
	if err := watcher.Add(dir); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "watching %s for changes (ctrl-c to stop)\n", dir)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != filepath.Clean(input) && filepath.Ext(event.Name) != ".lua" {
				continue
			}
			if err := runProcess(input, output); err != nil {
				log.Errorf("process failed: %v", err)
				continue
			}
			log.Debugf("reprocessed %s", input)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Errorf("watch error: %v", err)
		}
	}
}
