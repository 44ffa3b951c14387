// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package main

import (
	"path/filepath"

	"github.com/gobwas/glob"
	"github.com/spf13/cobra"

	"github.com/dark-lua/darklua-core/ast"
	"github.com/dark-lua/darklua-core/bundle/instance"
	bundlepath "github.com/dark-lua/darklua-core/bundle/path"
	"github.com/dark-lua/darklua-core/config"
	"github.com/dark-lua/darklua-core/dlerror"
	"github.com/dark-lua/darklua-core/generate"
	"github.com/dark-lua/darklua-core/logging"
	"github.com/dark-lua/darklua-core/metrics"
	"github.com/dark-lua/darklua-core/parser"
	"github.com/dark-lua/darklua-core/pipeline"
	"github.com/dark-lua/darklua-core/resources"
	"github.com/dark-lua/darklua-core/rules"
)

var (
	processConfigPath string
	processSourceMap  bool
	processWatch      bool
)

var processCommand = &cobra.Command{
	Use:   "process <input> <output>",
	Short: "Apply configured rules to a Lua file, optionally bundling its requires",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if processWatch {
			return watchAndProcess(args[0], args[1])
		}
		return runProcess(args[0], args[1])
	},
}

func init() {
	processCommand.Flags().StringVarP(&processConfigPath, "config", "c", "", "path to a darklua configuration file")
	processCommand.Flags().BoolVar(&processSourceMap, "source-map", false, "emit a source map alongside the output")
	processCommand.Flags().BoolVar(&processWatch, "watch", false, "reprocess whenever the input (or its directory) changes")
}

func runProcess(input, output string) error {
	cfg, err := loadConfiguration(processConfigPath)
	if err != nil {
		return err
	}

	log := logging.New()
	metricsRecorder := metrics.New()
	res := resources.NewFS()
	sources := ast.NewSourceRegistry()

	configuredRules, err := rulesFromConfig(cfg)
	if err != nil {
		return err
	}

	var result *ast.Block
	var warnings []dlerror.Warning

	if cfg.Bundle != nil {
		result, warnings, err = bundleEntry(res, sources, cfg, configuredRules, input, log, metricsRecorder)
	} else {
		result, err = processSingleFile(res, sources, configuredRules, input, log, metricsRecorder, cfg.InstancePurityAssumed())
	}
	if err != nil {
		return err
	}
	for _, w := range warnings {
		log.Warnf("%s", w.String())
	}

	genOpts := generate.Options{Mode: generate.RetainLines}
	if name := cfg.Generator.Name; name != "" {
		if mode, ok := generate.ModeFromName(name); ok {
			genOpts.Mode = mode
		}
	}
	if cfg.Generator.ColumnSpan > 0 {
		genOpts.Columns = cfg.Generator.ColumnSpan
	}

	// A source map failure is recoverable (§7c): log it as a warning and
	// still write the generated code, rather than aborting the run.
	var code string
	var smConfig *config.SourceMapConfig
	if cfg.Bundle != nil {
		smConfig = cfg.Bundle.SourceMap
	}
	if processSourceMap || (smConfig != nil && smConfig.Enabled) {
		mapPath := output + ".map"
		if smConfig != nil && smConfig.OutputPath != "" {
			mapPath = smConfig.OutputPath
		}
		code, err = generateWithSourceMap(result, genOpts, sources, output, mapPath, smConfig, res, log)
	} else {
		code, err = generate.Generate(result, genOpts)
	}
	if err != nil {
		return err
	}

	return res.Write(output, []byte(code))
}

// generateWithSourceMap renders result and writes its source map to mapPath,
// falling back to a plain Generate (and a warning) on failure: a source map
// problem should never stop the generated code itself from being written.
func generateWithSourceMap(result *ast.Block, genOpts generate.Options, sources *ast.SourceRegistry, output, mapPath string, smConfig *config.SourceMapConfig, res resources.Resources, log logging.Logger) (string, error) {
	mapFile := filepath.Base(output)
	sourceRoot := ""
	if smConfig != nil {
		if smConfig.File != "" {
			mapFile = smConfig.File
		}
		sourceRoot = smConfig.SourceRoot
	}
	code, mapJSON, err := generate.GenerateWithMap(result, genOpts, sources, mapFile, sourceRoot)
	if err != nil {
		log.Warnf("source map could not be generated: %v", err)
		return generate.Generate(result, genOpts)
	}
	if err := res.Write(mapPath, mapJSON); err != nil {
		log.Warnf("source map could not be written: %v", err)
	}
	return code, nil
}

func processSingleFile(res resources.Resources, sources *ast.SourceRegistry, configuredRules []rules.Rule, input string, log logging.Logger, rec *metrics.Recorder, instancePure bool) (*ast.Block, error) {
	driver := pipeline.NewDriver(configuredRules, sources, res, parser.Parse)
	driver.Logger = log
	driver.Metrics = rec
	driver.InstanceIndexingIsPure = instancePure

	item := pipeline.NewWorkItem(input)
	if err := driver.Drive(item, map[string]*pipeline.WorkItem{input: item}); err != nil {
		return nil, err
	}
	block, _ := driver.Cache.GetBlock(input)
	rec.IncBundledFiles(1)
	return block, nil
}

func bundleEntry(res resources.Resources, sources *ast.SourceRegistry, cfg *config.Configuration, configuredRules []rules.Rule, input string, log logging.Logger, rec *metrics.Recorder) (*ast.Block, []dlerror.Warning, error) {
	mode := cfg.Bundle.RequireMode

	if mode.Name == "roblox" {
		manifest, err := loadInstanceManifest(res, mode, input)
		if err != nil {
			return nil, nil, err
		}
		content, err := res.Get(input)
		if err != nil {
			return nil, nil, err
		}
		entryBlock, err := parser.Parse(content, input, sources.Intern(input))
		if err != nil {
			return nil, nil, dlerror.NewParserError(input, err)
		}
		aliases := instance.CollectAliases(entryBlock)
		excludes := make(map[string]bool, len(cfg.Bundle.Excludes))
		for _, p := range cfg.Bundle.Excludes {
			excludes[p] = true
		}
		b := instance.New(res, sources, manifest, instance.Options{
			Aliases:               aliases,
			ExcludeInstancePaths:  excludes,
			Rules:                 configuredRules,
			ModulesIdentifier:     cfg.Bundle.ModulesIdentifier,
			DisableInstancePurity: !cfg.InstancePurityAssumed(),
		})
		result, err := b.Bundle(input)
		if err != nil {
			return nil, b.Warnings(), err
		}
		rec.IncBundledFiles(sources.Len())
		return result, b.Warnings(), nil
	}

	excludes := make([]bundlepath.Matcher, 0, len(cfg.Bundle.Excludes))
	for _, pattern := range cfg.Bundle.Excludes {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, nil, dlerror.NewInvalidConfigurationFile("", err)
		}
		excludes = append(excludes, g)
	}
	b := bundlepath.New(res, sources, bundlepath.Options{
		SourceRoots:           mode.Sources,
		ModuleFolderName:      mode.ModuleFolderName,
		Excludes:              excludes,
		Rules:                 configuredRules,
		ModulesIdentifier:     cfg.Bundle.ModulesIdentifier,
		DisableInstancePurity: !cfg.InstancePurityAssumed(),
	})
	result, err := b.Bundle(input)
	if err != nil {
		return nil, b.Warnings(), err
	}
	rec.IncBundledFiles(sources.Len())
	return result, b.Warnings(), nil
}

func loadInstanceManifest(res resources.Resources, mode config.RequireMode, entry string) (*instance.Manifest, error) {
	if mode.RojoSourcemap != "" {
		content, err := res.Get(mode.RojoSourcemap)
		if err != nil {
			return nil, err
		}
		return instance.LoadRojoSourcemap(content, filepath.Dir(mode.RojoSourcemap))
	}
	folderName := mode.ModuleFolderName
	if folderName == "" {
		folderName = "init"
	}
	return instance.BuildFromDirectory(res, filepath.Dir(entry), "game", folderName)
}
