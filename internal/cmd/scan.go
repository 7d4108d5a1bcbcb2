package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/vscan/vscan-backup-file-detector/internal/config"
	"github.com/vscan/vscan-backup-file-detector/internal/history"
	"github.com/vscan/vscan-backup-file-detector/internal/logger"
	"github.com/vscan/vscan-backup-file-detector/internal/matcher"
	"github.com/vscan/vscan-backup-file-detector/internal/models"
	"github.com/vscan/vscan-backup-file-detector/internal/report"
	"github.com/vscan/vscan-backup-file-detector/internal/rules"
	"github.com/vscan/vscan-backup-file-detector/internal/scanerr"
	"github.com/vscan/vscan-backup-file-detector/internal/walker"
)

// defaultConfigPath is consulted when --config is not given; a missing file
// simply yields defaults.
const defaultConfigPath = ".vscan.yaml"

// scanOptions carries the root command's flag values.
type scanOptions struct {
	verbose        bool
	output         string
	extensions     []string
	format         string
	maxDepth       int
	followSymlinks bool
	sorted         bool
	excludeDirs    []string
	configPath     string
	history        bool
}

// runScan wires walker -> matcher -> reporter for one invocation.
// Flags override the config file, which overrides built-in defaults.
func runScan(cmd *cobra.Command, root string, opts *scanOptions) error {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return scanerr.Usage(err)
	}
	applyFlagOverrides(cmd, cfg, opts)
	if err := cfg.Validate(); err != nil {
		return scanerr.Usage(err)
	}

	set, err := resolveRules(cfg)
	if err != nil {
		return err
	}

	logLevel := cfg.LogLevel
	if opts.verbose {
		logLevel = "debug"
	}
	log := logger.New(cmd.ErrOrStderr(), logLevel)

	rep := report.New(report.Options{
		Stdout:     cmd.OutOrStdout(),
		Stderr:     cmd.ErrOrStderr(),
		OutputFile: opts.output,
		Format:     cfg.Format,
		Root:       root,
	})
	m := matcher.New(set)

	w := walker.New(walker.Options{
		MaxDepth:       cfg.MaxDepth,
		FollowSymlinks: cfg.FollowSymlinks,
		Sorted:         cfg.Sorted,
		ExcludeDirs:    cfg.ExcludeDirs,
		Warn: func(path string, err error) {
			log.Warnf("skipping %s: %v", path, err)
		},
		Progress: func(dir string) {
			log.Debugf("scanning %s", dir)
		},
	})

	log.Debugf("scan root: %s, rules: %d", root, set.Len())

	stats, err := w.Walk(root, func(c models.Candidate) error {
		if rule, ok := m.Match(c); ok {
			rep.Record(models.Finding{Candidate: c, Rule: rule})
		}
		return nil
	})
	if err != nil {
		return err
	}

	res := rep.Finalize(stats)
	if err := rep.Emit(res); err != nil {
		return err
	}

	log.Debugf("scanned %d files in %d directories: %d finding(s), %d warning(s) in %s",
		res.FilesScanned, res.DirsScanned, len(res.Findings), res.Warnings,
		res.Duration().Round(time.Millisecond))

	if cfg.History.Enabled {
		if err := recordHistory(cfg.History.DBPath, res); err != nil {
			return scanerr.FatalIO(cfg.History.DBPath, err)
		}
		log.Debugf("run %s recorded in %s", res.RunID, cfg.History.DBPath)
	}
	return nil
}

// applyFlagOverrides copies explicitly-set flags over config file values.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config, opts *scanOptions) {
	flags := cmd.Flags()
	if flags.Changed("extensions") {
		cfg.Extensions = opts.extensions
	}
	if flags.Changed("exclude-dir") {
		cfg.ExcludeDirs = opts.excludeDirs
	}
	if flags.Changed("max-depth") {
		cfg.MaxDepth = opts.maxDepth
	}
	if flags.Changed("follow-symlinks") {
		cfg.FollowSymlinks = opts.followSymlinks
	}
	if flags.Changed("sorted") {
		cfg.Sorted = opts.sorted
	}
	if flags.Changed("format") {
		cfg.Format = opts.format
	}
	if flags.Changed("history") {
		cfg.History.Enabled = opts.history
	}
}

// resolveRules picks the custom suffix set when one was supplied, the
// built-in default set otherwise.
func resolveRules(cfg *config.Config) (rules.Set, error) {
	if len(cfg.Extensions) > 0 {
		return rules.FromSuffixes(cfg.Extensions)
	}
	return rules.Default(), nil
}

// recordHistory persists one finalized run.
func recordHistory(dbPath string, res *models.RunResult) error {
	store, err := history.NewStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.RecordRun(res)
}
