package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for the scanner
func NewRootCommand() *cobra.Command {
	opts := &scanOptions{}

	cmd := &cobra.Command{
		Use:   "vscan-backup-file-detector [flags] [ROOT]",
		Short: "Detect backup files left behind in a directory tree",
		Long: `vscan-backup-file-detector walks a directory tree and flags files whose
names match known backup-file patterns (.bak, .swp, trailing ~, .old,
.orig, .tmp, .backup, .save).

ROOT is the directory to scan; it defaults to the current working
directory when omitted.

Results are printed to stdout, one tab-separated "path<TAB>reason" line
per finding. Diagnostics and warnings go to stderr. Exit codes: 0 on
success (zero matches included), 1 on invalid arguments, 2 on fatal I/O
errors (missing root, unwritable output file).

Examples:
  # Scan the current directory with the default rule set
  vscan-backup-file-detector

  # Scan a deployment root and save the results
  vscan-backup-file-detector -o results.txt /var/www

  # Custom suffixes (replaces the default set)
  vscan-backup-file-detector -e .bak,.old,.config /var/www

  # Verbose diagnostics, JSON output
  vscan-backup-file-detector -v --format json /var/www`,
		Version: Version,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			return runScan(cmd, root, opts)
		},
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
		// Errors are printed by main with the exit-code mapping
		SilenceErrors: true,
	}

	flags := cmd.Flags()
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose diagnostics on stderr")
	flags.StringVarP(&opts.output, "output", "o", "", "also write results to FILE")
	flags.StringSliceVarP(&opts.extensions, "extensions", "e", nil, "comma-separated suffixes that replace the default rule set")
	flags.StringVar(&opts.format, "format", "", "output format: text or json (default text)")
	flags.IntVar(&opts.maxDepth, "max-depth", 0, "limit recursion depth (0 = unlimited, 1 = root only)")
	flags.BoolVar(&opts.followSymlinks, "follow-symlinks", false, "follow symlinked directories (cycle-safe)")
	flags.BoolVar(&opts.sorted, "sorted", false, "sort entries within each directory")
	flags.StringSliceVar(&opts.excludeDirs, "exclude-dir", nil, "directory names to skip (repeatable)")
	flags.StringVar(&opts.configPath, "config", defaultConfigPath, "YAML configuration file")
	flags.BoolVar(&opts.history, "history", false, "record this run in the history database")

	// Add subcommands
	cmd.AddCommand(NewRulesCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}
