package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/vscan/vscan-backup-file-detector/internal/config"
	"github.com/vscan/vscan-backup-file-detector/internal/history"
	"github.com/vscan/vscan-backup-file-detector/internal/scanerr"
)

// NewHistoryCommand creates the history subcommand, which lists runs
// recorded with --history (or history.enabled in the config file).
func NewHistoryCommand() *cobra.Command {
	var (
		dbPath     string
		configPath string
		limit      int
		showRun    string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded scan runs",
		Long: `List runs recorded in the history database, newest first.

Runs are only recorded when --history is passed to a scan or
history.enabled is set in the config file; by default the scanner
persists nothing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return scanerr.Usage(err)
			}
			if cmd.Flags().Changed("db") {
				cfg.History.DBPath = dbPath
			}

			store, err := history.NewStore(cfg.History.DBPath)
			if err != nil {
				return scanerr.FatalIO(cfg.History.DBPath, err)
			}
			defer store.Close()

			if showRun != "" {
				return showRunFindings(cmd, store, showRun)
			}
			return listRuns(cmd, store, limit)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.Flags()
	flags.StringVar(&dbPath, "db", "", "history database path (overrides config)")
	flags.StringVar(&configPath, "config", defaultConfigPath, "YAML configuration file")
	flags.IntVar(&limit, "limit", 20, "maximum number of runs to list (0 = all)")
	flags.StringVar(&showRun, "run", "", "show the findings of one run by run ID")

	return cmd
}

func listRuns(cmd *cobra.Command, store *history.Store, limit int) error {
	records, err := store.ListRuns(limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "no recorded runs")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tROOT\tSTARTED\tFILES\tFINDINGS\tWARNINGS")
	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\n",
			rec.RunID, rec.Root, rec.StartedAt.Format("2006-01-02 15:04:05"),
			rec.FilesScanned, rec.Findings, rec.Warnings)
	}
	return w.Flush()
}

func showRunFindings(cmd *cobra.Command, store *history.Store, runID string) error {
	id, err := uuid.Parse(runID)
	if err != nil {
		return scanerr.Usagef("invalid run ID %q: %v", runID, err)
	}

	findings, err := store.FindingsForRun(id)
	if err != nil {
		return err
	}
	for _, f := range findings {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", f.Candidate.Path, f.Rule.Reason)
	}
	if len(findings) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "no findings for run", runID)
	}
	return nil
}
