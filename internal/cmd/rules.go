package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vscan/vscan-backup-file-detector/internal/config"
	"github.com/vscan/vscan-backup-file-detector/internal/scanerr"
)

// NewRulesCommand creates the rules subcommand, which prints the rule set a
// scan would use, in evaluation order.
func NewRulesCommand() *cobra.Command {
	var (
		extensions []string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the active rule set",
		Long: `List the rules a scan would evaluate, in order. The first matching rule
wins, so order is part of the contract.

Without flags this is the built-in default set. With -e (or an
"extensions" list in the config file) it is the override set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return scanerr.Usage(err)
			}
			if cmd.Flags().Changed("extensions") {
				cfg.Extensions = extensions
			}

			set, err := resolveRules(cfg)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SUFFIX\tREASON")
			for _, r := range set.Rules() {
				fmt.Fprintf(w, "%s\t%s\n", r.Suffix, r.Reason)
			}
			return w.Flush()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.Flags()
	flags.StringSliceVarP(&extensions, "extensions", "e", nil, "comma-separated suffixes that replace the default rule set")
	flags.StringVar(&configPath, "config", defaultConfigPath, "YAML configuration file")

	return cmd
}
