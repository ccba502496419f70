// Package cmd defines the CLI commands for the leaderscraper executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaderscraper",
		Short: "Builds a per-country dataset of political leaders and their biographies.",
		Long: `leaderscraper fetches the list of countries and their leaders from a
directory API, scrapes the first paragraph of each leader's encyclopedia
article, and consolidates everything into a single leaders.json dataset.
Results are cached between runs so repeated invocations only fetch what
is missing.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")

	cmd.AddCommand(newScrapeCmd())
	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
