package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Build metadata, overridden with -ldflags "-X main.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

const defaultConfigPath = "evodex.yaml"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dex",
		Short: "evodex: creature catalog ingestion and evolution lineage",
		Long:  "evodex mirrors a remote creature catalog into a local store and rebuilds evolution trees on demand.",

		SilenceUsage: true,
	}

	cmd.AddCommand(
		newVersionCmd(),
		newDBCmd(),
		newIngestCmd(),
		newServeCmd(),
		newShowCmd(),
		newListCmd(),
		newSearchCmd(),
	)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dex %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
