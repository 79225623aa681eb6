package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "laguz",
		Short: "Inspect and watch documents as fine-grained reactive stores",
		Long: `laguz loads a JSON, YAML, TOML or CUE document into a reactive store.

  • watch prints every coalesced change broadcast as the file is edited,
    and the value of each selected path when it changes
  • paths prints every leaf path of a document`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		watchCmd(),
		pathsCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "laguz %s (%s)\n", version, commit)
		},
	}
}
