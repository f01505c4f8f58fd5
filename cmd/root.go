package cmd

import (
	"github.com/spf13/cobra"
)

// New creates the root command with all subcommands registered.
func New() *cobra.Command {
	opts := &Options{}

	rootCmd := &cobra.Command{
		Use:   "branchwatch",
		Short: "Stale branch reporter",
		Long: `A batch job that scans your repositories for feature and hotfix
branches left behind the integration branch after their ticket was
resolved, and reports them grouped by author.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, opts)
		},
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Add scan flags to root command so `branchwatch` and `branchwatch scan` work identically
	addScanFlags(rootCmd, opts)

	// Register subcommands
	rootCmd.AddCommand(NewCmdScan(opts))
	rootCmd.AddCommand(NewCmdConfig())
	rootCmd.AddCommand(NewCmdVersion())
	rootCmd.AddCommand(NewCmdRateLimit())

	return rootCmd
}
