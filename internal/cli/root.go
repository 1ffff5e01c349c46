package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "repoadd",
		Short: "Register third-party pacman repositories",
		Long: `Repoadd registers a third-party package repository with pacman:
it fetches and locally signs the repository's signing key, patches
pacman.conf with the new repository stanza (backed up, atomically
written, idempotent), refreshes the package databases and verifies
the repository is reachable.

The whole flow is safe to re-run: a repository that is already
configured only gets its key trust and metadata refreshed.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.InfoLevel)
			}
		},
	}

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	rootCmd.AddCommand(NewRegisterCmd())

	return rootCmd
}
