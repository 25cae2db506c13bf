// Package cmd wires the CLI commands.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "supportbot",
	Short: "Supportbot - customer support chat service",
	Long: `Supportbot answers customer questions from the documentation index,
handles small talk, and hands stuck conversations over to a live operator.

Running supportbot without a subcommand starts the HTTP server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
