// Package cli implements the tycoonctl command line client. It talks
// to a running daemon over its HTTP API.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	daemonAddr string
	verbose    bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tycoonctl",
		Short: "Tycoon CLI - interact with the simulation daemon",
		Long: `Tycoon CLI provides commands to inspect and drive the simulation.
The CLI communicates with the daemon via its HTTP API.

Examples:
  tycoonctl clock
  tycoonctl tick --manual
  tycoonctl facility list
  tycoonctl facility show production-a1b2c3d4
  tycoonctl facility set-recipe production-a1b2c3d4 --recipe iron-smelting`,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVar(&daemonAddr, "addr", getDefaultDaemonAddr(),
		"Daemon HTTP address")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose output")

	rootCmd.AddCommand(NewTickCommand())
	rootCmd.AddCommand(NewClockCommand())
	rootCmd.AddCommand(NewFacilityCommand())

	return rootCmd
}

// getDefaultDaemonAddr returns the default daemon address
func getDefaultDaemonAddr() string {
	if addr := os.Getenv("TYCOON_ADDR"); addr != "" {
		return addr
	}
	return "http://localhost:8080"
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
