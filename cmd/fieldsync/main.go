package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fieldsync",
	Short: "Fieldsync - Incident synchronization agent for field responder teams",
	Long: `Fieldsync keeps a responder team's assigned-incident list in sync with
the incident backend: it subscribes to the backend's change feed,
coalesces bursts into bounded reconcile cycles, applies assignment
changes instantly, and keeps a durable local snapshot so the list
survives going offline.`,
	Version: Version,
}

func init() {
	// Set version template
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"Fieldsync version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(cacheCmd)
}
