// Package main is the entry point for the puppywebhook CLI.
//
// puppywebhook can be used either as a library (SDK) or as a standalone
// binary configured by YAML or environment variables. This CLI provides the
// standalone binary approach, mostly for shell scripts and cron jobs.
//
// Usage:
//
//	puppywebhook send -c config.yaml "deploy finished"  # Send a message
//	tail -f app.log | puppywebhook send                 # Stream stdin lines
//	puppywebhook validate -c config.yaml                # Validate configuration
//	puppywebhook version                                # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "puppywebhook",
	Short: "Batch messages into a rate-limited webhook",
	Long: `puppywebhook queues text messages, packs them into chunks under the
webhook's message size limit, and posts one chunk at a time with an
adaptive delay so that the destination is never flooded.

Quick start:
  1. Export PUPPYWEBHOOK_WEBHOOK_URL or create a config file
  2. Run: puppywebhook send "hello from the shell"

Example config:
  webhook_url: ${DISCORD_WEBHOOK_URL}
  username: StateFarmBot
  max_message_length: 1900
  min_delay: 5s
  max_delay: 15s`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this puppywebhook binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "puppywebhook %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
