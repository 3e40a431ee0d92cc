package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/puppywebhook/config"
)

// validateCmd validates a config file without sending anything.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a puppywebhook configuration file without sending anything.

This command parses the YAML, expands environment variables, and validates
all fields. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  puppywebhook validate -c config.yaml
  puppywebhook validate --config /etc/puppywebhook/config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	username := cfg.Username
	if username == "" {
		username = "(default)"
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Webhook:      %s\n", redactURL(cfg.WebhookURL))
	fmt.Fprintf(out, "  Username:     %s\n", username)
	fmt.Fprintf(out, "  Chunk length: %d characters\n", cfg.MaxMessageLength)
	fmt.Fprintf(out, "  Delay:        %s - %s\n", cfg.MinDelay, cfg.MaxDelay)
	fmt.Fprintf(out, "  Timeout:      %s\n", cfg.Timeout)

	return nil
}

// redactURL hides the path of a webhook URL, which carries its secret token.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "(unparseable)"
	}
	return u.Scheme + "://" + u.Host + "/..."
}
