package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jpalmerr/puppywebhook"
	"github.com/jpalmerr/puppywebhook/config"
)

const (
	defaultDrainTimeout = 60 * time.Second

	// maxLineSize bounds a single stdin line; longer lines are split by the
	// webhook anyway.
	maxLineSize = 1 << 20
)

// newLogger creates a JSON logger for CLI use.
func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// sendCmd queues messages and delivers them before exiting.
var sendCmd = &cobra.Command{
	Use:   "send [message...]",
	Short: "Send messages to the webhook",
	Long: `Queue messages and deliver them through the webhook.

Each argument is queued as one message. Without arguments, every line read
from stdin is queued as it arrives, so long-running producers can be piped
in. Once input ends, the backlog is drained before exit, bounded by
--drain-timeout. SIGINT or SIGTERM stop reading and start draining; a
second signal exits immediately.

Configuration comes from --config if given, otherwise from PUPPYWEBHOOK_*
environment variables. A .env file in the working directory is loaded first
when present.

Example:
  puppywebhook send -c config.yaml "backup complete"
  PUPPYWEBHOOK_WEBHOOK_URL=https://... puppywebhook send "hi"
  journalctl -f -u myapp | puppywebhook send -c config.yaml`,
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().StringP("config", "c", "", "path to config file (default: environment)")
	sendCmd.Flags().String("env-file", ".env", "dotenv file loaded before reading the environment")
	sendCmd.Flags().Duration("drain-timeout", defaultDrainTimeout, "maximum time spent delivering the backlog before exit")
}

func runSend(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd.ErrOrStderr())

	envFile, _ := cmd.Flags().GetString("env-file")
	if err := loadEnvFile(envFile); err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	opts := append(config.BuildOptions(cfg), puppywebhook.WithLogger(logger))
	wh, err := puppywebhook.New(cfg.WebhookURL, opts...)
	if err != nil {
		return fmt.Errorf("failed to create webhook: %w", err)
	}
	defer wh.Close()

	// set up context with signal handling - cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(args) > 0 {
		for _, msg := range args {
			wh.Send(msg)
		}
	} else if err := queueLines(ctx, cmd.InOrStdin(), wh); err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}

	// restore default signal behaviour so a second signal exits immediately
	stop()

	drainTimeout, _ := cmd.Flags().GetDuration("drain-timeout")
	drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	stats := wh.Stats()
	logger.Info("draining backlog",
		"pending", stats.Pending,
		"chunks", stats.Chunks,
		"timeout", drainTimeout.String(),
	)

	if err := wh.Drain(drainCtx); err != nil {
		stats := wh.Stats()
		logger.Warn("drain incomplete",
			"pending", stats.Pending,
			"chunks", stats.Chunks,
			"sent", stats.Sent,
		)
		return fmt.Errorf("backlog not delivered: %w", err)
	}

	logger.Info("all messages delivered", "sent", wh.Stats().Sent)
	return nil
}

// loadEnvFile loads a dotenv file; a missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// loadConfig reads --config when set and the environment otherwise.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configFile, _ := cmd.Flags().GetString("config")
	if configFile != "" {
		return config.Load(configFile)
	}
	return config.FromEnv()
}

// queueLines sends every line of r until EOF or ctx is done. Lines keep
// flowing to the webhook's own loop while reading.
func queueLines(ctx context.Context, r io.Reader, wh *puppywebhook.Webhook) error {
	done := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for scanner.Scan() {
			wh.Send(scanner.Text())
		}
		done <- scanner.Err()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		// the reader goroutine stays blocked on stdin; the process is exiting
		return nil
	}
}
