package config

import (
	"github.com/jpalmerr/puppywebhook"
)

// BuildOptions converts parsed configuration into SDK options for
// [puppywebhook.New], together with cfg.WebhookURL.
//
// Settings left empty in the config are omitted so the SDK defaults apply.
func BuildOptions(cfg *Config) []puppywebhook.Option {
	opts := []puppywebhook.Option{
		puppywebhook.WithMaxMessageLength(cfg.MaxMessageLength),
		puppywebhook.WithMinDelay(cfg.MinDelay.Duration()),
		puppywebhook.WithMaxDelay(cfg.MaxDelay.Duration()),
		puppywebhook.WithTimeout(cfg.Timeout.Duration()),
	}

	if cfg.Username != "" {
		opts = append(opts, puppywebhook.WithUsername(cfg.Username))
	}
	if cfg.Avatar != "" {
		opts = append(opts, puppywebhook.WithAvatar(cfg.Avatar))
	}
	if cfg.LogSends != nil {
		opts = append(opts, puppywebhook.WithLogSends(*cfg.LogSends))
	}
	if cfg.LogErrors != nil {
		opts = append(opts, puppywebhook.WithLogErrors(*cfg.LogErrors))
	}

	return opts
}
