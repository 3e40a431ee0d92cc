package puppywebhook

import (
	"errors"
	"log/slog"
	"time"
)

// whConfig holds mutable state during Webhook construction.
type whConfig struct {
	username         string
	avatar           string
	maxMessageLength int
	minDelay         time.Duration
	maxDelay         time.Duration
	timeout          time.Duration
	logSends         bool
	logErrors        bool
	autoStart        bool
	logger           *slog.Logger
	transport        Transport
	sendHooks        []func(content string, seq int)
	errorHooks       []func(err error, content string)
}

// Option is a function that configures a [Webhook] instance during construction.
//
// Option implements the functional options pattern, allowing optional
// configuration to be passed to [New] in a type-safe, extensible way.
// Options return an error if validation fails.
type Option func(*whConfig) error

// WithUsername sets the display name attached to every message.
//
// Defaults to "puppywebhook" if not specified.
func WithUsername(name string) Option {
	return func(cfg *whConfig) error {
		if name == "" {
			return errors.New("username cannot be empty")
		}
		cfg.username = name
		return nil
	}
}

// WithAvatar sets the avatar URL attached to every message.
//
// By default no avatar is sent and the webhook's own avatar is shown.
func WithAvatar(avatarURL string) Option {
	return func(cfg *whConfig) error {
		cfg.avatar = avatarURL
		return nil
	}
}

// WithMaxMessageLength sets the maximum number of characters (runes) in a
// packed chunk, before the sequence suffix is added.
//
// Longer messages are split into fragments of this size. Defaults to 1900,
// which leaves room for the suffix under Discord's 2000 character limit.
//
// Returns an error if n is zero or negative.
func WithMaxMessageLength(n int) Option {
	return func(cfg *whConfig) error {
		if n <= 0 {
			return errors.New("max message length must be positive")
		}
		cfg.maxMessageLength = n
		return nil
	}
}

// WithMinDelay sets the floor of the adaptive delay between sends.
//
// No computed delay is ever shorter than this, regardless of backlog or
// jitter. Defaults to 5 seconds.
//
// The floor also paces retries against a failing destination, including
// those made by [Webhook.Drain].
//
// Returns an error if the duration is zero or negative.
func WithMinDelay(d time.Duration) Option {
	return func(cfg *whConfig) error {
		if d <= 0 {
			return errors.New("min delay must be positive")
		}
		cfg.minDelay = d
		return nil
	}
}

// WithMaxDelay sets the base delay between sends when nothing is queued.
//
// Each queued chunk (up to seven) shortens the delay by one second. Random
// jitter can add up to three seconds on top. Defaults to 15 seconds.
//
// Returns an error if the duration is zero or negative.
func WithMaxDelay(d time.Duration) Option {
	return func(cfg *whConfig) error {
		if d <= 0 {
			return errors.New("max delay must be positive")
		}
		cfg.maxDelay = d
		return nil
	}
}

// WithTimeout sets the per-request timeout of the default HTTP transport.
//
// Has no effect when a custom transport is set with [WithTransport].
// Defaults to 10 seconds.
//
// Returns an error if the duration is zero or negative.
func WithTimeout(d time.Duration) Option {
	return func(cfg *whConfig) error {
		if d <= 0 {
			return errors.New("timeout must be positive")
		}
		cfg.timeout = d
		return nil
	}
}

// WithLogSends controls whether every delivered message is logged at Info
// level. Disabled by default.
func WithLogSends(enabled bool) Option {
	return func(cfg *whConfig) error {
		cfg.logSends = enabled
		return nil
	}
}

// WithLogErrors controls whether failed deliveries are logged at Error
// level. Enabled by default.
func WithLogErrors(enabled bool) Option {
	return func(cfg *whConfig) error {
		cfg.logErrors = enabled
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the Webhook instance.
//
// If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *whConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithTransport replaces the default HTTP transport.
//
// Useful for tests, proxies, or destinations that are not plain webhooks.
//
// Returns an error if the transport is nil.
func WithTransport(t Transport) Option {
	return func(cfg *whConfig) error {
		if t == nil {
			return errors.New("transport cannot be nil")
		}
		cfg.transport = t
		return nil
	}
}

// WithSendHook registers a function called after every successful delivery
// with the delivered content (including its sequence suffix) and the
// sequence number in that suffix.
//
// Multiple hooks may be registered; they execute in registration order once
// the cycle has finished, on the goroutine that ran it, so a hook may call
// [Webhook.Flush] or [Webhook.Drain]. Hooks delay the caller of Flush and
// should not block. Panics are recovered and logged. Nil hooks are silently
// ignored.
func WithSendHook(hook func(content string, seq int)) Option {
	return func(cfg *whConfig) error {
		if hook == nil {
			return nil
		}
		cfg.sendHooks = append(cfg.sendHooks, hook)
		return nil
	}
}

// WithErrorHook registers a function called after every failed delivery
// with the error and the chunk content that will be retried.
//
// This is the only place delivery failures surface. Multiple hooks may be
// registered; they execute in registration order once the cycle has
// finished, so a hook may call [Webhook.Flush]. Panics are recovered and
// logged. Nil hooks are silently ignored.
func WithErrorHook(hook func(err error, content string)) Option {
	return func(cfg *whConfig) error {
		if hook == nil {
			return nil
		}
		cfg.errorHooks = append(cfg.errorHooks, hook)
		return nil
	}
}

// WithAutoStart controls whether [New] starts the send loop. Enabled by
// default; pass false to queue messages first and call [Webhook.Start] or
// [Webhook.Flush] yourself.
func WithAutoStart(enabled bool) Option {
	return func(cfg *whConfig) error {
		cfg.autoStart = enabled
		return nil
	}
}
