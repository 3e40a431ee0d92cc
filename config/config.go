// Package config provides YAML and environment configuration for puppywebhook.
//
// This package enables running puppywebhook as a standalone binary with a
// configuration file or environment variables, as an alternative to the
// programmatic SDK approach.
//
// Example configuration:
//
//	webhook_url: ${DISCORD_WEBHOOK_URL}
//	username: StateFarmBot
//	avatar: https://example.com/avatar.png
//	max_message_length: 1900
//	min_delay: 5s
//	max_delay: 15s
//	timeout: 10s
//	log_sends: true
//
// The same settings can be given as PUPPYWEBHOOK_* environment variables,
// see [FromEnv].
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment variable read by [FromEnv].
const EnvPrefix = "PUPPYWEBHOOK"

const (
	defaultMaxMessageLength = 1900
	defaultMinDelay         = 5 * time.Second
	defaultMaxDelay         = 15 * time.Second
	defaultTimeout          = 10 * time.Second
)

// Config is the root configuration structure for puppywebhook.
//
// It maps directly to the YAML configuration file structure.
// Use [Load], [Parse] or [FromEnv] to create a Config.
type Config struct {
	// WebhookURL is the destination every message is posted to.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	WebhookURL string `yaml:"webhook_url" split_words:"true" validate:"required,http_url"`

	// Username is the display name. Defaults to the SDK default if not set.
	Username string `yaml:"username" split_words:"true"`

	// Avatar is the display avatar URL. Optional.
	Avatar string `yaml:"avatar" split_words:"true" validate:"omitempty,http_url"`

	// MaxMessageLength is the chunk size in characters. Defaults to 1900.
	MaxMessageLength int `yaml:"max_message_length" split_words:"true" validate:"gt=0"`

	// MinDelay is the floor of the adaptive delay. Defaults to 5s.
	MinDelay Duration `yaml:"min_delay" split_words:"true" validate:"gt=0,ltefield=MaxDelay"`

	// MaxDelay is the base delay when nothing is queued. Defaults to 15s.
	MaxDelay Duration `yaml:"max_delay" split_words:"true" validate:"gt=0"`

	// Timeout is the per-request HTTP timeout. Defaults to 10s.
	Timeout Duration `yaml:"timeout" split_words:"true" validate:"gt=0"`

	// LogSends logs every delivered message. Unset means the SDK default.
	LogSends *bool `yaml:"log_sends" split_words:"true"`

	// LogErrors logs every failed delivery. Unset means the SDK default.
	LogErrors *bool `yaml:"log_errors" split_words:"true"`
}

// Duration wraps time.Duration for YAML and environment unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// UnmarshalText implements encoding.TextUnmarshaler for Duration.
// envconfig uses it for the delay and timeout variables.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// String formats the duration like time.Duration.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		varName := submatches[1]
		hasDefault := submatches[2] != ""

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return submatches[3]
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded before validation.
// Returns an error if the file cannot be read, parsed or validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in webhook_url, username and avatar.
// Defaults are applied for max_message_length (1900), min_delay (5s),
// max_delay (15s) and timeout (10s).
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.expand(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromEnv builds a Config from PUPPYWEBHOOK_* environment variables, for
// example PUPPYWEBHOOK_WEBHOOK_URL and PUPPYWEBHOOK_MIN_DELAY=2s.
//
// The same defaults and validation as [Parse] apply.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// expand substitutes environment variables in string settings.
func (c *Config) expand() error {
	fields := []struct {
		name  string
		value *string
	}{
		{"webhook_url", &c.WebhookURL},
		{"username", &c.Username},
		{"avatar", &c.Avatar},
	}

	for _, f := range fields {
		expanded, err := expandEnvVars(*f.value)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.value = expanded
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.MaxMessageLength == 0 {
		c.MaxMessageLength = defaultMaxMessageLength
	}
	if c.MinDelay == 0 {
		c.MinDelay = Duration(defaultMinDelay)
	}
	if c.MaxDelay == 0 {
		c.MaxDelay = Duration(defaultMaxDelay)
	}
	if c.Timeout == 0 {
		c.Timeout = Duration(defaultTimeout)
	}
}

// Validate checks the config against its struct tags. All violations are
// reported together, each naming the offending YAML key.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}

	msgs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, errors.New(describe(fe)))
	}
	return fmt.Errorf("invalid config: %w", errors.Join(msgs...))
}

var validate = newValidator()

// newValidator reports fields by their YAML key instead of the Go name.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(yamlName)
	return v
}

func yamlName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

// describe turns a validation failure into a one-line message.
func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "http_url":
		return fmt.Sprintf("%s must be an http or https URL, got %q", fe.Field(), fe.Value())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s, got %v", fe.Field(), fe.Param(), fe.Value())
	case "ltefield":
		other := fe.Param()
		if sf, ok := reflect.TypeOf(Config{}).FieldByName(other); ok {
			other = yamlName(sf)
		}
		return fmt.Sprintf("%s must not exceed %s", fe.Field(), other)
	default:
		return fmt.Sprintf("%s failed %q validation", fe.Field(), fe.Tag())
	}
}
