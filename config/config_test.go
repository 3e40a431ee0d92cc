package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestParse_MinimalConfig(t *testing.T) {
	yaml := `
webhook_url: https://discord.com/api/webhooks/1/token
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	// check defaults applied
	if cfg.MaxMessageLength != 1900 {
		t.Errorf("MaxMessageLength = %d, want 1900", cfg.MaxMessageLength)
	}
	if cfg.MinDelay.Duration() != 5*time.Second {
		t.Errorf("MinDelay = %v, want 5s", cfg.MinDelay)
	}
	if cfg.MaxDelay.Duration() != 15*time.Second {
		t.Errorf("MaxDelay = %v, want 15s", cfg.MaxDelay)
	}
	if cfg.Timeout.Duration() != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", cfg.Timeout)
	}
	if cfg.LogSends != nil || cfg.LogErrors != nil {
		t.Errorf("LogSends/LogErrors = %v/%v, want unset", cfg.LogSends, cfg.LogErrors)
	}
}

func TestParse_FullConfig(t *testing.T) {
	yaml := `
webhook_url: https://discord.com/api/webhooks/1/token
username: StateFarmBot
avatar: https://example.com/avatar.png
max_message_length: 1800
min_delay: 2s
max_delay: 30s
timeout: 3s
log_sends: true
log_errors: false
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	yes, no := true, false
	want := &Config{
		WebhookURL:       "https://discord.com/api/webhooks/1/token",
		Username:         "StateFarmBot",
		Avatar:           "https://example.com/avatar.png",
		MaxMessageLength: 1800,
		MinDelay:         Duration(2 * time.Second),
		MaxDelay:         Duration(30 * time.Second),
		Timeout:          Duration(3 * time.Second),
		LogSends:         &yes,
		LogErrors:        &no,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_EnvVarSubstitution(t *testing.T) {
	t.Setenv("TEST_WEBHOOK_URL", "https://discord.com/api/webhooks/9/secret")
	t.Setenv("TEST_BOT_NAME", "EnvBot")

	yaml := `
webhook_url: ${TEST_WEBHOOK_URL}
username: ${TEST_BOT_NAME}
avatar: ${TEST_AVATAR_UNSET:-https://example.com/default.png}
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.WebhookURL != "https://discord.com/api/webhooks/9/secret" {
		t.Errorf("WebhookURL = %q, want expanded value", cfg.WebhookURL)
	}
	if cfg.Username != "EnvBot" {
		t.Errorf("Username = %q, want EnvBot", cfg.Username)
	}
	if cfg.Avatar != "https://example.com/default.png" {
		t.Errorf("Avatar = %q, want default value", cfg.Avatar)
	}
}

func TestParse_EnvVarMissing(t *testing.T) {
	yaml := `
webhook_url: ${PUPPYWEBHOOK_TEST_MISSING_VAR}
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("Parse() expected error for missing env var, got nil")
	}
	if !strings.Contains(err.Error(), "webhook_url") {
		t.Errorf("Parse() error = %v, want error naming webhook_url", err)
	}
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing webhook_url",
			yaml:    `username: bot`,
			wantErr: "webhook_url is required",
		},
		{
			name:    "webhook_url without scheme",
			yaml:    `webhook_url: discord.com/api/webhooks/1/token`,
			wantErr: "webhook_url must be an http or https URL",
		},
		{
			name:    "webhook_url with ftp scheme",
			yaml:    `webhook_url: ftp://discord.com/api/webhooks/1/token`,
			wantErr: "webhook_url must be an http or https URL",
		},
		{
			name: "invalid avatar",
			yaml: `
webhook_url: https://discord.com/api/webhooks/1/token
avatar: not a url
`,
			wantErr: "avatar must be an http or https URL",
		},
		{
			name: "negative max_message_length",
			yaml: `
webhook_url: https://discord.com/api/webhooks/1/token
max_message_length: -5
`,
			wantErr: "max_message_length must be greater than 0",
		},
		{
			name: "negative min_delay",
			yaml: `
webhook_url: https://discord.com/api/webhooks/1/token
min_delay: -1s
`,
			wantErr: "min_delay must be greater than 0",
		},
		{
			name: "negative max_delay",
			yaml: `
webhook_url: https://discord.com/api/webhooks/1/token
max_delay: -1s
`,
			wantErr: "max_delay must be greater than 0",
		},
		{
			name: "min_delay above max_delay",
			yaml: `
webhook_url: https://discord.com/api/webhooks/1/token
min_delay: 20s
max_delay: 10s
`,
			wantErr: "min_delay must not exceed max_delay",
		},
		{
			name: "negative timeout",
			yaml: `
webhook_url: https://discord.com/api/webhooks/1/token
timeout: -2s
`,
			wantErr: "timeout must be greater than 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatalf("Parse() expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Parse() error = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestParse_ReportsAllViolations(t *testing.T) {
	yaml := `
avatar: nope
timeout: -1s
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("Parse() expected error, got nil")
	}

	for _, want := range []string{"webhook_url is required", "avatar must be", "timeout must be"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Parse() error = %v, want error containing %q", err, want)
		}
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("webhook_url: [unclosed"))
	if err == nil {
		t.Error("Parse() expected error for invalid YAML, got nil")
	}
}

func TestParse_InvalidDuration(t *testing.T) {
	yaml := `
webhook_url: https://discord.com/api/webhooks/1/token
max_delay: fifteen
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("Parse() expected error for invalid duration, got nil")
	}
	if !strings.Contains(err.Error(), "invalid duration") {
		t.Errorf("Parse() error = %v, want error containing 'invalid duration'", err)
	}
}

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"10s", 10 * time.Second, false},
		{"1m30s", 90 * time.Second, false},
		{"500ms", 500 * time.Millisecond, false},
		{"0s", 0, false},
		{"", 0, true},
		{"10", 0, true},
		{"ten seconds", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Errorf("UnmarshalText(%q) expected error, got nil", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("UnmarshalText(%q) error = %v", tt.input, err)
			}
			if d.Duration() != tt.want {
				t.Errorf("UnmarshalText(%q) = %v, want %v", tt.input, d.Duration(), tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "puppywebhook.yaml")
	content := "webhook_url: https://discord.com/api/webhooks/1/token\nusername: FileBot\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Username != "FileBot" {
		t.Errorf("Username = %q, want FileBot", cfg.Username)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("Load() expected error for missing file, got nil")
	}
	if !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("Load() error = %v, want error containing 'failed to read config file'", err)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("PUPPYWEBHOOK_WEBHOOK_URL", "https://discord.com/api/webhooks/7/env")
	t.Setenv("PUPPYWEBHOOK_USERNAME", "EnvBot")
	t.Setenv("PUPPYWEBHOOK_MAX_MESSAGE_LENGTH", "500")
	t.Setenv("PUPPYWEBHOOK_MIN_DELAY", "1s")
	t.Setenv("PUPPYWEBHOOK_MAX_DELAY", "4s")
	t.Setenv("PUPPYWEBHOOK_LOG_SENDS", "true")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}

	if cfg.WebhookURL != "https://discord.com/api/webhooks/7/env" {
		t.Errorf("WebhookURL = %q, want env value", cfg.WebhookURL)
	}
	if cfg.Username != "EnvBot" {
		t.Errorf("Username = %q, want EnvBot", cfg.Username)
	}
	if cfg.MaxMessageLength != 500 {
		t.Errorf("MaxMessageLength = %d, want 500", cfg.MaxMessageLength)
	}
	if cfg.MinDelay.Duration() != time.Second || cfg.MaxDelay.Duration() != 4*time.Second {
		t.Errorf("delays = %v/%v, want 1s/4s", cfg.MinDelay, cfg.MaxDelay)
	}
	if cfg.Timeout.Duration() != 10*time.Second {
		t.Errorf("Timeout = %v, want default 10s", cfg.Timeout)
	}
	if cfg.LogSends == nil || !*cfg.LogSends {
		t.Errorf("LogSends = %v, want true", cfg.LogSends)
	}
	if cfg.LogErrors != nil {
		t.Errorf("LogErrors = %v, want unset", *cfg.LogErrors)
	}
}

func TestFromEnv_MissingURL(t *testing.T) {
	t.Setenv("PUPPYWEBHOOK_WEBHOOK_URL", "")

	_, err := FromEnv()
	if err == nil {
		t.Fatal("FromEnv() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "webhook_url is required") {
		t.Errorf("FromEnv() error = %v, want error containing 'webhook_url is required'", err)
	}
}

func TestFromEnv_InvalidDuration(t *testing.T) {
	t.Setenv("PUPPYWEBHOOK_WEBHOOK_URL", "https://discord.com/api/webhooks/7/env")
	t.Setenv("PUPPYWEBHOOK_TIMEOUT", "soon")

	_, err := FromEnv()
	if err == nil {
		t.Fatal("FromEnv() expected error for invalid duration, got nil")
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR", "value")
	t.Setenv("EMPTY_VAR", "") // set but empty

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"no vars", "plain text", "plain text", false},
		{"simple var", "${TEST_VAR}", "value", false},
		{"var in text", "prefix ${TEST_VAR} suffix", "prefix value suffix", false},
		{"multiple vars", "${TEST_VAR}-${TEST_VAR}", "value-value", false},
		{"with default (var set)", "${TEST_VAR:-default}", "value", false},
		{"with default (var unset)", "${UNSET:-default}", "default", false},
		{"missing required", "${MISSING}", "", true},
		{"empty default (var unset)", "${UNSET:-}", "", false},
		{"set but empty var", "${EMPTY_VAR}", "", false},
		{"set but empty with default", "${EMPTY_VAR:-fallback}", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// UNSET and MISSING are expected to not exist in environment
			got, err := expandEnvVars(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expandEnvVars() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("expandEnvVars() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("expandEnvVars() = %q, want %q", got, tt.want)
			}
		})
	}
}
