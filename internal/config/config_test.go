package config

import (
	"os"
	"testing"
	"time"
)

func TestRequireEnv(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		value     string
		shouldSet bool
		wantPanic bool
	}{
		{
			name:      "variable set",
			key:       "TEST_VAR",
			value:     "test_value",
			shouldSet: true,
			wantPanic: false,
		},
		{
			name:      "variable not set",
			key:       "TEST_VAR_MISSING",
			shouldSet: false,
			wantPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				t.Setenv(tt.key, tt.value)
			}

			defer func() {
				r := recover()
				if tt.wantPanic && r == nil {
					t.Error("requireEnv() should have panicked")
				}
				if !tt.wantPanic && r != nil {
					t.Errorf("requireEnv() panicked unexpectedly: %v", r)
				}
			}()

			got := requireEnv(tt.key)
			if !tt.wantPanic && got != tt.value {
				t.Errorf("requireEnv() = %v, want %v", got, tt.value)
			}
		})
	}
}

func TestGetenv(t *testing.T) {
	t.Setenv("TEST_GETENV", "custom")
	if got := getenv("TEST_GETENV", "default"); got != "custom" {
		t.Errorf("getenv() = %v, want custom", got)
	}
	if got := getenv("TEST_GETENV_MISSING", "default"); got != "default" {
		t.Errorf("getenv() = %v, want default", got)
	}
}

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name  string
		value string
		def   time.Duration
		want  time.Duration
	}{
		{name: "valid duration", value: "30m", def: time.Hour, want: 30 * time.Minute},
		{name: "invalid duration falls back", value: "not-a-duration", def: time.Hour, want: time.Hour},
		{name: "empty falls back", value: "", def: 5 * time.Second, want: 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "TEST_MUST_DURATION"
			if tt.value != "" {
				t.Setenv(key, tt.value)
			} else {
				if err := os.Unsetenv(key); err != nil {
					t.Fatalf("failed to unset env var: %v", err)
				}
			}
			if got := mustDuration(key, tt.def); got != tt.want {
				t.Errorf("mustDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMustBool(t *testing.T) {
	t.Setenv("TEST_MUST_BOOL", "false")
	if got := mustBool("TEST_MUST_BOOL", true); got != false {
		t.Errorf("mustBool() = %v, want false", got)
	}
	t.Setenv("TEST_MUST_BOOL", "garbage")
	if got := mustBool("TEST_MUST_BOOL", true); got != true {
		t.Errorf("mustBool() with invalid value = %v, want default true", got)
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "comma separated", input: "discord,vencord", want: []string{"discord", "vencord"}},
		{name: "space separated", input: "discord vencord", want: []string{"discord", "vencord"}},
		{name: "mixed separators with blanks", input: "discord, ,vencord  equicord", want: []string{"discord", "vencord", "equicord"}},
		{name: "quoted values", input: `"discord", 'vencord'`, want: []string{"discord", "vencord"}},
		{name: "empty", input: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitAndTrim(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("SplitAndTrim(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("SplitAndTrim(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BADGE_REDIS_ADDR", "localhost:6379")

	cfg := Load()

	if cfg.ListenPort != ":8080" {
		t.Errorf("ListenPort = %v, want :8080", cfg.ListenPort)
	}
	if cfg.CacheTTL != time.Hour {
		t.Errorf("CacheTTL = %v, want 1h", cfg.CacheTTL)
	}
	if cfg.RefreshInterval != time.Hour {
		t.Errorf("RefreshInterval = %v, want 1h", cfg.RefreshInterval)
	}
	if cfg.RateLimitBurst != 60 {
		t.Errorf("RateLimitBurst = %v, want 60", cfg.RateLimitBurst)
	}
}
