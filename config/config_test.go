// Package config tests.
package config

import (
	"log/slog"
	"testing"

	"github.com/spf13/viper"
)

func TestParseSlogLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"-4", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, c := range cases {
		if got := parseSlogLevel(c.in, slog.LevelInfo); got != c.want {
			t.Errorf("parseSlogLevel(%q): want %v, got %v", c.in, c.want, got)
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	Init()
	t.Cleanup(viper.Reset)

	cfg := Load()
	if cfg.Provider != "openai" {
		t.Errorf("provider default: %q", cfg.Provider)
	}
	if cfg.Concurrency != 4 {
		t.Errorf("concurrency default: %d", cfg.Concurrency)
	}
	if cfg.ChunkSize != 40 {
		t.Errorf("chunk size default: %d", cfg.ChunkSize)
	}
	if cfg.Output != "translated" {
		t.Errorf("output default: %q", cfg.Output)
	}
	if cfg.Timeout != 0 {
		t.Errorf("timeout must default to zero so provider defaults apply, got %v", cfg.Timeout)
	}
}

func TestLoad_APIKeyFromProviderEnv(t *testing.T) {
	viper.Reset()
	Init()
	t.Cleanup(viper.Reset)

	t.Setenv("GROQ_API_KEY", "gk-123")
	viper.Set(KeyProvider, "groq")

	cfg := Load()
	if cfg.APIKey != "gk-123" {
		t.Errorf("api key: %q", cfg.APIKey)
	}
}

func TestLoad_ExplicitKeyWinsOverEnv(t *testing.T) {
	viper.Reset()
	Init()
	t.Cleanup(viper.Reset)

	t.Setenv("OPENAI_API_KEY", "env-key")
	viper.Set(KeyAPIKey, "flag-key")

	cfg := Load()
	if cfg.APIKey != "flag-key" {
		t.Errorf("api key: %q", cfg.APIKey)
	}
}
