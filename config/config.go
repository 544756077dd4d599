// Package config resolves the run configuration from three layers: the
// dokit.yaml config file, DOKIT_* environment variables, and command line
// flags (highest priority). The result is materialized into an explicit
// Config value handed to constructors; nothing downstream reads globals.
package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	configBaseName = "dokit"
	envPrefix      = "DOKIT"

	// Keys double as flag names.
	KeyTargetLang  = "target-language"
	KeySource      = "source"
	KeyOutput      = "output"
	KeyProvider    = "provider"
	KeyModel       = "model"
	KeyAPIKey      = "api-key"
	KeyBaseURL     = "base-url"
	KeyConcurrency = "concurrency"
	KeyTimeout     = "timeout"
	KeyMaxRetries  = "max-retries"
	KeyChunkSize   = "chunk-size"
	KeyStopOnError = "stop-on-error"
	KeyPassthrough = "passthrough-on-error"
	KeyNoCache     = "no-cache"
	KeyCachePath   = "cache-path"
	KeyDryRun      = "dry-run"
	KeyVerbose     = "verbose"

	keyLogFilename   = "log.filename"
	keyLogLevel      = "log.level"
	keyLogMaxSize    = "log.max_size"
	keyLogMaxBackups = "log.max_backups"
	keyLogMaxAge     = "log.max_age"
	keyLogCompress   = "log.compress"
)

// Config is the materialized run configuration.
type Config struct {
	TargetLang string
	Source     string
	Output     string

	Provider string
	Model    string
	APIKey   string
	BaseURL  string

	Concurrency int
	Timeout     time.Duration
	MaxRetries  int
	ChunkSize   int

	StopOnError        bool
	PassthroughOnError bool
	NoCache            bool
	CachePath          string
	DryRun             bool
	Verbose            bool
}

// Init wires viper to the config file and environment. Call once before
// Load; a missing config file is fine.
func Init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(KeySource, ".")
	viper.SetDefault(KeyOutput, "translated")
	viper.SetDefault(KeyProvider, "openai")
	viper.SetDefault(KeyConcurrency, 4)
	// No timeout default: zero keeps the per-provider defaults reachable.
	viper.SetDefault(KeyMaxRetries, 3)
	viper.SetDefault(KeyChunkSize, 40)
	viper.SetDefault(KeyCachePath, ".dokit-cache.db")

	viper.SetDefault(keyLogFilename, ".dokit.log")
	viper.SetDefault(keyLogLevel, "info")
	viper.SetDefault(keyLogMaxSize, 10)
	viper.SetDefault(keyLogMaxBackups, 3)
	viper.SetDefault(keyLogMaxAge, 28)
	viper.SetDefault(keyLogCompress, true)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			slog.Warn("config file ignored", "err", err)
		}
	}
}

// BindFlags overlays command line flags onto the matching config keys.
func BindFlags(flags *pflag.FlagSet) {
	for _, key := range []string{
		KeyTargetLang, KeySource, KeyOutput, KeyProvider, KeyModel,
		KeyAPIKey, KeyBaseURL, KeyConcurrency, KeyTimeout, KeyMaxRetries,
		KeyChunkSize, KeyStopOnError, KeyPassthrough, KeyNoCache,
		KeyCachePath, KeyDryRun, KeyVerbose,
	} {
		if f := flags.Lookup(key); f != nil {
			viper.BindPFlag(key, f)
		}
	}
}

// Load materializes the resolved configuration.
func Load() Config {
	cfg := Config{
		TargetLang:         viper.GetString(KeyTargetLang),
		Source:             viper.GetString(KeySource),
		Output:             viper.GetString(KeyOutput),
		Provider:           viper.GetString(KeyProvider),
		Model:              viper.GetString(KeyModel),
		APIKey:             viper.GetString(KeyAPIKey),
		BaseURL:            viper.GetString(KeyBaseURL),
		Concurrency:        viper.GetInt(KeyConcurrency),
		Timeout:            viper.GetDuration(KeyTimeout),
		MaxRetries:         viper.GetInt(KeyMaxRetries),
		ChunkSize:          viper.GetInt(KeyChunkSize),
		StopOnError:        viper.GetBool(KeyStopOnError),
		PassthroughOnError: viper.GetBool(KeyPassthrough),
		NoCache:            viper.GetBool(KeyNoCache),
		CachePath:          viper.GetString(KeyCachePath),
		DryRun:             viper.GetBool(KeyDryRun),
		Verbose:            viper.GetBool(KeyVerbose),
	}
	if cfg.APIKey == "" {
		cfg.APIKey = apiKeyFromEnv(cfg.Provider)
	}
	return cfg
}

// apiKeyFromEnv falls back to the provider's conventional variable.
func apiKeyFromEnv(provider string) string {
	switch provider {
	case "openai", "custom":
		return os.Getenv("OPENAI_API_KEY")
	case "groq":
		return os.Getenv("GROQ_API_KEY")
	case "gemini":
		if k := os.Getenv("GEMINI_API_KEY"); k != "" {
			return k
		}
		return os.Getenv("GOOGLE_API_KEY")
	}
	return ""
}

// NewLogger builds the rotating-file structured logger.
func NewLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	} else {
		level = parseSlogLevel(viper.GetString(keyLogLevel), slog.LevelInfo)
	}

	logWriter := &lumberjack.Logger{
		Filename:   viper.GetString(keyLogFilename),
		MaxSize:    viper.GetInt(keyLogMaxSize),
		MaxBackups: viper.GetInt(keyLogMaxBackups),
		MaxAge:     viper.GetInt(keyLogMaxAge),
		Compress:   viper.GetBool(keyLogCompress),
	}
	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	switch level {
	case "":
		return defaultLevel
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}
	return defaultLevel
}
