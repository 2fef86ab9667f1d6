// Package config loads server configuration from the environment
package config

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/dabidoe/character-foundry/internal/errors"
)

// Log settings
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config is the full server configuration
type Config struct {
	Host string `env:"HOST"`
	Port int    `env:"PORT" envDefault:"3001"`

	RedisAddrs    []string `env:"REDIS_ADDRS" envDefault:"localhost:6379" envSeparator:","`
	RedisPassword string   `env:"REDIS_PASSWORD"`
	RedisDB       int      `env:"REDIS_DB" envDefault:"0"`
	RedisTLS      bool     `env:"REDIS_TLS"`

	ItemsDBPath string `env:"ITEMS_DB_PATH" envDefault:"data/items.db"`

	LLMProvider string `env:"LLM_PROVIDER" envDefault:"gemini"`
	LLMAPIKey   string `env:"LLM_API_KEY"`
	LLMBaseURL  string `env:"LLM_BASE_URL"`
	LLMModel    string `env:"LLM_MODEL"`

	// Provider specific keys fill LLMAPIKey and ImageAPIKey when those are unset
	GeminiAPIKey    string `env:"GEMINI_API_KEY"`
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`

	ImageAPIKey  string `env:"IMAGE_API_KEY"`
	ImageBaseURL string `env:"IMAGE_BASE_URL"`
	ImageModel   string `env:"IMAGE_MODEL"`

	BunnyAPIKey      string `env:"BUNNY_API_KEY"`
	BunnyStorageZone string `env:"BUNNY_STORAGE_ZONE"`
	BunnyRegion      string `env:"BUNNY_REGION"`
	BunnyPullZoneURL string `env:"BUNNY_PULL_ZONE_URL"`

	SRDBaseURL string `env:"DND5E_API_URL"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:5173,http://localhost:3000" envSeparator:","`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	ShutdownTimeout     time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	PortraitPollTimeout time.Duration `env:"PORTRAIT_POLL_TIMEOUT" envDefault:"5s"`
}

// Load reads the optional dotenv files, then the environment. Missing
// dotenv files are ignored; variables already set in the environment win.
func Load(dotenvFiles ...string) (*Config, error) {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, file := range dotenvFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(err, "failed to load %s", file)
		}
	}

	return Parse(env.ToMap(os.Environ()))
}

// Parse builds the config from environ alone
func Parse(environ map[string]string) (*Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Environment: environ})
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to parse environment")
	}

	cfg.resolveKeys()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &cfg, nil
}

func (c *Config) resolveKeys() {
	c.LLMProvider = strings.ToLower(strings.TrimSpace(c.LLMProvider))
	if c.LLMAPIKey == "" {
		switch c.LLMProvider {
		case "gemini":
			c.LLMAPIKey = c.GeminiAPIKey
		case "openai":
			c.LLMAPIKey = c.OpenAIAPIKey
		case "anthropic":
			c.LLMAPIKey = c.AnthropicAPIKey
		}
	}
	if c.ImageAPIKey == "" {
		c.ImageAPIKey = c.OpenAIAPIKey
	}
	c.AllowedOrigins = compact(c.AllowedOrigins)
	c.RedisAddrs = compact(c.RedisAddrs)
}

func compact(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Validate validates the config
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	errors.ValidateRange("PORT", c.Port, 1, 65535, vb)
	if len(c.RedisAddrs) == 0 {
		vb.RequiredField("REDIS_ADDRS")
	}
	errors.ValidateRequired("ITEMS_DB_PATH", c.ItemsDBPath, vb)
	errors.ValidateEnum("LLM_PROVIDER", c.LLMProvider, []string{"gemini", "openai", "anthropic"}, vb)
	errors.ValidateEnum("LOG_LEVEL", strings.ToLower(c.LogLevel), []string{"debug", "info", "warn", "error"}, vb)
	errors.ValidateEnum("LOG_FORMAT", strings.ToLower(c.LogFormat), []string{LogFormatText, LogFormatJSON}, vb)
	if c.ShutdownTimeout <= 0 {
		vb.InvalidField("SHUTDOWN_TIMEOUT", "must be positive")
	}

	return vb.Build()
}

// Addr is the HTTP listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LLMConfigured reports whether chat and generation can run
func (c *Config) LLMConfigured() bool {
	return c.LLMAPIKey != ""
}

// ImageConfigured reports whether portraits can be generated
func (c *Config) ImageConfigured() bool {
	return c.ImageAPIKey != ""
}

// CDNConfigured reports whether portraits can be uploaded
func (c *Config) CDNConfigured() bool {
	return c.BunnyAPIKey != "" && c.BunnyStorageZone != "" && c.BunnyPullZoneURL != ""
}

// SlogLevel maps LogLevel onto slog, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the process logger writing to w
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if strings.ToLower(c.LogFormat) == LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
