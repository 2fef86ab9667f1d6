package config_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/dabidoe/character-foundry/internal/config"
	"github.com/dabidoe/character-foundry/internal/errors"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigTestSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (s *ConfigTestSuite) TestDefaults() {
	cfg, err := config.Parse(map[string]string{})
	s.Require().NoError(err)

	s.Equal(3001, cfg.Port)
	s.Equal(":3001", cfg.Addr())
	s.Equal([]string{"localhost:6379"}, cfg.RedisAddrs)
	s.Equal("data/items.db", cfg.ItemsDBPath)
	s.Equal("gemini", cfg.LLMProvider)
	s.Equal([]string{"http://localhost:5173", "http://localhost:3000"}, cfg.AllowedOrigins)
	s.Equal(30*time.Second, cfg.ShutdownTimeout)
	s.Equal(slog.LevelInfo, cfg.SlogLevel())

	s.False(cfg.LLMConfigured())
	s.False(cfg.ImageConfigured())
	s.False(cfg.CDNConfigured())
}

func (s *ConfigTestSuite) TestOverrides() {
	cfg, err := config.Parse(map[string]string{
		"HOST":                "127.0.0.1",
		"PORT":                "8080",
		"REDIS_ADDRS":         "redis-1:6379, redis-2:6379,",
		"LLM_PROVIDER":        "Anthropic",
		"ANTHROPIC_API_KEY":   "sk-ant",
		"OPENAI_API_KEY":      "sk-openai",
		"BUNNY_API_KEY":       "bunny",
		"BUNNY_STORAGE_ZONE":  "foundry",
		"BUNNY_PULL_ZONE_URL": "https://foundry.b-cdn.net",
		"ALLOWED_ORIGINS":     "*",
		"LOG_LEVEL":           "debug",
		"LOG_FORMAT":          "json",
	})
	s.Require().NoError(err)

	s.Equal("127.0.0.1:8080", cfg.Addr())
	s.Equal([]string{"redis-1:6379", "redis-2:6379"}, cfg.RedisAddrs)
	s.Equal("anthropic", cfg.LLMProvider)
	s.Equal("sk-ant", cfg.LLMAPIKey)
	s.Equal("sk-openai", cfg.ImageAPIKey)
	s.Equal([]string{"*"}, cfg.AllowedOrigins)
	s.Equal(slog.LevelDebug, cfg.SlogLevel())
	s.True(cfg.LLMConfigured())
	s.True(cfg.ImageConfigured())
	s.True(cfg.CDNConfigured())
}

func (s *ConfigTestSuite) TestExplicitKeysWin() {
	cfg, err := config.Parse(map[string]string{
		"LLM_API_KEY":    "explicit",
		"GEMINI_API_KEY": "gemini",
		"IMAGE_API_KEY":  "image",
		"OPENAI_API_KEY": "openai",
	})
	s.Require().NoError(err)

	s.Equal("explicit", cfg.LLMAPIKey)
	s.Equal("image", cfg.ImageAPIKey)
}

func (s *ConfigTestSuite) TestInvalid() {
	testCases := []struct {
		name    string
		environ map[string]string
		field   string
	}{
		{name: "port out of range", environ: map[string]string{"PORT": "70000"}, field: "PORT"},
		{name: "unknown provider", environ: map[string]string{"LLM_PROVIDER": "llama"}, field: "LLM_PROVIDER"},
		{name: "unknown log level", environ: map[string]string{"LOG_LEVEL": "loud"}, field: "LOG_LEVEL"},
		{name: "unknown log format", environ: map[string]string{"LOG_FORMAT": "xml"}, field: "LOG_FORMAT"},
		{name: "no redis", environ: map[string]string{"REDIS_ADDRS": " , "}, field: "REDIS_ADDRS"},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := config.Parse(tc.environ)
			s.Require().Error(err)
			s.True(errors.IsInvalidArgument(err))
			s.Contains(err.Error(), tc.field)
		})
	}
}

func (s *ConfigTestSuite) TestUnparseableValue() {
	_, err := config.Parse(map[string]string{"PORT": "not-a-number"})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
}

func (s *ConfigTestSuite) TestLoadReadsDotenv() {
	dir := s.T().TempDir()
	path := filepath.Join(dir, ".env")
	s.Require().NoError(os.WriteFile(path, []byte("BUNNY_REGION=ny\nIMAGE_MODEL=dall-e-3\n"), 0o600))
	s.T().Cleanup(func() {
		_ = os.Unsetenv("BUNNY_REGION")
		_ = os.Unsetenv("IMAGE_MODEL")
	})
	s.T().Setenv("IMAGE_MODEL", "gpt-image-1")

	cfg, err := config.Load(path)
	s.Require().NoError(err)

	s.Equal("ny", cfg.BunnyRegion)
	// the process environment wins over the file
	s.Equal("gpt-image-1", cfg.ImageModel)
}

func (s *ConfigTestSuite) TestLoadIgnoresMissingDotenv() {
	_, err := config.Load(filepath.Join(s.T().TempDir(), "missing.env"))
	s.NoError(err)
}

func (s *ConfigTestSuite) TestNewLogger() {
	cfg, err := config.Parse(map[string]string{"LOG_FORMAT": "json", "LOG_LEVEL": "warn"})
	s.Require().NoError(err)

	var buf bytes.Buffer
	logger := cfg.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "character_id", "char_1")

	s.NotContains(buf.String(), "hidden")
	s.Contains(buf.String(), `"msg":"shown"`)
	s.Contains(buf.String(), `"character_id":"char_1"`)
}
