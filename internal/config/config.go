// Package config loads the service configuration from an optional YAML
// file, VIDLENS_-prefixed environment variables, and in-code defaults,
// in increasing order of precedence for env over file.
package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// StoreConfig locates the analysis database.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// YouTubeConfig configures the video-hosting API client.
type YouTubeConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// GeminiConfig configures the generative-AI client.
type GeminiConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	Model             string        `mapstructure:"model"`
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

// RateLimitConfig configures the per-caller admission control.
type RateLimitConfig struct {
	Max    int           `mapstructure:"max"`
	Window time.Duration `mapstructure:"window"`
}

// JobsConfig tunes the background job runner.
type JobsConfig struct {
	// Pace is the politeness delay between videos within one bulk job.
	Pace time.Duration `mapstructure:"pace"`
}

// Config is the root configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Store     StoreConfig     `mapstructure:"store"`
	YouTube   YouTubeConfig   `mapstructure:"youtube"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Jobs      JobsConfig      `mapstructure:"jobs"`
}

// Load reads configuration. A missing config file is not an error; defaults
// and environment variables still apply.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, "")
}

// LoadFrom reads configuration from an explicit file path. When path is
// empty, the default search locations are used.
func LoadFrom(_ context.Context, path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("store.path", "data/vidlens.db")
	v.SetDefault("youtube.base_url", "")
	v.SetDefault("youtube.timeout", 30*time.Second)
	// Empty defaults keep env-only keys visible to Unmarshal.
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.base_url", "")
	v.SetDefault("gemini.model", "gemini-1.5-flash")
	v.SetDefault("gemini.timeout", 120*time.Second)
	v.SetDefault("gemini.requests_per_second", 1.0)
	v.SetDefault("rate_limit.max", 10)
	v.SetDefault("rate_limit.window", 5*time.Minute)
	v.SetDefault("jobs.pace", 50*time.Millisecond)

	v.SetEnvPrefix("VIDLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("vidlens")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/vidlens")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// ValidateForServe checks the settings the serve command cannot run without.
func (c *Config) ValidateForServe() error {
	if strings.TrimSpace(c.Gemini.APIKey) == "" {
		return errors.New("gemini.api_key is required (or set VIDLENS_GEMINI_API_KEY)")
	}
	if strings.TrimSpace(c.Store.Path) == "" {
		return errors.New("store.path is required")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	}
	return nil
}
