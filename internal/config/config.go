package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	logFormatJSON    = "json"
	logFormatConsole = "console"
)

// Config represents the application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Upstream UpstreamConfig `yaml:"upstream"`
	CORS     CORSConfig     `yaml:"cors"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig defines listener configuration.
type ServerConfig struct {
	Port           int           `yaml:"port"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
}

// UpstreamConfig captures authentication and client identification for OpenRouter.
type UpstreamConfig struct {
	BaseURL        string        `yaml:"base_url"`
	APIKey         string        `yaml:"api_key"`
	Referer        string        `yaml:"referer"`
	Title          string        `yaml:"title"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// CatalogConfig controls model catalog caching and the recommended list.
type CatalogConfig struct {
	CacheTTL        time.Duration `yaml:"cache_ttl"`
	RedisURL        string        `yaml:"redis_url"`
	RecommendedPath string        `yaml:"recommended_path"`
}

// LoggingConfig selects log verbosity and output encoding.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used for local development.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:           8000,
			MaxBodyBytes:   32 << 20,
			MaxUploadBytes: 32 << 20,
			WriteTimeout:   10 * time.Minute,
		},
		Upstream: UpstreamConfig{
			BaseURL:        "https://openrouter.ai/api/v1",
			Referer:        "http://localhost:5173",
			Title:          "LLM Playground",
			RequestTimeout: 5 * time.Minute,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:5173",
				"http://localhost:3000",
				"http://127.0.0.1:5173",
				"http://127.0.0.1:3000",
			},
		},
		Catalog: CatalogConfig{
			CacheTTL: 5 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: logFormatJSON,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, then validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return Config{}, fmt.Errorf("resolve config path: %w", err)
		}

		data, err := os.ReadFile(absPath)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %q: %w", absPath, err)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %q: %w", absPath, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("OPENROUTER_API_KEY"); v != "" {
		c.Upstream.APIKey = v
	}
	if v := os.Getenv("OPENROUTER_BASE_URL"); v != "" {
		c.Upstream.BaseURL = v
	}
	if v := os.Getenv("HTTP_REFERER"); v != "" {
		c.Upstream.Referer = v
	}
	if v := os.Getenv("X_TITLE"); v != "" {
		c.Upstream.Title = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.Catalog.RedisURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT must be an integer, got %q", v)
		}
		c.Server.Port = port
	}
	return nil
}

// Validate performs strict sanity checks on the configuration.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be a valid TCP port, got %d", c.Server.Port)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be positive, got %d", c.Server.MaxBodyBytes)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive, got %d", c.Server.MaxUploadBytes)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be positive, got %s", c.Server.WriteTimeout)
	}

	if err := validateUpstream(c.Upstream); err != nil {
		return err
	}

	for _, origin := range c.CORS.AllowedOrigins {
		if strings.TrimSpace(origin) == "" {
			return fmt.Errorf("cors.allowed_origins must not contain empty entries")
		}
	}

	if c.Catalog.CacheTTL < 0 {
		return fmt.Errorf("catalog.cache_ttl must not be negative, got %s", c.Catalog.CacheTTL)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
	switch c.Logging.Format {
	case logFormatJSON, logFormatConsole:
	default:
		return fmt.Errorf("logging.format %q must be one of %q or %q", c.Logging.Format, logFormatJSON, logFormatConsole)
	}

	return nil
}

func validateUpstream(upstream UpstreamConfig) error {
	if strings.TrimSpace(upstream.APIKey) == "" {
		return fmt.Errorf("upstream: api_key must be provided (set OPENROUTER_API_KEY)")
	}
	if strings.TrimSpace(upstream.BaseURL) == "" {
		return fmt.Errorf("upstream: base_url must be provided")
	}

	u, err := url.Parse(upstream.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("upstream: base_url %q must be an absolute http(s) URL", upstream.BaseURL)
	}

	if upstream.RequestTimeout <= 0 {
		return fmt.Errorf("upstream: request_timeout must be positive, got %s", upstream.RequestTimeout)
	}
	return nil
}

// ConsoleLogs reports whether logs should be rendered for humans.
func (l LoggingConfig) ConsoleLogs() bool {
	return l.Format == logFormatConsole
}
