// Package config provides configuration loading and validation for the tracker server and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/applicant-tracker/internal/llm"
	"github.com/jonathan/applicant-tracker/internal/logger"
)

// Store drivers
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config is the application configuration. It is read from a JSON or YAML file and
// then overridden by environment variables. Secrets never live in the file.
type Config struct {
	Server ServerConfig  `json:"server" yaml:"server"`
	LLM    LLMConfig     `json:"llm" yaml:"llm"`
	Store  StoreConfig   `json:"store" yaml:"store"`
	Redis  RedisConfig   `json:"redis" yaml:"redis"`
	Fetch  FetchConfig   `json:"fetch" yaml:"fetch"`
	Log    logger.Config `json:"log" yaml:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port           int      `json:"port,omitempty" yaml:"port,omitempty"`
	AllowedOrigins []string `json:"allowed_origins,omitempty" yaml:"allowed_origins,omitempty"`
}

// LLMConfig selects the text-generation backend.
type LLMConfig struct {
	Provider    string            `json:"provider,omitempty" yaml:"provider,omitempty"` // gemini or openai
	Models      map[string]string `json:"models,omitempty" yaml:"models,omitempty"`     // tier -> model name
	Temperature float32           `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	BaseURL     string            `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	CallTimeout string            `json:"call_timeout,omitempty" yaml:"call_timeout,omitempty"` // e.g. "30s"
}

// StoreConfig selects the persistence driver.
type StoreConfig struct {
	Driver string `json:"driver,omitempty" yaml:"driver,omitempty"`
	Seed   *bool  `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// RedisConfig configures the optional cache.
type RedisConfig struct {
	Enabled bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Addr    string `json:"addr,omitempty" yaml:"addr,omitempty"`
	DB      int    `json:"db,omitempty" yaml:"db,omitempty"`
	TTL     string `json:"ttl,omitempty" yaml:"ttl,omitempty"`
}

// FetchConfig configures job posting imports.
type FetchConfig struct {
	// Render retries JavaScript-heavy boards in headless Chrome.
	Render  bool   `json:"render,omitempty" yaml:"render,omitempty"`
	Timeout string `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	seed := true
	return Config{
		Server: ServerConfig{Port: 8080, AllowedOrigins: []string{"*"}},
		LLM:    LLMConfig{Provider: "gemini", CallTimeout: "30s"},
		Store:  StoreConfig{Driver: StoreMemory, Seed: &seed},
		Redis:  RedisConfig{Addr: "localhost:6379", TTL: "10m"},
		Fetch:  FetchConfig{Timeout: "30s"},
		Log:    logger.Config{Level: "info", Format: "json"},
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config error: 'server.port' must be between 0 and 65535")
	}
	switch c.LLM.Provider {
	case "", "gemini", "openai":
	default:
		return fmt.Errorf("config error: unknown llm provider %q", c.LLM.Provider)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("config error: 'llm.temperature' must be between 0 and 2")
	}
	if c.LLM.CallTimeout != "" {
		if d, err := time.ParseDuration(c.LLM.CallTimeout); err != nil || d <= 0 {
			return fmt.Errorf("config error: invalid 'llm.call_timeout' %q", c.LLM.CallTimeout)
		}
	}
	switch c.Store.Driver {
	case "", StoreMemory, StorePostgres:
	default:
		return fmt.Errorf("config error: unknown store driver %q", c.Store.Driver)
	}
	if c.Redis.TTL != "" {
		if _, err := time.ParseDuration(c.Redis.TTL); err != nil {
			return fmt.Errorf("config error: invalid 'redis.ttl' %q", c.Redis.TTL)
		}
	}
	if c.Fetch.Timeout != "" {
		if d, err := time.ParseDuration(c.Fetch.Timeout); err != nil || d <= 0 {
			return fmt.Errorf("config error: invalid 'fetch.timeout' %q", c.Fetch.Timeout)
		}
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Server.Port == 0 {
		result.Server.Port = defaults.Server.Port
	}
	if len(result.Server.AllowedOrigins) == 0 {
		result.Server.AllowedOrigins = defaults.Server.AllowedOrigins
	}
	if result.LLM.Provider == "" {
		result.LLM.Provider = defaults.LLM.Provider
	}
	if len(result.LLM.Models) == 0 {
		result.LLM.Models = defaults.LLM.Models
	}
	if result.LLM.Temperature == 0 {
		result.LLM.Temperature = defaults.LLM.Temperature
	}
	if result.LLM.BaseURL == "" {
		result.LLM.BaseURL = defaults.LLM.BaseURL
	}
	if result.LLM.CallTimeout == "" {
		result.LLM.CallTimeout = defaults.LLM.CallTimeout
	}
	if result.Store.Driver == "" {
		result.Store.Driver = defaults.Store.Driver
	}
	if result.Store.Seed == nil {
		result.Store.Seed = defaults.Store.Seed
	}
	if result.Redis.Addr == "" {
		result.Redis.Addr = defaults.Redis.Addr
	}
	if result.Redis.TTL == "" {
		result.Redis.TTL = defaults.Redis.TTL
	}
	if result.Fetch.Timeout == "" {
		result.Fetch.Timeout = defaults.Fetch.Timeout
	}
	if result.Log.Level == "" {
		result.Log.Level = defaults.Log.Level
	}
	if result.Log.Format == "" {
		result.Log.Format = defaults.Log.Format
	}

	// Bools cannot distinguish unset from false, so Redis.Enabled and Fetch.Render are not merged.
	return result
}

// ApplyEnv overrides file values with environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT: %v", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("LLM_CALL_TIMEOUT"); v != "" {
		c.LLM.CallTimeout = v
	}
	if v := os.Getenv("STORE_DRIVER"); v != "" {
		c.Store.Driver = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		port := os.Getenv("REDIS_PORT")
		if port == "" {
			port = "6379"
		}
		c.Redis.Addr = v + ":" + port
		c.Redis.Enabled = true
	}
	if v := os.Getenv("REDIS_TTL"); v != "" {
		c.Redis.TTL = v
	}
	if v := os.Getenv("FETCH_RENDER"); v != "" {
		render, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid FETCH_RENDER: %v", err)
		}
		c.Fetch.Render = render
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	return c.Validate()
}

// CallTimeout returns the per-call upper bound for the text-generation backend.
func (c *Config) CallTimeout() time.Duration {
	if d, err := time.ParseDuration(c.LLM.CallTimeout); err == nil && d > 0 {
		return d
	}
	return 30 * time.Second
}

// CacheTTL returns how long generated narratives stay cached.
func (c *Config) CacheTTL() time.Duration {
	if d, err := time.ParseDuration(c.Redis.TTL); err == nil && d > 0 {
		return d
	}
	return 10 * time.Minute
}

// FetchTimeout returns the HTTP timeout for posting imports.
func (c *Config) FetchTimeout() time.Duration {
	if d, err := time.ParseDuration(c.Fetch.Timeout); err == nil && d > 0 {
		return d
	}
	return 30 * time.Second
}

// SeedEnabled reports whether demo data should be loaded at startup.
func (c *Config) SeedEnabled() bool {
	return c.Store.Seed == nil || *c.Store.Seed
}

// APIKey returns the secret of the configured provider from the environment.
func (c *Config) APIKey() string {
	if c.LLM.Provider == "openai" {
		return os.Getenv("OPENAI_API_KEY")
	}
	return os.Getenv("GEMINI_API_KEY")
}

// RedisPassword returns the Redis secret from the environment.
func RedisPassword() string {
	return os.Getenv("REDIS_PASSWORD")
}

// LLMClientConfig resolves the provider defaults and applies any per-tier overrides.
func (c *Config) LLMClientConfig() *llm.Config {
	out := llm.ConfigForProvider(llm.Provider(c.LLM.Provider))
	for tier, model := range c.LLM.Models {
		out = out.WithModel(llm.ModelTier(tier), model)
	}
	if c.LLM.Temperature > 0 {
		out.Temperature = c.LLM.Temperature
	}
	out.BaseURL = c.LLM.BaseURL
	return out
}
