// Package config loads the settings of a translation run from flags, the
// environment and an optional YAML file, all merged by viper.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/valpere/doctran/internal/logger"
	"github.com/valpere/doctran/internal/translator"
)

// EnvPrefix is prepended to every environment variable, e.g.
// DOCTRAN_PROVIDERS_OPENAI_API_KEY.
const EnvPrefix = "DOCTRAN"

// Services lists the provider names the translate command accepts.
var Services = []string{"google", "mymemory", "systran", "ollama", "openrouter", "openai"}

type Config struct {
	Service        string        `mapstructure:"service"`
	SourceLang     string        `mapstructure:"source"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
	RetryDelay     time.Duration `mapstructure:"retry_delay"`
	AttemptTimeout time.Duration `mapstructure:"attempt_timeout"`
	ChunkSize      int           `mapstructure:"chunk_size"`
	Fallback       string        `mapstructure:"fallback"`
	DetectDistance float64       `mapstructure:"detect_distance"`
	NoPrompt       bool          `mapstructure:"no_prompt"`
	ValidateOutput bool          `mapstructure:"validate"`
	Protect        bool          `mapstructure:"protect"`

	Breaker BreakerConfig `mapstructure:"breaker"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Report  string        `mapstructure:"report"`
	Log     LogConfig     `mapstructure:"log"`
	// UILang picks the catalog for console messages; empty follows the locale.
	UILang string `mapstructure:"ui_lang"`

	Providers Providers `mapstructure:"providers"`
}

type BreakerConfig struct {
	Enabled                  bool `mapstructure:"enabled"`
	translator.BreakerConfig `mapstructure:",squash"`
}

type CacheConfig struct {
	DBPath   string `mapstructure:"db"`
	Disabled bool   `mapstructure:"disabled"`
}

type LogConfig struct {
	Verbose bool   `mapstructure:"verbose"`
	Format  string `mapstructure:"format"`
	NoColor bool   `mapstructure:"no_color"`
}

type Providers struct {
	Google     translator.ServiceConfig `mapstructure:"google"`
	MyMemory   MyMemoryConfig           `mapstructure:"mymemory"`
	Systran    translator.ServiceConfig `mapstructure:"systran"`
	Ollama     translator.ServiceConfig `mapstructure:"ollama"`
	OpenRouter translator.ServiceConfig `mapstructure:"openrouter"`
	OpenAI     translator.ServiceConfig `mapstructure:"openai"`
}

type MyMemoryConfig struct {
	Email string `mapstructure:"email"`
}

// SetDefaults registers the default of every key, so environment variables
// are picked up by Unmarshal even when no flag or file mentions the key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("service", "google")
	v.SetDefault("source", "auto")
	v.SetDefault("max_attempts", 3)
	v.SetDefault("retry_delay", 500*time.Millisecond)
	v.SetDefault("attempt_timeout", 2*time.Minute)
	v.SetDefault("chunk_size", 4500)
	v.SetDefault("fallback", "")
	v.SetDefault("detect_distance", 0.1)
	v.SetDefault("no_prompt", false)
	v.SetDefault("validate", false)
	v.SetDefault("protect", false)

	v.SetDefault("breaker.enabled", false)
	v.SetDefault("breaker.consecutive_failures", 5)
	v.SetDefault("breaker.cooldown", 30*time.Second)

	v.SetDefault("cache.db", "./data/doctran.db")
	v.SetDefault("cache.disabled", false)
	v.SetDefault("report", "")

	v.SetDefault("log.verbose", false)
	v.SetDefault("log.format", "text")
	v.SetDefault("log.no_color", false)
	v.SetDefault("ui_lang", "")

	for _, p := range []string{"google", "systran", "ollama", "openrouter", "openai"} {
		for _, k := range []string{"credentials", "api_key", "model", "base_url", "project_id"} {
			v.SetDefault("providers."+p+"."+k, "")
		}
	}
	for _, p := range []string{"google", "systran", "ollama", "openrouter", "openai"} {
		v.SetDefault("providers."+p+".timeout", time.Duration(0))
	}
	v.SetDefault("providers.ollama.base_url", "http://localhost:11434")
	v.SetDefault("providers.mymemory.email", "")
}

// ConfigureEnv maps nested keys onto DOCTRAN_* variables.
func ConfigureEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

// Load unmarshals v and validates the result.
func Load(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	c.Service = strings.ToLower(strings.TrimSpace(c.Service))
	c.SourceLang = strings.ToLower(strings.TrimSpace(c.SourceLang))
	c.Fallback = strings.ToLower(strings.TrimSpace(c.Fallback))
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if !slices.Contains(Services, c.Service) {
		errs = append(errs, fmt.Errorf("unknown service %q (want one of %s)", c.Service, strings.Join(Services, ", ")))
	}
	if c.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("max_attempts must be at least 1, got %d", c.MaxAttempts))
	}
	if c.AttemptTimeout < 0 {
		errs = append(errs, fmt.Errorf("attempt_timeout must not be negative, got %s", c.AttemptTimeout))
	}
	if c.ChunkSize < 0 {
		errs = append(errs, fmt.Errorf("chunk_size must not be negative, got %d", c.ChunkSize))
	}
	if c.DetectDistance < 0 || c.DetectDistance >= 0.99 {
		errs = append(errs, fmt.Errorf("detect_distance must be in [0, 0.99), got %g", c.DetectDistance))
	}
	if t := c.ServiceConfig().Timeout; t < 0 {
		errs = append(errs, fmt.Errorf("providers.%s.timeout must not be negative, got %s", c.Service, t))
	}
	if c.Fallback == "auto" {
		errs = append(errs, errors.New(`fallback must be a language code, not "auto"`))
	}
	if _, err := logger.ParseFormat(c.Log.Format); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ServiceConfig returns the provider settings of the selected service.
func (c *Config) ServiceConfig() translator.ServiceConfig {
	switch c.Service {
	case "google":
		return c.Providers.Google
	case "systran":
		return c.Providers.Systran
	case "ollama":
		return c.Providers.Ollama
	case "openrouter":
		return c.Providers.OpenRouter
	case "openai":
		return c.Providers.OpenAI
	}
	return translator.ServiceConfig{}
}
