package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	ConfigureEnv(v)
	return v
}

func TestLoad_Defaults(t *testing.T) {
	c, err := Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, "google", c.Service)
	assert.Equal(t, "auto", c.SourceLang)
	assert.Equal(t, 3, c.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, c.RetryDelay)
	assert.Equal(t, 2*time.Minute, c.AttemptTimeout)
	assert.Equal(t, 4500, c.ChunkSize)
	assert.InDelta(t, 0.1, c.DetectDistance, 1e-9)
	assert.EqualValues(t, 5, c.Breaker.ConsecutiveFailures)
	assert.Equal(t, 30*time.Second, c.Breaker.Cooldown)
	assert.Equal(t, "./data/doctran.db", c.Cache.DBPath)
	assert.Equal(t, "http://localhost:11434", c.Providers.Ollama.BaseURL)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doctran.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
service: OpenAI
max_attempts: 5
retry_delay: 2s
fallback: EN
breaker:
  enabled: true
  consecutive_failures: 2
  cooldown: 1m
providers:
  openai:
    api_key: sk-test
    model: gpt-4o
    timeout: 45s
ui_lang: es
`), 0o644))

	v := newViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	c, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "openai", c.Service)
	assert.Equal(t, 5, c.MaxAttempts)
	assert.Equal(t, 2*time.Second, c.RetryDelay)
	assert.Equal(t, "en", c.Fallback)
	assert.True(t, c.Breaker.Enabled)
	assert.EqualValues(t, 2, c.Breaker.ConsecutiveFailures)
	assert.Equal(t, time.Minute, c.Breaker.Cooldown)

	sc := c.ServiceConfig()
	assert.Equal(t, "sk-test", sc.APIKey)
	assert.Equal(t, "gpt-4o", sc.Model)
	assert.Equal(t, 45*time.Second, sc.Timeout)
	assert.Equal(t, "es", c.UILang)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("DOCTRAN_SERVICE", "systran")
	t.Setenv("DOCTRAN_PROVIDERS_SYSTRAN_API_KEY", "secret")
	t.Setenv("DOCTRAN_ATTEMPT_TIMEOUT", "45s")
	t.Setenv("DOCTRAN_PROVIDERS_SYSTRAN_TIMEOUT", "10s")

	c, err := Load(newViper())
	require.NoError(t, err)
	assert.Equal(t, "systran", c.Service)
	assert.Equal(t, "secret", c.ServiceConfig().APIKey)
	assert.Equal(t, 45*time.Second, c.AttemptTimeout)
	assert.Equal(t, 10*time.Second, c.ServiceConfig().Timeout)
}

func TestValidate(t *testing.T) {
	v := newViper()
	v.Set("service", "babelfish")
	v.Set("max_attempts", 0)
	v.Set("fallback", "auto")
	v.Set("detect_distance", 1.5)
	v.Set("log.format", "xml")

	_, err := Load(v)
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, `unknown service "babelfish"`)
	assert.Contains(t, msg, "max_attempts must be at least 1")
	assert.Contains(t, msg, "fallback must be a language code")
	assert.Contains(t, msg, "detect_distance must be in")
	assert.Contains(t, msg, "invalid log format")
}

func TestValidate_NegativeProviderTimeout(t *testing.T) {
	v := newViper()
	v.Set("service", "ollama")
	v.Set("providers.ollama.timeout", "-1s")

	_, err := Load(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "providers.ollama.timeout must not be negative")
}

func TestServiceConfig_MyMemoryHasNone(t *testing.T) {
	c := &Config{Service: "mymemory"}
	assert.Equal(t, "", c.ServiceConfig().APIKey)
}
