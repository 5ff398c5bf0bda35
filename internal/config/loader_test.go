package config

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	applyDefaults(&cfg)

	assert.Equal(t, "localhost:7233", cfg.Temporal.HostPort)
	assert.Equal(t, "default", cfg.Temporal.Namespace)
	assert.Equal(t, "interview-scheduler", cfg.Temporal.TaskQueue)
	assert.Equal(t, 8087, cfg.Form.Port)
	assert.Equal(t, "http://localhost:8087", cfg.Form.PublicURL)
	assert.Equal(t, "scheduled-interviews.json", cfg.Store.Path)
	assert.Equal(t, "llama3.2:1b", cfg.LLM.Model)
	assert.Equal(t, 3, cfg.LLM.MaxAttempts)
	assert.Equal(t, 8*time.Second, cfg.LLM.Timeout.Duration())
	assert.Equal(t, "@every 30s", cfg.Monitor.PollSpec)
	assert.Equal(t, 1024, cfg.Monitor.DedupLimit)
	assert.Equal(t, "Asia/Kolkata", cfg.Google.DisplayTimezone)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		var cfg Config
		applyDefaults(&cfg)
		return &cfg
	}

	t.Run("defaults are valid", func(t *testing.T) {
		require.NoError(t, valid().Validate())
	})

	t.Run("rejects missing host port", func(t *testing.T) {
		cfg := valid()
		cfg.Temporal.HostPort = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects out-of-range form port", func(t *testing.T) {
		cfg := valid()
		cfg.Form.Port = 70000
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects unknown timezone", func(t *testing.T) {
		cfg := valid()
		cfg.Google.DisplayTimezone = "Mars/Olympus"
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects llm without base url", func(t *testing.T) {
		cfg := valid()
		cfg.LLM.Enabled = true
		cfg.LLM.BaseURL = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects bad logging format", func(t *testing.T) {
		cfg := valid()
		cfg.Logging.Format = "xml"
		assert.Error(t, cfg.Validate())
	})
}

func TestSecretRedaction(t *testing.T) {
	s := Secret("hunter2")

	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "hunter2", s.Value())
	assert.True(t, s.IsSet())

	data, err := json.Marshal(struct {
		Password Secret `json:"password"`
	}{Password: s})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hunter2")
	assert.Contains(t, string(data), "[REDACTED]")

	assert.False(t, Secret("").IsSet())
}

func TestDurationText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("90s")))
	assert.Equal(t, 90*time.Second, d.Duration())

	assert.Error(t, d.UnmarshalText([]byte("-5s")))
	assert.Error(t, d.UnmarshalText([]byte("bogus")))

	out, err := Duration(2 * time.Minute).MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "2m0s", string(out))
}
