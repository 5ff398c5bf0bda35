// Package config provides configuration loading for interviewd.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for all interviewd processes.
type Config struct {
	Temporal TemporalConfig `koanf:"temporal"`
	SMTP     SMTPConfig     `koanf:"smtp"`
	Google   GoogleConfig   `koanf:"google"`
	LLM      LLMConfig      `koanf:"llm"`
	Monitor  MonitorConfig  `koanf:"monitor"`
	Form     FormConfig     `koanf:"form"`
	Store    StoreConfig    `koanf:"store"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// TemporalConfig configures the connection to the Temporal service.
type TemporalConfig struct {
	HostPort  string `koanf:"host_port"`
	Namespace string `koanf:"namespace"`
	TaskQueue string `koanf:"task_queue"`
}

// SMTPConfig configures the outbound mail transport.
type SMTPConfig struct {
	Host       string `koanf:"host"`
	Port       string `koanf:"port"`
	User       string `koanf:"user"`
	Password   Secret `koanf:"password"`
	From       string `koanf:"from"`
	TLSEnabled bool   `koanf:"tls_enabled"`
}

// GoogleConfig configures Gmail (inbound mail) and Calendar access.
// CredentialsPath and TokenPath point at the OAuth2 client credentials
// and the stored user token, in the Google API console JSON formats.
type GoogleConfig struct {
	CredentialsPath string `koanf:"credentials_path"`
	TokenPath       string `koanf:"token_path"`
	CalendarID      string `koanf:"calendar_id"`
	// DisplayTimezone is applied only when rendering calendar events;
	// slots themselves carry no offset.
	DisplayTimezone string `koanf:"display_timezone"`
}

// LLMConfig configures the model-assisted slot extractor.
type LLMConfig struct {
	Enabled     bool     `koanf:"enabled"`
	BaseURL     string   `koanf:"base_url"`
	Model       string   `koanf:"model"`
	Timeout     Duration `koanf:"timeout"`
	MaxAttempts int      `koanf:"max_attempts"`
}

// MonitorConfig configures the inbound-reply poller.
type MonitorConfig struct {
	// PollSpec is a robfig/cron schedule expression, e.g. "@every 30s".
	PollSpec string `koanf:"poll_spec"`
	// SelfAddress is the system's own mailbox; replies from it are skipped.
	SelfAddress string `koanf:"self_address"`
	// DedupLimit bounds the in-memory processed-message cache.
	DedupLimit int `koanf:"dedup_limit"`
}

// FormConfig configures the interviewer slot-form HTTP server.
type FormConfig struct {
	Port int `koanf:"port"`
	// PublicURL is the externally reachable base URL embedded in emails.
	PublicURL       string   `koanf:"public_url"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
	// SubmissionsPath is the JSON audit file for raw form submissions.
	SubmissionsPath string `koanf:"submissions_path"`
}

// StoreConfig configures the flat interview record store.
type StoreConfig struct {
	Path string `koanf:"path"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Temporal.HostPort == "" {
		return fmt.Errorf("temporal.host_port is required")
	}
	if c.Temporal.TaskQueue == "" {
		return fmt.Errorf("temporal.task_queue is required")
	}
	if c.Form.Port <= 0 || c.Form.Port > 65535 {
		return fmt.Errorf("form.port out of range: %d", c.Form.Port)
	}
	if c.LLM.Enabled {
		if c.LLM.BaseURL == "" {
			return fmt.Errorf("llm.base_url is required when llm.enabled")
		}
		if c.LLM.MaxAttempts < 1 {
			return fmt.Errorf("llm.max_attempts must be at least 1")
		}
	}
	if c.Monitor.DedupLimit < 0 {
		return fmt.Errorf("monitor.dedup_limit cannot be negative")
	}
	if c.Google.DisplayTimezone != "" {
		if _, err := time.LoadLocation(c.Google.DisplayTimezone); err != nil {
			return fmt.Errorf("invalid google.display_timezone: %w", err)
		}
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
