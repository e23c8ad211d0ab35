package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AzureConfig locates the Azure OpenAI chat-completions deployment.
// All values are opaque strings validated only by the outbound call itself.
type AzureConfig struct {
	Endpoint   string `mapstructure:"endpoint"`
	APIKey     string `mapstructure:"api_key"`
	Deployment string `mapstructure:"deployment"`
	APIVersion string `mapstructure:"api_version"`
}

// SamplingConfig fixes the completion sampling parameters. Low temperature
// lowers variance; max tokens bounds the response size.
type SamplingConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	TopP        float64 `mapstructure:"top_p"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// AnalyzerConfig controls the analysis orchestrator.
type AnalyzerConfig struct {
	Azure    AzureConfig    `mapstructure:"azure"`
	Sampling SamplingConfig `mapstructure:"sampling"`

	Timeout time.Duration `mapstructure:"timeout"`

	// Consecutive outcomes that flip the endpoint health state.
	EndpointFailureThreshold int `mapstructure:"endpoint_failure_threshold"`
	EndpointSuccessThreshold int `mapstructure:"endpoint_success_threshold"`
}

// CollectorConfig controls snapshot collection.
type CollectorConfig struct {
	Kubeconfig  string        `mapstructure:"kubeconfig"`
	EventWindow time.Duration `mapstructure:"event_window"`
}

// ScheduleConfig controls the periodic runner.
type ScheduleConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// HistoryConfig controls the in-memory run history.
type HistoryConfig struct {
	MaxSize       int           `mapstructure:"max_size"`
	Retention     time.Duration `mapstructure:"retention"`
	PruneInterval time.Duration `mapstructure:"prune_interval"`
}

// EmailConfig controls report delivery.
type EmailConfig struct {
	Enabled    bool     `mapstructure:"enabled"`
	SMTPHost   string   `mapstructure:"smtp_host"`
	SMTPPort   int      `mapstructure:"smtp_port"`
	From       string   `mapstructure:"from"`
	Recipients []string `mapstructure:"recipients"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`

	MaxAttempts int           `mapstructure:"max_attempts"`
	BaseBackoff time.Duration `mapstructure:"base_backoff"`
	MaxBackoff  time.Duration `mapstructure:"max_backoff"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	RingSize   int    `mapstructure:"ring_size"`
}

// Config is the full service configuration.
type Config struct {
	Analyzer  AnalyzerConfig  `mapstructure:"analyzer"`
	Collector CollectorConfig `mapstructure:"collector"`
	Schedule  ScheduleConfig  `mapstructure:"schedule"`
	History   HistoryConfig   `mapstructure:"history"`
	Email     EmailConfig     `mapstructure:"email"`
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// Load reads configuration from an optional YAML file and the environment.
// Environment variables win and use the GUARDIAN_ prefix with underscores,
// e.g. GUARDIAN_ANALYZER_AZURE_ENDPOINT or GUARDIAN_EMAIL_RECIPIENTS
// (comma-separated).
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("GUARDIAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// setDefaults registers every key so env lookups work even without a file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("analyzer.azure.endpoint", "")
	v.SetDefault("analyzer.azure.api_key", "")
	v.SetDefault("analyzer.azure.deployment", "gpt-4o-mini")
	v.SetDefault("analyzer.azure.api_version", "2024-02-15-preview")
	v.SetDefault("analyzer.sampling.temperature", 0.3)
	v.SetDefault("analyzer.sampling.top_p", 0.95)
	v.SetDefault("analyzer.sampling.max_tokens", 2000)
	v.SetDefault("analyzer.timeout", 30*time.Second)
	v.SetDefault("analyzer.endpoint_failure_threshold", 3)
	v.SetDefault("analyzer.endpoint_success_threshold", 2)

	v.SetDefault("collector.kubeconfig", "")
	v.SetDefault("collector.event_window", 24*time.Hour)

	v.SetDefault("schedule.interval", 24*time.Hour)

	v.SetDefault("history.max_size", 100)
	v.SetDefault("history.retention", 7*24*time.Hour)
	v.SetDefault("history.prune_interval", time.Hour)

	v.SetDefault("email.enabled", false)
	v.SetDefault("email.smtp_host", "")
	v.SetDefault("email.smtp_port", 587)
	v.SetDefault("email.from", "")
	v.SetDefault("email.recipients", []string{})
	v.SetDefault("email.username", "")
	v.SetDefault("email.password", "")
	v.SetDefault("email.max_attempts", 3)
	v.SetDefault("email.base_backoff", 2*time.Second)
	v.SetDefault("email.max_backoff", 30*time.Second)

	v.SetDefault("server.addr", ":8080")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size_mb", 100)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.ring_size", 256)
}

// Validate rejects configurations that cannot work at runtime.
// An empty Azure endpoint is allowed: the analyzer then runs the rule-based
// path only.
func (c Config) Validate() error {
	if c.Analyzer.Azure.Endpoint != "" {
		if c.Analyzer.Azure.APIKey == "" {
			return errors.New("analyzer.azure.api_key is required when an endpoint is set")
		}
		if c.Analyzer.Azure.Deployment == "" {
			return errors.New("analyzer.azure.deployment is required when an endpoint is set")
		}
	}
	if c.Email.Enabled {
		if c.Email.SMTPHost == "" {
			return errors.New("email.smtp_host is required when email is enabled")
		}
		if c.Email.From == "" {
			return errors.New("email.from is required when email is enabled")
		}
		if len(c.Email.Recipients) == 0 {
			return errors.New("email.recipients is required when email is enabled")
		}
	}
	if c.Schedule.Interval <= 0 {
		return errors.New("schedule.interval must be positive")
	}
	return nil
}
