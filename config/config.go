// Package config loads the YAML configuration shared by the activity tools.
package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/nomis52/activities/logging"
)

const (
	// Default API client settings
	defaultAPITimeout = 30 * time.Second

	// Default view server settings
	defaultServerAddr      = ":8080"
	defaultShutdownTimeout = 10 * time.Second
	defaultLogBuffer       = logging.DefaultRecorderLimit

	// Default backend settings
	defaultBackendAddr = ":5000"
	defaultDBPath      = "activities.db"

	// Default monitoring settings
	defaultMetricsPrefix = "activities"
	defaultJobName       = "activities"

	// Default logging settings
	defaultLogLevel  = "info"
	defaultLogFormat = "json"
	defaultLogOutput = "stdout"

	redactedValue = "REDACTED"
)

// cronParser accepts the same 5-field schedules as the refresh trigger.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Config represents the complete application configuration
type Config struct {
	API        APIConfig        `yaml:"api"`
	Server     ServerConfig     `yaml:"server"`
	Backend    BackendConfig    `yaml:"backend"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// APIConfig holds the settings for talking to the activities API
type APIConfig struct {
	// BaseURL is the root of the activities API, e.g. http://localhost:5000
	BaseURL string `yaml:"base_url"`

	// Token is sent as a bearer token when set
	Token string `yaml:"token"`

	// Timeout bounds each request to the API
	Timeout time.Duration `yaml:"timeout"`
}

// ServerConfig holds the view server settings
type ServerConfig struct {
	Addr string `yaml:"addr"`

	// RefreshSchedule is a 5-field cron spec for reloading the collection.
	// Empty disables scheduled refresh.
	RefreshSchedule string `yaml:"refresh_schedule"`

	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// LogBuffer is the number of recent warnings and errors kept for /api/logs
	LogBuffer int `yaml:"log_buffer"`

	// TLSCert and TLSKey enable HTTPS when both are set. The pair is
	// reloaded when the files change.
	TLSCert string `yaml:"tls_cert"`
	TLSKey  string `yaml:"tls_key"`
}

// BackendConfig holds the reference activities API settings
type BackendConfig struct {
	Addr   string `yaml:"addr"`
	DBPath string `yaml:"db_path"`
	// Token, when set, must be presented as a bearer token by clients
	Token string `yaml:"token"`
}

// MonitoringConfig holds metrics and monitoring settings
type MonitoringConfig struct {
	// PushURL is a Prometheus remote-write endpoint the CLI pushes to
	PushURL       string `yaml:"push_url"`
	MetricsPrefix string `yaml:"metrics_prefix"`
	JobName       string `yaml:"jobname"`
}

// LoggingConfig defines logging behavior settings
type LoggingConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	Output    string `yaml:"output"`
	AddSource bool   `yaml:"add_source"`
}

// Logger returns the logging.Config for these settings.
func (c LoggingConfig) Logger() logging.Config {
	return logging.Config{
		Level:     c.Level,
		Format:    c.Format,
		Output:    c.Output,
		AddSource: c.AddSource,
	}
}

// Validate performs basic validation on the configuration
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("API base URL is required")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid API base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("API base URL must be http or https, got %q", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("API timeout must be positive")
	}
	if c.Server.RefreshSchedule != "" {
		if _, err := cronParser.Parse(c.Server.RefreshSchedule); err != nil {
			return fmt.Errorf("invalid refresh schedule %q: %w", c.Server.RefreshSchedule, err)
		}
	}
	if (c.Server.TLSCert == "") != (c.Server.TLSKey == "") {
		return fmt.Errorf("tls_cert and tls_key must be set together")
	}
	if c.Server.LogBuffer < 0 {
		return fmt.Errorf("log buffer must not be negative")
	}
	if c.Monitoring.PushURL != "" {
		if _, err := url.ParseRequestURI(c.Monitoring.PushURL); err != nil {
			return fmt.Errorf("invalid push URL: %w", err)
		}
	}
	return nil
}

// Redacted returns a copy of the configuration with secrets masked.
func (c *Config) Redacted() Config {
	out := *c
	if out.API.Token != "" {
		out.API.Token = redactedValue
	}
	if out.Backend.Token != "" {
		out.Backend.Token = redactedValue
	}
	return out
}

// SetDefaults sets reasonable default values for optional fields
func (c *Config) SetDefaults() {
	if c.API.Timeout == 0 {
		c.API.Timeout = defaultAPITimeout
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaultServerAddr
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = defaultShutdownTimeout
	}
	if c.Server.LogBuffer == 0 {
		c.Server.LogBuffer = defaultLogBuffer
	}
	if c.Backend.Addr == "" {
		c.Backend.Addr = defaultBackendAddr
	}
	if c.Backend.DBPath == "" {
		c.Backend.DBPath = defaultDBPath
	}
	if c.Monitoring.MetricsPrefix == "" {
		c.Monitoring.MetricsPrefix = defaultMetricsPrefix
	}
	if c.Monitoring.JobName == "" {
		c.Monitoring.JobName = defaultJobName
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	if c.Logging.Output == "" {
		c.Logging.Output = defaultLogOutput
	}
}

// LoadConfig reads the YAML config file at the given path and returns a Config struct
func LoadConfig(path string) (Config, error) {
	var cfg Config
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
