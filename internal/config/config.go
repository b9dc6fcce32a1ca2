package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/dgnsrekt/notifications-monitor/internal/notify"
)

type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Poll    PollConfig    `mapstructure:"poll"`
	Sinks   SinksConfig   `mapstructure:"sinks"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type APIConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	Path          string `mapstructure:"path"`
	APIKey        string `mapstructure:"api_key"`
	TimeoutSec    int    `mapstructure:"timeout_sec"`
	RetryCount    int    `mapstructure:"retry_count"`
	RetryDelay    int    `mapstructure:"retry_delay_sec"`
	RatePerSecond int    `mapstructure:"rate_per_second"`
}

type PollConfig struct {
	Interval     time.Duration `mapstructure:"interval"`
	RunOnStartup bool          `mapstructure:"run_on_startup"`
}

type SinksConfig struct {
	File      FileSinkConfig      `mapstructure:"file"`
	Ntfy      notify.Config       `mapstructure:"ntfy"`
	WebSocket WebSocketSinkConfig `mapstructure:"websocket"`
}

type FileSinkConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Path     string `mapstructure:"path"`
	Compress bool   `mapstructure:"compress"`
}

type WebSocketSinkConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type ServerConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

type LoggingConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Directory string `mapstructure:"directory"`
	Level     string `mapstructure:"level"`
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("api.base_url", "https://api.ft.com")
	v.SetDefault("api.path", "/content/notifications")
	v.SetDefault("api.timeout_sec", 30)
	v.SetDefault("api.retry_count", 2)
	v.SetDefault("api.retry_delay_sec", 1)
	v.SetDefault("api.rate_per_second", 5)
	v.SetDefault("poll.interval", "1m")
	v.SetDefault("poll.run_on_startup", true)
	v.SetDefault("sinks.file.enabled", false)
	v.SetDefault("sinks.file.path", "data/notifications.jsonl")
	v.SetDefault("sinks.file.compress", false)
	v.SetDefault("sinks.ntfy.enabled", false)
	v.SetDefault("sinks.ntfy.server", "https://ntfy.sh")
	v.SetDefault("sinks.ntfy.priority", "default")
	v.SetDefault("sinks.ntfy.tags", "newspaper")
	v.SetDefault("sinks.ntfy.buffer", 64)
	v.SetDefault("sinks.websocket.enabled", false)
	v.SetDefault("server.enabled", true)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("logging.enabled", false)
	v.SetDefault("logging.directory", "logs")
	v.SetDefault("logging.level", "info")

	// Environment variable support
	v.SetEnvPrefix("NOTIFMON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Explicitly bind secrets that have no default to env vars
	_ = v.BindEnv("api.api_key", "NOTIFMON_API_API_KEY", "NOTIFMON_API_KEY")
	_ = v.BindEnv("sinks.ntfy.topic", "NOTIFMON_SINKS_NTFY_TOPIC")
	_ = v.BindEnv("sinks.ntfy.token", "NOTIFMON_SINKS_NTFY_TOKEN")

	// Load config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("default")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Timeout returns the per-request HTTP timeout.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// RetryDelayDuration returns the base delay between retries.
func (c APIConfig) RetryDelayDuration() time.Duration {
	return time.Duration(c.RetryDelay) * time.Second
}
