package config

import "fmt"

// Config is the main configuration struct.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Limits   LimitsConfig   `yaml:"limits"`
	Security SecurityConfig `yaml:"security"`
	Journal  JournalConfig  `yaml:"journal"`
	Reaper   ReaperConfig   `yaml:"reaper"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// LimitsConfig bounds in-memory state. MaxInstances caps simultaneously
// live instances; MaxMessages caps each instance's message cache.
type LimitsConfig struct {
	MaxInstances int `yaml:"max_instances"`
	MaxMessages  int `yaml:"max_messages"`
}

// SecurityConfig holds request-policy settings.
type SecurityConfig struct {
	RateLimit struct {
		RPS   float64 `yaml:"rps"`
		Burst int     `yaml:"burst"`
	} `yaml:"rate_limit"`
}

// JournalConfig enables the on-disk event journal when Path is set.
type JournalConfig struct {
	Path string `yaml:"path"`
}

// ReaperConfig controls the ephemeral-message sweep.
type ReaperConfig struct {
	Enabled bool   `yaml:"enabled"`
	Cron    string `yaml:"cron"`
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	host := c.Server.Address
	port := c.Server.Port
	if port == 0 {
		port = 21080
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// Default returns the built-in configuration used when no file is given.
func Default() *Config {
	c := &Config{}
	c.Server.Port = 21080
	c.Logging.Level = "info"
	c.Limits.MaxInstances = 20
	c.Limits.MaxMessages = 1000
	c.Security.RateLimit.RPS = 50
	c.Security.RateLimit.Burst = 100
	c.Reaper.Enabled = true
	c.Reaper.Cron = "* * * * *"
	return c
}
