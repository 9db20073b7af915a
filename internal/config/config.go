package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vovakirdan/soc-receiver/internal/alert"
)

// Config holds receiver configuration values.
type Config struct {
	Addr             string        `mapstructure:"addr" yaml:"addr"`
	MaxMessageSize   int           `mapstructure:"max_message_size" yaml:"max_message_size"`
	Encoding         string        `mapstructure:"encoding" yaml:"encoding"`
	ReadTimeout      time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	LogLevel         string        `mapstructure:"log_level" yaml:"log_level"`
	LogFormat        string        `mapstructure:"log_format" yaml:"log_format"`
	AdminAddr        string        `mapstructure:"admin_addr" yaml:"admin_addr"`
	ShutdownTimeout  time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	SubscriberBuffer int           `mapstructure:"subscriber_buffer" yaml:"subscriber_buffer"`
}

// Default returns the configuration of the stock SOC receiver.
func Default() Config {
	return Config{
		Addr:             "127.0.0.1:5000",
		MaxMessageSize:   1024,
		Encoding:         alert.DefaultEncoding,
		LogLevel:         "info",
		LogFormat:        "console",
		ShutdownTimeout:  5 * time.Second,
		SubscriberBuffer: 64,
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.MaxMessageSize != 0 {
		c.MaxMessageSize = other.MaxMessageSize
	}
	if other.Encoding != "" {
		c.Encoding = other.Encoding
	}
	if other.ReadTimeout != 0 {
		c.ReadTimeout = other.ReadTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.LogFormat != "" {
		c.LogFormat = other.LogFormat
	}
	if other.AdminAddr != "" {
		c.AdminAddr = other.AdminAddr
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.SubscriberBuffer != 0 {
		c.SubscriberBuffer = other.SubscriberBuffer
	}
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error

	if _, err := alert.ParseEndpoint(c.Addr); err != nil {
		errs = append(errs, fmt.Errorf("addr: %w", err))
	}
	if c.MaxMessageSize <= 0 {
		errs = append(errs, fmt.Errorf("max_message_size must be positive, got %d", c.MaxMessageSize))
	}
	if _, err := alert.NewDecoder(c.Encoding); err != nil {
		errs = append(errs, fmt.Errorf("encoding: %w", err))
	}
	if c.ReadTimeout < 0 {
		errs = append(errs, fmt.Errorf("read_timeout must not be negative"))
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format must be console or json, got %q", c.LogFormat))
	}
	if c.SubscriberBuffer < 0 {
		errs = append(errs, fmt.Errorf("subscriber_buffer must not be negative"))
	}

	return errors.Join(errs...)
}
