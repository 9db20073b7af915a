package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	envPrefix            = "SOCRECV"
	envConfigDefaultPath = "SOCRECV_CONFIG_DEFAULT_PATH"
	defaultConfigName    = "config.yaml"
)

// configSource is where the config file is expected and whether a missing one
// may be created there. Only locations chosen by the operator are written to.
type configSource struct {
	path     string
	writable bool
}

// Load builds configuration from defaults, optional config file and env vars, and returns the resolved path.
// Precedence: defaults < config file < env vars < caller overrides.
// A missing file is seeded with defaults only when its location came from --config or
// SOCRECV_CONFIG_DEFAULT_PATH; ./config.yaml is read if present but never created.
func Load(logger *zerolog.Logger, explicitPath string) (Config, string, error) {
	cfg := Default()
	v := newViper(cfg)

	src := resolveConfigSource(explicitPath)
	v.SetConfigFile(src.path)

	err := v.ReadInConfig()
	switch {
	case err == nil:
		logDebug(logger, src.path, "config file loaded")
	case isNotExist(err):
		if src.writable {
			if writeErr := writeDefaultConfig(src.path, cfg); writeErr != nil {
				logWarn(logger, src.path, writeErr, "could not seed default config, continuing with defaults")
			} else {
				logInfo(logger, src.path, "created default config")
			}
		} else {
			logDebug(logger, src.path, "no config file, using defaults")
		}
	default:
		return cfg, src.path, fmt.Errorf("read config: %w", err)
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, src.path, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, src.path, nil
}

func newViper(defaults Config) *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("addr", defaults.Addr)
	v.SetDefault("max_message_size", defaults.MaxMessageSize)
	v.SetDefault("encoding", defaults.Encoding)
	v.SetDefault("read_timeout", defaults.ReadTimeout)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("log_format", defaults.LogFormat)
	v.SetDefault("admin_addr", defaults.AdminAddr)
	v.SetDefault("shutdown_timeout", defaults.ShutdownTimeout)
	v.SetDefault("subscriber_buffer", defaults.SubscriberBuffer)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func resolveConfigSource(explicitPath string) configSource {
	if explicitPath != "" {
		return configSource{path: explicitPath, writable: true}
	}

	if base := os.Getenv(envConfigDefaultPath); base != "" {
		return configSource{path: filepath.Join(base, defaultConfigName), writable: true}
	}

	if cwd, err := os.Getwd(); err == nil {
		return configSource{path: filepath.Join(cwd, defaultConfigName)}
	}
	return configSource{path: defaultConfigName}
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}

func writeDefaultConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func logDebug(logger *zerolog.Logger, path, msg string) {
	if logger != nil {
		logger.Debug().Str("path", path).Msg(msg)
	}
}

func logInfo(logger *zerolog.Logger, path, msg string) {
	if logger != nil {
		logger.Info().Str("path", path).Msg(msg)
	}
}

func logWarn(logger *zerolog.Logger, path string, err error, msg string) {
	if logger != nil {
		logger.Warn().Err(err).Str("path", path).Msg(msg)
	}
}
