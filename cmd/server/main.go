package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/soc-receiver/internal/app"
	"github.com/vovakirdan/soc-receiver/internal/config"
	applog "github.com/vovakirdan/soc-receiver/internal/log"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// options holds what the command line contributes on top of the config file.
type options struct {
	configPath string
	overrides  config.Config
}

func (o *options) bindFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&o.configPath, "config", "c", "", "path to config file (default ./config.yaml)")
	flags.StringVar(&o.overrides.Addr, "addr", "", "alert listen address, host:port")
	flags.StringVar(&o.overrides.AdminAddr, "admin-addr", "", "admin HTTP listen address (disabled when empty)")
	flags.StringVar(&o.overrides.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&o.overrides.LogFormat, "log-format", "", "log format: console or json")
	flags.StringVar(&o.overrides.Encoding, "encoding", "", "alert text encoding label")
}

// load resolves the effective config: defaults < file < env < flags.
func (o *options) load(logger *zerolog.Logger) (config.Config, string, error) {
	cfg, path, err := config.Load(logger, o.configPath)
	if err != nil {
		return cfg, path, err
	}
	cfg.UpdateFrom(o.overrides)
	return cfg, path, nil
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "soc-receiver",
		Short:         "Receive plain-text security alerts over TCP, one connection at a time",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bootLog := applog.New(opts.overrides.LogLevel, opts.overrides.LogFormat)

			cfg, path, err := opts.load(bootLog)
			if err != nil {
				bootLog.Error().Err(err).Str("path", path).Msg("failed to load config")
				return err
			}

			logger := applog.New(cfg.LogLevel, cfg.LogFormat)
			logger.Debug().Str("path", path).Interface("config", cfg).Msg("config loaded")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.New(cfg, logger, cmd.OutOrStdout())
			if err != nil {
				logger.Error().Err(err).Msg("failed to initialize")
				return err
			}

			if err := application.Run(ctx); err != nil {
				logger.Error().Err(err).Msg("receiver exited with error")
				return err
			}
			logger.Info().Msg("receiver stopped")
			return nil
		},
	}
	opts.bindFlags(cmd)

	return cmd
}
