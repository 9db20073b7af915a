package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/soc-receiver/internal/config"
	"github.com/vovakirdan/soc-receiver/internal/listener"
	applog "github.com/vovakirdan/soc-receiver/internal/log"
	"github.com/vovakirdan/soc-receiver/internal/observer"
	transporthttp "github.com/vovakirdan/soc-receiver/internal/transport/http"
)

// App wires the alert listener, its observers and the optional admin server.
type App struct {
	listener        *listener.Listener
	console         *observer.Console
	admin           *stdhttp.Server
	shutdownTimeout time.Duration
	log             *zerolog.Logger
}

// New constructs the application. Alert lines are written to stdout.
func New(cfg config.Config, logger *zerolog.Logger, stdout io.Writer) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	console := observer.NewConsole(stdout)
	feed := observer.NewBroadcaster(cfg.SubscriberBuffer, applog.Component(logger, "feed"))
	sink := observer.Multi{
		console,
		observer.NewLog(applog.Component(logger, "alerts")),
		feed,
	}

	l, err := listener.New(cfg, sink, applog.Component(logger, "listener"))
	if err != nil {
		return nil, fmt.Errorf("init listener: %w", err)
	}

	a := &App{
		listener:        l,
		console:         console,
		shutdownTimeout: cfg.ShutdownTimeout,
		log:             logger,
	}
	if cfg.AdminAddr != "" {
		adminLog := applog.Component(logger, "admin")
		a.admin = transporthttp.NewServer(cfg, l, feed, &adminLog)
	}

	return a, nil
}

// ListenerAddr returns the bound alert endpoint, or nil before Run has bound it.
func (a *App) ListenerAddr() net.Addr {
	return a.listener.Addr()
}

// Run binds the listener and blocks until context cancellation or fatal error.
// A bind failure is returned immediately as *alert.BindError.
func (a *App) Run(ctx context.Context) error {
	if err := a.listener.Start(); err != nil {
		return err
	}
	if err := a.console.Listening(a.listener.Addr()); err != nil {
		a.log.Warn().Err(err).Msg("failed to print startup line")
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- a.listener.Serve(ctx)
	}()

	adminErr := make(chan error, 1)
	if a.admin != nil {
		a.admin.BaseContext = func(net.Listener) context.Context { return ctx }
		go func() {
			a.log.Info().Str("addr", a.admin.Addr).Msg("starting admin server")
			if err := a.admin.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
				adminErr <- err
				return
			}
			adminErr <- nil
		}()
	}

	select {
	case err := <-serveErr:
		a.shutdownAdmin()
		return err
	case err := <-adminErr:
		if err != nil {
			a.log.Error().Err(err).Msg("admin server failed")
			_ = a.listener.Close()
			<-serveErr
			return fmt.Errorf("admin server: %w", err)
		}
		return <-serveErr
	case <-ctx.Done():
		a.shutdownAdmin()
		return <-serveErr
	}
}

func (a *App) shutdownAdmin() {
	if a.admin == nil {
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	a.log.Info().Msg("shutting down admin server")
	if err := a.admin.Shutdown(shutdownCtx); err != nil {
		a.log.Warn().Err(err).Msg("admin server shutdown")
	}
}
