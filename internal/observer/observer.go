// Package observer holds the destinations a received alert is emitted to.
package observer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/soc-receiver/internal/alert"
)

// Observer receives every decoded alert exactly once.
type Observer interface {
	Observe(ctx context.Context, a alert.Alert) error
}

// Func adapts a function to Observer.
type Func func(ctx context.Context, a alert.Alert) error

func (f Func) Observe(ctx context.Context, a alert.Alert) error { return f(ctx, a) }

// Console prints alerts as human-readable lines.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsole creates a console observer writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Listening prints the startup line for the bound address.
func (c *Console) Listening(addr net.Addr) error {
	port := addr.String()
	if _, p, err := net.SplitHostPort(port); err == nil {
		port = p
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.w, "SOC Server listening on port %s...\n", port)
	return err
}

func (c *Console) Observe(_ context.Context, a alert.Alert) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.w, "ALERT RECEIVED: %s\n", a.Text)
	return err
}

// Log records each alert as a structured debug entry.
type Log struct {
	log zerolog.Logger
}

func NewLog(logger zerolog.Logger) *Log {
	return &Log{log: logger}
}

func (l *Log) Observe(_ context.Context, a alert.Alert) error {
	l.log.Debug().
		Str("conn_id", a.ConnID).
		Str("remote", a.Remote).
		Int("bytes", a.Size).
		Bool("empty", a.Empty()).
		Str("text", a.Text).
		Msg("alert received")
	return nil
}

// Multi fans an alert out to every observer in order. All observers run even if one fails.
type Multi []Observer

func (m Multi) Observe(ctx context.Context, a alert.Alert) error {
	var errs []error
	for _, o := range m {
		if o == nil {
			continue
		}
		if err := o.Observe(ctx, a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
