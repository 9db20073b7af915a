// Package listener implements the sequential TCP alert receiver.
//
// Connections are handled one at a time on the goroutine running Serve:
// the next Accept only happens after the previous connection is closed.
package listener

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/soc-receiver/internal/alert"
	"github.com/vovakirdan/soc-receiver/internal/config"
	"github.com/vovakirdan/soc-receiver/internal/observer"
)

const (
	minAcceptBackoff = 5 * time.Millisecond
	maxAcceptBackoff = time.Second
)

var (
	ErrNotStarted     = errors.New("listener not started")
	ErrAlreadyStarted = errors.New("listener already started")
)

// Listener accepts alert connections on a fixed endpoint.
type Listener struct {
	endpoint    alert.Endpoint
	maxSize     int
	readTimeout time.Duration
	decoder     *alert.Decoder
	observer    observer.Observer
	log         zerolog.Logger

	listen func(network, address string) (net.Listener, error)

	mu      sync.Mutex
	ln      net.Listener
	cancel  context.CancelFunc
	closing atomic.Bool

	state atomic.Int32
	stats counters
}

// New validates the listener part of cfg and builds an unbound Listener.
func New(cfg config.Config, obs observer.Observer, logger zerolog.Logger) (*Listener, error) {
	endpoint, err := alert.ParseEndpoint(cfg.Addr)
	if err != nil {
		return nil, err
	}
	if cfg.MaxMessageSize <= 0 {
		return nil, fmt.Errorf("max message size must be positive, got %d", cfg.MaxMessageSize)
	}
	decoder, err := alert.NewDecoder(cfg.Encoding)
	if err != nil {
		return nil, err
	}
	if obs == nil {
		return nil, errors.New("observer is required")
	}

	return &Listener{
		endpoint:    endpoint,
		maxSize:     cfg.MaxMessageSize,
		readTimeout: cfg.ReadTimeout,
		decoder:     decoder,
		observer:    obs,
		log:         logger,
		listen:      net.Listen,
	}, nil
}

// Start binds the endpoint. A failure is returned as *alert.BindError.
func (l *Listener) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.ln != nil {
		return ErrAlreadyStarted
	}

	ln, err := l.listen("tcp", l.endpoint.String())
	if err != nil {
		return &alert.BindError{Endpoint: l.endpoint.String(), Err: err}
	}
	l.ln = ln

	l.log.Info().
		Str("endpoint", ln.Addr().String()).
		Int("max_message_size", l.maxSize).
		Str("encoding", l.decoder.Name()).
		Msg("alert listener bound")
	return nil
}

// Addr returns the bound address, or nil before Start.
func (l *Listener) Addr() net.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ln == nil {
		return nil
	}
	return l.ln.Addr()
}

// State reports where the accept loop currently is.
func (l *Listener) State() State {
	return State(l.state.Load())
}

// Stats returns a snapshot of the counters.
func (l *Listener) Stats() Stats {
	return l.stats.snapshot()
}

// Close releases the listening socket and interrupts the connection being read.
// A running Serve returns nil.
func (l *Listener) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ln == nil {
		return nil
	}
	l.closing.Store(true)
	if l.cancel != nil {
		l.cancel()
	}
	return l.ln.Close()
}

// Serve runs the accept loop until ctx is cancelled or Close is called.
// Accept errors are logged and retried with backoff.
func (l *Listener) Serve(ctx context.Context) error {
	// Close cancels this context as well.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	l.mu.Lock()
	ln := l.ln
	l.cancel = cancel
	l.mu.Unlock()
	if ln == nil {
		return ErrNotStarted
	}
	if l.closing.Load() {
		return nil
	}

	stop := context.AfterFunc(ctx, func() { _ = l.Close() })
	defer stop()
	defer l.setState(StateIdle)

	var backoff time.Duration
	for {
		l.setState(StateAccepting)
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || l.closing.Load() {
				l.log.Info().Msg("alert listener stopped")
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return fmt.Errorf("accept: %w", err)
			}

			l.stats.acceptFailures.Add(1)
			backoff = nextBackoff(backoff)
			l.log.Warn().Err(err).Dur("retry_in", backoff).Msg("accept failed")

			timer := time.NewTimer(backoff)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
			}
			continue
		}

		backoff = 0
		l.handle(ctx, conn)
	}
}

func (l *Listener) handle(ctx context.Context, conn net.Conn) {
	connID := uuid.NewString()
	remote := conn.RemoteAddr().String()
	logger := l.log.With().Str("conn_id", connID).Str("remote", remote).Logger()

	l.stats.accepted.Add(1)
	logger.Debug().Msg("connection accepted")

	defer func() {
		l.setState(StateClosing)
		if err := conn.Close(); err != nil {
			logger.Debug().Err(err).Msg("close connection")
		}
		l.setState(StateIdle)
	}()

	// Shutdown interrupts a blocked read.
	stop := context.AfterFunc(ctx, func() { _ = conn.SetReadDeadline(time.Now()) })
	defer stop()

	l.setState(StateReading)
	raw, err := l.read(conn)
	if err != nil {
		if ctx.Err() != nil {
			logger.Debug().Msg("read interrupted by shutdown")
			return
		}
		l.stats.readFailures.Add(1)
		logger.Warn().Err(err).Msg("read alert")
		return
	}

	text, err := l.decoder.Decode(raw)
	if err != nil {
		l.stats.decodeFailures.Add(1)
		logger.Warn().Err(err).Int("bytes", len(raw)).Msg("discarding undecodable alert")
		return
	}

	l.setState(StateEmitting)
	a := alert.Alert{
		ConnID:     connID,
		Remote:     remote,
		Text:       text,
		Size:       len(raw),
		ReceivedAt: time.Now().UTC(),
	}
	if a.Empty() {
		l.stats.empty.Add(1)
	}
	if err := l.observer.Observe(ctx, a); err != nil {
		l.stats.observerFailures.Add(1)
		logger.Error().Err(err).Msg("emit alert")
	}
	l.stats.emitted.Add(1)
	l.stats.lastAlertAt.Store(a.ReceivedAt.UnixNano())
}

// read performs a single read of at most maxSize bytes. EOF before any data yields an empty payload.
func (l *Listener) read(conn net.Conn) ([]byte, error) {
	if l.readTimeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(l.readTimeout)); err != nil {
			return nil, fmt.Errorf("set read deadline: %w", err)
		}
	}

	buf := make([]byte, l.maxSize)
	n, err := conn.Read(buf)
	if n > 0 || err == nil || errors.Is(err, io.EOF) {
		return buf[:n], nil
	}
	return nil, err
}

func (l *Listener) setState(s State) {
	l.state.Store(int32(s))
}

func nextBackoff(prev time.Duration) time.Duration {
	if prev == 0 {
		return minAcceptBackoff
	}
	if next := prev * 2; next < maxAcceptBackoff {
		return next
	}
	return maxAcceptBackoff
}
