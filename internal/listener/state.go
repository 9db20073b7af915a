package listener

import (
	"sync/atomic"
	"time"
)

// State is the position of the accept loop.
type State int32

const (
	StateIdle State = iota
	StateAccepting
	StateReading
	StateEmitting
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAccepting:
		return "accepting"
	case StateReading:
		return "reading"
	case StateEmitting:
		return "emitting"
	case StateClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// Stats is a point-in-time snapshot of listener counters.
type Stats struct {
	Accepted         uint64    `json:"accepted"`
	Emitted          uint64    `json:"emitted"`
	Empty            uint64    `json:"empty"`
	DecodeFailures   uint64    `json:"decode_failures"`
	ReadFailures     uint64    `json:"read_failures"`
	AcceptFailures   uint64    `json:"accept_failures"`
	ObserverFailures uint64    `json:"observer_failures"`
	LastAlertAt      time.Time `json:"last_alert_at,omitzero"`
}

type counters struct {
	accepted         atomic.Uint64
	emitted          atomic.Uint64
	empty            atomic.Uint64
	decodeFailures   atomic.Uint64
	readFailures     atomic.Uint64
	acceptFailures   atomic.Uint64
	observerFailures atomic.Uint64
	lastAlertAt      atomic.Int64
}

func (c *counters) snapshot() Stats {
	s := Stats{
		Accepted:         c.accepted.Load(),
		Emitted:          c.emitted.Load(),
		Empty:            c.empty.Load(),
		DecodeFailures:   c.decodeFailures.Load(),
		ReadFailures:     c.readFailures.Load(),
		AcceptFailures:   c.acceptFailures.Load(),
		ObserverFailures: c.observerFailures.Load(),
	}
	if ns := c.lastAlertAt.Load(); ns != 0 {
		s.LastAlertAt = time.Unix(0, ns).UTC()
	}
	return s
}
