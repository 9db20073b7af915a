package observer

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/soc-receiver/internal/alert"
)

// Subscription is a live feed of alerts for one consumer.
type Subscription struct {
	ID      string
	Alerts  <-chan alert.Alert
	ch      chan alert.Alert
	dropped atomic.Uint64
}

// Dropped returns how many alerts were skipped because the consumer was slow.
func (s *Subscription) Dropped() uint64 {
	return s.dropped.Load()
}

// Broadcaster delivers alerts to live subscribers without ever blocking the caller.
// Nothing is buffered for subscribers that join later.
type Broadcaster struct {
	mu     sync.RWMutex
	subs   map[string]*Subscription
	buffer int
	log    zerolog.Logger
}

// NewBroadcaster creates a hub whose subscribers each get a channel of the given capacity.
func NewBroadcaster(buffer int, logger zerolog.Logger) *Broadcaster {
	if buffer <= 0 {
		buffer = 1
	}
	return &Broadcaster{
		subs:   make(map[string]*Subscription),
		buffer: buffer,
		log:    logger,
	}
}

// Subscribe registers a new consumer.
func (b *Broadcaster) Subscribe() *Subscription {
	ch := make(chan alert.Alert, b.buffer)
	sub := &Subscription{ID: uuid.NewString(), Alerts: ch, ch: ch}

	b.mu.Lock()
	b.subs[sub.ID] = sub
	b.mu.Unlock()

	b.log.Debug().Str("subscriber_id", sub.ID).Msg("subscriber added")
	return sub
}

// Unsubscribe removes the consumer and closes its channel. Safe to call twice.
func (b *Broadcaster) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[sub.ID]; !ok {
		return
	}
	delete(b.subs, sub.ID)
	close(sub.ch)

	b.log.Debug().Str("subscriber_id", sub.ID).Uint64("dropped", sub.Dropped()).Msg("subscriber removed")
}

// Subscribers returns the number of live consumers.
func (b *Broadcaster) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *Broadcaster) Observe(_ context.Context, a alert.Alert) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs {
		select {
		case sub.ch <- a:
		default:
			sub.dropped.Add(1)
			b.log.Warn().Str("subscriber_id", sub.ID).Str("conn_id", a.ConnID).Msg("subscriber too slow, alert dropped")
		}
	}
	return nil
}
