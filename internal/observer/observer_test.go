package observer

import (
	"bytes"
	"context"
	"errors"
	"net"
	"testing"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/soc-receiver/internal/alert"
)

func TestConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	console := NewConsole(&buf)

	addr := &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 5000}
	if err := console.Listening(addr); err != nil {
		t.Fatalf("listening: %v", err)
	}
	if err := console.Observe(context.Background(), alert.Alert{Text: "ALERT:disk_full", Size: 15}); err != nil {
		t.Fatalf("observe: %v", err)
	}
	if err := console.Observe(context.Background(), alert.Alert{}); err != nil {
		t.Fatalf("observe empty: %v", err)
	}

	want := "SOC Server listening on port 5000...\n" +
		"ALERT RECEIVED: ALERT:disk_full\n" +
		"ALERT RECEIVED: \n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n%q\nwant:\n%q", buf.String(), want)
	}
}

func TestMultiRunsAllAndJoinsErrors(t *testing.T) {
	errA := errors.New("a failed")
	errC := errors.New("c failed")
	var calls []string

	m := Multi{
		Func(func(context.Context, alert.Alert) error { calls = append(calls, "a"); return errA }),
		nil,
		Func(func(context.Context, alert.Alert) error { calls = append(calls, "b"); return nil }),
		Func(func(context.Context, alert.Alert) error { calls = append(calls, "c"); return errC }),
	}

	err := m.Observe(context.Background(), alert.Alert{Text: "x"})
	if !errors.Is(err, errA) || !errors.Is(err, errC) {
		t.Fatalf("expected joined errors, got %v", err)
	}
	if len(calls) != 3 || calls[0] != "a" || calls[1] != "b" || calls[2] != "c" {
		t.Fatalf("unexpected call order: %v", calls)
	}
}

func TestBroadcasterDeliversToSubscribers(t *testing.T) {
	b := NewBroadcaster(4, zerolog.Nop())
	s1 := b.Subscribe()
	s2 := b.Subscribe()

	if n := b.Subscribers(); n != 2 {
		t.Fatalf("expected 2 subscribers, got %d", n)
	}

	_ = b.Observe(context.Background(), alert.Alert{ConnID: "c1", Text: "hello"})

	for _, sub := range []*Subscription{s1, s2} {
		got := <-sub.Alerts
		if got.Text != "hello" || got.ConnID != "c1" {
			t.Fatalf("unexpected alert: %+v", got)
		}
	}

	b.Unsubscribe(s1)
	b.Unsubscribe(s1)
	if _, ok := <-s1.Alerts; ok {
		t.Fatal("expected closed channel after unsubscribe")
	}
	if n := b.Subscribers(); n != 1 {
		t.Fatalf("expected 1 subscriber, got %d", n)
	}
}

func TestBroadcasterDropsForSlowSubscriber(t *testing.T) {
	b := NewBroadcaster(1, zerolog.Nop())
	sub := b.Subscribe()

	for i := 0; i < 3; i++ {
		if err := b.Observe(context.Background(), alert.Alert{Text: "x"}); err != nil {
			t.Fatalf("observe must never fail: %v", err)
		}
	}

	if got := sub.Dropped(); got != 2 {
		t.Fatalf("expected 2 drops, got %d", got)
	}
	if len(sub.Alerts) != 1 {
		t.Fatalf("expected 1 buffered alert, got %d", len(sub.Alerts))
	}
}
