package alert

import (
	"errors"
	"syscall"
	"testing"
)

func TestParseEndpoint(t *testing.T) {
	ep, err := ParseEndpoint("127.0.0.1:5000")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ep.Host != "127.0.0.1" || ep.Port != 5000 {
		t.Fatalf("unexpected endpoint: %+v", ep)
	}
	if ep.String() != "127.0.0.1:5000" {
		t.Fatalf("unexpected string form: %s", ep.String())
	}

	for _, bad := range []string{"", "127.0.0.1", "localhost:http", "127.0.0.1:70000"} {
		if _, err := ParseEndpoint(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestBindErrorMatching(t *testing.T) {
	err := error(&BindError{Endpoint: "127.0.0.1:5000", Err: syscall.EADDRINUSE})

	if !errors.Is(err, ErrBind) {
		t.Fatal("expected BindError to match ErrBind")
	}
	if !errors.Is(err, syscall.EADDRINUSE) {
		t.Fatal("expected BindError to unwrap its cause")
	}
	if errors.Is(err, ErrDecode) {
		t.Fatal("BindError must not match ErrDecode")
	}
}
