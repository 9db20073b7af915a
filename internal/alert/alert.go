package alert

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Endpoint is the address and port the listener binds to.
type Endpoint struct {
	Host string
	Port int
}

// ParseEndpoint splits a "host:port" address into an Endpoint.
func ParseEndpoint(addr string) (Endpoint, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return Endpoint{}, fmt.Errorf("parse endpoint %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return Endpoint{}, fmt.Errorf("parse endpoint %q: invalid port %q", addr, portStr)
	}
	return Endpoint{Host: host, Port: port}, nil
}

func (e Endpoint) String() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// Alert is one decoded message received from a single connection.
type Alert struct {
	ConnID     string    `json:"conn_id"`
	Remote     string    `json:"remote"`
	Text       string    `json:"text"`
	Size       int       `json:"size"`
	ReceivedAt time.Time `json:"received_at"`
}

// Empty reports whether the peer closed without sending anything.
func (a Alert) Empty() bool {
	return a.Size == 0
}
