package proto

import (
	"time"

	"github.com/vovakirdan/soc-receiver/internal/alert"
)

const (
	OutboundTypeHello = "hello"
	OutboundTypeAlert = "alert"
)

// Outbound is the envelope for messages sent to alert stream clients.
type Outbound struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// HelloData is sent once a stream subscription is live.
type HelloData struct {
	SubscriberID string `json:"subscriber_id"`
	Endpoint     string `json:"endpoint,omitempty"`
}

// AlertData is the wire form of a received alert.
type AlertData struct {
	ConnID     string `json:"conn_id"`
	Remote     string `json:"remote"`
	Text       string `json:"text"`
	Size       int    `json:"size"`
	ReceivedAt string `json:"received_at"`
}

// Hello builds the greeting envelope.
func Hello(subscriberID, endpoint string) Outbound {
	return Outbound{
		Type: OutboundTypeHello,
		Data: HelloData{SubscriberID: subscriberID, Endpoint: endpoint},
	}
}

// FromAlert builds the envelope for one alert.
func FromAlert(a alert.Alert) Outbound {
	return Outbound{
		Type: OutboundTypeAlert,
		Data: AlertData{
			ConnID:     a.ConnID,
			Remote:     a.Remote,
			Text:       a.Text,
			Size:       a.Size,
			ReceivedAt: a.ReceivedAt.UTC().Format(time.RFC3339Nano),
		},
	}
}
