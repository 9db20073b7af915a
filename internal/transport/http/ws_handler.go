package http

import (
	"context"
	"errors"
	stdhttp "net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/soc-receiver/internal/observer"
	"github.com/vovakirdan/soc-receiver/internal/proto"
)

// WSHandler upgrades HTTP connections and streams received alerts to them.
type WSHandler struct {
	feed   *observer.Broadcaster
	status Status
	log    *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(feed *observer.Broadcaster, status Status, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{feed: feed, status: status, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.CloseNow()

	sub := h.feed.Subscribe()
	defer h.feed.Unsubscribe(sub)

	// The stream is one-way; CloseRead handles control frames and cancels ctx when the peer leaves.
	ctx := conn.CloseRead(r.Context())

	var endpoint string
	if addr := h.status.Addr(); addr != nil {
		endpoint = addr.String()
	}
	if err := wsjson.Write(ctx, conn, proto.Hello(sub.ID, endpoint)); err != nil {
		h.log.Warn().Err(err).Str("subscriber_id", sub.ID).Msg("write ws hello")
		return
	}

	err = h.writeLoop(ctx, conn, sub)
	switch {
	case err == nil:
		conn.Close(websocket.StatusGoingAway, "alert stream closed")
	case errors.Is(err, context.Canceled), websocket.CloseStatus(err) != -1:
	default:
		h.log.Warn().Err(err).Str("subscriber_id", sub.ID).Msg("ws stream closed with error")
		conn.Close(websocket.StatusInternalError, "write failed")
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, sub *observer.Subscription) error {
	for {
		select {
		case a, ok := <-sub.Alerts:
			if !ok {
				return nil
			}
			if err := wsjson.Write(ctx, conn, proto.FromAlert(a)); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
