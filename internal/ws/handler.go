package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/boxy-commentary/internal/broadcast"
	"github.com/DoyleJ11/boxy-commentary/internal/types"
)

const writeTimeout = 3 * time.Second

// Handler streams commentary to a widget. The widget only listens; anything
// it sends is discarded.
func Handler(b *broadcast.Broadcaster, log *zap.Logger, originPatterns []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			log.Debug("websocket accept failed", zap.Error(err))
			return
		}
		defer conn.CloseNow()

		// CloseRead drains and discards client frames; ctx ends when the
		// peer goes away.
		ctx := conn.CloseRead(r.Context())

		out := make(chan broadcast.Snapshot, 8)
		clientID := uuid.NewString()
		l := log.With(zap.String("client_id", clientID))

		if !send(ctx, b, broadcast.Join{ClientID: clientID, Outbox: out}) {
			conn.Close(websocket.StatusGoingAway, "shutting down")
			return
		}
		defer send(context.Background(), b, broadcast.Leave{ClientID: clientID})
		l.Debug("widget connected")

		for {
			select {
			case <-ctx.Done():
				l.Debug("widget disconnected")
				return

			case <-b.Done():
				conn.Close(websocket.StatusGoingAway, "shutting down")
				return

			case snap, ok := <-out:
				if !ok {
					// Dropped as slow, or the broadcaster is gone.
					conn.Close(websocket.StatusGoingAway, "commentary stream closed")
					return
				}
				payload, _ := json.Marshal(types.ServerMessage{
					Type:    types.MsgCommentary,
					Version: snap.Version,
					Text:    snap.Text,
				})
				wctx, cancel := context.WithTimeout(ctx, writeTimeout)
				err := conn.Write(wctx, websocket.MessageText, payload)
				cancel()
				if err != nil {
					l.Debug("websocket write failed", zap.Error(err))
					return
				}
			}
		}
	}
}

func send(ctx context.Context, b *broadcast.Broadcaster, m broadcast.Msg) bool {
	select {
	case b.Inbox() <- m:
		return true
	case <-b.Done():
		return false
	case <-ctx.Done():
		return false
	}
}
