// Package ws bridges WebSocket connections to the room. The reader decodes
// commands, the writer drains the client's outbox; all replies, including
// decode errors, go through the outbox so only one goroutine ever writes.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tabellone/scoreboard-server/internal/room"
	"github.com/tabellone/scoreboard-server/internal/wire"
)

const writeTimeout = 3 * time.Second

func Handler(r *room.Room) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		conn, err := websocket.Accept(w, req, nil)
		if err != nil {
			log.Warn().Err(err).Msg("websocket accept failed")
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan wire.ServerEvent, 16)
		clientID := uuid.NewString()

		r.Inbox() <- room.Join{ClientID: clientID, Outbox: out}
		defer func() { r.Inbox() <- room.Leave{ClientID: clientID} }()

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(req.Context())
		defer writeCancel()
		go func() {
			for ev := range out {
				payload, err := json.Marshal(ev)
				if err != nil {
					log.Error().Err(err).Str("event", ev.Type).Msg("marshal server event")
					continue
				}
				ctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		// Reader loop. Display clients may never send anything, so reads
		// have no deadline of their own; the request context ends them.
		for {
			_, data, err := conn.Read(req.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}

			cmd, err := wire.DecodeCommand(data)
			if err != nil {
				select {
				case out <- wire.ErrorEvent(err.Error()):
				default:
					// Outbox momentarily full; a failure must never vanish
					// without trace.
					log.Warn().Str("client", clientID).Err(err).Msg("decode error reply dropped, outbox full")
				}
				continue
			}

			r.Inbox() <- room.FromClient{ClientID: clientID, Cmd: cmd}
		}
	}
}
