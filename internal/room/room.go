// Package room owns the process-wide match and keeps every connected
// client's view current. A single goroutine processes commands one at a
// time, so the match state never sees concurrent mutation.
package room

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/tabellone/scoreboard-server/internal/dispatch"
	"github.com/tabellone/scoreboard-server/internal/engine"
	"github.com/tabellone/scoreboard-server/internal/wire"
)

type Msg interface{ isRoomMsg() }

type Join struct {
	ClientID string
	Outbox   chan wire.ServerEvent
}

type Leave struct{ ClientID string }

type FromClient struct {
	ClientID string
	Cmd      dispatch.Command
}

// GetView reflects internal state without data races; used by the HTTP
// read-only endpoints and by tests.
type GetView struct {
	Reply chan View
}

type Shutdown struct{}

func (Join) isRoomMsg()       {}
func (Leave) isRoomMsg()      {}
func (FromClient) isRoomMsg() {}
func (GetView) isRoomMsg()    {}
func (Shutdown) isRoomMsg()   {}

type View struct {
	NumClients int
	Snapshot   engine.Snapshot
	EventLog   []dispatch.Entry
}

const DefaultHeartbeatInterval = 200 * time.Millisecond

type Room struct {
	inbox     chan Msg
	disp      *dispatch.Dispatcher
	clock     clockwork.Clock
	heartbeat time.Duration
	clients   map[string]chan wire.ServerEvent
	ctx       context.Context
	cancel    context.CancelFunc
}

func New(parent context.Context, disp *dispatch.Dispatcher, clock clockwork.Clock, heartbeat time.Duration) *Room {
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeatInterval
	}
	ctx, cancel := context.WithCancel(parent)
	r := &Room{
		inbox:     make(chan Msg, 64),
		disp:      disp,
		clock:     clock,
		heartbeat: heartbeat,
		clients:   make(map[string]chan wire.ServerEvent),
		ctx:       ctx,
		cancel:    cancel,
	}
	go r.loop()
	return r
}

func (r *Room) Inbox() chan<- Msg { return r.inbox }

func (r *Room) loop() {
	ticker := r.clock.NewTicker(r.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case <-ticker.Chan():
			// The heartbeat is what makes countdowns visually tick on
			// clients; they never run timers of their own.
			r.broadcast(wire.SnapshotEvent(r.disp.Snapshot(r.clock.Now())))

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				r.clients[msg.ClientID] = msg.Outbox
				r.sendTo(msg.ClientID, wire.SnapshotEvent(r.disp.Snapshot(r.clock.Now())))
				log.Info().Str("client", msg.ClientID).Int("clients", len(r.clients)).Msg("client joined")

			case Leave:
				// Close the outbox so the connection's writer goroutine
				// terminates; a client already dropped by the slow-client
				// path has no map entry and was closed there.
				if ch, ok := r.clients[msg.ClientID]; ok {
					close(ch)
					delete(r.clients, msg.ClientID)
				}
				log.Info().Str("client", msg.ClientID).Int("clients", len(r.clients)).Msg("client left")

			case FromClient:
				r.handleCommand(msg)

			case GetView:
				msg.Reply <- View{
					NumClients: len(r.clients),
					Snapshot:   r.disp.Snapshot(r.clock.Now()),
					EventLog:   r.disp.EventLog(),
				}

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) handleCommand(msg FromClient) {
	now := r.clock.Now()
	if err := r.disp.Dispatch(msg.Cmd, now); err != nil {
		log.Warn().Str("client", msg.ClientID).Str("command", string(msg.Cmd.Type)).Err(err).Msg("command rejected")
		r.sendTo(msg.ClientID, wire.ErrorEvent(err.Error()))
		return
	}
	log.Info().Str("client", msg.ClientID).Str("command", string(msg.Cmd.Type)).Msg("command applied")

	r.broadcast(wire.SnapshotEvent(r.disp.Snapshot(now)))

	switch msg.Cmd.Type {
	case dispatch.CmdGetEventLog:
		r.sendTo(msg.ClientID, wire.EventLogEvent(r.disp.EventLog()))
	case dispatch.CmdPlayIntro:
		// Fresh key every time so the overlay replays the video even if it
		// already showed it once.
		r.broadcast(wire.IntroVideoEvent(uuid.NewString()))
	}

	r.sendTo(msg.ClientID, wire.AckEvent())
}

func (r *Room) sendTo(clientID string, ev wire.ServerEvent) {
	ch, ok := r.clients[clientID]
	if !ok {
		return
	}
	select {
	case ch <- ev:
	default:
		// Client is slow/full - drop them.
		close(ch)
		delete(r.clients, clientID)
		log.Warn().Str("client", clientID).Msg("dropped slow client")
	}
}

func (r *Room) broadcast(ev wire.ServerEvent) {
	for id, ch := range r.clients {
		select {
		case ch <- ev:
		default:
			close(ch)
			delete(r.clients, id)
			log.Warn().Str("client", id).Msg("dropped slow client")
		}
	}
}

func (r *Room) shutdown() {
	for id, ch := range r.clients {
		close(ch)
		delete(r.clients, id)
	}
	r.cancel()
}
