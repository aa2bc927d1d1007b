// Package dispatch translates decoded client commands into match engine
// calls and keeps the append-only, in-memory event log.
package dispatch

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tabellone/scoreboard-server/internal/engine"
)

type Dispatcher struct {
	match   *engine.Match
	entries []Entry
}

func New(match *engine.Match) *Dispatcher {
	return &Dispatcher{match: match, entries: []Entry{}}
}

// Snapshot resolves the current match state against now.
func (d *Dispatcher) Snapshot(now time.Time) engine.Snapshot {
	return d.match.Snapshot(now)
}

// EventLog returns a copy of the current log entries, never nil.
func (d *Dispatcher) EventLog() []Entry {
	out := make([]Entry, len(d.entries))
	copy(out, d.entries)
	return out
}

// Dispatch applies one command. On failure the match state is unchanged and
// nothing is logged. An unknown command type panics: the wire layer rejects
// unknown tags before they get here, so reaching the default arm is an
// integration bug, not a runtime condition.
func (d *Dispatcher) Dispatch(cmd Command, now time.Time) error {
	before := d.match.Snapshot(now)

	logEvent := func(e Entry) {
		e.ID = uuid.NewString()
		e.CreatedAt = now.UnixMilli()
		e.Period = before.Period
		e.ClockRemainingMs = before.Clock.RemainingMs
		d.entries = append(d.entries, e)
	}

	switch cmd.Type {
	case CmdStartClock:
		d.match.StartClock(now)
		logEvent(Entry{Type: string(CmdStartClock)})

	case CmdPauseClock:
		d.match.PauseClock(now)
		logEvent(Entry{Type: string(CmdPauseClock)})

	case CmdResetClock:
		d.match.ResetClock()
		logEvent(Entry{Type: string(CmdResetClock)})

	case CmdSetPeriod:
		if err := d.match.SetPeriod(cmd.Period); err != nil {
			return err
		}
		logEvent(Entry{Type: string(CmdSetPeriod), Detail: fmt.Sprintf("Periodo %d", cmd.Period)})

	case CmdSetRemainingTime:
		d.match.SetRemainingTime(time.Duration(cmd.RemainingMs)*time.Millisecond, now)
		logEvent(Entry{Type: string(CmdSetRemainingTime), Detail: fmt.Sprintf("Tempo %dms", cmd.RemainingMs)})

	case CmdGoal:
		if err := d.match.AddGoal(cmd.TeamID); err != nil {
			return err
		}
		e := Entry{Type: string(CmdGoal), TeamID: cmd.TeamID}
		if cmd.HasPlayer {
			e.PlayerNumber = cmd.PlayerNumber
			if p, ok := rosterPlayer(before, cmd.TeamID, cmd.PlayerNumber); ok {
				e.PlayerName = p.Name
				// The team score and the scorer's tally are independent
				// counters; crediting the scorer happens here, not in the
				// engine.
				if err := d.match.SetPlayerGoals(cmd.TeamID, cmd.PlayerNumber, p.Goals+1); err != nil {
					return err
				}
			}
		}
		logEvent(e)

	case CmdUndoGoal:
		if err := d.match.UndoGoal(cmd.TeamID); err != nil {
			return err
		}
		logEvent(Entry{Type: string(CmdUndoGoal), TeamID: cmd.TeamID})

	case CmdPenalty:
		// The one path that keeps the ejection counter and the expulsion
		// timer in lockstep. A duplicate-expulsion conflict is swallowed so
		// the counter increment always stands.
		var name string
		if p, ok := rosterPlayer(before, cmd.TeamID, cmd.PlayerNumber); ok {
			name = p.Name
			next := min(3, p.Ejections+1)
			if err := d.match.SetPlayerEjections(cmd.TeamID, cmd.PlayerNumber, next); err != nil {
				return err
			}
		}
		if err := d.match.StartExpulsion(cmd.TeamID, cmd.PlayerNumber, now); err != nil && !errors.Is(err, engine.ErrConflict) {
			return err
		}
		logEvent(Entry{Type: string(CmdPenalty), TeamID: cmd.TeamID, PlayerNumber: cmd.PlayerNumber, PlayerName: name})

	case CmdTimeout:
		if err := d.match.RegisterTimeout(cmd.TeamID, now); err != nil {
			return err
		}
		logEvent(Entry{Type: string(CmdTimeout), TeamID: cmd.TeamID})

	case CmdResetTimeouts:
		d.match.ResetTimeouts()
		logEvent(Entry{Type: string(CmdResetTimeouts)})

	case CmdStartExpulsion:
		if err := d.match.StartExpulsion(cmd.TeamID, cmd.PlayerNumber, now); err != nil {
			return err
		}
		e := Entry{Type: string(CmdStartExpulsion), TeamID: cmd.TeamID, PlayerNumber: cmd.PlayerNumber}
		if p, ok := rosterPlayer(before, cmd.TeamID, cmd.PlayerNumber); ok {
			e.PlayerName = p.Name
		}
		logEvent(e)

	case CmdSetPlayerEjections:
		if err := d.match.SetPlayerEjections(cmd.TeamID, cmd.PlayerNumber, cmd.Ejections); err != nil {
			return err
		}
		prev, _ := rosterPlayer(before, cmd.TeamID, cmd.PlayerNumber)
		if prev.Ejections != cmd.Ejections {
			detail := fmt.Sprintf("Espulsioni: %d", cmd.Ejections)
			if prev.Ejections > cmd.Ejections {
				// Manual correction of an over-counted ejection.
				logEvent(Entry{Type: entryRemoveExpulsion, TeamID: cmd.TeamID, PlayerNumber: cmd.PlayerNumber, PlayerName: prev.Name, Detail: detail})
			}
			logEvent(Entry{Type: string(CmdSetPlayerEjections), TeamID: cmd.TeamID, PlayerNumber: cmd.PlayerNumber, PlayerName: prev.Name, Detail: detail})
		}

	case CmdSetPlayerGoals:
		if err := d.match.SetPlayerGoals(cmd.TeamID, cmd.PlayerNumber, cmd.Goals); err != nil {
			return err
		}
		prev, _ := rosterPlayer(before, cmd.TeamID, cmd.PlayerNumber)
		if prev.Goals != cmd.Goals {
			logEvent(Entry{Type: string(CmdSetPlayerGoals), TeamID: cmd.TeamID, PlayerNumber: cmd.PlayerNumber, PlayerName: prev.Name, Detail: fmt.Sprintf("Gol giocatore: %d", cmd.Goals)})
		}

	case CmdSetTeamInfo:
		if err := d.match.UpdateTeamInfo(cmd.TeamID, cmd.Info); err != nil {
			return err
		}

	case CmdSetRoster:
		if err := d.match.SetRoster(cmd.TeamID, cmd.Players); err != nil {
			return err
		}

	case CmdGetEventLog, CmdPlayIntro:
		// No state mutation; the room handles the reply/broadcast side.

	case CmdResetEventLog:
		d.entries = d.entries[:0]

	default:
		panic(fmt.Sprintf("dispatch: unhandled command type %q", cmd.Type))
	}
	return nil
}

func rosterPlayer(snap engine.Snapshot, teamID engine.Side, number int) (engine.Player, bool) {
	var players []engine.Player
	switch teamID {
	case engine.SideHome:
		players = snap.Teams.Home.Info.Players
	case engine.SideAway:
		players = snap.Teams.Away.Info.Players
	}
	for _, p := range players {
		if p.Number == number {
			return p, true
		}
	}
	return engine.Player{}, false
}
