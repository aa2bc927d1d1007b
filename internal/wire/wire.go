// Package wire defines the JSON messages exchanged with clients. Both
// directions use a {"type": ..., "payload": {...}} envelope.
package wire

import (
	"encoding/json"
	"fmt"

	"github.com/tabellone/scoreboard-server/internal/dispatch"
	"github.com/tabellone/scoreboard-server/internal/engine"
)

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type teamPayload struct {
	TeamID string `json:"teamId"`
}

type goalPayload struct {
	TeamID       string `json:"teamId"`
	PlayerNumber *int   `json:"playerNumber"`
}

type playerPayload struct {
	TeamID       string `json:"teamId"`
	PlayerNumber int    `json:"playerNumber"`
}

type ejectionsPayload struct {
	TeamID       string `json:"teamId"`
	PlayerNumber int    `json:"playerNumber"`
	Ejections    int    `json:"ejections"`
}

type goalsPayload struct {
	TeamID       string `json:"teamId"`
	PlayerNumber int    `json:"playerNumber"`
	Goals        int    `json:"goals"`
}

type periodPayload struct {
	Period int `json:"period"`
}

type remainingPayload struct {
	RemainingMs int64 `json:"remainingMs"`
}

type teamInfoPayload struct {
	TeamID    string  `json:"teamId"`
	Name      *string `json:"name"`
	LogoURL   *string `json:"logoUrl"`
	CoachName *string `json:"coachName"`
}

type rosterPayload struct {
	TeamID  string          `json:"teamId"`
	Players []engine.Player `json:"players"`
}

// DecodeCommand parses a raw client message into a dispatch command. Every
// error it returns is safe to echo back to the client verbatim.
func DecodeCommand(data []byte) (dispatch.Command, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return dispatch.Command{}, fmt.Errorf("malformed message: %v", err)
	}

	cmd := dispatch.Command{Type: dispatch.CommandType(env.Type)}

	switch cmd.Type {
	case dispatch.CmdStartClock, dispatch.CmdPauseClock, dispatch.CmdResetClock,
		dispatch.CmdResetTimeouts, dispatch.CmdGetEventLog, dispatch.CmdResetEventLog,
		dispatch.CmdPlayIntro:
		// No payload.

	case dispatch.CmdSetPeriod:
		var p periodPayload
		if err := unmarshalPayload(env.Payload, &p); err != nil {
			return dispatch.Command{}, err
		}
		cmd.Period = p.Period

	case dispatch.CmdSetRemainingTime:
		var p remainingPayload
		if err := unmarshalPayload(env.Payload, &p); err != nil {
			return dispatch.Command{}, err
		}
		cmd.RemainingMs = p.RemainingMs

	case dispatch.CmdGoal:
		var p goalPayload
		if err := unmarshalPayload(env.Payload, &p); err != nil {
			return dispatch.Command{}, err
		}
		side, err := parseSide(p.TeamID)
		if err != nil {
			return dispatch.Command{}, err
		}
		cmd.TeamID = side
		if p.PlayerNumber != nil {
			cmd.PlayerNumber = *p.PlayerNumber
			cmd.HasPlayer = true
		}

	case dispatch.CmdUndoGoal, dispatch.CmdTimeout:
		var p teamPayload
		if err := unmarshalPayload(env.Payload, &p); err != nil {
			return dispatch.Command{}, err
		}
		side, err := parseSide(p.TeamID)
		if err != nil {
			return dispatch.Command{}, err
		}
		cmd.TeamID = side

	case dispatch.CmdPenalty, dispatch.CmdStartExpulsion:
		var p playerPayload
		if err := unmarshalPayload(env.Payload, &p); err != nil {
			return dispatch.Command{}, err
		}
		side, err := parseSide(p.TeamID)
		if err != nil {
			return dispatch.Command{}, err
		}
		cmd.TeamID = side
		cmd.PlayerNumber = p.PlayerNumber
		cmd.HasPlayer = true

	case dispatch.CmdSetPlayerEjections:
		var p ejectionsPayload
		if err := unmarshalPayload(env.Payload, &p); err != nil {
			return dispatch.Command{}, err
		}
		side, err := parseSide(p.TeamID)
		if err != nil {
			return dispatch.Command{}, err
		}
		cmd.TeamID = side
		cmd.PlayerNumber = p.PlayerNumber
		cmd.HasPlayer = true
		cmd.Ejections = p.Ejections

	case dispatch.CmdSetPlayerGoals:
		var p goalsPayload
		if err := unmarshalPayload(env.Payload, &p); err != nil {
			return dispatch.Command{}, err
		}
		side, err := parseSide(p.TeamID)
		if err != nil {
			return dispatch.Command{}, err
		}
		cmd.TeamID = side
		cmd.PlayerNumber = p.PlayerNumber
		cmd.HasPlayer = true
		cmd.Goals = p.Goals

	case dispatch.CmdSetTeamInfo:
		var p teamInfoPayload
		if err := unmarshalPayload(env.Payload, &p); err != nil {
			return dispatch.Command{}, err
		}
		side, err := parseSide(p.TeamID)
		if err != nil {
			return dispatch.Command{}, err
		}
		cmd.TeamID = side
		cmd.Info = engine.TeamInfoUpdate{Name: p.Name, LogoURL: p.LogoURL, CoachName: p.CoachName}

	case dispatch.CmdSetRoster:
		var p rosterPayload
		if err := unmarshalPayload(env.Payload, &p); err != nil {
			return dispatch.Command{}, err
		}
		side, err := parseSide(p.TeamID)
		if err != nil {
			return dispatch.Command{}, err
		}
		cmd.TeamID = side
		cmd.Players = p.Players

	default:
		return dispatch.Command{}, fmt.Errorf("unknown command type %q", env.Type)
	}

	return cmd, nil
}

func unmarshalPayload(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return fmt.Errorf("missing payload")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("malformed payload: %v", err)
	}
	return nil
}

func parseSide(v string) (engine.Side, error) {
	side, ok := engine.ParseSide(v)
	if !ok {
		return "", fmt.Errorf("unknown team %q", v)
	}
	return side, nil
}
