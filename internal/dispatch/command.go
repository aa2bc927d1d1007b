package dispatch

import "github.com/tabellone/scoreboard-server/internal/engine"

type CommandType string

const (
	CmdStartClock         CommandType = "start_clock"
	CmdPauseClock         CommandType = "pause_clock"
	CmdResetClock         CommandType = "reset_clock"
	CmdSetRemainingTime   CommandType = "set_remaining_time"
	CmdSetPeriod          CommandType = "set_period"
	CmdGoal               CommandType = "goal"
	CmdUndoGoal           CommandType = "undo_goal"
	CmdPenalty            CommandType = "penalty"
	CmdTimeout            CommandType = "timeout"
	CmdResetTimeouts      CommandType = "reset_timeouts"
	CmdSetPlayerEjections CommandType = "set_player_ejections"
	CmdSetPlayerGoals     CommandType = "set_player_goals"
	CmdStartExpulsion     CommandType = "start_expulsion"
	CmdSetTeamInfo        CommandType = "set_team_info"
	CmdSetRoster          CommandType = "set_roster"
	CmdGetEventLog        CommandType = "get_event_log"
	CmdResetEventLog      CommandType = "reset_event_log"
	CmdPlayIntro          CommandType = "play_intro"
)

// Command is the decoded form of a client command message. Only the fields
// relevant to Type are populated; the wire package guarantees that the type
// tag and team side are valid before a Command is ever built.
type Command struct {
	Type         CommandType
	TeamID       engine.Side
	PlayerNumber int
	// HasPlayer reports whether a player number was supplied. It is always
	// true for player-scoped commands; for goal it marks the scorer.
	HasPlayer   bool
	Period      int
	RemainingMs int64
	Ejections   int
	Goals       int
	Info        engine.TeamInfoUpdate
	Players     []engine.Player
}
