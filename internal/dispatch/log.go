package dispatch

import "github.com/tabellone/scoreboard-server/internal/engine"

// Entry is one line of the in-memory match log. Period and clock remaining
// are captured from the snapshot taken immediately before the command was
// applied, so the entry records what the scoreboard showed at that moment.
// The player name is resolved at dispatch time because rosters may change
// later and the log has to stay historically accurate.
type Entry struct {
	ID               string      `json:"id"`
	CreatedAt        int64       `json:"createdAt"`
	Period           int         `json:"period"`
	ClockRemainingMs int64       `json:"clockRemainingMs"`
	Type             string      `json:"type"`
	TeamID           engine.Side `json:"teamId,omitempty"`
	PlayerNumber     int         `json:"playerNumber,omitempty"`
	PlayerName       string      `json:"playerName,omitempty"`
	Detail           string      `json:"detail,omitempty"`
}

const entryRemoveExpulsion = "remove_expulsion"
