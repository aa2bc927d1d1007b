package engine

import "time"

// Snapshot is the fully time-resolved, read-only view of the match at one
// instant. Clients render it verbatim; all countdown values are already
// computed, so no client ever runs its own clock.
type Snapshot struct {
	Period     int                 `json:"period"`
	Clock      ClockSnapshot       `json:"clock"`
	Teams      TeamsSnapshot       `json:"teams"`
	Expulsions []ExpulsionSnapshot `json:"expulsions"`
}

type ClockSnapshot struct {
	RemainingMs      int64 `json:"remainingMs"`
	Running          bool  `json:"running"`
	PeriodDurationMs int64 `json:"periodDurationMs"`
}

type TeamsSnapshot struct {
	Home TeamSnapshot `json:"home"`
	Away TeamSnapshot `json:"away"`
}

type TeamSnapshot struct {
	Info              TeamInfo `json:"info"`
	Score             int      `json:"score"`
	TimeoutsRemaining int      `json:"timeoutsRemaining"`
}

type ExpulsionSnapshot struct {
	ID           string `json:"id"`
	TeamID       Side   `json:"teamId"`
	PlayerNumber int    `json:"playerNumber"`
	RemainingMs  int64  `json:"remainingMs"`
	Running      bool   `json:"running"`
}

// Snapshot resolves all reference values against now. Expulsions whose
// computed remaining time has reached zero are dropped here; there is no
// background sweep.
func (m *Match) Snapshot(now time.Time) Snapshot {
	m.dropExpiredExpulsions(now)

	expulsions := make([]ExpulsionSnapshot, 0, len(m.expulsions))
	for _, e := range m.expulsions {
		expulsions = append(expulsions, ExpulsionSnapshot{
			ID:           e.id,
			TeamID:       e.teamID,
			PlayerNumber: e.playerNumber,
			RemainingMs:  m.expulsionRemaining(e, now).Milliseconds(),
			Running:      e.running && m.clock.running,
		})
	}

	return Snapshot{
		Period: m.period,
		Clock: ClockSnapshot{
			RemainingMs:      m.clockRemaining(now).Milliseconds(),
			Running:          m.clock.running,
			PeriodDurationMs: m.clock.periodDuration.Milliseconds(),
		},
		Teams: TeamsSnapshot{
			Home: m.teamSnapshot(SideHome),
			Away: m.teamSnapshot(SideAway),
		},
		Expulsions: expulsions,
	}
}

func (m *Match) teamSnapshot(id Side) TeamSnapshot {
	t := m.teams[id]
	info := t.info
	info.Players = append([]Player(nil), t.info.Players...)
	return TeamSnapshot{
		Info:              info,
		Score:             t.score,
		TimeoutsRemaining: t.timeoutsRemaining,
	}
}

func (m *Match) dropExpiredExpulsions(now time.Time) {
	kept := m.expulsions[:0]
	for _, e := range m.expulsions {
		if m.expulsionRemaining(e, now) <= 0 {
			continue
		}
		kept = append(kept, e)
	}
	m.expulsions = kept
}

// PlayerName resolves a player's current name, for log entries that must
// stay accurate after later roster changes.
func (m *Match) PlayerName(teamID Side, number int) (string, bool) {
	p, err := m.player(teamID, number)
	if err != nil {
		return "", false
	}
	return p.Name, true
}
