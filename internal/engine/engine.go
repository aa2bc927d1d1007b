package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Error categories. Operations wrap these with detail; callers match with
// errors.Is and surface the message to the issuing client only.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnknownTeam     = errors.New("unknown team")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
)

type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
)

func ParseSide(v string) (Side, bool) {
	switch v {
	case "home":
		return SideHome, true
	case "away":
		return SideAway, true
	default:
		return "", false
	}
}

type Player struct {
	Number    int    `json:"number"`
	Name      string `json:"name"`
	Goals     int    `json:"goals"`
	Ejections int    `json:"ejections"`
}

type TeamInfo struct {
	ID        Side     `json:"id"`
	Name      string   `json:"name"`
	LogoURL   string   `json:"logoUrl,omitempty"`
	CoachName string   `json:"coachName,omitempty"`
	Players   []Player `json:"players"`
}

// TeamInfoUpdate is a partial update; nil fields are left untouched.
// The team id is immutable.
type TeamInfoUpdate struct {
	Name      *string
	LogoURL   *string
	CoachName *string
}

const (
	DefaultPeriodDuration    = 8 * time.Minute
	DefaultExpulsionDuration = 20 * time.Second

	maxPeriod       = 4
	maxRosterSize   = 15
	maxEjections    = 3
	timeoutsPerTeam = 3
)

type clockState struct {
	// remaining is the reference value frozen at the last start/pause/reset
	// boundary. While running, true remaining = remaining - (now - startedAt).
	remaining      time.Duration
	running        bool
	startedAt      time.Time
	periodDuration time.Duration
}

type expulsion struct {
	id           string
	teamID       Side
	playerNumber int
	// remaining is a reference value with the same semantics as the match
	// clock, except it only advances while the match clock is also running.
	remaining time.Duration
	startedAt time.Time
	running   bool
}

type team struct {
	info              TeamInfo
	score             int
	timeoutsRemaining int
}

// Match owns the authoritative state of one live match. It runs no timers:
// every operation takes an explicit wall-clock reading and remaining times
// are recomputed from stored reference values on demand.
//
// Match is not safe for concurrent use; the room serializes access to it.
type Match struct {
	period            int
	clock             clockState
	teams             map[Side]*team
	expulsions        []*expulsion
	expulsionDuration time.Duration
}

type Options struct {
	PeriodDuration    time.Duration
	ExpulsionDuration time.Duration
}

func NewMatch(opts Options) *Match {
	if opts.PeriodDuration <= 0 {
		opts.PeriodDuration = DefaultPeriodDuration
	}
	if opts.ExpulsionDuration <= 0 {
		opts.ExpulsionDuration = DefaultExpulsionDuration
	}
	return &Match{
		period: 1,
		clock: clockState{
			remaining:      opts.PeriodDuration,
			periodDuration: opts.PeriodDuration,
		},
		teams: map[Side]*team{
			SideHome: {info: TeamInfo{ID: SideHome, Name: "Casa", Players: []Player{}}, timeoutsRemaining: timeoutsPerTeam},
			SideAway: {info: TeamInfo{ID: SideAway, Name: "Ospiti", Players: []Player{}}, timeoutsRemaining: timeoutsPerTeam},
		},
		expulsionDuration: opts.ExpulsionDuration,
	}
}

func (m *Match) team(id Side) (*team, error) {
	t := m.teams[id]
	if t == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTeam, id)
	}
	return t, nil
}

// StartClock marks the clock running and resumes every expulsion whose
// frozen remaining time is still positive. No-op if already running.
func (m *Match) StartClock(now time.Time) {
	if m.clock.running {
		return
	}
	m.clock.running = true
	m.clock.startedAt = now
	for _, e := range m.expulsions {
		if e.remaining <= 0 {
			e.running = false
			e.startedAt = time.Time{}
			continue
		}
		e.running = true
		e.startedAt = now
	}
}

// PauseClock freezes the reference remaining time of the clock and of every
// running expulsion at this instant. No-op if already paused.
func (m *Match) PauseClock(now time.Time) {
	if !m.clock.running {
		return
	}
	m.clock.remaining = m.clockRemaining(now)
	m.clock.running = false
	m.clock.startedAt = time.Time{}
	for _, e := range m.expulsions {
		if e.running && !e.startedAt.IsZero() {
			e.remaining = max(0, e.remaining-now.Sub(e.startedAt))
		}
		e.running = false
		e.startedAt = time.Time{}
	}
}

// ResetClock restores the full period duration, stops the clock and ends
// every active expulsion.
func (m *Match) ResetClock() {
	m.clock.remaining = m.clock.periodDuration
	m.clock.running = false
	m.clock.startedAt = time.Time{}
	m.expulsions = nil
}

func (m *Match) SetPeriod(p int) error {
	if p < 1 || p > maxPeriod {
		return fmt.Errorf("%w: period %d out of range [1,%d]", ErrInvalidArgument, p, maxPeriod)
	}
	m.period = p
	m.ResetClock()
	return nil
}

func (m *Match) AddGoal(teamID Side) error {
	t, err := m.team(teamID)
	if err != nil {
		return err
	}
	t.score++
	return nil
}

// UndoGoal decrements the team score, clamped at zero.
func (m *Match) UndoGoal(teamID Side) error {
	t, err := m.team(teamID)
	if err != nil {
		return err
	}
	if t.score > 0 {
		t.score--
	}
	return nil
}

// RegisterTimeout spends one of the side's timeouts and pauses the clock.
func (m *Match) RegisterTimeout(teamID Side, now time.Time) error {
	t, err := m.team(teamID)
	if err != nil {
		return err
	}
	if t.timeoutsRemaining <= 0 {
		return fmt.Errorf("%w: no timeouts remaining for %s", ErrConflict, teamID)
	}
	t.timeoutsRemaining--
	m.PauseClock(now)
	return nil
}

func (m *Match) ResetTimeouts() {
	for _, t := range m.teams {
		t.timeoutsRemaining = timeoutsPerTeam
	}
}

func (m *Match) UpdateTeamInfo(teamID Side, upd TeamInfoUpdate) error {
	t, err := m.team(teamID)
	if err != nil {
		return err
	}
	if upd.Name != nil {
		t.info.Name = *upd.Name
	}
	if upd.LogoURL != nil {
		t.info.LogoURL = *upd.LogoURL
	}
	if upd.CoachName != nil {
		t.info.CoachName = *upd.CoachName
	}
	return nil
}

// SetRoster replaces the team's player list wholesale. Prior per-player
// counters are not carried over; callers resend them if they want to.
func (m *Match) SetRoster(teamID Side, players []Player) error {
	t, err := m.team(teamID)
	if err != nil {
		return err
	}
	if len(players) > maxRosterSize {
		return fmt.Errorf("%w: roster of %d exceeds %d players", ErrInvalidArgument, len(players), maxRosterSize)
	}
	seen := make(map[int]bool, len(players))
	for _, p := range players {
		if p.Number <= 0 {
			return fmt.Errorf("%w: player number %d must be positive", ErrInvalidArgument, p.Number)
		}
		if seen[p.Number] {
			return fmt.Errorf("%w: duplicate player number %d", ErrInvalidArgument, p.Number)
		}
		seen[p.Number] = true
		if p.Name == "" {
			return fmt.Errorf("%w: player %d has empty name", ErrInvalidArgument, p.Number)
		}
		if p.Goals < 0 {
			return fmt.Errorf("%w: player %d has negative goals", ErrInvalidArgument, p.Number)
		}
		if p.Ejections < 0 || p.Ejections > maxEjections {
			return fmt.Errorf("%w: player %d ejections %d out of range [0,%d]", ErrInvalidArgument, p.Number, p.Ejections, maxEjections)
		}
	}
	t.info.Players = append([]Player(nil), players...)
	return nil
}

// StartExpulsion opens a timed suspension for (teamID, playerNumber). The
// timer only advances while the match clock runs, so when the clock is
// paused the entry is created frozen at the full duration.
func (m *Match) StartExpulsion(teamID Side, playerNumber int, now time.Time) error {
	if _, err := m.team(teamID); err != nil {
		return err
	}
	for _, e := range m.expulsions {
		if e.teamID == teamID && e.playerNumber == playerNumber {
			return fmt.Errorf("%w: expulsion already active for %s player %d", ErrConflict, teamID, playerNumber)
		}
	}
	e := &expulsion{
		id:           uuid.NewString(),
		teamID:       teamID,
		playerNumber: playerNumber,
		remaining:    m.expulsionDuration,
		running:      m.clock.running,
	}
	if m.clock.running {
		e.startedAt = now
	}
	m.expulsions = append(m.expulsions, e)
	return nil
}

// SetPlayerEjections overwrites a player's ejection counter. It does not
// touch the expulsion-timer set; the dispatcher coordinates the two.
func (m *Match) SetPlayerEjections(teamID Side, playerNumber, count int) error {
	if count < 0 || count > maxEjections {
		return fmt.Errorf("%w: ejections %d out of range [0,%d]", ErrInvalidArgument, count, maxEjections)
	}
	p, err := m.player(teamID, playerNumber)
	if err != nil {
		return err
	}
	p.Ejections = count
	return nil
}

// SetPlayerGoals overwrites a player's personal goal tally. The team score
// is an independent counter and is not adjusted.
func (m *Match) SetPlayerGoals(teamID Side, playerNumber, goals int) error {
	if goals < 0 {
		return fmt.Errorf("%w: goals %d must be non-negative", ErrInvalidArgument, goals)
	}
	p, err := m.player(teamID, playerNumber)
	if err != nil {
		return err
	}
	p.Goals = goals
	return nil
}

// SetRemainingTime overrides the clock's reference value, clamped at zero.
// The running state is unchanged; if the clock is running the stamp is
// rebased so the override is exactly what clients see from this instant.
func (m *Match) SetRemainingTime(remaining time.Duration, now time.Time) {
	if remaining < 0 {
		remaining = 0
	}
	m.clock.remaining = remaining
	if m.clock.running {
		m.clock.startedAt = now
	}
}

func (m *Match) player(teamID Side, number int) (*Player, error) {
	t, err := m.team(teamID)
	if err != nil {
		return nil, err
	}
	for i := range t.info.Players {
		if t.info.Players[i].Number == number {
			return &t.info.Players[i], nil
		}
	}
	return nil, fmt.Errorf("%w: no player %d on %s roster", ErrNotFound, number, teamID)
}

func (m *Match) clockRemaining(now time.Time) time.Duration {
	if !m.clock.running || m.clock.startedAt.IsZero() {
		return m.clock.remaining
	}
	return max(0, m.clock.remaining-now.Sub(m.clock.startedAt))
}

func (m *Match) expulsionRemaining(e *expulsion, now time.Time) time.Duration {
	if !e.running || e.startedAt.IsZero() || !m.clock.running {
		return e.remaining
	}
	return max(0, e.remaining-now.Sub(e.startedAt))
}
