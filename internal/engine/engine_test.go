package engine

import (
	"errors"
	"testing"
	"time"
)

var t0 = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

func ms(d time.Duration) int64 { return d.Milliseconds() }

func TestClockPauseFreezesElapsedTime(t *testing.T) {
	m := NewMatch(Options{})

	m.StartClock(t0)
	m.PauseClock(t0.Add(1 * time.Second))

	snap := m.Snapshot(t0.Add(10 * time.Second))
	if snap.Clock.RemainingMs != ms(DefaultPeriodDuration-1*time.Second) {
		t.Fatalf("after 1s run + pause: remaining=%d, want %d", snap.Clock.RemainingMs, ms(DefaultPeriodDuration-time.Second))
	}
	if snap.Clock.Running {
		t.Fatalf("clock should be paused")
	}
}

func TestClockResumeAccountsOnlyRunningIntervals(t *testing.T) {
	m := NewMatch(Options{})

	m.StartClock(t0)
	m.PauseClock(t0.Add(1 * time.Second))
	// A long break while paused must not leak into the countdown.
	resumeAt := t0.Add(5 * time.Minute)
	m.StartClock(resumeAt)

	snap := m.Snapshot(resumeAt.Add(2 * time.Second))
	want := ms(DefaultPeriodDuration - 3*time.Second)
	if snap.Clock.RemainingMs != want {
		t.Fatalf("remaining=%d, want %d", snap.Clock.RemainingMs, want)
	}
	if !snap.Clock.Running {
		t.Fatalf("clock should be running")
	}
}

func TestClockFloorsAtZero(t *testing.T) {
	m := NewMatch(Options{PeriodDuration: 2 * time.Second})
	m.StartClock(t0)

	snap := m.Snapshot(t0.Add(1 * time.Minute))
	if snap.Clock.RemainingMs != 0 {
		t.Fatalf("remaining=%d, want 0", snap.Clock.RemainingMs)
	}
}

func TestStartClockWhileRunningIsNoOp(t *testing.T) {
	m := NewMatch(Options{})
	m.StartClock(t0)
	// A second start must not rebase the stamp.
	m.StartClock(t0.Add(3 * time.Second))

	snap := m.Snapshot(t0.Add(5 * time.Second))
	if snap.Clock.RemainingMs != ms(DefaultPeriodDuration-5*time.Second) {
		t.Fatalf("remaining=%d, want %d", snap.Clock.RemainingMs, ms(DefaultPeriodDuration-5*time.Second))
	}
}

func TestResetClockClearsEverything(t *testing.T) {
	m := NewMatch(Options{})
	m.StartClock(t0)
	if err := m.StartExpulsion(SideHome, 7, t0.Add(time.Second)); err != nil {
		t.Fatalf("start expulsion: %v", err)
	}

	m.ResetClock()

	snap := m.Snapshot(t0.Add(2 * time.Second))
	if snap.Clock.RemainingMs != ms(DefaultPeriodDuration) {
		t.Fatalf("remaining=%d, want full period", snap.Clock.RemainingMs)
	}
	if snap.Clock.Running {
		t.Fatalf("clock should be stopped after reset")
	}
	if len(snap.Expulsions) != 0 {
		t.Fatalf("expected no expulsions after reset, got %+v", snap.Expulsions)
	}
}

func TestSetPeriod(t *testing.T) {
	cases := []struct {
		name    string
		period  int
		wantErr bool
	}{
		{name: "period 1", period: 1},
		{name: "period 4", period: 4},
		{name: "period 0 rejected", period: 0, wantErr: true},
		{name: "period 5 rejected", period: 5, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := NewMatch(Options{})
			m.StartClock(t0)

			err := m.SetPeriod(tc.period)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidArgument) {
					t.Fatalf("want ErrInvalidArgument, got %v", err)
				}
				// Failed command leaves the clock untouched.
				if snap := m.Snapshot(t0); !snap.Clock.Running {
					t.Fatalf("clock should still be running after rejected set_period")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			snap := m.Snapshot(t0.Add(time.Second))
			if snap.Period != tc.period {
				t.Fatalf("period=%d, want %d", snap.Period, tc.period)
			}
			if snap.Clock.Running || snap.Clock.RemainingMs != ms(DefaultPeriodDuration) {
				t.Fatalf("set_period must fully reset the clock, got %+v", snap.Clock)
			}
		})
	}
}

func TestExpulsionOnlyAdvancesWhileMatchClockRuns(t *testing.T) {
	m := NewMatch(Options{})

	// Run 1s, pause, start expulsion, resume, run 5s.
	m.StartClock(t0)
	m.PauseClock(t0.Add(1 * time.Second))
	if got := m.Snapshot(t0.Add(1 * time.Second)).Clock.RemainingMs; got != ms(DefaultPeriodDuration-time.Second) {
		t.Fatalf("clock remaining=%d, want %d", got, ms(DefaultPeriodDuration-time.Second))
	}

	if err := m.StartExpulsion(SideHome, 7, t0.Add(2*time.Second)); err != nil {
		t.Fatalf("start expulsion: %v", err)
	}
	// Created while paused: frozen at the full duration.
	if got := m.Snapshot(t0.Add(3 * time.Second)).Expulsions[0]; got.RemainingMs != ms(DefaultExpulsionDuration) || got.Running {
		t.Fatalf("expulsion while paused: %+v", got)
	}

	resumeAt := t0.Add(10 * time.Second)
	m.StartClock(resumeAt)
	snap := m.Snapshot(resumeAt.Add(5 * time.Second))
	if len(snap.Expulsions) != 1 {
		t.Fatalf("want 1 expulsion, got %d", len(snap.Expulsions))
	}
	if snap.Expulsions[0].RemainingMs != ms(15*time.Second) {
		t.Fatalf("expulsion remaining=%d, want 15000", snap.Expulsions[0].RemainingMs)
	}
	if !snap.Expulsions[0].Running {
		t.Fatalf("expulsion should be running with the clock")
	}

	m.PauseClock(resumeAt.Add(5 * time.Second))
	m.ResetClock()
	if snap := m.Snapshot(resumeAt.Add(6 * time.Second)); len(snap.Expulsions) != 0 {
		t.Fatalf("reset must clear expulsions, got %+v", snap.Expulsions)
	}
}

func TestExpulsionPauseRoundTripCountsOnlyRunningTime(t *testing.T) {
	m := NewMatch(Options{})
	m.StartClock(t0)
	if err := m.StartExpulsion(SideAway, 4, t0); err != nil {
		t.Fatalf("start expulsion: %v", err)
	}

	m.PauseClock(t0.Add(8 * time.Second))
	// Frozen exactly at 12s no matter how long the break lasts.
	if got := m.Snapshot(t0.Add(2 * time.Minute)).Expulsions[0].RemainingMs; got != ms(12*time.Second) {
		t.Fatalf("frozen remaining=%d, want 12000", got)
	}

	resumeAt := t0.Add(3 * time.Minute)
	m.StartClock(resumeAt)
	if got := m.Snapshot(resumeAt.Add(2 * time.Second)).Expulsions[0].RemainingMs; got != ms(10*time.Second) {
		t.Fatalf("remaining after resume=%d, want 10000", got)
	}
}

func TestDuplicateExpulsionConflicts(t *testing.T) {
	m := NewMatch(Options{})

	if err := m.StartExpulsion(SideHome, 7, t0); err != nil {
		t.Fatalf("first expulsion: %v", err)
	}
	err := m.StartExpulsion(SideHome, 7, t0.Add(time.Second))
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("want ErrConflict, got %v", err)
	}
	if got := len(m.Snapshot(t0.Add(time.Second)).Expulsions); got != 1 {
		t.Fatalf("want exactly 1 expulsion, got %d", got)
	}

	// Same number on the other side is a different pair.
	if err := m.StartExpulsion(SideAway, 7, t0.Add(time.Second)); err != nil {
		t.Fatalf("other side should not conflict: %v", err)
	}
}

func TestExpulsionExpiresLazilyOnSnapshot(t *testing.T) {
	m := NewMatch(Options{})
	m.StartClock(t0)
	if err := m.StartExpulsion(SideHome, 11, t0); err != nil {
		t.Fatalf("start expulsion: %v", err)
	}

	if got := len(m.Snapshot(t0.Add(19 * time.Second)).Expulsions); got != 1 {
		t.Fatalf("still active at 19s, got %d entries", got)
	}
	if got := len(m.Snapshot(t0.Add(21 * time.Second)).Expulsions); got != 0 {
		t.Fatalf("expired at 21s, got %d entries", got)
	}
	// Dropped for good: the pair is free again.
	if err := m.StartExpulsion(SideHome, 11, t0.Add(22*time.Second)); err != nil {
		t.Fatalf("restart after expiry: %v", err)
	}
}

func TestResumeSkipsExhaustedExpulsions(t *testing.T) {
	m := NewMatch(Options{ExpulsionDuration: 5 * time.Second})
	m.StartClock(t0)
	if err := m.StartExpulsion(SideHome, 2, t0); err != nil {
		t.Fatalf("start expulsion: %v", err)
	}
	// Pause exactly at exhaustion; the frozen remaining is 0.
	m.PauseClock(t0.Add(5 * time.Second))
	m.StartClock(t0.Add(10 * time.Second))

	if got := len(m.Snapshot(t0.Add(10 * time.Second)).Expulsions); got != 0 {
		t.Fatalf("exhausted expulsion must not resume, got %d entries", got)
	}
}

func TestRegisterTimeout(t *testing.T) {
	m := NewMatch(Options{})
	m.StartClock(t0)

	for i := 0; i < 3; i++ {
		if err := m.RegisterTimeout(SideHome, t0.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("timeout %d: %v", i+1, err)
		}
	}
	snap := m.Snapshot(t0.Add(3 * time.Second))
	if snap.Teams.Home.TimeoutsRemaining != 0 {
		t.Fatalf("timeouts remaining=%d, want 0", snap.Teams.Home.TimeoutsRemaining)
	}
	if snap.Clock.Running {
		t.Fatalf("timeout must pause the clock")
	}
	if snap.Teams.Away.TimeoutsRemaining != 3 {
		t.Fatalf("away timeouts untouched, got %d", snap.Teams.Away.TimeoutsRemaining)
	}

	err := m.RegisterTimeout(SideHome, t0.Add(4*time.Second))
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("want ErrConflict on exhausted timeouts, got %v", err)
	}
	if got := m.Snapshot(t0.Add(4 * time.Second)).Teams.Home.TimeoutsRemaining; got != 0 {
		t.Fatalf("failed timeout must not change the counter, got %d", got)
	}

	m.ResetTimeouts()
	snap = m.Snapshot(t0.Add(5 * time.Second))
	if snap.Teams.Home.TimeoutsRemaining != 3 || snap.Teams.Away.TimeoutsRemaining != 3 {
		t.Fatalf("reset timeouts: %+v", snap.Teams)
	}
}

func TestScores(t *testing.T) {
	m := NewMatch(Options{})

	if err := m.AddGoal(Side("neutral")); !errors.Is(err, ErrUnknownTeam) {
		t.Fatalf("want ErrUnknownTeam, got %v", err)
	}

	_ = m.AddGoal(SideHome)
	_ = m.AddGoal(SideHome)
	_ = m.UndoGoal(SideHome)
	if got := m.Snapshot(t0).Teams.Home.Score; got != 1 {
		t.Fatalf("score=%d, want 1", got)
	}

	// Undo below zero clamps.
	_ = m.UndoGoal(SideAway)
	if got := m.Snapshot(t0).Teams.Away.Score; got != 0 {
		t.Fatalf("score=%d, want 0 (clamped)", got)
	}
}

func TestSetRoster(t *testing.T) {
	sixteen := make([]Player, 16)
	for i := range sixteen {
		sixteen[i] = Player{Number: i + 1, Name: "P"}
	}

	cases := []struct {
		name    string
		players []Player
		wantErr bool
	}{
		{name: "full roster of 15", players: sixteen[:15]},
		{name: "16 players rejected", players: sixteen, wantErr: true},
		{name: "duplicate numbers rejected", players: []Player{{Number: 7, Name: "A"}, {Number: 7, Name: "B"}}, wantErr: true},
		{name: "zero number rejected", players: []Player{{Number: 0, Name: "A"}}, wantErr: true},
		{name: "empty name rejected", players: []Player{{Number: 1, Name: ""}}, wantErr: true},
		{name: "ejections out of range rejected", players: []Player{{Number: 1, Name: "A", Ejections: 4}}, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := NewMatch(Options{})
			if err := m.SetRoster(SideHome, []Player{{Number: 99, Name: "Keeper"}}); err != nil {
				t.Fatalf("seed roster: %v", err)
			}

			err := m.SetRoster(SideHome, tc.players)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidArgument) {
					t.Fatalf("want ErrInvalidArgument, got %v", err)
				}
				// Rejected roster leaves the previous one in place.
				got := m.Snapshot(t0).Teams.Home.Info.Players
				if len(got) != 1 || got[0].Number != 99 {
					t.Fatalf("roster changed after rejected set: %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if got := m.Snapshot(t0).Teams.Home.Info.Players; len(got) != len(tc.players) {
				t.Fatalf("roster size=%d, want %d", len(got), len(tc.players))
			}
		})
	}
}

func TestPlayerCounters(t *testing.T) {
	m := NewMatch(Options{})
	if err := m.SetRoster(SideHome, []Player{{Number: 7, Name: "Rossi"}}); err != nil {
		t.Fatalf("seed roster: %v", err)
	}

	if err := m.SetPlayerEjections(SideHome, 7, 4); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument, got %v", err)
	}
	if err := m.SetPlayerEjections(SideHome, 99, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if err := m.SetPlayerGoals(SideHome, 7, -1); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument, got %v", err)
	}

	if err := m.SetPlayerEjections(SideHome, 7, 2); err != nil {
		t.Fatalf("set ejections: %v", err)
	}
	if err := m.SetPlayerGoals(SideHome, 7, 5); err != nil {
		t.Fatalf("set goals: %v", err)
	}
	p := m.Snapshot(t0).Teams.Home.Info.Players[0]
	if p.Ejections != 2 || p.Goals != 5 {
		t.Fatalf("player counters: %+v", p)
	}
	// Personal tally never feeds the team score.
	if got := m.Snapshot(t0).Teams.Home.Score; got != 0 {
		t.Fatalf("team score=%d, want 0", got)
	}
}

func TestUpdateTeamInfoMergesPartially(t *testing.T) {
	m := NewMatch(Options{})
	name := "Pallanuoto Trieste"
	coach := "Bianchi"
	if err := m.UpdateTeamInfo(SideHome, TeamInfoUpdate{Name: &name, CoachName: &coach}); err != nil {
		t.Fatalf("update: %v", err)
	}
	logo := "https://example.org/logo.png"
	if err := m.UpdateTeamInfo(SideHome, TeamInfoUpdate{LogoURL: &logo}); err != nil {
		t.Fatalf("update: %v", err)
	}

	info := m.Snapshot(t0).Teams.Home.Info
	if info.Name != name || info.CoachName != coach || info.LogoURL != logo {
		t.Fatalf("merged info: %+v", info)
	}
	if info.ID != SideHome {
		t.Fatalf("team id must be immutable, got %q", info.ID)
	}
}

func TestSetRemainingTime(t *testing.T) {
	m := NewMatch(Options{})
	m.SetRemainingTime(-5*time.Second, t0)
	if got := m.Snapshot(t0).Clock.RemainingMs; got != 0 {
		t.Fatalf("negative override must clamp to 0, got %d", got)
	}

	m.SetRemainingTime(90*time.Second, t0)
	m.StartClock(t0)
	// Override while running rebases the stamp: clients see the new value.
	m.SetRemainingTime(60*time.Second, t0.Add(10*time.Second))
	snap := m.Snapshot(t0.Add(12 * time.Second))
	if snap.Clock.RemainingMs != ms(58*time.Second) {
		t.Fatalf("remaining=%d, want 58000", snap.Clock.RemainingMs)
	}
	if !snap.Clock.Running {
		t.Fatalf("override must not change the running state")
	}
}

func TestDefaults(t *testing.T) {
	snap := NewMatch(Options{}).Snapshot(t0)
	if snap.Period != 1 {
		t.Fatalf("period=%d, want 1", snap.Period)
	}
	if snap.Clock.PeriodDurationMs != ms(8*time.Minute) || snap.Clock.RemainingMs != ms(8*time.Minute) {
		t.Fatalf("clock defaults: %+v", snap.Clock)
	}
	if snap.Teams.Home.Info.Name != "Casa" || snap.Teams.Away.Info.Name != "Ospiti" {
		t.Fatalf("default names: %q / %q", snap.Teams.Home.Info.Name, snap.Teams.Away.Info.Name)
	}
	if snap.Teams.Home.TimeoutsRemaining != 3 || snap.Teams.Away.TimeoutsRemaining != 3 {
		t.Fatalf("default timeouts: %+v", snap.Teams)
	}
	if snap.Expulsions == nil || len(snap.Expulsions) != 0 {
		t.Fatalf("expulsions should start empty, got %+v", snap.Expulsions)
	}
}
