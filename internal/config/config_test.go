package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()
	if cfg.Addr != ":4000" {
		t.Fatalf("addr=%q, want :4000", cfg.Addr)
	}
	if cfg.HeartbeatInterval != 200*time.Millisecond {
		t.Fatalf("heartbeat=%v, want 200ms", cfg.HeartbeatInterval)
	}
	if cfg.PeriodDuration != 8*time.Minute {
		t.Fatalf("period=%v, want 8m", cfg.PeriodDuration)
	}
	if cfg.ExpulsionDuration != 20*time.Second {
		t.Fatalf("expulsion=%v, want 20s", cfg.ExpulsionDuration)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("ADDR", ":9999")
	t.Setenv("HEARTBEAT_MS", "100")
	t.Setenv("PERIOD_MINUTES", "10")
	t.Setenv("EXPULSION_SECONDS", "30")

	cfg := FromEnv()
	if cfg.Addr != ":9999" {
		t.Fatalf("addr=%q", cfg.Addr)
	}
	if cfg.HeartbeatInterval != 100*time.Millisecond {
		t.Fatalf("heartbeat=%v", cfg.HeartbeatInterval)
	}
	if cfg.PeriodDuration != 10*time.Minute {
		t.Fatalf("period=%v", cfg.PeriodDuration)
	}
	if cfg.ExpulsionDuration != 30*time.Second {
		t.Fatalf("expulsion=%v", cfg.ExpulsionDuration)
	}
}

func TestFromEnvIgnoresGarbage(t *testing.T) {
	t.Setenv("HEARTBEAT_MS", "soon")
	if got := FromEnv().HeartbeatInterval; got != 200*time.Millisecond {
		t.Fatalf("heartbeat=%v, want default on unparsable value", got)
	}
}
