package config

import (
	"os"
	"strconv"
	"time"

	"github.com/tabellone/scoreboard-server/internal/engine"
	"github.com/tabellone/scoreboard-server/internal/room"
)

type Config struct {
	Addr              string
	HeartbeatInterval time.Duration
	PeriodDuration    time.Duration
	ExpulsionDuration time.Duration
}

// FromEnv reads configuration from the environment, falling back to the
// match defaults. main loads .env beforehand.
func FromEnv() Config {
	return Config{
		Addr:              getEnv("ADDR", ":4000"),
		HeartbeatInterval: time.Duration(getEnvAsInt("HEARTBEAT_MS", int(room.DefaultHeartbeatInterval/time.Millisecond))) * time.Millisecond,
		PeriodDuration:    time.Duration(getEnvAsInt("PERIOD_MINUTES", int(engine.DefaultPeriodDuration/time.Minute))) * time.Minute,
		ExpulsionDuration: time.Duration(getEnvAsInt("EXPULSION_SECONDS", int(engine.DefaultExpulsionDuration/time.Second))) * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
