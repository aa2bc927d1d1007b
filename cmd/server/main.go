package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tabellone/scoreboard-server/internal/config"
	"github.com/tabellone/scoreboard-server/internal/dispatch"
	"github.com/tabellone/scoreboard-server/internal/engine"
	"github.com/tabellone/scoreboard-server/internal/httpapi"
	"github.com/tabellone/scoreboard-server/internal/room"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg := config.FromEnv()

	match := engine.NewMatch(engine.Options{
		PeriodDuration:    cfg.PeriodDuration,
		ExpulsionDuration: cfg.ExpulsionDuration,
	})
	disp := dispatch.New(match)

	// One room for the process lifetime; match state resets on restart by
	// design.
	rm := room.New(context.Background(), disp, clockwork.NewRealClock(), cfg.HeartbeatInterval)
	handler := httpapi.SetupRoutes(rm)

	log.Info().
		Str("addr", cfg.Addr).
		Dur("heartbeat", cfg.HeartbeatInterval).
		Dur("period", cfg.PeriodDuration).
		Msg("scoreboard server listening")

	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
