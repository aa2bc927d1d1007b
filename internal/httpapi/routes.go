package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tabellone/scoreboard-server/internal/room"
	"github.com/tabellone/scoreboard-server/internal/ws"
)

func SetupRoutes(r *room.Room) http.Handler {
	router := chi.NewRouter()

	router.Get("/healthz", Healthz)
	router.Get("/ws", ws.Handler(r))
	router.Get("/api/snapshot", SnapshotHandler(r))
	router.Get("/api/events", EventLogHandler(r))
	return router
}
