package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/tabellone/scoreboard-server/internal/dispatch"
	"github.com/tabellone/scoreboard-server/internal/room"
)

// SnapshotHandler serves the current time-resolved snapshot as plain JSON,
// for consumers that poll instead of holding a socket open.
func SnapshotHandler(rm *room.Room) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reply := make(chan room.View, 1)
		rm.Inbox() <- room.GetView{Reply: reply}
		view := <-reply

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(view.Snapshot)
	}
}

// EventLogHandler exports the current event log for narrative use.
func EventLogHandler(rm *room.Room) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reply := make(chan room.View, 1)
		rm.Inbox() <- room.GetView{Reply: reply}
		view := <-reply

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(struct {
			Entries []dispatch.Entry `json:"entries"`
		}{Entries: view.EventLog})
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
