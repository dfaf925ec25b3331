package main

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"quiz-arena/internal/store"
	"quiz-arena/internal/ws"
)

func healthHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if st != nil {
			if err := st.Ping(r.Context()); err != nil {
				errorJSON(w, http.StatusServiceUnavailable, "db_unreachable")
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func publicGamesHandler(wsServer *ws.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"games": wsServer.List()})
	}
}

func publicGameHandler(wsServer *ws.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		host, ok := wsServer.Get(chi.URLParam(r, "game_id"))
		if !ok {
			errorJSON(w, http.StatusNotFound, "game_not_found")
			return
		}
		writeJSON(w, http.StatusOK, host.State())
	}
}

func publicHistoryHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if st == nil {
			errorJSON(w, http.StatusServiceUnavailable, "no_persistence")
			return
		}
		rows, err := st.ListRecentGames(r.Context(), 50)
		if err != nil {
			errorJSON(w, http.StatusInternalServerError, "query_failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"games": rows})
	}
}

func publicHistoryGameHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if st == nil {
			errorJSON(w, http.StatusServiceUnavailable, "no_persistence")
			return
		}
		row, err := st.GetGame(r.Context(), chi.URLParam(r, "game_id"))
		if err != nil {
			errorJSON(w, http.StatusNotFound, "game_not_found")
			return
		}
		writeJSON(w, http.StatusOK, row)
	}
}

type createGameRequest struct {
	Pack    string   `json:"pack"`
	Showman string   `json:"showman"`
	Players []string `json:"players"`
	Humans  []bool   `json:"humans,omitempty"`
}

func adminCreateGameHandler(wsServer *ws.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createGameRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errorJSON(w, http.StatusBadRequest, "bad_json")
			return
		}
		if req.Pack == "" || req.Showman == "" || len(req.Players) == 0 {
			errorJSON(w, http.StatusBadRequest, "missing_fields")
			return
		}
		humans := req.Humans
		if humans == nil {
			humans = make([]bool, len(req.Players))
			for i := range humans {
				humans[i] = true
			}
		}
		id, err := wsServer.CreateGame(r.Context(), req.Pack, req.Showman, req.Players, humans)
		if err != nil {
			errorJSON(w, http.StatusBadRequest, "create_failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"game_id": id})
	}
}

func adminGameActionHandler(wsServer *ws.Server, action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "game_id")
		if action == "cancel" {
			if !wsServer.CancelGame(id) {
				errorJSON(w, http.StatusNotFound, "game_not_found")
				return
			}
			writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
			return
		}
		host, found := wsServer.Get(id)
		if !found {
			errorJSON(w, http.StatusNotFound, "game_not_found")
			return
		}
		ok := false
		switch action {
		case "start":
			ok = host.StartGame()
		case "pause":
			ok = host.Pause()
		case "resume":
			ok = host.Resume()
		case "next":
			host.Next()
			ok = true
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": ok})
	}
}
