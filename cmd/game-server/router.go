package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"quiz-arena/internal/config"
	"quiz-arena/internal/store"
	"quiz-arena/internal/ws"
)

func newRouter(st *store.Store, wsServer *ws.Server, cfg config.ServerConfig) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(apiLogMiddleware()).Get("/healthz", healthHandler(st))
	r.Get("/ws", wsServer.HandleWS)

	r.Route("/api", func(r chi.Router) {
		r.Use(apiLogMiddleware())

		r.Get("/public/games", publicGamesHandler(wsServer))
		r.Get("/public/games/{game_id}", publicGameHandler(wsServer))
		r.Get("/public/history", publicHistoryHandler(st))
		r.Get("/public/history/{game_id}", publicHistoryGameHandler(st))

		r.Group(func(r chi.Router) {
			r.Use(adminAuthMiddleware(cfg.AdminAPIKey))
			r.Post("/admin/games", adminCreateGameHandler(wsServer))
			r.Get("/admin/games", publicGamesHandler(wsServer))
			r.Post("/admin/games/{game_id}/start", adminGameActionHandler(wsServer, "start"))
			r.Post("/admin/games/{game_id}/pause", adminGameActionHandler(wsServer, "pause"))
			r.Post("/admin/games/{game_id}/resume", adminGameActionHandler(wsServer, "resume"))
			r.Post("/admin/games/{game_id}/next", adminGameActionHandler(wsServer, "next"))
			r.Post("/admin/games/{game_id}/cancel", adminGameActionHandler(wsServer, "cancel"))
		})
	})

	return r
}

func adminAuthMiddleware(adminKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if adminKey == "" || !checkAdminAuth(r, adminKey) {
				errorJSON(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func checkAdminAuth(r *http.Request, adminKey string) bool {
	if v := r.Header.Get("X-Admin-Key"); v == adminKey {
		return true
	}
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && auth[:len(prefix)] == prefix {
		return auth[len(prefix):] == adminKey
	}
	return false
}
