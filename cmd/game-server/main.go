package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"quiz-arena/internal/config"
	"quiz-arena/internal/ledger"
	"quiz-arena/internal/logging"
	"quiz-arena/internal/store"
	"quiz-arena/internal/ws"
)

func main() {
	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	logging.Init(cfg.Log)

	var st *store.Store
	if cfg.Server.PostgresDSN != "" {
		st, err = store.New(cfg.Server.PostgresDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("store init failed")
		}
		if err := st.Ping(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("db ping failed")
		}
		if err := st.EnsureSchema(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("ensure schema failed")
		}
		defer st.Close()
	} else {
		log.Warn().Msg("POSTGRES_DSN empty, running without persistence")
	}

	led := ledger.New(st)
	wsServer := ws.NewServer(st, led, cfg.Game, cfg.Server.JoinKey, cfg.Server.PackDir, log.Logger)

	r := newRouter(st, wsServer, cfg.Server)

	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	log.Info().Str("addr", cfg.Server.HTTPAddr).Msg("http listening")
	log.Fatal().Err(server.ListenAndServe()).Msg("server stopped")
}
