package main

import (
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	httpapi "snakes-arrows/internal/api/http"
	"snakes-arrows/internal/api/ws"
	"snakes-arrows/internal/auth"
	"snakes-arrows/internal/config"
	"snakes-arrows/internal/logging"
	"snakes-arrows/internal/room"
	"snakes-arrows/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = log.Sync() }()

	var roomStore room.Store
	if cfg.RedisURL != "" {
		rs, err := store.NewRedisStoreFromURL(cfg.RedisURL, 0)
		if err != nil {
			log.Fatal("redis store", zap.Error(err))
		}
		roomStore = rs
		log.Info("using redis room store")
	} else {
		roomStore = store.NewMemoryStore()
		log.Info("using in-memory room store")
	}

	manager := room.NewManager(roomStore, cfg, log)
	verifier := auth.NewJWTVerifier(cfg.JWTSecret)
	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	hub := ws.NewHub(manager, verifier, log)
	r := httpapi.NewRouter(manager, hub, verifier, issuer)

	log.Info("listening", zap.String("addr", cfg.HTTPAddr))
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}
