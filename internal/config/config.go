package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds process-wide settings, all read from the environment.
type Config struct {
	HTTPAddr string

	JWTSecret string
	TokenTTL  time.Duration

	RedisURL string

	MaxPlayers      int
	DefaultDiceMode string
	AutoFinish      bool

	HostCanPause       bool
	AllowHostCloseCard bool

	LogLevel  string
	LogFormat string
}

// TokenColors is the palette token colors are assigned from, in order.
var TokenColors = []string{"red", "green", "blue", "purple", "orange", "teal"}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:           getenv("HTTP_ADDR", ":8080"),
		JWTSecret:          getenv("JWT_SECRET", ""),
		TokenTTL:           time.Duration(getenvInt("TOKEN_TTL_MINUTES", 12*60)) * time.Minute,
		RedisURL:           getenv("REDIS_URL", ""),
		MaxPlayers:         getenvInt("MAX_PLAYERS", 6),
		DefaultDiceMode:    getenv("DEFAULT_DICE_MODE", "classic"),
		AutoFinish:         getenvBool("ROOM_AUTO_FINISH", false),
		HostCanPause:       getenvBool("HOST_CAN_PAUSE", true),
		AllowHostCloseCard: getenvBool("ALLOW_HOST_CLOSE_CARD", true),
		LogLevel:           getenv("LOG_LEVEL", "info"),
		LogFormat:          getenv("LOG_FORMAT", "console"),
	}
	if cfg.JWTSecret == "" {
		return cfg, errors.New("JWT_SECRET is required")
	}
	if cfg.MaxPlayers < 2 {
		cfg.MaxPlayers = 2
	}
	return cfg, nil
}
