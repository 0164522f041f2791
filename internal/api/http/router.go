package http

import (
	"github.com/gin-gonic/gin"

	"snakes-arrows/internal/api/ws"
	"snakes-arrows/internal/auth"
	"snakes-arrows/internal/room"
)

func NewRouter(rm *room.Manager, hub *ws.Hub, verifier auth.Verifier, issuer *auth.TokenIssuer) *gin.Engine {
	r := gin.Default()

	// Realtime channel; authenticates its own handshake.
	r.GET("/ws", hub.HandleWS)

	r.POST("/auth/token", TokenHandler(issuer))

	rooms := r.Group("/rooms", Auth(verifier))
	rooms.POST("", CreateRoomHandler(rm))
	rooms.GET("/:code", GetRoomHandler(rm))
	rooms.GET("/:code/history", GetHistoryHandler(rm))

	return r
}
