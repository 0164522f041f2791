package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"snakes-arrows/internal/auth"
	"snakes-arrows/internal/board"
	"snakes-arrows/internal/room"
)

// CreateRoomHandler seats the caller as host of a fresh room.
func CreateRoomHandler(rm *room.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principalFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}
		var req CreateRoomRequest
		_ = c.BindJSON(&req) // both fields are optional
		r, err := rm.CreateRoom(c.Request.Context(), p.UserID, p.DisplayName,
			board.Type(req.BoardType), board.DiceMode(req.DiceMode))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create room"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"roomCode": r.Code, "room": r})
	}
}

// GetRoomHandler looks a room up by its shareable code.
func GetRoomHandler(rm *room.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		r, err := rm.GetRoomByCode(c.Request.Context(), c.Param("code"))
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, room.ErrRoomNotFound) {
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"room": r})
	}
}

// GetHistoryHandler returns a room's append-only move history.
func GetHistoryHandler(rm *room.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		r, err := rm.GetRoomByCode(c.Request.Context(), c.Param("code"))
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, room.ErrRoomNotFound) {
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"moves": r.Game.MoveHistory})
	}
}

// TokenHandler mints a credential for the given identity. Credential issuance
// proper lives outside this service; this endpoint exists for development and
// local clients.
func TokenHandler(issuer *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TokenRequest
		if err := c.BindJSON(&req); err != nil || req.UserID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "userId required"})
			return
		}
		token, err := issuer.Issue(req.UserID, req.DisplayName)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token})
	}
}
