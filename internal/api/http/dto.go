package http

// CreateRoomRequest is the payload for POST /rooms.
type CreateRoomRequest struct {
	BoardType string `json:"boardType"`
	DiceMode  string `json:"diceMode"`
}

// TokenRequest is the payload for POST /auth/token.
type TokenRequest struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}
