// Package models holds the identity and transport types shared by the game,
// lobby and server packages.
package models

import (
	"encoding/json"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// User is an authenticated identity. Guests get a fresh ID per token.
type User struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// Player is a user seated at a table.
type Player struct {
	ID        uuid.UUID       // Same as User.ID.
	User      *User           // Identity shown to other players.
	Seat      int             // 0..3, assigned when seated.
	Conn      *websocket.Conn // Live connection, nil while disconnected.
	Connected bool
}

// GameAction is one message sent by a client. Payload is decoded according to
// ActionType by the game package.
type GameAction struct {
	ActionType string          `json:"type"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}
