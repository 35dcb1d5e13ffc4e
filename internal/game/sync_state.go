package game

import (
	"github.com/google/uuid"

	"github.com/vodiniz/buracao/engine"
)

// ObfPlayerState is the public information about one seat.
type ObfPlayerState struct {
	PlayerID      uuid.UUID `json:"playerId"`
	Username      string    `json:"username"`
	Seat          int       `json:"seat"`
	Team          int       `json:"team"`
	HandSize      int       `json:"handSize"`
	Connected     bool      `json:"connected"`
	IsCurrentTurn bool      `json:"isCurrentTurn"`
}

// ObfGameState is the game state as one user may see it: their own hand, the
// public table, and counts for everyone else.
type ObfGameState struct {
	GameID  uuid.UUID          `json:"gameId"`
	RoomID  uuid.UUID          `json:"roomId"`
	Started bool               `json:"started"`
	View    *engine.PlayerView `json:"view,omitempty"`
	Players []ObfPlayerState   `json:"players"`
}

// GetCurrentObfuscatedGameState builds the state visible to forUser. Users who
// are not seated get a spectator view with no hand.
// Assumes lock is held by caller.
func (g *BuracoGame) GetCurrentObfuscatedGameState(forUser uuid.UUID) ObfGameState {
	st := ObfGameState{
		GameID:  g.ID,
		RoomID:  g.RoomID,
		Started: g.Started,
		Players: make([]ObfPlayerState, 0, engine.NumPlayers),
	}
	if g.Match != nil {
		view := g.Match.ProjectView(g.seatOf(forUser))
		st.View = &view
	}
	for seat, p := range g.Seats {
		if p == nil {
			continue
		}
		ps := ObfPlayerState{
			PlayerID:  p.ID,
			Username:  p.User.Username,
			Seat:      seat,
			Team:      engine.TeamOf(seat),
			Connected: p.Connected,
		}
		if g.Match != nil {
			ps.HandSize = len(g.Match.Hands[seat])
			ps.IsCurrentTurn = g.Match.Turn == seat && !g.Match.RoundOver
		}
		st.Players = append(st.Players, ps)
	}
	return st
}

// SyncState returns the current state for a user.
// Assumes lock is held by caller.
func (g *BuracoGame) SyncState(forUser uuid.UUID) ObfGameState {
	return g.GetCurrentObfuscatedGameState(forUser)
}

// sendSyncState sends a private state event to one player.
// Assumes lock is held by caller.
func (g *BuracoGame) sendSyncState(playerID uuid.UUID) {
	st := g.GetCurrentObfuscatedGameState(playerID)
	g.fireEventToPlayer(playerID, GameEvent{Type: EventState, State: &st})
}

// broadcastSyncStateToAll sends every connected seat its own state.
// Assumes lock is held by caller.
func (g *BuracoGame) broadcastSyncStateToAll() {
	for _, p := range g.Seats {
		if p != nil && p.Connected {
			g.sendSyncState(p.ID)
		}
	}
}
