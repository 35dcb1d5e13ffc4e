// internal/game/game.go
package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vodiniz/buracao/engine"
	"github.com/vodiniz/buracao/internal/cache"
	"github.com/vodiniz/buracao/internal/database"
	"github.com/vodiniz/buracao/internal/models"
)

// DefaultNextRoundDelay is the pause between a round's game_over and the next deal.
const DefaultNextRoundDelay = 15 * time.Second

var (
	ErrGameFull      = errors.New("game: all four seats are taken")
	ErrGameStarted   = errors.New("game: match already in progress")
	ErrAlreadySeated = errors.New("game: player is already seated and connected")
)

// OnRoundEndFunc is called after a round is scored, with the game lock held.
type OnRoundEndFunc func(roomID uuid.UUID, result RoundResult)

// GameEventType represents the type of a game-related event sent to clients.
type GameEventType string

const (
	EventWelcome      GameEventType = "welcome"      // Private: seat and team assignment.
	EventState        GameEventType = "state"        // Private: projected view of the match.
	EventNotification GameEventType = "notification" // Private or public text message.
	EventError        GameEventType = "error"        // Private: rejected or malformed action.
	EventGameOver     GameEventType = "game_over"    // Public: round result and scores.
	EventChat         GameEventType = "chat"         // Public: chat line.
	EventRoundStart   GameEventType = "round_start"  // Public: a new round was dealt.
)

// EventUser identifies a user within a GameEvent.
type EventUser struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username,omitempty"`
	Seat     int       `json:"seat"`
}

// GameEvent is the envelope for everything the server sends over a connection.
type GameEvent struct {
	Type    GameEventType          `json:"type"`
	User    *EventUser             `json:"user,omitempty"`
	Message string                 `json:"message,omitempty"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	State   *ObfGameState          `json:"state,omitempty"`
}

// RoundResult summarizes a finished round.
type RoundResult struct {
	GameID      uuid.UUID
	Round       int
	Reason      engine.EndReason
	WentOut     int // seat, -1 when the stock ran out
	Deltas      [engine.NumTeams]int
	Scores      [engine.NumTeams]int
	WinningTeam int
	Players     []string
}

// BuracoGame is one table: four seats around an engine.Match, plus the plumbing
// that turns client actions into engine actions and engine results into events.
type BuracoGame struct {
	ID     uuid.UUID
	RoomID uuid.UUID

	Seats [engine.NumPlayers]*models.Player
	Match *engine.Match // nil until Start
	Rules engine.Ruleset
	Seed  uint64 // 0 picks a time-based seed at Start

	Started bool
	closed  bool

	NextRoundDelay time.Duration // negative disables the automatic next round
	nextRoundTimer *time.Timer

	actionIndex int
	Store       database.Store // optional round-result persistence

	Mu sync.Mutex

	BroadcastFn         func(ev GameEvent)
	BroadcastToPlayerFn func(playerID uuid.UUID, ev GameEvent)
	OnRoundEnd          OnRoundEndFunc
}

// NewBuracoGame creates an empty table for a room with the standard rules.
func NewBuracoGame(roomID uuid.UUID) *BuracoGame {
	return &BuracoGame{
		ID:             uuid.New(),
		RoomID:         roomID,
		Rules:          engine.DefaultRuleset(),
		NextRoundDelay: DefaultNextRoundDelay,
	}
}

// AddPlayer seats a player in the first free seat, or restores a returning
// player to their seat. It returns the seat index.
// Assumes lock is held by caller.
func (g *BuracoGame) AddPlayer(p *models.Player) (int, error) {
	if seat := g.seatOf(p.ID); seat >= 0 {
		existing := g.Seats[seat]
		if existing.Connected {
			return -1, ErrAlreadySeated
		}
		g.HandleReconnect(p.ID, p.Conn)
		return seat, nil
	}
	if g.Started {
		return -1, ErrGameStarted
	}
	seat := -1
	for i, s := range g.Seats {
		if s == nil {
			seat = i
			break
		}
	}
	if seat < 0 {
		return -1, ErrGameFull
	}

	p.Seat = seat
	p.Connected = true
	g.Seats[seat] = p
	log.Infof("Game %s: Player %s (%s) seated at %d.", g.ID, p.ID, p.User.Username, seat)
	g.logAction(p.ID, "player_add", map[string]interface{}{"seat": seat, "username": p.User.Username})

	g.sendWelcome(p)
	g.fireEvent(GameEvent{
		Type:    EventNotification,
		User:    g.eventUser(p),
		Message: fmt.Sprintf("%s joined (%d/%d)", p.User.Username, g.SeatedCount(), engine.NumPlayers),
	})
	return seat, nil
}

// RemovePlayer frees a seat before the match starts; afterwards the seat is kept
// and the player is only marked disconnected.
// Assumes lock is held by caller.
func (g *BuracoGame) RemovePlayer(playerID uuid.UUID) {
	seat := g.seatOf(playerID)
	if seat < 0 {
		return
	}
	if g.Started {
		g.HandleDisconnect(playerID)
		return
	}
	p := g.Seats[seat]
	g.Seats[seat] = nil
	log.Infof("Game %s: Player %s (%s) left seat %d.", g.ID, playerID, p.User.Username, seat)
	g.logAction(playerID, "player_remove", map[string]interface{}{"seat": seat})
	g.fireEvent(GameEvent{
		Type:    EventNotification,
		User:    g.eventUser(p),
		Message: fmt.Sprintf("%s left (%d/%d)", p.User.Username, g.SeatedCount(), engine.NumPlayers),
	})
}

// Start deals the first round once all four seats are filled.
// Assumes lock is held by caller.
func (g *BuracoGame) Start() error {
	if g.Started {
		return ErrGameStarted
	}
	if n := g.SeatedCount(); n < engine.NumPlayers {
		return fmt.Errorf("game: need %d players to start, have %d", engine.NumPlayers, n)
	}
	seed := g.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	g.Match = engine.NewMatch(seed, g.Rules)
	g.Match.DealRound()
	g.Started = true

	log.Infof("Game %s: Match started (seed %d).", g.ID, seed)
	g.logAction(uuid.Nil, "game_start", map[string]interface{}{"seed": seed, "players": g.usernames()})
	g.announceRound()
	return nil
}

// StartNextRound deals the next round after a finished one.
// Assumes lock is held by caller.
func (g *BuracoGame) StartNextRound() {
	if g.closed || g.Match == nil || !g.Match.RoundOver {
		return
	}
	if g.nextRoundTimer != nil {
		g.nextRoundTimer.Stop()
		g.nextRoundTimer = nil
	}
	g.Match.ResetForNextRound()
	log.Infof("Game %s: Round %d dealt, seat %d opens.", g.ID, g.Match.Round, g.Match.Turn)
	g.logAction(uuid.Nil, "round_start", map[string]interface{}{"round": g.Match.Round, "turn": g.Match.Turn})
	g.announceRound()
}

// announceRound broadcasts round_start and every seat's state.
// Assumes lock is held by caller.
func (g *BuracoGame) announceRound() {
	var opener *EventUser
	if p := g.Seats[g.Match.Turn]; p != nil {
		opener = g.eventUser(p)
	}
	g.fireEvent(GameEvent{
		Type: EventRoundStart,
		User: opener,
		Payload: map[string]interface{}{
			"round":  g.Match.Round,
			"turn":   g.Match.Turn,
			"scoreA": g.Match.Scores[0],
			"scoreB": g.Match.Scores[1],
		},
	})
	g.broadcastSyncStateToAll()
}

// EndRound publishes the outcome of the round that just finished, persists it
// and schedules the next deal.
// Assumes lock is held by caller.
func (g *BuracoGame) EndRound() {
	out := g.Match.Outcome
	if out == nil {
		log.Warnf("Game %s: EndRound called without an outcome.", g.ID)
		return
	}
	result := RoundResult{
		GameID:      g.ID,
		Round:       g.Match.Round,
		Reason:      out.Reason,
		WentOut:     out.Player,
		Deltas:      out.Deltas,
		Scores:      out.Scores,
		WinningTeam: g.Match.Winner(),
		Players:     g.usernames(),
	}
	log.Infof("Game %s: Round %d over (%s). Scores A=%d B=%d.", g.ID, result.Round, result.Reason, result.Scores[0], result.Scores[1])

	payload := map[string]interface{}{
		"round":       result.Round,
		"reason":      result.Reason.String(),
		"wentOut":     result.WentOut,
		"winningTeam": result.WinningTeam,
		"scoreA":      result.Scores[0],
		"scoreB":      result.Scores[1],
		"deltaA":      result.Deltas[0],
		"deltaB":      result.Deltas[1],
	}
	g.fireEvent(GameEvent{
		Type:    EventGameOver,
		Message: fmt.Sprintf("Round over: team %s leads %d to %d", teamName(result.WinningTeam), max(result.Scores[0], result.Scores[1]), min(result.Scores[0], result.Scores[1])),
		Payload: payload,
	})
	g.logAction(uuid.Nil, string(EventGameOver), payload)
	g.persistRoundResult(result)

	if g.OnRoundEnd != nil {
		g.OnRoundEnd(g.RoomID, result)
	}
	g.scheduleNextRound(result.Round)
}

// scheduleNextRound arms the countdown to the next deal.
// Assumes lock is held by caller.
func (g *BuracoGame) scheduleNextRound(round int) {
	if g.NextRoundDelay < 0 || g.closed {
		return
	}
	if g.nextRoundTimer != nil {
		g.nextRoundTimer.Stop()
	}
	g.fireEvent(GameEvent{
		Type:    EventNotification,
		Message: fmt.Sprintf("Next round starts in %s", g.NextRoundDelay),
	})
	g.nextRoundTimer = time.AfterFunc(g.NextRoundDelay, func() {
		go func(expectedRound int) {
			g.Mu.Lock()
			defer g.Mu.Unlock()
			if g.Match != nil && g.Match.RoundOver && g.Match.Round == expectedRound {
				g.StartNextRound()
			}
		}(round)
	})
}

// Close stops timers; later events are still delivered but no round is dealt.
// Assumes lock is held by caller.
func (g *BuracoGame) Close() {
	g.closed = true
	if g.nextRoundTimer != nil {
		g.nextRoundTimer.Stop()
		g.nextRoundTimer = nil
	}
	g.logAction(uuid.Nil, "game_close", nil)
}

// HandleDisconnect marks a player as disconnected. The seat stays reserved.
// Assumes lock is held by caller.
func (g *BuracoGame) HandleDisconnect(playerID uuid.UUID) {
	seat := g.seatOf(playerID)
	if seat < 0 {
		log.Warnf("Game %s: Disconnected player %s not found.", g.ID, playerID)
		return
	}
	p := g.Seats[seat]
	if !p.Connected {
		return
	}
	p.Connected = false
	p.Conn = nil
	log.Infof("Game %s: Player %s (%s) disconnected from seat %d.", g.ID, playerID, p.User.Username, seat)
	g.logAction(playerID, "player_disconnect", nil)

	g.fireEvent(GameEvent{
		Type:    EventNotification,
		User:    g.eventUser(p),
		Message: fmt.Sprintf("%s disconnected", p.User.Username),
	})
	g.broadcastSyncStateToAll()
}

// HandleReconnect marks a player as connected and sends them the current state.
// Assumes lock is held by caller.
func (g *BuracoGame) HandleReconnect(playerID uuid.UUID, conn *websocket.Conn) {
	seat := g.seatOf(playerID)
	if seat < 0 {
		log.Warnf("Game %s: Reconnecting player %s not found in game.", g.ID, playerID)
		if conn != nil {
			conn.Close(websocket.StatusPolicyViolation, "You are not seated at this table.")
		}
		return
	}
	p := g.Seats[seat]
	p.Connected = true
	p.Conn = conn
	log.Infof("Game %s: Player %s (%s) reconnected to seat %d.", g.ID, playerID, p.User.Username, seat)
	g.logAction(playerID, "player_reconnect", map[string]interface{}{"seat": seat})

	g.sendWelcome(p)
	g.fireEvent(GameEvent{
		Type:    EventNotification,
		User:    g.eventUser(p),
		Message: fmt.Sprintf("%s reconnected", p.User.Username),
	})
	g.broadcastSyncStateToAll()
}

// SeatedCount returns the number of occupied seats.
func (g *BuracoGame) SeatedCount() int {
	n := 0
	for _, p := range g.Seats {
		if p != nil {
			n++
		}
	}
	return n
}

// ConnectedCount returns the number of seated players with a live connection.
func (g *BuracoGame) ConnectedCount() int {
	n := 0
	for _, p := range g.Seats {
		if p != nil && p.Connected {
			n++
		}
	}
	return n
}

// PlayerBySeat returns the player at seat, or nil.
func (g *BuracoGame) PlayerBySeat(seat int) *models.Player {
	if seat < 0 || seat >= engine.NumPlayers {
		return nil
	}
	return g.Seats[seat]
}

func (g *BuracoGame) seatOf(playerID uuid.UUID) int {
	for i, p := range g.Seats {
		if p != nil && p.ID == playerID {
			return i
		}
	}
	return -1
}

func (g *BuracoGame) getPlayerByID(playerID uuid.UUID) *models.Player {
	if seat := g.seatOf(playerID); seat >= 0 {
		return g.Seats[seat]
	}
	return nil
}

func (g *BuracoGame) usernames() []string {
	names := make([]string, engine.NumPlayers)
	for i, p := range g.Seats {
		if p != nil {
			names[i] = p.User.Username
		}
	}
	return names
}

func (g *BuracoGame) eventUser(p *models.Player) *EventUser {
	return &EventUser{ID: p.ID, Username: p.User.Username, Seat: p.Seat}
}

// sendWelcome tells a player their seat and team.
// Assumes lock is held by caller.
func (g *BuracoGame) sendWelcome(p *models.Player) {
	g.fireEventToPlayer(p.ID, GameEvent{
		Type:    EventWelcome,
		User:    g.eventUser(p),
		Message: fmt.Sprintf("Welcome %s: you are seat %d, team %s", p.User.Username, p.Seat, teamName(engine.TeamOf(p.Seat))),
		Payload: map[string]interface{}{
			"gameId": g.ID,
			"roomId": g.RoomID,
			"seat":   p.Seat,
			"team":   engine.TeamOf(p.Seat),
		},
	})
}

// fireEvent broadcasts an event to all connected players via the BroadcastFn callback.
// Assumes lock is held by caller.
func (g *BuracoGame) fireEvent(ev GameEvent) {
	if g.BroadcastFn != nil {
		g.BroadcastFn(ev)
	} else {
		log.Warnf("Game %s: BroadcastFn is nil, cannot broadcast event type %s.", g.ID, ev.Type)
	}
}

// fireEventToPlayer sends an event to one connected player.
// Assumes lock is held by caller.
func (g *BuracoGame) fireEventToPlayer(playerID uuid.UUID, ev GameEvent) {
	if g.BroadcastToPlayerFn == nil {
		log.Warnf("Game %s: BroadcastToPlayerFn is nil, cannot send event type %s to player %s.", g.ID, ev.Type, playerID)
		return
	}
	if p := g.getPlayerByID(playerID); p != nil && p.Connected {
		g.BroadcastToPlayerFn(playerID, ev)
	}
}

// logAction appends an entry to the game's action log in Redis.
// Assumes lock is held by caller.
func (g *BuracoGame) logAction(actorID uuid.UUID, actionType string, payload map[string]interface{}) {
	g.actionIndex++
	if payload == nil {
		payload = make(map[string]interface{})
	}
	if cache.Rdb == nil {
		return
	}
	record := cache.GameActionRecord{
		GameID:        g.ID,
		ActionIndex:   g.actionIndex,
		ActorUserID:   actorID,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}
	go func(rec cache.GameActionRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.PublishGameAction(ctx, rec); err != nil {
			log.Errorf("Game %s: Failed publishing action %d (%s): %v", rec.GameID, rec.ActionIndex, rec.ActionType, err)
		}
	}(record)
}

// persistRoundResult stores a finished round in the configured store.
// Assumes lock is held by caller.
func (g *BuracoGame) persistRoundResult(result RoundResult) {
	if g.Store == nil {
		return
	}
	rec := database.RoundRecord{
		ID:         uuid.New(),
		GameID:     result.GameID,
		Round:      result.Round,
		Reason:     result.Reason.String(),
		WentOut:    result.WentOut,
		DeltaA:     result.Deltas[0],
		DeltaB:     result.Deltas[1],
		ScoreA:     result.Scores[0],
		ScoreB:     result.Scores[1],
		Players:    result.Players,
		FinishedAt: time.Now().UTC(),
	}
	store := g.Store
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.SaveRoundResult(ctx, rec); err != nil {
			log.Errorf("Game %s: Failed saving round %d: %v", rec.GameID, rec.Round, err)
		}
	}()
}

func teamName(team int) string {
	if team == 0 {
		return "A"
	}
	return "B"
}
