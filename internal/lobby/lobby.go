// Package lobby keeps the set of open rooms and seats users at their tables.
package lobby

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/vodiniz/buracao/engine"
	"github.com/vodiniz/buracao/internal/database"
	"github.com/vodiniz/buracao/internal/game"
	"github.com/vodiniz/buracao/internal/models"
)

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomFull        = errors.New("room is full")
	ErrAlreadySeated   = errors.New("already seated in this room")
	ErrBadPassword     = errors.New("wrong room password")
	ErrInvalidName     = errors.New("room name must be 1 to 40 characters")
	ErrMatchInProgress = errors.New("match already in progress")
)

// Config holds what every new room inherits.
type Config struct {
	Rules          engine.Ruleset
	NextRoundDelay time.Duration
	Store          database.Store
}

// RoomSummary is the public listing of a room.
type RoomSummary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Private   bool      `json:"private"`
	Players   []string  `json:"players"`
	Seated    int       `json:"seated"`
	Started   bool      `json:"started"`
	GameID    uuid.UUID `json:"gameId"`
	Round     int       `json:"round"`
	CreatedAt time.Time `json:"createdAt"`
}

// Lobby manages all rooms.
type Lobby struct {
	mu     sync.RWMutex
	rooms  map[uuid.UUID]*Room
	config Config
}

// New creates an empty lobby.
func New(cfg Config) *Lobby {
	if cfg.Rules == (engine.Ruleset{}) {
		cfg.Rules = engine.DefaultRuleset()
	}
	return &Lobby{
		rooms:  make(map[uuid.UUID]*Room),
		config: cfg,
	}
}

// CreateRoom opens a room. An empty password makes it public.
func (l *Lobby) CreateRoom(name, password string) (*Room, error) {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n == 0 || n > 40 {
		return nil, ErrInvalidName
	}
	var hash []byte
	if password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash room password: %w", err)
		}
		hash = h
	}

	r := newRoom(name, hash)
	r.Game.Rules = l.config.Rules
	r.Game.NextRoundDelay = l.config.NextRoundDelay
	r.Game.Store = l.config.Store

	l.mu.Lock()
	l.rooms[r.ID] = r
	l.mu.Unlock()

	log.Infof("[Lobby] Room %s (%q) created, private=%v.", r.ID, name, r.Private())
	return r, nil
}

// GetRoom returns a room by ID.
func (l *Lobby) GetRoom(roomID uuid.UUID) (*Room, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	r, ok := l.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

// ListRooms returns every room, oldest first.
func (l *Lobby) ListRooms() []RoomSummary {
	l.mu.RLock()
	rooms := make([]*Room, 0, len(l.rooms))
	for _, r := range l.rooms {
		rooms = append(rooms, r)
	}
	l.mu.RUnlock()

	out := make([]RoomSummary, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.summary())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r *Room) summary() RoomSummary {
	g := r.Game
	g.Mu.Lock()
	defer g.Mu.Unlock()
	s := RoomSummary{
		ID:        r.ID,
		Name:      r.Name,
		Private:   r.Private(),
		Players:   make([]string, 0, engine.NumPlayers),
		Seated:    g.SeatedCount(),
		Started:   g.Started,
		GameID:    g.ID,
		CreatedAt: r.CreatedAt,
	}
	for _, p := range g.Seats {
		if p != nil {
			s.Players = append(s.Players, p.User.Username)
		}
	}
	if g.Match != nil {
		s.Round = g.Match.Round
	}
	return s
}

// JoinRoom seats user in a room, checking the password first. The match starts
// when the fourth seat fills. A user already seated but disconnected is restored
// to their seat. When ch is non-nil it is attached as the user's event queue
// before seating, so the welcome and first state reach it.
func (l *Lobby) JoinRoom(roomID uuid.UUID, user models.User, password string, ch chan []byte) (*Room, *models.Player, error) {
	r, err := l.GetRoom(roomID)
	if err != nil {
		return nil, nil, err
	}
	if r.Private() {
		if err := bcrypt.CompareHashAndPassword(r.passwordHash, []byte(password)); err != nil {
			return nil, nil, ErrBadPassword
		}
	}

	g := r.Game
	g.Mu.Lock()
	defer g.Mu.Unlock()

	p, err := l.seat(r, user, ch)
	if err != nil {
		return nil, nil, err
	}
	return r, p, nil
}

// seat adds user to r's game and starts the match on a full table.
// Assumes r.Game.Mu is held by caller.
func (l *Lobby) seat(r *Room, user models.User, ch chan []byte) (*models.Player, error) {
	g := r.Game
	u := user
	var prev chan []byte
	if ch != nil {
		prev = r.swap(user.ID, ch)
	}
	seat, err := g.AddPlayer(&models.Player{ID: user.ID, User: &u})
	if err != nil {
		if ch != nil {
			r.restore(user.ID, ch, prev)
		}
		switch {
		case errors.Is(err, game.ErrGameFull):
			return nil, ErrRoomFull
		case errors.Is(err, game.ErrGameStarted):
			return nil, ErrMatchInProgress
		case errors.Is(err, game.ErrAlreadySeated):
			return nil, ErrAlreadySeated
		}
		return nil, err
	}
	p := g.PlayerBySeat(seat)
	log.Infof("[Lobby] User %s joined room %s at seat %d.", user.Username, r.ID, seat)

	if !g.Started && g.SeatedCount() == engine.NumPlayers {
		if err := g.Start(); err != nil {
			log.Errorf("[Lobby] Room %s: failed to start match: %v", r.ID, err)
		}
	}
	return p, nil
}

// QuickJoin seats user at the first public room with a free seat, or creates one.
// ch is attached as in JoinRoom.
func (l *Lobby) QuickJoin(user models.User, ch chan []byte) (*Room, *models.Player, error) {
	for _, s := range l.ListRooms() {
		if s.Private || s.Started || s.Seated >= engine.NumPlayers {
			continue
		}
		r, err := l.GetRoom(s.ID)
		if err != nil {
			continue
		}
		r.Game.Mu.Lock()
		p, err := l.seat(r, user, ch)
		r.Game.Mu.Unlock()
		if err == nil {
			log.Infof("[Lobby] QuickJoin: user %s joined existing room %s.", user.Username, r.ID)
			return r, p, nil
		}
	}

	r, err := l.CreateRoom(fmt.Sprintf("Mesa de %s", user.Username), "")
	if err != nil {
		return nil, nil, err
	}
	r.Game.Mu.Lock()
	defer r.Game.Mu.Unlock()
	p, err := l.seat(r, user, ch)
	if err != nil {
		return nil, nil, err
	}
	log.Infof("[Lobby] QuickJoin: user %s created room %s.", user.Username, r.ID)
	return r, p, nil
}

// LeaveRoom handles a user's connection going away. Before the match starts
// the seat is freed; afterwards it is held for a reconnect. A room with nobody
// connected is closed.
func (l *Lobby) LeaveRoom(roomID, userID uuid.UUID) {
	r, err := l.GetRoom(roomID)
	if err != nil {
		return
	}
	g := r.Game
	g.Mu.Lock()
	g.RemovePlayer(userID)
	empty := g.ConnectedCount() == 0
	g.Mu.Unlock()

	if empty {
		l.RemoveRoom(roomID)
	}
}

// RemoveRoom closes a room and stops its timers.
func (l *Lobby) RemoveRoom(roomID uuid.UUID) {
	l.mu.Lock()
	r, ok := l.rooms[roomID]
	delete(l.rooms, roomID)
	l.mu.Unlock()
	if !ok {
		return
	}
	r.Game.Mu.Lock()
	r.Game.Close()
	r.Game.Mu.Unlock()
	log.Infof("[Lobby] Room %s removed.", roomID)
}

// Close removes every room.
func (l *Lobby) Close() {
	l.mu.RLock()
	ids := make([]uuid.UUID, 0, len(l.rooms))
	for id := range l.rooms {
		ids = append(ids, id)
	}
	l.mu.RUnlock()
	for _, id := range ids {
		l.RemoveRoom(id)
	}
}
