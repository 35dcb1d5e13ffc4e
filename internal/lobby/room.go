package lobby

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vodiniz/buracao/internal/game"
)

// Room is a named table in the lobby. It owns one BuracoGame and the outgoing
// message queues of the connections attached to it.
type Room struct {
	ID           uuid.UUID
	Name         string
	CreatedAt    time.Time
	passwordHash []byte

	Game *game.BuracoGame

	mu     sync.Mutex
	outbox map[uuid.UUID]chan []byte
}

func newRoom(name string, hash []byte) *Room {
	r := &Room{
		ID:           uuid.New(),
		Name:         name,
		CreatedAt:    time.Now(),
		passwordHash: hash,
		outbox:       make(map[uuid.UUID]chan []byte),
	}
	r.Game = game.NewBuracoGame(r.ID)
	r.Game.BroadcastFn = r.broadcast
	r.Game.BroadcastToPlayerFn = r.sendTo
	return r
}

// Private reports whether joining requires a password.
func (r *Room) Private() bool { return len(r.passwordHash) > 0 }

// Attach registers the queue that receives events for userID, replacing any
// previous one.
func (r *Room) Attach(userID uuid.UUID, ch chan []byte) {
	r.swap(userID, ch)
}

// swap installs ch for userID and returns the queue it replaced, if any.
func (r *Room) swap(userID uuid.UUID, ch chan []byte) chan []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.outbox[userID]
	r.outbox[userID] = ch
	return prev
}

// restore undoes a swap when ch is still installed.
func (r *Room) restore(userID uuid.UUID, ch, prev chan []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.outbox[userID] != ch {
		return
	}
	if prev == nil {
		delete(r.outbox, userID)
	} else {
		r.outbox[userID] = prev
	}
}

// Detach removes userID's queue if it is still ch. A newer connection for the
// same user keeps its queue.
func (r *Room) Detach(userID uuid.UUID, ch chan []byte) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.outbox[userID]; ok && cur == ch {
		delete(r.outbox, userID)
		return true
	}
	return false
}

// Attached returns the number of live queues.
func (r *Room) Attached() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.outbox)
}

func (r *Room) broadcast(ev game.GameEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Errorf("Room %s: Failed to marshal %s event: %v", r.ID, ev.Type, err)
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for userID, ch := range r.outbox {
		r.enqueue(userID, ch, data)
	}
}

func (r *Room) sendTo(userID uuid.UUID, ev game.GameEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Errorf("Room %s: Failed to marshal %s event for %s: %v", r.ID, ev.Type, userID, err)
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if ch, ok := r.outbox[userID]; ok {
		r.enqueue(userID, ch, data)
	}
}

// enqueue never blocks the game; a full queue drops the message.
func (r *Room) enqueue(userID uuid.UUID, ch chan []byte, data []byte) {
	select {
	case ch <- data:
	default:
		log.Warnf("Room %s: Send queue full for %s, dropping message.", r.ID, userID)
	}
}
