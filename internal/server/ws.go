package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vodiniz/buracao/internal/game"
	"github.com/vodiniz/buracao/internal/lobby"
	"github.com/vodiniz/buracao/internal/models"
)

const (
	sendQueueSize = 256
	readLimit     = 64 << 10
	writeTimeout  = 10 * time.Second
	pingInterval  = 30 * time.Second
)

// handleRoomWS joins the room named by ?room= and plays over the connection.
func (s *Server) handleRoomWS(w http.ResponseWriter, r *http.Request) {
	user, ok := s.wsUser(w, r)
	if !ok {
		return
	}
	roomID, err := uuid.Parse(r.URL.Query().Get("room"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_room_id")
		return
	}
	password := r.URL.Query().Get("password")
	s.serveWS(w, r, user, func(ch chan []byte) (*lobby.Room, *models.Player, error) {
		return s.lobby.JoinRoom(roomID, user, password, ch)
	})
}

// handleQuickWS seats the user at any open public room.
func (s *Server) handleQuickWS(w http.ResponseWriter, r *http.Request) {
	user, ok := s.wsUser(w, r)
	if !ok {
		return
	}
	s.serveWS(w, r, user, func(ch chan []byte) (*lobby.Room, *models.Player, error) {
		return s.lobby.QuickJoin(user, ch)
	})
}

// wsUser authenticates before the upgrade. Browsers cannot set headers on a
// WebSocket handshake, so ?token= is accepted as well as a bearer header.
func (s *Server) wsUser(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	raw := r.URL.Query().Get("token")
	if raw == "" {
		raw = bearerToken(r)
	}
	if raw == "" {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return models.User{}, false
	}
	user, err := s.tokens.Parse(raw)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_token")
		return models.User{}, false
	}
	return user, true
}

type joinFunc func(ch chan []byte) (*lobby.Room, *models.Player, error)

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request, user models.User, join joinFunc) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: s.origins})
	if err != nil {
		log.Warnf("WebSocket accept for %s failed: %v", user.Username, err)
		return
	}
	conn.SetReadLimit(readLimit)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	send := make(chan []byte, sendQueueSize)
	room, player, err := join(send)
	if err != nil {
		log.Infof("User %s could not join: %v", user.Username, err)
		wctx, wcancel := context.WithTimeout(ctx, writeTimeout)
		_ = wsjson.Write(wctx, conn, game.GameEvent{Type: game.EventError, Message: err.Error()})
		wcancel()
		conn.Close(websocket.StatusPolicyViolation, joinCloseReason(err))
		return
	}

	g := room.Game
	g.Mu.Lock()
	player.Conn = conn
	g.Mu.Unlock()
	log.Infof("User %s connected to room %s (seat %d).", user.Username, room.ID, player.Seat)

	go writePump(ctx, cancel, conn, send)
	readPump(ctx, conn, room, user)

	cancel()
	if room.Detach(user.ID, send) {
		s.lobby.LeaveRoom(room.ID, user.ID)
	}
	conn.Close(websocket.StatusNormalClosure, "")
	log.Infof("User %s left room %s.", user.Username, room.ID)
}

// readPump decodes client actions and applies them under the game lock until
// the connection fails.
func readPump(ctx context.Context, conn *websocket.Conn, room *lobby.Room, user models.User) {
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			if status := websocket.CloseStatus(err); status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && !errors.Is(err, context.Canceled) {
				log.Debugf("Read from %s ended: %v", user.Username, err)
			}
			return
		}
		if typ != websocket.MessageText {
			continue
		}
		var action models.GameAction
		if err := json.Unmarshal(data, &action); err != nil || action.ActionType == "" {
			sendDirect(ctx, conn, game.GameEvent{Type: game.EventError, Message: "malformed message"})
			continue
		}
		g := room.Game
		g.Mu.Lock()
		g.HandlePlayerAction(user.ID, action)
		g.Mu.Unlock()
	}
}

// writePump drains the send queue and keeps the connection alive with pings.
// The queue is never closed; the pump stops with ctx.
func writePump(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, send <-chan []byte) {
	defer cancel()
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case data := <-send:
			wctx, wcancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Write(wctx, websocket.MessageText, data)
			wcancel()
			if err != nil {
				return
			}
		case <-ticker.C:
			pctx, pcancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Ping(pctx)
			pcancel()
			if err != nil {
				return
			}
		}
	}
}

func sendDirect(ctx context.Context, conn *websocket.Conn, ev game.GameEvent) {
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := wsjson.Write(wctx, conn, ev); err != nil {
		log.Debugf("Direct write failed: %v", err)
	}
}

func joinCloseReason(err error) string {
	switch {
	case errors.Is(err, lobby.ErrRoomNotFound):
		return "room not found"
	case errors.Is(err, lobby.ErrRoomFull), errors.Is(err, lobby.ErrMatchInProgress):
		return "room unavailable"
	case errors.Is(err, lobby.ErrBadPassword):
		return "wrong password"
	case errors.Is(err, lobby.ErrAlreadySeated):
		return "already connected"
	}
	return "join failed"
}
