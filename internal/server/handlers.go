package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vodiniz/buracao/internal/auth"
	"github.com/vodiniz/buracao/internal/cache"
	"github.com/vodiniz/buracao/internal/database"
	"github.com/vodiniz/buracao/internal/lobby"
	"github.com/vodiniz/buracao/internal/models"
)

type guestReq struct {
	Username string `json:"username"`
}

type guestRes struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func (s *Server) handleGuest(w http.ResponseWriter, r *http.Request) {
	var req guestReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	token, user, err := s.tokens.IssueGuest(req.Username)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidUsername) {
			writeError(w, http.StatusBadRequest, "invalid_username")
			return
		}
		log.Errorf("Issue guest token: %v", err)
		writeError(w, http.StatusInternalServerError, "token_failed")
		return
	}
	writeJSON(w, http.StatusCreated, guestRes{Token: token, User: user})
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.lobby.ListRooms())
}

type createRoomReq struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	var req createRoomReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	room, err := s.lobby.CreateRoom(req.Name, req.Password)
	if err != nil {
		if errors.Is(err, lobby.ErrInvalidName) {
			writeError(w, http.StatusBadRequest, "invalid_name")
			return
		}
		log.Errorf("Create room for %s: %v", user.Username, err)
		writeError(w, http.StatusInternalServerError, "create_failed")
		return
	}
	log.Infof("User %s created room %s.", user.Username, room.ID)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":      room.ID,
		"name":    room.Name,
		"private": room.Private(),
	})
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	gameID, err := uuid.Parse(chi.URLParam(r, "gameID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_game_id")
		return
	}
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "no_store")
		return
	}
	recs, err := s.store.ListRoundResults(r.Context(), gameID)
	if err != nil {
		log.Errorf("List results for game %s: %v", gameID, err)
		writeError(w, http.StatusInternalServerError, "list_failed")
		return
	}
	if recs == nil {
		recs = []database.RoundRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleActions(w http.ResponseWriter, r *http.Request) {
	gameID, err := uuid.Parse(chi.URLParam(r, "gameID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_game_id")
		return
	}
	recs, err := cache.LoadGameActions(r.Context(), gameID)
	if err != nil {
		if errors.Is(err, cache.ErrNotConnected) {
			writeError(w, http.StatusServiceUnavailable, "no_action_log")
			return
		}
		log.Errorf("Load actions for game %s: %v", gameID, err)
		writeError(w, http.StatusInternalServerError, "load_failed")
		return
	}
	if recs == nil {
		recs = []cache.GameActionRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}
