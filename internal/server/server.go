// Package server exposes the lobby over HTTP and WebSocket.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/vodiniz/buracao/internal/auth"
	"github.com/vodiniz/buracao/internal/database"
	"github.com/vodiniz/buracao/internal/lobby"
)

// Server bundles the lobby, token issuer and result store behind a chi router.
type Server struct {
	lobby   *lobby.Lobby
	tokens  *auth.TokenIssuer
	store   database.Store
	origins []string
}

// New creates a Server. origins lists extra host patterns allowed to open
// WebSocket connections; same-origin requests are always accepted.
func New(lby *lobby.Lobby, tokens *auth.TokenIssuer, store database.Store, origins []string) *Server {
	return &Server{lobby: lby, tokens: tokens, store: store, origins: origins}
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second))
		r.Post("/guest", s.handleGuest)
		r.Get("/rooms", s.handleListRooms)
		r.With(s.requireAuth).Post("/rooms", s.handleCreateRoom)
		r.Get("/games/{gameID}/results", s.handleResults)
		r.Get("/games/{gameID}/actions", s.handleActions)
	})

	r.Get("/ws", s.handleRoomWS)
	r.Get("/ws/quick", s.handleQuickWS)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})
	return r
}

// requestLogger logs one line per request at debug level, with the chi request id.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.WithFields(log.Fields{
			"request_id": chimw.GetReqID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start).String(),
			"remote":     r.RemoteAddr,
		}).Debug("http request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
