/*
Package api
File: handlers.go
Description:
    HTTP handlers for the UI-facing event surface. Each action decodes a
    small JSON request, applies one session transition and answers with the
    updated view.

    Key Responsibilities:
    - Input validation (is the JSON well formed?)
    - Two-phase confirmation for destructive actions (reset, switch)
    - Pushing every applied transition to WebSocket clients
*/

package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/salvarecuero/tap-cat/internal/game"
	"github.com/salvarecuero/tap-cat/internal/session"
)

// Request DTOs

type BuyRequest struct {
	BoostID string `json:"boost_id"`
}

type SelectRequest struct {
	CharacterID string `json:"character_id"`
	Confirm     bool   `json:"confirm"`
}

type ResetRequest struct {
	Confirm bool `json:"confirm"`
}

type CreditRequest struct {
	Amount float64 `json:"amount"`
}

// ActionResponse answers every transition. Applied is false for no-ops.
type ActionResponse struct {
	Applied     bool         `json:"applied"`
	View        session.View `json:"view"`
	Suggestions []string     `json:"suggestions,omitempty"`
}

// ConfirmResponse is sent with 409 when a destructive action needs the
// player's consent. Repeat the request with "confirm": true to commit.
type ConfirmResponse struct {
	ConfirmRequired bool   `json:"confirm_required"`
	Prompt          string `json:"prompt"`
}

// Server binds the session store to HTTP and the WebSocket hub.
type Server struct {
	store *session.Store
	hub   *Hub
	debug bool
	log   *slog.Logger
}

// NewServer wires store updates into hub. debug enables the credit
// endpoint.
func NewServer(store *session.Store, hub *Hub, debug bool, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{store: store, hub: hub, debug: debug, log: log}

	store.Subscribe(func(v session.View) {
		hub.Publish(Message{Type: "state", Payload: v, Sender: store.ID()})
	})
	hub.OnCommand = s.handleCommand
	return s
}

// Routes returns the API mux, wrapped in the CORS middleware.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	// Information endpoints
	mux.HandleFunc("GET /api/state", s.handleGetState)
	mux.HandleFunc("GET /api/characters", s.handleGetCharacters)
	mux.HandleFunc("GET /api/boosts", s.handleGetBoosts)

	// Action endpoints
	mux.HandleFunc("POST /api/tap", s.handleTap)
	mux.HandleFunc("POST /api/buy", s.handleBuy)
	mux.HandleFunc("POST /api/select", s.handleSelect)
	mux.HandleFunc("POST /api/reset", s.handleReset)
	mux.HandleFunc("POST /api/debug/credit", s.handleCredit)

	// Real-time endpoint
	mux.HandleFunc("GET /ws", s.hub.ServeWs)

	return corsMiddleware(mux)
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.View())
}

func (s *Server) handleGetCharacters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Catalog().Characters)
}

func (s *Server) handleGetBoosts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Catalog().Boosts)
}

func (s *Server) handleTap(w http.ResponseWriter, r *http.Request) {
	v, ok := s.store.Tap()
	writeJSON(w, http.StatusOK, ActionResponse{Applied: ok, View: v})
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	var req BuyRequest
	if !decode(w, r, &req) {
		return
	}

	v, ok := s.store.Buy(req.BoostID)
	resp := ActionResponse{Applied: ok, View: v}
	if _, known := s.store.Catalog().Boost(req.BoostID); !known {
		resp.Suggestions = game.Suggest(req.BoostID, s.store.Catalog().BoostIDs())
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if !decode(w, r, &req) {
		return
	}

	catalog := s.store.Catalog()
	if _, known := catalog.Character(req.CharacterID); !known {
		writeJSON(w, http.StatusOK, ActionResponse{
			View:        s.store.View(),
			Suggestions: game.Suggest(req.CharacterID, catalog.CharacterIDs()),
		})
		return
	}

	// 1. Phase one: report what the player must agree to.
	if !req.Confirm {
		if prompt, needed := s.store.SelectPrompt(req.CharacterID); needed {
			writeJSON(w, http.StatusConflict, ConfirmResponse{ConfirmRequired: true, Prompt: prompt})
			return
		}
	}

	// 2. Phase two: commit.
	v, ok := s.store.SelectCharacter(req.CharacterID, session.Confirmed)
	writeJSON(w, http.StatusOK, ActionResponse{Applied: ok, View: v})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req ResetRequest
	if !decode(w, r, &req) {
		return
	}
	if !req.Confirm {
		writeJSON(w, http.StatusConflict, ConfirmResponse{ConfirmRequired: true, Prompt: session.ResetPrompt})
		return
	}

	v, ok := s.store.Reset(session.Confirmed)
	writeJSON(w, http.StatusOK, ActionResponse{Applied: ok, View: v})
}

func (s *Server) handleCredit(w http.ResponseWriter, r *http.Request) {
	if !s.debug {
		http.NotFound(w, r)
		return
	}
	var req CreditRequest
	if !decode(w, r, &req) {
		return
	}

	v, ok := s.store.DebugCredit(req.Amount)
	writeJSON(w, http.StatusOK, ActionResponse{Applied: ok, View: v})
}

// handleCommand applies a command sent over the socket. Results reach the
// client through the regular state broadcast.
func (s *Server) handleCommand(clientID string, raw []byte) {
	var cmd struct {
		Type    string `json:"type"`
		BoostID string `json:"boost_id"`
	}
	if err := json.Unmarshal(raw, &cmd); err != nil {
		s.log.Debug("ignoring malformed ws command", "client", clientID, "error", err)
		return
	}

	switch cmd.Type {
	case "tap":
		s.store.Tap()
	case "buy":
		s.store.Buy(cmd.BoostID)
	default:
		s.log.Debug("ignoring unknown ws command", "client", clientID, "type", cmd.Type)
	}
}

// decode reads a JSON body into dst. An empty body leaves dst zero.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// corsMiddleware lets a browser client served from another origin talk to
// the API.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
