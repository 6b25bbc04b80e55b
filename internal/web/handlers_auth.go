package web

import (
	"encoding/json"
	"net/http"

	"github.com/swipswaps/marketplace-bulk-editor/internal/store"
	"github.com/swipswaps/marketplace-bulk-editor/internal/web/middleware"
)

// requireDB guards handlers that need persistence. Offline mode answers
// 503 so clients can distinguish "not configured" from "denied".
func (s *Server) requireDB(w http.ResponseWriter) bool {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "persistence is not configured")
		return false
	}
	return true
}

// requireUser is the bearer-token middleware bound to this server's auth
// service.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return middleware.BearerAuth(s.auth)(next)
}

// currentUser returns the authenticated account set by requireUser.
func currentUser(r *http.Request) store.User {
	u, _ := middleware.UserFromContext(r.Context())
	return u
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleRegister creates an account and returns tokens.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w) {
		return
	}

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	user, tokens, err := s.auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, map[string]any{"user": user, "tokens": tokens})
}

// handleLogin verifies credentials and returns tokens.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w) {
		return
	}

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	user, tokens, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"user": user, "tokens": tokens})
}

// handleRefresh exchanges a refresh token for a new pair.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w) {
		return
	}

	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	tokens, err := s.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"tokens": tokens})
}

// handleMe returns the authenticated account.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"user": currentUser(r)})
}
