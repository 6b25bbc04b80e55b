package web

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/swipswaps/marketplace-bulk-editor/internal/store"
	"github.com/swipswaps/marketplace-bulk-editor/internal/template"
)

// handleListSavedTemplates returns the user's saved templates.
func (s *Server) handleListSavedTemplates(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w) {
		return
	}

	templates, err := s.store.Templates.List(r.Context(), currentUser(r).ID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if templates == nil {
		templates = []store.SavedTemplate{}
	}
	writeJSON(w, map[string]any{"templates": templates})
}

// handleSaveTemplate stores a template under a name.
// Body: {"name": "...", "template": {...}} or {"name": "...",
// "session_id": "..."} to persist the session's captured template.
func (s *Server) handleSaveTemplate(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w) {
		return
	}

	var req struct {
		Name      string             `json:"name"`
		SessionID string             `json:"session_id"`
		Template  *template.Template `json:"template"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	t := req.Template
	if t == nil && req.SessionID != "" {
		sess, err := s.sessions.Get(req.SessionID)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		t = sess.Template()
	}
	if !t.Loaded() {
		writeError(w, http.StatusBadRequest, "no template provided")
		return
	}

	saved, err := s.store.Templates.Save(r.Context(), currentUser(r).ID, req.Name, *t)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, saved)
}

// handleGetSavedTemplate fetches one saved template. With
// ?session_id=<id> it is also loaded into that session.
func (s *Server) handleGetSavedTemplate(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w) {
		return
	}

	saved, err := s.store.Templates.Get(r.Context(), currentUser(r).ID, chi.URLParam(r, "templateID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if sessionID := r.URL.Query().Get("session_id"); sessionID != "" {
		sess, err := s.sessions.Get(sessionID)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		t := saved.Template
		sess.SetTemplate(&t)
	}

	writeJSON(w, saved)
}

// handleDeleteSavedTemplate removes one saved template.
func (s *Server) handleDeleteSavedTemplate(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w) {
		return
	}

	err := s.store.Templates.Delete(r.Context(), currentUser(r).ID, chi.URLParam(r, "templateID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
