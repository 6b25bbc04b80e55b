package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/swipswaps/marketplace-bulk-editor/internal/editor"
	"github.com/swipswaps/marketplace-bulk-editor/internal/listing"
	"github.com/swipswaps/marketplace-bulk-editor/internal/template"
)

// sessionState is the full session payload returned by GET and by every
// mutation that changes the table.
type sessionState struct {
	SessionID string            `json:"session_id"`
	Rows      []listing.Listing `json:"rows"`
	RowCount  int               `json:"row_count"`
	CanUndo   bool              `json:"can_undo"`
	CanRedo   bool              `json:"can_redo"`
	Template  bool              `json:"template_loaded"`
}

func (s *Server) state(sess *editor.Session) sessionState {
	rows := sess.Rows()
	if rows == nil {
		rows = []listing.Listing{}
	}
	var t *template.Template = sess.Template()
	return sessionState{
		SessionID: sess.ID,
		Rows:      rows,
		RowCount:  len(rows),
		CanUndo:   sess.CanUndo(),
		CanRedo:   sess.CanRedo(),
		Template:  t.Loaded(),
	}
}

// session resolves the {sessionID} URL parameter.
func (s *Server) session(r *http.Request) (*editor.Session, error) {
	return s.sessions.Get(chi.URLParam(r, "sessionID"))
}

// handleCreateSession starts an empty editing session.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create()
	writeJSONStatus(w, http.StatusCreated, s.state(sess))
}

// handleSessionState returns the current table and history flags.
func (s *Server) handleSessionState(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, s.state(sess))
}

// handleDeleteSession drops the session immediately instead of waiting for
// the idle reaper.
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if _, err := s.session(r); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.sessions.Delete(chi.URLParam(r, "sessionID"))
	w.WriteHeader(http.StatusNoContent)
}
