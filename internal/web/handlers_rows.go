package web

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleAddRow appends a blank listing.
func (s *Server) handleAddRow(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	row := sess.AddRow()
	writeJSONStatus(w, http.StatusCreated, map[string]any{"row": row, "state": s.state(sess)})
}

// handleUpdateRow applies field edits to one row. Body is a flat object of
// field name to new value, e.g. {"price": "25", "condition": "Used - Good"}.
func (s *Server) handleUpdateRow(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var fields map[string]string
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(fields) == 0 {
		writeError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	row, err := sess.UpdateRow(chi.URLParam(r, "rowID"), fields)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"row": row, "state": s.state(sess)})
}

// handleDuplicateRow copies a row under a fresh ID.
func (s *Server) handleDuplicateRow(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	row, err := sess.DuplicateRow(chi.URLParam(r, "rowID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, map[string]any{"row": row, "state": s.state(sess)})
}

// handleDeleteRows removes rows by ID. Body: {"ids": ["..."]}.
func (s *Server) handleDeleteRows(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var req struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "no row ids provided")
		return
	}

	deleted := sess.DeleteRows(req.IDs)
	writeJSON(w, map[string]any{"deleted": deleted, "state": s.state(sess)})
}

// handleBulkEdit sets one field across many rows.
// Body: {"ids": ["..."], "field": "category", "value": "Furniture"}.
func (s *Server) handleBulkEdit(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var req struct {
		IDs   []string `json:"ids"`
		Field string   `json:"field"`
		Value string   `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.IDs) == 0 || req.Field == "" {
		writeError(w, http.StatusBadRequest, "ids and field are required")
		return
	}

	edited, err := sess.BulkEdit(req.IDs, req.Field, req.Value)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"edited": edited, "state": s.state(sess)})
}

// handleClearRows empties the table. The cleared state is undoable.
func (s *Server) handleClearRows(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	sess.Clear()
	writeJSON(w, s.state(sess))
}

// handleUndo steps the table back one snapshot. A no-op at the boundary
// still returns the current state.
func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	_, applied := sess.Undo()
	writeJSON(w, map[string]any{"applied": applied, "state": s.state(sess)})
}

// handleRedo steps the table forward one snapshot.
func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	_, applied := sess.Redo()
	writeJSON(w, map[string]any{"applied": applied, "state": s.state(sess)})
}
