package web

import (
	"encoding/json"
	"net/http"

	"github.com/swipswaps/marketplace-bulk-editor/internal/listing"
	"github.com/swipswaps/marketplace-bulk-editor/internal/logging"
	"github.com/swipswaps/marketplace-bulk-editor/internal/store"
)

// handleListListings returns a page of the user's saved listings.
// Query: ?limit=100&offset=0.
func (s *Server) handleListListings(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w) {
		return
	}

	limit := parseIntDefault(r, "limit", 100)
	offset := parseIntDefault(r, "offset", 0)

	rows, total, err := s.store.Listings.List(r.Context(), currentUser(r).ID, limit, offset)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if rows == nil {
		rows = []store.StoredListing{}
	}
	writeJSON(w, map[string]any{
		"listings": rows,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

// handleSaveListings bulk upserts the posted rows for the user.
// Body: {"listings": [...]}.
func (s *Server) handleSaveListings(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w) {
		return
	}

	var req struct {
		Listings []listing.Listing `json:"listings"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Listings) == 0 {
		writeError(w, http.StatusBadRequest, "no listings provided")
		return
	}

	saved, err := s.store.Listings.SaveAll(r.Context(), currentUser(r).ID, req.Listings)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("listings saved",
		"user", currentUser(r).ID, "count", saved)
	writeJSON(w, map[string]any{"saved": saved})
}

// handleDeleteListings removes the given listings. Body: {"ids": ["..."]}.
func (s *Server) handleDeleteListings(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w) {
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
		writeError(w, http.StatusBadRequest, "no ids provided")
		return
	}

	deleted, err := s.store.Listings.Delete(r.Context(), currentUser(r).ID, req.IDs)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"deleted": deleted})
}

// handleDeleteAllListings removes every listing for the user.
func (s *Server) handleDeleteAllListings(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w) {
		return
	}

	deleted, err := s.store.Listings.DeleteAll(r.Context(), currentUser(r).ID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"deleted": deleted})
}

// handleCleanupDuplicates deletes duplicate listings, keeping the oldest
// of each title/price/condition group.
func (s *Server) handleCleanupDuplicates(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w) {
		return
	}

	removed, err := s.store.Listings.CleanupDuplicates(r.Context(), currentUser(r).ID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("duplicate cleanup",
		"user", currentUser(r).ID, "removed", removed)
	writeJSON(w, map[string]any{"removed": removed})
}
