package web

import (
	"encoding/json"
	"net/http"

	"github.com/swipswaps/marketplace-bulk-editor/internal/listing"
	"github.com/swipswaps/marketplace-bulk-editor/internal/ocr"
)

// handleOCRParse turns free text (typically OCR output from a product
// catalog photo) into listing rows. With session_id set, the rows are also
// appended to that session.
//
// Body: {"text": "...", "session_id": "..."}.
func (s *Server) handleOCRParse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text      string `json:"text"`
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	rows := ocr.ParseCatalog(req.Text)
	if rows == nil {
		rows = []listing.Listing{}
	}

	resp := map[string]any{"listings": rows, "count": len(rows)}
	if req.SessionID != "" {
		sess, err := s.sessions.Get(req.SessionID)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		sess.Append(rows)
		resp["state"] = s.state(sess)
	}
	writeJSON(w, resp)
}
