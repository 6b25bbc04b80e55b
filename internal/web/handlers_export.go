package web

import (
	"net/http"
	"strconv"

	"github.com/swipswaps/marketplace-bulk-editor/internal/export"
	"github.com/swipswaps/marketplace-bulk-editor/internal/logging"
	"github.com/swipswaps/marketplace-bulk-editor/internal/policy"
)

// handleValidate runs the policy checks over the current table.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, policy.Validate(sess.Rows()))
}

// handleSuggestions returns category autocomplete values drawn from the
// table itself. Query: ?q=<prefix>.
func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	suggestions := sess.CategorySuggestions(r.URL.Query().Get("q"))
	if suggestions == nil {
		suggestions = []string{}
	}
	writeJSON(w, map[string]any{"suggestions": suggestions})
}

// handleExport serializes the table in the requested format.
//
// Query parameters:
//   - format: xlsx (default), csv, json, text, or sql
//   - sort: field to sort by, empty keeps table order
//   - dir: asc (default) or desc
//   - reverse: flips the sequence after sorting
//   - template: "0" exports the canonical layout even when a template is
//     loaded
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	q := r.URL.Query()
	opts := export.Options{
		Format:  export.Format(q.Get("format")),
		SortKey: q.Get("sort"),
		SortDir: q.Get("dir"),
	}
	if opts.Format == "" {
		opts.Format = export.FormatXLSX
	}
	if v, err := strconv.ParseBool(q.Get("reverse")); err == nil {
		opts.Reverse = v
	}
	if q.Get("template") != "0" {
		if t := sess.Template(); t.Loaded() {
			opts.Template = t
		}
	}

	result, err := export.Export(sess.Rows(), opts)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("export completed",
		"session", sess.ID,
		"format", string(opts.Format),
		"exported", result.Exported,
		"skipped", result.Skipped,
	)

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	// Skip counts travel in headers so the body stays a clean download.
	w.Header().Set("X-Exported-Count", strconv.Itoa(result.Exported))
	w.Header().Set("X-Skipped-Count", strconv.Itoa(result.Skipped))
	w.Write(result.Data)
}
