package web

import (
	"io"
	"net/http"
	"strconv"

	"github.com/swipswaps/marketplace-bulk-editor/internal/importer"
	"github.com/swipswaps/marketplace-bulk-editor/internal/listing"
	"github.com/swipswaps/marketplace-bulk-editor/internal/logging"
	"github.com/swipswaps/marketplace-bulk-editor/internal/sheet"
	"github.com/swipswaps/marketplace-bulk-editor/internal/template"
)

// importResponse wraps the classification result with the session state
// after the accepted rows were appended.
type importResponse struct {
	Result importer.Result `json:"result"`
	State  sessionState    `json:"state"`
}

// readUpload pulls the multipart "file" field within the size limit.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		writeError(w, http.StatusBadRequest, "file too large or invalid form")
		return nil, "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file provided")
		return nil, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read file")
		return nil, "", false
	}
	return data, header.Filename, true
}

// handleImport parses an uploaded spreadsheet and appends its rows to the
// session table.
//
// Form fields:
//   - file: the .xlsx or .csv upload
//   - mode: "validated" (default) classifies rows and annotates defaults;
//     "plain" imports everything without rejection
//   - default_category: overrides the configured category default;
//     "none" leaves blank categories empty
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	data, filename, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	g, _, err := sheet.Decode(filename, data)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	opts := importer.Options{DefaultCategory: s.cfg.Import.DefaultCategory}
	switch dc := r.FormValue("default_category"); dc {
	case "":
	case "none":
		opts.DefaultCategory = ""
	default:
		opts.DefaultCategory = dc
	}

	mode := r.FormValue("mode")
	var result importer.Result
	if mode == "plain" {
		rows := importer.Rows(g, opts)
		result = importer.Result{
			Valid:     rows,
			HeaderRow: importer.FindHeaderRow(g),
			TotalRows: len(rows),
		}
		sess.Append(rows)
	} else {
		opts.Annotate = true
		result = importer.Import(g, opts)
		accepted := append(append([]listing.Listing{}, result.Valid...), result.AutoFilled...)
		sess.Append(accepted)
	}

	logging.FromContext(r.Context()).Info("import completed",
		"session", sess.ID,
		"filename", filename,
		"valid", result.ValidCount(),
		"auto_filled", result.AutoFilledCount(),
		"rejected", result.RejectedCount(),
	)

	writeJSON(w, importResponse{Result: result, State: s.state(sess)})
}

// templateUploadResponse reports the detection verdict alongside the
// session state. When apply=data the rows were imported instead.
type templateUploadResponse struct {
	Detection template.Detection `json:"detection"`
	Applied   string             `json:"applied"`
	Template  *template.Template `json:"template,omitempty"`
	State     sessionState       `json:"state"`
}

// handleTemplateUpload captures an uploaded file as the session's export
// template. Detection of template-vs-data is advisory; the caller decides
// with the apply field.
//
// Form fields:
//   - file: the .xlsx or .csv upload
//   - apply: "template" (default), "data" to import as rows instead, or
//     "auto" to follow the detection verdict
func (s *Server) handleTemplateUpload(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	data, filename, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	g, sheetName, err := sheet.Decode(filename, data)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	t := template.Extract(g, sheetName)
	det := template.Detect(filename, t)

	apply := r.FormValue("apply")
	if apply == "" {
		apply = "template"
	}
	if apply == "auto" {
		if det.IsTemplate() {
			apply = "template"
		} else {
			apply = "data"
		}
	}

	resp := templateUploadResponse{Detection: det, Applied: apply}
	switch apply {
	case "data":
		rows := importer.Rows(g, importer.Options{DefaultCategory: s.cfg.Import.DefaultCategory})
		sess.Append(rows)
	case "template":
		sess.SetTemplate(t)
		resp.Template = t
	default:
		writeError(w, http.StatusBadRequest, "apply must be template, data, or auto")
		return
	}

	logging.FromContext(r.Context()).Info("template upload",
		"session", sess.ID,
		"filename", filename,
		"applied", apply,
		"data_rows", det.DataRows,
	)

	resp.State = s.state(sess)
	writeJSON(w, resp)
}

// handleSessionTemplate returns the captured template.
func (s *Server) handleSessionTemplate(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	t := sess.Template()
	if !t.Loaded() {
		writeError(w, http.StatusNotFound, "no template loaded")
		return
	}
	writeJSON(w, t)
}

// handleClearTemplate drops the captured template.
func (s *Server) handleClearTemplate(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	sess.ClearTemplate()
	w.WriteHeader(http.StatusNoContent)
}

// parseIntDefault reads an integer query parameter with a fallback.
func parseIntDefault(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
