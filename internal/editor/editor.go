// Package editor owns the in-memory table state for editing sessions. A
// session holds the row list, the undo/redo stack, and the captured
// template; every mutating operation snapshots the resulting row list so
// the whole table edit history stays linear and bounded.
package editor

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/swipswaps/marketplace-bulk-editor/internal/history"
	"github.com/swipswaps/marketplace-bulk-editor/internal/listing"
	"github.com/swipswaps/marketplace-bulk-editor/internal/template"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrRowNotFound     = errors.New("row not found")
	ErrUnknownField    = errors.New("unknown field")
)

// Session is one table-editing session. All methods are safe for
// concurrent use; a single mutex serializes row access.
type Session struct {
	ID string

	mu       sync.Mutex
	rows     []listing.Listing
	hist     *history.Stack
	tmpl     *template.Template
	lastUsed time.Time
}

// Manager tracks live sessions and reaps idle ones.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
}

// NewManager creates a Manager whose sessions expire after ttl idle time.
func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

// Create starts an empty session.
func (m *Manager) Create() *Session {
	s := &Session{
		ID:       uuid.NewString(),
		hist:     history.New(nil),
		lastUsed: time.Now(),
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get looks up a session and refreshes its idle timer.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.mu.Lock()
	s.lastUsed = time.Now()
	s.mu.Unlock()
	return s, nil
}

// Delete drops a session immediately.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Reap drops sessions idle longer than the TTL and returns the count.
func (m *Manager) Reap() int {
	cutoff := time.Now().Add(-m.ttl)
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id, s := range m.sessions {
		s.mu.Lock()
		idle := s.lastUsed.Before(cutoff)
		s.mu.Unlock()
		if idle {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// StartReaper runs Reap on an interval until ctx is done. Call from main
// as a goroutine.
func (m *Manager) StartReaper(done <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			m.Reap()
		}
	}
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Rows returns a deep copy of the current table.
func (s *Session) Rows() []listing.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return listing.CloneAll(s.rows)
}

// commit replaces the table and snapshots it. Callers hold s.mu.
func (s *Session) commit(rows []listing.Listing) {
	s.rows = rows
	s.hist.Push(rows)
}

// Append merges imported rows onto the existing table, matching the
// original drag-and-drop behavior where each dropped file appends.
func (s *Session) Append(rows []listing.Listing) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	merged := append(listing.CloneAll(s.rows), listing.CloneAll(rows)...)
	s.commit(merged)
	return len(merged)
}

// AddRow appends one blank listing and returns it.
func (s *Session) AddRow() listing.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := listing.New()
	s.commit(append(listing.CloneAll(s.rows), l))
	return l
}

// UpdateRow applies field edits to one row. Field names are accepted in
// either external ("OFFER SHIPPING") or snake_case (offer_shipping) form.
func (s *Session) UpdateRow(id string, fields map[string]string) (listing.Listing, error) {
	for f := range fields {
		if canonicalField(f) == "" {
			return listing.Listing{}, ErrUnknownField
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows := listing.CloneAll(s.rows)
	for i := range rows {
		if rows[i].ID != id {
			continue
		}
		for f, v := range fields {
			rows[i].SetColumn(canonicalField(f), v)
		}
		// A manual edit supersedes the import-time default for the field.
		rows[i].AutoFilled = pruneAnnotations(rows[i].AutoFilled, fields)
		s.commit(rows)
		return rows[i], nil
	}
	return listing.Listing{}, ErrRowNotFound
}

// DuplicateRow copies a row under a fresh ID, inserted right after the
// original.
func (s *Session) DuplicateRow(id string) (listing.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := listing.CloneAll(s.rows)
	for i := range rows {
		if rows[i].ID != id {
			continue
		}
		dup := rows[i].Clone()
		dup.ID = uuid.NewString()
		rows = append(rows[:i+1], append([]listing.Listing{dup}, rows[i+1:]...)...)
		s.commit(rows)
		return dup, nil
	}
	return listing.Listing{}, ErrRowNotFound
}

// DeleteRows removes rows by ID and returns how many were deleted.
// Unknown IDs are ignored.
func (s *Session) DeleteRows(ids []string) int {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([]listing.Listing, 0, len(s.rows))
	deleted := 0
	for _, r := range s.rows {
		if drop[r.ID] {
			deleted++
			continue
		}
		rows = append(rows, r.Clone())
	}
	if deleted > 0 {
		s.commit(rows)
	}
	return deleted
}

// BulkEdit sets one field across the given rows and returns how many rows
// changed.
func (s *Session) BulkEdit(ids []string, field, value string) (int, error) {
	col := canonicalField(field)
	if col == "" {
		return 0, ErrUnknownField
	}
	target := make(map[string]bool, len(ids))
	for _, id := range ids {
		target[id] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows := listing.CloneAll(s.rows)
	edited := 0
	for i := range rows {
		if !target[rows[i].ID] {
			continue
		}
		rows[i].SetColumn(col, value)
		rows[i].AutoFilled = pruneAnnotations(rows[i].AutoFilled, map[string]string{col: value})
		edited++
	}
	if edited > 0 {
		s.commit(rows)
	}
	return edited, nil
}

// Clear empties the table. The cleared state is itself a snapshot, so
// clear-all is undoable.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commit(nil)
}

// Undo restores the previous snapshot; false means there was nothing to
// undo.
func (s *Session) Undo() ([]listing.Listing, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.hist.Undo()
	if ok {
		s.rows = rows
	}
	return listing.CloneAll(s.rows), ok
}

// Redo restores the next snapshot; false means there was nothing to redo.
func (s *Session) Redo() ([]listing.Listing, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.hist.Redo()
	if ok {
		s.rows = rows
	}
	return listing.CloneAll(s.rows), ok
}

// CanUndo reports whether an undo step is available.
func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.CanUndo()
}

// CanRedo reports whether a redo step is available.
func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.CanRedo()
}

// SetTemplate stores the captured template for the session.
func (s *Session) SetTemplate(t *template.Template) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tmpl = t
}

// Template returns the session template, or nil when none is loaded.
func (s *Session) Template() *template.Template {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tmpl
}

// ClearTemplate drops the session template.
func (s *Session) ClearTemplate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tmpl = nil
}

// CategorySuggestions returns the distinct categories already present in
// the table that start with prefix (case-insensitive), sorted. This feeds
// the category autocomplete.
func (s *Session) CategorySuggestions(prefix string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	lower := strings.ToLower(strings.TrimSpace(prefix))
	seen := make(map[string]bool)
	var out []string
	for _, r := range s.rows {
		c := strings.TrimSpace(r.Category)
		if c == "" || seen[strings.ToLower(c)] {
			continue
		}
		if lower != "" && !strings.HasPrefix(strings.ToLower(c), lower) {
			continue
		}
		seen[strings.ToLower(c)] = true
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// canonicalField resolves a field name in either naming convention to the
// external column, or "" when unknown.
func canonicalField(name string) string {
	key := strings.ToUpper(strings.TrimSpace(name))
	key = strings.ReplaceAll(key, "_", " ")
	for _, col := range listing.Columns {
		if key == col {
			return col
		}
	}
	return ""
}

// pruneAnnotations drops auto-fill annotations for fields the user has now
// edited by hand.
func pruneAnnotations(notes []listing.AutoFilledField, edited map[string]string) []listing.AutoFilledField {
	if len(notes) == 0 {
		return notes
	}
	editedCols := make(map[string]bool, len(edited))
	for f := range edited {
		editedCols[canonicalField(f)] = true
	}
	out := notes[:0]
	for _, n := range notes {
		if !editedCols[n.Field] {
			out = append(out, n)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
