// Package history keeps a bounded linear undo/redo stack of full table
// snapshots. Snapshots are whole-list deep copies; with the 50-row table
// limit that is cheaper than maintaining operation diffs and cannot drift
// out of sync with the table.
package history

import "github.com/swipswaps/marketplace-bulk-editor/internal/listing"

// MaxSnapshots bounds memory: once exceeded, the oldest snapshot falls off.
const MaxSnapshots = 50

// Stack is the undo/redo state machine: a snapshot list plus a cursor.
// It is a pure in-memory structure; operations at the boundaries no-op
// instead of failing.
//
// Stack is not safe for concurrent use; the owning editor session
// serializes access.
type Stack struct {
	snapshots [][]listing.Listing
	cursor    int
}

// New starts a stack with one snapshot of the initial table state, so the
// first edit can be undone back to it.
func New(initial []listing.Listing) *Stack {
	return &Stack{snapshots: [][]listing.Listing{listing.CloneAll(initial)}}
}

// Push records the table state after a mutation. Any redo states beyond
// the cursor are discarded first: an edit after an undo abandons that
// branch, which is standard linear undo semantics.
func (s *Stack) Push(rows []listing.Listing) {
	s.snapshots = append(s.snapshots[:s.cursor+1], listing.CloneAll(rows))
	if len(s.snapshots) > MaxSnapshots {
		s.snapshots = s.snapshots[len(s.snapshots)-MaxSnapshots:]
	}
	s.cursor = len(s.snapshots) - 1
}

// Undo steps the cursor back and returns that snapshot. At the oldest
// snapshot it returns (nil, false) and changes nothing.
func (s *Stack) Undo() ([]listing.Listing, bool) {
	if s.cursor == 0 {
		return nil, false
	}
	s.cursor--
	return listing.CloneAll(s.snapshots[s.cursor]), true
}

// Redo steps the cursor forward and returns that snapshot. At the newest
// snapshot it returns (nil, false) and changes nothing.
func (s *Stack) Redo() ([]listing.Listing, bool) {
	if s.cursor >= len(s.snapshots)-1 {
		return nil, false
	}
	s.cursor++
	return listing.CloneAll(s.snapshots[s.cursor]), true
}

// CanUndo reports whether Undo would succeed.
func (s *Stack) CanUndo() bool { return s.cursor > 0 }

// CanRedo reports whether Redo would succeed.
func (s *Stack) CanRedo() bool { return s.cursor < len(s.snapshots)-1 }

// Len returns the number of retained snapshots.
func (s *Stack) Len() int { return len(s.snapshots) }
