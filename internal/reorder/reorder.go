// Package reorder implements ordered-list reconciliation for drag-reordered
// collections (sections within a template, tasks within a section). A move is
// applied optimistically, persisted as one full ordering, and rolled back if
// the persist call fails, so the visible order never silently diverges from
// the server's.
package reorder

import (
	"context"
	"sort"
)

// Item is one member of an ordered collection: a stable identity plus its
// 1-based display rank.
type Item struct {
	ID       int64
	Position int
}

// Placement is one entry of the persisted ordering payload.
type Placement struct {
	ID       int64 `json:"id"`
	Position int   `json:"position"`
}

// State tracks the reconciliation lifecycle of a list.
type State int

const (
	// Stable means the displayed order matches the last known server order.
	Stable State = iota
	// Reordering means a move has been applied locally and the persist call
	// is in flight.
	Reordering
	// Confirmed means the server accepted the full ordering; the caller
	// should refetch the authoritative list and Reset.
	Confirmed
	// RolledBack means the persist call failed and the displayed order was
	// reverted to the pre-move snapshot.
	RolledBack
)

func (s State) String() string {
	switch s {
	case Stable:
		return "stable"
	case Reordering:
		return "reordering"
	case Confirmed:
		return "confirmed"
	case RolledBack:
		return "rolled-back"
	}
	return "unknown"
}

// PersistFunc writes the complete new ordering, one entry per item. Sending
// the whole collection instead of a delta trades payload size for eliminating
// partial-update ambiguity.
type PersistFunc func(ctx context.Context, items []Placement) error

// List is an in-memory ordered collection under reconciliation. The displayed
// order is the slice order, which the engine treats as ground truth; stored
// Position values may be stale relative to a concurrent edit.
type List struct {
	items []Item
	state State
}

// NewList builds a list from the fetched rows, sorted by position the way the
// views display them.
func NewList(items []Item) *List {
	sorted := append([]Item(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })
	return &List{items: sorted, state: Stable}
}

// Items returns a copy of the current displayed order.
func (l *List) Items() []Item {
	return append([]Item(nil), l.items...)
}

// State returns the current reconciliation state.
func (l *List) State() State {
	return l.state
}

// Reset replaces the contents with a freshly fetched authoritative order and
// returns the list to Stable.
func (l *List) Reset(items []Item) {
	sorted := append([]Item(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })
	l.items = sorted
	l.state = Stable
}

// indexOf finds an item by identity in the displayed order.
func (l *List) indexOf(id int64) int {
	for i, it := range l.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// Move drops the active item onto the over item: a single-element move in the
// displayed order followed by a dense renumber of the entire collection.
// It returns the full ordering payload, or nil when the drop is a no-op
// (self-drop, unknown identity, or fewer than two items).
func (l *List) Move(activeID, overID int64) []Placement {
	if activeID == overID || len(l.items) < 2 {
		return nil
	}
	oldIndex := l.indexOf(activeID)
	newIndex := l.indexOf(overID)
	if oldIndex < 0 || newIndex < 0 {
		return nil
	}

	moved := append([]Item(nil), l.items...)
	item := moved[oldIndex]
	moved = append(moved[:oldIndex], moved[oldIndex+1:]...)
	moved = append(moved[:newIndex], append([]Item{item}, moved[newIndex:]...)...)

	// Renumber every item, not just the affected range. This guarantees no
	// gaps or duplicates regardless of how many items moved past each other.
	placements := make([]Placement, len(moved))
	for i := range moved {
		moved[i].Position = i + 1
		placements[i] = Placement{ID: moved[i].ID, Position: moved[i].Position}
	}

	l.items = moved
	return placements
}

// Apply runs the full reconciliation for one drop: optimistic move, one
// persist call carrying the complete ordering, and either confirmation or a
// rollback to the pre-move order. A no-op drop issues no persist call and
// leaves the list Stable.
func (l *List) Apply(ctx context.Context, activeID, overID int64, persist PersistFunc) ([]Placement, error) {
	snapshot := append([]Item(nil), l.items...)

	placements := l.Move(activeID, overID)
	if placements == nil {
		l.state = Stable
		return nil, nil
	}

	l.state = Reordering
	if err := persist(ctx, placements); err != nil {
		l.items = snapshot
		l.state = RolledBack
		return nil, err
	}
	l.state = Confirmed
	return placements, nil
}
