// Package draft holds the staged, uncommitted edits of a checklist run. A
// draft lives in memory only, keyed by work order and checklist row; it moves
// through explicit transitions (begin/update, discard, commit) instead of
// living in ambient per-view maps. Nothing here survives a restart, by design.
package draft

import "sync"

// ChecklistDraft is the staged edit of one checklist row. Nil fields are
// untouched; set fields override what the row currently shows.
type ChecklistDraft struct {
	Status        *string `json:"status,omitempty"`
	Observation   *string `json:"observation,omitempty"`
	ActualMinutes *int    `json:"actual_minutes,omitempty"`
	PhotoURL      *string `json:"photo_url,omitempty"`
}

// merge overlays the set fields of patch onto d.
func (d ChecklistDraft) merge(patch ChecklistDraft) ChecklistDraft {
	if patch.Status != nil {
		d.Status = patch.Status
	}
	if patch.Observation != nil {
		d.Observation = patch.Observation
	}
	if patch.ActualMinutes != nil {
		d.ActualMinutes = patch.ActualMinutes
	}
	if patch.PhotoURL != nil {
		d.PhotoURL = patch.PhotoURL
	}
	return d
}

// Store keeps checklist drafts per work order.
type Store struct {
	mu     sync.Mutex
	drafts map[int64]map[int64]ChecklistDraft
}

// NewStore creates an empty draft store.
func NewStore() *Store {
	return &Store{drafts: make(map[int64]map[int64]ChecklistDraft)}
}

// Stage begins or updates the draft for one checklist row, merging the patch
// over whatever was staged before, and returns the staged result.
func (s *Store) Stage(orderID, taskID int64, patch ChecklistDraft) ChecklistDraft {
	s.mu.Lock()
	defer s.mu.Unlock()

	byTask, ok := s.drafts[orderID]
	if !ok {
		byTask = make(map[int64]ChecklistDraft)
		s.drafts[orderID] = byTask
	}
	merged := byTask[taskID].merge(patch)
	byTask[taskID] = merged
	return merged
}

// Get returns the staged draft for a row, if any.
func (s *Store) Get(orderID, taskID int64) (ChecklistDraft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[orderID][taskID]
	return d, ok
}

// Discard drops the staged draft for a row.
func (s *Store) Discard(orderID, taskID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts[orderID], taskID)
	if len(s.drafts[orderID]) == 0 {
		delete(s.drafts, orderID)
	}
}

// Commit removes and returns the staged draft for a row. The caller persists
// it; a failed persist re-stages via Stage so the user can retry.
func (s *Store) Commit(orderID, taskID int64) (ChecklistDraft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[orderID][taskID]
	if ok {
		delete(s.drafts[orderID], taskID)
		if len(s.drafts[orderID]) == 0 {
			delete(s.drafts, orderID)
		}
	}
	return d, ok
}

// ForOrder returns a copy of every staged draft of one work order.
func (s *Store) ForOrder(orderID int64) map[int64]ChecklistDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int64]ChecklistDraft, len(s.drafts[orderID]))
	for id, d := range s.drafts[orderID] {
		out[id] = d
	}
	return out
}
