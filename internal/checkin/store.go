package checkin

import (
	"sync"

	"checkpoint-backend/internal/domain"
)

// StatusStore is the in-memory projection of check-in state, keyed by
// (attendee, station). A missing key is the unchecked default, so an
// uncheck removes the key instead of storing a null row.
//
// Two writers touch it: the transition engine's optimistic applies and
// the reconciler's authoritative events. Last write to a key wins;
// the feed event for a slot always overrides any optimistic guess.
type StatusStore struct {
	mu       sync.RWMutex
	statuses map[domain.StatusKey]domain.CheckInStatus
}

func NewStatusStore() *StatusStore {
	return &StatusStore{
		statuses: make(map[domain.StatusKey]domain.CheckInStatus),
	}
}

// Get returns the status for a slot, defaulting to unchecked.
func (s *StatusStore) Get(key domain.StatusKey) domain.CheckInStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if st, ok := s.statuses[key]; ok {
		return st
	}

	return domain.Unchecked()
}

// Checked reports whether the slot has a granted passage.
func (s *StatusStore) Checked(key domain.StatusKey) bool {
	return s.Get(key).Checked()
}

// ApplyEvent folds an authoritative change event into the projection,
// overwriting the slot unconditionally. Applying the same event twice
// is a no-op in effect.
func (s *StatusStore) ApplyEvent(e domain.ChangeEvent) {
	s.set(e.Key(), e.Status())
}

// ApplyOptimistic writes the requested state before server
// confirmation and returns the pre-transition state for Rollback.
func (s *StatusStore) ApplyOptimistic(key domain.StatusKey, st domain.CheckInStatus) domain.CheckInStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.statuses[key]
	if !ok {
		prev = domain.Unchecked()
	}

	s.setLocked(key, st)

	return prev
}

// Rollback restores a slot to the snapshot ApplyOptimistic returned.
func (s *StatusStore) Rollback(key domain.StatusKey, prev domain.CheckInStatus) {
	s.set(key, prev)
}

// ReplaceAll swaps in a full authoritative load, dropping anything not
// present in it.
func (s *StatusStore) ReplaceAll(statuses map[domain.StatusKey]domain.CheckInStatus) {
	next := make(map[domain.StatusKey]domain.CheckInStatus, len(statuses))
	for key, st := range statuses {
		if st.Checked() {
			next[key] = st
		}
	}

	s.mu.Lock()
	s.statuses = next
	s.mu.Unlock()
}

// StatusesFor returns the per-station statuses of the given attendees,
// for joining into the roster.
func (s *StatusStore) StatusesFor(attendeeIDs []uint) map[uint]map[uint]domain.CheckInStatus {
	wanted := make(map[uint]struct{}, len(attendeeIDs))
	for _, id := range attendeeIDs {
		wanted[id] = struct{}{}
	}

	out := make(map[uint]map[uint]domain.CheckInStatus, len(attendeeIDs))

	s.mu.RLock()
	defer s.mu.RUnlock()

	for key, st := range s.statuses {
		if _, ok := wanted[key.AttendeeID]; !ok {
			continue
		}
		if out[key.AttendeeID] == nil {
			out[key.AttendeeID] = make(map[uint]domain.CheckInStatus)
		}
		out[key.AttendeeID][key.StationID] = st
	}

	return out
}

// CheckedAttendees returns the IDs of every attendee with a checked
// slot at the given station.
func (s *StatusStore) CheckedAttendees(stationID uint) []uint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []uint
	for key := range s.statuses {
		if key.StationID == stationID {
			ids = append(ids, key.AttendeeID)
		}
	}

	return ids
}

// Len returns the number of checked slots.
func (s *StatusStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.statuses)
}

func (s *StatusStore) set(key domain.StatusKey, st domain.CheckInStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setLocked(key, st)
}

func (s *StatusStore) setLocked(key domain.StatusKey, st domain.CheckInStatus) {
	if !st.Checked() {
		delete(s.statuses, key)
		return
	}

	s.statuses[key] = st
}
