package results

import (
	"sync"
	"time"
)

// Store is an ordered, most-recent-first, in-memory collection of
// captured results. It lives for the process lifetime only. The HTTP
// layer mutates it from multiple goroutines, so access is guarded.
type Store struct {
	mu     sync.RWMutex
	items  []*Result
	nextID int64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{nextID: 1}
}

// Append assigns the result a unique, monotonically increasing ID,
// stamps it if the caller left the timestamp zero, and prepends it so
// the newest result is first. The stored result is returned.
func (s *Store) Append(r *Result) *Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.ID = s.nextID
	s.nextID++
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}

	s.items = append([]*Result{r}, s.items...)
	return r
}

// Remove deletes the result with the given ID. Removing an absent ID
// is a no-op.
func (s *Store) Remove(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.items {
		if r.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

// Get returns the result with the given ID.
func (s *Store) Get(id int64) (*Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.items {
		if r.ID == id {
			return r, true
		}
	}
	return nil, false
}

// List returns the current ordered sequence, newest first.
func (s *Store) List() []*Result {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Result, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of stored results.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
