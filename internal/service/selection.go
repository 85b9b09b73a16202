package service

import (
	"sync"

	"github.com/rotisserie/eris"
)

// SelectionStore holds the one active facility id of a dashboard session.
// Select is the only mutator; it validates before committing, so the held id
// always resolves against the catalog.
type SelectionStore struct {
	catalog *Catalog

	// writeMu serializes Select calls including their notifications, so
	// subscribers see selections in commit order.
	writeMu sync.Mutex

	mu      sync.RWMutex
	current string
	nextSub int
	subs    map[int]func(Facility)
	order   []int
}

// NewSelectionStore creates a store selecting the first catalog record.
func NewSelectionStore(catalog *Catalog) *SelectionStore {
	return &SelectionStore{
		catalog: catalog,
		current: catalog.First().ID,
		subs:    make(map[int]func(Facility)),
	}
}

// Select replaces the held id and notifies subscribers before returning.
// An unknown id leaves the selection unchanged and notifies no one.
func (s *SelectionStore) Select(id string) error {
	rec, ok := s.catalog.Get(id)
	if !ok {
		return eris.Wrapf(ErrUnknownFacility, "select %q", id)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.current = id
	subs := make([]func(Facility), 0, len(s.order))
	for _, key := range s.order {
		subs = append(subs, s.subs[key])
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(rec)
	}
	return nil
}

// CurrentID returns the held id.
func (s *SelectionStore) CurrentID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Current resolves the held id against the catalog.
func (s *SelectionStore) Current() Facility {
	rec, _ := s.catalog.Get(s.CurrentID())
	return rec
}

// Subscribe registers fn to run after every successful Select, in
// registration order. The returned func removes the subscription.
//
// Callbacks run while Select holds the store's write lock and must not call
// Select themselves; that would deadlock.
func (s *SelectionStore) Subscribe(fn func(Facility)) (unsubscribe func()) {
	s.mu.Lock()
	key := s.nextSub
	s.nextSub++
	s.subs[key] = fn
	s.order = append(s.order, key)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, key)
			for i, k := range s.order {
				if k == key {
					s.order = append(s.order[:i], s.order[i+1:]...)
					break
				}
			}
		})
	}
}
