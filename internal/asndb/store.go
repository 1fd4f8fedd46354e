package asndb

import "sync/atomic"

// Store holds the currently published dataset version behind an atomic
// pointer. Reads never block and never observe a partially built index;
// writes replace the whole version in one step.
type Store struct {
	current atomic.Pointer[Index]
}

// NewStore returns a store serving an empty dataset until the first Publish,
// so every lookup answers "not announced" rather than failing.
func NewStore() *Store {
	s := &Store{}
	s.current.Store(new(Index))
	return s
}

// Current returns the latest published snapshot. Callers must capture the
// snapshot once per request and run every lookup of that request against it,
// so all answers in one response come from the same dataset version.
func (s *Store) Current() *Index {
	return s.current.Load()
}

// Publish makes ix (which must be non-nil and fully built) the version
// returned by future Current calls. Readers holding an earlier snapshot are
// unaffected; the old version is reclaimed once the last of them drops it.
func (s *Store) Publish(ix *Index) {
	s.current.Store(ix)
}
