package sessionstate

import (
	"sync"

	"github.com/ekaraca/tutorly/internal/tutor"
)

// MemoryStore is the in-process store used by tests and ephemeral sessions.
type MemoryStore struct {
	mu       sync.Mutex
	identity string
	snap     *tutor.Snapshot
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) LoadIdentity() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity, nil
}

func (s *MemoryStore) SaveIdentity(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = name
	return nil
}

func (s *MemoryStore) LoadSnapshot() (tutor.Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap == nil {
		return tutor.Snapshot{}, false, nil
	}
	return *s.snap, true, nil
}

func (s *MemoryStore) SaveSnapshot(snap tutor.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = &snap
	return nil
}

func (s *MemoryStore) ClearSnapshot() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = nil
	return nil
}

// HasSnapshot reports whether the session slot is occupied.
func (s *MemoryStore) HasSnapshot() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap != nil
}
