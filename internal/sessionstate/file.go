// Package sessionstate persists learner identity and session snapshots in
// two independent slots, the client-storage analog of the tutoring engine.
package sessionstate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ekaraca/tutorly/internal/tutor"
)

const (
	identitySlot = "identity.txt"
	sessionSlot  = "session.json"
)

// FileStore keeps the two slots as files under one directory per context.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("sessionstate: dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) LoadIdentity() (string, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, identitySlot))
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read identity slot: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

func (s *FileStore) SaveIdentity(name string) error {
	if err := os.WriteFile(filepath.Join(s.dir, identitySlot), []byte(name+"\n"), 0o600); err != nil {
		return fmt.Errorf("write identity slot: %w", err)
	}
	return nil
}

// LoadSnapshot returns ok=false for a missing slot and for one that fails to
// decode: an unreadable snapshot is stale, not an error.
func (s *FileStore) LoadSnapshot() (tutor.Snapshot, bool, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, sessionSlot))
	if errors.Is(err, fs.ErrNotExist) {
		return tutor.Snapshot{}, false, nil
	}
	if err != nil {
		return tutor.Snapshot{}, false, fmt.Errorf("read session slot: %w", err)
	}
	var snap tutor.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return tutor.Snapshot{}, false, nil
	}
	return snap, true, nil
}

func (s *FileStore) SaveSnapshot(snap tutor.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode session slot: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, sessionSlot), raw, 0o600); err != nil {
		return fmt.Errorf("write session slot: %w", err)
	}
	return nil
}

func (s *FileStore) ClearSnapshot() error {
	err := os.Remove(filepath.Join(s.dir, sessionSlot))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear session slot: %w", err)
	}
	return nil
}
