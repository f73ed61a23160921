package tutor

import (
	"errors"
	"testing"
	"time"

	"github.com/ekaraca/tutorly/internal/oracle"
)

func newTestManager() *Manager {
	storeFor := func(contextID string) (StateStore, error) {
		return &memStore{}, nil
	}
	return NewManager(storeFor, oracle.NewMockClient(), "test-model", &fakeSink{id: "x"}, time.Minute)
}

func TestManagerCreateAndGet(t *testing.T) {
	m := newTestManager()

	e, err := m.Create("", testActivity())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if e.ID == "" || e.ContextID == "" {
		t.Fatalf("entry missing identifiers: %+v", e)
	}

	got, err := m.Get(e.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != e {
		t.Fatalf("Get() returned a different entry")
	}
	if _, err := m.Get("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Get(missing) error = %v, want ErrSessionNotFound", err)
	}

	m.Remove(e.ID)
	if n := m.ActiveCount(); n != 0 {
		t.Fatalf("ActiveCount() = %d after remove, want 0", n)
	}
}

func TestManagerKeepsContextID(t *testing.T) {
	m := newTestManager()

	e, err := m.Create("ctx-42", testActivity())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if e.ContextID != "ctx-42" {
		t.Fatalf("ContextID = %q, want %q", e.ContextID, "ctx-42")
	}
}

func TestManagerRejectsUnsafeContextID(t *testing.T) {
	m := newTestManager()

	for _, id := range []string{"../../etc", "a/b", "spaced id", "ünicode"} {
		if _, err := m.Create(id, testActivity()); !errors.Is(err, ErrValidation) {
			t.Fatalf("Create(%q) error = %v, want ErrValidation", id, err)
		}
	}
}

func TestManagerExpiresInactiveSessions(t *testing.T) {
	m := newTestManager()

	stale, err := m.Create("", testActivity())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	fresh, err := m.Create("", testActivity())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	stale.LastActivityAt = time.Now().UTC().Add(-time.Hour)

	var expired []string
	m.SetExpireHook(func(e *Entry) { expired = append(expired, e.ID) })
	m.expireInactive()

	if len(expired) != 1 || expired[0] != stale.ID {
		t.Fatalf("expired = %v, want exactly [%s]", expired, stale.ID)
	}
	if _, err := m.Get(fresh.ID); err != nil {
		t.Fatalf("fresh session expired unexpectedly: %v", err)
	}
	if n := m.ActiveCount(); n != 1 {
		t.Fatalf("ActiveCount() = %d, want 1", n)
	}
}
