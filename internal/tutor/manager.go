package tutor

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ekaraca/tutorly/internal/activity"
	"github.com/ekaraca/tutorly/internal/oracle"
)

var ErrSessionNotFound = errors.New("session not found")

// Context ids name state directories on disk, so only a conservative
// character set is accepted from clients.
var contextIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Entry is the manager's bookkeeping around one live controller.
type Entry struct {
	ID             string
	ContextID      string
	Controller     *Controller
	CreatedAt      time.Time
	LastActivityAt time.Time
}

// StoreFactory yields the state store for one browsing-context analog. Each
// context owns exactly one identity slot and one session slot.
type StoreFactory func(contextID string) (StateStore, error)

// Manager tracks live session controllers and expires inactive ones.
type Manager struct {
	mu                sync.RWMutex
	sessions          map[string]*Entry
	storeFor          StoreFactory
	oracle            oracle.Client
	model             string
	sink              SubmissionSink
	inactivityTimeout time.Duration
	onExpire          func(*Entry)
}

func NewManager(storeFor StoreFactory, client oracle.Client, model string, sink SubmissionSink, inactivityTimeout time.Duration) *Manager {
	if inactivityTimeout <= 0 {
		inactivityTimeout = 30 * time.Minute
	}
	return &Manager{
		sessions:          make(map[string]*Entry),
		storeFor:          storeFor,
		oracle:            client,
		model:             model,
		sink:              sink,
		inactivityTimeout: inactivityTimeout,
	}
}

func (m *Manager) SetExpireHook(hook func(*Entry)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpire = hook
}

// Create builds a controller for the given activity, bound to the state
// slots of contextID. A blank contextID gets a fresh one, so resumption is
// opt-in: clients that present the same contextID again get their stored
// identity and session back.
func (m *Manager) Create(contextID string, cfg activity.Config) (*Entry, error) {
	if contextID == "" {
		contextID = uuid.NewString()
	} else if !contextIDPattern.MatchString(contextID) {
		return nil, fmt.Errorf("%w: invalid context id", ErrValidation)
	}
	store, err := m.storeFor(contextID)
	if err != nil {
		return nil, err
	}
	ctrl, err := NewController(cfg, m.oracle, m.model, store, m.sink)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	e := &Entry{
		ID:             uuid.NewString(),
		ContextID:      contextID,
		Controller:     ctrl,
		CreatedAt:      now,
		LastActivityAt: now,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[e.ID] = e
	return e, nil
}

func (m *Manager) Get(id string) (*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e, nil
}

func (m *Manager) Touch(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.sessions[id]; ok {
		e.LastActivityAt = time.Now().UTC()
	}
}

func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.expireInactive()
			}
		}
	}()
}

func (m *Manager) expireInactive() {
	now := time.Now().UTC()
	var expired []*Entry

	m.mu.Lock()
	for id, e := range m.sessions {
		if now.Sub(e.LastActivityAt) < m.inactivityTimeout {
			continue
		}
		expired = append(expired, e)
		delete(m.sessions, id)
	}
	hook := m.onExpire
	m.mu.Unlock()

	if hook != nil {
		for _, e := range expired {
			hook(e)
		}
	}
}
