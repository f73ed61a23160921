package submission

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ekaraca/tutorly/internal/tutor"
)

// InMemoryStore keeps submissions in process memory. Used when neither a
// database URL nor a SQLite path is configured, and by tests.
type InMemoryStore struct {
	mu       sync.RWMutex
	learners map[string]Learner // keyed by identity
	items    map[string]Submission
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		learners: make(map[string]Learner),
		items:    make(map[string]Submission),
	}
}

func (s *InMemoryStore) Save(ctx context.Context, result tutor.Result) (Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	learner, ok := s.learners[result.LearnerIdentity]
	if !ok {
		learner = Learner{
			ID:        uuid.NewString(),
			Identity:  result.LearnerIdentity,
			CreatedAt: time.Now().UTC(),
		}
		s.learners[result.LearnerIdentity] = learner
	}

	sub := Submission{
		ID:              uuid.NewString(),
		LearnerID:       learner.ID,
		LearnerIdentity: learner.Identity,
		AgeGroup:        result.AgeGroup,
		Topic:           result.Topic,
		LearningOutcome: result.LearningOutcome,
		Transcript:      append([]tutor.Message(nil), result.Transcript...),
		Evaluation:      result.Evaluation,
		SubmittedAt:     time.Now().UTC(),
	}
	s.items[sub.ID] = sub
	return sub, nil
}

func (s *InMemoryStore) ListByLearner(ctx context.Context, identity string, limit int) ([]Submission, error) {
	if limit <= 0 {
		limit = 50
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Submission, 0, limit)
	for _, sub := range s.items {
		if sub.LearnerIdentity == identity {
			out = append(out, sub)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemoryStore) Get(ctx context.Context, id string) (Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.items[id]
	if !ok {
		return Submission{}, ErrNotFound
	}
	return sub, nil
}

func (s *InMemoryStore) Close() error { return nil }
