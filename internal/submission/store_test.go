package submission

import (
	"context"
	"errors"
	"testing"

	"github.com/ekaraca/tutorly/internal/tutor"
)

func testResult(identity string) tutor.Result {
	return tutor.Result{
		LearnerIdentity: identity,
		AgeGroup:        "7-8",
		Topic:           "Fractions",
		LearningOutcome: "Adds simple fractions",
		Transcript: []tutor.Message{
			{Role: tutor.RoleAssistant, Content: "## Fractions\nLet's begin ❓"},
			{Role: tutor.RoleUser, Content: "1/2 + 1/2 = 1"},
			{Role: tutor.RoleAssistant, Content: "## Great 🎉"},
			{Role: tutor.RoleUser, Content: "thanks"},
		},
		Evaluation: tutor.Evaluation{Score: 100, Strengths: "complete answers"},
	}
}

func TestInMemoryStoreSaveAndGet(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	sub, err := s.Save(ctx, testResult("Ayşe"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if sub.ID == "" || sub.LearnerID == "" {
		t.Fatalf("Save() returned incomplete record: %+v", sub)
	}
	if len(sub.Transcript) != 4 {
		t.Fatalf("transcript length = %d, want 4", len(sub.Transcript))
	}
	if sub.Evaluation.Score != 100 {
		t.Fatalf("evaluation score = %d, want 100", sub.Evaluation.Score)
	}

	got, err := s.Get(ctx, sub.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Topic != "Fractions" || got.LearnerIdentity != "Ayşe" {
		t.Fatalf("Get() = %+v", got)
	}

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestInMemoryStoreListNewestFirstAndLearnerReuse(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	first, err := s.Save(ctx, testResult("Ayşe"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	second, err := s.Save(ctx, testResult("Ayşe"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if first.LearnerID != second.LearnerID {
		t.Fatalf("same identity should reuse learner: %q vs %q", first.LearnerID, second.LearnerID)
	}
	if _, err := s.Save(ctx, testResult("Deniz")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.ListByLearner(ctx, "Ayşe", 0)
	if err != nil {
		t.Fatalf("ListByLearner() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListByLearner() returned %d items, want 2", len(got))
	}
	if got[0].SubmittedAt.Before(got[1].SubmittedAt) {
		t.Fatalf("submissions not newest-first")
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	s, err := NewSQLiteStore(t.TempDir() + "/submissions.db")
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	saved, err := s.Save(ctx, testResult("Ayşe"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.Get(ctx, saved.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.LearnerIdentity != "Ayşe" || len(got.Transcript) != 4 || got.Evaluation.Score != 100 {
		t.Fatalf("Get() = %+v", got)
	}

	again, err := s.Save(ctx, testResult("Ayşe"))
	if err != nil {
		t.Fatalf("second Save() error = %v", err)
	}
	if again.LearnerID != saved.LearnerID {
		t.Fatalf("same identity should reuse learner: %q vs %q", again.LearnerID, saved.LearnerID)
	}

	list, err := s.ListByLearner(ctx, "Ayşe", 10)
	if err != nil {
		t.Fatalf("ListByLearner() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("ListByLearner() returned %d items, want 2", len(list))
	}

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) error = %v, want ErrNotFound", err)
	}
}
