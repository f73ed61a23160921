// Package submission persists finalized tutoring transcripts and their
// evaluations, and adapts stores and remote endpoints to the engine's sink.
package submission

import (
	"context"
	"errors"
	"time"

	"github.com/ekaraca/tutorly/internal/tutor"
)

var ErrNotFound = errors.New("submission not found")

// Learner is the persisted identity a submission belongs to. Learners are
// keyed by the bare identity string the session engine collects.
type Learner struct {
	ID        string    `json:"id"`
	Identity  string    `json:"identity"`
	CreatedAt time.Time `json:"created_at"`
}

// Submission is one finalized session: activity fields, the non-system
// transcript and the final committed evaluation.
type Submission struct {
	ID              string           `json:"id"`
	LearnerID       string           `json:"learner_id"`
	LearnerIdentity string           `json:"learner_identity"`
	AgeGroup        string           `json:"age_group"`
	Topic           string           `json:"topic"`
	LearningOutcome string           `json:"learning_outcome"`
	Transcript      []tutor.Message  `json:"transcript"`
	Evaluation      tutor.Evaluation `json:"evaluation"`
	SubmittedAt     time.Time        `json:"submitted_at"`
}

// Store persists submissions. Save upserts the learner by identity and
// inserts exactly one submission record.
type Store interface {
	Save(ctx context.Context, result tutor.Result) (Submission, error)
	ListByLearner(ctx context.Context, identity string, limit int) ([]Submission, error)
	Get(ctx context.Context, id string) (Submission, error)
	Close() error
}
