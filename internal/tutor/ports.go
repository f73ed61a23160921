package tutor

import (
	"context"

	"github.com/ekaraca/tutorly/internal/activity"
)

// Snapshot is the persisted form of a live session: identity, activity
// config and conversation state. It is restored only when both the stored
// config and the stored identity exactly match the current ones.
type Snapshot struct {
	LearnerIdentity string          `json:"learner_identity"`
	Config          activity.Config `json:"config"`
	Messages        []Message       `json:"messages"`
	Evaluation      *Evaluation     `json:"evaluation,omitempty"`
}

// StateStore persists learner identity and the session snapshot in two
// independent slots. Identity outlives sessions; a snapshot does not survive
// an activity-config mismatch. Implementations treat decode failures as "no
// stored value", never as an error the controller must handle.
type StateStore interface {
	LoadIdentity() (string, error)
	SaveIdentity(name string) error
	LoadSnapshot() (Snapshot, bool, error)
	SaveSnapshot(snap Snapshot) error
	ClearSnapshot() error
}

// Result is the finalized record handed to the submission sink: activity
// fields, the non-system transcript and the final committed evaluation.
type Result struct {
	LearnerIdentity string     `json:"learner_identity"`
	AgeGroup        string     `json:"age_group"`
	Topic           string     `json:"topic"`
	LearningOutcome string     `json:"learning_outcome"`
	Transcript      []Message  `json:"transcript"`
	Evaluation      Evaluation `json:"evaluation"`
}

// SubmissionSink receives exactly one Result per finalize action. The id is
// sink-assigned and may be empty for sinks that do not report one.
type SubmissionSink interface {
	Submit(ctx context.Context, result Result) (id string, err error)
}
