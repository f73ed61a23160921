package tutor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/ekaraca/tutorly/internal/activity"
	"github.com/ekaraca/tutorly/internal/oracle"
	"github.com/ekaraca/tutorly/internal/prompt"
)

// State is the controller's position in the session lifecycle.
type State string

const (
	StateAwaitingIdentity State = "awaiting_identity"
	StateInitializing     State = "initializing"
	StateAwaitingInput    State = "awaiting_input"
	StateAwaitingOracle   State = "awaiting_oracle"
	StateFinalizable      State = "finalizable"
	StateSubmitting       State = "submitting"
)

var (
	// ErrValidation marks learner input rejected before any network call:
	// empty identity, empty answer, or finalizing with nothing to submit.
	ErrValidation = errors.New("validation failed")
	// ErrBusy marks an operation arriving while the controller is not in a
	// state that accepts it (e.g. a submission mid-oracle-call).
	ErrBusy = errors.New("session is busy")
	// ErrSuperseded marks a late result from an exchange that a restart or
	// finalize has since invalidated. The result is discarded.
	ErrSuperseded = errors.New("exchange superseded")
	// ErrSinkUnavailable wraps submission-sink failures. The session stays
	// finalizable so the learner may retry, restart or continue.
	ErrSinkUnavailable = errors.New("submission sink unavailable")
)

// TurnResult is what one successful exchange produced.
type TurnResult struct {
	Reply      Message    `json:"reply"`
	Evaluation Evaluation `json:"evaluation"`
	Delta      int        `json:"delta"`
	Completed  bool       `json:"completed"`
}

// SessionView is a read-only copy of controller state for rendering.
type SessionView struct {
	State           State           `json:"state"`
	LearnerIdentity string          `json:"learner_identity,omitempty"`
	Config          activity.Config `json:"config"`
	Score           int             `json:"score"`
	Transcript      []Message       `json:"transcript"`
	Evaluation      *Evaluation     `json:"evaluation,omitempty"`
}

// Controller owns one learner/activity session and drives its lifecycle:
// identity gate, initialization, turn exchange, completion detection,
// restart and finalize. All operations are strictly sequential; a learner
// submission is only accepted while the controller awaits input.
type Controller struct {
	mu       sync.Mutex
	state    State
	cfg      activity.Config
	identity string
	messages []Message
	eval     *Evaluation
	gen      uint64

	oracle oracle.Client
	model  string
	store  StateStore
	sink   SubmissionSink
}

// NewController resolves the initial state from the store: a persisted
// identity skips the gate, and a matching stored session restores directly
// into awaiting-input. No network calls happen here; when the resulting
// state is Initializing the caller drives the first exchange via Start.
func NewController(cfg activity.Config, client oracle.Client, model string, store StateStore, sink SubmissionSink) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Controller{
		state:  StateAwaitingIdentity,
		cfg:    cfg,
		oracle: client,
		model:  model,
		store:  store,
		sink:   sink,
	}

	identity, err := store.LoadIdentity()
	if err != nil {
		return nil, fmt.Errorf("load identity: %w", err)
	}
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return c, nil
	}

	c.identity = identity
	if c.restoreLocked() {
		c.state = StateAwaitingInput
	} else {
		c.state = StateInitializing
	}
	return c, nil
}

// restoreLocked loads the stored snapshot and adopts it when it matches the
// current config and identity. Any mismatch means the snapshot is stale and
// is discarded rather than merged.
func (c *Controller) restoreLocked() bool {
	snap, ok, err := c.store.LoadSnapshot()
	if err != nil || !ok {
		return false
	}
	if !snap.Config.Equal(c.cfg) || snap.LearnerIdentity != c.identity {
		return false
	}
	if len(WithoutSystem(snap.Messages)) == 0 && snap.Evaluation == nil {
		return false
	}
	c.messages = append([]Message(nil), snap.Messages...)
	c.eval = snap.Evaluation
	return true
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Score reports the last committed score, zero before the first evaluation.
func (c *Controller) Score() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scoreLocked()
}

func (c *Controller) scoreLocked() int {
	if c.eval == nil {
		return 0
	}
	return c.eval.Score
}

// View returns a copy of the current session for rendering. The system
// grounding message is excluded.
func (c *Controller) View() SessionView {
	c.mu.Lock()
	defer c.mu.Unlock()
	view := SessionView{
		State:           c.state,
		LearnerIdentity: c.identity,
		Config:          c.cfg,
		Score:           c.scoreLocked(),
		Transcript:      WithoutSystem(c.messages),
	}
	if c.eval != nil {
		ev := *c.eval
		view.Evaluation = &ev
	}
	return view
}

// SubmitIdentity passes the identity gate. Empty names are rejected with no
// state change. A valid prior session for this identity and config resumes
// directly; otherwise the first exchange runs.
func (c *Controller) SubmitIdentity(ctx context.Context, name string) (TurnResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return TurnResult{}, fmt.Errorf("%w: name is required", ErrValidation)
	}

	c.mu.Lock()
	if c.state != StateAwaitingIdentity {
		c.mu.Unlock()
		return TurnResult{}, fmt.Errorf("%w: identity already established", ErrBusy)
	}
	c.identity = name
	if err := c.store.SaveIdentity(name); err != nil {
		log.Printf("tutor: persist identity failed: %v", err)
	}
	if c.restoreLocked() {
		c.state = StateAwaitingInput
		result := c.resumedResultLocked()
		c.mu.Unlock()
		return result, nil
	}
	c.state = StateInitializing
	c.mu.Unlock()

	return c.Start(ctx)
}

func (c *Controller) resumedResultLocked() TurnResult {
	result := TurnResult{}
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Role == RoleAssistant {
			result.Reply = c.messages[i]
			break
		}
	}
	if c.eval != nil {
		result.Evaluation = *c.eval
		result.Completed = c.eval.Score == 100
	}
	return result
}

// Start runs the initialization exchange: grounding instruction out, first
// assistant question and evaluation back. A failure leaves the controller in
// Initializing, retryable by calling Start again or restarting.
func (c *Controller) Start(ctx context.Context) (TurnResult, error) {
	c.mu.Lock()
	if c.state != StateInitializing {
		state := c.state
		c.mu.Unlock()
		return TurnResult{}, fmt.Errorf("%w: cannot initialize from %s", ErrBusy, state)
	}
	gen := c.gen
	system := Message{Role: RoleSystem, Content: prompt.BuildSystemInstruction(c.cfg)}
	history := []Message{system}
	c.mu.Unlock()

	raw, err := c.oracle.Complete(ctx, toOracleMessages(history), c.model)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return TurnResult{}, ErrSuperseded
	}
	if err != nil {
		return TurnResult{}, err
	}

	ev, next, err := ParseReply(raw)
	if err != nil {
		return TurnResult{}, err
	}
	committed, delta := CommitScore(0, ev.Score)
	ev.Score = committed

	reply := Message{Role: RoleAssistant, Content: next}
	c.messages = append(history, reply)
	c.eval = &ev
	c.state = StateAwaitingInput
	c.persistLocked()

	return TurnResult{Reply: reply, Evaluation: ev, Delta: delta, Completed: committed == 100}, nil
}

// SubmitAnswer runs one learner turn. On any failure the pending learner
// message is not appended: state after a failed exchange equals state before
// the call, and resubmitting re-sends the same context.
func (c *Controller) SubmitAnswer(ctx context.Context, text string) (TurnResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return TurnResult{}, fmt.Errorf("%w: answer is required", ErrValidation)
	}

	c.mu.Lock()
	if c.state != StateAwaitingInput {
		state := c.state
		c.mu.Unlock()
		return TurnResult{}, fmt.Errorf("%w: cannot accept input from %s", ErrBusy, state)
	}
	gen := c.gen
	pending := Message{Role: RoleUser, Content: text}
	history := make([]Message, 0, len(c.messages)+1)
	history = append(history, c.messages...)
	history = append(history, pending)
	previous := c.scoreLocked()
	c.state = StateAwaitingOracle
	c.mu.Unlock()

	raw, err := c.oracle.Complete(ctx, toOracleMessages(history), c.model)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		// A restart or finalize happened while the call was in flight; the
		// new session must not observe this result.
		return TurnResult{}, ErrSuperseded
	}
	if err != nil {
		c.state = StateAwaitingInput
		return TurnResult{}, err
	}

	ev, next, err := ParseReply(raw)
	if err != nil {
		c.state = StateAwaitingInput
		return TurnResult{}, err
	}
	committed, delta := CommitScore(previous, ev.Score)
	ev.Score = committed

	reply := Message{Role: RoleAssistant, Content: next}
	c.messages = append(history, reply)
	c.eval = &ev
	if committed == 100 {
		c.state = StateFinalizable
	} else {
		c.state = StateAwaitingInput
	}
	c.persistLocked()

	return TurnResult{Reply: reply, Evaluation: ev, Delta: delta, Completed: committed == 100}, nil
}

// Restart clears the stored session and starts over from score zero.
func (c *Controller) Restart(ctx context.Context) (TurnResult, error) {
	c.mu.Lock()
	switch c.state {
	case StateAwaitingIdentity, StateAwaitingOracle, StateSubmitting:
		state := c.state
		c.mu.Unlock()
		return TurnResult{}, fmt.Errorf("%w: cannot restart from %s", ErrBusy, state)
	}
	c.gen++
	c.messages = nil
	c.eval = nil
	if err := c.store.ClearSnapshot(); err != nil {
		log.Printf("tutor: clear session slot failed: %v", err)
	}
	c.state = StateInitializing
	c.mu.Unlock()

	return c.Start(ctx)
}

// Finalize builds the submission record from the non-system transcript and
// the final evaluation and hands it to the sink. On success the active
// session is cleared and the controller re-enters Initializing; on sink
// failure nothing changes and the learner may retry, restart or continue.
func (c *Controller) Finalize(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.state != StateFinalizable && c.state != StateAwaitingInput {
		state := c.state
		c.mu.Unlock()
		return "", fmt.Errorf("%w: cannot finalize from %s", ErrBusy, state)
	}
	transcript := WithoutSystem(c.messages)
	if c.eval == nil || len(transcript) == 0 {
		c.mu.Unlock()
		return "", fmt.Errorf("%w: nothing to submit yet", ErrValidation)
	}
	previous := c.state
	gen := c.gen
	result := Result{
		LearnerIdentity: c.identity,
		AgeGroup:        c.cfg.AgeGroup,
		Topic:           c.cfg.Topic,
		LearningOutcome: c.cfg.LearningOutcome,
		Transcript:      transcript,
		Evaluation:      *c.eval,
	}
	c.state = StateSubmitting
	c.mu.Unlock()

	id, err := c.sink.Submit(ctx, result)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return "", ErrSuperseded
	}
	if err != nil {
		c.state = previous
		return "", fmt.Errorf("%w: %v", ErrSinkUnavailable, err)
	}

	c.gen++
	c.messages = nil
	c.eval = nil
	if clearErr := c.store.ClearSnapshot(); clearErr != nil {
		log.Printf("tutor: clear session slot failed: %v", clearErr)
	}
	c.state = StateInitializing
	return id, nil
}

// Continue returns to the exchange loop without finalizing, even though the
// score cap is reached. Finalization is always a learner choice.
func (c *Controller) Continue() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateFinalizable {
		return fmt.Errorf("%w: cannot continue from %s", ErrBusy, c.state)
	}
	c.state = StateAwaitingInput
	return nil
}

// persistLocked writes the snapshot off the turn path. Empty sessions are
// skipped so a fresh controller cannot overwrite a valid prior snapshot
// before the learner is established. The write re-checks the generation
// under the lock, so a save still in flight when finalize or restart clears
// the slot is discarded instead of re-filling it.
func (c *Controller) persistLocked() {
	if c.identity == "" {
		return
	}
	if len(WithoutSystem(c.messages)) == 0 && c.eval == nil {
		return
	}
	snap := Snapshot{
		LearnerIdentity: c.identity,
		Config:          c.cfg,
		Messages:        append([]Message(nil), c.messages...),
	}
	if c.eval != nil {
		ev := *c.eval
		snap.Evaluation = &ev
	}
	gen := c.gen
	go func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.gen != gen {
			return
		}
		if err := c.store.SaveSnapshot(snap); err != nil {
			log.Printf("tutor: persist session failed: %v", err)
		}
	}()
}

func toOracleMessages(messages []Message) []oracle.Message {
	out := make([]oracle.Message, len(messages))
	for i, m := range messages {
		out[i] = oracle.Message{Role: string(m.Role), Content: m.Content}
	}
	return out
}
