// Package tutor implements the tutoring session engine: prompt grounding,
// turn exchange with the completion oracle, score bookkeeping, session
// persistence and finalization.
package tutor

// Role tags a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleAssistant Role = "assistant"
	RoleUser      Role = "user"
)

// Message is one entry in the ordered, append-only session transcript.
// The first message of a live session is always the system grounding
// instruction and is excluded from any learner-facing view.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// WithoutSystem returns the learner-facing transcript: every message except
// system ones, preserving order.
func WithoutSystem(messages []Message) []Message {
	out := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleSystem {
			continue
		}
		out = append(out, m)
	}
	return out
}
