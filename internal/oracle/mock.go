package oracle

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MockClient yields deterministic evaluation replies for keyless development
// and tests. Replies can be scripted; without a script it fabricates a valid
// evaluation whose score grows with the number of learner turns.
type MockClient struct {
	mu      sync.Mutex
	replies []string
	calls   int
}

func NewMockClient(replies ...string) *MockClient {
	return &MockClient{replies: replies}
}

// Calls reports how many completions were requested.
func (c *MockClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func (c *MockClient) Complete(ctx context.Context, messages []Message, model string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if len(c.replies) > 0 {
		reply := c.replies[0]
		c.replies = c.replies[1:]
		return reply, nil
	}
	return fabricateReply(messages), nil
}

func fabricateReply(messages []Message) string {
	userTurns := 0
	last := ""
	for _, m := range messages {
		if m.Role == "user" {
			userTurns++
			last = m.Content
		}
	}

	score := userTurns * 25
	if score > 100 {
		score = 100
	}
	next := "## Let's begin\nWhy does this topic matter? 😊\n❓ What do you already know about it?"
	if last != "" {
		next = fmt.Sprintf("## Good thinking\nYou said: %s\n❓ Can you take it one step further?",
			strings.TrimSpace(last))
	}

	reply, _ := marshalMockEvaluation(score, next)
	return reply
}

func marshalMockEvaluation(score int, next string) (string, error) {
	return fmt.Sprintf(`{"score": %d, "strengths": "You are engaging with the activity.", "gaps": "", "next_message": %q}`,
		score, next), nil
}
