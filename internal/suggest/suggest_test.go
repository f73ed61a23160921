package suggest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ekaraca/tutorly/internal/oracle"
)

func TestFetchSplitsAndStripsMarkers(t *testing.T) {
	client := oracle.NewMockClient(
		"1. Can compare two fractions.\n" +
			"2) Can explain halves with an example.\n" +
			"- Can predict the result of adding fractions.\n" +
			"\n" +
			"• Can evaluate a wrong answer.\n",
	)
	s := NewService(client, "test-model")

	got, err := s.Fetch(context.Background(), "Fractions", "7-8")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	want := []string{
		"Can compare two fractions.",
		"Can explain halves with an example.",
		"Can predict the result of adding fractions.",
		"Can evaluate a wrong answer.",
	}
	if len(got) != len(want) {
		t.Fatalf("Fetch() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Fetch()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFetchRejectsEmptyTopic(t *testing.T) {
	s := NewService(oracle.NewMockClient(), "test-model")
	if _, err := s.Fetch(context.Background(), "   ", "7-8"); err == nil {
		t.Fatalf("Fetch() with empty topic should fail")
	}
}

// blockingClient holds its first completion open until released, so a test
// can start a second fetch while the first is in flight.
type blockingClient struct {
	mu      sync.Mutex
	calls   int
	release chan struct{}
}

func (c *blockingClient) Complete(ctx context.Context, messages []oracle.Message, model string) (string, error) {
	c.mu.Lock()
	c.calls++
	first := c.calls == 1
	c.mu.Unlock()
	if first {
		<-c.release
		return "- stale suggestion", nil
	}
	return "- fresh suggestion", nil
}

func TestFetchSupersededByNewerRequest(t *testing.T) {
	client := &blockingClient{release: make(chan struct{})}
	s := NewService(client, "test-model")

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = s.Fetch(context.Background(), "Fractions", "7-8")
	}()

	// Second fetch supersedes the blocked first one.
	for {
		client.mu.Lock()
		started := client.calls == 1
		client.mu.Unlock()
		if started {
			break
		}
	}
	got, err := s.Fetch(context.Background(), "Fractions revised", "7-8")
	if err != nil {
		t.Fatalf("second Fetch() error = %v", err)
	}
	if len(got) != 1 || got[0] != "fresh suggestion" {
		t.Fatalf("second Fetch() = %v", got)
	}

	close(client.release)
	wg.Wait()
	if !errors.Is(firstErr, ErrSuperseded) {
		t.Fatalf("first Fetch() error = %v, want ErrSuperseded", firstErr)
	}
}
