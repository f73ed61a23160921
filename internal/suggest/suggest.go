// Package suggest produces learning-outcome suggestions for the activity
// setup form.
package suggest

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/ekaraca/tutorly/internal/oracle"
	"github.com/ekaraca/tutorly/internal/prompt"
)

// ErrSuperseded marks a fetch whose result arrived after a newer fetch
// started. The caller discards it; only the newest request may win.
var ErrSuperseded = errors.New("suggestion fetch superseded")

var listMarker = regexp.MustCompile(`^\s*(?:\d+[\).\:]?|[-*•])\s*`)

// Service asks the oracle for outcome suggestions. Typing in the setup form
// fires overlapping fetches; a monotonically increasing generation counter,
// checked at completion time, ensures stale results never reach the form.
type Service struct {
	oracle oracle.Client
	model  string
	gen    atomic.Uint64
}

func NewService(client oracle.Client, model string) *Service {
	return &Service{oracle: client, model: model}
}

// Fetch returns an ordered list of suggestion strings for the topic.
func (s *Service) Fetch(ctx context.Context, topic, ageGroup string) ([]string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, errors.New("topic is required")
	}

	gen := s.gen.Add(1)

	system, user := prompt.BuildSuggestionMessages(topic, ageGroup)
	raw, err := s.oracle.Complete(ctx, []oracle.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}, s.model)

	if s.gen.Load() != gen {
		return nil, ErrSuperseded
	}
	if err != nil {
		return nil, fmt.Errorf("fetch suggestions: %w", err)
	}
	return splitSuggestions(raw), nil
}

// splitSuggestions breaks oracle output into one suggestion per line,
// dropping blanks and stripping leading list numbering or bullets.
func splitSuggestions(raw string) []string {
	lines := strings.Split(raw, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(listMarker.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}
