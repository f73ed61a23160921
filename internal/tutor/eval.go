package tutor

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// Evaluation is the structured verdict produced once per assistant turn.
type Evaluation struct {
	Score     int    `json:"score"`
	Strengths string `json:"strengths"`
	Gaps      string `json:"gaps"`
}

var (
	// ErrMalformedResponse marks oracle text that does not decode into an
	// evaluation record with all required fields.
	ErrMalformedResponse = errors.New("malformed oracle response")
	// ErrOutOfRangeScore marks a decoded score that is not an integer in [0,100].
	ErrOutOfRangeScore = errors.New("oracle score out of range")
)

type replyWire struct {
	Score       *float64 `json:"score"`
	Strengths   *string  `json:"strengths"`
	Gaps        *string  `json:"gaps"`
	NextMessage string   `json:"next_message"`
}

// ParseReply decodes raw oracle text into a validated Evaluation plus the
// assistant message to append. It never coerces: any defect surfaces as
// ErrMalformedResponse or ErrOutOfRangeScore, never a default value.
func ParseReply(raw string) (Evaluation, string, error) {
	text := stripFence(strings.TrimSpace(raw))
	if text == "" {
		return Evaluation{}, "", fmt.Errorf("%w: empty text", ErrMalformedResponse)
	}

	// Unmarshal rather than a decoder: the reply must be exactly one JSON
	// object, with nothing after it.
	var wire replyWire
	if err := json.Unmarshal([]byte(text), &wire); err != nil {
		return Evaluation{}, "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if wire.Score == nil || wire.Strengths == nil || wire.Gaps == nil {
		return Evaluation{}, "", fmt.Errorf("%w: missing required field", ErrMalformedResponse)
	}
	if strings.TrimSpace(wire.NextMessage) == "" {
		return Evaluation{}, "", fmt.Errorf("%w: missing next message", ErrMalformedResponse)
	}

	score := *wire.Score
	if score != math.Trunc(score) {
		return Evaluation{}, "", fmt.Errorf("%w: %v is not an integer", ErrOutOfRangeScore, score)
	}
	if score < 0 || score > 100 {
		return Evaluation{}, "", fmt.Errorf("%w: %v", ErrOutOfRangeScore, score)
	}

	ev := Evaluation{
		Score:     int(score),
		Strengths: *wire.Strengths,
		Gaps:      *wire.Gaps,
	}
	return ev, wire.NextMessage, nil
}

// stripFence removes one surrounding markdown code fence. Completion models
// wrap JSON in fences often enough that rejecting it would fail healthy turns.
func stripFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	rest := strings.TrimPrefix(text, "```")
	if i := strings.IndexByte(rest, '\n'); i >= 0 {
		rest = rest[i+1:]
	}
	rest = strings.TrimSuffix(strings.TrimSpace(rest), "```")
	return strings.TrimSpace(rest)
}
