package tutor

import (
	"errors"
	"testing"
)

func TestParseReply(t *testing.T) {
	raw := `{"score": 45, "strengths": "Clear reasoning.", "gaps": "Missed the edge case.", "next_message": "## Keep going\nWhat about zero? 🤔"}`

	ev, next, err := ParseReply(raw)
	if err != nil {
		t.Fatalf("ParseReply() error = %v", err)
	}
	if ev.Score != 45 {
		t.Fatalf("Score = %d, want 45", ev.Score)
	}
	if ev.Strengths != "Clear reasoning." {
		t.Fatalf("Strengths = %q", ev.Strengths)
	}
	if next == "" {
		t.Fatalf("next message is empty")
	}
}

func TestParseReplyStripsFence(t *testing.T) {
	raw := "```json\n{\"score\": 10, \"strengths\": \"ok\", \"gaps\": \"\", \"next_message\": \"Next?\"}\n```"

	ev, next, err := ParseReply(raw)
	if err != nil {
		t.Fatalf("ParseReply() error = %v", err)
	}
	if ev.Score != 10 || next != "Next?" {
		t.Fatalf("got score %d next %q", ev.Score, next)
	}
}

func TestParseReplyMalformed(t *testing.T) {
	cases := map[string]string{
		"empty":             "",
		"not json":          "well done, keep going",
		"missing score":     `{"strengths": "ok", "gaps": "", "next_message": "Next?"}`,
		"missing gaps":      `{"score": 10, "strengths": "ok", "next_message": "Next?"}`,
		"empty next":        `{"score": 10, "strengths": "ok", "gaps": "", "next_message": "  "}`,
		"truncated payload": `{"score": 10, "strengths": "ok"`,
		"trailing text":     `{"score": 10, "strengths": "ok", "gaps": "", "next_message": "Next?"} and one more thing`,
	}
	for name, raw := range cases {
		if _, _, err := ParseReply(raw); !errors.Is(err, ErrMalformedResponse) {
			t.Fatalf("%s: error = %v, want ErrMalformedResponse", name, err)
		}
	}
}

func TestParseReplyOutOfRangeScore(t *testing.T) {
	cases := map[string]string{
		"negative":    `{"score": -5, "strengths": "ok", "gaps": "", "next_message": "Next?"}`,
		"too high":    `{"score": 120, "strengths": "ok", "gaps": "", "next_message": "Next?"}`,
		"non-integer": `{"score": 42.5, "strengths": "ok", "gaps": "", "next_message": "Next?"}`,
	}
	for name, raw := range cases {
		if _, _, err := ParseReply(raw); !errors.Is(err, ErrOutOfRangeScore) {
			t.Fatalf("%s: error = %v, want ErrOutOfRangeScore", name, err)
		}
	}
}
