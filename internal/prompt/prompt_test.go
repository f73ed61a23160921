package prompt

import (
	"strings"
	"testing"

	"github.com/ekaraca/tutorly/internal/activity"
)

func TestBuildSystemInstructionDeterministic(t *testing.T) {
	cfg := activity.Config{
		AgeGroup:        "7-8",
		Topic:           "Fractions",
		LearningOutcome: "Adds simple fractions\nCompares simple fractions",
	}

	first := BuildSystemInstruction(cfg)
	second := BuildSystemInstruction(cfg)
	if first != second {
		t.Fatalf("instruction text is not deterministic")
	}

	for _, want := range []string{
		"Age group: 7-8",
		"Topic: Fractions",
		"- Adds simple fractions",
		"- Compares simple fractions",
		`"score"`,
		`"strengths"`,
		`"gaps"`,
		`"next_message"`,
		"NEVER snap the score to a",
		"exactly equal to the previous score",
		"never lower than the previous score",
	} {
		if !strings.Contains(first, want) {
			t.Fatalf("instruction missing %q", want)
		}
	}
}

func TestBuildSuggestionMessages(t *testing.T) {
	system, user := BuildSuggestionMessages("Fractions", "7-8")
	if !strings.Contains(system, "pedagogical") {
		t.Fatalf("system persona = %q", system)
	}
	if !strings.Contains(user, `"Fractions"`) || !strings.Contains(user, "7-8") {
		t.Fatalf("user message missing topic or age group: %q", user)
	}
	if !strings.Contains(user, "6 ") {
		t.Fatalf("user message should request 6 outcomes")
	}
}
