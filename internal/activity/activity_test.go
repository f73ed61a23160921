package activity

import (
	"errors"
	"net/url"
	"testing"
)

func TestValidateRejectsBlankFields(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"missing age", Config{Topic: "Fractions", LearningOutcome: "Adds simple fractions"}},
		{"missing topic", Config{AgeGroup: "7-8", LearningOutcome: "Adds simple fractions"}},
		{"missing outcome", Config{AgeGroup: "7-8", Topic: "Fractions"}},
		{"whitespace only", Config{AgeGroup: "  ", Topic: "Fractions", LearningOutcome: "x"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("Validate() error = %v, want ErrInvalidConfig", err)
			}
		})
	}

	ok := Config{AgeGroup: "7-8", Topic: "Fractions", LearningOutcome: "Adds simple fractions"}
	if err := ok.Validate(); err != nil {
		t.Fatalf("Validate() error = %v, want nil", err)
	}
}

func TestOutcomesSplitsNewlinesAndCommas(t *testing.T) {
	cfg := Config{LearningOutcome: "Adds fractions\n- Compares fractions\n\nSimplifies fractions"}
	got := cfg.Outcomes()
	want := []string{"Adds fractions", "Compares fractions", "Simplifies fractions"}
	if len(got) != len(want) {
		t.Fatalf("Outcomes() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Outcomes()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	cfg = Config{LearningOutcome: "Adds fractions, Compares fractions"}
	got = cfg.Outcomes()
	if len(got) != 2 || got[1] != "Compares fractions" {
		t.Fatalf("comma split = %v, want two outcomes", got)
	}
}

func TestShareLinkRoundTrip(t *testing.T) {
	cfg := Config{AgeGroup: "7-8", Topic: "Fractions", LearningOutcome: "Adds simple fractions"}
	link, err := cfg.ShareLink("http://localhost:8080")
	if err != nil {
		t.Fatalf("ShareLink() error = %v", err)
	}

	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("parse link: %v", err)
	}
	if u.Path != "/chat" {
		t.Fatalf("link path = %q, want /chat", u.Path)
	}

	back, err := FromQuery(u.Query())
	if err != nil {
		t.Fatalf("FromQuery() error = %v", err)
	}
	if !back.Equal(cfg) {
		t.Fatalf("round trip = %+v, want %+v", back, cfg)
	}
}

func TestFromQueryMissingParam(t *testing.T) {
	q := url.Values{}
	q.Set("age", "7-8")
	q.Set("topic", "Fractions")
	if _, err := FromQuery(q); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("FromQuery() error = %v, want ErrInvalidConfig", err)
	}
}
