package tutor

import "testing"

func TestCommitScore(t *testing.T) {
	cases := []struct {
		name          string
		previous      int
		raw           int
		wantCommitted int
		wantDelta     int
	}{
		{"first evaluation", 0, 30, 30, 30},
		{"improvement", 40, 65, 65, 25},
		{"lower raw keeps previous", 40, 25, 40, 0},
		{"equal raw is neutral", 40, 40, 40, 0},
		{"jump to cap", 40, 100, 100, 60},
		{"clamped above cap", 95, 120, 100, 5},
		{"clamped below zero", 0, -10, 0, 0},
	}
	for _, tc := range cases {
		committed, delta := CommitScore(tc.previous, tc.raw)
		if committed != tc.wantCommitted || delta != tc.wantDelta {
			t.Fatalf("%s: CommitScore(%d, %d) = (%d, %d), want (%d, %d)",
				tc.name, tc.previous, tc.raw, committed, delta, tc.wantCommitted, tc.wantDelta)
		}
	}
}
