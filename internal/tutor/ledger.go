package tutor

// CommitScore applies the monotonicity clamp: the committed score never
// drops below the previous one and always stays in [0,100], even when the
// oracle misbehaves. Delta is the learner-visible gain; zero or negative
// deltas trigger no notification.
func CommitScore(previous, raw int) (committed, delta int) {
	committed = raw
	if previous > committed {
		committed = previous
	}
	if committed < 0 {
		committed = 0
	}
	if committed > 100 {
		committed = 100
	}
	return committed, committed - previous
}
