package progression

// Profile is the caller-owned learner description the engine selects
// against. It is not persisted by this package.
type Profile struct {
	LearnerID string

	// Age in years; out-of-range values clamp to the nearest bracket.
	Age int

	// Comfort is the learner's comfort level; unknown tags are treated
	// as intermediate.
	Comfort Level

	// Completed holds scenario ids the learner has already finished.
	Completed []string

	// RecentSignals are the latest success/struggle observations,
	// oldest first.
	RecentSignals []Signal
}

// completedSet builds the exclusion lookup.
func (p Profile) completedSet() map[string]bool {
	set := make(map[string]bool, len(p.Completed))
	for _, id := range p.Completed {
		set[id] = true
	}
	return set
}

// comfortHint derives a complexity-adjustment suggestion from the
// recent signals: a clear majority in one direction moves the level
// one step that way.
func (p Profile) comfortHint(current Level) Level {
	struggling, excelling := 0, 0
	for _, s := range p.RecentSignals {
		switch s {
		case SignalStruggling:
			struggling++
		case SignalExcelling:
			excelling++
		}
	}
	switch {
	case struggling > excelling:
		return AdjustComfort(current, SignalStruggling)
	case excelling > struggling:
		return AdjustComfort(current, SignalExcelling)
	default:
		return current
	}
}
