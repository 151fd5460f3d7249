package progression

// Level is the learner's coarse comfort self-assessment, used to bias
// difficulty selection.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// levelOrder is the adjustment ladder, easiest first.
var levelOrder = []Level{LevelBeginner, LevelIntermediate, LevelAdvanced}

// ParseLevel normalizes a comfort-level tag. Unknown tags default to
// intermediate rather than failing.
func ParseLevel(s string) Level {
	switch Level(s) {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return Level(s)
	default:
		return LevelIntermediate
	}
}

// Signal is a qualitative performance observation.
type Signal string

const (
	SignalStruggling Signal = "struggling"
	SignalExcelling  Signal = "excelling"
)

// AdjustComfort moves one step along the comfort ladder in the
// direction indicated by the signal, clamped at the ends. Unknown
// signals leave the level unchanged.
func AdjustComfort(current Level, signal Signal) Level {
	idx := levelIndex(current)
	switch signal {
	case SignalStruggling:
		if idx > 0 {
			idx--
		}
	case SignalExcelling:
		if idx < len(levelOrder)-1 {
			idx++
		}
	}
	return levelOrder[idx]
}

func levelIndex(l Level) int {
	for i, candidate := range levelOrder {
		if candidate == l {
			return i
		}
	}
	// Unknown levels sit at the balanced middle.
	return 1
}
