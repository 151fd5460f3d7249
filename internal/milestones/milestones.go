package milestones

// Milestone ids from the fixed catalog.
const (
	FirstAttempt         = "first-attempt"
	ConsistentEngagement = "consistent-engagement"
	ScenarioVariety      = "scenario-variety"
	SessionCompleted     = "session-completed"
)

// Detection thresholds for the fixed rules.
const (
	// EngagementThreshold is the number of non-empty practice attempts
	// that counts as sustained engagement.
	EngagementThreshold = 5

	// VarietyThreshold is the number of distinct scenarios touched in
	// comfort phases that counts as variety.
	VarietyThreshold = 3
)

// AllIDs returns the fixed milestone ids in evaluation order.
func AllIDs() []string {
	return []string{FirstAttempt, ConsistentEngagement, ScenarioVariety, SessionCompleted}
}

// DisplayName returns a human-readable label for a fixed milestone id.
func DisplayName(id string) string {
	switch id {
	case FirstAttempt:
		return "First Attempt"
	case ConsistentEngagement:
		return "Consistent Engagement"
	case ScenarioVariety:
		return "Scenario Variety"
	case SessionCompleted:
		return "Session Completed"
	default:
		return id
	}
}

// CustomRule is a data-driven, content-specific milestone: an
// externally supplied counter name and threshold. The rule fires once
// the matching accumulated counter reaches the threshold.
type CustomRule struct {
	ID          string
	Counter     string // e.g. "completions", "streak", "perfect_attempts"
	Threshold   int
	ScenarioID  string
	Description string
	Complexity  string
}
