package milestones

import (
	"fmt"
	"time"

	"github.com/mlin/bilingo/internal/session"
)

// Detector evaluates milestone rules against accumulated session state.
// Detection is pure and idempotent: it returns only milestones whose id
// is not yet recorded on the session, and mutates nothing. Callers
// persist the results back via the session manager.
type Detector struct {
	custom []CustomRule
	now    func() time.Time
}

// Option configures a Detector.
type Option func(*Detector)

// WithCustomRules adds externally supplied content-specific rules.
func WithCustomRules(rules []CustomRule) Option {
	return func(d *Detector) { d.custom = rules }
}

// WithClock overrides the achieved-at time source.
func WithClock(now func() time.Time) Option {
	return func(d *Detector) { d.now = now }
}

// NewDetector creates a detector with the fixed rule catalog plus any
// custom rules.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect runs every rule in order and returns the newly qualifying
// milestones. Counters feed the custom rules; pass nil when none apply.
func (d *Detector) Detect(s *session.Session, counters map[string]int) []session.Milestone {
	var out []session.Milestone
	achievedAt := d.now()

	award := func(m session.Milestone) {
		m.AchievedAt = achievedAt
		out = append(out, m)
	}

	attempts := s.PracticeAttempts()

	if !s.HasMilestone(FirstAttempt) && attempts >= 1 {
		award(session.Milestone{
			ID:          FirstAttempt,
			ScenarioID:  firstPracticeScenario(s),
			Description: "Gave the target language a first try",
			Complexity:  "starter",
		})
	}

	if !s.HasMilestone(ConsistentEngagement) && attempts >= EngagementThreshold {
		award(session.Milestone{
			ID:          ConsistentEngagement,
			Description: fmt.Sprintf("Kept practising for %d attempts", EngagementThreshold),
			Complexity:  "building",
		})
	}

	if !s.HasMilestone(ScenarioVariety) && len(s.ScenariosPracticed()) >= VarietyThreshold {
		award(session.Milestone{
			ID:          ScenarioVariety,
			Description: fmt.Sprintf("Explored %d different scenarios", VarietyThreshold),
			Complexity:  "exploring",
		})
	}

	if !s.HasMilestone(SessionCompleted) && s.Status == session.StatusCompleted {
		award(session.Milestone{
			ID:          SessionCompleted,
			ScenarioID:  s.CurrentScenario,
			Description: "Finished a whole session",
			Complexity:  "session",
		})
	}

	for _, rule := range d.custom {
		if s.HasMilestone(rule.ID) || alreadyAwarded(out, rule.ID) {
			continue
		}
		if counters[rule.Counter] >= rule.Threshold && rule.Threshold > 0 {
			award(session.Milestone{
				ID:          rule.ID,
				ScenarioID:  rule.ScenarioID,
				Description: rule.Description,
				Complexity:  rule.Complexity,
			})
		}
	}

	return out
}

// firstPracticeScenario finds the scenario active at the learner's
// first non-empty practice attempt.
func firstPracticeScenario(s *session.Session) string {
	scenario := ""
	for _, t := range s.Turns {
		if t.ScenarioID != "" {
			scenario = t.ScenarioID
		}
		if t.Phase == session.PhasePractice && t.Text != "" {
			return scenario
		}
	}
	return ""
}

func alreadyAwarded(ms []session.Milestone, id string) bool {
	for _, m := range ms {
		if m.ID == id {
			return true
		}
	}
	return false
}
