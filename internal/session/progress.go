package session

import "time"

// ProgressSummary is the host-facing snapshot of where a session stands.
type ProgressSummary struct {
	SessionID        string  `json:"session_id"`
	LearnerID        string  `json:"learner_id"`
	Status           Status  `json:"status"`
	ElapsedMinutes   float64 `json:"elapsed_minutes"`
	RemainingMinutes float64 `json:"remaining_minutes"`
	TurnCount        int     `json:"turn_count"`
	MilestoneCount   int     `json:"milestone_count"`
	CurrentScenario  string  `json:"current_scenario,omitempty"`
}

// Approach is the recommended way to restart with a returning learner,
// chosen purely by how long they have been away.
type Approach string

const (
	ApproachQuickWelcomeBack   Approach = "quick-welcome-back"
	ApproachGentleReorient     Approach = "gentle-reorientation"
	ApproachFullContextRefresh Approach = "full-context-refresh"
)

// quickWelcomeLimit and gentleReorientLimit split the elapsed-gap scale
// for resumption approaches.
const (
	quickWelcomeLimit   = 5 * time.Minute
	gentleReorientLimit = 30 * time.Minute
)

// ResumptionContext summarizes a session for a reconnecting learner.
type ResumptionContext struct {
	MinutesSinceLast   float64  `json:"minutes_since_last"`
	ScenariosPracticed []string `json:"scenarios_practiced"`
	SuccessfulAttempts int      `json:"successful_attempts"`
	MilestoneCount     int      `json:"milestone_count"`
	Approach           Approach `json:"approach"`
}

// Progress builds a progress summary for the session, applying the lazy
// status checks first.
func (m *Manager) Progress(id string) (ProgressSummary, bool) {
	var summary ProgressSummary
	ok := m.With(id, func(s *Session) {
		elapsed := m.now().Sub(s.CreatedAt)
		remaining := s.TargetDuration - elapsed
		if remaining < 0 {
			remaining = 0
		}

		summary = ProgressSummary{
			SessionID:        s.ID,
			LearnerID:        s.LearnerID,
			Status:           s.Status,
			ElapsedMinutes:   elapsed.Minutes(),
			RemainingMinutes: remaining.Minutes(),
			TurnCount:        len(s.Turns),
			MilestoneCount:   len(s.Milestones),
			CurrentScenario:  s.CurrentScenario,
		}
	})
	return summary, ok
}

// Resumption builds the reconnection record for a returning learner.
// It deliberately skips the lazy refresh: a long-gone learner should
// hear a full-context refresher, not find their session expired out
// from under them by the lookup itself.
func (m *Manager) Resumption(id string) (ResumptionContext, bool) {
	s, ok := m.store.Get(id)
	if !ok {
		return ResumptionContext{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	gap := m.now().Sub(s.LastInteraction)
	approach := ApproachFullContextRefresh
	switch {
	case gap <= quickWelcomeLimit:
		approach = ApproachQuickWelcomeBack
	case gap <= gentleReorientLimit:
		approach = ApproachGentleReorient
	}

	return ResumptionContext{
		MinutesSinceLast:   gap.Minutes(),
		ScenariosPracticed: s.ScenariosPracticed(),
		SuccessfulAttempts: s.PracticeAttempts(),
		MilestoneCount:     len(s.Milestones),
		Approach:           approach,
	}, true
}
