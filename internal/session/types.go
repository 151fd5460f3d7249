package session

import (
	"sync"
	"time"
)

// MaxTurns is the bound on the conversation history kept per session.
// Older turns are evicted first.
const MaxTurns = 50

// DefaultTargetDuration is the standard session length.
const DefaultTargetDuration = 20 * time.Minute

// DefaultInactivityTimeout is how long a session may sit idle before it
// expires. Checked lazily on access, not by a background timer.
const DefaultInactivityTimeout = 30 * time.Minute

// Status is the lifecycle state of a session.
type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusExpired   Status = "expired"
)

// Terminal reports whether no transition leaves this status.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusExpired
}

// Phase tags the role a turn plays in the teaching exchange.
type Phase string

const (
	// PhaseComfort is native-language warm-up that anchors the scenario.
	PhaseComfort Phase = "comfort"
	// PhaseDemonstration is the tutor modelling the target language.
	PhaseDemonstration Phase = "demonstration"
	// PhasePractice is the learner's own attempt.
	PhasePractice Phase = "practice"
	// PhaseFeedback is the encouraging response to an attempt.
	PhaseFeedback Phase = "feedback"
)

// Encouragement is the intensity tag carried by a turn.
type Encouragement string

const (
	EncouragementGentle      Encouragement = "gentle"
	EncouragementWarm        Encouragement = "warm"
	EncouragementCelebration Encouragement = "celebration"
)

// Turn is one atomic exchange unit. Immutable once recorded.
type Turn struct {
	Phase         Phase
	Speaker       string
	Text          string
	Language      string // "zh" or "en"
	ScenarioID    string // catalog item the turn belongs to, if any
	Encouragement Encouragement
	Timestamp     time.Time
}

// Milestone is a one-shot achievement record. A given id is recorded at
// most once per session.
type Milestone struct {
	ID          string
	AchievedAt  time.Time
	ScenarioID  string
	Description string
	Complexity  string
}

// Session is one learner's continuous interaction period.
//
// mu serializes all access to the mutable fields. The Manager holds it
// for the whole of each operation; hosts that share a session across
// goroutines must go through Manager.With or Manager.Snapshot rather
// than touching fields directly.
type Session struct {
	mu sync.Mutex

	ID              string
	LearnerID       string
	CreatedAt       time.Time
	LastInteraction time.Time
	TargetDuration  time.Duration
	Status          Status

	// Context holds free-form notes: pause reason, emotional state,
	// preferred complexity, and so on.
	Context map[string]string

	// Turns is the bounded conversation history, oldest first.
	Turns []Turn

	// Milestones are achievements in the order they were detected.
	Milestones []Milestone

	// CurrentScenario is the catalog item most recently practised.
	CurrentScenario string
}

// HasMilestone reports whether the milestone id was already recorded.
func (s *Session) HasMilestone(id string) bool {
	for _, m := range s.Milestones {
		if m.ID == id {
			return true
		}
	}
	return false
}

// PracticeAttempts counts non-empty learner practice turns.
func (s *Session) PracticeAttempts() int {
	n := 0
	for _, t := range s.Turns {
		if t.Phase == PhasePractice && t.Text != "" {
			n++
		}
	}
	return n
}

// ScenariosPracticed returns the distinct scenario ids referenced by
// comfort-phase turns, in order of first appearance.
func (s *Session) ScenariosPracticed() []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range s.Turns {
		if t.Phase != PhaseComfort || t.ScenarioID == "" {
			continue
		}
		if !seen[t.ScenarioID] {
			seen[t.ScenarioID] = true
			out = append(out, t.ScenarioID)
		}
	}
	return out
}
