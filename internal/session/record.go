package session

import (
	"encoding/json"
	"time"
)

// Record is the flat, JSON-serializable form of a session, used when a
// host persists sessions to external storage.
type Record struct {
	ID              string            `json:"id"`
	LearnerID       string            `json:"learner_id"`
	CreatedAt       time.Time         `json:"created_at"`
	LastInteraction time.Time         `json:"last_interaction"`
	TargetSecs      int               `json:"target_secs"`
	Status          string            `json:"status"`
	Context         map[string]string `json:"context,omitempty"`
	Turns           []TurnRecord      `json:"turns,omitempty"`
	Milestones      []MilestoneRecord `json:"milestones,omitempty"`
	CurrentScenario string            `json:"current_scenario,omitempty"`
}

// TurnRecord is the serialized form of a Turn.
type TurnRecord struct {
	Phase         string    `json:"phase"`
	Speaker       string    `json:"speaker"`
	Text          string    `json:"text"`
	Language      string    `json:"language"`
	ScenarioID    string    `json:"scenario_id,omitempty"`
	Encouragement string    `json:"encouragement,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// MilestoneRecord is the serialized form of a Milestone.
type MilestoneRecord struct {
	ID          string    `json:"id"`
	AchievedAt  time.Time `json:"achieved_at"`
	ScenarioID  string    `json:"scenario_id,omitempty"`
	Description string    `json:"description"`
	Complexity  string    `json:"complexity,omitempty"`
}

// ToRecord converts a session to its serializable form. The record
// shares nothing with the session, so it stays stable while the live
// session keeps changing.
func (s *Session) ToRecord() Record {
	rec := Record{
		ID:              s.ID,
		LearnerID:       s.LearnerID,
		CreatedAt:       s.CreatedAt,
		LastInteraction: s.LastInteraction,
		TargetSecs:      int(s.TargetDuration.Seconds()),
		Status:          string(s.Status),
		CurrentScenario: s.CurrentScenario,
	}
	if len(s.Context) > 0 {
		rec.Context = make(map[string]string, len(s.Context))
		for k, v := range s.Context {
			rec.Context[k] = v
		}
	}
	for _, t := range s.Turns {
		rec.Turns = append(rec.Turns, TurnRecord{
			Phase:         string(t.Phase),
			Speaker:       t.Speaker,
			Text:          t.Text,
			Language:      t.Language,
			ScenarioID:    t.ScenarioID,
			Encouragement: string(t.Encouragement),
			Timestamp:     t.Timestamp,
		})
	}
	for _, ms := range s.Milestones {
		rec.Milestones = append(rec.Milestones, MilestoneRecord{
			ID:          ms.ID,
			AchievedAt:  ms.AchievedAt,
			ScenarioID:  ms.ScenarioID,
			Description: ms.Description,
			Complexity:  ms.Complexity,
		})
	}
	return rec
}

// FromRecord rebuilds a session from its serialized form.
func FromRecord(rec Record) *Session {
	s := &Session{
		ID:              rec.ID,
		LearnerID:       rec.LearnerID,
		CreatedAt:       rec.CreatedAt,
		LastInteraction: rec.LastInteraction,
		TargetDuration:  time.Duration(rec.TargetSecs) * time.Second,
		Status:          Status(rec.Status),
		Context:         rec.Context,
		CurrentScenario: rec.CurrentScenario,
	}
	if s.Context == nil {
		s.Context = make(map[string]string)
	}
	for _, t := range rec.Turns {
		s.Turns = append(s.Turns, Turn{
			Phase:         Phase(t.Phase),
			Speaker:       t.Speaker,
			Text:          t.Text,
			Language:      t.Language,
			ScenarioID:    t.ScenarioID,
			Encouragement: Encouragement(t.Encouragement),
			Timestamp:     t.Timestamp,
		})
	}
	for _, ms := range rec.Milestones {
		s.Milestones = append(s.Milestones, Milestone{
			ID:          ms.ID,
			AchievedAt:  ms.AchievedAt,
			ScenarioID:  ms.ScenarioID,
			Description: ms.Description,
			Complexity:  ms.Complexity,
		})
	}
	return s
}

// Marshal serializes the session record to JSON.
func (s *Session) Marshal() ([]byte, error) {
	return json.Marshal(s.ToRecord())
}

// Unmarshal rebuilds a session from serialized JSON.
func Unmarshal(data []byte) (*Session, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return FromRecord(rec), nil
}
