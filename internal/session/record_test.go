package session

import (
	"testing"
	"time"
)

func TestRecordRoundTrip(t *testing.T) {
	m, _ := newTestManager()
	s := m.Create("learner-1", 15*time.Minute)
	m.RecordTurn(s.ID, Turn{Phase: PhaseComfort, Speaker: "tutor", Text: "我们来练习", Language: "zh", ScenarioID: "food-fruit"})
	m.RecordTurn(s.ID, Turn{Phase: PhasePractice, Speaker: "learner", Text: "我喜欢苹果", Language: "zh", Encouragement: EncouragementWarm})
	m.AddMilestones(s.ID, []Milestone{{ID: "first-attempt", AchievedAt: s.LastInteraction, Description: "First try", Complexity: "basic"}})
	m.Pause(s.ID, "snack")

	data, err := s.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if got.ID != s.ID || got.LearnerID != s.LearnerID {
		t.Errorf("identity mismatch: %q/%q", got.ID, got.LearnerID)
	}
	if got.Status != StatusPaused {
		t.Errorf("Status = %q, want paused", got.Status)
	}
	if got.TargetDuration != 15*time.Minute {
		t.Errorf("TargetDuration = %v, want 15m", got.TargetDuration)
	}
	if len(got.Turns) != 2 {
		t.Fatalf("len(Turns) = %d, want 2", len(got.Turns))
	}
	if got.Turns[1].Encouragement != EncouragementWarm {
		t.Errorf("Encouragement = %q, want warm", got.Turns[1].Encouragement)
	}
	if len(got.Milestones) != 1 || got.Milestones[0].ID != "first-attempt" {
		t.Errorf("Milestones = %+v", got.Milestones)
	}
	if got.Context["pause_reason"] != "snack" {
		t.Errorf("pause_reason = %q", got.Context["pause_reason"])
	}
	if got.CurrentScenario != "food-fruit" {
		t.Errorf("CurrentScenario = %q", got.CurrentScenario)
	}
}

func TestFromRecordNilContext(t *testing.T) {
	s := FromRecord(Record{ID: "s1", Status: "active"})
	if s.Context == nil {
		t.Error("Context not initialized")
	}
}
