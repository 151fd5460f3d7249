package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries.
type QueryOpts struct {
	Limit     int    // max results (0 = unlimited)
	SessionID string // filter to one session when set
}

// SessionEventData captures one session lifecycle event.
type SessionEventData struct {
	SessionID      string
	LearnerID      string
	Action         string // created, paused, resumed, completed, expired, cleaned
	TurnCount      int
	MilestoneCount int
	DurationSecs   int
}

// SessionEventRecord is a stored session event.
type SessionEventRecord struct {
	Sequence  int64
	Timestamp time.Time
	SessionEventData
}

// TurnEventData captures one recorded interaction turn.
type TurnEventData struct {
	SessionID  string
	Phase      string
	Speaker    string
	Language   string
	ScenarioID string
	Text       string
}

// MilestoneEventData captures one achieved milestone.
type MilestoneEventData struct {
	SessionID   string
	MilestoneID string
	ScenarioID  string
	Description string
	Complexity  string
}

// RecommendationEventData captures one progression decision.
type RecommendationEventData struct {
	SessionID  string
	LearnerID  string
	ScenarioID string
	Bracket    string
	Comfort    string
	Difficulty int
	Fallback   bool
	Reasoning  string
}

// LLMRequestEventData captures one LLM API call.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	AppendSessionEvent(ctx context.Context, data SessionEventData) error
	AppendTurnEvent(ctx context.Context, data TurnEventData) error
	AppendMilestoneEvent(ctx context.Context, data MilestoneEventData) error
	AppendRecommendationEvent(ctx context.Context, data RecommendationEventData) error
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QuerySessionEvents returns session events, newest first.
	QuerySessionEvents(ctx context.Context, opts QueryOpts) ([]SessionEventRecord, error)

	// MilestoneCounts returns the count per milestone id and the total.
	MilestoneCounts(ctx context.Context) (map[string]int, int, error)

	// RecommendationCounts returns the recommendation count per scenario id.
	RecommendationCounts(ctx context.Context) (map[string]int, error)
}

// SessionRecordData is a serialized session for external storage: the
// indexed columns plus the full JSON payload.
type SessionRecordData struct {
	SessionID string
	LearnerID string
	Status    string
	UpdatedAt time.Time
	Payload   []byte
}

// SessionRepo persists serialized session records.
type SessionRepo interface {
	// Save upserts a session record.
	Save(ctx context.Context, rec SessionRecordData) error

	// Load returns the record for a session id, or nil if absent.
	Load(ctx context.Context, sessionID string) (*SessionRecordData, error)

	// Delete removes a session record. Missing records are not an error.
	Delete(ctx context.Context, sessionID string) error

	// ByLearner returns all records for a learner, newest first.
	ByLearner(ctx context.Context, learnerID string) ([]SessionRecordData, error)
}
