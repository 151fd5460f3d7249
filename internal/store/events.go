package store

import (
	"context"
	"database/sql"
	"fmt"
)

// eventRepo implements EventRepo over the raw database handle.
type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO session_events (sequence, session_id, learner_id, action, turn_count, milestone_count, duration_secs)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		seqNum, data.SessionID, data.LearnerID, data.Action, data.TurnCount, data.MilestoneCount, data.DurationSecs)
	if err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendTurnEvent(ctx context.Context, data TurnEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO turn_events (sequence, session_id, phase, speaker, language, scenario_id, text)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		seqNum, data.SessionID, data.Phase, data.Speaker, data.Language, data.ScenarioID, data.Text)
	if err != nil {
		return fmt.Errorf("save turn event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendMilestoneEvent(ctx context.Context, data MilestoneEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO milestone_events (sequence, session_id, milestone_id, scenario_id, description, complexity)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		seqNum, data.SessionID, data.MilestoneID, data.ScenarioID, data.Description, data.Complexity)
	if err != nil {
		return fmt.Errorf("save milestone event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendRecommendationEvent(ctx context.Context, data RecommendationEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO recommendation_events (sequence, session_id, learner_id, scenario_id, bracket, comfort, difficulty, fallback, reasoning)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		seqNum, data.SessionID, data.LearnerID, data.ScenarioID, data.Bracket, data.Comfort, data.Difficulty, boolToInt(data.Fallback), data.Reasoning)
	if err != nil {
		return fmt.Errorf("save recommendation event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO llm_request_events (sequence, provider, model, purpose, input_tokens, output_tokens, latency_ms, success, error_message)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		seqNum, data.Provider, data.Model, data.Purpose, data.InputTokens, data.OutputTokens, data.LatencyMs, boolToInt(data.Success), data.ErrorMessage)
	if err != nil {
		return fmt.Errorf("save llm request event: %w", err)
	}
	return nil
}

func (r *eventRepo) QuerySessionEvents(ctx context.Context, opts QueryOpts) ([]SessionEventRecord, error) {
	query := `SELECT sequence, timestamp, session_id, learner_id, action, turn_count, milestone_count, duration_secs
		FROM session_events`
	var args []any
	if opts.SessionID != "" {
		query += ` WHERE session_id = ?`
		args = append(args, opts.SessionID)
	}
	query += ` ORDER BY sequence DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query session events: %w", err)
	}
	defer rows.Close()

	var out []SessionEventRecord
	for rows.Next() {
		var rec SessionEventRecord
		if err := rows.Scan(&rec.Sequence, &rec.Timestamp, &rec.SessionID, &rec.LearnerID,
			&rec.Action, &rec.TurnCount, &rec.MilestoneCount, &rec.DurationSecs); err != nil {
			return nil, fmt.Errorf("scan session event: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *eventRepo) MilestoneCounts(ctx context.Context) (map[string]int, int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT milestone_id, COUNT(*) FROM milestone_events GROUP BY milestone_id`)
	if err != nil {
		return nil, 0, fmt.Errorf("query milestone counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	total := 0
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, 0, fmt.Errorf("scan milestone count: %w", err)
		}
		counts[id] = n
		total += n
	}
	return counts, total, rows.Err()
}

func (r *eventRepo) RecommendationCounts(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT scenario_id, COUNT(*) FROM recommendation_events GROUP BY scenario_id`)
	if err != nil {
		return nil, fmt.Errorf("query recommendation counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scan recommendation count: %w", err)
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
