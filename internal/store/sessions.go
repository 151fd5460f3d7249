package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// sessionRepo implements SessionRepo over the raw database handle.
type sessionRepo struct {
	db *sql.DB
}

func (r *sessionRepo) Save(ctx context.Context, rec SessionRecordData) error {
	updatedAt := rec.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id, learner_id, status, updated_at, payload)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET
			learner_id = excluded.learner_id,
			status = excluded.status,
			updated_at = excluded.updated_at,
			payload = excluded.payload`,
		rec.SessionID, rec.LearnerID, rec.Status, updatedAt, string(rec.Payload))
	if err != nil {
		return fmt.Errorf("save session record: %w", err)
	}
	return nil
}

func (r *sessionRepo) Load(ctx context.Context, sessionID string) (*SessionRecordData, error) {
	var rec SessionRecordData
	var payload string
	err := r.db.QueryRowContext(ctx,
		`SELECT session_id, learner_id, status, updated_at, payload FROM sessions WHERE session_id = ?`,
		sessionID).Scan(&rec.SessionID, &rec.LearnerID, &rec.Status, &rec.UpdatedAt, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session record: %w", err)
	}
	rec.Payload = []byte(payload)
	return &rec, nil
}

func (r *sessionRepo) Delete(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("delete session record: %w", err)
	}
	return nil
}

func (r *sessionRepo) ByLearner(ctx context.Context, learnerID string) ([]SessionRecordData, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT session_id, learner_id, status, updated_at, payload FROM sessions
		 WHERE learner_id = ? ORDER BY updated_at DESC`, learnerID)
	if err != nil {
		return nil, fmt.Errorf("query learner sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRecordData
	for rows.Next() {
		var rec SessionRecordData
		var payload string
		if err := rows.Scan(&rec.SessionID, &rec.LearnerID, &rec.Status, &rec.UpdatedAt, &payload); err != nil {
			return nil, fmt.Errorf("scan learner session: %w", err)
		}
		rec.Payload = []byte(payload)
		out = append(out, rec)
	}
	return out, rows.Err()
}
