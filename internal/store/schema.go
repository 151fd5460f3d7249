package store

import "database/sql"

// Schema: an append-only event log plus a session-record table. Each
// event type gets its own table; the shared global sequence establishes
// cross-type ordering.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS session_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence INTEGER NOT NULL,
		timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		session_id TEXT NOT NULL,
		learner_id TEXT NOT NULL,
		action TEXT NOT NULL,
		turn_count INTEGER NOT NULL DEFAULT 0,
		milestone_count INTEGER NOT NULL DEFAULT 0,
		duration_secs INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_session_events_session ON session_events(session_id)`,

	`CREATE TABLE IF NOT EXISTS turn_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence INTEGER NOT NULL,
		timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		session_id TEXT NOT NULL,
		phase TEXT NOT NULL,
		speaker TEXT NOT NULL,
		language TEXT NOT NULL DEFAULT '',
		scenario_id TEXT NOT NULL DEFAULT '',
		text TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_turn_events_session ON turn_events(session_id)`,

	`CREATE TABLE IF NOT EXISTS milestone_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence INTEGER NOT NULL,
		timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		session_id TEXT NOT NULL,
		milestone_id TEXT NOT NULL,
		scenario_id TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		complexity TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_milestone_events_id ON milestone_events(milestone_id)`,

	`CREATE TABLE IF NOT EXISTS recommendation_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence INTEGER NOT NULL,
		timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		session_id TEXT NOT NULL DEFAULT '',
		learner_id TEXT NOT NULL,
		scenario_id TEXT NOT NULL,
		bracket TEXT NOT NULL,
		comfort TEXT NOT NULL,
		difficulty INTEGER NOT NULL DEFAULT 0,
		fallback INTEGER NOT NULL DEFAULT 0,
		reasoning TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_recommendation_events_scenario ON recommendation_events(scenario_id)`,

	`CREATE TABLE IF NOT EXISTS llm_request_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence INTEGER NOT NULL,
		timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		purpose TEXT NOT NULL DEFAULT '',
		input_tokens INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms INTEGER NOT NULL DEFAULT 0,
		success INTEGER NOT NULL DEFAULT 1,
		error_message TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		learner_id TEXT NOT NULL,
		status TEXT NOT NULL,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		payload TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_learner ON sessions(learner_id)`,
}

func createSchema(db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
