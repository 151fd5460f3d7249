package session

import (
	"time"

	"github.com/google/uuid"
)

// Manager is the lifecycle controller: it owns all writes to the Store
// and enforces the status state machine.
//
//	Active  -> Paused     explicit pause
//	Paused  -> Active     resume within the inactivity timeout, or any turn
//	Active  -> Completed  target duration reached or explicit completion
//	Active  -> Expired    inactivity timeout exceeded (lazy, on access)
//	Paused  -> Expired    inactivity timeout exceeded (lazy, on access)
//
// Completed and Expired are terminal.
//
// Every operation takes the session's lock for its whole duration, so
// concurrent callers working on the same id are fully serialized.
type Manager struct {
	store   *Store
	timeout time.Duration
	now     func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithInactivityTimeout overrides the default inactivity timeout.
func WithInactivityTimeout(d time.Duration) Option {
	return func(m *Manager) { m.timeout = d }
}

// WithClock overrides the time source. Used by tests to simulate gaps
// without sleeping.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a lifecycle controller over the given store.
func NewManager(store *Store, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		timeout: DefaultInactivityTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create allocates a new Active session for the learner. A zero target
// duration gets the default of 20 minutes.
func (m *Manager) Create(learnerID string, target time.Duration) *Session {
	if target <= 0 {
		target = DefaultTargetDuration
	}
	now := m.now()
	s := &Session{
		ID:              uuid.NewString(),
		LearnerID:       learnerID,
		CreatedAt:       now,
		LastInteraction: now,
		TargetDuration:  target,
		Status:          StatusActive,
		Context:         make(map[string]string),
	}
	m.store.Put(s)
	return s
}

// Restore places a rebuilt session back in the registry, used when a
// host rehydrates a persisted record after a restart. An id that is
// already registered is left untouched; returns true if the session
// was adopted.
func (m *Manager) Restore(s *Session) bool {
	if s == nil || s.ID == "" {
		return false
	}
	return m.store.PutIfAbsent(s)
}

// With runs fn against the session under its exclusive lock, after
// applying the lazy status checks. The lock covers the whole of fn, so
// everything a host reads or writes inside it is consistent. Returns
// false when the id is unknown.
func (m *Manager) With(id string, fn func(*Session)) bool {
	s, ok := m.store.Get(id)
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m.refresh(s)
	fn(s)
	return true
}

// Snapshot returns the serialized form of the session, copied under its
// lock so concurrent writers cannot tear it.
func (m *Manager) Snapshot(id string) (Record, bool) {
	var rec Record
	ok := m.With(id, func(s *Session) { rec = s.ToRecord() })
	return rec, ok
}

// Get returns the session, first applying the lazy expiry and
// target-duration checks. The returned pointer is shared: hosts with
// concurrent callers must read through With or Snapshot instead of
// touching its fields.
func (m *Manager) Get(id string) (*Session, bool) {
	s, ok := m.store.Get(id)
	if !ok {
		return nil, false
	}
	s.mu.Lock()
	m.refresh(s)
	s.mu.Unlock()
	return s, true
}

// refresh applies lazy status transitions against the current clock.
// Inactivity expiry wins over target-duration completion: a learner who
// walked away is gone, however long the session nominally ran.
// Callers hold s.mu.
func (m *Manager) refresh(s *Session) {
	if s.Status.Terminal() {
		return
	}
	now := m.now()

	if now.Sub(s.LastInteraction) > m.timeout {
		s.Status = StatusExpired
		s.Context["expired_at"] = now.Format(time.RFC3339)
		return
	}

	if s.Status == StatusActive && now.Sub(s.CreatedAt) >= s.TargetDuration {
		s.Status = StatusCompleted
		s.Context["completion_reason"] = "target-duration-reached"
		s.Context["completed_at"] = now.Format(time.RFC3339)
	}
}

// RecordTurn appends a turn to the session history. Returns false if the
// session is unknown or in a terminal state. A turn on a Paused session
// resumes it.
func (m *Manager) RecordTurn(id string, turn Turn) bool {
	recorded := false
	m.With(id, func(s *Session) {
		if s.Status.Terminal() {
			return
		}

		now := m.now()
		if turn.Timestamp.IsZero() {
			turn.Timestamp = now
		}

		s.Turns = append(s.Turns, turn)
		if len(s.Turns) > MaxTurns {
			s.Turns = s.Turns[len(s.Turns)-MaxTurns:]
		}

		// Last-interaction is monotonically non-decreasing.
		if now.After(s.LastInteraction) {
			s.LastInteraction = now
		}

		if turn.ScenarioID != "" {
			s.CurrentScenario = turn.ScenarioID
		}

		if s.Status == StatusPaused {
			s.Status = StatusActive
		}
		recorded = true
	})
	return recorded
}

// Pause moves an Active session to Paused, recording the reason.
func (m *Manager) Pause(id, reason string) bool {
	paused := false
	m.With(id, func(s *Session) {
		if s.Status != StatusActive {
			return
		}
		s.Status = StatusPaused
		s.Context["pause_reason"] = reason
		s.Context["paused_at"] = m.now().Format(time.RFC3339)
		paused = true
	})
	return paused
}

// Resume moves a Paused session back to Active. A paused session past
// the inactivity timeout is expired by the lazy refresh first, so the
// resume fails.
func (m *Manager) Resume(id string) bool {
	resumed := false
	m.With(id, func(s *Session) {
		if s.Status != StatusPaused {
			return
		}
		now := m.now()
		s.Status = StatusActive
		s.LastInteraction = now
		s.Context["resumed_at"] = now.Format(time.RFC3339)
		resumed = true
	})
	return resumed
}

// Complete explicitly finishes an Active session.
func (m *Manager) Complete(id, reason string) bool {
	completed := false
	m.With(id, func(s *Session) {
		if s.Status != StatusActive {
			return
		}
		s.Status = StatusCompleted
		s.Context["completion_reason"] = reason
		s.Context["completed_at"] = m.now().Format(time.RFC3339)
		completed = true
	})
	return completed
}

// AddMilestones appends newly detected milestones to the session,
// skipping any id already present. Returns the number added.
func (m *Manager) AddMilestones(id string, milestones []Milestone) int {
	added := 0
	m.With(id, func(s *Session) {
		for _, ms := range milestones {
			if s.HasMilestone(ms.ID) {
				continue
			}
			s.Milestones = append(s.Milestones, ms)
			added++
		}
	})
	return added
}

// CleanupExpired sweeps the store and removes every session that is (or
// lazily becomes) Completed or Expired. Returns the removed ids so the
// host can drop any persisted copies too. This is the only operation
// that permanently deletes session state.
func (m *Manager) CleanupExpired() []string {
	var removed []string
	for _, id := range m.store.IDs() {
		s, ok := m.store.Get(id)
		if !ok {
			continue
		}
		s.mu.Lock()
		m.refresh(s)
		terminal := s.Status.Terminal()
		s.mu.Unlock()
		if terminal && m.store.Delete(id) {
			removed = append(removed, id)
		}
	}
	return removed
}
