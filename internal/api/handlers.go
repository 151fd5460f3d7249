package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/mlin/bilingo/internal/catalog"
	"github.com/mlin/bilingo/internal/llm"
	"github.com/mlin/bilingo/internal/milestones"
	"github.com/mlin/bilingo/internal/progression"
	"github.com/mlin/bilingo/internal/session"
	"github.com/mlin/bilingo/internal/store"
)

// Handler wires the tutoring services into HTTP endpoints.
//
// The server is goroutine-per-request, so handlers never hold a live
// *session.Session: all session state flows through Manager.With and
// Manager.Snapshot, which serialize per-session access.
type Handler struct {
	sessions *session.Manager
	detector *milestones.Detector
	engine   *progression.Engine
	events   store.EventRepo
	records  store.SessionRepo

	// narrator is optional; when nil, recommendations skip the
	// child-friendly intro line.
	narrator llm.Provider
}

// NewHandler creates the HTTP handler over the given services.
func NewHandler(
	sessions *session.Manager,
	detector *milestones.Detector,
	engine *progression.Engine,
	events store.EventRepo,
	records store.SessionRepo,
	narrator llm.Provider,
) *Handler {
	return &Handler{
		sessions: sessions,
		detector: detector,
		engine:   engine,
		events:   events,
		records:  records,
		narrator: narrator,
	}
}

// Router builds the mux router with all endpoints registered.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestLogger)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", h.Health).Methods("GET")

	api.HandleFunc("/sessions", h.CreateSession).Methods("POST")
	api.HandleFunc("/sessions/{id}", h.GetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}/turns", h.RecordTurn).Methods("POST")
	api.HandleFunc("/sessions/{id}/pause", h.PauseSession).Methods("POST")
	api.HandleFunc("/sessions/{id}/resume", h.ResumeSession).Methods("POST")
	api.HandleFunc("/sessions/{id}/complete", h.CompleteSession).Methods("POST")
	api.HandleFunc("/sessions/{id}/progress", h.GetProgress).Methods("GET")
	api.HandleFunc("/sessions/{id}/resumption", h.GetResumption).Methods("GET")
	api.HandleFunc("/sessions/{id}/milestones", h.DetectMilestones).Methods("POST")

	api.HandleFunc("/recommendations", h.Recommend).Methods("POST")
	api.HandleFunc("/maintenance/cleanup", h.Cleanup).Methods("POST")

	return r
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CreateSessionRequest is the payload for starting a session.
type CreateSessionRequest struct {
	LearnerID     string `json:"learner_id"`
	TargetMinutes int    `json:"target_minutes"`
}

// CreateSession starts a new tutoring session for a learner.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if req.LearnerID == "" {
		respondWithError(w, http.StatusBadRequest, "learner_id is required")
		return
	}

	s := h.sessions.Create(req.LearnerID, time.Duration(req.TargetMinutes)*time.Minute)
	rec, ok := h.sessions.Snapshot(s.ID)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "session vanished during creation")
		return
	}

	h.logSessionEvent(r.Context(), rec, "created")
	h.saveRecord(r.Context(), rec)

	respondWithJSON(w, http.StatusCreated, rec)
}

// loadSession returns the session snapshot, rehydrating from the
// persisted record when the in-memory registry misses. That lets a
// learner reconnect to a session across a process restart.
func (h *Handler) loadSession(ctx context.Context, id string) (session.Record, bool) {
	if rec, ok := h.sessions.Snapshot(id); ok {
		return rec, true
	}

	stored, err := h.records.Load(ctx, id)
	if err != nil {
		log.Printf("warning: failed to load persisted session %s: %v", id, err)
		return session.Record{}, false
	}
	if stored == nil {
		return session.Record{}, false
	}
	s, err := session.Unmarshal(stored.Payload)
	if err != nil {
		log.Printf("warning: corrupt persisted session %s: %v", id, err)
		return session.Record{}, false
	}
	h.sessions.Restore(s)
	// Snapshot again so the lazy status checks apply to the restored copy.
	return h.sessions.Snapshot(id)
}

// GetSession returns the session in its serialized form.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.loadSession(r.Context(), mux.Vars(r)["id"])
	if !ok {
		respondWithError(w, http.StatusNotFound, "session not found")
		return
	}
	respondWithJSON(w, http.StatusOK, rec)
}

// RecordTurnRequest is the payload for one interaction turn.
type RecordTurnRequest struct {
	Phase         string `json:"phase"`
	Speaker       string `json:"speaker"`
	Text          string `json:"text"`
	Language      string `json:"language"`
	ScenarioID    string `json:"scenario_id"`
	Encouragement string `json:"encouragement"`
}

// RecordTurn appends a turn to the session history.
func (h *Handler) RecordTurn(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req RecordTurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if _, ok := h.loadSession(r.Context(), id); !ok {
		respondWithError(w, http.StatusNotFound, "session not found")
		return
	}

	turn := session.Turn{
		Phase:         session.Phase(req.Phase),
		Speaker:       req.Speaker,
		Text:          req.Text,
		Language:      req.Language,
		ScenarioID:    req.ScenarioID,
		Encouragement: session.Encouragement(req.Encouragement),
	}
	if !h.sessions.RecordTurn(id, turn) {
		respondWithError(w, http.StatusConflict, "session is no longer accepting turns")
		return
	}

	if err := h.events.AppendTurnEvent(r.Context(), store.TurnEventData{
		SessionID:  id,
		Phase:      req.Phase,
		Speaker:    req.Speaker,
		Language:   req.Language,
		ScenarioID: req.ScenarioID,
		Text:       req.Text,
	}); err != nil {
		log.Printf("warning: failed to log turn event: %v", err)
	}

	rec, ok := h.sessions.Snapshot(id)
	if !ok {
		respondWithError(w, http.StatusNotFound, "session not found")
		return
	}
	h.saveRecord(r.Context(), rec)

	respondWithJSON(w, http.StatusOK, map[string]int{"turn_count": len(rec.Turns)})
}

// PauseRequest carries the pause reason.
type PauseRequest struct {
	Reason string `json:"reason"`
}

// PauseSession moves an active session to paused.
func (h *Handler) PauseSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req PauseRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if _, ok := h.loadSession(r.Context(), id); !ok {
		respondWithError(w, http.StatusNotFound, "session not found")
		return
	}
	if !h.sessions.Pause(id, req.Reason) {
		respondWithError(w, http.StatusConflict, "only active sessions can be paused")
		return
	}

	h.finishLifecycleChange(w, r, id, "paused")
}

// ResumeSession moves a paused session back to active.
func (h *Handler) ResumeSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if _, ok := h.loadSession(r.Context(), id); !ok {
		respondWithError(w, http.StatusNotFound, "session not found")
		return
	}
	if !h.sessions.Resume(id) {
		// The failed resume may have expired the session; persist that.
		if rec, ok := h.sessions.Snapshot(id); ok {
			h.saveRecord(r.Context(), rec)
		}
		respondWithError(w, http.StatusConflict, "session cannot be resumed")
		return
	}

	h.finishLifecycleChange(w, r, id, "resumed")
}

// CompleteRequest carries the completion reason.
type CompleteRequest struct {
	Reason string `json:"reason"`
}

// CompleteSession explicitly finishes an active session.
func (h *Handler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req CompleteRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.Reason == "" {
		req.Reason = "caller-requested"
	}

	if _, ok := h.loadSession(r.Context(), id); !ok {
		respondWithError(w, http.StatusNotFound, "session not found")
		return
	}
	if !h.sessions.Complete(id, req.Reason) {
		respondWithError(w, http.StatusConflict, "only active sessions can be completed")
		return
	}

	h.finishLifecycleChange(w, r, id, "completed")
}

// finishLifecycleChange logs, persists, and reports a successful
// pause/resume/complete from a fresh snapshot.
func (h *Handler) finishLifecycleChange(w http.ResponseWriter, r *http.Request, id, action string) {
	rec, ok := h.sessions.Snapshot(id)
	if !ok {
		respondWithError(w, http.StatusNotFound, "session not found")
		return
	}
	h.logSessionEvent(r.Context(), rec, action)
	h.saveRecord(r.Context(), rec)
	respondWithJSON(w, http.StatusOK, map[string]string{"status": rec.Status})
}

// GetProgress returns the progress summary for a session.
func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	summary, ok := h.sessions.Progress(mux.Vars(r)["id"])
	if !ok {
		respondWithError(w, http.StatusNotFound, "session not found")
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}

// GetResumption returns the reconnection context for a returning learner.
func (h *Handler) GetResumption(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	rc, ok := h.sessions.Resumption(id)
	if !ok {
		// A reconnect is exactly when the persisted copy matters.
		if _, found := h.loadSession(r.Context(), id); found {
			rc, ok = h.sessions.Resumption(id)
		}
	}
	if !ok {
		respondWithError(w, http.StatusNotFound, "session not found")
		return
	}
	respondWithJSON(w, http.StatusOK, rc)
}

// DetectMilestonesRequest feeds content-specific counters into detection.
type DetectMilestonesRequest struct {
	Counters map[string]int `json:"counters"`
}

// DetectMilestonesResponse reports the newly achieved milestones.
type DetectMilestonesResponse struct {
	Added      int                       `json:"added"`
	Milestones []session.MilestoneRecord `json:"milestones"`
}

// DetectMilestones runs milestone detection and records the results on
// the session and in the event log.
func (h *Handler) DetectMilestones(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req DetectMilestonesRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	// Detection reads the turn history and appends milestones in one
	// locked step, so a turn landing mid-detection cannot skew it.
	var detected []session.Milestone
	added := 0
	found := h.sessions.With(id, func(s *session.Session) {
		detected = h.detector.Detect(s, req.Counters)
		for _, ms := range detected {
			if s.HasMilestone(ms.ID) {
				continue
			}
			s.Milestones = append(s.Milestones, ms)
			added++
		}
	})
	if !found {
		respondWithError(w, http.StatusNotFound, "session not found")
		return
	}

	resp := DetectMilestonesResponse{Added: added}
	for _, ms := range detected {
		resp.Milestones = append(resp.Milestones, session.MilestoneRecord{
			ID:          ms.ID,
			AchievedAt:  ms.AchievedAt,
			ScenarioID:  ms.ScenarioID,
			Description: ms.Description,
			Complexity:  ms.Complexity,
		})
		if err := h.events.AppendMilestoneEvent(r.Context(), store.MilestoneEventData{
			SessionID:   id,
			MilestoneID: ms.ID,
			ScenarioID:  ms.ScenarioID,
			Description: ms.Description,
			Complexity:  ms.Complexity,
		}); err != nil {
			log.Printf("warning: failed to log milestone event: %v", err)
		}
	}
	if rec, ok := h.sessions.Snapshot(id); ok {
		h.saveRecord(r.Context(), rec)
	}

	respondWithJSON(w, http.StatusOK, resp)
}

// RecommendRequest is the learner profile for the progression engine.
type RecommendRequest struct {
	LearnerID     string   `json:"learner_id"`
	Age           int      `json:"age"`
	ComfortLevel  string   `json:"comfort_level"`
	Completed     []string `json:"completed"`
	RecentSignals []string `json:"recent_signals"`
	SessionID     string   `json:"session_id"`
	Narrate       bool     `json:"narrate"`
}

// RecommendResponse is the engine output plus the optional narration.
type RecommendResponse struct {
	Scenario       catalog.ContentItem   `json:"scenario"`
	Bracket        string                `json:"bracket"`
	Paths          []progression.Path    `json:"paths"`
	Reasoning      string                `json:"reasoning"`
	ComfortHint    string                `json:"comfort_hint"`
	Alternatives   []catalog.ContentItem `json:"alternatives,omitempty"`
	Fallback       bool                  `json:"fallback"`
	RepeatsAllowed bool                  `json:"repeats_allowed"`
	Narration      string                `json:"narration,omitempty"`
}

// Recommend picks the next scenario for a learner.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if req.LearnerID == "" {
		respondWithError(w, http.StatusBadRequest, "learner_id is required")
		return
	}

	// Malformed profile fields are normalized, not rejected; log when
	// the input had to change so misconfigured callers are visible.
	comfort := progression.ParseLevel(req.ComfortLevel)
	if req.ComfortLevel != "" && comfort != progression.Level(req.ComfortLevel) {
		log.Printf("learner %s: unknown comfort level %q, using %s", req.LearnerID, req.ComfortLevel, comfort)
	}
	if req.Age < 4 || req.Age > 12 {
		log.Printf("learner %s: age %d outside the 4-12 range, using bracket %s",
			req.LearnerID, req.Age, catalog.BracketForAge(req.Age))
	}

	profile := progression.Profile{
		LearnerID: req.LearnerID,
		Age:       req.Age,
		Comfort:   comfort,
		Completed: req.Completed,
	}
	for _, s := range req.RecentSignals {
		profile.RecentSignals = append(profile.RecentSignals, progression.Signal(s))
	}

	rec := h.engine.RecommendNext(profile)

	if err := h.events.AppendRecommendationEvent(r.Context(), store.RecommendationEventData{
		SessionID:  req.SessionID,
		LearnerID:  req.LearnerID,
		ScenarioID: rec.Item.ID,
		Bracket:    string(rec.Bracket),
		Comfort:    string(rec.ComfortHint),
		Difficulty: rec.Item.Difficulty,
		Fallback:   rec.Fallback,
		Reasoning:  rec.Reasoning,
	}); err != nil {
		log.Printf("warning: failed to log recommendation event: %v", err)
	}

	resp := RecommendResponse{
		Scenario:       rec.Item,
		Bracket:        string(rec.Bracket),
		Paths:          rec.Paths,
		Reasoning:      rec.Reasoning,
		ComfortHint:    string(rec.ComfortHint),
		Alternatives:   rec.Alternatives,
		Fallback:       rec.Fallback,
		RepeatsAllowed: rec.RepeatsAllowed,
	}

	if req.Narrate && h.narrator != nil && rec.Item.ID != "" {
		resp.Narration = h.narrate(r.Context(), rec.Item)
	}

	respondWithJSON(w, http.StatusOK, resp)
}

// narrate asks the LLM for a one-line child-friendly intro. Narration is
// best-effort: failures log and leave the field empty.
func (h *Handler) narrate(ctx context.Context, item catalog.ContentItem) string {
	ctx = llm.WithPurpose(ctx, "narration")

	resp, err := h.narrator.Generate(ctx, llm.Request{
		System: "You are a warm, playful tutor for young children learning Chinese and English. " +
			"Answer with exactly one short, cheerful sentence. Mix very simple Chinese with English.",
		Messages: []llm.Message{{
			Role: llm.RoleUser,
			Content: fmt.Sprintf("Introduce our next scenario: %s (%s). %s",
				item.Name, item.NameZh, item.Description),
		}},
		MaxTokens:   120,
		Temperature: 0.7,
	})
	if err != nil {
		log.Printf("warning: narration failed: %v", err)
		return ""
	}
	return resp.Text
}

// Cleanup removes every completed or expired session from the registry
// and drops their persisted records.
func (h *Handler) Cleanup(w http.ResponseWriter, r *http.Request) {
	removed := h.sessions.CleanupExpired()
	for _, id := range removed {
		if err := h.records.Delete(r.Context(), id); err != nil {
			log.Printf("warning: failed to delete persisted session %s: %v", id, err)
		}
	}
	respondWithJSON(w, http.StatusOK, map[string]int{"removed": len(removed)})
}

func (h *Handler) logSessionEvent(ctx context.Context, rec session.Record, action string) {
	err := h.events.AppendSessionEvent(ctx, store.SessionEventData{
		SessionID:      rec.ID,
		LearnerID:      rec.LearnerID,
		Action:         action,
		TurnCount:      len(rec.Turns),
		MilestoneCount: len(rec.Milestones),
		DurationSecs:   int(rec.LastInteraction.Sub(rec.CreatedAt).Seconds()),
	})
	if err != nil {
		log.Printf("warning: failed to log session event: %v", err)
	}
}

func (h *Handler) saveRecord(ctx context.Context, rec session.Record) {
	payload, err := json.Marshal(rec)
	if err != nil {
		log.Printf("warning: failed to serialize session %s: %v", rec.ID, err)
		return
	}
	err = h.records.Save(ctx, store.SessionRecordData{
		SessionID: rec.ID,
		LearnerID: rec.LearnerID,
		Status:    rec.Status,
		Payload:   payload,
	})
	if err != nil {
		log.Printf("warning: failed to persist session %s: %v", rec.ID, err)
	}
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
