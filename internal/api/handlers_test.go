package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/mlin/bilingo/internal/catalog"
	"github.com/mlin/bilingo/internal/llm"
	"github.com/mlin/bilingo/internal/milestones"
	"github.com/mlin/bilingo/internal/progression"
	"github.com/mlin/bilingo/internal/session"
	"github.com/mlin/bilingo/internal/store"
)

// memEvents is an in-memory EventRepo for handler tests.
type memEvents struct {
	mu              sync.Mutex
	sessionEvents   []store.SessionEventData
	turnEvents      []store.TurnEventData
	milestoneEvents []store.MilestoneEventData
	recEvents       []store.RecommendationEventData
	llmEvents       []store.LLMRequestEventData
}

func (m *memEvents) AppendSessionEvent(_ context.Context, d store.SessionEventData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessionEvents = append(m.sessionEvents, d)
	return nil
}

func (m *memEvents) AppendTurnEvent(_ context.Context, d store.TurnEventData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turnEvents = append(m.turnEvents, d)
	return nil
}

func (m *memEvents) AppendMilestoneEvent(_ context.Context, d store.MilestoneEventData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.milestoneEvents = append(m.milestoneEvents, d)
	return nil
}

func (m *memEvents) AppendRecommendationEvent(_ context.Context, d store.RecommendationEventData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recEvents = append(m.recEvents, d)
	return nil
}

func (m *memEvents) AppendLLMRequest(_ context.Context, d store.LLMRequestEventData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.llmEvents = append(m.llmEvents, d)
	return nil
}

func (m *memEvents) QuerySessionEvents(context.Context, store.QueryOpts) ([]store.SessionEventRecord, error) {
	return nil, nil
}

func (m *memEvents) MilestoneCounts(context.Context) (map[string]int, int, error) {
	return map[string]int{}, 0, nil
}

func (m *memEvents) RecommendationCounts(context.Context) (map[string]int, error) {
	return map[string]int{}, nil
}

// memRecords is an in-memory SessionRepo for handler tests.
type memRecords struct {
	mu   sync.Mutex
	recs map[string]store.SessionRecordData
}

func newMemRecords() *memRecords {
	return &memRecords{recs: make(map[string]store.SessionRecordData)}
}

func (m *memRecords) Save(_ context.Context, rec store.SessionRecordData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs[rec.SessionID] = rec
	return nil
}

func (m *memRecords) Load(_ context.Context, id string) (*store.SessionRecordData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recs[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *memRecords) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.recs, id)
	return nil
}

func (m *memRecords) ByLearner(_ context.Context, learnerID string) ([]store.SessionRecordData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []store.SessionRecordData
	for _, rec := range m.recs {
		if rec.LearnerID == learnerID {
			out = append(out, rec)
		}
	}
	return out, nil
}

type testEnv struct {
	handler *Handler
	server  *httptest.Server
	events  *memEvents
	records *memRecords
}

func newTestEnv(t *testing.T, narrator llm.Provider) *testEnv {
	t.Helper()

	events := &memEvents{}
	records := newMemRecords()

	h := NewHandler(
		session.NewManager(session.NewStore()),
		milestones.NewDetector(),
		progression.NewEngine(catalog.Default()),
		events,
		records,
		narrator,
	)
	srv := httptest.NewServer(h.Router())
	t.Cleanup(srv.Close)

	return &testEnv{handler: h, server: srv, events: events, records: records}
}

func (e *testEnv) post(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	resp, err := http.Post(e.server.URL+path, "application/json", &buf)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

func (e *testEnv) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(e.server.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func (e *testEnv) createSession(t *testing.T, learnerID string) string {
	t.Helper()
	resp := e.post(t, "/api/sessions", CreateSessionRequest{LearnerID: learnerID})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create session: status %d", resp.StatusCode)
	}
	rec := decode[session.Record](t, resp)
	return rec.ID
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)
	resp := env.get(t, "/api/health")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestCreateSessionValidation(t *testing.T) {
	env := newTestEnv(t, nil)
	resp := env.post(t, "/api/sessions", CreateSessionRequest{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing learner_id, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestCreateAndGetSession(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.createSession(t, "aoife")

	resp := env.get(t, "/api/sessions/"+id)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	rec := decode[session.Record](t, resp)
	if rec.LearnerID != "aoife" {
		t.Errorf("learner = %q", rec.LearnerID)
	}
	if rec.Status != string(session.StatusActive) {
		t.Errorf("status = %q", rec.Status)
	}

	if len(env.events.sessionEvents) != 1 || env.events.sessionEvents[0].Action != "created" {
		t.Errorf("expected one created event, got %+v", env.events.sessionEvents)
	}
	if _, ok := env.records.recs[id]; !ok {
		t.Error("session record not persisted")
	}
}

func TestGetSessionNotFound(t *testing.T) {
	env := newTestEnv(t, nil)
	resp := env.get(t, "/api/sessions/nope")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestRecordTurnAndProgress(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.createSession(t, "liam")

	resp := env.post(t, "/api/sessions/"+id+"/turns", RecordTurnRequest{
		Phase: "practice", Speaker: "learner", Text: "你好", Language: "zh", ScenarioID: "greet-hello",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("record turn: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.get(t, "/api/sessions/"+id+"/progress")
	summary := decode[session.ProgressSummary](t, resp)
	if summary.TurnCount != 1 {
		t.Errorf("turn count = %d", summary.TurnCount)
	}
	if summary.CurrentScenario != "greet-hello" {
		t.Errorf("current scenario = %q", summary.CurrentScenario)
	}

	if len(env.events.turnEvents) != 1 {
		t.Errorf("expected one turn event, got %d", len(env.events.turnEvents))
	}
}

func TestTurnOnCompletedSessionConflicts(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.createSession(t, "nora")

	resp := env.post(t, "/api/sessions/"+id+"/complete", CompleteRequest{Reason: "done"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("complete: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.post(t, "/api/sessions/"+id+"/turns", RecordTurnRequest{
		Phase: "practice", Speaker: "learner", Text: "苹果",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 on completed session, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestPauseResumeFlow(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.createSession(t, "sean")

	resp := env.post(t, "/api/sessions/"+id+"/pause", PauseRequest{Reason: "dinner"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("pause: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Pausing again conflicts.
	resp = env.post(t, "/api/sessions/"+id+"/pause", PauseRequest{Reason: "again"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 on double pause, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.post(t, "/api/sessions/"+id+"/resume", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("resume: status %d", resp.StatusCode)
	}
	body := decode[map[string]string](t, resp)
	if body["status"] != string(session.StatusActive) {
		t.Errorf("status after resume = %q", body["status"])
	}
}

func TestDetectMilestones(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.createSession(t, "mei")

	env.post(t, "/api/sessions/"+id+"/turns", RecordTurnRequest{
		Phase: "comfort", Speaker: "tutor", Text: "Let's say hello!", ScenarioID: "greet-hello",
	}).Body.Close()
	env.post(t, "/api/sessions/"+id+"/turns", RecordTurnRequest{
		Phase: "practice", Speaker: "learner", Text: "你好",
	}).Body.Close()

	resp := env.post(t, "/api/sessions/"+id+"/milestones", DetectMilestonesRequest{})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("detect: status %d", resp.StatusCode)
	}
	out := decode[DetectMilestonesResponse](t, resp)
	if out.Added != 1 {
		t.Fatalf("added = %d, want 1", out.Added)
	}
	if out.Milestones[0].ID != milestones.FirstAttempt {
		t.Errorf("milestone id = %q", out.Milestones[0].ID)
	}

	// Second detection adds nothing.
	resp = env.post(t, "/api/sessions/"+id+"/milestones", DetectMilestonesRequest{})
	out = decode[DetectMilestonesResponse](t, resp)
	if out.Added != 0 {
		t.Errorf("repeat detection added %d", out.Added)
	}

	if len(env.events.milestoneEvents) != 1 {
		t.Errorf("expected one milestone event, got %d", len(env.events.milestoneEvents))
	}
}

func TestRecommend(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := env.post(t, "/api/recommendations", RecommendRequest{
		LearnerID:    "aoife",
		Age:          5,
		ComfortLevel: "beginner",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("recommend: status %d", resp.StatusCode)
	}
	out := decode[RecommendResponse](t, resp)
	if out.Scenario.Difficulty != 1 {
		t.Errorf("beginner should get difficulty 1, got %d", out.Scenario.Difficulty)
	}
	if out.Bracket != string(catalog.BracketJuniorInfants) {
		t.Errorf("bracket = %q", out.Bracket)
	}
	if len(out.Paths) != 2 {
		t.Errorf("young bracket should get 2 paths, got %d", len(out.Paths))
	}
	if out.Narration != "" {
		t.Errorf("no narrator configured, narration = %q", out.Narration)
	}

	if len(env.events.recEvents) != 1 {
		t.Fatalf("expected one recommendation event, got %d", len(env.events.recEvents))
	}
	if env.events.recEvents[0].ScenarioID != out.Scenario.ID {
		t.Errorf("event scenario = %q", env.events.recEvents[0].ScenarioID)
	}
}

func TestRecommendWithNarration(t *testing.T) {
	narrator := llm.NewMockProvider(
		llm.MockResponse{Text: "Let's say 你好 and wave hello!"},
	)
	env := newTestEnv(t, narrator)

	resp := env.post(t, "/api/recommendations", RecommendRequest{
		LearnerID: "liam", Age: 7, Narrate: true,
	})
	out := decode[RecommendResponse](t, resp)
	if out.Narration != "Let's say 你好 and wave hello!" {
		t.Errorf("narration = %q", out.Narration)
	}
	if narrator.CallCount() != 1 {
		t.Errorf("narrator calls = %d", narrator.CallCount())
	}
}

func TestRecommendNarrationFailureDegrades(t *testing.T) {
	narrator := llm.NewMockProvider() // Empty queue fails every call.
	env := newTestEnv(t, narrator)

	resp := env.post(t, "/api/recommendations", RecommendRequest{
		LearnerID: "liam", Age: 7, Narrate: true,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("narration failure must not fail the request: %d", resp.StatusCode)
	}
	out := decode[RecommendResponse](t, resp)
	if out.Narration != "" {
		t.Errorf("narration should be empty on failure, got %q", out.Narration)
	}
	if out.Scenario.ID == "" {
		t.Error("recommendation itself should still be served")
	}
}

func TestCleanup(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.createSession(t, "nora")
	env.createSession(t, "sean")

	env.post(t, "/api/sessions/"+id+"/complete", CompleteRequest{}).Body.Close()

	resp := env.post(t, "/api/maintenance/cleanup", nil)
	out := decode[map[string]int](t, resp)
	if out["removed"] != 1 {
		t.Errorf("removed = %d, want 1", out["removed"])
	}

	if _, ok := env.records.recs[id]; ok {
		t.Error("persisted record should be deleted with the session")
	}

	resp = env.get(t, "/api/sessions/"+id)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("cleaned session should be gone, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestSessionSurvivesRestart(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.createSession(t, "aoife")
	env.post(t, "/api/sessions/"+id+"/turns", RecordTurnRequest{
		Phase: "practice", Speaker: "learner", Text: "你好",
	}).Body.Close()

	// A fresh handler over the same persisted records, as after a
	// process restart: the in-memory registry starts empty.
	h2 := NewHandler(
		session.NewManager(session.NewStore()),
		milestones.NewDetector(),
		progression.NewEngine(catalog.Default()),
		env.events,
		env.records,
		nil,
	)
	srv2 := httptest.NewServer(h2.Router())
	defer srv2.Close()

	resp, err := http.Get(srv2.URL + "/api/sessions/" + id)
	if err != nil {
		t.Fatalf("GET after restart: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected rehydrated session, got %d", resp.StatusCode)
	}
	rec := decode[session.Record](t, resp)
	if rec.LearnerID != "aoife" {
		t.Errorf("learner = %q", rec.LearnerID)
	}
	if len(rec.Turns) != 1 {
		t.Errorf("turns = %d, want 1", len(rec.Turns))
	}

	// The rehydrated session keeps accepting turns.
	body := strings.NewReader(`{"phase":"practice","speaker":"learner","text":"再见"}`)
	resp, err = http.Post(srv2.URL+"/api/sessions/"+id+"/turns", "application/json", body)
	if err != nil {
		t.Fatalf("POST turn after restart: %v", err)
	}
	counts := decode[map[string]int](t, resp)
	if counts["turn_count"] != 2 {
		t.Errorf("turn_count = %d, want 2", counts["turn_count"])
	}
}

func TestConcurrentTurnRequests(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.createSession(t, "liam")

	const workers, turnsEach = 4, 10

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < turnsEach; i++ {
				body := strings.NewReader(`{"phase":"practice","speaker":"learner","text":"你好"}`)
				resp, err := http.Post(env.server.URL+"/api/sessions/"+id+"/turns", "application/json", body)
				if err != nil {
					t.Errorf("POST turn: %v", err)
					return
				}
				if resp.StatusCode != http.StatusOK {
					t.Errorf("turn status %d", resp.StatusCode)
				}
				resp.Body.Close()
			}
		}()
	}
	wg.Wait()

	resp := env.get(t, "/api/sessions/"+id+"/progress")
	summary := decode[session.ProgressSummary](t, resp)
	if summary.TurnCount != workers*turnsEach {
		t.Errorf("turn count = %d, want %d", summary.TurnCount, workers*turnsEach)
	}
}

func TestRecommendLogsNormalization(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	env := newTestEnv(t, nil)
	resp := env.post(t, "/api/recommendations", RecommendRequest{
		LearnerID: "aoife", Age: 2, ComfortLevel: "wizard",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("malformed profile fields must not fail the request: %d", resp.StatusCode)
	}
	resp.Body.Close()

	logged := buf.String()
	if !strings.Contains(logged, `unknown comfort level "wizard"`) {
		t.Errorf("comfort normalization not logged:\n%s", logged)
	}
	if !strings.Contains(logged, "age 2 outside") {
		t.Errorf("age normalization not logged:\n%s", logged)
	}
}

func TestResumptionEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.createSession(t, "mei")

	resp := env.get(t, "/api/sessions/"+id+"/resumption")
	rc := decode[session.ResumptionContext](t, resp)
	if rc.Approach != session.ApproachQuickWelcomeBack {
		t.Errorf("fresh session approach = %q", rc.Approach)
	}
	if rc.MinutesSinceLast > 1 {
		t.Errorf("minutes since last = %f", rc.MinutesSinceLast)
	}
}
