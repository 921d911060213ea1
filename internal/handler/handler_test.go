package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/freeeve/autochess-gym/internal/repository"
	"github.com/freeeve/autochess-gym/pkg/autochess"
)

type stubEpisodeStore struct {
	pushed []repository.EpisodeSummary
	err    error
}

func (s *stubEpisodeStore) PushEpisode(_ context.Context, summary repository.EpisodeSummary) error {
	if s.err != nil {
		return s.err
	}
	s.pushed = append(s.pushed, summary)
	return nil
}

func newHandler(t *testing.T, cfg TrainConfig) *TrainHandler {
	t.Helper()
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	return NewTrainHandler(cfg, NewHub())
}

func do(t *testing.T, h http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeTransition(t *testing.T, rec *httptest.ResponseRecorder) transition {
	t.Helper()
	var tr transition
	if err := json.Unmarshal(rec.Body.Bytes(), &tr); err != nil {
		t.Fatalf("decode transition: %v (body %s)", err, rec.Body.String())
	}
	return tr
}

func endTurnBody() string {
	idx := autochess.EncodeAction(autochess.Action{Kind: autochess.ActionEndTurn})
	return fmt.Sprintf(`{"action":%d}`, idx)
}

func TestHealth(t *testing.T) {
	h := newHandler(t, TrainConfig{})
	rec := do(t, h.Health, http.MethodGet, "/health", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["status"] != "ok" {
		t.Errorf("status = %q, want %q", body["status"], "ok")
	}
}

func TestActionSpaceSize(t *testing.T) {
	h := newHandler(t, TrainConfig{})
	rec := do(t, h.ActionSpace, http.MethodGet, "/action-space", "")

	var body map[string]int
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["n"] != autochess.NumActions {
		t.Errorf("n = %d, want %d", body["n"], autochess.NumActions)
	}
}

func TestObservationSpaceSize(t *testing.T) {
	h := newHandler(t, TrainConfig{})
	rec := do(t, h.ObservationSpace, http.MethodGet, "/observation-space", "")

	var body map[string]int
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["n"] != autochess.ObsSize {
		t.Errorf("n = %d, want %d", body["n"], autochess.ObsSize)
	}
}

func TestResetReturnsInitialTransition(t *testing.T) {
	h := newHandler(t, TrainConfig{})
	rec := do(t, h.Reset, http.MethodPost, "/reset", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	tr := decodeTransition(t, rec)
	if got, want := len(tr.Observation), autochess.ObsSize; got != want {
		t.Errorf("len(observation) = %d, want %d", got, want)
	}
	if tr.Reward != 0 {
		t.Errorf("reward = %v, want 0", tr.Reward)
	}
	if tr.Done {
		t.Error("done = true on reset")
	}
	if _, ok := tr.Info["actionMask"]; !ok {
		t.Error("info missing actionMask")
	}
}

func TestResetAcceptsExplicitSeed(t *testing.T) {
	h := newHandler(t, TrainConfig{})

	first := decodeTransition(t, do(t, h.Reset, http.MethodPost, "/reset", `{"seed":7}`))
	second := decodeTransition(t, do(t, h.Reset, http.MethodPost, "/reset", `{"seed":7}`))

	for i := range first.Observation {
		if first.Observation[i] != second.Observation[i] {
			t.Fatalf("observation[%d] differs between identical seeds", i)
		}
	}
}

func TestStepBeforeResetFails(t *testing.T) {
	h := newHandler(t, TrainConfig{})
	rec := do(t, h.Step, http.MethodPost, "/step", endTurnBody())

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestStepRejectsOutOfRangeAction(t *testing.T) {
	h := newHandler(t, TrainConfig{})
	do(t, h.Reset, http.MethodPost, "/reset", "")

	for _, body := range []string{
		fmt.Sprintf(`{"action":%d}`, autochess.NumActions),
		`{"action":-1}`,
	} {
		rec := do(t, h.Step, http.MethodPost, "/step", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestStepRejectsMissingAction(t *testing.T) {
	h := newHandler(t, TrainConfig{})
	do(t, h.Reset, http.MethodPost, "/reset", "")

	rec := do(t, h.Step, http.MethodPost, "/step", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestStepWrongModeInSelfPlay(t *testing.T) {
	h := newHandler(t, TrainConfig{SelfPlay: true})
	do(t, h.Reset, http.MethodPost, "/reset", "")

	rec := do(t, h.Step, http.MethodPost, "/step", endTurnBody())
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestStepAdvancesStage(t *testing.T) {
	h := newHandler(t, TrainConfig{})
	do(t, h.Reset, http.MethodPost, "/reset", "")

	// Ending the starter turn exits stage 0.
	rec := do(t, h.Step, http.MethodPost, "/step", endTurnBody())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	tr := decodeTransition(t, rec)
	if got := tr.Info["stage"].(float64); got != 1 {
		t.Errorf("stage = %v, want 1", got)
	}
	if tr.Done {
		t.Error("done = true after first step")
	}
}

func TestStepMultiWrongModeSingleAgent(t *testing.T) {
	h := newHandler(t, TrainConfig{})
	do(t, h.Reset, http.MethodPost, "/reset", "")

	rec := do(t, h.StepMulti, http.MethodPost, "/step-multi", `{"actions":[9,9,9,9,9,9,9,9]}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestStepMultiRejectsWrongBatchLength(t *testing.T) {
	h := newHandler(t, TrainConfig{SelfPlay: true})
	do(t, h.Reset, http.MethodPost, "/reset", "")

	rec := do(t, h.StepMulti, http.MethodPost, "/step-multi", `{"actions":[9,9,9]}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["error"] != ErrBadBatch.Error() {
		t.Errorf("error = %q, want %q", body["error"], ErrBadBatch.Error())
	}
}

func TestStepMultiReturnsParallelArrays(t *testing.T) {
	h := newHandler(t, TrainConfig{SelfPlay: true})
	do(t, h.Reset, http.MethodPost, "/reset", "")

	rec := do(t, h.StepMulti, http.MethodPost, "/step-multi", `{"actions":[9,9,9,9,9,9,9,9]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	var body struct {
		Observations [][]float32      `json:"observations"`
		Rewards      []float64        `json:"rewards"`
		Dones        []bool           `json:"dones"`
		Infos        []map[string]any `json:"infos"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Observations) != autochess.NumPlayers ||
		len(body.Rewards) != autochess.NumPlayers ||
		len(body.Dones) != autochess.NumPlayers ||
		len(body.Infos) != autochess.NumPlayers {
		t.Fatalf("array lengths = %d/%d/%d/%d, want all %d",
			len(body.Observations), len(body.Rewards), len(body.Dones), len(body.Infos), autochess.NumPlayers)
	}
	for seat, obs := range body.Observations {
		if len(obs) != autochess.ObsSize {
			t.Errorf("seat %d: len(observation) = %d, want %d", seat, len(obs), autochess.ObsSize)
		}
	}
}

func TestObserveDoesNotAdvance(t *testing.T) {
	h := newHandler(t, TrainConfig{})
	reset := decodeTransition(t, do(t, h.Reset, http.MethodPost, "/reset", ""))

	for i := 0; i < 3; i++ {
		rec := do(t, h.Observe, http.MethodGet, "/observe", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		tr := decodeTransition(t, rec)
		for j := range tr.Observation {
			if tr.Observation[j] != reset.Observation[j] {
				t.Fatalf("observe %d: observation[%d] changed without a step", i, j)
			}
		}
	}
}

func TestObserveRejectsBadSeat(t *testing.T) {
	h := newHandler(t, TrainConfig{SelfPlay: true})
	do(t, h.Reset, http.MethodPost, "/reset", "")

	for _, target := range []string{"/observe?seat=8", "/observe?seat=-1", "/observe?seat=x"} {
		rec := do(t, h.Observe, http.MethodGet, target, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
	}

	rec := do(t, h.Observe, http.MethodGet, "/observe?seat=3", "")
	if rec.Code != http.StatusOK {
		t.Errorf("seat 3: status = %d, want 200", rec.Code)
	}
}

func TestBenchmarkEndpoint(t *testing.T) {
	h := newHandler(t, TrainConfig{})
	rec := do(t, h.Benchmark, http.MethodPost, "/benchmark", `{"seed":11}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	var body struct {
		Steps          int     `json:"steps"`
		ElapsedMs      float64 `json:"elapsedMs"`
		StepsPerSecond float64 `json:"stepsPerSecond"`
		FinalRank      int     `json:"finalRank"`
		FinalStage     int     `json:"finalStage"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Steps <= 0 {
		t.Errorf("steps = %d, want > 0", body.Steps)
	}
	if body.FinalRank < 1 || body.FinalRank > autochess.NumPlayers {
		t.Errorf("finalRank = %d, want 1..%d", body.FinalRank, autochess.NumPlayers)
	}
}

// playToTermination spams end-turn until the episode reports done.
func playToTermination(t *testing.T, h *TrainHandler) transition {
	t.Helper()
	for i := 0; i < 500; i++ {
		rec := do(t, h.Step, http.MethodPost, "/step", endTurnBody())
		if rec.Code != http.StatusOK {
			t.Fatalf("step %d: status = %d (body %s)", i, rec.Code, rec.Body.String())
		}
		tr := decodeTransition(t, rec)
		if tr.Done {
			return tr
		}
	}
	t.Fatal("episode did not terminate within 500 steps")
	return transition{}
}

func TestEpisodeSummaryRecordedOnce(t *testing.T) {
	store := &stubEpisodeStore{}
	h := newHandler(t, TrainConfig{Episodes: store})
	do(t, h.Reset, http.MethodPost, "/reset", "")

	final := playToTermination(t, h)

	if len(store.pushed) != 1 {
		t.Fatalf("pushed summaries = %d, want 1", len(store.pushed))
	}
	s := store.pushed[0]
	if s.Steps <= 0 {
		t.Errorf("Steps = %d, want > 0", s.Steps)
	}
	if s.FinalRank < 1 || s.FinalRank > autochess.NumPlayers {
		t.Errorf("FinalRank = %d, want 1..%d", s.FinalRank, autochess.NumPlayers)
	}
	if got := final.Info["rank"].(float64); int(got) != s.FinalRank {
		t.Errorf("summary rank %d disagrees with final info rank %v", s.FinalRank, got)
	}

	// Further steps on the finished episode must not record again.
	do(t, h.Step, http.MethodPost, "/step", endTurnBody())
	if len(store.pushed) != 1 {
		t.Errorf("pushed summaries after terminal step = %d, want 1", len(store.pushed))
	}
}

func TestEpisodeStoreFailureIsNotFatal(t *testing.T) {
	store := &stubEpisodeStore{err: context.DeadlineExceeded}
	h := newHandler(t, TrainConfig{Episodes: store})
	do(t, h.Reset, http.MethodPost, "/reset", "")

	final := playToTermination(t, h)
	if !final.Done {
		t.Error("episode did not finish")
	}
}

func TestSpectatorEventsOnStep(t *testing.T) {
	hub := NewHub()
	h := NewTrainHandler(TrainConfig{Seed: 42}, hub)
	c := newTestConn()
	hub.Register(c)
	defer hub.Unregister(c)

	do(t, h.Reset, http.MethodPost, "/reset", "")
	do(t, h.Step, http.MethodPost, "/step", endTurnBody())

	var types []string
	for len(c.send) > 0 {
		var event WSEvent
		if err := json.Unmarshal(<-c.send, &event); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		types = append(types, event.Type)
	}

	want := map[string]bool{EventReset: false, EventStep: false, EventRoundResolved: false}
	for _, typ := range types {
		if _, ok := want[typ]; ok {
			want[typ] = true
		}
	}
	for typ, seen := range want {
		if !seen {
			t.Errorf("event %q not broadcast (got %v)", typ, types)
		}
	}
}
