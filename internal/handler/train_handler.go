package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/freeeve/autochess-gym/internal/repository"
	"github.com/freeeve/autochess-gym/pkg/autochess"
)

// Request-boundary validation errors. Everything past these is handled
// inside the core as a no-op, never as a request failure.
var (
	ErrBadAction = errors.New("action index out of range")
	ErrBadBatch  = errors.New("actions length must equal the number of players")
	ErrWrongMode = errors.New("endpoint does not match the configured control mode")
	ErrNoEpisode = errors.New("no active episode, call reset first")
)

const episodePushTimeout = 2 * time.Second

// TrainConfig configures the training environment surface.
type TrainConfig struct {
	SelfPlay  bool
	Seed      int64 // 0 means a wall-clock seed per reset
	Opponents autochess.OpponentDeveloper
	Episodes  repository.EpisodeStore // optional, nil disables recording
	Logger    *zerolog.Logger
}

// TrainHandler serves the gym endpoints over one episode at a time. The
// episode has a single owner: requests are serialized, one call runs to
// completion before the next touches shared state.
type TrainHandler struct {
	cfg TrainConfig
	hub *Hub
	log zerolog.Logger

	mu       sync.Mutex
	game     *autochess.Game
	steps    int
	reward   float64 // seat-0 cumulative, reported in the episode summary
	recorded bool
}

// NewTrainHandler creates a TrainHandler.
func NewTrainHandler(cfg TrainConfig, hub *Hub) *TrainHandler {
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}
	return &TrainHandler{cfg: cfg, hub: hub, log: log}
}

// transition is the wire form of one environment step.
type transition struct {
	Observation []float32      `json:"observation"`
	Reward      float64        `json:"reward"`
	Done        bool           `json:"done"`
	Info        map[string]any `json:"info"`
}

func toTransition(r *autochess.StepResult) transition {
	return transition{Observation: r.Obs, Reward: r.Reward, Done: r.Done, Info: r.Info}
}

// Reset handles POST /reset. The body may carry an optional seed.
func (h *TrainHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var req struct {
		Seed *int64 `json:"seed"`
	}
	if err := decodeJSONOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	seed := h.cfg.Seed
	if req.Seed != nil {
		seed = *req.Seed
	} else if seed == 0 {
		seed = time.Now().UnixNano()
	}

	h.game = autochess.NewGame(autochess.GameConfig{
		SelfPlay:  h.cfg.SelfPlay,
		Seed:      seed,
		Opponents: h.cfg.Opponents,
		Logger:    h.cfg.Logger,
	})
	h.steps = 0
	h.reward = 0
	h.recorded = false

	h.log.Info().
		Str("episodeId", h.game.ID).
		Int64("seed", seed).
		Bool("selfPlay", h.cfg.SelfPlay).
		Msg("episode reset")
	h.hub.Broadcast(WSEvent{Type: EventReset, EpisodeID: h.game.ID, Data: map[string]any{
		"selfPlay": h.cfg.SelfPlay,
	}})

	writeJSON(w, http.StatusOK, toTransition(h.game.View(0)))
}

// Step handles POST /step, single-agent mode only.
func (h *TrainHandler) Step(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cfg.SelfPlay {
		writeError(w, http.StatusBadRequest, ErrWrongMode.Error())
		return
	}
	if h.game == nil {
		writeError(w, http.StatusBadRequest, ErrNoEpisode.Error())
		return
	}

	var req struct {
		Action *int `json:"action"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Action == nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if *req.Action < 0 || *req.Action >= autochess.NumActions {
		writeError(w, http.StatusBadRequest, ErrBadAction.Error())
		return
	}

	stageBefore := h.game.Stage
	res, err := h.game.Step(*req.Action)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.steps++
	h.reward += res.Reward

	h.broadcastStep(*req.Action, res, stageBefore)
	h.finishIfDone(res.Done)
	writeJSON(w, http.StatusOK, toTransition(res))
}

// StepMulti handles POST /step-multi, self-play mode only.
func (h *TrainHandler) StepMulti(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.cfg.SelfPlay {
		writeError(w, http.StatusBadRequest, ErrWrongMode.Error())
		return
	}
	if h.game == nil {
		writeError(w, http.StatusBadRequest, ErrNoEpisode.Error())
		return
	}

	var req struct {
		Actions []int `json:"actions"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Actions) != autochess.NumPlayers {
		writeError(w, http.StatusBadRequest, ErrBadBatch.Error())
		return
	}
	for _, a := range req.Actions {
		if a < 0 || a >= autochess.NumActions {
			writeError(w, http.StatusBadRequest, ErrBadAction.Error())
			return
		}
	}

	stageBefore := h.game.Stage
	results, err := h.game.StepMulti(req.Actions)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.steps++
	h.reward += results[0].Reward

	resp := struct {
		Observations [][]float32      `json:"observations"`
		Rewards      []float64        `json:"rewards"`
		Dones        []bool           `json:"dones"`
		Infos        []map[string]any `json:"infos"`
	}{
		Observations: make([][]float32, len(results)),
		Rewards:      make([]float64, len(results)),
		Dones:        make([]bool, len(results)),
		Infos:        make([]map[string]any, len(results)),
	}
	for i, res := range results {
		resp.Observations[i] = res.Obs
		resp.Rewards[i] = res.Reward
		resp.Dones[i] = res.Done
		resp.Infos[i] = res.Info
	}

	h.broadcastStep(-1, results[0], stageBefore)
	h.finishIfDone(results[0].Done)
	writeJSON(w, http.StatusOK, resp)
}

// Observe handles GET /observe. An optional seat query selects the view.
func (h *TrainHandler) Observe(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.game == nil {
		writeError(w, http.StatusBadRequest, ErrNoEpisode.Error())
		return
	}
	seat := 0
	if s := r.URL.Query().Get("seat"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 || n >= autochess.NumPlayers {
			writeError(w, http.StatusBadRequest, "invalid seat")
			return
		}
		seat = n
	}
	writeJSON(w, http.StatusOK, toTransition(h.game.View(seat)))
}

// Benchmark handles POST /benchmark: one full random-policy episode.
func (h *TrainHandler) Benchmark(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var req struct {
		Seed *int64 `json:"seed"`
	}
	if err := decodeJSONOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	seed := h.cfg.Seed
	if req.Seed != nil {
		seed = *req.Seed
	} else if seed == 0 {
		seed = time.Now().UnixNano()
	}

	result := autochess.RunBenchmark(autochess.GameConfig{
		Seed:      seed,
		Opponents: h.cfg.Opponents,
		Logger:    h.cfg.Logger,
	})
	h.log.Info().
		Int("steps", result.Steps).
		Float64("stepsPerSecond", result.StepsPerSecond).
		Int("finalRank", result.FinalRank).
		Msg("benchmark finished")
	writeJSON(w, http.StatusOK, result)
}

// ActionSpace handles GET /action-space.
func (h *TrainHandler) ActionSpace(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{"n": autochess.NumActions})
}

// ObservationSpace handles GET /observation-space.
func (h *TrainHandler) ObservationSpace(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{"n": autochess.ObsSize})
}

// Health handles GET /health.
func (h *TrainHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// broadcastStep pushes the per-step spectator event, plus a round event
// when the step closed a shopping phase.
func (h *TrainHandler) broadcastStep(action int, res *autochess.StepResult, stageBefore int) {
	if h.hub.ConnectionCount() == 0 {
		return
	}
	h.hub.Broadcast(WSEvent{Type: EventStep, EpisodeID: h.game.ID, Data: map[string]any{
		"action": action,
		"reward": res.Reward,
		"done":   res.Done,
		"stage":  h.game.Stage,
	}})
	if h.game.Stage != stageBefore {
		h.hub.Broadcast(WSEvent{Type: EventRoundResolved, EpisodeID: h.game.ID, Data: map[string]any{
			"stage": h.game.Stage,
			"alive": len(h.game.AliveSeats()),
		}})
	}
}

// finishIfDone records the episode summary once at termination.
func (h *TrainHandler) finishIfDone(done bool) {
	if !done || h.recorded {
		return
	}
	h.recorded = true

	p := h.game.Players[0]
	h.hub.Broadcast(WSEvent{Type: EventEpisodeFinished, EpisodeID: h.game.ID, Data: map[string]any{
		"finalRank":  p.Rank,
		"finalStage": h.game.Stage,
		"steps":      h.steps,
	}})

	if h.cfg.Episodes == nil {
		return
	}
	summary := repository.EpisodeSummary{
		EpisodeID:    h.game.ID,
		Steps:        h.steps,
		FinalRank:    p.Rank,
		FinalStage:   h.game.Stage,
		TotalReward:  h.reward,
		RewardTotals: p.RewardTotals(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), episodePushTimeout)
	defer cancel()
	if err := h.cfg.Episodes.PushEpisode(ctx, summary); err != nil {
		h.log.Warn().Err(err).Str("episodeId", summary.EpisodeID).Msg("failed to record episode summary")
	}
}
