package autochess

import "time"

// benchmarkStepCap guards against an episode that never terminates.
const benchmarkStepCap = 200000

// BenchmarkResult summarizes one random-policy throughput run.
type BenchmarkResult struct {
	Steps          int     `json:"steps"`
	ElapsedMs      float64 `json:"elapsedMs"`
	StepsPerSecond float64 `json:"stepsPerSecond"`
	FinalRank      int     `json:"finalRank"`
	FinalStage     int     `json:"finalStage"`
	FinalReward    float64 `json:"finalReward"`
}

// RunBenchmark plays one full single-agent episode with uniformly random
// legal actions and measures raw step throughput.
func RunBenchmark(cfg GameConfig) BenchmarkResult {
	cfg.SelfPlay = false
	g := NewGame(cfg)
	rng := NewRand(cfg.Seed + 1)
	p := g.Players[0]

	steps := 0
	total := 0.0
	start := time.Now()
	for !g.Done && steps < benchmarkStepCap {
		action := randomLegal(g.LegalActions(p), rng)
		res, err := g.Step(action)
		if err != nil {
			break
		}
		total += res.Reward
		steps++
	}
	elapsed := time.Since(start)

	perSec := 0.0
	if elapsed > 0 {
		perSec = float64(steps) / elapsed.Seconds()
	}
	return BenchmarkResult{
		Steps:          steps,
		ElapsedMs:      float64(elapsed.Microseconds()) / 1000.0,
		StepsPerSecond: perSec,
		FinalRank:      p.Rank,
		FinalStage:     g.Stage,
		FinalReward:    total,
	}
}

// randomLegal picks a uniformly random set bit of the mask. End turn is
// always legal, so the fallback never triggers in practice.
func randomLegal(mask []int8, rng Rand) int {
	n := 0
	for _, m := range mask {
		if m == 1 {
			n++
		}
	}
	if n == 0 {
		return ActEndTurn
	}
	pick := rng.Intn(n)
	for i, m := range mask {
		if m == 1 {
			if pick == 0 {
				return i
			}
			pick--
		}
	}
	return ActEndTurn
}
