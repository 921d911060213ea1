package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/autochess-gym/internal/bot"
	"github.com/freeeve/autochess-gym/pkg/autochess"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	var (
		numEpisodes int
		workers     int
		seed        int64
		jsonOut     bool
	)
	flag.IntVar(&numEpisodes, "n", 1, "Number of episodes to run")
	flag.IntVar(&workers, "workers", 1, "Concurrency (parallel episodes)")
	flag.Int64Var(&seed, "seed", 1, "Base seed, episode i runs with seed+i")
	flag.BoolVar(&jsonOut, "json", false, "Output results as JSON")
	flag.Parse()

	results := make([]autochess.BenchmarkResult, numEpisodes)

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				episodeSeed := seed + int64(i)
				results[i] = autochess.RunBenchmark(autochess.GameConfig{
					Seed:      episodeSeed,
					Opponents: bot.NewDeveloper(nil, nil, episodeSeed, zerolog.Nop()),
				})
				log.Info().
					Int("episode", i).
					Int("steps", results[i].Steps).
					Float64("stepsPerSecond", results[i].StepsPerSecond).
					Int("finalRank", results[i].FinalRank).
					Int("finalStage", results[i].FinalStage).
					Msg("episode finished")
			}
		}()
	}
	for i := 0; i < numEpisodes; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			log.Fatal().Err(err).Msg("encode results")
		}
		return
	}

	var steps int
	var elapsed float64
	for _, r := range results {
		steps += r.Steps
		elapsed += r.ElapsedMs
	}
	rate := 0.0
	if elapsed > 0 {
		rate = float64(steps) / (elapsed / 1000)
	}
	fmt.Printf("episodes:  %d\n", numEpisodes)
	fmt.Printf("steps:     %d\n", steps)
	fmt.Printf("steps/sec: %.0f\n", rate)
}
