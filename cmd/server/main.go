package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/autochess-gym/internal/bot"
	"github.com/freeeve/autochess-gym/internal/config"
	"github.com/freeeve/autochess-gym/internal/handler"
	"github.com/freeeve/autochess-gym/internal/logger"
	"github.com/freeeve/autochess-gym/internal/middleware"
	"github.com/freeeve/autochess-gym/internal/repository"
	"github.com/freeeve/autochess-gym/internal/repository/postgres"
	redisrepo "github.com/freeeve/autochess-gym/internal/repository/redis"
	"github.com/freeeve/autochess-gym/pkg/autochess"
)

func main() {
	logger.Init()
	cfg := config.Load()
	log.Info().Bool("selfPlay", cfg.SelfPlay).Str("port", cfg.Port).Msg("Config loaded")

	// Opponent roster store. Optional: a missing database degrades to the
	// synthetic generator.
	var rosters repository.RosterStore
	if cfg.SkipPostgres {
		log.Info().Msg("Postgres skipped, scripted opponents use the synthetic generator")
	} else {
		db, err := postgres.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Warn().Err(err).Msg("Database connection failed, scripted opponents use the synthetic generator")
		} else {
			defer db.Close()
			rosters = postgres.NewRosterRepo(db)
		}
	}

	// Episode recording. Optional: a missing Redis only disables summaries.
	var episodes repository.EpisodeStore
	redisClient, err := redisrepo.NewClient(cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("Redis connection failed, episode summaries disabled")
	} else {
		defer redisClient.Close()
		episodes = redisClient
	}

	// Optional policy network driving scripted opponents.
	var policy *bot.Policy
	if cfg.PolicyModelPath != "" {
		policy, err = bot.LoadPolicy(cfg.PolicyModelPath)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.PolicyModelPath).Msg("Policy model load failed, scripted opponents use heuristics")
		} else {
			log.Info().Str("path", cfg.PolicyModelPath).Msg("Policy model loaded")
		}
	}

	envLog := logger.Get()
	var opponents autochess.OpponentDeveloper
	if !cfg.SelfPlay {
		opponents = bot.NewDeveloper(rosters, policy, cfg.Seed, envLog)
	}

	wsHub := handler.NewHub()
	trainHandler := handler.NewTrainHandler(handler.TrainConfig{
		SelfPlay:  cfg.SelfPlay,
		Seed:      cfg.Seed,
		Opponents: opponents,
		Episodes:  episodes,
		Logger:    &envLog,
	}, wsHub)
	wsHandler := handler.NewWSHandler(wsHub)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /reset", trainHandler.Reset)
	mux.HandleFunc("POST /step", trainHandler.Step)
	mux.HandleFunc("POST /step-multi", trainHandler.StepMulti)
	mux.HandleFunc("POST /benchmark", trainHandler.Benchmark)
	mux.HandleFunc("GET /observe", trainHandler.Observe)
	mux.HandleFunc("GET /action-space", trainHandler.ActionSpace)
	mux.HandleFunc("GET /observation-space", trainHandler.ObservationSpace)
	mux.HandleFunc("GET /health", trainHandler.Health)
	mux.HandleFunc("GET /watch", wsHandler.ServeWS)

	root := middleware.Chain(mux, middleware.Logger, middleware.CORS("*"), middleware.JSON)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: root,
		// Benchmark episodes can run for a while; keep write generous.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("Server stopped")
}
