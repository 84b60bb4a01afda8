package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/nvasudevan/tripflow/internal/config"
	"github.com/nvasudevan/tripflow/internal/dialogue"
	"github.com/nvasudevan/tripflow/internal/httpapi"
	"github.com/nvasudevan/tripflow/internal/model"
	"github.com/nvasudevan/tripflow/internal/observability"
	"github.com/nvasudevan/tripflow/internal/planner"
	"github.com/nvasudevan/tripflow/internal/prompt"
	"github.com/nvasudevan/tripflow/internal/session"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	store, err := session.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("session store init failed: %v", err)
	}
	defer store.Close()
	if cfg.DatabaseURL == "" {
		log.Printf("session store: in-memory (DATABASE_URL not set)")
	} else {
		log.Printf("session store: postgres")
	}

	generator, err := model.NewGenerator(model.Config{
		Mode:   cfg.ModelMode,
		URL:    cfg.ModelURL,
		APIKey: cfg.ModelAPIKey,
		Params: model.Params{
			MaxTokens:     cfg.ModelMaxTokens,
			Temperature:   cfg.ModelTemperature,
			StopSequences: []string{prompt.HumanDelimiter},
		},
	})
	if err != nil {
		log.Fatalf("model init failed: %v", err)
	}
	if _, ok := generator.(*model.MockGenerator); ok {
		log.Printf("generator: mock (MODEL_URL not set)")
	}

	plannerClient := planner.New(cfg.PlannerURL)
	if cfg.PlannerURL == "" {
		log.Printf("planner: mock (PLANNER_URL not set)")
	}

	sessions := session.NewManager(store, prompt.Seed(), metrics)
	engine := dialogue.NewEngine(sessions, generator, plannerClient, metrics)

	api := httpapi.New(cfg, engine, sessions)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}
