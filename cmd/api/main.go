package main

import (
	"context"
	"errors"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"net/http"
	"os/signal"
	"promptlib/cmd/internal/config"
	"promptlib/cmd/internal/domain/policy"
	"promptlib/cmd/internal/domain/seed"
	"promptlib/cmd/internal/domain/sqlite"
	"promptlib/cmd/internal/domain/sqlite/repository"
	"promptlib/cmd/internal/http/server"
	"promptlib/cmd/internal/observability"
	"promptlib/cmd/internal/service"
	"promptlib/cmd/internal/service/jobs"
	"promptlib/cmd/internal/utils/validators"
	"syscall"
	"time"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Loads env vars depending on environment
	if err := config.LoadEnv(); err != nil {
		log.Fatal(err)
	}

	settings, err := config.Load(config.NewViper(), "")
	if err != nil {
		log.Fatal(err)
	}
	log.SetLevel(config.ParseLogLevel(settings.LogLevel))

	validate := validator.New()
	validators.Register(validate)

	// Init SQLite
	db, err := sqlite.Init(settings.DBPath)
	if err != nil {
		log.Fatalf("failed to open database %s: %v", settings.DBPath, err)
	}
	defer sqlite.Close(db)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := observability.NewPromptMetrics(registry)
	if err != nil {
		log.Fatal(err)
	}

	promptRepo := repository.NewPromptRepository(db)

	// First run seeding
	catalog, err := seed.Catalog()
	if err != nil {
		log.Fatal(err)
	}
	seeded, err := seed.NewSeeder(promptRepo, catalog).Run()
	if err != nil {
		log.Fatal(err)
	}
	metrics.AddSeeded(seeded)

	promptService := service.NewPromptService(promptRepo, policy.NewPromptPolicy(), validate, metrics)

	e := server.New(server.Options{
		PromptService:  promptService,
		Registry:       registry,
		RequestLogging: true,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if settings.BackupInterval > 0 {
		job := jobs.NewSnapshotJob(promptRepo, settings.BackupDir, settings.BackupInterval, metrics)
		go job.Start(ctx)
	}

	go func() {
		log.Infof("prompt library listening on %s (database %s)", settings.Address(), settings.DBPath)
		if err := e.Start(settings.Address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Errorf("graceful shutdown failed: %v", err)
	}
}
