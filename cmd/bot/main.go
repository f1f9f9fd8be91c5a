package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dvloznov/finance-assistant/internal/api"
	"github.com/dvloznov/finance-assistant/internal/assistant"
	"github.com/dvloznov/finance-assistant/internal/bot"
	"github.com/dvloznov/finance-assistant/internal/config"
	"github.com/dvloznov/finance-assistant/internal/jobs"
	"github.com/dvloznov/finance-assistant/internal/jobs/inmemory"
	"github.com/dvloznov/finance-assistant/internal/logger"
	"github.com/dvloznov/finance-assistant/internal/metrics"
	"github.com/dvloznov/finance-assistant/internal/organizze"
	"github.com/dvloznov/finance-assistant/internal/render"
	"github.com/dvloznov/finance-assistant/internal/snapshot"
	"github.com/dvloznov/finance-assistant/internal/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log := logger.New()
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.NewWithLevel(cfg.LogLevel)

	ctx := context.Background()

	ledger, err := organizze.New(organizze.Config{
		BaseURL: cfg.OrganizzeBaseURL,
		Email:   cfg.OrganizzeEmail,
		Token:   cfg.OrganizzeAPIKey,
		Timeout: cfg.RequestTimeout,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create ledger client")
	}

	model, err := assistant.New(ctx, assistant.Config{
		APIKey: cfg.GeminiAPIKey,
		Model:  cfg.GeminiModel,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create assistant")
	}

	transport := telegram.New(telegram.Config{
		Token:   cfg.TelegramToken,
		Timeout: cfg.RequestTimeout,
	}, log)

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	gate := bot.NewAuthGate(cfg.AllowedChatIDs)
	if gate.Size() == 0 {
		log.Warn().Msg("Allow-list is empty - every chat will be denied")
	}

	dispatcher := bot.NewDispatcher(
		gate,
		snapshot.NewBuilder(ledger, log),
		model,
		render.NewImageRenderer(),
		transport,
		m,
		log,
	)

	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.QueueBuffer, cfg.QueueWorkers, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	jobHandler := func(ctx context.Context, job *jobs.MessageJob) error {
		log.Info().
			Str("job_id", job.JobID).
			Int64("chat_id", job.ChatID).
			Msg("Processing message job")

		dispatcher.HandleMessage(ctx, bot.Message{ChatID: job.ChatID, Text: job.Text})
		return nil
	}

	if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job workers")
	}

	router := api.NewRouter(api.Deps{
		Gate:          gate,
		Publisher:     jobQueue,
		JobStore:      jobStore,
		Registry:      registry,
		WebhookSecret: os.Getenv("WEBHOOK_SECRET"),
		AdminToken:    cfg.AdminToken,
		Log:           log,
	})

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Port).Msg("Starting bot server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Let in-flight messages finish before releasing the workers.
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	cancelWorker()

	log.Info().Msg("Server exited")
}
