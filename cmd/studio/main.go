package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/lumina-ai/studio/internal/api"
	"github.com/lumina-ai/studio/internal/bootstrap"
	"github.com/lumina-ai/studio/internal/core/service"
	"github.com/lumina-ai/studio/internal/infrastructure/genai"
	"github.com/lumina-ai/studio/internal/infrastructure/queue"
	"github.com/lumina-ai/studio/internal/pkg/config"
	"github.com/lumina-ai/studio/pkg/logger"
)

// @title                       Lumina Studio API
// @version                     1.0
// @description                 Coin ledger, payment review and paid image operations.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
		Service: "studio",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backends := bootstrap.Open(ctx, cfg, log)
	defer backends.Close(context.Background())

	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, backends.AuditSink(), logger.Component("audit"))
	dispatcher.Start(context.Background())
	defer dispatcher.Close()

	ledger, err := bootstrap.NewLedger(ctx, cfg, backends.Store, dispatcher, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build ledger")
	}
	auth := bootstrap.NewAuth(cfg, ledger, backends.Store, log)

	if cfg.AI.APIKey == "" {
		log.Warn().Msg("GEMINI_API_KEY not set, studio operations will fail and be refunded")
	}
	model := genai.NewClient(genai.Config{
		APIKey:        cfg.AI.APIKey,
		BaseURL:       cfg.AI.BaseURL,
		GenerateModel: cfg.AI.GenerateModel,
		EditModel:     cfg.AI.EditModel,
		AnalyzeModel:  cfg.AI.AnalyzeModel,
		Timeout:       cfg.AI.Timeout,
	}, logger.Component("genai"))

	runner := service.NewPaidRunner(ledger, logger.Component("paid"))
	studio := service.NewStudioService(runner, model, service.Prices{
		Generate: cfg.Pricing.Generate,
		Edit:     cfg.Pricing.Edit,
		Analyze:  cfg.Pricing.Analyze,
	}, logger.Component("studio"))

	feed := service.NewReviewFeed(ledger, cfg.Admin.RefreshInterval, logger.Component("review_feed"))
	if err := feed.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start review feed")
	}
	defer feed.Stop()

	e := api.NewRouter(api.Deps{
		Auth:        auth,
		Ledger:      ledger,
		Studio:      studio,
		Feed:        feed,
		Guard:       backends.InFlightGuard(),
		JWTSecret:   cfg.JWTSecret,
		DailyReward: cfg.Ledger.DailyReward,
		Payee:       cfg.Payment.UPIPayee,
		PayeeName:   cfg.Payment.PayeeName,
		Pingers:     backends.Pingers,
		Store:       backends.Store,
		Log:         logger.Component("http"),
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.Store.Backend).Msg("studio api listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
