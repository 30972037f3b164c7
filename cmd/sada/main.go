package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/sadanews/sada/internal/ai"
	"github.com/sadanews/sada/internal/api"
	"github.com/sadanews/sada/internal/archive"
	"github.com/sadanews/sada/internal/classify"
	"github.com/sadanews/sada/internal/config"
	"github.com/sadanews/sada/internal/enrich"
	"github.com/sadanews/sada/internal/images"
	"github.com/sadanews/sada/internal/logger"
	"github.com/sadanews/sada/internal/pipeline"
	"github.com/sadanews/sada/internal/scheduler"
	"github.com/sadanews/sada/internal/similarity"
	"github.com/sadanews/sada/internal/sources"
	"github.com/sadanews/sada/internal/store"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Output: cfg.LogFile,
		Pretty: cfg.Env == "development",
	}); err != nil {
		panic(err)
	}

	log := logger.Get()
	log.Info().Msg("Starting application...")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	st, err := store.NewRedisStore(cfg.RedisURL, cfg.RedisPrefix)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing store")
		}
	}()

	// The AI client is optional: without a key, classification falls back
	// to keyword rules and enrichment to the template path.
	var labeler classify.LabelCapability
	var rewriter enrich.RewriteCapability
	if cfg.AIApiKey != "" {
		client := ai.NewClient(cfg.AIApiKey, cfg.AIModel, cfg.AIBaseURL, cfg.AITimeout)
		labeler = client
		rewriter = client
	} else {
		log.Warn().Msg("AI API key not set, using keyword classification and template enrichment")
	}

	webhook := sources.NewWebhookAdapter()
	adapters := []sources.Adapter{
		sources.NewRSSAdapter(cfg.RSSFeedURLs, cfg.HTTPTimeout),
		sources.NewSocialAdapter(cfg.SocialPageURLs, cfg.HTTPTimeout),
		webhook,
		sources.NewSheetsAdapter(cfg.SheetsImportDir),
	}

	assurer := images.NewAssurer(images.NewRestyProbe(cfg.ProbeTimeout))

	var archiver pipeline.Archiver
	if cfg.R2AccessKey != "" && cfg.R2SecretKey != "" {
		s3Archive, err := archive.NewS3Archive(context.Background(), archive.Config{
			Endpoint:        cfg.R2Endpoint,
			Bucket:          cfg.R2Bucket,
			AccessKeyID:     cfg.R2AccessKey,
			SecretAccessKey: cfg.R2SecretKey,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Archive storage unavailable, trimmed articles will be discarded")
		} else {
			archiver = s3Archive
		}
	}

	guard := store.NewGuard(st)

	p := pipeline.New(
		adapters,
		classify.New(labeler),
		enrich.New(rewriter),
		assurer,
		similarity.NewScorer(similarity.DefaultThresholds()),
		guard,
		archiver,
	)
	p.Notifier().Subscribe(func(e pipeline.Event) {
		if e.NewCount > 0 && !e.FirstRun {
			log.Info().Int("new_count", e.NewCount).Msg("New articles published")
		}
	})

	sched := scheduler.New(p, st, config.DefaultSyncConfig(), scheduler.DefaultCadences())
	if err := sched.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}
	defer sched.Destroy()

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
		IdleTimeout:  120 * time.Second,
	})

	handlers := api.NewHandlers(guard, sched, webhook, assurer)
	api.SetupRoutes(app, handlers, cfg.AdminAPIKey)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
