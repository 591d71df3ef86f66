package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/openai/openai-go/v3"

	"prepmate/internal/cache"
	"prepmate/internal/config"
	"prepmate/internal/events"
	"prepmate/internal/llm"
	"prepmate/internal/logger"
	"prepmate/internal/objstore"
	"prepmate/internal/pdf"
	"prepmate/internal/prep"
	"prepmate/internal/store"
)

// Deps bundles common runtime dependencies for services.
type Deps struct {
	Config   config.Config
	Log      *slog.Logger
	Store    store.Store
	Cache    cache.Cache
	Bus      events.Bus
	LLM      llm.Client
	Renderer pdf.Renderer      // nil when PDF rendering is off
	Uploader objstore.Uploader // nil when no bucket is configured
	Prep     *prep.Service
}

// Build loads env, config, and all shared components for the API service.
func Build(service string) (Deps, error) {
	// .env is optional; environment variables win either way.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.LogLevel, service)

	st, err := buildStore(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize store: %w", err)
	}
	c := buildCache(cfg, log)
	bus, err := buildBus(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize event bus: %w", err)
	}
	llmClient, err := buildLLM(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize LLM: %w", err)
	}
	renderer := buildRenderer(cfg, log)
	uploader := buildUploader(cfg, log)

	svc := prep.NewService(log, prep.Options{
		LLM:             llmClient,
		Store:           st,
		Cache:           c,
		Bus:             bus,
		Renderer:        renderer,
		Uploader:        uploader,
		CacheTTL:        time.Duration(cfg.CacheTTL) * time.Second,
		DefaultLanguage: cfg.DefaultLanguage,
	})

	return Deps{
		Config:   cfg,
		Log:      log,
		Store:    st,
		Cache:    c,
		Bus:      bus,
		LLM:      llmClient,
		Renderer: renderer,
		Uploader: uploader,
		Prep:     svc,
	}, nil
}

// ArchiverDeps is the subset the archive worker needs. The event bus and
// uploader are mandatory there: without them the worker has nothing to do.
type ArchiverDeps struct {
	Config   config.Config
	Log      *slog.Logger
	Store    store.Store
	Bus      events.Bus
	Uploader objstore.Uploader
}

// BuildArchiver loads env, config and the components for the archive worker.
func BuildArchiver(service string) (ArchiverDeps, error) {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.LogLevel, service)

	st, err := buildStore(cfg, log)
	if err != nil {
		return ArchiverDeps{}, fmt.Errorf("failed to initialize store: %w", err)
	}
	if cfg.EventsURL == "" {
		return ArchiverDeps{}, fmt.Errorf("EVENTS_URL is required for the archiver")
	}
	bus, err := buildBus(cfg, log)
	if err != nil {
		return ArchiverDeps{}, fmt.Errorf("failed to initialize event bus: %w", err)
	}
	if cfg.GCSBucket == "" {
		return ArchiverDeps{}, fmt.Errorf("GCS_BUCKET_NAME is required for the archiver")
	}
	uploader, err := objstore.NewGCSUploader(context.Background(), cfg.GCSBucket)
	if err != nil {
		return ArchiverDeps{}, fmt.Errorf("failed to initialize object storage: %w", err)
	}

	return ArchiverDeps{
		Config:   cfg,
		Log:      log,
		Store:    st,
		Bus:      bus,
		Uploader: uploader,
	}, nil
}

func buildStore(cfg config.Config, log *slog.Logger) (store.Store, error) {
	switch cfg.StoreProvider {
	case "postgres":
		if cfg.DBURL == "" {
			return nil, fmt.Errorf("DB_URL is required when STORE_PROVIDER=postgres")
		}
		db, err := store.NewPostgres(cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres: %w", err)
		}
		log.Info("using Postgres store")
		return db, nil
	default:
		return nil, fmt.Errorf("invalid STORE_PROVIDER: %s (valid option: postgres)", cfg.StoreProvider)
	}
}

func buildCache(cfg config.Config, log *slog.Logger) cache.Cache {
	if cfg.RedisAddr == "" {
		log.Info("no Redis configured; suggestion caching disabled")
		return cache.NewNoOpCache()
	}
	c, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Warn("Redis unavailable; suggestion caching disabled", "err", err)
		return cache.NewNoOpCache()
	}
	log.Info("using Redis cache", "addr", cfg.RedisAddr)
	return c
}

func buildBus(cfg config.Config, log *slog.Logger) (events.Bus, error) {
	if cfg.EventsURL == "" {
		log.Info("no event transport configured; lifecycle events disabled")
		return events.NewNoOpBus(), nil
	}
	nc, err := nats.Connect(cfg.EventsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	log.Info("using NATS event bus")
	return events.NewNATS(log, nc), nil
}

func buildLLM(cfg config.Config, log *slog.Logger) (llm.Client, error) {
	switch cfg.LLMProvider {
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
		client, err := llm.NewOpenAIClient(cfg.OpenAIKey, openai.ChatModel(cfg.LLMModel))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
		}
		log.Info("using OpenAI LLM client", "model", cfg.LLMModel)
		return client, nil
	case "stub":
		log.Warn("using stub LLM client (canned replies)")
		return llm.NewStubClient(), nil
	default:
		return nil, fmt.Errorf("invalid LLM_PROVIDER: %s (valid options: openai, stub)", cfg.LLMProvider)
	}
}

func buildRenderer(cfg config.Config, log *slog.Logger) pdf.Renderer {
	if cfg.PDFProvider != "wkhtmltopdf" {
		log.Info("PDF rendering disabled")
		return nil
	}
	r, err := pdf.NewWkhtmltopdfRenderer()
	if err != nil {
		// The download option simply becomes unavailable.
		log.Warn("PDF rendering unavailable", "err", err)
		return nil
	}
	log.Info("using wkhtmltopdf renderer")
	return r
}

func buildUploader(cfg config.Config, log *slog.Logger) objstore.Uploader {
	if cfg.GCSBucket == "" {
		log.Info("no bucket configured; PDF uploads disabled")
		return nil
	}
	u, err := objstore.NewGCSUploader(context.Background(), cfg.GCSBucket)
	if err != nil {
		log.Warn("object storage unavailable; PDF uploads disabled", "err", err)
		return nil
	}
	log.Info("using GCS uploader", "bucket", cfg.GCSBucket)
	return u
}
