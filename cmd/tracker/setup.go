package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/applicant-tracker/internal/cache"
	"github.com/jonathan/applicant-tracker/internal/config"
	"github.com/jonathan/applicant-tracker/internal/db"
	"github.com/jonathan/applicant-tracker/internal/fetch"
	"github.com/jonathan/applicant-tracker/internal/ingestion"
	"github.com/jonathan/applicant-tracker/internal/llm"
	"github.com/jonathan/applicant-tracker/internal/logger"
	"github.com/jonathan/applicant-tracker/internal/store"
)

// loadConfig reads the optional config file, fills defaults and applies the environment.
func loadConfig(path string) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		fileCfg, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg.MergeWithDefaults(config.Default())
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// openStore returns the configured store and a function releasing it. The in-memory store is
// seeded unless seeding is disabled; Postgres is migrated and seeded the same way.
func openStore(ctx context.Context, cfg *config.Config, passwords *config.PasswordConfig) (store.Store, func(), error) {
	var (
		s       store.Store
		release = func() {}
	)

	switch cfg.Store.Driver {
	case config.StorePostgres:
		databaseURL := os.Getenv("DATABASE_URL")
		if databaseURL == "" {
			return nil, nil, fmt.Errorf("DATABASE_URL environment variable is required for the postgres store")
		}
		database, err := db.Connect(ctx, databaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.Migrate(ctx); err != nil {
			database.Close()
			return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		s, release = database, database.Close
	default:
		s = store.NewMemStore()
	}

	if cfg.SeedEnabled() {
		hash, err := passwords.HashPassword(store.SeedPassword)
		if err != nil {
			release()
			return nil, nil, err
		}
		if err := store.Seed(ctx, s, hash); err != nil {
			release()
			return nil, nil, err
		}
		logger.Info().Str("username", store.SeedUsername).Msg("demo data loaded")
	}
	return s, release, nil
}

// newLLMClient connects the configured provider. Without an API key it returns nil and every
// model-backed operation answers with its fallback.
func newLLMClient(ctx context.Context, cfg *config.Config) (llm.Client, error) {
	apiKey := cfg.APIKey()
	if apiKey == "" {
		logger.Warn().Str("provider", cfg.LLM.Provider).Msg("no API key set, AI features will return fallbacks")
		return nil, nil
	}
	client, err := llm.NewClient(ctx, cfg.LLMClientConfig(), apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return client, nil
}

// newCache returns Redis when enabled and an in-process cache otherwise.
func newCache(ctx context.Context, cfg *config.Config) cache.Cache {
	if !cfg.Redis.Enabled {
		return cache.NewMemory()
	}
	return cache.NewRedis(ctx, cache.Options{
		Addr:     cfg.Redis.Addr,
		Password: config.RedisPassword(),
		DB:       cfg.Redis.DB,
		TTL:      cfg.CacheTTL(),
	}, logger.Logger)
}

// newImporter builds the job posting importer on top of the shared cache.
func newImporter(c cache.Cache, cfg *config.Config) *fetch.Importer {
	return fetch.NewImporter(c, fetch.DefaultPostingTTL, &fetch.Options{
		Timeout:   cfg.FetchTimeout(),
		UserAgent: fetch.DefaultUserAgent,
		Render:    cfg.Fetch.Render,
	})
}

// readJobPosting loads a job posting from a job board URL or a local file.
func readJobPosting(ctx context.Context, importer *fetch.Importer, source string) (string, error) {
	if !fetch.IsURL(source) {
		text, _, err := ingestion.IngestFromFile(source)
		if err != nil {
			return "", fmt.Errorf("failed to read job posting: %w", err)
		}
		return text, nil
	}

	posting, err := importer.Fetch(ctx, source)
	if err != nil {
		return "", fmt.Errorf("failed to import job posting: %w", err)
	}
	logger.Info().Str("title", posting.Title).Str("platform", string(posting.Platform)).Msg("job posting imported")
	return posting.Text, nil
}
