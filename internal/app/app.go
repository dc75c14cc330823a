// Package app is the composition root. It builds every collaborator once
// from the resolved settings, injects them into the core services and
// releases them again in Close.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Karagwa/DocChatter/internal/adapters/driven/ai"
	"github.com/Karagwa/DocChatter/internal/adapters/driven/config/file"
	"github.com/Karagwa/DocChatter/internal/adapters/driven/storage/memory"
	"github.com/Karagwa/DocChatter/internal/adapters/driven/storage/postgres"
	"github.com/Karagwa/DocChatter/internal/adapters/driven/storage/sqlite"
	"github.com/Karagwa/DocChatter/internal/chunker"
	"github.com/Karagwa/DocChatter/internal/core/domain"
	"github.com/Karagwa/DocChatter/internal/core/ports/driven"
	"github.com/Karagwa/DocChatter/internal/core/services"
	"github.com/Karagwa/DocChatter/internal/loaders"
	"github.com/Karagwa/DocChatter/internal/logger"
)

// Options controls how the application is assembled.
type Options struct {
	// ConfigDir holds config.toml, prompts/ and the default index directory.
	// Empty means ~/.docchatter.
	ConfigDir string

	// Ephemeral forces the in-memory index regardless of index.backend.
	Ephemeral bool

	// Getenv replaces os.Getenv for settings resolution.
	Getenv func(string) string
}

// App holds the wired services and the resources they share.
type App struct {
	Settings   *services.SettingsService
	Config     *domain.AppSettings
	Pipeline   *services.PipelineService
	IndexAdmin *services.IndexAdminService
	Prompts    *file.PromptStore

	index    driven.VectorIndex
	embedder driven.EmbeddingService
	llm      driven.LLMService
}

// ResolveConfigDir returns dir, or ~/.docchatter when dir is empty.
func ResolveConfigDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	return file.DefaultDir()
}

// OpenSettings creates the settings service backed by config.toml in dir.
func OpenSettings(dir string, getenv func(string) string) (*services.SettingsService, error) {
	dir, err := ResolveConfigDir(dir)
	if err != nil {
		return nil, err
	}
	store, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}

	var opts []services.SettingsOption
	if getenv != nil {
		opts = append(opts, services.WithEnv(getenv))
	}
	return services.NewSettingsService(store, ai.NewConfigValidator(), opts...), nil
}

// Open resolves settings and builds the pipeline.
//
// A missing or unconfigured language model is not fatal: documents can
// still be ingested, and questions fail at the generating stage.
func Open(ctx context.Context, opts Options) (*App, error) {
	logger.Section("Startup")
	dir, err := ResolveConfigDir(opts.ConfigDir)
	if err != nil {
		return nil, err
	}

	settingsSvc, err := OpenSettings(dir, opts.Getenv)
	if err != nil {
		return nil, err
	}
	if err := settingsSvc.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", settingsSvc.ConfigPath(), err)
	}
	cfg, err := settingsSvc.Get()
	if err != nil {
		return nil, err
	}
	if opts.Ephemeral {
		cfg.Index.Backend = domain.IndexBackendMemory
	}
	if cfg.Index.Path == "" {
		cfg.Index.Path = filepath.Join(dir, "index")
	}

	a := &App{Settings: settingsSvc, Config: cfg}
	if err := a.build(ctx, dir); err != nil {
		if cerr := a.Close(); cerr != nil {
			logger.Warn("Cleanup after failed startup: %v", cerr)
		}
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context, dir string) error {
	cfg := a.Config

	splitter, err := chunker.New(
		chunker.WithChunkSize(cfg.Chunking.Size),
		chunker.WithOverlap(cfg.Chunking.Overlap),
	)
	if err != nil {
		return err
	}

	a.embedder, err = ai.CreateEmbeddingService(ctx, &cfg.Embedding)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrEmbeddingFailure, err)
	}
	logger.Info("Embedding: %s (%s, %d dimensions)", cfg.Embedding.Provider, a.embedder.ModelName(), a.embedder.Dimensions())

	if cfg.LLM.IsConfigured() {
		a.llm, err = ai.CreateLLMService(ctx, &cfg.LLM)
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrGenerationFailure, err)
		}
		logger.Info("LLM: %s (%s)", cfg.LLM.Provider, a.llm.ModelName())
	} else {
		logger.Warn("LLM provider %s is not configured; questions cannot be answered", cfg.LLM.Provider)
	}

	a.index, err = openIndex(ctx, cfg.Index)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrIndexWriteFailure, err)
	}
	logger.Info("Index: %s collection %q", cfg.Index.Backend, cfg.Index.Collection)

	a.Prompts, err = file.NewPromptStore(filepath.Join(dir, "prompts"))
	if err != nil {
		return err
	}

	ingest := services.NewIngestService(loaders.DefaultRegistry(), splitter, a.embedder, a.index,
		services.WithReingestPolicy(cfg.Index.Reingest))
	retriever := services.NewRetriever(a.embedder, a.index, cfg.Retrieval.K)
	generator := services.NewAnswerGenerator(a.llm, a.Prompts)

	a.Pipeline = services.NewPipelineService(ingest, retriever, generator, a.index)
	a.IndexAdmin = services.NewIndexAdminService(a.index)
	return nil
}

func openIndex(ctx context.Context, cfg domain.IndexSettings) (driven.VectorIndex, error) {
	switch cfg.Backend {
	case domain.IndexBackendMemory:
		return memory.NewVectorIndex(cfg.Collection), nil
	case domain.IndexBackendPostgres:
		index, err := postgres.New(ctx, cfg.DSN, cfg.Collection)
		if err != nil {
			return nil, err
		}
		return index, nil
	case domain.IndexBackendSQLite, "":
		if err := os.MkdirAll(cfg.Path, 0o700); err != nil {
			return nil, fmt.Errorf("create index directory: %w", err)
		}
		index, err := sqlite.OpenVectorIndex(cfg.Path, cfg.Collection)
		if err != nil {
			return nil, err
		}
		return index, nil
	default:
		return nil, fmt.Errorf("%w: unknown index backend %q", domain.ErrInvalidInput, cfg.Backend)
	}
}

// Close releases the index and the model clients.
func (a *App) Close() error {
	var errs []error
	if a.index != nil {
		errs = append(errs, a.index.Close())
	}
	if a.embedder != nil {
		errs = append(errs, a.embedder.Close())
	}
	if a.llm != nil {
		errs = append(errs, a.llm.Close())
	}
	return errors.Join(errs...)
}
