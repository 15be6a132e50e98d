package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/leo4life/ethan-core/internal/application/handlers"
	"github.com/leo4life/ethan-core/internal/domain/ports"
	"github.com/leo4life/ethan-core/internal/domain/services"
	"github.com/leo4life/ethan-core/internal/infrastructure/config"
	"github.com/leo4life/ethan-core/internal/infrastructure/logging"
	"github.com/leo4life/ethan-core/internal/infrastructure/storage/file"
	"github.com/leo4life/ethan-core/internal/infrastructure/storage/sqlite"
)

// Deps holds high-level dependencies for commands.
// Only handlers are exposed - services stay internal.
type Deps struct {
	Config    *config.Config
	Log       zerolog.Logger
	Prompt    *handlers.PromptHandler
	Knowledge *handlers.KnowledgeHandler
	State     *handlers.StateHandler
}

// internalDeps holds all dependencies including low-level components.
// Used internally by helper functions and the chat loop.
type internalDeps struct {
	Deps
	promptService    *services.PromptService
	knowledgeService *services.KnowledgeService
	stateService     *services.StateService
}

// withDeps loads config and builds dependencies, then calls the provided
// function. It handles cleanup automatically.
func withDeps(fn func(*Deps) error) error {
	return withInternalDeps(func(d *internalDeps) error {
		return fn(&d.Deps)
	})
}

// withInternalDeps provides access to all dependencies including low-level
// components.
func withInternalDeps(fn func(*internalDeps) error) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logging.New(cfg.Log.Level)

	promptBlob, knowledgeBlob, stateBlob, cleanup, err := buildBlobs(cwd, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	promptService := services.NewPromptService(promptBlob, log)
	knowledgeService := services.NewKnowledgeService(knowledgeBlob, log)
	stateService := services.NewStateService(stateBlob, log)

	deps := &internalDeps{
		Deps: Deps{
			Config:    cfg,
			Log:       log,
			Prompt:    handlers.NewPromptHandler(promptService),
			Knowledge: handlers.NewKnowledgeHandler(knowledgeService),
			State:     handlers.NewStateHandler(stateService),
		},
		promptService:    promptService,
		knowledgeService: knowledgeService,
		stateService:     stateService,
	}

	return fn(deps)
}

// buildBlobs constructs the three durable stores for the configured backend.
// The returned cleanup closes whatever the backend holds open.
func buildBlobs(cwd string, cfg *config.Config) (prompt, knowledge, state ports.Blob, cleanup func(), err error) {
	switch cfg.Storage.Backend {
	case "", "file":
		prompt = file.NewBlob(config.StoragePath(cwd, cfg.Storage.PromptFile))
		knowledge = file.NewBlob(config.StoragePath(cwd, cfg.Storage.KnowledgeFile))
		state = file.NewBlob(config.StoragePath(cwd, cfg.Storage.StateFile))
		return prompt, knowledge, state, func() {}, nil

	case "sqlite":
		repo, err := sqlite.NewRepository(config.StoragePath(cwd, cfg.Storage.SQLitePath))
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("creating sqlite repository: %w", err)
		}
		if err := repo.EnsureSchema(context.Background()); err != nil {
			repo.Close()
			return nil, nil, nil, nil, fmt.Errorf("ensuring sqlite schema: %w", err)
		}
		cleanup := func() { repo.Close() }
		return repo.Blob("prompt"), repo.Blob("knowledge"), repo.Blob("state"), cleanup, nil

	default:
		return nil, nil, nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
