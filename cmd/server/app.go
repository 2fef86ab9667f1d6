package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dabidoe/character-foundry/internal/clients/cdn"
	"github.com/dabidoe/character-foundry/internal/clients/external"
	"github.com/dabidoe/character-foundry/internal/clients/imagegen"
	"github.com/dabidoe/character-foundry/internal/clients/llm"
	"github.com/dabidoe/character-foundry/internal/config"
	v1 "github.com/dabidoe/character-foundry/internal/handlers/api/v1"
	"github.com/dabidoe/character-foundry/internal/handlers/ws"
	"github.com/dabidoe/character-foundry/internal/orchestrators/character"
	"github.com/dabidoe/character-foundry/internal/orchestrators/conversation"
	"github.com/dabidoe/character-foundry/internal/orchestrators/dice"
	"github.com/dabidoe/character-foundry/internal/orchestrators/library"
	"github.com/dabidoe/character-foundry/internal/orchestrators/portrait"
	"github.com/dabidoe/character-foundry/internal/pkg/idgen"
	redisclient "github.com/dabidoe/character-foundry/internal/redis"
	characterrepo "github.com/dabidoe/character-foundry/internal/repositories/character"
	dicesession "github.com/dabidoe/character-foundry/internal/repositories/dice_session"
	"github.com/dabidoe/character-foundry/internal/repositories/items"
	portraitjobs "github.com/dabidoe/character-foundry/internal/repositories/portrait_jobs"
)

const pingTimeout = 2 * time.Second

// loadConfig reads the environment and applies the command's overrides
func loadConfig(override func(*config.Config)) (*config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	if override != nil {
		override(cfg)
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid flags: %w", err)
		}
	}

	slog.SetDefault(cfg.NewLogger(os.Stderr))
	return cfg, nil
}

// openLibrary opens the item store and the library orchestrator on top of it
func openLibrary(cfg *config.Config) (*library.Orchestrator, items.Repository, error) {
	if cfg.ItemsDBPath != items.MemoryPath {
		if err := os.MkdirAll(filepath.Dir(cfg.ItemsDBPath), 0o750); err != nil {
			return nil, nil, fmt.Errorf("failed to create item database directory: %w", err)
		}
	}

	itemRepo, err := items.NewSQLite(&items.SQLiteConfig{Path: cfg.ItemsDBPath})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open item library: %w", err)
	}

	srd, err := external.New(&external.Config{BaseURL: cfg.SRDBaseURL})
	if err != nil {
		_ = itemRepo.Close()
		return nil, nil, fmt.Errorf("failed to create SRD client: %w", err)
	}

	lib, err := library.New(&library.Config{ItemRepo: itemRepo, SRD: srd})
	if err != nil {
		_ = itemRepo.Close()
		return nil, nil, fmt.Errorf("failed to create library orchestrator: %w", err)
	}

	return lib, itemRepo, nil
}

// app holds every long lived component of the server
type app struct {
	redis     redisclient.Client
	itemRepo  items.Repository
	library   *library.Orchestrator
	portraits *portrait.Orchestrator
	hub       *ws.Hub
	router    http.Handler
}

func newApp(cfg *config.Config) (*app, error) {
	a := &app{}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	rdb, err := redisclient.New(cfg.RedisAddrs, &redisclient.Options{
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		UseTLS:   cfg.RedisTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}
	a.redis = rdb

	a.library, a.itemRepo, err = openLibrary(cfg)
	if err != nil {
		return nil, err
	}

	characterRepo, err := characterrepo.NewRedis(&characterrepo.RedisConfig{Client: rdb})
	if err != nil {
		return nil, fmt.Errorf("failed to create character repository: %w", err)
	}
	diceRepo, err := dicesession.NewRedisRepository(&dicesession.Config{Client: rdb})
	if err != nil {
		return nil, fmt.Errorf("failed to create dice session repository: %w", err)
	}
	jobRepo, err := portraitjobs.NewRedis(&portraitjobs.RedisConfig{Client: rdb})
	if err != nil {
		return nil, fmt.Errorf("failed to create portrait queue: %w", err)
	}

	llmClient, imageClient, cdnClient := optionalClients(cfg)

	a.portraits, err = portrait.New(&portrait.Config{
		CharacterRepo: characterRepo,
		JobRepo:       jobRepo,
		IDGenerator:   idgen.NewPrefixed("job"),
		ImageGen:      imageClient,
		CDN:           cdnClient,
		PollTimeout:   cfg.PortraitPollTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create portrait orchestrator: %w", err)
	}

	characters, err := character.New(&character.Config{
		CharacterRepo:   characterRepo,
		IDGenerator:     idgen.NewPrefixed("char"),
		ItemRepo:        a.itemRepo,
		LLM:             llmClient,
		ItemIDGenerator: idgen.NewUUID("item"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create character orchestrator: %w", err)
	}

	conversations, err := conversation.New(&conversation.Config{
		CharacterRepo: characterRepo,
		IDGenerator:   idgen.NewPrefixed("char"),
		LLM:           llmClient,
		Portraits:     a.portraits,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation orchestrator: %w", err)
	}

	diceService, err := dice.NewOrchestrator(&dice.Config{
		DiceSessionRepo: diceRepo,
		IDGenerator:     idgen.NewPrefixed("roll"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create dice orchestrator: %w", err)
	}

	api, err := v1.NewHandler(&v1.Config{
		Characters:    characters,
		Conversations: conversations,
		Dice:          diceService,
		Library:       a.library,
		Portraits:     a.portraits,
		HealthChecks:  healthChecks(rdb, llmClient != nil, imageClient != nil, cdnClient != nil),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create API handler: %w", err)
	}

	a.hub, err = ws.NewHub(&ws.Config{
		Dice:           diceService,
		Portraits:      a.portraits,
		AllowedOrigins: cfg.AllowedOrigins,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create websocket hub: %w", err)
	}

	a.router, err = v1.NewRouter(&v1.RouterConfig{
		API:            api,
		WebSocket:      a.hub,
		AllowedOrigins: cfg.AllowedOrigins,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create router: %w", err)
	}

	ok = true
	return a, nil
}

// optionalClients builds the AI and CDN clients that have credentials. A
// missing or broken client is logged and left nil; the features using it
// answer Unavailable.
func optionalClients(cfg *config.Config) (llm.Client, imagegen.Client, cdn.Client) {
	var (
		llmClient   llm.Client
		imageClient imagegen.Client
		cdnClient   cdn.Client
		err         error
	)

	if cfg.LLMConfigured() {
		llmClient, err = llm.New(&llm.Config{
			Provider: cfg.LLMProvider,
			APIKey:   cfg.LLMAPIKey,
			BaseURL:  cfg.LLMBaseURL,
			Model:    cfg.LLMModel,
		})
		if err != nil {
			slog.Warn("LLM client disabled", "provider", cfg.LLMProvider, "error", err)
			llmClient = nil
		}
	} else {
		slog.Warn("No LLM API key configured, chat and character generation are disabled")
	}

	if cfg.ImageConfigured() {
		imageClient, err = imagegen.New(&imagegen.Config{
			APIKey:  cfg.ImageAPIKey,
			BaseURL: cfg.ImageBaseURL,
			Model:   cfg.ImageModel,
		})
		if err != nil {
			slog.Warn("Image generation client disabled", "error", err)
			imageClient = nil
		}
	}

	if cfg.CDNConfigured() {
		cdnClient, err = cdn.New(&cdn.Config{
			APIKey:      cfg.BunnyAPIKey,
			StorageZone: cfg.BunnyStorageZone,
			Region:      cfg.BunnyRegion,
			PullZoneURL: cfg.BunnyPullZoneURL,
		})
		if err != nil {
			slog.Warn("CDN client disabled", "error", err)
			cdnClient = nil
		}
	}

	return llmClient, imageClient, cdnClient
}

func healthChecks(rdb redisclient.Client, llmReady, imageReady, cdnReady bool) map[string]v1.HealthCheck {
	configured := func(ready bool) v1.HealthCheck {
		state := "not configured"
		if ready {
			state = "configured"
		}
		return func(context.Context) string { return state }
	}

	return map[string]v1.HealthCheck{
		"redis": func(ctx context.Context) string {
			if err := redisclient.Ping(ctx, rdb, pingTimeout); err != nil {
				return "disconnected"
			}
			return "connected"
		},
		"llm":             configured(llmReady),
		"imageGeneration": configured(imageReady),
		"cdn":             configured(cdnReady),
	}
}

// Close releases the stores; it is safe on a partially built app
func (a *app) Close() {
	if a.hub != nil {
		a.hub.Close()
	}
	if a.itemRepo != nil {
		if err := a.itemRepo.Close(); err != nil {
			slog.Warn("Failed to close item library", "error", err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			slog.Warn("Failed to close redis client", "error", err)
		}
	}
}
