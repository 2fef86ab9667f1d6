// Package external is the location for the dnd5e-api client
package external

//go:generate mockgen -destination=mock/mock_client.go -package=externalmock github.com/dabidoe/character-foundry/internal/clients/external Client

import (
	"context"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/fadedpez/dnd5e-api/clients/dnd5e"
	srd "github.com/fadedpez/dnd5e-api/entities"

	"github.com/dabidoe/character-foundry/internal/entities"
	"github.com/dabidoe/character-foundry/internal/errors"
)

// SourceSRD marks library items imported from the SRD API
const SourceSRD = "srd"

// GUIDPrefix is prepended to SRD keys to form library guids
const GUIDPrefix = "srd-"

// maxConcurrentLoads bounds parallel detail requests against the public API
const maxConcurrentLoads = 8

// slugPattern matches characters that should be replaced in slugs
var slugPattern = regexp.MustCompile(`[^a-z0-9-]+`)

var dashRun = regexp.MustCompile(`-+`)

// generateSlug creates a URL-safe slug from a string
func generateSlug(s string) string {
	slug := strings.ToLower(strings.TrimSpace(s))
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = slugPattern.ReplaceAllString(slug, "-")
	slug = dashRun.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// Client defines the interface for SRD equipment lookups
type Client interface {
	// ListEquipment returns every SRD equipment entry as a library template
	ListEquipment(ctx context.Context) ([]*entities.Item, error)

	// ListEquipmentByCategory returns the entries of one SRD equipment
	// category such as "martial-weapons" or "heavy-armor"
	ListEquipmentByCategory(ctx context.Context, category string) ([]*entities.Item, error)

	// GetEquipment returns one entry by SRD key or display name
	GetEquipment(ctx context.Context, key string) (*entities.Item, error)
}

// equipmentSource is the part of dnd5e.Interface this package calls
type equipmentSource interface {
	ListEquipment() ([]*srd.ReferenceItem, error)
	GetEquipment(key string) (dnd5e.EquipmentInterface, error)
	GetEquipmentCategory(key string) (*srd.EquipmentCategory, error)
}

type client struct {
	dnd5eClient equipmentSource
}

// Config contains configuration options for the external client.
type Config struct {
	// BaseURL for the D&D 5e API (optional, defaults to https://www.dnd5eapi.co/api/2014/)
	BaseURL string
	// HTTPTimeout for API requests (optional, defaults to 30 seconds)
	HTTPTimeout time.Duration
	// CacheTTL for the cached client (optional, defaults to 24 hours)
	CacheTTL time.Duration
}

// Validate validates the Config and sets defaults if not provided.
func (cfg *Config) Validate() error {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.dnd5eapi.co/api/2014/"
	}
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = 30 * time.Second
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 24 * time.Hour
	}
	return nil
}

// New creates a new external client with the given configuration.
func New(cfg *Config) (Client, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	baseClient, err := dnd5e.NewDND5eAPI(&dnd5e.DND5eAPIConfig{
		Client:  httpClient,
		BaseURL: cfg.BaseURL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create D&D 5e API client")
	}

	return &client{
		dnd5eClient: dnd5e.NewCachedClient(baseClient, cfg.CacheTTL),
	}, nil
}

func (c *client) ListEquipment(ctx context.Context) ([]*entities.Item, error) {
	refs, err := c.dnd5eClient.ListEquipment()
	if err != nil {
		return nil, errors.External(err, "failed to list equipment from D&D 5e API")
	}

	return c.loadEquipmentDetails(ctx, refs)
}

func (c *client) ListEquipmentByCategory(ctx context.Context, category string) ([]*entities.Item, error) {
	if category == "" {
		return nil, errors.InvalidArgument("category is required")
	}

	cat, err := c.dnd5eClient.GetEquipmentCategory(generateSlug(category))
	if err != nil {
		return nil, errors.Externalf(err, "failed to get equipment category %s from D&D 5e API", category)
	}

	return c.loadEquipmentDetails(ctx, cat.Equipment)
}

func (c *client) GetEquipment(ctx context.Context, key string) (*entities.Item, error) {
	if key == "" {
		return nil, errors.InvalidArgument("equipment key is required")
	}

	apiKey := generateSlug(strings.TrimPrefix(key, GUIDPrefix))
	slog.DebugContext(ctx, "Calling D&D 5e API to get equipment", "equipment", key, "api", apiKey)

	eq, err := c.dnd5eClient.GetEquipment(apiKey)
	if err != nil {
		return nil, errors.Externalf(err, "failed to get equipment %s", key)
	}

	item := convertEquipmentToItem(eq)
	if item == nil {
		return nil, errors.NotFoundf("equipment %s not found", key)
	}
	return item, nil
}

// loadEquipmentDetails loads full equipment details for a list of reference
// items concurrently. Output order follows refs.
func (c *client) loadEquipmentDetails(ctx context.Context, refs []*srd.ReferenceItem) ([]*entities.Item, error) {
	slog.InfoContext(ctx, "Loading full details for equipment items", "count", len(refs))

	items := make([]*entities.Item, len(refs))
	errChan := make(chan error, len(refs))
	sem := make(chan struct{}, maxConcurrentLoads)
	var wg sync.WaitGroup

	for i, ref := range refs {
		if ref == nil {
			continue
		}
		wg.Add(1)
		go func(idx int, key string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				errChan <- ctx.Err()
				return
			}

			eq, err := c.dnd5eClient.GetEquipment(key)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to get equipment details", "equipment", key, "error", err)
				errChan <- errors.Externalf(err, "failed to get equipment %s", key)
				return
			}

			items[idx] = convertEquipmentToItem(eq)
		}(i, ref.Key)
	}

	wg.Wait()
	close(errChan)

	for err := range errChan {
		if err != nil {
			return nil, err
		}
	}

	out := make([]*entities.Item, 0, len(items))
	for _, item := range items {
		if item != nil {
			out = append(out, item)
		}
	}
	return out, nil
}
