// Package library implements browsing and importing of the shared item
// library
package library

//go:generate mockgen -destination=mock/mock_service.go -package=librarymock github.com/dabidoe/character-foundry/internal/orchestrators/library Service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dabidoe/character-foundry/internal/catalog"
	"github.com/dabidoe/character-foundry/internal/clients/external"
	"github.com/dabidoe/character-foundry/internal/entities"
	"github.com/dabidoe/character-foundry/internal/errors"
	"github.com/dabidoe/character-foundry/internal/repositories/items"
)

// Service defines the library operations
type Service interface {
	ListItems(ctx context.Context, input *ListItemsInput) (*ListItemsOutput, error)
	GetItem(ctx context.Context, input *GetItemInput) (*GetItemOutput, error)
	ImportSRD(ctx context.Context, input *ImportSRDInput) (*ImportSRDOutput, error)
	SeedCatalog(ctx context.Context, input *SeedCatalogInput) (*SeedCatalogOutput, error)
}

// Config holds the dependencies for the library orchestrator
type Config struct {
	ItemRepo items.Repository

	// SRD is optional; ImportSRD answers Unavailable without it
	SRD external.Client
	// Catalog defaults to the embedded catalog
	Catalog *catalog.Catalog
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.ItemRepo == nil {
		vb.RequiredField("ItemRepo")
	}

	return vb.Build()
}

// Orchestrator implements Service
type Orchestrator struct {
	itemRepo items.Repository
	srd      external.Client
	catalog  *catalog.Catalog
}

// New creates a library orchestrator
func New(cfg *Config) (*Orchestrator, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	cat := cfg.Catalog
	if cat == nil {
		var err error
		cat, err = catalog.Load()
		if err != nil {
			return nil, err
		}
	}

	return &Orchestrator{
		itemRepo: cfg.ItemRepo,
		srd:      cfg.SRD,
		catalog:  cat,
	}, nil
}

var _ Service = (*Orchestrator)(nil)

// ListItems browses the library, newest first
func (o *Orchestrator) ListItems(ctx context.Context, input *ListItemsInput) (*ListItemsOutput, error) {
	if input == nil {
		input = &ListItemsInput{}
	}
	if input.Limit < 0 || input.Skip < 0 {
		return nil, errors.InvalidArgument("limit and skip cannot be negative")
	}

	limit := input.Limit
	if limit == 0 {
		limit = items.DefaultListLimit
	}

	out, err := o.itemRepo.List(ctx, items.ListInput{
		Category: entities.ItemCategory(strings.ToLower(strings.TrimSpace(input.Category))),
		Rarity:   entities.Rarity(strings.ToLower(strings.TrimSpace(input.Rarity))),
		Template: input.Template,
		Public:   input.Public,
		UserID:   input.UserID,
		Search:   strings.TrimSpace(input.Search),
		Limit:    limit,
		Skip:     input.Skip,
	})
	if err != nil {
		return nil, errors.Wrap(err, "Failed to fetch items")
	}

	views := make([]*ItemView, 0, len(out.Items))
	for _, item := range out.Items {
		views = append(views, newItemView(item))
	}

	return &ListItemsOutput{
		Items: views,
		Total: out.Total,
		Limit: limit,
		Skip:  input.Skip,
	}, nil
}

// GetItem returns a public item by guid. Private items look missing.
func (o *Orchestrator) GetItem(ctx context.Context, input *GetItemInput) (*GetItemOutput, error) {
	if input == nil || input.GUID == "" {
		return nil, errors.InvalidArgument("guid is required")
	}

	out, err := o.itemRepo.Get(ctx, items.GetInput{GUID: input.GUID})
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.WrapWithCode(err, errors.CodeNotFound, "Item not found or not public")
		}
		return nil, errors.Wrap(err, "Failed to fetch item")
	}
	if !out.Item.Public {
		return nil, errors.NotFound("Item not found or not public")
	}

	return &GetItemOutput{Item: newItemView(out.Item)}, nil
}

// ImportSRD upserts SRD equipment into the library. Items that fail to
// write are counted and skipped.
func (o *Orchestrator) ImportSRD(ctx context.Context, input *ImportSRDInput) (*ImportSRDOutput, error) {
	if o.srd == nil {
		return nil, errors.Unavailable("SRD client is not configured")
	}
	if input == nil {
		input = &ImportSRDInput{}
	}

	var fetched []*entities.Item
	if len(input.Categories) == 0 {
		all, err := o.srd.ListEquipment(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "failed to fetch SRD equipment")
		}
		fetched = all
	} else {
		for _, category := range input.Categories {
			got, err := o.srd.ListEquipmentByCategory(ctx, category)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to fetch SRD category %s", category)
			}
			fetched = append(fetched, got...)
		}
	}

	out := &ImportSRDOutput{Fetched: len(fetched)}
	for _, item := range fetched {
		if item == nil {
			continue
		}
		res, err := o.itemRepo.Upsert(ctx, items.UpsertInput{Item: item})
		if err != nil {
			slog.WarnContext(ctx, "Failed to import SRD item",
				"guid", item.GUID,
				"error", err,
			)
			out.Failed++
			continue
		}
		if res.Created {
			out.Created++
		} else {
			out.Updated++
		}
	}

	slog.InfoContext(ctx, "SRD import finished",
		"fetched", out.Fetched,
		"created", out.Created,
		"updated", out.Updated,
		"failed", out.Failed,
	)

	return out, nil
}

// SeedCatalog writes the built-in templates into the library
func (o *Orchestrator) SeedCatalog(ctx context.Context, _ *SeedCatalogInput) (*SeedCatalogOutput, error) {
	out, err := o.catalog.Seed(ctx, o.itemRepo)
	if err != nil {
		return nil, err
	}
	return &SeedCatalogOutput{Created: out.Created, Updated: out.Updated}, nil
}
