// Package catalog holds the built-in template items shipped with the
// service. The library is seeded from it on startup.
package catalog

import (
	"context"
	_ "embed"
	"log/slog"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dabidoe/character-foundry/internal/entities"
	"github.com/dabidoe/character-foundry/internal/errors"
	"github.com/dabidoe/character-foundry/internal/repositories/items"
)

// Source marks library items that came from the built-in catalog
const Source = "catalog"

// GUIDPrefix is prepended to catalog ids to form library guids
const GUIDPrefix = "tpl-"

//go:embed items.yaml
var itemsYAML []byte

type document struct {
	Items []entities.Item `yaml:"items"`
}

// Catalog is an immutable set of template items keyed by id
type Catalog struct {
	items []entities.Item
	byID  map[string]int
}

// Load parses the embedded catalog
func Load() (*Catalog, error) {
	return Parse(itemsYAML)
}

// Parse builds a catalog from YAML. Every item gets template, public and
// source set; ids must be unique.
func Parse(raw []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, "failed to parse item catalog")
	}

	c := &Catalog{
		items: make([]entities.Item, 0, len(doc.Items)),
		byID:  make(map[string]int, len(doc.Items)),
	}
	for _, item := range doc.Items {
		item.ID = strings.TrimSpace(item.ID)
		if item.ID == "" || strings.TrimSpace(item.Name) == "" {
			return nil, errors.InvalidArgumentf("catalog item %q is missing an id or name", item.Name)
		}
		if _, dup := c.byID[item.ID]; dup {
			return nil, errors.AlreadyExistsf("duplicate catalog item %s", item.ID)
		}
		if item.Rarity == "" {
			item.Rarity = entities.RarityCommon
		}
		if item.Quantity == 0 {
			item.Quantity = 1
		}
		item.GUID = GUIDPrefix + item.ID
		item.Template = true
		item.Public = true
		item.Source = Source

		c.byID[item.ID] = len(c.items)
		c.items = append(c.items, item)
	}

	return c, nil
}

// Items returns copies of every template in file order
func (c *Catalog) Items() []entities.Item {
	out := make([]entities.Item, len(c.items))
	for i, item := range c.items {
		out[i] = item.Instance(item.ID, item.Quantity)
		out[i].Template = true
		out[i].Public = true
	}
	return out
}

// Get returns a copy of the template with id or guid
func (c *Catalog) Get(id string) (entities.Item, bool) {
	idx, ok := c.byID[strings.TrimPrefix(id, GUIDPrefix)]
	if !ok {
		return entities.Item{}, false
	}
	item := c.items[idx].Instance(c.items[idx].ID, c.items[idx].Quantity)
	item.Template = true
	item.Public = true
	return item, true
}

// Len is the number of templates
func (c *Catalog) Len() int {
	return len(c.items)
}

// SeedOutput reports what Seed wrote
type SeedOutput struct {
	Created int
	Updated int
}

// Seed upserts every template into the library so edits to the catalog
// reach existing databases
func (c *Catalog) Seed(ctx context.Context, repo items.Repository) (*SeedOutput, error) {
	if repo == nil {
		return nil, errors.InvalidArgument("item repository is required")
	}

	out := &SeedOutput{}
	for _, item := range c.Items() {
		item := item
		res, err := repo.Upsert(ctx, items.UpsertInput{Item: &item})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to seed catalog item %s", item.ID)
		}
		if res.Created {
			out.Created++
		} else {
			out.Updated++
		}
	}

	slog.InfoContext(ctx, "seeded item catalog", "created", out.Created, "updated", out.Updated)
	return out, nil
}
