// Package items stores the item library: template items shared by every
// character and user-created items, browsable by category, rarity and text.
package items

//go:generate mockgen -destination=mock/mock_repository.go -package=itemsmock github.com/dabidoe/character-foundry/internal/repositories/items Repository

import (
	"context"

	"github.com/dabidoe/character-foundry/internal/entities"
)

// DefaultListLimit caps a page when the caller gives no limit
const DefaultListLimit = 100

// Repository defines item library persistence
type Repository interface {
	// Create inserts a new item
	// Returns errors.AlreadyExists when the GUID is taken
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Upsert inserts or replaces an item by GUID
	Upsert(ctx context.Context, input UpsertInput) (*UpsertOutput, error)

	// Get returns errors.NotFound for unknown GUIDs
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// List filters items, newest first
	List(ctx context.Context, input ListInput) (*ListOutput, error)

	// Close releases the underlying database
	Close() error
}

// CreateInput holds a new item; GUID is required
type CreateInput struct {
	Item *entities.Item
}

// CreateOutput returns the stored item
type CreateOutput struct {
	Item *entities.Item
}

// UpsertInput holds the item to write
type UpsertInput struct {
	Item *entities.Item
}

// UpsertOutput reports whether the item was new
type UpsertOutput struct {
	Item    *entities.Item
	Created bool
}

// GetInput identifies an item
type GetInput struct {
	GUID string
}

// GetOutput returns the item
type GetOutput struct {
	Item *entities.Item
}

// ListInput filters the library. Nil pointers do not filter.
type ListInput struct {
	Category entities.ItemCategory
	Rarity   entities.Rarity
	Template *bool
	Public   *bool
	UserID   string
	Search   string
	Limit    int
	Skip     int
}

// ListOutput is one page and the number of matching items
type ListOutput struct {
	Items []*entities.Item
	Total int
	Limit int
	Skip  int
}
