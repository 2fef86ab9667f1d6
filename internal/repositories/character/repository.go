// Package character provides the interface for character persistence
package character

//go:generate mockgen -destination=mock/mock_repository.go -package=charactermock github.com/dabidoe/character-foundry/internal/repositories/character Repository

import (
	"context"

	"github.com/dabidoe/character-foundry/internal/entities"
)

// Default page sizes
const (
	DefaultListLimit   = 50
	DefaultSearchLimit = 20
)

// Repository defines the interface for character persistence
type Repository interface {
	// Create stores a new character document
	// Returns errors.InvalidArgument for validation failures
	// Returns errors.AlreadyExists if a character with the same ID exists
	// Returns errors.Internal for storage failures
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves a character by ID
	// Returns errors.InvalidArgument for empty IDs
	// Returns errors.NotFound if the character doesn't exist
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// List returns characters ordered by creation time, newest first
	List(ctx context.Context, input ListInput) (*ListOutput, error)

	// Update replaces the whole document
	// Returns errors.NotFound if the character doesn't exist
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)

	// Modify loads the stored document, hands it to Apply and writes the
	// result back under WATCH. A write by anyone else in between restarts
	// the cycle, so Apply may run more than once and must only touch the
	// fields it owns. An error from Apply aborts without writing.
	// Returns errors.NotFound if the character doesn't exist
	Modify(ctx context.Context, input ModifyInput) (*ModifyOutput, error)

	// Delete removes a character and its index entries
	// Returns errors.NotFound if the character doesn't exist
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)

	// Search matches name, race and class case-insensitively
	Search(ctx context.Context, input SearchInput) (*SearchOutput, error)

	// Stats counts stored characters
	Stats(ctx context.Context, input StatsInput) (*StatsOutput, error)
}

// CreateInput defines the input for creating a character
type CreateInput struct {
	Character *entities.Character
}

// CreateOutput defines the output for creating a character
type CreateOutput struct {
	Character *entities.Character
}

// GetInput defines the input for getting a character
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting a character
type GetOutput struct {
	Character *entities.Character
}

// ListInput filters and pages a listing. An empty UserID lists everyone.
type ListInput struct {
	UserID string
	Limit  int
	Skip   int
}

// ListOutput is one page plus the total matching the filter
type ListOutput struct {
	Characters []*entities.Character
	Total      int
}

// UpdateInput defines the input for updating a character
type UpdateInput struct {
	Character *entities.Character
}

// UpdateOutput defines the output for updating a character
type UpdateOutput struct {
	Character *entities.Character
}

// ModifyInput names the character and the change to apply to it
type ModifyInput struct {
	ID    string
	Apply func(*entities.Character) error
}

// ModifyOutput holds the document as written
type ModifyOutput struct {
	Character *entities.Character
}

// DeleteInput defines the input for deleting a character
type DeleteInput struct {
	ID string
}

// DeleteOutput defines the output for deleting a character
type DeleteOutput struct {
	Deleted bool
}

// SearchInput is a free-text query
type SearchInput struct {
	Query string
	Limit int
}

// SearchOutput holds matches, newest first
type SearchOutput struct {
	Characters []*entities.Character
}

// StatsInput is empty for now
type StatsInput struct{}

// StatsOutput holds collection counts
type StatsOutput struct {
	Total          int `json:"total"`
	CreatedLast24h int `json:"createdLast24h"`
}
