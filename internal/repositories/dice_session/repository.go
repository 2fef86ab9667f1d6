// Package dicesession stores recent dice rolls grouped by entity and context
package dicesession

import (
	"context"
	"time"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=dicesessionmock github.com/dabidoe/character-foundry/internal/repositories/dice_session Repository

// DiceSession is the roll history of one entity in one context, for example
// a character's "ability_scores" or "combat" rolls.
type DiceSession struct {
	EntityID  string     `json:"entityId"`
	Context   string     `json:"context"`
	Rolls     []DiceRoll `json:"rolls"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt time.Time  `json:"expiresAt"`
}

// DiceRoll is one stored roll
type DiceRoll struct {
	RollID      string    `json:"rollId"`
	Notation    string    `json:"notation"`
	Dice        []int     `json:"dice"`
	Dropped     []int     `json:"dropped,omitempty"`
	DiceTotal   int       `json:"diceTotal"`
	Modifier    int       `json:"modifier"`
	Total       int       `json:"total"`
	Breakdown   string    `json:"breakdown"`
	Description string    `json:"description,omitempty"`
	RolledAt    time.Time `json:"rolledAt"`
}

// CreateInput contains parameters for creating a dice session
type CreateInput struct {
	EntityID string
	Context  string
	Rolls    []DiceRoll
	TTL      time.Duration
}

// CreateOutput contains the created session
type CreateOutput struct {
	Session *DiceSession
}

// GetInput identifies a session
type GetInput struct {
	EntityID string
	Context  string
}

// GetOutput contains the session
type GetOutput struct {
	Session *DiceSession
}

// AppendInput adds rolls to a session, creating it when absent
type AppendInput struct {
	EntityID string
	Context  string
	Rolls    []DiceRoll
	TTL      time.Duration
}

// AppendOutput contains the session after the append
type AppendOutput struct {
	Session *DiceSession
}

// DeleteInput identifies a session
type DeleteInput struct {
	EntityID string
	Context  string
}

// DeleteOutput reports how many rolls were removed
type DeleteOutput struct {
	RollsDeleted int
}

// Repository defines dice session storage
type Repository interface {
	// Create stores a new session, replacing any existing one
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get returns errors.NotFound for missing or expired sessions
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Append adds rolls keeping the session's remaining TTL
	Append(ctx context.Context, input AppendInput) (*AppendOutput, error)

	// Delete removes a session; deleting a missing session is not an error
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)
}
