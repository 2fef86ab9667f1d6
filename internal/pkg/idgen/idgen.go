// Package idgen provides ID generation utilities
package idgen

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dabidoe/character-foundry/internal/pkg/clock"
)

const (
	suffixLength = 9
	base36       = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// Generator generates unique identifiers
type Generator interface {
	Generate() string
}

// PrefixedGenerator produces ids shaped like char_1718000000000_k3j9x0a1b:
// prefix, unix milliseconds, then nine base36 characters.
type PrefixedGenerator struct {
	prefix string
	clock  clock.Clock
}

// NewPrefixed creates a new generator with the given prefix
func NewPrefixed(prefix string) *PrefixedGenerator {
	return &PrefixedGenerator{prefix: prefix, clock: clock.New()}
}

// WithClock swaps the time source, used by tests that assert on the id shape
func (g *PrefixedGenerator) WithClock(c clock.Clock) *PrefixedGenerator {
	g.clock = c
	return g
}

// Generate creates a new id
func (g *PrefixedGenerator) Generate() string {
	millis := g.clock.Now().UnixMilli()
	return fmt.Sprintf("%s_%s_%s", g.prefix, strconv.FormatInt(millis, 10), randomBase36(suffixLength))
}

func randomBase36(n int) string {
	out := make([]byte, n)
	limit := big.NewInt(int64(len(base36)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			panic(fmt.Sprintf("crypto/rand failed: %v", err))
		}
		out[i] = base36[idx.Int64()]
	}
	return string(out)
}

// SequentialGenerator generates sequential IDs for testing
type SequentialGenerator struct {
	prefix  string
	counter uint64
}

// NewSequential creates a new sequential generator
func NewSequential(prefix string) *SequentialGenerator {
	return &SequentialGenerator{prefix: prefix}
}

// Generate creates a new sequential ID
func (g *SequentialGenerator) Generate() string {
	n := atomic.AddUint64(&g.counter, 1)
	if g.prefix != "" {
		return fmt.Sprintf("%s_%d", g.prefix, n)
	}
	return fmt.Sprintf("%d", n)
}

// UUIDGenerator generates UUIDs with optional prefix. Item instances and
// library guids use it.
type UUIDGenerator struct {
	prefix string
}

// NewUUID creates a new UUID generator with optional prefix
func NewUUID(prefix string) *UUIDGenerator {
	return &UUIDGenerator{prefix: prefix}
}

// Generate creates a new UUID-based ID
func (g *UUIDGenerator) Generate() string {
	id := uuid.New().String()
	if g.prefix != "" {
		return fmt.Sprintf("%s_%s", g.prefix, id)
	}
	return id
}
