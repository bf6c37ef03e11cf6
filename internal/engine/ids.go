package engine

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// IDGenerator assigns identity to freshly created records.
// Implemented by UUIDv7Generator (production) and FixedGenerator (tests).
// Injecting the generator keeps Update deterministic under test.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 record ids.
//
// UUIDv7 embeds a timestamp in the most significant bits, so ids sort by
// creation time - handy when eyeballing the remote store.
//
// Thread-safety: stateless, safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined ids for testing.
// Enables exact assertions on created records.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
// Generate panics once all ids are consumed - a fail-fast signal that a
// test created more records than it scripted.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next predetermined id.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx >= len(g.ids) {
		panic(fmt.Sprintf("FixedGenerator exhausted after %d ids", len(g.ids)))
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
