// Package id provides centralized ID generation for the canvas engine.
//
// Two formats are supported:
//   - Timestamp (default): "<prefix>_<unix-ms>_<0..999>", the format tabs and
//     nodes have always carried on the canvas
//   - ULID: "<prefix>_<ULID>", lexicographically sortable and collision free
//
// The timestamp format is only probabilistically unique: two IDs minted in the
// same millisecond collide with probability 1/1000. Collisions are not
// detected; deployments that need a guarantee select the ULID strategy.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	mathrand "math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ============================================================================
// ID Prefixes
// ============================================================================

const (
	TabPrefix  = "tab"
	NodePrefix = "node"
)

// Strategy selects the ID format.
type Strategy string

const (
	StrategyTimestamp Strategy = "timestamp"
	StrategyULID      Strategy = "ulid"
)

// ParseStrategy maps a config value to a Strategy. Unknown values fall back to
// the timestamp strategy.
func ParseStrategy(s string) Strategy {
	if Strategy(s) == StrategyULID {
		return StrategyULID
	}
	return StrategyTimestamp
}

// ============================================================================
// Generator
// ============================================================================

// Generator mints prefixed IDs. Safe for concurrent use.
type Generator struct {
	strategy Strategy
	now      func() time.Time
	intn     func(n int) int

	mu      sync.Mutex
	lastMs  int64
	entropy io.Reader
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton timestamp generator.
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator(StrategyTimestamp)
	})
	return defaultGenerator
}

// NewGenerator creates a generator for the given strategy.
func NewGenerator(strategy Strategy) *Generator {
	return &Generator{
		strategy: strategy,
		now:      time.Now,
		intn:     mathrand.IntN,
		entropy:  ulid.Monotonic(rand.Reader, 0),
	}
}

// NewGeneratorWithSource creates a timestamp generator with an injected clock and
// random source. Useful for testing.
func NewGeneratorWithSource(now func() time.Time, intn func(n int) int) *Generator {
	g := NewGenerator(StrategyTimestamp)
	g.now = now
	g.intn = intn
	return g
}

// Strategy reports the generator's format.
func (g *Generator) Strategy() Strategy {
	return g.strategy
}

// New creates an ID with the given prefix.
func (g *Generator) New(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.strategy == StrategyULID {
		return fmt.Sprintf("%s_%s", prefix, ulid.MustNew(ulid.Timestamp(g.now()), g.entropy).String())
	}

	// Clock steps backwards are clamped so timestamps never decrease.
	ms := g.now().UnixMilli()
	if ms < g.lastMs {
		ms = g.lastMs
	}
	g.lastMs = ms

	return fmt.Sprintf("%s_%d_%d", prefix, ms, g.intn(1000))
}

// NewTabID generates a tab ID.
func (g *Generator) NewTabID() string {
	return g.New(TabPrefix)
}

// NewNodeID generates a node ID.
func (g *Generator) NewNodeID() string {
	return g.New(NodePrefix)
}

// ============================================================================
// Parsing
// ============================================================================

// Timestamp extracts the creation time encoded in an ID of either format.
func Timestamp(id string) (time.Time, error) {
	parts := strings.Split(id, "_")
	switch len(parts) {
	case 3:
		ms, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid id %q: %w", id, err)
		}
		return time.UnixMilli(ms), nil
	case 2:
		parsed, err := ulid.Parse(parts[1])
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid id %q: %w", id, err)
		}
		return ulid.Time(parsed.Time()), nil
	default:
		return time.Time{}, fmt.Errorf("invalid id %q", id)
	}
}
