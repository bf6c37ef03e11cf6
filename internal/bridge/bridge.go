// Package bridge is the versioned byte boundary between the core and its
// hosts. Hosts speak wire-encoded events, effects, and snapshots; the
// types behind them never cross.
package bridge

import (
	"sync"

	"github.com/woodshed-app/woodshed/internal/domain"
	"github.com/woodshed-app/woodshed/internal/engine"
	"github.com/woodshed-app/woodshed/internal/view"
)

// Core is the host-facing shell around the update engine.
//
// Events are processed strictly sequentially: the internal lock admits
// one ProcessEvent at a time, which is what makes "either the whole
// event applies or none of it does" hold for multi-threaded hosts.
type Core struct {
	mu     sync.Mutex
	engine *engine.Engine
}

// New creates a Core around a fresh engine.
func New(opts ...engine.Option) *Core {
	return &Core{engine: engine.New(opts...)}
}

// Engine exposes the wrapped engine to in-process hosts (the local
// store hydration path). Byte-boundary hosts never need it.
func (c *Core) Engine() *engine.Engine {
	return c.engine
}

// ProcessEvent decodes one event, applies it, and returns the encoded
// effect list.
//
// A decode failure never reaches the engine: it indicates a protocol
// mismatch between core and host and is always surfaced. A validation
// failure is returned as a *domain.ValidationError with the model
// untouched. Both are fatal to this operation only, never the process.
func (c *Core) ProcessEvent(eventBytes []byte) ([]byte, error) {
	ev, err := domain.UnmarshalEvent(eventBytes)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	effects, err := c.engine.Update(ev)
	if err != nil {
		return nil, err
	}
	return domain.MarshalEffects(effects)
}

// View computes and encodes the current snapshot. Pull-based and
// idempotent: calling it twice without an intervening event returns the
// same bytes.
func (c *Core) View() ([]byte, error) {
	c.mu.Lock()
	snap := view.Project(c.engine.Goals(), c.engine.Studies(), c.engine.Sessions())
	c.mu.Unlock()

	return view.MarshalSnapshot(snap)
}
