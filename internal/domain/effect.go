package domain

// Effect is the closed union of core-originated side-effect requests,
// executed by the host. Render is the only current variant; future
// variants (HTTP, notifications) append to the declaration order, never
// reorder it.
type Effect interface {
	effect()
}

// Effect variant indices, in declaration order.
const (
	effectRender uint32 = iota

	numEffectVariants = iota
)

// Render asks the host to re-pull the view projection. The core never
// pushes projection data; the pull keeps rendering idempotent.
type Render struct{}

func (Render) effect() {}
