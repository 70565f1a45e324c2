package local

import (
	"context"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/the-maldridge/ntx/pkg/dispatch"
)

// Local is a provider that keeps handoffs in process.  Nothing is
// executed; the handoffs can be listed back, which makes it useful for
// dry runs and for testing the rest of the system.
type Local struct {
	l hclog.Logger

	mu       sync.Mutex
	handoffs []dispatch.Handoff
}

func init() {
	dispatch.RegisterInitCallback(cb)
}

func cb() {
	dispatch.RegisterFactory("local", New)
}

// New returns a local provider.
func New(l hclog.Logger) (dispatch.Provider, error) {
	return &Local{l: l.Named("local")}, nil
}

// SetSlots does nothing, a local provider never runs anything.
func (c *Local) SetSlots(int) {}

// Dispatch records the handoff.  A handoff equal to one already
// recorded is refused.
func (c *Local) Dispatch(ctx context.Context, h dispatch.Handoff) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.handoffs {
		if c.handoffs[i].Equal(&h) {
			return dispatch.NewErrAlreadyDispatched(h.ID)
		}
	}
	c.handoffs = append(c.handoffs, h)
	c.l.Info("Recorded handoff", "id", h.ID, "install", len(h.Install), "erase", len(h.Erase))
	c.l.Trace("Handoff order", "install", h.Install, "erase", h.Erase)
	return nil
}

// List returns every handoff recorded so far.
func (c *Local) List(context.Context) ([]dispatch.Handoff, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]dispatch.Handoff(nil), c.handoffs...), nil
}
