package planner

import (
	"time"

	"github.com/the-maldridge/ntx/pkg/dispatch"
	"github.com/the-maldridge/ntx/pkg/storage"
)

// Option configures a Planner.
type Option func(*Planner)

// WithArch sets the architecture reported in handoffs.
func WithArch(arch string) Option {
	return func(p *Planner) {
		p.arch = arch
	}
}

// WithConditionals provides the conditional install table by package
// name.  Names are looked up in the repository indexes whenever a new
// transaction is started.
func WithConditionals(c map[string][]string) Option {
	return func(p *Planner) {
		for trigger, names := range c {
			p.conditionals[trigger] = append(p.conditionals[trigger], names...)
		}
	}
}

// WithStorage enables persistence of committed reports to a durable
// datastore.
func WithStorage(s storage.Storage) Option {
	return func(p *Planner) {
		p.storage = s
	}
}

// WithDispatcher sets the provider committed transactions are handed
// to.
func WithDispatcher(d dispatch.Provider) Option {
	return func(p *Planner) {
		p.dispatcher = d
	}
}

// WithClock overrides the time source used to name transactions.
func WithClock(now func() time.Time) Option {
	return func(p *Planner) {
		p.now = now
	}
}
