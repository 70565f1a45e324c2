package nomad

import (
	"context"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/nomad/api"

	"github.com/the-maldridge/ntx/pkg/dispatch"
)

// JobID is the parameterized nomad job that executes transactions.
var JobID = "xbps-install"

type nomadProvider struct {
	l hclog.Logger
	c *api.Client

	slots int
}

func init() {
	dispatch.RegisterInitCallback(cb)
}

func cb() {
	dispatch.RegisterFactory("nomad", New)
}

// New returns a wrapper around a nomad client that implements the
// dispatch Provider interface.
func New(l hclog.Logger) (dispatch.Provider, error) {
	c, err := api.NewClient(api.DefaultConfig())
	if err != nil {
		return nil, err
	}

	x := &nomadProvider{
		l:     l.Named("nomad"),
		c:     c,
		slots: 1,
	}
	return x, nil
}

func (n *nomadProvider) Dispatch(ctx context.Context, h dispatch.Handoff) error {
	running, err := n.List(ctx)
	if err != nil {
		return dispatch.ErrNoCapacity{}
	}
	for i := range running {
		if running[i].Equal(&h) {
			return dispatch.NewErrAlreadyDispatched(h.ID)
		}
	}
	if len(running)+1 > n.slots {
		return dispatch.ErrNoCapacity{}
	}

	wopts := (&api.WriteOptions{}).WithContext(ctx)
	res, _, err := n.c.Jobs().Dispatch(JobID, h.ToMap(), nil, wopts)
	if err != nil {
		n.l.Warn("Nomad error", "error", err)
		return err
	}
	n.l.Debug("Dispatched job", "id", h.ID, "arch", h.Arch, "eval", res.EvalID, "jid", res.DispatchedJobID)
	return nil
}

// List returns the handoffs whose nomad jobs are still pending or
// running.
func (n *nomadProvider) List(ctx context.Context) ([]dispatch.Handoff, error) {
	qopts := (&api.QueryOptions{
		Prefix: JobID + "/dispatch-",
	}).WithContext(ctx)
	jobs, _, err := n.c.Jobs().List(qopts)
	if err != nil {
		return nil, err
	}
	var handoffs []dispatch.Handoff
	for _, stub := range jobs {
		if stub.Type != "batch" || (stub.Status != "running" && stub.Status != "pending") {
			continue
		}
		job, _, err := n.c.Jobs().Info(stub.ID, (&api.QueryOptions{}).WithContext(ctx))
		if err != nil {
			n.l.Trace("Error reading job", "job", stub.ID, "error", err)
			continue
		}
		h := dispatch.HandoffFromMap(job.Meta)
		n.l.Trace("Found running handoff", "handoff", h)
		handoffs = append(handoffs, h)
	}
	return handoffs, nil
}

func (n *nomadProvider) SetSlots(s int) {
	n.slots = s
}
