package txinfo

import (
	"github.com/hashicorp/go-hclog"

	"github.com/the-maldridge/ntx/pkg/types"
)

// Data holds every member of a transaction being assembled, keyed by
// package tuple.  It is not safe for concurrent use: one resolution
// pass owns it and serializes all mutations.
type Data struct {
	l hclog.Logger

	pkgdict map[types.PkgTuple][]*Member
	// order keeps tuples in the order they were first added, which is
	// the iteration order for every query.
	order []types.PkgTuple

	conditionals map[string][]*types.Package

	changed bool
	gen     uint64

	lists *Lists
}

// Option configures a Data.
type Option func(*Data)

// WithLogger sets the parent logger.
func WithLogger(l hclog.Logger) Option {
	return func(d *Data) {
		d.l = l.Named("txinfo")
	}
}

// WithConditionals seeds the conditional install table.
func WithConditionals(c map[string][]*types.Package) Option {
	return func(d *Data) {
		for name, pos := range c {
			for _, po := range pos {
				d.AddConditional(name, po)
			}
		}
	}
}

// New returns an empty transaction.
func New(opts ...Option) *Data {
	d := &Data{
		l:            hclog.NewNullLogger(),
		pkgdict:      make(map[types.PkgTuple][]*Member),
		conditionals: make(map[string][]*types.Package),
		lists:        new(Lists),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Len returns the number of distinct tuples in the transaction.
func (d *Data) Len() int {
	return len(d.pkgdict)
}

// Changed reports whether the transaction was structurally modified
// since the last ResetChanged.
func (d *Data) Changed() bool {
	return d.changed
}

// ResetChanged clears the dirty flag.
func (d *Data) ResetChanged() {
	d.changed = false
}

// AddConditional registers po to be installed as a dependency
// whenever a package called name joins the transaction.
func (d *Data) AddConditional(name string, po *types.Package) {
	d.conditionals[name] = append(d.conditionals[name], po)
}

// Members returns every member, optionally restricted to the given
// output states.
func (d *Data) Members(states ...types.State) []*Member {
	var ret []*Member
	for _, t := range d.order {
		ret = append(ret, filterStates(d.pkgdict[t], states)...)
	}
	return ret
}

// MembersOf returns the members stored for a single tuple, optionally
// restricted to the given output states.
func (d *Data) MembersOf(t types.PkgTuple, states ...types.State) []*Member {
	return filterStates(d.pkgdict[t], states)
}

func filterStates(members []*Member, states []types.State) []*Member {
	if len(states) == 0 {
		return append([]*Member(nil), members...)
	}
	var ret []*Member
	for _, m := range members {
		for _, s := range states {
			if m.OutputState == s {
				ret = append(ret, m)
				break
			}
		}
	}
	return ret
}

// AsSack unwraps members to their package objects keeping the order
// they were given in.
func AsSack(members []*Member) []*types.Package {
	ret := make([]*types.Package, len(members))
	for i, m := range members {
		ret[i] = m.po
	}
	return ret
}

// Mode returns the target state of the first member matching the
// filter, or TargetNone.
func (d *Data) Mode(f types.PkgTuple) types.TargetState {
	m := d.MatchNaevr(f)
	if len(m) == 0 {
		return types.TargetNone
	}
	return m[0].TargetState
}

// MatchNaevr returns every member whose tuple matches all non-empty
// fields of f.  Empty fields match anything.
func (d *Data) MatchNaevr(f types.PkgTuple) []*Member {
	var ret []*Member
	for _, t := range d.order {
		if f.Name != "" && f.Name != t.Name {
			continue
		}
		if f.Arch != "" && f.Arch != t.Arch {
			continue
		}
		if f.Epoch != "" && f.Epoch != t.Epoch {
			continue
		}
		if f.Version != "" && f.Version != t.Version {
			continue
		}
		if f.Release != "" && f.Release != t.Release {
			continue
		}
		ret = append(ret, d.pkgdict[t]...)
	}
	return ret
}

// Exists reports whether any member is stored for the tuple.
func (d *Data) Exists(t types.PkgTuple) bool {
	return len(d.pkgdict[t]) != 0
}

// IsObsoleted reports whether the tuple is marked to be obsoleted.
func (d *Data) IsObsoleted(t types.PkgTuple) bool {
	for _, m := range d.pkgdict[t] {
		if m.OutputState == types.StateObsoleted {
			return true
		}
	}
	return false
}

// Add inserts a member.  A member whose tuple already holds a member
// in the same output state is dropped and the stored one is returned.
// Conditional installs keyed on the member's name are expanded.
func (d *Data) Add(m *Member) *Member {
	return d.add(m, make(map[string]struct{}))
}

func (d *Data) add(m *Member, expanded map[string]struct{}) *Member {
	t := m.Tuple()
	existing, ok := d.pkgdict[t]
	if !ok {
		d.order = append(d.order, t)
	} else {
		d.l.Trace("Package already in transaction", "package", t)
		for _, e := range existing {
			if e.OutputState == m.OutputState {
				d.l.Trace("Package in same mode, skipping", "package", t, "state", m.OutputState)
				return e
			}
		}
	}
	d.pkgdict[t] = append(existing, m)
	d.changed = true
	d.gen++

	if _, done := expanded[m.Name]; done {
		return m
	}
	conds, ok := d.conditionals[m.Name]
	if !ok {
		return m
	}
	expanded[m.Name] = struct{}{}
	for _, po := range conds {
		d.l.Debug("Adding conditional install", "trigger", m.Name, "package", po.Tuple())
		fresh := d.newInstall(po)
		cm := d.add(fresh, expanded)
		if cm != fresh {
			// Already in the transaction on its own merit, only
			// the ordering edge is added.
			cm.AddDependency(m.po)
			continue
		}
		cm.SetAsDep(m.po)
	}
	return m
}

// Remove drops every member stored for the tuple and clears the state
// tag on their packages.  Members that depend on the removed ones are
// left alone.
func (d *Data) Remove(t types.PkgTuple) {
	members, ok := d.pkgdict[t]
	if !ok {
		d.l.Trace("Package not in transaction", "package", t)
		return
	}
	for _, m := range members {
		m.po.SetState(types.StateNone)
	}
	delete(d.pkgdict, t)
	for i := range d.order {
		if d.order[i] == t {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	d.changed = true
	d.gen++
}

func (d *Data) newInstall(po *types.Package) *Member {
	m := newMember(po)
	m.CurrentState = types.StateAvailable
	m.OutputState = types.StateInstall
	m.TargetState = types.TargetInstall
	po.SetState(types.StateInstall)
	return m
}

// AddInstall adds po as an install.
func (d *Data) AddInstall(po *types.Package) *Member {
	return d.Add(d.newInstall(po))
}

// AddTrueInstall adds po as an install that must not be turned into
// an update of an installed version.
func (d *Data) AddTrueInstall(po *types.Package) *Member {
	m := newMember(po)
	m.CurrentState = types.StateAvailable
	m.OutputState = types.StateTrueInstall
	m.TargetState = types.TargetInstall
	po.SetState(types.StateTrueInstall)
	return d.Add(m)
}

// AddErase adds po as an erasure.
func (d *Data) AddErase(po *types.Package) *Member {
	m := newMember(po)
	m.CurrentState = types.StateInstall
	m.OutputState = types.StateErase
	m.TargetState = types.TargetAvailable
	po.SetState(types.StateErase)
	return d.Add(m)
}

// AddUpdate adds po as an update.  If oldpo is given, oldpo is added
// as being updated by po.
func (d *Data) AddUpdate(po, oldpo *types.Package) *Member {
	m := newMember(po)
	m.CurrentState = types.StateAvailable
	m.OutputState = types.StateUpdate
	m.TargetState = types.TargetUpdate
	po.SetState(types.StateUpdate)
	if oldpo != nil {
		m.relate(oldpo.Tuple(), types.RelUpdates)
		m.Updates = append(m.Updates, oldpo)
		d.AddUpdated(oldpo, po)
	}
	return d.Add(m)
}

// AddUpdated adds po as being updated by updating.
func (d *Data) AddUpdated(po, updating *types.Package) *Member {
	m := newMember(po)
	m.CurrentState = types.StateInstall
	m.OutputState = types.StateUpdated
	m.TargetState = types.TargetUpdated
	po.SetState(types.StateUpdated)
	m.relate(updating.Tuple(), types.RelUpdatedBy)
	m.UpdatedBy = append(m.UpdatedBy, updating)
	return d.Add(m)
}

// AddObsoleting adds po as obsoleting oldpo.
func (d *Data) AddObsoleting(po, oldpo *types.Package) *Member {
	m := newMember(po)
	m.CurrentState = types.StateAvailable
	m.OutputState = types.StateObsoleting
	m.TargetState = types.TargetObsoleting
	po.SetState(types.StateObsoleting)
	m.relate(oldpo.Tuple(), types.RelObsoletes)
	m.Obsoletes = append(m.Obsoletes, oldpo)
	return d.Add(m)
}

// AddObsoleted adds po as being obsoleted by obsoleting.
func (d *Data) AddObsoleted(po, obsoleting *types.Package) *Member {
	m := newMember(po)
	m.CurrentState = types.StateInstall
	m.OutputState = types.StateObsoleted
	m.TargetState = types.TargetObsoleted
	po.SetState(types.StateObsoleted)
	m.relate(obsoleting.Tuple(), types.RelObsoletedBy)
	m.ObsoletedBy = append(m.ObsoletedBy, obsoleting)
	return d.Add(m)
}
