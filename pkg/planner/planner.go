package planner

import (
	"context"
	"encoding/json"
	"errors"
	"path"
	"strconv"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/the-maldridge/ntx/pkg/dispatch"
	"github.com/the-maldridge/ntx/pkg/repo"
	"github.com/the-maldridge/ntx/pkg/storage"
	"github.com/the-maldridge/ntx/pkg/txinfo"
	"github.com/the-maldridge/ntx/pkg/types"
	"github.com/the-maldridge/ntx/pkg/version"
)

// installing are the output states that put a package on the system.
var installing = []types.State{types.StateInstall, types.StateTrueInstall, types.StateUpdate, types.StateObsoleting}

// New creates a planner over the given package sack and starts an
// empty transaction.
func New(l hclog.Logger, idx *repo.IndexService, opts ...Option) *Planner {
	x := Planner{
		l:            l.Named("planner"),
		arch:         "x86_64",
		idx:          idx,
		conditionals: make(map[string][]string),
		now:          time.Now,
	}
	for _, o := range opts {
		o(&x)
	}
	x.reset()
	return &x
}

// reset starts a new transaction.  Callers must hold mu, except New.
func (p *Planner) reset() {
	conds := make(map[string][]*types.Package)
	for trigger, names := range p.conditionals {
		for _, name := range names {
			po, err := p.idx.Available(name)
			if err != nil {
				p.l.Warn("Conditional package is not available", "trigger", trigger, "package", name)
				continue
			}
			conds[trigger] = append(conds[trigger], po)
		}
	}
	p.tx = txinfo.NewSortable(txinfo.WithLogger(p.l), txinfo.WithConditionals(conds))
	p.unresolved = nil
	p.linked = make(map[types.PkgTuple]struct{})
	plannerMembers.Set(0)
}

// Install adds a package by name.  If an older version is installed
// the install becomes an update.
func (p *Planner) Install(name string) (*txinfo.Member, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	m, err := p.install(name)
	observe("install", err)
	return m, err
}

func (p *Planner) install(name string) (*txinfo.Member, error) {
	po, err := p.idx.Available(name)
	if err != nil {
		return nil, err
	}
	var m *txinfo.Member
	if old, err := p.idx.Installed(name); err == nil {
		if !version.Newer(verrev(po), verrev(old)) {
			return nil, ErrUpToDate
		}
		m = p.tx.AddUpdate(po, old)
	} else {
		m = p.tx.AddInstall(po)
	}
	p.resolve()
	p.l.Debug("Planned install", "member", m)
	p.count()
	return m, nil
}

// TrueInstall adds a package by name as an install regardless of
// what is installed.
func (p *Planner) TrueInstall(name string) (*txinfo.Member, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	po, err := p.idx.Available(name)
	if err != nil {
		observe("trueinstall", err)
		return nil, err
	}
	m := p.tx.AddTrueInstall(po)
	p.resolve()
	observe("trueinstall", nil)
	p.count()
	return m, nil
}

// Update replaces an installed package with a newer available one.
func (p *Planner) Update(name string) (*txinfo.Member, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	m, err := p.update(name)
	observe("update", err)
	return m, err
}

func (p *Planner) update(name string) (*txinfo.Member, error) {
	old, err := p.idx.Installed(name)
	if err != nil {
		return nil, ErrNotInstalled
	}
	po, err := p.idx.Available(name)
	if err != nil {
		return nil, err
	}
	if !version.Newer(verrev(po), verrev(old)) {
		return nil, ErrUpToDate
	}
	m := p.tx.AddUpdate(po, old)
	p.resolve()
	p.count()
	return m, nil
}

// Erase removes an installed package.
func (p *Planner) Erase(name string) (*txinfo.Member, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	old, err := p.idx.Installed(name)
	if err != nil {
		observe("erase", ErrNotInstalled)
		return nil, ErrNotInstalled
	}
	m := p.tx.AddErase(old)
	observe("erase", nil)
	p.count()
	return m, nil
}

// Obsolete replaces the installed package oldName with the available
// package newName.
func (p *Planner) Obsolete(newName, oldName string) (*txinfo.Member, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	m, err := p.obsolete(newName, oldName)
	observe("obsolete", err)
	return m, err
}

func (p *Planner) obsolete(newName, oldName string) (*txinfo.Member, error) {
	po, err := p.idx.Available(newName)
	if err != nil {
		return nil, err
	}
	old, err := p.idx.Installed(oldName)
	if err != nil {
		return nil, ErrNotInstalled
	}
	m := p.tx.AddObsoleting(po, old)
	p.tx.AddObsoleted(old, po)
	p.resolve()
	p.count()
	return m, nil
}

// Conditional registers name to be pulled in whenever trigger joins
// this or any later transaction.
func (p *Planner) Conditional(trigger, name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	po, err := p.idx.Available(name)
	observe("conditional", err)
	if err != nil {
		return err
	}
	p.conditionals[trigger] = append(p.conditionals[trigger], name)
	p.tx.AddConditional(trigger, po)
	return nil
}

// Remove drops a tuple from the transaction.
func (p *Planner) Remove(t types.PkgTuple) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.tx.Remove(t)
	delete(p.linked, t)
	observe("remove", nil)
	p.count()
}

// Members returns a view of every member of the transaction.
func (p *Planner) Members() []MemberView {
	p.mu.Lock()
	defer p.mu.Unlock()

	members := p.tx.Members()
	out := make([]MemberView, len(members))
	for i, m := range members {
		out[i] = memberView(m)
	}
	return out
}

// Plan sorts and buckets the current transaction.
func (p *Planner) Plan() *Report {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.plan()
}

func (p *Planner) plan() *Report {
	start := p.now()
	order := p.tx.Sort()
	plannerSortDuration.Observe(p.now().Sub(start).Seconds())
	plannerLoops.Set(float64(len(p.tx.Loops())))

	lists := p.tx.MakeLists()
	r := &Report{
		Arch:          p.arch,
		Order:         make([]string, len(order)),
		Loops:         p.tx.Loops(),
		Installed:     pkgvers(lists.Installed),
		Updated:       pkgvers(lists.Updated),
		Removed:       pkgvers(lists.Removed),
		Obsoleted:     pkgvers(lists.Obsoleted),
		DepInstalled:  pkgvers(lists.DepInstalled),
		DepUpdated:    pkgvers(lists.DepUpdated),
		DepRemoved:    pkgvers(lists.DepRemoved),
		InstallGroups: lists.InstallGroups,
		RemoveGroups:  lists.RemoveGroups,
		Unresolved:    p.unresolved,
	}
	for i, t := range order {
		r.Order[i] = t.Pkgver()
	}
	return r
}

// Commit hands the sorted transaction to the dispatcher, stores its
// report, and starts a new transaction.  The transaction is kept if
// the handoff fails.
func (p *Planner) Commit(ctx context.Context) (*Report, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.tx.Len() == 0 {
		observe("commit", ErrEmptyTransaction)
		return nil, ErrEmptyTransaction
	}

	r := p.plan()
	r.ID = strconv.FormatInt(p.now().UnixNano(), 10)

	if p.dispatcher != nil {
		if err := p.dispatcher.Dispatch(ctx, p.handoff(r.ID)); err != nil {
			p.l.Warn("Error handing off transaction", "id", r.ID, "error", err)
			observe("commit", err)
			return nil, err
		}
	}

	if err := p.persist(r); err != nil {
		p.l.Warn("Error persisting report", "id", r.ID, "error", err)
	}

	p.l.Info("Committed transaction", "id", r.ID, "members", p.tx.Len(), "loops", len(r.Loops))
	observe("commit", nil)
	plannerCommitsTotal.Inc()
	p.reset()
	return r, nil
}

// handoff lists what to install in sort order and what to erase.
func (p *Planner) handoff(id string) dispatch.Handoff {
	h := dispatch.Handoff{ID: id, Arch: p.arch}
	for _, t := range p.tx.Sort() {
		switch {
		case len(p.tx.MembersOf(t, installing...)) > 0:
			h.Install = append(h.Install, t.Pkgver())
		case len(p.tx.MembersOf(t, types.StateErase, types.StateObsoleted)) > 0:
			h.Erase = append(h.Erase, t.Pkgver())
		}
	}
	return h
}

func (p *Planner) persist(r *Report) error {
	if p.storage == nil {
		p.l.Debug("Storage is unavailable, report will not be persisted", "id", r.ID)
		return nil
	}
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return p.storage.Put([]byte(path.Join("txn", r.ID)), b)
}

// History returns the ids of every stored report, oldest first.
func (p *Planner) History() ([]string, error) {
	if p.storage == nil {
		return nil, nil
	}
	keys, err := p.storage.Keys([]byte("txn/"))
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(keys))
	for i, k := range keys {
		ids[i] = path.Base(string(k))
	}
	return ids, nil
}

// Report loads a stored report.
func (p *Planner) Report(id string) (*Report, error) {
	if p.storage == nil {
		return nil, ErrNoSuchReport
	}
	b, err := p.storage.Get([]byte(path.Join("txn", id)))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNoSuchReport
	} else if err != nil {
		return nil, err
	}
	r := new(Report)
	if err := json.Unmarshal(b, r); err != nil {
		return nil, err
	}
	return r, nil
}

// resolve links the run time dependencies of every member that puts
// a package on the system and has not been linked yet.  This covers
// members the transaction added on its own, such as conditional
// installs.
func (p *Planner) resolve() {
	for {
		progress := false
		for _, m := range p.tx.Members(installing...) {
			if _, ok := p.linked[m.Tuple()]; ok {
				continue
			}
			p.linkDeps(m)
			progress = true
		}
		if !progress {
			return
		}
	}
}

// linkDeps makes m depend on every package named in its run time
// dependencies.  Dependencies that are installed already are skipped,
// ones already in the transaction are linked, and the rest are added
// as dependency installs and linked in turn.
func (p *Planner) linkDeps(m *txinfo.Member) {
	if _, ok := p.linked[m.Tuple()]; ok {
		return
	}
	p.linked[m.Tuple()] = struct{}{}
	for _, pattern := range m.Package().RunDepends {
		name := types.DepName(pattern)
		if name == m.Name {
			continue
		}
		if dm := p.pending(name); dm != nil {
			m.AddDependency(dm.Package())
			continue
		}
		if _, err := p.idx.Installed(name); err == nil {
			continue
		}
		po, err := p.idx.Available(name)
		if err != nil {
			p.l.Warn("Unresolved dependency", "package", m.Name, "dependency", pattern)
			p.unresolved = append(p.unresolved, m.Name+": "+pattern)
			continue
		}
		dm := p.tx.AddInstall(po)
		dm.SetAsDep(nil)
		m.AddDependency(po)
		p.l.Trace("Added dependency", "package", m.Name, "dependency", po.Pkgver)
		p.linkDeps(dm)
	}
}

// pending returns the member that brings name onto the system in the
// current transaction, if any.
func (p *Planner) pending(name string) *txinfo.Member {
	for _, m := range p.tx.MatchNaevr(types.PkgTuple{Name: name}) {
		for _, s := range installing {
			if m.OutputState == s {
				return m
			}
		}
	}
	return nil
}

func (p *Planner) count() {
	plannerMembers.Set(float64(p.tx.Len()))
}

func verrev(po *types.Package) string {
	if po.Release == "" {
		return po.Version
	}
	return po.Version + "_" + po.Release
}

func pkgvers(members []*txinfo.Member) []string {
	out := make([]string, len(members))
	for i, m := range members {
		out[i] = m.Tuple().Pkgver()
	}
	return out
}

func memberView(m *txinfo.Member) MemberView {
	v := MemberView{
		Tuple:  m.Tuple().String(),
		Pkgver: m.Tuple().Pkgver(),
		RepoID: m.RepoID,
		Output: string(m.OutputState),
		Target: string(m.TargetState),
		Reason: string(m.Reason),
		IsDep:  m.IsDep,
	}
	for _, r := range m.Relationships {
		v.Relationships = append(v.Relationships, RelationView{Tuple: r.Tuple.String(), Relation: string(r.Relation)})
	}
	return v
}
