package txinfo

import (
	"fmt"

	"github.com/the-maldridge/ntx/pkg/types"
)

// A Relationship is one typed edge from a member to another package.
type Relationship struct {
	Tuple    types.PkgTuple
	Relation types.Relation
}

// A Member is a single package's role within a transaction.  Members
// are live handles: the solver is expected to mutate Reason, Groups
// and the dependency fields on members it gets back from the
// constructors.
type Member struct {
	po *types.Package

	Name    string
	Arch    string
	Epoch   string
	Version string
	Release string
	RepoID  string

	CurrentState types.State
	TargetState  types.TargetState
	OutputState  types.State

	IsDep  bool
	Reason types.Reason
	Groups []string

	Relationships []Relationship
	DependsOn     []*types.Package
	Updates       []*types.Package
	UpdatedBy     []*types.Package
	Obsoletes     []*types.Package
	ObsoletedBy   []*types.Package
}

func newMember(po *types.Package) *Member {
	return &Member{
		po:      po,
		Name:    po.Name,
		Arch:    po.Arch,
		Epoch:   po.Epoch,
		Version: po.Version,
		Release: po.Release,
		RepoID:  po.RepoID,
		Reason:  types.ReasonUser,
	}
}

// Package returns the package object this member wraps.
func (m *Member) Package() *types.Package {
	return m.po
}

// Tuple returns the identity this member is keyed by.
func (m *Member) Tuple() types.PkgTuple {
	return m.po.Tuple()
}

// SetAsDep marks the member as being in the transaction only to
// satisfy a requirement.  If po is given the member records that it
// depends on po.
func (m *Member) SetAsDep(po *types.Package) {
	m.IsDep = true
	m.Reason = types.ReasonDependency
	if po != nil {
		m.AddDependency(po)
	}
}

// AddDependency records that this member depends on po.
func (m *Member) AddDependency(po *types.Package) {
	for _, d := range m.DependsOn {
		if d == po {
			return
		}
	}
	m.relate(po.Tuple(), types.RelDependsOn)
	m.DependsOn = append(m.DependsOn, po)
}

func (m *Member) relate(t types.PkgTuple, r types.Relation) {
	m.Relationships = append(m.Relationships, Relationship{Tuple: t, Relation: r})
}

// Related returns the tuples this member points at with the given
// relation, in the order they were recorded.
func (m *Member) Related(r types.Relation) []types.PkgTuple {
	var out []types.PkgTuple
	for _, rel := range m.Relationships {
		if rel.Relation == r {
			out = append(out, rel.Tuple)
		}
	}
	return out
}

func (m *Member) String() string {
	return fmt.Sprintf("%s.%s %s:%s-%s - %s", m.Name, m.Arch, m.Epoch, m.Version, m.Release, m.TargetState)
}

// byName orders members by package name only.  Equal names compare
// equal so a stable sort keeps their relative order.
type byName []*Member

func (b byName) Len() int           { return len(b) }
func (b byName) Less(i, j int) bool { return b[i].Name < b[j].Name }
func (b byName) Swap(i, j int)      { b[i], b[j] = b[j], b[i] }
