package types

import (
	"strings"
)

// A Package is a binary package as handed out by a package sack,
// either from a repository index or from the installed package
// database.  Everything except the state tag is read only once the
// package has been handed to a transaction.
type Package struct {
	Name    string
	Arch    string `plist:"architecture"`
	Epoch   string
	Version string
	Release string
	RepoID  string

	Pkgver      string   `plist:"pkgver"`
	RunDepends  []string `plist:"run_depends"`
	ShortDesc   string   `plist:"short_desc"`
	InstallSize uint64   `plist:"installed_size"`

	// state mirrors the output state of the transaction member
	// wrapping this package.  The transaction is its only writer.
	state State
}

// NewPackage returns a package with the given identity.
func NewPackage(tup PkgTuple, repoID string) *Package {
	return &Package{
		Name:    tup.Name,
		Arch:    tup.Arch,
		Epoch:   tup.Epoch,
		Version: tup.Version,
		Release: tup.Release,
		RepoID:  repoID,
		Pkgver:  tup.Pkgver(),
	}
}

// Tuple returns the identity of the package.
func (p *Package) Tuple() PkgTuple {
	return PkgTuple{p.Name, p.Arch, p.Epoch, p.Version, p.Release}
}

// State returns the mirrored transaction state.
func (p *Package) State() State {
	return p.state
}

// SetState is called by the transaction when the package joins or
// leaves it.
func (p *Package) SetState(s State) {
	p.state = s
}

// FillFromPkgver splits the pkgver field (name-version_revision) into
// the identity fields.  xbps has no epochs, so epoch is always "0".
func (p *Package) FillFromPkgver() {
	name, ver, rel := SplitPkgver(p.Pkgver)
	if p.Name == "" {
		p.Name = name
	}
	p.Version = ver
	p.Release = rel
	if p.Epoch == "" {
		p.Epoch = "0"
	}
}

// SplitPkgver splits foo-bar-1.2.3_4 into foo-bar, 1.2.3 and 4.
func SplitPkgver(pkgver string) (string, string, string) {
	i := strings.LastIndex(pkgver, "-")
	if i <= 0 {
		return pkgver, "", ""
	}
	name, verrev := pkgver[:i], pkgver[i+1:]
	j := strings.LastIndex(verrev, "_")
	if j < 0 {
		return name, verrev, ""
	}
	return name, verrev[:j], verrev[j+1:]
}

// DepName returns the package name a run_depends pattern refers to.
// Patterns are either a constraint (foo>=1.0, foo<2) or an exact
// pkgver (foo-1.0_1).
func DepName(pattern string) string {
	if i := strings.IndexAny(pattern, "<>="); i > 0 {
		return pattern[:i]
	}
	name, ver, _ := SplitPkgver(pattern)
	if ver == "" || !strings.ContainsAny(ver[:1], "0123456789") {
		return pattern
	}
	return name
}
