package types

import (
	"strings"
)

// A PkgTuple is the identity of a package: name, arch, epoch, version
// and release.  It is comparable and is used as a map key throughout
// the transaction.
type PkgTuple struct {
	Name    string
	Arch    string
	Epoch   string
	Version string
	Release string
}

func (pt PkgTuple) String() string {
	return strings.Join([]string{pt.Name, pt.Arch, pt.Epoch, pt.Version, pt.Release}, ":")
}

// PkgTupleFromString returns a tuple from its string representation.
// Missing trailing fields are left blank.
func PkgTupleFromString(s string) PkgTuple {
	p := strings.SplitN(s, ":", 5)
	for len(p) < 5 {
		p = append(p, "")
	}
	return PkgTuple{p[0], p[1], p[2], p[3], p[4]}
}

// NewPkgTuple returns a tuple and encapsulates the formatting logic
// reversed by the PkgTupleFromString operation.
func NewPkgTuple(name, arch, epoch, version, release string) PkgTuple {
	return PkgTuple{name, arch, epoch, version, release}
}

// Pkgver renders the tuple the way xbps names a package,
// name-version_release.
func (pt PkgTuple) Pkgver() string {
	if pt.Release == "" {
		return pt.Name + "-" + pt.Version
	}
	return pt.Name + "-" + pt.Version + "_" + pt.Release
}
