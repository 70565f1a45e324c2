// Package version compares xbps package versions.
//
// Versions are written version_revision.  Where both version parts
// read as semver they are compared with github.com/Masterminds/semver/v3,
// so 2.0 and 2.0.0 are the same version.  Everything else, and the
// revision, goes through rpmvercmp from github.com/cavaliercoder/go-rpm,
// which orders mixed letter and digit segments such as 1.10a.
package version

import (
	"strings"

	mm "github.com/Masterminds/semver/v3"
	rpm "github.com/cavaliercoder/go-rpm/version"
)

// evr adapts a version_revision string to rpm.Interface.  xbps keeps
// epochs out of the version string, so the epoch is always 0.
type evr struct {
	version string
	release string
}

func (e evr) Name() string    { return "" }
func (e evr) Epoch() int      { return 0 }
func (e evr) Version() string { return e.version }
func (e evr) Release() string { return e.release }

// Compare compares a and b, returning:
// -1 if a < b
//
//	0 if a == b
//	1 if a > b
func Compare(a, b string) int {
	av := parse(a)
	bv := parse(b)

	sa, erra := mm.NewVersion(av.version)
	sb, errb := mm.NewVersion(bv.version)
	if erra == nil && errb == nil {
		if c := sa.Compare(sb); c != 0 {
			return c
		}
		return rpm.Compare(evr{release: av.release}, evr{release: bv.release})
	}
	return rpm.Compare(av, bv)
}

// Newer reports whether candidate is strictly newer than installed.
func Newer(candidate, installed string) bool {
	return Compare(candidate, installed) > 0
}

func parse(s string) evr {
	i := strings.LastIndex(s, "_")
	if i < 0 {
		return evr{version: s, release: "0"}
	}
	return evr{version: s[:i], release: s[i+1:]}
}
