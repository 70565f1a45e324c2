package txinfo

import (
	"sort"

	"github.com/the-maldridge/ntx/pkg/types"
)

// Lists are the members of a transaction bucketed for reporting.
// They are a snapshot: any mutation after MakeLists leaves them stale.
type Lists struct {
	Installed    []*Member
	Updated      []*Member
	Removed      []*Member
	Obsoleted    []*Member
	DepInstalled []*Member
	DepUpdated   []*Member
	DepRemoved   []*Member

	InstallGroups []string
	RemoveGroups  []string
}

// MakeLists rebuilds the buckets from the current members.
func (d *Data) MakeLists() *Lists {
	l := new(Lists)
	for _, m := range d.Members() {
		switch m.OutputState {
		case types.StateUpdate:
			if m.IsDep {
				l.DepUpdated = append(l.DepUpdated, m)
			} else {
				l.Updated = append(l.Updated, m)
			}
		case types.StateInstall, types.StateTrueInstall:
			l.InstallGroups = mergeGroups(l.InstallGroups, m.Groups, nil)
			if m.IsDep {
				l.DepInstalled = append(l.DepInstalled, m)
			} else {
				l.Installed = append(l.Installed, m)
			}
		case types.StateErase:
			l.RemoveGroups = mergeGroups(l.RemoveGroups, m.Groups, l.InstallGroups)
			if m.IsDep {
				l.DepRemoved = append(l.DepRemoved, m)
			} else {
				l.Removed = append(l.Removed, m)
			}
		case types.StateObsoleted:
			l.Obsoleted = append(l.Obsoleted, m)
		case types.StateObsoleting:
			l.Installed = append(l.Installed, m)
		}
	}

	for _, b := range [][]*Member{l.Installed, l.Updated, l.Removed, l.Obsoleted, l.DepInstalled, l.DepUpdated, l.DepRemoved} {
		sort.Stable(byName(b))
	}

	d.lists = l
	return l
}

// Lists returns the buckets computed by the last MakeLists.
func (d *Data) Lists() *Lists {
	return d.lists
}

// mergeGroups appends the groups not yet in dst and not in skip.
func mergeGroups(dst, groups, skip []string) []string {
	for _, g := range groups {
		if contains(dst, g) || contains(skip, g) {
			continue
		}
		dst = append(dst, g)
	}
	return dst
}

func contains(l []string, s string) bool {
	for _, x := range l {
		if x == s {
			return true
		}
	}
	return false
}
