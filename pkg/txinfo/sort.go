package txinfo

import (
	"github.com/the-maldridge/ntx/pkg/types"
)

type colour int

const (
	white colour = iota
	grey
	black
)

// Sortable decorates a Data with a topological sort over the
// depends-on edges of its members.
type Sortable struct {
	*Data

	sorted    []types.PkgTuple
	sortedGen uint64
	valid     bool

	loops [][]string
}

// NewSortable returns an empty transaction that can be sorted.
func NewSortable(opts ...Option) *Sortable {
	return &Sortable{Data: New(opts...)}
}

// Loops returns the dependency loops found by the last sort.  Each
// loop is the list of package names along the cycle.
func (s *Sortable) Loops() [][]string {
	return s.loops
}

// Sort returns the tuples of the transaction such that for every
// depends-on edge A->B outside of a loop, B comes before A.  The
// result is cached until the next Add or Remove.  Loops do not stop
// the sort; they are recorded and can be read back with Loops.
func (s *Sortable) Sort() []types.PkgTuple {
	if s.valid && s.sortedGen == s.gen {
		return s.sorted
	}

	s.loops = nil
	sorted := make([]types.PkgTuple, 0, len(s.order))
	colours := make(map[types.PkgTuple]colour, len(s.order))
	for _, t := range s.order {
		if colours[t] != white {
			continue
		}
		sorted = s.visit(t, colours, sorted)
	}

	s.sorted = sorted
	s.sortedGen = s.gen
	s.valid = true
	s.l.Debug("Sorted transaction", "count", len(sorted), "loops", len(s.loops))
	return s.sorted
}

type frame struct {
	t     types.PkgTuple
	edges []types.PkgTuple
	next  int
}

// visit walks depth first from root with an explicit stack and
// appends each tuple once all of its dependencies are done.
func (s *Sortable) visit(root types.PkgTuple, colours map[types.PkgTuple]colour, out []types.PkgTuple) []types.PkgTuple {
	colours[root] = grey
	path := []string{root.Name}
	stack := []frame{{t: root, edges: s.edges(root)}}

	for len(stack) > 0 {
		f := &stack[len(stack)-1]
		if f.next < len(f.edges) {
			dep := f.edges[f.next]
			f.next++
			if !s.Exists(dep) {
				s.l.Trace("Dependency not in transaction, skipping edge", "package", f.t, "dependency", dep)
				continue
			}
			switch colours[dep] {
			case grey:
				s.recordLoop(path, dep.Name)
			case white:
				colours[dep] = grey
				path = append(path, dep.Name)
				stack = append(stack, frame{t: dep, edges: s.edges(dep)})
			}
			continue
		}

		colours[f.t] = black
		out = append(out, f.t)
		stack = stack[:len(stack)-1]
		path = path[:len(path)-1]
	}
	return out
}

// edges returns the depends-on targets of every member stored under
// t, without duplicates.
func (s *Sortable) edges(t types.PkgTuple) []types.PkgTuple {
	var ret []types.PkgTuple
	seen := make(map[types.PkgTuple]struct{})
	for _, m := range s.pkgdict[t] {
		for _, po := range m.DependsOn {
			dt := po.Tuple()
			if _, ok := seen[dt]; ok {
				continue
			}
			seen[dt] = struct{}{}
			ret = append(ret, dt)
		}
	}
	return ret
}

// recordLoop keeps the part of the path that starts at the first
// occurrence of name.  Loops of two or fewer packages are dropped.
func (s *Sortable) recordLoop(path []string, name string) {
	for i := range path {
		if path[i] != name {
			continue
		}
		if len(path)-i <= 2 {
			return
		}
		loop := make([]string, len(path)-i)
		copy(loop, path[i:])
		s.l.Debug("Dependency loop found", "loop", loop)
		s.loops = append(s.loops, loop)
		return
	}
}
