package txinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the-maldridge/ntx/pkg/types"
)

func index(order []types.PkgTuple, t types.PkgTuple) int {
	for i := range order {
		if order[i] == t {
			return i
		}
	}
	return -1
}

func TestSortAcyclic(t *testing.T) {
	s := NewSortable()
	app, lib, libc, tool := pkg("app", "1"), pkg("lib", "1"), pkg("libc", "1"), pkg("tool", "1")

	am := s.AddInstall(app)
	lm := s.AddInstall(lib)
	s.AddInstall(libc)
	tm := s.AddInstall(tool)
	am.AddDependency(lib)
	am.AddDependency(tool)
	lm.AddDependency(libc)
	tm.AddDependency(libc)

	order := s.Sort()

	require.Len(t, order, 4)
	assert.Empty(t, s.Loops())
	for _, m := range s.Members() {
		for _, dep := range m.DependsOn {
			assert.Less(t, index(order, dep.Tuple()), index(order, m.Tuple()), "%s before %s", dep.Name, m.Name)
		}
	}
}

func TestSortThreeCycle(t *testing.T) {
	s := NewSortable()
	a, b, c := pkg("a", "1"), pkg("b", "1"), pkg("c", "1")
	s.AddInstall(a).AddDependency(b)
	s.AddInstall(b).AddDependency(c)
	s.AddInstall(c).AddDependency(a)

	order := s.Sort()

	assert.ElementsMatch(t, []types.PkgTuple{a.Tuple(), b.Tuple(), c.Tuple()}, order)
	require.Len(t, s.Loops(), 1)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, s.Loops()[0])
}

func TestSortTwoCycleNotRecorded(t *testing.T) {
	s := NewSortable()
	a, b := pkg("a", "1"), pkg("b", "1")
	s.AddInstall(a).AddDependency(b)
	s.AddInstall(b).AddDependency(a)
	s.AddInstall(pkg("c", "1")).AddDependency(pkg("c", "1"))

	order := s.Sort()

	assert.Len(t, order, 3)
	assert.Empty(t, s.Loops())
}

func TestSortLoopExcludesFinishedSiblings(t *testing.T) {
	s := NewSortable()
	root, leaf, x, y, z := pkg("root", "1"), pkg("leaf", "1"), pkg("x", "1"), pkg("y", "1"), pkg("z", "1")
	rm := s.AddInstall(root)
	rm.AddDependency(leaf)
	rm.AddDependency(x)
	s.AddInstall(leaf)
	s.AddInstall(x).AddDependency(y)
	s.AddInstall(y).AddDependency(z)
	s.AddInstall(z).AddDependency(x)

	s.Sort()

	require.Len(t, s.Loops(), 1)
	assert.Equal(t, []string{"x", "y", "z"}, s.Loops()[0])
}

func TestSortSkipsDanglingEdges(t *testing.T) {
	s := NewSortable()
	gone := pkg("gone", "1")
	s.AddInstall(gone)
	s.AddInstall(pkg("app", "1")).AddDependency(gone)
	s.AddInstall(pkg("app2", "1")).AddDependency(pkg("never", "1"))
	s.Remove(gone.Tuple())

	order := s.Sort()

	assert.Equal(t, []types.PkgTuple{pkg("app", "1").Tuple(), pkg("app2", "1").Tuple()}, order)
}

func TestSortCache(t *testing.T) {
	s := NewSortable()
	a, b := pkg("a", "1"), pkg("b", "1")
	s.AddInstall(a).AddDependency(b)
	s.AddInstall(b)

	first := s.Sort()
	second := s.Sort()
	require.Len(t, first, 2)
	assert.Same(t, &first[0], &second[0])

	s.AddInstall(pkg("c", "1"))
	third := s.Sort()
	assert.Len(t, third, 3)
	assert.Less(t, index(third, b.Tuple()), index(third, a.Tuple()))

	s.Remove(a.Tuple())
	assert.Len(t, s.Sort(), 2)
}

func TestSortConditionalOrder(t *testing.T) {
	doc := pkg("foo-doc", "1")
	s := NewSortable(WithConditionals(map[string][]*types.Package{"foo": {doc}}))
	foo := pkg("foo", "1")
	s.AddInstall(foo)

	order := s.Sort()

	assert.Less(t, index(order, foo.Tuple()), index(order, doc.Tuple()))
}
