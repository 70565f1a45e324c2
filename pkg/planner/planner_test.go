package planner

import (
	"context"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the-maldridge/ntx/pkg/dispatch"
	"github.com/the-maldridge/ntx/pkg/dispatch/local"
	"github.com/the-maldridge/ntx/pkg/repo"
	"github.com/the-maldridge/ntx/pkg/storage"
	"github.com/the-maldridge/ntx/pkg/storage/mem"
	"github.com/the-maldridge/ntx/pkg/types"
)

func xpkg(pkgver string, deps ...string) *types.Package {
	name, ver, rel := types.SplitPkgver(pkgver)
	p := types.NewPackage(types.NewPkgTuple(name, "x86_64", "0", ver, rel), "main")
	p.RunDepends = deps
	return p
}

type fixture struct {
	p     *Planner
	idx   *repo.IndexService
	store storage.Storage
	disp  dispatch.Provider
}

func newFixture(t *testing.T, opts ...Option) fixture {
	t.Helper()
	l := hclog.NewNullLogger()

	idx := repo.NewIndexService(l, "x86_64")
	for _, p := range []*types.Package{
		xpkg("firefox-120.0_1", "gtk+3>=3.24_1", "nss-3.95_1", "glibc>=2.36_1"),
		xpkg("gtk+3-3.24.38_1", "glib>=2.78_1"),
		xpkg("glib-2.78.1_1", "glibc>=2.36_1"),
		xpkg("nss-3.95_1", "nspr>=4.35_1"),
		xpkg("nspr-4.35_1"),
		xpkg("glibc-2.38_1"),
		xpkg("vim-9.0.2000_1"),
		xpkg("libressl-3.8.2_1"),
		xpkg("firefox-i18n-de-120.0_1"),
		xpkg("broken-1.0_1", "doesnotexist>=1.0_1"),
		xpkg("loop-a-1_1", "loop-b>=1_1"),
		xpkg("loop-b-1_1", "loop-c>=1_1"),
		xpkg("loop-c-1_1", "loop-a>=1_1"),
	} {
		idx.AddAvailable(p)
	}
	for _, p := range []*types.Package{
		xpkg("glibc-2.38_1"),
		xpkg("vim-8.2.0_3"),
		xpkg("nano-7.2_1"),
		xpkg("openssl-3.1.4_1"),
	} {
		p.RepoID = "installed"
		idx.AddInstalled(p)
	}

	store, err := mem.New(l, "")
	require.NoError(t, err)
	disp, err := local.New(l)
	require.NoError(t, err)

	var tick int64
	clock := func() time.Time {
		tick++
		return time.Unix(1700000000, tick)
	}

	opts = append([]Option{WithStorage(store), WithDispatcher(disp), WithClock(clock)}, opts...)
	return fixture{
		p:     New(l, idx, opts...),
		idx:   idx,
		store: store,
		disp:  disp,
	}
}

func position(l []string, s string) int {
	for i := range l {
		if l[i] == s {
			return i
		}
	}
	return -1
}

func TestInstallPullsDependencies(t *testing.T) {
	f := newFixture(t)

	m, err := f.p.Install("firefox")
	require.NoError(t, err)
	assert.Equal(t, types.StateInstall, m.OutputState)

	r := f.p.Plan()
	assert.Equal(t, []string{"firefox-120.0_1"}, r.Installed)
	assert.Equal(t, []string{"glib-2.78.1_1", "gtk+3-3.24.38_1", "nspr-4.35_1", "nss-3.95_1"}, r.DepInstalled)
	assert.Empty(t, r.Loops)
	assert.Empty(t, r.Unresolved)

	require.Len(t, r.Order, 5)
	assert.Less(t, position(r.Order, "glib-2.78.1_1"), position(r.Order, "gtk+3-3.24.38_1"))
	assert.Less(t, position(r.Order, "gtk+3-3.24.38_1"), position(r.Order, "firefox-120.0_1"))
	assert.Less(t, position(r.Order, "nspr-4.35_1"), position(r.Order, "nss-3.95_1"))
	assert.Less(t, position(r.Order, "nss-3.95_1"), position(r.Order, "firefox-120.0_1"))
}

func TestInstallInstalledBecomesUpdate(t *testing.T) {
	f := newFixture(t)

	m, err := f.p.Install("vim")
	require.NoError(t, err)
	assert.Equal(t, types.StateUpdate, m.OutputState)

	r := f.p.Plan()
	assert.Equal(t, []string{"vim-9.0.2000_1"}, r.Updated)
	assert.Len(t, f.p.Members(), 2)

	_, err = f.p.Install("glibc")
	assert.Equal(t, ErrUpToDate, err)
}

func TestUpdateAndErase(t *testing.T) {
	f := newFixture(t)

	_, err := f.p.Update("firefox")
	assert.Equal(t, ErrNotInstalled, err)
	_, err = f.p.Update("glibc")
	assert.Equal(t, ErrUpToDate, err)
	_, err = f.p.Update("vim")
	require.NoError(t, err)

	_, err = f.p.Erase("nano")
	require.NoError(t, err)
	_, err = f.p.Erase("firefox")
	assert.Equal(t, ErrNotInstalled, err)

	r := f.p.Plan()
	assert.Equal(t, []string{"nano-7.2_1"}, r.Removed)
}

func TestObsolete(t *testing.T) {
	f := newFixture(t)

	m, err := f.p.Obsolete("libressl", "openssl")
	require.NoError(t, err)
	assert.Equal(t, types.StateObsoleting, m.OutputState)

	r := f.p.Plan()
	assert.Equal(t, []string{"libressl-3.8.2_1"}, r.Installed)
	assert.Equal(t, []string{"openssl-3.1.4_1"}, r.Obsoleted)
}

func TestUnknownPackage(t *testing.T) {
	f := newFixture(t)

	_, err := f.p.Install("nope")
	assert.IsType(t, repo.ErrNoSuchPackage{}, err)
}

func TestUnresolvedDependency(t *testing.T) {
	f := newFixture(t)

	_, err := f.p.Install("broken")
	require.NoError(t, err)
	assert.Equal(t, []string{"broken: doesnotexist>=1.0_1"}, f.p.Plan().Unresolved)
}

func TestDependencyLoop(t *testing.T) {
	f := newFixture(t)

	_, err := f.p.Install("loop-a")
	require.NoError(t, err)

	r := f.p.Plan()
	assert.Len(t, r.Order, 3)
	require.Len(t, r.Loops, 1)
	assert.ElementsMatch(t, []string{"loop-a", "loop-b", "loop-c"}, r.Loops[0])
}

func TestConditional(t *testing.T) {
	f := newFixture(t, WithConditionals(map[string][]string{"firefox": {"firefox-i18n-de"}}))

	_, err := f.p.Install("firefox")
	require.NoError(t, err)

	r := f.p.Plan()
	assert.Contains(t, r.DepInstalled, "firefox-i18n-de-120.0_1")
	assert.Less(t, position(r.Order, "firefox-120.0_1"), position(r.Order, "firefox-i18n-de-120.0_1"))

	assert.IsType(t, repo.ErrNoSuchPackage{}, f.p.Conditional("vim", "nope"))
}

func TestConditionalPullsDependencies(t *testing.T) {
	f := newFixture(t, WithConditionals(map[string][]string{"vim": {"gtk+3"}}))

	_, err := f.p.Install("vim")
	require.NoError(t, err)

	r := f.p.Plan()
	assert.Equal(t, []string{"glib-2.78.1_1", "gtk+3-3.24.38_1"}, r.DepInstalled)
	assert.Less(t, position(r.Order, "glib-2.78.1_1"), position(r.Order, "gtk+3-3.24.38_1"))
	assert.Empty(t, r.Unresolved)
}

func TestConditionalUnresolvedDependency(t *testing.T) {
	f := newFixture(t, WithConditionals(map[string][]string{"nspr": {"broken"}}))

	_, err := f.p.Install("nspr")
	require.NoError(t, err)

	r := f.p.Plan()
	assert.Contains(t, r.DepInstalled, "broken-1.0_1")
	assert.Equal(t, []string{"broken: doesnotexist>=1.0_1"}, r.Unresolved)
}

func TestRemove(t *testing.T) {
	f := newFixture(t)

	_, err := f.p.Install("nspr")
	require.NoError(t, err)
	f.p.Remove(xpkg("nspr-4.35_1").Tuple())

	assert.Empty(t, f.p.Members())
}

func TestCommit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.p.Commit(ctx)
	assert.Equal(t, ErrEmptyTransaction, err)

	_, err = f.p.Install("nss")
	require.NoError(t, err)
	_, err = f.p.Erase("nano")
	require.NoError(t, err)

	r, err := f.p.Commit(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, r.ID)

	handoffs, err := f.disp.List(ctx)
	require.NoError(t, err)
	require.Len(t, handoffs, 1)
	assert.Equal(t, r.ID, handoffs[0].ID)
	assert.Equal(t, []string{"nspr-4.35_1", "nss-3.95_1"}, handoffs[0].Install)
	assert.Equal(t, []string{"nano-7.2_1"}, handoffs[0].Erase)

	assert.Empty(t, f.p.Members())

	ids, err := f.p.History()
	require.NoError(t, err)
	assert.Equal(t, []string{r.ID}, ids)

	stored, err := f.p.Report(r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.Order, stored.Order)

	_, err = f.p.Report("missing")
	assert.Equal(t, ErrNoSuchReport, err)
}
