package repo

import (
	"archive/tar"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"howett.net/plist"
)

type indexEntry struct {
	Pkgver     string   `plist:"pkgver"`
	Arch       string   `plist:"architecture"`
	RunDepends []string `plist:"run_depends,omitempty"`
	ShortDesc  string   `plist:"short_desc"`
}

func repodata(t *testing.T, index map[string]indexEntry) []byte {
	t.Helper()

	plistBytes, err := plist.Marshal(index, plist.XMLFormat)
	require.NoError(t, err)

	tarBuf := new(bytes.Buffer)
	tw := tar.NewWriter(tarBuf)
	for name, body := range map[string][]byte{
		"index-meta.plist": []byte("<plist/>"),
		"index.plist":      plistBytes,
	} {
		require.NoError(t, tw.WriteHeader(&tar.Header{Name: name, Mode: 0644, Size: int64(len(body))}))
		_, err := tw.Write(body)
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())

	out := new(bytes.Buffer)
	zw, err := zstd.NewWriter(out)
	require.NoError(t, err)
	_, err = zw.Write(tarBuf.Bytes())
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return out.Bytes()
}

func TestParseRepoData(t *testing.T) {
	data := repodata(t, map[string]indexEntry{
		"foo":    {Pkgver: "foo-1.2.3_1", Arch: "x86_64", RunDepends: []string{"libbar>=1.0_1"}},
		"libbar": {Pkgver: "libbar-1.0_2", Arch: "x86_64"},
	})

	pkgs, err := ParseRepoData(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, pkgs, 2)
	assert.Equal(t, "foo-1.2.3_1", pkgs["foo"].Pkgver)
	assert.Equal(t, []string{"libbar>=1.0_1"}, pkgs["foo"].RunDepends)
}

func TestParseRepoDataNoIndex(t *testing.T) {
	out := new(bytes.Buffer)
	zw, err := zstd.NewWriter(out)
	require.NoError(t, err)
	tw := tar.NewWriter(zw)
	require.NoError(t, tw.Close())
	require.NoError(t, zw.Close())

	_, err = ParseRepoData(out)
	assert.Error(t, err)
}

func TestLoadIndexFromFile(t *testing.T) {
	dir := t.TempDir()
	main := filepath.Join(dir, "main-repodata")
	extra := filepath.Join(dir, "extra-repodata")
	require.NoError(t, os.WriteFile(main, repodata(t, map[string]indexEntry{
		"foo": {Pkgver: "foo-1.2.3_1", Arch: "x86_64"},
	}), 0644))
	require.NoError(t, os.WriteFile(extra, repodata(t, map[string]indexEntry{
		"foo": {Pkgver: "foo-9.9_1", Arch: "x86_64"},
		"baz": {Pkgver: "baz-0.1_1"},
	}), 0644))

	is := NewIndexService(hclog.NewNullLogger(), "x86_64")
	require.NoError(t, is.LoadIndex("main", "file://"+main))
	require.NoError(t, is.LoadIndex("extra", "file://"+extra))

	assert.Equal(t, 2, is.PkgCount())
	foo, err := is.Available("foo")
	require.NoError(t, err)
	assert.Equal(t, "main", foo.RepoID)
	assert.Equal(t, "1.2.3", foo.Version)
	assert.Equal(t, "1", foo.Release)
	assert.Equal(t, "0", foo.Epoch)

	baz, err := is.Available("baz")
	require.NoError(t, err)
	assert.Equal(t, "x86_64", baz.Arch)

	_, err = is.Available("nope")
	assert.Equal(t, ErrNoSuchPackage{"nope"}, err)
}

func TestLoadIndexBadScheme(t *testing.T) {
	is := NewIndexService(hclog.NewNullLogger(), "x86_64")
	assert.Error(t, is.LoadIndex("main", "ftp://example.org/repodata"))
}

func TestLoadPkgDB(t *testing.T) {
	db := map[string]interface{}{
		"foo": map[string]interface{}{
			"pkgver":       "foo-1.0_1",
			"architecture": "x86_64",
			"state":        "installed",
		},
		"_XBPS_ALTERNATIVES_": map[string]interface{}{},
	}
	b, err := plist.Marshal(db, plist.XMLFormat)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "pkgdb-0.38.plist")
	require.NoError(t, os.WriteFile(path, b, 0644))

	is := NewIndexService(hclog.NewNullLogger(), "x86_64")
	require.NoError(t, is.LoadPkgDB(path))

	foo, err := is.Installed("foo")
	require.NoError(t, err)
	assert.Equal(t, "installed", foo.RepoID)
	assert.Equal(t, "1.0", foo.Version)

	_, err = is.Installed("_XBPS_ALTERNATIVES_")
	assert.Error(t, err)
}
