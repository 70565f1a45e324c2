package repo

import (
	"archive/tar"
	"bytes"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/klauspost/compress/zstd"
	"howett.net/plist"

	"github.com/the-maldridge/ntx/pkg/types"
)

// ErrNoSuchPackage is returned when a package is not in the sack that
// was asked.
type ErrNoSuchPackage struct {
	name string
}

func (e ErrNoSuchPackage) Error() string {
	return "no package named " + e.name
}

// IndexService is the package sack.  It holds the packages available
// from the loaded repository indexes and the packages recorded as
// installed in the package database.
type IndexService struct {
	l hclog.Logger

	arch      string
	available map[string]*types.Package
	installed map[string]*types.Package
}

// NewIndexService creates an IndexService for the given architecture.
func NewIndexService(l hclog.Logger, arch string) *IndexService {
	is := IndexService{
		l:         l.Named("IndexService"),
		arch:      arch,
		available: make(map[string]*types.Package),
		installed: make(map[string]*types.Package),
	}
	return &is
}

// LoadIndex retrieves the index for a repository via http or from a
// local file and merges its packages into the available set.  A
// package already offered by an earlier repository is kept.
func (is *IndexService) LoadIndex(repoID, path string) error {
	var indexBytes []byte
	var err error

	switch {
	case strings.HasPrefix(path, "http"):
		indexBytes, err = is.fetchHTTP(path)
	case strings.HasPrefix(path, "file"):
		indexBytes, err = is.fetchFile(path)
	default:
		err = errors.New("unknown repodata scheme")
		is.l.Error("Repodata scheme must be either file or http(s)", "repo", repoID, "path", path)
	}
	if err != nil {
		return err
	}

	pkgs, err := ParseRepoData(bytes.NewReader(indexBytes))
	if err != nil {
		is.l.Warn("Error parsing repodata", "repo", repoID, "error", err)
		return err
	}

	added := 0
	for name, p := range pkgs {
		if _, ok := is.available[name]; ok {
			continue
		}
		p.Name = name
		p.RepoID = repoID
		p.FillFromPkgver()
		if p.Arch == "" {
			p.Arch = is.arch
		}
		is.available[name] = p
		added++
	}
	is.l.Debug("Loaded repodata", "repo", repoID, "count", added)
	return nil
}

// LoadPkgDB reads the installed package database, a plain plist keyed
// by package name.
func (is *IndexService) LoadPkgDB(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	pkgs := make(map[string]*types.Package)
	if err := plist.NewDecoder(f).Decode(&pkgs); err != nil {
		is.l.Warn("Error parsing pkgdb", "path", path, "error", err)
		return err
	}
	for name, p := range pkgs {
		// pkgdb carries a few bookkeeping keys next to the
		// packages that have no pkgver.
		if p.Pkgver == "" {
			continue
		}
		p.Name = name
		p.RepoID = "installed"
		p.FillFromPkgver()
		if p.Arch == "" {
			p.Arch = is.arch
		}
		is.installed[name] = p
	}
	is.l.Debug("Loaded pkgdb", "path", path, "count", len(is.installed))
	return nil
}

// AddAvailable places a package directly into the available set.
func (is *IndexService) AddAvailable(p *types.Package) {
	is.available[p.Name] = p
}

// AddInstalled places a package directly into the installed set.
func (is *IndexService) AddInstalled(p *types.Package) {
	is.installed[p.Name] = p
}

// PkgCount is a quick check of how many packages this index knows
// about.
func (is *IndexService) PkgCount() int {
	return len(is.available)
}

// Available returns a single package from the repository indexes.
func (is *IndexService) Available(name string) (*types.Package, error) {
	pkg, ok := is.available[name]
	if !ok {
		return nil, ErrNoSuchPackage{name}
	}
	return pkg, nil
}

// Installed returns a single package from the package database.
func (is *IndexService) Installed(name string) (*types.Package, error) {
	pkg, ok := is.installed[name]
	if !ok {
		return nil, ErrNoSuchPackage{name}
	}
	return pkg, nil
}

func (is *IndexService) fetchHTTP(path string) ([]byte, error) {
	resp, err := http.Get(path)
	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("repodata fetch failed: " + resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func (is *IndexService) fetchFile(path string) ([]byte, error) {
	return os.ReadFile(strings.TrimPrefix(path, "file://"))
}

// ParseRepoData reads a zstd compressed repodata archive and returns
// the packages listed in its index.plist, keyed by name.
func ParseRepoData(r io.Reader) (map[string]*types.Package, error) {
	d, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer d.Close()

	tarchive := tar.NewReader(d)

	// Iterate through the tar inside the zstd file and pick out
	// the index list.  This contains the package graph that we're
	// interested in.
	for {
		header, err := tarchive.Next()
		switch err {
		case nil:
		case io.EOF:
			return nil, errors.New("repodata has no index.plist")
		default:
			return nil, err
		}

		if header.Name != "index.plist" {
			continue
		}

		buf := &bytes.Buffer{}
		if _, err := buf.ReadFrom(tarchive); err != nil {
			return nil, err
		}
		pkgs := make(map[string]*types.Package)
		dec := plist.NewDecoder(bytes.NewReader(buf.Bytes()))
		if err := dec.Decode(&pkgs); err != nil {
			return nil, err
		}
		return pkgs, nil
	}
}
