package config

import (
	"encoding/json"
	"os"
	"sort"
)

// NewConfig returns a config object with default structures
// initialized.  The config can be loaded from other sources to
// override the defaults.
func NewConfig() *Config {
	return &Config{
		Arch: "x86_64",
		Repos: map[string]string{
			"main":    "https://repo-default.voidlinux.org/current/x86_64-repodata",
			"nonfree": "https://repo-default.voidlinux.org/current/nonfree/x86_64-repodata",
		},
		PkgDB:        "/var/db/xbps/pkgdb-0.38.plist",
		Conditionals: map[string][]string{},
		Storage:      "bitcask",
		StoragePath:  "ntx.db",
		Dispatcher:   "local",
		NomadJob:     "xbps-install",
		Slots:        1,
		Bind:         ":8080",
	}
}

// LoadFromFile does as the name suggests, and loads the config from a
// file.  Maps in the file are merged into the defaults.
func (c *Config) LoadFromFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	return dec.Decode(c)
}

// RepoIDs returns the configured repository ids in a stable order.
func (c *Config) RepoIDs() []string {
	ids := make([]string, 0, len(c.Repos))
	for id := range c.Repos {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
