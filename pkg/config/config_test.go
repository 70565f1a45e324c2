package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ntx.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"Arch": "aarch64",
		"Repos": {"local": "file:///srv/repodata", "main": "https://example.org/repodata"},
		"Conditionals": {"firefox": ["firefox-i18n-de"]},
		"Storage": "mem"
	}`), 0644))

	c := NewConfig()
	require.NoError(t, c.LoadFromFile(path))

	assert.Equal(t, "aarch64", c.Arch)
	assert.Equal(t, []string{"local", "main", "nonfree"}, c.RepoIDs())
	assert.Equal(t, "https://example.org/repodata", c.Repos["main"])
	assert.Equal(t, []string{"firefox-i18n-de"}, c.Conditionals["firefox"])
	assert.Equal(t, "mem", c.Storage)
	assert.Equal(t, ":8080", c.Bind)
}

func TestLoadFromFileUnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ntx.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"Bogus": 1}`), 0644))

	assert.Error(t, NewConfig().LoadFromFile(path))
}
