package config

// Config represents the complete application configuration that ntx
// supports.
type Config struct {
	Arch string

	// Repos maps a repository id to the URL of its repodata.
	// Repositories are consulted in the order of their ids.
	Repos map[string]string
	PkgDB string

	// Conditionals maps a trigger package name to the names of
	// packages that are pulled in whenever the trigger joins a
	// transaction.
	Conditionals map[string][]string

	Storage     string
	StoragePath string

	Dispatcher string
	NomadJob   string
	Slots      int

	Bind string
}
