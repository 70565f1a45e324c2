package planner

import (
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/the-maldridge/ntx/pkg/dispatch"
	"github.com/the-maldridge/ntx/pkg/repo"
	"github.com/the-maldridge/ntx/pkg/storage"
	"github.com/the-maldridge/ntx/pkg/txinfo"
	"github.com/the-maldridge/ntx/pkg/types"
)

// Planner owns the transaction of a single resolution run.  The
// transaction itself is not safe for concurrent use, so every call
// into it goes through mu.
type Planner struct {
	l  hclog.Logger
	mu sync.Mutex

	arch string
	idx  *repo.IndexService
	tx   *txinfo.Sortable

	// conditionals are kept by name so that every new transaction
	// gets the same table.
	conditionals map[string][]string
	unresolved   []string

	// linked holds the tuples whose run time dependencies have been
	// resolved in the current transaction.
	linked map[types.PkgTuple]struct{}

	storage    storage.Storage
	dispatcher dispatch.Provider

	now func() time.Time
}

// A Report is the planned outcome of a transaction, in terms of
// package versions.
type Report struct {
	ID   string
	Arch string

	Order []string
	Loops [][]string

	Installed    []string
	Updated      []string
	Removed      []string
	Obsoleted    []string
	DepInstalled []string
	DepUpdated   []string
	DepRemoved   []string

	InstallGroups []string
	RemoveGroups  []string

	// Unresolved lists run time dependencies that no repository
	// offers.
	Unresolved []string
}

// A MemberView is the serializable form of a transaction member.
type MemberView struct {
	Tuple         string
	Pkgver        string
	RepoID        string
	Output        string
	Target        string
	Reason        string
	IsDep         bool
	Relationships []RelationView `json:",omitempty"`
}

// A RelationView is one edge of a MemberView.
type RelationView struct {
	Tuple    string
	Relation string
}
