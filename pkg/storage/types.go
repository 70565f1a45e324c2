package storage

import (
	"errors"
)

// ErrNotFound is returned by Get when the key has never been written
// or was deleted.
var ErrNotFound = errors.New("key not found")

// Storage is an interface for a generic blobstore.
type Storage interface {
	Get([]byte) ([]byte, error)
	Put([]byte, []byte) error
	Del([]byte) error

	// Keys returns every key that starts with prefix.
	Keys(prefix []byte) ([][]byte, error)

	Close() error
}
