// Package mem is a storage backend that keeps everything in a map.
// Nothing survives the process; it backs dry runs and tests.
package mem

import (
	"bytes"
	"sort"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/the-maldridge/ntx/pkg/storage"
)

type memStore struct {
	sync.RWMutex

	m map[string][]byte
}

func init() {
	storage.RegisterCallback(newFactory)
}

func newFactory() {
	storage.RegisterFactory("mem", New)
}

// New returns an empty in-memory store.
func New(hclog.Logger, string) (storage.Storage, error) {
	return &memStore{m: make(map[string][]byte)}, nil
}

func (s *memStore) Get(k []byte) ([]byte, error) {
	s.RLock()
	defer s.RUnlock()
	v, ok := s.m[string(k)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return v, nil
}

func (s *memStore) Put(k, v []byte) error {
	s.Lock()
	defer s.Unlock()
	s.m[string(k)] = append([]byte(nil), v...)
	return nil
}

func (s *memStore) Del(k []byte) error {
	s.Lock()
	defer s.Unlock()
	delete(s.m, string(k))
	return nil
}

func (s *memStore) Keys(prefix []byte) ([][]byte, error) {
	s.RLock()
	defer s.RUnlock()
	var keys [][]byte
	for k := range s.m {
		if bytes.HasPrefix([]byte(k), prefix) {
			keys = append(keys, []byte(k))
		}
	}
	sort.Slice(keys, func(i, j int) bool { return bytes.Compare(keys[i], keys[j]) < 0 })
	return keys, nil
}

func (s *memStore) Close() error {
	return nil
}
