package mem

import (
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the-maldridge/ntx/pkg/storage"
)

func TestRegistry(t *testing.T) {
	storage.SetLogger(hclog.NewNullLogger())
	storage.DoCallbacks()

	s, err := storage.Initialize("mem", "")
	require.NoError(t, err)
	defer s.Close()

	_, err = storage.Initialize("nope", "")
	assert.IsType(t, storage.ErrUnknownStore{}, err)
}

func TestStore(t *testing.T) {
	s, err := New(hclog.NewNullLogger(), "")
	require.NoError(t, err)

	_, err = s.Get([]byte("txn/1"))
	assert.Equal(t, storage.ErrNotFound, err)

	require.NoError(t, s.Put([]byte("txn/2"), []byte("two")))
	require.NoError(t, s.Put([]byte("txn/1"), []byte("one")))
	require.NoError(t, s.Put([]byte("other"), []byte("x")))

	v, err := s.Get([]byte("txn/1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), v)

	keys, err := s.Keys([]byte("txn/"))
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("txn/1"), []byte("txn/2")}, keys)

	require.NoError(t, s.Del([]byte("txn/1")))
	_, err = s.Get([]byte("txn/1"))
	assert.Equal(t, storage.ErrNotFound, err)
}
