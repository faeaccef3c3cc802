package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/rushteam/hybridrec/core"
)

type kvSuite struct {
	suite.Suite
	newStore func() core.KeyValueStore
	store    core.KeyValueStore
}

func (s *kvSuite) SetupTest() {
	s.store = s.newStore()
}

func (s *kvSuite) TearDownTest() {
	s.NoError(s.store.Close())
}

func (s *kvSuite) TestGetSetDelete() {
	ctx := context.Background()
	key := "hybridrec:test:kv"
	_, err := s.store.Get(ctx, key)
	s.True(core.IsStoreNotFound(err))

	s.Require().NoError(s.store.Set(ctx, key, []byte("v1")))
	v, err := s.store.Get(ctx, key)
	s.Require().NoError(err)
	s.Equal([]byte("v1"), v)

	s.Require().NoError(s.store.Delete(ctx, key))
	_, err = s.store.Get(ctx, key)
	s.ErrorIs(err, core.ErrStoreNotFound)
}

func (s *kvSuite) TestSortedSet() {
	ctx := context.Background()
	key := "hybridrec:test:zset"
	defer s.store.Delete(ctx, key)

	s.Require().NoError(s.store.ZAdd(ctx, key, 4.5, "a"))
	s.Require().NoError(s.store.ZAdd(ctx, key, 3, "b"))
	s.Require().NoError(s.store.ZAdd(ctx, key, 5, "c"))

	members, err := s.store.ZRange(ctx, key, 0, -1)
	s.Require().NoError(err)
	s.Equal([]string{"c", "a", "b"}, members)

	members, err = s.store.ZRange(ctx, key, 0, 1)
	s.Require().NoError(err)
	s.Equal([]string{"c", "a"}, members)

	score, err := s.store.ZScore(ctx, key, "a")
	s.Require().NoError(err)
	s.Equal(4.5, score)

	_, err = s.store.ZScore(ctx, key, "missing")
	s.True(core.IsStoreNotFound(err))
}

func TestMemoryStore(t *testing.T) {
	suite.Run(t, &kvSuite{newStore: func() core.KeyValueStore { return NewMemoryStore() }})
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	suite.Run(t, &kvSuite{newStore: func() core.KeyValueStore {
		s, err := NewRedisStore(context.Background(), addr, 0)
		require.NoError(t, err)
		return s
	}})
}

func TestMemoryStore_TTL(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "k", []byte("v"), 1))
	_, err := s.Get(ctx, "k")
	require.NoError(t, err)

	s.mu.Lock()
	s.data["k"].expire = time.Now().Add(-time.Second)
	s.mu.Unlock()
	_, err = s.Get(ctx, "k")
	assert.True(t, core.IsStoreNotFound(err))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, Options{})
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = Open(ctx, Options{Type: "memory"})
	require.NoError(t, err)
	assert.Equal(t, "memory", s.Name())
	assert.NoError(t, s.Close())

	_, err = Open(ctx, Options{Type: "bogus"})
	assert.ErrorIs(t, err, core.ErrStoreNotSupported)
	assert.False(t, core.IsStoreNotFound(err))
}
