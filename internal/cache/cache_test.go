package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josanv1n/DIZA-FOOD/internal/models"
)

type countingSource struct {
	items []models.MenuItem
	err   error
	calls int
}

func (s *countingSource) List(context.Context) ([]models.MenuItem, error) {
	s.calls++
	return s.items, s.err
}

func newRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store := NewRedisStoreFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "diza")
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestRedisStore(t *testing.T) {
	s, mr := newRedis(t)
	ctx := context.Background()
	require.NoError(t, s.Ping(ctx))

	_, ok, err := s.Load(ctx, "menu:all")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Save(ctx, "menu:all", []byte("x"), time.Minute))
	assert.True(t, mr.Exists("diza:menu:all"))
	v, ok, err := s.Load(ctx, "menu:all")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("x"), v)

	mr.FastForward(2 * time.Minute)
	_, ok, err = s.Load(ctx, "menu:all")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Save(ctx, "menu:all", []byte("y"), 0))
	require.NoError(t, s.Drop(ctx, "menu:all"))
	assert.False(t, mr.Exists("diza:menu:all"))
}

func TestNopStoreAlwaysMisses(t *testing.T) {
	ctx := context.Background()
	var s Store = Nop{}
	require.NoError(t, s.Save(ctx, "k", []byte("v"), time.Minute))
	_, ok, err := s.Load(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMenuCacheHitMissInvalidate(t *testing.T) {
	c, _ := newRedis(t)
	src := &countingSource{items: []models.MenuItem{{ID: "3", Name: "Teh", Category: models.CategoryDrink, Price: 5000}}}
	mc := NewMenuCache(src, c, time.Minute)
	ctx := context.Background()

	items, err := mc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, src.items, items)

	items, err = mc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, src.items, items)
	assert.Equal(t, 1, src.calls)

	mc.Invalidate(ctx)
	_, err = mc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestMenuCacheSurvivesRedisOutage(t *testing.T) {
	c, mr := newRedis(t)
	src := &countingSource{items: []models.MenuItem{{ID: "1", Name: "Pop Ice", Price: 5000}}}
	mc := NewMenuCache(src, c, time.Minute)
	mr.Close()

	items, err := mc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 1)
	mc.Invalidate(context.Background())
}

func TestMenuCacheSourceError(t *testing.T) {
	src := &countingSource{err: errors.New("db down")}
	_, err := NewMenuCache(src, nil, time.Minute).List(context.Background())
	assert.EqualError(t, err, "db down")
}

func TestMenuCacheReloadsCorruptEntry(t *testing.T) {
	s, mr := newRedis(t)
	require.NoError(t, mr.Set("diza:"+menuKey, "{not json"))
	src := &countingSource{items: []models.MenuItem{{ID: "2", Name: "Kopi", Price: 5000}}}

	items, err := NewMenuCache(src, s, time.Minute).List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, src.items, items)
	assert.Equal(t, 1, src.calls)
}
