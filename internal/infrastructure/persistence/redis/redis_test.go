package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librarium/lending/internal/domain/book"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestListCache(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestClient(t)
	cache := NewListCache(client)

	key := book.ListQuery{}.Normalize().CacheKey()

	t.Run("未命中", func(t *testing.T) {
		page, ok, err := cache.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, page)
	})

	t.Run("写入后命中", func(t *testing.T) {
		items := []*book.Book{{ID: 1, Title: "Dune", ISBN: "isbn-1", Status: book.StatusAvailable}}
		require.NoError(t, cache.Set(ctx, key, book.NewPage(items, 1, 1), time.Minute))

		page, ok, err := cache.Get(ctx, key)
		require.NoError(t, err)
		require.True(t, ok)
		assert.EqualValues(t, 1, page.Total)
		assert.Equal(t, "Dune", page.Items[0].Title)
		assert.True(t, mr.Exists(listKeyPrefix+key))
	})

	t.Run("TTL到期", func(t *testing.T) {
		mr.FastForward(2 * time.Minute)
		_, ok, err := cache.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("整体失效只删除列表缓存", func(t *testing.T) {
		for _, k := range []string{"a", "b", "c"} {
			require.NoError(t, cache.Set(ctx, k, book.NewPage(nil, 0, 1), time.Minute))
		}
		require.NoError(t, mr.Set("blacklist:token", "revoked"))

		require.NoError(t, cache.InvalidateAll(ctx))
		for _, k := range []string{"a", "b", "c"} {
			_, ok, err := cache.Get(ctx, k)
			require.NoError(t, err)
			assert.False(t, ok)
		}
		assert.True(t, mr.Exists("blacklist:token"))

		// 空缓存时也不报错
		assert.NoError(t, cache.InvalidateAll(ctx))
	})

	t.Run("Redis不可用", func(t *testing.T) {
		mr.Close()
		_, _, err := cache.Get(ctx, key)
		assert.Error(t, err)
		assert.Error(t, cache.InvalidateAll(ctx))
	})
}

func TestTokenBlacklist(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestClient(t)
	bl := NewTokenBlacklist(client)

	revoked, err := bl.IsRevoked(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, bl.Revoke(ctx, "t1", time.Minute))
	revoked, err = bl.IsRevoked(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, revoked)

	// 已过期的token不写入
	require.NoError(t, bl.Revoke(ctx, "t2", 0))
	assert.False(t, mr.Exists("blacklist:t2"))

	mr.FastForward(2 * time.Minute)
	revoked, err = bl.IsRevoked(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, revoked)
}
