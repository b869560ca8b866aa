package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/librarium/lending/internal/domain/book"
)

// listKeyPrefix 列表缓存key前缀
// 格式：catalog:list:{ListQuery.CacheKey()}
const listKeyPrefix = "catalog:list:"

// ListCache 基于Redis的图书列表缓存
//
// 缓存策略：Cache-Aside
//   - 读：先查缓存，未命中再查数据库并回填
//   - 写：更新数据库后删除全部列表缓存（而不是更新缓存，避免并发写导致脏数据）
type ListCache struct {
	client *redis.Client
}

// NewListCache 创建列表缓存
func NewListCache(client *redis.Client) *ListCache {
	return &ListCache{client: client}
}

var _ book.ListCache = (*ListCache)(nil)

// Get 读取一页缓存
func (c *ListCache) Get(ctx context.Context, key string) (*book.Page, bool, error) {
	val, err := c.client.Get(ctx, listKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("获取缓存失败: %w", err)
	}

	var page book.Page
	if err := json.Unmarshal(val, &page); err != nil {
		return nil, false, fmt.Errorf("反序列化失败: %w", err)
	}
	return &page, true, nil
}

// Set 写入一页缓存
func (c *ListCache) Set(ctx context.Context, key string, page *book.Page, ttl time.Duration) error {
	val, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("序列化失败: %w", err)
	}

	if err := c.client.Set(ctx, listKeyPrefix+key, val, ttl).Err(); err != nil {
		return fmt.Errorf("设置缓存失败: %w", err)
	}
	return nil
}

// InvalidateAll 删除所有列表缓存
// 使用SCAN遍历（不阻塞Redis），UNLINK异步删除
func (c *ListCache) InvalidateAll(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, listKeyPrefix+"*", 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("扫描缓存key失败: %w", err)
	}

	if len(keys) > 0 {
		if err := c.client.Unlink(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("删除缓存失败: %w", err)
		}
	}
	return nil
}
