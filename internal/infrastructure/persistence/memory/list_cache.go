// Package memory 进程内缓存实现，用于单实例部署和本地开发（cache.driver=memory）
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/librarium/lending/internal/domain/book"
)

// ListCache 基于ttlcache的图书列表缓存
// 值以JSON保存，Get返回的Page与缓存互不影响
type ListCache struct {
	cache *ttlcache.Cache[string, []byte]
}

var _ book.ListCache = (*ListCache)(nil)

// NewListCache 创建缓存并启动过期清理协程，退出时调用Stop
// 关闭touch-on-hit：条目从写入起计时，读取不延长有效期
func NewListCache(defaultTTL time.Duration) *ListCache {
	cache := ttlcache.New(
		ttlcache.WithTTL[string, []byte](defaultTTL),
		ttlcache.WithDisableTouchOnHit[string, []byte](),
	)
	go cache.Start()
	return &ListCache{cache: cache}
}

func (c *ListCache) Get(_ context.Context, key string) (*book.Page, bool, error) {
	item := c.cache.Get(key)
	if item == nil {
		return nil, false, nil
	}

	var page book.Page
	if err := json.Unmarshal(item.Value(), &page); err != nil {
		return nil, false, fmt.Errorf("反序列化失败: %w", err)
	}
	return &page, true, nil
}

func (c *ListCache) Set(_ context.Context, key string, page *book.Page, ttl time.Duration) error {
	val, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("序列化失败: %w", err)
	}
	c.cache.Set(key, val, ttl)
	return nil
}

func (c *ListCache) InvalidateAll(_ context.Context) error {
	c.cache.DeleteAll()
	return nil
}

// Stop 停止过期清理协程
func (c *ListCache) Stop() {
	c.cache.Stop()
}
