package book

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/librarium/lending/internal/domain/book"
	"github.com/librarium/lending/pkg/metrics"
)

// CatalogCache 图书列表缓存协调器
// 设计说明:
// 1. 读用例通过lookup/store访问缓存，写用例成功后调用Invalidate
// 2. 缓存失败不影响业务：读失败回源数据库，写失败只记录日志
// 3. generation防止回填旧数据：查询开始后发生过失效，查询结果不再写入缓存
type CatalogCache struct {
	cache  book.ListCache
	ttl    time.Duration
	logger *zap.Logger

	mu         sync.RWMutex
	generation uint64
}

// NewCatalogCache 创建缓存协调器，ttl<=0时使用book.ListTTL
func NewCatalogCache(cache book.ListCache, ttl time.Duration, logger *zap.Logger) *CatalogCache {
	if ttl <= 0 {
		ttl = book.ListTTL
	}
	return &CatalogCache{cache: cache, ttl: ttl, logger: logger}
}

// snapshot 当前代数，查询数据库前获取
func (c *CatalogCache) snapshot() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

func (c *CatalogCache) lookup(ctx context.Context, key string) (*book.Page, bool) {
	page, ok, err := c.cache.Get(ctx, key)
	switch {
	case err != nil:
		metrics.CatalogCacheRequests.WithLabelValues("error").Inc()
		c.logger.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	case ok:
		metrics.CatalogCacheRequests.WithLabelValues("hit").Inc()
		return page, true
	default:
		metrics.CatalogCacheRequests.WithLabelValues("miss").Inc()
		return nil, false
	}
}

// store 回填缓存；generation已变化说明期间有写操作，丢弃结果
func (c *CatalogCache) store(ctx context.Context, key string, page *book.Page, generation uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.generation != generation {
		return
	}
	if err := c.cache.Set(ctx, key, page, c.ttl); err != nil {
		c.logger.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate 清空全部列表缓存
func (c *CatalogCache) Invalidate(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++

	if err := c.cache.InvalidateAll(ctx); err != nil {
		metrics.CatalogCacheInvalidations.WithLabelValues("error").Inc()
		c.logger.Error("catalog cache invalidation failed", zap.Error(err))
		return
	}
	metrics.CatalogCacheInvalidations.WithLabelValues("success").Inc()
}
