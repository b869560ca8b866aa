package memory

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// TokenBlacklist 进程内JWT黑名单，条目在token过期时自动清除
// 仅适用于单实例部署：多实例需要Redis实现共享黑名单
type TokenBlacklist struct {
	cache *ttlcache.Cache[string, struct{}]
}

// NewTokenBlacklist 创建黑名单并启动过期清理协程
func NewTokenBlacklist() *TokenBlacklist {
	cache := ttlcache.New[string, struct{}](
		ttlcache.WithDisableTouchOnHit[string, struct{}](),
	)
	go cache.Start()
	return &TokenBlacklist{cache: cache}
}

// Revoke 注销token，ttl<=0时不记录
func (b *TokenBlacklist) Revoke(_ context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	b.cache.Set(token, struct{}{}, ttl)
	return nil
}

// IsRevoked token是否已注销
func (b *TokenBlacklist) IsRevoked(_ context.Context, token string) (bool, error) {
	return b.cache.Get(token) != nil, nil
}

// Stop 停止过期清理协程
func (b *TokenBlacklist) Stop() {
	b.cache.Stop()
}
