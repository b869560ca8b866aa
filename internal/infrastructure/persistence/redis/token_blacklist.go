package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/librarium/lending/pkg/errors"
)

// TokenBlacklist JWT黑名单
// 设计说明：
// 1. JWT是无状态的，登出时把token写入黑名单使其提前失效
// 2. TTL等于token剩余有效期，过期后自动删除，无需手动清理
// 3. Key设计：blacklist:{token}
type TokenBlacklist struct {
	client *redis.Client
}

// NewTokenBlacklist 创建黑名单
func NewTokenBlacklist(client *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{client: client}
}

// Revoke 将token加入黑名单
// ttl<=0说明token已过期，无需记录
func (b *TokenBlacklist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := b.client.Set(ctx, blacklistKey(token), "revoked", ttl).Err(); err != nil {
		return apperrors.Wrap(err, "添加Token到黑名单失败")
	}
	return nil
}

// IsRevoked 检查token是否已被注销
func (b *TokenBlacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	exists, err := b.client.Exists(ctx, blacklistKey(token)).Result()
	if err != nil {
		return false, apperrors.Wrap(err, "检查黑名单失败")
	}
	return exists > 0, nil
}

func blacklistKey(token string) string {
	return "blacklist:" + token
}
