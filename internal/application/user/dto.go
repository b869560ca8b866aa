package user

import (
	"context"
	"time"

	"github.com/librarium/lending/internal/domain/user"
)

// TokenBlacklist 已注销token存储（Redis或进程内实现）
type TokenBlacklist interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

const dateTimeLayout = "2006-01-02 15:04:05"

// UserInfo 用户信息（不含密码）
type UserInfo struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// AuthResponse 注册/登录响应：用户信息+访问令牌
type AuthResponse struct {
	User  UserInfo
	Token string
}

func toUserInfo(u *user.User) UserInfo {
	return UserInfo{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.Format(dateTimeLayout),
		UpdatedAt: u.UpdatedAt.Format(dateTimeLayout),
	}
}
