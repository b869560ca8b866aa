package user

import (
	"context"

	"github.com/librarium/lending/internal/domain/user"
	"github.com/librarium/lending/pkg/jwt"
)

// LoginUseCase 用户登录用例
type LoginUseCase struct {
	userService user.Service
	jwtManager  *jwt.Manager
}

// NewLoginUseCase 创建登录用例
func NewLoginUseCase(userService user.Service, jwtManager *jwt.Manager) *LoginUseCase {
	return &LoginUseCase{
		userService: userService,
		jwtManager:  jwtManager,
	}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string
	Password string
}

// Execute 执行登录
func (uc *LoginUseCase) Execute(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	// 1. 验证邮箱密码（调用领域服务）
	u, err := uc.userService.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	// 2. 签发token
	token, err := uc.jwtManager.GenerateToken(u.ID, u.Email, u.Name, string(u.Role))
	if err != nil {
		return nil, err
	}

	return &AuthResponse{User: toUserInfo(u), Token: token}, nil
}

// LogoutUseCase 用户登出用例
// JWT无法在服务端删除，登出时把token加入黑名单直到其自然过期
type LogoutUseCase struct {
	jwtManager *jwt.Manager
	blacklist  TokenBlacklist
}

// NewLogoutUseCase 创建登出用例
func NewLogoutUseCase(jwtManager *jwt.Manager, blacklist TokenBlacklist) *LogoutUseCase {
	return &LogoutUseCase{
		jwtManager: jwtManager,
		blacklist:  blacklist,
	}
}

// Execute 执行登出
func (uc *LogoutUseCase) Execute(ctx context.Context, token string) error {
	claims, err := uc.jwtManager.ParseToken(token)
	if err != nil {
		return err
	}
	return uc.blacklist.Revoke(ctx, token, uc.jwtManager.RemainingTTL(claims))
}
