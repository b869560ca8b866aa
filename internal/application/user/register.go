package user

import (
	"context"

	"github.com/librarium/lending/internal/domain/user"
	"github.com/librarium/lending/pkg/jwt"
)

// RegisterUseCase 用户注册用例
// 注册成功直接签发token，客户端无需再登录一次
type RegisterUseCase struct {
	userService user.Service
	jwtManager  *jwt.Manager
}

// NewRegisterUseCase 创建注册用例
func NewRegisterUseCase(userService user.Service, jwtManager *jwt.Manager) *RegisterUseCase {
	return &RegisterUseCase{
		userService: userService,
		jwtManager:  jwtManager,
	}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Name     string
	Email    string
	Password string
	Role     string // admin | user，默认user
}

// Execute 执行注册
func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	// 1. 解析角色
	role, err := user.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}

	// 2. 调用领域服务执行注册
	u, err := uc.userService.Register(ctx, req.Name, req.Email, req.Password, role)
	if err != nil {
		return nil, err
	}

	// 3. 签发token
	token, err := uc.jwtManager.GenerateToken(u.ID, u.Email, u.Name, string(u.Role))
	if err != nil {
		return nil, err
	}

	return &AuthResponse{User: toUserInfo(u), Token: token}, nil
}
