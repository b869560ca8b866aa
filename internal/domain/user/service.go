package user

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/librarium/lending/pkg/errors"
)

// MinPasswordLength 密码最短长度
const MinPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Service 用户领域服务
// 设计说明：
// 1. Service包含不属于单个实体的业务逻辑（密码加密、邮箱唯一性、认证）
// 2. Service依赖Repository接口，不依赖具体实现（依赖倒置）
type Service interface {
	// Register 用户注册，role为空时为普通用户
	Register(ctx context.Context, name, email, password string, role Role) (*User, error)

	// Authenticate 邮箱+密码认证
	Authenticate(ctx context.Context, email, password string) (*User, error)

	// UpdateProfile 更新资料，nil字段表示不修改
	UpdateProfile(ctx context.Context, id uint, changes ProfileChanges) (*User, error)
}

// ProfileChanges 个人资料部分更新
type ProfileChanges struct {
	Name     *string
	Email    *string
	Password *string
}

type service struct {
	repo Repository
	cost int
}

// NewService 创建用户服务
func NewService(repo Repository) Service {
	return &service{repo: repo, cost: bcrypt.DefaultCost}
}

// NewServiceWithCost 指定bcrypt cost（测试使用bcrypt.MinCost加速）
func NewServiceWithCost(repo Repository, cost int) Service {
	return &service{repo: repo, cost: cost}
}

// Register 用户注册
// 业务规则：
// 1. 名称必填，不超过255字符
// 2. 邮箱格式合法且唯一
// 3. 密码至少6位，bcrypt加密
func (s *service) Register(ctx context.Context, name, email, password string, role Role) (*User, error) {
	// 1. 参数校验
	if err := validateName(name); err != nil {
		return nil, err
	}
	if !emailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	if len(password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if role == "" {
		role = RoleUser
	}

	// 2. 邮箱唯一性（数据库唯一索引兜底）
	exists, err := s.repo.ExistsByEmail(ctx, normalizeEmail(email), 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrEmailDuplicate
	}

	// 3. 密码加密
	hashed, err := s.hash(password)
	if err != nil {
		return nil, err
	}

	// 4. 持久化
	u := NewUser(name, email, hashed, role)
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate 用户登录
// 邮箱不存在与密码错误返回不同提示
func (s *service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, ErrEmailNotRegistered
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.Wrap(err, "密码验证失败")
	}
	return u, nil
}

// UpdateProfile 更新个人资料
// 邮箱唯一性校验排除本人
func (s *service) UpdateProfile(ctx context.Context, id uint, changes ProfileChanges) (*User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if changes.Name != nil && *changes.Name != "" {
		if err := validateName(*changes.Name); err != nil {
			return nil, err
		}
		u.Name = strings.TrimSpace(*changes.Name)
	}

	if changes.Email != nil && *changes.Email != "" {
		if !emailPattern.MatchString(*changes.Email) {
			return nil, ErrInvalidEmail
		}
		email := normalizeEmail(*changes.Email)
		exists, err := s.repo.ExistsByEmail(ctx, email, u.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperrors.ErrEmailDuplicate
		}
		u.Email = email
	}

	// 空密码表示不修改
	if changes.Password != nil && *changes.Password != "" {
		if len(*changes.Password) < MinPasswordLength {
			return nil, ErrPasswordTooShort
		}
		hashed, err := s.hash(*changes.Password)
		if err != nil {
			return nil, err
		}
		u.Password = hashed
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", apperrors.Wrap(err, "密码加密失败")
	}
	return string(hashed), nil
}

func validateName(name string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n == 0 {
		return ErrNameRequired
	}
	if n > 255 {
		return ErrNameTooLong
	}
	return nil
}
