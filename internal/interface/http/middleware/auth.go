package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/librarium/lending/pkg/errors"
	"github.com/librarium/lending/pkg/jwt"
	"github.com/librarium/lending/pkg/response"
)

const (
	ctxKeyUserID = "user_id"
	ctxKeyEmail  = "email"
	ctxKeyName   = "name"
	ctxKeyRole   = "role"
	ctxKeyToken  = "token"

	roleAdmin = "admin"
)

// RevocationChecker 查询token是否已注销（Redis或进程内黑名单）
type RevocationChecker interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// AuthMiddleware JWT认证中间件
// 设计说明：
// 1. 从Header提取Token
// 2. 检查Token黑名单
// 3. 验证Token有效性
// 4. 将用户信息注入Context
type AuthMiddleware struct {
	jwtManager *jwt.Manager
	revoked    RevocationChecker
	logger     *zap.Logger
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *jwt.Manager, revoked RevocationChecker, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		revoked:    revoked,
		logger:     logger,
	}
}

// RequireAuth 要求登录
// 使用方式：
//
//	authorized := r.Group("/api/user")
//	authorized.Use(authMiddleware.RequireAuth())
//	authorized.GET("/show", handler.Show)
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. 从Header提取Token
		// 格式：Authorization: Bearer <token>
		tokenString, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.AbortWithError(c, apperrors.ErrUnauthorized)
			return
		}

		// 2. 检查Token是否已注销
		revoked, err := m.revoked.IsRevoked(c.Request.Context(), tokenString)
		if err != nil {
			m.logger.Error("token blacklist lookup failed", zap.Error(err))
			response.AbortWithError(c, apperrors.ErrRedisError)
			return
		}
		if revoked {
			response.AbortWithError(c, apperrors.ErrUnauthorized)
			return
		}

		// 3. 验证Token并解析Claims
		claims, err := m.jwtManager.ParseToken(tokenString)
		if err != nil {
			response.AbortWithError(c, apperrors.ErrUnauthorized)
			return
		}

		// 4. 将用户信息注入到Context
		c.Set(ctxKeyUserID, claims.UserID)
		c.Set(ctxKeyEmail, claims.Email)
		c.Set(ctxKeyName, claims.Name)
		c.Set(ctxKeyRole, claims.Role)
		c.Set(ctxKeyToken, tokenString)

		c.Next()
	}
}

// RequireAdmin 要求管理员角色，必须放在RequireAuth之后
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetRole(c) != roleAdmin {
			response.AbortWithError(c, apperrors.ErrForbidden)
			return
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// =========================================
// Context辅助函数（供Handler使用）
// =========================================

// GetUserID 从Context获取当前登录用户ID，未登录返回0
func GetUserID(c *gin.Context) uint {
	if userID, exists := c.Get(ctxKeyUserID); exists {
		if uid, ok := userID.(uint); ok {
			return uid
		}
	}
	return 0
}

// GetRole 当前登录用户角色
func GetRole(c *gin.Context) string {
	return c.GetString(ctxKeyRole)
}

// GetToken 当前请求携带的token（登出时使用）
func GetToken(c *gin.Context) string {
	return c.GetString(ctxKeyToken)
}

// MustGetUserID 从Context获取用户ID（如果不存在则panic）
// 说明：用于已经通过RequireAuth中间件的Handler
func MustGetUserID(c *gin.Context) uint {
	userID := GetUserID(c)
	if userID == 0 {
		panic("user_id not found in context")
	}
	return userID
}
