package errors

import (
	"errors"
	"fmt"
)

// AppError 自定义应用错误
// 设计说明：
// 1. Code用于区分错误类别，由response包映射为HTTP状态码
// 2. Message是用户友好的提示信息（英文，与客户端约定保持一致）
// 3. Err是内部错误，仅记录到日志，不返回给客户端（防止泄露敏感信息）
type AppError struct {
	Code    int    `json:"code"`    // 业务错误码
	Message string `json:"message"` // 用户友好的错误提示
	Err     error  `json:"-"`       // 内部错误（不序列化）
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// New 创建新的AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装系统错误（如数据库错误、网络错误）
// 用途：将底层错误转换为业务错误，隐藏实现细节
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// Wrapf 格式化包装错误
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// =========================================
// 错误码定义
// =========================================
// 规范：
// - 401xx/403xx: 认证授权
// - 404xx: 资源不存在
// - 409xx: 状态冲突（已借出、已归还、ISBN重复）
// - 422xx: 参数校验失败
// - 5xxxx: 服务端错误（数据库异常、外部服务调用失败）

const (
	// 系统级错误码（50000-50099）
	ErrCodeInternal      = 50000 // 内部错误
	ErrCodeDatabaseError = 50001 // 数据库错误
	ErrCodeRedisError    = 50002 // Redis错误

	// 认证授权错误（40100-40199）
	ErrCodeUnauthorized = 40100 // 未登录
	ErrCodeInvalidToken = 40101 // Token无效
	ErrCodeTokenExpired = 40102 // Token过期
	ErrCodeForbidden    = 40300 // 无权限

	// 资源错误（40400-40499）
	ErrCodeNotFound          = 40400 // 资源不存在(通用)
	ErrCodeUserNotFound      = 40401 // 用户不存在
	ErrCodeBookNotFound      = 40402 // 图书不存在
	ErrCodeBorrowingNotFound = 40403 // 借阅记录不存在

	// 状态冲突（40900-40999）
	ErrCodeConflict        = 40900 // 状态冲突(通用)
	ErrCodeBookBorrowed    = 40901 // 图书已借出
	ErrCodeAlreadyReturned = 40902 // 借阅已归还
	ErrCodeDuplicateEntry  = 40909 // 重复记录(通用)

	// 参数错误（42200-42299）
	ErrCodeInvalidParams      = 42200 // 参数错误
	ErrCodeBindError          = 42201 // 参数绑定失败
	ErrCodeEmailDuplicate     = 42202 // 邮箱已存在
	ErrCodeISBNDuplicate      = 42203 // ISBN已存在
	ErrCodeInvalidCredentials = 42204 // 账号或密码错误
)

// =========================================
// 预定义错误（避免每次都New）
// =========================================

var (
	// 系统错误
	ErrInternal      = New(ErrCodeInternal, "Internal server error.")
	ErrDatabaseError = New(ErrCodeDatabaseError, "Database error.")
	ErrRedisError    = New(ErrCodeRedisError, "Cache service error.")

	// 认证授权
	ErrUnauthorized = New(ErrCodeUnauthorized, "Unauthenticated.")
	ErrInvalidToken = New(ErrCodeInvalidToken, "Unauthenticated.")
	ErrTokenExpired = New(ErrCodeTokenExpired, "Token has expired.")
	ErrForbidden    = New(ErrCodeForbidden, "You do not have permission to perform this action.")

	// 资源不存在
	ErrUserNotFound = New(ErrCodeUserNotFound, "User not found.")

	// 参数错误
	ErrInvalidParams      = New(ErrCodeInvalidParams, "The given data was invalid.")
	ErrBindError          = New(ErrCodeBindError, "Malformed request body.")
	ErrEmailDuplicate     = New(ErrCodeEmailDuplicate, "The email has already been taken.")
	ErrInvalidCredentials = New(ErrCodeInvalidCredentials, "The provided credentials are incorrect.")
)

// =========================================
// 辅助函数
// =========================================

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 提取AppError（如果不是AppError则包装成Internal错误）
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "Internal server error.")
}

// IsNotFound 是否为资源不存在类错误
func IsNotFound(err error) bool {
	return inRange(err, 40400, 40499)
}

// IsConflict 是否为状态冲突类错误
func IsConflict(err error) bool {
	return inRange(err, 40900, 40999)
}

// IsValidation 是否为参数校验类错误
func IsValidation(err error) bool {
	return inRange(err, 42200, 42299)
}

func inRange(err error, lo, hi int) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Code >= lo && appErr.Code <= hi
}
