package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/librarium/lending/pkg/errors"
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Response 统一响应结构
// 设计说明：
// 1. Status/Error 两个字段同时标识成功与失败（兼容旧客户端）
// 2. Message 成功时为字符串，失败时为字符串列表
// 3. Data 是业务数据，失败时省略
// 4. Token 仅在注册/登录时返回
type Response struct {
	Status  string      `json:"status"`
	Error   bool        `json:"error"`
	Message interface{} `json:"message"`
	Token   string      `json:"token,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应（HTTP 200）
func Success(c *gin.Context, message string, data interface{}) {
	SuccessWithStatus(c, http.StatusOK, message, data)
}

// Created 成功响应（HTTP 201）
// 注意：图书的查询、更新、删除接口也返回201，客户端依赖此行为
func Created(c *gin.Context, message string, data interface{}) {
	SuccessWithStatus(c, http.StatusCreated, message, data)
}

// SuccessWithStatus 自定义HTTP状态码的成功响应
func SuccessWithStatus(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{
		Status:  StatusSuccess,
		Error:   false,
		Message: message,
		Data:    data,
	})
}

// SuccessWithToken 带Token的成功响应（注册、登录）
func SuccessWithToken(c *gin.Context, status int, message, token string, data interface{}) {
	c.JSON(status, Response{
		Status:  StatusSuccess,
		Error:   false,
		Message: message,
		Token:   token,
		Data:    data,
	})
}

// Error 错误响应（自动处理AppError）
// 用法：
//
//	book, err := uc.Execute(...)
//	if err != nil {
//	    response.Error(c, err)
//	    return
//	}
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)
	status := HTTPStatus(appErr.Code)

	// 内部错误只记录日志，不返回细节
	if status >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Int("code", appErr.Code),
			zap.Error(err),
		)
	}

	Fail(c, status, appErr.Message)
}

// Fail 失败响应，message统一为列表
func Fail(c *gin.Context, status int, messages ...string) {
	if messages == nil {
		messages = []string{}
	}
	c.JSON(status, Response{
		Status:  StatusFailed,
		Error:   true,
		Message: messages,
	})
}

// AbortWithError 中间件中使用：写入错误响应并终止后续Handler
func AbortWithError(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

// HTTPStatus 业务错误码 → HTTP状态码
// 404xx→404，409xx/422xx→422，401xx→401，403xx→403，其余→500
func HTTPStatus(code int) int {
	switch {
	case code >= 40100 && code < 40200:
		return http.StatusUnauthorized
	case code >= 40300 && code < 40400:
		return http.StatusForbidden
	case code >= 40400 && code < 40500:
		return http.StatusNotFound
	case code >= 40900 && code < 41000:
		return http.StatusUnprocessableEntity
	case code >= 42200 && code < 42300:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// =========================================
// 分页响应结构
// =========================================

// Paginator 分页数据封装（字段名与旧版接口保持一致）
type Paginator struct {
	CurrentPage int         `json:"current_page"`
	Data        interface{} `json:"data"`
	From        *int        `json:"from"`
	LastPage    int         `json:"last_page"`
	PerPage     int         `json:"per_page"`
	To          *int        `json:"to"`
	Total       int64       `json:"total"`
}

// NewPaginator 创建分页数据
// count为当前页实际条数，用于计算from/to
func NewPaginator(data interface{}, count int, total int64, page, perPage int) *Paginator {
	lastPage := int(total) / perPage
	if int(total)%perPage != 0 {
		lastPage++
	}
	if lastPage < 1 {
		lastPage = 1
	}

	p := &Paginator{
		CurrentPage: page,
		Data:        data,
		LastPage:    lastPage,
		PerPage:     perPage,
		Total:       total,
	}
	if count > 0 {
		from := (page-1)*perPage + 1
		to := from + count - 1
		p.From = &from
		p.To = &to
	}
	return p
}

// Paginate 分页成功响应（不带外层信封，直接返回分页对象）
func Paginate(c *gin.Context, p *Paginator) {
	c.JSON(http.StatusOK, p)
}
