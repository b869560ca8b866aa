package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appuser "github.com/librarium/lending/internal/application/user"
	"github.com/librarium/lending/internal/interface/http/dto"
	"github.com/librarium/lending/internal/interface/http/middleware"
	"github.com/librarium/lending/pkg/response"
)

// UserHandler 用户HTTP处理器
type UserHandler struct {
	register      *appuser.RegisterUseCase
	login         *appuser.LoginUseCase
	logout        *appuser.LogoutUseCase
	profile       *appuser.ProfileUseCase
	updateProfile *appuser.UpdateProfileUseCase
}

// NewUserHandler 创建用户处理器
func NewUserHandler(
	register *appuser.RegisterUseCase,
	login *appuser.LoginUseCase,
	logout *appuser.LogoutUseCase,
	profile *appuser.ProfileUseCase,
	updateProfile *appuser.UpdateProfileUseCase,
) *UserHandler {
	return &UserHandler{
		register:      register,
		login:         login,
		logout:        logout,
		profile:       profile,
		updateProfile: updateProfile,
	}
}

// Register 用户注册
// @Summary      用户注册
// @Description  注册成功直接返回token
// @Tags         用户
// @Accept       json
// @Produce      json
// @Param        request body dto.RegisterRequest true "注册信息"
// @Success      201 {object} response.Response{data=appuser.UserInfo} "注册成功"
// @Failure      422 {object} response.Response "参数错误或邮箱已存在"
// @Router       /api/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	// 1. 绑定并验证参数
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	// 2. 调用注册用例
	result, err := h.register.Execute(c.Request.Context(), appuser.RegisterRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	// 3. 返回用户信息与token
	response.SuccessWithToken(c, http.StatusCreated, "User registered successfully.", result.Token, result.User)
}

// Login 用户登录
// @Summary      用户登录
// @Description  验证邮箱密码，返回JWT Token
// @Tags         用户
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "登录信息"
// @Success      200 {object} response.Response{data=appuser.UserInfo} "登录成功"
// @Failure      422 {object} response.Response "邮箱不存在或密码错误"
// @Router       /api/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.login.Execute(c.Request.Context(), appuser.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithToken(c, http.StatusOK, "Login successful.", result.Token, result.User)
}

// LoginRequired 未登录访问受保护资源时跳转的入口
// @Summary      登录提示
// @Tags         用户
// @Produce      json
// @Failure      401 {object} response.Response
// @Router       /api/login [get]
func (h *UserHandler) LoginRequired(c *gin.Context) {
	response.Fail(c, http.StatusUnauthorized,
		"You are unauthenticated or you do not have enough rights for this operation.")
}

// Show 当前用户资料及借阅历史
// @Summary      个人资料
// @Tags         用户
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=appuser.ProfileResponse}
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/user/show [get]
func (h *UserHandler) Show(c *gin.Context) {
	result, err := h.profile.Execute(c.Request.Context(), middleware.MustGetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "User details retrieved successfully.", result)
}

// Update 修改个人资料
// @Summary      修改个人资料
// @Description  只修改请求中出现的字段，角色不可修改
// @Tags         用户
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.UpdateProfileRequest true "资料"
// @Success      201 {object} response.Response{data=appuser.UserInfo}
// @Failure      422 {object} response.Response "参数错误或邮箱已存在"
// @Router       /api/user/update [put]
func (h *UserHandler) Update(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.updateProfile.Execute(c.Request.Context(), appuser.UpdateProfileRequest{
		UserID:   middleware.MustGetUserID(c),
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "User updated successfully.", result)
}

// Logout 登出，当前token加入黑名单
// @Summary      登出
// @Tags         用户
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/user/logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	if err := h.logout.Execute(c.Request.Context(), middleware.GetToken(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "Logged out successfully.", nil)
}
