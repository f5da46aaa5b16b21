package handlers

import (
	"net/http"

	"github.com/3Eeeecho/go-secureprint/internal/pkg/xerr"
	"github.com/3Eeeecho/go-secureprint/internal/services/admin"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService admin.AuthService
}

func NewAuthHandler(authService admin.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type SignupResponse struct {
	Message string `json:"message"`
	ID      uint64 `json:"id"`
}

// LoginRequest 登录请求结构体
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

// Signup
// @Summary 用户注册
// @Description 使用邮箱和密码注册, name 可选
// @Tags 用户认证
// @Accept json
// @Produce json
// @Param data body SignupRequest true "注册信息"
// @Success 200 {object} SignupResponse "注册成功"
// @Failure 400 {object} xerr.ErrorResponse "参数缺失或邮箱已注册"
// @Router /api/auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		xerr.Error(c, http.StatusBadRequest, xerr.InvalidParamsCode, "email+password required")
		return
	}

	user, err := h.authService.Signup(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		respondError(c, err, "Failed to register user")
		return
	}

	c.JSON(http.StatusOK, SignupResponse{Message: "User registered", ID: user.ID})
}

// Login
// @Summary 用户登录
// @Description 登录成功返回 7 天有效的 Bearer Token
// @Tags 用户认证
// @Accept json
// @Produce json
// @Param data body LoginRequest true "登录信息"
// @Success 200 {object} LoginResponse "登录成功"
// @Failure 400 {object} xerr.ErrorResponse "邮箱或密码错误"
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		xerr.Error(c, http.StatusBadRequest, xerr.InvalidCredentialsCode, xerr.ErrInvalidCredentials.Error())
		return
	}

	token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err, "Failed to login")
		return
	}

	c.JSON(http.StatusOK, LoginResponse{Token: token})
}
