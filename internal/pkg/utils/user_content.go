package utils

import (
	"net/http"

	"github.com/3Eeeecho/go-secureprint/internal/pkg/xerr"
	"github.com/gin-gonic/gin"
)

const (
	ContextUserIDKey = "userID"
	ContextEmailKey  = "email"
)

// GetUserIDFromContext 从 Gin 上下文中获取并验证用户ID
// 如果获取失败或类型不正确，会中止请求并返回错误
func GetUserIDFromContext(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(ContextUserIDKey)
	if !exists {
		xerr.AbortWithError(c, http.StatusUnauthorized, xerr.UnauthorizedCode, "Unauthorized")
		return 0, false
	}
	currentUserID, ok := userID.(uint64)
	if !ok {
		xerr.AbortWithError(c, http.StatusInternalServerError, xerr.InternalServerErrorCode, "Invalid user ID type in context")
		return 0, false
	}
	return currentUserID, true
}

// GetEmailFromContext 返回 token 中携带的邮箱, 不存在时为空串
func GetEmailFromContext(c *gin.Context) string {
	return c.GetString(ContextEmailKey)
}
