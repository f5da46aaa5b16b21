package middlewares

import (
	"net/http"
	"strings"

	"github.com/3Eeeecho/go-secureprint/internal/pkg/utils"
	"github.com/3Eeeecho/go-secureprint/internal/pkg/xerr"
	"github.com/gin-gonic/gin"
)

func AuthMiddleware(secretKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. 从请求头获取 Token
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			xerr.AbortWithError(c, http.StatusUnauthorized, xerr.UnauthorizedCode, xerr.ErrUnauthorized.Error())
			return
		}

		// Token 格式通常是 "Bearer <token>"
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			xerr.AbortWithError(c, http.StatusUnauthorized, xerr.TokenInvalidCode, xerr.ErrTokenInvalid.Error())
			return
		}

		// 2. 解析和验证 Token
		claims, err := utils.ParseToken(parts[1], secretKey)
		if err != nil {
			xerr.AbortWithError(c, http.StatusUnauthorized, xerr.TokenInvalidCode, xerr.ErrTokenInvalid.Error())
			return
		}

		// 3. 将用户信息存储到 Gin Context 中，以便后续 Handler 使用
		c.Set(utils.ContextUserIDKey, claims.UserID)
		c.Set(utils.ContextEmailKey, claims.Email)

		c.Next() // Token 有效，继续处理请求
	}
}
