package xerr

import (
	"github.com/gin-gonic/gin"
)

// ErrorResponse 是统一的错误 JSON 结构
// 前端读取 error 字段, code 用于区分具体业务错误
type ErrorResponse struct {
	Code  int    `json:"code"`  // 业务状态码
	Error string `json:"error"` // 可读的错误信息
}

// Error 错误响应
func Error(c *gin.Context, httpStatus int, code int, message string) {
	c.JSON(httpStatus, ErrorResponse{
		Code:  code,
		Error: message,
	})
}

// AbortWithError 终止请求并发送错误响应
func AbortWithError(c *gin.Context, httpStatus int, code int, message string) {
	Error(c, httpStatus, code, message)
	c.Abort() // 终止后续的 HandlerFunc
}
