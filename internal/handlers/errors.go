package handlers

import (
	"errors"
	"net/http"

	"github.com/3Eeeecho/go-secureprint/internal/pkg/logger"
	"github.com/3Eeeecho/go-secureprint/internal/pkg/xerr"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type errorMapping struct {
	target error
	status int
	code   int
}

// 按顺序匹配, 未命中的错误一律按 500 处理
var errorMappings = []errorMapping{
	{xerr.ErrInvalidParams, http.StatusBadRequest, xerr.InvalidParamsCode},
	{xerr.ErrFileMissing, http.StatusBadRequest, xerr.FileMissingCode},
	{xerr.ErrUserAlreadyExists, http.StatusBadRequest, xerr.UserAlreadyExistsCode},
	{xerr.ErrInvalidCredentials, http.StatusBadRequest, xerr.InvalidCredentialsCode},
	{xerr.ErrUnauthorized, http.StatusUnauthorized, xerr.UnauthorizedCode},
	{xerr.ErrTokenInvalid, http.StatusUnauthorized, xerr.TokenInvalidCode},
	{xerr.ErrPermissionDenied, http.StatusForbidden, xerr.PermissionDeniedCode},
	{xerr.ErrLinkExpired, http.StatusForbidden, xerr.LinkExpiredCode},
	{xerr.ErrInvalidOTP, http.StatusForbidden, xerr.InvalidOTPCode},
	{xerr.ErrOTPNotValidated, http.StatusForbidden, xerr.OTPNotValidatedCode},
	{xerr.ErrTooManyAttempts, http.StatusForbidden, xerr.TooManyAttemptsCode},
	{xerr.ErrFileNotFound, http.StatusNotFound, xerr.FileNotFoundCode},
	{xerr.ErrLinkNotFound, http.StatusNotFound, xerr.LinkNotFoundCode},
	{xerr.ErrEmailDelivery, http.StatusInternalServerError, xerr.EmailDeliveryCode},
	{xerr.ErrStorageError, http.StatusInternalServerError, xerr.StorageErrorCode},
	{xerr.ErrDatabaseError, http.StatusInternalServerError, xerr.DatabaseErrorCode},
}

// respondError 把业务错误转换成 HTTP 响应
// 4xx 返回对应的错误信息; 5xx 使用 serverMsg, 不向调用方暴露内部细节
func respondError(c *gin.Context, err error, serverMsg string) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		if m.status >= http.StatusInternalServerError {
			logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
			if m.target == xerr.ErrEmailDelivery {
				serverMsg = xerr.ErrEmailDelivery.Error()
			}
			xerr.Error(c, m.status, m.code, serverMsg)
			return
		}
		xerr.Error(c, m.status, m.code, m.target.Error())
		return
	}

	logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	xerr.Error(c, http.StatusInternalServerError, xerr.InternalServerErrorCode, serverMsg)
}
