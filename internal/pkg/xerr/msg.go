package xerr

import "errors"

var (
	// 通用错误
	ErrInternalServer = errors.New("internal server error")

	// 客户端请求错误
	ErrInvalidParams = errors.New("invalid request parameters")
	ErrFileMissing   = errors.New("No file uploaded")

	// 认证与授权错误
	ErrUnauthorized       = errors.New("Unauthorized")
	ErrTokenInvalid       = errors.New("Invalid token")
	ErrInvalidCredentials = errors.New("Invalid credentials")
	ErrUserAlreadyExists  = errors.New("User exists")

	// 权限错误
	ErrPermissionDenied = errors.New("forbidden")
	ErrLinkExpired      = errors.New("link expired")
	ErrInvalidOTP       = errors.New("invalid otp")
	ErrOTPNotValidated  = errors.New("OTP not validated")
	ErrTooManyAttempts  = errors.New("too many invalid otp attempts")

	// 资源未找到错误
	ErrFileNotFound = errors.New("file not found")
	ErrLinkNotFound = errors.New("link not found")

	// 数据库与外部服务错误
	ErrDatabaseError = errors.New("database operation failed")
	ErrStorageError  = errors.New("storage operation failed")
	ErrEmailDelivery = errors.New("Failed to send email")
)
