package xerr

// 定义了统一的业务错误码
const (
	SuccessCode = 20000 // 通用成功码

	// --- 客户端请求错误系列 (400xx) ---
	InvalidParamsCode      = 40000 // 无效的请求参数
	FileMissingCode        = 40001 // 上传请求中没有文件
	UserAlreadyExistsCode  = 40002 // 邮箱已注册 (兼容旧接口, 以 400 返回)
	InvalidCredentialsCode = 40003 // 邮箱或密码错误 (兼容旧接口, 以 400 返回)

	// --- 认证与授权错误系列 (401xx) ---
	UnauthorizedCode = 40100 // 通用未授权
	TokenInvalidCode = 40101 // Token 无效或过期

	// --- 权限错误系列 (403xx) ---
	ForbiddenCode        = 40300 // 通用无权限
	PermissionDeniedCode = 40301 // 不是文件所有者
	LinkExpiredCode      = 40302 // 链接已过期
	InvalidOTPCode       = 40303 // 验证码不正确
	OTPNotValidatedCode  = 40304 // 链接尚未通过验证码校验
	TooManyAttemptsCode  = 40305 // 验证码错误次数过多

	// --- 资源未找到错误系列 (404xx) ---
	NotFoundCode     = 40400 // 通用资源未找到
	FileNotFoundCode = 40402 // 文件不存在
	LinkNotFoundCode = 40403 // 分享链接不存在

	// --- 服务器内部错误系列 (500xx) ---
	InternalServerErrorCode = 50000 // 服务器内部通用错误
	DatabaseErrorCode       = 50001 // 数据库操作失败
	StorageErrorCode        = 50002 // 存储服务操作失败（如MinIO）
	EmailDeliveryCode       = 50003 // 邮件发送失败
)
