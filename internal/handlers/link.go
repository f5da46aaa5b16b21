package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/3Eeeecho/go-secureprint/internal/pkg/logger"
	"github.com/3Eeeecho/go-secureprint/internal/pkg/utils"
	"github.com/3Eeeecho/go-secureprint/internal/pkg/xerr"
	"github.com/3Eeeecho/go-secureprint/internal/services/share"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LinkHandler struct {
	linkService share.LinkService
}

func NewLinkHandler(linkService share.LinkService) *LinkHandler {
	return &LinkHandler{linkService: linkService}
}

// FlexString 兼容 JSON 字符串和数字两种写法, 旧前端会把 fileId 和 otp 作为数字提交
type FlexString string

func (r *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.New("value must be a string or a number")
	}
	*r = FlexString(n.String())
	return nil
}

type GenerateLinkRequest struct {
	FileID FlexString `json:"fileId" swaggertype:"string"`
}

type GenerateLinkResponse struct {
	LinkID    string    `json:"linkId"`
	ExpiresAt time.Time `json:"expiresAt"`
	URL       string    `json:"url"`
	OTP       string    `json:"otp"`
}

type SendLinkRequest struct {
	LinkID string `json:"linkId"`
	Email  string `json:"email"`
}

type ValidateRequest struct {
	OTP FlexString `json:"otp" swaggertype:"string"`
}

type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Generate
// @Summary 生成打印链接
// @Description 为自己上传的文件生成带验证码的限时链接, 验证码同时发送到本人邮箱
// @Tags 打印链接
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param data body GenerateLinkRequest true "文件标识, blob id 或元数据 id"
// @Success 200 {object} GenerateLinkResponse "生成成功"
// @Failure 400 {object} xerr.ErrorResponse "缺少 fileId"
// @Failure 403 {object} xerr.ErrorResponse "不是文件所有者"
// @Failure 404 {object} xerr.ErrorResponse "文件不存在"
// @Router /api/link/generate [post]
func (h *LinkHandler) Generate(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req GenerateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(string(req.FileID)) == "" {
		xerr.Error(c, http.StatusBadRequest, xerr.InvalidParamsCode, "fileId required")
		return
	}

	requester := share.Requester{UserID: userID, Email: utils.GetEmailFromContext(c)}
	issued, err := h.linkService.IssueLink(c.Request.Context(), requester, string(req.FileID))
	if err != nil {
		respondError(c, err, "Failed to generate link")
		return
	}

	c.JSON(http.StatusOK, GenerateLinkResponse{
		LinkID:    issued.LinkID,
		ExpiresAt: issued.ExpiresAt,
		URL:       issued.URL,
		OTP:       issued.OTP,
	})
}

// Send
// @Summary 转发打印链接
// @Description 把链接地址和过期时间发送到指定邮箱, 不包含验证码
// @Tags 打印链接
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param data body SendLinkRequest true "链接 id 与收件人"
// @Success 200 {object} SuccessResponse "发送成功"
// @Failure 400 {object} xerr.ErrorResponse "参数缺失"
// @Failure 404 {object} xerr.ErrorResponse "链接不存在"
// @Failure 500 {object} xerr.ErrorResponse "邮件发送失败"
// @Router /api/link/send [post]
func (h *LinkHandler) Send(c *gin.Context) {
	var req SendLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.LinkID == "" || strings.TrimSpace(req.Email) == "" {
		xerr.Error(c, http.StatusBadRequest, xerr.InvalidParamsCode, "linkId and email required")
		return
	}

	email := strings.TrimSpace(req.Email)
	if err := h.linkService.RelayLink(c.Request.Context(), req.LinkID, email); err != nil {
		respondError(c, err, xerr.ErrEmailDelivery.Error())
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "Link sent to " + email})
}

// Validate
// @Summary 校验验证码
// @Description 打印端提交验证码, 成功后链接在有效期内可下载
// @Tags 打印链接
// @Accept json
// @Produce json
// @Param id path string true "链接 id"
// @Param data body ValidateRequest true "验证码"
// @Success 200 {object} SuccessResponse "校验成功"
// @Failure 400 {object} xerr.ErrorResponse "缺少验证码"
// @Failure 403 {object} xerr.ErrorResponse "验证码错误或链接已过期"
// @Failure 404 {object} xerr.ErrorResponse "链接不存在"
// @Router /api/link/{id}/validate [post]
func (h *LinkHandler) Validate(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(string(req.OTP)) == "" {
		xerr.Error(c, http.StatusBadRequest, xerr.InvalidParamsCode, "otp required")
		return
	}

	if err := h.linkService.ValidateCode(c.Request.Context(), c.Param("id"), string(req.OTP)); err != nil {
		respondError(c, err, "Failed to validate otp")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "OTP validated"})
}

// Blob
// @Summary 下载文件内容
// @Description 验证码校验通过且链接未过期时返回文件内容, 响应不可缓存
// @Tags 打印链接
// @Produce application/pdf
// @Param id path string true "链接 id"
// @Success 200 {file} binary "文件内容"
// @Failure 403 {object} xerr.ErrorResponse "未校验或已过期"
// @Failure 404 {object} xerr.ErrorResponse "链接不存在"
// @Failure 500 {object} xerr.ErrorResponse "读取文件失败"
// @Router /api/link/{id}/blob [get]
func (h *LinkHandler) Blob(c *gin.Context) {
	linkID := c.Param("id")
	stream, err := h.linkService.FetchBlob(c.Request.Context(), linkID)
	if err != nil {
		respondError(c, err, "Error streaming file")
		return
	}
	defer stream.Reader.Close()

	c.Header("Content-Type", stream.ContentType)
	c.Header("Cache-Control", "no-store")
	// 声明长度后, 中途断流时客户端会读到 unexpected EOF, 而不是一个被截断的 200
	if stream.Size >= 0 {
		c.Header("Content-Length", strconv.FormatInt(stream.Size, 10))
	}
	if stream.FileName != "" {
		if disposition := mime.FormatMediaType("inline", map[string]string{"filename": stream.FileName}); disposition != "" {
			c.Header("Content-Disposition", disposition)
		}
	}
	c.Status(http.StatusOK)

	written, err := io.Copy(c.Writer, stream.Reader)
	if err == nil {
		return
	}

	if !c.Writer.Written() {
		// 还没有写出任何字节, 仍然可以返回 JSON 错误
		for _, h := range []string{"Content-Type", "Content-Length", "Content-Disposition"} {
			c.Writer.Header().Del(h)
		}
		respondError(c, errors.Join(xerr.ErrStorageError, err), "Error streaming file")
		return
	}
	// 已经写出部分内容, 实际长度小于 Content-Length, 连接会被关闭
	logger.Error("Stream error", zap.String("linkID", linkID), zap.Int64("written", written), zap.Error(err))
	c.Abort()
}
