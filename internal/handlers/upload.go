package handlers

import (
	"errors"
	"net/http"

	"github.com/3Eeeecho/go-secureprint/internal/models"
	"github.com/3Eeeecho/go-secureprint/internal/pkg/logger"
	"github.com/3Eeeecho/go-secureprint/internal/pkg/utils"
	"github.com/3Eeeecho/go-secureprint/internal/pkg/xerr"
	"github.com/3Eeeecho/go-secureprint/internal/services/explorer"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UploadHandler struct {
	fileService explorer.FileService
}

func NewUploadHandler(fileService explorer.FileService) *UploadHandler {
	return &UploadHandler{fileService: fileService}
}

type UploadResponse struct {
	Message string             `json:"message"`
	Meta    *models.FileRecord `json:"meta"`
}

// Upload
// @Summary 上传文件
// @Description 以 multipart 字段 file 上传文档, 返回文件元数据
// @Tags 文件
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "要上传的文件"
// @Success 200 {object} UploadResponse "上传成功"
// @Failure 400 {object} xerr.ErrorResponse "没有上传文件"
// @Failure 401 {object} xerr.ErrorResponse "未认证"
// @Failure 500 {object} xerr.ErrorResponse "保存失败"
// @Router /api/upload [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		xerr.Error(c, http.StatusBadRequest, xerr.FileMissingCode, xerr.ErrFileMissing.Error())
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		logger.Error("Upload: 打开上传文件失败", zap.Error(err))
		xerr.Error(c, http.StatusInternalServerError, xerr.InternalServerErrorCode, "Server error during upload")
		return
	}
	defer src.Close()

	record, err := h.fileService.Upload(c.Request.Context(), explorer.UploadInput{
		OwnerID:     userID,
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Reader:      src,
	})
	if err != nil {
		if errors.Is(err, xerr.ErrStorageError) {
			respondError(c, err, "Upload failed")
			return
		}
		respondError(c, err, "Failed to save metadata")
		return
	}

	c.JSON(http.StatusOK, UploadResponse{Message: "uploaded", Meta: record})
}
