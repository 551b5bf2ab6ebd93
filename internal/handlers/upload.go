package handlers

import (
	"net/http"

	"showcase/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UploadHandler struct {
	uploads *services.UploadService
	log     *zap.Logger
}

func NewUploadHandler(uploads *services.UploadService, log *zap.Logger) *UploadHandler {
	return &UploadHandler{uploads: uploads, log: log}
}

type presignRequest struct {
	Filename string `json:"filename"`
	FileType string `json:"file_type"`
}

// Presign POST /upload/presigned 获取预签名上传地址
func (h *UploadHandler) Presign(c *gin.Context) {
	var req presignRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.log, err)
		return
	}
	ticket, err := h.uploads.Presign(c.Request.Context(), req.Filename, req.FileType)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}
