package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"showcase/internal/apperr"
	"showcase/internal/middleware"
	"showcase/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// respondError 按错误类型返回状态码，内部错误只记日志，不暴露原因
func respondError(c *gin.Context, log *zap.Logger, err error) {
	e := apperr.From(err)
	status := apperr.HTTPStatus(e)
	if status == http.StatusInternalServerError {
		reqID, _ := c.Get(middleware.RequestIDKey)
		log.Error("Request failed",
			zap.Any("request_id", reqID),
			zap.String("route", c.FullPath()),
			zap.Error(err))
		c.AbortWithStatusJSON(status, gin.H{"error": "internal error"})
		return
	}

	body := gin.H{"error": e.Message}
	if len(e.Fields) > 0 {
		body["fields"] = e.Fields
	}
	c.AbortWithStatusJSON(status, body)
}

func paramUUID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		// id 格式不合法，按不存在处理
		return uuid.Nil, apperr.NotFound("%s %q", name, c.Param(name))
	}
	return id, nil
}

func paramUint(c *gin.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, apperr.NotFound("%s %q", name, c.Param(name))
	}
	return id, nil
}

// bindJSON 解析请求体，失败时返回 body 字段的校验错误
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation(map[string]string{"body": "is required"})
		}
		return apperr.Validation(map[string]string{"body": "is not valid JSON for this request"})
	}
	return nil
}

func currentUser(c *gin.Context) *models.User {
	return middleware.CurrentUser(c)
}
