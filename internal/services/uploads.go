package services

import (
	"context"
	"path"
	"regexp"
	"strings"

	"showcase/internal/apperr"

	"github.com/google/uuid"
)

// Presigner 签发有时效的上传地址，由 *storage.S3Storage 实现
type Presigner interface {
	PresignUpload(ctx context.Context, key, contentType string) (string, error)
}

type UploadTicket struct {
	UploadURL   string `json:"upload_url"`
	ResourceKey string `json:"resource_key"`
}

type UploadService struct {
	presigner Presigner
}

func NewUploadService(p Presigner) *UploadService {
	return &UploadService{presigner: p}
}

var extPattern = regexp.MustCompile(`^[a-z0-9]{1,10}$`)

// Presign 在 uploads/ 下生成新的资源 key，并返回客户端可直接 PUT 的地址
func (s *UploadService) Presign(ctx context.Context, filename, contentType string) (*UploadTicket, error) {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return nil, apperr.Validation(map[string]string{"file_type": "is required"})
	}

	key := "uploads/" + uuid.NewString() + "." + extension(filename)
	url, err := s.presigner.PresignUpload(ctx, key, contentType)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &UploadTicket{UploadURL: url, ResourceKey: key}, nil
}

func extension(filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(strings.TrimSpace(filename)), "."))
	if !extPattern.MatchString(ext) {
		return "bin"
	}
	return ext
}
