package services

import (
	"context"
	"errors"
	"strings"

	"showcase/internal/apperr"
	"showcase/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserService 同步外部身份服务的用户
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Mirror 首次出现时创建用户，之后刷新邮箱和角色
func (s *UserService) Mirror(ctx context.Context, id uuid.UUID, email string, role models.Role) (*models.User, error) {
	if id == uuid.Nil {
		return nil, apperr.Unauthorized("identity has no subject")
	}
	u := &models.User{ID: id, Email: strings.TrimSpace(email), Role: role}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "role", "updated_at"}),
	}).Create(u).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return s.Get(ctx, id)
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("user %s", id)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &u, nil
}
