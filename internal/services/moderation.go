package services

import (
	"context"
	"strconv"

	"showcase/internal/apperr"
	"showcase/internal/metrics"
	"showcase/internal/models"
	"showcase/internal/telemetry"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ModerationService 审核服务，是 Project.IsPublic 的唯一写入方
type ModerationService struct {
	db       *gorm.DB
	projects *ProjectService
	featured *FeaturedService
	log      *zap.Logger
}

func NewModerationService(db *gorm.DB, projects *ProjectService, featured *FeaturedService, log *zap.Logger) *ModerationService {
	return &ModerationService{db: db, projects: projects, featured: featured, log: log}
}

// SetVisibility 发布或下架项目。
// 先查项目再查角色：项目不存在时对任何调用者都返回 NotFound。
func (s *ModerationService) SetVisibility(ctx context.Context, caller *models.User, id uuid.UUID, isPublic bool) (*models.Project, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "moderation.set_visibility")
	defer span.End()
	span.SetAttributes(
		attribute.String("project.id", id.String()),
		attribute.Bool("project.is_public", isPublic),
	)

	if _, err := findProject(s.db.WithContext(ctx), id); err != nil {
		return nil, err
	}
	if !caller.IsAdmin() {
		return nil, apperr.Forbidden("admin role required")
	}

	res := s.db.WithContext(ctx).Model(&models.Project{}).
		Where("id = ?", id).
		Update("is_public", isPublic)
	if res.Error != nil {
		return nil, apperr.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound("project %s", id)
	}

	metrics.VisibilityChanges.WithLabelValues(strconv.FormatBool(isPublic)).Inc()
	s.featured.Invalidate()
	s.log.Info("Project visibility changed",
		zap.String("project_id", id.String()),
		zap.Bool("is_public", isPublic),
		zap.String("admin_id", caller.ID.String()))

	return s.projects.Get(ctx, id)
}
