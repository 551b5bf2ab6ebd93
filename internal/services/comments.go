package services

import (
	"context"
	"errors"
	"strings"

	"showcase/internal/apperr"
	"showcase/internal/models"
	"showcase/internal/telemetry"
	"showcase/internal/utils"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"
)

const maxCommentLen = 5000

type CommentResult struct {
	Comment      models.Comment       `json:"comment"`
	Notification *models.Notification `json:"notification,omitempty"`
}

// CommentService 评论服务。每条评论都会触发通知，评论通知不去重。
type CommentService struct {
	db       *gorm.DB
	engine   *NotificationEngine
	projects *ProjectService
	renderer *utils.Renderer
}

// NewCommentService 创建评论服务
func NewCommentService(db *gorm.DB, engine *NotificationEngine, projects *ProjectService, renderer *utils.Renderer) *CommentService {
	return &CommentService{db: db, engine: engine, projects: projects, renderer: renderer}
}

// AddComment 在同一事务内写入评论和作者通知
func (s *CommentService) AddComment(ctx context.Context, authorID, projectID uuid.UUID, body string) (*CommentResult, error) {
	body = strings.TrimSpace(body)
	switch {
	case body == "":
		return nil, apperr.Validation(map[string]string{"body": "is required"})
	case len([]rune(body)) > maxCommentLen:
		return nil, apperr.Validation(map[string]string{"body": "is too long"})
	}

	ctx, span := telemetry.Tracer().Start(ctx, "comments.add")
	defer span.End()
	span.SetAttributes(
		attribute.String("author.id", authorID.String()),
		attribute.String("project.id", projectID.String()),
	)

	res := &CommentResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findProject(tx, projectID); err != nil {
			return err
		}

		res.Comment = models.Comment{AuthorID: authorID, ProjectID: projectID, Body: body}
		if err := tx.Create(&res.Comment).Error; err != nil {
			if errors.Is(err, gorm.ErrForeignKeyViolated) {
				return apperr.NotFound("project %s", projectID)
			}
			return apperr.Internal(err)
		}

		n, err := s.engine.Apply(tx, Event{
			ActorID:   authorID,
			ProjectID: projectID,
			Kind:      models.NotificationKindComment,
		})
		if err != nil {
			return apperr.Internal(err)
		}
		res.Notification = n
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, apperr.From(err)
	}
	s.decorate(&res.Comment)
	return res, nil
}

// ListComments 获取 caller 可见项目的评论，按时间正序
func (s *CommentService) ListComments(ctx context.Context, caller *models.User, projectID uuid.UUID) ([]models.Comment, error) {
	if _, err := s.projects.GetVisible(ctx, caller, projectID); err != nil {
		return nil, err
	}

	comments := []models.Comment{}
	err := s.db.WithContext(ctx).
		Preload("Author").
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	for i := range comments {
		comments[i].AuthorEmail = comments[i].Author.Email
		s.decorate(&comments[i])
	}
	return comments, nil
}

// DeleteComment 删除评论：作者可删自己的，管理员可删任意评论。已发出的通知不撤回。
func (s *CommentService) DeleteComment(ctx context.Context, caller *models.User, id uint64) error {
	var c models.Comment
	err := s.db.WithContext(ctx).Select("id", "author_id").Where("id = ?", id).Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("comment %d", id)
	}
	if err != nil {
		return apperr.Internal(err)
	}
	if c.AuthorID != caller.ID && !caller.IsAdmin() {
		return apperr.Forbidden("only the author or an admin can delete comment %d", id)
	}

	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Comment{})
	if res.Error != nil {
		return apperr.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("comment %d", id)
	}
	return nil
}

func (s *CommentService) decorate(c *models.Comment) {
	if s.renderer != nil {
		c.BodyHTML = s.renderer.Render(c.Body)
	}
}
