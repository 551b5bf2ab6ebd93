package services

import (
	"context"
	"errors"

	"showcase/internal/apperr"
	"showcase/internal/metrics"
	"showcase/internal/models"
	"showcase/internal/telemetry"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type VoteResult struct {
	Vote         models.Vote          `json:"vote"`
	Notification *models.Notification `json:"notification,omitempty"`
	LikeCount    int64                `json:"like_count"`
}

// VoteService 点赞账本。(voter, project) 唯一性由 votes 表主键保证，不做先查后插
type VoteService struct {
	db       *gorm.DB
	engine   *NotificationEngine
	featured *FeaturedService
	log      *zap.Logger
}

// NewVoteService 创建点赞服务
func NewVoteService(db *gorm.DB, engine *NotificationEngine, featured *FeaturedService, log *zap.Logger) *VoteService {
	return &VoteService{db: db, engine: engine, featured: featured, log: log}
}

// CastVote 记录一次点赞，并在同一事务内通知项目作者。
// 重复点赞返回 Conflict，不改变任何数据。
func (s *VoteService) CastVote(ctx context.Context, voterID, projectID uuid.UUID) (*VoteResult, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "votes.cast")
	defer span.End()
	span.SetAttributes(
		attribute.String("voter.id", voterID.String()),
		attribute.String("project.id", projectID.String()),
	)

	res := &VoteResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findProject(tx, projectID); err != nil {
			return err
		}

		res.Vote = models.Vote{VoterID: voterID, ProjectID: projectID}
		if err := tx.Create(&res.Vote).Error; err != nil {
			switch {
			case errors.Is(err, gorm.ErrDuplicatedKey):
				return apperr.Conflict("already voted on project %s", projectID)
			case errors.Is(err, gorm.ErrForeignKeyViolated):
				return apperr.NotFound("project %s", projectID)
			}
			return apperr.Internal(err)
		}

		n, err := s.engine.Apply(tx, Event{
			ActorID:   voterID,
			ProjectID: projectID,
			Kind:      models.NotificationKindLike,
		})
		if err != nil {
			return apperr.Internal(err)
		}
		res.Notification = n
		return nil
	})
	if err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			metrics.Votes.WithLabelValues(metrics.VoteConflict).Inc()
		} else {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return nil, apperr.From(err)
	}
	metrics.Votes.WithLabelValues(metrics.VoteCreated).Inc()
	s.featured.Invalidate()

	if err := s.db.WithContext(ctx).Model(&models.Vote{}).
		Where("project_id = ?", projectID).
		Count(&res.LikeCount).Error; err != nil {
		// 点赞已提交，计数失败只记日志
		s.log.Warn("Like count after vote failed", zap.String("project_id", projectID.String()), zap.Error(err))
	}
	return res, nil
}
