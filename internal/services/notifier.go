package services

import (
	"errors"

	"showcase/internal/metrics"
	"showcase/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Event 新插入的点赞或评论
type Event struct {
	ActorID   uuid.UUID
	ProjectID uuid.UUID
	Kind      models.NotificationKind
}

// NotificationEngine 根据点赞/评论生成作者通知。
// 只通过传入的事务写库，通知与触发它的写入一起提交或回滚。
type NotificationEngine struct {
	log *zap.Logger
}

// NewNotificationEngine 创建通知引擎
func NewNotificationEngine(log *zap.Logger) *NotificationEngine {
	return &NotificationEngine{log: log}
}

// Apply 在 tx 内执行通知规则，返回新建的通知；被抑制时返回 nil
func (e *NotificationEngine) Apply(tx *gorm.DB, ev Event) (*models.Notification, error) {
	var project models.Project
	err := tx.Select("id", "owner_id").Where("id = ?", ev.ProjectID).Take(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		e.log.Warn("Notification target unresolved",
			zap.String("project_id", ev.ProjectID.String()),
			zap.String("kind", string(ev.Kind)))
		metrics.Notifications.WithLabelValues(string(ev.Kind), metrics.NotificationUnresolved).Inc()
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if project.OwnerID == ev.ActorID {
		metrics.Notifications.WithLabelValues(string(ev.Kind), metrics.NotificationSelfSuppressed).Inc()
		return nil, nil
	}

	n := &models.Notification{
		RecipientID: project.OwnerID,
		ActorID:     ev.ActorID,
		ProjectID:   ev.ProjectID,
		Kind:        ev.Kind,
	}

	if ev.Kind != models.NotificationKindLike {
		if err := tx.Create(n).Error; err != nil {
			return nil, err
		}
		metrics.Notifications.WithLabelValues(string(ev.Kind), metrics.NotificationCreated).Inc()
		return n, nil
	}

	key := models.LikeDedupeKey(n.RecipientID, n.ActorID, n.ProjectID)
	n.DedupeKey = &key
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "dedupe_key"}},
		DoNothing: true,
	}).Create(n)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		metrics.Notifications.WithLabelValues(string(ev.Kind), metrics.NotificationDeduplicated).Inc()
		return nil, nil
	}
	metrics.Notifications.WithLabelValues(string(ev.Kind), metrics.NotificationCreated).Inc()
	return n, nil
}
