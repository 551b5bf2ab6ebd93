package services

import (
	"context"
	"errors"
	"time"

	"showcase/internal/apperr"
	"showcase/internal/metrics"
	"showcase/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationService 通知的读取与状态维护
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// ListUnread 获取未读通知，按时间倒序
func (s *NotificationService) ListUnread(ctx context.Context, userID uuid.UUID) ([]models.NotificationView, error) {
	return s.List(ctx, userID, false)
}

// List 获取用户的全部通知（不分页），附带触发者邮箱和项目标题，按时间倒序
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, includeRead bool) ([]models.NotificationView, error) {
	q := s.db.WithContext(ctx).
		Table("notifications AS n").
		Select(`n.id, n.actor_id, u.email AS actor_email, n.project_id,
			p.title AS project_title, n.kind, n.is_read, n.created_at`).
		Joins("JOIN users u ON u.id = n.actor_id").
		Joins("JOIN projects p ON p.id = n.project_id").
		Where("n.recipient_id = ?", userID)
	if !includeRead {
		q = q.Where("n.is_read = ?", false)
	}

	views := []models.NotificationView{}
	err := q.Order("n.created_at DESC").Scan(&views).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return views, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, apperr.Internal(err)
	}
	return count, nil
}

// MarkRead 标记单条通知已读，仅接收者可操作
func (s *NotificationService) MarkRead(ctx context.Context, id, callerID uuid.UUID) error {
	var n models.Notification
	err := s.db.WithContext(ctx).Select("id", "recipient_id").Where("id = ?", id).Take(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("notification %s", id)
	}
	if err != nil {
		return apperr.Internal(err)
	}
	if n.RecipientID != callerID {
		return apperr.Forbidden("notification %s belongs to another user", id)
	}

	err = s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", id, callerID).
		Update("is_read", true).Error
	if err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// MarkAllRead 全部标记已读，返回更新条数
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, apperr.Internal(res.Error)
	}
	return res.RowsAffected, nil
}

// PruneRead 删除 cutoff 之前的已读通知
func (s *NotificationService) PruneRead(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("is_read = ? AND created_at < ?", true, cutoff).
		Delete(&models.Notification{})
	if res.Error != nil {
		return 0, apperr.Internal(res.Error)
	}
	metrics.PrunedNotifications.Add(float64(res.RowsAffected))
	return res.RowsAffected, nil
}
