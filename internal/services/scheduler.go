package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const jobTimeout = 2 * time.Minute

// Scheduler 定时维护任务
type Scheduler struct {
	cron          *cron.Cron
	notifications *NotificationService
	featured      *FeaturedService
	retention     time.Duration
	log           *zap.Logger
}

// NewScheduler 创建定时任务实例
func NewScheduler(notifications *NotificationService, featured *FeaturedService, retention time.Duration, log *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:          cron.New(),
		notifications: notifications,
		featured:      featured,
		retention:     retention,
		log:           log,
	}
}

// Register 按 cron 表达式注册清理任务和精选预热任务
func (s *Scheduler) Register(pruneSpec, featuredSpec string) error {
	if _, err := s.cron.AddFunc(pruneSpec, s.PruneNotifications); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(featuredSpec, s.WarmFeatured); err != nil {
		return err
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop 停止调度并等待正在执行的任务
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// PruneNotifications 清理超过保留期的已读通知
func (s *Scheduler) PruneNotifications() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.notifications.PruneRead(ctx, time.Now().UTC().Add(-s.retention))
	if err != nil {
		s.log.Error("Notification prune failed", zap.Error(err))
		return
	}
	s.log.Info("Notification prune completed", zap.Int64("deleted", n))
}

// WarmFeatured 重建精选缓存
func (s *Scheduler) WarmFeatured() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.featured.Warm(ctx); err != nil {
		s.log.Error("Featured warm-up failed", zap.Error(err))
	}
}
