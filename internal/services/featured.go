package services

import (
	"context"
	"sync"
	"time"

	"showcase/internal/apperr"
	"showcase/internal/models"
	"showcase/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const featuredKey = "projects:featured"

// FeaturedService 精选项目（点赞最多的公开项目），带短时缓存。
// 点赞、审核、删除会使缓存失效，由后台 worker 重建。
type FeaturedService struct {
	db      *gorm.DB
	cache   *utils.Cache[[]models.Project]
	limit   int
	ttl     time.Duration
	log     *zap.Logger
	refresh chan struct{}

	// gen 为失效计数，加载开始后若发生过失效则结果不写入缓存
	mu  sync.Mutex
	gen uint64
}

// NewFeaturedService 创建精选服务，limit 为返回条数，ttl 为缓存时间
func NewFeaturedService(db *gorm.DB, limit int, ttl time.Duration, log *zap.Logger) (*FeaturedService, error) {
	cache, err := utils.NewCache[[]models.Project](8)
	if err != nil {
		return nil, err
	}
	return &FeaturedService{
		db:      db,
		cache:   cache,
		limit:   limit,
		ttl:     ttl,
		log:     log,
		refresh: make(chan struct{}, 1),
	}, nil
}

// Top 返回精选列表副本，未命中缓存时查库
func (s *FeaturedService) Top(ctx context.Context) ([]models.Project, error) {
	if cached, ok := s.cache.Get(featuredKey); ok {
		return cloneProjects(cached), nil
	}
	gen := s.generation()
	projects, err := s.load(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	s.store(gen, projects)
	return cloneProjects(projects), nil
}

// Invalidate 清除缓存并通知 worker 重建，请求会合并，不阻塞
func (s *FeaturedService) Invalidate() {
	s.mu.Lock()
	s.gen++
	s.cache.Delete(featuredKey)
	s.mu.Unlock()
	select {
	case s.refresh <- struct{}{}:
	default:
	}
}

// Warm 立即重建缓存
func (s *FeaturedService) Warm(ctx context.Context) error {
	gen := s.generation()
	projects, err := s.load(ctx)
	if err != nil {
		return err
	}
	s.store(gen, projects)
	return nil
}

func (s *FeaturedService) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// store 仅当读取 gen 之后没有失效时才写入缓存
func (s *FeaturedService) store(gen uint64, projects []models.Project) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return false
	}
	s.cache.Set(featuredKey, projects, s.ttl)
	return true
}

// Run 处理重建请求，直到 ctx 结束
func (s *FeaturedService) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.refresh:
			if err := s.Warm(ctx); err != nil && ctx.Err() == nil {
				s.log.Warn("Featured refresh failed", zap.Error(err))
			}
		}
	}
}

func (s *FeaturedService) load(ctx context.Context) ([]models.Project, error) {
	type ranked struct {
		ProjectID uuid.UUID
		Likes     int64
	}
	var rows []ranked
	err := s.db.WithContext(ctx).Model(&models.Project{}).
		Select("projects.id AS project_id, COUNT(votes.voter_id) AS likes").
		Joins("LEFT JOIN votes ON votes.project_id = projects.id").
		Where("projects.is_public = ?", true).
		Group("projects.id, projects.created_at").
		Order("likes DESC").
		Order("projects.created_at DESC").
		Limit(s.limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []models.Project{}, nil
	}

	ids := make([]uuid.UUID, len(rows))
	for i, r := range rows {
		ids[i] = r.ProjectID
	}
	var found []models.Project
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Project, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	projects := make([]models.Project, 0, len(rows))
	for _, r := range rows {
		p, ok := byID[r.ProjectID]
		if !ok {
			continue
		}
		p.LikeCount = r.Likes
		projects = append(projects, p)
	}
	return projects, nil
}

func cloneProjects(in []models.Project) []models.Project {
	out := make([]models.Project, len(in))
	copy(out, in)
	return out
}
