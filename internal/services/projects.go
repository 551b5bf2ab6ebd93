package services

import (
	"context"
	"errors"
	"strings"

	"showcase/internal/apperr"
	"showcase/internal/models"
	"showcase/internal/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SubmitInput 提交项目的字段
type SubmitInput struct {
	Title          string  `json:"title"`
	Abstract       string  `json:"abstract"`
	AuthorName     string  `json:"author_display_name"`
	CoverImageRef  string  `json:"cover_image_ref"`
	VideoRef       *string `json:"video_ref"`
	ReportRef      *string `json:"report_ref"`
	ReportIsPublic bool    `json:"report_is_public"`
	Year           int     `json:"year"`
}

// UpdateInput 部分更新，nil 字段保持不变
type UpdateInput struct {
	Title          *string `json:"title"`
	Abstract       *string `json:"abstract"`
	CoverImageRef  *string `json:"cover_image_ref"`
	VideoRef       *string `json:"video_ref"`
	ReportRef      *string `json:"report_ref"`
	ReportIsPublic *bool   `json:"report_is_public"`
}

// ListFilter 条件取交集，零值不过滤
type ListFilter struct {
	Year       *int
	Search     string
	PublicOnly bool
}

type Stats struct {
	TotalProjects  int64 `json:"total_projects"`
	TotalUsers     int64 `json:"total_users"`
	TotalLikes     int64 `json:"total_likes"`
	PendingReviews int64 `json:"pending_reviews"`
}

const (
	maxTitleLen    = 300
	maxAuthorLen   = 200
	maxAbstractLen = 20000
)

// ProjectService 项目存储，is_public 除外（只由 ModerationService 写入）
type ProjectService struct {
	db       *gorm.DB
	renderer *utils.Renderer
	featured *FeaturedService
}

// NewProjectService 创建项目服务
func NewProjectService(db *gorm.DB, renderer *utils.Renderer, featured *FeaturedService) *ProjectService {
	return &ProjectService{db: db, renderer: renderer, featured: featured}
}

func (in *SubmitInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Abstract = strings.TrimSpace(in.Abstract)
	in.AuthorName = strings.TrimSpace(in.AuthorName)
	in.CoverImageRef = strings.TrimSpace(in.CoverImageRef)
	in.VideoRef = trimOptional(in.VideoRef)
	in.ReportRef = trimOptional(in.ReportRef)
}

func (in *SubmitInput) validate() error {
	fields := map[string]string{}
	requireText(fields, "title", in.Title, maxTitleLen)
	requireText(fields, "abstract", in.Abstract, maxAbstractLen)
	requireText(fields, "author_display_name", in.AuthorName, maxAuthorLen)
	requireText(fields, "cover_image_ref", in.CoverImageRef, 0)
	if in.Year <= 0 {
		fields["year"] = "must be a positive year"
	}
	if len(fields) > 0 {
		return apperr.Validation(fields)
	}
	return nil
}

func (in *UpdateInput) validate() error {
	fields := map[string]string{}
	if in.Title != nil {
		requireText(fields, "title", strings.TrimSpace(*in.Title), maxTitleLen)
	}
	if in.Abstract != nil {
		requireText(fields, "abstract", strings.TrimSpace(*in.Abstract), maxAbstractLen)
	}
	if in.CoverImageRef != nil {
		requireText(fields, "cover_image_ref", strings.TrimSpace(*in.CoverImageRef), 0)
	}
	if len(fields) > 0 {
		return apperr.Validation(fields)
	}
	return nil
}

func requireText(fields map[string]string, name, value string, max int) {
	switch {
	case value == "":
		fields[name] = "is required"
	case max > 0 && len([]rune(value)) > max:
		fields[name] = "is too long"
	}
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// Submit 创建项目，初始为未公开
func (s *ProjectService) Submit(ctx context.Context, ownerID uuid.UUID, in SubmitInput) (*models.Project, error) {
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}

	p := &models.Project{
		OwnerID:        ownerID,
		AuthorName:     in.AuthorName,
		Title:          in.Title,
		Abstract:       in.Abstract,
		CoverImageRef:  in.CoverImageRef,
		VideoRef:       in.VideoRef,
		ReportRef:      in.ReportRef,
		ReportIsPublic: in.ReportIsPublic,
		Year:           in.Year,
		IsPublic:       false,
	}
	err := s.db.WithContext(ctx).Create(p).Error
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return nil, apperr.NotFound("owner %s", ownerID)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	s.decorate(p)
	return p, nil
}

func (s *ProjectService) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	p, err := findProject(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	if err := fillLikeCounts(s.db.WithContext(ctx), []*models.Project{p}); err != nil {
		return nil, apperr.Internal(err)
	}
	s.decorate(p)
	return p, nil
}

// GetVisible 返回 caller 可见的项目。未公开项目对作者和管理员以外的人按不存在处理。
func (s *ProjectService) GetVisible(ctx context.Context, caller *models.User, id uuid.UUID) (*models.Project, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.VisibleTo(caller) {
		return nil, apperr.NotFound("project %s", id)
	}
	return p, nil
}

// List 按条件查询项目，按创建时间倒序
func (s *ProjectService) List(ctx context.Context, f ListFilter) ([]models.Project, error) {
	q := s.db.WithContext(ctx).Model(&models.Project{})
	if f.PublicOnly {
		q = q.Where("is_public = ?", true)
	}
	if f.Year != nil {
		q = q.Where("year = ?", *f.Year)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		pattern := "%" + escapeLike(strings.ToLower(search)) + "%"
		q = q.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(author_name) LIKE ? ESCAPE '\')`, pattern, pattern)
	}

	projects := []models.Project{}
	if err := q.Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return s.finish(ctx, projects)
}

// ListMine 我的项目，按创建时间倒序
func (s *ProjectService) ListMine(ctx context.Context, ownerID uuid.UUID) ([]models.Project, error) {
	projects := []models.Project{}
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return s.finish(ctx, projects)
}

// ListAll 审核队列：待审核在前，其余按时间倒序
func (s *ProjectService) ListAll(ctx context.Context) ([]models.Project, error) {
	projects := []models.Project{}
	err := s.db.WithContext(ctx).
		Order("is_public ASC").
		Order("created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return s.finish(ctx, projects)
}

// Update 部分更新项目内容，仅作者可操作
func (s *ProjectService) Update(ctx context.Context, caller *models.User, id uuid.UUID, in UpdateInput) (*models.Project, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	p, err := findProject(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != caller.ID {
		return nil, apperr.Forbidden("only the owner can edit project %s", id)
	}

	updates := map[string]any{}
	if in.Title != nil {
		updates["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Abstract != nil {
		updates["abstract"] = strings.TrimSpace(*in.Abstract)
	}
	if in.CoverImageRef != nil {
		updates["cover_image_ref"] = strings.TrimSpace(*in.CoverImageRef)
	}
	if in.VideoRef != nil {
		updates["video_ref"] = trimOptional(in.VideoRef)
	}
	if in.ReportRef != nil {
		updates["report_ref"] = trimOptional(in.ReportRef)
	}
	if in.ReportIsPublic != nil {
		updates["report_is_public"] = *in.ReportIsPublic
	}
	if len(updates) > 0 {
		res := s.db.WithContext(ctx).Model(&models.Project{}).
			Where("id = ? AND owner_id = ?", id, caller.ID).
			Updates(updates)
		if res.Error != nil {
			return nil, apperr.Internal(res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, apperr.NotFound("project %s", id)
		}
	}
	return s.Get(ctx, id)
}

// Delete 作者删除自己的项目
func (s *ProjectService) Delete(ctx context.Context, caller *models.User, id uuid.UUID) error {
	p, err := findProject(s.db.WithContext(ctx), id)
	if err != nil {
		return err
	}
	if p.OwnerID != caller.ID {
		return apperr.Forbidden("only the owner can delete project %s", id)
	}
	return s.remove(ctx, id)
}

// AdminDelete 管理员删除任意项目
func (s *ProjectService) AdminDelete(ctx context.Context, caller *models.User, id uuid.UUID) error {
	if _, err := findProject(s.db.WithContext(ctx), id); err != nil {
		return err
	}
	if !caller.IsAdmin() {
		return apperr.Forbidden("admin role required")
	}
	return s.remove(ctx, id)
}

func (s *ProjectService) remove(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Project{})
	if res.Error != nil {
		return apperr.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("project %s", id)
	}
	s.featured.Invalidate()
	return nil
}

// Featured 点赞最多的公开项目
func (s *ProjectService) Featured(ctx context.Context) ([]models.Project, error) {
	projects, err := s.featured.Top(ctx)
	if err != nil {
		return nil, err
	}
	for i := range projects {
		s.decorate(&projects[i])
	}
	return projects, nil
}

func (s *ProjectService) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	db := s.db.WithContext(ctx)
	counts := []struct {
		q   *gorm.DB
		dst *int64
	}{
		{db.Model(&models.Project{}), &st.TotalProjects},
		{db.Model(&models.User{}), &st.TotalUsers},
		{db.Model(&models.Vote{}), &st.TotalLikes},
		{db.Model(&models.Project{}).Where("is_public = ?", false), &st.PendingReviews},
	}
	for _, c := range counts {
		if err := c.q.Count(c.dst).Error; err != nil {
			return nil, apperr.Internal(err)
		}
	}
	return &st, nil
}

func (s *ProjectService) finish(ctx context.Context, projects []models.Project) ([]models.Project, error) {
	ptrs := make([]*models.Project, len(projects))
	for i := range projects {
		ptrs[i] = &projects[i]
	}
	if err := fillLikeCounts(s.db.WithContext(ctx), ptrs); err != nil {
		return nil, apperr.Internal(err)
	}
	for _, p := range ptrs {
		s.decorate(p)
	}
	return projects, nil
}

func (s *ProjectService) decorate(p *models.Project) {
	if s.renderer != nil {
		p.AbstractHTML = s.renderer.Render(p.Abstract)
	}
}

func findProject(db *gorm.DB, id uuid.UUID) (*models.Project, error) {
	var p models.Project
	err := db.Where("id = ?", id).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("project %s", id)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &p, nil
}

// fillLikeCounts 用一次分组查询填充 LikeCount
func fillLikeCounts(db *gorm.DB, projects []*models.Project) error {
	if len(projects) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}

	type countResult struct {
		ProjectID uuid.UUID
		Count     int64
	}
	var results []countResult
	err := db.Model(&models.Vote{}).
		Select("project_id, COUNT(*) AS count").
		Where("project_id IN ?", ids).
		Group("project_id").
		Scan(&results).Error
	if err != nil {
		return err
	}

	countMap := make(map[uuid.UUID]int64, len(results))
	for _, r := range results {
		countMap[r.ProjectID] = r.Count
	}
	for _, p := range projects {
		p.LikeCount = countMap[p.ID]
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
