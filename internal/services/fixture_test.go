package services

import (
	"testing"
	"time"

	"showcase/internal/models"
	"showcase/internal/testutil"
	"showcase/internal/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db            *gorm.DB
	featured      *FeaturedService
	projects      *ProjectService
	votes         *VoteService
	comments      *CommentService
	notifications *NotificationService
	moderation    *ModerationService

	owner *models.User
	voter *models.User
	admin *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureOn(t, testutil.NewDB(t))
}

func newFixtureOn(t *testing.T, conn *gorm.DB) *fixture {
	t.Helper()

	log := zap.NewNop()
	renderer := utils.NewRenderer()

	featured, err := NewFeaturedService(conn, 3, time.Minute, log)
	if err != nil {
		t.Fatalf("NewFeaturedService: %v", err)
	}
	engine := NewNotificationEngine(log)
	projects := NewProjectService(conn, renderer, featured)

	return &fixture{
		db:            conn,
		featured:      featured,
		projects:      projects,
		votes:         NewVoteService(conn, engine, featured, log),
		comments:      NewCommentService(conn, engine, projects, renderer),
		notifications: NewNotificationService(conn),
		moderation:    NewModerationService(conn, projects, featured, log),
		owner:         testutil.CreateUser(t, conn, "owner@example.com", models.RoleStudent),
		voter:         testutil.CreateUser(t, conn, "voter@example.com", models.RoleStudent),
		admin:         testutil.CreateUser(t, conn, "admin@example.com", models.RoleAdmin),
	}
}

func (f *fixture) count(t *testing.T, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	q := f.db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}
