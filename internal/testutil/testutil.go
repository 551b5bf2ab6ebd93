// Package testutil 测试用数据库工具
package testutil

import (
	"path/filepath"
	"testing"

	"showcase/internal/db"
	"showcase/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NewDB 在临时目录创建已迁移的 SQLite 数据库。
// 开启外键约束，单连接串行写入，近似 Postgres 的行锁行为。
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "showcase.db")
	conn, err := db.OpenDialector(sqlite.Open(path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

// CreateUser 创建用户
func CreateUser(t *testing.T, conn *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{ID: uuid.New(), Email: email, Role: role}
	if err := conn.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

// CreateProject 创建项目并按需公开
func CreateProject(t *testing.T, conn *gorm.DB, owner *models.User, title string, public bool) *models.Project {
	t.Helper()
	p := &models.Project{
		OwnerID:       owner.ID,
		AuthorName:    owner.Email,
		Title:         title,
		Abstract:      "abstract of " + title,
		CoverImageRef: "uploads/cover.png",
		Year:          2024,
	}
	if err := conn.Create(p).Error; err != nil {
		t.Fatalf("create project %s: %v", title, err)
	}
	if public {
		if err := conn.Model(p).Update("is_public", true).Error; err != nil {
			t.Fatalf("publish project %s: %v", title, err)
		}
		p.IsPublic = true
	}
	return p
}
