package db

import (
	"fmt"
	"time"

	"showcase/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// 本地模式下预置的固定用户，供 X-User-ID 调试使用
var (
	DevAdminID   = uuid.MustParse("00000000-0000-4000-8000-000000000001")
	DevStudentID = uuid.MustParse("00000000-0000-4000-8000-000000000002")
)

// Open 连接 Postgres。TranslateError 把唯一约束和外键冲突转换为
// gorm.ErrDuplicatedKey 和 gorm.ErrForeignKeyViolated。
func Open(dsn string) (*gorm.DB, error) {
	return OpenDialector(postgres.Open(dsn))
}

// OpenDialector 用统一配置打开任意 gorm dialector
func OpenDialector(dialector gorm.Dialector) (*gorm.DB, error) {
	conn, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return conn, nil
}

// Migrate 按依赖顺序自动迁移所有表
func Migrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Vote{},
		&models.Comment{},
		&models.Notification{},
	)
}

// SeedDevUsers 插入本地管理员和学生账号（已存在则跳过）
func SeedDevUsers(conn *gorm.DB, log *zap.Logger) error {
	users := []models.User{
		{ID: DevAdminID, Email: "admin@showcase.local", Role: models.RoleAdmin},
		{ID: DevStudentID, Email: "student@showcase.local", Role: models.RoleStudent},
	}
	res := conn.Clauses(clause.OnConflict{DoNothing: true}).Create(&users)
	if res.Error != nil {
		return fmt.Errorf("seed dev users: %w", res.Error)
	}
	log.Info("Dev users ready",
		zap.String("admin_id", DevAdminID.String()),
		zap.String("student_id", DevStudentID.String()),
		zap.Int64("inserted", res.RowsAffected))
	return nil
}
