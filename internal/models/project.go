package models

import (
	"html/template"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Project struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID        uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	Owner          User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	AuthorName     string    `gorm:"size:200;not null" json:"author_display_name"`
	Title          string    `gorm:"size:300;not null" json:"title"`
	Abstract       string    `gorm:"type:text;not null" json:"abstract"`
	CoverImageRef  string    `gorm:"not null" json:"cover_image_ref"`
	VideoRef       *string   `json:"video_ref"`
	ReportRef      *string   `json:"report_ref"`
	ReportIsPublic bool      `gorm:"not null;default:false" json:"report_is_public"`
	Year           int       `gorm:"not null;index" json:"year"`
	IsPublic       bool      `gorm:"not null;default:false;index" json:"is_public"` // 只由审核写入
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// 非数据库字段，用于查询时填充
	LikeCount    int64         `gorm:"-" json:"like_count"`
	AbstractHTML template.HTML `gorm:"-" json:"abstract_html,omitempty"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// VisibleTo 未公开时 u 是否可以查看
func (p *Project) VisibleTo(u *User) bool {
	if p.IsPublic {
		return true
	}
	if u == nil {
		return false
	}
	return u.IsAdmin() || u.ID == p.OwnerID
}
