package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationKind string

const (
	NotificationKindLike    NotificationKind = "like"
	NotificationKindComment NotificationKind = "comment"
)

// Notification 由点赞或评论派生，客户端不能直接创建。
// RecipientID 总是项目作者，且不等于 ActorID。
type Notification struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	RecipientID uuid.UUID        `gorm:"type:uuid;not null;index:idx_notifications_recipient_read,priority:1" json:"recipient_id"`
	Recipient   User             `gorm:"foreignKey:RecipientID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	ActorID     uuid.UUID        `gorm:"type:uuid;not null;index" json:"actor_id"`
	Actor       User             `gorm:"foreignKey:ActorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	ProjectID   uuid.UUID        `gorm:"type:uuid;not null;index" json:"project_id"`
	Project     Project          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Kind        NotificationKind `gorm:"column:kind;type:varchar(16);not null" json:"kind"`
	IsRead      bool             `gorm:"not null;default:false;index:idx_notifications_recipient_read,priority:2" json:"is_read"`
	// DedupeKey 仅点赞通知设置，评论为 NULL，不参与去重
	DedupeKey *string   `gorm:"size:200;uniqueIndex" json:"-"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// LikeDedupeKey 每个 (recipient, actor, project) 只允许一条点赞通知
func LikeDedupeKey(recipientID, actorID, projectID uuid.UUID) string {
	return "like:" + recipientID.String() + ":" + actorID.String() + ":" + projectID.String()
}

// NotificationView 通知列表视图，附带触发者邮箱和项目标题
type NotificationView struct {
	ID           uuid.UUID        `json:"id"`
	ActorID      uuid.UUID        `json:"actor_id"`
	ActorEmail   string           `json:"actor_email"`
	ProjectID    uuid.UUID        `json:"project_id"`
	ProjectTitle string           `json:"project_title"`
	Kind         NotificationKind `json:"kind"`
	IsRead       bool             `json:"is_read"`
	CreatedAt    time.Time        `json:"created_at"`
}
