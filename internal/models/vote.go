package models

import (
	"time"

	"github.com/google/uuid"
)

// Vote 点赞记录，联合主键保证同一用户对同一项目只能点赞一次
type Vote struct {
	VoterID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"voter_id"`
	Voter     User      `gorm:"foreignKey:VoterID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	ProjectID uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"project_id"`
	Project   Project   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	VotedAt   time.Time `gorm:"autoCreateTime" json:"voted_at"`
}
