package models

import (
	"time"

	"github.com/yoockh/recruitportal/internal/pipeline"
)

type Interview struct {
	ID          string             `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	CandidateID string             `gorm:"column:candidate_id;type:uuid;not null;index" json:"candidate_id"`
	ScheduledAt time.Time          `gorm:"column:scheduled_at;type:timestamptz;index" json:"scheduled_at"`
	Decision    *pipeline.Decision `gorm:"column:decision;type:text" json:"decision"`
	Feedback    *string            `gorm:"column:feedback;type:text" json:"feedback,omitempty"`
	DecidedBy   *string            `gorm:"column:decided_by;type:uuid" json:"decided_by,omitempty"`
	DecidedAt   *time.Time         `gorm:"column:decided_at;type:timestamptz" json:"decided_at,omitempty"`

	Candidate *Candidate `gorm:"foreignKey:CandidateID;references:ID" json:"candidate,omitempty"`
}

func (Interview) TableName() string { return "interviews" }
