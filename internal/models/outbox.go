package models

import (
	"time"

	"gorm.io/datatypes"
)

type OutboxStatus string

const (
	OutboxPending OutboxStatus = "pending"
	OutboxSent    OutboxStatus = "sent"
	OutboxDead    OutboxStatus = "dead"
)

// EmailOutbox records the intent to send a candidate email. It is written in
// the same transaction as the status change that caused it.
type EmailOutbox struct {
	ID             string         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	CandidateID    string         `gorm:"column:candidate_id;type:uuid;index" json:"candidate_id"`
	Kind           string         `gorm:"column:kind;type:text;not null" json:"kind"`
	RecipientEmail string         `gorm:"column:recipient_email;type:text;not null" json:"recipient_email"`
	RecipientName  string         `gorm:"column:recipient_name;type:text" json:"recipient_name"`
	Context        datatypes.JSON `gorm:"column:context;type:jsonb" json:"context"`
	Status         OutboxStatus   `gorm:"column:status;type:text;not null;index" json:"status"`
	Attempts       int            `gorm:"column:attempts;not null;default:0" json:"attempts"`
	LastError      string         `gorm:"column:last_error;type:text" json:"last_error,omitempty"`
	NextAttemptAt  time.Time      `gorm:"column:next_attempt_at;type:timestamptz;index" json:"next_attempt_at"`
	CreatedAt      time.Time      `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	SentAt         *time.Time     `gorm:"column:sent_at;type:timestamptz" json:"sent_at,omitempty"`
}

func (EmailOutbox) TableName() string { return "email_outbox" }
