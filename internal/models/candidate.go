package models

import (
	"time"

	"github.com/yoockh/recruitportal/internal/pipeline"
)

type Candidate struct {
	ID          string          `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name        string          `gorm:"column:name;type:text;not null" json:"name"`
	Email       string          `gorm:"column:email;type:text;not null;index" json:"email"`
	Phone       string          `gorm:"column:phone;type:text" json:"phone"`
	Position    string          `gorm:"column:position;type:text" json:"position"`
	ResumeURL   string          `gorm:"column:resume_url;type:text" json:"resume_url"`
	CoverLetter string          `gorm:"column:cover_letter;type:text" json:"cover_letter"`
	Status      pipeline.Status `gorm:"column:status;type:text;not null;index" json:"status"`
	CreatedAt   time.Time       `gorm:"column:created_at;type:timestamptz;index" json:"created_at"`
}

func (Candidate) TableName() string { return "candidates" }

// CandidateFilter narrows the staff candidate table.
type CandidateFilter struct {
	Status pipeline.Status
	Query  string // matched against name, email and position
	Limit  int
}
